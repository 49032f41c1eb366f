// cmd/sentra drives the lexer/parser/compiler/VM pipeline from argv. It
// parses flags by hand, the way the teacher always has — no third-party
// flag library appears anywhere in the pack for a tool this shape.
package main

import (
	"fmt"
	"os"

	"sentra/internal/commands"
	"sentra/internal/compiler"
	"sentra/internal/config"
	"sentra/internal/debugger"
	"sentra/internal/errors"
	"sentra/internal/lexer"
	"sentra/internal/natives"
	"sentra/internal/parser"
	"sentra/internal/repl"
	"sentra/internal/stdlib"
	"sentra/internal/vm"
)

const version = "sentra 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "repl":
		repl.Start()
		return 0
	case "init":
		return runCommand(commands.InitCommand, args[1:])
	case "build":
		return runCommand(commands.BuildCommand, args[1:])
	case "watch":
		return runCommand(commands.WatchCommand, args[1:])
	case "clean":
		return runCommand(commands.CleanCommand, args[1:])
	case "debug":
		return runDebug(args[1:])
	}

	cfg, inputFile, cont := parseFlags(args)
	if !cont {
		return 0
	}
	if cfg == nil {
		return 1
	}
	if inputFile == "" {
		printUsage()
		return 1
	}

	return runFile(*cfg)
}

func runCommand(fn func([]string) error, args []string) int {
	if err := fn(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseFlags returns (cfg, inputFile, continue). continue is false when
// -h/-v already handled the whole invocation; cfg is nil on a flag error.
func parseFlags(args []string) (*config.Config, string, bool) {
	var inputFile string
	cfg := config.Default("")

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help":
			printUsage()
			return nil, "", false
		case "-v", "--version":
			fmt.Println(version)
			return nil, "", false
		case "-o":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "-o requires a file argument")
				return nil, "", true
			}
			i++
			cfg.OutputFile = args[i]
		case "-d", "--debug":
			cfg.DebugMode = true
		case "--no-optimize":
			cfg.Optimize = false
		default:
			if len(args[i]) > 0 && args[i][0] == '-' {
				fmt.Fprintf(os.Stderr, "unknown option: %s\n", args[i])
				return nil, "", true
			}
			inputFile = args[i]
		}
	}
	cfg.InputFile = inputFile
	return &cfg, inputFile, true
}

func printUsage() {
	fmt.Println("usage: sentra [options] <input_file>")
	fmt.Println("       sentra <repl|init|build|watch|clean|debug> [args]")
	fmt.Println()
	fmt.Println("options:")
	fmt.Println("  -h, --help        print usage and exit")
	fmt.Println("  -v, --version     print version and exit")
	fmt.Println("  -o <file>         set output file (reserved)")
	fmt.Println("  -d, --debug       enable debug diagnostics")
	fmt.Println("      --no-optimize disable optimizations (reserved)")
}

// runFile compiles and executes a single .osfl file, reporting every
// pipeline error in the §6.1 "Error in <file> at line L, column C:" form.
func runFile(cfg config.Config) int {
	src, err := os.ReadFile(cfg.InputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", cfg.InputFile, err)
		return 1
	}

	lexCfg := lexer.DefaultConfig(cfg.InputFile)
	lexCfg.TabWidth = cfg.TabWidth

	p := parser.New(lexer.New(src, lexCfg), cfg.InputFile)
	program := p.Parse()
	if reportErrors(cfg.InputFile, p.Errors()) {
		return 1
	}

	c := compiler.New(cfg.InputFile)
	code := c.Compile(program.Stmts)
	if reportErrors(cfg.InputFile, c.Errors()) {
		return 1
	}

	m := vm.New(code, cfg.InputFile)
	natives.RegisterAll(m)
	stdlib.RegisterAll(m)

	if cfg.DebugMode {
		d := debugger.NewDebugger(m, cfg.InputFile)
		d.LoadSourceFile(string(src))
		m.Trace = d.Hook()
	}

	if err := m.Run(); err != nil {
		reportErrors(cfg.InputFile, []*errors.SentraError{m.LastError()})
		return 1
	}
	return 0
}

func runDebug(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: sentra debug <input_file>")
		return 1
	}
	cfg := config.Default(args[0])
	cfg.DebugMode = true
	return runFile(cfg)
}

func reportErrors(file string, errs []*errors.SentraError) bool {
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "Error in %s at line %d, column %d: %s\n",
			file, e.Location.Line, e.Location.Column, e.Message)
	}
	return len(errs) > 0
}
