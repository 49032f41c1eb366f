// internal/repl/repl.go
package repl

import (
	"bufio"
	"fmt"
	"os"
	"os/user"

	"github.com/mattn/go-isatty"

	"sentra/internal/compiler"
	"sentra/internal/lexer"
	"sentra/internal/natives"
	"sentra/internal/parser"
	"sentra/internal/stdlib"
	"sentra/internal/vm"
)

// Start runs an interactive read-eval-print loop. Each line is compiled
// and run as its own tiny program against a fresh VM: the core has no
// notion of a persistent top-level environment across compilations, so
// a REPL session is a sequence of independent one-shot executions.
func Start() {
	fmt.Println("Sentra REPL | type 'exit' to quit")
	prompt := ">>> "
	if isatty.IsTerminal(os.Stdin.Fd()) {
		if u, err := user.Current(); err == nil {
			prompt = u.Username + "> "
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			continue
		}
		runLine(line)
	}
}

func runLine(line string) {
	lex := lexer.NewFromString(line, lexer.DefaultConfig("<repl>"))
	p := parser.New(lex, "<repl>")
	program := p.Parse()
	for _, e := range p.Errors() {
		fmt.Fprintln(os.Stderr, e.Error())
	}

	c := compiler.New("<repl>")
	code := c.Compile(program.Stmts)
	for _, e := range c.Errors() {
		fmt.Fprintln(os.Stderr, e.Error())
	}

	m := vm.New(code, "<repl>")
	natives.RegisterAll(m)
	stdlib.RegisterAll(m)
	if err := m.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
	}
}
