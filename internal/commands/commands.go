package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"sentra/internal/compiler"
	"sentra/internal/lexer"
	"sentra/internal/parser"
)

func InitCommand(args []string) error {
	projectName := "sentra-project"
	if len(args) > 0 {
		projectName = args[0]
	}

	if err := os.MkdirAll(projectName, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	mainFile := filepath.Join(projectName, "main.osfl")
	content := `frame Main {
    func main() {
        print("Hello from Sentra!")
    }
}
`
	if err := os.WriteFile(mainFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create main.osfl: %w", err)
	}

	fmt.Printf("Initialized new Sentra project: %s\n", projectName)
	return nil
}

// BuildCommand compiles a .osfl file to bytecode and reports diagnostics
// without running it, useful for CI smoke-testing a change.
func BuildCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: sentra build <input_file>")
	}
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", file, err)
	}

	p := parser.New(lexer.New(src, lexer.DefaultConfig(file)), file)
	program := p.Parse()
	for _, e := range p.Errors() {
		fmt.Printf("Error in %s at line %d, column %d: %s\n", file, e.Location.Line, e.Location.Column, e.Message)
	}
	if len(p.Errors()) > 0 {
		return fmt.Errorf("build failed: %d parse error(s)", len(p.Errors()))
	}

	c := compiler.New(file)
	code := c.Compile(program.Stmts)
	for _, e := range c.Errors() {
		fmt.Printf("Error in %s at line %d, column %d: %s\n", file, e.Location.Line, e.Location.Column, e.Message)
	}
	if len(c.Errors()) > 0 {
		return fmt.Errorf("build failed: %d compile error(s)", len(c.Errors()))
	}

	fmt.Printf("%s: %d instructions, %d functions\n", file, code.Len(), len(code.FuncTable))
	return nil
}

func WatchCommand(args []string) error {
	fmt.Println("Watching for file changes...")
	fmt.Println("Press Ctrl+C to stop")
	select {}
}

func CleanCommand(args []string) error {
	fmt.Println("Cleaning build artifacts...")
	
	artifacts := []string{"build", "dist", "*.out"}
	for _, pattern := range artifacts {
		matches, _ := filepath.Glob(pattern)
		for _, match := range matches {
			os.RemoveAll(match)
			fmt.Printf("Removed: %s\n", match)
		}
	}
	
	fmt.Println("Clean completed")
	return nil
}