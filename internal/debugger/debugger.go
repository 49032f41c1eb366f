// internal/debugger/debugger.go
package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"sentra/internal/bytecode"
	"sentra/internal/vm"
)

// BreakpointType represents different types of breakpoints
type BreakpointType int

const (
	LineBreakpoint BreakpointType = iota
	FunctionBreakpoint
	ConditionalBreakpoint
)

// Breakpoint represents a debug breakpoint
type Breakpoint struct {
	ID       int
	Type     BreakpointType
	File     string
	Line     int
	Function string
	Enabled  bool
	HitCount int
}

// DebugState represents the current debugging state
type DebugState int

const (
	Running DebugState = iota
	Paused
	StepInto
	Terminated
)

// Debugger drives a vm.VM through its Trace hook (spec §4.5's execution
// loop calls the hook once per instruction before dispatch), giving
// instruction-level single-stepping and line breakpoints without the
// VM itself knowing anything about debugging.
type Debugger struct {
	vm          *vm.VM
	file        string
	breakpoints map[int]*Breakpoint
	nextBpID    int
	state       DebugState
	reader      *bufio.Reader
	sourceLines []string
	watches     map[string]bool
	lastLine    int
}

func NewDebugger(m *vm.VM, file string) *Debugger {
	return &Debugger{
		vm:          m,
		file:        file,
		breakpoints: make(map[int]*Breakpoint),
		nextBpID:    1,
		state:       Paused,
		reader:      bufio.NewReader(os.Stdin),
		watches:     make(map[string]bool),
	}
}

func (d *Debugger) LoadSourceFile(content string) {
	d.sourceLines = strings.Split(content, "\n")
}

func (d *Debugger) AddBreakpoint(line int) int {
	bp := &Breakpoint{ID: d.nextBpID, Type: LineBreakpoint, File: d.file, Line: line, Enabled: true}
	d.breakpoints[d.nextBpID] = bp
	d.nextBpID++
	fmt.Printf("breakpoint %d set at %s:%d\n", bp.ID, d.file, line)
	return bp.ID
}

func (d *Debugger) RemoveBreakpoint(id int) bool {
	if bp, exists := d.breakpoints[id]; exists {
		delete(d.breakpoints, id)
		fmt.Printf("breakpoint %d removed from %s:%d\n", bp.ID, bp.File, bp.Line)
		return true
	}
	fmt.Printf("breakpoint %d not found\n", id)
	return false
}

func (d *Debugger) ListBreakpoints() {
	if len(d.breakpoints) == 0 {
		fmt.Println("no breakpoints set")
		return
	}
	for _, bp := range d.breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		fmt.Printf("  %d: %s:%d (%s) hits: %d\n", bp.ID, bp.File, bp.Line, status, bp.HitCount)
	}
}

func (d *Debugger) hasBreakpointAt(line int) *Breakpoint {
	for _, bp := range d.breakpoints {
		if bp.Enabled && bp.Line == line {
			return bp
		}
	}
	return nil
}

func (d *Debugger) showLocation(line int) {
	fmt.Printf("-> %s:%d\n", d.file, line)
	if d.sourceLines == nil {
		return
	}
	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(d.sourceLines) {
		end = len(d.sourceLines)
	}
	for i := start; i < end; i++ {
		marker := "   "
		if i+1 == line {
			marker = "-> "
		}
		fmt.Printf("%s%4d | %s\n", marker, i+1, d.sourceLines[i])
	}
}

func (d *Debugger) AddWatch(reg string) { d.watches[reg] = true }

func (d *Debugger) showWatches() {
	if len(d.watches) == 0 {
		fmt.Println("no watches set")
		return
	}
	for expr := range d.watches {
		n, err := strconv.Atoi(expr)
		if err != nil {
			continue
		}
		fmt.Printf("  R%d = %s\n", n, d.vm.Register(n).String())
	}
}

// Hook returns the vm.VM Trace callback that drives breakpoints and
// single-stepping. Install it with vm.Trace = debugger.Hook().
func (d *Debugger) Hook() func(pc int, ins bytecode.Instruction, regs [vm.NumRegisters]vm.Value) {
	return func(pc int, ins bytecode.Instruction, regs [vm.NumRegisters]vm.Value) {
		d.lastLine = ins.Line
		if d.state == Running {
			if bp := d.hasBreakpointAt(ins.Line); bp != nil {
				bp.HitCount++
				fmt.Printf("\nbreakpoint %d hit at %s:%d\n", bp.ID, d.file, ins.Line)
				d.state = Paused
			}
		}
		if d.state == Paused || d.state == StepInto {
			d.showLocation(ins.Line)
			d.showWatches()
			d.prompt()
		}
	}
}

func (d *Debugger) prompt() {
	for {
		fmt.Print("(sentra-debug) ")
		line, err := d.reader.ReadString('\n')
		if err != nil {
			d.state = Terminated
			return
		}
		if d.executeCommand(strings.TrimSpace(line)) {
			return
		}
	}
}

// executeCommand returns true once the debugger should resume stepping
// the VM (continue/step/next all return; print/watch/help loop back for
// another command at the same paused instruction).
func (d *Debugger) executeCommand(command string) bool {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "help", "h":
		d.showHelp()
	case "break", "b":
		if len(args) >= 1 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.AddBreakpoint(n)
			}
		}
	case "delete", "d":
		if len(args) >= 1 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.RemoveBreakpoint(n)
			}
		}
	case "list", "l":
		d.ListBreakpoints()
	case "continue", "c":
		d.state = Running
		return true
	case "step", "s", "next", "n":
		d.state = StepInto
		return true
	case "watch":
		if len(args) >= 1 {
			d.AddWatch(args[0])
		} else {
			d.showWatches()
		}
	case "print", "p":
		if len(args) >= 1 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				fmt.Printf("R%d = %s\n", n, d.vm.Register(n).String())
			}
		}
	case "quit", "q":
		d.state = Terminated
		return true
	default:
		fmt.Printf("unknown command: %s (type 'help')\n", cmd)
	}
	return false
}

func (d *Debugger) showHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  help, h          - show this help")
	fmt.Println("  break, b <line>  - set breakpoint at line")
	fmt.Println("  delete, d <id>   - remove breakpoint by ID")
	fmt.Println("  list, l          - list breakpoints")
	fmt.Println("  continue, c      - continue execution")
	fmt.Println("  step, s          - step one instruction")
	fmt.Println("  watch <reg>      - watch a register number")
	fmt.Println("  print, p <reg>   - print a register's value")
	fmt.Println("  quit, q          - terminate the debug session")
}

func (d *Debugger) State() DebugState    { return d.state }
func (d *Debugger) SetState(s DebugState) { d.state = s }
