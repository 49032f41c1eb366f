// internal/vm/vm.go
package vm

import (
	"fmt"

	"sentra/internal/bytecode"
	"sentra/internal/errors"
)

const (
	NumRegisters  = 16
	MaxCallStack  = 1024
	MaxCoroutines = 64
	MaxNatives    = 64
)

// NativeFunc is the host-supplied function signature spec §6.4 requires:
// (argc, args) -> Value.
type NativeFunc func(argc int, args []Value) Value

type nativeEntry struct {
	name string
	fn   NativeFunc
}

// callStackEntry pairs an activation record with its return address, per
// spec §3's "call stack bounded at 1024 entries (paired frames and
// return addresses)".
type callStackEntry struct {
	frame      *Frame
	returnAddr int
}

// coroState is one of the bounded coroutine slots (spec §4.5/§9).
type coroState struct {
	active     bool
	pc         int
	frame      *Frame
	registers  [NumRegisters]Value
	callStack  []callStackEntry
}

// VM is the register-based virtual machine described in spec §3/§4.5.
type VM struct {
	code      *bytecode.Bytecode
	pc        int
	running   bool

	registers [NumRegisters]Value
	callStack []callStackEntry

	objects []*VMObject

	coroutines     [MaxCoroutines]coroState
	currentCoro    int // -1 when executing on the main context
	coroRoundRobin int

	natives []nativeEntry

	lastErr  *errors.SentraError
	fileName string

	// Debug hook: if set, invoked once per dispatched instruction
	// before it executes, matching spec §7's "instruction-by-instruction
	// traces" debug mode.
	Trace func(pc int, ins bytecode.Instruction, regs [NumRegisters]Value)
}

func New(code *bytecode.Bytecode, fileName string) *VM {
	return &VM{
		code:        code,
		pc:          0,
		running:     true,
		currentCoro: -1,
		fileName:    fileName,
	}
}

func (vm *VM) LastError() *errors.SentraError { return vm.lastErr }
func (vm *VM) Running() bool                  { return vm.running }
func (vm *VM) PC() int                        { return vm.pc }
func (vm *VM) Register(i int) Value           { return vm.registers[i] }
func (vm *VM) CallStackDepth() int            { return len(vm.callStack) }

func (vm *VM) fail(format string, args ...interface{}) {
	line := 0
	if vm.pc >= 0 && vm.pc < len(vm.code.Instructions) {
		line = vm.code.Instructions[vm.pc].Line
	}
	vm.lastErr = errors.NewRuntimeError(fmt.Sprintf(format, args...), vm.fileName, line, 0)
	vm.running = false
}

func (vm *VM) validReg(r int) bool { return r >= 0 && r < NumRegisters }

// RegisterNative installs or replaces a native function under name.
// Capped at MaxNatives entries (spec §4.5).
func (vm *VM) RegisterNative(name string, fn NativeFunc) error {
	for i, e := range vm.natives {
		if e.name == name {
			vm.natives[i].fn = fn
			return nil
		}
	}
	if len(vm.natives) >= MaxNatives {
		return fmt.Errorf("native registry full (max %d)", MaxNatives)
	}
	vm.natives = append(vm.natives, nativeEntry{name: name, fn: fn})
	return nil
}

// CallNative invokes a registered native by name; unknown names return
// Null and are not fatal (spec §4.5/§7).
func (vm *VM) CallNative(name string, argc int, args []Value) Value {
	for _, e := range vm.natives {
		if e.name == name {
			return e.fn(argc, args)
		}
	}
	return Null()
}

// Run executes from the current PC until HALT or exhaustion.
func (vm *VM) Run() error {
	for vm.running && vm.pc < len(vm.code.Instructions) {
		vm.step()
	}
	if vm.lastErr != nil {
		return vm.lastErr
	}
	return nil
}

func (vm *VM) curRegisters() *[NumRegisters]Value {
	if vm.currentCoro >= 0 {
		return &vm.coroutines[vm.currentCoro].registers
	}
	return &vm.registers
}

func (vm *VM) curCallStack() *[]callStackEntry {
	if vm.currentCoro >= 0 {
		return &vm.coroutines[vm.currentCoro].callStack
	}
	return &vm.callStack
}

func (vm *VM) topFrame() *Frame {
	stack := *vm.curCallStack()
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1].frame
}

func (vm *VM) step() {
	ins := vm.code.Instructions[vm.pc]
	if vm.Trace != nil {
		vm.Trace(vm.pc, ins, *vm.curRegisters())
	}
	regs := vm.curRegisters()

	switch ins.Op {
	case bytecode.NOP:
		vm.pc++

	case bytecode.LOAD_CONST:
		if !vm.validReg(ins.Op1) {
			vm.fail("invalid register %d", ins.Op1)
			return
		}
		regs[ins.Op1] = Int(int64(ins.Op2))
		vm.pc++

	case bytecode.LOAD_CONST_FLOAT:
		if !vm.validReg(ins.Op1) {
			vm.fail("invalid register %d", ins.Op1)
			return
		}
		s, ok := vm.code.ConstantAt(ins.Op2)
		if !ok {
			vm.fail("float constant pool index %d out of range", ins.Op2)
			return
		}
		var f float64
		fmt.Sscanf(s, "%g", &f)
		regs[ins.Op1] = Float(f)
		vm.pc++

	case bytecode.LOAD_CONST_STR:
		if !vm.validReg(ins.Op1) {
			vm.fail("invalid register %d", ins.Op1)
			return
		}
		s, ok := vm.code.ConstantAt(ins.Op2)
		if !ok {
			vm.fail("string constant pool index %d out of range", ins.Op2)
			return
		}
		regs[ins.Op1] = String(s)
		vm.pc++

	case bytecode.MOVE:
		if !vm.validReg(ins.Op1) || !vm.validReg(ins.Op2) {
			vm.fail("invalid register in MOVE")
			return
		}
		regs[ins.Op1] = regs[ins.Op2]
		vm.pc++

	case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV:
		vm.arith(ins, regs)

	case bytecode.EQ, bytecode.NEQ:
		vm.compare(ins, regs)

	case bytecode.JUMP:
		if ins.Op1 < 0 || ins.Op1 > len(vm.code.Instructions) {
			vm.fail("jump target %d out of range", ins.Op1)
			return
		}
		vm.pc = ins.Op1

	case bytecode.JUMP_IF_ZERO:
		if !vm.validReg(ins.Op2) {
			vm.fail("invalid register %d", ins.Op2)
			return
		}
		cond := regs[ins.Op2]
		if cond.Kind != KindInt {
			vm.fail("JUMP_IF_ZERO requires an Int condition, got %v", cond.Kind)
			return
		}
		if cond.Int == 0 {
			if ins.Op1 < 0 || ins.Op1 > len(vm.code.Instructions) {
				vm.fail("jump target %d out of range", ins.Op1)
				return
			}
			vm.pc = ins.Op1
		} else {
			vm.pc++
		}

	case bytecode.CALL:
		vm.doCall(ins)

	case bytecode.CALL_NATIVE:
		vm.doCallNative(ins, regs)

	case bytecode.RET:
		vm.doReturn()

	case bytecode.HALT:
		vm.running = false

	case bytecode.NEWOBJ:
		if !vm.validReg(ins.Op1) {
			vm.fail("invalid register %d", ins.Op1)
			return
		}
		obj := NewVMObject()
		vm.objects = append(vm.objects, obj)
		regs[ins.Op1] = ObjectValue(obj)
		vm.pc++

	case bytecode.SETPROP:
		vm.doSetProp(ins, regs)

	case bytecode.GETPROP:
		vm.doGetProp(ins, regs)

	case bytecode.CORO_INIT:
		vm.doCoroInit(ins)

	case bytecode.CORO_YIELD:
		vm.doCoroYield()

	case bytecode.CORO_RESUME:
		vm.doCoroResume(ins)

	default:
		vm.fail("unknown opcode %v", ins.Op)
	}
}

func (vm *VM) arith(ins bytecode.Instruction, regs *[NumRegisters]Value) {
	if !vm.validReg(ins.Op1) || !vm.validReg(ins.Op2) || !vm.validReg(ins.Op3) {
		vm.fail("invalid register in arithmetic instruction")
		return
	}
	a, b := regs[ins.Op2], regs[ins.Op3]
	if a.Kind != KindInt || b.Kind != KindInt {
		vm.fail("arithmetic requires Int operands, got %v and %v", a.Kind, b.Kind)
		return
	}
	switch ins.Op {
	case bytecode.ADD:
		regs[ins.Op1] = Int(a.Int + b.Int)
	case bytecode.SUB:
		regs[ins.Op1] = Int(a.Int - b.Int)
	case bytecode.MUL:
		regs[ins.Op1] = Int(a.Int * b.Int)
	case bytecode.DIV:
		if b.Int == 0 {
			vm.fail("division by zero")
			return
		}
		regs[ins.Op1] = Int(a.Int / b.Int)
	}
	vm.pc++
}

func (vm *VM) compare(ins bytecode.Instruction, regs *[NumRegisters]Value) {
	if !vm.validReg(ins.Op1) || !vm.validReg(ins.Op2) || !vm.validReg(ins.Op3) {
		vm.fail("invalid register in comparison instruction")
		return
	}
	a, b := regs[ins.Op2], regs[ins.Op3]
	if a.Kind != KindInt || b.Kind != KindInt {
		vm.fail("comparison requires Int operands, got %v and %v", a.Kind, b.Kind)
		return
	}
	eq := a.Int == b.Int
	if ins.Op == bytecode.NEQ {
		eq = !eq
	}
	if eq {
		regs[ins.Op1] = Int(1)
	} else {
		regs[ins.Op1] = Int(0)
	}
	vm.pc++
}

// doCall implements the calling convention of spec §4.5: allocate an
// 8-local Frame parented to the current top frame, push (frame,
// return=PC+1), jump to the entry address. Arguments are expected to
// already occupy registers 0..argc-1 via preceding MOVE instructions.
func (vm *VM) doCall(ins bytecode.Instruction) {
	stack := vm.curCallStack()
	if len(*stack) >= MaxCallStack {
		vm.fail("call stack overflow (max %d)", MaxCallStack)
		return
	}
	if ins.Op1 < 0 || ins.Op1 >= len(vm.code.Instructions) {
		vm.fail("call target %d out of range", ins.Op1)
		return
	}
	frame := &Frame{Parent: vm.topFrame()}
	regs := vm.curRegisters()
	n := len(frame.Locals)
	for i := 0; i < n; i++ {
		frame.Locals[i] = regs[i]
	}
	*stack = append(*stack, callStackEntry{frame: frame, returnAddr: vm.pc + 1})
	vm.pc = ins.Op1
}

// doReturn pops the active frame. Returning with an empty call stack
// halts the VM cleanly rather than underflowing (spec §4.5/§8 invariant 5).
func (vm *VM) doReturn() {
	stack := vm.curCallStack()
	if len(*stack) == 0 {
		vm.running = false
		return
	}
	top := (*stack)[len(*stack)-1]
	*stack = (*stack)[:len(*stack)-1]
	vm.pc = top.returnAddr
}

func (vm *VM) doCallNative(ins bytecode.Instruction, regs *[NumRegisters]Value) {
	dest, poolIdx, argc, base := ins.Op1, ins.Op2, ins.Op3, ins.Op4
	if !vm.validReg(dest) {
		vm.fail("invalid register %d", dest)
		return
	}
	name, ok := vm.code.ConstantAt(poolIdx)
	if !ok {
		vm.fail("native name pool index %d out of range", poolIdx)
		return
	}
	if name == "" {
		vm.fail("native call with empty name")
		return
	}
	args := make([]Value, argc)
	for i := 0; i < argc; i++ {
		r := base + i
		if !vm.validReg(r) {
			vm.fail("invalid argument register %d", r)
			return
		}
		args[i] = regs[r]
	}
	found := false
	for _, e := range vm.natives {
		if e.name == name {
			found = true
			regs[dest] = e.fn(argc, args)
			break
		}
	}
	if !found {
		regs[dest] = Null()
	}
	vm.pc++
}

func (vm *VM) doSetProp(ins bytecode.Instruction, regs *[NumRegisters]Value) {
	objReg, keyReg, valReg := ins.Op1, ins.Op2, ins.Op3
	if !vm.validReg(objReg) || !vm.validReg(keyReg) || !vm.validReg(valReg) {
		vm.fail("invalid register in SETPROP")
		return
	}
	objVal := regs[objReg]
	if objVal.Kind != KindObject {
		vm.fail("SETPROP target is not an object")
		return
	}
	key := propKey(regs[keyReg])
	val := regs[valReg]
	if val.IsRefCounted() {
		val.Retain()
	}
	objVal.Object().Set(key, val)
	vm.pc++
}

func (vm *VM) doGetProp(ins bytecode.Instruction, regs *[NumRegisters]Value) {
	dest, objReg, keyReg := ins.Op1, ins.Op2, ins.Op3
	if !vm.validReg(dest) || !vm.validReg(objReg) || !vm.validReg(keyReg) {
		vm.fail("invalid register in GETPROP")
		return
	}
	objVal := regs[objReg]
	if objVal.Kind != KindObject {
		vm.fail("GETPROP target is not an object")
		return
	}
	key := propKey(regs[keyReg])
	if v, ok := objVal.Object().Get(key); ok {
		regs[dest] = v
	} else {
		regs[dest] = Null()
	}
	vm.pc++
}

func propKey(v Value) string {
	if v.Kind == KindString {
		return v.Str()
	}
	return fmt.Sprintf("%d", v.Int)
}

// RetainObject/ReleaseObject implement the object-heap lifecycle of
// spec §4.5: NEWOBJ registers with refcount 1; release at zero destroys
// and untracks.
func (vm *VM) RetainObject(o *VMObject) {
	o.Refcount++
}

func (vm *VM) ReleaseObject(o *VMObject) {
	o.Refcount--
	if o.Refcount > 0 {
		return
	}
	for i, x := range vm.objects {
		if x == o {
			vm.objects = append(vm.objects[:i], vm.objects[i+1:]...)
			break
		}
	}
}

func (vm *VM) ObjectCount() int { return len(vm.objects) }

// GCCollect is the no-op hook spec §4.5 reserves for a future tracing
// collector; refcounting alone cannot reclaim object cycles.
func (vm *VM) GCCollect() {}

// ---- Coroutines (spec §4.5/§5/§9) ----

func (vm *VM) doCoroInit(ins bytecode.Instruction) {
	slot := -1
	for i := range vm.coroutines {
		if !vm.coroutines[i].active {
			slot = i
			break
		}
	}
	if slot == -1 {
		vm.fail("no free coroutine slot (max %d)", MaxCoroutines)
		return
	}
	vm.coroutines[slot] = coroState{active: true, pc: 0}
	if vm.validReg(ins.Op1) {
		vm.curRegisters()[ins.Op1] = Int(int64(slot))
	}
	vm.pc++
}

// doCoroYield saves the current slot's PC and advances to the next
// active slot round-robin. Yielding outside any active coroutine (the
// main context) or from an inactive slot is a diagnostic, not fatal.
func (vm *VM) doCoroYield() {
	if vm.currentCoro < 0 {
		vm.pc++
		return
	}
	vm.coroutines[vm.currentCoro].pc = vm.pc + 1

	next := -1
	for i := 1; i <= MaxCoroutines; i++ {
		idx := (vm.currentCoro + i) % MaxCoroutines
		if vm.coroutines[idx].active {
			next = idx
			break
		}
	}
	if next == -1 {
		vm.pc++
		return
	}
	vm.currentCoro = next
	vm.pc = vm.coroutines[next].pc
}

func (vm *VM) doCoroResume(ins bytecode.Instruction) {
	slot := ins.Op1
	if slot < 0 || slot >= MaxCoroutines || !vm.coroutines[slot].active {
		vm.pc++
		return
	}
	if vm.currentCoro >= 0 {
		vm.coroutines[vm.currentCoro].pc = vm.pc + 1
	}
	vm.currentCoro = slot
	vm.pc = vm.coroutines[slot].pc
}

// CancelCoroutine clears a slot's active flag (spec §4.5's "Cancellation
// is modeled as clearing active").
func (vm *VM) CancelCoroutine(slot int) {
	if slot >= 0 && slot < MaxCoroutines {
		vm.coroutines[slot].active = false
	}
}
