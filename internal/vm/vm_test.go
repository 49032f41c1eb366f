package vm

import (
	"testing"

	"sentra/internal/bytecode"
)

func emit(code *bytecode.Bytecode, op bytecode.OpCode, a, b, c, d int) {
	code.Emit(op, a, b, c, d, 0)
}

func TestArithmetic(t *testing.T) {
	code := bytecode.New()
	emit(code, bytecode.LOAD_CONST, 0, 10, 0, 0)
	emit(code, bytecode.LOAD_CONST, 1, 20, 0, 0)
	emit(code, bytecode.ADD, 2, 0, 1, 0)
	emit(code, bytecode.SUB, 3, 1, 0, 0)
	emit(code, bytecode.MUL, 4, 0, 1, 0)
	emit(code, bytecode.LOAD_CONST, 1, 2, 0, 0)
	emit(code, bytecode.DIV, 5, 4, 1, 0)
	emit(code, bytecode.HALT, 0, 0, 0, 0)

	m := New(code, "test.osfl")
	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[int]int64{0: 10, 1: 2, 2: 30, 3: 10, 4: 200, 5: 100}
	for reg, v := range want {
		if got := m.Register(reg).Int; got != v {
			t.Errorf("R%d = %d, want %d", reg, got, v)
		}
	}
}

func TestJumpIfZero(t *testing.T) {
	code := bytecode.New()
	emit(code, bytecode.LOAD_CONST, 0, 0, 0, 0)
	emit(code, bytecode.JUMP_IF_ZERO, 4, 0, 0, 0)
	emit(code, bytecode.LOAD_CONST, 1, 999, 0, 0)
	emit(code, bytecode.HALT, 0, 0, 0, 0)
	emit(code, bytecode.LOAD_CONST, 1, 123, 0, 0)
	emit(code, bytecode.HALT, 0, 0, 0, 0)

	m := New(code, "test.osfl")
	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Register(1).Int; got != 123 {
		t.Errorf("R1 = %d, want 123", got)
	}
}

func TestCallReturn(t *testing.T) {
	code := bytecode.New()
	emit(code, bytecode.LOAD_CONST, 0, 10, 0, 0)
	emit(code, bytecode.CALL, 5, 0, 0, 0)
	emit(code, bytecode.HALT, 0, 0, 0, 0)
	emit(code, bytecode.NOP, 0, 0, 0, 0)
	emit(code, bytecode.NOP, 0, 0, 0, 0)
	emit(code, bytecode.LOAD_CONST, 0, 99, 0, 0)
	emit(code, bytecode.RET, 0, 0, 0, 0)

	m := New(code, "test.osfl")
	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Register(0).Int; got != 99 {
		t.Errorf("R0 = %d, want 99", got)
	}
	if depth := m.CallStackDepth(); depth != 0 {
		t.Errorf("call stack depth = %d, want 0", depth)
	}
}

func TestDivisionByZeroHaltsCleanly(t *testing.T) {
	code := bytecode.New()
	emit(code, bytecode.LOAD_CONST, 0, 10, 0, 0)
	emit(code, bytecode.LOAD_CONST, 1, 0, 0, 0)
	emit(code, bytecode.DIV, 2, 0, 1, 0)
	emit(code, bytecode.HALT, 0, 0, 0, 0)

	m := New(code, "test.osfl")
	if err := m.Run(); err == nil {
		t.Fatal("expected division by zero error")
	}
	if m.Running() {
		t.Error("VM should not still be running after a fatal error")
	}
}

func TestReturnWithEmptyStackHaltsCleanly(t *testing.T) {
	code := bytecode.New()
	emit(code, bytecode.RET, 0, 0, 0, 0)
	m := New(code, "test.osfl")
	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Running() {
		t.Error("VM should have halted cleanly")
	}
}

func TestNewObjSetPropGetProp(t *testing.T) {
	code := bytecode.New()
	emit(code, bytecode.NEWOBJ, 0, 0, 0, 0)
	emit(code, bytecode.LOAD_CONST_STR, 1, code.Intern("name"), 0, 0)
	emit(code, bytecode.LOAD_CONST_STR, 2, code.Intern("sentra"), 0, 0)
	emit(code, bytecode.SETPROP, 0, 1, 2, 0)
	emit(code, bytecode.GETPROP, 3, 0, 1, 0)
	emit(code, bytecode.HALT, 0, 0, 0, 0)

	m := New(code, "test.osfl")
	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Register(3).Str(); got != "sentra" {
		t.Errorf("R3 = %q, want %q", got, "sentra")
	}
	if n := m.ObjectCount(); n != 1 {
		t.Errorf("object registry has %d entries, want 1", n)
	}
}

func TestCallNativeUnknownReturnsNull(t *testing.T) {
	code := bytecode.New()
	emit(code, bytecode.CALL_NATIVE, 0, code.Intern("does_not_exist"), 0, 0)
	emit(code, bytecode.HALT, 0, 0, 0, 0)
	m := New(code, "test.osfl")
	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Register(0).Kind != KindNull {
		t.Errorf("expected Null for unknown native, got %v", m.Register(0).Kind)
	}
}

func TestCallNativeRegistered(t *testing.T) {
	code := bytecode.New()
	emit(code, bytecode.LOAD_CONST, 0, 3, 0, 0)
	emit(code, bytecode.CALL_NATIVE, 1, code.Intern("double"), 1, 0)
	emit(code, bytecode.HALT, 0, 0, 0, 0)
	m := New(code, "test.osfl")
	m.RegisterNative("double", func(argc int, args []Value) Value {
		return Int(args[0].Int * 2)
	})
	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Register(1).Int; got != 6 {
		t.Errorf("R1 = %d, want 6", got)
	}
}

func TestCoroutineRoundRobin(t *testing.T) {
	code := bytecode.New()
	emit(code, bytecode.CORO_INIT, 0, 0, 0, 0)
	emit(code, bytecode.CORO_INIT, 1, 0, 0, 0)
	emit(code, bytecode.HALT, 0, 0, 0, 0)
	m := New(code, "test.osfl")
	_ = m.Run()
	if m.coroutines[0].active != true {
		t.Error("expected coroutine slot 0 to be active after CORO_INIT")
	}
	// Yielding from slot 0 hands control to slot 1; yielding from slot 1
	// wraps around to slot 0 at the PC its yield saved.
	m.currentCoro = 0
	m.pc = 1
	m.doCoroYield()
	if m.currentCoro != 1 {
		t.Errorf("after yield from slot 0, current slot = %d, want 1", m.currentCoro)
	}
	m.doCoroYield()
	if m.currentCoro != 0 || m.pc != 2 {
		t.Errorf("after yield from slot 1, slot %d at PC %d, want slot 0 at PC 2", m.currentCoro, m.pc)
	}
	m.CancelCoroutine(0)
	if m.coroutines[0].active {
		t.Error("expected coroutine slot 0 to be inactive after cancellation")
	}
}
