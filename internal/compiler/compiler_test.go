package compiler

import (
	"testing"

	"sentra/internal/ast"
	"sentra/internal/bytecode"
	"sentra/internal/errors"
)

func loc(line int) errors.SourceLocation {
	return errors.SourceLocation{File: "test.sen", Line: line, Column: 1}
}

func intLit(v int64, line int) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInt, IntVal: v, Location: loc(line)}
}

func TestVarDeclBindsInitializerRegister(t *testing.T) {
	c := New("test.sen")
	decl := &ast.VarDecl{Name: "x", Initializer: intLit(5, 1), Location: loc(1)}
	c.compileNode(decl)

	sym, ok := c.scope.Lookup("x")
	if !ok {
		t.Fatal("expected x to be bound in scope")
	}
	last := c.code.Instructions[len(c.code.Instructions)-1]
	if last.Op != bytecode.LOAD_CONST || last.Op1 != sym.Register {
		t.Errorf("expected LOAD_CONST into register %d, got %v", sym.Register, last)
	}
}

func TestDuplicateVarDeclInSameScopeErrors(t *testing.T) {
	c := New("test.sen")
	c.compileNode(&ast.VarDecl{Name: "x", Initializer: intLit(1, 1), Location: loc(1)})
	c.compileNode(&ast.VarDecl{Name: "x", Initializer: intLit(2, 2), Location: loc(2)})
	if len(c.Errors()) == 0 {
		t.Fatal("expected an error for duplicate declaration")
	}
}

func TestIfElseJumpPatching(t *testing.T) {
	c := New("test.sen")
	node := &ast.If{
		Cond:     intLit(0, 1),
		Then:     &ast.Block{Stmts: []ast.Node{&ast.ExprStmt{Expr: intLit(1, 1), Location: loc(1)}}, Location: loc(1)},
		Else:     &ast.Block{Stmts: []ast.Node{&ast.ExprStmt{Expr: intLit(2, 1), Location: loc(1)}}, Location: loc(1)},
		Location: loc(1),
	}
	c.compileNode(node)

	for i, ins := range c.code.Instructions {
		if ins.Op == bytecode.JUMP_IF_ZERO || ins.Op == bytecode.JUMP {
			if ins.Op1 < 0 {
				t.Errorf("instruction %d (%s) left unpatched: %v", i, ins.Op, ins)
			}
			if ins.Op1 > len(c.code.Instructions) {
				t.Errorf("instruction %d (%s) jumps out of range: %v", i, ins.Op, ins)
			}
		}
	}
}

func TestWhileLoopBackJumpAndExit(t *testing.T) {
	c := New("test.sen")
	node := &ast.While{
		Cond:     intLit(1, 1),
		Body:     &ast.Block{Stmts: []ast.Node{&ast.Break{Location: loc(1)}}, Location: loc(1)},
		Location: loc(1),
	}
	c.compileNode(node)

	var sawBackJump bool
	for _, ins := range c.code.Instructions {
		if ins.Op == bytecode.JUMP && ins.Op1 == 0 {
			sawBackJump = true
		}
	}
	if !sawBackJump {
		t.Error("expected a back-jump to the loop start (PC 0)")
	}

	end := len(c.code.Instructions)
	var sawExit bool
	for _, ins := range c.code.Instructions {
		if ins.Op == bytecode.JUMP_IF_ZERO && ins.Op1 == end {
			sawExit = true
		}
	}
	if !sawExit {
		t.Errorf("expected the loop condition to exit to the loop end (PC %d)", end)
	}
}

func TestFuncDeclRegistersEntryAndResetsAllocator(t *testing.T) {
	c := New("test.sen")
	fn := &ast.FuncDecl{
		Name:   "add",
		Params: []string{"a", "b"},
		Body: &ast.Block{
			Stmts: []ast.Node{
				&ast.Return{Value: &ast.Binary{Op: "+",
					Left:  &ast.Identifier{Name: "a", Location: loc(1)},
					Right: &ast.Identifier{Name: "b", Location: loc(1)},
					Location: loc(1)}, Location: loc(1)},
			},
			Location: loc(1),
		},
		Location: loc(1),
	}
	c.compileNode(fn)

	entry, ok := c.code.FuncTable["add"]
	if !ok {
		t.Fatal("expected add to be registered in the function table")
	}
	if entry != 0 {
		t.Errorf("expected entry address 0, got %d", entry)
	}
	if c.nextReg != 0 {
		t.Errorf("expected allocator to be restored to 0 after function body, got %d", c.nextReg)
	}
	last := c.code.Instructions[len(c.code.Instructions)-1]
	if last.Op != bytecode.RET {
		t.Errorf("expected function body to end in RET, got %v", last)
	}
}

func TestMainFrameCallsMain(t *testing.T) {
	c := New("test.sen")
	program := []ast.Node{
		&ast.FuncDecl{Name: "main", Params: nil, Body: &ast.Block{Location: loc(1)}, Location: loc(1)},
		&ast.Frame{Name: "Main", Body: nil, Location: loc(2)},
	}
	code := c.Compile(program)

	foundCall := false
	for _, ins := range code.Instructions {
		if ins.Op == bytecode.CALL {
			foundCall = true
		}
	}
	if !foundCall {
		t.Error("expected a CALL instruction invoking main")
	}
	last := code.Instructions[len(code.Instructions)-1]
	if last.Op != bytecode.HALT {
		t.Errorf("expected program to end in HALT, got %v", last)
	}
}

func TestMainFrameMissingMainIsCompileError(t *testing.T) {
	c := New("test.sen")
	program := []ast.Node{
		&ast.Frame{Name: "Main", Body: nil, Location: loc(1)},
	}
	c.Compile(program)
	if len(c.Errors()) == 0 {
		t.Fatal("expected a compile error for a Main frame with no main function")
	}
}

func TestRegisterAllocatorOverflowIsCompileError(t *testing.T) {
	c := New("test.sen")
	for i := 0; i < 20; i++ {
		c.allocReg(loc(1))
	}
	if len(c.Errors()) == 0 {
		t.Fatal("expected register overflow past 16 registers to be a compile error")
	}
}

func TestNativeCallInternsNameAndEmitsCallNative(t *testing.T) {
	c := New("test.sen")
	call := &ast.Call{
		Callee:   &ast.Identifier{Name: "print", Location: loc(1)},
		Args:     []ast.Node{intLit(1, 1)},
		Location: loc(1),
	}
	c.compileExpr(call)

	var found bool
	for _, ins := range c.code.Instructions {
		if ins.Op == bytecode.CALL_NATIVE {
			name, ok := c.code.ConstantAt(ins.Op2)
			if ok && name == "print" {
				found = true
			}
		}
	}
	if !found {
		t.Error("expected a CALL_NATIVE referencing the interned name \"print\"")
	}
}
