package parser

import (
	"testing"

	"sentra/internal/ast"
	"sentra/internal/lexer"
)

func parse(src string) (*ast.Block, *Parser) {
	lex := lexer.NewFromString(src, lexer.DefaultConfig("test.osfl"))
	p := New(lex, "test.osfl")
	return p.Parse(), p
}

func TestParseVarDecl(t *testing.T) {
	prog, p := parse(`var x = 5`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	decl, ok := prog.Stmts[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", prog.Stmts[0])
	}
	if decl.Name != "x" {
		t.Errorf("expected name x, got %s", decl.Name)
	}
	lit, ok := decl.Initializer.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt || lit.IntVal != 5 {
		t.Errorf("expected int literal 5, got %#v", decl.Initializer)
	}
}

func TestParseFuncDecl(t *testing.T) {
	prog, p := parse(`func add(a, b) { return a + b }`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	fn, ok := prog.Stmts[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected *ast.FuncDecl, got %T", prog.Stmts[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Errorf("expected add(a, b), got %+v", fn)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected *ast.Return, got %T", fn.Body.Stmts[0])
	}
	bin, ok := ret.Value.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Errorf("expected a + b, got %#v", ret.Value)
	}
}

func TestParseFrame(t *testing.T) {
	prog, p := parse(`frame Main { func main() { print("hi") } }`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	frame, ok := prog.Stmts[0].(*ast.Frame)
	if !ok {
		t.Fatalf("expected *ast.Frame, got %T", prog.Stmts[0])
	}
	if frame.Name != "Main" || len(frame.Body) != 1 {
		t.Errorf("expected frame Main with 1 member, got %+v", frame)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	prog, p := parse(`var x = 1 + 2 * 3`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	decl := prog.Stmts[0].(*ast.VarDecl)
	top, ok := decl.Initializer.(*ast.Binary)
	if !ok || top.Op != "+" {
		t.Fatalf("expected + at top level, got %#v", decl.Initializer)
	}
	right, ok := top.Right.(*ast.Binary)
	if !ok || right.Op != "*" {
		t.Errorf("expected * to bind tighter on the right, got %#v", top.Right)
	}
}

func TestPowerIsRightAssociative(t *testing.T) {
	prog, p := parse(`var x = 2 ^ 3 ^ 2`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	decl := prog.Stmts[0].(*ast.VarDecl)
	top, ok := decl.Initializer.(*ast.Binary)
	if !ok || top.Op != "^" {
		t.Fatalf("expected ^ at top level, got %#v", decl.Initializer)
	}
	if _, ok := top.Right.(*ast.Binary); !ok {
		t.Errorf("expected right-associative nesting, got %#v", top.Right)
	}
	if _, ok := top.Left.(*ast.Literal); !ok {
		t.Errorf("expected literal 2 on the left, got %#v", top.Left)
	}
}

func TestParseIfElse(t *testing.T) {
	prog, p := parse(`if (x) { y = 1 } else { y = 2 }`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	ifStmt, ok := prog.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", prog.Stmts[0])
	}
	if ifStmt.Then == nil || ifStmt.Else == nil {
		t.Errorf("expected both branches present, got %+v", ifStmt)
	}
}

func TestParseClassicForLoop(t *testing.T) {
	prog, p := parse(`for (var i = 0; i < 10; i = i + 1) { print(i) }`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	forStmt, ok := prog.Stmts[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", prog.Stmts[0])
	}
	if forStmt.Init == nil || forStmt.Cond == nil || forStmt.Update == nil {
		t.Errorf("expected classic for loop clauses, got %+v", forStmt)
	}
	if forStmt.ForInVar != "" {
		t.Errorf("expected no for-in var on a classic for loop, got %q", forStmt.ForInVar)
	}
}

func TestParseForIn(t *testing.T) {
	prog, p := parse(`for (x in items) { print(x) }`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	forStmt, ok := prog.Stmts[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", prog.Stmts[0])
	}
	if forStmt.ForInVar != "x" || forStmt.ForInColl == nil {
		t.Errorf("expected for-in over items, got %+v", forStmt)
	}
}

func TestParseCallAndMemberChain(t *testing.T) {
	prog, p := parse(`var x = obj.method(1, 2).field`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	decl := prog.Stmts[0].(*ast.VarDecl)
	member, ok := decl.Initializer.(*ast.Member)
	if !ok || member.Property != "field" {
		t.Fatalf("expected trailing .field member access, got %#v", decl.Initializer)
	}
	call, ok := member.Object.(*ast.Call)
	if !ok || len(call.Args) != 2 {
		t.Errorf("expected a 2-arg call feeding the member access, got %#v", member.Object)
	}
}

func TestParseStringInterpolation(t *testing.T) {
	prog, p := parse(`var x = "a${y}b"`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	decl := prog.Stmts[0].(*ast.VarDecl)
	interp, ok := decl.Initializer.(*ast.Interpolation)
	if !ok || len(interp.Parts) == 0 {
		t.Fatalf("expected *ast.Interpolation with parts, got %#v", decl.Initializer)
	}
}

func TestParseArrayLiteral(t *testing.T) {
	prog, p := parse(`var x = [1, 2, 3]`)
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	decl := prog.Stmts[0].(*ast.VarDecl)
	arr, ok := decl.Initializer.(*ast.ArrayLit)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected a 3-element array literal, got %#v", decl.Initializer)
	}
}

func TestUnexpectedTokenRecordsErrorAndRecovers(t *testing.T) {
	_, p := parse(`var = 5`)
	if len(p.Errors()) == 0 {
		t.Fatal("expected a syntax error for the missing variable name")
	}
}
