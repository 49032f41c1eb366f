// Package compiler lowers the AST into a flat instruction array and
// constant pool, allocating destination registers and resolving names
// through lexical scopes (spec §4.4). This is the register-allocating
// tree-walk compiler spec.md calls "the hard part" alongside the VM.
package compiler

import (
	"fmt"

	"sentra/internal/ast"
	"sentra/internal/bytecode"
	"sentra/internal/errors"
	"sentra/internal/scope"
)

// Compiler holds the two pieces of mutable state spec §4.4 calls out
// explicitly: a register allocator (reset per function body) and the
// function table living on the Bytecode being produced. Both are fields
// on this struct, never module-global, so compilation is re-entrant and
// unit-testable in isolation (spec §9).
type Compiler struct {
	code     *bytecode.Bytecode
	scope    *scope.Scope
	nextReg  int
	fileName string

	errs []*errors.SentraError

	// loopStack supports break/continue: each entry is the PC to jump
	// to on break and the PC to jump to on continue, for the innermost
	// enclosing loop.
	loopStack []loopCtx
}

type loopCtx struct {
	breakTargets    []int // instruction indices needing patch to loop-end
	continueTarget  int
}

func New(fileName string) *Compiler {
	return &Compiler{
		code:     bytecode.New(),
		scope:    scope.New(nil),
		fileName: fileName,
	}
}

func (c *Compiler) Errors() []*errors.SentraError { return c.errs }

func (c *Compiler) errorf(loc errors.SourceLocation, format string, args ...interface{}) {
	c.errs = append(c.errs, errors.NewCompileError(fmt.Sprintf(format, args...), c.fileName, loc.Line, loc.Column))
}

// allocReg returns a fresh destination register, per spec §4.4's rule
// that every expression evaluation writes to next_register++. Overflow
// past the VM's fixed 16-register file is a compile error, matching the
// "accept overflow as a compiler error" option spec §9 offers.
func (c *Compiler) allocReg(loc errors.SourceLocation) int {
	if c.nextReg >= 16 {
		c.errorf(loc, "register allocator exhausted the 16-register file")
		return 0
	}
	r := c.nextReg
	c.nextReg++
	return r
}

// Compile walks the root AST (a sequence of top-level declarations,
// conceptually wrapped in a Program block) and returns the resulting
// Bytecode.
func (c *Compiler) Compile(program []ast.Node) *bytecode.Bytecode {
	sawMainFrame := false
	for _, n := range program {
		if f, ok := n.(*ast.Frame); ok && f.Name == "Main" {
			sawMainFrame = true
			c.compileMainFrame(f)
			continue
		}
		c.compileNode(n)
	}
	if !sawMainFrame {
		c.code.Emit(bytecode.HALT, 0, 0, 0, 0, 0)
		return c.code
	}
	c.code.Emit(bytecode.HALT, 0, 0, 0, 0, 0)
	return c.code
}

// compileMainFrame implements the Frame lowering rule: compile the body,
// then for the frame literally named Main append CALL (addr of "main")
// and HALT. A missing main is a pipeline error (spec §9 Open Question,
// resolved: treat as fatal).
func (c *Compiler) compileMainFrame(f *ast.Frame) {
	for _, stmt := range f.Body {
		c.compileNode(stmt)
	}
	entry, ok := c.code.FuncTable["main"]
	if !ok {
		c.errorf(f.Location, "frame Main has no function named main")
		return
	}
	c.code.Emit(bytecode.CALL, entry, 0, 0, 0, f.Location.Line)
	c.code.Emit(bytecode.HALT, 0, 0, 0, 0, f.Location.Line)
}

func (c *Compiler) compileNode(n ast.Node) {
	switch node := n.(type) {
	case *ast.Frame:
		c.compileBlockLike(node.Body)
	case *ast.Block:
		c.compileBlockLike(node.Stmts)
	case *ast.VarDecl:
		c.compileVarDecl(node)
	case *ast.FuncDecl:
		c.compileFuncDecl(node)
	case *ast.ClassDecl:
		for _, m := range node.Members {
			c.compileNode(m)
		}
	case *ast.ImportDecl:
		// No bytecode: import resolution is a host/loader concern.
	case *ast.ExprStmt:
		c.compileExpr(node.Expr)
	case *ast.If:
		c.compileIf(node)
	case *ast.While:
		c.compileWhile(node)
	case *ast.For:
		c.compileFor(node)
	case *ast.Return:
		c.compileReturn(node)
	case *ast.Break:
		c.compileBreak(node)
	case *ast.Continue:
		c.compileContinue(node)
	case *ast.TryCatch:
		c.compileTryCatch(node)
	case *ast.OnError:
		c.compileOnError(node)
	case *ast.Switch:
		c.compileSwitch(node)
	default:
		c.errorf(n.Loc(), "unsupported statement kind %T", n)
	}
}

func (c *Compiler) compileBlockLike(stmts []ast.Node) {
	for _, s := range stmts {
		c.compileNode(s)
	}
}

// compileVarDecl compiles the initializer and binds the symbol to the
// initializer's destination register, per spec §9's resolved Open
// Question ("implementations MUST bind").
func (c *Compiler) compileVarDecl(node *ast.VarDecl) {
	var reg int
	if node.Initializer != nil {
		reg = c.compileExpr(node.Initializer)
	} else {
		reg = c.allocReg(node.Location)
		c.code.Emit(bytecode.LOAD_CONST, reg, 0, 0, 0, node.Location.Line)
	}
	kind := scope.Var
	if node.Const {
		kind = scope.Const
	}
	if !c.scope.Add(node.Name, kind, reg) {
		c.errorf(node.Location, "duplicate declaration of %q in this scope", node.Name)
	}
}

// compileFuncDecl records (name, entry PC) in the function table, then
// compiles the body in a fresh child scope with parameters bound to
// registers 0..n-1 and the allocator reset to n (spec §4.4).
func (c *Compiler) compileFuncDecl(node *ast.FuncDecl) {
	if len(c.code.FuncTable) >= bytecode.MaxFunctions {
		c.errorf(node.Location, "function table overflow (max %d functions)", bytecode.MaxFunctions)
		return
	}
	entry := c.code.Len()
	c.code.FuncTable[node.Name] = entry

	savedScope := c.scope
	savedReg := c.nextReg

	c.scope = scope.New(savedScope)
	for i, p := range node.Params {
		c.scope.Add(p, scope.Var, i)
	}
	c.nextReg = len(node.Params)

	if node.Body != nil {
		c.compileBlockLike(node.Body.Stmts)
	}
	c.code.Emit(bytecode.RET, 0, 0, 0, 0, node.Location.Line)

	c.scope.Destroy()
	c.scope = savedScope
	c.nextReg = savedReg
}

// compileIf lowers If per spec §4.4's jump-patching recipe.
func (c *Compiler) compileIf(node *ast.If) {
	condReg := c.compileExpr(node.Cond)
	jzIdx := c.code.Emit(bytecode.JUMP_IF_ZERO, -1, condReg, 0, 0, node.Location.Line)
	if node.Then != nil {
		c.compileBlockLike(node.Then.Stmts)
	}
	if node.Else != nil {
		jmpIdx := c.code.Emit(bytecode.JUMP, -1, 0, 0, 0, node.Location.Line)
		c.code.PatchOp1(jzIdx, c.code.Len())
		switch e := node.Else.(type) {
		case *ast.Block:
			c.compileBlockLike(e.Stmts)
		case *ast.If:
			c.compileIf(e)
		}
		c.code.PatchOp1(jmpIdx, c.code.Len())
	} else {
		c.code.PatchOp1(jzIdx, c.code.Len())
	}
}

// compileWhile lowers While: record loop-start PC, condition, forward
// JUMP_IF_ZERO, body, back-JUMP, patch the forward jump to the end PC.
func (c *Compiler) compileWhile(node *ast.While) {
	loopStart := c.code.Len()
	condReg := c.compileExpr(node.Cond)
	jzIdx := c.code.Emit(bytecode.JUMP_IF_ZERO, -1, condReg, 0, 0, node.Location.Line)

	c.loopStack = append(c.loopStack, loopCtx{continueTarget: loopStart})
	if node.Body != nil {
		c.compileBlockLike(node.Body.Stmts)
	}
	lc := c.loopStack[len(c.loopStack)-1]
	c.loopStack = c.loopStack[:len(c.loopStack)-1]

	c.code.Emit(bytecode.JUMP, loopStart, 0, 0, 0, node.Location.Line)
	end := c.code.Len()
	c.code.PatchOp1(jzIdx, end)
	for _, b := range lc.breakTargets {
		c.code.PatchOp1(b, end)
	}
}

// compileFor lowers For as a While with the increment interleaved
// between body and back-jump (spec §4.4), or as a for-in loop over a
// list/string Value when ForInColl is set.
func (c *Compiler) compileFor(node *ast.For) {
	if node.ForInColl != nil {
		c.compileForIn(node)
		return
	}
	if node.Init != nil {
		c.compileNode(node.Init)
	}
	loopStart := c.code.Len()
	var jzIdx int
	hasCond := node.Cond != nil
	if hasCond {
		condReg := c.compileExpr(node.Cond)
		jzIdx = c.code.Emit(bytecode.JUMP_IF_ZERO, -1, condReg, 0, 0, node.Location.Line)
	}

	c.loopStack = append(c.loopStack, loopCtx{continueTarget: loopStart})
	if node.Body != nil {
		c.compileBlockLike(node.Body.Stmts)
	}
	lc := c.loopStack[len(c.loopStack)-1]
	c.loopStack = c.loopStack[:len(c.loopStack)-1]

	if node.Update != nil {
		c.compileExpr(node.Update)
	}
	c.code.Emit(bytecode.JUMP, loopStart, 0, 0, 0, node.Location.Line)
	end := c.code.Len()
	if hasCond {
		c.code.PatchOp1(jzIdx, end)
	}
	for _, b := range lc.breakTargets {
		c.code.PatchOp1(b, end)
	}
}

// compileForIn desugars `for x in coll { body }` into an index-driven
// While over the collection's length, using the "len" and index-get
// natives to stay within the core instruction set (no dedicated
// iterator opcode exists in the spec's instruction table).
func (c *Compiler) compileForIn(node *ast.For) {
	collReg := c.compileExpr(node.ForInColl)
	collBase := c.stageNativeArgs([]int{collReg}, node.Location)
	idxReg := c.allocReg(node.Location)
	c.code.Emit(bytecode.LOAD_CONST, idxReg, 0, 0, 0, node.Location.Line)
	lenReg := c.allocReg(node.Location)
	lenName := c.code.Intern("len")
	c.code.Emit(bytecode.CALL_NATIVE, lenReg, lenName, 1, collBase, node.Location.Line)

	loopStart := c.code.Len()
	cmpReg := c.allocReg(node.Location)
	c.code.Emit(bytecode.EQ, cmpReg, idxReg, lenReg, 0, node.Location.Line)
	jzIdx := c.code.Emit(bytecode.JUMP_IF_ZERO, -1, cmpReg, 0, 0, node.Location.Line)
	// When idx==len this JUMP_IF_ZERO falls through (cond is Int(1)!=0);
	// invert: loop continues while idx != len, so branch to end when eq.
	jumpToEnd := c.code.Emit(bytecode.JUMP, -1, 0, 0, 0, node.Location.Line)
	c.code.PatchOp1(jzIdx, c.code.Len())

	getBase := c.stageNativeArgs([]int{collBase, idxReg}, node.Location)
	itemReg := c.allocReg(node.Location)
	getName := c.code.Intern("__index__")
	c.code.Emit(bytecode.CALL_NATIVE, itemReg, getName, 2, getBase, node.Location.Line)

	childScope := scope.New(c.scope)
	c.scope = childScope
	c.scope.Add(node.ForInVar, scope.Var, itemReg)

	c.loopStack = append(c.loopStack, loopCtx{continueTarget: loopStart})
	if node.Body != nil {
		c.compileBlockLike(node.Body.Stmts)
	}
	lc := c.loopStack[len(c.loopStack)-1]
	c.loopStack = c.loopStack[:len(c.loopStack)-1]

	parent := childScope.Parent()
	c.scope.Destroy()
	c.scope = parent

	oneReg := c.allocReg(node.Location)
	c.code.Emit(bytecode.LOAD_CONST, oneReg, 1, 0, 0, node.Location.Line)
	c.code.Emit(bytecode.ADD, idxReg, idxReg, oneReg, 0, node.Location.Line)
	c.code.Emit(bytecode.JUMP, loopStart, 0, 0, 0, node.Location.Line)

	end := c.code.Len()
	c.code.PatchOp1(jumpToEnd, end)
	for _, b := range lc.breakTargets {
		c.code.PatchOp1(b, end)
	}
}

func (c *Compiler) compileReturn(node *ast.Return) {
	if node.Value != nil {
		c.compileExpr(node.Value)
	}
	c.code.Emit(bytecode.RET, 0, 0, 0, 0, node.Location.Line)
}

func (c *Compiler) compileBreak(node *ast.Break) {
	if len(c.loopStack) == 0 {
		c.errorf(node.Location, "break outside of a loop")
		return
	}
	idx := c.code.Emit(bytecode.JUMP, -1, 0, 0, 0, node.Location.Line)
	top := len(c.loopStack) - 1
	c.loopStack[top].breakTargets = append(c.loopStack[top].breakTargets, idx)
}

func (c *Compiler) compileContinue(node *ast.Continue) {
	if len(c.loopStack) == 0 {
		c.errorf(node.Location, "continue outside of a loop")
		return
	}
	target := c.loopStack[len(c.loopStack)-1].continueTarget
	c.code.Emit(bytecode.JUMP, target, 0, 0, 0, node.Location.Line)
}

// compileTryCatch has no dedicated trap-frame opcode in the core
// instruction set; it compiles the try body unconditionally, followed by
// a JUMP over the catch body. No instruction transfers control into the
// catch body (natives signal failure by returning Null, spec §7's
// propagation policy — exceptions never cross the bridge), so the catch
// body never runs.
func (c *Compiler) compileTryCatch(node *ast.TryCatch) {
	if node.Try != nil {
		c.compileBlockLike(node.Try.Stmts)
	}
	if node.Catch != nil {
		skip := c.code.Len()
		c.code.Emit(bytecode.JUMP, -1, 0, 0, 0, node.Location.Line)
		childScope := scope.New(c.scope)
		c.scope = childScope
		if node.CatchName != "" {
			r := c.allocReg(node.Location)
			c.code.Emit(bytecode.LOAD_CONST, r, 0, 0, 0, node.Location.Line)
			c.scope.Add(node.CatchName, scope.Var, r)
		}
		c.compileBlockLike(node.Catch.Stmts)
		parent := childScope.Parent()
		c.scope.Destroy()
		c.scope = parent
		c.code.PatchOp1(skip, c.code.Len())
	}
}

func (c *Compiler) compileOnError(node *ast.OnError) {
	if node.Body != nil {
		c.compileBlockLike(node.Body.Stmts)
	}
}

func (c *Compiler) compileSwitch(node *ast.Switch) {
	subjReg := c.compileExpr(node.Subject)
	var endJumps []int
	for _, cs := range node.Cases {
		for _, v := range cs.Values {
			valReg := c.compileExpr(v)
			eqReg := c.allocReg(node.Location)
			c.code.Emit(bytecode.EQ, eqReg, subjReg, valReg, 0, node.Location.Line)
			jz := c.code.Emit(bytecode.JUMP_IF_ZERO, -1, eqReg, 0, 0, node.Location.Line)
			if cs.Body != nil {
				c.compileBlockLike(cs.Body.Stmts)
			}
			endJumps = append(endJumps, c.code.Emit(bytecode.JUMP, -1, 0, 0, 0, node.Location.Line))
			c.code.PatchOp1(jz, c.code.Len())
		}
	}
	if node.Default != nil {
		c.compileBlockLike(node.Default.Stmts)
	}
	end := c.code.Len()
	for _, j := range endJumps {
		c.code.PatchOp1(j, end)
	}
}

// ---- Expressions ----

func (c *Compiler) compileExpr(n ast.Node) int {
	switch e := n.(type) {
	case *ast.Literal:
		return c.compileLiteral(e)
	case *ast.Identifier:
		return c.compileIdentifier(e)
	case *ast.Binary:
		return c.compileBinary(e)
	case *ast.Unary:
		return c.compileUnary(e)
	case *ast.Assign:
		return c.compileAssign(e)
	case *ast.Call:
		return c.compileCall(e)
	case *ast.Interpolation:
		return c.compileInterpolation(e)
	case *ast.ArrayLit:
		return c.compileArrayLit(e)
	case *ast.Index:
		return c.compileIndex(e)
	case *ast.Member:
		return c.compileMember(e)
	default:
		c.errorf(n.Loc(), "unsupported expression kind %T", n)
		return c.allocReg(n.Loc())
	}
}

func (c *Compiler) compileLiteral(e *ast.Literal) int {
	r := c.allocReg(e.Location)
	switch e.Kind {
	case ast.LitInt:
		c.code.Emit(bytecode.LOAD_CONST, r, int(e.IntVal), 0, 0, e.Location.Line)
	case ast.LitBool:
		v := 0
		if e.BoolVal {
			v = 1
		}
		c.code.Emit(bytecode.LOAD_CONST, r, v, 0, 0, e.Location.Line)
	case ast.LitFloat:
		idx := c.code.Intern(fmt.Sprintf("%g", e.FloatVal))
		c.code.Emit(bytecode.LOAD_CONST_FLOAT, r, idx, 0, 0, e.Location.Line)
	case ast.LitString:
		idx := c.code.Intern(e.StringVal)
		c.code.Emit(bytecode.LOAD_CONST_STR, r, idx, 0, 0, e.Location.Line)
	case ast.LitNull:
		c.code.Emit(bytecode.LOAD_CONST, r, 0, 0, 0, e.Location.Line)
	}
	return r
}

// compileIdentifier resolves a name first via scope lookup (returning
// the bound register), second via the function table (returning the
// callee's entry address as an Int constant so it can feed a later
// Call). An unresolved name gets a fresh dummy register and a debug
// diagnostic, with no bytecode emitted (spec §4.4).
func (c *Compiler) compileIdentifier(e *ast.Identifier) int {
	if sym, ok := c.scope.Lookup(e.Name); ok {
		return sym.Register
	}
	if addr, ok := c.code.FuncTable[e.Name]; ok {
		r := c.allocReg(e.Location)
		c.code.Emit(bytecode.LOAD_CONST, r, addr, 0, 0, e.Location.Line)
		return r
	}
	c.errorf(e.Location, "debug: unresolved identifier %q", e.Name)
	return c.allocReg(e.Location)
}

func (c *Compiler) compileBinary(e *ast.Binary) int {
	l := c.compileExpr(e.Left)
	r := c.compileExpr(e.Right)
	d := c.allocReg(e.Location)
	var op bytecode.OpCode
	switch e.Op {
	case "+":
		op = bytecode.ADD
	case "-":
		op = bytecode.SUB
	case "*":
		op = bytecode.MUL
	case "/":
		op = bytecode.DIV
	case "==":
		op = bytecode.EQ
	case "!=":
		op = bytecode.NEQ
	default:
		c.errorf(e.Location, "unsupported binary operator %q", e.Op)
		return d
	}
	c.code.Emit(op, d, l, r, 0, e.Location.Line)
	return d
}

// compileUnary lowers unary minus to LOAD_CONST 0 followed by SUB, and
// passes unary plus through unchanged (spec §4.4).
func (c *Compiler) compileUnary(e *ast.Unary) int {
	if e.Op == "+" {
		return c.compileExpr(e.Operand)
	}
	operand := c.compileExpr(e.Operand)
	d := c.allocReg(e.Location)
	if e.Op == "-" {
		c.code.Emit(bytecode.LOAD_CONST, d, 0, 0, 0, e.Location.Line)
		c.code.Emit(bytecode.SUB, d, d, operand, 0, e.Location.Line)
		return d
	}
	c.errorf(e.Location, "unsupported unary operator %q", e.Op)
	return d
}

func (c *Compiler) compileAssign(e *ast.Assign) int {
	valReg := c.compileExpr(e.Value)
	if sym, ok := c.scope.Lookup(e.Name); ok {
		c.code.Emit(bytecode.MOVE, sym.Register, valReg, 0, 0, e.Location.Line)
		return sym.Register
	}
	c.errorf(e.Location, "assignment to undeclared identifier %q", e.Name)
	return valReg
}

// compileCall implements spec §4.4's Call lowering. An unknown callee
// (no function-table entry) compiles as a native call; a known callee
// shuffles arguments into the callee's parameter registers via MOVE,
// then emits CALL.
func (c *Compiler) compileCall(e *ast.Call) int {
	name, isIdent := calleeName(e.Callee)
	if isIdent {
		if entry, ok := c.code.FuncTable[name]; ok {
			return c.compileKnownCall(e, entry)
		}
	}
	return c.compileNativeCall(e, name)
}

func calleeName(n ast.Node) (string, bool) {
	if id, ok := n.(*ast.Identifier); ok {
		return id.Name, true
	}
	return "", false
}

func (c *Compiler) compileNativeCall(e *ast.Call, name string) int {
	argRegs := make([]int, len(e.Args))
	for i, a := range e.Args {
		argRegs[i] = c.compileExpr(a)
	}
	base := c.stageNativeArgs(argRegs, e.Location)
	d := c.allocReg(e.Location)
	poolIdx := c.code.Intern(name)
	c.code.Emit(bytecode.CALL_NATIVE, d, poolIdx, len(e.Args), base, e.Location.Line)
	return d
}

// stageNativeArgs copies srcRegs into a block of fresh, contiguous
// registers. CALL_NATIVE addresses its arguments as regs[base:base+argc]
// (doCallNative, internal/vm/vm.go), so the source registers an
// expression happened to leave its result in are not safe to pass
// through directly — they are only adjacent by coincidence.
func (c *Compiler) stageNativeArgs(srcRegs []int, loc errors.SourceLocation) int {
	if len(srcRegs) == 0 {
		return 0
	}
	base := c.allocReg(loc)
	c.code.Emit(bytecode.MOVE, base, srcRegs[0], 0, 0, loc.Line)
	for i := 1; i < len(srcRegs); i++ {
		r := c.allocReg(loc)
		c.code.Emit(bytecode.MOVE, r, srcRegs[i], 0, 0, loc.Line)
	}
	return base
}

// compileKnownCall shuffles evaluated arguments into the callee's
// parameter registers (0..n-1). It stages through fresh temporaries
// first so that a later MOVE into a low-numbered parameter slot never
// clobbers a source register an earlier MOVE still needs to read.
func (c *Compiler) compileKnownCall(e *ast.Call, entry int) int {
	argRegs := make([]int, len(e.Args))
	for i, a := range e.Args {
		argRegs[i] = c.compileExpr(a)
	}
	temps := make([]int, len(argRegs))
	for i, r := range argRegs {
		temps[i] = c.allocReg(e.Location)
		c.code.Emit(bytecode.MOVE, temps[i], r, 0, 0, e.Location.Line)
	}
	for i, t := range temps {
		c.code.Emit(bytecode.MOVE, i, t, 0, 0, e.Location.Line)
	}
	c.code.Emit(bytecode.CALL, entry, 0, 0, 0, e.Location.Line)
	return c.allocReg(e.Location)
}

// compileInterpolation coerces each part via the "str" native, per spec
// §4.4/§9, then stages the coerced registers contiguously and
// concatenates them with a single CALL_NATIVE to the host "join" native.
// An interpolation with no parts yields the empty string.
func (c *Compiler) compileInterpolation(e *ast.Interpolation) int {
	strName := c.code.Intern("str")
	var regs []int
	for _, part := range e.Parts {
		r := c.compileExpr(part)
		coerced := c.allocReg(e.Location)
		c.code.Emit(bytecode.CALL_NATIVE, coerced, strName, 1, r, e.Location.Line)
		regs = append(regs, coerced)
	}
	if len(regs) == 0 {
		r := c.allocReg(e.Location)
		c.code.Emit(bytecode.LOAD_CONST_STR, r, c.code.Intern(""), 0, 0, e.Location.Line)
		return r
	}
	joinName := c.code.Intern("join")
	base := c.stageNativeArgs(regs, e.Location)
	d := c.allocReg(e.Location)
	c.code.Emit(bytecode.CALL_NATIVE, d, joinName, len(regs), base, e.Location.Line)
	return d
}

func (c *Compiler) compileArrayLit(e *ast.ArrayLit) int {
	elemRegs := make([]int, len(e.Elements))
	for i, el := range e.Elements {
		elemRegs[i] = c.compileExpr(el)
	}
	base := c.stageNativeArgs(elemRegs, e.Location)
	d := c.allocReg(e.Location)
	listName := c.code.Intern("__list__")
	c.code.Emit(bytecode.CALL_NATIVE, d, listName, len(elemRegs), base, e.Location.Line)
	return d
}

func (c *Compiler) compileIndex(e *ast.Index) int {
	objReg := c.compileExpr(e.Object)
	idxReg := c.compileExpr(e.IndexExp)
	base := c.stageNativeArgs([]int{objReg, idxReg}, e.Location)
	d := c.allocReg(e.Location)
	name := c.code.Intern("__index__")
	c.code.Emit(bytecode.CALL_NATIVE, d, name, 2, base, e.Location.Line)
	return d
}

func (c *Compiler) compileMember(e *ast.Member) int {
	objReg := c.compileExpr(e.Object)
	keyReg := c.allocReg(e.Location)
	c.code.Emit(bytecode.LOAD_CONST_STR, keyReg, c.code.Intern(e.Property), 0, 0, e.Location.Line)
	d := c.allocReg(e.Location)
	c.code.Emit(bytecode.GETPROP, d, objReg, keyReg, 0, e.Location.Line)
	return d
}
