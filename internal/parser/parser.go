// Package parser builds an AST from a lexer's token stream via
// recursive descent with precedence climbing (spec §4.2). The grammar
// is specified at contract level; error recovery skips one token past
// an unexpected one and continues, so a full parse is never aborted by
// a single bad token.
package parser

import (
	"fmt"

	"sentra/internal/ast"
	"sentra/internal/errors"
	"sentra/internal/lexer"
)

// Parser consumes tokens lazily from a Lexer. It buffers at most one
// lookahead token at a time, matching the lexer's own on-demand design.
type Parser struct {
	lex      *lexer.Lexer
	fileName string
	cur      lexer.Token
	errs     []*errors.SentraError
}

func New(lex *lexer.Lexer, fileName string) *Parser {
	p := &Parser{lex: lex, fileName: fileName}
	p.advance()
	return p
}

func (p *Parser) Errors() []*errors.SentraError { return p.errs }

// advance skips whitespace/newline tokens internally (spec §4.2: "skipped
// by peek internally, not by an up-front filter") and loads the next
// significant token into p.cur.
func (p *Parser) advance() lexer.Token {
	prev := p.cur
	for {
		t := p.lex.Next()
		if t.Kind == lexer.TokenWhitespace || t.Kind == lexer.TokenNewline {
			continue
		}
		p.cur = t
		break
	}
	return prev
}

func (p *Parser) check(k lexer.TokenType) bool { return p.cur.Kind == k }

func (p *Parser) match(k lexer.TokenType) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// consume requires the current token to have kind k, advancing past it.
// On mismatch it records a diagnostic and skips one token (spec §4.2
// Recovery), returning the token it actually saw.
func (p *Parser) consume(k lexer.TokenType, context string) lexer.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorf("expected %s %s, found %s %q", k, context, p.cur.Kind, p.cur.Lexeme)
	return p.advance()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	loc := p.cur.Location
	p.errs = append(p.errs, errors.NewSyntaxError(fmt.Sprintf(format, args...), p.fileName, loc.Line, loc.Column))
}

// Parse builds the Program: a sequence of Declarations until EOF,
// wrapped in a Block per spec §4.2.
func (p *Parser) Parse() *ast.Block {
	loc := p.cur.Location
	var decls []ast.Node
	for !p.check(lexer.TokenEOF) {
		decls = append(decls, p.parseDeclaration())
	}
	return &ast.Block{Stmts: decls, Location: loc}
}

func (p *Parser) parseDeclaration() ast.Node {
	switch p.cur.Kind {
	case lexer.TokenFrame:
		return p.parseFrame()
	case lexer.TokenFunc, lexer.TokenFunction:
		return p.parseFuncDecl()
	case lexer.TokenClass:
		return p.parseClassDecl()
	case lexer.TokenImport:
		return p.parseImportDecl()
	case lexer.TokenVar, lexer.TokenConst:
		return p.parseVarDecl()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseFrame() ast.Node {
	loc := p.cur.Location
	p.advance() // frame
	name := p.consume(lexer.TokenIdentifier, "frame name").Lexeme
	p.consume(lexer.TokenLBrace, "after frame name")
	var body []ast.Node
	for !p.check(lexer.TokenRBrace) && !p.check(lexer.TokenEOF) {
		body = append(body, p.parseDeclaration())
	}
	p.consume(lexer.TokenRBrace, "to close frame body")
	return &ast.Frame{Name: name, Body: body, Location: loc}
}

func (p *Parser) parseFuncDecl() ast.Node {
	loc := p.cur.Location
	p.advance() // func/function
	name := p.consume(lexer.TokenIdentifier, "function name").Lexeme
	p.consume(lexer.TokenLParen, "after function name")
	var params []string
	for !p.check(lexer.TokenRParen) && !p.check(lexer.TokenEOF) {
		params = append(params, p.consume(lexer.TokenIdentifier, "parameter name").Lexeme)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRParen, "to close parameter list")
	body := p.parseBlock()
	return &ast.FuncDecl{Name: name, Params: params, Body: body, Location: loc}
}

func (p *Parser) parseClassDecl() ast.Node {
	loc := p.cur.Location
	p.advance() // class
	name := p.consume(lexer.TokenIdentifier, "class name").Lexeme
	p.consume(lexer.TokenLBrace, "after class name")
	var members []ast.Node
	for !p.check(lexer.TokenRBrace) && !p.check(lexer.TokenEOF) {
		members = append(members, p.parseDeclaration())
	}
	p.consume(lexer.TokenRBrace, "to close class body")
	return &ast.ClassDecl{Name: name, Members: members, Location: loc}
}

func (p *Parser) parseImportDecl() ast.Node {
	loc := p.cur.Location
	p.advance() // import
	path := p.consume(lexer.TokenString, "import path").Decoded.String
	var alias string
	if p.check(lexer.TokenIdentifier) {
		alias = p.advance().Lexeme
	}
	p.match(lexer.TokenSemi)
	return &ast.ImportDecl{Path: path, Alias: alias, Location: loc}
}

func (p *Parser) parseVarDecl() ast.Node {
	loc := p.cur.Location
	isConst := p.check(lexer.TokenConst)
	p.advance() // var/const
	name := p.consume(lexer.TokenIdentifier, "variable name").Lexeme
	var initializer ast.Node
	if p.match(lexer.TokenEq) {
		initializer = p.parseExpr()
	}
	p.match(lexer.TokenSemi)
	return &ast.VarDecl{Name: name, Const: isConst, Initializer: initializer, Location: loc}
}

func (p *Parser) parseBlock() *ast.Block {
	loc := p.cur.Location
	p.consume(lexer.TokenLBrace, "to start block")
	var stmts []ast.Node
	for !p.check(lexer.TokenRBrace) && !p.check(lexer.TokenEOF) {
		stmts = append(stmts, p.parseDeclaration())
	}
	p.consume(lexer.TokenRBrace, "to close block")
	return &ast.Block{Stmts: stmts, Location: loc}
}

func (p *Parser) parseStatement() ast.Node {
	switch p.cur.Kind {
	case lexer.TokenIf:
		return p.parseIf()
	case lexer.TokenWhile, lexer.TokenLoop:
		return p.parseWhile()
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenSwitch:
		return p.parseSwitch()
	case lexer.TokenTry:
		return p.parseTryCatch()
	case lexer.TokenOnError:
		return p.parseOnError()
	case lexer.TokenReturn:
		return p.parseReturn()
	case lexer.TokenBreak:
		loc := p.cur.Location
		p.advance()
		p.match(lexer.TokenSemi)
		return &ast.Break{Location: loc}
	case lexer.TokenContinue:
		loc := p.cur.Location
		p.advance()
		p.match(lexer.TokenSemi)
		return &ast.Continue{Location: loc}
	case lexer.TokenLBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseIf() ast.Node {
	loc := p.cur.Location
	p.advance() // if
	p.consume(lexer.TokenLParen, "after if")
	cond := p.parseExpr()
	p.consume(lexer.TokenRParen, "to close if condition")
	then := p.parseBlock()
	var els ast.Node
	if p.check(lexer.TokenElif) {
		els = p.parseElif()
	} else if p.match(lexer.TokenElse) {
		els = p.parseBlock()
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Location: loc}
}

func (p *Parser) parseElif() ast.Node {
	loc := p.cur.Location
	p.advance() // elif
	p.consume(lexer.TokenLParen, "after elif")
	cond := p.parseExpr()
	p.consume(lexer.TokenRParen, "to close elif condition")
	then := p.parseBlock()
	var els ast.Node
	if p.check(lexer.TokenElif) {
		els = p.parseElif()
	} else if p.match(lexer.TokenElse) {
		els = p.parseBlock()
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Location: loc}
}

func (p *Parser) parseWhile() ast.Node {
	loc := p.cur.Location
	p.advance() // while/loop
	p.consume(lexer.TokenLParen, "after while")
	cond := p.parseExpr()
	p.consume(lexer.TokenRParen, "to close while condition")
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Location: loc}
}

// parseFor handles both the classic C-style `for(init; cond; update)`
// and the `for (x in coll)` collection form, per spec §4.2's Statement
// grammar and the compiler's for-in lowering rule.
func (p *Parser) parseFor() ast.Node {
	loc := p.cur.Location
	p.advance() // for
	p.consume(lexer.TokenLParen, "after for")

	if p.check(lexer.TokenIdentifier) {
		save := p.cur
		ident := p.advance()
		if p.match(lexer.TokenIn) {
			coll := p.parseExpr()
			p.consume(lexer.TokenRParen, "to close for-in")
			body := p.parseBlock()
			return &ast.For{ForInVar: ident.Lexeme, ForInColl: coll, Body: body, Location: loc}
		}
		// Not a for-in: re-synthesize the identifier as the start of the
		// init-clause expression by parsing it through the precedence
		// chain starting from an Identifier primary we already consumed.
		initExpr := p.parseExprContinuation(&ast.Identifier{Name: save.Lexeme, Location: save.Location})
		p.consume(lexer.TokenSemi, "after for-init")
		return p.parseClassicFor(loc, &ast.ExprStmt{Expr: initExpr, Location: save.Location})
	}

	var init ast.Node
	if p.check(lexer.TokenVar) || p.check(lexer.TokenConst) {
		init = p.parseVarDecl()
	} else if !p.check(lexer.TokenSemi) {
		init = p.parseExprStmt()
	} else {
		p.match(lexer.TokenSemi)
	}
	return p.parseClassicFor(loc, init)
}

func (p *Parser) parseClassicFor(loc errors.SourceLocation, init ast.Node) ast.Node {
	var cond ast.Node
	if !p.check(lexer.TokenSemi) {
		cond = p.parseExpr()
	}
	p.consume(lexer.TokenSemi, "after for-condition")
	var update ast.Node
	if !p.check(lexer.TokenRParen) {
		update = p.parseExpr()
	}
	p.consume(lexer.TokenRParen, "to close for-clauses")
	body := p.parseBlock()
	return &ast.For{Init: init, Cond: cond, Update: update, Body: body, Location: loc}
}

func (p *Parser) parseSwitch() ast.Node {
	loc := p.cur.Location
	p.advance() // switch
	p.consume(lexer.TokenLParen, "after switch")
	subject := p.parseExpr()
	p.consume(lexer.TokenRParen, "to close switch subject")
	p.consume(lexer.TokenLBrace, "to start switch body")

	var cases []ast.SwitchCase
	var def *ast.Block
	for !p.check(lexer.TokenRBrace) && !p.check(lexer.TokenEOF) {
		if p.cur.Kind == lexer.TokenIdentifier && p.cur.Lexeme == "case" {
			p.advance()
			var values []ast.Node
			values = append(values, p.parseExpr())
			for p.match(lexer.TokenComma) {
				values = append(values, p.parseExpr())
			}
			p.consume(lexer.TokenColon, "after case values")
			body := p.parseCaseBody()
			cases = append(cases, ast.SwitchCase{Values: values, Body: body})
		} else if p.cur.Lexeme == "default" {
			p.advance()
			p.consume(lexer.TokenColon, "after default")
			def = p.parseCaseBody()
		} else {
			p.errorf("expected case or default in switch body, found %s %q", p.cur.Kind, p.cur.Lexeme)
			p.advance()
		}
	}
	p.consume(lexer.TokenRBrace, "to close switch body")
	return &ast.Switch{Subject: subject, Cases: cases, Default: def, Location: loc}
}

// parseCaseBody collects statements until the next case/default/closing
// brace, without requiring an explicit block delimiter.
func (p *Parser) parseCaseBody() *ast.Block {
	loc := p.cur.Location
	var stmts []ast.Node
	for !p.check(lexer.TokenRBrace) && !p.check(lexer.TokenEOF) &&
		p.cur.Lexeme != "case" && p.cur.Lexeme != "default" {
		stmts = append(stmts, p.parseDeclaration())
	}
	return &ast.Block{Stmts: stmts, Location: loc}
}

func (p *Parser) parseTryCatch() ast.Node {
	loc := p.cur.Location
	p.advance() // try
	tryBlock := p.parseBlock()
	var catchName string
	var catchBlock *ast.Block
	if p.match(lexer.TokenCatch) {
		if p.match(lexer.TokenLParen) {
			catchName = p.consume(lexer.TokenIdentifier, "catch binding name").Lexeme
			p.consume(lexer.TokenRParen, "to close catch binding")
		}
		catchBlock = p.parseBlock()
	}
	return &ast.TryCatch{Try: tryBlock, CatchName: catchName, Catch: catchBlock, Location: loc}
}

func (p *Parser) parseOnError() ast.Node {
	loc := p.cur.Location
	p.advance() // on_error
	body := p.parseBlock()
	retry := false
	reset := false
	if p.match(lexer.TokenRetry) {
		retry = true
		p.match(lexer.TokenSemi)
	} else if p.match(lexer.TokenReset) {
		reset = true
		p.match(lexer.TokenSemi)
	}
	return &ast.OnError{Body: body, Retry: retry, Reset: reset, Location: loc}
}

func (p *Parser) parseReturn() ast.Node {
	loc := p.cur.Location
	p.advance() // return
	var val ast.Node
	if !p.check(lexer.TokenSemi) && !p.check(lexer.TokenRBrace) {
		val = p.parseExpr()
	}
	p.match(lexer.TokenSemi)
	return &ast.Return{Value: val, Location: loc}
}

func (p *Parser) parseExprStmt() ast.Node {
	loc := p.cur.Location
	expr := p.parseExpr()
	p.match(lexer.TokenSemi)
	return &ast.ExprStmt{Expr: expr, Location: loc}
}

// ---- Expressions: precedence climbing per spec §4.2, lowest to
// highest: assignment (right-assoc), logical-or, logical-and,
// bitwise-or, bitwise-xor, bitwise-and, equality, comparison, additive,
// multiplicative, power (right-assoc), unary, primary. ----

func (p *Parser) parseExpr() ast.Node {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Node {
	left := p.parseLogicalOr()
	if p.check(lexer.TokenEq) {
		loc := p.cur.Location
		p.advance()
		value := p.parseAssignment()
		if id, ok := left.(*ast.Identifier); ok {
			return &ast.Assign{Name: id.Name, Value: value, Location: loc}
		}
		p.errorf("left-hand side of assignment must be an identifier")
		return value
	}
	return left
}

func (p *Parser) parseLogicalOr() ast.Node {
	left := p.parseLogicalAnd()
	for p.check(lexer.TokenOrOr) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseLogicalAnd()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Node {
	left := p.parseBitwiseOr()
	for p.check(lexer.TokenAndAnd) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseBitwiseOr()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseBitwiseOr() ast.Node {
	left := p.parseBitwiseXor()
	for p.check(lexer.TokenPipe) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseBitwiseXor()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseBitwiseXor() ast.Node {
	left := p.parseBitwiseAnd()
	for p.check(lexer.TokenCaret) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseBitwiseAnd()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseBitwiseAnd() ast.Node {
	left := p.parseEquality()
	for p.check(lexer.TokenAmp) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseEquality()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseEquality() ast.Node {
	left := p.parseComparison()
	for p.check(lexer.TokenEqEq) || p.check(lexer.TokenNotEq) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseComparison()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseComparison() ast.Node {
	left := p.parseAdditive()
	for p.check(lexer.TokenLt) || p.check(lexer.TokenGt) || p.check(lexer.TokenLe) || p.check(lexer.TokenGe) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseAdditive()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Node {
	left := p.parseMultiplicative()
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseMultiplicative()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Node {
	left := p.parsePower()
	for p.check(lexer.TokenStar) || p.check(lexer.TokenSlash) || p.check(lexer.TokenPercent) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parsePower()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

// parsePower is right-associative, unlike the layers below it.
func (p *Parser) parsePower() ast.Node {
	left := p.parseUnary()
	if p.check(lexer.TokenCaret) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parsePower()
		return &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseUnary() ast.Node {
	if p.check(lexer.TokenMinus) || p.check(lexer.TokenPlus) || p.check(lexer.TokenBang) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		operand := p.parseUnary()
		return &ast.Unary{Op: op, Operand: operand, Location: loc}
	}
	return p.parseCallSuffix(p.parsePrimary())
}

// parseCallSuffix implements spec §4.2's call-suffix rule: while the
// next token is `(`, `[`, or `.`, fold the previous node into a Call,
// Index, or Member node.
func (p *Parser) parseCallSuffix(base ast.Node) ast.Node {
	for {
		switch p.cur.Kind {
		case lexer.TokenLParen:
			loc := p.cur.Location
			p.advance()
			var args []ast.Node
			for !p.check(lexer.TokenRParen) && !p.check(lexer.TokenEOF) {
				args = append(args, p.parseExpr())
				if !p.match(lexer.TokenComma) {
					break
				}
			}
			p.consume(lexer.TokenRParen, "to close call arguments")
			base = &ast.Call{Callee: base, Args: args, Location: loc}
		case lexer.TokenLBracket:
			loc := p.cur.Location
			p.advance()
			idx := p.parseExpr()
			p.consume(lexer.TokenRBracket, "to close index expression")
			base = &ast.Index{Object: base, IndexExp: idx, Location: loc}
		case lexer.TokenDot:
			loc := p.cur.Location
			p.advance()
			name := p.consume(lexer.TokenIdentifier, "member name").Lexeme
			base = &ast.Member{Object: base, Property: name, Location: loc}
		default:
			return base
		}
	}
}

// parseExprContinuation re-enters the precedence chain above the
// already-consumed primary identifier produced while disambiguating
// for-in from classic for. It mirrors parseCallSuffix and the binary
// layers but starts from a given left operand instead of parsePrimary.
func (p *Parser) parseExprContinuation(ident ast.Node) ast.Node {
	base := p.parseCallSuffix(ident)
	// Continue through the binary/assignment layers manually, since the
	// normal entry points always start from parsePrimary.
	left := p.parsePowerFrom(base)
	left = p.parseMultiplicativeFrom(left)
	left = p.parseAdditiveFrom(left)
	left = p.parseComparisonFrom(left)
	left = p.parseEqualityFrom(left)
	left = p.parseBitwiseAndFrom(left)
	left = p.parseBitwiseXorFrom(left)
	left = p.parseBitwiseOrFrom(left)
	left = p.parseLogicalAndFrom(left)
	left = p.parseLogicalOrFrom(left)
	if p.check(lexer.TokenEq) {
		loc := p.cur.Location
		p.advance()
		value := p.parseAssignment()
		if id, ok := left.(*ast.Identifier); ok {
			return &ast.Assign{Name: id.Name, Value: value, Location: loc}
		}
		p.errorf("left-hand side of assignment must be an identifier")
		return value
	}
	return left
}

func (p *Parser) parsePowerFrom(left ast.Node) ast.Node {
	if p.check(lexer.TokenCaret) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parsePower()
		return &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseMultiplicativeFrom(left ast.Node) ast.Node {
	for p.check(lexer.TokenStar) || p.check(lexer.TokenSlash) || p.check(lexer.TokenPercent) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parsePower()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseAdditiveFrom(left ast.Node) ast.Node {
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseMultiplicative()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseComparisonFrom(left ast.Node) ast.Node {
	for p.check(lexer.TokenLt) || p.check(lexer.TokenGt) || p.check(lexer.TokenLe) || p.check(lexer.TokenGe) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseAdditive()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseEqualityFrom(left ast.Node) ast.Node {
	for p.check(lexer.TokenEqEq) || p.check(lexer.TokenNotEq) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseComparison()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseBitwiseAndFrom(left ast.Node) ast.Node {
	for p.check(lexer.TokenAmp) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseEquality()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseBitwiseXorFrom(left ast.Node) ast.Node {
	for p.check(lexer.TokenCaret) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseBitwiseAnd()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseBitwiseOrFrom(left ast.Node) ast.Node {
	for p.check(lexer.TokenPipe) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseBitwiseXor()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseLogicalAndFrom(left ast.Node) ast.Node {
	for p.check(lexer.TokenAndAnd) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseBitwiseOr()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

func (p *Parser) parseLogicalOrFrom(left ast.Node) ast.Node {
	for p.check(lexer.TokenOrOr) {
		loc := p.cur.Location
		op := string(p.advance().Kind)
		right := p.parseLogicalAnd()
		left = &ast.Binary{Op: op, Left: left, Right: right, Location: loc}
	}
	return left
}

// parsePrimary covers literals, parenthesized expressions, identifiers
// (call suffixes are handled by parseCallSuffix), interpolation,
// docstrings, and regex (spec §4.2).
func (p *Parser) parsePrimary() ast.Node {
	tok := p.cur
	switch tok.Kind {
	case lexer.TokenInteger:
		p.advance()
		return &ast.Literal{Kind: ast.LitInt, IntVal: tok.Decoded.Int, Location: tok.Location}
	case lexer.TokenFloat:
		p.advance()
		return &ast.Literal{Kind: ast.LitFloat, FloatVal: tok.Decoded.Float, Location: tok.Location}
	case lexer.TokenBoolean:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, BoolVal: tok.Decoded.Bool, Location: tok.Location}
	case lexer.TokenNull:
		p.advance()
		return &ast.Literal{Kind: ast.LitNull, Location: tok.Location}
	case lexer.TokenString, lexer.TokenDocstring, lexer.TokenRegex:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, StringVal: tok.Decoded.String, Location: tok.Location}
	case lexer.TokenInterpolationStart:
		return p.parseInterpolation()
	case lexer.TokenIdentifier:
		p.advance()
		return &ast.Identifier{Name: tok.Lexeme, Location: tok.Location}
	case lexer.TokenLParen:
		p.advance()
		inner := p.parseExpr()
		p.consume(lexer.TokenRParen, "to close parenthesized expression")
		return inner
	case lexer.TokenLBracket:
		return p.parseArrayLit()
	default:
		p.errorf("unexpected token %s %q in expression", tok.Kind, tok.Lexeme)
		p.advance()
		return &ast.Literal{Kind: ast.LitNull, Location: tok.Location}
	}
}

// parseInterpolation consumes the String/InterpolationStart/expr/
// InterpolationEnd token sequence the lexer produces for `"a${e}b"`
// (spec §4.1/§9) and rebuilds the alternating Parts list.
func (p *Parser) parseInterpolation() ast.Node {
	loc := p.cur.Location
	var parts []ast.Node
	for p.check(lexer.TokenInterpolationStart) || p.check(lexer.TokenString) {
		if p.check(lexer.TokenString) {
			tok := p.advance()
			parts = append(parts, &ast.Literal{Kind: ast.LitString, StringVal: tok.Decoded.String, Location: tok.Location})
			continue
		}
		start := p.advance() // InterpolationStart, carrying the text before ${
		parts = append(parts, &ast.Literal{Kind: ast.LitString, StringVal: start.Decoded.String, Location: start.Location})
		parts = append(parts, p.parseExpr())
		p.consume(lexer.TokenInterpolationEnd, "to close interpolated expression")
	}
	return &ast.Interpolation{Parts: parts, Location: loc}
}

func (p *Parser) parseArrayLit() ast.Node {
	loc := p.cur.Location
	p.advance() // [
	var elems []ast.Node
	for !p.check(lexer.TokenRBracket) && !p.check(lexer.TokenEOF) {
		elems = append(elems, p.parseExpr())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBracket, "to close array literal")
	return &ast.ArrayLit{Elements: elems, Location: loc}
}
