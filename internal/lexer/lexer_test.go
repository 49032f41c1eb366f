package lexer

import (
	"testing"

	"sentra/internal/errors"
)

func tokens(src string) []Token {
	l := NewFromString(src, DefaultConfig("test.osfl"))
	var out []Token
	for {
		t := l.Next()
		out = append(out, t)
		if t.Kind == TokenEOF {
			break
		}
	}
	return out
}

func TestEOFHasEmptyLexeme(t *testing.T) {
	toks := tokens("")
	last := toks[len(toks)-1]
	if last.Kind != TokenEOF || last.Lexeme != "" {
		t.Errorf("expected empty-lexeme EOF, got %+v", last)
	}
}

func TestTokenLocationsAreOneIndexed(t *testing.T) {
	toks := tokens("x")
	if toks[0].Location.Line < 1 || toks[0].Location.Column < 1 {
		t.Errorf("expected 1-indexed line/column, got %+v", toks[0].Location)
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := tokens("frame func var x")
	want := []TokenType{TokenFrame, TokenFunc, TokenVar, TokenIdentifier, TokenEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestIntegerAndFloatLiterals(t *testing.T) {
	toks := tokens("42 3.14")
	if toks[0].Kind != TokenInteger || toks[0].Decoded.Int != 42 {
		t.Errorf("expected integer 42, got %+v", toks[0])
	}
	if toks[1].Kind != TokenFloat || toks[1].Decoded.Float != 3.14 {
		t.Errorf("expected float 3.14, got %+v", toks[1])
	}
}

func TestHexAndBinaryPrefixes(t *testing.T) {
	toks := tokens("0xFF 0b101 0o17")
	if toks[0].Decoded.Int != 0xFF {
		t.Errorf("0xFF: got %d", toks[0].Decoded.Int)
	}
	if toks[1].Decoded.Int != 5 {
		t.Errorf("0b101: got %d", toks[1].Decoded.Int)
	}
	if toks[2].Decoded.Int != 15 {
		t.Errorf("0o17: got %d", toks[2].Decoded.Int)
	}
}

func TestSimpleString(t *testing.T) {
	toks := tokens(`"hello"`)
	if toks[0].Kind != TokenString || toks[0].Decoded.String != "hello" {
		t.Errorf("expected string hello, got %+v", toks[0])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := tokens(`"a\nb\tc\\d\"e"`)
	want := "a\nb\tc\\d\"e"
	if toks[0].Decoded.String != want {
		t.Errorf("got %q, want %q", toks[0].Decoded.String, want)
	}
}

func TestInvalidEscapeIsLexError(t *testing.T) {
	l := NewFromString(`"a\qb"`, DefaultConfig("test.osfl"))
	_ = l.Next()
	if l.LastError().Kind != errors.LexInvalidEscape {
		t.Errorf("expected LexInvalidEscape, got %v", l.LastError().Kind)
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	l := NewFromString(`"abc`, DefaultConfig("test.osfl"))
	tok := l.Next()
	if tok.Kind != TokenError {
		t.Fatalf("expected TokenError for unterminated string, got %s", tok.Kind)
	}
}

func TestStringInterpolationSplitsTokens(t *testing.T) {
	toks := tokens(`"a${x}b"`)
	var kinds []TokenType
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
		if tk.Kind == TokenEOF {
			break
		}
	}
	foundStart, foundEnd := false, false
	for _, k := range kinds {
		if k == TokenInterpolationStart {
			foundStart = true
		}
		if k == TokenInterpolationEnd {
			foundEnd = true
		}
	}
	if !foundStart || !foundEnd {
		t.Errorf("expected interpolation start/end tokens, got %v", kinds)
	}
}

func TestLineCommentSkipped(t *testing.T) {
	toks := tokens("x // comment\ny")
	if toks[0].Kind != TokenIdentifier || toks[0].Lexeme != "x" {
		t.Fatalf("expected x, got %+v", toks[0])
	}
	if toks[1].Kind != TokenIdentifier || toks[1].Lexeme != "y" {
		t.Fatalf("expected y after comment, got %+v", toks[1])
	}
}

func TestBlockCommentUnterminatedReportsError(t *testing.T) {
	l := NewFromString("/* never closed", DefaultConfig("test.osfl"))
	tok := l.Next()
	if tok.Kind != TokenEOF {
		t.Fatalf("expected EOF after swallowing unterminated comment, got %s", tok.Kind)
	}
	if l.LastError().Kind != errors.LexUnterminatedComment {
		t.Errorf("expected LexUnterminatedComment, got %v", l.LastError().Kind)
	}
}

func TestOperators(t *testing.T) {
	toks := tokens("+ - * / == != -> => ::")
	want := []TokenType{TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenEqEq, TokenNotEq, TokenArrowR, TokenFatArrow, TokenDblColon, TokenEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestDivisionVsRegexDisambiguation(t *testing.T) {
	toks := tokens("a / b")
	if toks[1].Kind != TokenSlash {
		t.Errorf("expected division slash, got %s", toks[1].Kind)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := NewFromString("x y", DefaultConfig("test.osfl"))
	peeked := l.Peek()
	first := l.Next()
	if peeked.Lexeme != first.Lexeme {
		t.Errorf("Peek() token %+v did not match following Next() token %+v", peeked, first)
	}
}
