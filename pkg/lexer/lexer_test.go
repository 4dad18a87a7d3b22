package lexer

import (
	"testing"

	"github.com/thomasrohde/taco/pkg/diagnostics"
	"github.com/thomasrohde/taco/pkg/token"
)

// helper to scan and fail on any lex error
func mustScan(t *testing.T, source string) []token.Token {
	t.Helper()
	tokens, errs := Tokenize(source)
	if len(errs) > 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustScanNoEOF(t *testing.T, source string) []token.Token {
	t.Helper()
	tokens := mustScan(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != token.EOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func types(tokens []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func expectTypes(t *testing.T, got []token.Token, want ...token.TokenType) {
	t.Helper()
	gotTypes := types(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("expected %d tokens %v, got %d %v", len(want), want, len(gotTypes), gotTypes)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, gotTypes[i], want[i])
		}
	}
}

// assertSingleEOF checks the stream invariant: exactly one EOF, at the end.
func assertSingleEOF(t *testing.T, tokens []token.Token) {
	t.Helper()
	count := 0
	for _, tok := range tokens {
		if tok.Type == token.EOF {
			count++
		}
	}
	if count != 1 || tokens[len(tokens)-1].Type != token.EOF {
		t.Fatalf("expected exactly one trailing EOF, got %v", types(tokens))
	}
}

// ---------------------------------------------------------------------------
// Test: empty input produces only EOF
// ---------------------------------------------------------------------------
func TestEmptyInput(t *testing.T) {
	tokens := mustScan(t, "")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token (EOF), got %d", len(tokens))
	}
	if tokens[0].Type != token.EOF {
		t.Errorf("expected EOF, got %v", tokens[0].Type)
	}
	if tokens[0].Line != 1 {
		t.Errorf("expected EOF on line 1, got %d", tokens[0].Line)
	}
}

// ---------------------------------------------------------------------------
// Test: punctuation and operators
// ---------------------------------------------------------------------------
func TestSingleCharTokens(t *testing.T) {
	tokens := mustScanNoEOF(t, "(){},.-+;/ *")
	expectTypes(t, tokens,
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Slash, token.Star,
	)
	for _, tok := range tokens {
		if tok.Literal != tok.Lexeme {
			t.Errorf("%s: literal %q should equal lexeme %q", tok.Type, tok.Literal, tok.Lexeme)
		}
	}
}

func TestOneOrTwoCharTokens(t *testing.T) {
	tests := []struct {
		input string
		want  token.TokenType
	}{
		{"!", token.Bang},
		{"!=", token.BangEqual},
		{"=", token.Equal},
		{"==", token.EqualEqual},
		{">", token.Greater},
		{">=", token.GreaterEqual},
		{"<", token.Less},
		{"<=", token.LessEqual},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustScanNoEOF(t, tt.input)
			expectTypes(t, tokens, tt.want)
			if tokens[0].Lexeme != tt.input {
				t.Errorf("got lexeme %q, want %q", tokens[0].Lexeme, tt.input)
			}
		})
	}
}

func TestOperatorSequences(t *testing.T) {
	tokens := mustScanNoEOF(t, "!==>=<=!")
	expectTypes(t, tokens, token.BangEqual, token.Equal, token.GreaterEqual, token.LessEqual, token.Bang)

	tokens = mustScanNoEOF(t, "!=====")
	expectTypes(t, tokens, token.BangEqual, token.EqualEqual, token.EqualEqual)

	tokens = mustScanNoEOF(t, "= =")
	expectTypes(t, tokens, token.Equal, token.Equal)
}

// ---------------------------------------------------------------------------
// Test: keywords
// ---------------------------------------------------------------------------
func TestKeywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected token.TokenType
	}{
		{"and", token.And},
		{"class", token.Class},
		{"else", token.Else},
		{"false", token.False},
		{"function", token.Function},
		{"taco", token.Function},
		{"for", token.For},
		{"if", token.If},
		{"nil", token.Nil},
		{"or", token.Or},
		{"print", token.Print},
		{"return", token.Return},
		{"super", token.Super},
		{"this", token.This},
		{"true", token.True},
		{"let", token.Let},
		{"while", token.While},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tokens := mustScanNoEOF(t, tt.keyword)
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}
			if tokens[0].Type != tt.expected {
				t.Errorf("expected token type %s, got %s", tt.expected, tokens[0].Type)
			}
			if tokens[0].Lexeme != tt.keyword {
				t.Errorf("expected lexeme %q, got %q", tt.keyword, tokens[0].Lexeme)
			}
		})
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected token.TokenType
	}{
		{"let keyword", "let", token.Let},
		{"letter is ident", "letter", token.Identifier},
		{"print keyword", "print", token.Print},
		{"printer is ident", "printer", token.Identifier},
		{"nil keyword", "nil", token.Nil},
		{"nils is ident", "nils", token.Identifier},
		{"or keyword", "or", token.Or},
		{"order is ident", "order", token.Identifier},
		{"taco keyword", "taco", token.Function},
		{"tacos is ident", "tacos", token.Identifier},
		{"underscore prefix", "_let", token.Identifier},
		{"digits inside", "x1y2", token.Identifier},
		{"unicode letters", "größe", token.Identifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := mustScanNoEOF(t, tt.input)
			expectTypes(t, tokens, tt.expected)
			if tokens[0].Lexeme != tt.input {
				t.Errorf("got lexeme %q, want %q", tokens[0].Lexeme, tt.input)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: numbers
// ---------------------------------------------------------------------------
func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		typ     token.TokenType
		literal string
	}{
		{"0", token.Integer, "0"},
		{"42", token.Integer, "42"},
		{"007", token.Integer, "007"},
		{"3.14", token.Float, "3.14"},
		{"0.5", token.Float, "0.5"},
		{"10.0", token.Float, "10.0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustScanNoEOF(t, tt.input)
			expectTypes(t, tokens, tt.typ)
			if tokens[0].Literal != tt.literal {
				t.Errorf("got literal %q, want %q", tokens[0].Literal, tt.literal)
			}
		})
	}
}

func TestNumberTrailingDot(t *testing.T) {
	tokens := mustScanNoEOF(t, "1.")
	expectTypes(t, tokens, token.Integer, token.Dot)

	tokens = mustScanNoEOF(t, "1.x")
	expectTypes(t, tokens, token.Integer, token.Dot, token.Identifier)
}

func TestLeadingDotIsNotFloat(t *testing.T) {
	tokens := mustScanNoEOF(t, ".5")
	expectTypes(t, tokens, token.Dot, token.Integer)
}

func TestNegativeNumberIsTwoTokens(t *testing.T) {
	tokens := mustScanNoEOF(t, "-7")
	expectTypes(t, tokens, token.Minus, token.Integer)
}

// ---------------------------------------------------------------------------
// Test: strings
// ---------------------------------------------------------------------------
func TestString(t *testing.T) {
	tokens := mustScanNoEOF(t, `"hello world"`)
	expectTypes(t, tokens, token.String)
	if tokens[0].Literal != "hello world" {
		t.Errorf("got literal %q", tokens[0].Literal)
	}
	if tokens[0].Lexeme != `"hello world"` {
		t.Errorf("got lexeme %q", tokens[0].Lexeme)
	}
}

func TestEmptyString(t *testing.T) {
	tokens := mustScanNoEOF(t, `""`)
	expectTypes(t, tokens, token.String)
	if tokens[0].Literal != "" {
		t.Errorf("got literal %q, want empty", tokens[0].Literal)
	}
}

func TestStringWithDigitsStaysString(t *testing.T) {
	tokens := mustScanNoEOF(t, `"123"`)
	expectTypes(t, tokens, token.String)
	if tokens[0].Literal != "123" {
		t.Errorf("got literal %q", tokens[0].Literal)
	}
}

func TestUnicodeString(t *testing.T) {
	tokens := mustScanNoEOF(t, `"¡hola, señor! 🌮"`)
	if tokens[0].Literal != "¡hola, señor! 🌮" {
		t.Errorf("got literal %q", tokens[0].Literal)
	}
}

func TestUnterminatedStringAtEOF(t *testing.T) {
	var c diagnosticsCounter
	tokens, errs := Scan(`"abc`, &c)
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 lex error, got %d", len(errs))
	}
	if errs[0].Message != MsgUnterminatedString {
		t.Errorf("got message %q", errs[0].Message)
	}
	if c.n != 1 {
		t.Errorf("expected 1 reported diagnostic, got %d", c.n)
	}
	assertSingleEOF(t, tokens)
	if len(tokens) != 1 {
		t.Errorf("expected only EOF, got %v", types(tokens))
	}
}

func TestUnterminatedStringAtNewlineContinues(t *testing.T) {
	tokens, errs := Tokenize("let s = \"abc\nprint 1;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(errs))
	}
	if errs[0].Line != 1 {
		t.Errorf("expected error on line 1, got %d", errs[0].Line)
	}
	expectTypes(t, tokens,
		token.Let, token.Identifier, token.Equal,
		token.Print, token.Integer, token.Semicolon, token.EOF,
	)
	if tokens[3].Line != 2 {
		t.Errorf("expected print on line 2, got %d", tokens[3].Line)
	}
}

func TestMultilineString(t *testing.T) {
	tokens := mustScan(t, "`line one\nline two`\nx")
	expectTypes(t, tokens, token.String, token.Identifier, token.EOF)
	if tokens[0].Literal != "line one\nline two" {
		t.Errorf("got literal %q", tokens[0].Literal)
	}
	if tokens[0].Line != 1 {
		t.Errorf("expected string to start on line 1, got %d", tokens[0].Line)
	}
	if tokens[1].Line != 3 {
		t.Errorf("expected identifier on line 3, got %d", tokens[1].Line)
	}
}

func TestUnterminatedMultilineString(t *testing.T) {
	tokens, errs := Tokenize("`abc\ndef")
	if len(errs) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(errs))
	}
	if !errs[0].Incomplete {
		t.Error("expected error to be marked incomplete")
	}
	if errs[0].Line != 2 {
		t.Errorf("expected error on line 2, got %d", errs[0].Line)
	}
	assertSingleEOF(t, tokens)
}

// ---------------------------------------------------------------------------
// Test: comments
// ---------------------------------------------------------------------------
func TestLineComment(t *testing.T) {
	tokens := mustScan(t, "1 # one\n2")
	expectTypes(t, tokens, token.Integer, token.Integer, token.EOF)
	if tokens[1].Line != 2 {
		t.Errorf("expected second integer on line 2, got %d", tokens[1].Line)
	}
}

func TestCommentOnlyInput(t *testing.T) {
	tokens := mustScan(t, "# nothing to see")
	expectTypes(t, tokens, token.EOF)
}

func TestBlockComment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.TokenType
		line  int // line of the last real token
	}{
		{"simple", "1 /* two */ 3", []token.TokenType{token.Integer, token.Integer, token.EOF}, 1},
		{"interior star slash", "1 /* * / */ 3", []token.TokenType{token.Integer, token.Integer, token.EOF}, 1},
		{"extra stars", "1 /*** x ***/ 3", []token.TokenType{token.Integer, token.Integer, token.EOF}, 1},
		{"empty", "/**/ 3", []token.TokenType{token.Integer, token.EOF}, 1},
		{"slashes inside", "/* a // b / c */ 3", []token.TokenType{token.Integer, token.EOF}, 1},
		{"multi line", "/* a\nb\nc */ 3", []token.TokenType{token.Integer, token.EOF}, 3},
		{"stops at first close", "/* a */ * / 3", []token.TokenType{token.Star, token.Slash, token.Integer, token.EOF}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := mustScan(t, tt.input)
			expectTypes(t, tokens, tt.want...)
			last := tokens[len(tokens)-2]
			if last.Line != tt.line {
				t.Errorf("expected last token on line %d, got %d", tt.line, last.Line)
			}
		})
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	for _, input := range []string{"/* never closed", "/* trailing star *", "/*/"} {
		t.Run(input, func(t *testing.T) {
			tokens, errs := Tokenize(input)
			if len(errs) != 1 {
				t.Fatalf("expected 1 lex error, got %d", len(errs))
			}
			if errs[0].Message != MsgUnterminatedComment || !errs[0].Incomplete {
				t.Errorf("got %+v", errs[0])
			}
			expectTypes(t, tokens, token.EOF)
		})
	}
}

// ---------------------------------------------------------------------------
// Test: whitespace and line counting
// ---------------------------------------------------------------------------
func TestLineNumbers(t *testing.T) {
	tokens := mustScan(t, "let a = 1;\r\n\n\tprint a;")
	last := tokens[len(tokens)-2]
	if last.Type != token.Semicolon || last.Line != 3 {
		t.Errorf("expected ';' on line 3, got %s on line %d", last.Type, last.Line)
	}
	if eof := tokens[len(tokens)-1]; eof.Line != 3 {
		t.Errorf("expected EOF on line 3, got %d", eof.Line)
	}
}

// ---------------------------------------------------------------------------
// Test: unexpected characters are skipped
// ---------------------------------------------------------------------------
func TestUnexpectedCharacter(t *testing.T) {
	var c diagnosticsCounter
	tokens, errs := Scan("1 @ 2 $ 3", &c)
	if len(errs) != 2 {
		t.Fatalf("expected 2 lex errors, got %d", len(errs))
	}
	for _, err := range errs {
		if err.Message != MsgUnexpectedChar {
			t.Errorf("got message %q", err.Message)
		}
	}
	if c.n != 2 {
		t.Errorf("expected 2 reported diagnostics, got %d", c.n)
	}
	expectTypes(t, tokens, token.Integer, token.Integer, token.Integer, token.EOF)
}

func TestLexErrorText(t *testing.T) {
	_, errs := Tokenize("\n\n?")
	if len(errs) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(errs))
	}
	if got, want := errs[0].Error(), "[line 3] Error: Unexpected character."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Test: full statements
// ---------------------------------------------------------------------------
func TestLetStatement(t *testing.T) {
	tokens := mustScanNoEOF(t, `let greeting = "hi" + name;`)
	expectTypes(t, tokens,
		token.Let, token.Identifier, token.Equal, token.String,
		token.Plus, token.Identifier, token.Semicolon,
	)
	if tokens[1].Lexeme != "greeting" || tokens[1].Literal != "" {
		t.Errorf("identifier token: %+v", tokens[1])
	}
}

func TestExpressionStatement(t *testing.T) {
	tokens := mustScanNoEOF(t, "print (1 + 2) * 3 >= 9 != !false;")
	expectTypes(t, tokens,
		token.Print, token.LeftParen, token.Integer, token.Plus, token.Integer,
		token.RightParen, token.Star, token.Integer, token.GreaterEqual, token.Integer,
		token.BangEqual, token.Bang, token.False, token.Semicolon,
	)
}

// diagnosticsCounter counts reported diagnostics.
type diagnosticsCounter struct {
	n int
}

func (c *diagnosticsCounter) Report(diagnostics.Diagnostic) {
	c.n++
}
