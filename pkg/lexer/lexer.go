// Package lexer implements the taco language tokenizer.
package lexer

import (
	"unicode"

	"github.com/thomasrohde/taco/pkg/diagnostics"
	"github.com/thomasrohde/taco/pkg/token"
)

// Lex error messages.
const (
	MsgUnexpectedChar      = "Unexpected character."
	MsgUnterminatedString  = "Unterminated string."
	MsgUnterminatedComment = "Unterminated block comment."
)

// LexError is a lexical error. Lex errors are reported as they are found
// and never stop the scan.
type LexError struct {
	Line    int
	Message string

	// Incomplete is set when the input ended inside a backtick string or a
	// block comment, so more input could still complete it.
	Incomplete bool
}

func (e *LexError) Error() string {
	return diagnostics.FormatDiagnostic(e.Diag(), true)
}

// Diag converts the error into a diagnostic.
func (e *LexError) Diag() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.ELex, e.Message, e.Line, "")
}

type scanner struct {
	source  []rune
	start   int
	current int
	line    int
	tokens  []token.Token
	errs    []*LexError
	rep     diagnostics.Reporter
}

func newScanner(source string, rep diagnostics.Reporter) *scanner {
	if rep == nil {
		rep = diagnostics.Discard
	}
	return &scanner{
		source: []rune(source),
		line:   1,
		rep:    rep,
	}
}

func (s *scanner) atEnd() bool {
	return s.current >= len(s.source)
}

func (s *scanner) advance() rune {
	ch := s.source[s.current]
	s.current++
	return ch
}

func (s *scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *scanner) peekNext() rune {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

// match consumes the next character if it is expected.
func (s *scanner) match(expected rune) bool {
	if s.atEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *scanner) text() string {
	return string(s.source[s.start:s.current])
}

func (s *scanner) addToken(typ token.TokenType) {
	text := s.text()
	s.tokens = append(s.tokens, token.New(typ, text, text, s.line))
}

func (s *scanner) addLiteral(typ token.TokenType, literal string, line int) {
	s.tokens = append(s.tokens, token.New(typ, s.text(), literal, line))
}

func (s *scanner) lexError(line int, msg string) {
	s.report(&LexError{Line: line, Message: msg})
}

func (s *scanner) report(err *LexError) {
	s.errs = append(s.errs, err)
	s.rep.Report(err.Diag())
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isAlphaNumeric(ch rune) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanString() {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			// leave the newline for the main loop so the line count stays right
			s.lexError(s.line, MsgUnterminatedString)
			return
		}
		s.advance()
	}
	if s.atEnd() {
		s.lexError(s.line, MsgUnterminatedString)
		return
	}
	s.advance() // closing "

	value := string(s.source[s.start+1 : s.current-1])
	s.addLiteral(token.String, value, s.line)
}

func (s *scanner) scanMultilineString() {
	startLine := s.line
	for s.peek() != '`' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.report(&LexError{Line: s.line, Message: MsgUnterminatedString, Incomplete: true})
		return
	}
	s.advance() // closing `

	value := string(s.source[s.start+1 : s.current-1])
	s.addLiteral(token.String, value, startLine)
}

// skipBlockComment runs with the opening "/*" already consumed and stops
// right after the first "*/".
func (s *scanner) skipBlockComment() {
	for !s.atEnd() {
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance()
			s.advance()
			return
		}
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	s.report(&LexError{Line: s.line, Message: MsgUnterminatedComment, Incomplete: true})
}

func (s *scanner) scanNumber() {
	isFloat := false

	for isDigit(s.peek()) {
		s.advance()
	}

	// A '.' only belongs to the number when a digit follows it.
	if s.peek() == '.' && isDigit(s.peekNext()) {
		isFloat = true
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	if isFloat {
		s.addLiteral(token.Float, s.text(), s.line)
		return
	}
	s.addLiteral(token.Integer, s.text(), s.line)
}

func (s *scanner) scanIdentOrKeyword() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	s.addLiteral(token.LookupIdent(s.text()), "", s.line)
}

func (s *scanner) scanToken() {
	ch := s.advance()

	switch ch {
	case '(':
		s.addToken(token.LeftParen)
	case ')':
		s.addToken(token.RightParen)
	case '{':
		s.addToken(token.LeftBrace)
	case '}':
		s.addToken(token.RightBrace)
	case ',':
		s.addToken(token.Comma)
	case '.':
		s.addToken(token.Dot)
	case '-':
		s.addToken(token.Minus)
	case '+':
		s.addToken(token.Plus)
	case ';':
		s.addToken(token.Semicolon)
	case '*':
		s.addToken(token.Star)

	case '!':
		if s.match('=') {
			s.addToken(token.BangEqual)
		} else {
			s.addToken(token.Bang)
		}
	case '=':
		if s.match('=') {
			s.addToken(token.EqualEqual)
		} else {
			s.addToken(token.Equal)
		}
	case '<':
		if s.match('=') {
			s.addToken(token.LessEqual)
		} else {
			s.addToken(token.Less)
		}
	case '>':
		if s.match('=') {
			s.addToken(token.GreaterEqual)
		} else {
			s.addToken(token.Greater)
		}

	case '#':
		for !s.atEnd() && s.peek() != '\n' {
			s.advance()
		}
	case '/':
		if s.match('*') {
			s.skipBlockComment()
		} else {
			s.addToken(token.Slash)
		}

	case ' ', '\r', '\t':
	case '\n':
		s.line++

	case '"':
		s.scanString()
	case '`':
		s.scanMultilineString()

	default:
		switch {
		case isDigit(ch):
			s.scanNumber()
		case isAlpha(ch):
			s.scanIdentOrKeyword()
		default:
			s.lexError(s.line, MsgUnexpectedChar)
		}
	}
}

func (s *scanner) scanAll() []token.Token {
	for !s.atEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", "", s.line))
	return s.tokens
}

// Scan breaks source into tokens. Every lex error is sent to rep as soon as
// it is found and also returned; the token slice always ends with exactly
// one EOF token.
func Scan(source string, rep diagnostics.Reporter) ([]token.Token, []*LexError) {
	s := newScanner(source, rep)
	tokens := s.scanAll()
	return tokens, s.errs
}

// Tokenize is Scan without a reporter.
func Tokenize(source string) ([]token.Token, []*LexError) {
	return Scan(source, diagnostics.Discard)
}
