// Package token defines the taco token types and token record.
package token

import "fmt"

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Single-character tokens
	LeftParen  TokenType = iota // (
	RightParen                  // )
	LeftBrace                   // {
	RightBrace                  // }
	Comma                       // ,
	Dot                         // .
	Minus                       // -
	Plus                        // +
	Semicolon                   // ;
	Slash                       // /
	Star                        // *

	// One or two character tokens
	Bang         // !
	BangEqual    // !=
	Equal        // =
	EqualEqual   // ==
	Greater      // >
	GreaterEqual // >=
	Less         // <
	LessEqual    // <=

	// Literals
	Identifier
	String
	Integer
	Float

	// Keywords
	And
	Class
	Else
	False
	Function
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Let
	While

	EOF
)

var typeNames = [...]string{
	LeftParen:    "LeftParen",
	RightParen:   "RightParen",
	LeftBrace:    "LeftBrace",
	RightBrace:   "RightBrace",
	Comma:        "Comma",
	Dot:          "Dot",
	Minus:        "Minus",
	Plus:         "Plus",
	Semicolon:    "Semicolon",
	Slash:        "Slash",
	Star:         "Star",
	Bang:         "Bang",
	BangEqual:    "BangEqual",
	Equal:        "Equal",
	EqualEqual:   "EqualEqual",
	Greater:      "Greater",
	GreaterEqual: "GreaterEqual",
	Less:         "Less",
	LessEqual:    "LessEqual",
	Identifier:   "Identifier",
	String:       "String",
	Integer:      "Integer",
	Float:        "Float",
	And:          "And",
	Class:        "Class",
	Else:         "Else",
	False:        "False",
	Function:     "Function",
	For:          "For",
	If:           "If",
	Nil:          "Nil",
	Or:           "Or",
	Print:        "Print",
	Return:       "Return",
	Super:        "Super",
	This:         "This",
	True:         "True",
	Let:          "Let",
	While:        "While",
	EOF:          "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsKeyword reports whether t is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t >= And && t <= While
}

// Keywords maps reserved words to their token types. "taco" is the
// historical spelling of "function" and stays reserved.
var Keywords = map[string]TokenType{
	"and":      And,
	"class":    Class,
	"else":     Else,
	"false":    False,
	"for":      For,
	"function": Function,
	"taco":     Function,
	"if":       If,
	"nil":      Nil,
	"or":       Or,
	"print":    Print,
	"return":   Return,
	"super":    Super,
	"this":     This,
	"true":     True,
	"let":      Let,
	"while":    While,
}

// LookupIdent returns the keyword type for text, or Identifier.
func LookupIdent(text string) TokenType {
	if typ, ok := Keywords[text]; ok {
		return typ
	}
	return Identifier
}

// Token represents a single lexer token.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal string
	Line    int
}

// New creates a token.
func New(typ TokenType, lexeme, literal string, line int) Token {
	return Token{Type: typ, Lexeme: lexeme, Literal: literal, Line: line}
}

func (t Token) String() string {
	return fmt.Sprintf("%s '%s' %s (line %d)", t.Type, t.Lexeme, t.Literal, t.Line)
}
