// Package ast defines the taco language AST node types.
package ast

import (
	"strconv"

	"github.com/thomasrohde/taco/pkg/token"
)

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	Line() int
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type IntLiteral struct {
	Token token.Token
	Value int64
}

func (n *IntLiteral) Kind() string { return "IntLiteral" }
func (n *IntLiteral) Line() int    { return n.Token.Line }
func (n *IntLiteral) exprNode()    {}

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (n *FloatLiteral) Kind() string { return "FloatLiteral" }
func (n *FloatLiteral) Line() int    { return n.Token.Line }
func (n *FloatLiteral) exprNode()    {}

type StrLiteral struct {
	Token token.Token
	Value string
}

func (n *StrLiteral) Kind() string { return "StrLiteral" }
func (n *StrLiteral) Line() int    { return n.Token.Line }
func (n *StrLiteral) exprNode()    {}

type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (n *BoolLiteral) Kind() string { return "BoolLiteral" }
func (n *BoolLiteral) Line() int    { return n.Token.Line }
func (n *BoolLiteral) exprNode()    {}

type NilLiteral struct {
	Token token.Token
}

func (n *NilLiteral) Kind() string { return "NilLiteral" }
func (n *NilLiteral) Line() int    { return n.Token.Line }
func (n *NilLiteral) exprNode()    {}

// NewLiteral builds a literal node from raw text: an integer if the text
// parses as int64, else a float, else true/false/nil, else a plain string.
func NewLiteral(tok token.Token, text string) Expr {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return &IntLiteral{Token: tok, Value: i}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return &FloatLiteral{Token: tok, Value: f}
	}
	switch text {
	case "true":
		return &BoolLiteral{Token: tok, Value: true}
	case "false":
		return &BoolLiteral{Token: tok, Value: false}
	case "nil":
		return &NilLiteral{Token: tok}
	}
	return &StrLiteral{Token: tok, Value: text}
}

// --- Operators and references ---

type Binary struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (n *Binary) Kind() string { return "Binary" }
func (n *Binary) Line() int    { return n.Operator.Line }
func (n *Binary) exprNode()    {}

type Unary struct {
	Operator token.Token
	Right    Expr
}

func (n *Unary) Kind() string { return "Unary" }
func (n *Unary) Line() int    { return n.Operator.Line }
func (n *Unary) exprNode()    {}

type Grouping struct {
	Paren token.Token // opening '('
	Inner Expr
}

func (n *Grouping) Kind() string { return "Grouping" }
func (n *Grouping) Line() int    { return n.Paren.Line }
func (n *Grouping) exprNode()    {}

// Variable is a reference to a bound name.
type Variable struct {
	Name token.Token
}

func (n *Variable) Kind() string { return "Variable" }
func (n *Variable) Line() int    { return n.Name.Line }
func (n *Variable) exprNode()    {}

// Assign rebinds an existing name: `x = value`.
type Assign struct {
	Name  token.Token
	Value Expr
}

func (n *Assign) Kind() string { return "Assign" }
func (n *Assign) Line() int    { return n.Name.Line }
func (n *Assign) exprNode()    {}

// --- Statements ---

type ExpressionStmt struct {
	Expr Expr
}

func (n *ExpressionStmt) Kind() string { return "ExpressionStmt" }
func (n *ExpressionStmt) Line() int    { return n.Expr.Line() }
func (n *ExpressionStmt) stmtNode()    {}

type PrintStmt struct {
	Keyword token.Token
	Expr    Expr
}

func (n *PrintStmt) Kind() string { return "PrintStmt" }
func (n *PrintStmt) Line() int    { return n.Keyword.Line }
func (n *PrintStmt) stmtNode()    {}

// LetStmt binds Name in the current scope. Initializer is a NilLiteral
// when the source omits it.
type LetStmt struct {
	Name        token.Token
	Initializer Expr
}

func (n *LetStmt) Kind() string { return "LetStmt" }
func (n *LetStmt) Line() int    { return n.Name.Line }
func (n *LetStmt) stmtNode()    {}

// BlockStmt runs its statements in a fresh child scope.
type BlockStmt struct {
	Brace      token.Token // opening '{'
	Statements []Stmt
}

func (n *BlockStmt) Kind() string { return "BlockStmt" }
func (n *BlockStmt) Line() int    { return n.Brace.Line }
func (n *BlockStmt) stmtNode()    {}
