package ast_test

import (
	"testing"

	"github.com/thomasrohde/taco/pkg/ast"
	"github.com/thomasrohde/taco/pkg/token"
)

func TestNodeKinds(t *testing.T) {
	lit := &ast.IntLiteral{Value: 1}
	nodes := []ast.Node{
		lit,
		&ast.FloatLiteral{Value: 3.14},
		&ast.StrLiteral{Value: "hello"},
		&ast.BoolLiteral{Value: true},
		&ast.NilLiteral{},
		&ast.Binary{Left: lit, Right: lit},
		&ast.Unary{Right: lit},
		&ast.Grouping{Inner: lit},
		&ast.Variable{},
		&ast.Assign{Value: lit},
		&ast.ExpressionStmt{Expr: lit},
		&ast.PrintStmt{Expr: lit},
		&ast.LetStmt{Initializer: lit},
		&ast.BlockStmt{},
	}

	expected := []string{
		"IntLiteral", "FloatLiteral", "StrLiteral", "BoolLiteral", "NilLiteral",
		"Binary", "Unary", "Grouping", "Variable", "Assign",
		"ExpressionStmt", "PrintStmt", "LetStmt", "BlockStmt",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestNodeLine(t *testing.T) {
	op := token.New(token.Plus, "+", "+", 4)
	lit := &ast.IntLiteral{Token: token.New(token.Integer, "1", "1", 3), Value: 1}
	bin := &ast.Binary{Left: lit, Operator: op, Right: lit}
	if bin.Line() != 4 {
		t.Errorf("Binary line: got %d, want 4", bin.Line())
	}
	stmt := &ast.ExpressionStmt{Expr: lit}
	if stmt.Line() != 3 {
		t.Errorf("ExpressionStmt line: got %d, want 3", stmt.Line())
	}
}

func TestNewLiteral(t *testing.T) {
	tok := token.New(token.Integer, "", "", 1)
	tests := []struct {
		text string
		kind string
	}{
		{"42", "IntLiteral"},
		{"-7", "IntLiteral"},
		{"3.5", "FloatLiteral"},
		{"99999999999999999999", "FloatLiteral"},
		{"true", "BoolLiteral"},
		{"false", "BoolLiteral"},
		{"nil", "NilLiteral"},
		{"taco", "StrLiteral"},
		{"", "StrLiteral"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ast.NewLiteral(tok, tt.text)
			if got.Kind() != tt.kind {
				t.Errorf("NewLiteral(%q) kind = %s, want %s", tt.text, got.Kind(), tt.kind)
			}
		})
	}

	if v := ast.NewLiteral(tok, "42").(*ast.IntLiteral).Value; v != 42 {
		t.Errorf("got %d, want 42", v)
	}
	if v := ast.NewLiteral(tok, "false").(*ast.BoolLiteral).Value; v {
		t.Error("got true, want false")
	}
}
