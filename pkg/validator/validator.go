// Package validator implements static checks over taco statements.
package validator

import (
	"fmt"

	"github.com/thomasrohde/taco/pkg/ast"
	"github.com/thomasrohde/taco/pkg/diagnostics"
	"github.com/thomasrohde/taco/pkg/token"
)

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	if s.bindings[name] {
		return true
	}
	if s.parent != nil {
		return s.parent.has(name)
	}
	return false
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

type validator struct {
	diags []diagnostics.Diagnostic
}

// Validate reports every read or assignment of a name that no earlier let
// in an enclosing scope declares. Scoping follows the interpreter: a block
// opens a child scope and a let's initializer is checked before its name
// is bound.
func Validate(stmts []ast.Stmt) []diagnostics.Diagnostic {
	return ValidateIn(stmts, nil)
}

// ValidateIn is Validate with names already bound in the outermost scope,
// such as the globals of a running session.
func ValidateIn(stmts []ast.Stmt, predeclared []string) []diagnostics.Diagnostic {
	sc := newScope(nil)
	for _, name := range predeclared {
		sc.add(name)
	}
	v := &validator{}
	v.validateStatements(stmts, sc)
	return v.diags
}

func (v *validator) undefined(name token.Token) {
	v.diags = append(v.diags, diagnostics.MakeDiag(
		diagnostics.EUndefined,
		fmt.Sprintf("Undefined variable '%s'.", name.Lexeme),
		name.Line,
		"",
	))
}

func (v *validator) validateStatements(stmts []ast.Stmt, sc *scope) {
	for _, stmt := range stmts {
		v.validateStmt(stmt, sc)
	}
}

func (v *validator) validateStmt(stmt ast.Stmt, sc *scope) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v.validateExpr(s.Initializer, sc)
		sc.add(s.Name.Lexeme)
	case *ast.PrintStmt:
		v.validateExpr(s.Expr, sc)
	case *ast.ExpressionStmt:
		v.validateExpr(s.Expr, sc)
	case *ast.BlockStmt:
		v.validateStatements(s.Statements, newScope(sc))
	}
}

func (v *validator) validateExpr(expr ast.Expr, sc *scope) {
	switch e := expr.(type) {
	case *ast.Variable:
		if !sc.has(e.Name.Lexeme) {
			v.undefined(e.Name)
		}
	case *ast.Assign:
		v.validateExpr(e.Value, sc)
		if !sc.has(e.Name.Lexeme) {
			v.undefined(e.Name)
		}
	case *ast.Binary:
		v.validateExpr(e.Left, sc)
		v.validateExpr(e.Right, sc)
	case *ast.Unary:
		v.validateExpr(e.Right, sc)
	case *ast.Grouping:
		v.validateExpr(e.Inner, sc)
	}
}
