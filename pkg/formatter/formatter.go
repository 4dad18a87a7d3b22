// Package formatter renders taco statements back to source and to a
// parenthesized tree dump.
package formatter

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/taco/pkg/ast"
	"github.com/thomasrohde/taco/pkg/token"
)

const indent = "  "

// Precedence table for binary operators (higher = tighter binding)
var precedence = map[token.TokenType]int{
	token.EqualEqual: 1, token.BangEqual: 1,
	token.Greater: 2, token.GreaterEqual: 2, token.Less: 2, token.LessEqual: 2,
	token.Plus: 3, token.Minus: 3,
	token.Star: 4, token.Slash: 4,
}

// needsParens covers trees built without Grouping nodes; parsed trees keep
// their parentheses as Groupings.
func needsParens(child ast.Expr, parentOp token.TokenType, isRight bool) bool {
	bin, ok := child.(*ast.Binary)
	if !ok {
		return false
	}
	childPrec := precedence[bin.Operator.Type]
	parentPrec := precedence[parentOp]
	if childPrec < parentPrec {
		return true
	}
	// Left-associativity: same precedence on the right side needs parens
	return childPrec == parentPrec && isRight
}

// Format pretty-prints statements back to canonical source code.
func Format(stmts []ast.Stmt) string {
	if len(stmts) == 0 {
		return ""
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments checks if a source string contains '#' or '/*' comments
// outside string literals.
func HasComments(source string) bool {
	var quote rune
	runes := []rune(source)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case quote != 0:
			// "..." strings end at a newline even when unterminated
			if ch == quote || (quote == '"' && ch == '\n') {
				quote = 0
			}
		case ch == '"' || ch == '`':
			quote = ch
		case ch == '#':
			return true
		case ch == '/' && i+1 < len(runes) && runes[i+1] == '*':
			return true
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	pad := strings.Repeat(indent, depth)

	switch st := s.(type) {
	case *ast.PrintStmt:
		return pad + "print " + formatExpr(st.Expr) + ";"
	case *ast.LetStmt:
		if implicitNil(st) {
			return pad + "let " + st.Name.Lexeme + ";"
		}
		return pad + "let " + st.Name.Lexeme + " = " + formatExpr(st.Initializer) + ";"
	case *ast.ExpressionStmt:
		return pad + formatExpr(st.Expr) + ";"
	case *ast.BlockStmt:
		if len(st.Statements) == 0 {
			return pad + "{}"
		}
		lines := []string{pad + "{"}
		for _, inner := range st.Statements {
			lines = append(lines, formatStmt(inner, depth+1))
		}
		lines = append(lines, pad+"}")
		return strings.Join(lines, "\n")
	}
	return pad + "# unknown statement"
}

// implicitNil reports whether a let had no initializer in the source. The
// parser gives those a NilLiteral carrying the name token.
func implicitNil(st *ast.LetStmt) bool {
	n, ok := st.Initializer.(*ast.NilLiteral)
	return ok && n.Token.Type == token.Identifier
}

func formatExpr(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(ex.Value, 10)
	case *ast.FloatLiteral:
		return formatFloatLiteral(ex.Value)
	case *ast.StrLiteral:
		if isNumberToken(ex.Token) {
			return ex.Token.Lexeme
		}
		return formatString(ex.Value)
	case *ast.BoolLiteral:
		if ex.Value {
			return "true"
		}
		return "false"
	case *ast.NilLiteral:
		return "nil"
	case *ast.Variable:
		return ex.Name.Lexeme
	case *ast.Assign:
		return ex.Name.Lexeme + " = " + formatExpr(ex.Value)
	case *ast.Grouping:
		return "(" + formatExpr(ex.Inner) + ")"
	case *ast.Unary:
		operand := formatExpr(ex.Right)
		if _, ok := ex.Right.(*ast.Binary); ok {
			operand = "(" + operand + ")"
		}
		return ex.Operator.Lexeme + operand
	case *ast.Binary:
		left := formatExpr(ex.Left)
		if needsParens(ex.Left, ex.Operator.Type, false) {
			left = "(" + left + ")"
		}
		right := formatExpr(ex.Right)
		if needsParens(ex.Right, ex.Operator.Type, true) {
			right = "(" + right + ")"
		}
		return left + " " + ex.Operator.Lexeme + " " + right
	}
	return "nil"
}

// isNumberToken reports whether a string literal came from a number too
// large to represent, which keeps its source text.
func isNumberToken(tok token.Token) bool {
	return tok.Type == token.Integer || tok.Type == token.Float
}

// formatFloatLiteral always keeps a decimal point so the text lexes back
// as a float.
func formatFloatLiteral(value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatString(s string) string {
	if strings.ContainsAny(s, "\"\n") {
		return "`" + s + "`"
	}
	return `"` + s + `"`
}

// Tree renders statements as parenthesized prefix expressions, one
// top-level statement per line.
func Tree(stmts []ast.Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(treeStmt(s))
		b.WriteByte('\n')
	}
	return b.String()
}

func treeStmt(s ast.Stmt) string {
	switch st := s.(type) {
	case *ast.PrintStmt:
		return "(print " + treeExpr(st.Expr) + ")"
	case *ast.LetStmt:
		return "(let " + st.Name.Lexeme + " " + treeExpr(st.Initializer) + ")"
	case *ast.ExpressionStmt:
		return "(expr " + treeExpr(st.Expr) + ")"
	case *ast.BlockStmt:
		parts := []string{"block"}
		for _, inner := range st.Statements {
			parts = append(parts, treeStmt(inner))
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return "(?)"
}

func treeExpr(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(ex.Value, 10)
	case *ast.FloatLiteral:
		return formatFloatLiteral(ex.Value)
	case *ast.StrLiteral:
		if isNumberToken(ex.Token) {
			return ex.Token.Lexeme
		}
		return strconv.Quote(ex.Value)
	case *ast.BoolLiteral:
		return strconv.FormatBool(ex.Value)
	case *ast.NilLiteral:
		return "nil"
	case *ast.Variable:
		return ex.Name.Lexeme
	case *ast.Assign:
		return "(= " + ex.Name.Lexeme + " " + treeExpr(ex.Value) + ")"
	case *ast.Grouping:
		return "(group " + treeExpr(ex.Inner) + ")"
	case *ast.Unary:
		return "(" + ex.Operator.Lexeme + " " + treeExpr(ex.Right) + ")"
	case *ast.Binary:
		return "(" + ex.Operator.Lexeme + " " + treeExpr(ex.Left) + " " + treeExpr(ex.Right) + ")"
	}
	return "?"
}
