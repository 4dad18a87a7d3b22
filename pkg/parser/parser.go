// Package parser implements the taco language parser.
package parser

import (
	"github.com/thomasrohde/taco/pkg/ast"
	"github.com/thomasrohde/taco/pkg/diagnostics"
	"github.com/thomasrohde/taco/pkg/lexer"
	"github.com/thomasrohde/taco/pkg/token"
)

// SyntaxError is a failed parser expectation at Token.
type SyntaxError struct {
	Token   token.Token
	Message string
	// Truncated is set when the parser had run out of input, even if the
	// error is reported on an earlier token.
	Truncated bool
}

func (e *SyntaxError) Error() string {
	return diagnostics.FormatDiagnostic(e.Diag(), true)
}

// Diag converts the error into a diagnostic.
func (e *SyntaxError) Diag() diagnostics.Diagnostic {
	where := diagnostics.AtLexeme(e.Token.Lexeme)
	if e.AtEnd() {
		where = diagnostics.AtEnd()
	}
	return diagnostics.MakeDiag(diagnostics.EParse, e.Message, e.Token.Line, where)
}

// AtEnd reports whether the error was raised on the EOF token.
func (e *SyntaxError) AtEnd() bool {
	return e.Token.Type == token.EOF
}

// maxDepth bounds how deeply expressions and blocks may nest.
const maxDepth = 1000

type parser struct {
	tokens  []token.Token
	current int
	depth   int
	collect bool
	errs    []*SyntaxError
	rep     diagnostics.Reporter
}

func newParser(tokens []token.Token, rep diagnostics.Reporter, collect bool) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], token.New(token.EOF, "", "", line))
	}
	if rep == nil {
		rep = diagnostics.Discard
	}
	return &parser{tokens: tokens, collect: collect, rep: rep}
}

// Parse parses tokens into statements and stops at the first syntax error,
// which is reported to rep and returned. No statements are returned on
// failure.
func Parse(tokens []token.Token, rep diagnostics.Reporter) ([]ast.Stmt, error) {
	p := newParser(tokens, rep, false)
	stmts := p.parseProgram()
	if len(p.errs) > 0 {
		return nil, p.errs[0]
	}
	return stmts, nil
}

// ParseAll parses tokens into statements, recovering at statement
// boundaries after each syntax error. It returns every statement that
// parsed together with every error.
func ParseAll(tokens []token.Token, rep diagnostics.Reporter) ([]ast.Stmt, []*SyntaxError) {
	p := newParser(tokens, rep, true)
	stmts := p.parseProgram()
	return stmts, p.errs
}

// ParseSource tokenizes source and parses it, collecting every lex and
// syntax diagnostic. Statements are nil when any diagnostic was produced.
func ParseSource(source string, rep diagnostics.Reporter) ([]ast.Stmt, []diagnostics.Diagnostic) {
	if rep == nil {
		rep = diagnostics.Discard
	}
	tokens, lexErrs := lexer.Scan(source, rep)
	stmts, synErrs := ParseAll(tokens, rep)

	var diags []diagnostics.Diagnostic
	for _, e := range lexErrs {
		diags = append(diags, e.Diag())
	}
	for _, e := range synErrs {
		diags = append(diags, e.Diag())
	}
	if len(diags) > 0 {
		return nil, diags
	}
	return stmts, nil
}

func (p *parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *parser) previous() token.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) check(typ token.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == typ
}

func (p *parser) match(types ...token.TokenType) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(typ token.TokenType, msg string) (token.Token, bool) {
	if p.check(typ) {
		return p.advance(), true
	}
	p.errorAt(p.peek(), msg)
	return p.peek(), false
}

// nest enters one nesting level and reports an error past maxDepth. The
// caller restores p.depth when it returns.
func (p *parser) nest(msg string) bool {
	p.depth++
	if p.depth > maxDepth {
		p.errorAt(p.peek(), msg)
		return false
	}
	return true
}

func (p *parser) errorAt(tok token.Token, msg string) {
	err := &SyntaxError{Token: tok, Message: msg, Truncated: p.isAtEnd()}
	p.errs = append(p.errs, err)
	p.rep.Report(err.Diag())
}

// synchronize discards tokens until just past a ';' or until the next token
// starts a statement.
func (p *parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Function, token.Let, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// --- Program ---

func (p *parser) parseProgram() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		stmt := p.declaration()
		if stmt == nil {
			if !p.collect {
				return nil
			}
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// --- Statements ---

// declaration returns nil on a syntax error. In collecting mode it has
// already resynchronized by then.
func (p *parser) declaration() ast.Stmt {
	var stmt ast.Stmt
	switch {
	case p.match(token.Let):
		stmt = p.letDeclaration()
	case p.match(token.Print):
		stmt = p.printStatement()
	case p.match(token.LeftBrace):
		stmt = p.block()
	default:
		stmt = p.exprStatement()
	}

	if stmt == nil && p.collect {
		p.synchronize()
	}
	return stmt
}

func (p *parser) letDeclaration() ast.Stmt {
	name, ok := p.consume(token.Identifier, "Expect variable name.")
	if !ok {
		return nil
	}

	var initializer ast.Expr = &ast.NilLiteral{Token: name}
	if p.match(token.Equal) {
		initializer = p.expression()
		if initializer == nil {
			return nil
		}
	}

	if !p.match(token.Semicolon) {
		p.errorAt(p.previous(), "Expect ';' after variable declaration.")
		return nil
	}
	return &ast.LetStmt{Name: name, Initializer: initializer}
}

func (p *parser) printStatement() ast.Stmt {
	keyword := p.previous()
	value := p.expression()
	if value == nil {
		return nil
	}
	if _, ok := p.consume(token.Semicolon, "Expect ';' after value."); !ok {
		return nil
	}
	return &ast.PrintStmt{Keyword: keyword, Expr: value}
}

func (p *parser) exprStatement() ast.Stmt {
	expr := p.expression()
	if expr == nil {
		return nil
	}
	if _, ok := p.consume(token.Semicolon, "Expect ';' after expression."); !ok {
		return nil
	}
	return &ast.ExpressionStmt{Expr: expr}
}

func (p *parser) block() ast.Stmt {
	brace := p.previous()
	stmts := []ast.Stmt{}

	defer func(d int) { p.depth = d }(p.depth)
	if !p.nest("Block nesting too deep.") {
		return nil
	}

	for !p.check(token.RightBrace) && !p.isAtEnd() {
		stmt := p.declaration()
		if stmt == nil {
			if !p.collect {
				return nil
			}
			continue
		}
		stmts = append(stmts, stmt)
	}

	if _, ok := p.consume(token.RightBrace, "Expect '}' after block."); !ok {
		return nil
	}
	return &ast.BlockStmt{Brace: brace, Statements: stmts}
}

// --- Expressions, lowest precedence first ---

func (p *parser) expression() ast.Expr {
	defer func(d int) { p.depth = d }(p.depth)
	if !p.nest("Expression nesting too deep.") {
		return nil
	}
	return p.assignment()
}

func (p *parser) assignment() ast.Expr {
	expr := p.equality()
	if expr == nil {
		return nil
	}

	if p.match(token.Equal) {
		equals := p.previous()
		defer func(d int) { p.depth = d }(p.depth)
		if !p.nest("Expression nesting too deep.") {
			return nil
		}
		value := p.assignment()
		if value == nil {
			return nil
		}
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}
		}
		p.errorAt(equals, "Invalid assignment target.")
		return nil
	}
	return expr
}

// binary parses one left-associative precedence level.
func (p *parser) binary(operand func() ast.Expr, ops ...token.TokenType) ast.Expr {
	left := operand()
	if left == nil {
		return nil
	}

	// each operator adds a level to the left-leaning tree
	defer func(d int) { p.depth = d }(p.depth)
	for p.match(ops...) {
		op := p.previous()
		if !p.nest("Expression nesting too deep.") {
			return nil
		}
		right := operand()
		if right == nil {
			return nil
		}
		left = &ast.Binary{Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *parser) equality() ast.Expr {
	return p.binary(p.comparison, token.BangEqual, token.EqualEqual)
}

func (p *parser) comparison() ast.Expr {
	return p.binary(p.term, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) term() ast.Expr {
	return p.binary(p.factor, token.Minus, token.Plus)
}

func (p *parser) factor() ast.Expr {
	return p.binary(p.unary, token.Slash, token.Star)
}

func (p *parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		defer func(d int) { p.depth = d }(p.depth)
		if !p.nest("Expression nesting too deep.") {
			return nil
		}
		right := p.unary()
		if right == nil {
			return nil
		}
		return &ast.Unary{Operator: op, Right: right}
	}
	return p.primary()
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return &ast.BoolLiteral{Token: p.previous(), Value: false}
	case p.match(token.True):
		return &ast.BoolLiteral{Token: p.previous(), Value: true}
	case p.match(token.Nil):
		return &ast.NilLiteral{Token: p.previous()}
	case p.match(token.Integer, token.Float):
		tok := p.previous()
		return ast.NewLiteral(tok, tok.Literal)
	case p.match(token.String):
		tok := p.previous()
		return &ast.StrLiteral{Token: tok, Value: tok.Literal}
	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LeftParen):
		paren := p.previous()
		inner := p.expression()
		if inner == nil {
			return nil
		}
		if _, ok := p.consume(token.RightParen, "Expect ')' after expression."); !ok {
			return nil
		}
		return &ast.Grouping{Paren: paren, Inner: inner}
	}

	p.errorAt(p.peek(), "Expect expression.")
	return nil
}
