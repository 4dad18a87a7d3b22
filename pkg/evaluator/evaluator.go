package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/thomasrohde/taco/pkg/ast"
	"github.com/thomasrohde/taco/pkg/diagnostics"
	"github.com/thomasrohde/taco/pkg/token"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart     TraceEventType = "run_start"
	TraceRunEnd       TraceEventType = "run_end"
	TraceStmtStart    TraceEventType = "stmt_start"
	TraceStmtEnd      TraceEventType = "stmt_end"
	TracePrint        TraceEventType = "print"
	TraceRuntimeError TraceEventType = "runtime_error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Event     TraceEventType `json:"event"`
	Line      int            `json:"line,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// ExecOptions configures program execution.
type ExecOptions struct {
	// Stdout receives print output. Nil discards it.
	Stdout io.Writer
	// Echo prints the value of every expression statement.
	Echo  bool
	Trace func(event TraceEvent)
	RunID string
}

// ExecResult holds the result of a program execution.
type ExecResult struct {
	Value      Value
	Statements int
}

// RuntimeError is an error raised while evaluating, located at Token.
type RuntimeError struct {
	Code    string
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return diagnostics.FormatDiagnostic(e.Diag(), true)
}

// Diag converts the error into a diagnostic.
func (e *RuntimeError) Diag() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Token.Line, "")
}

type evaluator struct {
	ctx   context.Context
	opts  ExecOptions
	count int
}

func (ev *evaluator) emit(event TraceEventType, line int, data map[string]any) {
	if ev.opts.Trace != nil {
		ev.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     ev.opts.RunID,
			Event:     event,
			Line:      line,
			Data:      data,
		})
	}
}

// Execute runs stmts in env and returns the value of the last statement.
// Execution stops at the first runtime error or when ctx is cancelled; the
// bindings made before that point stay in env.
func Execute(ctx context.Context, stmts []ast.Stmt, env *Env, opts ExecOptions) (*ExecResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if env == nil {
		env = NewEnv(nil)
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	ev := &evaluator{ctx: ctx, opts: opts}

	ev.emit(TraceRunStart, 0, map[string]any{"statements": len(stmts)})

	val, err := ev.executeBlock(stmts, env)

	if rtErr, ok := err.(*RuntimeError); ok {
		ev.emit(TraceRuntimeError, rtErr.Token.Line, map[string]any{
			"code":    rtErr.Code,
			"message": rtErr.Message,
		})
	}
	ev.emit(TraceRunEnd, 0, map[string]any{"statements": ev.count})

	if err != nil {
		return &ExecResult{Statements: ev.count}, err
	}
	return &ExecResult{Value: val, Statements: ev.count}, nil
}

// Evaluate computes a single expression in env.
func Evaluate(expr ast.Expr, env *Env) (Value, error) {
	if env == nil {
		env = NewEnv(nil)
	}
	ev := &evaluator{ctx: context.Background()}
	return ev.evalExpr(expr, env)
}

func (ev *evaluator) executeBlock(stmts []ast.Stmt, env *Env) (Value, error) {
	var lastVal Value = NewNil()

	for _, stmt := range stmts {
		if err := ev.ctx.Err(); err != nil {
			return nil, err
		}

		line := stmt.Line()
		ev.emit(TraceStmtStart, line, map[string]any{"kind": stmt.Kind()})

		val, err := ev.execute(stmt, env)
		if err != nil {
			return nil, err
		}
		ev.count++
		lastVal = val

		if ev.opts.Trace != nil {
			ev.emit(TraceStmtEnd, line, map[string]any{
				"kind":  stmt.Kind(),
				"value": json.RawMessage(ValueToJSONString(val)),
			})
		}
	}

	return lastVal, nil
}

func (ev *evaluator) execute(stmt ast.Stmt, env *Env) (Value, error) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		val, err := ev.evalExpr(s.Initializer, env)
		if err != nil {
			return nil, err
		}
		env.Define(s.Name.Lexeme, val)
		return val, nil

	case *ast.PrintStmt:
		val, err := ev.evalExpr(s.Expr, env)
		if err != nil {
			return nil, err
		}
		ev.print(s.Line(), val)
		return val, nil

	case *ast.ExpressionStmt:
		val, err := ev.evalExpr(s.Expr, env)
		if err != nil {
			return nil, err
		}
		if ev.opts.Echo {
			ev.print(s.Line(), val)
		}
		return val, nil

	case *ast.BlockStmt:
		return ev.executeBlock(s.Statements, env.Child())
	}

	return nil, &RuntimeError{
		Code:    diagnostics.EInternal,
		Message: fmt.Sprintf("unsupported statement type: %T", stmt),
	}
}

func (ev *evaluator) print(line int, val Value) {
	text := Stringify(val)
	fmt.Fprintln(ev.opts.Stdout, text)
	ev.emit(TracePrint, line, map[string]any{"text": text})
}

func (ev *evaluator) evalExpr(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return NewInt(e.Value), nil

	case *ast.FloatLiteral:
		return NewFloat(e.Value), nil

	case *ast.StrLiteral:
		return NewString(e.Value), nil

	case *ast.BoolLiteral:
		return NewBool(e.Value), nil

	case *ast.NilLiteral:
		return NewNil(), nil

	case *ast.Grouping:
		return ev.evalExpr(e.Inner, env)

	case *ast.Variable:
		return env.Get(e.Name)

	case *ast.Assign:
		val, err := ev.evalExpr(e.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.Assign(e.Name, val); err != nil {
			return nil, err
		}
		return val, nil

	case *ast.Unary:
		return ev.evalUnary(e, env)

	case *ast.Binary:
		return ev.evalBinary(e, env)
	}

	return nil, &RuntimeError{
		Code:    diagnostics.EInternal,
		Message: fmt.Sprintf("unsupported expression type: %T", expr),
	}
}

func (ev *evaluator) evalUnary(e *ast.Unary, env *Env) (Value, error) {
	right, err := ev.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case token.Minus:
		switch v := right.(type) {
		case Integer:
			return NewInt(-v.Value), nil
		case Float:
			return NewFloat(-v.Value), nil
		}
		return nil, typeError(e.Operator, "Invalid operand for unary minus.")
	case token.Bang:
		return NewBool(!Truthiness(right)), nil
	}
	return nil, &RuntimeError{
		Code:    diagnostics.EInternal,
		Token:   e.Operator,
		Message: "Invalid unary operator.",
	}
}

// opNames gives the wording of operand errors per binary operator.
var opNames = map[token.TokenType]string{
	token.Plus:         "addition",
	token.Minus:        "subtraction",
	token.Star:         "multiplication",
	token.Slash:        "division",
	token.Greater:      "greater than",
	token.GreaterEqual: "greater than or equal",
	token.Less:         "less than",
	token.LessEqual:    "less than or equal",
}

func (ev *evaluator) evalBinary(e *ast.Binary, env *Env) (Value, error) {
	left, err := ev.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := ev.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}

	op := e.Operator
	switch op.Type {
	case token.Plus:
		if l, ok := left.(String); ok {
			if r, ok := right.(String); ok {
				return NewString(l.Value + r.Value), nil
			}
		}
		return arith(op, left, right,
			func(a, b int64) int64 { return a + b },
			func(a, b float64) float64 { return a + b })

	case token.Minus:
		return arith(op, left, right,
			func(a, b int64) int64 { return a - b },
			func(a, b float64) float64 { return a - b })

	case token.Star:
		return arith(op, left, right,
			func(a, b int64) int64 { return a * b },
			func(a, b float64) float64 { return a * b })

	case token.Slash:
		switch r := right.(type) {
		case Integer:
			if _, ok := left.(Integer); ok && r.Value == 0 {
				return nil, divZero(op)
			}
		case Float:
			if _, ok := left.(Float); ok && r.Value == 0 {
				return nil, divZero(op)
			}
		}
		return arith(op, left, right,
			func(a, b int64) int64 { return a / b },
			func(a, b float64) float64 { return a / b })

	case token.Greater:
		return compare(op, left, right,
			func(a, b int64) bool { return a > b },
			func(a, b float64) bool { return a > b })

	case token.GreaterEqual:
		return compare(op, left, right,
			func(a, b int64) bool { return a >= b },
			func(a, b float64) bool { return a >= b })

	case token.Less:
		return compare(op, left, right,
			func(a, b int64) bool { return a < b },
			func(a, b float64) bool { return a < b })

	case token.LessEqual:
		return compare(op, left, right,
			func(a, b int64) bool { return a <= b },
			func(a, b float64) bool { return a <= b })

	case token.EqualEqual:
		eq, ok := sameKindEqual(left, right)
		if !ok {
			return nil, typeError(op, "Invalid operands for equality.")
		}
		return NewBool(eq), nil

	case token.BangEqual:
		eq, ok := sameKindEqual(left, right)
		if !ok {
			return nil, typeError(op, "Invalid operands for inequality.")
		}
		return NewBool(!eq), nil
	}

	return nil, &RuntimeError{
		Code:    diagnostics.EInternal,
		Token:   op,
		Message: "Invalid binary operator.",
	}
}

// arith applies an arithmetic operator to two Integers or two Floats.
// Integer results wrap on overflow.
func arith(op token.Token, left, right Value, ints func(a, b int64) int64, floats func(a, b float64) float64) (Value, error) {
	switch l := left.(type) {
	case Integer:
		if r, ok := right.(Integer); ok {
			return NewInt(ints(l.Value, r.Value)), nil
		}
	case Float:
		if r, ok := right.(Float); ok {
			return NewFloat(floats(l.Value, r.Value)), nil
		}
	}
	return nil, operandError(op, left, right)
}

func compare(op token.Token, left, right Value, ints func(a, b int64) bool, floats func(a, b float64) bool) (Value, error) {
	switch l := left.(type) {
	case Integer:
		if r, ok := right.(Integer); ok {
			return NewBool(ints(l.Value, r.Value)), nil
		}
	case Float:
		if r, ok := right.(Float); ok {
			return NewBool(floats(l.Value, r.Value)), nil
		}
	}
	return nil, operandError(op, left, right)
}

// sameKindEqual compares two Booleans, Integers, Floats or Strings. The
// second result is false for any other pairing, nil included.
func sameKindEqual(left, right Value) (bool, bool) {
	switch l := left.(type) {
	case Boolean:
		if r, ok := right.(Boolean); ok {
			return l.Value == r.Value, true
		}
	case Integer:
		if r, ok := right.(Integer); ok {
			return l.Value == r.Value, true
		}
	case Float:
		if r, ok := right.(Float); ok {
			return l.Value == r.Value, true
		}
	case String:
		if r, ok := right.(String); ok {
			return l.Value == r.Value, true
		}
	}
	return false, false
}

func operandError(op token.Token, left, right Value) *RuntimeError {
	return typeError(op, fmt.Sprintf("Invalid operands for %s: %s and %s.",
		opNames[op.Type], KindOf(left), KindOf(right)))
}

func typeError(op token.Token, msg string) *RuntimeError {
	return &RuntimeError{Code: diagnostics.EType, Token: op, Message: msg}
}

func divZero(op token.Token) *RuntimeError {
	return &RuntimeError{Code: diagnostics.EDivZero, Token: op, Message: "Division by zero."}
}
