// Package runtime provides the top-level taco session that ties lexing,
// parsing and evaluation together.
package runtime

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/thomasrohde/taco/pkg/ast"
	"github.com/thomasrohde/taco/pkg/config"
	"github.com/thomasrohde/taco/pkg/diagnostics"
	"github.com/thomasrohde/taco/pkg/evaluator"
	"github.com/thomasrohde/taco/pkg/formatter"
	"github.com/thomasrohde/taco/pkg/lexer"
	"github.com/thomasrohde/taco/pkg/parser"
	"github.com/thomasrohde/taco/pkg/validator"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitIO      = 1
	ExitUsage   = 64
	ExitDataErr = 65
	ExitRuntime = 70
)

// Session carries the global environment and the error flags across
// calls. A Session is not safe for concurrent use.
type Session struct {
	stdout   io.Writer
	stderr   io.Writer
	echo     bool
	failFast bool
	pretty   bool
	runID    string
	trace    func(event evaluator.TraceEvent)

	env             *evaluator.Env
	diags           *diagnostics.Collector
	hadError        bool
	hadRuntimeError bool
}

// Option is a functional option for configuring the Session.
type Option func(*Session)

// WithStdout sets where program output goes.
func WithStdout(w io.Writer) Option {
	return func(s *Session) {
		s.stdout = w
	}
}

// WithStderr sets where diagnostics go.
func WithStderr(w io.Writer) Option {
	return func(s *Session) {
		s.stderr = w
	}
}

// WithEcho makes expression statements print their value.
func WithEcho(on bool) Option {
	return func(s *Session) {
		s.echo = on
	}
}

// WithFailFast stops parsing at the first syntax error.
func WithFailFast(on bool) Option {
	return func(s *Session) {
		s.failFast = on
	}
}

// WithJSONDiagnostics writes diagnostics as one JSON object per line.
func WithJSONDiagnostics(on bool) Option {
	return func(s *Session) {
		s.pretty = !on
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(s *Session) {
		s.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(s *Session) {
		s.trace = fn
	}
}

// WithConfig applies the echo, parse mode and diagnostics settings of cfg.
// Options after it still override.
func WithConfig(cfg *config.Config) Option {
	return func(s *Session) {
		if cfg == nil {
			return
		}
		s.echo = cfg.Echo
		s.failFast = cfg.ParseMode == config.ParseFailFast
		s.pretty = cfg.Diagnostics != config.DiagnosticsJSON
	}
}

// New creates a Session with an empty global environment.
// By default output goes to os.Stdout, diagnostics to os.Stderr as text,
// and parsing collects every syntax error.
func New(opts ...Option) *Session {
	s := &Session{
		stdout: os.Stdout,
		stderr: os.Stderr,
		pretty: true,
		runID:  "cli",
		env:    evaluator.NewEnv(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stdout == nil {
		s.stdout = io.Discard
	}
	if s.stderr == nil {
		s.stderr = io.Discard
	}
	s.diags = diagnostics.NewCollector(s.stderr, s.pretty)
	return s
}

// ScanParse lexes and parses source. Every lex and syntax error is written
// to stderr as it is found; when there was any, HadError is set and a
// *DiagnosticError holding all of them is returned.
func (s *Session) ScanParse(source string) ([]ast.Stmt, error) {
	c := s.diags
	c.Reset()
	tokens, _ := lexer.Scan(source, c)

	var stmts []ast.Stmt
	if s.failFast {
		stmts, _ = parser.Parse(tokens, c)
	} else {
		stmts, _ = parser.ParseAll(tokens, c)
	}

	if c.HasErrors() {
		s.hadError = true
		return nil, &DiagnosticError{Diagnostics: c.Diagnostics()}
	}
	return stmts, nil
}

// Execute runs stmts in the global environment. A runtime error is written
// to stderr, sets HadRuntimeError and is returned.
func (s *Session) Execute(ctx context.Context, stmts []ast.Stmt) error {
	_, err := evaluator.Execute(ctx, stmts, s.env, evaluator.ExecOptions{
		Stdout: s.stdout,
		Echo:   s.echo,
		Trace:  s.trace,
		RunID:  s.runID,
	})

	var rtErr *evaluator.RuntimeError
	if errors.As(err, &rtErr) {
		s.hadRuntimeError = true
		io.WriteString(s.stderr, diagnostics.FormatDiagnostic(rtErr.Diag(), s.pretty)+"\n")
	}
	return err
}

// Run lexes, parses and executes source. Nothing runs if there was a lex or
// syntax error.
func (s *Session) Run(ctx context.Context, source string) error {
	stmts, err := s.ScanParse(source)
	if err != nil {
		return err
	}
	return s.Execute(ctx, stmts)
}

// Check lexes, parses and validates source without executing it or
// touching the session flags. Names bound in the global environment count
// as defined.
func (s *Session) Check(source string) []diagnostics.Diagnostic {
	stmts, diags := parser.ParseSource(source, nil)
	if len(diags) > 0 {
		return diags
	}
	return validator.ValidateIn(stmts, s.env.Names())
}

// Format parses source and returns its canonical form.
func (s *Session) Format(source string) (string, error) {
	stmts, diags := parser.ParseSource(source, nil)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(stmts), nil
}

// Reset clears the error flags and keeps every binding.
func (s *Session) Reset() {
	s.hadError = false
	s.hadRuntimeError = false
}

// ResetEnv drops every global binding.
func (s *Session) ResetEnv() {
	s.env = evaluator.NewEnv(nil)
}

// Env returns the global environment.
func (s *Session) Env() *evaluator.Env {
	return s.env
}

// HadError reports whether a lex or syntax error occurred since the last Reset.
func (s *Session) HadError() bool {
	return s.hadError
}

// HadRuntimeError reports whether a runtime error occurred since the last Reset.
func (s *Session) HadRuntimeError() bool {
	return s.hadRuntimeError
}

// ExitCode maps the session flags to a process exit code.
func (s *Session) ExitCode() int {
	switch {
	case s.hadError:
		return ExitDataErr
	case s.hadRuntimeError:
		return ExitRuntime
	}
	return ExitOK
}

// Incomplete reports whether source stops partway through a construct, so
// that appending more input could make it parse: an open backtick string or
// block comment, or syntax errors that all occur at end of input. Any other
// lex or syntax error makes the input final.
func Incomplete(source string) bool {
	tokens, lexErrs := lexer.Tokenize(source)
	for _, e := range lexErrs {
		if e.Incomplete {
			return true
		}
	}
	if len(lexErrs) > 0 {
		return false
	}
	_, synErrs := parser.ParseAll(tokens, nil)
	for _, e := range synErrs {
		if !e.AtEnd() && !e.Truncated {
			return false
		}
	}
	return len(synErrs) > 0
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = diagnostics.FormatDiagnostic(d, true)
	}
	return strings.Join(msgs, "\n")
}
