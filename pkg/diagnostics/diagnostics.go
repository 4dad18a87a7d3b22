// Package diagnostics defines taco diagnostic types for lex/parse/runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Diagnostic code constants.
const (
	ELex       = "E_LEX"
	EParse     = "E_PARSE"
	EUndefined = "E_UNDEFINED"
	EType      = "E_TYPE"
	EDivZero   = "E_DIV_ZERO"
	EInternal  = "E_INTERNAL"
	EIO        = "E_IO"
	EConfig    = "E_CONFIG"
)

// IsRuntime reports whether code belongs to an error raised during evaluation.
func IsRuntime(code string) bool {
	switch code {
	case EUndefined, EType, EDivZero, EInternal:
		return true
	}
	return false
}

// Diagnostic represents a lex, parse, or runtime diagnostic.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Where   string `json:"where,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, line int, where string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Line:    line,
		Where:   where,
	}
}

// AtEnd is the location text for diagnostics raised on the EOF token.
func AtEnd() string {
	return "at end"
}

// AtLexeme is the location text for diagnostics raised on a token.
func AtLexeme(lexeme string) string {
	return fmt.Sprintf("at '%s'", lexeme)
}

// FormatDiagnostic formats a single diagnostic for display. The text form is
// "[line N] Error<where>: msg" for static errors and "[Line N] Error: msg"
// for runtime errors.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	if IsRuntime(d.Code) {
		return fmt.Sprintf("[Line %d] Error: %s", d.Line, d.Message)
	}
	if d.Line == 0 {
		return fmt.Sprintf("Error: %s", d.Message)
	}
	where := ""
	if d.Where != "" {
		where = " " + d.Where
	}
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, where, d.Message)
}

// FormatDiagnostics formats a slice of diagnostics, one per line.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, pretty)
	}
	return strings.Join(parts, "\n")
}

// Reporter receives diagnostics as they are detected.
type Reporter interface {
	Report(d Diagnostic)
}

type discard struct{}

func (discard) Report(Diagnostic) {}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

// Collector writes each diagnostic to an output stream as it arrives and
// keeps a copy for later inspection.
type Collector struct {
	w      io.Writer
	pretty bool
	diags  []Diagnostic
}

// NewCollector creates a Collector writing to w. A nil w only collects.
func NewCollector(w io.Writer, pretty bool) *Collector {
	return &Collector{w: w, pretty: pretty}
}

// Report records d and writes it.
func (c *Collector) Report(d Diagnostic) {
	c.diags = append(c.diags, d)
	if c.w != nil {
		fmt.Fprintln(c.w, FormatDiagnostic(d, c.pretty))
	}
}

// Diagnostics returns everything reported since the last Reset.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diags
}

// HasErrors reports whether anything was reported since the last Reset.
func (c *Collector) HasErrors() bool {
	return len(c.diags) > 0
}

// Reset forgets collected diagnostics.
func (c *Collector) Reset() {
	c.diags = nil
}
