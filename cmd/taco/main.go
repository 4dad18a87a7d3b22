// Command taco is the taco interpreter: a REPL, a file runner and a few
// source tools.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thomasrohde/taco/pkg/config"
	"github.com/thomasrohde/taco/pkg/diagnostics"
	"github.com/thomasrohde/taco/pkg/evaluator"
	"github.com/thomasrohde/taco/pkg/formatter"
	"github.com/thomasrohde/taco/pkg/help"
	"github.com/thomasrohde/taco/pkg/lexer"
	"github.com/thomasrohde/taco/pkg/runtime"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli holds the process streams so commands can be driven from tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	if len(args) == 0 {
		return c.cmdRepl(nil)
	}

	switch args[0] {
	case "run":
		return c.cmdRun(args[1:])
	case "repl":
		return c.cmdRepl(args[1:])
	case "check":
		return c.cmdCheck(args[1:])
	case "fmt":
		return c.cmdFmt(args[1:])
	case "tokens":
		return c.cmdTokens(args[1:])
	case "ast":
		return c.cmdAst(args[1:])
	case "trace":
		return c.cmdTrace(args[1:])
	case "config":
		return c.cmdConfig(args[1:])
	case "help", "--help", "-h":
		return c.cmdHelp(args[1:])
	case "version", "--version":
		fmt.Fprintf(c.stdout, "taco %s\n", help.Version)
		return runtime.ExitOK
	}

	if len(args) > 1 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintln(c.stderr, "Usage: taco [file]")
		return runtime.ExitUsage
	}
	return c.cmdRun(args)
}

func (c *cli) cmdRun(args []string) int {
	var file, tracePath string
	var failFast, jsonDiag bool

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--fail-fast":
			failFast = true
		case "--json":
			jsonDiag = true
		case "--trace":
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
				fmt.Fprintln(c.stderr, "usage: taco run <file|-> --trace <out.jsonl>")
				return runtime.ExitUsage
			}
			i++
			tracePath = args[i]
		case "-":
			file = "-"
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(c.stderr, "usage: taco run <file|-> [--fail-fast] [--json] [--trace <out.jsonl>]")
		return runtime.ExitUsage
	}

	cfg, code := c.loadConfig(jsonDiag)
	if code != 0 {
		return code
	}
	pretty := !jsonDiag && cfg.Diagnostics != config.DiagnosticsJSON

	source, code := c.readSource(file, pretty)
	if code != 0 {
		return code
	}

	opts := []runtime.Option{
		runtime.WithStdout(c.stdout),
		runtime.WithStderr(c.stderr),
		runtime.WithConfig(cfg),
		runtime.WithEcho(false),
	}
	if failFast {
		opts = append(opts, runtime.WithFailFast(true))
	}
	if jsonDiag {
		opts = append(opts, runtime.WithJSONDiagnostics(true))
	}

	var traceErr error
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			c.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot write trace file: %s", tracePath), 0, ""), pretty)
			return runtime.ExitIO
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		opts = append(opts,
			runtime.WithRunID(fmt.Sprintf("run-%d", time.Now().UnixNano())),
			runtime.WithTrace(func(ev evaluator.TraceEvent) {
				if traceErr == nil {
					traceErr = enc.Encode(ev)
				}
			}),
		)
	}

	s := runtime.New(opts...)
	err := s.Run(context.Background(), source)

	if traceErr != nil {
		c.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot write trace file: %s: %v", tracePath, traceErr), 0, ""), pretty)
		return runtime.ExitIO
	}

	var dErr *runtime.DiagnosticError
	var rtErr *evaluator.RuntimeError
	if err != nil && !errors.As(err, &dErr) && !errors.As(err, &rtErr) {
		fmt.Fprintln(c.stderr, err.Error())
		return runtime.ExitRuntime
	}
	return s.ExitCode()
}

func (c *cli) cmdCheck(args []string) int {
	var file string
	jsonDiag := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			jsonDiag = true
		case "-":
			file = "-"
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(c.stderr, "usage: taco check <file> [--json]")
		return runtime.ExitUsage
	}

	source, code := c.readSource(file, !jsonDiag)
	if code != 0 {
		return code
	}

	diags := runtime.New().Check(source)
	if len(diags) > 0 {
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(diags, !jsonDiag))
		return runtime.ExitDataErr
	}

	if jsonDiag {
		fmt.Fprintln(c.stdout, "[]")
	} else {
		fmt.Fprintln(c.stdout, "No errors found.")
	}
	return runtime.ExitOK
}

func (c *cli) cmdFmt(args []string) int {
	var file string
	write := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--write":
			write = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(c.stderr, "usage: taco fmt <file> [--write]")
		return runtime.ExitUsage
	}

	source, code := c.readSource(file, true)
	if code != 0 {
		return code
	}

	formatted, err := runtime.New().Format(source)
	if err != nil {
		var dErr *runtime.DiagnosticError
		if errors.As(err, &dErr) {
			fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(dErr.Diagnostics, true))
		} else {
			fmt.Fprintln(c.stderr, err.Error())
		}
		return runtime.ExitDataErr
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(c.stderr, "warning: comments are not preserved by the formatter")
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			c.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot write file: %s", file), 0, ""), true)
			return runtime.ExitIO
		}
		return runtime.ExitOK
	}
	fmt.Fprint(c.stdout, formatted)
	return runtime.ExitOK
}

func (c *cli) cmdTokens(args []string) int {
	file := firstOperand(args)
	if file == "" {
		fmt.Fprintln(c.stderr, "usage: taco tokens <file>")
		return runtime.ExitUsage
	}

	source, code := c.readSource(file, true)
	if code != 0 {
		return code
	}

	tokens, errs := lexer.Scan(source, diagnostics.NewCollector(c.stderr, true))
	for _, tok := range tokens {
		fmt.Fprintln(c.stdout, tok.String())
	}
	if len(errs) > 0 {
		return runtime.ExitDataErr
	}
	return runtime.ExitOK
}

func (c *cli) cmdAst(args []string) int {
	file := firstOperand(args)
	if file == "" {
		fmt.Fprintln(c.stderr, "usage: taco ast <file>")
		return runtime.ExitUsage
	}

	source, code := c.readSource(file, true)
	if code != 0 {
		return code
	}

	s := runtime.New(runtime.WithStdout(c.stdout), runtime.WithStderr(c.stderr))
	stmts, err := s.ScanParse(source)
	if err != nil {
		return s.ExitCode()
	}
	fmt.Fprint(c.stdout, formatter.Tree(stmts))
	return runtime.ExitOK
}

func (c *cli) cmdTrace(args []string) int {
	var file string
	textOutput := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			textOutput = false
		case "--text":
			textOutput = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(c.stderr, "usage: taco trace <file.jsonl> [--json|--text]")
		return runtime.ExitUsage
	}

	f, err := os.Open(file)
	if err != nil {
		c.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), 0, ""), true)
		return runtime.ExitIO
	}
	defer f.Close()

	summary, err := computeTraceSummary(f)
	if err != nil {
		c.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read trace: %s: %v", file, err), 0, ""), true)
		return runtime.ExitIO
	}
	if textOutput {
		printTraceSummaryText(c.stdout, summary)
		return runtime.ExitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Fprintln(c.stdout, string(b))
	return runtime.ExitOK
}

func (c *cli) cmdHelp(args []string) int {
	topic := firstOperand(args)
	if topic == "" {
		fmt.Fprint(c.stdout, help.QUICKREF)
		return runtime.ExitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return runtime.ExitUsage
	}
	fmt.Fprintln(c.stdout, content)
	return runtime.ExitOK
}

func (c *cli) cmdConfig(args []string) int {
	for _, arg := range args {
		if arg == "--init" {
			return c.initConfig()
		}
	}

	cfg, code := c.loadConfig(false)
	if code != 0 {
		return code
	}

	out, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(c.stderr, "error encoding config: %s\n", err)
		return runtime.ExitIO
	}
	if cfg.Source != "" {
		fmt.Fprintf(c.stdout, "# source: %s\n", cfg.Source)
	} else {
		fmt.Fprintln(c.stdout, "# source: defaults")
	}
	fmt.Fprint(c.stdout, string(out))
	return runtime.ExitOK
}

// initConfig writes the default configuration to the project file in the
// current directory. An existing file is left alone.
func (c *cli) initConfig() int {
	cwd, _ := os.Getwd()
	path := filepath.Join(cwd, config.ProjectFile)
	if _, err := os.Stat(path); err == nil {
		c.printDiag(diagnostics.MakeDiag(diagnostics.EConfig, fmt.Sprintf("%s already exists", config.ProjectFile), 0, ""), true)
		return runtime.ExitIO
	}
	if err := config.Default().Save(path); err != nil {
		c.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot write file: %s", path), 0, ""), true)
		return runtime.ExitIO
	}
	fmt.Fprintf(c.stdout, "wrote %s\n", config.ProjectFile)
	return runtime.ExitOK
}

// loadConfig reads the configuration for the current directory. A broken
// file is reported as E_CONFIG.
func (c *cli) loadConfig(jsonDiag bool) (*config.Config, int) {
	cwd, _ := os.Getwd()
	cfg, err := config.Load(cwd)
	if err != nil {
		c.printDiag(diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), 0, ""), !jsonDiag)
		return nil, runtime.ExitIO
	}
	return cfg, 0
}

func (c *cli) readSource(file string, pretty bool) (string, int) {
	if file == "-" {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			c.printDiag(diagnostics.MakeDiag(diagnostics.EIO, "cannot read stdin", 0, ""), pretty)
			return "", runtime.ExitIO
		}
		return string(data), 0
	}

	source, err := os.ReadFile(file)
	if err != nil {
		c.printDiag(diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), 0, ""), pretty)
		return "", runtime.ExitIO
	}
	return string(source), 0
}

func (c *cli) printDiag(d diagnostics.Diagnostic, pretty bool) {
	fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostic(d, pretty))
}

func firstOperand(args []string) string {
	for _, arg := range args {
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			return arg
		}
	}
	return ""
}
