package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/thomasrohde/taco/pkg/config"
	"github.com/thomasrohde/taco/pkg/diagnostics"
	"github.com/thomasrohde/taco/pkg/evaluator"
	"github.com/thomasrohde/taco/pkg/help"
	"github.com/thomasrohde/taco/pkg/runtime"
)

var banner = fmt.Sprintf("taco %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.", help.Version)

// lineReader is the part of *liner.State the REPL loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func (c *cli) cmdRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(c.stderr, "usage: taco repl")
		return runtime.ExitUsage
	}

	cfg, code := c.loadConfig(false)
	if code != 0 {
		return code
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			_ = os.MkdirAll(filepath.Dir(cfg.HistoryFile), 0o755)
			if f, err := os.Create(cfg.HistoryFile); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			_ = ln.Close()
			os.Exit(130)
		}
	}()

	fmt.Fprintln(c.stdout, banner)

	s := runtime.New(
		runtime.WithStdout(c.stdout),
		runtime.WithStderr(c.stderr),
		runtime.WithConfig(cfg),
	)
	return replLoop(context.Background(), ln, s, cfg, c.stdout)
}

// replLoop reads entries until EOF or :quit. Every entry runs against the
// same session; errors are reported and the flags cleared before the next.
func replLoop(ctx context.Context, r lineReader, s *runtime.Session, cfg *config.Config, stdout io.Writer) int {
	for {
		src, ok := readEntry(r, cfg.Prompt, cfg.ContinuationPrompt)
		if !ok {
			fmt.Fprintln(stdout)
			return runtime.ExitOK
		}

		entry := strings.TrimSpace(src)
		if entry == "" {
			continue
		}
		r.AppendHistory(strings.ReplaceAll(entry, "\n", " "))

		if strings.HasPrefix(entry, ":") {
			if replCommand(entry, s, stdout) {
				return runtime.ExitOK
			}
			continue
		}

		_ = s.Run(ctx, src)
		s.Reset()
	}
}

// readEntry collects lines until they form a complete entry. It returns
// false once input is exhausted and nothing is buffered. Ctrl-C drops the
// buffered lines.
func readEntry(r lineReader, prompt, cont string) (string, bool) {
	var buf strings.Builder
	for {
		p := prompt
		if buf.Len() > 0 {
			p = cont
		}

		line, err := r.Prompt(p)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			return "", true
		case errors.Is(err, io.EOF):
			if buf.Len() > 0 {
				return buf.String(), true
			}
			return "", false
		case err != nil:
			return "", false
		}

		if buf.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return buf.String(), true
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		src := buf.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !runtime.Incomplete(src) {
			return src, true
		}
	}
}

// replCommand runs a colon command and reports whether the REPL should exit.
func replCommand(entry string, s *runtime.Session, stdout io.Writer) bool {
	fields := strings.Fields(entry)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":reset":
		s.ResetEnv()
		fmt.Fprintln(stdout, "environment cleared")
	case ":env":
		env := s.Env()
		for _, name := range env.Names() {
			val, _ := env.Lookup(name)
			fmt.Fprintf(stdout, "%s = %s\n", name, evaluator.Stringify(val))
		}
	case ":check":
		src := strings.TrimSpace(strings.TrimPrefix(entry, fields[0]))
		if src == "" {
			fmt.Fprintln(stdout, "usage: :check <statements>")
			return false
		}
		if diags := s.Check(src); len(diags) > 0 {
			fmt.Fprintln(stdout, diagnostics.FormatDiagnostics(diags, true))
		} else {
			fmt.Fprintln(stdout, "No errors found.")
		}
	case ":help":
		if len(fields) > 1 {
			if _, content, err := help.MatchTopic(fields[1]); err == nil {
				fmt.Fprintln(stdout, content)
			} else {
				fmt.Fprintln(stdout, err)
			}
			return false
		}
		fmt.Fprintln(stdout, help.Topics["repl"])
	default:
		fmt.Fprintf(stdout, "unknown command %s; type :help for commands\n", fields[0])
	}
	return false
}
