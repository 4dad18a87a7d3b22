package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/thomasrohde/taco/pkg/evaluator"
)

// TraceSummary is the aggregate of one NDJSON trace written by run --trace.
type TraceSummary struct {
	RunID         string  `json:"runId"`
	TotalEvents   int     `json:"totalEvents"`
	Statements    int     `json:"statements"`
	Prints        int     `json:"prints"`
	RuntimeErrors int     `json:"runtimeErrors"`
	LastValue     string  `json:"lastValue,omitempty"`
	ErrorMessage  string  `json:"errorMessage,omitempty"`
	StartTime     string  `json:"startTime,omitempty"`
	EndTime       string  `json:"endTime,omitempty"`
	DurationMs    float64 `json:"durationMs"`
}

type traceLine struct {
	Event string         `json:"event"`
	RunID string         `json:"runId"`
	TS    string         `json:"ts"`
	Line  int            `json:"line"`
	Data  map[string]any `json:"data,omitempty"`
}

// maxTraceLine bounds one NDJSON line; print events carry whole strings.
const maxTraceLine = 64 << 20

func computeTraceSummary(r io.Reader) (*TraceSummary, error) {
	summary := &TraceSummary{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTraceLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event traceLine
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch evaluator.TraceEventType(event.Event) {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.TS
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.TS
		case evaluator.TraceStmtEnd:
			summary.Statements++
			if raw, ok := event.Data["value"]; ok {
				summary.LastValue = evaluator.Stringify(evaluator.ValueFromJSON(raw))
			}
		case evaluator.TracePrint:
			summary.Prints++
		case evaluator.TraceRuntimeError:
			summary.RuntimeErrors++
			if msg, ok := event.Data["message"].(string); ok {
				summary.ErrorMessage = fmt.Sprintf("[Line %d] Error: %s", event.Line, msg)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := parseTime(summary.StartTime)
		end, err2 := parseTime(summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}

	return summary, nil
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Statements: %d\n", s.Statements)
	fmt.Fprintf(w, "Prints: %d\n", s.Prints)
	fmt.Fprintf(w, "Runtime errors: %d\n", s.RuntimeErrors)
	if s.ErrorMessage != "" {
		fmt.Fprintf(w, "  %s\n", s.ErrorMessage)
	}
	if s.LastValue != "" {
		fmt.Fprintf(w, "Last value: %s\n", s.LastValue)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
