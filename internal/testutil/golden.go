// Package testutil provides shared test helpers for taco Go tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ScenariosDir is the scenario root, relative to the cmd/taco package.
const ScenariosDir = "testdata/scenarios"

// Scenario is one CLI invocation loaded from a scenario.json file.
type Scenario struct {
	Cmd    []string       `json:"cmd"`
	Stdin  string         `json:"stdin,omitempty"`
	Meta   *ScenarioMeta  `json:"meta,omitempty"`
	Expect ExpectedResult `json:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Tags []string `json:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode         int             `json:"exitCode"`
	StdoutText       *string         `json:"stdoutText,omitempty"`
	StdoutContains   string          `json:"stdoutContains,omitempty"`
	StderrText       *string         `json:"stderrText,omitempty"`
	StderrContains   string          `json:"stderrContains,omitempty"`
	StderrJSONSubset json.RawMessage `json:"stderrJsonSubset,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.json")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	return dirs, nil
}

// ResolveArgs rewrites every argument naming a file inside the scenario
// directory to its path, leaving flags and "-" untouched.
func ResolveArgs(scenarioDir string, cmd []string) []string {
	out := make([]string, len(cmd))
	for i, arg := range cmd {
		out[i] = arg
		if arg == "-" || strings.HasPrefix(arg, "-") {
			continue
		}
		path := filepath.Join(scenarioDir, arg)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			out[i] = path
		}
	}
	return out
}
