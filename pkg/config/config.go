// Package config loads taco's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseMode selects how a syntax error affects the rest of the parse.
type ParseMode string

const (
	ParseCollect  ParseMode = "collect"
	ParseFailFast ParseMode = "fail-fast"
)

// DiagnosticsFormat selects how diagnostics are written.
type DiagnosticsFormat string

const (
	DiagnosticsText DiagnosticsFormat = "text"
	DiagnosticsJSON DiagnosticsFormat = "json"
)

// File names searched by Load.
const (
	ProjectFile = ".taco.yaml"
	UserDir     = ".taco"
	UserFile    = "config.yaml"
)

// Config holds the settings read from a config file.
type Config struct {
	Prompt             string            `yaml:"prompt"`
	ContinuationPrompt string            `yaml:"continuation_prompt"`
	HistoryFile        string            `yaml:"history_file"`
	Echo               bool              `yaml:"echo"`
	ParseMode          ParseMode         `yaml:"parse_mode"`
	Diagnostics        DiagnosticsFormat `yaml:"diagnostics"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prompt:             ">> ",
		ContinuationPrompt: ".. ",
		HistoryFile:        "~/.taco_history",
		Echo:               true,
		ParseMode:          ParseCollect,
		Diagnostics:        DiagnosticsText,
	}
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed")
	if e.Path != "" {
		b.WriteString(" for ")
		b.WriteString(e.Path)
	}
	b.WriteString(":")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads configuration for a project.
// Precedence: project (.taco.yaml) → user (~/.taco/config.yaml) → defaults.
// A missing file falls through to the next candidate; a file that exists
// but does not parse or validate is an error.
func Load(projectDir string) (*Config, error) {
	home, _ := os.UserHomeDir()

	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home != "" {
		candidates = append(candidates, filepath.Join(home, UserDir, UserFile))
	}

	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cfg.HistoryFile = expandHome(cfg.HistoryFile, home)
		return cfg, nil
	}

	cfg := Default()
	cfg.HistoryFile = expandHome(cfg.HistoryFile, home)
	return cfg, nil
}

// LoadFile reads one config file on top of the defaults. Keys the file
// does not set keep their default values; unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	errs := ValidationError{Path: c.Source}
	switch c.ParseMode {
	case ParseCollect, ParseFailFast:
	default:
		errs.Issues = append(errs.Issues,
			fmt.Sprintf("parse_mode must be %q or %q, got %q", ParseCollect, ParseFailFast, c.ParseMode))
	}
	switch c.Diagnostics {
	case DiagnosticsText, DiagnosticsJSON:
	default:
		errs.Issues = append(errs.Issues,
			fmt.Sprintf("diagnostics must be %q or %q, got %q", DiagnosticsText, DiagnosticsJSON, c.Diagnostics))
	}
	if c.Prompt == "" {
		errs.Issues = append(errs.Issues, "prompt must be a non-empty string")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes the config as YAML to path.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

func expandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
