package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// RunConfig describes one search run. It is read from a YAML file and
// overridden by command-line flags.
//
// Example:
//
//	problem: grid
//	maze:
//	  - "S..#"
//	  - ".#.."
//	  - "...G"
//	algorithm: astar
//	discard: all
//	parallelism: 4
//	eval_timeout: 50ms
//	max_solutions: 1
//	events: events.jsonl
type RunConfig struct {
	Problem          string        `yaml:"problem"`
	Size             int           `yaml:"size"`
	Maze             []string      `yaml:"maze"`
	Algorithm        string        `yaml:"algorithm"`
	Discard          string        `yaml:"discard"`
	Parallelism      int           `yaml:"parallelism"`
	EvalTimeout      time.Duration `yaml:"eval_timeout"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxSolutions     int           `yaml:"max_solutions"`
	MaxExpansions    int           `yaml:"max_expansions"`
	MaxDiscrepancies int           `yaml:"max_discrepancies"`
	Seed             uint64        `yaml:"seed"`
	Iterations       int           `yaml:"iterations"`
	Events           string        `yaml:"events"`
	Metrics          bool          `yaml:"metrics"`
}

// DefaultRunConfig returns the configuration used when neither a file nor
// flags say otherwise.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Problem:          "path",
		Size:             8,
		Algorithm:        "astar",
		Discard:          "all",
		Parallelism:      1,
		MaxSolutions:     1,
		MaxDiscrepancies: -1,
		Iterations:       1000,
	}
}

// LoadRunConfig reads a YAML run file on top of the defaults.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set explicitly into cfg.
func applyFlags(cfg *RunConfig, fs *pflag.FlagSet, set RunConfig) {
	if fs.Changed("problem") {
		cfg.Problem = set.Problem
	}
	if fs.Changed("size") {
		cfg.Size = set.Size
	}
	if fs.Changed("algorithm") {
		cfg.Algorithm = set.Algorithm
	}
	if fs.Changed("discard") {
		cfg.Discard = set.Discard
	}
	if fs.Changed("parallelism") {
		cfg.Parallelism = set.Parallelism
	}
	if fs.Changed("eval-timeout") {
		cfg.EvalTimeout = set.EvalTimeout
	}
	if fs.Changed("timeout") {
		cfg.Timeout = set.Timeout
	}
	if fs.Changed("max-solutions") {
		cfg.MaxSolutions = set.MaxSolutions
	}
	if fs.Changed("max-expansions") {
		cfg.MaxExpansions = set.MaxExpansions
	}
	if fs.Changed("max-discrepancies") {
		cfg.MaxDiscrepancies = set.MaxDiscrepancies
	}
	if fs.Changed("seed") {
		cfg.Seed = set.Seed
	}
	if fs.Changed("iterations") {
		cfg.Iterations = set.Iterations
	}
	if fs.Changed("events") {
		cfg.Events = set.Events
	}
	if fs.Changed("metrics") {
		cfg.Metrics = set.Metrics
	}
}
