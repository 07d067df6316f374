// Package session loads and validates the orchestration runtime's YAML
// configuration: Scheduler tuning, GuardrailManager limits, Router agent
// directories, and Planner preferences (spec.md §6 recognized options).
//
// Loading follows the teacher's pkg/config/loader.go pipeline: parse YAML,
// merge onto built-in defaults with dario.cat/mergo (user values win), then
// validate. A config file is optional — an empty or missing configDir
// yields DefaultConfig() untouched.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/codeready-toolchain/swarmweave/pkg/retry"
)

// SchedulerConfig mirrors pkg/scheduler.Options in YAML-serializable form.
type SchedulerConfig struct {
	MaxConcurrency    int           `yaml:"maxConcurrency"`
	PerTaskTimeoutMs  int           `yaml:"perTaskTimeoutMs"`
	SessionDeadlineMs int           `yaml:"sessionDeadlineMs"`
	MaxRetries        int           `yaml:"maxRetries"`
	Backoff           BackoffConfig `yaml:"backoff"`
}

// BackoffConfig mirrors pkg/retry.Policy in YAML-serializable form.
type BackoffConfig struct {
	BaseMs int     `yaml:"baseMs"`
	Factor float64 `yaml:"factor"`
	CapMs  int     `yaml:"capMs"`
	Jitter float64 `yaml:"jitter"`
}

// Policy converts a BackoffConfig into a retry.Policy.
func (b BackoffConfig) Policy(maxAttempts int) retry.Policy {
	return retry.Policy{
		Base:        time.Duration(b.BaseMs) * time.Millisecond,
		Factor:      b.Factor,
		Cap:         time.Duration(b.CapMs) * time.Millisecond,
		Jitter:      b.Jitter,
		MaxAttempts: maxAttempts,
	}
}

// GuardrailConfig holds the Pareto/Strategic validation limits read from
// configuration. Load validates them, but guardrails.Manager does not read
// them: it always applies its own fixed limits (5 items, 200 characters,
// 350 tokens).
type GuardrailConfig struct {
	MaxParetoItems       int `yaml:"maxParetoItems"`
	MaxParetoReasonChars int `yaml:"maxParetoReasonChars"`
	MaxStrategicTokens   int `yaml:"maxStrategicTokens"`
}

// RouterConfig tunes the AgentRegistry/Router discovery roots.
type RouterConfig struct {
	ProjectAgentsDir string `yaml:"projectAgentsDir"`
	UserAgentsDir    string `yaml:"userAgentsDir"`
}

// PlannerConfig tunes TaskPlanner decomposition preferences.
type PlannerConfig struct {
	MaxTasks              int    `yaml:"maxTasks"`
	DetailLevel           string `yaml:"detailLevel"`
	ParallelismPreference string `yaml:"parallelismPreference"`
}

// Config is the full, merged, validated runtime configuration.
type Config struct {
	Scheduler  SchedulerConfig `yaml:"scheduler"`
	Guardrails GuardrailConfig `yaml:"guardrails"`
	Router     RouterConfig    `yaml:"router"`
	Planner    PlannerConfig   `yaml:"planner"`
}

// DefaultConfig returns the built-in defaults, matching spec.md §4.5/§4.4's
// named defaults (maxRetries 3, backoff base 500ms/factor 2/cap 30s/jitter
// 0.2; pareto item/reason limits 5/200; strategic token budget 350).
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			MaxConcurrency:    0, // 0 = size to DAG, per pkg/scheduler.Options
			PerTaskTimeoutMs:  int(10 * time.Minute / time.Millisecond),
			SessionDeadlineMs: int(30 * time.Minute / time.Millisecond),
			MaxRetries:        3,
			Backoff: BackoffConfig{
				BaseMs: 500,
				Factor: 2,
				CapMs:  30000,
				Jitter: 0.2,
			},
		},
		Guardrails: GuardrailConfig{
			MaxParetoItems:       5,
			MaxParetoReasonChars: 200,
			MaxStrategicTokens:   350,
		},
		Router: RouterConfig{
			ProjectAgentsDir: ".swarmweave/agents",
		},
		Planner: PlannerConfig{
			MaxTasks:              12,
			DetailLevel:           "medium",
			ParallelismPreference: "medium",
		},
	}
}

// Load reads config.yaml from configDir, if present, and merges it onto
// DefaultConfig (user values override defaults field-by-field via mergo;
// a field the file sets to its zero value keeps the default).
// A missing configDir or missing file is not an error — it yields
// DefaultConfig() unchanged, matching spec.md §7 kind 6's "missing
// configuration is tolerated, not fatal" philosophy already applied to the
// AgentRegistry's scanDir.
func Load(configDir string) (*Config, error) {
	cfg := DefaultConfig()
	if configDir == "" {
		return cfg, nil
	}

	path := filepath.Join(configDir, "config.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("session: reading %s: %w", path, err)
	}

	var user Config
	if err := yaml.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("session: parsing %s: %w", path, err)
	}

	if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("session: merging %s onto defaults: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("session: validating configuration: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Scheduler.MaxRetries < 0 {
		return fmt.Errorf("scheduler.maxRetries must be >= 0")
	}
	if cfg.Scheduler.Backoff.Factor <= 0 {
		return fmt.Errorf("scheduler.backoff.factor must be > 0")
	}
	if cfg.Guardrails.MaxParetoItems <= 0 {
		return fmt.Errorf("guardrails.maxParetoItems must be > 0")
	}
	if cfg.Guardrails.MaxStrategicTokens <= 0 {
		return fmt.Errorf("guardrails.maxStrategicTokens must be > 0")
	}
	return nil
}
