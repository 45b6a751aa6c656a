package config

import (
	"fmt"
	"time"
)

// ExecutionConfig configures how fixtures are verified against external
// programs.
type ExecutionConfig struct {
	// Format validator command; reads a fixture input on stdin
	Validator []string `yaml:"validator"`

	// Exit code the validator uses to accept an input
	ValidatorAcceptCode int `yaml:"validator_accept_code"`

	// Judge command; reads a fixture input on stdin, writes the answer
	Judge []string `yaml:"judge"`

	// Per-process timeouts
	ValidatorTimeout string `yaml:"validator_timeout"`
	JudgeTimeout     string `yaml:"judge_timeout"`

	// Fixtures verified in parallel
	Workers int `yaml:"workers"`

	// Longest passcode the built-in format validator accepts
	MaxDigits int `yaml:"max_digits"`

	// Environment variables passed through to child processes
	AllowedEnvVars []string `yaml:"allowed_env_vars"`
}

// Validate checks the execution settings that do not depend on the command
// being run. Missing validator/judge commands are reported by the harness.
func (e ExecutionConfig) Validate() error {
	if e.Workers <= 0 {
		return fmt.Errorf("workers must be positive (got %d)", e.Workers)
	}
	if e.MaxDigits <= 0 {
		return fmt.Errorf("max_digits must be positive (got %d)", e.MaxDigits)
	}
	for name, v := range map[string]string{"validator_timeout": e.ValidatorTimeout, "judge_timeout": e.JudgeTimeout} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive (got %s)", name, v)
		}
	}
	return nil
}

// GetValidatorTimeout returns the validator timeout as a duration.
func (e ExecutionConfig) GetValidatorTimeout() time.Duration {
	d, err := time.ParseDuration(e.ValidatorTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// GetJudgeTimeout returns the judge timeout as a duration.
func (e ExecutionConfig) GetJudgeTimeout() time.Duration {
	d, err := time.ParseDuration(e.JudgeTimeout)
	if err != nil || d <= 0 {
		return 300 * time.Second
	}
	return d
}
