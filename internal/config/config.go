// Package config loads polyguard settings from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when --config is
// not given.
const DefaultConfigFile = "polyguard.yaml"

// Config holds all polyguard configuration.
type Config struct {
	Name string `yaml:"name"`

	// Answer tokens written to .ans files and printed by the judge
	Output OutputConfig `yaml:"output"`

	// Corpus generation
	Generation GenerationConfig `yaml:"generation"`

	// Fixture verification
	Execution ExecutionConfig `yaml:"execution"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig configures the answer header lines.
type OutputConfig struct {
	SecureToken    string `yaml:"secure_token"`
	NotSecureToken string `yaml:"not_secure_token"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "polyguard",

		Output: OutputConfig{
			SecureToken:    "secure",
			NotSecureToken: "not secure",
		},

		Generation: GenerationConfig{
			Seed:       123456,
			PoolMaxLen: 20,
			PoolLimit:  5000,
			MinLen:     1,
			MaxLen:     20,
			MaxRetries: 10000,
			Mix: MixConfig{
				Pool:     0.5,
				Insecure: 0.4,
				Crafted:  0.1,
			},
		},

		Execution: ExecutionConfig{
			ValidatorAcceptCode: 42,
			ValidatorTimeout:    "60s",
			JudgeTimeout:        "300s",
			Workers:             4,
			MaxDigits:           25,
			AllowedEnvVars:      []string{"PATH", "HOME", "LANG", "LC_ALL", "TMPDIR", "PYTHONPATH", "JAVA_HOME"},
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults if config file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Commands are split on whitespace; quoting is not interpreted.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("POLYGUARD_VALIDATOR"); v != "" {
		c.Execution.Validator = strings.Fields(v)
	}
	if v := os.Getenv("POLYGUARD_JUDGE"); v != "" {
		c.Execution.Judge = strings.Fields(v)
	}
	if v := os.Getenv("POLYGUARD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POLYGUARD_WORKERS %q: %w", v, err)
		}
		c.Execution.Workers = n
	}
	if v := os.Getenv("POLYGUARD_TIMEOUT"); v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid POLYGUARD_TIMEOUT %q: %w", v, err)
		}
		c.Execution.ValidatorTimeout = v
		c.Execution.JudgeTimeout = v
	}
	if v := os.Getenv("POLYGUARD_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid POLYGUARD_SEED %q: %w", v, err)
		}
		c.Generation.Seed = seed
	}
	if v := os.Getenv("POLYGUARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	if err := c.Execution.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Output.SecureToken) == "" || strings.TrimSpace(c.Output.NotSecureToken) == "" {
		return fmt.Errorf("output tokens must not be empty")
	}
	if c.Output.SecureToken == c.Output.NotSecureToken {
		return fmt.Errorf("output tokens must differ, both are %q", c.Output.SecureToken)
	}
	return nil
}
