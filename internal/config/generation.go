package config

import "fmt"

// GenerationConfig configures corpus generation.
type GenerationConfig struct {
	// Seed for every random draw in a generation pass
	Seed int64 `yaml:"seed"`

	// Secure pool bounds (depth and result cap of the backtracking search)
	PoolMaxLen int `yaml:"pool_max_len"`
	PoolLimit  int `yaml:"pool_limit"`

	// Length bounds for random and crafted codes
	MinLen int `yaml:"min_len"`
	MaxLen int `yaml:"max_len"`

	// Rejection-sampling ceiling per insecure code
	MaxRetries int `yaml:"max_retries"`

	// Per-slot source weights for mixed cases
	Mix MixConfig `yaml:"mix"`
}

// MixConfig weights the three sources of a mixed case.
type MixConfig struct {
	Pool     float64 `yaml:"pool"`
	Insecure float64 `yaml:"insecure"`
	Crafted  float64 `yaml:"crafted"`
}

// Validate checks generation bounds.
func (g GenerationConfig) Validate() error {
	if g.PoolMaxLen <= 0 || g.PoolLimit <= 0 {
		return fmt.Errorf("pool_max_len and pool_limit must be positive (got %d, %d)", g.PoolMaxLen, g.PoolLimit)
	}
	if g.MinLen <= 0 || g.MaxLen < g.MinLen {
		return fmt.Errorf("length bounds must satisfy 1 <= min_len <= max_len (got %d, %d)", g.MinLen, g.MaxLen)
	}
	if g.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be positive (got %d)", g.MaxRetries)
	}
	if g.Mix.Pool < 0 || g.Mix.Insecure < 0 || g.Mix.Crafted < 0 {
		return fmt.Errorf("mix weights must not be negative")
	}
	if g.Mix.Pool+g.Mix.Insecure+g.Mix.Crafted <= 0 {
		return fmt.Errorf("mix weights must not all be zero")
	}
	return nil
}
