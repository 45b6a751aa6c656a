package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "polyguard" {
		t.Errorf("expected Name=polyguard, got %s", cfg.Name)
	}
	if cfg.Execution.ValidatorAcceptCode != 42 {
		t.Errorf("expected ValidatorAcceptCode=42, got %d", cfg.Execution.ValidatorAcceptCode)
	}
	if cfg.Generation.PoolMaxLen != 20 || cfg.Generation.PoolLimit != 5000 {
		t.Errorf("unexpected pool bounds: %d/%d", cfg.Generation.PoolMaxLen, cfg.Generation.PoolLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "polyguard.yaml")

	cfg := DefaultConfig()
	cfg.Execution.Judge = []string{"python3", "judge.py"}
	cfg.Execution.Workers = 8
	cfg.Output.SecureToken = "Firewall is secure!"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Execution.Judge) != 2 || loaded.Execution.Judge[1] != "judge.py" {
		t.Errorf("unexpected judge: %v", loaded.Execution.Judge)
	}
	if loaded.Execution.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", loaded.Execution.Workers)
	}
	if loaded.Output.SecureToken != "Firewall is secure!" {
		t.Errorf("unexpected secure token: %q", loaded.Output.SecureToken)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Generation.Seed != 123456 {
		t.Errorf("expected default seed, got %d", cfg.Generation.Seed)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyguard.yaml")
	content := `execution:
  validator: ["python3", "validate.py"]
  judge_timeout: 5s
generation:
  seed: 7
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Generation.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.Generation.Seed)
	}
	if cfg.Generation.PoolLimit != 5000 {
		t.Errorf("expected default pool limit, got %d", cfg.Generation.PoolLimit)
	}
	if cfg.Execution.GetJudgeTimeout() != 5*time.Second {
		t.Errorf("expected 5s judge timeout, got %s", cfg.Execution.GetJudgeTimeout())
	}
	if cfg.Execution.GetValidatorTimeout() != 60*time.Second {
		t.Errorf("expected default validator timeout, got %s", cfg.Execution.GetValidatorTimeout())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyguard.yaml")
	if err := os.WriteFile(path, []byte("execution: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero pool limit", func(c *Config) { c.Generation.PoolLimit = 0 }},
		{"inverted bounds", func(c *Config) { c.Generation.MinLen, c.Generation.MaxLen = 10, 5 }},
		{"zero min length", func(c *Config) { c.Generation.MinLen = 0 }},
		{"zero retries", func(c *Config) { c.Generation.MaxRetries = 0 }},
		{"negative weight", func(c *Config) { c.Generation.Mix.Crafted = -1 }},
		{"all weights zero", func(c *Config) { c.Generation.Mix = MixConfig{} }},
		{"zero workers", func(c *Config) { c.Execution.Workers = 0 }},
		{"bad timeout", func(c *Config) { c.Execution.JudgeTimeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Execution.ValidatorTimeout = "-1s" }},
		{"empty token", func(c *Config) { c.Output.NotSecureToken = " " }},
		{"equal tokens", func(c *Config) { c.Output.NotSecureToken = c.Output.SecureToken }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestTimeoutFallbacks(t *testing.T) {
	e := ExecutionConfig{ValidatorTimeout: "nope", JudgeTimeout: ""}
	if e.GetValidatorTimeout() != 60*time.Second {
		t.Errorf("unexpected validator fallback %s", e.GetValidatorTimeout())
	}
	if e.GetJudgeTimeout() != 300*time.Second {
		t.Errorf("unexpected judge fallback %s", e.GetJudgeTimeout())
	}
}
