package corpus

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"polyguard/internal/logging"
	"polyguard/internal/polydiv"
	"polyguard/internal/search"
)

// Default directories of a problem package's data tree.
const (
	SampleDir = "sample"
	SecretDir = "secret"
)

// Plan describes a whole fixture suite.
type Plan struct {
	Seed       int64          `yaml:"seed"`
	PoolMaxLen int            `yaml:"pool_max_len"`
	PoolLimit  int            `yaml:"pool_limit"`
	Bounds     LengthBounds   `yaml:"bounds"`
	MaxRetries int            `yaml:"max_retries"`
	Mix        MixWeights     `yaml:"mix"`
	Tokens     polydiv.Tokens `yaml:"tokens"`
	Cases      []CaseSpec     `yaml:"cases"`
}

// CaseSpec is one fixture of a plan. A case with Codes is written as given;
// otherwise Count codes are generated in Mode. MinLen and MaxLen override
// the plan bounds when set.
type CaseSpec struct {
	Name   string   `yaml:"name"`
	Dir    string   `yaml:"dir"`
	Mode   Mode     `yaml:"mode,omitempty"`
	Count  int      `yaml:"count,omitempty"`
	Codes  []string `yaml:"codes,omitempty"`
	MinLen int      `yaml:"min_len,omitempty"`
	MaxLen int      `yaml:"max_len,omitempty"`
}

// bounds resolves the case's length range against the plan's.
func (c CaseSpec) bounds(def LengthBounds) LengthBounds {
	b := def
	if c.MinLen > 0 {
		b.Min = c.MinLen
	}
	if c.MaxLen > 0 {
		b.Max = c.MaxLen
	}
	return b
}

// DefaultPlan returns the standard suite: four hand-written samples and
// twenty generated secret cases of growing size.
func DefaultPlan() *Plan {
	p := &Plan{
		Seed:       123456,
		PoolMaxLen: 20,
		PoolLimit:  5000,
		Bounds:     LengthBounds{Min: 1, Max: 20},
		MaxRetries: DefaultMaxRetries,
		Mix:        DefaultMixWeights(),
		Tokens:     polydiv.DefaultTokens(),
	}

	samples := [][]string{
		{"381654729", "26", "58", "6"},
		{"381654729", "6", "8"},
		{"10", "12"},
		{"38", "1", "123"},
	}
	for i, codes := range samples {
		p.Cases = append(p.Cases, CaseSpec{
			Name:  fmt.Sprintf("sample%d", i+1),
			Dir:   SampleDir,
			Codes: codes,
		})
	}

	secret := func(mode Mode, count, minLen, maxLen int) {
		p.Cases = append(p.Cases, CaseSpec{
			Name:   fmt.Sprintf("secret%d", len(p.Cases)-len(samples)+1),
			Dir:    SecretDir,
			Mode:   mode,
			Count:  count,
			MinLen: minLen,
			MaxLen: maxLen,
		})
	}
	for _, n := range []int{1, 2, 3} {
		secret(ModeMixed, n, 0, 0)
	}
	for _, n := range []int{5, 10, 20} {
		secret(ModeAllSecure, n, 0, 0)
	}
	for _, n := range []int{10, 20} {
		secret(ModeAllInsecure, n, 0, 0)
	}
	for _, n := range []int{50, 75, 100} {
		secret(ModeMixed, n, 0, 0)
	}
	for _, n := range []int{200, 300, 500} {
		secret(ModeMixed, n, 10, 20)
	}
	for _, n := range []int{25, 50, 100} {
		secret(ModeNearMiss, n, 10, 25)
	}
	secret(ModeAllSecure, 150, 0, 0)
	secret(ModeAllInsecure, 120, 0, 0)
	secret(ModeMixed, 300, 0, 0)

	return p
}

// LoadPlan reads a YAML plan. Fields the file omits keep DefaultPlan's
// values; a cases list in the file replaces the default cases entirely.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	p := DefaultPlan()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the plan before any fixture is written.
func (p *Plan) Validate() error {
	if p.PoolMaxLen <= 0 || p.PoolLimit <= 0 {
		return fmt.Errorf("%w: pool_max_len and pool_limit must be positive", ErrInvalidRequest)
	}
	if err := p.Bounds.validate(); err != nil {
		return err
	}
	if err := p.Mix.validate(); err != nil {
		return err
	}
	if len(p.Cases) == 0 {
		return fmt.Errorf("%w: plan has no cases", ErrInvalidRequest)
	}

	seen := make(map[string]bool, len(p.Cases))
	for _, c := range p.Cases {
		if c.Name == "" || strings.ContainsAny(c.Name, `/\`) {
			return fmt.Errorf("%w: bad case name %q", ErrInvalidRequest, c.Name)
		}
		key := filepath.Join(c.Dir, c.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate case %s", ErrInvalidRequest, key)
		}
		seen[key] = true

		if len(c.Codes) > 0 {
			continue
		}
		if _, err := ParseMode(string(c.Mode)); err != nil {
			return fmt.Errorf("case %s: %w", c.Name, err)
		}
		if c.Count <= 0 {
			return fmt.Errorf("%w: case %s needs a positive count", ErrInvalidRequest, c.Name)
		}
		if err := c.bounds(p.Bounds).validate(); err != nil {
			return fmt.Errorf("case %s: %w", c.Name, err)
		}
	}
	return nil
}

// Written records one fixture persisted by BuildPlan.
type Written struct {
	Path    string
	Fixture *Fixture
}

// NewPlanBuilder enumerates the plan's secure pool and returns a Builder
// seeded from the plan.
func NewPlanBuilder(p *Plan) (*Builder, error) {
	timer := logging.StartTimer(logging.CategorySearch, "pool enumeration")
	pool, err := search.NewPool(p.PoolMaxLen, p.PoolLimit)
	timer.Stop()
	if err != nil {
		return nil, err
	}
	logging.CorpusDebug("Secure pool ready: %d codes (max_len=%d, limit=%d)", pool.Len(), p.PoolMaxLen, p.PoolLimit)

	return NewBuilder(pool, rand.New(rand.NewSource(p.Seed)), Options{
		Tokens:     p.Tokens,
		MaxRetries: p.MaxRetries,
		Mix:        p.Mix,
	})
}

// BuildPlan generates every case of p in order and writes it under root.
// Cases are built sequentially so output depends only on the seed.
func (b *Builder) BuildPlan(p *Plan, root string) ([]Written, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	timer := logging.StartTimer(logging.CategoryCorpus, "plan build")
	defer timer.StopWithInfo()

	out := make([]Written, 0, len(p.Cases))
	for _, c := range p.Cases {
		var (
			f   *Fixture
			err error
		)
		if len(c.Codes) > 0 {
			f, err = b.FromCodes(c.Name, c.Codes)
		} else {
			f, err = b.Build(c.Mode, c.Count, c.bounds(p.Bounds))
		}
		if err != nil {
			return out, fmt.Errorf("case %s: %w", c.Name, err)
		}
		f.Name = c.Name

		path, err := WriteFixture(filepath.Join(root, c.Dir), f)
		if err != nil {
			return out, fmt.Errorf("case %s: %w", c.Name, err)
		}
		logging.Corpus("Wrote %s (%s, %d codes)", path, f.Mode, len(f.Codes))
		out = append(out, Written{Path: path, Fixture: f})
	}
	return out, nil
}

// Generate builds p from scratch under root.
func Generate(p *Plan, root string) ([]Written, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b, err := NewPlanBuilder(p)
	if err != nil {
		return nil, err
	}
	return b.BuildPlan(p, root)
}
