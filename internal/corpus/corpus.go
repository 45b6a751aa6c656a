// Package corpus assembles labelled test fixtures for the passcode problem.
//
// A Builder draws codes from three sources: the precomputed secure pool,
// rejection-sampled random insecure codes, and near-miss codes from the
// crafter. Whatever the source, every fixture is labelled by the checker, so
// the expected answer never depends on what a generator intended.
package corpus

import (
	"errors"
	"fmt"
	"math/rand"

	"polyguard/internal/craft"
	"polyguard/internal/passcode"
	"polyguard/internal/polydiv"
	"polyguard/internal/search"
)

var (
	// ErrRetriesExhausted is returned when rejection sampling could not find
	// an insecure code within the retry ceiling.
	ErrRetriesExhausted = errors.New("corpus: retry ceiling reached while sampling insecure codes")

	// ErrInvalidRequest is returned for a non-positive count, bad length
	// bounds or an unknown mode.
	ErrInvalidRequest = errors.New("corpus: invalid build request")
)

// DefaultMaxRetries bounds rejection sampling for one insecure code.
const DefaultMaxRetries = 10000

// Mode selects how a fixture's codes are drawn.
type Mode string

const (
	ModeAllSecure   Mode = "all_secure"
	ModeAllInsecure Mode = "all_insecure"
	ModeMixed       Mode = "mixed"
	ModeNearMiss    Mode = "near_miss"

	// ModeExplicit marks fixtures built from hand-written codes.
	ModeExplicit Mode = "explicit"
)

// Modes lists the generated modes in a stable order.
func Modes() []Mode {
	return []Mode{ModeAllSecure, ModeAllInsecure, ModeMixed, ModeNearMiss}
}

// ParseMode converts a mode name. Only generated modes are accepted.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
}

// LengthBounds is an inclusive digit-count range for random and crafted
// codes. Pool draws are not restricted by it.
type LengthBounds struct {
	Min int `yaml:"min_len"`
	Max int `yaml:"max_len"`
}

func (b LengthBounds) validate() error {
	if b.Min < 1 || b.Max < b.Min {
		return fmt.Errorf("%w: length bounds [%d, %d]", ErrInvalidRequest, b.Min, b.Max)
	}
	return nil
}

// MixWeights are the relative odds of each source for a mixed slot.
type MixWeights struct {
	Pool     float64 `yaml:"pool"`
	Insecure float64 `yaml:"insecure"`
	Crafted  float64 `yaml:"crafted"`
}

// DefaultMixWeights returns 0.5 pool, 0.4 insecure, 0.1 crafted.
func DefaultMixWeights() MixWeights {
	return MixWeights{Pool: 0.5, Insecure: 0.4, Crafted: 0.1}
}

func (w MixWeights) total() float64 { return w.Pool + w.Insecure + w.Crafted }

func (w MixWeights) validate() error {
	if w.Pool < 0 || w.Insecure < 0 || w.Crafted < 0 || w.total() <= 0 {
		return fmt.Errorf("%w: mix weights %+v", ErrInvalidRequest, w)
	}
	return nil
}

// Options tune a Builder. Zero fields take their defaults.
type Options struct {
	Tokens     polydiv.Tokens
	MaxRetries int
	Mix        MixWeights
	Decider    polydiv.Decider
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Mix == (MixWeights{}) {
		o.Mix = DefaultMixWeights()
	}
	if o.Decider == nil {
		o.Decider = polydiv.Residual{}
	}
	return o
}

// Builder produces fixtures from one seeded source. It is not safe for
// concurrent use.
type Builder struct {
	pool    *search.Pool
	rng     *rand.Rand
	crafter *craft.Crafter
	opts    Options
}

// NewBuilder returns a Builder sampling secure codes from pool. The crafter
// shares rng, so a fixed seed reproduces the whole sequence of fixtures.
func NewBuilder(pool *search.Pool, rng *rand.Rand, opts Options) (*Builder, error) {
	if pool == nil || pool.Len() == 0 {
		return nil, fmt.Errorf("%w: secure pool is empty", search.ErrSearchExhausted)
	}
	opts = opts.withDefaults()
	if err := opts.Mix.validate(); err != nil {
		return nil, err
	}
	return &Builder{
		pool:    pool,
		rng:     rng,
		crafter: craft.New(rng),
		opts:    opts,
	}, nil
}

// Build draws count codes in the given mode and labels them.
func (b *Builder) Build(mode Mode, count int, bounds LengthBounds) (*Fixture, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidRequest, count)
	}
	if err := bounds.validate(); err != nil {
		return nil, err
	}

	var (
		codes    []passcode.Passcode
		sampling search.SamplingStrategy
		err      error
	)
	switch mode {
	case ModeAllSecure:
		codes, sampling, err = b.pool.Sample(b.rng, count)
	case ModeAllInsecure:
		codes, err = b.insecureBatch(count, bounds)
	case ModeMixed:
		codes, err = b.mixedBatch(count, bounds)
	case ModeNearMiss:
		codes, err = b.craftedBatch(count, bounds)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s fixture: %w", mode, err)
	}

	f := b.label(codes)
	f.Mode = mode
	f.Sampling = sampling
	return f, nil
}

// FromCodes labels a hand-written list of codes.
func (b *Builder) FromCodes(name string, codes []string) (*Fixture, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: fixture %q has no codes", ErrInvalidRequest, name)
	}
	f := b.label(passcode.FromStrings(codes))
	f.Name = name
	f.Mode = ModeExplicit
	return f, nil
}

func (b *Builder) label(codes []passcode.Passcode) *Fixture {
	return &Fixture{
		Codes:    codes,
		Expected: polydiv.Judge(b.opts.Decider, codes, b.opts.Tokens),
	}
}

func (b *Builder) insecureBatch(count int, bounds LengthBounds) ([]passcode.Passcode, error) {
	out := make([]passcode.Passcode, 0, count)
	for len(out) < count {
		code, err := b.insecure(bounds)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}

func (b *Builder) craftedBatch(count int, bounds LengthBounds) ([]passcode.Passcode, error) {
	out := make([]passcode.Passcode, 0, count)
	for len(out) < count {
		code, err := b.crafter.Craft(b.length(bounds))
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}

func (b *Builder) mixedBatch(count int, bounds LengthBounds) ([]passcode.Passcode, error) {
	w := b.opts.Mix
	out := make([]passcode.Passcode, 0, count)
	for len(out) < count {
		var (
			code passcode.Passcode
			err  error
		)
		switch r := b.rng.Float64() * w.total(); {
		case r < w.Pool:
			code, err = b.pool.Choice(b.rng)
		case r < w.Pool+w.Insecure:
			code, err = b.insecure(bounds)
		default:
			code, err = b.crafter.Craft(b.length(bounds))
		}
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}

// insecure rejection-samples one random code the decider rejects.
func (b *Builder) insecure(bounds LengthBounds) (passcode.Passcode, error) {
	for attempt := 0; attempt < b.opts.MaxRetries; attempt++ {
		code := b.random(b.length(bounds))
		if !b.opts.Decider.Decide(code).IsSecure() {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %d attempts within [%d, %d] digits",
		ErrRetriesExhausted, b.opts.MaxRetries, bounds.Min, bounds.Max)
}

// random returns a uniformly random code of n digits with no leading zero.
func (b *Builder) random(n int) passcode.Passcode {
	digits := make([]byte, n)
	digits[0] = byte('1' + b.rng.Intn(9))
	for i := 1; i < n; i++ {
		digits[i] = byte('0' + b.rng.Intn(10))
	}
	return passcode.Passcode(digits)
}

func (b *Builder) length(bounds LengthBounds) int {
	return bounds.Min + b.rng.Intn(bounds.Max-bounds.Min+1)
}
