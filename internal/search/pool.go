package search

import (
	"fmt"
	"math/rand"

	"polyguard/internal/passcode"
)

// SamplingStrategy records how a batch was drawn from a Pool.
type SamplingStrategy string

const (
	// WithoutReplacement means every drawn code is distinct.
	WithoutReplacement SamplingStrategy = "without_replacement"

	// WithReplacement means the pool was smaller than the request and codes
	// may repeat.
	WithReplacement SamplingStrategy = "with_replacement"
)

// Pool is a precomputed, read-only set of secure passcodes.
type Pool struct {
	codes []passcode.Passcode
}

// NewPool runs Enumerate and wraps the result.
func NewPool(maxLen, limit int) (*Pool, error) {
	codes, err := Enumerate(maxLen, limit)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: max_len=%d limit=%d", ErrSearchExhausted, maxLen, limit)
	}
	return &Pool{codes: codes}, nil
}

// PoolOf wraps an existing list of codes. The slice is copied.
func PoolOf(codes []passcode.Passcode) *Pool {
	return &Pool{codes: append([]passcode.Passcode(nil), codes...)}
}

// Len returns the number of codes in the pool.
func (p *Pool) Len() int { return len(p.codes) }

// At returns the i-th code in enumeration order.
func (p *Pool) At(i int) passcode.Passcode { return p.codes[i] }

// Codes returns a copy of the pool contents.
func (p *Pool) Codes() []passcode.Passcode {
	return append([]passcode.Passcode(nil), p.codes...)
}

// Within returns the sub-pool of codes whose length lies in [minLen, maxLen].
func (p *Pool) Within(minLen, maxLen int) *Pool {
	var out []passcode.Passcode
	for _, c := range p.codes {
		if n := c.Len(); n >= minLen && n <= maxLen {
			out = append(out, c)
		}
	}
	return &Pool{codes: out}
}

// Choice draws one code uniformly.
func (p *Pool) Choice(rng *rand.Rand) (passcode.Passcode, error) {
	if len(p.codes) == 0 {
		return "", fmt.Errorf("%w: pool is empty", ErrSearchExhausted)
	}
	return p.codes[rng.Intn(len(p.codes))], nil
}

// Sample draws n codes. When the pool holds at least n codes they are
// distinct; otherwise the draw falls back to sampling with replacement.
// The strategy used is returned so callers that need uniqueness can tell.
func (p *Pool) Sample(rng *rand.Rand, n int) ([]passcode.Passcode, SamplingStrategy, error) {
	if n <= 0 {
		return nil, "", fmt.Errorf("search: sample size must be positive, got %d", n)
	}
	if len(p.codes) == 0 {
		return nil, "", fmt.Errorf("%w: pool is empty", ErrSearchExhausted)
	}

	out := make([]passcode.Passcode, n)
	if len(p.codes) >= n {
		for i, idx := range rng.Perm(len(p.codes))[:n] {
			out[i] = p.codes[idx]
		}
		return out, WithoutReplacement, nil
	}

	for i := range out {
		out[i] = p.codes[rng.Intn(len(p.codes))]
	}
	return out, WithReplacement, nil
}
