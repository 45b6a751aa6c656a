package corpus

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyguard/internal/passcode"
	"polyguard/internal/polydiv"
	"polyguard/internal/search"
)

func newTestBuilder(t *testing.T, seed int64, opts Options) *Builder {
	t.Helper()
	pool, err := search.NewPool(20, 5000)
	require.NoError(t, err)
	b, err := NewBuilder(pool, rand.New(rand.NewSource(seed)), opts)
	require.NoError(t, err)
	return b
}

var defaultBounds = LengthBounds{Min: 1, Max: 20}

func TestBuildLabelsWithChecker(t *testing.T) {
	b := newTestBuilder(t, 1, Options{})
	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			f, err := b.Build(mode, 40, LengthBounds{Min: 5, Max: 25})
			require.NoError(t, err)
			assert.Len(t, f.Codes, 40)
			assert.Equal(t, mode, f.Mode)
			assert.Equal(t, polydiv.Judge(polydiv.Residual{}, f.Codes, polydiv.DefaultTokens()), f.Expected)
			for _, c := range f.Codes {
				assert.NotEqual(t, byte('0'), c[0], "code %s has a leading zero", c)
			}
		})
	}
}

func TestBuildAllSecure(t *testing.T) {
	b := newTestBuilder(t, 2, Options{})
	f, err := b.Build(ModeAllSecure, 20, defaultBounds)
	require.NoError(t, err)
	assert.Equal(t, "secure\n", f.Expected)
	assert.Equal(t, search.WithoutReplacement, f.Sampling)

	seen := map[passcode.Passcode]bool{}
	for _, c := range f.Codes {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
}

func TestBuildAllSecureSmallPool(t *testing.T) {
	pool := search.PoolOf(passcode.FromStrings([]string{"12", "381654729"}))
	b, err := NewBuilder(pool, rand.New(rand.NewSource(3)), Options{})
	require.NoError(t, err)

	f, err := b.Build(ModeAllSecure, 5, defaultBounds)
	require.NoError(t, err)
	assert.Equal(t, search.WithReplacement, f.Sampling)
	assert.Len(t, f.Codes, 5)
	assert.Equal(t, "secure\n", f.Expected)
}

func TestBuildAllInsecure(t *testing.T) {
	b := newTestBuilder(t, 4, Options{})
	f, err := b.Build(ModeAllInsecure, 50, LengthBounds{Min: 2, Max: 20})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(f.Expected, "\n"), "\n")
	require.Equal(t, "not secure", lines[0])
	assert.Equal(t, passcode.Strings(f.Codes), lines[1:])
	for _, c := range f.Codes {
		assert.GreaterOrEqual(t, len(c), 2)
		assert.LessOrEqual(t, len(c), 20)
	}
}

func TestBuildAllInsecureRetriesExhausted(t *testing.T) {
	// Every one-digit code is secure, so no insecure code exists.
	b := newTestBuilder(t, 5, Options{MaxRetries: 50})
	_, err := b.Build(ModeAllInsecure, 1, LengthBounds{Min: 1, Max: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetriesExhausted))
}

func TestBuildMixedWeights(t *testing.T) {
	t.Run("pool only", func(t *testing.T) {
		b := newTestBuilder(t, 6, Options{Mix: MixWeights{Pool: 1}})
		f, err := b.Build(ModeMixed, 100, defaultBounds)
		require.NoError(t, err)
		assert.Equal(t, "secure\n", f.Expected)
		assert.Empty(t, f.Sampling)
	})
	t.Run("insecure only", func(t *testing.T) {
		b := newTestBuilder(t, 7, Options{Mix: MixWeights{Insecure: 1}})
		f, err := b.Build(ModeMixed, 100, LengthBounds{Min: 3, Max: 20})
		require.NoError(t, err)
		assert.Len(t, polydiv.InsecureCodes(polydiv.Residual{}, f.Codes), 100)
	})
	t.Run("defaults mix both", func(t *testing.T) {
		b := newTestBuilder(t, 8, Options{})
		f, err := b.Build(ModeMixed, 300, defaultBounds)
		require.NoError(t, err)
		bad := polydiv.InsecureCodes(polydiv.Residual{}, f.Codes)
		assert.NotEmpty(t, bad)
		assert.Less(t, len(bad), 300)
	})
}

func TestBuildNearMissLengths(t *testing.T) {
	b := newTestBuilder(t, 9, Options{})
	f, err := b.Build(ModeNearMiss, 100, LengthBounds{Min: 25, Max: 25})
	require.NoError(t, err)
	for _, c := range f.Codes {
		assert.Len(t, string(c), 25)
	}
	// Long crafted codes are insecure far more often than not.
	assert.Greater(t, len(polydiv.InsecureCodes(polydiv.Residual{}, f.Codes)), 80)
}

func TestBuildInvalidRequests(t *testing.T) {
	b := newTestBuilder(t, 10, Options{})
	tests := []struct {
		name   string
		mode   Mode
		count  int
		bounds LengthBounds
	}{
		{"zero count", ModeMixed, 0, defaultBounds},
		{"negative count", ModeMixed, -3, defaultBounds},
		{"inverted bounds", ModeMixed, 1, LengthBounds{Min: 5, Max: 4}},
		{"zero min", ModeNearMiss, 1, LengthBounds{Min: 0, Max: 4}},
		{"unknown mode", Mode("chaos"), 1, defaultBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.mode, tt.count, tt.bounds)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestNewBuilderRejectsBadInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := NewBuilder(search.PoolOf(nil), rng, Options{})
	assert.ErrorIs(t, err, search.ErrSearchExhausted)

	pool := search.PoolOf(passcode.FromStrings([]string{"1"}))
	_, err = NewBuilder(pool, rng, Options{Mix: MixWeights{Pool: -1, Crafted: 2}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBuildDeterministic(t *testing.T) {
	build := func() []*Fixture {
		b := newTestBuilder(t, 42, Options{})
		var out []*Fixture
		for _, mode := range Modes() {
			f, err := b.Build(mode, 30, defaultBounds)
			require.NoError(t, err)
			out = append(out, f)
		}
		return out
	}
	if diff := cmp.Diff(build(), build()); diff != "" {
		t.Errorf("same seed produced different fixtures (-first +second):\n%s", diff)
	}
}

func TestFromCodes(t *testing.T) {
	b := newTestBuilder(t, 11, Options{Tokens: polydiv.Tokens{Secure: "OK", NotSecure: "BREACH"}})

	f, err := b.FromCodes("custom", []string{"381654729", "11", "26", "1234"})
	require.NoError(t, err)
	assert.Equal(t, ModeExplicit, f.Mode)
	assert.Equal(t, "BREACH\n11\n1234\n", f.Expected)
	assert.Equal(t, "4\n381654729\n11\n26\n1234\n", f.Input())

	_, err = b.FromCodes("empty", nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode(string(ModeExplicit))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
