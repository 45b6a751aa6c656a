// Package craft builds near-miss passcodes: strings that follow the cyclic
// rule up to a chosen fail point and then continue with random digits.
//
// The construction is intentionally approximate. The prefix before the fail
// point is built greedily and may break early if no digit fits, and the
// random tail is only expected, not guaranteed, to break the rule. Callers
// must label the output with the checker rather than trust the fail point.
package craft

import (
	"errors"
	"fmt"
	"math/rand"

	"polyguard/internal/passcode"
	"polyguard/internal/polydiv"
)

// ErrInvalidLength is returned for a non-positive target length.
var ErrInvalidLength = errors.New("craft: target length must be positive")

// Result describes one crafted passcode.
type Result struct {
	Code passcode.Passcode

	// FailPoint is the 1-based position where random digits begin.
	FailPoint int

	// FellBack is set when some position before FailPoint had no valid
	// digit and an arbitrary one was used instead.
	FellBack bool
}

// Crafter produces near-miss passcodes from a seeded source. It is not safe
// for concurrent use because it owns its *rand.Rand.
type Crafter struct {
	rng *rand.Rand
}

// New returns a Crafter drawing from rng.
func New(rng *rand.Rand) *Crafter {
	return &Crafter{rng: rng}
}

// Craft returns a passcode of exactly targetLen digits.
func (c *Crafter) Craft(targetLen int) (passcode.Passcode, error) {
	res, err := c.CraftDetailed(targetLen)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// CraftDetailed is Craft that also reports the chosen fail point.
// The fail point is uniform over [1, targetLen].
func (c *Crafter) CraftDetailed(targetLen int) (Result, error) {
	if targetLen <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidLength, targetLen)
	}
	return c.craftAt(targetLen, 1+c.rng.Intn(targetLen)), nil
}

// CraftAt builds a passcode with an explicit fail point, clamped to
// [1, targetLen].
func (c *Crafter) CraftAt(targetLen, failPoint int) (Result, error) {
	if targetLen <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidLength, targetLen)
	}
	failPoint = max(1, min(failPoint, targetLen))
	return c.craftAt(targetLen, failPoint), nil
}

func (c *Crafter) craftAt(targetLen, failPoint int) Result {
	res := Result{FailPoint: failPoint}
	digits := make([]byte, 0, targetLen)
	residual := 0

	for pos := 1; pos < failPoint; pos++ {
		d, ok := firstValidDigit(residual, pos)
		if !ok {
			d = c.randomDigit(pos)
			res.FellBack = true
		}
		residual = polydiv.Step(residual, d)
		digits = append(digits, byte('0'+d))
	}

	for pos := failPoint; pos <= targetLen; pos++ {
		digits = append(digits, byte('0'+c.randomDigit(pos)))
	}

	res.Code = passcode.Passcode(digits)
	return res
}

// firstValidDigit returns the smallest digit keeping the prefix of length
// pos divisible by its modulus. Position 1 never takes a zero.
func firstValidDigit(residual, pos int) (int, bool) {
	first := 0
	if pos == 1 {
		first = 1
	}
	m := polydiv.Modulus(pos)
	for d := first; d <= 9; d++ {
		if polydiv.Step(residual, d)%m == 0 {
			return d, true
		}
	}
	return 0, false
}

func (c *Crafter) randomDigit(pos int) int {
	if pos == 1 {
		return 1 + c.rng.Intn(9)
	}
	return c.rng.Intn(10)
}
