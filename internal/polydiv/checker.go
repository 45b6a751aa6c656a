// Package polydiv decides cyclic polydivisibility of digit strings.
//
// A string of length L is secure when, for every prefix length i in [1, L],
// the prefix value is divisible by Modulus(i) = ((i-1) mod 10) + 1. The
// checker keeps only the prefix value modulo LCM. Every modulus in the cycle
// divides LCM, so the residual answers each divisibility question exactly
// no matter how long the string grows.
package polydiv

import "polyguard/internal/passcode"

const (
	// LCM is lcm(1..10). Residuals are kept modulo this value.
	LCM = 2520

	// CycleLength is the period of the modulus sequence 1, 2, ..., 10.
	CycleLength = 10
)

// Modulus returns the divisor that applies to a prefix of 1-based length i.
func Modulus(i int) int {
	return (i-1)%CycleLength + 1
}

// Step appends one digit to a prefix residual and reduces it modulo LCM.
// Out-of-range digit values still yield a residual in [0, LCM).
func Step(residual, digit int) int {
	r := (residual*10 + digit) % LCM
	if r < 0 {
		r += LCM
	}
	return r
}

// Check scans the stream once and returns the first failing prefix length,
// or Secure when every prefix satisfies its modulus.
//
// The empty stream is Secure: there is no prefix that can violate the rule.
// Leading zeros and other format problems are not rejected here.
func Check(s passcode.DigitStream) passcode.Verdict {
	residual := 0
	for i := 1; i <= s.Len(); i++ {
		residual = Step(residual, s.DigitAt(i-1))
		if residual%Modulus(i) != 0 {
			return passcode.Insecure(i)
		}
	}
	return passcode.Secure()
}

// CheckString is Check over a plain string.
func CheckString(s string) passcode.Verdict {
	return Check(passcode.Passcode(s))
}

// Decider decides a Verdict for one passcode.
type Decider interface {
	Decide(s passcode.DigitStream) passcode.Verdict
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(s passcode.DigitStream) passcode.Verdict

// Decide implements Decider.
func (f DeciderFunc) Decide(s passcode.DigitStream) passcode.Verdict { return f(s) }

// Residual is the linear-time strategy backed by Check. It holds no state
// and is safe for concurrent use.
type Residual struct{}

// Decide implements Decider.
func (Residual) Decide(s passcode.DigitStream) passcode.Verdict { return Check(s) }
