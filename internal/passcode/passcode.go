// Package passcode defines the digit-string types shared by the checker,
// the constructive search and the corpus builder.
package passcode

import "strconv"

// DigitStream is a minimal read-only view over an ASCII digit sequence.
type DigitStream interface {
	// Len returns the number of characters in the stream.
	Len() int

	// DigitAt returns the value of the character at 0-based index i,
	// computed as the byte minus '0'. Bytes outside '0'..'9' are not
	// rejected here; format checks belong to the format package.
	DigitAt(i int) int
}

// Passcode is an immutable decimal digit string.
// Producers guarantee length >= 1 and a non-zero first digit.
type Passcode string

// Len implements DigitStream.
func (p Passcode) Len() int { return len(p) }

// DigitAt implements DigitStream.
func (p Passcode) DigitAt(i int) int { return int(p[i]) - '0' }

// String returns the digits.
func (p Passcode) String() string { return string(p) }

// Bytes is a DigitStream over a byte slice, used when scanning raw input
// without converting every line to a string.
type Bytes []byte

// Len implements DigitStream.
func (b Bytes) Len() int { return len(b) }

// DigitAt implements DigitStream.
func (b Bytes) DigitAt(i int) int { return int(b[i]) - '0' }

// FromStrings converts plain strings to passcodes, preserving order.
func FromStrings(codes []string) []Passcode {
	out := make([]Passcode, len(codes))
	for i, c := range codes {
		out[i] = Passcode(c)
	}
	return out
}

// Strings is the inverse of FromStrings.
func Strings(codes []Passcode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

// Verdict is the outcome of checking one passcode.
// A zero FailingIndex means Secure; otherwise it is the 1-based prefix
// length at which the cyclic rule first failed.
type Verdict struct {
	FailingIndex int
}

// Secure returns the passing verdict.
func Secure() Verdict { return Verdict{} }

// Insecure returns a failing verdict at the given 1-based prefix length.
func Insecure(index int) Verdict { return Verdict{FailingIndex: index} }

// IsSecure reports whether no prefix violated the rule.
func (v Verdict) IsSecure() bool { return v.FailingIndex == 0 }

func (v Verdict) String() string {
	if v.IsSecure() {
		return "secure"
	}
	return "insecure at " + strconv.Itoa(v.FailingIndex)
}
