// Package search enumerates cyclically polydivisible passcodes by
// depth-first backtracking.
//
// Each branch carries the prefix residual modulo polydiv.LCM, so extending a
// prefix costs O(1) regardless of its length. A digit is only explored when
// the extended prefix already satisfies its modulus: a prefix that breaks the
// rule can never be completed into a secure code.
package search

import (
	"errors"
	"fmt"

	"polyguard/internal/passcode"
	"polyguard/internal/polydiv"
)

var (
	// ErrInvalidBound is returned when max length or limit is not positive.
	ErrInvalidBound = errors.New("search: max length and limit must be positive")

	// ErrSearchExhausted is returned when the bounds admit fewer codes than
	// the caller requires.
	ErrSearchExhausted = errors.New("search: not enough secure passcodes within bounds")
)

// enumerator accumulates results for a single search pass. It is not safe
// for concurrent use; parallel callers need one enumerator each.
type enumerator struct {
	maxLen  int
	limit   int
	results []passcode.Passcode
}

// Enumerate returns up to limit secure passcodes of at most maxLen digits
// in pre-order: every prefix is emitted before its extensions, digits are
// tried in ascending order and the first digit is never zero. The sequence
// is fully determined by the two bounds.
func Enumerate(maxLen, limit int) ([]passcode.Passcode, error) {
	if maxLen <= 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: max_len=%d limit=%d", ErrInvalidBound, maxLen, limit)
	}

	e := &enumerator{
		maxLen:  maxLen,
		limit:   limit,
		results: make([]passcode.Passcode, 0, min(limit, 4096)),
	}
	e.expand(0, make([]byte, 0, maxLen))
	return e.results, nil
}

// expand visits one node of the search tree. prefix may share its backing
// array with sibling branches; it is copied when emitted.
func (e *enumerator) expand(residual int, prefix []byte) {
	if len(e.results) >= e.limit {
		return
	}

	length := len(prefix)
	if length > 0 {
		e.results = append(e.results, passcode.Passcode(prefix))
	}
	if length == e.maxLen {
		return
	}

	first := 0
	if length == 0 {
		first = 1
	}
	m := polydiv.Modulus(length + 1)

	for d := first; d <= 9; d++ {
		if len(e.results) >= e.limit {
			return
		}
		next := polydiv.Step(residual, d)
		if next%m != 0 {
			continue
		}
		e.expand(next, append(prefix, byte('0'+d)))
	}
}
