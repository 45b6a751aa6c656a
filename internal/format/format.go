// Package format checks that a fixture input file is well formed before any
// judge sees it. The accepted shape is a positive count on the first line
// followed by exactly that many passcodes, one per newline-terminated line.
package format

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// Exit codes of a problem-package input validator.
const (
	AcceptExitCode = 42
	RejectExitCode = 43
)

// numberPattern matches a positive decimal integer without leading zeros.
var numberPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

// Rules bounds what Validate accepts.
type Rules struct {
	MinCount  int `yaml:"min_count"`
	MaxCount  int `yaml:"max_count"`
	MaxDigits int `yaml:"max_digits"`
}

// DefaultRules returns the published input limits.
func DefaultRules() Rules {
	return Rules{MinCount: 1, MaxCount: 5000, MaxDigits: 25}
}

// MalformedInputError reports the first offending line of an input file.
// Line is 1-based; a line past the last one refers to missing or extra input.
type MalformedInputError struct {
	Line   int
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input at line %d: %s", e.Line, e.Reason)
}

// IsMalformed reports whether err is, or wraps, a MalformedInputError.
func IsMalformed(err error) bool {
	var m *MalformedInputError
	return errors.As(err, &m)
}

// Validate reads r to the end and returns nil if it is a well-formed
// fixture input under rules. Any violation is a *MalformedInputError; read
// failures are returned wrapped.
func Validate(r io.Reader, rules Rules) error {
	br := bufio.NewReader(r)

	header, err := readLine(br, 1)
	if err != nil {
		return err
	}
	if !numberPattern.MatchString(header) {
		return &MalformedInputError{Line: 1, Reason: fmt.Sprintf("count %q is not a positive integer without leading zeros", clip(header))}
	}
	n, err := strconv.Atoi(header)
	if err != nil || n < rules.MinCount || n > rules.MaxCount {
		return &MalformedInputError{Line: 1, Reason: fmt.Sprintf("count %s outside [%d, %d]", clip(header), rules.MinCount, rules.MaxCount)}
	}

	for i := 0; i < n; i++ {
		lineNo := i + 2
		line, err := readLine(br, lineNo)
		if err != nil {
			return err
		}
		if !numberPattern.MatchString(line) {
			return &MalformedInputError{Line: lineNo, Reason: fmt.Sprintf("passcode %q must be digits without a leading zero", clip(line))}
		}
		if rules.MaxDigits > 0 && len(line) > rules.MaxDigits {
			return &MalformedInputError{Line: lineNo, Reason: fmt.Sprintf("passcode has %d digits, limit is %d", len(line), rules.MaxDigits)}
		}
	}

	if _, err := br.ReadByte(); err == nil {
		return &MalformedInputError{Line: n + 2, Reason: "unexpected content after the last passcode"}
	} else if err != io.EOF {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// readLine returns the next line without its terminator. A line that ends
// at EOF without a newline is malformed.
func readLine(br *bufio.Reader, lineNo int) (string, error) {
	line, err := br.ReadString('\n')
	switch {
	case err == io.EOF && line == "":
		return "", &MalformedInputError{Line: lineNo, Reason: "unexpected end of input"}
	case err == io.EOF:
		return "", &MalformedInputError{Line: lineNo, Reason: "line is not terminated by a newline"}
	case err != nil:
		return "", fmt.Errorf("read line %d: %w", lineNo, err)
	}
	return line[:len(line)-1], nil
}

func clip(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
