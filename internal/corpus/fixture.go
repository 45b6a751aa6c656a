package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"polyguard/internal/passcode"
	"polyguard/internal/search"
)

// ErrMalformedInput is returned when an input file cannot be parsed.
var ErrMalformedInput = errors.New("corpus: malformed fixture input")

// File extensions of a persisted fixture pair.
const (
	InputExt    = ".in"
	ExpectedExt = ".ans"
)

// Fixture is one labelled test case.
type Fixture struct {
	Name     string
	Mode     Mode
	Codes    []passcode.Passcode
	Expected string

	// Sampling is set for all_secure fixtures only.
	Sampling search.SamplingStrategy
}

// Input renders the fixture's input file: the count, then one code per line.
func (f *Fixture) Input() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(f.Codes)))
	b.WriteByte('\n')
	for _, c := range f.Codes {
		b.WriteString(string(c))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFixture writes <dir>/<name>.in and <dir>/<name>.ans, creating dir if
// needed, and returns the input path. Each file is written to a temporary
// name and renamed into place.
func WriteFixture(dir string, f *Fixture) (string, error) {
	if f.Name == "" || strings.ContainsAny(f.Name, `/\`) {
		return "", fmt.Errorf("%w: bad fixture name %q", ErrInvalidRequest, f.Name)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create fixture dir: %w", err)
	}

	inPath := filepath.Join(dir, f.Name+InputExt)
	if err := writeFileAtomic(inPath, f.Input()); err != nil {
		return "", err
	}
	if err := writeFileAtomic(filepath.Join(dir, f.Name+ExpectedExt), f.Expected); err != nil {
		return "", err
	}
	return inPath, nil
}

func writeFileAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ExpectedPath returns the answer file paired with an input file.
func ExpectedPath(inPath string) string {
	return strings.TrimSuffix(inPath, InputExt) + ExpectedExt
}

// ReadInput parses a fixture input file.
func ReadInput(path string) ([]passcode.Passcode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	codes, err := ParseInput(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return codes, nil
}

// ParseInput reads a count followed by that many whitespace separated
// codes. It is lenient about layout; strict checking belongs to the format
// package. Content after the last code is ignored.
func ParseInput(r io.Reader) ([]passcode.Passcode, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing count", ErrMalformedInput)
	}
	n, err := strconv.Atoi(sc.Text())
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: bad count %q", ErrMalformedInput, sc.Text())
	}

	codes := make([]passcode.Passcode, 0, min(n, 5000))
	for len(codes) < n && sc.Scan() {
		codes = append(codes, passcode.Passcode(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(codes) < n {
		return nil, fmt.Errorf("%w: expected %d codes, found %d", ErrMalformedInput, n, len(codes))
	}
	return codes, nil
}

// ReadExpected returns the content of the answer file for inPath.
func ReadExpected(inPath string) (string, error) {
	data, err := os.ReadFile(ExpectedPath(inPath))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
