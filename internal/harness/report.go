package harness

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Category classifies a fixture failure.
type Category string

const (
	// CategoryValidator: the validator rejected the input.
	CategoryValidator Category = "validator"

	// CategoryMismatch: the judge's answer differs from the stored one.
	CategoryMismatch Category = "mismatch"

	// CategoryProcess: a program timed out, crashed, could not start, or
	// the fixture itself was incomplete.
	CategoryProcess Category = "process"
)

// Categories lists every category in report order.
func Categories() []Category {
	return []Category{CategoryValidator, CategoryMismatch, CategoryProcess}
}

// Failure is one problem found with one fixture.
type Failure struct {
	Category Category
	Detail   string

	// Diff is a unified diff of expected against actual, for mismatches.
	Diff string
}

// Outcome is the result for one fixture.
type Outcome struct {
	Name     string
	Path     string
	Failures []Failure
	Duration time.Duration
}

func (o *Outcome) add(f Failure) { o.Failures = append(o.Failures, f) }

// Passed reports whether the fixture had no failures.
func (o Outcome) Passed() bool { return len(o.Failures) == 0 }

// Has reports whether the fixture failed in category c.
func (o Outcome) Has(c Category) bool {
	for _, f := range o.Failures {
		if f.Category == c {
			return true
		}
	}
	return false
}

// Summary joins the failure details on one line.
func (o Outcome) Summary() string {
	parts := make([]string, len(o.Failures))
	for i, f := range o.Failures {
		parts[i] = fmt.Sprintf("[%s] %s", f.Category, f.Detail)
	}
	return strings.Join(parts, "; ")
}

// Report aggregates one harness run.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Outcomes  []Outcome

	// Counts holds the number of fixtures failing in each category. A
	// fixture can count toward several categories.
	Counts map[Category]int
}

func (r *Report) tally() {
	r.Counts = make(map[Category]int, len(Categories()))
	for _, c := range Categories() {
		r.Counts[c] = 0
	}
	for _, o := range r.Outcomes {
		for _, c := range Categories() {
			if o.Has(c) {
				r.Counts[c]++
			}
		}
	}
}

// Passed returns the number of fixtures without failures.
func (r *Report) Passed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Passed() {
			n++
		}
	}
	return n
}

// Failed reports whether any fixture failed in any category.
func (r *Report) Failed() bool {
	return r.Passed() != len(r.Outcomes)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

// Render writes a human-readable breakdown: one line per failing fixture,
// diffs for mismatches, then per-category totals. styled adds terminal
// colors.
func (r *Report) Render(w io.Writer, styled bool) error {
	paint := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", paint(titleStyle, "Run"), r.RunID)
	for _, o := range r.Outcomes {
		if o.Passed() {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", paint(failStyle, "FAIL"), o.Path)
		for _, f := range o.Failures {
			fmt.Fprintf(&b, "  %-9s %s\n", f.Category, f.Detail)
			if f.Diff != "" {
				for _, line := range strings.Split(strings.TrimRight(f.Diff, "\n"), "\n") {
					b.WriteString("    " + paint(mutedStyle, line) + "\n")
				}
			}
		}
	}

	status := paint(passStyle, "PASS")
	if r.Failed() {
		status = paint(failStyle, "FAIL")
	}
	fmt.Fprintf(&b, "%s %d/%d fixtures passed in %s\n", status, r.Passed(), len(r.Outcomes), r.Duration.Round(time.Millisecond))
	for _, c := range Categories() {
		fmt.Fprintf(&b, "  %-9s %d\n", c, r.Counts[c])
	}

	_, err := io.WriteString(w, b.String())
	return err
}
