package harness

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// maxDiffLines caps a stored diff; judges can print thousands of lines.
const maxDiffLines = 200

func unifiedDiff(want, got, fromFile, toFile string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want + "\n"),
		B:        difflib.SplitLines(got + "\n"),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("diff unavailable: %v", err)
	}

	lines := strings.SplitAfter(diff, "\n")
	if len(lines) > maxDiffLines {
		dropped := len(lines) - maxDiffLines
		diff = strings.Join(lines[:maxDiffLines], "") + fmt.Sprintf("... %d more lines\n", dropped)
	}
	return diff
}
