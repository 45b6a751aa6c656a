// Package harness checks external judges and input validators against a
// directory of persisted fixtures.
//
// Each fixture is processed independently. It passes when the validator
// accepts its input and the judge's trimmed output equals the stored answer.
// A failing fixture is recorded and the run goes on; only cancellation or
// invalid configuration aborts Verify.
package harness

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"polyguard/internal/corpus"
	"polyguard/internal/logging"
	"polyguard/internal/tactile"
)

// Config describes the programs under test.
type Config struct {
	// Validator and Judge are argv slices; the fixture input is fed on stdin.
	Validator []string
	Judge     []string

	// AcceptCode is the validator exit code that means "well formed".
	AcceptCode int

	ValidatorTimeout time.Duration
	JudgeTimeout     time.Duration

	// Workers bounds how many fixtures run at once.
	Workers int

	// WorkingDir is where both programs run. Empty means the current directory.
	WorkingDir string
}

// DefaultConfig returns the standard limits with no programs set.
func DefaultConfig() Config {
	return Config{
		AcceptCode:       42,
		ValidatorTimeout: 60 * time.Second,
		JudgeTimeout:     300 * time.Second,
		Workers:          4,
	}
}

func (c Config) validate() error {
	if len(c.Validator) == 0 || strings.TrimSpace(c.Validator[0]) == "" {
		return errors.New("harness: validator command is required")
	}
	if len(c.Judge) == 0 || strings.TrimSpace(c.Judge[0]) == "" {
		return errors.New("harness: judge command is required")
	}
	if c.ValidatorTimeout <= 0 || c.JudgeTimeout <= 0 {
		return errors.New("harness: timeouts must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("harness: workers must be positive, got %d", c.Workers)
	}
	return nil
}

// Harness runs fixtures through an executor.
type Harness struct {
	cfg  Config
	exec tactile.Executor
}

// New returns a Harness. A nil executor selects a tactile.DirectExecutor.
func New(cfg Config, exec tactile.Executor) (*Harness, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if exec == nil {
		exec = tactile.NewDirectExecutor()
	}
	return &Harness{cfg: cfg, exec: exec}, nil
}

// Verify runs every fixture input in paths and returns the report, sorted by
// fixture name. The returned error is non-nil only when ctx ends first.
func (h *Harness) Verify(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logging.Harness("Run %s: %d fixtures, %d workers", report.RunID, len(paths), h.cfg.Workers)

	outcomes := make([]Outcome, len(paths))
	var g errgroup.Group
	g.SetLimit(h.cfg.Workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			outcomes[i] = h.verifyOne(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logging.HarnessWarn("Run %s cancelled: %v", report.RunID, err)
		return nil, fmt.Errorf("harness run %s: %w", report.RunID, err)
	}

	sort.SliceStable(outcomes, func(a, b int) bool {
		if outcomes[a].Name != outcomes[b].Name {
			return outcomes[a].Name < outcomes[b].Name
		}
		return outcomes[a].Path < outcomes[b].Path
	})
	report.Outcomes = outcomes
	report.Duration = time.Since(report.StartedAt)
	report.tally()

	logging.Harness("Run %s finished in %s: %d passed, %d failed",
		report.RunID, report.Duration, report.Passed(), len(outcomes)-report.Passed())
	return report, nil
}

// verifyOne never returns an error; every problem becomes a Failure.
func (h *Harness) verifyOne(ctx context.Context, path string) Outcome {
	start := time.Now()
	out := Outcome{
		Name: strings.TrimSuffix(filepath.Base(path), corpus.InputExt),
		Path: path,
	}
	defer func() { out.Duration = time.Since(start) }()

	expected, err := corpus.ReadExpected(path)
	if err != nil {
		out.add(Failure{Category: CategoryProcess, Detail: fmt.Sprintf("cannot read expected output: %v", err)})
	}

	if res, fail := h.run(ctx, "validator", h.cfg.Validator, path, h.cfg.ValidatorTimeout); fail != nil {
		out.add(*fail)
	} else if res.ExitCode != h.cfg.AcceptCode {
		out.add(Failure{
			Category: CategoryValidator,
			Detail:   fmt.Sprintf("validator exited %d, want %d%s", res.ExitCode, h.cfg.AcceptCode, stderrHint(res)),
		})
	}

	res, fail := h.run(ctx, "judge", h.cfg.Judge, path, h.cfg.JudgeTimeout)
	switch {
	case fail != nil:
		out.add(*fail)
	case res.ExitCode != 0:
		out.add(Failure{
			Category: CategoryProcess,
			Detail:   fmt.Sprintf("judge exited %d%s", res.ExitCode, stderrHint(res)),
		})
	case err == nil:
		want := strings.TrimSpace(expected)
		got := strings.TrimSpace(res.Stdout)
		if got != want {
			detail := "judge output differs from expected output"
			if res.Truncated {
				detail += fmt.Sprintf(" (output truncated, %s dropped)", humanize.Bytes(uint64(res.TruncatedBytes)))
			}
			out.add(Failure{
				Category: CategoryMismatch,
				Detail:   detail,
				Diff:     unifiedDiff(want, got, corpus.ExpectedPath(path), path+".out"),
			})
		}
	}

	if out.Passed() {
		logging.HarnessDebug("PASS %s", path)
	} else {
		logging.HarnessWarn("FAIL %s: %s", path, out.Summary())
	}
	return out
}

// run executes one program on the fixture input. A non-nil Failure means
// the program could not produce a usable exit code.
func (h *Harness) run(ctx context.Context, role string, argv []string, inPath string, timeout time.Duration) (*tactile.ExecutionResult, *Failure) {
	cmd := tactile.FromArgv(argv)
	cmd.StdinFile = inPath
	cmd.WorkingDirectory = h.cfg.WorkingDir
	cmd.Limits = &tactile.ResourceLimits{TimeoutMs: timeout.Milliseconds()}
	cmd.Tags = map[string]string{"role": role, "fixture": inPath}

	res, err := h.exec.Execute(ctx, cmd)
	switch {
	case err != nil:
		return nil, &Failure{Category: CategoryProcess, Detail: fmt.Sprintf("%s: %v", role, err)}
	case res.Killed:
		return nil, &Failure{Category: CategoryProcess, Detail: fmt.Sprintf("%s killed: %s", role, res.KillReason)}
	case !res.Success:
		return nil, &Failure{Category: CategoryProcess, Detail: fmt.Sprintf("%s failed to run: %s", role, res.Error)}
	}
	return res, nil
}

func stderrHint(res *tactile.ExecutionResult) string {
	s := strings.TrimSpace(res.Stderr)
	if s == "" {
		return ""
	}
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return ": " + s
}
