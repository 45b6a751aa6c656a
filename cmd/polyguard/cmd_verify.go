package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"polyguard/internal/harness"
	"polyguard/internal/tactile"
)

func newVerifyCmd() *cobra.Command {
	var (
		validator, judge string
		workers          int
		timeout          time.Duration
		noColor          bool
	)

	cmd := &cobra.Command{
		Use:   "verify [dir|file.in]...",
		Short: "Run a validator and a judge against fixtures",
		Long: `Feeds every fixture input to the validator (which must exit with the accept
code, 42 by default) and to the judge, then compares the judge's trimmed
output with the stored .ans file. Failures are grouped as validator,
mismatch or process errors. Exits 1 if any fixture failed.

Commands are split on whitespace; shell quoting is not interpreted.`,
		Example: `  polyguard verify --validator "polyguard validate" --judge "python3 judge.py" data
  polyguard verify --judge ./judge --timeout 2s data/secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exec := cfg.Execution
			if cmd.Flags().Changed("validator") {
				exec.Validator = strings.Fields(validator)
			}
			if cmd.Flags().Changed("judge") {
				exec.Judge = strings.Fields(judge)
			}
			if cmd.Flags().Changed("workers") {
				exec.Workers = workers
			}

			hcfg := harness.Config{
				Validator:        exec.Validator,
				Judge:            exec.Judge,
				AcceptCode:       exec.ValidatorAcceptCode,
				ValidatorTimeout: exec.GetValidatorTimeout(),
				JudgeTimeout:     exec.GetJudgeTimeout(),
				Workers:          exec.Workers,
			}
			if cmd.Flags().Changed("timeout") {
				hcfg.ValidatorTimeout = timeout
				hcfg.JudgeTimeout = timeout
			}

			ecfg := tactile.DefaultExecutorConfig()
			ecfg.AllowedEnvironment = exec.AllowedEnvVars
			ecfg.MaxTimeout = max(hcfg.ValidatorTimeout, hcfg.JudgeTimeout)

			h, err := harness.New(hcfg, tactile.NewDirectExecutorWithConfig(ecfg))
			if err != nil {
				return err
			}

			if len(args) == 0 {
				args = []string{"data"}
			}
			paths, err := harness.Discover(args...)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no fixture inputs found")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := h.Verify(ctx, paths)
			if err != nil {
				return err
			}
			logger.Info("verification finished",
				zap.String("run_id", report.RunID),
				zap.Int("fixtures", len(report.Outcomes)),
				zap.Int("passed", report.Passed()))

			out := cmd.OutOrStdout()
			styled := !noColor
			if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
				styled = false
			}
			if err := report.Render(out, styled); err != nil {
				return err
			}
			if report.Failed() {
				return &exitCodeError{code: 1, err: fmt.Errorf("%d of %d fixtures failed", len(report.Outcomes)-report.Passed(), len(report.Outcomes))}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&validator, "validator", "", "Validator command (default: execution.validator from config)")
	cmd.Flags().StringVar(&judge, "judge", "", "Judge command (default: execution.judge from config)")
	cmd.Flags().IntVarP(&workers, "workers", "j", 4, "Fixtures verified in parallel")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-process timeout for both programs")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}
