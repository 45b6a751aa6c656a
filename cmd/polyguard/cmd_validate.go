package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"polyguard/internal/format"
)

func newValidateCmd() *cobra.Command {
	var maxDigits, maxCount int

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a fixture input on stdin; exit 42 if well formed, 43 if not",
		Long: `Input format validator in the problem-package convention: reads one fixture
input from stdin and exits 42 when it is well formed. A malformed input exits
43 with the offending line on stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := format.DefaultRules()
			rules.MaxDigits = cfg.Execution.MaxDigits
			if cmd.Flags().Changed("max-digits") {
				rules.MaxDigits = maxDigits
			}
			rules.MaxCount = maxCount

			err := format.Validate(cmd.InOrStdin(), rules)
			switch {
			case err == nil:
				return &exitCodeError{code: format.AcceptExitCode}
			case format.IsMalformed(err):
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return &exitCodeError{code: format.RejectExitCode}
			default:
				return err
			}
		},
	}

	cmd.Flags().IntVar(&maxDigits, "max-digits", format.DefaultRules().MaxDigits, "Longest accepted passcode")
	cmd.Flags().IntVar(&maxCount, "max-count", format.DefaultRules().MaxCount, "Largest accepted passcode count")
	return cmd
}
