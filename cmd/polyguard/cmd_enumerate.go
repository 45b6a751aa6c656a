package main

import (
	"bufio"

	"github.com/spf13/cobra"

	"polyguard/internal/logging"
	"polyguard/internal/search"
)

func newEnumerateCmd() *cobra.Command {
	var maxLen, limit int

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "List secure passcodes in search order",
		Long: `Runs the backtracking search and prints up to --limit secure passcodes of at
most --max-len digits, one per line, every prefix before its extensions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-len") {
				maxLen = cfg.Generation.PoolMaxLen
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Generation.PoolLimit
			}

			timer := logging.StartTimer(logging.CategorySearch, "enumerate")
			codes, err := search.Enumerate(maxLen, limit)
			timer.Stop()
			if err != nil {
				return err
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, c := range codes {
				w.WriteString(string(c))
				w.WriteByte('\n')
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&maxLen, "max-len", 20, "Longest passcode to emit")
	cmd.Flags().IntVar(&limit, "limit", 5000, "Maximum number of passcodes")
	return cmd
}
