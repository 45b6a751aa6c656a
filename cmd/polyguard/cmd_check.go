package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"polyguard/internal/polydiv"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <passcode>...",
		Short: "Print the verdict for each passcode",
		Long: `Prints one line per passcode: the code, then "secure" or the 1-based index
of the first prefix that breaks the rule. Exits 1 if any code is insecure.`,
		Example: `  polyguard check 381654729 1234`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			insecure := 0
			for _, code := range args {
				v := polydiv.CheckString(code)
				if !v.IsSecure() {
					insecure++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, v)
			}
			if insecure > 0 {
				return &exitCodeError{code: 1}
			}
			return nil
		},
	}
}
