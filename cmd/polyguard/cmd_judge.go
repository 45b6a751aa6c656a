package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"polyguard/internal/corpus"
	"polyguard/internal/polydiv"
)

func newJudgeCmd() *cobra.Command {
	var secureToken, notSecureToken string

	cmd := &cobra.Command{
		Use:   "judge",
		Short: "Answer a fixture input read from stdin",
		Long: `Reads a fixture input (a count, then that many passcodes) from stdin and
writes the expected answer: the secure token alone, or the not-secure token
followed by every insecure passcode in input order.

polyguard judge is a reference judge for "polyguard verify".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := polydiv.Tokens{Secure: cfg.Output.SecureToken, NotSecure: cfg.Output.NotSecureToken}
			if cmd.Flags().Changed("secure-token") {
				tokens.Secure = secureToken
			}
			if cmd.Flags().Changed("not-secure-token") {
				tokens.NotSecure = notSecureToken
			}

			codes, err := corpus.ParseInput(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), polydiv.Judge(polydiv.Residual{}, codes, tokens))
			return err
		},
	}

	cmd.Flags().StringVar(&secureToken, "secure-token", "secure", "Answer when every passcode is secure")
	cmd.Flags().StringVar(&notSecureToken, "not-secure-token", "not secure", "Header line when some passcode is insecure")
	return cmd
}
