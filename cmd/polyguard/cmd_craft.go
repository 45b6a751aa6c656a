package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"polyguard/internal/craft"
	"polyguard/internal/polydiv"
)

func newCraftCmd() *cobra.Command {
	var (
		length, count int
		seed          int64
		details       bool
	)

	cmd := &cobra.Command{
		Use:   "craft",
		Short: "Generate near-miss passcodes",
		Long: `Prints passcodes that follow the rule up to a random fail point and continue
with random digits. With --details each line also shows the fail point and
the checker's verdict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Generation.Seed
			}

			c := craft.New(rand.New(rand.NewSource(seed)))
			out := cmd.OutOrStdout()
			for i := 0; i < count; i++ {
				res, err := c.CraftDetailed(length)
				if err != nil {
					return err
				}
				if details {
					fmt.Fprintf(out, "%s\tfail_point=%d\t%s\n", res.Code, res.FailPoint, polydiv.Check(res.Code))
				} else {
					fmt.Fprintln(out, res.Code)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&length, "length", "l", 25, "Digits per passcode")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of passcodes")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default: generation.seed from config)")
	cmd.Flags().BoolVar(&details, "details", false, "Show fail point and verdict")
	return cmd
}
