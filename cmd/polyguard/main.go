// Command polyguard generates and verifies test data for the cyclic
// polydivisibility passcode problem.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"polyguard/internal/config"
	"polyguard/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded by the root command before any subcommand runs
	cfg    *config.Config
	logger *zap.Logger
)

// exitCodeError carries a specific process exit status out of a command.
// A nil err means the status is the whole message.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitCodeError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "polyguard",
		Short: "Test data generator and judge verifier for cyclic polydivisible passcodes",
		Long: `polyguard decides whether passcodes are cyclically polydivisible, builds
labelled fixture suites for the problem, and checks external judges and input
validators against those fixtures.

A passcode is secure when every prefix of length i is divisible by
((i-1) mod 10) + 1.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./"+config.DefaultConfigFile+" if present)")

	root.AddCommand(
		newCheckCmd(),
		newJudgeCmd(),
		newValidateCmd(),
		newEnumerateCmd(),
		newCraftCmd(),
		newGenerateCmd(),
		newVerifyCmd(),
	)
	return root
}

// setup loads configuration and installs the logger.
func setup(cmd *cobra.Command) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigFile
	} else if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logging.Initialize(logging.Options{
		Level:   c.Logging.Level,
		Format:  c.Logging.Format,
		Verbose: verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg = c
	logger = l
	logger.Debug("command starting", zap.String("command", cmd.CommandPath()), zap.String("config", path))
	return nil
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	var exitErr *exitCodeError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		if exitErr.err != nil {
			fmt.Fprintln(stderr, "Error:", exitErr.err)
		}
		return exitErr.code
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
