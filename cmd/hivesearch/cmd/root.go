// Package cmd provides the CLI commands for hivesearch.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/beebytez/hivesearch/internal/logging"
	"github.com/beebytez/hivesearch/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the hivesearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hivesearch",
		Short: "TF-IDF keyword search over a source tree",
		Long: `Hivesearch indexes a source tree into line-window pieces and answers
small keyword queries with a ranked list of the most relevant pieces.

The index is rebuilt from disk on every query, so results always match
what is on disk right now.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("hivesearch version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// setupLogging installs the default logger. Logs go to stderr so stdout
// stays clean for results.
func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	} else {
		// Keep interactive runs quiet; results own stdout, warnings own
		// stderr.
		cfg.Level = "warn"
	}
	cleanup, err := logging.SetupDefault(cfg)
	if err != nil {
		return err
	}
	loggingCleanup = cleanup
	return nil
}
