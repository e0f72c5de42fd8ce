// Package cmd implements the command line interface of tabular
package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// RootCommand returns the tabular command with all its subcommands
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabular",
		Short: "Dynamic programming and tabular Q-learning on small MDPs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), logLevel)
		},
		SilenceUsage: true,
	}
	AddFlags(cmd)

	cmd.AddCommand(
		ValueIterationCommand(),
		PolicyIterationCommand(),
		EvaluateCommand(),
		SweepCommand(),
		QLearnCommand(),
	)

	return cmd
}

// setupLogging makes the global logger write human readable output
// to w at the given level
func setupLogging(w io.Writer, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	})
	return nil
}
