package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// app carries what every subcommand shares.
type app struct {
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: slog.Default()}

	root := &cobra.Command{
		Use:   "partinit",
		Short: "Inspect layouts and initialize composites member by member",
		Long: `partinit resolves typed member paths over Go composites and writes
members of a partially initialized value one at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every member write")

	root.AddCommand(
		newLayoutCmd(a),
		newEncodeCmd(a),
		newDecodeCmd(a),
		newBenchCmd(a),
	)
	return root
}
