package main

import (
	"github.com/spf13/cobra"

	"github.com/provisr/provisr/internal/engine"
)

type rootFlags struct {
	verbose bool
	dryRun  bool
}

func newRootCmd(registry *engine.Registry) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "provisr",
		Short:         "provisr provisions an n8n instance with a fixed step sequence",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Preview the run without invoking steps")

	cmd.AddCommand(newRunCmd(flags, registry))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newWorkflowsCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
