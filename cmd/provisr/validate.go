package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provisr/provisr/internal/config"
)

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a sequence file without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.ParseConfig(configPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "configuration valid: %s (%d steps)\n", cfg.Name, len(cfg.Steps))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to sequence file")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
