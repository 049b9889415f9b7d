package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/provisr/provisr/internal/logger"
	"github.com/provisr/provisr/internal/n8n"
	workflowstep "github.com/provisr/provisr/internal/steps/workflows"
	"github.com/provisr/provisr/internal/workflows"
	provisrerrors "github.com/provisr/provisr/pkg/errors"
)

func defaultHost() string {
	if host := os.Getenv("N8N_HOST"); host != "" {
		return host
	}
	return "http://localhost:5678"
}

func newWorkflowsCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Manage workflows on an n8n instance directly",
	}

	cmd.AddCommand(newWorkflowsImportCmd(root))
	cmd.AddCommand(newWorkflowsActivateCmd(root))

	return cmd
}

func newWorkflowsImportCmd(root *rootFlags) *cobra.Command {
	var (
		host   string
		dir    string
		output string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create workflows from JSON definition files",
		RunE: func(cmd *cobra.Command, args []string) error {
			importer, err := newImporter(host, root.verbose)
			if err != nil {
				return err
			}

			summary, err := importer.ImportDir(context.Background(), dir, output)
			if summary != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d workflow(s)\n", summary.Done, summary.Total)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&host, "host", defaultHost(), "URL of the n8n instance (also via N8N_HOST)")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory containing workflow JSON files")
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to save created workflow IDs to (default: workflows_ids.json in --dir)")

	return cmd
}

func newWorkflowsActivateCmd(root *rootFlags) *cobra.Command {
	var (
		host    string
		idsFile string
	)

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Activate previously created workflows by saved ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			importer, err := newImporter(host, root.verbose)
			if err != nil {
				return err
			}

			summary, err := importer.ActivateFromFile(context.Background(), idsFile)
			if summary != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "activated %d of %d workflow(s)\n", summary.Done, summary.Total)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&host, "host", defaultHost(), "URL of the n8n instance (also via N8N_HOST)")
	cmd.Flags().StringVarP(&idsFile, "file", "f", workflows.DefaultIDsFile, "File containing the workflow ID array")

	return cmd
}

func newImporter(host string, verbose bool) (*workflows.Importer, error) {
	apiKey := strings.TrimSpace(os.Getenv(workflowstep.APIKeyEnv))
	if apiKey == "" {
		return nil, provisrerrors.NewMissingConfigError(workflowstep.APIKeyEnv)
	}

	level := "info"
	if verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: true,
		FilePath:      os.Getenv("PROVISR_LOG_FILE"),
	})
	if err != nil {
		return nil, err
	}

	client := n8n.NewClient(host, apiKey, nil)
	return workflows.NewImporter(client, log), nil
}
