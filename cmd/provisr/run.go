package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/provisr/provisr/internal/config"
	"github.com/provisr/provisr/internal/engine"
	"github.com/provisr/provisr/internal/logger"
	"github.com/provisr/provisr/internal/report"
)

type runOptions struct {
	ConfigPath string
	DryRun     bool
	Verbose    bool
}

var (
	runCmdRunner   = runRun
	resolveBaseDir = engine.ExecutableDir
)

func newRunCmd(root *rootFlags, registry *engine.Registry) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the provisioning sequence against the target instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DryRun = root.dryRun
			opts.Verbose = root.verbose

			return runCmdRunner(opts, registry)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a sequence file (default: built-in n8n sequence)")

	return cmd
}

func runRun(opts runOptions, registry *engine.Registry) error {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		parsed, err := config.ParseConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = parsed
	}

	level := "info"
	if opts.Verbose || cfg.Settings.Verbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{
		Level:         level,
		HumanReadable: true,
		FilePath:      os.Getenv("PROVISR_LOG_FILE"),
	})
	if err != nil {
		return err
	}

	baseDir, err := resolveBaseDir()
	if err != nil {
		return err
	}

	rc, err := engine.NewRunContext(cfg.Settings, engine.Options{
		BaseDir: baseDir,
		DryRun:  opts.DryRun,
		Logger:  log,
		Out:     os.Stdout,
	})
	if err != nil {
		return err
	}

	results, execErr := engine.Execute(context.Background(), rc, registry, cfg)

	colored := term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Fprint(os.Stdout, report.Render(results, colored))

	if execErr != nil {
		return execErr
	}

	fmt.Fprintf(os.Stdout, "provisioning of %s completed successfully\n", rc.TargetURL)
	return nil
}
