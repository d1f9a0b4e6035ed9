package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-to-html/config"
	"github.com/dhcgn/eml-to-html/console"
	"github.com/dhcgn/eml-to-html/convert"
	"github.com/dhcgn/eml-to-html/filter"
	"github.com/dhcgn/eml-to-html/runner"
)

var rootCmd = &cobra.Command{
	Use:           "eml-to-html [flags] [paths...]",
	Short:         "Extract the HTML body of .eml files into .html files",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd, args)
		if err != nil {
			return err
		}

		logger, cleanup, err := setupLogger(cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = cleanup()
		}()

		slog.SetDefault(logger)
		logger.Debug("starting eml-to-html", "paths", len(cfg.Paths), "recursive", cfg.Recursive, "keepGoing", cfg.KeepGoing)

		return run(cfg, logger)
	},
}

func init() {
	config.RegisterPersistentFlags(rootCmd)
	config.RegisterFlags(rootCmd)
}

// Execute runs the command tree with the process arguments.
func Execute() error {
	return rootCmd.Execute()
}

func run(cfg config.Config, logger *slog.Logger) error {
	f, err := filter.New(filter.Options{Include: cfg.Include, Exclude: cfg.Exclude})
	if err != nil {
		return fmt.Errorf("filter.New: %w", err)
	}

	printer := console.New(os.Stdout, !cfg.NoColor)
	converter := convert.New(nil, printer, logger)

	r, err := runner.New(runner.Options{
		Recursive: cfg.Recursive,
		KeepGoing: cfg.KeepGoing,
		Filter:    f,
	}, converter, printer, logger)
	if err != nil {
		return fmt.Errorf("runner.New: %w", err)
	}

	if err := r.Run(cfg.Paths); err != nil {
		return err
	}

	if stats := f.Stats(); len(stats.Hits) > 0 {
		logger.Debug("filter hits", "include", stats.IncludePatterns, "exclude", stats.ExcludePatterns, "hits", stats.Hits)
	}
	return nil
}
