package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-to-html/config"
	"github.com/dhcgn/eml-to-html/console"
	"github.com/dhcgn/eml-to-html/convert"
	"github.com/dhcgn/eml-to-html/mbox"
)

var mboxCmd = &cobra.Command{
	Use:   "mbox [mbox file]",
	Short: "Write the HTML body of every message in an mbox archive",
	Args:  cobra.ExactArgs(1),
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

		path := cfg.Paths[0]
		if total, err := mbox.CountMessages(path); err == nil {
			logger.Info("splitting mbox", "path", path, "messages", total, "outputDir", cfg.OutputDir)
		}

		printer := console.New(os.Stdout, !cfg.NoColor)
		splitter, err := mbox.NewSplitter(mbox.Options{
			Path:      path,
			OutputDir: cfg.OutputDir,
			KeepGoing: cfg.KeepGoing,
		}, convert.New(nil, nil, logger), printer, logger)
		if err != nil {
			return fmt.Errorf("mbox.NewSplitter: %w", err)
		}

		written, err := splitter.Run()
		if err != nil {
			return err
		}
		logger.Debug("mbox done", "path", path, "written", len(written))
		return nil
	},
}

func init() {
	config.RegisterMboxFlags(mboxCmd)
	rootCmd.AddCommand(mboxCmd)
}
