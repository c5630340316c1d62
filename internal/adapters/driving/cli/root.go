// Package cli provides the cobra command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperquery/paperquery/internal/app"
	"github.com/paperquery/paperquery/internal/config"
	"github.com/paperquery/paperquery/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool

	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "paperquery",
	Short: "Document summarization and question answering",
	Long: `paperquery ingests PDF documents, summarizes them, and answers
questions about their content using a fallback chain of LLM providers.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() {
	defer func() {
		if application != nil {
			application.Close()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// getApp wires the application on first use so commands that never touch a
// backend (version, help) work without Redis or S3 running.
func getApp(ctx context.Context) (*app.App, error) {
	if application != nil {
		return application, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	application, err = app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("starting application: %w", err)
	}
	return application, nil
}
