// Package cmd defines and implements the CLI commands for the gfscraper executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memoryleak07/GFScraper/internal/config"
	"github.com/memoryleak07/GFScraper/internal/logging"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gfscraper",
		Short: "A concurrent Google Flights price scraper",
		Long: `gfscraper enumerates round-trip flight searches across origins,
destinations and flexible date windows, fetches each results page with a
headless browser, and persists the extracted prices as JSON and CSV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); environment variables with the GFSCRAPER_ prefix override it")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newPlanCmd())

	return cmd
}

// setup loads configuration and builds the logger for a subcommand.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
