package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memoryleak07/GFScraper/internal/clock/system"
	"github.com/memoryleak07/GFScraper/internal/flights"
)

// urlPlan is the on-disk shape of a dry-run enumeration.
type urlPlan struct {
	Summary urlPlanSummary `json:"summary"`
	URLs    []string       `json:"urls"`
}

type urlPlanSummary struct {
	Timestamp      string `json:"timestamp"`
	TotalURLs      int    `json:"total_urls"`
	FirstDeparture string `json:"first_departure"`
	LastDeparture  string `json:"last_departure"`
}

func newPlanCmd() *cobra.Command {
	var preview int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Enumerates the search space without fetching anything",
		Long: `Builds every search URL the scrape command would visit and writes
them to a timestamped plan file in the results directory. Useful for
checking the date expansion and the run size before committing browser
time to it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlanCommand(cmd, preview)
		},
	}

	cmd.Flags().IntVar(&preview, "preview", 10, "number of URLs to print to stdout")

	return cmd
}

func runPlanCommand(cmd *cobra.Command, preview int) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Search.FirstDeparture == "" || cfg.Search.LastDeparture == "" {
		return fmt.Errorf("search.first_departure and search.last_departure are required")
	}
	spec, err := cfg.Search.Spec()
	if err != nil {
		return err
	}

	queries := flights.BuildQueries(spec)
	urls := make([]string, len(queries))
	for i, q := range queries {
		urls[i] = q.URL
	}

	now := system.New().Now()
	plan := urlPlan{
		Summary: urlPlanSummary{
			Timestamp:      now.Format(time.RFC3339),
			TotalURLs:      len(urls),
			FirstDeparture: spec.FirstDeparture.Format(flights.DateLayout),
			LastDeparture:  spec.LastDeparture.Format(flights.DateLayout),
		},
		URLs: urls,
	}

	if err := os.MkdirAll(cfg.Storage.ResultsDir, 0o750); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	path := filepath.Join(cfg.Storage.ResultsDir, fmt.Sprintf("%d_urls.json", now.Unix()))
	body, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}

	logger.Info("plan written",
		zap.String("path", path),
		zap.Int("total_urls", len(urls)))

	for i, u := range urls {
		if i >= preview {
			fmt.Fprintf(cmd.OutOrStdout(), "... and %d more\n", len(urls)-preview)
			break
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
	}

	return nil
}
