package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanCommandWritesPlanFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := `
search:
  from: [FCO]
  to: [MDE]
  first_departure: "2025-08-04"
  last_departure: "2025-08-05"
  stay_days: 7
  flex_days: 0
storage:
  results_dir: ` + filepath.Join(dir, "results") + `
logging:
  development: false
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"plan", "--config", cfgPath, "--preview", "1"})
	require.NoError(t, root.Execute())

	entries, err := filepath.Glob(filepath.Join(dir, "results", "*_urls.json"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	raw, err := os.ReadFile(entries[0])
	require.NoError(t, err)
	var plan struct {
		Summary struct {
			TotalURLs      int    `json:"total_urls"`
			FirstDeparture string `json:"first_departure"`
		} `json:"summary"`
		URLs []string `json:"urls"`
	}
	require.NoError(t, json.Unmarshal(raw, &plan))
	require.Equal(t, 2, plan.Summary.TotalURLs)
	require.Equal(t, "2025-08-04", plan.Summary.FirstDeparture)
	require.Len(t, plan.URLs, 2)
	require.Contains(t, plan.URLs[0], "Flights%20to%20MDE%20from%20FCO")

	require.Contains(t, out.String(), "... and 1 more")
}

func TestScrapeCommandRequiresDates(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  results_dir: "+dir+"\n"), 0o600))

	root := newRootCmd()
	root.SetArgs([]string{"scrape", "--config", cfgPath})
	err := root.Execute()
	require.ErrorContains(t, err, "first_departure")
}
