// Package store persists run outcomes under a per-run results folder.
package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/memoryleak07/GFScraper/internal/engine"
	"github.com/memoryleak07/GFScraper/internal/metrics"
)

// Default file names inside the run folder.
const (
	DefaultJSONFile    = "result.json"
	DefaultCSVFile     = "results.csv"
	DefaultSummaryFile = "summary.json"
)

// Config captures the parameters for the filesystem result store.
type Config struct {
	// BaseDir is the root under which each run gets its own folder.
	BaseDir string
	// Fields is the ordered list of extraction field names used as the
	// tabular store's trailing columns. Fixed at construction; the CSV
	// header is written once and never rewritten.
	Fields []string

	JSONFile    string
	CSVFile     string
	SummaryFile string
}

// Store writes outcomes to a structured JSON store and a flattened CSV
// store, plus a single end-of-run summary record. The run coordinator
// serializes calls; the mutex only guards against accidental concurrent use.
type Store struct {
	mu          sync.Mutex
	dir         string
	jsonPath    string
	csvPath     string
	summaryPath string
	fields      []string
	clock       engine.Clock
	logger      *zap.Logger
}

// New creates the run folder under cfg.BaseDir and returns a Store rooted
// in it. The folder name is the run start time in unix seconds.
func New(cfg Config, clock engine.Clock, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JSONFile == "" {
		cfg.JSONFile = DefaultJSONFile
	}
	if cfg.CSVFile == "" {
		cfg.CSVFile = DefaultCSVFile
	}
	if cfg.SummaryFile == "" {
		cfg.SummaryFile = DefaultSummaryFile
	}

	dir := filepath.Join(cfg.BaseDir, strconv.FormatInt(clock.Now().Unix(), 10))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create results folder %s: %w", dir, err)
	}
	logger.Info("created results folder", zap.String("dir", dir))

	return &Store{
		dir:         dir,
		jsonPath:    filepath.Join(dir, cfg.JSONFile),
		csvPath:     filepath.Join(dir, cfg.CSVFile),
		summaryPath: filepath.Join(dir, cfg.SummaryFile),
		fields:      append([]string(nil), cfg.Fields...),
		clock:       clock,
		logger:      logger,
	}, nil
}

// Dir returns the run folder path.
func (s *Store) Dir() string { return s.dir }

// RecordOutcome appends the outcome to both representations. The JSON store
// is rewritten whole on every call; a missing or malformed existing file is
// treated as empty, not as a fatal error.
func (s *Store) RecordOutcome(_ context.Context, outcome engine.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendJSON(outcome); err != nil {
		return err
	}
	return s.appendCSV(outcome)
}

// RecordSummary writes the single aggregate record, replacing any prior one.
func (s *Store) RecordSummary(_ context.Context, summary engine.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := struct {
		Timestamp time.Time      `json:"timestamp"`
		Summary   engine.Summary `json:"summary"`
	}{
		Timestamp: s.clock.Now(),
		Summary:   summary,
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(s.summaryPath, payload, 0o600); err != nil {
		return fmt.Errorf("write summary %s: %w", s.summaryPath, err)
	}
	s.logger.Info("summary saved", zap.String("path", s.summaryPath))
	return nil
}

func (s *Store) appendJSON(outcome engine.Outcome) error {
	var records []engine.Outcome
	raw, err := os.ReadFile(s.jsonPath)
	switch {
	case err == nil:
		if uerr := json.Unmarshal(raw, &records); uerr != nil {
			s.logger.Warn("structured store malformed, starting over",
				zap.String("path", s.jsonPath),
				zap.Error(uerr),
			)
			records = nil
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("read structured store %s: %w", s.jsonPath, err)
	}

	records = append(records, outcome)
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outcomes: %w", err)
	}
	if err := os.WriteFile(s.jsonPath, payload, 0o600); err != nil {
		return fmt.Errorf("write structured store %s: %w", s.jsonPath, err)
	}
	return nil
}

func (s *Store) appendCSV(outcome engine.Outcome) error {
	rows := s.unzipRows(outcome)
	if len(rows) == 0 {
		return nil
	}
	writeHeader := !fileExists(s.csvPath)

	f, err := os.OpenFile(s.csvPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open tabular store %s: %w", s.csvPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		header := append([]string{"timestamp", "from", "to", "outbound", "inbound"}, s.fields...)
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write tabular header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write tabular row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush tabular store: %w", err)
	}
	metrics.AddTabularRows(len(rows))
	return nil
}

// unzipRows flattens the outcome's parallel arrays into rows, one per index.
// A row is kept only when every unzipped cell is non-empty after trimming;
// rows with a hole are dropped with a warning.
func (s *Store) unzipRows(outcome engine.Outcome) [][]string {
	if outcome.Status != engine.StatusSuccess || outcome.Data == nil {
		return nil
	}

	maxLen := 0
	for _, field := range s.fields {
		if n := len(outcome.Data[field]); n > maxLen {
			maxLen = n
		}
	}

	base := []string{
		outcome.Timestamp.Format(time.RFC3339),
		outcome.From,
		outcome.To,
		outcome.Outbound,
		outcome.Inbound,
	}

	rows := make([][]string, 0, maxLen)
	for i := 0; i < maxLen; i++ {
		cells := make([]string, 0, len(s.fields))
		complete := true
		for _, field := range s.fields {
			values := outcome.Data[field]
			cell := ""
			if i < len(values) {
				cell = strings.TrimSpace(values[i])
			}
			if cell == "" {
				complete = false
				break
			}
			cells = append(cells, cell)
		}
		if !complete {
			s.logger.Warn("dropping incomplete tabular row",
				zap.String("url", outcome.URL),
				zap.Int("index", i),
			)
			continue
		}
		rows = append(rows, append(append([]string(nil), base...), cells...))
	}
	return rows
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
