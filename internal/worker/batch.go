package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/rugscan/internal/model"
	"github.com/ppiankov/rugscan/internal/pipeline"
)

// Scanner defines the interface for scanning one source
type Scanner interface {
	ScanSource(ctx context.Context, location string) (*pipeline.ScanResult, error)
}

// ScanJob represents a single source scan
type ScanJob struct {
	Index   int
	Source  string
	Scanner Scanner
	Limiter *Limiter
}

// Execute executes the scan job
func (j *ScanJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Source); err != nil {
			return &ScanResult{Index: j.Index, Source: j.Source, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	result, err := j.Scanner.ScanSource(ctx, j.Source)
	if err != nil {
		return &ScanResult{Index: j.Index, Source: j.Source, Error: err}
	}
	return &ScanResult{Index: j.Index, Source: j.Source, Result: result}
}

// ScanResult represents the outcome of a scan job
type ScanResult struct {
	Index  int
	Source string
	Result *pipeline.ScanResult
	Error  error
}

// GetError returns the error from the scan result
func (r *ScanResult) GetError() error {
	return r.Error
}

// BatchProcessor scans multiple sources concurrently
type BatchProcessor struct {
	scanner     Scanner
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor; URL sources are limited per host
func NewBatchProcessor(scanner Scanner, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		scanner:     scanner,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
	}
}

// ProcessSources scans sources concurrently and returns one result per source, in input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*ScanResult {
	if len(sources) == 0 {
		return []*ScanResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, src := range sources {
		pool.Submit(&ScanJob{
			Index:   i,
			Source:  src,
			Scanner: b.scanner,
			Limiter: b.limiter,
		})
	}

	ordered := make([]*ScanResult, len(sources))
	for _, r := range pool.Wait() {
		sr := r.(*ScanResult)
		ordered[sr.Index] = sr
	}

	// Jobs dropped by cancellation still get an entry
	for i, sr := range ordered {
		if sr == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("scan not run")
			}
			ordered[i] = &ScanResult{Index: i, Source: sources[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads sources from a list file and scans them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ScanResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads sources from a file (one per line, # comments, duplicates dropped)
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

// SummaryEntry is one source in a batch summary.
// Score is nil only for failed sources; a safe source records 0.
type SummaryEntry struct {
	Source string     `json:"source"`
	Score  *int       `json:"score,omitempty"`
	Band   model.Band `json:"band,omitempty"`
	Report string     `json:"report,omitempty"` // Base name of the written report files
	Error  string     `json:"error,omitempty"`
}

// BatchSummary describes a completed batch run
type BatchSummary struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Total      int                `json:"total"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Bands      map[model.Band]int `json:"bands"`
	Entries    []SummaryEntry     `json:"entries"`
}

// NewBatchSummary starts a summary with a fresh run ID
func NewBatchSummary(startedAt time.Time) *BatchSummary {
	return &BatchSummary{
		RunID:     uuid.NewString(),
		StartedAt: startedAt.UTC(),
		Bands: map[model.Band]int{
			model.BandSafe:   0,
			model.BandLow:    0,
			model.BandMedium: 0,
			model.BandHigh:   0,
		},
	}
}

// Add records one result; reportName may be empty
func (s *BatchSummary) Add(r *ScanResult, reportName string) {
	s.Total++
	entry := SummaryEntry{Source: r.Source}
	if r.Error != nil {
		s.Failed++
		entry.Error = r.Error.Error()
	} else {
		s.Succeeded++
		score := r.Result.Report.Score
		s.Bands[score.Band]++
		value := score.Value
		entry.Score = &value
		entry.Band = score.Band
		entry.Report = reportName
	}
	s.Entries = append(s.Entries, entry)
}

// Finish stamps the end time
func (s *BatchSummary) Finish(at time.Time) {
	s.FinishedAt = at.UTC()
}

// WriteJSON writes the summary to path
func (s *BatchSummary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
