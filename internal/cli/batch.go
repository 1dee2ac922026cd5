package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/rugscan/internal/model"
	"github.com/ppiankov/rugscan/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchFlags   commonFlags
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Scan many contract sources from a list file in parallel",
	Long: `Batch scans every source listed in a file (one file path or URL per line,
# comments allowed, duplicates dropped):
- Sources are scanned in parallel with a configurable worker count
- URL sources are rate limited per host
- One JSON and one Markdown report are written per source
- summary.json records the run ID, per-band counts and failures

Example:
  rugscan batch sources.txt
  rugscan batch sources.txt --concurrency 8 --output-dir ./reports
  rugscan batch sources.txt --metrics-file ./rugscan.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./rugscan-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	batchFlags.register(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	p, cfg, m, err := buildPipeline(cmd, &batchFlags)
	if err != nil {
		return err
	}
	defer writeMetrics(m, cfg.Metrics.File)

	workers := cfg.Concurrency.Workers
	if cmd.Flags().Changed("concurrency") {
		workers = concurrency
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  rugscan batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s\n", cfg.LLM.Provider)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	summary := worker.NewBatchSummary(time.Now())
	processor := worker.NewBatchProcessor(p, workers, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	for i, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			summary.Add(result, "")
			continue
		}

		name := reportName(i, result.Source)
		jsonPath := filepath.Join(outputDir, name+".json")
		mdPath := filepath.Join(outputDir, name+".md")
		if err := p.RenderReport(result.Result, jsonPath, mdPath, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, err)
			summary.Add(&worker.ScanResult{Index: i, Source: result.Source, Error: err}, "")
			continue
		}
		summary.Add(result, name)

		score := result.Result.Report.Score
		fmt.Fprintf(os.Stderr, "✓ %s (%s, %d)\n", result.Source, score.Band, score.Value)
	}

	summary.Finish(time.Now())
	summaryPath := filepath.Join(outputDir, "summary.json")
	if err := summary.WriteJSON(summaryPath); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete (run %s)\n", summary.RunID)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d sources\n", summary.Total)
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", summary.Succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", summary.Failed)
	for _, band := range []model.Band{model.BandSafe, model.BandLow, model.BandMedium, model.BandHigh} {
		fmt.Fprintf(os.Stderr, "  %-9s  %d\n", string(band)+":", summary.Bands[band])
	}
	fmt.Fprintf(os.Stderr, "  Summary:   %s\n", summaryPath)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// reportName builds a unique, filesystem-safe base name for a source's reports
func reportName(index int, source string) string {
	return fmt.Sprintf("%03d-%s", index+1, sanitizeFilename(source))
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"&", "_",
	"=", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a source location for use as a filename
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, filepath.Ext(s))
	s = filenameReplacer.Replace(s)
	s = strings.Trim(s, "._-")
	if s == "" {
		s = "source"
	}

	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
