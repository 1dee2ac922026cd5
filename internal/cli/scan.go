package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/rugscan/internal/metrics"
	"github.com/ppiankov/rugscan/internal/model"
	"github.com/ppiankov/rugscan/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	scanTimeout time.Duration
	userAgent   string
	maxBytes    int64
	scanFlags   commonFlags
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <file|url|->",
	Short: "Scan one contract source and report its risk signatures",
	Long: `Scan reads contract source from a file, a URL or stdin ("-") and:
- Strips comments
- Matches the pattern catalog's signatures
- Extracts buy and sell tax literals
- Checks for known liquidity-lock custodian addresses
- Scores and bands the result

URL sources may be raw source files, block-explorer HTML pages or
getsourcecode API responses.

Example:
  rugscan scan Token.sol
  cat Token.sol | rugscan scan -
  rugscan scan "https://api.etherscan.io/api?module=contract&action=getsourcecode&address=0x...&apikey=..." --md report.md
  rugscan scan Token.sol --json report.json --llm`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	scanCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 2*time.Minute, "overall scan timeout")
	scanCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (default from config)")
	scanCmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max source bytes to read (default from config)")

	scanFlags.register(scanCmd)
}

// buildPipeline loads config and catalog, applies flags and wires metrics
func buildPipeline(cmd *cobra.Command, flags *commonFlags) (*pipeline.Pipeline, *model.Config, *metrics.ScanMetrics, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := flags.apply(cmd, cfg); err != nil {
		return nil, nil, nil, err
	}
	if cmd.Flags().Lookup("ua") != nil && cmd.Flags().Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if cmd.Flags().Lookup("max-bytes") != nil && cmd.Flags().Changed("max-bytes") {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	p, err := pipeline.NewPipeline(cfg, cat)
	if err != nil {
		return nil, nil, nil, err
	}

	var m *metrics.ScanMetrics
	if cfg.Metrics.File != "" {
		m = metrics.New()
		p.WithMetrics(m)
	}

	return p, cfg, m, nil
}

func writeMetrics(m *metrics.ScanMetrics, path string) {
	if m == nil {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote metrics: %s\n", path)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	location := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	p, cfg, m, err := buildPipeline(cmd, &scanFlags)
	if err != nil {
		return err
	}
	defer writeMetrics(m, cfg.Metrics.File)

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", location)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", scanTimeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	result, err := p.ScanSource(ctx, location)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidInput) {
			return fmt.Errorf("no contract code found in %s", location)
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Source read via %s adapter (cached: %v)\n", result.Adapter, result.Cached)
		fmt.Fprintf(os.Stderr, "✓ Matched %d categories\n", len(result.Report.Matches))
		if n := result.Narrative; n != nil && n.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM narrative using %s/%s\n", n.Provider, n.Model)
		}
	}

	if err := p.RenderReport(result, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	p.Renderer().RenderSummary(os.Stdout, result)

	return nil
}
