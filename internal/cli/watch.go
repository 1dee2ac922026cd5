package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/rugscan/internal/metrics"
	"github.com/ppiankov/rugscan/internal/pipeline"
	"github.com/ppiankov/rugscan/internal/watch"
)

var (
	watchDebounce    time.Duration
	watchMetricsAddr string
	watchFlags       commonFlags
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-scan a contract file every time it is saved",
	Long: `Watch scans a local contract file once, then again after every save,
printing the summary each time. Stop with Ctrl-C.

Example:
  rugscan watch contracts/Token.sol`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period after a change before re-scanning")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9109)")
	watchFlags.register(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	if pipeline.IsURL(path) || path == pipeline.StdinLocation {
		return fmt.Errorf("watch needs a local file, got %s", path)
	}

	p, cfg, m, err := buildPipeline(cmd, &watchFlags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchMetricsAddr != "" {
		if m == nil {
			m = metrics.New()
			p.WithMetrics(m)
		}
		go func() {
			if err := m.Serve(ctx, watchMetricsAddr); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}()
		fmt.Fprintf(os.Stderr, "Serving metrics on %s/metrics\n", watchMetricsAddr)
	}

	scanOnce := func(ctx context.Context) {
		result, err := p.ScanSource(ctx, path)
		if err != nil {
			if errors.Is(err, pipeline.ErrInvalidInput) {
				fmt.Fprintf(os.Stderr, "✗ %s: no contract code found\n", path)
			} else {
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			}
			return
		}
		fmt.Fprintf(os.Stdout, "\n[%s]", result.ScannedAt.Local().Format("15:04:05"))
		p.Renderer().RenderSummary(os.Stdout, result)
		if cfg.Metrics.File != "" {
			writeMetrics(m, cfg.Metrics.File)
		}
	}

	w, err := watch.New(path, scanOnce)
	if err != nil {
		return err
	}
	w.SetDebounce(watchDebounce)

	scanOnce(ctx)
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", path)

	return w.Run(ctx)
}
