package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/rugscan/internal/cache"
	"github.com/ppiankov/rugscan/internal/llm"
	"github.com/ppiankov/rugscan/internal/metrics"
	"github.com/ppiankov/rugscan/internal/model"
)

// Pipeline orchestrates acquisition, analysis and the optional narrative
type Pipeline struct {
	analyzer   *Analyzer
	loader     *SourceLoader
	renderer   *Renderer
	summarizer *llm.Summarizer      // nil if disabled
	metrics    *metrics.ScanMetrics // nil if disabled
	config     *model.Config
	now        func() time.Time
}

// NewPipeline creates a pipeline for the given configuration and catalog
func NewPipeline(cfg *model.Config, cat *model.Catalog) (*Pipeline, error) {
	analyzer, err := NewAnalyzer(cat)
	if err != nil {
		return nil, err
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		llmConfig := llm.ConfigFromModel(cfg.LLM)
		llmConfig.HTTPProxy = cfg.HTTP.HTTPProxy
		llmConfig.HTTPSProxy = cfg.HTTP.HTTPSProxy
		llmConfig.NoProxy = cfg.HTTP.NoProxy

		s, err := llm.NewSummarizer(llmConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	if cfg.HTTP.RespectRobots {
		fetcher.RespectRobots()
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.New(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	return &Pipeline{
		analyzer:   analyzer,
		loader:     NewSourceLoader(fetcher, c, cfg.HTTP.MaxBodyBytes),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		config:     cfg,
		now:        time.Now,
	}, nil
}

// WithMetrics records every scan into m
func (p *Pipeline) WithMetrics(m *metrics.ScanMetrics) *Pipeline {
	p.metrics = m
	return p
}

// Analyzer returns the engine used by the pipeline
func (p *Pipeline) Analyzer() *Analyzer {
	return p.analyzer
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// ScanResult is a report plus the context it was produced in
type ScanResult struct {
	Source    string           `json:"source"`
	Adapter   string           `json:"adapter"`
	Cached    bool             `json:"cached"`
	ScannedAt time.Time        `json:"scanned_at"`
	Report    *model.Report    `json:"report"`
	Narrative *model.Narrative `json:"narrative,omitempty"`
}

// ScanSource loads a file, URL or stdin ("-") and analyzes it
func (p *Pipeline) ScanSource(ctx context.Context, location string) (*ScanResult, error) {
	start := time.Now()

	src, err := p.loader.Load(ctx, location)
	if err != nil {
		p.observeFailure()
		return nil, err
	}

	result, err := p.scan(ctx, src)
	if err != nil {
		return nil, err
	}
	p.observe(result.Report, time.Since(start))
	return result, nil
}

// ScanText analyzes text that was already acquired by the caller
func (p *Pipeline) ScanText(ctx context.Context, location, text string) (*ScanResult, error) {
	start := time.Now()
	result, err := p.scan(ctx, &Source{Location: location, Adapter: "plain", Text: text})
	if err != nil {
		return nil, err
	}
	p.observe(result.Report, time.Since(start))
	return result, nil
}

func (p *Pipeline) scan(ctx context.Context, src *Source) (*ScanResult, error) {
	report, err := p.analyzer.Analyze(src.Text)
	if err != nil {
		p.observeFailure()
		return nil, fmt.Errorf("analyze %s: %w", src.Location, err)
	}

	result := &ScanResult{
		Source:    src.Location,
		Adapter:   src.Adapter,
		Cached:    src.Cached,
		ScannedAt: p.now().UTC(),
		Report:    report,
	}

	// Narrative runs after scoring and never touches the report
	if p.summarizer.IsEnabled() {
		narrative, err := p.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: LLM narrative failed: %v\n", err)
		} else {
			result.Narrative = narrative
		}
	}

	return result, nil
}

func (p *Pipeline) observe(report *model.Report, elapsed time.Duration) {
	if p.metrics != nil {
		p.metrics.Observe(report, elapsed)
	}
}

func (p *Pipeline) observeFailure() {
	if p.metrics != nil {
		p.metrics.ObserveFailure()
	}
}

// RenderReport writes the requested outputs for a scan result
func (p *Pipeline) RenderReport(result *ScanResult, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if result.Narrative != nil && result.Narrative.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(result.Narrative), llmPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write LLM narrative: %v\n", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote LLM narrative: %s\n", llmPath)
		}
	}

	return nil
}
