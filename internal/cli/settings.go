package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/rugscan/internal/catalog"
	"github.com/ppiankov/rugscan/internal/llm"
	"github.com/ppiankov/rugscan/internal/model"
)

// setDefaults registers every config key so env vars resolve without a config file
func setDefaults(v *viper.Viper) {
	d := model.DefaultConfig()

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.max_body_bytes", d.HTTP.MaxBodyBytes)
	v.SetDefault("http.insecure_tls", d.HTTP.InsecureTLS)
	v.SetDefault("http.http_proxy", d.HTTP.HTTPProxy)
	v.SetDefault("http.https_proxy", d.HTTP.HTTPSProxy)
	v.SetDefault("http.no_proxy", d.HTTP.NoProxy)
	v.SetDefault("http.respect_robots", d.HTTP.RespectRobots)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)

	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)

	v.SetDefault("output.verbose", d.Output.Verbose)
	v.SetDefault("output.include_footer", d.Output.IncludeFooter)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.strict", d.LLM.Strict)

	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("metrics.file", d.Metrics.File)
}

// loadConfig merges defaults, config file and environment into a model.Config
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Cache.Dir != "" {
		cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	}
	if cfg.Catalog.Path != "" {
		cfg.Catalog.Path = expandHome(cfg.Catalog.Path)
	}

	return cfg, nil
}

// commonFlags are shared by scan, batch and watch
type commonFlags struct {
	catalogPath string
	noCache     bool
	noFooter    bool
	insecureTLS bool
	noRobots    bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
	metricsFile string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.catalogPath, "catalog", "", "pattern catalog YAML (default: built-in catalog)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable cache (force fresh fetch)")
	cmd.Flags().BoolVar(&f.noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&f.insecureTLS, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().BoolVar(&f.noRobots, "ignore-robots", false, "do not consult robots.txt before fetching URLs")
	cmd.Flags().BoolVar(&f.llmEnabled, "llm", false, "attach an LLM narrative (openai needs OPENAI_API_KEY, anthropic needs ANTHROPIC_API_KEY)")
	cmd.Flags().StringVar(&f.llmProvider, "llm-provider", "", "LLM provider: openai, anthropic, ollama (implies --llm)")
	cmd.Flags().StringVar(&f.llmModel, "llm-model", "", "LLM model name (default depends on provider)")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write prometheus metrics to this file")
}

// apply overlays flags the user set on top of cfg
func (f *commonFlags) apply(cmd *cobra.Command, cfg *model.Config) error {
	changed := cmd.Flags().Changed

	if changed("catalog") {
		cfg.Catalog.Path = f.catalogPath
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	if f.noFooter {
		cfg.Output.IncludeFooter = false
	}
	if f.insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if f.noRobots {
		cfg.HTTP.RespectRobots = false
	}
	if changed("metrics-file") {
		cfg.Metrics.File = f.metricsFile
	}
	if changed("llm-model") {
		cfg.LLM.Model = f.llmModel
	}
	if changed("llm-provider") {
		cfg.LLM.Provider = f.llmProvider
	}
	if f.llmEnabled || changed("llm-provider") {
		if cfg.LLM.Provider == "" {
			cfg.LLM.Provider = "openai"
		}
		if env := llm.APIKeyEnv(cfg.LLM.Provider); env != "" && cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv(env)
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("%s environment variable not set", env)
			}
		}
	} else {
		// The narrative is opt-in per invocation
		cfg.LLM.Provider = ""
	}
	cfg.Output.Verbose = verbose

	return nil
}

// loadCatalog loads the configured catalog or the built-in one
func loadCatalog(cfg *model.Config) (*model.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	if verbose {
		source := "built-in"
		if cfg.Catalog.Path != "" {
			source = cfg.Catalog.Path
		}
		fmt.Fprintf(os.Stderr, "Catalog: %s (version %s, %d categories)\n", source, cat.Version, len(cat.Categories))
	}
	return cat, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
