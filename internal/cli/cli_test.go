package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/rugscan/internal/model"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	want := model.DefaultConfig()
	if cfg.HTTP.Timeout != want.HTTP.Timeout || cfg.Concurrency.Workers != want.Concurrency.Workers {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if !cfg.LLM.Strict {
		t.Error("expected strict LLM mode by default")
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  timeout: 7s
concurrency:
  workers: 9
catalog:
  path: /tmp/catalog.yaml
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("RUGSCAN_RATE_LIMITING_BURST_SIZE", "11")

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("RUGSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.HTTP.Timeout != 7*time.Second {
		t.Errorf("expected 7s timeout, got %v", cfg.HTTP.Timeout)
	}
	if cfg.Concurrency.Workers != 9 {
		t.Errorf("expected 9 workers, got %d", cfg.Concurrency.Workers)
	}
	if cfg.RateLimiting.BurstSize != 11 {
		t.Errorf("expected burst 11 from env, got %d", cfg.RateLimiting.BurstSize)
	}
	if cfg.Catalog.Path != "/tmp/catalog.yaml" {
		t.Errorf("unexpected catalog path %q", cfg.Catalog.Path)
	}
	// Untouched keys keep their defaults
	if cfg.HTTP.MaxBodyBytes != model.DefaultConfig().HTTP.MaxBodyBytes {
		t.Errorf("expected default max body bytes, got %d", cfg.HTTP.MaxBodyBytes)
	}
}

func TestCommonFlags_Apply(t *testing.T) {
	var flags commonFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	if err := cmd.ParseFlags([]string{"--no-cache", "--no-footer", "--ignore-robots", "--metrics-file", "m.prom"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "openai"
	if err := flags.apply(cmd, cfg); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if cfg.Cache.Enabled || cfg.Output.IncludeFooter || cfg.HTTP.RespectRobots {
		t.Errorf("expected flags to disable cache, footer and robots: %+v", cfg)
	}
	if cfg.Metrics.File != "m.prom" {
		t.Errorf("expected metrics file, got %q", cfg.Metrics.File)
	}
	if cfg.LLM.Provider != "" {
		t.Error("expected narrative disabled without --llm")
	}
}

func TestCommonFlags_LLMRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	var flags commonFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	if err := cmd.ParseFlags([]string{"--llm"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	cfg := model.DefaultConfig()
	if err := flags.apply(cmd, cfg); err == nil {
		t.Fatal("expected error without API key")
	}

	cfg.LLM.APIKey = "sk-test"
	if err := flags.apply(cmd, cfg); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected openai provider, got %q", cfg.LLM.Provider)
	}
}

func TestCommonFlags_LLMProvider(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr bool
		want    string
		wantKey string
	}{
		{"openai key from env", []string{"--llm"}, map[string]string{"OPENAI_API_KEY": "sk-env"}, false, "openai", "sk-env"},
		{"anthropic key from env", []string{"--llm-provider", "anthropic"}, map[string]string{"ANTHROPIC_API_KEY": "sk-ant"}, false, "anthropic", "sk-ant"},
		{"anthropic without key", []string{"--llm", "--llm-provider", "anthropic"}, nil, true, "", ""},
		{"ollama needs no key", []string{"--llm-provider", "ollama"}, nil, false, "ollama", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			t.Setenv("ANTHROPIC_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var flags commonFlags
			cmd := &cobra.Command{Use: "test"}
			flags.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags failed: %v", err)
			}

			cfg := model.DefaultConfig()
			err := flags.apply(cmd, cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("apply failed: %v", err)
			}
			if cfg.LLM.Provider != tt.want || cfg.LLM.APIKey != tt.wantKey {
				t.Errorf("got provider %q key %q, want %q %q", cfg.LLM.Provider, cfg.LLM.APIKey, tt.want, tt.wantKey)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contracts/Token.sol", "contracts_Token"},
		{"https://example.com/a b/Token.sol", "example.com_a-b_Token"},
		{"-", "source"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReportName_Unique(t *testing.T) {
	a := reportName(0, "https://example.com/Token.sol")
	b := reportName(1, "https://example.com/Token.sol")
	if a == b {
		t.Error("expected index to disambiguate report names")
	}
	if !strings.HasPrefix(a, "001-") {
		t.Errorf("unexpected name %q", a)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "rate_limiting:") || strings.Contains(string(data), "api_key") {
		t.Errorf("unexpected config content:\n%s", data)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/x.yaml"); got != filepath.Join(home, "x.yaml") {
		t.Errorf("unexpected expansion %q", got)
	}
	if got := expandHome("/abs/x.yaml"); got != "/abs/x.yaml" {
		t.Errorf("expected absolute path unchanged, got %q", got)
	}
}
