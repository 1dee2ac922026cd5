package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/rugscan/internal/catalog"
	"github.com/ppiankov/rugscan/internal/metrics"
	"github.com/ppiankov/rugscan/internal/model"
)

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Cache.Dir = t.TempDir()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.HTTP.RespectRobots = false
	return cfg
}

func newTestPipeline(t *testing.T, cfg *model.Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg, catalog.Default())
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	p.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestScanSource_File(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))

	path := filepath.Join(t.TempDir(), "Token.sol")
	if err := os.WriteFile(path, []byte("_initialBuyTax = 5; _initialSellTax = 25; selfdestruct(owner);"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := p.ScanSource(context.Background(), path)
	if err != nil {
		t.Fatalf("ScanSource failed: %v", err)
	}
	if result.Adapter != "plain" {
		t.Errorf("expected plain adapter, got %s", result.Adapter)
	}
	if result.Report.Score.Value != 10 || result.Report.Score.Band != model.BandLow {
		t.Errorf("expected 10/low, got %+v", result.Report.Score)
	}
	if result.Narrative != nil {
		t.Error("expected no narrative when LLM disabled")
	}
}

func TestScanSource_InvalidInput(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	m := metrics.New()
	p.WithMetrics(m)

	path := filepath.Join(t.TempDir(), "Empty.sol")
	if err := os.WriteFile(path, []byte("   /* empty */   "), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := p.ScanSource(context.Background(), path)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScanSource_MissingFile(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	if _, err := p.ScanSource(context.Background(), filepath.Join(t.TempDir(), "nope.sol")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestScanSource_URLUsesCache(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("function addBlacklist(address a) {} bool isBot;"))
	}))
	defer server.Close()

	p := newTestPipeline(t, testConfig(t))

	for i := 0; i < 2; i++ {
		result, err := p.ScanSource(context.Background(), server.URL+"/Token.sol")
		if err != nil {
			t.Fatalf("ScanSource failed: %v", err)
		}
		if result.Report.Score.Value != 20 {
			t.Errorf("expected score 20, got %d", result.Report.Score.Value)
		}
		if i == 1 && !result.Cached {
			t.Error("expected second scan served from cache")
		}
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected 1 request, got %d", hits)
	}
}

func TestScanText(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))

	result, err := p.ScanText(context.Background(), "inline", "contract A { function openTrading() external {} }")
	if err != nil {
		t.Fatalf("ScanText failed: %v", err)
	}
	if result.Source != "inline" || result.Report.Score.Value != 10 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestNewPipeline_InvalidCatalog(t *testing.T) {
	if _, err := NewPipeline(testConfig(t), &model.Catalog{}); err == nil {
		t.Fatal("expected error for invalid catalog")
	}
}

func TestRenderReport_WritesFiles(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	result, err := p.ScanText(context.Background(), "Token.sol", "selfdestruct(owner);")
	if err != nil {
		t.Fatalf("ScanText failed: %v", err)
	}

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")
	if err := p.RenderReport(result, jsonPath, mdPath, false); err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded ScanResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded.Report.Score.Value != 10 || decoded.Source != "Token.sol" {
		t.Errorf("unexpected decoded result: %+v", decoded)
	}
	for _, want := range []string{`"severity": "warning"`, `"color": "#ffc107"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected JSON to contain %s\n%s", want, data)
		}
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(md), "`selfdestruct`") {
		t.Errorf("markdown missing finding:\n%s", md)
	}
	if _, err := os.Stat(filepath.Join(dir, "report.llm.md")); !os.IsNotExist(err) {
		t.Error("expected no narrative file without LLM")
	}
}
