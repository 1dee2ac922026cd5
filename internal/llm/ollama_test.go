package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func generateServer(t *testing.T, resp ollamaResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		if req.Options.NumPredict != 800 {
			t.Errorf("Expected default 800 max tokens, got %d", req.Options.NumPredict)
		}

		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOllamaProvider_Summarize_Success(t *testing.T) {
	server := generateServer(t, ollamaResponse{
		Model:           "llama3.1",
		Response:        "Ownership can be renounced via `renounceOwnership`.",
		Done:            true,
		PromptEvalCount: 10,
		EvalCount:       20,
	})
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5, Strict: true})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{
		Report:            sampleReport(),
		AllowedSignatures: []string{"renounceOwnership"},
	})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if len(resp.Cited) != 1 || resp.Cited[0] != "renounceOwnership" {
		t.Errorf("Unexpected citations: %v", resp.Cited)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
	if resp.Model != "llama3.1" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}
}

func TestOllamaProvider_Summarize_EstimatesTokens(t *testing.T) {
	server := generateServer(t, ollamaResponse{Model: "mistral", Response: "No signatures matched.", Done: true})
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Prompt: "abcdefgh"})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	want := (len("abcdefgh") + len("No signatures matched.")) / 4
	if resp.TokensUsed != want {
		t.Errorf("Expected estimated %d tokens, got %d", want, resp.TokensUsed)
	}
}

func TestOllamaProvider_Summarize_SignatureLeak(t *testing.T) {
	server := generateServer(t, ollamaResponse{Model: "llama3.1", Response: "See `_mint`.", Done: true})
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5, Strict: true})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{AllowedSignatures: []string{"selfdestruct"}})
	if err == nil || !strings.Contains(err.Error(), "SIGNATURE LEAK") {
		t.Fatalf("Expected signature leak error, got %v", err)
	}
}

func TestOllamaProvider_Summarize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Internal Server Error"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Internal Server Error") {
		t.Errorf("Expected error message to contain 'Internal Server Error', got %v", err)
	}
}

func TestOllamaProvider_Summarize_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Summarize(context.Background(), SummarizeRequest{}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOllamaProvider_Summarize_NoModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://localhost:11434"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{})
	if err == nil || !strings.Contains(err.Error(), "must be specified") {
		t.Fatalf("Expected error about missing model, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}
