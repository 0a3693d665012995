package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/civicmesh/claimforge/internal/model"
)

func TestAnthropicProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected x-api-key test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("expected anthropic-version %s, got %s", anthropicVersion, r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "claude-3-5-haiku-20241022" {
			t.Errorf("unexpected model %s", req.Model)
		}

		resp := anthropicResponse{ID: "msg_1", Type: "message", Role: "assistant", Model: req.Model}
		resp.Content = []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{{Type: "text", Text: `{"claims":[]}`}}
		resp.Usage.InputTokens = 12
		resp.Usage.OutputTokens = 5
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(model.ProviderConfig{
		Name:    "anthropic",
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	resp, err := p.Complete(context.Background(), CompletionRequest{
		Model:   "claude-3-5-haiku-20241022",
		Prompt:  "extract",
		AsJSON:  true,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != `{"claims":[]}` {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.TokensUsed != 17 {
		t.Errorf("TokensUsed = %d, want 17", resp.TokensUsed)
	}
}

func TestAnthropicProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"overloaded"}}`))
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(model.ProviderConfig{Name: "anthropic", APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}

	_, err = p.Complete(context.Background(), CompletionRequest{Model: "m", Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "overloaded") {
		t.Errorf("expected API error with message, got %v", err)
	}
}

func TestAnthropicProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewAnthropicProvider(model.ProviderConfig{Name: "anthropic"}); err == nil {
		t.Error("expected error for missing API key")
	}
}
