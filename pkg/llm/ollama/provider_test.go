package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kart-io/docuchat/pkg/llm"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BaseURL != "http://localhost:11434" {
		t.Errorf("unexpected BaseURL: %s", cfg.BaseURL)
	}
	if cfg.EmbedModel != "nomic-embed-text" {
		t.Errorf("unexpected EmbedModel: %s", cfg.EmbedModel)
	}
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req embedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(req.Input))
		}

		resp := embedResponse{
			Model:      req.Model,
			Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:    server.URL,
		EmbedModel: "nomic-embed-text",
		Timeout:    5 * time.Second,
	})

	embeddings, err := p.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(embeddings))
	}
}

func TestEmbedEmpty(t *testing.T) {
	p := NewProviderWithConfig(DefaultConfig())

	embeddings, err := p.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if embeddings != nil {
		t.Errorf("expected nil for empty input, got %v", embeddings)
	}
}

func TestChatWithOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Options == nil {
			t.Fatal("expected options in request")
		}
		if temp, _ := req.Options["temperature"].(float64); temp != 0.7 {
			t.Errorf("expected temperature 0.7, got %v", req.Options["temperature"])
		}
		if np, _ := req.Options["num_predict"].(float64); np != 1000 {
			t.Errorf("expected num_predict 1000, got %v", req.Options["num_predict"])
		}

		resp := chatResponse{
			Model:           req.Model,
			Message:         chatMessage{Role: "assistant", Content: "pong"},
			Done:            true,
			PromptEvalCount: 3,
			EvalCount:       1,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:   server.URL,
		ChatModel: "llama3.1:8b",
		Timeout:   5 * time.Second,
	})

	resp, err := p.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "ping"}},
		&llm.GenerateOptions{Temperature: 0.7, MaxTokens: 1000},
	)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "pong" {
		t.Errorf("unexpected response: %s", resp.Content)
	}
	if resp.TokenUsage == nil || resp.TokenUsage.TotalTokens != 4 {
		t.Errorf("unexpected token usage: %+v", resp.TokenUsage)
	}
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.System != "be brief" {
			t.Errorf("unexpected system prompt: %s", req.System)
		}

		resp := generateResponse{
			Model:           req.Model,
			Response:        "short answer",
			Done:            true,
			PromptEvalCount: 4,
			EvalCount:       2,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:   server.URL,
		ChatModel: "llama3.1:8b",
		Timeout:   5 * time.Second,
	})

	resp, err := p.Generate(context.Background(), "question", "be brief")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "short answer" {
		t.Errorf("unexpected content: %s", resp.Content)
	}
	if resp.TokenUsage.TotalTokens != 6 {
		t.Errorf("unexpected total tokens: %d", resp.TokenUsage.TotalTokens)
	}
}

func TestChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model not found"}`))
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:   server.URL,
		ChatModel: "missing-model",
		Timeout:   5 * time.Second,
	})

	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}
