package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kart-io/docuchat/pkg/llm"
)

const testAPIKey = "test-key"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected BaseURL https://api.openai.com/v1, got %s", cfg.BaseURL)
	}
	if cfg.EmbedModel != "text-embedding-3-small" {
		t.Errorf("expected EmbedModel text-embedding-3-small, got %s", cfg.EmbedModel)
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("expected ChatModel gpt-4o-mini, got %s", cfg.ChatModel)
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("expected Timeout 120s, got %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected MaxRetries 3, got %d", cfg.MaxRetries)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name      string
		config    map[string]any
		wantError bool
	}{
		{
			name: "valid config",
			config: map[string]any{
				"api_key": testAPIKey,
			},
			wantError: false,
		},
		{
			name: "custom config",
			config: map[string]any{
				"api_key":      testAPIKey,
				"base_url":     "https://api.openai.com/v1",
				"embed_model":  "text-embedding-3-large",
				"chat_model":   "gpt-4o",
				"organization": "org-123",
			},
			wantError: false,
		},
		{
			name:      "missing api_key",
			config:    map[string]any{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if provider.Name() != ProviderName {
				t.Errorf("expected name %s, got %s", ProviderName, provider.Name())
			}
		})
	}
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer "+testAPIKey {
			t.Errorf("unexpected Authorization header: %s", auth)
		}

		resp := map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"object": "embedding", "embedding": []float32{0.3, 0.4}, "index": 1},
				{"object": "embedding", "embedding": []float32{0.1, 0.2}, "index": 0},
			},
			"model": "text-embedding-3-small",
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:    server.URL,
		APIKey:     testAPIKey,
		EmbedModel: "text-embedding-3-small",
		Timeout:    5 * time.Second,
	})

	embeddings, err := p.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(embeddings))
	}
	// 响应乱序返回时应按 index 重排
	if embeddings[0][0] != 0.1 || embeddings[1][0] != 0.3 {
		t.Errorf("embeddings not ordered by index: %v", embeddings)
	}
}

func TestChatWithOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)

		// 单次调用参数应覆盖配置
		if temp, _ := req["temperature"].(float64); temp != 0.9 {
			t.Errorf("expected temperature 0.9, got %v", req["temperature"])
		}
		if maxTokens, _ := req["max_tokens"].(float64); maxTokens != 500 {
			t.Errorf("expected max_tokens 500, got %v", req["max_tokens"])
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "hello there"}},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:     server.URL,
		APIKey:      testAPIKey,
		ChatModel:   "gpt-4o-mini",
		Timeout:     5 * time.Second,
		Temperature: 0.2,
		MaxTokens:   100,
	})

	resp, err := p.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		&llm.GenerateOptions{Temperature: 0.9, MaxTokens: 500},
	)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "hello there" {
		t.Errorf("unexpected response: %s", resp.Content)
	}
	if resp.TokenUsage == nil || resp.TokenUsage.TotalTokens != 15 {
		t.Errorf("unexpected token usage: %+v", resp.TokenUsage)
	}
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "generated"}},
			},
			"usage": map[string]int{"prompt_tokens": 8, "completion_tokens": 2, "total_tokens": 10},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:   server.URL,
		APIKey:    testAPIKey,
		ChatModel: "gpt-4o-mini",
		Timeout:   5 * time.Second,
	})

	resp, err := p.Generate(context.Background(), "prompt", "system prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "generated" {
		t.Errorf("unexpected content: %s", resp.Content)
	}
	if resp.TokenUsage == nil || resp.TokenUsage.TotalTokens != 10 {
		t.Errorf("unexpected token usage: %+v", resp.TokenUsage)
	}
}

func TestChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad request"}}`))
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:   server.URL,
		APIKey:    testAPIKey,
		ChatModel: "gpt-4o-mini",
		Timeout:   5 * time.Second,
	})

	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
}
