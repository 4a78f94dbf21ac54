package llm

import (
	"context"
	"testing"
)

// mockProvider 模拟供应商实现，用于测试。
type mockProvider struct {
	name string
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{0.1, 0.2, 0.3}
	}
	return result, nil
}

func (m *mockProvider) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockProvider) Chat(_ context.Context, _ []Message, _ *GenerateOptions) (*GenerateResponse, error) {
	return &GenerateResponse{Content: "mock response"}, nil
}

func (m *mockProvider) Generate(_ context.Context, _ string, _ string) (*GenerateResponse, error) {
	return &GenerateResponse{Content: "mock generated text"}, nil
}

func TestRegisterAndNewProvider(t *testing.T) {
	// 注册测试供应商
	RegisterProvider("test-provider", func(config map[string]any) (Provider, error) {
		name := "test-provider"
		if n, ok := config["name"].(string); ok {
			name = n
		}
		return &mockProvider{name: name}, nil
	})

	// 测试创建供应商
	provider, err := NewProvider("test-provider", map[string]any{"name": "custom-name"})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	if provider.Name() != "custom-name" {
		t.Errorf("expected name 'custom-name', got '%s'", provider.Name())
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider("unknown-provider", nil)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewEmbeddingProviderFallback(t *testing.T) {
	RegisterProvider("fallback-provider", func(_ map[string]any) (Provider, error) {
		return &mockProvider{name: "fallback-provider"}, nil
	})

	// 没有专用 Embedding 工厂时应回退到完整供应商工厂
	provider, err := NewEmbeddingProvider("fallback-provider", nil)
	if err != nil {
		t.Fatalf("NewEmbeddingProvider failed: %v", err)
	}

	vec, err := provider.EmbedSingle(context.Background(), "hello")
	if err != nil {
		t.Fatalf("EmbedSingle failed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(vec))
	}
}

func TestNewChatProviderFallback(t *testing.T) {
	RegisterProvider("chat-fallback", func(_ map[string]any) (Provider, error) {
		return &mockProvider{name: "chat-fallback"}, nil
	})

	provider, err := NewChatProvider("chat-fallback", nil)
	if err != nil {
		t.Fatalf("NewChatProvider failed: %v", err)
	}

	resp, err := provider.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "mock response" {
		t.Errorf("unexpected response: %s", resp.Content)
	}
}

func TestListProviders(t *testing.T) {
	RegisterProvider("list-me", func(_ map[string]any) (Provider, error) {
		return &mockProvider{name: "list-me"}, nil
	})

	names := ListProviders()
	found := false
	for _, n := range names {
		if n == "list-me" {
			found = true
			break
		}
	}
	if !found {
		t.Error("registered provider missing from ListProviders")
	}
}
