package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/internal/pkg/textutil"
	"github.com/kart-io/docuchat/pkg/llm"
)

// 提供方失败时返回的固定降级回答。
const fallbackAnswer = "I apologize, but I encountered an error while generating a response. Please try again."

// 系统指令：仅依据上下文作答，信息不足时明确说明。
const systemInstruction = `You are a helpful assistant that answers questions based on the provided context.
Use ONLY the information in the context below to answer. If the context does not contain enough information to answer the question, say so instead of guessing.
Keep answers concise. Cite the context entries you used as [1], [2], ... in the order they are listed.

Context:
%s`

// 回答来源的内容预览上限（Unicode 字符数）。
const sourcePreviewLen = 200

// Source 是支撑一次回答的分块引用。
type Source struct {
	ChunkID       string        `json:"chunk_id"`
	Content       string        `json:"content"`
	DocumentTitle string        `json:"document_title"`
	Metadata      model.JSONMap `json:"metadata,omitempty"`
}

// Answer 是一次答案合成的结果。
type Answer struct {
	Content    string          `json:"content"`
	Sources    []Source        `json:"sources"`
	TokenUsage *llm.TokenUsage `json:"token_usage,omitempty"`
}

// SynthesizerConfig 合成器配置。
type SynthesizerConfig struct {
	// Temperature 生成温度。
	Temperature float64
	// MaxTokens 单次回答的 token 上限。
	MaxTokens int
}

// Synthesizer 负责将检索上下文与会话历史合成为有依据的回答。
type Synthesizer struct {
	chatProvider llm.ChatProvider
	config       *SynthesizerConfig
}

// NewSynthesizer 创建合成器实例。
func NewSynthesizer(chatProvider llm.ChatProvider, config *SynthesizerConfig) *Synthesizer {
	return &Synthesizer{
		chatProvider: chatProvider,
		config:       config,
	}
}

// Synthesize 生成回答。提供方任何失败都降级为固定回答加空来源，不返回错误。
func (s *Synthesizer) Synthesize(ctx context.Context, query string, history []*model.ChatMessage, retrieved []*RetrievedChunk) *Answer {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: fmt.Sprintf(systemInstruction, buildContext(retrieved)),
	})
	for _, h := range history {
		messages = append(messages, llm.Message{Role: llm.Role(h.Role), Content: h.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: query})

	resp, err := s.chatProvider.Chat(ctx, messages, &llm.GenerateOptions{
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		logger.Errorw("答案生成失败，返回降级回答", "provider", s.chatProvider.Name(), "error", err.Error())
		return &Answer{Content: fallbackAnswer, Sources: []Source{}}
	}

	return &Answer{
		Content:    resp.Content,
		Sources:    buildSources(retrieved),
		TokenUsage: resp.TokenUsage,
	}
}

// buildContext 将检索结果渲染为编号的上下文块。
func buildContext(retrieved []*RetrievedChunk) string {
	if len(retrieved) == 0 {
		return "(no relevant context found)"
	}

	var b strings.Builder
	for i, rc := range retrieved {
		src := rc.Source
		if src == "" {
			src = rc.DocumentTitle
		}
		fmt.Fprintf(&b, "[%d] Source: %s\n%s\n\n", i+1, src, rc.Content)
	}
	return b.String()
}

// buildSources 将检索结果转换为回答引用，正文截断为预览。
func buildSources(retrieved []*RetrievedChunk) []Source {
	sources := make([]Source, len(retrieved))
	for i, rc := range retrieved {
		preview := rc.Content
		if len([]rune(preview)) > sourcePreviewLen {
			preview = textutil.TruncateString(preview, sourcePreviewLen) + "..."
		}
		sources[i] = Source{
			ChunkID:       rc.ID,
			Content:       preview,
			DocumentTitle: rc.DocumentTitle,
			Metadata:      rc.Metadata,
		}
	}
	return sources
}
