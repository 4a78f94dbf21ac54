package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kart-io/docuchat/internal/docuchat/store"
	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/pkg/llm"
	"github.com/kart-io/docuchat/pkg/utils/errors"
)

// RetrievedChunk 表示一次检索的单个命中结果。
type RetrievedChunk struct {
	ID            string        `json:"chunk_id"`
	Content       string        `json:"content"`
	Score         float64       `json:"score"`
	DocumentID    string        `json:"document_id"`
	DocumentTitle string        `json:"document_title"`
	Source        string        `json:"source,omitempty"`
	Metadata      model.JSONMap `json:"metadata,omitempty"`
}

// Retriever 负责项目范围内的上下文检索。
// 检索契约是对项目全部分块的全量扫描打分，不做缓存。
type Retriever struct {
	factory       store.Factory
	embedProvider llm.EmbeddingProvider
	topK          int
}

// NewRetriever 创建检索器实例。
func NewRetriever(factory store.Factory, embedProvider llm.EmbeddingProvider, topK int) *Retriever {
	return &Retriever{
		factory:       factory,
		embedProvider: embedProvider,
		topK:          topK,
	}
}

// Retrieve 为查询返回项目内相似度最高的 topK 个分块。
// 空项目或无分块时返回空切片和 nil 错误。
func (r *Retriever) Retrieve(ctx context.Context, projectID, query string) ([]*RetrievedChunk, error) {
	queryEmbed, err := r.embedProvider.EmbedSingle(ctx, query)
	if err != nil {
		return nil, errors.ErrEmbeddingFailed.WithCause(err)
	}

	chunks, err := r.factory.Chunks().ListByProject(ctx, projectID)
	if err != nil {
		return nil, errors.ErrRetrievalFailed.WithCause(err)
	}
	if len(chunks) == 0 {
		return []*RetrievedChunk{}, nil
	}

	docs, err := r.factory.Documents().List(ctx, projectID)
	if err != nil {
		return nil, errors.ErrRetrievalFailed.WithCause(err)
	}
	titles := make(map[string]string, len(docs))
	for _, d := range docs {
		titles[d.ID] = d.Title
	}

	scored := RankChunks(queryEmbed, chunks)
	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}

	results := make([]*RetrievedChunk, len(scored))
	for i, sc := range scored {
		results[i] = &RetrievedChunk{
			ID:            sc.Chunk.ID,
			Content:       sc.Chunk.Content,
			Score:         sc.Score,
			DocumentID:    sc.Chunk.DocumentID,
			DocumentTitle: titles[sc.Chunk.DocumentID],
			Source:        sc.Chunk.Metadata.String("source"),
			Metadata:      sc.Chunk.Metadata,
		}
	}

	logger.Infow("检索完成", "project_id", projectID, "candidates", len(chunks), "returned", len(results))
	return results, nil
}
