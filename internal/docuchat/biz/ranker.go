// Package biz 实现 docuchat 的核心业务逻辑：
// 文档摄取、上下文检索、答案合成与会话编排。
package biz

import (
	"sort"

	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/internal/pkg/textutil"
)

// ScoredChunk 携带相似度得分的分块。
type ScoredChunk struct {
	Chunk *model.DocumentChunk
	Score float64
}

// RankChunks 按与查询向量的余弦相似度降序排列分块。
// 同分分块保持加载顺序（稳定排序）。
func RankChunks(query []float32, chunks []*model.DocumentChunk) []ScoredChunk {
	scored := make([]ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = ScoredChunk{
			Chunk: c,
			Score: textutil.CosineSimilarity(query, c.Embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
