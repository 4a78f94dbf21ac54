package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/model"
)

type chunks struct {
	db *gorm.DB
}

func newChunks(db *gorm.DB) *chunks {
	return &chunks{db}
}

// CreateBatch persists a batch of chunks in one statement.
func (c *chunks) CreateBatch(ctx context.Context, batch []*model.DocumentChunk) error {
	if len(batch) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).CreateInBatches(batch, 100).Error
}

// ListByProject 返回项目下所有未删除文档的未删除分块。
// 加载顺序固定为 (document_id, chunk_index)，排序打分时同分保持此顺序。
func (c *chunks) ListByProject(ctx context.Context, projectID string) ([]*model.DocumentChunk, error) {
	var list []*model.DocumentChunk
	if err := c.db.WithContext(ctx).
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("documents.project_id = ? AND documents.deleted_at IS NULL", projectID).
		Order("document_chunks.document_id, document_chunks.chunk_index").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteByDocument soft-deletes all chunks of a document.
func (c *chunks) DeleteByDocument(ctx context.Context, documentID string) error {
	return c.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.DocumentChunk{}).Error
}
