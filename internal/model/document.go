package model

import (
	"gorm.io/gorm"
)

// Document processing statuses. A document enters the system as processing
// and transitions exactly once to completed or failed.
const (
	DocStatusProcessing = "processing"
	DocStatusCompleted  = "completed"
	DocStatusFailed     = "failed"
)

// Document content types accepted by the ingestion pipeline.
const (
	ContentTypeURL      = "url"
	ContentTypePDF      = "pdf"
	ContentTypeCSV      = "csv"
	ContentTypeText     = "text"
	ContentTypeMarkdown = "markdown"
)

// Document represents a knowledge source registered under a project.
// 状态机: processing -> completed | failed，摄取流水线异步推进。
type Document struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ProjectID   string         `json:"project_id" gorm:"type:varchar(64);not null;index:idx_document_project"`
	Title       string         `json:"title" gorm:"size:255"`
	Description string         `json:"description,omitempty" gorm:"size:512"`
	SourceURL   string         `json:"source_url,omitempty" gorm:"size:1024"`
	FilePath    string         `json:"file_path,omitempty" gorm:"size:1024"`
	ContentType string         `json:"content_type" gorm:"size:32;not null"`
	Status      string         `json:"status" gorm:"size:32;not null;default:'processing';index:idx_document_status"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime"`
	CreatedBy   string         `json:"created_by,omitempty" gorm:"size:64"`
	UpdatedBy   string         `json:"updated_by,omitempty" gorm:"size:64"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (Document) TableName() string {
	return "documents"
}

// DocumentChunk is one embedded slice of a document's extracted text.
// Embedding 以 JSON 存储，检索时全量扫描按余弦相似度排序。
type DocumentChunk struct {
	ID         string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	DocumentID string         `json:"document_id" gorm:"type:varchar(64);not null;index:idx_chunk_document"`
	ChunkIndex int            `json:"chunk_index" gorm:"not null"`
	Content    string         `json:"content" gorm:"type:text;not null"`
	Embedding  Vector         `json:"-" gorm:"type:text"`
	Metadata   JSONMap        `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt  int64          `json:"created_at" gorm:"autoCreateTime"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (DocumentChunk) TableName() string {
	return "document_chunks"
}
