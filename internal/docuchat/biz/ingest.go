package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/docuchat/internal/docuchat/store"
	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/internal/pkg/extractor"
	"github.com/kart-io/docuchat/internal/pkg/textutil"
	"github.com/kart-io/docuchat/pkg/infra/pool"
	"github.com/kart-io/docuchat/pkg/llm"
	"github.com/kart-io/docuchat/pkg/utils/errors"
	"github.com/kart-io/docuchat/pkg/utils/id"
)

// 后台摄取任务的总超时，防止慢源拖死池内 worker。
const ingestTimeout = 10 * time.Minute

// IngestConfig 摄取流水线配置。
type IngestConfig struct {
	// ChunkSize 分块大小（Unicode 字符数）。
	ChunkSize int
	// ChunkOverlap 相邻分块的重叠大小。
	ChunkOverlap int
}

// IngestService 实现文档摄取流水线：
// 建档（processing）即刻返回，后台任务提取、分块、向量化、落库。
type IngestService struct {
	factory       store.Factory
	extractor     *extractor.Extractor
	embedProvider llm.EmbeddingProvider
	pools         *pool.Manager
	config        *IngestConfig
}

// NewIngestService 创建摄取服务实例。pools 为 nil 时任务在受监督的 goroutine 中执行。
func NewIngestService(
	factory store.Factory,
	ext *extractor.Extractor,
	embedProvider llm.EmbeddingProvider,
	pools *pool.Manager,
	config *IngestConfig,
) *IngestService {
	return &IngestService{
		factory:       factory,
		extractor:     ext,
		embedProvider: embedProvider,
		pools:         pools,
		config:        config,
	}
}

// IngestURL 注册 URL 来源文档并调度后台摄取。
func (s *IngestService) IngestURL(ctx context.Context, projectID, rawURL, userID string) (*model.Document, error) {
	doc := &model.Document{
		ID:          id.New(),
		ProjectID:   projectID,
		Title:       rawURL,
		SourceURL:   rawURL,
		ContentType: model.ContentTypeURL,
		Status:      model.DocStatusProcessing,
		CreatedBy:   userID,
	}
	if err := s.factory.Documents().Create(ctx, doc); err != nil {
		return nil, errors.ErrDocIngestFailed.WithCause(err)
	}

	s.schedule(doc, rawURL, nil, nil)
	return doc, nil
}

// IngestFile 注册文件来源文档并调度后台摄取。
// contentType 必须是 pdf/csv/text/markdown 之一，非法类型同步报错。
func (s *IngestService) IngestFile(ctx context.Context, projectID, filename, contentType string, data []byte, userID string) (*model.Document, error) {
	switch contentType {
	case model.ContentTypePDF, model.ContentTypeCSV, model.ContentTypeText, model.ContentTypeMarkdown:
	default:
		return nil, errors.ErrDocUnsupportedType.WithMessagef("unsupported content type: %q", contentType)
	}

	doc := &model.Document{
		ID:          id.New(),
		ProjectID:   projectID,
		Title:       filename,
		FilePath:    filename,
		ContentType: contentType,
		Status:      model.DocStatusProcessing,
		CreatedBy:   userID,
	}
	if err := s.factory.Documents().Create(ctx, doc); err != nil {
		return nil, errors.ErrDocIngestFailed.WithCause(err)
	}

	s.schedule(doc, filename, data, nil)
	return doc, nil
}

// IngestCSVRows 将导出 CSV 的每个非空行注册为独立文档并分别调度摄取。
// 内容为空的行单独跳过，不影响其他行。
func (s *IngestService) IngestCSVRows(ctx context.Context, projectID string, data []byte, userID string) ([]*model.Document, error) {
	rows, err := extractor.ParseRows(data)
	if err != nil {
		return nil, err
	}

	var docs []*model.Document
	for i, row := range rows {
		content := extractor.FromRow(row)
		if content == nil {
			logger.Infow("跳过空行", "project_id", projectID, "row", i)
			continue
		}

		title := content.Title
		if title == "" {
			title = content.Source
		}
		doc := &model.Document{
			ID:          id.New(),
			ProjectID:   projectID,
			Title:       title,
			Description: content.Description,
			SourceURL:   content.Source,
			ContentType: model.ContentTypeMarkdown,
			Status:      model.DocStatusProcessing,
			CreatedBy:   userID,
		}
		if err := s.factory.Documents().Create(ctx, doc); err != nil {
			return nil, errors.ErrDocIngestFailed.WithCause(err)
		}

		rowIdx := i
		s.schedule(doc, content.Source, nil, &rowJob{content: content, index: rowIdx})
		docs = append(docs, doc)
	}

	return docs, nil
}

// rowJob 是 CSV 行摄取的预提取内容。
type rowJob struct {
	content *extractor.Content
	index   int
}

// schedule 将摄取任务提交到摄取池；池不可用时降级为受监督的 goroutine。
func (s *IngestService) schedule(doc *model.Document, source string, data []byte, row *rowJob) {
	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		s.process(ctx, doc, source, data, row)
	}

	if s.pools != nil {
		if p, err := s.pools.GetByType(pool.IngestPool); err == nil {
			if err := p.Submit(task); err == nil {
				return
			}
			logger.Warnw("摄取池提交失败，降级为 goroutine", "document_id", doc.ID, "error", err.Error())
		}
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("摄取任务 panic", "document_id", doc.ID, "panic", r)
				s.markFailed(doc.ID)
			}
		}()
		task()
	}()
}

// process 执行摄取流水线。失败只记录日志并置 failed，绝不向调用方传播。
func (s *IngestService) process(ctx context.Context, doc *model.Document, source string, data []byte, row *rowJob) {
	var content *extractor.Content
	var err error

	if row != nil {
		content = row.content
	} else {
		content, err = s.extractor.Extract(ctx, doc.ContentType, source, data)
		if err != nil {
			logger.Errorw("内容提取失败", "document_id", doc.ID, "error", err.Error())
			s.markFailed(doc.ID)
			return
		}
	}

	if content.Text == "" {
		logger.Warnw("提取内容为空", "document_id", doc.ID, "source", source)
		s.markFailed(doc.ID)
		return
	}

	// 来源给出了更好的标题时延迟更新
	if content.Title != "" && content.Title != doc.Title {
		if err := s.factory.Documents().UpdateTitle(ctx, doc.ID, content.Title); err != nil {
			logger.Warnw("更新文档标题失败", "document_id", doc.ID, "error", err.Error())
		}
	}

	pieces := textutil.SplitIntoChunks(content.Text, s.config.ChunkSize, s.config.ChunkOverlap)
	if len(pieces) == 0 {
		s.markFailed(doc.ID)
		return
	}

	embeddings, err := s.embedProvider.Embed(ctx, pieces)
	if err != nil || len(embeddings) != len(pieces) {
		logger.Errorw("向量生成失败", "document_id", doc.ID, "chunks", len(pieces), "error", errString(err))
		s.markFailed(doc.ID)
		return
	}

	chunks := make([]*model.DocumentChunk, len(pieces))
	for i, piece := range pieces {
		meta := model.JSONMap{
			"source":       source,
			"chunk_index":  i,
			"total_chunks": len(pieces),
		}
		if row != nil {
			meta["original_row"] = row.index
			if content.Title != "" {
				meta["title"] = content.Title
			}
			if content.Description != "" {
				meta["description"] = content.Description
			}
		}
		chunks[i] = &model.DocumentChunk{
			ID:         id.New(),
			DocumentID: doc.ID,
			ChunkIndex: i,
			Content:    piece,
			Embedding:  embeddings[i],
			Metadata:   meta,
		}
	}

	if err := s.factory.Chunks().CreateBatch(ctx, chunks); err != nil {
		logger.Errorw("分块落库失败", "document_id", doc.ID, "error", err.Error())
		s.markFailed(doc.ID)
		return
	}

	if err := s.factory.Documents().UpdateStatus(ctx, doc.ID, model.DocStatusCompleted); err != nil {
		logger.Errorw("更新文档状态失败", "document_id", doc.ID, "error", err.Error())
		return
	}

	logger.Infow("文档摄取完成", "document_id", doc.ID, "chunks", len(chunks))
}

func (s *IngestService) markFailed(docID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.factory.Documents().UpdateStatus(ctx, docID, model.DocStatusFailed); err != nil {
		logger.Errorw("标记文档失败状态出错", "document_id", docID, "error", err.Error())
	}
}

func errString(err error) string {
	if err == nil {
		return "embedding count mismatch"
	}
	return err.Error()
}
