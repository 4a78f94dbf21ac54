package handler

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/docuchat/internal/docuchat/biz"
	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/internal/pkg/middleware"
	"github.com/kart-io/docuchat/pkg/utils/errors"
)

// 上传文件大小上限。
const maxUploadBytes = 32 << 20

// DocumentHandler handles document ingestion requests.
type DocumentHandler struct {
	ingest   *biz.IngestService
	projects *biz.ProjectService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(ingest *biz.IngestService, projects *biz.ProjectService) *DocumentHandler {
	return &DocumentHandler{ingest: ingest, projects: projects}
}

// UploadURLRequest is the request body for URL ingestion.
type UploadURLRequest struct {
	URL       string `json:"url" binding:"required"`
	ProjectID string `json:"project_id" binding:"required"`
}

// UploadURL registers a URL source document and schedules ingestion.
func (h *DocumentHandler) UploadURL(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResponse(c, errors.ErrDocInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	userID, tenantID := middleware.Principal(c)
	if _, err := h.projects.GetProject(c.Request.Context(), req.ProjectID, tenantID); err != nil {
		writeResponse(c, err, nil)
		return
	}

	doc, err := h.ingest.IngestURL(c.Request.Context(), req.ProjectID, req.URL, userID)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}

	logger.Infow("URL 文档已入队", "document_id", doc.ID, "url", req.URL)
	writeResponse(c, nil, doc)
}

// UploadFile registers an uploaded file and schedules ingestion.
func (h *DocumentHandler) UploadFile(c *gin.Context) {
	projectID := c.PostForm("project_id")
	if projectID == "" {
		writeResponse(c, errors.ErrDocInvalidRequest.WithMessage("project_id is required"), nil)
		return
	}

	userID, tenantID := middleware.Principal(c)
	if _, err := h.projects.GetProject(c.Request.Context(), projectID, tenantID); err != nil {
		writeResponse(c, err, nil)
		return
	}

	filename, mimeType, data, err := readUpload(c)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}

	doc, err := h.ingest.IngestFile(c.Request.Context(), projectID, filename, contentTypeOf(mimeType, filename), data, userID)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}

	logger.Infow("文件文档已入队", "document_id", doc.ID, "file", filename)
	writeResponse(c, nil, doc)
}

// UploadCSVData 将 CSV 的每个非空行注册为独立文档。
func (h *DocumentHandler) UploadCSVData(c *gin.Context) {
	projectID := c.PostForm("project_id")
	if projectID == "" {
		writeResponse(c, errors.ErrDocInvalidRequest.WithMessage("project_id is required"), nil)
		return
	}

	userID, tenantID := middleware.Principal(c)
	if _, err := h.projects.GetProject(c.Request.Context(), projectID, tenantID); err != nil {
		writeResponse(c, err, nil)
		return
	}

	filename, mimeType, data, err := readUpload(c)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	if contentTypeOf(mimeType, filename) != model.ContentTypeCSV {
		writeResponse(c, errors.ErrDocUnsupportedType.WithMessage("a CSV upload is required"), nil)
		return
	}

	docs, err := h.ingest.IngestCSVRows(c.Request.Context(), projectID, data, userID)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}

	logger.Infow("CSV 行已入队", "project_id", projectID, "documents", len(docs))
	writeResponse(c, nil, docs)
}

// Delete 软删除文档及其分块。
func (h *DocumentHandler) Delete(c *gin.Context) {
	_, tenantID := middleware.Principal(c)
	documentID := c.Param("document_id")

	if err := h.projects.DeleteDocument(c.Request.Context(), tenantID, documentID); err != nil {
		writeResponse(c, err, nil)
		return
	}

	logger.Infow("文档已删除", "document_id", documentID)
	writeResponse(c, nil, gin.H{"id": documentID})
}

// List lists the documents of a project.
func (h *DocumentHandler) List(c *gin.Context) {
	_, tenantID := middleware.Principal(c)

	docs, err := h.projects.ListDocuments(c.Request.Context(), tenantID, c.Param("project_id"))
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, docs)
}

// readUpload 读取 multipart 表单中的 file 字段，返回文件名、声明的 MIME 类型和内容。
func readUpload(c *gin.Context) (string, string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", "", nil, errors.ErrDocInvalidRequest.WithMessage("file is required")
	}
	if fh.Size > maxUploadBytes {
		return "", "", nil, errors.ErrDocInvalidRequest.WithMessage("file too large")
	}

	f, err := fh.Open()
	if err != nil {
		return "", "", nil, errors.ErrDocIngestFailed.WithCause(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", "", nil, errors.ErrDocIngestFailed.WithCause(err)
	}
	return fh.Filename, fh.Header.Get("Content-Type"), data, nil
}

// contentTypeOf 判定上传内容类型：优先按声明的 MIME 类型，回退到扩展名。
func contentTypeOf(mimeType, filename string) string {
	mt := mimeType
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	switch strings.ToLower(strings.TrimSpace(mt)) {
	case "application/pdf":
		return model.ContentTypePDF
	case "text/csv":
		return model.ContentTypeCSV
	case "text/markdown":
		return model.ContentTypeMarkdown
	case "text/plain":
		return model.ContentTypeText
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return model.ContentTypePDF
	case ".csv":
		return model.ContentTypeCSV
	case ".md", ".markdown":
		return model.ContentTypeMarkdown
	case ".txt":
		return model.ContentTypeText
	default:
		return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	}
}
