// Package extractor 将各种来源（网页、PDF、CSV、纯文本）的文档内容
// 提取为统一的纯文本结果，供摄取流水线分块和向量化。
package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/pkg/utils/errors"
	"github.com/kart-io/docuchat/pkg/utils/httpclient"
)

// Content is the normalized result of a single extraction.
type Content struct {
	// Text 提取出的纯文本正文。
	Text string
	// Title 来源自带的标题，可能为空。
	Title string
	// Description 来源自带的描述，可能为空。
	Description string
	// Source 内容的来源标识（URL 或文件名）。
	Source string
}

// Extractor dispatches extraction by content type.
type Extractor struct {
	client *httpclient.Client
}

// New creates an Extractor. A nil client gets a default one for URL fetches.
func New(client *httpclient.Client) *Extractor {
	if client == nil {
		client = httpclient.NewClient(30*time.Second, 3)
	}
	return &Extractor{client: client}
}

// Extract 按内容类型分发提取。URL 类型从 source 抓取网页，
// 其余类型从 data 解析；未知类型返回 ErrDocUnsupportedType。
func (e *Extractor) Extract(ctx context.Context, contentType, source string, data []byte) (*Content, error) {
	switch contentType {
	case model.ContentTypeURL:
		return e.FromURL(ctx, source)
	case model.ContentTypePDF:
		return e.FromPDF(ctx, source, data)
	case model.ContentTypeCSV:
		return e.FromCSV(ctx, source, data)
	case model.ContentTypeText, model.ContentTypeMarkdown:
		return e.FromText(source, data), nil
	default:
		return nil, errors.ErrDocUnsupportedType.WithMessagef("unsupported content type: %q", contentType)
	}
}

// FromText wraps raw text or markdown bytes without transformation.
func (e *Extractor) FromText(source string, data []byte) *Content {
	return &Content{
		Text:   strings.TrimSpace(string(data)),
		Source: source,
	}
}
