package extractor

import (
	"bytes"
	"context"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"

	"github.com/kart-io/docuchat/pkg/utils/errors"
)

// FromPDF 解析 PDF 字节流，按页提取文本后拼接。
func (e *Extractor) FromPDF(ctx context.Context, source string, data []byte) (*Content, error) {
	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, errors.ErrDocExtractFailed.WithCause(err)
	}

	pages := make([]string, 0, len(docs))
	for _, d := range docs {
		if t := strings.TrimSpace(d.PageContent); t != "" {
			pages = append(pages, t)
		}
	}

	return &Content{
		Text:   strings.Join(pages, "\n\n"),
		Source: source,
	}, nil
}

// FromCSV 解析 CSV 字节流，每行渲染为 "列名: 值" 文本后拼接。
func (e *Extractor) FromCSV(ctx context.Context, source string, data []byte) (*Content, error) {
	loader := documentloaders.NewCSV(bytes.NewReader(data))
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, errors.ErrDocInvalidCSV.WithCause(err)
	}

	rows := make([]string, 0, len(docs))
	for _, d := range docs {
		if t := strings.TrimSpace(d.PageContent); t != "" {
			rows = append(rows, t)
		}
	}

	return &Content{
		Text:   strings.Join(rows, "\n\n"),
		Source: source,
	}, nil
}
