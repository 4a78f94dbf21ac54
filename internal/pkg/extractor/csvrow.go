package extractor

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/kart-io/docuchat/pkg/utils/errors"
)

// CSV 行导出格式的约定列名（爬虫工具导出的扁平化字段路径）。
const (
	rowFieldMarkdown    = "markdown"
	rowFieldText        = "text"
	rowFieldURL         = "url"
	rowFieldLoadedURL   = "crawl/loadedUrl"
	rowFieldTitle       = "metadata/title"
	rowFieldDescription = "metadata/description"
)

// ParseRows 将 CSV 字节流解析为按表头取列的行映射。
// 列数不齐的行按实际列数取值，完全空的文件返回空切片。
func ParseRows(data []byte) ([]map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ErrDocInvalidCSV.WithCause(err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ErrDocInvalidCSV.WithCause(err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// FromRow 将一个导出行转换为提取结果。
// 正文优先取 markdown 列，缺省回退 text 列；两者皆空返回 nil（跳过该行）。
func FromRow(row map[string]string) *Content {
	text := strings.TrimSpace(row[rowFieldMarkdown])
	if text == "" {
		text = strings.TrimSpace(row[rowFieldText])
	}
	if text == "" {
		return nil
	}

	source := strings.TrimSpace(row[rowFieldURL])
	if source == "" {
		source = strings.TrimSpace(row[rowFieldLoadedURL])
	}

	return &Content{
		Text:        text,
		Title:       strings.TrimSpace(row[rowFieldTitle]),
		Description: strings.TrimSpace(row[rowFieldDescription]),
		Source:      source,
	}
}
