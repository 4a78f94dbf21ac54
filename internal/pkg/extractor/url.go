package extractor

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kart-io/docuchat/pkg/utils/errors"
)

const userAgent = "Mozilla/5.0 (compatible; DocuChat/1.0)"

// FromURL 抓取网页并提取正文文本。
// 移除 script/style/header/footer/nav 后取 body 文本，标题取 <title>。
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (*Content, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, errors.ErrDocInvalidURL.WithMessagef("invalid url: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.ErrDocInvalidURL.WithCause(err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.DoRequest(req)
	if err != nil {
		return nil, errors.ErrDocFetchFailed.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.ErrDocFetchFailed.WithMessagef("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.ErrDocExtractFailed.WithCause(err)
	}

	// 去掉不承载正文的结构元素
	doc.Find("script, style, header, footer, nav").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := normalizeText(doc.Find("body").Text())

	return &Content{
		Text:   text,
		Title:  title,
		Source: rawURL,
	}, nil
}

// normalizeText 按行清理空白，丢弃空行。
func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
