package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docuchat/pkg/utils/errors"
)

func TestExtractUnsupportedType(t *testing.T) {
	e := New(nil)

	_, err := e.Extract(context.Background(), "application/zip", "a.zip", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDocUnsupportedType.Code))
}

func TestFromText(t *testing.T) {
	e := New(nil)

	c := e.FromText("notes.md", []byte("  # Title\n\nbody  \n"))
	assert.Equal(t, "# Title\n\nbody", c.Text)
	assert.Equal(t, "notes.md", c.Source)
}

func TestFromURL(t *testing.T) {
	page := `<html>
<head><title> Example Page </title><style>body{color:red}</style></head>
<body>
<nav>Home | About</nav>
<script>console.log("hi")</script>
<main>
<p>First paragraph.</p>
<p>Second paragraph.</p>
</main>
<footer>Copyright</footer>
</body>
</html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	e := New(nil)
	c, err := e.FromURL(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Example Page", c.Title)
	assert.Equal(t, srv.URL, c.Source)
	assert.Contains(t, c.Text, "First paragraph.")
	assert.Contains(t, c.Text, "Second paragraph.")
	// 结构元素应被移除
	assert.NotContains(t, c.Text, "console.log")
	assert.NotContains(t, c.Text, "Home | About")
	assert.NotContains(t, c.Text, "Copyright")
}

func TestFromURLInvalid(t *testing.T) {
	e := New(nil)

	_, err := e.FromURL(context.Background(), "ftp://example.com/file")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDocInvalidURL.Code))
}

func TestFromURLServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := New(nil)
	_, err := e.FromURL(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDocFetchFailed.Code))
}

func TestFromCSV(t *testing.T) {
	data := []byte("name,role\nalice,admin\nbob,viewer\n")

	e := New(nil)
	c, err := e.FromCSV(context.Background(), "users.csv", data)
	require.NoError(t, err)

	assert.Contains(t, c.Text, "alice")
	assert.Contains(t, c.Text, "bob")
	assert.Equal(t, "users.csv", c.Source)
}

func TestParseRows(t *testing.T) {
	data := []byte(`url,markdown,text,metadata/title,metadata/description
https://a.example,# Doc A,plain a,Doc A,First doc
https://b.example,,plain b,Doc B,
https://c.example,,,,
`)

	rows, err := ParseRows(data)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "# Doc A", rows[0]["markdown"])
	assert.Equal(t, "plain b", rows[1]["text"])
}

func TestParseRowsEmpty(t *testing.T) {
	rows, err := ParseRows(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFromRow(t *testing.T) {
	tests := []struct {
		name     string
		row      map[string]string
		wantNil  bool
		wantText string
		wantSrc  string
	}{
		{
			name: "优先 markdown 列",
			row: map[string]string{
				"markdown": "# Heading",
				"text":     "plain",
				"url":      "https://a.example",
			},
			wantText: "# Heading",
			wantSrc:  "https://a.example",
		},
		{
			name: "回退 text 列",
			row: map[string]string{
				"text":            "plain only",
				"crawl/loadedUrl": "https://b.example",
			},
			wantText: "plain only",
			wantSrc:  "https://b.example",
		},
		{
			name:    "空行跳过",
			row:     map[string]string{"url": "https://c.example"},
			wantNil: true,
		},
		{
			name:    "纯空白内容跳过",
			row:     map[string]string{"markdown": "   ", "text": "\t"},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := FromRow(tt.row)
			if tt.wantNil {
				assert.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			assert.Equal(t, tt.wantText, c.Text)
			assert.Equal(t, tt.wantSrc, c.Source)
		})
	}
}

func TestFromRowMetadata(t *testing.T) {
	c := FromRow(map[string]string{
		"markdown":             "content",
		"url":                  "https://a.example",
		"metadata/title":       "Page Title",
		"metadata/description": "Page description",
	})
	require.NotNil(t, c)
	assert.Equal(t, "Page Title", c.Title)
	assert.Equal(t, "Page description", c.Description)
}
