package biz

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docuchat/internal/docuchat/store"
	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/internal/pkg/extractor"
	"github.com/kart-io/docuchat/pkg/component/sqlite"
	"github.com/kart-io/docuchat/pkg/llm"
	"github.com/kart-io/docuchat/pkg/utils/id"
)

// fakeEmbedder 以字母频率作为向量，确定性且语义可预测：
// 共享词多的文本相似度更高。
type fakeEmbedder struct {
	failEmbed bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.failEmbed {
		return nil, fmt.Errorf("embedding backend down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = letterFreq(t)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if f.failEmbed {
		return nil, fmt.Errorf("embedding backend down")
	}
	return letterFreq(text), nil
}

func (f *fakeEmbedder) Name() string { return "fake-embed" }

func letterFreq(s string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

// fakeChat 回显固定回答，可配置为失败。
type fakeChat struct {
	fail  bool
	reply string
	// 记录最近一次收到的消息，供断言
	lastMessages []llm.Message
	lastOpts     *llm.GenerateOptions
}

func (f *fakeChat) Chat(ctx context.Context, messages []llm.Message, opts *llm.GenerateOptions) (*llm.GenerateResponse, error) {
	f.lastMessages = messages
	f.lastOpts = opts
	if f.fail {
		return nil, fmt.Errorf("model unavailable")
	}
	return &llm.GenerateResponse{Content: f.reply}, nil
}

func (f *fakeChat) Generate(ctx context.Context, prompt, systemPrompt string) (*llm.GenerateResponse, error) {
	if f.fail {
		return nil, fmt.Errorf("model unavailable")
	}
	return &llm.GenerateResponse{Content: f.reply}, nil
}

func (f *fakeChat) Name() string { return "fake-chat" }

func newTestFactory(t *testing.T) store.Factory {
	t.Helper()

	client, err := sqlite.New(":memory:")
	require.NoError(t, err)
	db := client.DB()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	factory := store.NewFactory(db)
	require.NoError(t, factory.AutoMigrate())
	t.Cleanup(func() { _ = factory.Close() })

	return factory
}

func seedProject(t *testing.T, factory store.Factory) (tenantID, projectID string) {
	t.Helper()
	ctx := context.Background()

	tenant := &model.Tenant{ID: id.New(), Name: "t", Slug: strings.ToLower(id.New()), LicenseType: model.LicenseTrial}
	require.NoError(t, factory.Tenants().Create(ctx, tenant))

	project := &model.Project{ID: id.New(), TenantID: tenant.ID, Name: "p"}
	require.NoError(t, factory.Projects().Create(ctx, project))

	return tenant.ID, project.ID
}

func seedChunks(t *testing.T, factory store.Factory, projectID string, contents []string) string {
	t.Helper()
	ctx := context.Background()

	doc := &model.Document{
		ID: id.New(), ProjectID: projectID, Title: "doc",
		ContentType: model.ContentTypeText, Status: model.DocStatusCompleted,
	}
	require.NoError(t, factory.Documents().Create(ctx, doc))

	chunks := make([]*model.DocumentChunk, len(contents))
	for i, c := range contents {
		chunks[i] = &model.DocumentChunk{
			ID: id.New(), DocumentID: doc.ID, ChunkIndex: i,
			Content: c, Embedding: letterFreq(c),
			Metadata: model.JSONMap{"source": "test", "chunk_index": i, "total_chunks": len(contents)},
		}
	}
	require.NoError(t, factory.Chunks().CreateBatch(ctx, chunks))
	return doc.ID
}

func TestRankChunksOrderAndStability(t *testing.T) {
	query := letterFreq("zebra zebra zebra")
	chunks := []*model.DocumentChunk{
		{ID: "a", Content: "apple pie", Embedding: letterFreq("apple pie")},
		{ID: "b", Content: "zebra crossing", Embedding: letterFreq("zebra crossing")},
		{ID: "c", Content: "apple pie", Embedding: letterFreq("apple pie")}, // 与 a 同分
	}

	scored := RankChunks(query, chunks)
	require.Len(t, scored, 3)
	assert.Equal(t, "b", scored[0].Chunk.ID)
	// 同分保持加载顺序
	assert.Equal(t, "a", scored[1].Chunk.ID)
	assert.Equal(t, "c", scored[2].Chunk.ID)
}

func TestRetrieveTopKAndScope(t *testing.T) {
	factory := newTestFactory(t)
	_, projectID := seedProject(t, factory)
	_, otherProject := seedProject(t, factory)

	var contents []string
	for i := 0; i < 8; i++ {
		contents = append(contents, fmt.Sprintf("filler text number %d", i))
	}
	seedChunks(t, factory, projectID, contents)
	seedChunks(t, factory, otherProject, []string{"other project data"})

	r := NewRetriever(factory, &fakeEmbedder{}, 5)
	results, err := r.Retrieve(context.Background(), projectID, "filler text")
	require.NoError(t, err)

	// 截断到 topK
	assert.Len(t, results, 5)
	for _, res := range results {
		assert.NotEqual(t, "other project data", res.Content)
		assert.Equal(t, "doc", res.DocumentTitle)
		assert.Equal(t, "test", res.Source)
	}
}

func TestDeleteDocumentRemovesFromRetrieval(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()
	tenantID, projectID := seedProject(t, factory)

	docID := seedChunks(t, factory, projectID, []string{"zebra crossing ahead", "more zebra facts"})
	keptID := seedChunks(t, factory, projectID, []string{"apple orchard notes"})

	svc := NewProjectService(factory)
	r := NewRetriever(factory, &fakeEmbedder{}, 5)

	// 跨租户删除被拒绝
	err := svc.DeleteDocument(ctx, id.New(), docID)
	require.Error(t, err)

	require.NoError(t, svc.DeleteDocument(ctx, tenantID, docID))

	// 文档列表与检索都不再包含已删除文档
	docs, err := svc.ListDocuments(ctx, tenantID, projectID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, keptID, docs[0].ID)

	results, err := r.Retrieve(ctx, projectID, "zebra")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "apple orchard notes", results[0].Content)
}

func TestRetrieveEmptyProject(t *testing.T) {
	factory := newTestFactory(t)
	_, projectID := seedProject(t, factory)

	r := NewRetriever(factory, &fakeEmbedder{}, 5)
	results, err := r.Retrieve(context.Background(), projectID, "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestSynthesizeFallbackOnProviderFailure(t *testing.T) {
	chat := &fakeChat{fail: true}
	s := NewSynthesizer(chat, &SynthesizerConfig{Temperature: 0.7, MaxTokens: 1000})

	answer := s.Synthesize(context.Background(), "question", nil, []*RetrievedChunk{
		{ID: "c1", Content: "context", DocumentTitle: "doc"},
	})

	assert.Equal(t, fallbackAnswer, answer.Content)
	assert.Empty(t, answer.Sources)
	assert.NotNil(t, answer.Sources)
}

func TestSynthesizeMessageLayout(t *testing.T) {
	chat := &fakeChat{reply: "the answer [1]"}
	s := NewSynthesizer(chat, &SynthesizerConfig{Temperature: 0.3, MaxTokens: 1000})

	history := []*model.ChatMessage{
		{Role: model.RoleUser, Content: "earlier question"},
		{Role: model.RoleAssistant, Content: "earlier answer"},
	}
	retrieved := []*RetrievedChunk{
		{ID: "c1", Content: "alpha content", Source: "https://a.example", DocumentTitle: "Doc A"},
		{ID: "c2", Content: "beta content", DocumentTitle: "Doc B"},
	}

	answer := s.Synthesize(context.Background(), "current question", history, retrieved)
	require.Equal(t, "the answer [1]", answer.Content)

	msgs := chat.lastMessages
	require.Len(t, msgs, 4)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "[1] Source: https://a.example\nalpha content")
	// 无 source 的块回退到文档标题
	assert.Contains(t, msgs[0].Content, "[2] Source: Doc B\nbeta content")
	assert.Equal(t, "earlier question", msgs[1].Content)
	assert.Equal(t, "earlier answer", msgs[2].Content)
	assert.Equal(t, "current question", msgs[3].Content)

	require.NotNil(t, chat.lastOpts)
	assert.InDelta(t, 0.3, chat.lastOpts.Temperature, 1e-9)
	assert.Equal(t, 1000, chat.lastOpts.MaxTokens)

	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "c1", answer.Sources[0].ChunkID)
}

func TestSynthesizeSourcePreviewTruncation(t *testing.T) {
	chat := &fakeChat{reply: "ok"}
	s := NewSynthesizer(chat, &SynthesizerConfig{MaxTokens: 1000})

	long := strings.Repeat("x", 450)
	answer := s.Synthesize(context.Background(), "q", nil, []*RetrievedChunk{
		{ID: "c1", Content: long},
	})

	require.Len(t, answer.Sources, 1)
	preview := answer.Sources[0].Content
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.Len(t, []rune(preview), sourcePreviewLen+3)
}

func TestIngestFileUnsupportedType(t *testing.T) {
	factory := newTestFactory(t)
	_, projectID := seedProject(t, factory)

	svc := NewIngestService(factory, extractor.New(nil), &fakeEmbedder{}, nil, &IngestConfig{ChunkSize: 500, ChunkOverlap: 50})
	_, err := svc.IngestFile(context.Background(), projectID, "a.zip", "zip", []byte("x"), "u1")
	require.Error(t, err)
}

func TestIngestCSVRowsSkipsEmpty(t *testing.T) {
	factory := newTestFactory(t)
	_, projectID := seedProject(t, factory)

	data := []byte(`url,markdown,text,metadata/title,metadata/description
https://a.example,content for row one,,Row One,first
https://b.example,,content for row two,Row Two,second
https://c.example,,,,
https://d.example,content for row four,,Row Four,fourth
`)

	svc := NewIngestService(factory, extractor.New(nil), &fakeEmbedder{}, nil, &IngestConfig{ChunkSize: 500, ChunkOverlap: 50})
	docs, err := svc.IngestCSVRows(context.Background(), projectID, data, "u1")
	require.NoError(t, err)

	// 第 3 行为空被跳过，其余 3 行各建一个文档
	require.Len(t, docs, 3)
	assert.Equal(t, "Row One", docs[0].Title)
	assert.Equal(t, model.DocStatusProcessing, docs[0].Status)
}

func TestCompletionEndToEnd(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()
	tenantID, projectID := seedProject(t, factory)

	agent := &model.Agent{ID: id.New(), ProjectID: projectID, Name: "assistant"}
	require.NoError(t, factory.Agents().Create(ctx, agent))

	user := &model.User{ID: id.New(), TenantID: tenantID, Email: "u@example.com", Password: "x"}
	require.NoError(t, factory.Users().Create(ctx, user))

	// 600 字符文本，C=500/O=50 应得到 2 块
	first := "the quick brown fox jumps over the lazy dog again and again until it tires. "
	text := first + strings.Repeat("unrelated padding words fill the rest of this document body here now. ", 8)
	text = text[:600]

	embedder := &fakeEmbedder{}
	ingest := NewIngestService(factory, extractor.New(nil), embedder, nil, &IngestConfig{ChunkSize: 500, ChunkOverlap: 50})
	doc, err := ingest.IngestFile(ctx, projectID, "body.txt", model.ContentTypeText, []byte(text), user.ID)
	require.NoError(t, err)

	// 等待后台任务完成
	require.Eventually(t, func() bool {
		got, err := factory.Documents().Get(ctx, doc.ID)
		return err == nil && got.Status == model.DocStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	chunks, err := factory.Chunks().ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Len(t, []float32(c.Embedding), 26)
	}

	chat := &fakeChat{reply: "grounded answer [1]"}
	retriever := NewRetriever(factory, embedder, 5)
	synthesizer := NewSynthesizer(chat, &SynthesizerConfig{Temperature: 0.7, MaxTokens: 1000})
	chatSvc := NewChatService(factory, retriever, synthesizer, &ChatConfig{MaxHistoryMessages: 10})

	session, err := chatSvc.CreateSession(ctx, user.ID, tenantID, agent.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSessionTitle, session.Title)

	result, err := chatSvc.Completion(ctx, user.ID, tenantID, session.ID, "quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	assert.Equal(t, "grounded answer [1]", result.Message.Content)
	assert.Equal(t, model.RoleAssistant, result.Message.Role)
	require.NotEmpty(t, result.Sources)

	// 查询与首句同词，首块应排第一
	assert.Contains(t, result.Sources[0].Content, "quick brown fox")

	// 助手消息已落库
	msgs, err := chatSvc.ListMessages(ctx, user.ID, session.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleAssistant, msgs[0].Role)
}

func TestCompletionAuthorization(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()
	tenantID, projectID := seedProject(t, factory)

	agent := &model.Agent{ID: id.New(), ProjectID: projectID, Name: "assistant"}
	require.NoError(t, factory.Agents().Create(ctx, agent))

	owner := id.New()
	session := &model.ChatSession{ID: id.New(), UserID: owner, AgentID: agent.ID, Title: "t"}
	require.NoError(t, factory.Sessions().Create(ctx, session))

	chatSvc := NewChatService(factory,
		NewRetriever(factory, &fakeEmbedder{}, 5),
		NewSynthesizer(&fakeChat{reply: "ok"}, &SynthesizerConfig{MaxTokens: 1000}),
		&ChatConfig{MaxHistoryMessages: 10})

	// 非属主
	_, err := chatSvc.Completion(ctx, id.New(), tenantID, session.ID, "hello")
	require.Error(t, err)

	// 会话不存在
	_, err = chatSvc.Completion(ctx, owner, tenantID, id.New(), "hello")
	require.Error(t, err)

	// 跨租户
	_, err = chatSvc.Completion(ctx, owner, id.New(), session.ID, "hello")
	require.Error(t, err)
}

func TestCompletionHistoryWindow(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()
	tenantID, projectID := seedProject(t, factory)

	agent := &model.Agent{ID: id.New(), ProjectID: projectID, Name: "assistant"}
	require.NoError(t, factory.Agents().Create(ctx, agent))

	userID := id.New()
	session := &model.ChatSession{ID: id.New(), UserID: userID, AgentID: agent.ID, Title: "t"}
	require.NoError(t, factory.Sessions().Create(ctx, session))

	for i := 0; i < 14; i++ {
		require.NoError(t, factory.Messages().Create(ctx, &model.ChatMessage{
			ID: id.New(), ChatSessionID: session.ID,
			Role: model.RoleUser, Content: fmt.Sprintf("history %02d", i),
		}))
	}

	chat := &fakeChat{reply: "ok"}
	chatSvc := NewChatService(factory,
		NewRetriever(factory, &fakeEmbedder{}, 5),
		NewSynthesizer(chat, &SynthesizerConfig{MaxTokens: 1000}),
		&ChatConfig{MaxHistoryMessages: 10})

	_, err := chatSvc.Completion(ctx, userID, tenantID, session.ID, "now")
	require.NoError(t, err)

	// system + 10 条历史 + 当前提问
	require.Len(t, chat.lastMessages, 12)
	assert.Equal(t, "history 04", chat.lastMessages[1].Content)
	assert.Equal(t, "history 13", chat.lastMessages[10].Content)
}
