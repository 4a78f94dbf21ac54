package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/pkg/component/sqlite"
	"github.com/kart-io/docuchat/pkg/utils/id"
)

func newTestFactory(t *testing.T) Factory {
	t.Helper()

	client, err := sqlite.New(":memory:")
	require.NoError(t, err)
	db := client.DB()

	// 内存库多连接会各自独立，强制单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	factory := NewFactory(db)
	require.NoError(t, factory.AutoMigrate())
	t.Cleanup(func() { _ = factory.Close() })

	return factory
}

func TestUserCreateAndGetByEmail(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	user := &model.User{
		ID:       id.New(),
		TenantID: id.New(),
		Email:    "alice@example.com",
		Password: "hashed",
	}
	require.NoError(t, factory.Users().Create(ctx, user))

	got, err := factory.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = factory.Users().GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDocumentStatusTransition(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	doc := &model.Document{
		ID:          id.New(),
		ProjectID:   id.New(),
		Title:       "notes",
		ContentType: model.ContentTypeText,
		Status:      model.DocStatusProcessing,
	}
	require.NoError(t, factory.Documents().Create(ctx, doc))

	require.NoError(t, factory.Documents().UpdateStatus(ctx, doc.ID, model.DocStatusCompleted))
	got, err := factory.Documents().Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocStatusCompleted, got.Status)

	require.NoError(t, factory.Documents().UpdateTitle(ctx, doc.ID, "renamed"))
	got, err = factory.Documents().Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
}

func TestChunkListByProject(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	projectID := id.New()
	otherProject := id.New()

	docA := &model.Document{ID: id.New(), ProjectID: projectID, ContentType: model.ContentTypeText, Status: model.DocStatusCompleted}
	docB := &model.Document{ID: id.New(), ProjectID: projectID, ContentType: model.ContentTypeText, Status: model.DocStatusCompleted}
	docOther := &model.Document{ID: id.New(), ProjectID: otherProject, ContentType: model.ContentTypeText, Status: model.DocStatusCompleted}
	for _, d := range []*model.Document{docA, docB, docOther} {
		require.NoError(t, factory.Documents().Create(ctx, d))
	}

	var batch []*model.DocumentChunk
	for docIdx, d := range []*model.Document{docA, docB, docOther} {
		for i := 0; i < 3; i++ {
			batch = append(batch, &model.DocumentChunk{
				ID:         id.New(),
				DocumentID: d.ID,
				ChunkIndex: i,
				Content:    fmt.Sprintf("doc %d chunk %d", docIdx, i),
				Embedding:  model.Vector{1, 0, 0},
			})
		}
	}
	require.NoError(t, factory.Chunks().CreateBatch(ctx, batch))

	// 只返回本项目文档的分块
	list, err := factory.Chunks().ListByProject(ctx, projectID)
	require.NoError(t, err)
	assert.Len(t, list, 6)
	for _, c := range list {
		assert.NotEqual(t, docOther.ID, c.DocumentID)
	}
}

func TestChunkListExcludesDeletedDocuments(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	projectID := id.New()
	doc := &model.Document{ID: id.New(), ProjectID: projectID, ContentType: model.ContentTypeText, Status: model.DocStatusCompleted}
	require.NoError(t, factory.Documents().Create(ctx, doc))
	require.NoError(t, factory.Chunks().CreateBatch(ctx, []*model.DocumentChunk{
		{ID: id.New(), DocumentID: doc.ID, ChunkIndex: 0, Content: "c0", Embedding: model.Vector{1}},
	}))

	list, err := factory.Chunks().ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// 软删除文档
	db := factoryDB(t, factory)
	require.NoError(t, db.Delete(&model.Document{}, "id = ?", doc.ID).Error)

	list, err = factory.Chunks().ListByProject(ctx, projectID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestChunkDeleteByDocumentIsSoft(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	projectID := id.New()
	docA := &model.Document{ID: id.New(), ProjectID: projectID, ContentType: model.ContentTypeText, Status: model.DocStatusCompleted}
	docB := &model.Document{ID: id.New(), ProjectID: projectID, ContentType: model.ContentTypeText, Status: model.DocStatusCompleted}
	for _, d := range []*model.Document{docA, docB} {
		require.NoError(t, factory.Documents().Create(ctx, d))
	}
	require.NoError(t, factory.Chunks().CreateBatch(ctx, []*model.DocumentChunk{
		{ID: id.New(), DocumentID: docA.ID, ChunkIndex: 0, Content: "a0", Embedding: model.Vector{1}},
		{ID: id.New(), DocumentID: docA.ID, ChunkIndex: 1, Content: "a1", Embedding: model.Vector{1}},
		{ID: id.New(), DocumentID: docB.ID, ChunkIndex: 0, Content: "b0", Embedding: model.Vector{1}},
	}))

	require.NoError(t, factory.Chunks().DeleteByDocument(ctx, docA.ID))

	// 文档本身未删除，分块也不再可见
	list, err := factory.Chunks().ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, docB.ID, list[0].DocumentID)

	// 软删除：行仍在，deleted_at 已置位
	var total int64
	db := factoryDB(t, factory)
	require.NoError(t, db.Unscoped().Model(&model.DocumentChunk{}).
		Where("document_id = ?", docA.ID).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestDocumentDeleteIsSoft(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	doc := &model.Document{ID: id.New(), ProjectID: id.New(), ContentType: model.ContentTypeText, Status: model.DocStatusCompleted}
	require.NoError(t, factory.Documents().Create(ctx, doc))
	require.NoError(t, factory.Documents().Delete(ctx, doc.ID))

	_, err := factory.Documents().Get(ctx, doc.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := factory.Documents().List(ctx, doc.ProjectID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMessageListRecent(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	sessionID := id.New()
	for i := 0; i < 15; i++ {
		require.NoError(t, factory.Messages().Create(ctx, &model.ChatMessage{
			ID:            id.New(),
			ChatSessionID: sessionID,
			Role:          model.RoleUser,
			Content:       fmt.Sprintf("msg %02d", i),
		}))
	}

	recent, err := factory.Messages().ListRecent(ctx, sessionID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)

	// 应为最新的 10 条，时间正序
	assert.Equal(t, "msg 05", recent[0].Content)
	assert.Equal(t, "msg 14", recent[9].Content)
}

func TestSessionTouch(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	session := &model.ChatSession{
		ID:      id.New(),
		UserID:  id.New(),
		AgentID: id.New(),
		Title:   model.DefaultSessionTitle,
	}
	require.NoError(t, factory.Sessions().Create(ctx, session))
	require.NoError(t, factory.Sessions().Touch(ctx, session.ID))

	got, err := factory.Sessions().Get(ctx, session.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.UpdatedAt, session.CreatedAt)
}

// factoryDB 取出底层 DB 句柄，仅供测试直接操作数据。
func factoryDB(t *testing.T, f Factory) *gorm.DB {
	t.Helper()
	ds, ok := f.(*datastore)
	require.True(t, ok)
	return ds.db
}
