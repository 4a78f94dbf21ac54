// Package store 提供 docuchat 服务的存储层。
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/model"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Users() UserStore
	Tenants() TenantStore
	Projects() ProjectStore
	Agents() AgentStore
	Documents() DocumentStore
	Chunks() ChunkStore
	Sessions() SessionStore
	Messages() MessageStore
	AutoMigrate() error
	Close() error
}

// UserStore defines the user storage interface.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// TenantStore defines the tenant storage interface.
type TenantStore interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	Get(ctx context.Context, id string) (*model.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)
}

// ProjectStore defines the project storage interface.
type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	Get(ctx context.Context, id, tenantID string) (*model.Project, error)
	List(ctx context.Context, tenantID string) ([]*model.Project, error)
}

// AgentStore defines the agent storage interface.
type AgentStore interface {
	Create(ctx context.Context, agent *model.Agent) error
	Get(ctx context.Context, id string) (*model.Agent, error)
	List(ctx context.Context, projectID string) ([]*model.Agent, error)
}

// DocumentStore defines the document storage interface.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, id string) (*model.Document, error)
	List(ctx context.Context, projectID string) ([]*model.Document, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateTitle(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
}

// ChunkStore defines the document chunk storage interface.
type ChunkStore interface {
	CreateBatch(ctx context.Context, chunks []*model.DocumentChunk) error
	// ListByProject 返回项目下所有未删除文档的未删除分块。
	ListByProject(ctx context.Context, projectID string) ([]*model.DocumentChunk, error)
	// DeleteByDocument 软删除文档的全部分块。
	DeleteByDocument(ctx context.Context, documentID string) error
}

// SessionStore defines the chat session storage interface.
type SessionStore interface {
	Create(ctx context.Context, session *model.ChatSession) error
	Get(ctx context.Context, id string) (*model.ChatSession, error)
	List(ctx context.Context, userID, agentID string) ([]*model.ChatSession, error)
	// Touch 更新会话的 updated_at。
	Touch(ctx context.Context, id string) error
}

// MessageStore defines the chat message storage interface.
type MessageStore interface {
	Create(ctx context.Context, msg *model.ChatMessage) error
	List(ctx context.Context, sessionID string) ([]*model.ChatMessage, error)
	// ListRecent 返回会话最近的 limit 条消息，按创建顺序排列。
	ListRecent(ctx context.Context, sessionID string, limit int) ([]*model.ChatMessage, error)
}

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

// NewFactory creates a storage factory backed by the given DB handle.
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Users returns the user store.
func (ds *datastore) Users() UserStore {
	return newUsers(ds.db)
}

// Tenants returns the tenant store.
func (ds *datastore) Tenants() TenantStore {
	return newTenants(ds.db)
}

// Projects returns the project store.
func (ds *datastore) Projects() ProjectStore {
	return newProjects(ds.db)
}

// Agents returns the agent store.
func (ds *datastore) Agents() AgentStore {
	return newAgents(ds.db)
}

// Documents returns the document store.
func (ds *datastore) Documents() DocumentStore {
	return newDocuments(ds.db)
}

// Chunks returns the document chunk store.
func (ds *datastore) Chunks() ChunkStore {
	return newChunks(ds.db)
}

// Sessions returns the chat session store.
func (ds *datastore) Sessions() SessionStore {
	return newSessions(ds.db)
}

// Messages returns the chat message store.
func (ds *datastore) Messages() MessageStore {
	return newMessages(ds.db)
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Project{},
		&model.ProjectUser{},
		&model.Agent{},
		&model.Document{},
		&model.DocumentChunk{},
		&model.ChatSession{},
		&model.ChatMessage{},
	)
}

// Close closes the factory and underlying connections.
func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
