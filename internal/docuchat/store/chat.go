package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/model"
)

type sessions struct {
	db *gorm.DB
}

func newSessions(db *gorm.DB) *sessions {
	return &sessions{db}
}

// Create creates a new chat session.
func (s *sessions) Create(ctx context.Context, session *model.ChatSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

// Get retrieves a chat session by ID.
func (s *sessions) Get(ctx context.Context, id string) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// List lists a user's sessions for an agent, newest first.
func (s *sessions) List(ctx context.Context, userID, agentID string) ([]*model.ChatSession, error) {
	var list []*model.ChatSession
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND agent_id = ?", userID, agentID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Touch 更新会话的 updated_at。
func (s *sessions) Touch(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", time.Now().Unix()).Error
}

type messages struct {
	db *gorm.DB
}

func newMessages(db *gorm.DB) *messages {
	return &messages{db}
}

// Create creates a new chat message.
func (m *messages) Create(ctx context.Context, msg *model.ChatMessage) error {
	return m.db.WithContext(ctx).Create(msg).Error
}

// List lists all messages of a session in creation order.
func (m *messages) List(ctx context.Context, sessionID string) ([]*model.ChatMessage, error) {
	var list []*model.ChatMessage
	if err := m.db.WithContext(ctx).
		Where("chat_session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListRecent 返回会话最近的 limit 条消息，按创建顺序排列。
// 先倒序取 limit 条再翻转，保证取到的是最新的一段历史。
func (m *messages) ListRecent(ctx context.Context, sessionID string, limit int) ([]*model.ChatMessage, error) {
	var list []*model.ChatMessage
	if err := m.db.WithContext(ctx).
		Where("chat_session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}

	// 翻转为时间正序
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}
