package model

import (
	"gorm.io/gorm"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSessionTitle is assigned when a session is created without one.
const DefaultSessionTitle = "New chat"

// ChatSession is a conversation between a user and an agent.
type ChatSession struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID    string         `json:"user_id" gorm:"type:varchar(64);not null;index:idx_session_user"`
	AgentID   string         `json:"agent_id" gorm:"type:varchar(64);not null;index:idx_session_agent"`
	Title     string         `json:"title" gorm:"size:255"`
	CreatedAt int64          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt int64          `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage is a single turn in a session transcript.
// Sources 仅助手消息携带，记录支撑回答的片段引用。
type ChatMessage struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ChatSessionID string    `json:"chat_session_id" gorm:"type:varchar(64);not null;index:idx_message_session"`
	Role          string    `json:"role" gorm:"size:16;not null"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	Sources       JSONArray `json:"sources,omitempty" gorm:"type:text"`
	CreatedAt     int64     `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (ChatMessage) TableName() string {
	return "chat_messages"
}
