package model

import (
	"gorm.io/gorm"
)

// Agent is a chat persona bound to a project.
// 会话挂在 Agent 下，检索范围由 Agent 所属项目决定。
type Agent struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ProjectID      string         `json:"project_id" gorm:"type:varchar(64);not null;index:idx_agent_project"`
	Name           string         `json:"name" gorm:"size:128;not null"`
	Description    string         `json:"description,omitempty" gorm:"size:512"`
	PromptTemplate string         `json:"prompt_template" gorm:"type:text"`
	CreatedAt      int64          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      int64          `json:"updated_at" gorm:"autoUpdateTime"`
	CreatedBy      string         `json:"created_by,omitempty" gorm:"size:64"`
	UpdatedBy      string         `json:"updated_by,omitempty" gorm:"size:64"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (Agent) TableName() string {
	return "agents"
}
