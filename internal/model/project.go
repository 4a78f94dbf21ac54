package model

import (
	"gorm.io/gorm"
)

// Project groups documents and agents inside a tenant.
type Project struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	TenantID    string         `json:"tenant_id" gorm:"type:varchar(64);not null;index:idx_project_tenant"`
	Name        string         `json:"name" gorm:"size:128;not null"`
	Description string         `json:"description,omitempty" gorm:"size:512"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime"`
	CreatedBy   string         `json:"created_by,omitempty" gorm:"size:64"`
	UpdatedBy   string         `json:"updated_by,omitempty" gorm:"size:64"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (Project) TableName() string {
	return "projects"
}

// ProjectUser links a user to a project (membership).
type ProjectUser struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ProjectID string `json:"project_id" gorm:"type:varchar(64);not null;uniqueIndex:uk_project_user"`
	UserID    string `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:uk_project_user"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (ProjectUser) TableName() string {
	return "project_users"
}
