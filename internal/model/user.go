package model

import (
	"gorm.io/gorm"
)

// User represents a platform user. A user belongs to exactly one tenant.
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	TenantID  string         `json:"tenant_id" gorm:"type:varchar(64);not null;index:idx_user_tenant"`
	Email     string         `json:"email" gorm:"size:128;not null;uniqueIndex:uk_user_email"`
	Password  string         `json:"-" gorm:"size:255;not null"` // bcrypt hash
	FirstName string         `json:"first_name,omitempty" gorm:"size:64"`
	LastName  string         `json:"last_name,omitempty" gorm:"size:64"`
	CreatedAt int64          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt int64          `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}
