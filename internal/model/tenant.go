// Package model provides data models for the DocuChat platform.
package model

import (
	"gorm.io/gorm"
)

// Tenant license types.
const (
	LicenseTrial      = "TRIAL"
	LicensePro        = "PRO"
	LicenseEnterprise = "ENTERPRISE"
)

// Tenant represents an isolated customer workspace.
// 所有业务数据都归属于一个租户。
type Tenant struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name        string         `json:"name" gorm:"size:128;not null"`
	Slug        string         `json:"slug" gorm:"size:64;not null;uniqueIndex:uk_tenant_slug"`
	LicenseType string         `json:"license_type" gorm:"size:32;default:'TRIAL'"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime"`
	CreatedBy   string         `json:"created_by,omitempty" gorm:"size:64"`
	UpdatedBy   string         `json:"updated_by,omitempty" gorm:"size:64"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (Tenant) TableName() string {
	return "tenants"
}
