package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/model"
)

type tenants struct {
	db *gorm.DB
}

func newTenants(db *gorm.DB) *tenants {
	return &tenants{db}
}

// Create creates a new tenant.
func (t *tenants) Create(ctx context.Context, tenant *model.Tenant) error {
	return t.db.WithContext(ctx).Create(tenant).Error
}

// Get retrieves a tenant by ID.
func (t *tenants) Get(ctx context.Context, id string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := t.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetBySlug retrieves a tenant by slug.
func (t *tenants) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := t.db.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}
