package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/model"
)

type projects struct {
	db *gorm.DB
}

func newProjects(db *gorm.DB) *projects {
	return &projects{db}
}

// Create creates a new project.
func (p *projects) Create(ctx context.Context, project *model.Project) error {
	return p.db.WithContext(ctx).Create(project).Error
}

// Get retrieves a project by ID within a tenant.
func (p *projects) Get(ctx context.Context, id, tenantID string) (*model.Project, error) {
	var project model.Project
	if err := p.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List lists all projects of a tenant.
func (p *projects) List(ctx context.Context, tenantID string) ([]*model.Project, error) {
	var list []*model.Project
	if err := p.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
