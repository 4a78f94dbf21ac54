package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/model"
)

type agents struct {
	db *gorm.DB
}

func newAgents(db *gorm.DB) *agents {
	return &agents{db}
}

// Create creates a new agent.
func (a *agents) Create(ctx context.Context, agent *model.Agent) error {
	return a.db.WithContext(ctx).Create(agent).Error
}

// Get retrieves an agent by ID.
func (a *agents) Get(ctx context.Context, id string) (*model.Agent, error) {
	var agent model.Agent
	if err := a.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// List lists all agents of a project.
func (a *agents) List(ctx context.Context, projectID string) ([]*model.Agent, error) {
	var list []*model.Agent
	if err := a.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
