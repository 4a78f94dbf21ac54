package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/model"
)

type documents struct {
	db *gorm.DB
}

func newDocuments(db *gorm.DB) *documents {
	return &documents{db}
}

// Create creates a new document.
func (d *documents) Create(ctx context.Context, doc *model.Document) error {
	return d.db.WithContext(ctx).Create(doc).Error
}

// Get retrieves a document by ID.
func (d *documents) Get(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// List lists all documents of a project.
func (d *documents) List(ctx context.Context, projectID string) ([]*model.Document, error) {
	var list []*model.Document
	if err := d.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus sets the processing status of a document.
func (d *documents) UpdateStatus(ctx context.Context, id, status string) error {
	return d.db.WithContext(ctx).Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().Unix(),
		}).Error
}

// Delete soft-deletes a document.
func (d *documents) Delete(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Document{}).Error
}

// UpdateTitle sets the title of a document.
func (d *documents) UpdateTitle(ctx context.Context, id, title string) error {
	return d.db.WithContext(ctx).Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":      title,
			"updated_at": time.Now().Unix(),
		}).Error
}
