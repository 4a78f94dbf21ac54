package biz

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/docuchat/store"
	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/pkg/utils/errors"
	"github.com/kart-io/docuchat/pkg/utils/id"
)

// ProjectService 负责项目与 Agent 的增查。
type ProjectService struct {
	factory store.Factory
}

// NewProjectService 创建项目服务实例。
func NewProjectService(factory store.Factory) *ProjectService {
	return &ProjectService{factory: factory}
}

// CreateProject 在当前租户下创建项目。
func (s *ProjectService) CreateProject(ctx context.Context, tenantID, userID, name, description string) (*model.Project, error) {
	if name == "" {
		return nil, errors.ErrDocInvalidRequest.WithMessage("project name is required")
	}

	project := &model.Project{
		ID:          id.New(),
		TenantID:    tenantID,
		Name:        name,
		Description: description,
		CreatedBy:   userID,
	}
	if err := s.factory.Projects().Create(ctx, project); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return project, nil
}

// ListProjects 返回当前租户的全部项目。
func (s *ProjectService) ListProjects(ctx context.Context, tenantID string) ([]*model.Project, error) {
	list, err := s.factory.Projects().List(ctx, tenantID)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// GetProject 取当前租户下的项目，不存在返回 ErrProjectNotFound。
func (s *ProjectService) GetProject(ctx context.Context, projectID, tenantID string) (*model.Project, error) {
	project, err := s.factory.Projects().Get(ctx, projectID, tenantID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProjectNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return project, nil
}

// CreateAgent 在项目下创建 Agent，校验项目归属当前租户。
func (s *ProjectService) CreateAgent(ctx context.Context, tenantID, userID, projectID, name, description, promptTemplate string) (*model.Agent, error) {
	if name == "" {
		return nil, errors.ErrDocInvalidRequest.WithMessage("agent name is required")
	}
	if _, err := s.GetProject(ctx, projectID, tenantID); err != nil {
		return nil, err
	}

	agent := &model.Agent{
		ID:             id.New(),
		ProjectID:      projectID,
		Name:           name,
		Description:    description,
		PromptTemplate: promptTemplate,
		CreatedBy:      userID,
	}
	if err := s.factory.Agents().Create(ctx, agent); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return agent, nil
}

// ListAgents 返回项目下的全部 Agent，校验项目归属当前租户。
func (s *ProjectService) ListAgents(ctx context.Context, tenantID, projectID string) ([]*model.Agent, error) {
	if _, err := s.GetProject(ctx, projectID, tenantID); err != nil {
		return nil, err
	}
	list, err := s.factory.Agents().List(ctx, projectID)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// DeleteDocument 软删除文档及其全部分块，校验文档归属当前租户。
// 分块先于文档删除，检索按未删除文档过滤，顺序不影响可见性。
func (s *ProjectService) DeleteDocument(ctx context.Context, tenantID, documentID string) error {
	doc, err := s.factory.Documents().Get(ctx, documentID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrDocNotFound
		}
		return errors.ErrDatabase.WithCause(err)
	}
	if _, err := s.GetProject(ctx, doc.ProjectID, tenantID); err != nil {
		return errors.ErrDocNotFound
	}

	if err := s.factory.Chunks().DeleteByDocument(ctx, documentID); err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	if err := s.factory.Documents().Delete(ctx, documentID); err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ListDocuments 返回项目下的全部文档，校验项目归属当前租户。
func (s *ProjectService) ListDocuments(ctx context.Context, tenantID, projectID string) ([]*model.Document, error) {
	if _, err := s.GetProject(ctx, projectID, tenantID); err != nil {
		return nil, err
	}
	list, err := s.factory.Documents().List(ctx, projectID)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}
