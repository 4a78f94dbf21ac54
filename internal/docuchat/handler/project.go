package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/docuchat/internal/docuchat/biz"
	"github.com/kart-io/docuchat/internal/pkg/middleware"
	"github.com/kart-io/docuchat/pkg/utils/errors"
)

// ProjectHandler handles project and agent requests.
type ProjectHandler struct {
	svc *biz.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc *biz.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// CreateProjectRequest is the request body for project creation.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateProject creates a project under the current tenant.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResponse(c, errors.ErrDocInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	userID, tenantID := middleware.Principal(c)
	project, err := h.svc.CreateProject(c.Request.Context(), tenantID, userID, req.Name, req.Description)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, project)
}

// ListProjects lists projects of the current tenant.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	_, tenantID := middleware.Principal(c)

	projects, err := h.svc.ListProjects(c.Request.Context(), tenantID)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, projects)
}

// CreateAgentRequest is the request body for agent creation.
type CreateAgentRequest struct {
	ProjectID      string `json:"project_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	PromptTemplate string `json:"prompt_template"`
}

// CreateAgent creates an agent under a project.
func (h *ProjectHandler) CreateAgent(c *gin.Context) {
	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResponse(c, errors.ErrDocInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	userID, tenantID := middleware.Principal(c)
	agent, err := h.svc.CreateAgent(c.Request.Context(), tenantID, userID, req.ProjectID, req.Name, req.Description, req.PromptTemplate)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, agent)
}

// ListAgents lists agents of a project.
func (h *ProjectHandler) ListAgents(c *gin.Context) {
	_, tenantID := middleware.Principal(c)

	agents, err := h.svc.ListAgents(c.Request.Context(), tenantID, c.Param("project_id"))
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, agents)
}
