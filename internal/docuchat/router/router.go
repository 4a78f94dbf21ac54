// Package router provides docuchat routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/docuchat/internal/docuchat/handler"
	"github.com/kart-io/docuchat/internal/pkg/middleware"
	"github.com/kart-io/docuchat/pkg/security/auth/jwt"
)

// Handlers bundles the handler layer for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Document *handler.DocumentHandler
	Project  *handler.ProjectHandler
	Chat     *handler.ChatHandler
}

// Register registers the docuchat routes.
func Register(engine *gin.Engine, authn *jwt.JWT, h *Handlers) {
	logger.Info("Registering docuchat routes...")

	v1 := engine.Group("/v1")

	// Auth routes（无需令牌）
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.Auth(authn))
	{
		documents := protected.Group("/documents")
		{
			documents.POST("/upload-url", h.Document.UploadURL)
			documents.POST("/upload-file", h.Document.UploadFile)
			documents.POST("/upload-csv-data", h.Document.UploadCSVData)
			documents.GET("/:project_id", h.Document.List)
			documents.DELETE("/:document_id", h.Document.Delete)
		}

		projects := protected.Group("/projects")
		{
			projects.POST("", h.Project.CreateProject)
			projects.GET("", h.Project.ListProjects)
		}

		agents := protected.Group("/agents")
		{
			agents.POST("", h.Project.CreateAgent)
			agents.GET("/:project_id", h.Project.ListAgents)
		}

		chats := protected.Group("/chats")
		{
			chats.POST("/sessions", h.Chat.CreateSession)
			chats.GET("/sessions/:agent_id", h.Chat.ListSessions)
			chats.GET("/messages/:session_id", h.Chat.ListMessages)
			chats.POST("/messages/:session_id", h.Chat.PostMessage)
			chats.POST("/completion", h.Chat.Completion)
		}
	}

	logger.Info("HTTP routes registered")
}
