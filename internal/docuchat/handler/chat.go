package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/docuchat/internal/docuchat/biz"
	"github.com/kart-io/docuchat/internal/pkg/middleware"
	"github.com/kart-io/docuchat/pkg/utils/errors"
)

// ChatHandler handles chat session and completion requests.
type ChatHandler struct {
	svc *biz.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *biz.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// CreateSessionRequest is the request body for session creation.
type CreateSessionRequest struct {
	AgentID string `json:"agent_id" binding:"required"`
	Title   string `json:"title"`
}

// CreateSession creates a chat session under an agent.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResponse(c, errors.ErrDocInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	userID, tenantID := middleware.Principal(c)
	session, err := h.svc.CreateSession(c.Request.Context(), userID, tenantID, req.AgentID, req.Title)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, session)
}

// ListSessions lists the current user's sessions for an agent.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID, _ := middleware.Principal(c)

	sessions, err := h.svc.ListSessions(c.Request.Context(), userID, c.Param("agent_id"))
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, sessions)
}

// ListMessages lists the transcript of a session.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, _ := middleware.Principal(c)

	messages, err := h.svc.ListMessages(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, messages)
}

// PostMessageRequest is the request body for appending a user message.
type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostMessage appends a user message to a session.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResponse(c, errors.ErrChatEmptyMessage, nil)
		return
	}

	userID, _ := middleware.Principal(c)
	msg, err := h.svc.PostMessage(c.Request.Context(), userID, c.Param("session_id"), req.Content)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, msg)
}

// CompletionRequest is the request body for a completion.
type CompletionRequest struct {
	ChatSessionID string `json:"chat_session_id" binding:"required"`
	Message       string `json:"message" binding:"required"`
}

// Completion answers a user question with retrieved context.
func (h *ChatHandler) Completion(c *gin.Context) {
	var req CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResponse(c, errors.ErrDocInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	userID, tenantID := middleware.Principal(c)
	result, err := h.svc.Completion(c.Request.Context(), userID, tenantID, req.ChatSessionID, req.Message)
	if err != nil {
		writeResponse(c, err, nil)
		return
	}
	writeResponse(c, nil, result)
}
