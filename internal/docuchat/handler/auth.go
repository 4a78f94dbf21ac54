package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/docuchat/internal/docuchat/biz"
	"github.com/kart-io/docuchat/pkg/utils/errors"
)

// AuthHandler handles authentication requests.
type AuthHandler struct {
	svc *biz.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *biz.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResponse(c, errors.ErrDocInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	result, err := h.svc.Register(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		logger.Warnw("注册失败", "email", req.Email, "error", err.Error())
		writeResponse(c, err, nil)
		return
	}

	writeResponse(c, nil, result)
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeResponse(c, errors.ErrDocInvalidRequest.WithMessage(err.Error()), nil)
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warnw("登录失败", "email", req.Email, "error", err.Error())
		writeResponse(c, err, nil)
		return
	}

	writeResponse(c, nil, result)
}
