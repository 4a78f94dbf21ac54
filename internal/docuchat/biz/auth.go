package biz

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kart-io/docuchat/internal/docuchat/store"
	"github.com/kart-io/docuchat/internal/model"
	"github.com/kart-io/docuchat/pkg/security/auth/jwt"
	"github.com/kart-io/docuchat/pkg/utils/errors"
	"github.com/kart-io/docuchat/pkg/utils/id"
)

// TokenResult 是一次登录/注册的令牌返回。
type TokenResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// AuthService 负责注册、登录与令牌签发。
type AuthService struct {
	factory store.Factory
	signer  *jwt.JWT
}

// NewAuthService 创建认证服务实例。
func NewAuthService(factory store.Factory, signer *jwt.JWT) *AuthService {
	return &AuthService{factory: factory, signer: signer}
}

// Register 注册新用户。每个新用户获得一个独立的试用租户。
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*TokenResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.ErrDocInvalidRequest.WithMessage("email and password are required")
	}

	if _, err := s.factory.Users().GetByEmail(ctx, email); err == nil {
		return nil, errors.ErrUserAlreadyExists
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err)
	}

	tenantName := strings.TrimSpace(firstName + " " + lastName)
	if tenantName == "" {
		tenantName = email
	}
	tenant := &model.Tenant{
		ID:          id.New(),
		Name:        tenantName,
		Slug:        strings.ToLower(id.New()),
		LicenseType: model.LicenseTrial,
	}
	if err := s.factory.Tenants().Create(ctx, tenant); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	user := &model.User{
		ID:        id.New(),
		TenantID:  tenant.ID,
		Email:     email,
		Password:  string(hash),
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.factory.Users().Create(ctx, user); err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	return s.issueToken(ctx, user)
}

// Login 校验凭证并签发令牌。
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.factory.Users().GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPasswordInvalid
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.ErrPasswordInvalid
	}

	return s.issueToken(ctx, user)
}

func (s *AuthService) issueToken(ctx context.Context, user *model.User) (*TokenResult, error) {
	token, expiresAt, err := s.signer.Sign(ctx, user.ID, map[string]any{
		"tenant_id": user.TenantID,
		"email":     user.Email,
	})
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err)
	}
	return &TokenResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
