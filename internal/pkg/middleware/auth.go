// Package middleware 提供 docuchat 的 gin 中间件。
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docuchat/pkg/security/auth/jwt"
	"github.com/kart-io/docuchat/pkg/utils/errors"
	"github.com/kart-io/docuchat/pkg/utils/response"
)

// 请求上下文中的主体键。
const (
	KeyUserID   = "x-user-id"
	KeyTenantID = "x-tenant-id"
)

// Auth 校验 Bearer 令牌并把主体（用户、租户）写入请求上下文。
func Auth(authn *jwt.JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, errors.ErrUnauthorized)
			return
		}

		claims, err := authn.Verify(c.Request.Context(), token)
		if err != nil {
			abort(c, errors.ErrTokenInvalid)
			return
		}

		c.Set(KeyUserID, claims.GetSubject())
		c.Set(KeyTenantID, claims.ExtraString("tenant_id"))
		c.Next()
	}
}

// Principal 取出当前请求主体。未经 Auth 的路由返回空串。
func Principal(c *gin.Context) (userID, tenantID string) {
	return c.GetString(KeyUserID), c.GetString(KeyTenantID)
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	return ""
}

func abort(c *gin.Context, e *errors.Errno) {
	r := response.Err(e)
	c.AbortWithStatusJSON(r.HTTPStatus(), r)
}
