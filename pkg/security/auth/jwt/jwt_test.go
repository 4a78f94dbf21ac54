package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestJWT(t *testing.T, opts ...Option) *JWT {
	t.Helper()
	opts = append([]Option{WithKey(testKey)}, opts...)
	j, err := New(opts...)
	require.NoError(t, err)
	return j
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New(WithKey("too-short"))
	assert.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	j := newTestJWT(t)
	ctx := context.Background()

	token, expiresAt, err := j.Sign(ctx, "user-123", map[string]any{"tenant_id": "tenant-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := j.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "tenant-1", claims.ExtraString("tenant_id"))
	assert.Equal(t, "docuchat", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	j := newTestJWT(t)
	ctx := context.Background()

	token, _, err := j.Sign(ctx, "user-123", nil)
	require.NoError(t, err)

	// 篡改负载
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + ".eyJzdWIiOiJhdHRhY2tlciJ9." + parts[2]

	_, err = j.Verify(ctx, tampered)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	j := newTestJWT(t)
	ctx := context.Background()

	// 用同一密钥直接签发一个已过期的令牌
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    j.opts.Issuer,
			IssuedAt:  jwtlib.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(-time.Hour)),
			NotBefore: jwtlib.NewNumericDate(now.Add(-2 * time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(j.method, claims).SignedString([]byte(j.opts.Key))
	require.NoError(t, err)

	_, err = j.Verify(ctx, token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	j1 := newTestJWT(t)
	j2 := newTestJWT(t, WithKey("ffffffffffffffffffffffffffffffff"))
	ctx := context.Background()

	token, _, err := j1.Sign(ctx, "user-123", nil)
	require.NoError(t, err)

	_, err = j2.Verify(ctx, token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	j1 := newTestJWT(t, WithIssuer("other-service"))
	j2 := newTestJWT(t)
	ctx := context.Background()

	token, _, err := j1.Sign(ctx, "user-123", nil)
	require.NoError(t, err)

	_, err = j2.Verify(ctx, token)
	assert.Error(t, err)
}
