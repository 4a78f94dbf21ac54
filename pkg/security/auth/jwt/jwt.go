// Package jwt provides JWT-based authentication.
//
// It supports the HMAC family of signing algorithms and provides token
// generation and verification with custom claims.
//
// Usage:
//
//	jwtAuth, err := jwt.New(
//	    jwt.WithKey("your-secret-key-min-32-chars-long"),
//	    jwt.WithExpired(2 * time.Hour),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, _, err := jwtAuth.Sign(ctx, "user-123", map[string]any{"tenant_id": "t-1"})
//	claims, err := jwtAuth.Verify(ctx, token)
package jwt

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	jwtopts "github.com/kart-io/docuchat/pkg/options/jwt"
)

// Claims carries the registered claims plus application-specific extras.
type Claims struct {
	jwt.RegisteredClaims
	// Extra holds custom claims such as tenant_id.
	Extra map[string]any `json:"extra,omitempty"`
}

// Subject returns the token subject (the user ID).
func (c *Claims) GetSubject() string {
	return c.Subject
}

// ExtraString returns the named extra claim as a string.
func (c *Claims) ExtraString(key string) string {
	if c.Extra == nil {
		return ""
	}
	if v, ok := c.Extra[key].(string); ok {
		return v
	}
	return ""
}

// JWT signs and verifies JSON Web Tokens.
type JWT struct {
	opts   *jwtopts.Options
	method jwt.SigningMethod
}

// Option is a functional option for the JWT authenticator.
type Option func(*JWT)

// New creates a new JWT authenticator.
func New(opts ...Option) (*JWT, error) {
	j := &JWT{
		opts: jwtopts.NewOptions(),
	}

	for _, opt := range opts {
		opt(j)
	}

	if err := j.opts.Complete(); err != nil {
		return nil, fmt.Errorf("complete options: %w", err)
	}
	if errs := j.opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validate options: %v", errs)
	}

	j.method = jwt.GetSigningMethod(j.opts.SigningMethod)
	if j.method == nil {
		return nil, fmt.Errorf("unsupported signing method: %s", j.opts.SigningMethod)
	}

	return j, nil
}

// WithOptions sets the JWT options.
func WithOptions(opts *jwtopts.Options) Option {
	return func(j *JWT) {
		if opts != nil {
			j.opts = opts
		}
	}
}

// WithKey sets the signing key.
func WithKey(key string) Option {
	return func(j *JWT) {
		j.opts.Key = key
	}
}

// WithSigningMethod sets the signing algorithm.
func WithSigningMethod(method string) Option {
	return func(j *JWT) {
		j.opts.SigningMethod = method
	}
}

// WithExpired sets the token expiration duration.
func WithExpired(d time.Duration) Option {
	return func(j *JWT) {
		j.opts.Expired = d
	}
}

// WithIssuer sets the token issuer.
func WithIssuer(issuer string) Option {
	return func(j *JWT) {
		j.opts.Issuer = issuer
	}
}

// Sign creates a new token for the given subject.
// extra carries custom claims (e.g. tenant_id); it may be nil.
// It returns the signed token string and its expiry time.
func (j *JWT) Sign(_ context.Context, subject string, extra map[string]any) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.opts.Expired)

	tokenID, err := generateTokenID()
	if err != nil {
		return "", time.Time{}, err
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    j.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        tokenID,
		},
		Extra: extra,
	}

	token := jwt.NewWithClaims(j.method, claims)
	signed, err := token.SignedString([]byte(j.opts.Key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify parses and validates a token string, returning its claims.
func (j *JWT) Verify(_ context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != j.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(j.opts.Key), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if j.opts.Issuer != "" && claims.Issuer != j.opts.Issuer {
		return nil, fmt.Errorf("invalid issuer: %s", claims.Issuer)
	}

	return claims, nil
}

// generateTokenID returns a random 16-byte hex token ID.
func generateTokenID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
