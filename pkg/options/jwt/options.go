// Package jwt provides JWT configuration options.
//
// Configuration Example (YAML):
//
//	jwt:
//	  key: "your-secret-key-min-32-chars-long"
//	  signing-method: "HS256"
//	  expired: "2h"
//	  issuer: "docuchat"
package jwt

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

const (
	// DefaultSigningMethod is the default JWT signing algorithm.
	DefaultSigningMethod = "HS256"

	// DefaultExpired is the default token expiration time.
	DefaultExpired = 2 * time.Hour

	// DefaultIssuer is the default token issuer.
	DefaultIssuer = "docuchat"

	// MinKeyLength is the minimum required key length for security.
	MinKeyLength = 32
)

// SupportedSigningMethods contains all supported JWT signing algorithms.
var SupportedSigningMethods = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Options contains JWT configuration.
type Options struct {
	// Key is the secret key used to sign tokens.
	// For HMAC algorithms (HS256/HS384/HS512), this should be a secure random string.
	// Minimum length: 32 characters.
	Key string `json:"key" mapstructure:"key"`

	// SigningMethod is the JWT signing algorithm.
	// Supported: HS256, HS384, HS512.
	// Default: HS256
	SigningMethod string `json:"signing-method" mapstructure:"signing-method"`

	// Expired is the token expiration duration.
	// Default: 2h
	Expired time.Duration `json:"expired" mapstructure:"expired"`

	// Issuer is the token issuer (iss claim).
	// Default: docuchat
	Issuer string `json:"issuer" mapstructure:"issuer"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		SigningMethod: DefaultSigningMethod,
		Expired:       DefaultExpired,
		Issuer:        DefaultIssuer,
	}
}

// AddFlags adds flags for JWT options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Key, "jwt.key", o.Key, "JWT signing key (min 32 chars)")
	fs.StringVar(&o.SigningMethod, "jwt.signing-method", o.SigningMethod, "JWT signing algorithm (HS256|HS384|HS512)")
	fs.DurationVar(&o.Expired, "jwt.expired", o.Expired, "JWT token expiration duration")
	fs.StringVar(&o.Issuer, "jwt.issuer", o.Issuer, "JWT token issuer")
}

// Validate checks if the options are valid.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if len(o.Key) < MinKeyLength {
		errs = append(errs, fmt.Errorf("jwt.key must be at least %d characters", MinKeyLength))
	}
	if !SupportedSigningMethods[o.SigningMethod] {
		errs = append(errs, fmt.Errorf("unsupported jwt.signing-method %q", o.SigningMethod))
	}
	if o.Expired <= 0 {
		errs = append(errs, fmt.Errorf("jwt.expired must be positive"))
	}
	return errs
}

// Complete completes the JWT options with defaults.
func (o *Options) Complete() error {
	if o.SigningMethod == "" {
		o.SigningMethod = DefaultSigningMethod
	}
	if o.Issuer == "" {
		o.Issuer = DefaultIssuer
	}
	return nil
}
