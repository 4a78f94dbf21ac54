// Package options contains flags and options for initializing the DocuChat server.
package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/kart-io/docuchat/internal/docuchat"
	cliflag "github.com/kart-io/docuchat/pkg/app/cliflag"
	jwtopts "github.com/kart-io/docuchat/pkg/options/jwt"
	llmopts "github.com/kart-io/docuchat/pkg/options/llm"
	logopts "github.com/kart-io/docuchat/pkg/options/logger"
	postgresopts "github.com/kart-io/docuchat/pkg/options/postgres"
	retrievalopts "github.com/kart-io/docuchat/pkg/options/retrieval"
	httpopts "github.com/kart-io/docuchat/pkg/options/server/http"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// PostgresOptions contains database configuration.
	PostgresOptions *postgresopts.Options `json:"postgres" mapstructure:"postgres"`

	// JWTOptions contains token signing configuration.
	JWTOptions *jwtopts.Options `json:"jwt" mapstructure:"jwt"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// RetrievalOptions contains chunking and retrieval configuration.
	RetrievalOptions *retrievalopts.Options `json:"retrieval" mapstructure:"retrieval"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		PostgresOptions:  postgresopts.NewOptions(),
		JWTOptions:       jwtopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		RetrievalOptions: retrievalopts.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.PostgresOptions.AddFlags(fss.FlagSet("postgres"))
	o.JWTOptions.AddFlags(fss.FlagSet("jwt"))
	o.EmbeddingOptions.AddFlags(fss.FlagSet("embedding"), "embedding.")
	o.ChatOptions.AddFlags(fss.FlagSet("chat"), "chat.")
	o.RetrievalOptions.AddFlags(fss.FlagSet("retrieval"))

	// misc flags
	fs := fss.FlagSet("misc")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.HTTPOptions.Complete(); err != nil {
		return err
	}
	if err := o.JWTOptions.Complete(); err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatOptions.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if err := o.RetrievalOptions.Complete(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	var errs []error

	errs = append(errs, o.HTTPOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.PostgresOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.JWTOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.RetrievalOptions.Validate()...)

	return errors.Join(errs...)
}

// Config builds a docuchat.Config based on ServerOptions.
func (o *ServerOptions) Config() (*docuchat.Config, error) {
	return &docuchat.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		PostgresOptions:  o.PostgresOptions,
		JWTOptions:       o.JWTOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		RetrievalOptions: o.RetrievalOptions,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
