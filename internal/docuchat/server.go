// Package docuchat provides the docuchat server assembly.
package docuchat

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/docuchat/internal/docuchat/biz"
	"github.com/kart-io/docuchat/internal/docuchat/handler"
	"github.com/kart-io/docuchat/internal/docuchat/router"
	"github.com/kart-io/docuchat/internal/docuchat/store"
	"github.com/kart-io/docuchat/internal/pkg/extractor"
	"github.com/kart-io/docuchat/pkg/component/postgres"
	"github.com/kart-io/docuchat/pkg/infra/pool"
	"github.com/kart-io/docuchat/pkg/llm"
	jwtauth "github.com/kart-io/docuchat/pkg/security/auth/jwt"
	"github.com/kart-io/docuchat/pkg/utils/httpclient"
	"github.com/kart-io/docuchat/pkg/utils/validator"

	jwtopts "github.com/kart-io/docuchat/pkg/options/jwt"
	llmopts "github.com/kart-io/docuchat/pkg/options/llm"
	logopts "github.com/kart-io/docuchat/pkg/options/logger"
	postgresopts "github.com/kart-io/docuchat/pkg/options/postgres"
	retrievalopts "github.com/kart-io/docuchat/pkg/options/retrieval"
	httpopts "github.com/kart-io/docuchat/pkg/options/server/http"

	// 注册 LLM 供应商
	_ "github.com/kart-io/docuchat/pkg/llm/ollama"
	_ "github.com/kart-io/docuchat/pkg/llm/openai"
)

// Config is the runtime configuration assembled from server options.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	PostgresOptions  *postgresopts.Options
	JWTOptions       *jwtopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	RetrievalOptions *retrievalopts.Options
	ShutdownTimeout  time.Duration
}

// Server is an assembled docuchat server.
type Server struct {
	httpServer *http.Server
	dbClient   *postgres.Client
	pools      *pool.Manager
	shutdown   time.Duration
}

// NewServer 按配置装配 docuchat 服务。
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", "docuchat")
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting docuchat service...")

	// 2. 初始化数据库
	dbClient, err := postgres.NewWithContext(ctx, cfg.PostgresOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	logger.Info("Postgres client initialized")

	// 3. 初始化存储层并迁移
	factory := store.NewFactory(dbClient.DB())
	if err := factory.AutoMigrate(); err != nil {
		dbClient.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("Store layer initialized")

	// 4. 初始化 LLM 供应商
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, providerConfig(cfg.EmbeddingOptions, true))
	if err != nil {
		dbClient.Close()
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, providerConfig(cfg.ChatOptions, false))
	if err != nil {
		dbClient.Close()
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("LLM providers initialized", "embedding", embedProvider.Name(), "chat", chatProvider.Name())

	// 5. 初始化工作池
	pools := pool.NewManager()
	if err := pools.RegisterWithType(pool.IngestPool, pool.IngestPoolConfig()); err != nil {
		dbClient.Close()
		return nil, fmt.Errorf("failed to initialize worker pools: %w", err)
	}

	// 6. 初始化认证
	authn, err := jwtauth.New(jwtauth.WithOptions(cfg.JWTOptions))
	if err != nil {
		dbClient.Close()
		return nil, fmt.Errorf("failed to initialize jwt: %w", err)
	}

	// 7. 初始化 Biz 层
	fetchClient := httpclient.NewClient(30*time.Second, 3)
	ingestSvc := biz.NewIngestService(factory, extractor.New(fetchClient), embedProvider, pools, &biz.IngestConfig{
		ChunkSize:    cfg.RetrievalOptions.ChunkSize,
		ChunkOverlap: cfg.RetrievalOptions.ChunkOverlap,
	})
	retriever := biz.NewRetriever(factory, embedProvider, cfg.RetrievalOptions.TopK)
	synthesizer := biz.NewSynthesizer(chatProvider, &biz.SynthesizerConfig{
		Temperature: cfg.RetrievalOptions.Temperature,
		MaxTokens:   cfg.RetrievalOptions.MaxAnswerTokens,
	})
	chatSvc := biz.NewChatService(factory, retriever, synthesizer, &biz.ChatConfig{
		MaxHistoryMessages: cfg.RetrievalOptions.MaxHistoryMessages,
	})
	projectSvc := biz.NewProjectService(factory)
	authSvc := biz.NewAuthService(factory, authn)
	logger.Info("Biz layer initialized")

	// 8. 初始化 Handler 层与路由
	gin.SetMode(gin.ReleaseMode)
	if err := validator.RegisterWithGin(); err != nil {
		dbClient.Close()
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	router.Register(engine, authn, &router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Document: handler.NewDocumentHandler(ingestSvc, projectSvc),
		Project:  handler.NewProjectHandler(projectSvc),
		Chat:     handler.NewChatHandler(chatSvc),
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPOptions.Addr,
			Handler:      engine,
			ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
			WriteTimeout: cfg.HTTPOptions.WriteTimeout,
			IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
		},
		dbClient: dbClient,
		pools:    pools,
		shutdown: cfg.ShutdownTimeout,
	}, nil
}

// Run 启动 HTTP 服务并在 ctx 取消时优雅退出。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.cleanup()
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down docuchat service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.cleanup()
	return err
}

func (s *Server) cleanup() {
	if err := s.pools.ReleaseAllTimeout(s.shutdown); err != nil {
		logger.Warnw("关闭工作池超时", "error", err.Error())
	}
	if err := s.dbClient.Close(); err != nil {
		logger.Warnw("关闭数据库连接失败", "error", err.Error())
	}
}

// providerConfig 将供应商选项转换为工厂配置。
func providerConfig(opts *llmopts.ProviderOptions, embedding bool) map[string]any {
	cfg := map[string]any{
		"base_url":    opts.BaseURL,
		"timeout":     opts.Timeout,
		"max_retries": opts.MaxRetries,
	}
	if embedding {
		cfg["embed_model"] = opts.Model
	} else {
		cfg["chat_model"] = opts.Model
	}
	if opts.APIKey != "" {
		cfg["api_key"] = opts.APIKey
	}
	if opts.Organization != "" {
		cfg["organization"] = opts.Organization
	}
	return cfg
}
