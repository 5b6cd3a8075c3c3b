// Package herald provides the Herald service server implementation.
package herald

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/herald/internal/herald/biz"
	"github.com/kart-io/herald/internal/herald/router"
	"github.com/kart-io/herald/internal/herald/store"
	"github.com/kart-io/herald/pkg/app"
	"github.com/kart-io/herald/pkg/line"
	"github.com/kart-io/herald/pkg/llm"
	// Register chat providers
	_ "github.com/kart-io/herald/pkg/llm/ollama"
	_ "github.com/kart-io/herald/pkg/llm/openai"
	httpopts "github.com/kart-io/herald/pkg/options/http"
	lineopts "github.com/kart-io/herald/pkg/options/line"
	llmopts "github.com/kart-io/herald/pkg/options/llm"
	logopts "github.com/kart-io/herald/pkg/options/logger"
	pgopts "github.com/kart-io/herald/pkg/options/postgres"
)

// Name is the name of the application.
const Name = "herald"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions     *httpopts.Options
	LogOptions      *logopts.Options
	PostgresOptions *pgopts.Options
	LineOptions     *lineopts.Options
	LLMOptions      *llmopts.GatewayOptions
	ShutdownTimeout time.Duration
}

// Server represents the Herald server.
type Server struct {
	srv             *http.Server
	storeFactory    store.Factory
	shutdownTimeout time.Duration
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(_ context.Context) (*Server, error) {
	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting herald service...")

	// 2. 初始化 PostgreSQL 存储，内部完成数据库迁移
	storeFactory, err := store.GetFactory(cfg.PostgresOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	logger.Info("Store layer initialized")

	// 3. 初始化多租户模型网关并注册租户
	gateway := llm.NewGateway(
		llm.WithDefaultAPIKey(cfg.LLMOptions.DefaultAPIKey),
		llm.WithTimeout(cfg.LLMOptions.Timeout),
	)
	for _, t := range cfg.LLMOptions.Tenants {
		if err := gateway.Register(llm.TenantConfig{
			TenantID:      t.TenantID,
			Provider:      t.Provider,
			Model:         t.Model,
			APIKey:        t.APIKey,
			BaseURL:       t.BaseURL,
			Organization:  t.Organization,
			DefaultParams: t.DefaultParams,
			Tags:          t.Tags,
		}); err != nil {
			return nil, fmt.Errorf("failed to register tenant %q: %w", t.TenantID, err)
		}
	}
	logger.Infow("LLM gateway initialized", "tenants", gateway.Tenants())

	// 4. 初始化 LINE Messaging API 客户端
	messenger := line.NewClient(cfg.LineOptions.APIBaseURL, cfg.LineOptions.ChannelAccessToken, cfg.LineOptions.Timeout)

	// 5. 初始化 Biz 层
	var stages []biz.IngestStage
	if len(cfg.LLMOptions.Tenants) > 0 {
		stages = append(stages, biz.NewTranslationService(storeFactory, gateway, biz.DefaultTenantID))
	} else {
		logger.Warn("No LLM tenants configured, ingested items will not be translated")
	}
	ingestService := biz.NewIngestService(storeFactory, stages...)
	bardService := biz.NewBardService(storeFactory, gateway, messenger, biz.DefaultTenantID)
	lorekeeperService := biz.NewLorekeeperService(storeFactory, gateway, nil, biz.DefaultTenantID)
	webhookService := biz.NewWebhookService(storeFactory, lorekeeperService, messenger)
	logger.Info("Business layer initialized")

	// 6. 注册路由
	gin.SetMode(gin.ReleaseMode)
	engine := router.New(router.Deps{
		Ingest:            ingestService,
		Bard:              bardService,
		Lorekeeper:        lorekeeperService,
		Webhook:           webhookService,
		LineChannelSecret: cfg.LineOptions.ChannelSecret,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	logger.Info("Herald service is ready")
	return &Server{
		srv:             srv,
		storeFactory:    storeFactory,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down herald service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("HTTP server shutdown failed", "error", err)
	}
	if err := s.storeFactory.Close(); err != nil {
		logger.Errorw("Failed to close store", "error", err)
	}
	return nil
}
