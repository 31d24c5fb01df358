package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kapu/culturesphere-go/internal/api"
	"github.com/kapu/culturesphere-go/internal/config"
	"github.com/kapu/culturesphere-go/internal/constants"
	"github.com/kapu/culturesphere-go/internal/domain"
	"github.com/kapu/culturesphere-go/internal/prompt"
	"github.com/kapu/culturesphere-go/internal/service/ai"
	"github.com/kapu/culturesphere-go/internal/service/qloo"
	"github.com/kapu/culturesphere-go/internal/service/taste"
)

// Container bundles assembled services for the HTTP server and CLI tools.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Profiles     *domain.ProfileTable
	Orchestrator *taste.Orchestrator
	Recommender  *ai.Recommender
	ModelManager *ai.ModelManager
	Handler      http.Handler
}

// NewServer returns an http.Server bound to the configured port.
func (c *Container) NewServer() (*http.Server, error) {
	if c == nil || c.Handler == nil {
		return nil, fmt.Errorf("http handler not initialized")
	}
	return &http.Server{
		Addr:              c.Config.Server.Addr(),
		Handler:           c.Handler,
		ReadHeaderTimeout: constants.ServerConfig.ReadHeaderTimeout,
		WriteTimeout:      constants.ServerConfig.WriteTimeout,
	}, nil
}

// Build assembles the taste pipeline, the generator and the HTTP router.
// Missing API keys degrade features instead of failing the build.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	profiles, err := domain.LoadProfiles(cfg.Qloo.DomainProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load domain profiles: %w", err)
	}
	logger.Info("Domain profiles loaded", zap.Strings("domains", profiles.Domains()))

	// Taste pipeline
	qlooClient := qloo.NewClient(qloo.ClientConfig{
		BaseURL: cfg.Qloo.BaseURL,
		Timeout: cfg.Qloo.Timeout,
	}, logger)
	orchestrator := taste.NewOrchestrator(profiles,
		qloo.NewEntityResolver(qlooClient, logger),
		qloo.NewInsightFetcher(qlooClient, logger),
		logger,
	)

	// Generation
	modelManager, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:       cfg.Gemini.APIKey,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		DefaultGeminiModel: cfg.Gemini.Model,
		DefaultOpenAIModel: cfg.OpenAI.Model,
		EnableFallback:     cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}

	var generator ai.Generator
	if modelManager != nil {
		generator = modelManager
	}
	recommender := ai.NewRecommender(generator, taste.NewContextBuilder(), prompt.DefaultPromptBuilder(), logger)

	handler := api.NewHandler(orchestrator, recommender, cfg.Qloo.APIKey, logger)
	router := api.NewRouter(api.RouterConfig{FrontendURL: cfg.Server.FrontendURL}, handler, logger)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Profiles:     profiles,
		Orchestrator: orchestrator,
		Recommender:  recommender,
		ModelManager: modelManager,
		Handler:      router,
	}, nil
}
