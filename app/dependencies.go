package app

import (
	"github.com/shoplens/assistant-proxy/config"
	"github.com/shoplens/assistant-proxy/handlers"
	"github.com/shoplens/assistant-proxy/services/assist"
	"github.com/shoplens/assistant-proxy/services/providers"
	"github.com/shoplens/assistant-proxy/services/providers/gemini"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection: the provider credential is read
// once from config and threaded down, never from the environment
// mid-request.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Provider
	Provider providers.Provider

	// Services
	AssistService *assist.Service

	// Handlers
	AssistHandler *handlers.AssistHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(cfg *config.Config, logger *zap.Logger) *Dependencies {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.Provider = gemini.NewGeminiAdapter(providers.ProviderConfig{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	}, logger)

	if cfg.Gemini.APIKey == "" {
		// Boot proceeds; individual requests fail with a
		// misconfiguration error until the key is provided.
		logger.Warn("GEMINI_API_KEY is not set, assist requests will fail")
	}

	deps.AssistService = assist.NewService(deps.Provider, cfg.Gemini.APIKey, logger)
	deps.AssistHandler = handlers.NewAssistHandler(deps.AssistService, logger)

	logger.Info("all dependencies initialized",
		zap.String("provider", deps.Provider.Name()),
		zap.String("model", cfg.Gemini.Model))

	return deps
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close() {
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
}
