package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pricehistory/config"
	"github.com/guttosm/pricehistory/internal/api"
	"github.com/guttosm/pricehistory/internal/logger"
	"github.com/guttosm/pricehistory/internal/provider"
	"github.com/guttosm/pricehistory/internal/service"
)

// providerFactory is an indirection for unit testing; defaults to provider.New.
var providerFactory = provider.New

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Builds the upstream provider selected by cfg.Upstream.
//   - Wraps the history service with logging and Prometheus instrumentation.
//   - Creates the HTTP handler layer and the Gin router.
//   - Registers health, readiness and metrics endpoints.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp(cfg config.Config) (*gin.Engine, func(), error) {
	svc, p, metrics, err := buildService(cfg)
	if err != nil {
		return nil, nil, err
	}

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc, cfg.History.BatchMaxSymbols)

	// Setup Gin router with routes
	router := api.NewRouter(handler, cfg)

	// Register health and readiness probes
	api.NewHealthHandler(p.Ping).Register(router)

	// Prometheus exposition
	router.GET("/metrics", gin.WrapH(metrics.handler()))

	// Cleanup resources on shutdown
	cleanup := func() {
		logger.L().Info().Str("provider", p.Name()).Msg("app resources released")
	}

	return router, cleanup, nil
}

// NewHistoryService builds the decorated history service without any HTTP
// surface. Used by the one-shot fetch mode.
func NewHistoryService(cfg config.Config) (service.HistoryService, error) {
	svc, _, _, err := buildService(cfg)
	return svc, err
}

func buildService(cfg config.Config) (service.HistoryService, provider.HistoryProvider, *serviceMetrics, error) {
	p, err := providerFactory(cfg.Upstream)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	metrics := newServiceMetrics()

	svc := service.NewHistoryService(p, cfg.History)
	svc = service.NewLoggingMiddleware(logger.Component("service"), svc)
	svc = service.NewInstrumentingMiddleware(metrics.reqCount, metrics.reqDuration, svc)

	logger.L().Info().
		Str("provider", p.Name()).
		Int("lookback_days", cfg.History.LookbackDays).
		Msg("history service ready")

	return svc, p, metrics, nil
}
