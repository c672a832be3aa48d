package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/pricehistory/config"
	"github.com/guttosm/pricehistory/internal/middleware"
)

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, CORS, ErrorHandler).
//   - Bounds every request by cfg.Server.RequestTimeout.
//   - Answers unknown routes with 404 and wrong methods with 405, both as {"detail": ...}.
//   - Mounts Swagger docs (/swagger/*any).
//   - Configures the stock routes.
//
// Note:
//   - Health, readiness and metrics endpoints are registered in app.InitializeApp().
func NewRouter(handler *Handler, cfg config.Config) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.CORS(cfg.CORS),
		middleware.ErrorHandler,
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	router.NoRoute(middleware.NotFound)
	router.NoMethod(middleware.MethodNotAllowed)

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── Stock history ────────────────────────────
	router.GET("/stock/:ticker", handler.GetStock)
	router.GET("/stocks", handler.GetStocks)

	return router
}
