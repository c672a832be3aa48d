package main

//
//  @title           pricehistory API
//  @version         1.0
//  @description     Daily OHLCV price history for stock tickers, served over HTTP.
//  @termsOfService  https://github.com/guttosm/pricehistory
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/pricehistory
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8000
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        stock
//  @tag.description Daily price history per ticker
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/pricehistory/config"
	_ "github.com/guttosm/pricehistory/docs" // swagger docs
	"github.com/guttosm/pricehistory/internal/app"
	"github.com/guttosm/pricehistory/internal/domain/dto"
	"github.com/guttosm/pricehistory/internal/logger"
	"github.com/guttosm/pricehistory/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - addr (string): host:port to listen on; an empty host means all interfaces.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, addr string) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("addr", addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runFetch writes the {"data": [...]} document for one ticker to out.
func runFetch(ctx context.Context, svc service.HistoryService, ticker string, out io.Writer) error {
	if ticker == "" {
		return errors.New("--ticker is required in fetch mode")
	}

	records, err := svc.GetHistory(ctx, ticker)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dto.NewHistoryResponse(records)); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// fetchMode runs the one-shot fetch: the document goes to stdout and every
// log line to stderr, so stdout always parses as a single JSON value.
func fetchMode(ctx context.Context, cfg config.Config, ticker string, stdout, stderr io.Writer) error {
	logger.InitWithWriter(stderr)

	svc, err := app.NewHistoryService(cfg)
	if err != nil {
		return fmt.Errorf("app init error: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Server.RequestTimeout)
	defer cancel()

	return runFetch(fetchCtx, svc, ticker, stdout)
}

// main is the entry point of the pricehistory application.
//
// Modes (selected via --mode flag):
//   - api:   Starts the REST API (default).
//   - fetch: Prints the history of --ticker to stdout and exits.
//
// Flags:
//   - --mode:   Execution mode ("api" or "fetch"). Default: "api".
//   - --ticker: Ticker symbol for fetch mode.
//   - --port:   Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	cfg := config.LoadConfig()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api or fetch")
	ticker := flag.String("ticker", "", "Ticker symbol for fetch mode")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	flag.Parse()
	cfg.Server.Port = *port

	switch *mode {
	case "fetch":
		if err := fetchMode(ctx, cfg, *ticker, os.Stdout, os.Stderr); err != nil {
			logger.L().Fatal().Err(err).Str("ticker", *ticker).Msg("fetch failed")
		}

	case "api":
		// Initialize JSON logger
		logger.Init()

		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, cfg.Server.Addr())
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.InitWithWriter(os.Stderr)
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
