package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted by UPSTREAM_PROVIDER.
const (
	ProviderYahoo   = "yahoo"
	ProviderPolygon = "polygon"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is built once at startup by LoadConfig and handed to app.InitializeApp by value.
// Nothing mutates it afterwards.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8000
//	CORS_ALLOW_ORIGINS=*
//	UPSTREAM_PROVIDER=yahoo
//	UPSTREAM_TIMEOUT=10s
//	HISTORY_LOOKBACK_DAYS=365
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	CORS     CORSConfig     // Cross-origin policy
	Upstream UpstreamConfig // Market-data provider settings
	History  HistoryConfig  // Window and batch limits
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        // Interface to bind; empty means all interfaces
	Port           string        // The TCP port the HTTP server will listen on (e.g., "8000")
	RequestTimeout time.Duration // Per-request deadline applied by the router
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// CORSConfig describes the cross-origin policy applied to every route.
//
// A single "*" entry in any list means "allow everything" for that dimension.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
}

// UpstreamConfig selects and tunes the market-data provider.
//
// Fields:
//   - Provider: "yahoo" (default) or "polygon".
//   - BaseURL: Yahoo chart API host; ignored by polygon.
//   - Timeout: HTTP client timeout for each upstream call.
//   - UserAgent: sent on Yahoo requests (the endpoint rejects empty agents).
//   - PolygonAPIKey: required when Provider is "polygon".
type UpstreamConfig struct {
	Provider      string
	BaseURL       string
	Timeout       time.Duration
	UserAgent     string
	PolygonAPIKey string
}

// HistoryConfig bounds the history window and the batch endpoint.
type HistoryConfig struct {
	LookbackDays    int
	BatchMaxSymbols int
	BatchParallel   int
}

// LoadConfig builds the Config by reading from .env file or directly from
// environment variables. The caller owns the returned value.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() Config {
	v := viper.New()

	// Default values
	v.SetDefault("SERVER_HOST", "")
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")

	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("CORS_ALLOW_METHODS", "*")
	v.SetDefault("CORS_ALLOW_HEADERS", "*")
	v.SetDefault("CORS_ALLOW_CREDENTIALS", true)

	v.SetDefault("UPSTREAM_PROVIDER", ProviderYahoo)
	v.SetDefault("UPSTREAM_BASE_URL", "https://query2.finance.yahoo.com")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("UPSTREAM_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/91.0.4472.124")
	v.SetDefault("POLYGON_API_KEY", "")

	v.SetDefault("HISTORY_LOOKBACK_DAYS", 365)
	v.SetDefault("BATCH_MAX_SYMBOLS", 20)
	v.SetDefault("BATCH_PARALLEL", 4)

	// Optionally read from .env if present (common in local dev)
	v.SetConfigFile(".env")
	_ = v.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	v.AutomaticEnv()

	cfg := Config{
		Server: ServerConfig{
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetString("SERVER_PORT"),
			RequestTimeout: v.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		CORS: CORSConfig{
			AllowOrigins:     splitList(v.GetString("CORS_ALLOW_ORIGINS")),
			AllowMethods:     splitList(v.GetString("CORS_ALLOW_METHODS")),
			AllowHeaders:     splitList(v.GetString("CORS_ALLOW_HEADERS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
		},
		Upstream: UpstreamConfig{
			Provider:      strings.ToLower(strings.TrimSpace(v.GetString("UPSTREAM_PROVIDER"))),
			BaseURL:       strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
			Timeout:       v.GetDuration("UPSTREAM_TIMEOUT"),
			UserAgent:     v.GetString("UPSTREAM_USER_AGENT"),
			PolygonAPIKey: v.GetString("POLYGON_API_KEY"),
		},
		History: HistoryConfig{
			LookbackDays:    v.GetInt("HISTORY_LOOKBACK_DAYS"),
			BatchMaxSymbols: v.GetInt("BATCH_MAX_SYMBOLS"),
			BatchParallel:   v.GetInt("BATCH_PARALLEL"),
		},
	}

	// Validate critical fields
	validateConfig(cfg)

	return cfg
}

// splitList turns "a, b ,c" into []string{"a","b","c"}, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// problems returns the names of required settings that are missing or invalid.
func (c Config) problems() []string {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	switch c.Upstream.Provider {
	case ProviderYahoo:
		if c.Upstream.BaseURL == "" {
			missing = append(missing, "UPSTREAM_BASE_URL")
		}
	case ProviderPolygon:
		if c.Upstream.PolygonAPIKey == "" {
			missing = append(missing, "POLYGON_API_KEY")
		}
	default:
		missing = append(missing, "UPSTREAM_PROVIDER")
	}
	if c.Upstream.Timeout <= 0 {
		missing = append(missing, "UPSTREAM_TIMEOUT")
	}
	if c.History.LookbackDays <= 0 {
		missing = append(missing, "HISTORY_LOOKBACK_DAYS")
	}
	if c.History.BatchMaxSymbols <= 0 {
		missing = append(missing, "BATCH_MAX_SYMBOLS")
	}
	if c.History.BatchParallel <= 0 {
		missing = append(missing, "BATCH_PARALLEL")
	}

	return missing
}

// validateConfig terminates the application if required variables are
// missing or invalid.
func validateConfig(cfg Config) {
	if missing := cfg.problems(); len(missing) > 0 {
		log.Fatalf("missing or invalid required environment variables: %v\n", missing)
	}
}
