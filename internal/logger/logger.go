package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every log line.
const ServiceName = "pricehistory"

var (
	current atomic.Pointer[zerolog.Logger]
	lazy    sync.Once
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Init configures the global JSON logger writing to stdout.
//
// Environment variables (optional):
//   - LOG_LEVEL: debug|info|warn|error (default: info)
//   - LOG_PRETTY: true|false (default: false)
func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter is Init with an explicit destination. Call it before the
// logger is shared across goroutines; readers already holding the previous
// logger keep using it.
func InitWithWriter(out io.Writer) {
	level := parseLevel(getenv("LOG_LEVEL", "info"))
	pretty := strings.EqualFold(getenv("LOG_PRETTY", "false"), "true")

	w := out
	if pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	l := zerolog.New(w).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger().
		Level(level)
	current.Store(&l)
}

// L returns the global logger. Call Init() once on startup; without it the
// first caller initializes the stdout logger, exactly once.
func L() *zerolog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	lazy.Do(func() {
		if current.Load() == nil {
			Init()
		}
	})
	return current.Load()
}

// Component returns a child logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
