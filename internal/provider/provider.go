// Package provider adapts upstream market-data sources to a single
// daily-history contract.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/pricehistory/config"
	"github.com/guttosm/pricehistory/internal/domain/models"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown upstream provider")

// HistoryProvider fetches daily OHLCV bars for one ticker.
//
// FetchDailyHistory returns bars ordered as the upstream delivers them
// (earliest first) with at most one bar per calendar date. An empty slice with
// a nil error means the upstream has no data for the ticker/window.
type HistoryProvider interface {
	Name() string
	FetchDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error)
	Ping(ctx context.Context) error
}

// New builds the provider selected by cfg.Provider.
func New(cfg config.UpstreamConfig) (HistoryProvider, error) {
	switch cfg.Provider {
	case config.ProviderYahoo:
		return NewYahooProvider(cfg.BaseURL, cfg.UserAgent, cfg.Timeout), nil
	case config.ProviderPolygon:
		return NewPolygonProvider(cfg.PolygonAPIKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// dedupeByDate collapses bars that share a calendar date, keeping the later
// one in place of the earlier. Order of first appearance is preserved.
func dedupeByDate(bars []models.Bar) []models.Bar {
	if len(bars) < 2 {
		return bars
	}
	idx := make(map[string]int, len(bars))
	out := bars[:0]
	for _, b := range bars {
		key := b.Date.Format(models.DateLayout)
		if i, ok := idx[key]; ok {
			out[i] = b
			continue
		}
		idx[key] = len(out)
		out = append(out, b)
	}
	return out
}
