package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/pricehistory/config"
	"github.com/guttosm/pricehistory/internal/domain/models"
	"github.com/guttosm/pricehistory/internal/provider"
)

// clock is an indirection for the current time; tests override it.
var clock = time.Now

// HistoryService defines the business logic behind the history endpoints.
// It decouples HTTP handlers from the upstream provider.
type HistoryService interface {
	// GetHistory returns the daily records of ticker for the trailing
	// lookback window ending now. An empty slice is a valid answer.
	GetHistory(ctx context.Context, ticker string) ([]models.PriceRecord, error)
	// GetHistories runs GetHistory for every ticker concurrently. Any single
	// failure fails the whole call; no partial results are returned.
	GetHistories(ctx context.Context, tickers []string) (map[string][]models.PriceRecord, error)
}

// FetchError is the one failure kind surfaced by the service: the upstream
// call or the reshaping of its answer failed for Ticker.
type FetchError struct {
	Ticker string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch history for %s: %v", e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type historyService struct {
	provider     provider.HistoryProvider
	lookbackDays int
	parallel     int
}

// NewHistoryService wires a provider with the window and batch settings of cfg.
func NewHistoryService(p provider.HistoryProvider, cfg config.HistoryConfig) HistoryService {
	parallel := cfg.BatchParallel
	if parallel < 1 {
		parallel = 1
	}
	return &historyService{
		provider:     p,
		lookbackDays: cfg.LookbackDays,
		parallel:     parallel,
	}
}

// Window returns [end-lookbackDays, end] with end = now.
func Window(now time.Time, lookbackDays int) (start, end time.Time) {
	return now.AddDate(0, 0, -lookbackDays), now
}

func (s *historyService) GetHistory(ctx context.Context, ticker string) ([]models.PriceRecord, error) {
	start, end := Window(clock(), s.lookbackDays)

	bars, err := s.provider.FetchDailyHistory(ctx, ticker, start, end)
	if err != nil {
		return nil, &FetchError{Ticker: ticker, Err: err}
	}

	return Reshape(ticker, bars), nil
}

func (s *historyService) GetHistories(ctx context.Context, tickers []string) (map[string][]models.PriceRecord, error) {
	unique := uniqueTickers(tickers)
	results := make([][]models.PriceRecord, len(unique))

	// errgroup cancels siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, ticker := range unique {
		g.Go(func() error {
			records, err := s.GetHistory(gctx, ticker)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]models.PriceRecord, len(unique))
	for i, ticker := range unique {
		out[ticker] = results[i]
	}
	return out, nil
}

func uniqueTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
