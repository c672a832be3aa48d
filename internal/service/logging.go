package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/pricehistory/internal/domain/models"
)

// loggingMiddleware wraps HistoryService and logs every call. Failures are
// logged at error level, successes at debug.
type loggingMiddleware struct {
	logger zerolog.Logger
	svc    HistoryService
}

// NewLoggingMiddleware decorates svc with structured call logging.
func NewLoggingMiddleware(logger zerolog.Logger, svc HistoryService) HistoryService {
	return &loggingMiddleware{logger: logger, svc: svc}
}

func (s *loggingMiddleware) GetHistory(ctx context.Context, ticker string) (records []models.PriceRecord, err error) {
	defer func(begin time.Time) {
		s.event(err).
			Str("method", "GetHistory").
			Str("ticker", ticker).
			Int("rows", len(records)).
			Dur("elapsed", time.Since(begin)).
			Msg("history fetched")
	}(time.Now())
	return s.svc.GetHistory(ctx, ticker)
}

func (s *loggingMiddleware) GetHistories(ctx context.Context, tickers []string) (out map[string][]models.PriceRecord, err error) {
	defer func(begin time.Time) {
		s.event(err).
			Str("method", "GetHistories").
			Strs("tickers", tickers).
			Int("symbols", len(out)).
			Dur("elapsed", time.Since(begin)).
			Msg("histories fetched")
	}(time.Now())
	return s.svc.GetHistories(ctx, tickers)
}

func (s *loggingMiddleware) event(err error) *zerolog.Event {
	if err != nil {
		return s.logger.Error().Err(err)
	}
	return s.logger.Debug()
}
