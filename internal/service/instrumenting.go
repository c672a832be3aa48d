package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/guttosm/pricehistory/internal/domain/models"
)

// instrumentingMiddleware wraps HistoryService and records request metrics.
type instrumentingMiddleware struct {
	reqCount    metrics.Counter
	reqDuration metrics.Histogram
	svc         HistoryService
}

// NewInstrumentingMiddleware decorates svc with a call counter and a latency
// histogram, both labelled by method and error.
func NewInstrumentingMiddleware(reqCount metrics.Counter, reqDuration metrics.Histogram, svc HistoryService) HistoryService {
	return &instrumentingMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		svc:         svc,
	}
}

func (s *instrumentingMiddleware) GetHistory(ctx context.Context, ticker string) (records []models.PriceRecord, err error) {
	defer func(begin time.Time) { s.recordMetrics("GetHistory", begin, err) }(time.Now())
	return s.svc.GetHistory(ctx, ticker)
}

func (s *instrumentingMiddleware) GetHistories(ctx context.Context, tickers []string) (out map[string][]models.PriceRecord, err error) {
	defer func(begin time.Time) { s.recordMetrics("GetHistories", begin, err) }(time.Now())
	return s.svc.GetHistories(ctx, tickers)
}

func (s *instrumentingMiddleware) recordMetrics(method string, begin time.Time, err error) {
	labels := []string{
		"method", method,
		"error", strconv.FormatBool(err != nil),
	}
	s.reqCount.With(labels...).Add(1)
	s.reqDuration.With(labels...).Observe(time.Since(begin).Seconds())
}
