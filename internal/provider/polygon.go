package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/guregu/null/v6"
	polygon "github.com/polygon-io/client-go/rest"
	pmodels "github.com/polygon-io/client-go/rest/models"

	"github.com/guttosm/pricehistory/internal/domain/models"
	"github.com/guttosm/pricehistory/internal/logger"
)

// polygonMarketZone is the zone Polygon aligns daily US equity bars to.
const polygonMarketZone = "America/New_York"

// errMissingAPIKey is returned when the polygon provider runs without a key.
var errMissingAPIKey = errors.New("missing POLYGON_API_KEY")

// aggsLister returns all daily aggregates for params, draining pagination.
type aggsLister func(ctx context.Context, params *pmodels.ListAggsParams) ([]pmodels.Agg, error)

// PolygonProvider reads daily history from Polygon.io aggregate bars.
type PolygonProvider struct {
	apiKey  string
	timeout time.Duration
	list    aggsLister
	loc     *time.Location
}

// NewPolygonProvider creates a provider backed by the official Polygon REST
// client. timeout bounds each fetch.
func NewPolygonProvider(apiKey string, timeout time.Duration) *PolygonProvider {
	client := polygon.New(apiKey)
	return newPolygonProvider(apiKey, timeout, func(ctx context.Context, params *pmodels.ListAggsParams) ([]pmodels.Agg, error) {
		it := client.ListAggs(ctx, params)
		var aggs []pmodels.Agg
		for it.Next() {
			aggs = append(aggs, it.Item())
		}
		if err := it.Err(); err != nil {
			return nil, err
		}
		return aggs, nil
	})
}

func newPolygonProvider(apiKey string, timeout time.Duration, list aggsLister) *PolygonProvider {
	loc, err := time.LoadLocation(polygonMarketZone)
	if err != nil {
		loc = time.UTC
	}
	return &PolygonProvider{apiKey: apiKey, timeout: timeout, list: list, loc: loc}
}

// Name implements HistoryProvider.
func (p *PolygonProvider) Name() string { return "polygon" }

// FetchDailyHistory implements HistoryProvider. Unknown tickers come back
// from Polygon as zero results and therefore as an empty slice.
func (p *PolygonProvider) FetchDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	if p.apiKey == "" {
		return nil, errMissingAPIKey
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	began := time.Now()
	params := pmodels.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   pmodels.Day,
		From:       pmodels.Millis(start),
		To:         pmodels.Millis(end),
	}.WithOrder(pmodels.Asc).WithAdjusted(true)

	aggs, err := p.list(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data for %s: %w", ticker, err)
	}

	bars := make([]models.Bar, 0, len(aggs))
	for _, a := range aggs {
		bars = append(bars, p.barFromAgg(a))
	}
	bars = dedupeByDate(bars)

	log := logger.Component("provider")
	log.Debug().
		Str("provider", p.Name()).
		Str("ticker", ticker).
		Int("rows", len(bars)).
		Dur("elapsed", time.Since(began)).
		Msg("upstream fetch done")

	return bars, nil
}

// Ping reports whether the provider is usable. Polygon has no unauthenticated
// health endpoint, so a configured key is the readiness signal.
func (p *PolygonProvider) Ping(context.Context) error {
	if p.apiKey == "" {
		return errMissingAPIKey
	}
	return nil
}

func (p *PolygonProvider) barFromAgg(a pmodels.Agg) models.Bar {
	return models.Bar{
		Date:   time.Time(a.Timestamp).In(p.loc),
		Open:   null.FloatFrom(a.Open),
		High:   null.FloatFrom(a.High),
		Low:    null.FloatFrom(a.Low),
		Close:  null.FloatFrom(a.Close),
		Volume: null.IntFrom(int64(math.Round(a.Volume))),
	}
}
