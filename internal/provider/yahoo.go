package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	_ "time/tzdata" // exchange time zones on minimal images

	"github.com/guregu/null/v6"

	"github.com/guttosm/pricehistory/internal/domain/models"
	"github.com/guttosm/pricehistory/internal/logger"
)

const (
	yahooChartPath = "/v8/finance/chart/"
	yahooNotFound  = "Not Found"
)

// yahooChartResponse mirrors the subset of Yahoo's chart v8 payload we read.
// Quote values are pointers because Yahoo sends null for missing sessions.
type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooChartError) Error() string {
	return e.Code + ": " + e.Description
}

type yahooChartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
		GMTOffset            int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yahooQuote `json:"quote"`
	} `json:"indicators"`
}

type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// YahooProvider reads daily history from the Yahoo Finance chart API.
type YahooProvider struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewYahooProvider creates a provider against baseURL (e.g.
// "https://query2.finance.yahoo.com"). timeout bounds every upstream call.
func NewYahooProvider(baseURL, userAgent string, timeout time.Duration) *YahooProvider {
	return &YahooProvider{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// Name implements HistoryProvider.
func (y *YahooProvider) Name() string { return "yahoo" }

// FetchDailyHistory implements HistoryProvider.
//
// A chart error with code "Not Found" (unknown or delisted symbol) yields an
// empty result, as does a result without timestamps. Any other upstream
// error, non-OK status or undecodable body is returned as an error.
func (y *YahooProvider) FetchDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	log := logger.Component("provider")
	began := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.chartURL(ticker, start, end), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", y.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data for %s: %w", ticker, err)
	}
	defer func() { _ = resp.Body.Close() }()

	chart, err := decodeChart(resp)
	if err != nil {
		return nil, err
	}

	bars, err := chart.bars()
	if err != nil {
		return nil, fmt.Errorf("malformed upstream payload for %s: %w", ticker, err)
	}

	log.Debug().
		Str("provider", y.Name()).
		Str("ticker", ticker).
		Int("rows", len(bars)).
		Dur("elapsed", time.Since(began)).
		Msg("upstream fetch done")

	return bars, nil
}

// Ping checks that the upstream host answers HTTP at all.
func (y *YahooProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, y.baseURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", y.userAgent)
	resp, err := y.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (y *YahooProvider) chartURL(ticker string, start, end time.Time) string {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("includePrePost", "false")
	return y.baseURL + yahooChartPath + url.PathEscape(ticker) + "?" + q.Encode()
}

// decodeChart reads the body for 200 and 404 (Yahoo reports unknown symbols
// as 404 with a JSON chart error) and rejects every other status.
func decodeChart(resp *http.Response) (*yahooChartResult, error) {
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, string(body))
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if e := chart.Chart.Error; e != nil {
		if e.Code == yahooNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("API error: %w", e)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}
	return &chart.Chart.Result[0], nil
}

// bars maps the columnar chart result to one Bar per timestamp. A nil
// receiver is an empty result.
func (r *yahooChartResult) bars() ([]models.Bar, error) {
	if r == nil || len(r.Timestamp) == 0 {
		return []models.Bar{}, nil
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%d timestamps without quote data", len(r.Timestamp))
	}
	q := r.Indicators.Quote[0]
	n := len(r.Timestamp)
	for name, l := range map[string]int{
		"open": len(q.Open), "high": len(q.High), "low": len(q.Low),
		"close": len(q.Close), "volume": len(q.Volume),
	} {
		if l != n {
			return nil, fmt.Errorf("%s has %d values for %d timestamps", name, l, n)
		}
	}

	loc := r.location()
	out := make([]models.Bar, 0, n)
	for i, ts := range r.Timestamp {
		out = append(out, models.Bar{
			Date:   time.Unix(ts, 0).In(loc),
			Open:   null.FloatFromPtr(q.Open[i]),
			High:   null.FloatFromPtr(q.High[i]),
			Low:    null.FloatFromPtr(q.Low[i]),
			Close:  null.FloatFromPtr(q.Close[i]),
			Volume: null.IntFromPtr(q.Volume[i]),
		})
	}
	return dedupeByDate(out), nil
}

// location prefers the named exchange zone and falls back to the fixed
// offset Yahoo reports alongside it.
func (r *yahooChartResult) location() *time.Location {
	if name := r.Meta.ExchangeTimezoneName; name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", r.Meta.GMTOffset)
}
