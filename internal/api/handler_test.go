package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"

	"github.com/guttosm/pricehistory/internal/domain/dto"
	"github.com/guttosm/pricehistory/internal/domain/models"
	"github.com/guttosm/pricehistory/internal/middleware"
	"github.com/guttosm/pricehistory/internal/service"
)

type mockHistoryService struct {
	records   []models.PriceRecord
	batch     map[string][]models.PriceRecord
	err       error
	gotTicker string
	gotBatch  []string
}

func (m *mockHistoryService) GetHistory(_ context.Context, ticker string) ([]models.PriceRecord, error) {
	m.gotTicker = ticker
	return m.records, m.err
}

func (m *mockHistoryService) GetHistories(_ context.Context, tickers []string) (map[string][]models.PriceRecord, error) {
	m.gotBatch = tickers
	return m.batch, m.err
}

var _ service.HistoryService = (*mockHistoryService)(nil)

func setupRouterWithMock(s service.HistoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, 3)
	r := gin.New()
	r.Use(middleware.ErrorHandler)
	r.GET("/stock/:ticker", h.GetStock)
	r.GET("/stocks", h.GetStocks)
	return r
}

func record(symbol, date string, close float64) models.PriceRecord {
	return models.PriceRecord{
		Date:   date,
		Close:  null.FloatFrom(close),
		Volume: null.IntFrom(1000),
		Open:   null.FloatFrom(close - 1),
		High:   null.FloatFrom(close + 1),
		Low:    null.FloatFrom(close - 2),
		Symbol: symbol,
	}
}

func TestGetStock_TableDriven(t *testing.T) {
	cases := []struct {
		name   string
		svc    *mockHistoryService
		path   string
		status int
		body   string
	}{
		{
			name:   "success",
			svc:    &mockHistoryService{records: []models.PriceRecord{record("AAPL", "2025-09-18", 10)}},
			path:   "/stock/AAPL",
			status: http.StatusOK,
			body:   `{"data":[{"date":"2025-09-18","close":10,"volume":1000,"open":9,"high":11,"low":8,"symbol":"AAPL"}]}`,
		},
		{
			name:   "empty history",
			svc:    &mockHistoryService{records: []models.PriceRecord{}},
			path:   "/stock/NOPE",
			status: http.StatusOK,
			body:   `{"data":[]}`,
		},
		{
			name:   "nil history",
			svc:    &mockHistoryService{},
			path:   "/stock/NOPE",
			status: http.StatusOK,
			body:   `{"data":[]}`,
		},
		{
			name:   "upstream failure",
			svc:    &mockHistoryService{err: &service.FetchError{Ticker: "AAPL", Err: errors.New("connection refused")}},
			path:   "/stock/AAPL",
			status: http.StatusInternalServerError,
			body:   `{"detail":"fetch history for AAPL: connection refused"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Fatalf("body=%s\nwant %s", w.Body.String(), tc.body)
			}
		})
	}
}

func TestGetStock_TickerCaseUntouched(t *testing.T) {
	svc := &mockHistoryService{}
	r := setupRouterWithMock(svc)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stock/brk.B", nil))
	if svc.gotTicker != "brk.B" {
		t.Fatalf("ticker=%q, want brk.B", svc.gotTicker)
	}
}

func TestGetStocks_TableDriven(t *testing.T) {
	cases := []struct {
		name     string
		svc      *mockHistoryService
		query    string
		status   int
		wantSent []string
		assert   func(t *testing.T, body []byte)
	}{
		{
			name:   "missing symbols",
			svc:    &mockHistoryService{},
			query:  "/stocks",
			status: http.StatusBadRequest,
		},
		{
			name:   "blank symbols",
			svc:    &mockHistoryService{},
			query:  "/stocks?symbols=,%20,",
			status: http.StatusBadRequest,
		},
		{
			name:   "too many symbols",
			svc:    &mockHistoryService{},
			query:  "/stocks?symbols=A,B,C,D",
			status: http.StatusBadRequest,
		},
		{
			name:     "failure is atomic",
			svc:      &mockHistoryService{err: errors.New("boom")},
			query:    "/stocks?symbols=A,B",
			status:   http.StatusInternalServerError,
			wantSent: []string{"A", "B"},
		},
		{
			name: "success",
			svc: &mockHistoryService{batch: map[string][]models.PriceRecord{
				"AAPL": {record("AAPL", "2025-09-18", 10)},
				"MSFT": {},
			}},
			query:    "/stocks?symbols=AAPL,%20MSFT",
			status:   http.StatusOK,
			wantSent: []string{"AAPL", "MSFT"},
			assert: func(t *testing.T, body []byte) {
				var out dto.BatchHistoryResponse
				if err := json.Unmarshal(body, &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if len(out.Data["AAPL"]) != 1 || out.Data["AAPL"][0].Symbol != "AAPL" {
					t.Fatalf("unexpected AAPL data: %+v", out.Data["AAPL"])
				}
				if got, ok := out.Data["MSFT"]; !ok || len(got) != 0 {
					t.Fatalf("unexpected MSFT data: %+v", got)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.query, nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, w.Code, w.Body.String())
			}
			var e dto.ErrorResponse
			if tc.status != http.StatusOK {
				if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Detail == "" {
					t.Fatalf("expected detail body, got %s", w.Body.String())
				}
			}
			if tc.wantSent != nil {
				if len(tc.svc.gotBatch) != len(tc.wantSent) {
					t.Fatalf("sent %v, want %v", tc.svc.gotBatch, tc.wantSent)
				}
				for i := range tc.wantSent {
					if tc.svc.gotBatch[i] != tc.wantSent[i] {
						t.Fatalf("sent %v, want %v", tc.svc.gotBatch, tc.wantSent)
					}
				}
			}
			if tc.assert != nil {
				tc.assert(t, w.Body.Bytes())
			}
		})
	}
}
