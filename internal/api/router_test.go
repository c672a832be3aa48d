package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pricehistory/config"
	_ "github.com/guttosm/pricehistory/docs"
	"github.com/guttosm/pricehistory/internal/domain/dto"
	"github.com/guttosm/pricehistory/internal/domain/models"
	"github.com/guttosm/pricehistory/internal/service"
)

var testConfig = config.Config{
	Server: config.ServerConfig{Port: "8000", RequestTimeout: 5 * time.Second},
	CORS: config.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"*"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	},
	History: config.HistoryConfig{LookbackDays: 365, BatchMaxSymbols: 5, BatchParallel: 2},
}

// echoService answers every ticker with one record stamped with that ticker.
type echoService struct {
	err         error
	sawDeadline bool
}

func (s *echoService) GetHistory(ctx context.Context, ticker string) ([]models.PriceRecord, error) {
	_, s.sawDeadline = ctx.Deadline()
	if s.err != nil {
		return nil, s.err
	}
	return []models.PriceRecord{{Date: "2025-09-18", Symbol: ticker}}, nil
}

func (s *echoService) GetHistories(ctx context.Context, tickers []string) (map[string][]models.PriceRecord, error) {
	out := make(map[string][]models.PriceRecord, len(tickers))
	for _, t := range tickers {
		recs, err := s.GetHistory(ctx, t)
		if err != nil {
			return nil, err
		}
		out[t] = recs
	}
	return out, nil
}

var _ service.HistoryService = (*echoService)(nil)

func newTestRouter(svc service.HistoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandler(svc, testConfig.History.BatchMaxSymbols), testConfig)
}

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	svc := &echoService{}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/stock/AAPL", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Fatalf("expected origin echoed, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if !svc.sawDeadline {
		t.Fatalf("expected request timeout to bound the service context")
	}

	var out dto.HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if len(out.Data) != 1 || out.Data[0].Symbol != "AAPL" {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestNewRouter_ErrorBoundary(t *testing.T) {
	r := newTestRouter(&echoService{err: errors.New("upstream exploded")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock/AAPL", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var out dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Detail != "upstream exploded" {
		t.Fatalf("detail=%q", out.Detail)
	}
}

func TestNewRouter_UnknownRouteAndMethod(t *testing.T) {
	r := newTestRouter(&echoService{})

	cases := []struct {
		method, path string
		want         int
		detail       string
	}{
		{http.MethodGet, "/nope", http.StatusNotFound, "Not Found"},
		{http.MethodDelete, "/stock/AAPL", http.StatusMethodNotAllowed, "Method Not Allowed"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.want {
			t.Fatalf("%s %s: want %d got %d", tc.method, tc.path, tc.want, w.Code)
		}
		var out dto.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.Detail != tc.detail {
			t.Fatalf("%s %s: body %s", tc.method, tc.path, w.Body.String())
		}
	}
}

func TestNewRouter_Preflight(t *testing.T) {
	r := newTestRouter(&echoService{})

	for _, path := range []string{"/stock/AAPL", "/stocks", "/anything/else"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://app.example")
		req.Header.Set("Access-Control-Request-Method", "GET")
		req.Header.Set("Access-Control-Request-Headers", "X-Custom")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("%s: expected 204, got %d", path, w.Code)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "https://app.example" ||
			w.Header().Get("Access-Control-Allow-Credentials") != "true" ||
			w.Header().Get("Access-Control-Allow-Headers") != "X-Custom" ||
			w.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Fatalf("%s: unexpected preflight headers %v", path, w.Header())
		}
	}
}

func TestNewRouter_ConcurrentRequestsKeepSymbols(t *testing.T) {
	r := newTestRouter(&concurrentEcho{})
	tickers := []string{"AAPL", "MSFT", "GOOG", "TSLA", "AMZN", "NVDA"}

	var wg sync.WaitGroup
	errs := make(chan string, len(tickers)*10)
	for i := 0; i < 10; i++ {
		for _, ticker := range tickers {
			wg.Add(1)
			go func(ticker string) {
				defer wg.Done()
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock/"+ticker, nil))
				var out dto.HistoryResponse
				if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
					errs <- err.Error()
					return
				}
				for _, rec := range out.Data {
					if rec.Symbol != ticker {
						errs <- ticker + " got " + rec.Symbol
					}
				}
			}(ticker)
		}
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}

// concurrentEcho is echoService without shared mutable fields.
type concurrentEcho struct{}

func (concurrentEcho) GetHistory(_ context.Context, ticker string) ([]models.PriceRecord, error) {
	return []models.PriceRecord{{Date: "2025-09-17", Symbol: ticker}, {Date: "2025-09-18", Symbol: ticker}}, nil
}

func (concurrentEcho) GetHistories(context.Context, []string) (map[string][]models.PriceRecord, error) {
	return nil, nil
}

func TestNewRouter_Batch(t *testing.T) {
	r := newTestRouter(&echoService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stocks?symbols=AAPL,MSFT", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out dto.BatchHistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Data["AAPL"][0].Symbol != "AAPL" || out.Data["MSFT"][0].Symbol != "MSFT" {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestNewRouter_Swagger(t *testing.T) {
	r := newTestRouter(&echoService{})

	cases := []struct {
		path     string
		contains string
	}{
		{path: "/swagger/index.html", contains: "swagger-ui"},
		{path: "/swagger/doc.json", contains: "/stock/{ticker}"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.path, w.Code)
		}
		if !strings.Contains(w.Body.String(), tc.contains) {
			t.Fatalf("%s: body does not mention %q", tc.path, tc.contains)
		}
	}
}
