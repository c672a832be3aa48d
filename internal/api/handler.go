package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/pricehistory/internal/domain/dto"
	"github.com/guttosm/pricehistory/internal/middleware"
	"github.com/guttosm/pricehistory/internal/service"
)

// Handler provides HTTP handlers for the price history endpoints.
//
// Responsibilities:
//   - Read the ticker(s) from the request
//   - Delegate to the history service
//   - Wrap results in the {"data": ...} envelope
//
// Failures from the service are not rendered here: they are recorded on the
// gin context and answered by middleware.ErrorHandler.
type Handler struct {
	svc        service.HistoryService
	maxSymbols int
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.HistoryService): history use cases.
//   - maxSymbols (int): upper bound on symbols accepted by GetStocks.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(svc service.HistoryService, maxSymbols int) *Handler {
	return &Handler{svc: svc, maxSymbols: maxSymbols}
}

// GetStock handles GET /stock/{ticker}.
//
// The ticker is used exactly as given in the path, case included, and is
// echoed as the symbol of every record.
//
// GetStock godoc
// @Summary      Daily price history for one ticker
// @Description  Returns the last year of daily OHLCV records for the ticker, oldest first
// @Tags         stock
// @Produce      json
// @Param        ticker  path      string                    true  "Ticker symbol"  example(AAPL)
// @Success      200     {object}  dto.HistoryResponse       "Success"
// @Failure      500     {object}  dto.ErrorResponse         "Upstream or processing failure"
// @Router       /stock/{ticker} [get]
func (h *Handler) GetStock(c *gin.Context) {
	ticker := c.Param("ticker")

	records, err := h.svc.GetHistory(c.Request.Context(), ticker)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, dto.NewHistoryResponse(records))
}

// GetStocks handles GET /stocks?symbols=A,B,...
//
// Every symbol is fetched concurrently; one failure fails the whole request.
//
// GetStocks godoc
// @Summary      Daily price history for several tickers
// @Description  Returns the last year of daily OHLCV records keyed by ticker
// @Tags         stock
// @Produce      json
// @Param        symbols  query     string                        true  "Comma-separated ticker symbols"  example(AAPL,MSFT)
// @Success      200      {object}  dto.BatchHistoryResponse      "Success"
// @Failure      400      {object}  dto.ErrorResponse             "Bad Request"
// @Failure      500      {object}  dto.ErrorResponse             "Upstream or processing failure"
// @Router       /stocks [get]
func (h *Handler) GetStocks(c *gin.Context) {
	symbols := parseSymbols(c.Query("symbols"))
	if len(symbols) == 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "symbols is required", nil)
		return
	}
	if h.maxSymbols > 0 && len(symbols) > h.maxSymbols {
		msg := fmt.Sprintf("too many symbols: %d (max %d)", len(symbols), h.maxSymbols)
		middleware.AbortWithError(c, http.StatusBadRequest, msg, nil)
		return
	}

	histories, err := h.svc.GetHistories(c.Request.Context(), symbols)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, dto.BatchHistoryResponse{Data: histories})
}

func parseSymbols(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
