package dto

import "github.com/guttosm/pricehistory/internal/domain/models"

// HistoryResponse represents the JSON structure returned by GET /stock/{ticker}.
//
// Data is never nil once built through NewHistoryResponse, so an empty window
// serializes as "data": [] rather than null.
type HistoryResponse struct {
	Data []models.PriceRecord `json:"data"`
}

// NewHistoryResponse wraps records, normalizing nil to an empty slice.
func NewHistoryResponse(records []models.PriceRecord) HistoryResponse {
	if records == nil {
		records = []models.PriceRecord{}
	}
	return HistoryResponse{Data: records}
}

// BatchHistoryResponse represents the JSON structure returned by GET /stocks.
// Keys are the symbols exactly as requested.
type BatchHistoryResponse struct {
	Data map[string][]models.PriceRecord `json:"data"`
}
