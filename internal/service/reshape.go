package service

import "github.com/guttosm/pricehistory/internal/domain/models"

// Reshape maps upstream bars to canonical records for ticker.
//
// Each bar becomes exactly one record: the bar's date is formatted as a
// calendar day, the OHLCV fields are renamed and ticker is attached as
// symbol. Order is kept; missing values stay null. The result is never nil.
func Reshape(ticker string, bars []models.Bar) []models.PriceRecord {
	out := make([]models.PriceRecord, 0, len(bars))
	for _, b := range bars {
		out = append(out, models.PriceRecord{
			Date:   b.Date.Format(models.DateLayout),
			Close:  b.Close,
			Volume: b.Volume,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Symbol: ticker,
		})
	}
	return out
}
