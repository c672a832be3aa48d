package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// DateLayout is the calendar-date format used on the wire (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Bar is one daily OHLCV row as delivered by an upstream provider, already
// mapped out of the provider's own wire shape.
//
// Date carries the exchange's location so that Date.Format(DateLayout) yields
// the trading-calendar day. Price and volume fields stay invalid (null) when
// the provider has no value for them, e.g. during a halted session.
type Bar struct {
	Date   time.Time
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Int
}

// PriceRecord is one trading day for one symbol in the canonical response
// shape. Field order here is the JSON field order.
//
// swagger:model PriceRecord
type PriceRecord struct {
	Date   string     `json:"date" example:"2025-09-19" swaggertype:"string"`
	Close  null.Float `json:"close" example:"245.5" swaggertype:"number"`
	Volume null.Int   `json:"volume" example:"163741300" swaggertype:"integer"`
	Open   null.Float `json:"open" example:"241.23" swaggertype:"number"`
	High   null.Float `json:"high" example:"246.3" swaggertype:"number"`
	Low    null.Float `json:"low" example:"240.21" swaggertype:"number"`
	Symbol string     `json:"symbol" example:"AAPL"`
}
