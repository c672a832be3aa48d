package models

import (
	"encoding/json"
	"testing"

	"github.com/guregu/null/v6"
)

func TestPriceRecord_JSONFieldOrder(t *testing.T) {
	rec := PriceRecord{
		Date:   "2025-01-02",
		Close:  null.FloatFrom(10.5),
		Volume: null.IntFrom(100),
		Open:   null.FloatFrom(10),
		High:   null.FloatFrom(11),
		Low:    null.FloatFrom(9.5),
		Symbol: "AAPL",
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"date":"2025-01-02","close":10.5,"volume":100,"open":10,"high":11,"low":9.5,"symbol":"AAPL"}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}

func TestPriceRecord_MissingValuesAreNull(t *testing.T) {
	rec := PriceRecord{Date: "2025-01-02", Symbol: "X"}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"date":"2025-01-02","close":null,"volume":null,"open":null,"high":null,"low":null,"symbol":"X"}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}
