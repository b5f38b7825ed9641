package models

import "time"

// PricePoint is one observation of an instrument's price/volume series.
// Series are ordered ascending by timestamp and immutable once produced
// by the data source.
type PricePoint struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"` // optional; 0 when the source has none
}

// Quote is a spot price snapshot served to dashboard widgets.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change24h float64   `json:"change_24h"` // percent
	Timestamp time.Time `json:"timestamp"`
}
