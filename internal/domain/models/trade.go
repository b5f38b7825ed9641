package models

import "time"

// TradeSide is the executed direction of a trade.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Trade is an executed order. Append-only: once created it is never mutated.
type Trade struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      TradeSide `json:"side"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`

	// SELL only
	ProfitRate    float64 `json:"profit_rate,omitempty"`      // percent vs average cost
	AvgCostAtSale float64 `json:"avg_cost_at_sale,omitempty"` // cost basis when sold
}

// TradePair is a FIFO-matched open/close round trip, derived from the trade
// log after a run. Never created during simulation.
type TradePair struct {
	Symbol      string  `json:"symbol"`
	BuyPrice    float64 `json:"buy_price"`
	SellPrice   float64 `json:"sell_price"`
	Quantity    float64 `json:"quantity"`
	ProfitRate  float64 `json:"profit_rate"` // percent
	HoldingDays int     `json:"holding_days"`
	Profit      float64 `json:"profit"`
}
