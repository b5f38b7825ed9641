package models

import "time"

// SignalType is the binary trade signal consumed by the simulator.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// Recommendation is the five-band reading shown on the dashboard.
type Recommendation string

const (
	RecStrongBuy Recommendation = "STRONG_BUY"
	RecBuy       Recommendation = "BUY"
	RecHold      Recommendation = "HOLD"
	RecWeakSell  Recommendation = "WEAK_SELL"
	RecSell      Recommendation = "SELL"
)

// Signal is one classified trade signal for a symbol on a simulated day.
// Created by the signal generator, consumed immediately by the simulator,
// then retained only in a read-only signal log.
type Signal struct {
	Symbol         string         `json:"symbol"`
	Type           SignalType     `json:"type"`
	Recommendation Recommendation `json:"recommendation"`
	Price          float64        `json:"price"`
	Score          float64        `json:"score"`      // 0..10 composite
	Confidence     float64        `json:"confidence"` // 0..1
	Reason         string         `json:"reason"`
	Timestamp      time.Time      `json:"timestamp"`
}
