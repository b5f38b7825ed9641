package models

import (
	"fmt"
	"time"
)

// RunState is the lifecycle state of a backtest run.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// Trade rejection reasons returned synchronously to the caller. A rejected
// attempt leaves no record in the trade log.
const (
	RejectInsufficientBuySize = "insufficient buy size"
	RejectNoHolding           = "no holding to sell"
)

// DefaultInitialCapital is the starting cash balance when the config leaves
// it unset.
const DefaultInitialCapital = 10_000_000

// Sizing is the trade-sizing configuration applied per signal.
type Sizing struct {
	BuyFraction    float64 `json:"buy_fraction"`     // fraction of cash per BUY
	MaxBuyNotional float64 `json:"max_buy_notional"` // cap on a single BUY
	SellFraction   float64 `json:"sell_fraction"`    // fraction of the holding per SELL
}

// DefaultSizing returns the sizing rules used when the config leaves them
// unset: 10% of cash capped at 1,000,000 per BUY, 80% of the holding per SELL.
func DefaultSizing() Sizing {
	return Sizing{
		BuyFraction:    0.10,
		MaxBuyNotional: 1_000_000,
		SellFraction:   0.80,
	}
}

// BacktestConfig describes one simulation run.
type BacktestConfig struct {
	Symbols        []string  `json:"symbols"`
	Strategy       string    `json:"strategy"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	InitialCapital float64   `json:"initial_capital"`
	Sizing         Sizing    `json:"sizing"`
}

// Normalize fills unset fields with defaults.
func (c *BacktestConfig) Normalize() {
	if c.InitialCapital <= 0 {
		c.InitialCapital = DefaultInitialCapital
	}
	if c.Sizing.BuyFraction <= 0 {
		c.Sizing.BuyFraction = DefaultSizing().BuyFraction
	}
	if c.Sizing.MaxBuyNotional <= 0 {
		c.Sizing.MaxBuyNotional = DefaultSizing().MaxBuyNotional
	}
	if c.Sizing.SellFraction <= 0 || c.Sizing.SellFraction > 1 {
		c.Sizing.SellFraction = DefaultSizing().SellFraction
	}
	if c.Strategy == "" {
		c.Strategy = "composite"
	}
}

// EquityPoint is one sample of the realized portfolio value over time.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// BacktestResult is the terminal aggregate of a run.
type BacktestResult struct {
	TotalReturn      float64 `json:"total_return"`      // percent
	WinRate          float64 `json:"win_rate"`          // percent of winning pairs
	TotalTrades      int     `json:"total_trades"`
	WinTrades        int     `json:"win_trades"`
	MaxDrawdown      float64 `json:"max_drawdown"`      // percent, peak to trough
	SharpeRatio      float64 `json:"sharpe_ratio"`
	AnnualizedReturn float64 `json:"annualized_return"` // percent
	AvgHoldingPeriod float64 `json:"avg_holding_period"` // days
	TradingFrequency float64 `json:"trading_frequency"`  // trades per 30 days

	Trades     []Trade     `json:"trades"`
	Signals    []Signal    `json:"signals"`
	TradePairs []TradePair `json:"trade_pairs"`
}

// InvariantViolationError reports internal state that must never occur if
// sizing rules are applied correctly (negative cash or quantity). It is the
// only error class that aborts a run.
type InvariantViolationError struct {
	Op     string
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}
