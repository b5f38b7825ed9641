package models

// Holding is a per-symbol portfolio entry. Mutated exclusively by the
// simulator: BUY updates quantity and weighted-average cost, SELL only
// decrements quantity. When Quantity is 0 the AverageCost is stale and
// must not be read.
type Holding struct {
	Quantity    float64 `json:"quantity"`
	AverageCost float64 `json:"average_cost"`
	LastPrice   float64 `json:"last_price"`
}

// Portfolio is the simulator's mutable state: cash plus holdings keyed by
// symbol. It has a single owner (the running backtest) and is discarded at
// simulation end; metrics are derived from the trade log and equity curve.
type Portfolio struct {
	Cash     float64            `json:"cash"`
	Holdings map[string]Holding `json:"holdings"`
}

// NewPortfolio creates a portfolio with the given starting cash and no
// holdings.
func NewPortfolio(cash float64) *Portfolio {
	return &Portfolio{
		Cash:     cash,
		Holdings: make(map[string]Holding),
	}
}

// Value returns cash plus every holding marked at its last known price.
func (p *Portfolio) Value() float64 {
	v := p.Cash
	for _, h := range p.Holdings {
		v += h.Quantity * h.LastPrice
	}
	return v
}
