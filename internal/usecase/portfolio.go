package usecase

import (
	"context"
	"fmt"
	"time"

	domsvc "CoinDash/internal/domain/service"
	applogger "CoinDash/pkg/logger"
)

// Position is one live holding submitted for valuation.
type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	AvgCost  float64 `json:"avg_cost"`
}

// ValuedPosition is a position marked at the latest quote.
type ValuedPosition struct {
	Position
	Price      float64 `json:"price"`
	Value      float64 `json:"value"`
	ProfitRate float64 `json:"profit_rate"` // percent vs avg cost, 0 when no cost basis
}

// PortfolioValuation is the aggregate mark-to-market of submitted positions.
type PortfolioValuation struct {
	Cash       float64          `json:"cash"`
	TotalValue float64          `json:"total_value"`
	Positions  []ValuedPosition `json:"positions"`
	Errors     map[string]string `json:"errors,omitempty"` // symbol -> quote failure
	Timestamp  time.Time        `json:"timestamp"`
}

// PortfolioUseCase values live holdings against current quotes.
type PortfolioUseCase struct {
	quotes domsvc.QuoteProvider
	log    *applogger.Logger
}

func NewPortfolioUseCase(quotes domsvc.QuoteProvider, log *applogger.Logger) *PortfolioUseCase {
	return &PortfolioUseCase{quotes: quotes, log: log}
}

// Value marks each position at its latest quote. A symbol whose quote fails
// is reported in Errors and valued at zero rather than failing the request.
func (uc *PortfolioUseCase) Value(ctx context.Context, cash float64, positions []Position) (*PortfolioValuation, error) {
	if cash < 0 {
		return nil, fmt.Errorf("cash must be >= 0")
	}

	res := &PortfolioValuation{
		Cash:       cash,
		TotalValue: cash,
		Positions:  make([]ValuedPosition, 0, len(positions)),
		Timestamp:  time.Now(),
	}

	for _, pos := range positions {
		if pos.Symbol == "" || pos.Quantity <= 0 {
			continue
		}
		vp := ValuedPosition{Position: pos}
		q, err := uc.quotes.Quote(ctx, pos.Symbol)
		if err != nil {
			if res.Errors == nil {
				res.Errors = make(map[string]string)
			}
			res.Errors[pos.Symbol] = err.Error()
			uc.log.Warn("quote failed during valuation",
				applogger.String("symbol", pos.Symbol),
				applogger.Error(err))
			res.Positions = append(res.Positions, vp)
			continue
		}
		vp.Price = q.Price
		vp.Value = pos.Quantity * q.Price
		if pos.AvgCost > 0 {
			vp.ProfitRate = (q.Price - pos.AvgCost) / pos.AvgCost * 100
		}
		res.TotalValue += vp.Value
		res.Positions = append(res.Positions, vp)
	}
	return res, nil
}
