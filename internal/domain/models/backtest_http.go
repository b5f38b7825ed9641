package models

// Requests for the dashboard HTTP endpoints. Defined in domain for
// consistency and reuse.

type BacktestRequest struct {
	Symbols        []string `json:"symbols" validate:"required,min=1,dive,required"`
	Strategy       string   `json:"strategy" default:"composite"`
	Start          string   `json:"start" validate:"required"`
	End            string   `json:"end" validate:"required"`
	InitialCapital float64  `json:"initial_capital" default:"10000000" validate:"gte=0"`
	BuyFraction    float64  `json:"buy_fraction" validate:"gte=0,lte=1"`
	MaxBuyNotional float64  `json:"max_buy_notional" validate:"gte=0"`
	SellFraction   float64  `json:"sell_fraction" validate:"gte=0,lte=1"`
	TF             string   `json:"tf" default:"1d" validate:"oneof=1h 4h 1d"`
	// Synthetic replays a seeded random-walk series instead of stored
	// history. Never implied; the core only sees synthetic data when this
	// flag is set explicitly.
	Synthetic bool  `json:"synthetic"`
	Seed      int64 `json:"seed"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	TF     string `query:"tf" json:"tf" default:"1d" validate:"oneof=1h 4h 1d"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=50000"`
}

type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type NewsScoreRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=100"`
}

// PortfolioValueRequest values a set of dashboard holdings at current quotes.
type PortfolioValueRequest struct {
	Cash      float64         `json:"cash" validate:"gte=0"`
	Positions []PositionInput `json:"positions" validate:"required,min=1,dive"`
}

type PositionInput struct {
	Symbol   string  `json:"symbol" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	AvgCost  float64 `json:"avg_cost" validate:"gte=0"`
}
