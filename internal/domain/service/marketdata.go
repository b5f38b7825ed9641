package service

import (
	"context"

	"CoinDash/internal/domain/models"
)

// QuoteProvider serves spot quotes for dashboard widgets and portfolio
// valuation.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (models.Quote, error)
}

// NewsProvider fetches recent headlines for a symbol.
type NewsProvider interface {
	Latest(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}
