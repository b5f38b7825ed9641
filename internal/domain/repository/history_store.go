package repository

import (
	"context"
	"time"

	"CoinDash/internal/domain/models"
)

// HistoryStore provides read-only access to the time-ordered price/volume
// series replayed by backtests. Series are returned ascending by timestamp.
// A per-symbol failure is reported back so the caller can skip that symbol
// and continue with the rest of the run.
type HistoryStore interface {
	GetSeries(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.PricePoint, error)
	GetLatestN(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.PricePoint, error)
}
