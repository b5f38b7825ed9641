package repository

import (
	"context"
	"time"

	"CoinDash/internal/domain/models"
)

// MarketStream is a live price feed from an exchange WebSocket.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PricePoint, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher forwards raw price points to the message bus.
type Publisher interface {
	Publish(ctx context.Context, p *models.PricePoint) error
	PublishBatch(ctx context.Context, points []*models.PricePoint) error
	Close() error
}

// Storage persists raw price points.
type Storage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, p *models.PricePoint) error
	StoreBatch(ctx context.Context, points []*models.PricePoint) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.PricePoint, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher streams simulation observer events (signals, executed
// trades). Fire-and-forget: failures are logged and never abort a run.
type EventPublisher interface {
	PublishSignal(ctx context.Context, s *models.Signal) error
	PublishTrade(ctx context.Context, t *models.Trade) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordSignal(symbol, sigType string)
	RecordTrade(symbol, side string)
	RecordRunState(state string)
}
