package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinDash/internal/domain/models"
	drepo "CoinDash/internal/domain/repository"
)

// PriceProcessor routes incoming price points to the configured backend.
type PriceProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

// NewPriceProcessor creates a new PriceProcessor instance.
func NewPriceProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *PriceProcessor {
	return &PriceProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single price point to the configured backend.
func (p *PriceProcessor) Process(ctx context.Context, pt *models.PricePoint) error {
	if pt == nil {
		return fmt.Errorf("price point is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, pt)
	case "clickhouse":
		err = p.store.Store(ctx, pt)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process price point: %w", err)
	}

	p.metrics.RecordMessageSent(p.backend, pt.Symbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple price points in one backend call.
func (p *PriceProcessor) ProcessBatch(ctx context.Context, points []*models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, points)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, points)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, pt := range points {
		p.metrics.RecordMessageSent(p.backend, pt.Symbol)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *PriceProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
