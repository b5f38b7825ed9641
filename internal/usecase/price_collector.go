package usecase

import (
	"context"

	"CoinDash/internal/domain/models"
	drepo "CoinDash/internal/domain/repository"
	mid "CoinDash/internal/middleware"
)

// PriceCollector consumes the live market stream and forwards points into
// the ingest pipeline.
type PriceCollector struct {
	stream  drepo.MarketStream
	proc    *PriceProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewPriceCollector creates a new PriceCollector instance.
func NewPriceCollector(stream drepo.MarketStream, proc *PriceProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *PriceCollector {
	return &PriceCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *PriceCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *PriceCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	ptCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, ptCh, errCh)
	return nil
}

func (c *PriceCollector) consume(ctx context.Context, ptCh <-chan *models.PricePoint, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case pt := <-ptCh:
			if pt == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, pt)
			} else {
				_ = c.proc.Process(ctx, pt)
			}
			c.metrics.RecordLastPrice(pt.Symbol, pt.Price)
		}
	}
}

func (c *PriceCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying PriceProcessor for lifecycle management.
func (c *PriceCollector) Processor() *PriceProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *PriceCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
