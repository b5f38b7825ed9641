package usecase

import (
	"context"
	"encoding/json"
	"time"

	"CoinDash/internal/domain/models"
	domrepo "CoinDash/internal/domain/repository"
	pkgkafka "CoinDash/pkg/kafka"
)

// KafkaPricesHandler consumes Kafka price messages and writes to storage.
type KafkaPricesHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaPricesHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaPricesHandler {
	return &KafkaPricesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaPricesHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, c, v}
func (h *KafkaPricesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	ts := time.UnixMilli(m.T)
	if m.T < 1e11 { // seconds
		ts = time.Unix(m.T, 0)
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.PricePoint{
		Symbol:    m.Symbol,
		Timestamp: ts,
		Price:     m.C,
		Volume:    m.V,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaPricesHandler)(nil)
