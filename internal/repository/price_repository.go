package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CoinDash/internal/domain/models"
	"CoinDash/internal/domain/repository"
	pkgkafka "CoinDash/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, p *models.PricePoint) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source, event_id) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	// event_id derived from symbol+timestamp for idempotent replays
	eventID := fmt.Sprintf("%s-%d", p.Symbol, p.Timestamp.UnixMilli())
	_, err := s.db.ExecContext(ctx, q,
		p.Timestamp,
		p.Symbol,
		p.Price,
		p.Volume,
		"ws",
		eventID,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, points []*models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to keep statements bounded.
	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, p := range points[start:end] {
			if p == nil || p.Symbol == "" || p.Timestamp.IsZero() {
				continue
			}
			eventID := fmt.Sprintf("%s-%d", p.Symbol, p.Timestamp.UnixMilli())
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args, p.Timestamp, p.Symbol, p.Price, p.Volume, "ws", eventID)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.PricePoint, error) {
	q := fmt.Sprintf("SELECT symbol, ts, price, volume FROM %s WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Timestamp, &p.Price, &p.Volume); err != nil {
			return nil, err
		}
		points = append(points, &p)
	}
	return points, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, pt *models.PricePoint) error {
	return p.producer.Publish(ctx, p.topic, []byte(pt.Symbol), map[string]interface{}{
		"symbol": pt.Symbol,
		"t":      pt.Timestamp.UnixMilli(),
		"c":      pt.Price,
		"v":      pt.Volume,
	})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, points []*models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(points))
	for i, pt := range points {
		msgs[i] = pkgkafka.Message{
			Key: []byte(pt.Symbol),
			Value: map[string]interface{}{
				"symbol": pt.Symbol,
				"t":      pt.Timestamp.UnixMilli(),
				"c":      pt.Price,
				"v":      pt.Volume,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// KafkaEventPublisher streams simulation events to dedicated topics so the
// dashboard can render signals and trades as a run progresses.
type KafkaEventPublisher struct {
	producer     *pkgkafka.Producer
	signalsTopic string
	tradesTopic  string
}

func NewKafkaEventPublisher(producer *pkgkafka.Producer, signalsTopic, tradesTopic string) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer, signalsTopic: signalsTopic, tradesTopic: tradesTopic}
}

func (p *KafkaEventPublisher) PublishSignal(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.signalsTopic, []byte(s.Symbol), s)
}

func (p *KafkaEventPublisher) PublishTrade(ctx context.Context, t *models.Trade) error {
	return p.producer.Publish(ctx, p.tradesTopic, []byte(t.Symbol), t)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
