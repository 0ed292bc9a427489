package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
	"github.com/ybc112/AetherPay/internal/domain/repository"
	pkgkafka "github.com/ybc112/AetherPay/pkg/kafka"
)

// ClickHouseRateStore implements RateStore for ClickHouse.
type ClickHouseRateStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseRateStore creates ClickHouse rate storage.
func NewClickHouseRateStore(db *sql.DB, table string) repository.RateStore {
	return &ClickHouseRateStore{db: db, table: table}
}

func (s *ClickHouseRateStore) Init(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts DateTime64(3),
		pair LowCardinality(String),
		price Float64,
		volume Float64,
		source LowCardinality(String)
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMMDD(ts)
	ORDER BY (pair, ts)
	TTL toDateTime(ts) + INTERVAL 30 DAY`, s.table)
	_, err := s.db.ExecContext(ctx, q)
	return err
}

func (s *ClickHouseRateStore) Store(ctx context.Context, t *models.RateTick) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, pair, price, volume, source) VALUES (?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q, t.Timestamp, t.Pair, t.Price, t.Volume, t.Source)
	return err
}

func (s *ClickHouseRateStore) StoreBatch(ctx context.Context, ticks []*models.RateTick) error {
	if len(ticks) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(ticks); start += chunkSize {
		end := start + chunkSize
		if end > len(ticks) {
			end = len(ticks)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, t := range ticks[start:end] {
			if t == nil || t.Pair == "" || t.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, t.Timestamp, t.Pair, t.Price, t.Volume, t.Source)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, pair, price, volume, source) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// LatestPrice returns the most recent stored price for the pair.
// ok=false means the pair has no observations yet.
func (s *ClickHouseRateStore) LatestPrice(ctx context.Context, pair string) (float64, bool, error) {
	q := fmt.Sprintf("SELECT price FROM %s WHERE pair = ? ORDER BY ts DESC LIMIT 1", s.table)
	var price float64
	err := s.db.QueryRowContext(ctx, q, pair).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return price, price > 0, nil
}

func (s *ClickHouseRateStore) Query(ctx context.Context, pair string, from, to time.Time, limit int) ([]*models.RateTick, error) {
	q := fmt.Sprintf("SELECT pair, ts, price, volume, source FROM %s WHERE pair = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, pair, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticks []*models.RateTick
	for rows.Next() {
		var t models.RateTick
		if err := rows.Scan(&t.Pair, &t.Timestamp, &t.Price, &t.Volume, &t.Source); err != nil {
			return nil, err
		}
		ticks = append(ticks, &t)
	}
	return ticks, rows.Err()
}

func (s *ClickHouseRateStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseRateStore) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka. Ticks and decision
// audit events go to separate topics.
type KafkaPublisher struct {
	producer       *pkgkafka.Producer
	ticksTopic     string
	decisionsTopic string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, ticksTopic, decisionsTopic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, ticksTopic: ticksTopic, decisionsTopic: decisionsTopic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, t *models.RateTick) error {
	return p.producer.Publish(ctx, p.ticksTopic, []byte(t.Pair), t)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, ticks []*models.RateTick) error {
	if len(ticks) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(ticks))
	for i, t := range ticks {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(t.Pair),
			Value: t,
		}
	}
	return p.producer.PublishBatch(ctx, p.ticksTopic, msgs)
}

func (p *KafkaPublisher) PublishDecision(ctx context.Context, d *models.QuoteDecision) error {
	return p.producer.Publish(ctx, p.decisionsTopic, []byte(d.CanonicalPair), d)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
