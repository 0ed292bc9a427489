package repository

import (
	"context"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
)

type RateStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.RateTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, t *models.RateTick) error
	PublishBatch(ctx context.Context, ticks []*models.RateTick) error
	PublishDecision(ctx context.Context, d *models.QuoteDecision) error
	Close() error
}

type RateStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, t *models.RateTick) error
	StoreBatch(ctx context.Context, ticks []*models.RateTick) error
	LatestPrice(ctx context.Context, pair string) (float64, bool, error)
	Query(ctx context.Context, pair string, from, to time.Time, limit int) ([]*models.RateTick, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, pair string)
	RecordError(kind string)
	RecordLastPrice(pair string, price float64)
	RecordLatency(op string, seconds float64)
	RecordQuote(category, strategy string)
	RecordSourceFetch(source, outcome string)
	RecordCacheLookup(hit bool)
}
