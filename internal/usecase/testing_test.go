package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
	"github.com/ybc112/AetherPay/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// noopMetrics satisfies the metrics interface for tests.
type noopMetrics struct{}

func (noopMetrics) RecordMessageSent(backend, pair string)     {}
func (noopMetrics) RecordError(kind string)                    {}
func (noopMetrics) RecordLastPrice(pair string, price float64) {}
func (noopMetrics) RecordLatency(op string, seconds float64)   {}
func (noopMetrics) RecordQuote(category, strategy string)      {}
func (noopMetrics) RecordSourceFetch(source, outcome string)   {}
func (noopMetrics) RecordCacheLookup(hit bool)                 {}

// stubSource returns a fixed price, or ok=false when price is zero.
type stubSource struct {
	name  string
	price float64
	delay time.Duration
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) FetchPrice(ctx context.Context, pair string) (float64, bool) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return 0, false
		}
	}
	if s.price <= 0 {
		return 0, false
	}
	return s.price, true
}

// stubPredictor returns a fixed inference, or an error when err is set.
type stubPredictor struct {
	inf models.ModelInference
	err error
}

func (p stubPredictor) Predict(ctx context.Context, pair string) (models.ModelInference, error) {
	if p.err != nil {
		return models.ModelInference{}, p.err
	}
	return p.inf, nil
}

func (p stubPredictor) Health(ctx context.Context) error { return p.err }

// stubStore serves LatestPrice from a map and counts nothing else.
type stubStore struct {
	rates map[string]float64
}

func (s stubStore) Init(ctx context.Context) error                            { return nil }
func (s stubStore) Store(ctx context.Context, t *models.RateTick) error       { return nil }
func (s stubStore) StoreBatch(ctx context.Context, ts []*models.RateTick) error { return nil }
func (s stubStore) Health(ctx context.Context) error                          { return nil }
func (s stubStore) Close() error                                              { return nil }

func (s stubStore) LatestPrice(ctx context.Context, pair string) (float64, bool, error) {
	p, ok := s.rates[pair]
	return p, ok, nil
}

func (s stubStore) Query(ctx context.Context, pair string, from, to time.Time, limit int) ([]*models.RateTick, error) {
	return nil, nil
}
