package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
)

// flakyStream fails its first read session, then serves ticks.
type flakyStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
	connected  bool
}

func (s *flakyStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *flakyStream) Subscribe(ctx context.Context) error { return nil }

func (s *flakyStream) Read(ctx context.Context) (<-chan *models.RateTick, <-chan error) {
	s.mu.Lock()
	s.reads++
	session := s.reads
	s.mu.Unlock()

	ticks := make(chan *models.RateTick, 4)
	errs := make(chan error, 1)
	if session == 1 {
		errs <- errors.New("connection reset by peer")
		close(ticks)
		close(errs)
		return ticks, errs
	}
	ticks <- &models.RateTick{
		Pair: "BTC/USDT", Price: 65000, Volume: 1, Source: "binance", Timestamp: time.Now(),
	}
	return ticks, errs
}

func (s *flakyStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return nil
}

func (s *flakyStream) Close() error { return nil }

func (s *flakyStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *flakyStream) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.reconnects
}

func TestCollectorResumesAfterStreamError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &flakyStream{}
	pub := &recordingTickPublisher{}
	proc := NewRateProcessor(pub, nil, noopMetrics{}, "kafka", 0, 0)
	c := NewRateCollector(stream, proc, noopMetrics{}, nil)

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if n := pub.count(); n >= 1 {
			break
		}
		if time.Now().After(deadline) {
			reads, reconnects := stream.counts()
			t.Fatalf("no tick consumed after stream error (reads=%d reconnects=%d)", reads, reconnects)
		}
		time.Sleep(10 * time.Millisecond)
	}

	reads, reconnects := stream.counts()
	if reconnects < 1 {
		t.Fatalf("expected a reconnect, got %d", reconnects)
	}
	if reads < 2 {
		t.Fatalf("expected fresh channels from a second Read, got %d reads", reads)
	}
}

// recordingTickPublisher counts published ticks.
type recordingTickPublisher struct {
	mu    sync.Mutex
	ticks []models.RateTick
}

func (p *recordingTickPublisher) Publish(ctx context.Context, t *models.RateTick) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticks = append(p.ticks, *t)
	return nil
}

func (p *recordingTickPublisher) PublishBatch(ctx context.Context, ts []*models.RateTick) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range ts {
		p.ticks = append(p.ticks, *t)
	}
	return nil
}

func (p *recordingTickPublisher) PublishDecision(ctx context.Context, d *models.QuoteDecision) error {
	return nil
}

func (p *recordingTickPublisher) Close() error { return nil }

func (p *recordingTickPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ticks)
}
