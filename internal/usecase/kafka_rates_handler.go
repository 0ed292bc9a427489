package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
	domrepo "github.com/ybc112/AetherPay/internal/domain/repository"
	pkgkafka "github.com/ybc112/AetherPay/pkg/kafka"
)

// KafkaRatesHandler consumes rate tick messages and writes to storage.
type KafkaRatesHandler struct {
	topic   string
	store   domrepo.RateStore
	metrics domrepo.Metrics
}

func NewKafkaRatesHandler(topic string, store domrepo.RateStore, metrics domrepo.Metrics) *KafkaRatesHandler {
	return &KafkaRatesHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaRatesHandler) Topic() string { return h.topic }

// Handle decodes one tick and persists it. Malformed messages are
// counted and returned as errors so the consumer can dead-letter them.
func (h *KafkaRatesHandler) Handle(ctx context.Context, b []byte) error {
	var t models.RateTick
	if err := json.Unmarshal(b, &t); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if t.Pair == "" || t.Price <= 0 {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("invalid tick: pair=%q price=%v", t.Pair, t.Price)
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(t.Timestamp).Seconds())

	start := time.Now()
	err := h.store.Store(ctx, &t)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", t.Pair)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaRatesHandler)(nil)
