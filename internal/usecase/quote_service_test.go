package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
	drepo "github.com/ybc112/AetherPay/internal/domain/repository"
	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
	"github.com/ybc112/AetherPay/pkg/cache"
)

type recordingPublisher struct {
	mu        sync.Mutex
	decisions []models.QuoteDecision
}

func (p *recordingPublisher) Publish(ctx context.Context, t *models.RateTick) error        { return nil }
func (p *recordingPublisher) PublishBatch(ctx context.Context, ts []*models.RateTick) error { return nil }
func (p *recordingPublisher) Close() error                                                  { return nil }

func (p *recordingPublisher) PublishDecision(ctx context.Context, d *models.QuoteDecision) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decisions = append(p.decisions, *d)
	return nil
}

type quoteServiceOpts struct {
	sources   []domsvc.PriceSource
	refs      map[string]float64
	maxDev    float64
	store     stubStore
	predictor domsvc.Predictor
	cacheSvc  cache.Service
	publisher *recordingPublisher
}

func newQuoteService(t *testing.T, o quoteServiceOpts) *QuoteService {
	t.Helper()
	log := newTestLogger(t)
	if o.refs == nil {
		o.refs = DefaultReferencePrices()
	}
	if o.maxDev == 0 {
		o.maxDev = 0.2
	}
	if o.predictor == nil {
		o.predictor = stubPredictor{err: errors.New("down")}
	}
	agg := NewQuoteAggregator(o.sources, o.refs, o.maxDev, time.Second, noopMetrics{}, log)
	var pub drepo.Publisher
	if o.publisher != nil {
		pub = o.publisher
	}
	return NewQuoteService(
		NewPairClassifier(),
		agg,
		NewStrategySelector("", 0, nil),
		NewPathOptimizer(nil),
		o.store,
		o.predictor,
		o.cacheSvc,
		pub,
		noopMetrics{},
		log,
		time.Second,
		100,
	)
}

func TestGetQuoteInvalidInput(t *testing.T) {
	s := newQuoteService(t, quoteServiceOpts{})

	if _, err := s.GetQuote(context.Background(), "BTCUSDT", 1000, 0.8); !errors.Is(err, ErrInvalidPair) {
		t.Fatalf("expected ErrInvalidPair, got %v", err)
	}
	if _, err := s.GetQuote(context.Background(), "BTC/USDT", 0, 0.8); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := s.GetQuote(context.Background(), "BTC/USDT", 1000, 1.5); !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}
}

func TestGetQuoteCryptoBandRejection(t *testing.T) {
	// 70000 falls outside a 5% band around 65000 and must be excluded.
	s := newQuoteService(t, quoteServiceOpts{
		sources: []domsvc.PriceSource{
			stubSource{name: "a", price: 65000},
			stubSource{name: "b", price: 65050},
			stubSource{name: "c", price: 64980},
			stubSource{name: "d", price: 70000},
		},
		refs:   map[string]float64{"BTC/USDT": 65000},
		maxDev: 0.05,
	})

	res, err := s.GetQuote(context.Background(), "BTC/USDT", 5000, 0.8)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if res.Decision.CurrentPrice != 65000 {
		t.Fatalf("expected trimmed median 65000, got %v", res.Decision.CurrentPrice)
	}
	if res.Decision.SourceCount != 3 {
		t.Fatalf("expected 3 contributing sources, got %d", res.Decision.SourceCount)
	}
	if res.Recommendation.Path == "" {
		t.Fatalf("expected a settlement recommendation")
	}
}

func TestGetQuoteStablecoin(t *testing.T) {
	// No sources configured at all; the peg must still hold.
	s := newQuoteService(t, quoteServiceOpts{})

	res, err := s.GetQuote(context.Background(), "USDC/USDT", 500, 0.8)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	d := res.Decision
	if d.CurrentPrice != 1.0 || d.PredictedPrice != 1.0 || d.Confidence != 1.0 {
		t.Fatalf("expected pegged decision, got %+v", d)
	}
	if res.Recommendation.Path != "Curve Finance" {
		t.Fatalf("expected stablecoin affinity to pick Curve Finance, got %s", res.Recommendation.Path)
	}
}

func TestGetQuoteFiatLatestRate(t *testing.T) {
	s := newQuoteService(t, quoteServiceOpts{
		store: stubStore{rates: map[string]float64{"EUR/USD": 0.95}},
	})

	res, err := s.GetQuote(context.Background(), "EUR/USD", 1000, 0.8)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	d := res.Decision
	if d.CurrentPrice != 0.95 {
		t.Fatalf("expected stored rate 0.95, got %v", d.CurrentPrice)
	}
	if d.Confidence != 0.95 {
		t.Fatalf("expected fiat confidence 0.95, got %v", d.Confidence)
	}
	if d.Strategy != models.StrategyLatestRateOnly {
		t.Fatalf("expected %s, got %s", models.StrategyLatestRateOnly, d.Strategy)
	}
}

func TestGetQuoteDegradedGetsSafePath(t *testing.T) {
	// Unknown pair, no sources, no reference: degraded decision with
	// the safe-mode route, never an error.
	s := newQuoteService(t, quoteServiceOpts{refs: map[string]float64{"BTC/USDT": 65000}})

	res, err := s.GetQuote(context.Background(), "XYZ/ABC", 1000, 0.8)
	if err != nil {
		t.Fatalf("degraded state must not error: %v", err)
	}
	if !res.Decision.Degraded {
		t.Fatalf("expected degraded decision")
	}
	if !res.Recommendation.SafeMode {
		t.Fatalf("expected safe-mode recommendation, got %s", res.Recommendation.Path)
	}
}

func TestGetQuoteModelDown(t *testing.T) {
	s := newQuoteService(t, quoteServiceOpts{
		sources:   []domsvc.PriceSource{stubSource{name: "a", price: 65000}},
		refs:      map[string]float64{"BTC/USDT": 65000},
		predictor: stubPredictor{err: errors.New("connection refused")},
	})

	res, err := s.GetQuote(context.Background(), "BTC/USDT", 5000, 0.6)
	if err != nil {
		t.Fatalf("model loss must not fail the request: %v", err)
	}
	if res.Decision.Simulated {
		t.Fatalf("source quote must not be band-rejected: %+v", res.Decision)
	}
	if res.Decision.PredictedPrice != 65000 {
		t.Fatalf("expected fallback to current price, got %v", res.Decision.PredictedPrice)
	}
	if res.Decision.Confidence != 0.7 {
		t.Fatalf("expected fallback confidence 0.7, got %v", res.Decision.Confidence)
	}
}

func TestGetQuoteUsesModel(t *testing.T) {
	s := newQuoteService(t, quoteServiceOpts{
		sources: []domsvc.PriceSource{stubSource{name: "a", price: 65000}},
		refs:    map[string]float64{"BTC/USDT": 65000},
		predictor: stubPredictor{inf: models.ModelInference{
			Pair: "BTC/USDT", PredictedPrice: 66000, Confidence: 0.9, Available: true,
		}},
	})

	res, err := s.GetQuote(context.Background(), "BTC/USDT", 5000, 0.8)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if res.Decision.Strategy != models.StrategyDirectModel {
		t.Fatalf("expected direct model strategy, got %s", res.Decision.Strategy)
	}
	if res.Decision.PredictedPrice <= 65000 {
		t.Fatalf("expected scaled-up prediction, got %v", res.Decision.PredictedPrice)
	}
}

func TestGetQuoteCacheRoundTrip(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	s := newQuoteService(t, quoteServiceOpts{
		sources:  []domsvc.PriceSource{stubSource{name: "a", price: 65000}},
		refs:     map[string]float64{"BTC/USDT": 65000},
		cacheSvc: mem,
	})

	first, err := s.GetQuote(context.Background(), "BTC/USDT", 5000, 0.6)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if first.CacheHit {
		t.Fatalf("first call must not be a cache hit")
	}
	if first.Decision.CurrentPrice != 65000 {
		t.Fatalf("expected the source price 65000, got %v", first.Decision.CurrentPrice)
	}

	// Amounts in the same bucket share the cached result.
	second, err := s.GetQuote(context.Background(), "BTC/USDT", 5020, 0.6)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if !second.CacheHit {
		t.Fatalf("expected cache hit for same amount bucket")
	}
	if second.Decision.CurrentPrice != first.Decision.CurrentPrice {
		t.Fatalf("cached decision diverged: %v vs %v",
			second.Decision.CurrentPrice, first.Decision.CurrentPrice)
	}

	// A stricter threshold is re-evaluated against the cached confidence.
	strict, err := s.GetQuote(context.Background(), "BTC/USDT", 5000, 0.99)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if strict.Decision.MeetsThreshold {
		t.Fatalf("cached confidence %v must not meet threshold 0.99", strict.Decision.Confidence)
	}
}

func TestGetQuotePublishesDecision(t *testing.T) {
	pub := &recordingPublisher{}
	s := newQuoteService(t, quoteServiceOpts{
		sources:   []domsvc.PriceSource{stubSource{name: "a", price: 65000}},
		refs:      map[string]float64{"BTC/USDT": 65000},
		publisher: pub,
	})

	if _, err := s.GetQuote(context.Background(), "BTC/USDT", 5000, 0.6); err != nil {
		t.Fatalf("GetQuote: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		pub.mu.Lock()
		n := len(pub.decisions)
		pub.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("decision was never published")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestComparePaths(t *testing.T) {
	s := newQuoteService(t, quoteServiceOpts{})

	ranked, err := s.ComparePaths(context.Background(), "USDC/USDT", 500, 0.9)
	if err != nil {
		t.Fatalf("ComparePaths: %v", err)
	}
	if len(ranked) != len(DefaultPathCatalog()) {
		t.Fatalf("expected full catalog, got %d entries", len(ranked))
	}
	if ranked[0].Path != "Curve Finance" {
		t.Fatalf("expected Curve Finance first for stablecoins, got %s", ranked[0].Path)
	}

	if _, err := s.ComparePaths(context.Background(), "bad", 500, 0.9); err == nil {
		t.Fatalf("expected validation error for malformed pair")
	}
}
