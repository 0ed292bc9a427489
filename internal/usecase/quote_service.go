package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
	drepo "github.com/ybc112/AetherPay/internal/domain/repository"
	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
	"github.com/ybc112/AetherPay/pkg/cache"
	"github.com/ybc112/AetherPay/pkg/logger"
)

// Input validation errors. These are the only errors GetQuote surfaces;
// every upstream failure degrades into a complete fallback result.
var (
	ErrInvalidPair      = errors.New("pair must have the form BASE/QUOTE")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidThreshold = errors.New("threshold must be in [0, 1]")
)

const (
	defaultQuoteCacheTTL = 30 * time.Second
	defaultAmountBucket  = 100.0
)

// QuoteService composes classification, aggregation, strategy selection
// and path optimization into one request/response cycle. The cache,
// store and publisher are optional; a nil or failing collaborator
// degrades silently to direct computation.
type QuoteService struct {
	classifier *PairClassifier
	aggregator *QuoteAggregator
	strategy   *StrategySelector
	optimizer  *PathOptimizer
	store      drepo.RateStore
	predictor  domsvc.Predictor
	cache      cache.Service
	publisher  drepo.Publisher
	metrics    drepo.Metrics
	log        *logger.Logger

	cacheTTL     time.Duration
	amountBucket float64
}

func NewQuoteService(
	classifier *PairClassifier,
	aggregator *QuoteAggregator,
	strategy *StrategySelector,
	optimizer *PathOptimizer,
	store drepo.RateStore,
	predictor domsvc.Predictor,
	cacheSvc cache.Service,
	publisher drepo.Publisher,
	metrics drepo.Metrics,
	log *logger.Logger,
	cacheTTL time.Duration,
	amountBucket float64,
) *QuoteService {
	if cacheTTL <= 0 {
		cacheTTL = defaultQuoteCacheTTL
	}
	if amountBucket <= 0 {
		amountBucket = defaultAmountBucket
	}
	return &QuoteService{
		classifier:   classifier,
		aggregator:   aggregator,
		strategy:     strategy,
		optimizer:    optimizer,
		store:        store,
		predictor:    predictor,
		cache:        cacheSvc,
		publisher:    publisher,
		metrics:      metrics,
		log:          log,
		cacheTTL:     cacheTTL,
		amountBucket: amountBucket,
	}
}

// GetQuote runs the full cycle: classify, price, select strategy,
// optimize path. Only malformed input returns an error.
func (s *QuoteService) GetQuote(ctx context.Context, pair string, amount, threshold float64) (models.QuoteResult, error) {
	if err := validateInput(pair, amount, threshold); err != nil {
		return models.QuoteResult{}, err
	}

	start := time.Now()
	canonical, category := s.classifier.Classify(pair)

	key := s.cacheKey(canonical, amount)
	if cached, ok := s.cacheGet(ctx, key); ok {
		cached.CacheHit = true
		// Threshold is caller-supplied; re-evaluate it against the
		// cached confidence instead of trusting the stored flag.
		cached.Decision.MeetsThreshold = cached.Decision.Confidence >= threshold
		s.metrics.RecordCacheLookup(true)
		return cached, nil
	}
	s.metrics.RecordCacheLookup(false)

	quote := s.resolvePrice(ctx, canonical, category)
	inf := s.inference(ctx, canonical, category, quote)

	decision := s.strategy.Select(pair, canonical, category, amount, quote, inf, threshold)

	var rec models.PathRecommendation
	if decision.Degraded {
		rec = s.optimizer.SafePath(amount)
	} else {
		rec = s.optimizer.Optimize(category, amount, decision.Confidence)
	}

	result := models.QuoteResult{Decision: decision, Recommendation: rec}

	s.metrics.RecordQuote(string(category), decision.Strategy)
	s.metrics.RecordLastPrice(canonical, decision.CurrentPrice)
	s.metrics.RecordLatency("quote", time.Since(start).Seconds())

	s.cacheSet(ctx, key, result)
	s.audit(decision)

	return result, nil
}

// ComparePaths scores the whole catalog for diagnostics.
func (s *QuoteService) ComparePaths(ctx context.Context, pair string, amount, confidence float64) ([]models.RankedPath, error) {
	if err := validateInput(pair, amount, confidence); err != nil {
		return nil, err
	}
	_, category := s.classifier.Classify(pair)
	return s.optimizer.CompareAll(category, amount, confidence), nil
}

// ModelHealth probes the inference collaborator.
func (s *QuoteService) ModelHealth(ctx context.Context) error {
	if s.predictor == nil {
		return fmt.Errorf("no predictor configured")
	}
	return s.predictor.Health(ctx)
}

// resolvePrice picks the price source per category: stablecoins are
// pegged, fiat reads the latest stored rate, everything else goes
// through the live aggregator.
func (s *QuoteService) resolvePrice(ctx context.Context, canonical string, category models.PairCategory) models.AggregatedQuote {
	now := time.Now()
	switch category {
	case models.CategoryStablecoin:
		return models.AggregatedQuote{Pair: canonical, Price: 1.0, Confidence: 1.0, OK: true, Timestamp: now}
	case models.CategoryFiat:
		if s.store == nil {
			return models.AggregatedQuote{Pair: canonical, Timestamp: now}
		}
		price, ok, err := s.store.LatestPrice(ctx, canonical)
		if err != nil {
			s.metrics.RecordError("latest_price")
			s.log.Warn("latest rate lookup failed", logger.String("pair", canonical), logger.Error(err))
			return models.AggregatedQuote{Pair: canonical, Timestamp: now}
		}
		return models.AggregatedQuote{Pair: canonical, Price: price, OK: ok && price > 0, Timestamp: now}
	default:
		return s.aggregator.Aggregate(ctx, canonical)
	}
}

func (s *QuoteService) inference(ctx context.Context, canonical string, category models.PairCategory, quote models.AggregatedQuote) models.ModelInference {
	if s.predictor == nil || !quote.OK {
		return models.ModelInference{Pair: canonical}
	}
	if category == models.CategoryStablecoin || category == models.CategoryFiat {
		return models.ModelInference{Pair: canonical}
	}
	inf, err := s.predictor.Predict(ctx, canonical)
	if err != nil {
		s.metrics.RecordError("inference")
		s.log.Warn("model inference unavailable", logger.String("pair", canonical), logger.Error(err))
		return models.ModelInference{Pair: canonical}
	}
	return inf
}

func (s *QuoteService) cacheKey(canonical string, amount float64) string {
	bucket := math.Round(amount/s.amountBucket) * s.amountBucket
	return fmt.Sprintf("quote:%s:%.0f", canonical, bucket)
}

func (s *QuoteService) cacheGet(ctx context.Context, key string) (models.QuoteResult, bool) {
	if s.cache == nil {
		return models.QuoteResult{}, false
	}
	var result models.QuoteResult
	if err := s.cache.Get(ctx, key, &result); err != nil {
		return models.QuoteResult{}, false
	}
	return result, true
}

func (s *QuoteService) cacheSet(ctx context.Context, key string, result models.QuoteResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.log.Debug("quote cache write failed", logger.String("key", key), logger.Error(err))
	}
}

// audit publishes the decision for downstream analysis, best-effort.
func (s *QuoteService) audit(decision models.QuoteDecision) {
	if s.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishDecision(ctx, &decision); err != nil {
			s.metrics.RecordError("audit_publish")
			s.log.Warn("decision audit publish failed", logger.Error(err))
		}
	}()
}

func validateInput(pair string, amount, threshold float64) error {
	if !ValidPair(pair) {
		return fmt.Errorf("%w: %q", ErrInvalidPair, pair)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}
	return nil
}
