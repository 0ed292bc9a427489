package usecase

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
	drepo "github.com/ybc112/AetherPay/internal/domain/repository"
	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
	"github.com/ybc112/AetherPay/pkg/logger"
)

const (
	defaultSourceTimeout = 3 * time.Second
	defaultMaxDeviation  = 0.2

	singleSourceConfidence = 0.7
	simulatedConfidence    = 0.7
	simulatedSpread        = 0.001
	simulatedJitter        = 0.005 // +-0.5% around the reference price
)

// DefaultReferencePrices is the sanity band anchor per pair. Config can
// override or extend it; a pair with no reference accepts any source
// price but cannot synthesize a quote when all sources fail.
func DefaultReferencePrices() map[string]float64 {
	return map[string]float64{
		"BTC/USDT": 123000,
		"ETH/USDT": 3900,
		"SOL/USDT": 250,
		"ADA/USDT": 0.95,
		"BNB/USDT": 1000,
		"EUR/USD":  1.09,
		"GBP/USD":  1.31,
		"CNY/USD":  0.14,
	}
}

// QuoteAggregator fans out to all price sources concurrently and
// combines whatever came back in time into one quote with a confidence
// score. It has no hard failure path: total source loss degrades the
// quote, never the request.
type QuoteAggregator struct {
	sources      []domsvc.PriceSource
	refs         map[string]float64
	maxDeviation float64
	timeout      time.Duration
	metrics      drepo.Metrics
	log          *logger.Logger
}

func NewQuoteAggregator(
	sources []domsvc.PriceSource,
	refs map[string]float64,
	maxDeviation float64,
	timeout time.Duration,
	metrics drepo.Metrics,
	log *logger.Logger,
) *QuoteAggregator {
	if refs == nil {
		refs = DefaultReferencePrices()
	}
	if maxDeviation <= 0 {
		maxDeviation = defaultMaxDeviation
	}
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}
	return &QuoteAggregator{
		sources:      sources,
		refs:         refs,
		maxDeviation: maxDeviation,
		timeout:      timeout,
		metrics:      metrics,
		log:          log,
	}
}

// Aggregate collects one price per source within the per-source timeout
// window, drops prices outside the reference band, and combines the
// rest. OK is false only when no source responded and no reference
// price exists for the pair.
func (a *QuoteAggregator) Aggregate(ctx context.Context, pair string) models.AggregatedQuote {
	quotes := a.fetchAll(ctx, pair)

	valid := make([]models.SourceQuote, 0, len(quotes))
	for _, q := range quotes {
		if !q.Valid {
			continue
		}
		if !a.withinBand(pair, q.Price) {
			a.log.Warn("source price outside reference band",
				logger.String("pair", pair),
				logger.String("source", q.Source),
				logger.Float64("price", q.Price))
			a.metrics.RecordSourceFetch(q.Source, "rejected")
			continue
		}
		a.metrics.RecordSourceFetch(q.Source, "ok")
		valid = append(valid, q)
	}

	return a.combine(pair, valid)
}

func (a *QuoteAggregator) fetchAll(ctx context.Context, pair string) []models.SourceQuote {
	out := make([]models.SourceQuote, len(a.sources))
	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src domsvc.PriceSource) {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			price, ok := src.FetchPrice(fctx, pair)
			if !ok || price <= 0 {
				a.metrics.RecordSourceFetch(src.Name(), "failed")
				out[i] = models.SourceQuote{Source: src.Name(), Pair: pair, FetchedAt: time.Now()}
				return
			}
			out[i] = models.SourceQuote{
				Source:    src.Name(),
				Pair:      pair,
				Price:     price,
				FetchedAt: time.Now(),
				Valid:     true,
			}
		}(i, src)
	}
	wg.Wait()
	return out
}

func (a *QuoteAggregator) withinBand(pair string, price float64) bool {
	ref, ok := a.refs[pair]
	if !ok || ref <= 0 {
		return true
	}
	return math.Abs(price-ref)/ref <= a.maxDeviation
}

func (a *QuoteAggregator) combine(pair string, valid []models.SourceQuote) models.AggregatedQuote {
	now := time.Now()

	if len(valid) == 0 {
		ref, ok := a.refs[pair]
		if !ok || ref <= 0 {
			a.log.Warn("no sources and no reference price", logger.String("pair", pair))
			return models.AggregatedQuote{Pair: pair, Timestamp: now}
		}
		jitter := (rand.Float64()*2 - 1) * simulatedJitter
		return models.AggregatedQuote{
			Pair:        pair,
			Price:       ref * (1 + jitter),
			Confidence:  simulatedConfidence,
			Spread:      simulatedSpread,
			SourceCount: 1,
			Sources:     []string{"reference"},
			Simulated:   true,
			OK:          true,
			Timestamp:   now,
		}
	}

	sources := make([]string, 0, len(valid))
	prices := make([]float64, 0, len(valid))
	for _, q := range valid {
		sources = append(sources, q.Source)
		prices = append(prices, q.Price)
	}

	if len(prices) == 1 {
		return models.AggregatedQuote{
			Pair:        pair,
			Price:       prices[0],
			Confidence:  singleSourceConfidence,
			Spread:      simulatedSpread,
			SourceCount: 1,
			Sources:     sources,
			OK:          true,
			Timestamp:   now,
		}
	}

	sort.Float64s(prices)
	lo, hi := prices[0], prices[len(prices)-1]

	var price float64
	if len(prices) >= 3 {
		// Drop one extreme on each side, take the median of the rest.
		price = median(prices[1 : len(prices)-1])
	} else {
		price = (prices[0] + prices[1]) / 2
	}

	spread := (hi - lo) / price
	confidence := clamp(1-spread*10, 0.5, 1.0)

	return models.AggregatedQuote{
		Pair:        pair,
		Price:       price,
		Confidence:  confidence,
		Spread:      spread,
		SourceCount: len(valid),
		Sources:     sources,
		OK:          true,
		Timestamp:   now,
	}
}

// median expects a sorted slice.
func median(xs []float64) float64 {
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
