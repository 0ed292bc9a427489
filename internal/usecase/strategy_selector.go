package usecase

import (
	"strings"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
)

const (
	defaultHorizon = "30s"

	// Scale applied to the model's predicted delta when its training
	// horizon is longer than the quote horizon. Empirically chosen;
	// overridable via config.
	defaultHorizonScale = 0.001

	highQualityCutoff = 0.5

	conservativeCurrentWeight = 0.7
	conservativeModelWeight   = 0.3
	conservativeMinConfidence = 0.6
	conservativeDampening     = 0.85
	modelUnavailableConf      = 0.7

	fiatConfidence     = 0.95
	degradedConfidence = 0.5
)

// DefaultModelQuality rates the forecasting model per pair. Pairs not
// listed score the conservative default.
func DefaultModelQuality() map[string]float64 {
	return map[string]float64{
		"BTC/USDT": 0.618,
		"ETH/USDT": 0.135,
		"SOL/USDT": 0.4,
		"ADA/USDT": 0.4,
		"BNB/USDT": 0.4,
	}
}

const defaultModelQualityScore = 0.3

// Fallback rates when the fiat store has no observation for the pair.
var fiatFallbackRates = map[string]float64{
	"CNY/USD": 0.14,
	"EUR/USD": 1.08,
	"JPY/USD": 0.0067,
	"GBP/USD": 1.26,
}

// Static price table for degraded decisions, keyed by base symbol.
var degradedDefaultPrices = map[string]float64{
	"BTC": 65000,
	"ETH": 3500,
	"SOL": 120,
	"ADA": 0.5,
	"BNB": 600,
}

// StrategySelector turns a live price, a model inference and the pair
// category into one final quote decision. Pure computation; every
// branch produces a complete decision, including full upstream failure.
type StrategySelector struct {
	horizon      string
	horizonScale float64
	quality      map[string]float64
}

func NewStrategySelector(horizon string, horizonScale float64, quality map[string]float64) *StrategySelector {
	if horizon == "" {
		horizon = defaultHorizon
	}
	if horizonScale <= 0 {
		horizonScale = defaultHorizonScale
	}
	if quality == nil {
		quality = DefaultModelQuality()
	}
	return &StrategySelector{horizon: horizon, horizonScale: horizonScale, quality: quality}
}

// Select builds the decision for one request. quote carries the
// aggregated price for crypto/other pairs or the latest stored rate for
// fiat pairs; quote.OK=false signals the lookup failed entirely.
func (s *StrategySelector) Select(
	pair, canonical string,
	category models.PairCategory,
	amount float64,
	quote models.AggregatedQuote,
	inf models.ModelInference,
	threshold float64,
) models.QuoteDecision {
	d := models.QuoteDecision{
		Pair:          pair,
		CanonicalPair: canonical,
		Category:      category,
		Amount:        amount,
		Horizon:       s.horizon,
		Simulated:     quote.Simulated,
		SourceCount:   quote.SourceCount,
		Spread:        quote.Spread,
		Timestamp:     time.Now(),
	}

	switch category {
	case models.CategoryStablecoin:
		d.CurrentPrice = 1.0
		d.PredictedPrice = 1.0
		d.Confidence = 1.0
		d.Strategy = models.StrategyHardcodedStable
		d.ModelQuality = "perfect"

	case models.CategoryFiat:
		rate := quote.Price
		if !quote.OK || rate <= 0 {
			rate = fiatFallback(canonical)
		}
		d.CurrentPrice = rate
		d.PredictedPrice = rate
		d.Confidence = fiatConfidence
		d.Strategy = models.StrategyLatestRateOnly
		d.ModelQuality = "no_model"

	default:
		if !quote.OK {
			return s.degraded(d, threshold)
		}
		s.applyModel(&d, quote, inf)
	}

	d.PriceDelta = d.PredictedPrice - d.CurrentPrice
	d.MeetsThreshold = d.Confidence >= threshold
	return d
}

func (s *StrategySelector) applyModel(d *models.QuoteDecision, quote models.AggregatedQuote, inf models.ModelInference) {
	current := quote.Price
	d.CurrentPrice = current

	if !inf.Available {
		d.PredictedPrice = current
		d.Confidence = modelUnavailableConf
		d.Strategy = models.StrategyConservativeWeighted
		d.ModelQuality = "unavailable"
		return
	}

	q := s.qualityFor(d.CanonicalPair)
	if q > highQualityCutoff {
		d.PredictedPrice = current + (inf.PredictedPrice-current)*s.horizonScale
		d.Confidence = inf.Confidence
		d.Strategy = models.StrategyDirectModel
		d.ModelQuality = "high"
		return
	}

	d.PredictedPrice = conservativeCurrentWeight*current + conservativeModelWeight*inf.PredictedPrice
	d.Confidence = maxf(conservativeMinConfidence, inf.Confidence*conservativeDampening)
	d.Strategy = models.StrategyConservativeWeighted
	d.ModelQuality = "low"
}

// degraded builds the last-resort decision when even the aggregator
// produced nothing. The orchestrator pairs it with the safe-mode route.
func (s *StrategySelector) degraded(d models.QuoteDecision, threshold float64) models.QuoteDecision {
	price := 1.0
	if base, _, ok := splitPair(d.CanonicalPair); ok {
		if p, found := degradedDefaultPrices[base]; found {
			price = p
		}
	}
	d.CurrentPrice = price
	d.PredictedPrice = price
	d.Confidence = degradedConfidence
	d.Strategy = models.StrategyDegradedDefault
	d.ModelQuality = "degraded"
	d.Degraded = true
	d.MeetsThreshold = d.Confidence >= threshold
	return d
}

func (s *StrategySelector) qualityFor(canonical string) float64 {
	if q, ok := s.quality[canonical]; ok {
		return q
	}
	return defaultModelQualityScore
}

// Horizon returns the quote horizon tag.
func (s *StrategySelector) Horizon() string { return s.horizon }

func fiatFallback(canonical string) float64 {
	if r, ok := fiatFallbackRates[strings.ToUpper(canonical)]; ok {
		return r
	}
	return 1.0
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
