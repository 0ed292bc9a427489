package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
)

func defaultSelector() *StrategySelector {
	return NewStrategySelector("", 0, nil)
}

func liveQuote(price float64) models.AggregatedQuote {
	return models.AggregatedQuote{Price: price, Confidence: 0.95, OK: true, Timestamp: time.Now()}
}

func TestSelectStablecoin(t *testing.T) {
	s := defaultSelector()

	d := s.Select("USDC/USDT", "USDC/USDT", models.CategoryStablecoin, 500,
		models.AggregatedQuote{}, models.ModelInference{}, 0.8)

	if d.CurrentPrice != 1.0 || d.PredictedPrice != 1.0 {
		t.Fatalf("expected pegged 1.0 prices, got %v/%v", d.CurrentPrice, d.PredictedPrice)
	}
	if d.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", d.Confidence)
	}
	if d.Strategy != models.StrategyHardcodedStable {
		t.Fatalf("expected %s, got %s", models.StrategyHardcodedStable, d.Strategy)
	}
	if !d.MeetsThreshold {
		t.Fatalf("stablecoin decision must meet any threshold <= 1.0")
	}
}

func TestSelectFiatLatestRate(t *testing.T) {
	s := defaultSelector()

	d := s.Select("EUR/USD", "EUR/USD", models.CategoryFiat, 1000,
		liveQuote(0.95), models.ModelInference{}, 0.8)

	if d.CurrentPrice != 0.95 || d.PredictedPrice != 0.95 {
		t.Fatalf("expected latest rate 0.95, got %v/%v", d.CurrentPrice, d.PredictedPrice)
	}
	if d.Confidence != 0.95 {
		t.Fatalf("expected fixed fiat confidence 0.95, got %v", d.Confidence)
	}
	if d.Strategy != models.StrategyLatestRateOnly {
		t.Fatalf("expected %s, got %s", models.StrategyLatestRateOnly, d.Strategy)
	}
}

func TestSelectFiatFallbackRate(t *testing.T) {
	s := defaultSelector()

	d := s.Select("CNY/USD", "CNY/USD", models.CategoryFiat, 1000,
		models.AggregatedQuote{}, models.ModelInference{}, 0.8)

	if d.CurrentPrice != 0.14 {
		t.Fatalf("expected fallback rate 0.14, got %v", d.CurrentPrice)
	}
	if d.Strategy != models.StrategyLatestRateOnly {
		t.Fatalf("expected %s, got %s", models.StrategyLatestRateOnly, d.Strategy)
	}
}

func TestSelectDirectModelHighQuality(t *testing.T) {
	s := defaultSelector() // BTC/USDT quality 0.618 > 0.5

	inf := models.ModelInference{Pair: "BTC/USDT", PredictedPrice: 66000, Confidence: 0.9, Available: true}
	d := s.Select("BTC/USDT", "BTC/USDT", models.CategoryCrypto, 5000, liveQuote(65000), inf, 0.8)

	if d.Strategy != models.StrategyDirectModel {
		t.Fatalf("expected %s, got %s", models.StrategyDirectModel, d.Strategy)
	}
	// Delta of 1000 scaled down by the horizon factor.
	want := 65000 + (66000-65000)*0.001
	if math.Abs(d.PredictedPrice-want) > 1e-9 {
		t.Fatalf("expected predicted %v, got %v", want, d.PredictedPrice)
	}
	if d.Confidence != 0.9 {
		t.Fatalf("expected model confidence passthrough, got %v", d.Confidence)
	}
}

func TestSelectConservativeBlendLowQuality(t *testing.T) {
	s := defaultSelector() // ETH/USDT quality 0.135 <= 0.5

	inf := models.ModelInference{Pair: "ETH/USDT", PredictedPrice: 4000, Confidence: 0.9, Available: true}
	d := s.Select("ETH/USDT", "ETH/USDT", models.CategoryCrypto, 5000, liveQuote(3900), inf, 0.8)

	if d.Strategy != models.StrategyConservativeWeighted {
		t.Fatalf("expected %s, got %s", models.StrategyConservativeWeighted, d.Strategy)
	}
	want := 0.7*3900 + 0.3*4000
	if math.Abs(d.PredictedPrice-want) > 1e-9 {
		t.Fatalf("expected blended %v, got %v", want, d.PredictedPrice)
	}
	wantConf := 0.9 * 0.85
	if math.Abs(d.Confidence-wantConf) > 1e-9 {
		t.Fatalf("expected dampened confidence %v, got %v", wantConf, d.Confidence)
	}
}

func TestSelectConservativeConfidenceFloor(t *testing.T) {
	s := defaultSelector()

	inf := models.ModelInference{Pair: "ETH/USDT", PredictedPrice: 4000, Confidence: 0.3, Available: true}
	d := s.Select("ETH/USDT", "ETH/USDT", models.CategoryCrypto, 5000, liveQuote(3900), inf, 0.8)

	if d.Confidence != 0.6 {
		t.Fatalf("expected confidence floor 0.6, got %v", d.Confidence)
	}
}

func TestSelectModelUnavailable(t *testing.T) {
	s := defaultSelector()

	d := s.Select("BTC/USDT", "BTC/USDT", models.CategoryCrypto, 5000,
		liveQuote(65000), models.ModelInference{}, 0.8)

	if d.PredictedPrice != 65000 {
		t.Fatalf("expected fallback to current price, got %v", d.PredictedPrice)
	}
	if d.Confidence != 0.7 {
		t.Fatalf("expected fixed confidence 0.7, got %v", d.Confidence)
	}
	if d.Degraded {
		t.Fatalf("model loss alone must not mark the decision degraded")
	}
}

func TestSelectDegradedDefaults(t *testing.T) {
	s := defaultSelector()

	d := s.Select("BTC/USDT", "BTC/USDT", models.CategoryCrypto, 5000,
		models.AggregatedQuote{}, models.ModelInference{}, 0.8)

	if !d.Degraded {
		t.Fatalf("expected degraded decision when price lookup fails entirely")
	}
	if d.CurrentPrice != 65000 {
		t.Fatalf("expected static default 65000 for BTC, got %v", d.CurrentPrice)
	}
	if d.Confidence != 0.5 {
		t.Fatalf("expected degraded confidence 0.5, got %v", d.Confidence)
	}
	if d.Strategy != models.StrategyDegradedDefault {
		t.Fatalf("expected %s, got %s", models.StrategyDegradedDefault, d.Strategy)
	}
	if d.MeetsThreshold {
		t.Fatalf("degraded confidence 0.5 must not meet threshold 0.8")
	}
}

func TestSelectMeetsThreshold(t *testing.T) {
	s := defaultSelector()

	d := s.Select("EUR/USD", "EUR/USD", models.CategoryFiat, 1000, liveQuote(1.09), models.ModelInference{}, 0.99)
	if d.MeetsThreshold {
		t.Fatalf("fiat confidence 0.95 must not meet threshold 0.99")
	}

	d = s.Select("EUR/USD", "EUR/USD", models.CategoryFiat, 1000, liveQuote(1.09), models.ModelInference{}, 0.95)
	if !d.MeetsThreshold {
		t.Fatalf("confidence equal to threshold must pass")
	}
}

func TestSelectHorizonScaleOverride(t *testing.T) {
	s := NewStrategySelector("30s", 0.5, map[string]float64{"BTC/USDT": 0.9})

	inf := models.ModelInference{Pair: "BTC/USDT", PredictedPrice: 66000, Confidence: 0.9, Available: true}
	d := s.Select("BTC/USDT", "BTC/USDT", models.CategoryCrypto, 5000, liveQuote(65000), inf, 0.8)

	if d.PredictedPrice != 65500 {
		t.Fatalf("expected overridden scale 0.5 to yield 65500, got %v", d.PredictedPrice)
	}
}
