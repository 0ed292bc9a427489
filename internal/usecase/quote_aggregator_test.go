package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
)

func newTestAggregator(t *testing.T, refs map[string]float64, maxDev float64, sources ...domsvc.PriceSource) *QuoteAggregator {
	t.Helper()
	return NewQuoteAggregator(sources, refs, maxDev, time.Second, noopMetrics{}, newTestLogger(t))
}

func TestAggregateTrimmedMedian(t *testing.T) {
	// Reference 65000 with 5% band: 70000 gets rejected.
	agg := newTestAggregator(t, map[string]float64{"BTC/USDT": 65000}, 0.05,
		stubSource{name: "a", price: 65000},
		stubSource{name: "b", price: 65050},
		stubSource{name: "c", price: 64980},
		stubSource{name: "d", price: 70000},
	)

	q := agg.Aggregate(context.Background(), "BTC/USDT")
	if !q.OK {
		t.Fatalf("expected OK quote")
	}
	if q.SourceCount != 3 {
		t.Fatalf("expected 3 valid sources, got %d", q.SourceCount)
	}
	// Trim 64980 and 65050, median of {65000} = 65000.
	if q.Price != 65000 {
		t.Fatalf("expected trimmed median 65000, got %v", q.Price)
	}
	wantSpread := (65050.0 - 64980.0) / 65000.0
	if math.Abs(q.Spread-wantSpread) > 1e-12 {
		t.Fatalf("expected spread %v, got %v", wantSpread, q.Spread)
	}
	wantConf := 1 - wantSpread*10
	if math.Abs(q.Confidence-wantConf) > 1e-12 {
		t.Fatalf("expected confidence %v, got %v", wantConf, q.Confidence)
	}
}

func TestAggregateTwoSourcesMean(t *testing.T) {
	agg := newTestAggregator(t, map[string]float64{"ETH/USDT": 3900}, 0.2,
		stubSource{name: "a", price: 3900},
		stubSource{name: "b", price: 3910},
	)

	q := agg.Aggregate(context.Background(), "ETH/USDT")
	if q.Price != 3905 {
		t.Fatalf("expected mean 3905, got %v", q.Price)
	}
	if q.SourceCount != 2 {
		t.Fatalf("expected 2 sources, got %d", q.SourceCount)
	}
}

func TestAggregateSingleSource(t *testing.T) {
	agg := newTestAggregator(t, map[string]float64{"BTC/USDT": 65000}, 0.2,
		stubSource{name: "only", price: 64900},
		stubSource{name: "down", price: 0},
	)

	q := agg.Aggregate(context.Background(), "BTC/USDT")
	if q.Price != 64900 {
		t.Fatalf("expected single source price, got %v", q.Price)
	}
	if q.Confidence != 0.7 {
		t.Fatalf("expected fixed confidence 0.7, got %v", q.Confidence)
	}
	if q.Spread != 0.001 {
		t.Fatalf("expected degenerate spread 0.001, got %v", q.Spread)
	}
	if q.Simulated {
		t.Fatalf("single-source quote must not be simulated")
	}
}

func TestAggregateZeroSourcesSimulated(t *testing.T) {
	agg := newTestAggregator(t, map[string]float64{"BTC/USDT": 65000}, 0.2,
		stubSource{name: "down", price: 0},
	)

	q := agg.Aggregate(context.Background(), "BTC/USDT")
	if !q.OK {
		t.Fatalf("aggregation must not fail with a reference price available")
	}
	if !q.Simulated {
		t.Fatalf("expected simulated quote")
	}
	if q.Confidence != 0.7 {
		t.Fatalf("expected conservative confidence 0.7, got %v", q.Confidence)
	}
	if q.Spread != 0.001 {
		t.Fatalf("expected spread 0.001, got %v", q.Spread)
	}
	// The reference itself counts as the one contributing source.
	if q.SourceCount != 1 || len(q.Sources) != 1 || q.Sources[0] != "reference" {
		t.Fatalf("expected the reference as sole source, got %d %v", q.SourceCount, q.Sources)
	}
	// Jitter is bounded to +-0.5% of the reference.
	if q.Price < 65000*0.995 || q.Price > 65000*1.005 {
		t.Fatalf("simulated price %v outside jitter bounds", q.Price)
	}
}

func TestAggregateZeroSourcesNoReference(t *testing.T) {
	agg := newTestAggregator(t, map[string]float64{}, 0.2)

	q := agg.Aggregate(context.Background(), "XYZ/ABC")
	if q.OK {
		t.Fatalf("expected unavailable quote without sources or reference")
	}
	if q.Simulated {
		t.Fatalf("unavailable quote must not claim to be simulated")
	}
}

func TestAggregateSlowSourceExcluded(t *testing.T) {
	agg := NewQuoteAggregator(
		[]domsvc.PriceSource{
			stubSource{name: "fast", price: 65000},
			stubSource{name: "slow", price: 65100, delay: 500 * time.Millisecond},
		},
		map[string]float64{"BTC/USDT": 65000}, 0.2,
		50*time.Millisecond, noopMetrics{}, newTestLogger(t),
	)

	q := agg.Aggregate(context.Background(), "BTC/USDT")
	if q.SourceCount != 1 {
		t.Fatalf("expected slow source excluded, got %d sources", q.SourceCount)
	}
	if q.Price != 65000 {
		t.Fatalf("expected fast source price, got %v", q.Price)
	}
}

func TestAggregateConfidenceClamped(t *testing.T) {
	// Wide but in-band spread pushes raw confidence below the floor.
	agg := newTestAggregator(t, map[string]float64{"BTC/USDT": 65000}, 0.2,
		stubSource{name: "a", price: 60000},
		stubSource{name: "b", price: 70000},
	)

	q := agg.Aggregate(context.Background(), "BTC/USDT")
	if q.Confidence != 0.5 {
		t.Fatalf("expected confidence clamped to 0.5, got %v", q.Confidence)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	agg := newTestAggregator(t, map[string]float64{"BTC/USDT": 65000}, 0.2,
		stubSource{name: "a", price: 64950},
		stubSource{name: "b", price: 65000},
		stubSource{name: "c", price: 65080},
		stubSource{name: "d", price: 65020},
	)

	first := agg.Aggregate(context.Background(), "BTC/USDT")
	for i := 0; i < 5; i++ {
		q := agg.Aggregate(context.Background(), "BTC/USDT")
		if q.Price != first.Price || q.Confidence != first.Confidence || q.Spread != first.Spread {
			t.Fatalf("aggregation not deterministic: %+v vs %+v", q, first)
		}
	}
}
