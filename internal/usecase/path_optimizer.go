package usecase

import (
	"fmt"
	"sort"

	"github.com/ybc112/AetherPay/internal/domain/models"
)

const (
	costCeiling = 0.01 // cost normalization ceiling, 1%
	timeCeiling = 60.0 // seconds

	largeOrderThreshold = 10000.0
	smallOrderThreshold = 1000.0

	lowConfidenceCutoff = 0.8
	affinityBonus       = 1.2

	slowSettleThreshold = 50000.0
	slowSettleFactor    = 1.5
)

type pathWeights struct {
	cost        float64
	speed       float64
	reliability float64
	liquidity   float64
}

// DefaultPathCatalog returns the settlement route catalog in
// declaration order. Order matters: ties are broken by position.
func DefaultPathCatalog() []models.SettlementPath {
	return []models.SettlementPath{
		{Name: "FXPool Direct Swap", Protocol: "FXPool", CostPct: 0.006, TimeSeconds: 12, Reliability: 0.98, MinAmount: 100, MaxAmount: 1000000, RiskLevel: "low", BestFor: "general"},
		{Name: "Curve Finance", Protocol: "Curve", CostPct: 0.0004, TimeSeconds: 18, Reliability: 0.99, MinAmount: 10, MaxAmount: 10000000, RiskLevel: "low", BestFor: "stablecoin"},
		{Name: "Uniswap V3", Protocol: "Uniswap", CostPct: 0.003, TimeSeconds: 15, Reliability: 0.95, MinAmount: 50, MaxAmount: 5000000, RiskLevel: "low", BestFor: "crypto"},
		{Name: "Direct L2 Settlement", Protocol: "OP-Stack", CostPct: 0.006, TimeSeconds: 10, Reliability: 0.99, MinAmount: 1, MaxAmount: 1000, RiskLevel: "low", BestFor: "small_amount"},
		{Name: "Batched zk-Relay", Protocol: "zkSync Era", CostPct: 0.008, TimeSeconds: 45, Reliability: 0.995, MinAmount: 10000, MaxAmount: models.Unbounded, RiskLevel: "very_low", BestFor: "large_amount"},
		{Name: "Optimistic Settlement", Protocol: "Optimism", CostPct: 0.0065, TimeSeconds: 25, Reliability: 0.97, MinAmount: 500, MaxAmount: 50000, RiskLevel: "medium", BestFor: "medium_amount"},
	}
}

// PathOptimizer scores the route catalog against order size and
// decision confidence. The catalog is non-empty by construction, so a
// best path always exists.
type PathOptimizer struct {
	catalog []models.SettlementPath
}

func NewPathOptimizer(catalog []models.SettlementPath) *PathOptimizer {
	if len(catalog) == 0 {
		catalog = DefaultPathCatalog()
	}
	return &PathOptimizer{catalog: catalog}
}

type scoredPath struct {
	path  models.SettlementPath
	index int
	score float64
}

// Optimize picks the highest-scoring path and the next three as
// alternatives. Ties go to the earlier catalog entry.
func (o *PathOptimizer) Optimize(category models.PairCategory, amount, confidence float64) models.PathRecommendation {
	ranked := o.rank(category, amount, confidence)
	best := ranked[0]

	alternatives := make([]string, 0, 3)
	for _, sp := range ranked[1:] {
		if len(alternatives) == 3 {
			break
		}
		alternatives = append(alternatives, sp.path.Name)
	}

	estTime := best.path.TimeSeconds
	if amount > slowSettleThreshold {
		estTime *= slowSettleFactor
	}

	return models.PathRecommendation{
		Path:                 best.path.Name,
		Protocol:             best.path.Protocol,
		Score:                best.score,
		CostPct:              best.path.CostPct,
		EstimatedCost:        amount * best.path.CostPct,
		EstimatedTimeSeconds: estTime,
		Reliability:          best.path.Reliability,
		RiskLevel:            best.path.RiskLevel,
		Reason:               buildReason(best.path, amount, confidence),
		Alternatives:         alternatives,
	}
}

// CompareAll returns every catalog path with its score, best first.
func (o *PathOptimizer) CompareAll(category models.PairCategory, amount, confidence float64) []models.RankedPath {
	ranked := o.rank(category, amount, confidence)
	out := make([]models.RankedPath, 0, len(ranked))
	for _, sp := range ranked {
		out = append(out, models.RankedPath{
			Path:     sp.path.Name,
			Protocol: sp.path.Protocol,
			Score:    sp.score,
			CostPct:  sp.path.CostPct,
		})
	}
	return out
}

// SafePath is the fixed fallback route substituted when upstream is
// degraded. Not scored; lowest risk wins over everything else.
func (o *PathOptimizer) SafePath(amount float64) models.PathRecommendation {
	return models.PathRecommendation{
		Path:                 "Safe Mode Settlement",
		Protocol:             "Multi-sig Escrow",
		CostPct:              0.01,
		EstimatedCost:        amount * 0.01,
		EstimatedTimeSeconds: 60,
		Reliability:          0.99,
		RiskLevel:            "very_low",
		Reason:               "Degraded quote data - routed through escrow for manual verification",
		Alternatives:         []string{"Manual Review", "Delayed Settlement"},
		SafeMode:             true,
	}
}

func (o *PathOptimizer) rank(category models.PairCategory, amount, confidence float64) []scoredPath {
	w := weightsFor(amount, confidence)

	ranked := make([]scoredPath, 0, len(o.catalog))
	for i, p := range o.catalog {
		ranked = append(ranked, scoredPath{
			path:  p,
			index: i,
			score: o.score(p, category, amount, w),
		})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		return ranked[a].index < ranked[b].index
	})
	return ranked
}

func (o *PathOptimizer) score(p models.SettlementPath, category models.PairCategory, amount float64, w pathWeights) float64 {
	costScore := 1 - minf(p.CostPct/costCeiling, 1)
	speedScore := 1 - minf(p.TimeSeconds/timeCeiling, 1)
	liquidityScore := liquidityFit(p, amount)

	total := w.cost*costScore + w.speed*speedScore + w.reliability*p.Reliability + w.liquidity*liquidityScore
	if p.BestFor == string(category) {
		total *= affinityBonus
	}
	return total
}

func weightsFor(amount, confidence float64) pathWeights {
	w := pathWeights{cost: 0.4, speed: 0.3, reliability: 0.2, liquidity: 0.1}
	switch {
	case amount > largeOrderThreshold:
		w = pathWeights{cost: 0.2, speed: 0.1, reliability: 0.5, liquidity: 0.2}
	case amount < smallOrderThreshold:
		w = pathWeights{cost: 0.3, speed: 0.5, reliability: 0.1, liquidity: 0.1}
	}
	if confidence < lowConfidenceCutoff {
		// Weights stop summing to 1 here; scores are comparative only.
		w.reliability += 0.2
		w.cost -= 0.1
		w.speed -= 0.1
	}
	return w
}

func liquidityFit(p models.SettlementPath, amount float64) float64 {
	if amount < p.MinAmount {
		return 0.5
	}
	if p.MaxAmount != models.Unbounded && amount > p.MaxAmount {
		return 0.3
	}
	return 1.0
}

func buildReason(p models.SettlementPath, amount, confidence float64) string {
	var reason string
	switch {
	case amount > largeOrderThreshold:
		reason = fmt.Sprintf("Large order routed via %s - reliability weighted", p.Protocol)
	case amount < smallOrderThreshold:
		reason = fmt.Sprintf("Small order routed via %s - speed weighted", p.Protocol)
	default:
		reason = fmt.Sprintf("Routed via %s - balanced cost, speed and reliability", p.Protocol)
	}
	if confidence < lowConfidenceCutoff {
		reason += " | Low confidence - prioritized security"
	}
	return reason
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
