package models

// SettlementPath is one entry of the static route catalog. Loaded once
// at startup, read-only afterwards.
type SettlementPath struct {
	Name        string
	Protocol    string
	CostPct     float64 // fee as a fraction of notional
	TimeSeconds float64
	Reliability float64
	MinAmount   float64
	MaxAmount   float64 // 0 means unbounded
	RiskLevel   string
	BestFor     string // category or amount-bucket affinity tag
}

// Unbounded marks a path with no upper notional limit.
const Unbounded = 0

// PathRecommendation is the optimizer's pick for one request.
type PathRecommendation struct {
	Path                 string   `json:"path"`
	Protocol             string   `json:"protocol"`
	Score                float64  `json:"score"`
	CostPct              float64  `json:"cost_pct"`
	EstimatedCost        float64  `json:"estimated_cost"`
	EstimatedTimeSeconds float64  `json:"estimated_time_seconds"`
	Reliability          float64  `json:"reliability"`
	RiskLevel            string   `json:"risk_level"`
	Reason               string   `json:"reason"`
	Alternatives         []string `json:"alternatives"`
	SafeMode             bool     `json:"safe_mode,omitempty"`
}

// RankedPath is one row of a full catalog comparison.
type RankedPath struct {
	Path     string  `json:"path"`
	Protocol string  `json:"protocol"`
	Score    float64 `json:"score"`
	CostPct  float64 `json:"cost_pct"`
}
