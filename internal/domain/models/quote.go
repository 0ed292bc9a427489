package models

import "time"

// RateTick is a single price observation from a streaming source.
type RateTick struct {
	Pair      string    `json:"pair"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// SourceQuote is one fetch attempt against an external quote provider.
// Never persisted; it only lives for the duration of one aggregation.
type SourceQuote struct {
	Source    string
	Pair      string
	Price     float64
	FetchedAt time.Time
	Valid     bool
}

// AggregatedQuote is the combined view over all responding sources.
// Simulated marks a quote synthesized from the reference price when no
// source returned usable data. OK is false only when there is neither
// source data nor a reference price for the pair.
type AggregatedQuote struct {
	Pair        string    `json:"pair"`
	Price       float64   `json:"price"`
	Confidence  float64   `json:"confidence"`
	Spread      float64   `json:"spread"`
	SourceCount int       `json:"source_count"`
	Sources     []string  `json:"sources,omitempty"`
	Simulated   bool      `json:"simulated"`
	OK          bool      `json:"ok"`
	Timestamp   time.Time `json:"timestamp"`
}

// ModelInference is the forecasting collaborator's output for a pair.
// Available=false means the model could not produce a prediction; the
// consumer must fall back rather than fail.
type ModelInference struct {
	Pair           string  `json:"pair"`
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
	Horizon        string  `json:"horizon,omitempty"`
	ModelVersion   string  `json:"model_version,omitempty"`
	Available      bool    `json:"available"`
}

// QuoteDecision is the final per-request pricing verdict. Immutable
// once returned.
type QuoteDecision struct {
	Pair           string       `json:"pair"`
	CanonicalPair  string       `json:"canonical_pair"`
	Category       PairCategory `json:"category"`
	Amount         float64      `json:"amount"`
	CurrentPrice   float64      `json:"current_price"`
	PredictedPrice float64      `json:"predicted_price"`
	PriceDelta     float64      `json:"price_delta"`
	Confidence     float64      `json:"confidence"`
	Strategy       string       `json:"strategy"`
	ModelQuality   string       `json:"model_quality"`
	Horizon        string       `json:"horizon"`
	MeetsThreshold bool         `json:"meets_threshold"`
	Degraded       bool         `json:"degraded"`
	Simulated      bool         `json:"simulated"`
	SourceCount    int          `json:"source_count"`
	Spread         float64      `json:"spread"`
	Timestamp      time.Time    `json:"timestamp"`
}

// QuoteResult pairs a decision with its settlement recommendation.
type QuoteResult struct {
	Decision       QuoteDecision      `json:"decision"`
	Recommendation PathRecommendation `json:"recommendation"`
	CacheHit       bool               `json:"cache_hit"`
}
