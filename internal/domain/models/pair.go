package models

// PairCategory identifies the pricing regime a trading pair belongs to.
type PairCategory string

const (
	CategoryStablecoin PairCategory = "stablecoin"
	CategoryFiat       PairCategory = "fiat"
	CategoryCrypto     PairCategory = "crypto"
	CategoryOther      PairCategory = "other"
)

// Strategy tags attached to a QuoteDecision.
const (
	StrategyDirectModel          = "direct_model"
	StrategyConservativeWeighted = "conservative_weighted"
	StrategyHardcodedStable      = "hardcoded_stable"
	StrategyLatestRateOnly       = "latest_rate_only"
	StrategyDegradedDefault      = "degraded_default"
)
