package models

// Requests for quote HTTP endpoints. Defined in domain for consistency and reuse.

type QuoteRequest struct {
	Pair      string  `query:"pair" json:"pair" validate:"required"`
	Amount    float64 `query:"amount" json:"amount" default:"1000" validate:"gt=0"`
	Threshold float64 `query:"threshold" json:"threshold" default:"0.85" validate:"gte=0,lte=1"`
}

type PathCompareRequest struct {
	Pair       string  `query:"pair" json:"pair" validate:"required"`
	Amount     float64 `query:"amount" json:"amount" default:"1000" validate:"gt=0"`
	Confidence float64 `query:"confidence" json:"confidence" default:"0.9" validate:"gte=0,lte=1"`
}
