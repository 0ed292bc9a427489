package service

import (
	"context"

	"github.com/ybc112/AetherPay/internal/domain/models"
)

// PriceSource fetches a spot price for a pair from one external
// provider. ok=false covers timeouts, transport errors and pairs the
// provider does not list; a source never fails the overall request.
type PriceSource interface {
	Name() string
	FetchPrice(ctx context.Context, pair string) (float64, bool)
}

// Predictor is the external model-inference collaborator.
type Predictor interface {
	Predict(ctx context.Context, pair string) (models.ModelInference, error)
	Health(ctx context.Context) error
}
