package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
)

// HTTPPredictor talks to the external forecasting service. The caller
// treats any error as "model unavailable" and falls back; this client
// never retries more than once so a slow model cannot stall a quote.
type HTTPPredictor struct {
	base    *HTTPServiceBase
	horizon string
}

func NewHTTPPredictor(baseURL string, timeout time.Duration, horizon string) *HTTPPredictor {
	return &HTTPPredictor{base: NewHTTPServiceBase(baseURL, timeout), horizon: horizon}
}

type predictReq struct {
	Pair    string `json:"pair"`
	Horizon string `json:"horizon"`
}

type predictResp struct {
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
	ModelVersion   string  `json:"model_version"`
	Available      bool    `json:"available"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, pair string) (models.ModelInference, error) {
	var pr predictResp
	err := p.base.PostJSON(ctx, "/predict", predictReq{Pair: pair, Horizon: p.horizon}, &pr)
	if err != nil {
		return models.ModelInference{Pair: pair}, fmt.Errorf("predict: %w", err)
	}
	if !pr.Available {
		return models.ModelInference{Pair: pair}, nil
	}
	return models.ModelInference{
		Pair:           pair,
		PredictedPrice: pr.PredictedPrice,
		Confidence:     pr.Confidence,
		Horizon:        p.horizon,
		ModelVersion:   pr.ModelVersion,
		Available:      true,
	}, nil
}

type healthResp struct {
	Status string `json:"status"`
}

// Health probes the service; any non-"ok" status is an error.
func (p *HTTPPredictor) Health(ctx context.Context) error {
	var hr healthResp
	if err := p.base.GetJSON(ctx, "/health", &hr); err != nil {
		return err
	}
	if hr.Status != "ok" {
		return fmt.Errorf("inference service unhealthy: %s", hr.Status)
	}
	return nil
}

var _ domsvc.Predictor = (*HTTPPredictor)(nil)
