package api

import (
	"net/http"
	"time"

	drepo "github.com/ybc112/AetherPay/internal/domain/repository"
	xhttp "github.com/ybc112/AetherPay/pkg/http"

	"github.com/labstack/echo/v4"
)

// streamStatus is the subset of the collector the health probe needs.
type streamStatus interface {
	IsConnected() bool
}

// HealthEchoHandler reports liveness of the storage and stream layers.
type HealthEchoHandler struct {
	store  drepo.RateStore
	stream streamStatus
}

func NewHealthEchoHandler(store drepo.RateStore, stream streamStatus) *HealthEchoHandler {
	return &HealthEchoHandler{store: store, stream: stream}
}

func (h *HealthEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", h.Health)
}

func (h *HealthEchoHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	healthy := true

	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			status["storage"] = err.Error()
			healthy = false
		} else {
			status["storage"] = "ok"
		}
	}
	if h.stream != nil {
		if h.stream.IsConnected() {
			status["stream"] = "connected"
		} else {
			status["stream"] = "disconnected"
		}
	}

	if !healthy {
		status["status"] = "degraded"
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, status)
	}
	return xhttp.SuccessResponse(c, status)
}

// Handlers bundles route groups into the single registration point the
// server expects.
type Handlers struct {
	Quote  *QuoteEchoHandler
	Health *HealthEchoHandler
}

func NewHandlers(quote *QuoteEchoHandler, health *HealthEchoHandler) *Handlers {
	return &Handlers{Quote: quote, Health: health}
}

func (h *Handlers) RegisterRoutes(e *echo.Echo) {
	if h.Quote != nil {
		h.Quote.RegisterRoutes(e)
	}
	if h.Health != nil {
		h.Health.RegisterRoutes(e)
	}
}
