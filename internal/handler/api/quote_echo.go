package api

import (
	"errors"
	"net/http"
	"time"

	models "github.com/ybc112/AetherPay/internal/domain/models"
	svcmetrics "github.com/ybc112/AetherPay/internal/service/metrics"
	"github.com/ybc112/AetherPay/internal/service/ratelimit"
	"github.com/ybc112/AetherPay/internal/usecase"
	xhttp "github.com/ybc112/AetherPay/pkg/http"
	xlogger "github.com/ybc112/AetherPay/pkg/logger"

	"github.com/labstack/echo/v4"
)

// QuoteEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type QuoteEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.QuoteService
	limiter *ratelimit.Limiter

	limitEnabled bool
	limitMax     float64
	limitRefill  float64
}

func NewQuoteEchoHandler(logger *xlogger.Logger, svc *usecase.QuoteService, limiter *ratelimit.Limiter, enabled bool, max int, window time.Duration) *QuoteEchoHandler {
	svcmetrics.Register()
	refill := float64(max)
	if window > 0 {
		refill = float64(max) / window.Seconds()
	}
	return &QuoteEchoHandler{
		logger:       logger,
		svc:          svc,
		limiter:      limiter,
		limitEnabled: enabled,
		limitMax:     float64(max),
		limitRefill:  refill,
	}
}

func (h *QuoteEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/quote", h.Quote)
	g.GET("/paths/compare", h.ComparePaths)
	g.GET("/model/health", h.ModelHealth)
}

func (h *QuoteEchoHandler) Quote(c echo.Context) error {
	start := time.Now()
	if !h.allow(c) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
	}

	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.QuoteErrors.WithLabelValues("quote").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.GetQuote(c.Request().Context(), req.Pair, req.Amount, req.Threshold)
	if err != nil {
		svcmetrics.QuoteErrors.WithLabelValues("quote").Inc()
		if appErr := requestError(err); appErr != nil {
			return xhttp.AppErrorResponse(c, appErr)
		}
		h.logger.Error("quote usecase error", xlogger.String("pair", req.Pair), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	svcmetrics.QuoteLatency.WithLabelValues("quote").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, res)
}

func (h *QuoteEchoHandler) ComparePaths(c echo.Context) error {
	start := time.Now()
	if !h.allow(c) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", http.StatusTooManyRequests))
	}

	req := &models.PathCompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.QuoteErrors.WithLabelValues("paths_compare").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	ranked, err := h.svc.ComparePaths(c.Request().Context(), req.Pair, req.Amount, req.Confidence)
	if err != nil {
		svcmetrics.QuoteErrors.WithLabelValues("paths_compare").Inc()
		if appErr := requestError(err); appErr != nil {
			return xhttp.AppErrorResponse(c, appErr)
		}
		h.logger.Error("path compare usecase error", xlogger.String("pair", req.Pair), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	svcmetrics.QuoteLatency.WithLabelValues("paths_compare").Observe(time.Since(start).Seconds())
	return xhttp.ListResponse(c, ranked, int64(len(ranked)))
}

func (h *QuoteEchoHandler) ModelHealth(c echo.Context) error {
	if err := h.svc.ModelHealth(c.Request().Context()); err != nil {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{
			"model":  "unavailable",
			"reason": err.Error(),
		})
	}
	return xhttp.SuccessResponse(c, map[string]string{"model": "ok"})
}

func (h *QuoteEchoHandler) allow(c echo.Context) bool {
	if !h.limitEnabled || h.limiter == nil {
		return true
	}
	return h.limiter.Allow(c.RealIP(), h.limitMax, h.limitRefill)
}

// requestError maps usecase validation sentinels to client errors.
func requestError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidPair):
		return xhttp.NewAppError("ERR_INVALID_PAIR", "pair", err.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidAmount):
		return xhttp.NewAppError("ERR_INVALID_AMOUNT", "amount", err.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidThreshold):
		return xhttp.NewAppError("ERR_INVALID_THRESHOLD", "threshold", err.Error(), http.StatusBadRequest)
	}
	return nil
}
