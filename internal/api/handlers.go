package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homeworth/server/internal/models"
	"homeworth/server/internal/providers"
	"homeworth/server/internal/ratelimit"
	"homeworth/server/internal/strategy"
	"homeworth/server/internal/valuation"
)

// Estimator is the orchestrator surface the handlers need.
type Estimator interface {
	Estimate(ctx context.Context, rawAddress string) (*models.ValuationResponse, bool, string, error)
}

type Handler struct {
	estimator Estimator
	limiter   *ratelimit.Limiter
	apiKey    string
	logger    *logrus.Logger
}

type ValuationRequest struct {
	Address string `json:"address" binding:"required,min=4"`
}

func NewHandler(estimator Estimator, limiter *ratelimit.Limiter, apiKey string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Handler{
		estimator: estimator,
		limiter:   limiter,
		apiKey:    apiKey,
		logger:    logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pong": true})
}

// GetValuation serves GET /v1/valuation?address=...
func (h *Handler) GetValuation(c *gin.Context) {
	address := c.Query("address")
	if len(strings.TrimSpace(address)) < 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address must be at least 4 characters"})
		return
	}
	h.serveValuation(c, address)
}

// PostValuation serves POST /v1/valuation with {"address": ...}.
func (h *Handler) PostValuation(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Debug("Failed to parse valuation request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required and must be at least 4 characters"})
		return
	}
	if len(strings.TrimSpace(req.Address)) < 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address must be at least 4 characters"})
		return
	}
	h.serveValuation(c, req.Address)
}

func (h *Handler) serveValuation(c *gin.Context, address string) {
	response, cached, etag, err := h.estimator.Estimate(c.Request.Context(), address)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("ETag", etag)
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}

	response.Cached = cached
	response.ETag = etag
	c.JSON(http.StatusOK, response)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	var strategyErr *strategy.Error
	switch {
	case errors.Is(err, valuation.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, providers.ErrUnavailable):
		h.logger.WithError(err).Error("Data provider unavailable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream data provider unavailable"})
	case errors.As(err, &strategyErr):
		h.logger.WithError(err).Error("Valuation strategy failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "valuation strategy failed"})
	default:
		h.logger.WithError(err).Error("Valuation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute valuation"})
	}
}
