package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/Gopalvamsikrishna/SupplyChainTrack/internal/api/shared/errors"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/logger"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/query"
)

// Reasons returned in the body of a rejected payload upload
const (
	REASON_MISSING      = "missing"
	REASON_INVALID_BODY = "invalid_body"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// Verify returns the provenance timeline and risk score of a batch
	// GET /verify/:batchId
	Verify(c *gin.Context)

	// StorePayload merges an off-chain sensor payload into its reading
	// POST /storePayload
	StorePayload(c *gin.Context)

	// GetActor returns the display name registered for an address
	// GET /actors/:address
	GetActor(c *gin.Context)

	// HealthCheck returns the health status of the API and its store
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	service query.Service
}

// NewHandler creates a new REST API handler over the query service
func NewHandler(svc query.Service) Handler {
	return &handler{
		service: svc,
	}
}

// Verify returns the provenance timeline and risk score of a batch.
// An unknown batch is a 200 with a null batch.
func (h *handler) Verify(c *gin.Context) {
	batchID := c.Param("batchId")

	resp, err := h.service.Verify(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBatchID) {
			respondBadRequest(c, "Invalid batch id", err.Error())
			return
		}
		respondError(c, err, "Failed to verify batch")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// StorePayload merges an off-chain sensor payload into its reading.
// Responses keep the {ok, reason} shape for every outcome.
func (h *handler) StorePayload(c *gin.Context) {
	// an empty body is treated as an upload with every field missing
	var req query.StorePayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.DebugCtx(c.Request.Context(), "Invalid payload upload body", zap.Error(err))
		c.JSON(http.StatusBadRequest, query.StorePayloadResponse{OK: false, Reason: REASON_INVALID_BODY})
		return
	}

	resp, err := h.service.StorePayload(c.Request.Context(), req)
	if err != nil {
		var apiErr *apierrors.APIError
		switch {
		case errors.Is(err, domain.ErrMissingPayloadFields):
			c.JSON(http.StatusBadRequest, query.StorePayloadResponse{OK: false, Reason: REASON_MISSING})
		case errors.As(err, &apiErr) && statusForCode(apiErr.Code) == http.StatusBadRequest:
			c.JSON(http.StatusBadRequest, query.StorePayloadResponse{OK: false, Reason: REASON_INVALID_BODY})
		default:
			logger.ErrorCtx(c.Request.Context(), err,
				zap.String("batchID", req.BatchID),
				zap.String("readingHash", req.ReadingHash))
			c.JSON(http.StatusInternalServerError, query.StorePayloadResponse{OK: false})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetActor returns the display name registered for an address
func (h *handler) GetActor(c *gin.Context) {
	address := c.Param("address")

	actor, err := h.service.GetActor(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			respondBadRequest(c, "Invalid address", err.Error())
			return
		}
		respondError(c, err, "Failed to get actor")
		return
	}

	if actor == nil {
		respondNotFound(c, "Actor not found")
		return
	}

	c.JSON(http.StatusOK, actor)
}

// HealthCheck returns the health status of the API and its store
func (h *handler) HealthCheck(c *gin.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		logger.WarnCtx(c.Request.Context(), "Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"service": "provenance-indexer",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "provenance-indexer",
	})
}
