package claims

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightside-counseling/claims-api/internal/handler"
	"github.com/brightside-counseling/claims-api/internal/model"
	"github.com/brightside-counseling/claims-api/internal/service/claims"
)

type Handler struct {
	service claims.Submitter
}

func NewHandler(service claims.Submitter) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/claims")
	{
		group.POST("/validate", h.ValidateSessions)
		group.POST("/submit", h.SubmitBatch)
		group.GET("/batches", h.ListBatches)
	}
}

// ValidateSessions runs the rule chain over the requested sessions and
// returns the per-session verdict map.
func (h *Handler) ValidateSessions(c *gin.Context) {
	var req model.ValidateSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	results, err := h.service.Validate(c.Request.Context(), req.SessionIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(results))
}

// SubmitBatch assembles and uploads a claim batch. The response carries only
// the submitted count; per-session reasons come from the validate endpoint.
func (h *Handler) SubmitBatch(c *gin.Context) {
	var req model.SubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	numSubmitted, err := h.service.Submit(c.Request.Context(), req.SessionIDs, c.GetString("userEmail"))
	if err != nil {
		if errors.Is(err, model.ErrNothingToSubmit) {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("no valid sessions to submit"))
			return
		}
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse("batch submission failed"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"num_submitted": numSubmitted}))
}

func (h *Handler) ListBatches(c *gin.Context) {
	batches, err := h.service.ListBatches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(batches))
}
