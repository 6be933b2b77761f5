package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courtside/courtside-api/internal/middleware"
	"github.com/courtside/courtside-api/internal/service"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
	"github.com/courtside/courtside-api/pkg/response"
)

type progressService interface {
	Calculate(ctx context.Context, identity string, req service.CalculateRequest) (*service.CalculateResponse, error)
	History(ctx context.Context, goalID string, limit, offset int) (*service.ProgressHistory, error)
}

type exportService interface {
	Export(ctx context.Context, goalID, format string) (*service.ExportFile, error)
}

// ProgressHandler exposes goal progress calculation and history endpoints.
type ProgressHandler struct {
	progress progressService
	exports  exportService
}

// NewProgressHandler constructs handler.
func NewProgressHandler(progress progressService, exports exportService) *ProgressHandler {
	return &ProgressHandler{progress: progress, exports: exports}
}

// Calculate godoc
// @Summary Calculate goal progress for a session
// @Description Runs a single goal when goal_id is present, otherwise the full batch of active goals.
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body service.CalculateRequest true "Calculation scope"
// @Success 200 {object} response.Envelope
// @Router /goals/calculate [post]
func (h *ProgressHandler) Calculate(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.progress.Calculate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// History godoc
// @Summary Paginated progress history for a goal
// @Tags Progress
// @Produce json
// @Param goalId path string true "Goal id"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {object} response.Envelope
// @Router /goals/{goalId}/progress [get]
func (h *ProgressHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	history, err := h.progress.History(c.Request.Context(), c.Param("goalId"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// Export godoc
// @Summary Download progress history as CSV or PDF
// @Tags Progress
// @Produce text/csv
// @Produce application/pdf
// @Param goalId path string true "Goal id"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Router /goals/{goalId}/progress/export [get]
func (h *ProgressHandler) Export(c *gin.Context) {
	file, err := h.exports.Export(c.Request.Context(), c.Param("goalId"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
