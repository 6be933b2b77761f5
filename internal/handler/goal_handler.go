package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courtside/courtside-api/internal/middleware"
	"github.com/courtside/courtside-api/internal/models"
	"github.com/courtside/courtside-api/internal/service"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
	"github.com/courtside/courtside-api/pkg/response"
)

// GoalHandler exposes goal lifecycle endpoints.
type GoalHandler struct {
	goals *service.GoalService
}

// NewGoalHandler constructs handler.
func NewGoalHandler(goals *service.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// Create godoc
// @Summary Create a goal
// @Tags Goals
// @Accept json
// @Produce json
// @Param payload body service.CreateGoalRequest true "Goal payload"
// @Success 201 {object} response.Envelope
// @Router /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	goal, err := h.goals.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, goal)
}

// List godoc
// @Summary List goals
// @Tags Goals
// @Produce json
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	filter := models.GoalFilter{MetricID: c.Query("metric_id")}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	goals, pagination, err := h.goals.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goals, pagination)
}

// Get godoc
// @Summary Get one goal
// @Tags Goals
// @Produce json
// @Param goalId path string true "Goal id"
// @Success 200 {object} response.Envelope
// @Router /goals/{goalId} [get]
func (h *GoalHandler) Get(c *gin.Context) {
	goal, err := h.goals.Get(c.Request.Context(), c.Param("goalId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, goal, nil)
}

// Deactivate godoc
// @Summary Deactivate a goal
// @Tags Goals
// @Produce json
// @Param goalId path string true "Goal id"
// @Success 200 {object} response.Envelope
// @Router /goals/{goalId}/deactivate [post]
func (h *GoalHandler) Deactivate(c *gin.Context) {
	if err := h.goals.Deactivate(c.Request.Context(), c.Param("goalId")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "deactivated"}, nil)
}

// Metrics godoc
// @Summary List metric definitions
// @Tags Goals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics/definitions [get]
func (h *GoalHandler) Metrics(c *gin.Context) {
	metrics, err := h.goals.Metrics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metrics, nil)
}
