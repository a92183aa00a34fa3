package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planner/internal/domain"
	"planner/internal/service"
)

// PlanHandler handles HTTP requests for submitted itinerary requests.
type PlanHandler struct {
	planService *service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// PlanResponse is the HTTP response for plan operations.
type PlanResponse struct {
	ID        string              `json:"id"`
	SessionID string              `json:"session_id"`
	Status    string              `json:"status"`
	Request   *domain.PlanRequest `json:"request"`
	CreatedAt string              `json:"created_at"`
}

func newPlanResponse(plan *domain.Plan) PlanResponse {
	return PlanResponse{
		ID:        plan.ID,
		SessionID: plan.SessionID,
		Status:    string(plan.Status),
		Request:   plan.Request,
		CreatedAt: plan.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetPlan handles GET /v1/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPlanResponse(plan))
}

// ListSessionPlans handles GET /v1/wizard/sessions/:id/plans
func (h *PlanHandler) ListSessionPlans(c *gin.Context) {
	plans, err := h.planService.ListSessionPlans(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PlanResponse, 0, len(plans))
	for _, plan := range plans {
		response = append(response, newPlanResponse(plan))
	}

	c.JSON(http.StatusOK, response)
}
