package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planner/internal/domain"
	"planner/internal/service"
)

// WizardHandler handles HTTP requests for wizard sessions.
type WizardHandler struct {
	wizardService     *service.WizardService
	processingService *service.ProcessingService
}

// NewWizardHandler creates a new WizardHandler.
func NewWizardHandler(wizardService *service.WizardService, processingService *service.ProcessingService) *WizardHandler {
	return &WizardHandler{
		wizardService:     wizardService,
		processingService: processingService,
	}
}

// WizardErrorResponse is returned when a command is refused. View carries the
// session's state after the attempt, including flagged fields and live-region text.
type WizardErrorResponse struct {
	Error string             `json:"error"`
	View  *service.ReadModel `json:"view,omitempty"`
}

// PreferenceRequest is the HTTP request body for a preference toggle.
type PreferenceRequest struct {
	Selected *bool   `json:"selected,omitempty"`
	Level    *string `json:"level,omitempty"`
}

// EditRequest is the HTTP request body for jumping back from the review step.
type EditRequest struct {
	Target *int `json:"target"`
}

// DismissRequest is the HTTP request body for dismissing a notice.
type DismissRequest struct {
	NoticeID string `json:"notice_id"`
}

// ProcessingResponse is the HTTP response for the processing status.
type ProcessingResponse struct {
	Message   string `json:"message"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Done      bool   `json:"done"`
	PlanID    string `json:"plan_id,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// Open handles POST /v1/wizard/sessions
func (h *WizardHandler) Open(c *gin.Context) {
	view, err := h.wizardService.Open(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, view)
}

// Get handles GET /v1/wizard/sessions/:id
func (h *WizardHandler) Get(c *gin.Context) {
	view, err := h.wizardService.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, view)
}

// UpdateDraft handles PATCH /v1/wizard/sessions/:id/draft
func (h *WizardHandler) UpdateDraft(c *gin.Context) {
	var patch service.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	h.dispatch(c, service.UpdateDraft{Patch: patch})
}

// UpdatePreference handles PUT /v1/wizard/sessions/:id/preferences/:preference
func (h *WizardHandler) UpdatePreference(c *gin.Context) {
	var req PreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Selected == nil && req.Level == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "selected or level is required"})
		return
	}

	pref := domain.Preference(c.Param("preference"))
	if !pref.Valid() {
		respondError(c, service.ErrInvalidPreference)
		return
	}

	cmd := service.UpdatePreference{Preference: pref, Selected: req.Selected}
	if req.Level != nil {
		level := domain.InterestLevel(*req.Level)
		cmd.Level = &level
	}
	h.dispatch(c, cmd)
}

// Next handles POST /v1/wizard/sessions/:id/next
func (h *WizardHandler) Next(c *gin.Context) {
	h.dispatch(c, service.Next{})
}

// Back handles POST /v1/wizard/sessions/:id/back
func (h *WizardHandler) Back(c *gin.Context) {
	h.dispatch(c, service.Back{})
}

// Edit handles POST /v1/wizard/sessions/:id/edit
func (h *WizardHandler) Edit(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Target == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "target is required"})
		return
	}

	h.dispatch(c, service.EditJump{Target: domain.Step(*req.Target)})
}

// Save handles POST /v1/wizard/sessions/:id/save
func (h *WizardHandler) Save(c *gin.Context) {
	h.dispatch(c, service.Save{})
}

// Generate handles POST /v1/wizard/sessions/:id/generate
func (h *WizardHandler) Generate(c *gin.Context) {
	cmd := &service.Generate{}
	view, err := h.wizardService.Dispatch(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		respondWizardError(c, view, err)
		return
	}

	respondJSON(c, http.StatusAccepted, gin.H{
		"plan_id": cmd.Request.ID,
		"view":    view,
	})
}

// Clear handles DELETE /v1/wizard/sessions/:id
func (h *WizardHandler) Clear(c *gin.Context) {
	h.dispatch(c, service.Clear{})
}

// DismissNotice handles POST /v1/wizard/sessions/:id/notices/dismiss
func (h *WizardHandler) DismissNotice(c *gin.Context) {
	var req DismissRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.NoticeID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "notice_id is required"})
		return
	}

	h.dispatch(c, service.DismissNotice{ID: req.NoticeID})
}

// Processing handles GET /v1/wizard/sessions/:id/processing
func (h *WizardHandler) Processing(c *gin.Context) {
	status, err := h.processingService.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if status == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no processing in progress"})
		return
	}

	respondJSON(c, http.StatusOK, ProcessingResponse{
		Message:   status.Message,
		Index:     status.Index,
		Total:     status.Total,
		Done:      status.Done,
		PlanID:    status.PlanID,
		UpdatedAt: status.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// dispatch runs a command and writes the read model.
func (h *WizardHandler) dispatch(c *gin.Context, cmd service.Command) {
	view, err := h.wizardService.Dispatch(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		respondWizardError(c, view, err)
		return
	}

	respondJSON(c, http.StatusOK, view)
}

// respondWizardError writes a refused command, attaching the view when the session exists.
func respondWizardError(c *gin.Context, view service.ReadModel, err error) {
	resp := WizardErrorResponse{Error: err.Error()}
	if view.SessionID != "" {
		resp.View = &view
	}
	c.JSON(mapErrorToHTTPStatus(err), resp)
}
