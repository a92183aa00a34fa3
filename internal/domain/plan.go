package domain

import "time"

// PlanStatus represents the state of a submitted itinerary request.
type PlanStatus string

const (
	PlanStatusSubmitted PlanStatus = "SUBMITTED"
	PlanStatusFailed    PlanStatus = "FAILED"
)

// PlanRequest is the finalized draft handed to itinerary generation.
type PlanRequest struct {
	ID              string               `json:"id"`
	SessionID       string               `json:"session_id"`
	Budget          float64              `json:"budget"`
	Currency        Currency             `json:"currency"`
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	FlexibleDates   bool                 `json:"flexible_dates"`
	Departure       string               `json:"departure"`
	Preferences     []SelectedPreference `json:"preferences"`
	Dietary         string               `json:"dietary"`
	Accessibility   string               `json:"accessibility"`
	SpecialRequests string               `json:"special_requests"`
	EmailCopy       bool                 `json:"email_copy"`
	SubmittedAt     time.Time            `json:"submitted_at"`
}

// NewPlanRequest builds the generation payload from a draft.
func NewPlanRequest(id, sessionID string, d *TripDraft, now time.Time) *PlanRequest {
	return &PlanRequest{
		ID:              id,
		SessionID:       sessionID,
		Budget:          d.Budget,
		Currency:        d.Currency,
		StartDate:       d.StartDate.String(),
		EndDate:         d.EndDate.String(),
		FlexibleDates:   d.FlexibleDates,
		Departure:       d.Departure,
		Preferences:     d.SelectedPreferences(),
		Dietary:         d.Dietary,
		Accessibility:   d.Accessibility,
		SpecialRequests: d.SpecialRequests,
		EmailCopy:       d.EmailCopy,
		SubmittedAt:     now,
	}
}

// Plan is a stored itinerary request.
type Plan struct {
	ID        string
	SessionID string
	Status    PlanStatus
	Request   *PlanRequest
	CreatedAt time.Time
}
