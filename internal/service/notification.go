package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"planner/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationDraftSaveFailed NotificationType = "DRAFT_SAVE_FAILED"
	NotificationPlanSubmitted   NotificationType = "PLAN_SUBMITTED"
	NotificationPlanEmailCopy   NotificationType = "PLAN_EMAIL_COPY"
)

// Notification represents a notification to be sent.
type Notification struct {
	ID          string
	Type        NotificationType
	RecipientID string // Wizard session ID
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// Notice is a user-visible, dismissible message attached to the wizard view.
type Notice struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	Dismissible bool             `json:"dismissible"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationService handles notification delivery.
type NotificationService struct {
	now func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{now: time.Now}
}

// DraftSaveFailed builds the notice shown when a draft could not be written.
// The notice is returned to the caller rather than delivered out of band.
func (s *NotificationService) DraftSaveFailed(sessionID string, err error) Notice {
	notice := Notice{
		ID:          uuid.New().String(),
		Type:        NotificationDraftSaveFailed,
		Message:     "We couldn't save your trip draft. Your changes are still here, please try saving again.",
		Dismissible: true,
		CreatedAt:   s.now(),
	}

	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Error=%v", notice.Type, sessionID, err)

	return notice
}

// NotifyPlanSubmitted tells the traveller their itinerary request was accepted,
// and sends the email copy they asked for.
func (s *NotificationService) NotifyPlanSubmitted(ctx context.Context, plan *domain.Plan) error {
	notification := Notification{
		Type:        NotificationPlanSubmitted,
		RecipientID: plan.SessionID,
		Title:       "Itinerary Requested",
		Message:     fmt.Sprintf("Your trip from %s is being planned.", plan.Request.Departure),
		Data: map[string]interface{}{
			"plan_id":    plan.ID,
			"start_date": plan.Request.StartDate,
			"end_date":   plan.Request.EndDate,
		},
		CreatedAt: s.now(),
	}
	if err := s.send(ctx, notification); err != nil {
		return err
	}

	if !plan.Request.EmailCopy {
		return nil
	}

	return s.send(ctx, Notification{
		Type:        NotificationPlanEmailCopy,
		RecipientID: plan.SessionID,
		Title:       "Your Trip Plan",
		Message:     fmt.Sprintf("A copy of your trip plan (%s) is on its way to your inbox.", FormatBudget(plan.Request.Budget, plan.Request.Currency)),
		Data: map[string]interface{}{
			"plan_id": plan.ID,
		},
		CreatedAt: s.now(),
	})
}

// send delivers a notification.
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
