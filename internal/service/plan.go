package service

import (
	"context"
	"time"

	"planner/internal/domain"
	"planner/internal/metrics"
	"planner/internal/repository"
)

// PlanService records finalized drafts as itinerary requests.
type PlanService struct {
	planRepo            repository.PlanRepository
	notificationService *NotificationService
	metrics             *metrics.WizardMetrics
	now                 func() time.Time
}

// NewPlanService creates a new PlanService.
func NewPlanService(
	planRepo repository.PlanRepository,
	notificationService *NotificationService,
	m *metrics.WizardMetrics,
) *PlanService {
	return &PlanService{
		planRepo:            planRepo,
		notificationService: notificationService,
		metrics:             m,
		now:                 time.Now,
	}
}

// Submit stores the request and notifies the traveller.
func (s *PlanService) Submit(ctx context.Context, req *domain.PlanRequest) (*domain.Plan, error) {
	if req.SessionID == "" {
		return nil, ErrInvalidSessionID
	}
	if req.ID == "" {
		return nil, ErrInvalidPlanID
	}

	plan := &domain.Plan{
		ID:        req.ID,
		SessionID: req.SessionID,
		Status:    domain.PlanStatusSubmitted,
		Request:   req,
		CreatedAt: s.now(),
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		s.metrics.ObservePlanSubmitted(string(domain.PlanStatusFailed))
		return nil, err
	}
	s.metrics.ObservePlanSubmitted(string(plan.Status))

	// Notification failures don't undo the submission.
	if s.notificationService != nil {
		_ = s.notificationService.NotifyPlanSubmitted(ctx, plan)
	}

	return plan, nil
}

// GetPlan retrieves a plan by ID.
func (s *PlanService) GetPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	if planID == "" {
		return nil, ErrInvalidPlanID
	}

	return s.planRepo.GetByID(ctx, planID)
}

// ListSessionPlans retrieves the plans submitted from a wizard session.
func (s *PlanService) ListSessionPlans(ctx context.Context, sessionID string) ([]*domain.Plan, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}

	return s.planRepo.ListBySession(ctx, sessionID)
}

// Ensure PlanService can serve as the itinerary generator.
var _ ItineraryGenerator = (*PlanService)(nil)
