package repository

import (
	"context"

	"planner/internal/domain"
)

// PlanRepository defines the persistence operations for submitted itinerary requests.
type PlanRepository interface {
	// Create persists a new plan.
	Create(ctx context.Context, plan *domain.Plan) error

	// GetByID retrieves a plan by ID.
	GetByID(ctx context.Context, id string) (*domain.Plan, error)

	// ListBySession retrieves the plans submitted from one wizard session, newest first.
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Plan, error)
}
