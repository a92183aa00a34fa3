package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"planner/internal/domain"
	"planner/internal/repository"
)

// PlanRepository is a PostgreSQL implementation of repository.PlanRepository.
type PlanRepository struct {
	q Querier
}

// NewPlanRepository creates a new PostgreSQL plan repository.
func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{q: db}
}

// Create persists a new plan. The request payload is stored as JSONB.
func (r *PlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	query := `
		INSERT INTO trip_plans (id, session_id, status, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	payload, err := json.Marshal(plan.Request)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		plan.ID,
		plan.SessionID,
		plan.Status,
		payload,
		plan.CreatedAt,
	)

	return err
}

// GetByID retrieves a plan by ID.
func (r *PlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	query := `
		SELECT id, session_id, status, payload, created_at
		FROM trip_plans WHERE id = $1
	`

	plan, err := scanPlan(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return plan, nil
}

// ListBySession retrieves the plans submitted from one wizard session, newest first.
func (r *PlanRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Plan, error) {
	query := `
		SELECT id, session_id, status, payload, created_at
		FROM trip_plans WHERE session_id = $1
		ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*domain.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*domain.Plan, error) {
	var plan domain.Plan
	var payload []byte

	if err := row.Scan(
		&plan.ID,
		&plan.SessionID,
		&plan.Status,
		&payload,
		&plan.CreatedAt,
	); err != nil {
		return nil, err
	}

	var req domain.PlanRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, err
	}
	plan.Request = &req

	return &plan, nil
}

// Ensure PlanRepository implements repository.PlanRepository.
var _ repository.PlanRepository = (*PlanRepository)(nil)
