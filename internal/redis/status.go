package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statusKeyPrefix = "wizard:status:"

	// StatusTTL keeps the last processing status readable for a while after the sequence ends.
	StatusTTL = time.Hour
)

// ProcessingStatus is the latest message of a session's post-generate sequence.
type ProcessingStatus struct {
	Message   string    `json:"message"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Done      bool      `json:"done"`
	PlanID    string    `json:"plan_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusStore stores processing status messages.
type StatusStore struct {
	client *redis.Client
}

// NewStatusStore creates a new StatusStore.
func NewStatusStore(client *redis.Client) *StatusStore {
	return &StatusStore{client: client}
}

// SetStatus stores the current status for a session.
func (s *StatusStore) SetStatus(ctx context.Context, sessionID string, status *ProcessingStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statusKeyPrefix+sessionID, data, StatusTTL).Err()
}

// GetStatus returns the current status for a session, or nil if none is recorded.
func (s *StatusStore) GetStatus(ctx context.Context, sessionID string) (*ProcessingStatus, error) {
	data, err := s.client.Get(ctx, statusKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var status ProcessingStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ClearStatus removes the status for a session.
func (s *StatusStore) ClearStatus(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, statusKeyPrefix+sessionID).Err()
}
