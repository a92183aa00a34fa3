package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const draftKeyPrefix = "wizard:draft:"

// DraftStore persists serialized trip drafts, one key per wizard session.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftStore creates a new DraftStore. A zero ttl keeps drafts until deleted.
func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

// Get returns the raw stored draft, or nil if none exists.
func (s *DraftStore) Get(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.client.Get(ctx, draftKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Put overwrites the stored draft.
func (s *DraftStore) Put(ctx context.Context, sessionID string, data []byte) error {
	return s.client.Set(ctx, draftKeyPrefix+sessionID, data, s.ttl).Err()
}

// Delete removes the stored draft. Deleting a missing draft is not an error.
func (s *DraftStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, draftKeyPrefix+sessionID).Err()
}
