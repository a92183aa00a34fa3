package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionLockPrefix = "lock:wizard:"

// ErrLockNotHeld is returned when releasing a session lock that expired or
// was taken over by another holder.
var ErrLockNotHeld = errors.New("session lock not held")

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles per-session transition locks in Redis. Each acquisition
// stores a fresh token so a holder whose lock expired cannot release the
// lock of whoever acquired it next.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireSessionLock attempts to take the transition lock for a wizard session.
// On success it returns the token that must be passed to ReleaseSessionLock.
func (s *LockStore) AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, sessionLockPrefix+sessionID, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseSessionLock releases the lock if token still owns it.
// It returns ErrLockNotHeld when the lock expired or changed hands.
func (s *LockStore) ReleaseSessionLock(ctx context.Context, sessionID, token string) error {
	n, err := releaseScript.Run(ctx, s.client, []string{sessionLockPrefix + sessionID}, token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
