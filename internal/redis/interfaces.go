package redis

import (
	"context"
	"time"
)

// DraftStoreInterface defines the durable key-value operations for wizard drafts.
type DraftStoreInterface interface {
	Get(ctx context.Context, sessionID string) ([]byte, error)
	Put(ctx context.Context, sessionID string, data []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// LockStoreInterface defines the interface for per-session transition locking.
type LockStoreInterface interface {
	AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseSessionLock(ctx context.Context, sessionID, token string) error
}

// StatusStoreInterface defines the interface for processing status messages.
type StatusStoreInterface interface {
	SetStatus(ctx context.Context, sessionID string, status *ProcessingStatus) error
	GetStatus(ctx context.Context, sessionID string) (*ProcessingStatus, error)
	ClearStatus(ctx context.Context, sessionID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ DraftStoreInterface  = (*DraftStore)(nil)
	_ LockStoreInterface   = (*LockStore)(nil)
	_ StatusStoreInterface = (*StatusStore)(nil)
)
