package tests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"planner/internal/domain"
	"planner/internal/redis"
	"planner/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DRAFT STORE
// ──────────────────────────────────────────────

// MockDraftStore is an in-memory implementation of redis.DraftStoreInterface.
type MockDraftStore struct {
	mu     sync.RWMutex
	drafts map[string][]byte
	gates  map[string]chan struct{}

	// Counters for verification
	GetCallCount    int32
	PutCallCount    int32
	DeleteCallCount int32

	// Error injection
	GetError    error
	PutError    error
	DeleteError error
}

// NewMockDraftStore creates a new mock draft store.
func NewMockDraftStore() *MockDraftStore {
	return &MockDraftStore{
		drafts: make(map[string][]byte),
		gates:  make(map[string]chan struct{}),
	}
}

// SetRaw writes raw bytes as if another writer had stored them.
func (m *MockDraftStore) SetRaw(sessionID string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[sessionID] = append([]byte(nil), data...)
}

// Raw returns the stored bytes and whether an entry exists.
func (m *MockDraftStore) Raw(sessionID string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.drafts[sessionID]
	return data, ok
}

// BlockGet makes reads of one session wait until the returned func is called.
func (m *MockDraftStore) BlockGet(sessionID string) (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gates[sessionID] = gate
	m.mu.Unlock()
	return func() { close(gate) }
}

func (m *MockDraftStore) Get(ctx context.Context, sessionID string) ([]byte, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	gate := m.gates[sessionID]
	m.mu.RUnlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.drafts[sessionID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *MockDraftStore) Put(ctx context.Context, sessionID string, data []byte) error {
	atomic.AddInt32(&m.PutCallCount, 1)
	if m.PutError != nil {
		return m.PutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[sessionID] = append([]byte(nil), data...)
	return nil
}

func (m *MockDraftStore) Delete(ctx context.Context, sessionID string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, sessionID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]mockLock
	seq   int

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

type mockLock struct {
	token  string
	expiry time.Time
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]mockLock),
	}
}

func (m *MockLockStore) AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:wizard:" + sessionID
	if held, exists := m.locks[key]; exists && time.Now().Before(held.expiry) {
		return "", false, nil // Lock still held.
	}

	m.seq++
	token := fmt.Sprintf("token-%d", m.seq)
	m.locks[key] = mockLock{token: token, expiry: time.Now().Add(ttl)}
	return token, true, nil
}

func (m *MockLockStore) ReleaseSessionLock(ctx context.Context, sessionID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:wizard:" + sessionID
	held, exists := m.locks[key]
	if !exists || held.token != token {
		return redis.ErrLockNotHeld
	}
	delete(m.locks, key)
	return nil
}

// IsLocked checks if a session is locked (for test assertions).
func (m *MockLockStore) IsLocked(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, exists := m.locks["lock:wizard:"+sessionID]
	return exists && time.Now().Before(held.expiry)
}

// Hold takes the lock on behalf of another request.
func (m *MockLockStore) Hold(sessionID string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks["lock:wizard:"+sessionID] = mockLock{token: "other-request", expiry: time.Now().Add(ttl)}
}

// ──────────────────────────────────────────────
// MOCK STATUS STORE
// ──────────────────────────────────────────────

// MockStatusStore records every processing status written.
type MockStatusStore struct {
	mu      sync.Mutex
	current map[string]*redis.ProcessingStatus
	history map[string][]redis.ProcessingStatus
}

// NewMockStatusStore creates a new mock status store.
func NewMockStatusStore() *MockStatusStore {
	return &MockStatusStore{
		current: make(map[string]*redis.ProcessingStatus),
		history: make(map[string][]redis.ProcessingStatus),
	}
}

func (m *MockStatusStore) SetStatus(ctx context.Context, sessionID string, status *redis.ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *status
	m.current[sessionID] = &cp
	m.history[sessionID] = append(m.history[sessionID], cp)
	return nil
}

func (m *MockStatusStore) GetStatus(ctx context.Context, sessionID string) (*redis.ProcessingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.current[sessionID]
	if !ok {
		return nil, nil
	}
	cp := *status
	return &cp, nil
}

func (m *MockStatusStore) ClearStatus(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.current, sessionID)
	return nil
}

// History returns every status written for a session, in order.
func (m *MockStatusStore) History(sessionID string) []redis.ProcessingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]redis.ProcessingStatus(nil), m.history[sessionID]...)
}

// ──────────────────────────────────────────────
// MOCK PLAN REPOSITORY
// ──────────────────────────────────────────────

// MockPlanRepository is a mock implementation of PlanRepository.
type MockPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*domain.Plan

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockPlanRepository creates a new mock plan repository.
func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{
		plans: make(map[string]*domain.Plan),
	}
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.plans[plan.ID]; exists {
		return ErrMockDBConstraint
	}
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (m *MockPlanRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var plans []*domain.Plan
	for _, p := range m.plans {
		if p.SessionID == sessionID {
			cp := *p
			plans = append(plans, &cp)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

// CountPlans returns the number of stored plans.
func (m *MockPlanRepository) CountPlans() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plans)
}

// ──────────────────────────────────────────────
// MOCK ITINERARY GENERATOR
// ──────────────────────────────────────────────

// MockItineraryGenerator records submitted requests.
type MockItineraryGenerator struct {
	mu       sync.Mutex
	requests []*domain.PlanRequest

	// Counters
	SubmitCallCount int32

	// Error injection
	SubmitError error
}

// NewMockItineraryGenerator creates a new mock generator.
func NewMockItineraryGenerator() *MockItineraryGenerator {
	return &MockItineraryGenerator{}
}

func (m *MockItineraryGenerator) Submit(ctx context.Context, req *domain.PlanRequest) (*domain.Plan, error) {
	atomic.AddInt32(&m.SubmitCallCount, 1)
	if m.SubmitError != nil {
		return nil, m.SubmitError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return &domain.Plan{
		ID:        req.ID,
		SessionID: req.SessionID,
		Status:    domain.PlanStatusSubmitted,
		Request:   req,
		CreatedAt: time.Now(),
	}, nil
}

// Requests returns the submitted requests.
func (m *MockItineraryGenerator) Requests() []*domain.PlanRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.PlanRequest(nil), m.requests...)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockQuota        = errors.New("mock: OOM command not allowed when used memory > 'maxmemory'")
	ErrMockUnavailable  = errors.New("mock: connection refused")
)

// Ensure mocks implement interfaces.
var (
	_ redis.DraftStoreInterface  = (*MockDraftStore)(nil)
	_ redis.LockStoreInterface   = (*MockLockStore)(nil)
	_ redis.StatusStoreInterface = (*MockStatusStore)(nil)
	_ repository.PlanRepository  = (*MockPlanRepository)(nil)
)
