package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"planner/internal/metrics"
	"planner/internal/redis"
)

// WizardService hosts the wizard sessions. Each session's in-memory draft lives
// here between requests; only saves and step transitions reach Redis.
type WizardService struct {
	drafts     redis.DraftStoreInterface
	locks      redis.LockStoreInterface
	notifier   *NotificationService
	processing *ProcessingService
	metrics    *metrics.WizardMetrics
	lockTTL    time.Duration
	idleTTL    time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*wizardSession
}

type wizardSession struct {
	mu       sync.Mutex
	ctrl     *WizardController
	lastSeen time.Time
}

// WizardServiceConfig holds the session tuning knobs.
type WizardServiceConfig struct {
	LockTTL time.Duration
	IdleTTL time.Duration
}

// NewWizardService creates a new WizardService.
func NewWizardService(
	cfg WizardServiceConfig,
	drafts redis.DraftStoreInterface,
	locks redis.LockStoreInterface,
	notifier *NotificationService,
	processing *ProcessingService,
	m *metrics.WizardMetrics,
) *WizardService {
	return &WizardService{
		drafts:     drafts,
		locks:      locks,
		notifier:   notifier,
		processing: processing,
		metrics:    m,
		lockTTL:    cfg.LockTTL,
		idleTTL:    cfg.IdleTTL,
		now:        time.Now,
		sessions:   make(map[string]*wizardSession),
	}
}

// Open starts a new session with an empty draft.
func (s *WizardService) Open(ctx context.Context) (ReadModel, error) {
	sessionID := uuid.New().String()

	sess := &wizardSession{
		ctrl:     NewWizardController(sessionID, s.drafts, s.notifier, s.metrics),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	s.sessions[sessionID] = sess
	s.metrics.SetActiveSessions(len(s.sessions))
	s.mu.Unlock()

	return sess.ctrl.View(), nil
}

// View returns a session's read model, restoring its saved draft on first access.
func (s *WizardService) View(ctx context.Context, sessionID string) (ReadModel, error) {
	if err := validateSessionID(sessionID); err != nil {
		return ReadModel{}, err
	}

	sess := s.session(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.ctrl.View(), nil
}

// Dispatch runs one command against a session. Commands for the same session
// never overlap: a second one arriving mid-transition is refused.
// The returned read model is valid even when err is non-nil.
func (s *WizardService) Dispatch(ctx context.Context, sessionID string, cmd Command) (ReadModel, error) {
	if err := validateSessionID(sessionID); err != nil {
		return ReadModel{}, err
	}

	token, acquired, err := s.locks.AcquireSessionLock(ctx, sessionID, s.lockTTL)
	if err != nil {
		return ReadModel{}, err
	}
	if !acquired {
		s.metrics.ObserveCommand(cmd.Name(), "conflict")
		return ReadModel{}, ErrTransitionInProgress
	}
	defer func() {
		if err := s.locks.ReleaseSessionLock(context.Background(), sessionID, token); err != nil {
			log.Printf("[WIZARD] session=%s failed to release lock: %v", sessionID, err)
		}
	}()

	sess := s.session(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	err = cmd.Apply(ctx, sess.ctrl)
	s.metrics.ObserveCommand(cmd.Name(), commandOutcome(err))

	if s.processing != nil {
		switch c := cmd.(type) {
		case *Generate:
			if err == nil {
				s.processing.Start(sessionID, c.Request)
			}
		case Clear:
			// The draft is reset in memory even when the delete fails.
			s.processing.Reset(ctx, sessionID)
		}
	}

	return sess.ctrl.View(), err
}

// session returns the in-memory session, loading the saved draft on a miss.
// The load runs without holding s.mu so a slow read for one session never
// stalls the others.
func (s *WizardService) session(ctx context.Context, sessionID string) *wizardSession {
	if sess := s.lookup(sessionID); sess != nil {
		return sess
	}

	ctrl := NewWizardController(sessionID, s.drafts, s.notifier, s.metrics)
	ctrl.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have loaded the same session meanwhile.
	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastSeen = s.now()
		return sess
	}

	sess := &wizardSession{ctrl: ctrl, lastSeen: s.now()}
	s.sessions[sessionID] = sess
	s.metrics.SetActiveSessions(len(s.sessions))
	return sess
}

func (s *WizardService) lookup(sessionID string) *wizardSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	sess.lastSeen = s.now()
	return sess
}

// Sweep drops sessions idle for longer than the idle TTL, abandoning their
// unsaved changes. Returns the number of sessions dropped.
func (s *WizardService) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			dropped++
		}
	}
	s.metrics.SetActiveSessions(len(s.sessions))
	return dropped
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *WizardService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("[WIZARD] dropped %d idle sessions", n)
			}
		}
	}
}

// ActiveSessions returns the number of sessions held in memory.
func (s *WizardService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func validateSessionID(sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSessionID
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return ErrInvalidSessionID
	}
	return nil
}

func commandOutcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, ErrPersistenceWrite):
		return "persistence_error"
	default:
		return "rejected"
	}
}
