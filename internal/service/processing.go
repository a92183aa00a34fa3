package service

import (
	"context"
	"log"
	"sync"
	"time"

	"planner/internal/domain"
	"planner/internal/redis"
)

// ProcessingMessages are shown in order while an itinerary request is handed off.
var ProcessingMessages = []string{
	"Analyzing your preferences...",
	"Finding the best destinations...",
	"Creating your personalized itinerary...",
	"Finalizing your trip plan...",
}

// Final processing messages.
const (
	ProcessingReadyMessage  = "Your itinerary is ready"
	ProcessingFailedMessage = "Itinerary generation failed"
)

const (
	// DefaultStatusInterval is the pause between processing messages.
	DefaultStatusInterval = 1500 * time.Millisecond

	// submitTimeout bounds the hand-off to the itinerary generator.
	submitTimeout = 30 * time.Second
)

// ItineraryGenerator receives finalized drafts.
type ItineraryGenerator interface {
	Submit(ctx context.Context, req *domain.PlanRequest) (*domain.Plan, error)
}

// ProcessingService runs the status sequence shown after Generate and then
// hands the request to the itinerary generator. A started sequence always
// runs to completion.
type ProcessingService struct {
	statuses  redis.StatusStoreInterface
	generator ItineraryGenerator
	interval  time.Duration
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewProcessingService creates a new ProcessingService.
func NewProcessingService(statuses redis.StatusStoreInterface, generator ItineraryGenerator, interval time.Duration) *ProcessingService {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	return &ProcessingService{
		statuses:  statuses,
		generator: generator,
		interval:  interval,
		now:       time.Now,
	}
}

// Start runs the sequence for one request in the background.
func (s *ProcessingService) Start(sessionID string, req *domain.PlanRequest) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(sessionID, req)
	}()
}

// Wait blocks until every started sequence has finished.
func (s *ProcessingService) Wait() {
	s.wg.Wait()
}

// Status returns the latest processing status for a session, or nil if none.
func (s *ProcessingService) Status(ctx context.Context, sessionID string) (*redis.ProcessingStatus, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}
	return s.statuses.GetStatus(ctx, sessionID)
}

// Reset drops the session's last processing status, so a cleared draft no
// longer reports the previous itinerary.
func (s *ProcessingService) Reset(ctx context.Context, sessionID string) {
	if err := s.statuses.ClearStatus(ctx, sessionID); err != nil {
		log.Printf("[PROCESSING] session=%s failed to clear status: %v", sessionID, err)
	}
}

func (s *ProcessingService) run(sessionID string, req *domain.PlanRequest) {
	ctx := context.Background()
	total := len(ProcessingMessages)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i, msg := range ProcessingMessages {
		if i > 0 {
			<-ticker.C
		}
		s.setStatus(ctx, sessionID, &redis.ProcessingStatus{
			Message: msg,
			Index:   i,
			Total:   total,
		})
	}
	<-ticker.C

	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	plan, err := s.generator.Submit(submitCtx, req)
	if err != nil {
		log.Printf("[PROCESSING] session=%s plan=%s submit failed: %v", sessionID, req.ID, err)
		s.setStatus(ctx, sessionID, &redis.ProcessingStatus{
			Message: ProcessingFailedMessage,
			Index:   total,
			Total:   total,
			Done:    true,
		})
		return
	}

	s.setStatus(ctx, sessionID, &redis.ProcessingStatus{
		Message: ProcessingReadyMessage,
		Index:   total,
		Total:   total,
		Done:    true,
		PlanID:  plan.ID,
	})
}

func (s *ProcessingService) setStatus(ctx context.Context, sessionID string, status *redis.ProcessingStatus) {
	status.UpdatedAt = s.now()
	if err := s.statuses.SetStatus(ctx, sessionID, status); err != nil {
		log.Printf("[PROCESSING] session=%s failed to store status: %v", sessionID, err)
	}
}
