package service

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"planner/internal/domain"
	"planner/internal/metrics"
	"planner/internal/redis"
)

// WizardController drives one session's three-step planning wizard: step
// position, per-step validation, the draft's persistence and the review summary.
// It is not safe for concurrent use; WizardService serializes access.
type WizardController struct {
	sessionID string
	draft     *domain.TripDraft
	store     redis.DraftStoreInterface
	notifier  *NotificationService
	metrics   *metrics.WizardMetrics
	now       func() time.Time

	// lastValidation is the most recent failed validation, shown until corrected.
	lastValidation *ValidationResult
	notices        []Notice
}

// NewWizardController creates a controller holding an empty draft.
func NewWizardController(
	sessionID string,
	store redis.DraftStoreInterface,
	notifier *NotificationService,
	m *metrics.WizardMetrics,
) *WizardController {
	if notifier == nil {
		notifier = NewNotificationService()
	}
	return &WizardController{
		sessionID: sessionID,
		draft:     domain.NewTripDraft(),
		store:     store,
		notifier:  notifier,
		metrics:   m,
		now:       time.Now,
	}
}

// SessionID returns the session the controller belongs to.
func (c *WizardController) SessionID() string {
	return c.sessionID
}

// Draft returns a copy of the current draft.
func (c *WizardController) Draft() *domain.TripDraft {
	return c.draft.Clone()
}

// Step returns the current step.
func (c *WizardController) Step() domain.Step {
	return c.draft.Step
}

// Load restores the stored draft. It reports false when there is nothing
// usable to restore; a corrupt entry is deleted so the next load starts clean.
func (c *WizardController) Load(ctx context.Context) (*domain.TripDraft, bool) {
	data, err := c.store.Get(ctx, c.sessionID)
	if err != nil {
		log.Printf("[WIZARD] session=%s failed to read draft: %v", c.sessionID, err)
		c.metrics.ObservePersistenceError("read")
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	draft, err := domain.DecodeDraft(data)
	if err != nil {
		perr := newCorruptError(err)
		log.Printf("[WIZARD] session=%s %v, discarding stored draft", c.sessionID, perr)
		c.metrics.ObservePersistenceError("corrupt")
		if delErr := c.store.Delete(ctx, c.sessionID); delErr != nil {
			log.Printf("[WIZARD] session=%s failed to delete corrupt draft: %v", c.sessionID, delErr)
		}
		return nil, false
	}

	c.draft = draft
	c.lastValidation = nil
	return draft.Clone(), true
}

// Save writes the full draft, including the current step. On failure the
// stored value is left as it was, a dismissible notice is queued and the
// *PersistenceError is returned; the in-memory draft is never touched.
func (c *WizardController) Save(ctx context.Context) error {
	data, err := domain.EncodeDraft(c.draft, c.now())
	if err != nil {
		return c.saveFailed(newWriteError("encode", err))
	}
	if err := c.store.Put(ctx, c.sessionID, data); err != nil {
		return c.saveFailed(newWriteError("save", err))
	}
	return nil
}

func (c *WizardController) saveFailed(perr *PersistenceError) error {
	c.metrics.ObservePersistenceError("write")
	c.notices = append(c.notices, c.notifier.DraftSaveFailed(c.sessionID, perr))
	return perr
}

// Clear deletes the stored draft and resets every field to its default.
// The in-memory reset happens even when the delete fails.
func (c *WizardController) Clear(ctx context.Context) error {
	c.draft = domain.NewTripDraft()
	c.lastValidation = nil
	c.notices = nil

	if err := c.store.Delete(ctx, c.sessionID); err != nil {
		return c.saveFailed(newWriteError("clear", err))
	}
	return nil
}

// Validate checks the exit rules of the given step against the current draft.
func (c *WizardController) Validate(step domain.Step) ValidationResult {
	return Validate(c.draft, step)
}

// Next advances one step if the current step validates. A refused transition
// leaves the step unchanged and records the failure for the view.
func (c *WizardController) Next(ctx context.Context) (ValidationResult, error) {
	if c.draft.Completed {
		return ValidationResult{Step: c.draft.Step}, ErrWizardCompleted
	}

	if c.draft.Step >= domain.StepCount-1 {
		return ValidationResult{Step: c.draft.Step}, ErrNoNextStep
	}

	result := c.Validate(c.draft.Step)
	if !result.Valid() {
		c.recordFailure(result)
		return result, result.Err()
	}

	c.draft.Step++
	c.lastValidation = nil
	c.persistTransition(ctx)
	return result, nil
}

// Back moves one step back without validation. It is a no-op on the first step.
func (c *WizardController) Back(ctx context.Context) error {
	if c.draft.Completed {
		return ErrWizardCompleted
	}
	if c.draft.Step > domain.StepBasics {
		c.draft.Step--
	}
	c.lastValidation = nil
	c.persistTransition(ctx)
	return nil
}

// EditJump returns from the review step straight to basics or preferences.
func (c *WizardController) EditJump(ctx context.Context, target domain.Step) error {
	if c.draft.Completed {
		return ErrWizardCompleted
	}
	if c.draft.Step != domain.StepReview {
		return ErrNotOnReviewStep
	}
	if target != domain.StepBasics && target != domain.StepPreferences {
		return ErrInvalidEditTarget
	}

	c.draft.Step = target
	c.lastValidation = nil
	c.persistTransition(ctx)
	return nil
}

// Generate is the terminal transition. It requires the review step and agreed
// terms, marks the draft completed and returns the payload for itinerary generation.
func (c *WizardController) Generate(ctx context.Context) (*domain.PlanRequest, error) {
	if c.draft.Completed {
		return nil, ErrWizardCompleted
	}
	if c.draft.Step != domain.StepReview {
		return nil, ErrNotOnReviewStep
	}

	result := c.Validate(domain.StepReview)
	if !result.Valid() {
		c.recordFailure(result)
		return nil, result.Err()
	}

	c.draft.Completed = true
	c.lastValidation = nil
	c.persistTransition(ctx)

	return domain.NewPlanRequest(uuid.New().String(), c.sessionID, c.draft, c.now()), nil
}

// persistTransition saves after a step change. Failures are already surfaced
// as a notice by Save, so the transition itself still succeeds.
func (c *WizardController) persistTransition(ctx context.Context) {
	_ = c.Save(ctx)
}

func (c *WizardController) recordFailure(result ValidationResult) {
	c.lastValidation = &result
	for _, fe := range result.Errors {
		c.metrics.ObserveValidationFailure(string(fe.Kind))
	}
}

// DraftPatch is a partial update of the draft's form fields. Nil fields are left alone.
type DraftPatch struct {
	Budget          *float64 `json:"budget,omitempty"`
	Currency        *string  `json:"currency,omitempty"`
	StartDate       *string  `json:"startDate,omitempty"`
	EndDate         *string  `json:"endDate,omitempty"`
	FlexibleDates   *bool    `json:"flexibleDates,omitempty"`
	Departure       *string  `json:"departure,omitempty"`
	Dietary         *string  `json:"dietary,omitempty"`
	Accessibility   *string  `json:"accessibility,omitempty"`
	SpecialRequests *string  `json:"specialRequests,omitempty"`
	EmailCopy       *bool    `json:"emailCopy,omitempty"`
	TermsAgreed     *bool    `json:"termsAgreed,omitempty"`
}

// ApplyPatch updates form fields in memory. The whole patch is checked before
// anything is applied. Input never persists on its own.
func (c *WizardController) ApplyPatch(p DraftPatch) error {
	if c.draft.Completed {
		return ErrWizardCompleted
	}

	next := c.draft.Clone()
	var touched []string

	if p.Budget != nil {
		if math.IsNaN(*p.Budget) || math.IsInf(*p.Budget, 0) || *p.Budget < 0 {
			return ErrInvalidBudget
		}
		next.Budget = *p.Budget
	}
	if p.Currency != nil {
		cur := domain.Currency(strings.ToUpper(strings.TrimSpace(*p.Currency)))
		if !cur.Valid() {
			return ErrInvalidCurrency
		}
		next.Currency = cur
	}
	if p.StartDate != nil {
		date, err := domain.ParseDate(*p.StartDate)
		if err != nil {
			return ErrInvalidDate
		}
		next.StartDate = date
		touched = append(touched, FieldStartDate)
	}
	if p.EndDate != nil {
		date, err := domain.ParseDate(*p.EndDate)
		if err != nil {
			return ErrInvalidDate
		}
		next.EndDate = date
		touched = append(touched, FieldEndDate)
	}
	if p.FlexibleDates != nil {
		next.FlexibleDates = *p.FlexibleDates
	}
	if p.Departure != nil {
		next.Departure = *p.Departure
		touched = append(touched, FieldDeparture)
	}
	if p.Dietary != nil {
		next.Dietary = *p.Dietary
	}
	if p.Accessibility != nil {
		next.Accessibility = *p.Accessibility
	}
	if p.SpecialRequests != nil {
		next.SpecialRequests = *p.SpecialRequests
	}
	if p.EmailCopy != nil {
		next.EmailCopy = *p.EmailCopy
	}
	if p.TermsAgreed != nil {
		next.TermsAgreed = *p.TermsAgreed
		touched = append(touched, FieldTermsAgreed)
	}

	c.draft = next
	c.unflag(touched...)
	return nil
}

// UpdatePreference changes a preference's checkbox and interest level in one
// step. Nil arguments are left alone. Everything is checked before anything
// changes, and unchecking keeps the chosen level.
func (c *WizardController) UpdatePreference(p domain.Preference, selected *bool, level *domain.InterestLevel) error {
	if c.draft.Completed {
		return ErrWizardCompleted
	}
	if !p.Valid() {
		return ErrInvalidPreference
	}
	if level != nil && !level.Valid() {
		return ErrInvalidInterestLevel
	}

	choice, ok := c.draft.Preferences[p]
	if !ok || !choice.Level.Valid() {
		choice.Level = domain.DefaultInterestLevel
	}
	if level != nil {
		choice.Level = *level
	}
	if selected != nil {
		choice.Selected = *selected
	}
	c.draft.Preferences[p] = choice
	return nil
}

// SetPreference checks or unchecks a preference.
func (c *WizardController) SetPreference(p domain.Preference, selected bool) error {
	return c.UpdatePreference(p, &selected, nil)
}

// SetInterestLevel picks the interest level for a preference.
func (c *WizardController) SetInterestLevel(p domain.Preference, level domain.InterestLevel) error {
	return c.UpdatePreference(p, nil, &level)
}

// DismissNotice removes a notice from the view. Unknown IDs are ignored.
func (c *WizardController) DismissNotice(id string) {
	kept := c.notices[:0]
	for _, n := range c.notices {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	c.notices = kept
}

// unflag drops recorded validation errors for fields the user has since edited.
func (c *WizardController) unflag(fields ...string) {
	if c.lastValidation == nil || len(fields) == 0 {
		return
	}
	edited := make(map[string]bool, len(fields))
	for _, f := range fields {
		edited[f] = true
	}

	var remaining []FieldError
	for _, fe := range c.lastValidation.Errors {
		if !edited[fe.Field] {
			remaining = append(remaining, fe)
		}
	}
	if len(remaining) == 0 {
		c.lastValidation = nil
		return
	}
	c.lastValidation.Errors = remaining
}

// View returns the controller's read model for rendering.
func (c *WizardController) View() ReadModel {
	current := c.Validate(c.draft.Step)

	view := ReadModel{
		SessionID:  c.sessionID,
		Step:       c.draft.Step,
		StepName:   c.draft.Step.Name(),
		StepCount:  domain.StepCount,
		CanAdvance: current.Valid() && !c.draft.Completed,
		Errors:     []FieldError{},
		Summary:    DeriveSummary(c.draft),
		Notices:    append([]Notice{}, c.notices...),
		Completed:  c.draft.Completed,
		Draft:      newDraftView(c.draft),
	}
	if c.lastValidation != nil && c.lastValidation.Step == c.draft.Step {
		view.Errors = append(view.Errors, c.lastValidation.Errors...)
		view.LiveRegion = c.lastValidation.LiveRegion()
	}

	return view
}

// ReadModel is what a renderer needs to draw the wizard.
type ReadModel struct {
	SessionID  string             `json:"session_id"`
	Step       domain.Step        `json:"step"`
	StepName   string             `json:"step_name"`
	StepCount  int                `json:"step_count"`
	CanAdvance bool               `json:"can_advance"`
	Errors     []FieldError       `json:"errors"`
	LiveRegion string             `json:"live_region"`
	Summary    domain.SummaryView `json:"summary"`
	Notices    []Notice           `json:"notices"`
	Completed  bool               `json:"completed"`
	Draft      DraftView          `json:"draft"`
}

// DraftView is the JSON shape of the draft's form fields.
type DraftView struct {
	Budget          float64            `json:"budget"`
	Currency        domain.Currency    `json:"currency"`
	StartDate       string             `json:"startDate"`
	EndDate         string             `json:"endDate"`
	FlexibleDates   bool               `json:"flexibleDates"`
	Departure       string             `json:"departure"`
	Preferences     []PreferenceToggle `json:"preferences"`
	Dietary         string             `json:"dietary"`
	Accessibility   string             `json:"accessibility"`
	SpecialRequests string             `json:"specialRequests"`
	EmailCopy       bool               `json:"emailCopy"`
	TermsAgreed     bool               `json:"termsAgreed"`
}

// PreferenceToggle is one preference checkbox and its interest selector.
// The selector is visible only while the preference is checked.
type PreferenceToggle struct {
	Preference      domain.Preference    `json:"preference"`
	Label           string               `json:"label"`
	Selected        bool                 `json:"selected"`
	Level           domain.InterestLevel `json:"level"`
	SelectorVisible bool                 `json:"selectorVisible"`
}

func newDraftView(d *domain.TripDraft) DraftView {
	view := DraftView{
		Budget:          d.Budget,
		Currency:        d.Currency,
		StartDate:       d.StartDate.String(),
		EndDate:         d.EndDate.String(),
		FlexibleDates:   d.FlexibleDates,
		Departure:       d.Departure,
		Dietary:         d.Dietary,
		Accessibility:   d.Accessibility,
		SpecialRequests: d.SpecialRequests,
		EmailCopy:       d.EmailCopy,
		TermsAgreed:     d.TermsAgreed,
	}
	for _, p := range domain.Preferences {
		choice := d.Preferences[p]
		level := choice.Level
		if !level.Valid() {
			level = domain.DefaultInterestLevel
		}
		view.Preferences = append(view.Preferences, PreferenceToggle{
			Preference:      p,
			Label:           p.Label(),
			Selected:        choice.Selected,
			Level:           level,
			SelectorVisible: choice.Selected,
		})
	}
	return view
}
