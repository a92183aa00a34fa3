package service

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required trip-basics field is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidRange is returned when the check-out date is not after the check-in date.
	ErrInvalidRange = errors.New("check-out date must be after check-in date")

	// ErrTermsNotAccepted is returned when Generate is attempted without agreeing to the terms.
	ErrTermsNotAccepted = errors.New("terms not accepted")

	// ErrPersistenceCorrupt is reported when a stored draft cannot be parsed.
	ErrPersistenceCorrupt = errors.New("stored draft is corrupt")

	// ErrPersistenceWrite is returned when a draft cannot be written to storage.
	ErrPersistenceWrite = errors.New("failed to save draft")

	// ErrInvalidSessionID is returned when a session ID is empty or not a UUID.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrInvalidCurrency is returned when a currency is not MAD, USD or EUR.
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrInvalidBudget is returned when a budget is negative or not a number.
	ErrInvalidBudget = errors.New("invalid budget")

	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPreference is returned for an unknown preference category.
	ErrInvalidPreference = errors.New("invalid preference")

	// ErrInvalidInterestLevel is returned for a level outside the 5-point scale.
	ErrInvalidInterestLevel = errors.New("invalid interest level")

	// ErrInvalidEditTarget is returned when EditJump targets anything but basics or preferences.
	ErrInvalidEditTarget = errors.New("invalid edit target")

	// ErrNotOnReviewStep is returned when a review-only action is attempted elsewhere.
	ErrNotOnReviewStep = errors.New("action only available on the review step")

	// ErrNoNextStep is returned when Next is attempted on the last step.
	ErrNoNextStep = errors.New("already on the last step")

	// ErrInvalidPlanID is returned when plan ID is empty.
	ErrInvalidPlanID = errors.New("invalid plan id")

	// ErrWizardCompleted is returned when the draft was already generated.
	ErrWizardCompleted = errors.New("wizard already completed")

	// ErrTransitionInProgress is returned when another command holds the session.
	ErrTransitionInProgress = errors.New("another action is in progress for this session")
)

// PersistenceError describes a failed draft storage operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("draft %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// newWriteError wraps a storage write failure.
func newWriteError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: fmt.Errorf("%w: %w", ErrPersistenceWrite, err)}
}

// newCorruptError wraps a stored-draft parse failure.
func newCorruptError(err error) *PersistenceError {
	return &PersistenceError{Op: "load", Err: fmt.Errorf("%w: %w", ErrPersistenceCorrupt, err)}
}
