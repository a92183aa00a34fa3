package service

import (
	"strings"

	"planner/internal/domain"
)

// ValidationKind classifies a validation failure.
type ValidationKind string

const (
	KindMissingField     ValidationKind = "MissingField"
	KindInvalidRange     ValidationKind = "InvalidRange"
	KindTermsNotAccepted ValidationKind = "TermsNotAccepted"
)

// Sentinel returns the error sentinel for the kind.
func (k ValidationKind) Sentinel() error {
	switch k {
	case KindMissingField:
		return ErrMissingField
	case KindInvalidRange:
		return ErrInvalidRange
	case KindTermsNotAccepted:
		return ErrTermsNotAccepted
	default:
		return nil
	}
}

// Form field names flagged by validation.
const (
	FieldStartDate   = "startDate"
	FieldEndDate     = "endDate"
	FieldDeparture   = "departure"
	FieldTermsAgreed = "termsAgreed"
)

// Validation messages.
const (
	MsgSelectCheckIn   = "Please select check-in date"
	MsgSelectCheckOut  = "Please select check-out date"
	MsgEnterDeparture  = "Please enter departure location"
	MsgCheckOutAfterIn = "Check-out date must be after check-in date"
	MsgAgreeToTerms    = "Please agree to the terms and conditions"
)

// FieldError flags one offending form field.
type FieldError struct {
	Field   string         `json:"field"`
	Kind    ValidationKind `json:"kind"`
	Message string         `json:"message"`
}

// ValidationResult is the outcome of validating one step.
type ValidationResult struct {
	Step   domain.Step  `json:"step"`
	Errors []FieldError `json:"errors"`
}

// Valid reports whether the step passed.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Messages returns every failure message in report order.
func (r ValidationResult) Messages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, fe := range r.Errors {
		msgs = append(msgs, fe.Message)
	}
	return msgs
}

// LiveRegion returns the text announced by the accessible error region.
func (r ValidationResult) LiveRegion() string {
	if r.Valid() {
		return ""
	}
	return strings.Join(r.Messages(), ". ") + "."
}

// FlaggedFields returns the set of fields to mark invalid.
func (r ValidationResult) FlaggedFields() map[string]bool {
	flagged := make(map[string]bool, len(r.Errors))
	for _, fe := range r.Errors {
		flagged[fe.Field] = true
	}
	return flagged
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Result: r}
}

// ValidationError carries a failed ValidationResult through error returns.
// It matches every kind sentinel present in the result with errors.Is.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Result.Messages(), "; ")
}

func (e *ValidationError) Unwrap() []error {
	seen := make(map[ValidationKind]bool)
	var errs []error
	for _, fe := range e.Result.Errors {
		if seen[fe.Kind] {
			continue
		}
		seen[fe.Kind] = true
		errs = append(errs, fe.Kind.Sentinel())
	}
	return errs
}

// Validate checks the exit rules of one wizard step. Failures accumulate so
// every offending field is reported together.
func Validate(d *domain.TripDraft, step domain.Step) ValidationResult {
	result := ValidationResult{Step: step}

	switch step {
	case domain.StepBasics:
		if d.StartDate.IsZero() {
			result.Errors = append(result.Errors, FieldError{Field: FieldStartDate, Kind: KindMissingField, Message: MsgSelectCheckIn})
		}
		if d.EndDate.IsZero() {
			result.Errors = append(result.Errors, FieldError{Field: FieldEndDate, Kind: KindMissingField, Message: MsgSelectCheckOut})
		}
		if !d.HasDeparture() {
			result.Errors = append(result.Errors, FieldError{Field: FieldDeparture, Kind: KindMissingField, Message: MsgEnterDeparture})
		}
		if !d.StartDate.IsZero() && !d.EndDate.IsZero() && !d.StartDate.Before(d.EndDate) {
			result.Errors = append(result.Errors, FieldError{Field: FieldEndDate, Kind: KindInvalidRange, Message: MsgCheckOutAfterIn})
		}
	case domain.StepReview:
		if !d.TermsAgreed {
			result.Errors = append(result.Errors, FieldError{Field: FieldTermsAgreed, Kind: KindTermsNotAccepted, Message: MsgAgreeToTerms})
		}
	}

	return result
}
