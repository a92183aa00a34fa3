package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/domain"
)

func TestValidate_BasicsAccumulatesErrors(t *testing.T) {
	d := domain.NewTripDraft()
	d.Departure = "\t "

	result := Validate(d, domain.StepBasics)
	require.False(t, result.Valid())
	assert.Equal(t, []string{MsgSelectCheckIn, MsgSelectCheckOut, MsgEnterDeparture}, result.Messages())
	assert.Equal(t, "Please select check-in date. Please select check-out date. Please enter departure location.", result.LiveRegion())
	assert.Equal(t, map[string]bool{FieldStartDate: true, FieldEndDate: true, FieldDeparture: true}, result.FlaggedFields())
}

func TestValidate_RangeAndMissingTogether(t *testing.T) {
	d := domain.NewTripDraft()
	d.StartDate = domain.NewDate(2024, time.June, 10)
	d.EndDate = domain.NewDate(2024, time.June, 10)

	result := Validate(d, domain.StepBasics)
	assert.Equal(t, []string{MsgEnterDeparture, MsgCheckOutAfterIn}, result.Messages())

	err := result.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.True(t, errors.Is(err, ErrInvalidRange))
	assert.False(t, errors.Is(err, ErrTermsNotAccepted))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.StepBasics, verr.Result.Step)
}

func TestValidate_PreferencesAlwaysPasses(t *testing.T) {
	result := Validate(domain.NewTripDraft(), domain.StepPreferences)
	assert.True(t, result.Valid())
	assert.NoError(t, result.Err())
	assert.Empty(t, result.LiveRegion())
}

func TestValidate_ReviewRequiresTerms(t *testing.T) {
	d := domain.NewTripDraft()

	result := Validate(d, domain.StepReview)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindTermsNotAccepted, result.Errors[0].Kind)
	assert.ErrorIs(t, result.Err(), ErrTermsNotAccepted)

	d.TermsAgreed = true
	assert.True(t, Validate(d, domain.StepReview).Valid())
}
