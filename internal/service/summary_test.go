package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/domain"
)

func TestFormatBudget(t *testing.T) {
	tests := []struct {
		amount   float64
		currency domain.Currency
		want     string
	}{
		{2000, domain.CurrencyEUR, "€2,000"},
		{1234.5, domain.CurrencyUSD, "$1,234.5"},
		{1234567.891, domain.CurrencyUSD, "$1,234,567.89"},
		{5000, domain.CurrencyMAD, "5,000 MAD"},
		{0, domain.CurrencyMAD, "0 MAD"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBudget(tt.amount, tt.currency))
	}
}

func TestDeriveSummary_Placeholders(t *testing.T) {
	view := DeriveSummary(domain.NewTripDraft())

	assert.Equal(t, "5,000 MAD", view.Budget)
	assert.Equal(t, PlaceholderNotSelected, view.Dates)
	assert.Equal(t, PlaceholderNotCalculated, view.Duration)
	assert.Equal(t, PlaceholderNotSelected, view.Departure)
	require.Len(t, view.Preferences, 1)
	assert.Equal(t, PlaceholderNoPreferences, view.Preferences[0].Text)
	assert.Empty(t, view.Preferences[0].Preference)
	assert.Equal(t, PlaceholderNoRequirements, view.Requirements)
}

func TestDeriveSummary_OnlyOneDateSet(t *testing.T) {
	d := domain.NewTripDraft()
	d.StartDate = domain.NewDate(2024, time.March, 15)

	view := DeriveSummary(d)
	assert.Equal(t, PlaceholderNotSelected, view.Dates)
	assert.Equal(t, PlaceholderNotCalculated, view.Duration)
}

func TestDeriveSummary_FlexibleSingleDay(t *testing.T) {
	d := domain.NewTripDraft()
	d.StartDate = domain.NewDate(2024, time.December, 31)
	d.EndDate = domain.NewDate(2025, time.January, 1)
	d.FlexibleDates = true

	view := DeriveSummary(d)
	assert.Equal(t, "Dec 31, 2024 - Jan 1, 2025 (flexible)", view.Dates)
	assert.Equal(t, "1 Day", view.Duration)
}

func TestDeriveSummary_PreferencesInDisplayOrder(t *testing.T) {
	d := domain.NewTripDraft()
	d.Preferences[domain.PreferenceSightseeing] = domain.PreferenceChoice{Selected: true, Level: domain.InterestVeryLow}
	d.Preferences[domain.PreferenceCulture] = domain.PreferenceChoice{Selected: true, Level: domain.InterestVeryHigh}
	d.Preferences[domain.PreferenceNature] = domain.PreferenceChoice{Selected: false, Level: domain.InterestHigh}

	view := DeriveSummary(d)
	require.Len(t, view.Preferences, 2)
	assert.Equal(t, "Cultural Experiences (Very High)", view.Preferences[0].Text)
	assert.Equal(t, domain.InterestVeryHigh, view.Preferences[0].Level)
	assert.Equal(t, "Sightseeing (Very Low)", view.Preferences[1].Text)
}

func TestDeriveSummary_Requirements(t *testing.T) {
	tests := []struct {
		name          string
		dietary       string
		accessibility string
		special       string
		want          string
	}{
		{"defaults", "none", "none", "", PlaceholderNoRequirements},
		{"dietary only", "vegetarian", "none", "", "vegetarian"},
		{"both", "halal", "wheelchair", "", "halal, wheelchair"},
		{"special requests", "none", "none", "Anniversary dinner", SpecialRequestsNotedSuffix},
		{"everything", "vegan", "hearing", "Quiet room", "vegan, hearing, " + SpecialRequestsNotedSuffix},
		{"whitespace request ignored", "none", "none", "   ", PlaceholderNoRequirements},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := domain.NewTripDraft()
			d.Dietary = tt.dietary
			d.Accessibility = tt.accessibility
			d.SpecialRequests = tt.special
			assert.Equal(t, tt.want, DeriveSummary(d).Requirements)
		})
	}
}

func TestDeriveSummary_DoesNotMutateDraft(t *testing.T) {
	d := domain.NewTripDraft()
	d.Departure = "  Rabat "
	before := d.Clone()

	_ = DeriveSummary(d)
	assert.Equal(t, before, d)
}
