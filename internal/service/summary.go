package service

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"planner/internal/domain"
)

// Summary placeholders.
const (
	PlaceholderNotSelected     = "Not selected yet"
	PlaceholderNotCalculated   = "Not calculated yet"
	PlaceholderNoPreferences   = "No preferences selected"
	PlaceholderNoRequirements  = "No specific requirements selected"
	SpecialRequestsNotedSuffix = "Special requests noted"
)

const summaryDateLayout = "Jan 2, 2006"

var summaryPrinter = message.NewPrinter(language.English)

// DeriveSummary builds the review-step view of a draft. It has no side effects.
func DeriveSummary(d *domain.TripDraft) domain.SummaryView {
	view := domain.SummaryView{
		Budget:       FormatBudget(d.Budget, d.Currency),
		Dates:        PlaceholderNotSelected,
		Duration:     PlaceholderNotCalculated,
		Departure:    PlaceholderNotSelected,
		Requirements: requirementsLine(d),
	}

	if !d.StartDate.IsZero() && !d.EndDate.IsZero() {
		view.Dates = d.StartDate.Time().Format(summaryDateLayout) + " - " + d.EndDate.Time().Format(summaryDateLayout)
		if d.FlexibleDates {
			view.Dates += " (flexible)"
		}
		view.Duration = formatDuration(d.StartDate, d.EndDate)
	}

	if d.HasDeparture() {
		view.Departure = d.Departure
	}

	for _, sp := range d.SelectedPreferences() {
		view.Preferences = append(view.Preferences, domain.PreferenceSummary{
			Preference: sp.Preference,
			Level:      sp.Level,
			Text:       fmt.Sprintf("%s (%s)", sp.Preference.Label(), sp.Level.Label()),
		})
	}
	if len(view.Preferences) == 0 {
		view.Preferences = []domain.PreferenceSummary{{Text: PlaceholderNoPreferences}}
	}

	return view
}

// FormatBudget renders an amount with thousands separators and the currency marker.
func FormatBudget(amount float64, currency domain.Currency) string {
	formatted := summaryPrinter.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))

	switch currency {
	case domain.CurrencyUSD:
		return "$" + formatted
	case domain.CurrencyEUR:
		return "€" + formatted
	default:
		return formatted + " MAD"
	}
}

func formatDuration(start, end domain.Date) string {
	days := int(math.Round(end.Time().Sub(start.Time()).Hours() / 24))
	if days == 1 {
		return "1 Day"
	}
	return fmt.Sprintf("%d Days", days)
}

func requirementsLine(d *domain.TripDraft) string {
	var parts []string
	if v := strings.TrimSpace(d.Dietary); v != "" && v != domain.DefaultDietary {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(d.Accessibility); v != "" && v != domain.DefaultAccessibility {
		parts = append(parts, v)
	}
	if strings.TrimSpace(d.SpecialRequests) != "" {
		parts = append(parts, SpecialRequestsNotedSuffix)
	}
	if len(parts) == 0 {
		return PlaceholderNoRequirements
	}
	return strings.Join(parts, ", ")
}
