package domain

import (
	"strings"
	"time"
)

// Step is a position in the three-step planning wizard.
type Step int

const (
	StepBasics      Step = 0
	StepPreferences Step = 1
	StepReview      Step = 2
)

// StepCount is the number of wizard steps.
const StepCount = 3

// Valid reports whether s is inside [0, StepCount).
func (s Step) Valid() bool {
	return s >= 0 && s < StepCount
}

// Name returns the step's display name.
func (s Step) Name() string {
	switch s {
	case StepBasics:
		return "Trip Basics"
	case StepPreferences:
		return "Preferences"
	case StepReview:
		return "Review & Generate"
	default:
		return ""
	}
}

// Currency is the currency the budget is expressed in.
type Currency string

const (
	CurrencyMAD Currency = "MAD"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyMAD, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// Preference is a travel-style category the traveller can opt into.
type Preference string

const (
	PreferenceCulture     Preference = "culture"
	PreferenceNature      Preference = "nature"
	PreferenceLuxury      Preference = "luxury"
	PreferenceSightseeing Preference = "sightseeing"
)

// Preferences lists every preference in display order.
var Preferences = []Preference{
	PreferenceCulture,
	PreferenceNature,
	PreferenceLuxury,
	PreferenceSightseeing,
}

// Valid reports whether p is a known preference.
func (p Preference) Valid() bool {
	switch p {
	case PreferenceCulture, PreferenceNature, PreferenceLuxury, PreferenceSightseeing:
		return true
	}
	return false
}

// Label returns the preference's display label.
func (p Preference) Label() string {
	switch p {
	case PreferenceCulture:
		return "Cultural Experiences"
	case PreferenceNature:
		return "Nature & Outdoors"
	case PreferenceLuxury:
		return "Luxury Experiences"
	case PreferenceSightseeing:
		return "Sightseeing"
	default:
		return string(p)
	}
}

// InterestLevel is the 5-point interest scale attached to a selected preference.
type InterestLevel string

const (
	InterestVeryLow  InterestLevel = "VeryLow"
	InterestLow      InterestLevel = "Low"
	InterestMedium   InterestLevel = "Medium"
	InterestHigh     InterestLevel = "High"
	InterestVeryHigh InterestLevel = "VeryHigh"
)

// Valid reports whether l is on the scale.
func (l InterestLevel) Valid() bool {
	switch l {
	case InterestVeryLow, InterestLow, InterestMedium, InterestHigh, InterestVeryHigh:
		return true
	}
	return false
}

// Label returns the level's display label.
func (l InterestLevel) Label() string {
	switch l {
	case InterestVeryLow:
		return "Very Low"
	case InterestVeryHigh:
		return "Very High"
	default:
		return string(l)
	}
}

// PreferenceChoice is the state of one preference toggle and its level selector.
// Level survives unselecting so re-checking restores it.
type PreferenceChoice struct {
	Selected bool
	Level    InterestLevel
}

// Draft defaults.
const (
	DefaultBudget        = 5000
	DefaultCurrency      = CurrencyMAD
	DefaultDietary       = "none"
	DefaultAccessibility = "none"
	DefaultInterestLevel = InterestMedium
)

// TripDraft is the in-progress trip-planning form.
type TripDraft struct {
	Step            Step
	Budget          float64
	Currency        Currency
	StartDate       Date
	EndDate         Date
	FlexibleDates   bool
	Departure       string
	Preferences     map[Preference]PreferenceChoice
	Dietary         string
	Accessibility   string
	SpecialRequests string
	EmailCopy       bool
	TermsAgreed     bool

	// Completed is set once Generate succeeds.
	Completed bool
}

// NewTripDraft returns a draft with every field at its default.
func NewTripDraft() *TripDraft {
	d := &TripDraft{
		Step:          StepBasics,
		Budget:        DefaultBudget,
		Currency:      DefaultCurrency,
		Dietary:       DefaultDietary,
		Accessibility: DefaultAccessibility,
		Preferences:   make(map[Preference]PreferenceChoice, len(Preferences)),
	}
	for _, p := range Preferences {
		d.Preferences[p] = PreferenceChoice{Level: DefaultInterestLevel}
	}
	return d
}

// Clone returns a deep copy of the draft.
func (d *TripDraft) Clone() *TripDraft {
	c := *d
	c.Preferences = make(map[Preference]PreferenceChoice, len(d.Preferences))
	for p, choice := range d.Preferences {
		c.Preferences[p] = choice
	}
	return &c
}

// SelectedPreferences returns the checked preferences with their levels, in display order.
func (d *TripDraft) SelectedPreferences() []SelectedPreference {
	var out []SelectedPreference
	for _, p := range Preferences {
		choice, ok := d.Preferences[p]
		if !ok || !choice.Selected {
			continue
		}
		level := choice.Level
		if !level.Valid() {
			level = DefaultInterestLevel
		}
		out = append(out, SelectedPreference{Preference: p, Level: level})
	}
	return out
}

// HasDeparture reports whether the departure holds non-whitespace text.
func (d *TripDraft) HasDeparture() bool {
	return strings.TrimSpace(d.Departure) != ""
}

// SelectedPreference pairs a checked preference with its interest level.
type SelectedPreference struct {
	Preference Preference    `json:"preference"`
	Level      InterestLevel `json:"level"`
}

// Date is a calendar date without time of day. The zero value means "not selected".
type Date struct {
	t time.Time
}

// DateLayout is the wire format of a Date.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

// Equal reports whether both dates are the same day.
func (d Date) Equal(o Date) bool {
	return d.t.Equal(o.t)
}

// String returns the YYYY-MM-DD form, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}
