package domain

import (
	"encoding/json"
	"errors"
	"math"
	"time"
)

// ErrDraftNotObject is returned when a stored draft is valid JSON but not an object.
var ErrDraftNotObject = errors.New("stored draft is not an object")

// StoredDraft is the persisted JSON form of a TripDraft.
// Preferences holds only the checked preferences, keyed to their interest level.
type StoredDraft struct {
	Step            json.RawMessage          `json:"step,omitempty"`
	Budget          *float64                 `json:"budget,omitempty"`
	Currency        Currency                 `json:"currency,omitempty"`
	StartDate       string                   `json:"startDate"`
	EndDate         string                   `json:"endDate"`
	FlexibleDates   bool                     `json:"flexibleDates"`
	Departure       string                   `json:"departure"`
	Preferences     map[string]InterestLevel `json:"preferences"`
	Dietary         *string                  `json:"dietary,omitempty"`
	Accessibility   *string                  `json:"accessibility,omitempty"`
	SpecialRequests string                   `json:"specialRequests"`
	EmailCopy       bool                     `json:"emailCopy"`
	TermsAgreed     bool                     `json:"termsAgreed"`
	Completed       bool                     `json:"completed"`
	SavedAt         time.Time                `json:"savedAt"`
}

// EncodeDraft serializes d to its stored JSON form.
func EncodeDraft(d *TripDraft, savedAt time.Time) ([]byte, error) {
	step, err := json.Marshal(int(d.Step))
	if err != nil {
		return nil, err
	}
	budget := d.Budget
	dietary := d.Dietary
	accessibility := d.Accessibility

	prefs := make(map[string]InterestLevel)
	for _, sp := range d.SelectedPreferences() {
		prefs[string(sp.Preference)] = sp.Level
	}

	return json.Marshal(StoredDraft{
		Step:            step,
		Budget:          &budget,
		Currency:        d.Currency,
		StartDate:       d.StartDate.String(),
		EndDate:         d.EndDate.String(),
		FlexibleDates:   d.FlexibleDates,
		Departure:       d.Departure,
		Preferences:     prefs,
		Dietary:         &dietary,
		Accessibility:   &accessibility,
		SpecialRequests: d.SpecialRequests,
		EmailCopy:       d.EmailCopy,
		TermsAgreed:     d.TermsAgreed,
		Completed:       d.Completed,
		SavedAt:         savedAt,
	})
}

// DecodeDraft parses a stored draft. Malformed JSON returns the decode error,
// JSON that is not an object returns ErrDraftNotObject. Each field is read on
// its own: a field that is missing, of the wrong JSON type or out of range
// falls back to its default instead of failing the decode.
func DecodeDraft(data []byte) (*TripDraft, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, ErrDraftNotObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	d := NewTripDraft()
	d.Step = clampStep(fields["step"])

	var budget float64
	if decodeField(fields, "budget", &budget) && !math.IsNaN(budget) && budget >= 0 {
		d.Budget = budget
	}
	var currency Currency
	if decodeField(fields, "currency", &currency) && currency.Valid() {
		d.Currency = currency
	}
	d.StartDate = decodeDate(fields, "startDate")
	d.EndDate = decodeDate(fields, "endDate")
	decodeField(fields, "flexibleDates", &d.FlexibleDates)
	decodeField(fields, "departure", &d.Departure)
	decodePreferences(d, fields["preferences"])

	var dietary, accessibility string
	if decodeField(fields, "dietary", &dietary) {
		d.Dietary = dietary
	}
	if decodeField(fields, "accessibility", &accessibility) {
		d.Accessibility = accessibility
	}
	decodeField(fields, "specialRequests", &d.SpecialRequests)
	decodeField(fields, "emailCopy", &d.EmailCopy)
	decodeField(fields, "termsAgreed", &d.TermsAgreed)
	decodeField(fields, "completed", &d.Completed)

	return d, nil
}

// decodeField unmarshals one stored field into a scratch value and copies it
// to dst only on success. It reports whether dst was set.
func decodeField[T any](fields map[string]json.RawMessage, name string, dst *T) bool {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	*dst = v
	return true
}

func decodeDate(fields map[string]json.RawMessage, name string) Date {
	var s string
	if !decodeField(fields, name, &s) {
		return Date{}
	}
	date, err := ParseDate(s)
	if err != nil {
		return Date{}
	}
	return date
}

// decodePreferences marks every known key of the stored preferences object as
// selected. A level that is not a known string falls back to the default.
func decodePreferences(d *TripDraft, raw json.RawMessage) {
	var prefs map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &prefs) != nil {
		return
	}
	for key, rawLevel := range prefs {
		p := Preference(key)
		if !p.Valid() {
			continue
		}
		var level InterestLevel
		if json.Unmarshal(rawLevel, &level) != nil || !level.Valid() {
			level = DefaultInterestLevel
		}
		d.Preferences[p] = PreferenceChoice{Selected: true, Level: level}
	}
}

// clampStep reads a stored step index. Anything that is not an integral JSON
// number inside [0, StepCount) yields StepBasics.
func clampStep(raw json.RawMessage) Step {
	if len(raw) == 0 {
		return StepBasics
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return StepBasics
	}
	if n != math.Trunc(n) {
		return StepBasics
	}
	s := Step(n)
	if !s.Valid() {
		return StepBasics
	}
	return s
}
