package domain

// SummaryView is the review step's read model.
type SummaryView struct {
	Budget       string              `json:"budget"`
	Dates        string              `json:"dates"`
	Duration     string              `json:"duration"`
	Departure    string              `json:"departure"`
	Preferences  []PreferenceSummary `json:"preferences"`
	Requirements string              `json:"requirements"`
}

// PreferenceSummary is one line of the preferences list.
// Preference and Level are empty for the "nothing selected" placeholder.
type PreferenceSummary struct {
	Preference Preference    `json:"preference,omitempty"`
	Level      InterestLevel `json:"level,omitempty"`
	Text       string        `json:"text"`
}
