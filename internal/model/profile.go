package model

import "time"

// Gender is a single-choice enum.
type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer-not-to-say"
)

// GenderLabels maps gender values to their display labels.
var GenderLabels = map[Gender]string{
	GenderMale:           "Male",
	GenderFemale:         "Female",
	GenderOther:          "Other",
	GenderPreferNotToSay: "Prefer not to say",
}

// GenderOrder is the fixed display order of the selection cards.
var GenderOrder = []Gender{GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay}

// ValidGender reports whether g is one of the enumerated values.
func ValidGender(g Gender) bool {
	_, ok := GenderLabels[g]
	return ok
}

// Profile is the user-supplied onboarding data, persisted server-side.
// Username is the last field to be set; its presence marks onboarding
// as finished.
type Profile struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Gender    Gender    `json:"gender"`
	BirthDate time.Time `json:"birth_date"`
	Username  string    `json:"username,omitempty"`
}

// Merge overlays the non-zero fields of partial onto p and returns the
// result. Zero-valued fields of partial never clobber stored values,
// mirroring a merge write to the profile store.
func (p Profile) Merge(partial Profile) Profile {
	out := p
	if partial.FirstName != "" {
		out.FirstName = partial.FirstName
	}
	if partial.LastName != "" {
		out.LastName = partial.LastName
	}
	if partial.Gender != "" {
		out.Gender = partial.Gender
	}
	if !partial.BirthDate.IsZero() {
		out.BirthDate = partial.BirthDate
	}
	if partial.Username != "" {
		out.Username = partial.Username
	}
	return out
}
