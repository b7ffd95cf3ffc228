package model

// Stage is how far through the gate the user is. Derived from
// Identity + Profile, never persisted.
type Stage string

const (
	StageNoIdentity Stage = "no_identity"
	StageNoProfile  Stage = "no_profile"
	StageNoUsername Stage = "no_username"
	StageComplete   Stage = "complete"
)

// Session is the one owned session value: identity and profile as
// currently known, plus the stage derived from them.
type Session struct {
	Identity *Identity
	Profile  *Profile
	Stage    Stage
}

// UsernameWellFormed reports whether s satisfies the username format
// rules: at least 3 characters, letters/digits/period/underscore only.
func UsernameWellFormed(s string) bool {
	if len(s) < 3 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
		default:
			return false
		}
	}
	return true
}

// DeriveStage recomputes the onboarding stage from what is known. A
// profile only counts as onboarded when its username is non-empty and
// format-valid.
func DeriveStage(identity *Identity, profile *Profile) Stage {
	switch {
	case identity == nil:
		return StageNoIdentity
	case profile == nil:
		return StageNoProfile
	case !UsernameWellFormed(profile.Username):
		return StageNoUsername
	default:
		return StageComplete
	}
}
