package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStage(t *testing.T) {
	identity := &Identity{UID: "u1", PhoneNumber: "+919876543210"}

	tests := []struct {
		name     string
		identity *Identity
		profile  *Profile
		want     Stage
	}{
		{"no identity", nil, nil, StageNoIdentity},
		{"no identity trumps profile", nil, &Profile{Username: "drifter"}, StageNoIdentity},
		{"identity without profile", identity, nil, StageNoProfile},
		{"profile without username", identity, &Profile{FirstName: "Asha"}, StageNoUsername},
		{"malformed username counts as missing", identity, &Profile{Username: "ab"}, StageNoUsername},
		{"complete", identity, &Profile{Username: "asha_22"}, StageComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStage(tt.identity, tt.profile))
		})
	}
}

func TestUsernameWellFormed(t *testing.T) {
	assert.True(t, UsernameWellFormed("abc"))
	assert.True(t, UsernameWellFormed("A.b_9"))
	assert.False(t, UsernameWellFormed("ab"))
	assert.False(t, UsernameWellFormed("a b c"))
	assert.False(t, UsernameWellFormed("tricky!"))
}

func TestProfileMerge(t *testing.T) {
	base := Profile{
		FirstName: "Asha",
		LastName:  "Rao",
		Gender:    GenderFemale,
		BirthDate: time.Date(2000, time.February, 28, 0, 0, 0, 0, time.UTC),
	}

	merged := base.Merge(Profile{Username: "asha_22"})
	assert.Equal(t, "Asha", merged.FirstName)
	assert.Equal(t, "asha_22", merged.Username)

	renamed := merged.Merge(Profile{FirstName: "Ash"})
	assert.Equal(t, "Ash", renamed.FirstName)
	assert.Equal(t, "Rao", renamed.LastName)
	assert.Equal(t, "asha_22", renamed.Username)
	assert.False(t, renamed.BirthDate.IsZero())
}

func TestRegionTable(t *testing.T) {
	codes := RegionCodes()
	assert.Contains(t, codes, DefaultRegion)

	for _, code := range codes {
		region := Regions[code]
		assert.NotEmpty(t, region.DialCode)
		assert.Greater(t, region.MinDigits, 0)
		assert.GreaterOrEqual(t, region.MaxDigits, region.MinDigits)
	}

	in := Regions["IN"]
	assert.Equal(t, "+919876543210", FullNumber(in, "9876543210"))
}
