package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drifty/internal/model"
	pkgerrors "drifty/pkg/errors"
)

func TestValidatePhone(t *testing.T) {
	in := model.Regions["IN"]
	id := model.Regions["ID"]

	tests := []struct {
		name   string
		region model.Region
		digits string
		want   bool
	}{
		{"india exact length", in, "9876543210", true},
		{"india too short", in, "987654321", false},
		{"india too long", in, "98765432101", false},
		{"indonesia lower bound", id, "812345678", true},
		{"indonesia upper bound", id, "812345678901", true},
		{"indonesia too long", id, "8123456789012", false},
		{"letters rejected", in, "987654321a", false},
		{"empty", in, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhone(tt.region, tt.digits))
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("abc"))
	assert.NoError(t, ValidateUsername("drift.er_42"))

	assert.ErrorIs(t, ValidateUsername("ab"), pkgerrors.UsernameTooShort)
	assert.ErrorIs(t, ValidateUsername(""), pkgerrors.UsernameTooShort)
	assert.ErrorIs(t, ValidateUsername("has space"), pkgerrors.UsernameCharset)
	assert.ErrorIs(t, ValidateUsername("dash-ed"), pkgerrors.UsernameCharset)
	assert.ErrorIs(t, ValidateUsername("émile"), pkgerrors.UsernameCharset)
}

func TestValidateBirthDate(t *testing.T) {
	now := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

	t.Run("valid date", func(t *testing.T) {
		date, err := ValidateBirthDate(28, 2, 2000, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2000, time.February, 28, 0, 0, 0, 0, time.UTC), date)
	})

	t.Run("impossible date does not normalize", func(t *testing.T) {
		_, err := ValidateBirthDate(30, 2, 2000, now)
		assert.ErrorIs(t, err, pkgerrors.DateInvalid)
	})

	t.Run("leap day valid in leap year", func(t *testing.T) {
		_, err := ValidateBirthDate(29, 2, 2000, now)
		assert.NoError(t, err)
	})

	t.Run("leap day invalid in common year", func(t *testing.T) {
		_, err := ValidateBirthDate(29, 2, 2001, now)
		assert.ErrorIs(t, err, pkgerrors.DateInvalid)
	})

	t.Run("today allowed", func(t *testing.T) {
		_, err := ValidateBirthDate(29, 8, 2026, now)
		assert.NoError(t, err)
	})

	t.Run("tomorrow rejected", func(t *testing.T) {
		_, err := ValidateBirthDate(30, 8, 2026, now)
		assert.ErrorIs(t, err, pkgerrors.DateInFuture)
	})

	t.Run("incomplete triplet", func(t *testing.T) {
		_, err := ValidateBirthDate(0, 2, 2000, now)
		assert.ErrorIs(t, err, pkgerrors.DateIncomplete)
	})
}

func TestNormalizeDigits(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizeDigits("(987) 654-3210"))
	assert.Equal(t, "123456", NormalizeDigits(" 1 2 3 4 5 6 "))
	assert.Equal(t, "", NormalizeDigits("no digits"))
}

func TestHashPhoneStable(t *testing.T) {
	a := HashPhone("+919876543210")
	b := HashPhone("+919876543210")
	c := HashPhone("+919876543211")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
