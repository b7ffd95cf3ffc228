package utils

import (
	"strings"
	"time"

	"drifty/internal/model"
	pkgerrors "drifty/pkg/errors"
)

// ValidatePhone reports whether digits is a valid national number for
// the region: digits only, length within the region's bounds.
func ValidatePhone(region model.Region, digits string) bool {
	if len(digits) < region.MinDigits || len(digits) > region.MaxDigits {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateUsername checks the username format rules and returns a
// classified Definition error on failure. Callers are expected to have
// lowercased the candidate already.
func ValidateUsername(s string) error {
	if len(s) < 3 {
		return pkgerrors.UsernameTooShort
	}
	if !model.UsernameWellFormed(s) {
		return pkgerrors.UsernameCharset
	}
	return nil
}

// ValidateBirthDate checks that the day/month/year triplet forms a
// real calendar date no later than today, and returns it. time.Date
// normalizes overflow (Feb 30 becomes Mar 1/2), so reconstructing and
// comparing components back catches impossible dates.
func ValidateBirthDate(day, month, year int, now time.Time) (time.Time, error) {
	if day == 0 || month == 0 || year == 0 {
		return time.Time{}, pkgerrors.DateIncomplete
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, pkgerrors.DateInvalid
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		return time.Time{}, pkgerrors.DateInFuture
	}

	return date, nil
}

// NormalizeDigits strips everything but digits from free-form phone
// input.
func NormalizeDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
