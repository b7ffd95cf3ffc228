package errors

import "errors"

// Definition is a business error with a stable code and a default
// user-facing message.
type Definition struct {
	Code    string
	Message string
}

func (d Definition) Error() string {
	return d.Message
}

// Phone verification errors.
var (
	PhoneInvalid         = Definition{Code: "PHONE_INVALID", Message: "Invalid phone number format. Please check and try again."}
	PhoneRateLimited     = Definition{Code: "PHONE_RATE_LIMITED", Message: "Too many attempts. Please try again later."}
	CodeInvalid          = Definition{Code: "CODE_INVALID", Message: "Invalid code. Please try again."}
	CodeExpired          = Definition{Code: "CODE_EXPIRED", Message: "Code expired. Please request a new one."}
	CodeIncomplete       = Definition{Code: "CODE_INCOMPLETE", Message: "Please enter all 6 digits."}
	ResendTooSoon        = Definition{Code: "RESEND_TOO_SOON", Message: "Please wait before requesting a new code."}
	ConfirmationReplaced = Definition{Code: "CONFIRMATION_REPLACED", Message: "This code is no longer valid. Please use the latest one."}
	SendFailed           = Definition{Code: "SEND_FAILED", Message: "Failed to send code. Please try again."}
)

// Challenge (bot mitigation) errors.
var (
	ChallengeRequired = Definition{Code: "CHALLENGE_REQUIRED", Message: "Security check required"}
	ChallengeFailed   = Definition{Code: "CHALLENGE_FAILED", Message: "Security check failed. Please refresh and try again."}
)

// Onboarding errors.
var (
	NameRequired   = Definition{Code: "NAME_REQUIRED", Message: "First and last name are required"}
	GenderRequired = Definition{Code: "GENDER_REQUIRED", Message: "Please select a gender"}
	DateIncomplete = Definition{Code: "DATE_INCOMPLETE", Message: "Please select day, month and year"}
	DateInvalid    = Definition{Code: "DATE_INVALID", Message: "Please enter a valid date"}
	DateInFuture   = Definition{Code: "DATE_IN_FUTURE", Message: "Date of birth cannot be in the future"}
	StepOutOfRange = Definition{Code: "STEP_OUT_OF_RANGE", Message: "Onboarding step out of range"}
)

// Username errors.
var (
	UsernameTooShort  = Definition{Code: "USERNAME_TOO_SHORT", Message: "Username must be at least 3 characters"}
	UsernameCharset   = Definition{Code: "USERNAME_CHARSET", Message: "Only letters, numbers, periods and underscores allowed"}
	UsernameTaken     = Definition{Code: "USERNAME_TAKEN", Message: "Username is already taken"}
	UsernameUnchecked = Definition{Code: "USERNAME_UNCHECKED", Message: "Username availability has not been confirmed"}
)

// Lookup resolves error codes back to definitions.
var Lookup = map[string]Definition{
	PhoneInvalid.Code:         PhoneInvalid,
	PhoneRateLimited.Code:     PhoneRateLimited,
	CodeInvalid.Code:          CodeInvalid,
	CodeExpired.Code:          CodeExpired,
	CodeIncomplete.Code:       CodeIncomplete,
	ResendTooSoon.Code:        ResendTooSoon,
	ConfirmationReplaced.Code: ConfirmationReplaced,
	SendFailed.Code:           SendFailed,
	ChallengeRequired.Code:    ChallengeRequired,
	ChallengeFailed.Code:      ChallengeFailed,
	NameRequired.Code:         NameRequired,
	GenderRequired.Code:       GenderRequired,
	DateIncomplete.Code:       DateIncomplete,
	DateInvalid.Code:          DateInvalid,
	DateInFuture.Code:         DateInFuture,
	StepOutOfRange.Code:       StepOutOfRange,
	UsernameTooShort.Code:     UsernameTooShort,
	UsernameCharset.Code:      UsernameCharset,
	UsernameTaken.Code:        UsernameTaken,
	UsernameUnchecked.Code:    UsernameUnchecked,
}

// Get returns the Definition for a code, or a generic one when unknown.
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// Infrastructure sentinels.
var (
	ErrUnsupportedChallengeProvider = errors.New("unsupported challenge provider")
	ErrUnsupportedVerifyProvider    = errors.New("unsupported verify provider")
	ErrUnsupportedSMSProvider       = errors.New("unsupported SMS provider")
	ErrUnsupportedProfileStore      = errors.New("unsupported profile store backend")
	ErrChallengeTokenRequired       = errors.New("challenge token is required")
	ErrChallengeResponseNil         = errors.New("challenge provider returned empty response")
	ErrChallengeVerificationFailed  = errors.New("challenge verification failed")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
)
