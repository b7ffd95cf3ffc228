package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drifty/pkg/challenge"
	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/verify"
)

func newTestPhone(t *testing.T) (*PhoneVerification, *verify.MockClient) {
	t.Helper()

	client := verify.NewMockClient("123456")
	machine, err := NewPhoneVerification(client, 30*time.Second)
	require.NoError(t, err)
	t.Cleanup(machine.Close)

	return machine, client
}

func sendTestCode(t *testing.T, m *PhoneVerification) {
	t.Helper()
	require.NoError(t, m.SetRegion("US"))
	m.InputDigits("2025550123")
	require.NoError(t, m.SendCode(context.Background(), challenge.MockToken))
	require.Equal(t, PhoneStateCodeSent, m.State())
}

func enterOTP(m *PhoneVerification, code string) {
	for _, r := range code {
		m.InputOTPDigit(r)
	}
}

func TestPhoneRegionSwitchClearsDigits(t *testing.T) {
	m, _ := newTestPhone(t)

	m.InputDigits("98765")
	require.NoError(t, m.SetRegion("GB"))
	assert.Empty(t, m.Digits())
	assert.Equal(t, "+44", m.Region().DialCode)
}

func TestPhoneDigitsNormalizedAndCapped(t *testing.T) {
	m, _ := newTestPhone(t)

	require.NoError(t, m.SetRegion("US"))
	m.InputDigits("(202) 555-0123 99")
	assert.Equal(t, "2025550123", m.Digits())
}

func TestPhoneCannotSubmitShortNumber(t *testing.T) {
	m, _ := newTestPhone(t)

	require.NoError(t, m.SetRegion("US"))
	m.InputDigits("20255501")
	assert.False(t, m.CanSubmit())

	m.InputDigits("23")
	assert.True(t, m.CanSubmit())
}

func TestPhoneSendFailureReturnsToEntry(t *testing.T) {
	m, client := newTestPhone(t)

	require.NoError(t, m.SetRegion("US"))
	m.InputDigits("2025550123")

	client.SendErr = pkgerrors.PhoneRateLimited
	err := m.SendCode(context.Background(), challenge.MockToken)
	assert.ErrorIs(t, err, pkgerrors.PhoneRateLimited)
	assert.Equal(t, PhoneStateEnteringPhone, m.State())
	assert.Equal(t, "2025550123", m.Digits())
}

func TestPhoneEndToEndVerify(t *testing.T) {
	m, _ := newTestPhone(t)
	sendTestCode(t, m)

	enterOTP(m, "123456")
	assert.True(t, m.OTPComplete())

	identity, err := m.Verify(context.Background())
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "+12025550123", identity.PhoneNumber)
	assert.Equal(t, PhoneStateVerified, m.State())
}

func TestPhoneVerifyIdempotentAfterSuccess(t *testing.T) {
	m, _ := newTestPhone(t)
	sendTestCode(t, m)
	enterOTP(m, "123456")

	first, err := m.Verify(context.Background())
	require.NoError(t, err)

	second, err := m.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.UID, second.UID)
}

func TestPhoneWrongCodeClearsBuffer(t *testing.T) {
	m, _ := newTestPhone(t)
	sendTestCode(t, m)

	enterOTP(m, "654321")
	_, err := m.Verify(context.Background())
	assert.ErrorIs(t, err, pkgerrors.CodeInvalid)

	assert.Equal(t, PhoneStateCodeSent, m.State())
	assert.Empty(t, m.OTPCode())
	assert.Zero(t, m.OTPCursor())

	enterOTP(m, "123456")
	_, err = m.Verify(context.Background())
	assert.NoError(t, err)
}

func TestPhoneIncompleteCodeRejected(t *testing.T) {
	m, _ := newTestPhone(t)
	sendTestCode(t, m)

	enterOTP(m, "123")
	_, err := m.Verify(context.Background())
	assert.ErrorIs(t, err, pkgerrors.CodeIncomplete)
	assert.Equal(t, PhoneStateCodeSent, m.State())
}

func TestPhoneResendCooldown(t *testing.T) {
	m, client := newTestPhone(t)

	base := time.Now()
	now := base
	m.now = func() time.Time { return now }

	sendTestCode(t, m)
	require.Equal(t, 1, client.SendCount())

	err := m.Resend(context.Background(), challenge.MockToken)
	assert.ErrorIs(t, err, pkgerrors.ResendTooSoon)
	assert.Equal(t, 1, client.SendCount())

	now = base.Add(29 * time.Second)
	assert.ErrorIs(t, m.Resend(context.Background(), challenge.MockToken), pkgerrors.ResendTooSoon)
	assert.Greater(t, m.ResendRemaining(), time.Duration(0))

	now = base.Add(30 * time.Second)
	require.NoError(t, m.Resend(context.Background(), challenge.MockToken))
	assert.Equal(t, 2, client.SendCount())

	// A successful resend re-arms the cooldown from now.
	assert.ErrorIs(t, m.Resend(context.Background(), challenge.MockToken), pkgerrors.ResendTooSoon)
}

func TestPhoneResendReplacesConfirmation(t *testing.T) {
	m, _ := newTestPhone(t)

	base := time.Now()
	now := base
	m.now = func() time.Time { return now }

	sendTestCode(t, m)
	stale := m.confirmation

	now = base.Add(31 * time.Second)
	require.NoError(t, m.Resend(context.Background(), challenge.MockToken))
	require.NotEqual(t, stale.ID, m.confirmation.ID)

	// The stale handle no longer confirms anything.
	_, err := stale.Confirm(context.Background(), "123456")
	assert.ErrorIs(t, err, pkgerrors.ConfirmationReplaced)

	enterOTP(m, "123456")
	_, err = m.Verify(context.Background())
	assert.NoError(t, err)
}

func TestPhoneOTPEditing(t *testing.T) {
	m, _ := newTestPhone(t)
	sendTestCode(t, m)

	m.InputOTPDigit('1')
	m.InputOTPDigit('x') // non-digit ignored
	m.InputOTPDigit('2')
	assert.Equal(t, "12", m.OTPCode())
	assert.Equal(t, 2, m.OTPCursor())

	m.BackspaceOTP()
	assert.Equal(t, "1", m.OTPCode())
	assert.Equal(t, 1, m.OTPCursor())
}

func TestPhonePasteOTP(t *testing.T) {
	m, _ := newTestPhone(t)
	sendTestCode(t, m)

	m.PasteOTP("12345") // wrong length ignored
	assert.Empty(t, m.OTPCode())

	m.PasteOTP("12a456") // non-digit ignored
	assert.Empty(t, m.OTPCode())

	m.PasteOTP(" 123456 ")
	assert.Equal(t, "123456", m.OTPCode())
	assert.True(t, m.OTPComplete())
}

func TestPhoneBackToPhoneKeepsNumber(t *testing.T) {
	m, _ := newTestPhone(t)
	sendTestCode(t, m)
	enterOTP(m, "12")

	m.BackToPhone()
	assert.Equal(t, PhoneStateEnteringPhone, m.State())
	assert.Equal(t, "2025550123", m.Digits())
	assert.Empty(t, m.OTPCode())

	// The abandoned confirmation is gone; sending again builds a
	// fresh one.
	base := time.Now()
	m.now = func() time.Time { return base.Add(time.Minute) }
	require.NoError(t, m.SendCode(context.Background(), challenge.MockToken))
	enterOTP(m, "123456")
	_, err := m.Verify(context.Background())
	assert.NoError(t, err)
}

func TestPhoneMissingChallengeToken(t *testing.T) {
	m, _ := newTestPhone(t)

	require.NoError(t, m.SetRegion("US"))
	m.InputDigits("2025550123")

	err := m.SendCode(context.Background(), "")
	assert.ErrorIs(t, err, pkgerrors.ChallengeRequired)
	assert.Equal(t, PhoneStateEnteringPhone, m.State())
}
