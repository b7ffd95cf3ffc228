package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"drifty/internal/model"
	"drifty/pkg/challenge"
	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/logger"
	"drifty/pkg/verify"
	"drifty/utils"
)

// PhoneState names a phone verification machine state.
type PhoneState string

const (
	PhoneStateEnteringPhone PhoneState = "entering_phone"
	PhoneStateSendingCode   PhoneState = "sending_code"
	PhoneStateCodeSent      PhoneState = "code_sent"
	PhoneStateVerifying     PhoneState = "verifying"
	PhoneStateVerified      PhoneState = "verified"
)

// OTPLength is the number of digits in a verification code.
const OTPLength = 6

// PhoneVerification drives phone submission, code send, resend
// cooldown and code confirmation. One machine per auth attempt; it
// owns the challenge provider binding for its lifetime and terminates
// on Verified.
type PhoneVerification struct {
	mu sync.Mutex

	state  PhoneState
	region model.Region
	digits string

	confirmation      *verify.Confirmation
	resendAvailableAt time.Time
	cooldown          time.Duration

	otp    [OTPLength]rune
	cursor int

	identity *model.Identity
	lastErr  error

	client verify.Client
	now    func() time.Time
}

// NewPhoneVerification binds the challenge provider and starts at
// phone entry with the default region. Close releases the binding.
func NewPhoneVerification(client verify.Client, cooldown time.Duration) (*PhoneVerification, error) {
	if err := challenge.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize challenge provider: %w", err)
	}

	return &PhoneVerification{
		state:    PhoneStateEnteringPhone,
		region:   model.Regions[model.DefaultRegion],
		cooldown: cooldown,
		client:   client,
		now:      time.Now,
	}, nil
}

// Close tears down the challenge provider binding so a later attempt
// starts clean.
func (p *PhoneVerification) Close() {
	challenge.Reset()
}

func (p *PhoneVerification) State() PhoneState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *PhoneVerification) Region() model.Region {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.region
}

func (p *PhoneVerification) Digits() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.digits
}

// Err returns the last surfaced user-facing error, if any.
func (p *PhoneVerification) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// SetRegion switches the selected country and clears the entered
// digits: a number valid in one region is not assumed valid in
// another.
func (p *PhoneVerification) SetRegion(code string) error {
	region, ok := model.Regions[code]
	if !ok {
		return fmt.Errorf("unknown region: %s", code)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.region = region
	p.digits = ""
	p.lastErr = nil
	return nil
}

// InputDigits appends free-form input to the national number,
// keeping digits only and capping at the region's maximum length.
func (p *PhoneVerification) InputDigits(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range utils.NormalizeDigits(s) {
		if len(p.digits) >= p.region.MaxDigits {
			break
		}
		p.digits += string(r)
	}
}

// Backspace removes the last entered digit.
func (p *PhoneVerification) Backspace() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.digits) > 0 {
		p.digits = p.digits[:len(p.digits)-1]
	}
}

// CanSubmit reports whether the entered number is valid for the
// selected region.
func (p *PhoneVerification) CanSubmit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return utils.ValidatePhone(p.region, p.digits)
}

// SendCode submits the phone number: challenge token plus full
// number go to the verification service. On success the machine moves
// to code entry and arms the resend cooldown; on failure it returns to
// phone entry with a classified error.
func (p *PhoneVerification) SendCode(ctx context.Context, challengeToken string) error {
	p.mu.Lock()
	if p.state != PhoneStateEnteringPhone {
		p.mu.Unlock()
		return fmt.Errorf("send not allowed in state %s", p.state)
	}
	if !utils.ValidatePhone(p.region, p.digits) {
		p.lastErr = pkgerrors.PhoneInvalid
		p.mu.Unlock()
		return pkgerrors.PhoneInvalid
	}
	p.state = PhoneStateSendingCode
	phoneNumber := model.FullNumber(p.region, p.digits)
	p.mu.Unlock()

	conf, err := p.client.SendCode(ctx, phoneNumber, challengeToken)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.state = PhoneStateEnteringPhone
		p.lastErr = classifySendError(err)
		logger.Logger.Warn("Code send failed",
			zap.Error(err),
		)
		return p.lastErr
	}

	p.confirmation = conf
	p.state = PhoneStateCodeSent
	p.clearOTPLocked()
	p.armCooldownLocked()
	p.lastErr = nil
	return nil
}

// Resend re-requests a code for the same number. Only permitted once
// the cooldown has elapsed; the previous confirmation handle is
// replaced and becomes invalid.
func (p *PhoneVerification) Resend(ctx context.Context, challengeToken string) error {
	p.mu.Lock()
	if p.state != PhoneStateCodeSent {
		p.mu.Unlock()
		return fmt.Errorf("resend not allowed in state %s", p.state)
	}
	if p.now().Before(p.resendAvailableAt) {
		p.lastErr = pkgerrors.ResendTooSoon
		p.mu.Unlock()
		return pkgerrors.ResendTooSoon
	}
	phoneNumber := model.FullNumber(p.region, p.digits)
	p.mu.Unlock()

	conf, err := p.client.SendCode(ctx, phoneNumber, challengeToken)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		// The previous code may still work; stay on code entry.
		p.lastErr = classifySendError(err)
		logger.Logger.Warn("Code resend failed",
			zap.Error(err),
		)
		return p.lastErr
	}

	p.confirmation = conf
	p.clearOTPLocked()
	p.armCooldownLocked()
	p.lastErr = nil
	return nil
}

// ResendRemaining is how long until resend is permitted; zero when it
// already is.
func (p *PhoneVerification) ResendRemaining() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	remaining := p.resendAvailableAt.Sub(p.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// InputOTPDigit enters one code digit at the cursor and auto-advances.
// Non-digits are ignored.
func (p *PhoneVerification) InputOTPDigit(r rune) {
	if r < '0' || r > '9' {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PhoneStateCodeSent {
		return
	}

	p.otp[p.cursor] = r
	if p.cursor < OTPLength-1 {
		p.cursor++
	}
}

// BackspaceOTP clears the cell under the cursor, or moves focus back
// and clears that cell when the current one is already empty.
func (p *PhoneVerification) BackspaceOTP() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PhoneStateCodeSent {
		return
	}

	if p.otp[p.cursor] == 0 && p.cursor > 0 {
		p.cursor--
	}
	p.otp[p.cursor] = 0
}

// PasteOTP fills all six cells from a paste. Anything but exactly six
// digits is ignored, matching the input widget's behavior.
func (p *PhoneVerification) PasteOTP(s string) {
	s = strings.TrimSpace(s)
	digits := utils.NormalizeDigits(s)
	if len(digits) != OTPLength || len(s) != OTPLength {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PhoneStateCodeSent {
		return
	}

	for i, r := range digits {
		p.otp[i] = r
	}
	p.cursor = OTPLength - 1
}

// OTPCode assembles the entered digits.
func (p *PhoneVerification) OTPCode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.otpCodeLocked()
}

func (p *PhoneVerification) otpCodeLocked() string {
	var out []rune
	for _, r := range p.otp {
		if r != 0 {
			out = append(out, r)
		}
	}
	return string(out)
}

// OTPCursor is the focused cell index.
func (p *PhoneVerification) OTPCursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// OTPComplete reports whether all six digits are entered.
func (p *PhoneVerification) OTPComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.otpCodeLocked()) == OTPLength
}

// Verify submits the assembled code. Success terminates the machine
// with the verified identity; calling Verify again afterwards is a
// no-op returning the same identity. Failure returns to code entry
// with the buffer cleared and focus on the first digit.
func (p *PhoneVerification) Verify(ctx context.Context) (*model.Identity, error) {
	p.mu.Lock()
	if p.state == PhoneStateVerified {
		id := p.identity
		p.mu.Unlock()
		return id, nil
	}
	if p.state != PhoneStateCodeSent {
		p.mu.Unlock()
		return nil, fmt.Errorf("verify not allowed in state %s", p.state)
	}
	code := p.otpCodeLocked()
	if len(code) != OTPLength {
		p.lastErr = pkgerrors.CodeIncomplete
		p.mu.Unlock()
		return nil, pkgerrors.CodeIncomplete
	}
	conf := p.confirmation
	p.state = PhoneStateVerifying
	p.mu.Unlock()

	identity, err := conf.Confirm(ctx, code)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.state = PhoneStateCodeSent
		p.clearOTPLocked()
		p.lastErr = classifyVerifyError(err)
		logger.Logger.Warn("Code verification failed",
			zap.Error(err),
		)
		return nil, p.lastErr
	}

	p.state = PhoneStateVerified
	p.identity = identity
	p.confirmation = nil
	p.lastErr = nil
	return identity, nil
}

// Identity returns the verified identity after termination.
func (p *PhoneVerification) Identity() *model.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identity
}

// BackToPhone abandons the sent code and returns to phone entry. The
// entered number is kept for editing; the confirmation handle and the
// code buffer are destroyed.
func (p *PhoneVerification) BackToPhone() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != PhoneStateCodeSent {
		return
	}

	p.confirmation = nil
	p.clearOTPLocked()
	p.state = PhoneStateEnteringPhone
	p.lastErr = nil
}

// armCooldownLocked moves the resend stamp forward, never backward.
func (p *PhoneVerification) armCooldownLocked() {
	next := p.now().Add(p.cooldown)
	if next.After(p.resendAvailableAt) {
		p.resendAvailableAt = next
	}
}

func (p *PhoneVerification) clearOTPLocked() {
	p.otp = [OTPLength]rune{}
	p.cursor = 0
}

// classifySendError maps provider failures onto the user-facing
// catalogue; unknown causes surface as a generic send failure.
func classifySendError(err error) error {
	var def pkgerrors.Definition
	if errors.As(err, &def) {
		return def
	}
	return pkgerrors.SendFailed
}

func classifyVerifyError(err error) error {
	var def pkgerrors.Definition
	if errors.As(err, &def) {
		return def
	}
	return pkgerrors.CodeInvalid
}
