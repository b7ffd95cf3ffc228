package flow

import (
	"strings"
	"sync"
	"time"

	"drifty/internal/model"
	pkgerrors "drifty/pkg/errors"
	"drifty/utils"
)

// WizardStep is a position in the onboarding wizard.
type WizardStep int

const (
	StepName WizardStep = iota + 1
	StepGender
	StepBirthDate
)

// MonthNames is the display list for the month selector, index 0 =
// January.
var MonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// OnboardingWizard collects name, gender and date of birth across
// strictly ordered steps. Back navigation keeps entered values; the
// finished draft is emitted by Submit.
type OnboardingWizard struct {
	mu sync.Mutex

	step      WizardStep
	firstName string
	lastName  string
	gender    model.Gender
	day       int
	month     int
	year      int

	lastErr error
	now     func() time.Time
}

func NewOnboardingWizard() *OnboardingWizard {
	return &OnboardingWizard{
		step: StepName,
		now:  time.Now,
	}
}

// NewOnboardingWizardFrom pre-seeds a wizard from an existing profile
// so a partially onboarded user resumes with their values in place.
func NewOnboardingWizardFrom(profile *model.Profile) *OnboardingWizard {
	w := NewOnboardingWizard()
	if profile == nil {
		return w
	}

	w.firstName = profile.FirstName
	w.lastName = profile.LastName
	w.gender = profile.Gender
	if !profile.BirthDate.IsZero() {
		w.day = profile.BirthDate.Day()
		w.month = int(profile.BirthDate.Month())
		w.year = profile.BirthDate.Year()
	}
	return w
}

func (w *OnboardingWizard) Step() WizardStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *OnboardingWizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// SetName records the name fields as typed.
func (w *OnboardingWizard) SetName(first, last string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.firstName = first
	w.lastName = last
}

func (w *OnboardingWizard) Name() (first, last string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstName, w.lastName
}

// NextFromName advances to gender selection; both names must be
// non-empty.
func (w *OnboardingWizard) NextFromName() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepName {
		return pkgerrors.StepOutOfRange
	}
	if strings.TrimSpace(w.firstName) == "" || strings.TrimSpace(w.lastName) == "" {
		w.lastErr = pkgerrors.NameRequired
		return pkgerrors.NameRequired
	}

	w.step = StepGender
	w.lastErr = nil
	return nil
}

// SelectGender records the choice and auto-advances to date of birth.
func (w *OnboardingWizard) SelectGender(g model.Gender) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepGender {
		return pkgerrors.StepOutOfRange
	}
	if !model.ValidGender(g) {
		w.lastErr = pkgerrors.GenderRequired
		return pkgerrors.GenderRequired
	}

	w.gender = g
	w.step = StepBirthDate
	w.lastErr = nil
	return nil
}

func (w *OnboardingWizard) Gender() model.Gender {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gender
}

// SetBirthDate records the selected triplet; month is 1-based.
func (w *OnboardingWizard) SetBirthDate(day, month, year int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.day, w.month, w.year = day, month, year
}

func (w *OnboardingWizard) BirthDateParts() (day, month, year int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.day, w.month, w.year
}

// DateError revalidates the current triplet for inline display;
// nil when the selection is incomplete or valid.
func (w *OnboardingWizard) DateError() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.day == 0 || w.month == 0 || w.year == 0 {
		return nil
	}
	_, err := utils.ValidateBirthDate(w.day, w.month, w.year, w.now())
	return err
}

// CanSubmit reports whether the date selection passes validation.
func (w *OnboardingWizard) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepBirthDate {
		return false
	}
	_, err := utils.ValidateBirthDate(w.day, w.month, w.year, w.now())
	return err == nil
}

// Submit validates the date of birth and emits the completed draft
// (a profile without username).
func (w *OnboardingWizard) Submit() (model.Profile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepBirthDate {
		return model.Profile{}, pkgerrors.StepOutOfRange
	}

	date, err := utils.ValidateBirthDate(w.day, w.month, w.year, w.now())
	if err != nil {
		w.lastErr = err
		return model.Profile{}, err
	}

	w.lastErr = nil
	return model.Profile{
		FirstName: strings.TrimSpace(w.firstName),
		LastName:  strings.TrimSpace(w.lastName),
		Gender:    w.gender,
		BirthDate: date,
	}, nil
}

// Back steps the pointer backwards without discarding entered values.
// Not permitted from the first step.
func (w *OnboardingWizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step <= StepName {
		return pkgerrors.StepOutOfRange
	}

	w.step--
	w.lastErr = nil
	return nil
}
