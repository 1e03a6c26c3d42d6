// Package onboarding implements the 4-step profile-completion wizard:
// bounded step navigation, per-step validation on forward moves, optional
// later steps, and persisted progress so the flow resumes after a restart.
package onboarding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"studypath/internal/domain"
	"studypath/internal/dto"
	"studypath/internal/logger"
	"studypath/internal/store"
	"studypath/internal/validation"

	"go.uber.org/zap"
)

const (
	FirstStep = 1
	LastStep  = 4
)

// API is the backend surface the wizard needs. Implemented by the REST
// client.
type API interface {
	SubmitOnboarding(ctx context.Context, payload dto.OnboardingPayload) error
}

// Identity supplies the signed-in user's id. Implemented by the auth
// manager.
type Identity interface {
	UserID() (string, error)
}

// Update carries a shallow merge into the accumulated data. Nil fields
// are left untouched.
type Update struct {
	Grade       *int
	Board       *domain.Board
	SchoolID    *string
	CityID      *string
	DateOfBirth *string
	PhoneNumber *string
	ParentEmail *string
	ParentPhone *string
	Interests   []string
}

// Wizard is the onboarding state machine. Step is always in [1,4]; every
// transition and merge persists, enabling resume.
type Wizard struct {
	mu         sync.Mutex
	step       int
	data       domain.OnboardingData
	stepErrors map[int]string
	submitErr  string

	store     *store.OnboardingStore
	api       API
	identity  Identity
	validator *validation.Validator
}

// NewWizard creates a wizard hydrated from persisted storage.
func NewWizard(ctx context.Context, st *store.OnboardingStore, api API, identity Identity) (*Wizard, error) {
	step, err := st.LoadStep(ctx)
	if err != nil {
		return nil, err
	}
	data, err := st.LoadData(ctx)
	if err != nil {
		return nil, err
	}
	return &Wizard{
		step:       step,
		data:       data,
		stepErrors: make(map[int]string),
		store:      st,
		api:        api,
		identity:   identity,
		validator:  validation.NewValidator(),
	}, nil
}

// Step returns the current step, in [1,4].
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Data returns a copy of the accumulated data.
func (w *Wizard) Data() domain.OnboardingData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.copyDataLocked()
}

// StepError returns the validation message recorded for a step, if any.
func (w *Wizard) StepError(step int) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stepErrors[step]
}

// SubmitError returns the message from the last failed submission.
func (w *Wizard) SubmitError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitErr
}

// NextStep advances the wizard. Validation runs only on forward
// navigation: steps 1 and 2 must satisfy their required fields, steps 3
// and 4 never block. At the last step it submits instead of advancing.
func (w *Wizard) NextStep(ctx context.Context) error {
	w.mu.Lock()
	step := w.step
	data := w.copyDataLocked()
	w.mu.Unlock()

	if errs := w.validator.ValidateOnboardingStep(step, data); len(errs) > 0 {
		w.mu.Lock()
		w.stepErrors[step] = errs.Error()
		w.mu.Unlock()
		return errs
	}

	if step == LastStep {
		return w.Submit(ctx)
	}

	w.mu.Lock()
	w.step = step + 1
	newStep := w.step
	w.mu.Unlock()
	return w.store.SaveStep(ctx, newStep)
}

// PreviousStep moves back one step; at step 1 it is a no-op.
func (w *Wizard) PreviousStep(ctx context.Context) error {
	w.mu.Lock()
	if w.step <= FirstStep {
		w.mu.Unlock()
		return nil
	}
	w.step--
	newStep := w.step
	w.mu.Unlock()
	return w.store.SaveStep(ctx, newStep)
}

// Skip advances past an optional step without touching its fields. Only
// steps 3 and 4 are skippable.
func (w *Wizard) Skip(ctx context.Context) error {
	w.mu.Lock()
	step := w.step
	w.mu.Unlock()
	if step < 3 {
		return domain.NewInvalidInputError(fmt.Sprintf("step %d is not skippable", step))
	}
	return w.NextStep(ctx)
}

// UpdateData shallow-merges the update into the accumulated data,
// persists the merged result, and clears validation errors for the steps
// the updated fields belong to.
func (w *Wizard) UpdateData(ctx context.Context, update Update) error {
	w.mu.Lock()
	touched := make(map[int]bool)
	if update.Grade != nil {
		w.data.Grade = *update.Grade
		touched[1] = true
	}
	if update.Board != nil {
		w.data.Board = *update.Board
		touched[1] = true
	}
	if update.SchoolID != nil {
		w.data.SchoolID = *update.SchoolID
		touched[2] = true
	}
	if update.CityID != nil {
		w.data.CityID = *update.CityID
		touched[2] = true
	}
	if update.DateOfBirth != nil {
		w.data.DateOfBirth = *update.DateOfBirth
		touched[3] = true
	}
	if update.PhoneNumber != nil {
		w.data.PhoneNumber = *update.PhoneNumber
		touched[3] = true
	}
	if update.ParentEmail != nil {
		w.data.ParentEmail = *update.ParentEmail
		touched[3] = true
	}
	if update.ParentPhone != nil {
		w.data.ParentPhone = *update.ParentPhone
		touched[3] = true
	}
	if update.Interests != nil {
		w.data.Interests = append([]string(nil), update.Interests...)
		touched[4] = true
	}
	for step := range touched {
		delete(w.stepErrors, step)
	}
	data := w.copyDataLocked()
	w.mu.Unlock()

	return w.store.SaveData(ctx, data)
}

// Submit validates the full payload locally before any network call;
// missing required fields fail with their names enumerated. Success
// resets the wizard to step 1 with empty data and clears persisted
// storage. Failure leaves all state intact apart from the error message,
// so the user can retry without re-entering data.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	data := w.copyDataLocked()
	w.mu.Unlock()

	if errs := w.validator.ValidateOnboardingSubmit(data); len(errs) > 0 {
		msg := "missing or invalid fields: " + strings.Join(errs.Fields(), ", ")
		w.mu.Lock()
		w.submitErr = msg
		w.mu.Unlock()
		return errs
	}

	userID, err := w.identity.UserID()
	if err != nil {
		w.mu.Lock()
		w.submitErr = err.Error()
		w.mu.Unlock()
		return err
	}

	payload := dto.NewOnboardingPayload(userID, data)
	if err := w.api.SubmitOnboarding(ctx, payload); err != nil {
		w.mu.Lock()
		w.submitErr = err.Error()
		w.mu.Unlock()
		logger.Get().Error("Onboarding submission failed", zap.Error(err))
		return err
	}

	logger.Get().Info("Onboarding submitted", zap.String("userID", userID))
	return w.Reset(ctx)
}

// Reset returns the wizard to step 1 with empty data and clears the
// persisted blobs.
func (w *Wizard) Reset(ctx context.Context) error {
	w.mu.Lock()
	w.step = FirstStep
	w.data = domain.OnboardingData{}
	w.stepErrors = make(map[int]string)
	w.submitErr = ""
	w.mu.Unlock()

	return w.store.Clear(ctx)
}

func (w *Wizard) copyDataLocked() domain.OnboardingData {
	data := w.data
	data.Interests = append([]string(nil), w.data.Interests...)
	return data
}
