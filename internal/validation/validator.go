package validation

import (
	"regexp"
	"strings"
	"studypath/internal/domain"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateOnboardingStep validates the fields a wizard step requires
// before forward navigation. Steps 3 and 4 have no required fields.
func (v *Validator) ValidateOnboardingStep(step int, data domain.OnboardingData) domain.ValidationErrors {
	var errors domain.ValidationErrors

	switch step {
	case 1:
		if data.Grade == 0 {
			errors = append(errors, domain.NewMissingFieldError("grade"))
		} else if data.Grade < 1 || data.Grade > 12 {
			errors = append(errors, domain.NewOutOfRangeError("grade", data.Grade, 1, 12))
		}
		if data.Board == "" {
			errors = append(errors, domain.NewMissingFieldError("board"))
		} else if !domain.ValidBoard(data.Board) {
			errors = append(errors, domain.NewInvalidFormatError("board", string(data.Board)))
		}
	case 2:
		if strings.TrimSpace(data.SchoolID) == "" {
			errors = append(errors, domain.NewMissingFieldError("schoolId"))
		}
		if strings.TrimSpace(data.CityID) == "" {
			errors = append(errors, domain.NewMissingFieldError("cityId"))
		}
	}

	return errors
}

// ValidateOnboardingSubmit validates the full payload before submission.
// Optional fields are only checked for format when present.
func (v *Validator) ValidateOnboardingSubmit(data domain.OnboardingData) domain.ValidationErrors {
	var errors domain.ValidationErrors

	errors = append(errors, v.ValidateOnboardingStep(1, data)...)
	errors = append(errors, v.ValidateOnboardingStep(2, data)...)

	if data.PhoneNumber != "" && !isValidPhone(data.PhoneNumber) {
		errors = append(errors, domain.NewInvalidFormatError("phoneNumber", data.PhoneNumber))
	}
	if data.ParentPhone != "" && !isValidPhone(data.ParentPhone) {
		errors = append(errors, domain.NewInvalidFormatError("parentPhone", data.ParentPhone))
	}
	if data.ParentEmail != "" && !isValidEmail(data.ParentEmail) {
		errors = append(errors, domain.NewInvalidFormatError("parentEmail", data.ParentEmail))
	}
	if data.DateOfBirth != "" && !isValidDate(data.DateOfBirth) {
		errors = append(errors, domain.NewInvalidFormatError("dateOfBirth", data.DateOfBirth))
	}

	return errors
}

// ValidatePagination validates catalog paging parameters.
func (v *Validator) ValidatePagination(page, limit int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if page < 1 {
		errors = append(errors, domain.NewOutOfRangeError("page", page, 1, 10000))
	}
	if limit < 1 || limit > 100 {
		errors = append(errors, domain.NewOutOfRangeError("limit", limit, 1, 100))
	}

	return errors
}

// Helper functions for validation

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func isValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

func isValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// isValidDate checks the YYYY-MM-DD wire format used by the onboarding API.
func isValidDate(s string) bool {
	return datePattern.MatchString(s)
}
