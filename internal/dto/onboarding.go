package dto

import "studypath/internal/domain"

// OnboardingPayload is the request body for POST /user-profiles/onboarding.
type OnboardingPayload struct {
	UserID      string   `json:"userId"`
	UserType    string   `json:"userType"`
	SchoolID    string   `json:"schoolId"`
	CityID      string   `json:"cityId"`
	Grade       int      `json:"grade"`
	Board       string   `json:"board"`
	DateOfBirth string   `json:"dateOfBirth,omitempty"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	ParentEmail string   `json:"parentEmail,omitempty"`
	ParentPhone string   `json:"parentPhone,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// NewOnboardingPayload transforms accumulated wizard data into the wire
// payload for the given user.
func NewOnboardingPayload(userID string, data domain.OnboardingData) OnboardingPayload {
	return OnboardingPayload{
		UserID:      userID,
		UserType:    "STUDENT",
		SchoolID:    data.SchoolID,
		CityID:      data.CityID,
		Grade:       data.Grade,
		Board:       string(data.Board),
		DateOfBirth: data.DateOfBirth,
		PhoneNumber: data.PhoneNumber,
		ParentEmail: data.ParentEmail,
		ParentPhone: data.ParentPhone,
		Interests:   data.Interests,
	}
}

// SchoolResponse is a school lookup result.
type SchoolResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	CityID string `json:"cityId,omitempty"`
}

// ToDomain converts the wire school into the domain model.
func (r *SchoolResponse) ToDomain() domain.School {
	return domain.School{ID: r.ID, Name: r.Name, CityID: r.CityID}
}

// CityResponse is a city lookup result.
type CityResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// ToDomain converts the wire city into the domain model.
func (r *CityResponse) ToDomain() domain.City {
	return domain.City{ID: r.ID, Name: r.Name, State: r.State}
}
