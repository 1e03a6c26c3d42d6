package client

import (
	"context"
	"net/http"
	"net/url"

	"studypath/internal/domain"
	"studypath/internal/dto"
)

// SubmitOnboarding sends the completed onboarding payload.
func (c *Client) SubmitOnboarding(ctx context.Context, payload dto.OnboardingPayload) error {
	_, err := c.do(ctx, http.MethodPost, "/user-profiles/onboarding", nil, payload, nil, true)
	return err
}

// SearchSchools looks up schools matching the query, for autocomplete.
func (c *Client) SearchSchools(ctx context.Context, query string) ([]domain.School, error) {
	q := url.Values{}
	q.Set("q", query)
	var resp []dto.SchoolResponse
	if _, err := c.do(ctx, http.MethodGet, "/schools", q, nil, &resp, true); err != nil {
		return nil, err
	}
	schools := make([]domain.School, 0, len(resp))
	for i := range resp {
		schools = append(schools, resp[i].ToDomain())
	}
	return schools, nil
}

// SearchLocations looks up cities matching the query, for autocomplete.
func (c *Client) SearchLocations(ctx context.Context, query string) ([]domain.City, error) {
	q := url.Values{}
	q.Set("q", query)
	var resp []dto.CityResponse
	if _, err := c.do(ctx, http.MethodGet, "/locations/search", q, nil, &resp, true); err != nil {
		return nil, err
	}
	cities := make([]domain.City, 0, len(resp))
	for i := range resp {
		cities = append(cities, resp[i].ToDomain())
	}
	return cities, nil
}

// Cities fetches the full city list.
func (c *Client) Cities(ctx context.Context) ([]domain.City, error) {
	var resp []dto.CityResponse
	if _, err := c.do(ctx, http.MethodGet, "/locations/cities", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	cities := make([]domain.City, 0, len(resp))
	for i := range resp {
		cities = append(cities, resp[i].ToDomain())
	}
	return cities, nil
}
