package dto

import "encoding/json"

// Envelope is the `{success, data, message}` wrapper the backend uses for
// single-object responses.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// ListEnvelope is the `{data[], meta}` wrapper used for paginated lists.
type ListEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta PageMeta        `json:"meta"`
}

// PageMeta defines pagination details for list responses.
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}
