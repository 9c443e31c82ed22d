// Package transport defines the wire DTOs for fingerprint endpoints.
package transport

import "encoding/json"

// CreateFingerprintRequest stores or refreshes a visitor fingerprint.
type CreateFingerprintRequest struct {
	Altcha     string          `json:"altcha" validate:"required"`
	VisitorID  string          `json:"visitorId" validate:"required,max=200"`
	Components json.RawMessage `json:"components" validate:"required"`
}

// CreateReportRequest records one page visit for a known fingerprint.
type CreateReportRequest struct {
	Altcha    string `json:"altcha" validate:"required"`
	VisitorID string `json:"visitorId" validate:"required,max=200"`
	Page      string `json:"page" validate:"required,max=500"`
}

// MessageResponse is the minimal acknowledgement both endpoints return.
type MessageResponse struct {
	Message string `json:"message"`
}
