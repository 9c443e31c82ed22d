// Package transport defines the wire DTOs for the lead intake endpoint.
package transport

import "time"

// LeadPayload is the submitted form content. The "conscent" key spelling
// is part of the public contract consumed by the existing frontend.
type LeadPayload struct {
	Name           string   `json:"name" validate:"required,min=1,max=200"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	JobTitle       *string  `json:"job_title,omitempty" validate:"omitempty,max=200"`
	CompanyName    string   `json:"company_name" validate:"required,min=1,max=200"`
	CompanySize    *int32   `json:"company_size,omitempty" validate:"omitempty,min=0"`
	Positions      []string `json:"positions" validate:"dive,min=1,max=200"`
	Concerns       []string `json:"concerns" validate:"dive,min=1,max=200"`
	ProblemSummary *string  `json:"problem_summary,omitempty" validate:"omitempty,max=5000"`
	EstimatedUsers *int32   `json:"estimated_users,omitempty" validate:"omitempty,min=0"`
	Urgency        string   `json:"urgency" validate:"required,max=100"`
	Conscent       bool     `json:"conscent" validate:"eq=true"`
}

// CreateLeadRequest is the envelope around the payload: an ALTCHA
// challenge solution plus an optional browser fingerprint reference.
type CreateLeadRequest struct {
	Lead      LeadPayload `json:"lead" validate:"required"`
	Altcha    string      `json:"altcha" validate:"required"`
	VisitorID *string     `json:"visitorId,omitempty" validate:"omitempty,max=200"`
}

// Response DTOs

type ContactResponse struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	JobTitle  *string   `json:"job_title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CompanyResponse struct {
	Name string `json:"name"`
	Size *int32 `json:"size"`
}

type PositionResponse struct {
	Title string `json:"title"`
}

type ConcernResponse struct {
	Label string `json:"label"`
}

type StatusResponse struct {
	Name string `json:"name"`
}

type UrgencyResponse struct {
	Name string `json:"name"`
}

type RecommendedPackResponse struct {
	Name string `json:"name"`
}

// LeadResponse is the created aggregate with its resolved relations.
// The potential score is derived at intake time and never persisted.
type LeadResponse struct {
	ID              int32                    `json:"id"`
	SubmissionDate  time.Time                `json:"submission_date"`
	Status          StatusResponse           `json:"status"`
	Urgency         UrgencyResponse          `json:"urgency"`
	RecommendedPack *RecommendedPackResponse `json:"recommended_pack"`
	MaturityScore   *int32                   `json:"maturity_score"`
	PotentialScore  *int32                   `json:"potential_score"`
	EstimatedUsers  *int32                   `json:"estimated_users"`
	ProblemSummary  *string                  `json:"problem_summary"`
	Contact         ContactResponse          `json:"contact"`
	Company         CompanyResponse          `json:"company"`
	Positions       []PositionResponse       `json:"positions"`
	Concerns        []ConcernResponse        `json:"concerns"`
}
