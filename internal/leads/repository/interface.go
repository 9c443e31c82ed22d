package repository

import (
	"context"
	"time"
)

// Contact is a person who submitted at least one lead, keyed by email.
type Contact struct {
	ID        int32
	Name      string
	Email     string
	Phone     *string
	JobTitle  *string
	Conscent  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Company is an organization a lead belongs to, keyed by name.
type Company struct {
	ID   int32
	Name string
	Size *int32
}

// Position is an immutable reference row shared across leads.
type Position struct {
	ID    int32
	Title string
}

// Concern is an immutable reference row shared across leads.
type Concern struct {
	ID    int32
	Label string
}

// LeadStatus, LeadUrgency and RecommendedPack are pre-seeded reference
// tables; the intake workflow only ever reads them.
type LeadStatus struct {
	ID   int32
	Name string
}

type LeadUrgency struct {
	ID   int32
	Name string
}

type RecommendedPack struct {
	ID   int32
	Name string
}

// Lead is the aggregate row created by the intake transaction.
type Lead struct {
	ID                   int32
	SubmissionDate       time.Time
	EstimatedUsers       *int32
	ProblemSummary       *string
	ContactID            int32
	CompanyID            int32
	RecommendedPackID    *int32
	MaturityScore        *int32
	UrgencyID            *int32
	StatusID             int32
	FingerprintVisitorID *string
	AltchaSolution       *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ContactParams carries the mutable contact fields resolved by email.
type ContactParams struct {
	Name     string
	Email    string
	Phone    *string
	JobTitle *string
	Conscent bool
}

// CompanyParams carries the mutable company fields resolved by name.
type CompanyParams struct {
	Name string
	Size *int32
}

// LeadParams carries everything needed to insert the aggregate row.
type LeadParams struct {
	EstimatedUsers       *int32
	ProblemSummary       *string
	ContactID            int32
	CompanyID            int32
	RecommendedPackID    int32
	MaturityScore        int32
	UrgencyID            int32
	StatusID             int32
	FingerprintVisitorID *string
	AltchaSolution       string
}

// Store opens intake transactions. The service layer never touches the
// pool directly; it receives a transaction capability per call.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the set of operations the intake workflow performs inside one
// atomic transaction. Rollback after Commit is a no-op, so callers can
// keep the usual defer tx.Rollback(ctx) pattern.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// UpsertContact resolves a contact by email: existing rows get their
	// name/phone/job title overwritten, missing rows are inserted.
	UpsertContact(ctx context.Context, params ContactParams) (Contact, error)

	// UpsertCompany resolves a company by name; only size is mutable.
	UpsertCompany(ctx context.Context, params CompanyParams) (Company, error)

	// Reference lookups. A missing row is a not-found failure; reference
	// tables are seeded by migrations and never created implicitly.
	StatusByName(ctx context.Context, name string) (LeadStatus, error)
	UrgencyByName(ctx context.Context, name string) (LeadUrgency, error)
	RecommendedPackByName(ctx context.Context, name string) (RecommendedPack, error)

	// InsertLead creates the aggregate row and returns it with its
	// generated id and submission timestamp.
	InsertLead(ctx context.Context, params LeadParams) (Lead, error)

	// ResolvePosition and ResolveConcern look up by exact natural key and
	// create the row when absent; existing rows are never mutated.
	ResolvePosition(ctx context.Context, title string) (Position, error)
	ResolveConcern(ctx context.Context, label string) (Concern, error)

	LinkPosition(ctx context.Context, leadID, positionID int32) error
	LinkConcern(ctx context.Context, leadID, concernID int32) error
}
