// Package repository provides database access for visitor fingerprints
// and their page-visit reports.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lead_intake_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE for FK constraint errors.
const foreignKeyViolation = "23503"

// Fingerprint is a browser fingerprint keyed by an opaque visitor id.
type Fingerprint struct {
	VisitorID  string
	Components json.RawMessage
	CreatedAt  time.Time
}

// Report records one page visit by a known fingerprint.
type Report struct {
	ID        int32
	VisitorID string
	Page      string
	CreatedAt time.Time
}

// Store is the persistence surface the fingerprints service depends on.
type Store interface {
	UpsertFingerprint(ctx context.Context, visitorID string, components json.RawMessage) (Fingerprint, error)
	CreateReport(ctx context.Context, visitorID, page string) (Report, error)
}

// Repository implements Store on a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new fingerprints repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// UpsertFingerprint stores the fingerprint, replacing the component map
// when the visitor id is already known.
func (r *Repository) UpsertFingerprint(ctx context.Context, visitorID string, components json.RawMessage) (Fingerprint, error) {
	var f Fingerprint
	err := r.pool.QueryRow(ctx, `
		INSERT INTO fingerprints (visitor_id, components)
		VALUES ($1, $2)
		ON CONFLICT (visitor_id) DO UPDATE SET components = EXCLUDED.components
		RETURNING visitor_id, components, created_at
	`, visitorID, components).Scan(&f.VisitorID, &f.Components, &f.CreatedAt)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("upsert fingerprint: %w", err)
	}
	return f, nil
}

// CreateReport inserts a report row. The foreign key to fingerprints
// rejects unknown visitor ids; that surfaces as a not-found failure.
func (r *Repository) CreateReport(ctx context.Context, visitorID, page string) (Report, error) {
	var rep Report
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reports (visitor_id, page)
		VALUES ($1, $2)
		RETURNING id, visitor_id, page, created_at
	`, visitorID, page).Scan(&rep.ID, &rep.VisitorID, &rep.Page, &rep.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return Report{}, apperr.NotFound(fmt.Sprintf("fingerprint %q not found", visitorID))
		}
		return Report{}, fmt.Errorf("insert report: %w", err)
	}
	return rep, nil
}
