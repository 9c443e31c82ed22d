package repository

import (
	"context"
	"errors"
	"fmt"

	"lead_intake_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// Repository provides transactional database access for the intake workflow.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Begin opens a new intake transaction.
func (r *Repository) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin intake transaction: %w", err)
	}
	return &leadTx{tx: tx}, nil
}

// Compile-time check that Repository implements Store.
var _ Store = (*Repository)(nil)

type leadTx struct {
	tx pgx.Tx
}

func (t *leadTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *leadTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// upsertByKey is the shared resolve-or-create primitive behind all four
// natural-key resolvers. find reports whether the row exists, update
// rewrites the mutable fields of an existing row (nil for immutable
// reference data), and insert creates the row on first sighting.
func upsertByKey[T any](
	ctx context.Context,
	find func(ctx context.Context) (T, bool, error),
	update func(ctx context.Context, existing T) (T, error),
	insert func(ctx context.Context) (T, error),
) (T, error) {
	existing, found, err := find(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if found {
		if update == nil {
			return existing, nil
		}
		return update(ctx, existing)
	}
	return insert(ctx)
}

// classify maps driver errors to typed domain errors. Unique-constraint
// violations become conflicts; everything else stays a raw storage error
// for the service layer to wrap.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Wrap(apperr.KindConflict, "duplicate natural key", err)
	}
	return err
}

func (t *leadTx) UpsertContact(ctx context.Context, params ContactParams) (Contact, error) {
	return upsertByKey(ctx,
		func(ctx context.Context) (Contact, bool, error) {
			var c Contact
			err := t.tx.QueryRow(ctx, `
				SELECT id, name, email, phone, job_title, conscent, created_at, updated_at
				FROM contacts WHERE email = $1
			`, params.Email).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.JobTitle, &c.Conscent, &c.CreatedAt, &c.UpdatedAt)
			if errors.Is(err, pgx.ErrNoRows) {
				return Contact{}, false, nil
			}
			return c, err == nil, err
		},
		func(ctx context.Context, existing Contact) (Contact, error) {
			var c Contact
			err := t.tx.QueryRow(ctx, `
				UPDATE contacts SET name = $1, phone = $2, job_title = $3, conscent = $4, updated_at = now()
				WHERE id = $5
				RETURNING id, name, email, phone, job_title, conscent, created_at, updated_at
			`, params.Name, params.Phone, params.JobTitle, params.Conscent, existing.ID).Scan(
				&c.ID, &c.Name, &c.Email, &c.Phone, &c.JobTitle, &c.Conscent, &c.CreatedAt, &c.UpdatedAt,
			)
			if err != nil {
				return Contact{}, fmt.Errorf("update contact: %w", err)
			}
			return c, nil
		},
		func(ctx context.Context) (Contact, error) {
			var c Contact
			err := t.tx.QueryRow(ctx, `
				INSERT INTO contacts (name, email, phone, job_title, conscent)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id, name, email, phone, job_title, conscent, created_at, updated_at
			`, params.Name, params.Email, params.Phone, params.JobTitle, params.Conscent).Scan(
				&c.ID, &c.Name, &c.Email, &c.Phone, &c.JobTitle, &c.Conscent, &c.CreatedAt, &c.UpdatedAt,
			)
			if err != nil {
				return Contact{}, classify(fmt.Errorf("insert contact: %w", err))
			}
			return c, nil
		})
}

func (t *leadTx) UpsertCompany(ctx context.Context, params CompanyParams) (Company, error) {
	return upsertByKey(ctx,
		func(ctx context.Context) (Company, bool, error) {
			var c Company
			err := t.tx.QueryRow(ctx, `
				SELECT id, name, size FROM companies WHERE name = $1
			`, params.Name).Scan(&c.ID, &c.Name, &c.Size)
			if errors.Is(err, pgx.ErrNoRows) {
				return Company{}, false, nil
			}
			return c, err == nil, err
		},
		func(ctx context.Context, existing Company) (Company, error) {
			var c Company
			err := t.tx.QueryRow(ctx, `
				UPDATE companies SET size = $1 WHERE id = $2
				RETURNING id, name, size
			`, params.Size, existing.ID).Scan(&c.ID, &c.Name, &c.Size)
			if err != nil {
				return Company{}, fmt.Errorf("update company: %w", err)
			}
			return c, nil
		},
		func(ctx context.Context) (Company, error) {
			var c Company
			err := t.tx.QueryRow(ctx, `
				INSERT INTO companies (name, size) VALUES ($1, $2)
				RETURNING id, name, size
			`, params.Name, params.Size).Scan(&c.ID, &c.Name, &c.Size)
			if err != nil {
				return Company{}, classify(fmt.Errorf("insert company: %w", err))
			}
			return c, nil
		})
}

func (t *leadTx) StatusByName(ctx context.Context, name string) (LeadStatus, error) {
	var s LeadStatus
	err := t.tx.QueryRow(ctx, `SELECT id, name FROM lead_statuses WHERE name = $1`, name).Scan(&s.ID, &s.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadStatus{}, apperr.NotFound(fmt.Sprintf("lead status %q not found", name))
	}
	if err != nil {
		return LeadStatus{}, fmt.Errorf("lookup status: %w", err)
	}
	return s, nil
}

func (t *leadTx) UrgencyByName(ctx context.Context, name string) (LeadUrgency, error) {
	var u LeadUrgency
	err := t.tx.QueryRow(ctx, `SELECT id, name FROM lead_urgencies WHERE name = $1`, name).Scan(&u.ID, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadUrgency{}, apperr.NotFound(fmt.Sprintf("lead urgency %q not found", name))
	}
	if err != nil {
		return LeadUrgency{}, fmt.Errorf("lookup urgency: %w", err)
	}
	return u, nil
}

func (t *leadTx) RecommendedPackByName(ctx context.Context, name string) (RecommendedPack, error) {
	var p RecommendedPack
	err := t.tx.QueryRow(ctx, `SELECT id, name FROM recommended_packs WHERE name = $1`, name).Scan(&p.ID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return RecommendedPack{}, apperr.NotFound(fmt.Sprintf("recommended pack %q not found", name))
	}
	if err != nil {
		return RecommendedPack{}, fmt.Errorf("lookup recommended pack: %w", err)
	}
	return p, nil
}

func (t *leadTx) InsertLead(ctx context.Context, params LeadParams) (Lead, error) {
	var l Lead
	err := t.tx.QueryRow(ctx, `
		INSERT INTO leads (
			estimated_users, problem_summary, contact_id, company_id,
			recommended_pack_id, maturity_score, urgency_id, status_id,
			fingerprint_visitor_id, altcha_solution
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, submission_date, estimated_users, problem_summary, contact_id, company_id,
			recommended_pack_id, maturity_score, urgency_id, status_id,
			fingerprint_visitor_id, altcha_solution, created_at, updated_at
	`,
		params.EstimatedUsers, params.ProblemSummary, params.ContactID, params.CompanyID,
		params.RecommendedPackID, params.MaturityScore, params.UrgencyID, params.StatusID,
		params.FingerprintVisitorID, params.AltchaSolution,
	).Scan(
		&l.ID, &l.SubmissionDate, &l.EstimatedUsers, &l.ProblemSummary, &l.ContactID, &l.CompanyID,
		&l.RecommendedPackID, &l.MaturityScore, &l.UrgencyID, &l.StatusID,
		&l.FingerprintVisitorID, &l.AltchaSolution, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return Lead{}, classify(fmt.Errorf("insert lead: %w", err))
	}
	return l, nil
}

func (t *leadTx) ResolvePosition(ctx context.Context, title string) (Position, error) {
	return upsertByKey(ctx,
		func(ctx context.Context) (Position, bool, error) {
			var p Position
			err := t.tx.QueryRow(ctx, `SELECT id, title FROM positions WHERE title = $1`, title).Scan(&p.ID, &p.Title)
			if errors.Is(err, pgx.ErrNoRows) {
				return Position{}, false, nil
			}
			return p, err == nil, err
		},
		nil, // positions are immutable reference data
		func(ctx context.Context) (Position, error) {
			var p Position
			err := t.tx.QueryRow(ctx, `
				INSERT INTO positions (title) VALUES ($1) RETURNING id, title
			`, title).Scan(&p.ID, &p.Title)
			if err != nil {
				return Position{}, classify(fmt.Errorf("insert position: %w", err))
			}
			return p, nil
		})
}

func (t *leadTx) ResolveConcern(ctx context.Context, label string) (Concern, error) {
	return upsertByKey(ctx,
		func(ctx context.Context) (Concern, bool, error) {
			var c Concern
			err := t.tx.QueryRow(ctx, `SELECT id, label FROM concerns WHERE label = $1`, label).Scan(&c.ID, &c.Label)
			if errors.Is(err, pgx.ErrNoRows) {
				return Concern{}, false, nil
			}
			return c, err == nil, err
		},
		nil, // concerns are immutable reference data
		func(ctx context.Context) (Concern, error) {
			var c Concern
			err := t.tx.QueryRow(ctx, `
				INSERT INTO concerns (label) VALUES ($1) RETURNING id, label
			`, label).Scan(&c.ID, &c.Label)
			if err != nil {
				return Concern{}, classify(fmt.Errorf("insert concern: %w", err))
			}
			return c, nil
		})
}

func (t *leadTx) LinkPosition(ctx context.Context, leadID, positionID int32) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO lead_positions (lead_id, position_id) VALUES ($1, $2)
	`, leadID, positionID)
	if err != nil {
		return classify(fmt.Errorf("link position: %w", err))
	}
	return nil
}

func (t *leadTx) LinkConcern(ctx context.Context, leadID, concernID int32) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO lead_concerns (lead_id, concern_id) VALUES ($1, $2)
	`, leadID, concernID)
	if err != nil {
		return classify(fmt.Errorf("link concern: %w", err))
	}
	return nil
}
