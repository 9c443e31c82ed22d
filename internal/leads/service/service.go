// Package service implements the lead intake workflow.
package service

import (
	"context"

	"lead_intake_backend/internal/events"
	"lead_intake_backend/internal/leads/repository"
	"lead_intake_backend/internal/leads/scoring"
	"lead_intake_backend/internal/leads/transport"
	"lead_intake_backend/platform/apperr"
	"lead_intake_backend/platform/logger"
	"lead_intake_backend/platform/phone"
)

// statusNew is the seeded status every freshly submitted lead starts in.
const statusNew = "nouveau"

// Service orchestrates the single-transaction intake workflow: resolve
// every entity the submission references, score it, persist the lead and
// its links, and only then announce the result on the event bus.
type Service struct {
	store repository.Store
	bus   events.Bus
	log   *logger.Logger
}

// New creates the intake service.
func New(store repository.Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// CreateLead runs the full intake transaction for one submission.
// Every step shares one transaction; any failure rolls the whole
// submission back, including reference rows created along the way.
func (s *Service) CreateLead(ctx context.Context, req transport.CreateLeadRequest) (*transport.LeadResponse, error) {
	payload := req.Lead

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	defer tx.Rollback(ctx)

	var normalizedPhone *string
	if payload.Phone != nil {
		p := phone.NormalizeE164(*payload.Phone)
		normalizedPhone = &p
	}

	contact, err := tx.UpsertContact(ctx, repository.ContactParams{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    normalizedPhone,
		JobTitle: payload.JobTitle,
		Conscent: payload.Conscent,
	})
	if err != nil {
		return nil, storeErr(err)
	}

	company, err := tx.UpsertCompany(ctx, repository.CompanyParams{
		Name: payload.CompanyName,
		Size: payload.CompanySize,
	})
	if err != nil {
		return nil, storeErr(err)
	}

	maturity := scoring.Maturity(scoring.MaturityInput{
		CompanySize:    payload.CompanySize,
		EstimatedUsers: payload.EstimatedUsers,
		ConcernCount:   len(payload.Concerns),
		JobTitle:       payload.JobTitle,
	})

	pack, err := tx.RecommendedPackByName(ctx, scoring.RecommendPack(payload.Concerns))
	if err != nil {
		return nil, storeErr(err)
	}

	urgency, err := tx.UrgencyByName(ctx, payload.Urgency)
	if err != nil {
		return nil, storeErr(err)
	}

	status, err := tx.StatusByName(ctx, statusNew)
	if err != nil {
		return nil, storeErr(err)
	}

	lead, err := tx.InsertLead(ctx, repository.LeadParams{
		EstimatedUsers:       payload.EstimatedUsers,
		ProblemSummary:       payload.ProblemSummary,
		ContactID:            contact.ID,
		CompanyID:            company.ID,
		RecommendedPackID:    pack.ID,
		MaturityScore:        maturity,
		UrgencyID:            urgency.ID,
		StatusID:             status.ID,
		FingerprintVisitorID: req.VisitorID,
		AltchaSolution:       req.Altcha,
	})
	if err != nil {
		return nil, storeErr(err)
	}

	// Links are created in submission order. The composite primary key on
	// the link tables rejects a repeated title or label within one payload,
	// which aborts the whole submission as a conflict.
	positions := make([]repository.Position, 0, len(payload.Positions))
	for _, title := range payload.Positions {
		position, err := tx.ResolvePosition(ctx, title)
		if err != nil {
			return nil, storeErr(err)
		}
		if err := tx.LinkPosition(ctx, lead.ID, position.ID); err != nil {
			return nil, storeErr(err)
		}
		positions = append(positions, position)
	}

	concerns := make([]repository.Concern, 0, len(payload.Concerns))
	for _, label := range payload.Concerns {
		concern, err := tx.ResolveConcern(ctx, label)
		if err != nil {
			return nil, storeErr(err)
		}
		if err := tx.LinkConcern(ctx, lead.ID, concern.ID); err != nil {
			return nil, storeErr(err)
		}
		concerns = append(concerns, concern)
	}

	potential := scoring.Potential(company.Size, urgency.Name, contact.JobTitle)

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr(err)
	}

	event := events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		ContactName:     contact.Name,
		ContactEmail:    contact.Email,
		CompanyName:     company.Name,
		Urgency:         urgency.Name,
		RecommendedPack: pack.Name,
		MaturityScore:   maturity,
		PotentialScore:  potential,
		Positions:       payload.Positions,
		Concerns:        payload.Concerns,
	}
	s.bus.Publish(ctx, event)

	s.log.Info("lead created",
		"lead_id", lead.ID,
		"company", company.Name,
		"maturity_score", maturity,
		"potential_score", potential,
		"recommended_pack", pack.Name,
	)

	return buildResponse(lead, contact, company, status, urgency, pack, potential, positions, concerns), nil
}

func buildResponse(
	lead repository.Lead,
	contact repository.Contact,
	company repository.Company,
	status repository.LeadStatus,
	urgency repository.LeadUrgency,
	pack repository.RecommendedPack,
	potential int32,
	positions []repository.Position,
	concerns []repository.Concern,
) *transport.LeadResponse {
	resp := &transport.LeadResponse{
		ID:              lead.ID,
		SubmissionDate:  lead.SubmissionDate,
		Status:          transport.StatusResponse{Name: status.Name},
		Urgency:         transport.UrgencyResponse{Name: urgency.Name},
		RecommendedPack: &transport.RecommendedPackResponse{Name: pack.Name},
		MaturityScore:   lead.MaturityScore,
		PotentialScore:  &potential,
		EstimatedUsers:  lead.EstimatedUsers,
		ProblemSummary:  lead.ProblemSummary,
		Contact: transport.ContactResponse{
			ID:        contact.ID,
			Name:      contact.Name,
			Email:     contact.Email,
			Phone:     contact.Phone,
			JobTitle:  contact.JobTitle,
			CreatedAt: contact.CreatedAt,
			UpdatedAt: contact.UpdatedAt,
		},
		Company: transport.CompanyResponse{
			Name: company.Name,
			Size: company.Size,
		},
		Positions: make([]transport.PositionResponse, 0, len(positions)),
		Concerns:  make([]transport.ConcernResponse, 0, len(concerns)),
	}

	for _, p := range positions {
		resp.Positions = append(resp.Positions, transport.PositionResponse{Title: p.Title})
	}
	for _, c := range concerns {
		resp.Concerns = append(resp.Concerns, transport.ConcernResponse{Label: c.Label})
	}

	return resp
}

// storeErr passes typed domain errors through untouched and wraps raw
// driver failures as internal database errors.
func storeErr(err error) error {
	if typed, ok := err.(*apperr.Error); ok {
		return typed
	}
	return apperr.Wrap(apperr.KindInternal, "database error", err)
}
