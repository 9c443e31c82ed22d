// Package service implements fingerprint and report persistence flows.
package service

import (
	"context"
	"encoding/json"

	"lead_intake_backend/internal/events"
	"lead_intake_backend/internal/fingerprints/repository"
	"lead_intake_backend/platform/apperr"
	"lead_intake_backend/platform/logger"
)

// Service stores visitor fingerprints and their page-visit reports.
type Service struct {
	store repository.Store
	bus   events.Bus
	log   *logger.Logger
}

// New creates the fingerprints service.
func New(store repository.Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// RecordFingerprint upserts the fingerprint for a visitor id.
func (s *Service) RecordFingerprint(ctx context.Context, visitorID string, components json.RawMessage) error {
	if _, err := s.store.UpsertFingerprint(ctx, visitorID, components); err != nil {
		return storeErr(err)
	}

	s.bus.Publish(ctx, events.FingerprintRecorded{
		BaseEvent: events.NewBaseEvent(),
		VisitorID: visitorID,
	})

	s.log.Info("fingerprint recorded", "visitor_id", visitorID)
	return nil
}

// RecordReport stores one page visit. Unknown visitor ids fail with a
// not-found error; fingerprints are never created implicitly here.
func (s *Service) RecordReport(ctx context.Context, visitorID, page string) error {
	if _, err := s.store.CreateReport(ctx, visitorID, page); err != nil {
		return storeErr(err)
	}

	s.log.Info("report recorded", "visitor_id", visitorID, "page", page)
	return nil
}

func storeErr(err error) error {
	if typed, ok := err.(*apperr.Error); ok {
		return typed
	}
	return apperr.Wrap(apperr.KindInternal, "database error", err)
}
