package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"lead_intake_backend/internal/events"
	"lead_intake_backend/internal/fingerprints/repository"
	"lead_intake_backend/platform/apperr"
	platformevents "lead_intake_backend/platform/events"
	"lead_intake_backend/platform/logger"
)

type fakeStore struct {
	fingerprints map[string]repository.Fingerprint
	reports      []repository.Report
}

func newFakeStore() *fakeStore {
	return &fakeStore{fingerprints: map[string]repository.Fingerprint{}}
}

func (s *fakeStore) UpsertFingerprint(_ context.Context, visitorID string, components json.RawMessage) (repository.Fingerprint, error) {
	f, ok := s.fingerprints[visitorID]
	if !ok {
		f = repository.Fingerprint{VisitorID: visitorID, CreatedAt: time.Now()}
	}
	f.Components = components
	s.fingerprints[visitorID] = f
	return f, nil
}

func (s *fakeStore) CreateReport(_ context.Context, visitorID, page string) (repository.Report, error) {
	if _, ok := s.fingerprints[visitorID]; !ok {
		return repository.Report{}, apperr.NotFound(fmt.Sprintf("fingerprint %q not found", visitorID))
	}
	r := repository.Report{
		ID:        int32(len(s.reports) + 1),
		VisitorID: visitorID,
		Page:      page,
		CreatedAt: time.Now(),
	}
	s.reports = append(s.reports, r)
	return r, nil
}

type recordingBus struct {
	published []platformevents.Event
}

func (b *recordingBus) Publish(_ context.Context, event platformevents.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event platformevents.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, platformevents.Handler) {}

func TestRecordFingerprintUpserts(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := New(store, bus, logger.New("development"))

	first := json.RawMessage(`{"canvas":"abc"}`)
	if err := svc.RecordFingerprint(context.Background(), "v-1", first); err != nil {
		t.Fatalf("RecordFingerprint failed: %v", err)
	}

	second := json.RawMessage(`{"canvas":"def"}`)
	if err := svc.RecordFingerprint(context.Background(), "v-1", second); err != nil {
		t.Fatalf("second RecordFingerprint failed: %v", err)
	}

	if len(store.fingerprints) != 1 {
		t.Fatalf("expected 1 fingerprint row, got %d", len(store.fingerprints))
	}
	if string(store.fingerprints["v-1"].Components) != string(second) {
		t.Errorf("components not replaced: got %s", store.fingerprints["v-1"].Components)
	}
	if len(bus.published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(bus.published))
	}
	if _, ok := bus.published[0].(events.FingerprintRecorded); !ok {
		t.Errorf("expected FingerprintRecorded event, got %T", bus.published[0])
	}
}

func TestRecordReportKnownVisitor(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &recordingBus{}, logger.New("development"))

	if err := svc.RecordFingerprint(context.Background(), "v-1", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("RecordFingerprint failed: %v", err)
	}
	if err := svc.RecordReport(context.Background(), "v-1", "/pricing"); err != nil {
		t.Fatalf("RecordReport failed: %v", err)
	}

	if len(store.reports) != 1 || store.reports[0].Page != "/pricing" {
		t.Fatalf("report not stored: %+v", store.reports)
	}
}

func TestRecordReportUnknownVisitor(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &recordingBus{}, logger.New("development"))

	err := svc.RecordReport(context.Background(), "ghost", "/pricing")
	if err == nil {
		t.Fatal("expected unknown visitor to fail")
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
