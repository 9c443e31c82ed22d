package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lead_intake_backend/internal/events"
	"lead_intake_backend/internal/leads/repository"
	"lead_intake_backend/internal/leads/transport"
	"lead_intake_backend/platform/apperr"
	platformevents "lead_intake_backend/platform/events"
	"lead_intake_backend/platform/logger"
)

// fakeStore is an in-memory repository.Store with transactional
// semantics: every Tx works on a copy and Commit swaps it in, so a
// rolled back submission leaves no trace.
type fakeStore struct {
	data storeData
}

type link struct {
	leadID   int32
	entityID int32
}

type storeData struct {
	contacts      map[string]repository.Contact
	companies     map[string]repository.Company
	positions     map[string]repository.Position
	concerns      map[string]repository.Concern
	statuses      map[string]repository.LeadStatus
	urgencies     map[string]repository.LeadUrgency
	packs         map[string]repository.RecommendedPack
	leads         []repository.Lead
	positionLinks map[link]bool
	concernLinks  map[link]bool
	nextID        int32
}

func newFakeStore() *fakeStore {
	data := storeData{
		contacts:      map[string]repository.Contact{},
		companies:     map[string]repository.Company{},
		positions:     map[string]repository.Position{},
		concerns:      map[string]repository.Concern{},
		statuses:      map[string]repository.LeadStatus{},
		urgencies:     map[string]repository.LeadUrgency{},
		packs:         map[string]repository.RecommendedPack{},
		positionLinks: map[link]bool{},
		concernLinks:  map[link]bool{},
		nextID:        1,
	}

	for _, name := range []string{"nouveau", "à rappeler", "relancé", "proposition envoyée", "gagné", "perdu"} {
		data.statuses[name] = repository.LeadStatus{ID: data.nextID, Name: name}
		data.nextID++
	}
	for _, name := range []string{"immédiat", "ce mois", "moyen terme"} {
		data.urgencies[name] = repository.LeadUrgency{ID: data.nextID, Name: name}
		data.nextID++
	}
	for _, name := range []string{"conformité", "confiance", "croissance"} {
		data.packs[name] = repository.RecommendedPack{ID: data.nextID, Name: name}
		data.nextID++
	}

	return &fakeStore{data: data}
}

func (s *fakeStore) Begin(ctx context.Context) (repository.Tx, error) {
	return &fakeTx{store: s, data: s.data.clone()}, nil
}

func (d storeData) clone() storeData {
	out := storeData{
		contacts:      make(map[string]repository.Contact, len(d.contacts)),
		companies:     make(map[string]repository.Company, len(d.companies)),
		positions:     make(map[string]repository.Position, len(d.positions)),
		concerns:      make(map[string]repository.Concern, len(d.concerns)),
		statuses:      make(map[string]repository.LeadStatus, len(d.statuses)),
		urgencies:     make(map[string]repository.LeadUrgency, len(d.urgencies)),
		packs:         make(map[string]repository.RecommendedPack, len(d.packs)),
		leads:         append([]repository.Lead(nil), d.leads...),
		positionLinks: make(map[link]bool, len(d.positionLinks)),
		concernLinks:  make(map[link]bool, len(d.concernLinks)),
		nextID:        d.nextID,
	}
	for k, v := range d.contacts {
		out.contacts[k] = v
	}
	for k, v := range d.companies {
		out.companies[k] = v
	}
	for k, v := range d.positions {
		out.positions[k] = v
	}
	for k, v := range d.concerns {
		out.concerns[k] = v
	}
	for k, v := range d.statuses {
		out.statuses[k] = v
	}
	for k, v := range d.urgencies {
		out.urgencies[k] = v
	}
	for k, v := range d.packs {
		out.packs[k] = v
	}
	for k, v := range d.positionLinks {
		out.positionLinks[k] = v
	}
	for k, v := range d.concernLinks {
		out.concernLinks[k] = v
	}
	return out
}

type fakeTx struct {
	store *fakeStore
	data  storeData
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.store.data = t.data
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

func (t *fakeTx) UpsertContact(ctx context.Context, params repository.ContactParams) (repository.Contact, error) {
	now := time.Now()
	if existing, ok := t.data.contacts[params.Email]; ok {
		existing.Name = params.Name
		existing.Phone = params.Phone
		existing.JobTitle = params.JobTitle
		existing.Conscent = params.Conscent
		existing.UpdatedAt = now
		t.data.contacts[params.Email] = existing
		return existing, nil
	}
	c := repository.Contact{
		ID:        t.nextID(),
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		JobTitle:  params.JobTitle,
		Conscent:  params.Conscent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.data.contacts[params.Email] = c
	return c, nil
}

func (t *fakeTx) UpsertCompany(ctx context.Context, params repository.CompanyParams) (repository.Company, error) {
	if existing, ok := t.data.companies[params.Name]; ok {
		existing.Size = params.Size
		t.data.companies[params.Name] = existing
		return existing, nil
	}
	c := repository.Company{ID: t.nextID(), Name: params.Name, Size: params.Size}
	t.data.companies[params.Name] = c
	return c, nil
}

func (t *fakeTx) StatusByName(ctx context.Context, name string) (repository.LeadStatus, error) {
	s, ok := t.data.statuses[name]
	if !ok {
		return repository.LeadStatus{}, apperr.NotFound(fmt.Sprintf("lead status %q not found", name))
	}
	return s, nil
}

func (t *fakeTx) UrgencyByName(ctx context.Context, name string) (repository.LeadUrgency, error) {
	u, ok := t.data.urgencies[name]
	if !ok {
		return repository.LeadUrgency{}, apperr.NotFound(fmt.Sprintf("lead urgency %q not found", name))
	}
	return u, nil
}

func (t *fakeTx) RecommendedPackByName(ctx context.Context, name string) (repository.RecommendedPack, error) {
	p, ok := t.data.packs[name]
	if !ok {
		return repository.RecommendedPack{}, apperr.NotFound(fmt.Sprintf("recommended pack %q not found", name))
	}
	return p, nil
}

func (t *fakeTx) InsertLead(ctx context.Context, params repository.LeadParams) (repository.Lead, error) {
	maturity := params.MaturityScore
	packID := params.RecommendedPackID
	urgencyID := params.UrgencyID
	now := time.Now()
	l := repository.Lead{
		ID:                   t.nextID(),
		SubmissionDate:       now,
		EstimatedUsers:       params.EstimatedUsers,
		ProblemSummary:       params.ProblemSummary,
		ContactID:            params.ContactID,
		CompanyID:            params.CompanyID,
		RecommendedPackID:    &packID,
		MaturityScore:        &maturity,
		UrgencyID:            &urgencyID,
		StatusID:             params.StatusID,
		FingerprintVisitorID: params.FingerprintVisitorID,
		AltchaSolution:       &params.AltchaSolution,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	t.data.leads = append(t.data.leads, l)
	return l, nil
}

func (t *fakeTx) ResolvePosition(ctx context.Context, title string) (repository.Position, error) {
	if p, ok := t.data.positions[title]; ok {
		return p, nil
	}
	p := repository.Position{ID: t.nextID(), Title: title}
	t.data.positions[title] = p
	return p, nil
}

func (t *fakeTx) ResolveConcern(ctx context.Context, label string) (repository.Concern, error) {
	if c, ok := t.data.concerns[label]; ok {
		return c, nil
	}
	c := repository.Concern{ID: t.nextID(), Label: label}
	t.data.concerns[label] = c
	return c, nil
}

func (t *fakeTx) LinkPosition(ctx context.Context, leadID, positionID int32) error {
	k := link{leadID, positionID}
	if t.data.positionLinks[k] {
		return apperr.Conflict("duplicate natural key")
	}
	t.data.positionLinks[k] = true
	return nil
}

func (t *fakeTx) LinkConcern(ctx context.Context, leadID, concernID int32) error {
	k := link{leadID, concernID}
	if t.data.concernLinks[k] {
		return apperr.Conflict("duplicate natural key")
	}
	t.data.concernLinks[k] = true
	return nil
}

func (t *fakeTx) nextID() int32 {
	id := t.data.nextID
	t.data.nextID++
	return id
}

// recordingBus captures synchronously what the service publishes.
type recordingBus struct {
	published []platformevents.Event
}

func (b *recordingBus) Publish(ctx context.Context, event platformevents.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event platformevents.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(eventName string, handler platformevents.Handler) {}

func newTestService(store *fakeStore) (*Service, *recordingBus) {
	bus := &recordingBus{}
	return New(store, bus, logger.New("development")), bus
}

func int32Ptr(v int32) *int32 { return &v }

func strPtr(v string) *string { return &v }

func sampleRequest() transport.CreateLeadRequest {
	return transport.CreateLeadRequest{
		Lead: transport.LeadPayload{
			Name:           "Test User",
			Email:          "test.user@example.com",
			CompanyName:    "Test Inc.",
			CompanySize:    int32Ptr(50),
			Positions:      []string{"Developer", "Manager"},
			Concerns:       []string{"confiance", "sécurité"},
			EstimatedUsers: int32Ptr(100),
			Urgency:        "ce mois",
			Conscent:       true,
		},
		Altcha: "solved-challenge",
	}
}

func TestCreateLead(t *testing.T) {
	store := newFakeStore()
	svc, bus := newTestService(store)

	resp, err := svc.CreateLead(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("CreateLead failed: %v", err)
	}

	if resp.Contact.Name != "Test User" {
		t.Errorf("contact name: got %q", resp.Contact.Name)
	}
	if resp.Company.Name != "Test Inc." {
		t.Errorf("company name: got %q", resp.Company.Name)
	}
	if resp.Status.Name != "nouveau" {
		t.Errorf("status: got %q", resp.Status.Name)
	}
	if resp.Urgency.Name != "ce mois" {
		t.Errorf("urgency: got %q", resp.Urgency.Name)
	}
	if resp.RecommendedPack == nil || resp.RecommendedPack.Name != "confiance" {
		t.Errorf("recommended pack: got %+v", resp.RecommendedPack)
	}
	// Size 50 is not over 100; estimated users 100 is over 50; two
	// concerns and no senior title add nothing. One point total.
	if resp.MaturityScore == nil || *resp.MaturityScore != 1 {
		t.Errorf("maturity score: got %v", resp.MaturityScore)
	}
	// Potential: company present but small (+1), urgency "ce mois" (+2).
	if resp.PotentialScore == nil || *resp.PotentialScore != 3 {
		t.Errorf("potential score: got %v", resp.PotentialScore)
	}
	if len(resp.Positions) != 2 || resp.Positions[0].Title != "Developer" || resp.Positions[1].Title != "Manager" {
		t.Errorf("positions: got %+v", resp.Positions)
	}
	if len(resp.Concerns) != 2 || resp.Concerns[0].Label != "confiance" {
		t.Errorf("concerns: got %+v", resp.Concerns)
	}

	if len(store.data.leads) != 1 {
		t.Fatalf("expected 1 persisted lead, got %d", len(store.data.leads))
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(bus.published))
	}
	event, ok := bus.published[0].(events.LeadCreated)
	if !ok {
		t.Fatalf("expected LeadCreated event, got %T", bus.published[0])
	}
	if event.CompanyName != "Test Inc." || event.PotentialScore != 3 {
		t.Errorf("event payload: %+v", event)
	}
}

func TestCreateLeadResubmissionReusesContactAndCompany(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	if _, err := svc.CreateLead(context.Background(), sampleRequest()); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	second := sampleRequest()
	second.Lead.Name = "Renamed User"
	second.Lead.JobTitle = strPtr("CTO")
	if _, err := svc.CreateLead(context.Background(), second); err != nil {
		t.Fatalf("second submission failed: %v", err)
	}

	if len(store.data.contacts) != 1 {
		t.Fatalf("expected 1 contact after resubmission, got %d", len(store.data.contacts))
	}
	contact := store.data.contacts["test.user@example.com"]
	if contact.Name != "Renamed User" {
		t.Errorf("contact name not overwritten: got %q", contact.Name)
	}
	if contact.JobTitle == nil || *contact.JobTitle != "CTO" {
		t.Errorf("job title not overwritten: got %v", contact.JobTitle)
	}
	if len(store.data.companies) != 1 {
		t.Errorf("expected 1 company, got %d", len(store.data.companies))
	}
	if len(store.data.leads) != 2 {
		t.Errorf("expected 2 leads, got %d", len(store.data.leads))
	}
}

func TestCreateLeadDuplicatePositionRollsBack(t *testing.T) {
	store := newFakeStore()
	svc, bus := newTestService(store)

	req := sampleRequest()
	req.Lead.Positions = []string{"Developer", "Developer"}

	_, err := svc.CreateLead(context.Background(), req)
	if err == nil {
		t.Fatal("expected duplicate position to fail the submission")
	}
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Nothing committed, nothing announced.
	if len(store.data.leads) != 0 {
		t.Errorf("expected no persisted leads, got %d", len(store.data.leads))
	}
	if len(store.data.contacts) != 0 {
		t.Errorf("expected no persisted contacts, got %d", len(store.data.contacts))
	}
	if len(bus.published) != 0 {
		t.Errorf("expected no events, got %d", len(bus.published))
	}
}

func TestCreateLeadUnknownUrgency(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	req := sampleRequest()
	req.Lead.Urgency = "hier"

	_, err := svc.CreateLead(context.Background(), req)
	if err == nil {
		t.Fatal("expected unknown urgency to fail the submission")
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(store.data.leads) != 0 {
		t.Errorf("expected no persisted leads, got %d", len(store.data.leads))
	}
}

func TestCreateLeadNormalizesPhone(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	req := sampleRequest()
	req.Lead.Phone = strPtr("06 12 34 56 78")

	resp, err := svc.CreateLead(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateLead failed: %v", err)
	}
	if resp.Contact.Phone == nil || *resp.Contact.Phone != "+33612345678" {
		t.Errorf("phone not normalized: got %v", resp.Contact.Phone)
	}
}

func TestCreateLeadReusesReferenceRows(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	first := sampleRequest()
	if _, err := svc.CreateLead(context.Background(), first); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	second := sampleRequest()
	second.Lead.Email = "other@example.com"
	second.Lead.CompanyName = "Other SARL"
	if _, err := svc.CreateLead(context.Background(), second); err != nil {
		t.Fatalf("second submission failed: %v", err)
	}

	// Positions and concerns are shared reference rows.
	if len(store.data.positions) != 2 {
		t.Errorf("expected 2 position rows, got %d", len(store.data.positions))
	}
	if len(store.data.concerns) != 2 {
		t.Errorf("expected 2 concern rows, got %d", len(store.data.concerns))
	}
	if len(store.data.positionLinks) != 4 {
		t.Errorf("expected 4 position links, got %d", len(store.data.positionLinks))
	}
}
