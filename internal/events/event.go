// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"lead_intake_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published after a lead intake transaction commits.
type LeadCreated struct {
	BaseEvent
	LeadID          int32    `json:"leadId"`
	ContactName     string   `json:"contactName"`
	ContactEmail    string   `json:"contactEmail"`
	CompanyName     string   `json:"companyName"`
	Urgency         string   `json:"urgency"`
	RecommendedPack string   `json:"recommendedPack"`
	MaturityScore   int32    `json:"maturityScore"`
	PotentialScore  int32    `json:"potentialScore"`
	Positions       []string `json:"positions"`
	Concerns        []string `json:"concerns"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// FingerprintRecorded is published when a visitor fingerprint is stored.
type FingerprintRecorded struct {
	BaseEvent
	VisitorID string `json:"visitorId"`
}

func (e FingerprintRecorded) EventName() string { return "fingerprints.recorded" }
