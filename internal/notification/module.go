// Package notification reacts to domain events by sending emails.
// Domain modules publish events and never know about SMTP or recipients.
package notification

import (
	"context"
	"fmt"
	"strings"

	"lead_intake_backend/internal/email"
	"lead_intake_backend/internal/events"
	"lead_intake_backend/platform/config"
	"lead_intake_backend/platform/logger"
)

const leadSubject = "New Contact Form Submission"

// Module subscribes to lead events and emails a summary to the
// configured recipient. Delivery failures are logged and dropped; a
// broken mailbox must never fail an accepted submission.
type Module struct {
	sender    email.Sender
	recipient string
	log       *logger.Logger
}

// NewModule wires the SMTP sender and subscribes to lead events.
// When email is disabled the module subscribes nothing and stays inert.
func NewModule(cfg config.EmailConfig, bus events.Bus, log *logger.Logger) *Module {
	m := &Module{recipient: cfg.GetMailRecipient(), log: log}

	if !cfg.GetEmailEnabled() {
		log.Info("email notifications disabled")
		return m
	}

	m.sender = email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetMailSender(),
	)

	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(m.handleLeadCreated))
	log.Info("email notifications enabled", "recipient", m.recipient)

	return m
}

func (m *Module) handleLeadCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadCreated)
	if !ok {
		return nil
	}

	body := renderLeadSummary(e)
	if err := m.sender.Send(ctx, m.recipient, leadSubject, body); err != nil {
		m.log.Error("lead notification email failed", "lead_id", e.LeadID, "error", err)
	}
	return nil
}

// renderLeadSummary builds the plain-text body for the notification email.
func renderLeadSummary(e events.LeadCreated) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A new lead was submitted.\n\n")
	fmt.Fprintf(&b, "Contact: %s <%s>\n", e.ContactName, e.ContactEmail)
	fmt.Fprintf(&b, "Company: %s\n", e.CompanyName)
	fmt.Fprintf(&b, "Urgency: %s\n", e.Urgency)
	fmt.Fprintf(&b, "Recommended pack: %s\n", e.RecommendedPack)
	fmt.Fprintf(&b, "Maturity score: %d\n", e.MaturityScore)
	fmt.Fprintf(&b, "Potential score: %d\n", e.PotentialScore)

	if len(e.Positions) > 0 {
		fmt.Fprintf(&b, "Positions: %s\n", strings.Join(e.Positions, ", "))
	}
	if len(e.Concerns) > 0 {
		fmt.Fprintf(&b, "Concerns: %s\n", strings.Join(e.Concerns, ", "))
	}

	return b.String()
}
