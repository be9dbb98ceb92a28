// Package notify holds the outbound side-effect contracts: confirmation and
// dossier email, and CRM lead sync. All of them are fire-and-forget from the
// orchestration core's perspective: their failure must never fail a booking.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/brightpath-advisory/concierge/internal/scheduling"
)

// Mailer sends transactional email.
type Mailer interface {
	// SendConfirmation mails the customer their booking details and links.
	SendConfirmation(ctx context.Context, booking *scheduling.Booking, links scheduling.Links) error

	// SendInternalDossier mails the owner a lead summary with its score.
	SendInternalDossier(ctx context.Context, booking *scheduling.Booking, leadScore int) error
}

// CRM syncs lead records.
type CRM interface {
	UpsertLead(ctx context.Context, contact scheduling.Contact, leadScore int) error
}

// Dispatch runs fn detached from the caller. Panics and errors are caught
// and logged here so a misbehaving notifier cannot surface into the request
// path.
func Dispatch(name string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("task", name).Any("panic", r).Msg("notify: detached task panicked")
			}
		}()
		if err := fn(); err != nil {
			log.Warn().Str("task", name).Err(err).Msg("notify: detached task failed")
		}
	}()
}

// LogMailer is the default Mailer: it records the intent and sends nothing.
// Real deployments swap in an SMTP or API-backed sender.
type LogMailer struct{}

func (LogMailer) SendConfirmation(_ context.Context, b *scheduling.Booking, _ scheduling.Links) error {
	log.Info().Str("booking_id", b.ID).Str("to", b.Contact.Email).Msg("notify: confirmation email (log only)")
	return nil
}

func (LogMailer) SendInternalDossier(_ context.Context, b *scheduling.Booking, leadScore int) error {
	log.Info().Str("booking_id", b.ID).Int("lead_score", leadScore).Msg("notify: internal dossier (log only)")
	return nil
}

// LogCRM is the default CRM sink.
type LogCRM struct{}

func (LogCRM) UpsertLead(_ context.Context, contact scheduling.Contact, leadScore int) error {
	log.Info().Str("email", contact.Email).Int("lead_score", leadScore).Msg("notify: crm upsert (log only)")
	return nil
}
