package usecase

import (
	"fmt"
	"log"

	sendrepo "resurface-backend/internal/send/repository"
	"resurface-backend/pkg/mailer"
)

// Tracker applies verified provider webhook events to the send log.
type Tracker struct {
	records sendrepo.SendRecordRepository
}

func NewTracker(records sendrepo.SendRecordRepository) *Tracker {
	return &Tracker{records: records}
}

// HandleEvent updates open/click timestamps for the referenced send record.
// Events for unknown message ids are acknowledged and dropped: the provider
// may report on mail this deployment never sent (e.g. after a database
// reset), and retrying will not help.
func (t *Tracker) HandleEvent(event *mailer.WebhookEvent) error {
	messageID := event.Data.EmailID
	if messageID == "" {
		return fmt.Errorf("webhook event missing email id")
	}

	record, err := t.records.FindByProviderMessageID(messageID)
	if err != nil {
		return fmt.Errorf("failed to look up send record: %w", err)
	}
	if record == nil {
		log.Printf("[SendTracker] ignoring %s for unknown message %s", event.Type, messageID)
		return nil
	}

	at := event.Data.CreatedAt
	switch event.Type {
	case "email.opened":
		return t.records.MarkOpened(messageID, at)
	case "email.clicked":
		return t.records.MarkClicked(messageID, at)
	default:
		log.Printf("[SendTracker] ignoring unhandled event type %s", event.Type)
		return nil
	}
}
