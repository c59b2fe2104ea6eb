package usecase

import (
	"testing"
	"time"

	senddomain "resurface-backend/internal/send/domain"
	"resurface-backend/pkg/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendRecords struct {
	records map[string]*senddomain.SendRecord
	opened  map[string]time.Time
	clicked map[string]time.Time
}

func newFakeSendRecords() *fakeSendRecords {
	return &fakeSendRecords{
		records: map[string]*senddomain.SendRecord{},
		opened:  map[string]time.Time{},
		clicked: map[string]time.Time{},
	}
}

func (f *fakeSendRecords) Record(record *senddomain.SendRecord) error {
	f.records[record.ProviderMessageID] = record
	return nil
}

func (f *fakeSendRecords) FindByProviderMessageID(id string) (*senddomain.SendRecord, error) {
	return f.records[id], nil
}

func (f *fakeSendRecords) MarkOpened(id string, at time.Time) error {
	f.opened[id] = at
	return nil
}

func (f *fakeSendRecords) MarkClicked(id string, at time.Time) error {
	f.clicked[id] = at
	return nil
}

func event(eventType, emailID string, at time.Time) *mailer.WebhookEvent {
	e := &mailer.WebhookEvent{Type: eventType}
	e.Data.EmailID = emailID
	e.Data.CreatedAt = at
	return e
}

func TestHandleEventUpdatesEngagement(t *testing.T) {
	records := newFakeSendRecords()
	records.Record(&senddomain.SendRecord{ID: "r1", ProviderMessageID: "m1"})
	tracker := NewTracker(records)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, tracker.HandleEvent(event("email.opened", "m1", at)))
	assert.Equal(t, at, records.opened["m1"])

	require.NoError(t, tracker.HandleEvent(event("email.clicked", "m1", at.Add(time.Minute))))
	assert.Equal(t, at.Add(time.Minute), records.clicked["m1"])
}

func TestHandleEventUnknownMessageIsAcknowledged(t *testing.T) {
	tracker := NewTracker(newFakeSendRecords())

	err := tracker.HandleEvent(event("email.opened", "never-sent", time.Now()))
	assert.NoError(t, err)
}

func TestHandleEventUnhandledTypeIsIgnored(t *testing.T) {
	records := newFakeSendRecords()
	records.Record(&senddomain.SendRecord{ID: "r1", ProviderMessageID: "m1"})
	tracker := NewTracker(records)

	err := tracker.HandleEvent(event("email.bounced", "m1", time.Now()))
	assert.NoError(t, err)
	assert.Empty(t, records.opened)
	assert.Empty(t, records.clicked)
}

func TestHandleEventMissingID(t *testing.T) {
	tracker := NewTracker(newFakeSendRecords())

	err := tracker.HandleEvent(event("email.opened", "", time.Now()))
	assert.Error(t, err)
}
