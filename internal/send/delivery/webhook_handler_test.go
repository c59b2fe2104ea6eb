package delivery

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	senddomain "resurface-backend/internal/send/domain"
	"resurface-backend/internal/send/usecase"
	"resurface-backend/pkg/mailer"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretB64 = "dGVzdC1zZWNyZXQta2V5LXZhbHVl"

type fakeSendRecords struct {
	records map[string]*senddomain.SendRecord
	opened  map[string]time.Time
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

func (f *fakeSendRecords) MarkClicked(id string, at time.Time) error { return nil }

func newTestRouter(t *testing.T, records *fakeSendRecords) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := mailer.NewWebhookVerifier("whsec_" + testSecretB64)
	require.NoError(t, err)

	handler := NewWebhookHandler(verifier, usecase.NewTracker(records))
	r := gin.New()
	r.POST("/api/webhooks/email", handler.HandleProviderEvent)
	return r
}

func signedRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	key, err := base64.StdEncoding.DecodeString(testSecretB64)
	require.NoError(t, err)
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "msg_1.%s.", timestamp)
	mac.Write(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/email", bytes.NewReader(payload))
	req.Header.Set("webhook-id", "msg_1")
	req.Header.Set("webhook-timestamp", timestamp)
	req.Header.Set("webhook-signature", "v1,"+base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	return req
}

func TestWebhookValidEvent(t *testing.T) {
	records := &fakeSendRecords{
		records: map[string]*senddomain.SendRecord{
			"m1": {ID: "r1", ProviderMessageID: "m1"},
		},
		opened: map[string]time.Time{},
	}
	router := newTestRouter(t, records)

	payload := []byte(`{"type":"email.opened","data":{"email_id":"m1","created_at":"2026-05-01T10:00:00Z"}}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedRequest(t, payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, records.opened, "m1")
}

func TestWebhookInvalidSignature(t *testing.T) {
	records := &fakeSendRecords{records: map[string]*senddomain.SendRecord{}, opened: map[string]time.Time{}}
	router := newTestRouter(t, records)

	payload := []byte(`{"type":"email.opened","data":{"email_id":"m1"}}`)
	req := signedRequest(t, payload)
	req.Header.Set("webhook-signature", "v1,AAAA")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookMalformedPayload(t *testing.T) {
	records := &fakeSendRecords{records: map[string]*senddomain.SendRecord{}, opened: map[string]time.Time{}}
	router := newTestRouter(t, records)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedRequest(t, []byte(`not json`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookUnknownMessageStillAccepted(t *testing.T) {
	records := &fakeSendRecords{records: map[string]*senddomain.SendRecord{}, opened: map[string]time.Time{}}
	router := newTestRouter(t, records)

	payload := []byte(`{"type":"email.opened","data":{"email_id":"unknown"}}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedRequest(t, payload))
	assert.Equal(t, http.StatusOK, w.Code)
}
