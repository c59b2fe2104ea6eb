package mailer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_dGVzdC1zZWNyZXQta2V5LXZhbHVl" // base64 of "test-secret-key-value"

func sign(t *testing.T, secret, id, timestamp string, payload []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(secret)
	require.NoError(t, err)
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.", id, timestamp)
	mac.Write(payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	v, err := NewWebhookVerifier(testSecret)
	require.NoError(t, err)

	now := time.Unix(1767250800, 0)
	timestamp := strconv.FormatInt(now.Unix(), 10)
	payload := []byte(`{"type":"email.opened","data":{"email_id":"m1"}}`)
	sig := sign(t, "dGVzdC1zZWNyZXQta2V5LXZhbHVl", "msg_1", timestamp, payload)

	assert.NoError(t, v.Verify("msg_1", timestamp, payload, sig, now))

	// Multiple space-separated candidates: any valid one passes.
	assert.NoError(t, v.Verify("msg_1", timestamp, payload, "v1,bogus "+sig, now))
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	v, err := NewWebhookVerifier(testSecret)
	require.NoError(t, err)

	now := time.Unix(1767250800, 0)
	timestamp := strconv.FormatInt(now.Unix(), 10)
	payload := []byte(`{"type":"email.opened"}`)

	assert.Error(t, v.Verify("msg_1", timestamp, payload, "v1,AAAA", now))

	// A signature over different content fails too.
	sig := sign(t, "dGVzdC1zZWNyZXQta2V5LXZhbHVl", "msg_1", timestamp, []byte("other"))
	assert.Error(t, v.Verify("msg_1", timestamp, payload, sig, now))
}

func TestVerifyToleranceWindow(t *testing.T) {
	v, err := NewWebhookVerifier(testSecret)
	require.NoError(t, err)

	sent := time.Unix(1767250800, 0)
	timestamp := strconv.FormatInt(sent.Unix(), 10)
	payload := []byte(`{}`)
	sig := sign(t, "dGVzdC1zZWNyZXQta2V5LXZhbHVl", "msg_1", timestamp, payload)

	// Inside the window, both directions.
	assert.NoError(t, v.Verify("msg_1", timestamp, payload, sig, sent.Add(4*time.Minute)))
	assert.NoError(t, v.Verify("msg_1", timestamp, payload, sig, sent.Add(-4*time.Minute)))

	// Outside it, both directions.
	assert.Error(t, v.Verify("msg_1", timestamp, payload, sig, sent.Add(6*time.Minute)))
	assert.Error(t, v.Verify("msg_1", timestamp, payload, sig, sent.Add(-6*time.Minute)))
}

func TestVerifyRequiresHeaders(t *testing.T) {
	v, err := NewWebhookVerifier(testSecret)
	require.NoError(t, err)

	now := time.Now()
	assert.Error(t, v.Verify("", "123", []byte("{}"), "v1,x", now))
	assert.Error(t, v.Verify("msg_1", "", []byte("{}"), "v1,x", now))
	assert.Error(t, v.Verify("msg_1", "123", []byte("{}"), "", now))
	assert.Error(t, v.Verify("msg_1", "not-a-number", []byte("{}"), "v1,x", now))
}

func TestNewWebhookVerifierSecretFormats(t *testing.T) {
	// With and without the whsec_ prefix.
	_, err := NewWebhookVerifier(testSecret)
	assert.NoError(t, err)
	_, err = NewWebhookVerifier("dGVzdC1zZWNyZXQta2V5LXZhbHVl")
	assert.NoError(t, err)

	_, err = NewWebhookVerifier("whsec_!!!not-base64!!!")
	assert.Error(t, err)
}

func TestParseEvent(t *testing.T) {
	event, err := ParseEvent([]byte(`{"type":"email.clicked","data":{"email_id":"m1","created_at":"2026-05-01T10:00:00Z"}}`))
	require.NoError(t, err)
	assert.Equal(t, "email.clicked", event.Type)
	assert.Equal(t, "m1", event.Data.EmailID)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), event.Data.CreatedAt)

	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseEvent([]byte(`{"data":{}}`))
	assert.Error(t, err)
}
