package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-key", "Resurface <digest@example.com>", 3, false)
	client.backoff = time.Millisecond // keep retry tests fast
	return client, server
}

func testMessage() *Message {
	return &Message{
		To:      []string{"user@example.com"},
		Subject: "Your digest",
		Text:    "hello",
	}
}

func TestSendSetsHeaders(t *testing.T) {
	var got *http.Request
	var body Message
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(SendResult{ID: "email-1"})
	})

	result, err := client.Send(context.Background(), testMessage(), "digest:d1")
	require.NoError(t, err)
	assert.Equal(t, "email-1", result.ID)

	assert.Equal(t, "/emails", got.URL.Path)
	assert.Equal(t, "Bearer test-key", got.Header.Get("Authorization"))
	assert.Equal(t, "digest:d1", got.Header.Get("Idempotency-Key"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))

	// The configured sender fills an empty From.
	assert.Equal(t, "Resurface <digest@example.com>", body.From)
}

func TestSendRetriesTransientFailures(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(ProviderError{Name: "rate_limit", Message: "slow down"})
			return
		}
		json.NewEncoder(w).Encode(SendResult{ID: "email-1"})
	})

	result, err := client.Send(context.Background(), testMessage(), "k")
	require.NoError(t, err)
	assert.Equal(t, "email-1", result.ID)
	assert.Equal(t, 3, calls)
}

func TestSendDoesNotRetryPermanentFailures(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ProviderError{Name: "validation_error", Message: "bad address"})
	})

	_, err := client.Send(context.Background(), testMessage(), "k")
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	provErr, ok := err.(*ProviderError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, provErr.StatusCode)
	assert.False(t, provErr.Retryable())
}

func TestSendGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ProviderError{Name: "internal", Message: "boom"})
	})

	_, err := client.Send(context.Background(), testMessage(), "k")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestSendDryRun(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "from@example.com", 3, true)
	result, err := client.Send(context.Background(), testMessage(), "k")
	require.NoError(t, err)

	assert.Equal(t, 0, calls)
	assert.True(t, strings.HasPrefix(result.ID, "dry-run-"))
}

func TestRetryableStatuses(t *testing.T) {
	assert.True(t, (&ProviderError{StatusCode: 429}).Retryable())
	assert.True(t, (&ProviderError{StatusCode: 500}).Retryable())
	assert.False(t, (&ProviderError{StatusCode: 400}).Retryable())
	assert.False(t, (&ProviderError{StatusCode: 403}).Retryable())
	assert.False(t, (&ProviderError{StatusCode: 503}).Retryable())
}
