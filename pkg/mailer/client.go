package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Message is one outbound email.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

// SendResult carries the provider-assigned message id.
type SendResult struct {
	ID string `json:"id"`
}

// ProviderError is a non-2xx response from the email provider.
type ProviderError struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Name, e.Message)
}

// Retryable reports whether the provider asked for a retry. Only rate
// limiting and internal errors qualify; everything else is permanent.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusInternalServerError
}

// Client sends email through the provider's REST API. Every send carries an
// Idempotency-Key header so replays of the same logical send are deduplicated
// provider-side.
type Client struct {
	baseURL     string
	apiKey      string
	from        string
	maxAttempts int
	backoff     time.Duration
	dryRun      bool
	httpClient  *http.Client
}

func NewClient(baseURL, apiKey, from string, maxAttempts int, dryRun bool) *Client {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		from:        from,
		maxAttempts: maxAttempts,
		backoff:     500 * time.Millisecond,
		dryRun:      dryRun,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// From returns the configured sender address.
func (c *Client) From() string {
	return c.from
}

// Send delivers one message, retrying transient provider failures (429/500)
// with exponential backoff. idempotencyKey identifies the logical send; the
// provider treats a repeated key as already-delivered.
func (c *Client) Send(ctx context.Context, msg *Message, idempotencyKey string) (*SendResult, error) {
	if c.dryRun {
		id := "dry-run-" + uuid.New().String()
		log.Printf("[Mailer] dry-run: would send %q to %v (key=%s)", msg.Subject, msg.To, idempotencyKey)
		return &SendResult{ID: id}, nil
	}

	if msg.From == "" {
		msg.From = c.from
	}

	var lastErr error
	backoff := c.backoff
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, err := c.post(ctx, msg, idempotencyKey)
		if err == nil {
			return result, nil
		}
		lastErr = err

		provErr, ok := err.(*ProviderError)
		if !ok || !provErr.Retryable() {
			return nil, err
		}
		if attempt == c.maxAttempts {
			break
		}

		log.Printf("[Mailer] transient failure (attempt %d/%d): %v", attempt, c.maxAttempts, err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("send failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, msg *Message, idempotencyKey string) (*SendResult, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		provErr := &ProviderError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, provErr); err != nil || provErr.Message == "" {
			provErr.Name = "unknown"
			provErr.Message = string(data)
		}
		provErr.StatusCode = resp.StatusCode
		return nil, provErr
	}

	var result SendResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
