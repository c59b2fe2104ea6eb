package mailer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WebhookEvent is an inbound engagement event from the email provider.
type WebhookEvent struct {
	Type string `json:"type"` // "email.opened", "email.clicked", ...
	Data struct {
		EmailID   string    `json:"email_id"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"data"`
}

// WebhookVerifier checks provider webhook signatures. The signed content is
// "{id}.{timestamp}.{body}" with an HMAC-SHA256 keyed by the base64-decoded
// webhook secret.
type WebhookVerifier struct {
	secret    []byte
	tolerance time.Duration
}

func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	trimmed := strings.TrimPrefix(secret, "whsec_")
	key, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook secret: %w", err)
	}
	return &WebhookVerifier{
		secret:    key,
		tolerance: 5 * time.Minute,
	}, nil
}

// Verify validates the signature header against the payload. The timestamp
// must be within the tolerance window in either direction. The signature
// header may carry several space-separated "v1,<base64>" candidates; any
// match passes.
func (v *WebhookVerifier) Verify(id, timestamp string, payload []byte, signatureHeader string, now time.Time) error {
	if id == "" || timestamp == "" || signatureHeader == "" {
		return fmt.Errorf("missing webhook headers")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid webhook timestamp: %w", err)
	}
	sent := time.Unix(ts, 0)
	if diff := now.Sub(sent); diff > v.tolerance || diff < -v.tolerance {
		return fmt.Errorf("webhook timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%s.%s.", id, timestamp)
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, candidate := range strings.Fields(signatureHeader) {
		sig := candidate
		if parts := strings.SplitN(candidate, ",", 2); len(parts) == 2 {
			sig = parts[1]
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return fmt.Errorf("webhook signature mismatch")
}

// ParseEvent decodes a verified webhook payload.
func ParseEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("webhook payload missing type")
	}
	return &event, nil
}
