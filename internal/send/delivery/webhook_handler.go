package delivery

import (
	"io"
	"net/http"
	"time"

	"resurface-backend/internal/send/usecase"
	"resurface-backend/pkg/mailer"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives signed engagement webhooks from the email
// provider.
type WebhookHandler struct {
	verifier *mailer.WebhookVerifier
	tracker  *usecase.Tracker
}

func NewWebhookHandler(verifier *mailer.WebhookVerifier, tracker *usecase.Tracker) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		tracker:  tracker,
	}
}

// HandleProviderEvent processes POST /api/webhooks/email.
func (h *WebhookHandler) HandleProviderEvent(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil || len(payload) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing payload"})
		return
	}

	err = h.verifier.Verify(
		c.GetHeader("webhook-id"),
		c.GetHeader("webhook-timestamp"),
		payload,
		c.GetHeader("webhook-signature"),
		time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	event, err := mailer.ParseEvent(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tracker.HandleEvent(event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
