package api

import (
	"net/http"
	"time"

	"resurface-backend/internal/app"
	notedomain "resurface-backend/internal/note/domain"

	"github.com/gin-gonic/gin"
)

// JobsHandler exposes the batch jobs over HTTP so an external scheduler can
// trigger them. Each job accepts an optional `now` override (RFC3339) and,
// where sending is involved, a `dry_run` switch.
type JobsHandler struct {
	app *app.App
}

func NewJobsHandler(application *app.App) *JobsHandler {
	return &JobsHandler{app: application}
}

func (h *JobsHandler) GenerateDigests(c *gin.Context) {
	if !rejectDryRun(c) {
		return
	}
	now, ok := parseNow(c)
	if !ok {
		return
	}
	report, err := h.app.DigestRunner.GenerateForAllUsers(c.Request.Context(), now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *JobsHandler) SendDigests(c *gin.Context) {
	now, ok := parseNow(c)
	if !ok {
		return
	}
	report, err := h.app.DigestRunner.SendDue(c.Request.Context(), now, dryRun(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *JobsHandler) RunSequences(c *gin.Context) {
	now, ok := parseNow(c)
	if !ok {
		return
	}
	report, err := h.app.SequenceRunner.Run(c.Request.Context(), now, dryRun(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *JobsHandler) Sync(c *gin.Context) {
	if !rejectDryRun(c) {
		return
	}
	kind := notedomain.SourceKind(c.Query("source"))
	if kind != notedomain.SourcePages && kind != notedomain.SourceVault {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be pages or vault"})
		return
	}
	now, ok := parseNow(c)
	if !ok {
		return
	}
	report, err := h.app.Syncer.SyncAllForKind(c.Request.Context(), kind, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// parseNow reads the optional `now` query parameter. A malformed value is a
// client error; absence means wall-clock time.
func parseNow(c *gin.Context) (time.Time, bool) {
	raw := c.Query("now")
	if raw == "" {
		return time.Now().UTC(), true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "now must be RFC3339"})
		return time.Time{}, false
	}
	return t, true
}

func dryRun(c *gin.Context) bool {
	return c.Query("dry_run") == "true"
}

// rejectDryRun answers 400 for jobs that always mutate state. Silently
// ignoring the flag would let a caller believe nothing was written.
func rejectDryRun(c *gin.Context) bool {
	if dryRun(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dry_run is not supported for this job"})
		return false
	}
	return true
}
