package api

import (
	"net/http"

	"resurface-backend/internal/app"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, application *app.App) {
	jobsHandler := NewJobsHandler(application)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		if application.WebhookHandler != nil {
			api.POST("/webhooks/email", application.WebhookHandler.HandleProviderEvent)
		}

		jobs := api.Group("/jobs")
		{
			jobs.POST("/generate-digests", jobsHandler.GenerateDigests)
			jobs.POST("/send-digests", jobsHandler.SendDigests)
			jobs.POST("/run-sequences", jobsHandler.RunSequences)
			jobs.POST("/sync", jobsHandler.Sync)
		}
	}
}
