package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khata-ledger/internal/api/handler"
	"github.com/khata-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application.
// The correlation id is assigned first so the request log and panic responses carry it.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	contactHandler *handler.ContactHandler,
	entryHandler *handler.EntryHandler,
) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	v1 := r.Group("/api/v1")
	{
		contacts := v1.Group("/contacts")
		{
			contacts.POST("", contactHandler.Create)
			contacts.GET("", contactHandler.List)
			contacts.GET("/:id", contactHandler.GetByID)
			contacts.GET("/:id/verify", contactHandler.Verify)
			contacts.POST("/:id/entries", entryHandler.Record)
			contacts.GET("/:id/entries", entryHandler.List)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
