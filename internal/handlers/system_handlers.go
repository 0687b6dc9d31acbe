package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/closetline/internal/uploads"
)

// ServeUpload streams a stored image.
// GET /uploads/:name
func (h *Handlers) ServeUpload(c *gin.Context) {
	name := c.Param("name")
	rc, err := h.Uploads.Open(c.Request.Context(), name)
	if errors.Is(err, uploads.ErrNotFound) {
		respondMessage(c, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		slog.Error("opening upload failed", "name", name, "error", err)
		respondError(c, http.StatusInternalServerError, "Error reading file", err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, uploads.ContentType(name), rc, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}

// Health reports liveness. The store check is informational and never fails
// the probe.
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	if err := h.Store.Ping(ctx); err != nil {
		slog.Warn("health check: store unreachable", "error", err)
		database = "unavailable"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    "OK",
		"message":   "Clothing Inventory API is running",
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// NotFound is the envelope for unmatched routes.
func NotFound(c *gin.Context) {
	respondMessage(c, http.StatusNotFound, "API endpoint not found")
}
