package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/closetline/internal/email"
	"github.com/01moynul/closetline/internal/models"
	"github.com/01moynul/closetline/internal/pagination"
	"github.com/01moynul/closetline/internal/store"
	"github.com/01moynul/closetline/internal/uploads"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store    store.Store       // Items and enquiries
	Uploads  *uploads.Ingestor // Image ingestion and serving
	Notifier *email.Notifier   // Enquiry emails; may be unconfigured
}

// --- Response envelope ---
// Every response carries "success" plus either data/pagination or message/error.

func respondData(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondPage(c *gin.Context, data any, p pagination.Params, total int64) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"pagination": pagination.NewEnvelope(p, total),
	})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": status < http.StatusBadRequest, "message": message})
}

// respondError attaches the underlying error text. Validation failures also
// list the offending fields under "errors".
func respondError(c *gin.Context, status int, message string, err error) {
	body := gin.H{"success": false, "message": message}
	if err != nil {
		body["error"] = err.Error()
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			body["errors"] = verr.Fields
		}
	}
	c.JSON(status, body)
}

// uploadStatus maps an ingestion failure to 400 for bad input and 500 for
// storage problems.
func uploadStatus(err error) int {
	if errors.Is(err, uploads.ErrStorage) {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}
