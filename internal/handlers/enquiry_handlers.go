package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/01moynul/closetline/internal/models"
	"github.com/01moynul/closetline/internal/pagination"
	"github.com/01moynul/closetline/internal/store"
)

// --- Inputs ---

type EnquiryInput struct {
	ItemID        string `json:"itemId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	Message       string `json:"message"`
}

// EnquiryResult is the data returned after a submission.
type EnquiryResult struct {
	EnquiryID  string `json:"enquiryId"`
	EmailSent  bool   `json:"emailSent"`
	EmailError string `json:"emailError,omitempty"`
	Note       string `json:"note,omitempty"`
}

// SubmitEnquiry stores a customer enquiry and then tries to email the store
// and the customer. Email problems never fail the request.
// POST /api/email/enquiry
func (h *Handlers) SubmitEnquiry(c *gin.Context) {
	var input EnquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid enquiry body", err)
		return
	}

	// 1. --- Required fields ---
	if strings.TrimSpace(input.ItemID) == "" || strings.TrimSpace(input.CustomerName) == "" || strings.TrimSpace(input.CustomerEmail) == "" {
		respondMessage(c, http.StatusBadRequest, "Item ID, customer name, and email are required")
		return
	}

	now := time.Now().UTC()
	enquiry := models.Enquiry{
		ID:            uuid.NewString(),
		ItemID:        input.ItemID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Message:       input.Message,
		Status:        models.EnquiryStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	enquiry.Normalize()
	if err := enquiry.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid enquiry", err)
		return
	}

	// The notification must finish even if the client goes away.
	ctx := context.WithoutCancel(c.Request.Context())

	// 2. --- Resolve the item ---
	item, err := h.Store.GetItem(ctx, enquiry.ItemID)
	if errors.Is(err, store.ErrNotFound) {
		respondMessage(c, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("loading enquiry item failed", "item_id", enquiry.ItemID, "error", err)
		respondError(c, http.StatusInternalServerError, "Error processing enquiry", err)
		return
	}

	// 3. --- Persist before any email ---
	if err := h.Store.CreateEnquiry(ctx, &enquiry); err != nil {
		slog.Error("saving enquiry failed", "item_id", enquiry.ItemID, "error", err)
		respondError(c, http.StatusInternalServerError, "Error processing enquiry", err)
		return
	}

	result := EnquiryResult{EnquiryID: enquiry.ID}

	// 4. --- Best-effort notification ---
	if !h.Notifier.Configured() {
		result.Note = "Email notifications not configured"
		respondData(c, http.StatusOK, "Enquiry submitted successfully", result)
		return
	}

	if err := h.Notifier.SendEnquiry(ctx, *item, enquiry); err != nil {
		slog.Error("enquiry email failed", "enquiry_id", enquiry.ID, "error", err)
		result.EmailError = err.Error()
		respondData(c, http.StatusOK, "Enquiry submitted successfully (email notification failed)", result)
		return
	}

	// 5. --- Record delivery ---
	if err := h.Store.MarkEnquiryEmailSent(ctx, enquiry.ID, time.Now().UTC()); err != nil {
		slog.Error("recording enquiry email failed", "enquiry_id", enquiry.ID, "error", err)
		result.EmailError = "emails sent but delivery could not be recorded: " + err.Error()
		respondData(c, http.StatusOK, "Enquiry submitted successfully (email notification failed)", result)
		return
	}

	result.EmailSent = true
	respondData(c, http.StatusOK, "Enquiry submitted and emails sent successfully", result)
}

// GetEnquiries lists enquiries newest first with a projection of their item.
// GET /api/email/enquiries?page&limit&status
func (h *Handlers) GetEnquiries(c *gin.Context) {
	p := pagination.Parse(c.Query("page"), c.Query("limit"))
	filter := store.EnquiryFilter{Status: strings.TrimSpace(c.Query("status"))}

	enquiries, total, err := h.Store.ListEnquiries(c.Request.Context(), filter, p)
	if err != nil {
		slog.Error("listing enquiries failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Error fetching enquiries", err)
		return
	}
	respondPage(c, enquiries, p, total)
}
