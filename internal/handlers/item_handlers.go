package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/01moynul/closetline/internal/models"
	"github.com/01moynul/closetline/internal/pagination"
	"github.com/01moynul/closetline/internal/store"
	"github.com/01moynul/closetline/internal/uploads"
)

// GetAllItems lists active items, newest first or by relevance when searching.
// GET /api/items?page&limit&type&search
func (h *Handlers) GetAllItems(c *gin.Context) {
	p := pagination.Parse(c.Query("page"), c.Query("limit"))
	filter := store.NewItemFilter(store.ItemQuery{
		Type:   c.Query("type"),
		Search: c.Query("search"),
	})

	items, total, err := h.Store.ListItems(c.Request.Context(), filter, p)
	if err != nil {
		slog.Error("listing items failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Error fetching items", err)
		return
	}
	respondPage(c, items, p, total)
}

// SearchItems is the filtered listing used by the catalog search page.
// GET /api/items/search?q&type&minPrice&maxPrice&size&condition&page&limit
func (h *Handlers) SearchItems(c *gin.Context) {
	p := pagination.Parse(c.Query("page"), c.Query("limit"))
	filter := store.NewItemFilter(store.ItemQuery{
		Type:      c.Query("type"),
		Size:      c.Query("size"),
		Condition: c.Query("condition"),
		Search:    c.Query("q"),
		MinPrice:  c.Query("minPrice"),
		MaxPrice:  c.Query("maxPrice"),
	})

	items, total, err := h.Store.ListItems(c.Request.Context(), filter, p)
	if err != nil {
		slog.Error("searching items failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Error searching items", err)
		return
	}
	respondPage(c, items, p, total)
}

// GetItemStats returns catalog totals, per-type counts and the latest items.
func (h *Handlers) GetItemStats(c *gin.Context) {
	stats, err := h.Store.ItemStats(c.Request.Context())
	if err != nil {
		slog.Error("item stats failed", "error", err)
		respondError(c, http.StatusInternalServerError, "Error fetching statistics", err)
		return
	}
	respondData(c, http.StatusOK, "", stats)
}

// GetItemByID returns one item, including soft-deleted ones.
func (h *Handlers) GetItemByID(c *gin.Context) {
	item, err := h.Store.GetItem(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondMessage(c, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("fetching item failed", "id", c.Param("id"), "error", err)
		respondError(c, http.StatusInternalServerError, "Error fetching item", err)
		return
	}
	respondData(c, http.StatusOK, "", item)
}

// CreateItem stores a new item from a JSON, multipart or urlencoded body.
func (h *Handlers) CreateItem(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. --- Decode the body ---
	in, err := bindItemInput(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Error creating item", err)
		return
	}

	now := time.Now().UTC()
	item := models.Item{
		ID:        uuid.NewString(),
		DateAdded: now,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Patch.Apply(&item)

	// 2. --- Store images ---
	stored, err := h.ingestImages(ctx, in, &item)
	if err != nil {
		respondError(c, uploadStatus(err), "Error uploading images", err)
		return
	}

	// 3. --- Validate and persist ---
	item.Normalize()
	if err := item.Validate(); err != nil {
		h.Uploads.Discard(ctx, stored...)
		respondError(c, http.StatusBadRequest, "Error creating item", err)
		return
	}
	if err := h.Store.CreateItem(ctx, &item); err != nil {
		h.Uploads.Discard(ctx, stored...)
		slog.Error("creating item failed", "error", err)
		respondError(c, http.StatusBadRequest, "Error creating item", err)
		return
	}

	slog.Info("item created", "id", item.ID, "type", item.Type, "images", item.TotalImages())
	respondData(c, http.StatusCreated, "Item created successfully", item)
}

// UpdateItem applies the provided fields to an existing item. New image files
// replace the old ones wholesale.
func (h *Handlers) UpdateItem(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	in, err := bindItemInput(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Error updating item", err)
		return
	}

	item, err := h.Store.GetItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		respondMessage(c, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("loading item for update failed", "id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "Error updating item", err)
		return
	}

	in.Patch.Apply(item)
	stored, err := h.ingestImages(ctx, in, item)
	if err != nil {
		respondError(c, uploadStatus(err), "Error uploading images", err)
		return
	}

	item.Normalize()
	if err := item.Validate(); err != nil {
		h.Uploads.Discard(ctx, stored...)
		respondError(c, http.StatusBadRequest, "Error updating item", err)
		return
	}
	item.UpdatedAt = time.Now().UTC()

	err = h.Store.UpdateItem(ctx, item)
	if errors.Is(err, store.ErrNotFound) {
		h.Uploads.Discard(ctx, stored...)
		respondMessage(c, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		h.Uploads.Discard(ctx, stored...)
		slog.Error("updating item failed", "id", id, "error", err)
		respondError(c, http.StatusBadRequest, "Error updating item", err)
		return
	}
	respondData(c, http.StatusOK, "Item updated successfully", item)
}

// DeleteItem soft-deletes an item by clearing its active flag.
func (h *Handlers) DeleteItem(c *gin.Context) {
	id := c.Param("id")
	err := h.Store.SetItemActive(c.Request.Context(), id, false)
	if errors.Is(err, store.ErrNotFound) {
		respondMessage(c, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("deleting item failed", "id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "Error deleting item", err)
		return
	}
	respondMessage(c, http.StatusOK, "Item deleted successfully")
}

// ingestImages stores uploaded files and base64 payloads and points the item
// at them. It returns the public paths written so a failed save can discard
// them. Base64 payloads win over files for the same field.
func (h *Handlers) ingestImages(ctx context.Context, in *itemInput, item *models.Item) (stored []string, err error) {
	defer func() {
		if err != nil {
			h.Uploads.Discard(ctx, stored...)
			stored = nil
		}
	}()

	if len(in.CoverFiles) > 1 {
		return nil, errCoverCount
	}
	if len(in.CoverFiles) == 1 {
		paths, err := h.Uploads.SaveFiles(ctx, "coverImage", in.CoverFiles)
		if err != nil {
			return stored, err
		}
		stored = append(stored, paths...)
		item.CoverImage = paths[0]
	}
	if len(in.AdditionalFiles) > 0 {
		paths, err := h.Uploads.SaveFiles(ctx, "additionalImages", in.AdditionalFiles)
		if err != nil {
			return stored, err
		}
		stored = append(stored, paths...)
		item.AdditionalImages = paths
	}

	// Clients without multipart support may also inline a data URL in coverImage.
	cover := in.CoverBase64
	if cover == "" && uploads.IsBase64Image(item.CoverImage) {
		cover = item.CoverImage
	}
	if cover != "" {
		p, err := h.Uploads.SaveBase64(ctx, "cover", cover)
		if err != nil {
			return stored, fmt.Errorf("coverImageBase64: %w", err)
		}
		stored = append(stored, p)
		item.CoverImage = p
	}

	if len(in.AdditionalBase64) > 0 {
		if len(in.AdditionalBase64) > uploads.MaxFiles {
			return stored, uploads.ErrTooManyFiles
		}
		paths := make([]string, 0, len(in.AdditionalBase64))
		for i, payload := range in.AdditionalBase64 {
			p, err := h.Uploads.SaveBase64(ctx, fmt.Sprintf("additional-%d", i), payload)
			if err != nil {
				return stored, fmt.Errorf("additionalImagesBase64[%d]: %w", i, err)
			}
			stored = append(stored, p)
			paths = append(paths, p)
		}
		item.AdditionalImages = paths
	}
	return stored, nil
}
