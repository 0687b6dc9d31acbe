// Package store persists items and enquiries. All backends share the same
// filtering, ordering and soft-delete semantics.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/01moynul/closetline/internal/models"
	"github.com/01moynul/closetline/internal/pagination"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// RecentItemsLimit is how many recently added items statistics include.
const RecentItemsLimit = 5

// ItemStore persists catalog items.
type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	// GetItem returns the item regardless of its active flag.
	GetItem(ctx context.Context, id string) (*models.Item, error)
	// UpdateItem replaces the stored item with the same ID.
	UpdateItem(ctx context.Context, item *models.Item) error
	SetItemActive(ctx context.Context, id string, active bool) error
	// ListItems returns one page of active items matching f and the total match count.
	ListItems(ctx context.Context, f ItemFilter, p pagination.Params) ([]models.Item, int64, error)
	ItemStats(ctx context.Context) (*models.ItemStats, error)
}

// EnquiryStore persists customer enquiries.
type EnquiryStore interface {
	CreateEnquiry(ctx context.Context, e *models.Enquiry) error
	MarkEnquiryEmailSent(ctx context.Context, id string, at time.Time) error
	// ListEnquiries returns one page of enquiries, newest first, with their item projection.
	ListEnquiries(ctx context.Context, f EnquiryFilter, p pagination.Params) ([]models.EnquiryListing, int64, error)
}

// Store is the full persistence contract used by the HTTP handlers.
type Store interface {
	ItemStore
	EnquiryStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
