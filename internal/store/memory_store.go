package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/01moynul/closetline/internal/models"
	"github.com/01moynul/closetline/internal/pagination"
)

// MemoryStore keeps items and enquiries in-process. It backs the tests and
// DB_DRIVER=memory for local development.
type MemoryStore struct {
	mu        sync.RWMutex
	items     map[string]models.Item
	enquiries map[string]models.Enquiry
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:     make(map[string]models.Item),
		enquiries: make(map[string]models.Enquiry),
	}
}

func (m *MemoryStore) Ping(context.Context) error  { return nil }
func (m *MemoryStore) Close(context.Context) error { return nil }

// CreateItem stores a new item.
func (m *MemoryStore) CreateItem(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[item.ID]; exists {
		return fmt.Errorf("creating item: duplicate id %s", item.ID)
	}
	m.items[item.ID] = cloneItem(*item)
	return nil
}

// GetItem returns an item by ID.
func (m *MemoryStore) GetItem(_ context.Context, id string) (*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneItem(item)
	return &out, nil
}

// UpdateItem replaces an existing item.
func (m *MemoryStore) UpdateItem(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return ErrNotFound
	}
	m.items[item.ID] = cloneItem(*item)
	return nil
}

// SetItemActive flips the soft-delete flag.
func (m *MemoryStore) SetItemActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	item.IsActive = active
	item.UpdatedAt = time.Now().UTC()
	m.items[id] = item
	return nil
}

type scoredItem struct {
	item  models.Item
	score int
}

// ListItems filters, orders and pages the active items.
func (m *MemoryStore) ListItems(_ context.Context, f ItemFilter, p pagination.Params) ([]models.Item, int64, error) {
	m.mu.RLock()
	terms := tokenize(f.Search)
	matches := make([]scoredItem, 0, len(m.items))
	for _, item := range m.items {
		if !matchesItem(item, f) {
			continue
		}
		score := 0
		if f.HasSearch() {
			score = textScore(item, terms)
			if score == 0 {
				continue
			}
		}
		matches = append(matches, scoredItem{item: cloneItem(item), score: score})
	}
	m.mu.RUnlock()

	slices.SortFunc(matches, func(a, b scoredItem) int {
		if f.HasSearch() && a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		if c := b.item.DateAdded.Compare(a.item.DateAdded); c != 0 {
			return c
		}
		return cmp.Compare(a.item.ID, b.item.ID)
	})

	total := int64(len(matches))
	page := pageOf(matches, p)
	out := make([]models.Item, 0, len(page))
	for _, s := range page {
		out = append(out, s.item)
	}
	return out, total, nil
}

func matchesItem(item models.Item, f ItemFilter) bool {
	if !item.IsActive {
		return false
	}
	if f.Type != "" && item.Type != f.Type {
		return false
	}
	if f.Size != "" && item.Size != f.Size {
		return false
	}
	if f.Condition != "" && item.Condition != f.Condition {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		if item.Price == nil {
			return false
		}
		if f.MinPrice != nil && *item.Price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && *item.Price > *f.MaxPrice {
			return false
		}
	}
	return true
}

// textScore counts how many indexed words of the item match a search term.
// Name, description and type form the searchable text.
func textScore(item models.Item, terms []string) int {
	if len(terms) == 0 {
		return 0
	}
	want := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		want[t] = struct{}{}
	}
	score := 0
	for _, field := range []string{item.Name, item.Description, item.Type} {
		for _, word := range tokenize(field) {
			if _, ok := want[word]; ok {
				score++
			}
		}
	}
	return score
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func pageOf[T any](all []T, p pagination.Params) []T {
	start := p.Skip()
	if start >= len(all) {
		return nil
	}
	end := start + min(p.Limit, len(all)-start)
	return all[start:end]
}

// ItemStats summarizes the active items.
func (m *MemoryStore) ItemStats(_ context.Context) (*models.ItemStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	active := make([]models.Item, 0, len(m.items))
	for _, item := range m.items {
		if !item.IsActive {
			continue
		}
		counts[item.Type]++
		active = append(active, item)
	}

	stats := &models.ItemStats{
		TotalItems:  int64(len(active)),
		TypeStats:   make([]models.TypeCount, 0, len(counts)),
		RecentItems: make([]models.RecentItem, 0, RecentItemsLimit),
	}
	for typ, n := range counts {
		stats.TypeStats = append(stats.TypeStats, models.TypeCount{Type: typ, Count: n})
	}
	slices.SortFunc(stats.TypeStats, func(a, b models.TypeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})

	slices.SortFunc(active, func(a, b models.Item) int {
		return b.DateAdded.Compare(a.DateAdded)
	})
	for _, item := range active[:min(RecentItemsLimit, len(active))] {
		stats.RecentItems = append(stats.RecentItems, models.RecentItem{
			ID:        item.ID,
			Name:      item.Name,
			Type:      item.Type,
			DateAdded: item.DateAdded,
		})
	}
	return stats, nil
}

// CreateEnquiry stores a new enquiry.
func (m *MemoryStore) CreateEnquiry(_ context.Context, e *models.Enquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.enquiries[e.ID]; exists {
		return fmt.Errorf("creating enquiry: duplicate id %s", e.ID)
	}
	m.enquiries[e.ID] = *e
	return nil
}

// MarkEnquiryEmailSent records a successful notification.
func (m *MemoryStore) MarkEnquiryEmailSent(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enquiries[id]
	if !ok {
		return ErrNotFound
	}
	e.EmailSent = true
	e.EmailSentAt = &at
	e.UpdatedAt = at
	m.enquiries[id] = e
	return nil
}

// ListEnquiries pages enquiries newest first and attaches the item projection.
func (m *MemoryStore) ListEnquiries(_ context.Context, f EnquiryFilter, p pagination.Params) ([]models.EnquiryListing, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]models.Enquiry, 0, len(m.enquiries))
	for _, e := range m.enquiries {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		matches = append(matches, e)
	}
	slices.SortFunc(matches, func(a, b models.Enquiry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	page := pageOf(matches, p)
	out := make([]models.EnquiryListing, 0, len(page))
	for _, e := range page {
		listing := models.EnquiryListing{Enquiry: e}
		if item, ok := m.items[e.ItemID]; ok {
			listing.Item = &models.ItemRef{
				ID:         item.ID,
				Name:       item.Name,
				Type:       item.Type,
				CoverImage: item.CoverImage,
			}
		}
		out = append(out, listing)
	}
	return out, int64(len(matches)), nil
}

// EnquiryCount returns the number of stored enquiries.
func (m *MemoryStore) EnquiryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.enquiries)
}

func cloneItem(item models.Item) models.Item {
	item.AdditionalImages = slices.Clone(item.AdditionalImages)
	item.Tags = slices.Clone(item.Tags)
	if item.Price != nil {
		price := *item.Price
		item.Price = &price
	}
	return item
}
