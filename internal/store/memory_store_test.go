package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/01moynul/closetline/internal/models"
	"github.com/01moynul/closetline/internal/pagination"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func price(v float64) *float64 { return &v }

func seedItem(t *testing.T, s *MemoryStore, id, name, typ string, age int, mutate func(*models.Item)) models.Item {
	t.Helper()
	item := models.Item{
		ID:          id,
		Name:        name,
		Type:        typ,
		Description: name + " description",
		CoverImage:  "/uploads/" + id + ".jpg",
		DateAdded:   baseTime.Add(-time.Duration(age) * time.Hour),
		IsActive:    true,
	}
	if mutate != nil {
		mutate(&item)
	}
	if err := s.CreateItem(context.Background(), &item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func ids(items []models.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestListItemsRecencyOrder(t *testing.T) {
	s := NewMemoryStore()
	seedItem(t, s, "old", "Old Jeans", "Jeans", 10, nil)
	seedItem(t, s, "new", "New Dress", "Dress", 1, nil)
	seedItem(t, s, "mid", "Mid Jacket", "Jacket", 5, nil)

	items, total, err := s.ListItems(context.Background(), ItemFilter{}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 items, got %d", total)
	}
	got := fmt.Sprint(ids(items))
	if got != "[new mid old]" {
		t.Errorf("expected newest first, got %s", got)
	}
}

func TestListItemsSearchRanksByRelevance(t *testing.T) {
	s := NewMemoryStore()
	seedItem(t, s, "a", "Blue Shirt", "T-Shirt", 1, func(i *models.Item) { i.Description = "plain cotton" })
	seedItem(t, s, "b", "Denim Jacket", "Jacket", 5, func(i *models.Item) { i.Description = "blue denim, very blue" })
	seedItem(t, s, "c", "Red Dress", "Dress", 0, nil)

	items, total, err := s.ListItems(context.Background(), ItemFilter{Search: "blue"}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 matches, got %d", total)
	}
	if got := fmt.Sprint(ids(items)); got != "[b a]" {
		t.Errorf("expected relevance order [b a], got %s", got)
	}
}

func TestListItemsFilters(t *testing.T) {
	s := NewMemoryStore()
	seedItem(t, s, "cheap", "Cheap Tee", "T-Shirt", 1, func(i *models.Item) {
		i.Price = price(5)
		i.Size = "M"
		i.Condition = "Good"
	})
	seedItem(t, s, "mid", "Mid Tee", "T-Shirt", 2, func(i *models.Item) {
		i.Price = price(20)
		i.Size = "L"
		i.Condition = "New"
	})
	seedItem(t, s, "dear", "Dear Coat", "Jacket", 3, func(i *models.Item) { i.Price = price(120) })
	seedItem(t, s, "noprice", "Mystery", "T-Shirt", 4, nil)

	tests := []struct {
		name string
		q    ItemQuery
		want string
	}{
		{"type", ItemQuery{Type: "T-Shirt"}, "[cheap mid noprice]"},
		{"all sentinel", ItemQuery{Type: "all", Size: "all", Condition: "all"}, "[cheap mid dear noprice]"},
		{"min only", ItemQuery{MinPrice: "20"}, "[mid dear]"},
		{"max only", ItemQuery{MaxPrice: "20"}, "[cheap mid]"},
		{"inclusive range", ItemQuery{MinPrice: "5", MaxPrice: "20"}, "[cheap mid]"},
		{"bad bound ignored", ItemQuery{MinPrice: "abc"}, "[cheap mid dear noprice]"},
		{"size", ItemQuery{Size: "L"}, "[mid]"},
		{"condition", ItemQuery{Condition: "Good"}, "[cheap]"},
		{"literal all is not a type", ItemQuery{Type: "All"}, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, _, err := s.ListItems(context.Background(), NewItemFilter(tt.q), pagination.Params{Page: 1, Limit: 10})
			if err != nil {
				t.Fatalf("ListItems: %v", err)
			}
			if got := fmt.Sprint(ids(items)); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSoftDeletedItemsExcluded(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedItem(t, s, "keep", "Blue Keep", "Jeans", 1, func(i *models.Item) { i.Price = price(10) })
	seedItem(t, s, "gone", "Blue Gone", "Jeans", 0, func(i *models.Item) { i.Price = price(10) })
	if err := s.SetItemActive(ctx, "gone", false); err != nil {
		t.Fatalf("SetItemActive: %v", err)
	}

	filters := []ItemFilter{
		{},
		{Type: "Jeans"},
		{Search: "blue"},
		NewItemFilter(ItemQuery{MinPrice: "0", MaxPrice: "100"}),
	}
	for _, f := range filters {
		items, total, _ := s.ListItems(ctx, f, pagination.Params{Page: 1, Limit: 10})
		if total != 1 || len(items) != 1 || items[0].ID != "keep" {
			t.Errorf("filter %+v: expected only 'keep', got %v", f, ids(items))
		}
	}

	stats, _ := s.ItemStats(ctx)
	if stats.TotalItems != 1 {
		t.Errorf("expected stats to count 1 active item, got %d", stats.TotalItems)
	}
	for _, r := range stats.RecentItems {
		if r.ID == "gone" {
			t.Error("soft-deleted item listed in recent items")
		}
	}

	// Still reachable by ID.
	got, err := s.GetItem(ctx, "gone")
	if err != nil || got.IsActive {
		t.Errorf("expected soft-deleted item fetchable and inactive, got %v %v", got, err)
	}
}

func TestListItemsPastLastPage(t *testing.T) {
	s := NewMemoryStore()
	for i := range 12 {
		seedItem(t, s, fmt.Sprintf("item-%02d", i), "Item", "Other", i, nil)
	}
	items, total, err := s.ListItems(context.Background(), ItemFilter{}, pagination.Params{Page: 5, Limit: 10})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 12 || len(items) != 0 {
		t.Errorf("expected empty page with total 12, got %d items total %d", len(items), total)
	}
	items, _, _ = s.ListItems(context.Background(), ItemFilter{}, pagination.Params{Page: 2, Limit: 10})
	if len(items) != 2 {
		t.Errorf("expected 2 items on page 2, got %d", len(items))
	}
}

func TestListPagesFarPastTheEnd(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	item := seedItem(t, s, "item-1", "Item", "Other", 0, nil)
	e := models.Enquiry{ID: "enq-1", ItemID: item.ID, CustomerName: "Jane", CustomerEmail: "jane@example.com", Status: models.EnquiryStatusPending, CreatedAt: baseTime}
	if err := s.CreateEnquiry(ctx, &e); err != nil {
		t.Fatalf("CreateEnquiry: %v", err)
	}

	p := pagination.Parse("9223372036854775807", "10")
	items, total, err := s.ListItems(ctx, ItemFilter{}, p)
	if err != nil || total != 1 || len(items) != 0 {
		t.Errorf("ListItems = %d items, total %d, err %v", len(items), total, err)
	}
	list, total, err := s.ListEnquiries(ctx, EnquiryFilter{}, p)
	if err != nil || total != 1 || len(list) != 0 {
		t.Errorf("ListEnquiries = %d, total %d, err %v", len(list), total, err)
	}

	// A skip close to the int limit must not overflow the slice end.
	items, _, err = s.ListItems(ctx, ItemFilter{}, pagination.Params{Page: 1, Limit: math.MaxInt})
	if err != nil || len(items) != 1 {
		t.Errorf("ListItems with huge limit = %d items, err %v", len(items), err)
	}
}

func TestItemStats(t *testing.T) {
	s := NewMemoryStore()
	for i := range 3 {
		seedItem(t, s, fmt.Sprintf("jeans-%d", i), "Jeans", "Jeans", i+10, nil)
	}
	for i := range 4 {
		seedItem(t, s, fmt.Sprintf("dress-%d", i), "Dress", "Dress", i, nil)
	}
	seedItem(t, s, "coat", "Coat", "Jacket", 30, nil)

	stats, err := s.ItemStats(context.Background())
	if err != nil {
		t.Fatalf("ItemStats: %v", err)
	}
	if stats.TotalItems != 8 {
		t.Errorf("expected 8 items, got %d", stats.TotalItems)
	}
	if len(stats.TypeStats) != 3 || stats.TypeStats[0].Type != "Dress" || stats.TypeStats[0].Count != 4 {
		t.Errorf("expected Dress first with 4, got %+v", stats.TypeStats)
	}
	if len(stats.RecentItems) != RecentItemsLimit {
		t.Fatalf("expected %d recent items, got %d", RecentItemsLimit, len(stats.RecentItems))
	}
	if stats.RecentItems[0].ID != "dress-0" {
		t.Errorf("expected most recent item first, got %s", stats.RecentItems[0].ID)
	}
}

func TestUpdateAndMissingItem(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	item := seedItem(t, s, "x", "Name", "Other", 0, nil)

	item.Name = "Changed"
	if err := s.UpdateItem(ctx, &item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got, _ := s.GetItem(ctx, "x")
	if got.Name != "Changed" {
		t.Errorf("expected updated name, got %q", got.Name)
	}

	missing := models.Item{ID: "nope"}
	if err := s.UpdateItem(ctx, &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetItem(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetItemActive(ctx, "nope", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEnquiriesListing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seedItem(t, s, "item-1", "Blue Shirt", "T-Shirt", 0, nil)

	for i, status := range []string{"pending", "closed", "pending"} {
		e := models.Enquiry{
			ID:            fmt.Sprintf("enq-%d", i),
			ItemID:        "item-1",
			CustomerName:  "Jane",
			CustomerEmail: "jane@example.com",
			Status:        status,
			CreatedAt:     baseTime.Add(time.Duration(i) * time.Minute),
		}
		if err := s.CreateEnquiry(ctx, &e); err != nil {
			t.Fatalf("CreateEnquiry: %v", err)
		}
	}
	dangling := models.Enquiry{ID: "enq-x", ItemID: "deleted-item", Status: "pending", CreatedAt: baseTime.Add(-time.Hour)}
	if err := s.CreateEnquiry(ctx, &dangling); err != nil {
		t.Fatalf("CreateEnquiry: %v", err)
	}

	list, total, err := s.ListEnquiries(ctx, EnquiryFilter{Status: "pending"}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListEnquiries: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 pending enquiries, got %d", total)
	}
	if list[0].ID != "enq-2" {
		t.Errorf("expected newest first, got %s", list[0].ID)
	}
	if list[0].Item == nil || list[0].Item.Name != "Blue Shirt" {
		t.Errorf("expected item projection, got %+v", list[0].Item)
	}
	if last := list[len(list)-1]; last.ID != "enq-x" || last.Item != nil {
		t.Errorf("expected dangling enquiry with nil item last, got %+v", last)
	}

	at := baseTime.Add(time.Hour)
	if err := s.MarkEnquiryEmailSent(ctx, "enq-0", at); err != nil {
		t.Fatalf("MarkEnquiryEmailSent: %v", err)
	}
	all, _, _ := s.ListEnquiries(ctx, EnquiryFilter{}, pagination.Params{Page: 1, Limit: 10})
	for _, e := range all {
		if e.ID == "enq-0" && (!e.EmailSent || e.EmailSentAt == nil || !e.EmailSentAt.Equal(at)) {
			t.Errorf("expected emailSent recorded, got %+v", e.Enquiry)
		}
	}
	if err := s.MarkEnquiryEmailSent(ctx, "missing", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
