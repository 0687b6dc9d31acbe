package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ItemTypes lists the clothing categories an item may belong to.
var ItemTypes = []string{
	"T-Shirt", "Jeans", "Dress", "Jacket", "Sweater", "Shorts",
	"Skirt", "Blouse", "Pants", "Hoodie", "Other",
}

// ItemSizes lists accepted sizes. An empty size is also accepted.
var ItemSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "One Size"}

// ItemConditions lists accepted conditions. An empty condition is also accepted.
var ItemConditions = []string{"New", "Like New", "Good", "Fair", "Poor"}

// Item is a catalog entry for one clothing article.
// IsActive=false marks the item as soft-deleted.
type Item struct {
	ID               string    `json:"_id" bson:"_id"`
	Name             string    `json:"name" bson:"name" validate:"required,max=100"`
	Type             string    `json:"type" bson:"type" validate:"required,itemtype"`
	Description      string    `json:"description" bson:"description" validate:"required,max=1000"`
	CoverImage       string    `json:"coverImage" bson:"coverImage" validate:"required,max=512"`
	AdditionalImages []string  `json:"additionalImages" bson:"additionalImages"`
	DateAdded        time.Time `json:"dateAdded" bson:"dateAdded"`
	IsActive         bool      `json:"isActive" bson:"isActive"`
	Tags             []string  `json:"tags" bson:"tags"`
	Price            *float64  `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,gte=0"`
	Size             string    `json:"size" bson:"size" validate:"omitempty,itemsize"`
	Color            string    `json:"color" bson:"color" validate:"max=64"`
	Brand            string    `json:"brand" bson:"brand" validate:"max=100"`
	Condition        string    `json:"condition" bson:"condition" validate:"omitempty,itemcondition"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TotalImages counts the cover image plus every additional image.
func (i Item) TotalImages() int {
	return 1 + len(i.AdditionalImages)
}

// MarshalJSON adds the derived totalImages field.
func (i Item) MarshalJSON() ([]byte, error) {
	type item Item
	out := struct {
		item
		TotalImages int `json:"totalImages"`
	}{item: item(i), TotalImages: i.TotalImages()}
	if out.AdditionalImages == nil {
		out.AdditionalImages = []string{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return json.Marshal(out)
}

// Normalize trims free-text fields and cleans up the tag set.
func (i *Item) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Description = strings.TrimSpace(i.Description)
	i.Color = strings.TrimSpace(i.Color)
	i.Brand = strings.TrimSpace(i.Brand)
	i.Tags = CleanTags(i.Tags)
	if i.AdditionalImages == nil {
		i.AdditionalImages = []string{}
	}
}

// CleanTags trims tags, drops empties and removes duplicates while keeping order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ItemPatch carries the fields of a partial item update. Nil fields are left unchanged.
type ItemPatch struct {
	Name             *string
	Type             *string
	Description      *string
	CoverImage       *string
	AdditionalImages []string
	ReplaceImages    bool
	IsActive         *bool
	Tags             []string
	ReplaceTags      bool
	Price            *float64
	Size             *string
	Color            *string
	Brand            *string
	Condition        *string
}

// Apply copies the set fields of p onto item.
func (p ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.CoverImage != nil {
		item.CoverImage = *p.CoverImage
	}
	if p.ReplaceImages {
		item.AdditionalImages = p.AdditionalImages
	}
	if p.IsActive != nil {
		item.IsActive = *p.IsActive
	}
	if p.ReplaceTags {
		item.Tags = p.Tags
	}
	if p.Price != nil {
		price := *p.Price
		item.Price = &price
	}
	if p.Size != nil {
		item.Size = *p.Size
	}
	if p.Color != nil {
		item.Color = *p.Color
	}
	if p.Brand != nil {
		item.Brand = *p.Brand
	}
	if p.Condition != nil {
		item.Condition = *p.Condition
	}
}

// ItemRef is the shallow item projection shown next to an enquiry.
type ItemRef struct {
	ID         string `json:"_id" bson:"_id"`
	Name       string `json:"name" bson:"name"`
	Type       string `json:"type" bson:"type"`
	CoverImage string `json:"coverImage" bson:"coverImage"`
}

// TypeCount is the number of active items of one type.
type TypeCount struct {
	Type  string `json:"type" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// RecentItem is the trimmed item shape listed in statistics.
type RecentItem struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Type      string    `json:"type" bson:"type"`
	DateAdded time.Time `json:"dateAdded" bson:"dateAdded"`
}

// ItemStats aggregates the active catalog.
type ItemStats struct {
	TotalItems  int64        `json:"totalItems"`
	TypeStats   []TypeCount  `json:"typeStats"`
	RecentItems []RecentItem `json:"recentItems"`
}
