// Package pagination turns page/limit query values into offsets and builds the
// pagination envelope returned next to every listing.
package pagination

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
)

// Params is a resolved page request. Page is always >= 1 and Limit is within
// [1, MaxLimit].
type Params struct {
	Page  int
	Limit int
}

// Parse resolves raw page/limit values, falling back to the defaults when a
// value is absent, not an integer, or below 1. Limits above MaxLimit are
// clamped.
func Parse(page, limit string) Params {
	return Params{
		Page:  parsePositive(page, DefaultPage),
		Limit: min(parsePositive(limit, DefaultLimit), MaxLimit),
	}
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Skip is the number of records before the requested page. It saturates at
// math.MaxInt instead of overflowing, so a huge page is simply past the end.
func (p Params) Skip() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Envelope describes where a page sits within the full result set.
type Envelope struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewEnvelope builds the envelope for p given the total number of matches.
// A page past the end is still described correctly; it simply holds no data.
func NewEnvelope(p Params, total int64) Envelope {
	limit := int64(p.Limit)
	if limit < 1 {
		limit = DefaultLimit
	}
	totalPages := int((total + limit - 1) / limit)
	return Envelope{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     p.Page < totalPages,
		HasPrev:     p.Page > 1,
	}
}
