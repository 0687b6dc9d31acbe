package store

import (
	"math"
	"strconv"
	"strings"
)

// AllValue means "no filter" for type, size and condition.
const AllValue = "all"

// ItemQuery holds the raw filter values from a request.
type ItemQuery struct {
	Type      string
	Size      string
	Condition string
	Search    string
	MinPrice  string
	MaxPrice  string
}

// ItemFilter narrows item listings. Empty strings and nil bounds do not filter.
type ItemFilter struct {
	Type      string
	Size      string
	Condition string
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
}

// NewItemFilter resolves raw query values into a filter. "all" disables an
// enum filter and unparsable price bounds are ignored.
func NewItemFilter(q ItemQuery) ItemFilter {
	return ItemFilter{
		Type:      enumValue(q.Type),
		Size:      enumValue(q.Size),
		Condition: enumValue(q.Condition),
		Search:    strings.TrimSpace(q.Search),
		MinPrice:  parseBound(q.MinPrice),
		MaxPrice:  parseBound(q.MaxPrice),
	}
}

func enumValue(v string) string {
	v = strings.TrimSpace(v)
	if v == AllValue {
		return ""
	}
	return v
}

func parseBound(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// HasSearch reports whether results are ranked by text relevance instead of recency.
func (f ItemFilter) HasSearch() bool {
	return f.Search != ""
}

// EnquiryFilter narrows enquiry listings.
type EnquiryFilter struct {
	Status string
}
