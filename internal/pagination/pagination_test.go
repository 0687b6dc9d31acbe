package pagination

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		page, limit string
		want        Params
	}{
		{"absent", "", "", Params{1, 10}},
		{"valid", "3", "25", Params{3, 25}},
		{"garbage", "abc", "x1", Params{1, 10}},
		{"zero", "0", "0", Params{1, 10}},
		{"negative", "-2", "-5", Params{1, 10}},
		{"spaces", " 2 ", " 4 ", Params{2, 4}},
		{"limit clamped", "1", "4000000000000", Params{1, MaxLimit}},
		{"limit at max", "1", "100", Params{1, 100}},
		{"limit beyond int64", "1", "99999999999999999999", Params{1, 10}},
		{"page at int64 max", "9223372036854775807", "10", Params{math.MaxInt64, 10}},
		{"page beyond int64", "99999999999999999999", "10", Params{1, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.page, tt.limit); got != tt.want {
				t.Errorf("Parse(%q, %q) = %+v, want %+v", tt.page, tt.limit, got, tt.want)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	if got := (Params{Page: 3, Limit: 10}).Skip(); got != 20 {
		t.Errorf("expected skip 20, got %d", got)
	}
	if got := (Params{Page: 1, Limit: 10}).Skip(); got != 0 {
		t.Errorf("expected skip 0, got %d", got)
	}
}

func TestSkipSaturates(t *testing.T) {
	tests := []Params{
		{Page: math.MaxInt, Limit: 10},
		{Page: math.MaxInt/10 + 2, Limit: 10},
		{Page: math.MaxInt, Limit: MaxLimit},
	}
	for _, p := range tests {
		if got := p.Skip(); got != math.MaxInt {
			t.Errorf("%+v: expected saturated skip, got %d", p, got)
		}
	}
	if got := (Params{Page: math.MaxInt/10 + 1, Limit: 10}).Skip(); got != (math.MaxInt/10)*10 {
		t.Errorf("largest exact skip = %d", got)
	}
}

func TestEnvelopeHugePage(t *testing.T) {
	env := NewEnvelope(Parse("9223372036854775807", "10"), 12)
	if env.TotalPages != 2 || env.HasNext || !env.HasPrev || env.CurrentPage != math.MaxInt64 {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestEnvelopePastLastPage(t *testing.T) {
	env := NewEnvelope(Params{Page: 5, Limit: 10}, 12)
	if env.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", env.TotalPages)
	}
	if env.HasNext {
		t.Error("expected hasNext=false past the last page")
	}
	if !env.HasPrev {
		t.Error("expected hasPrev=true past the last page")
	}
	if env.CurrentPage != 5 || env.TotalItems != 12 {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestEnvelopeEmpty(t *testing.T) {
	env := NewEnvelope(Params{Page: 1, Limit: 10}, 0)
	if env.TotalPages != 0 || env.HasNext || env.HasPrev {
		t.Errorf("unexpected envelope for empty set %+v", env)
	}
}

func TestEnvelopeConsistency(t *testing.T) {
	for total := int64(0); total <= 55; total++ {
		for limit := 1; limit <= 12; limit++ {
			for page := 1; page <= 8; page++ {
				env := NewEnvelope(Params{Page: page, Limit: limit}, total)
				want := int(math.Ceil(float64(total) / float64(limit)))
				if env.TotalPages != want {
					t.Fatalf("total=%d limit=%d: totalPages %d, want %d", total, limit, env.TotalPages, want)
				}
				if env.HasNext != (page < want) {
					t.Fatalf("total=%d limit=%d page=%d: hasNext %v", total, limit, page, env.HasNext)
				}
				if env.HasPrev != (page > 1) {
					t.Fatalf("page=%d: hasPrev %v", page, env.HasPrev)
				}
			}
		}
	}
}
