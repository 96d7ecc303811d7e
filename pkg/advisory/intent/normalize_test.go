package intent

import (
	"reflect"
	"testing"
	"time"
)

func TestNormalizeField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"type", "content_type"},
		{"Content Type", "content_type"},
		{"geo", "geo_focus"},
		{"region", "geo_focus"},
		{"audience", "primary_audience"},
		{"funnel", "funnel_stage"},
		{"page", "page_type"},
		{"topic", "topic"},
		{"Funnel Stage", "funnel_stage"},
		{"some other field", "some_other_field"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeField(tt.in); got != tt.want {
				t.Errorf("normalizeField(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimeRange(t *testing.T) {
	tr := parseTimeRange("2026-03-01", "2026-03-31")

	wantFrom := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !tr.From.Equal(wantFrom) {
		t.Errorf("From = %v, want %v", tr.From, wantFrom)
	}

	// End bound is inclusive through the whole day
	if !tr.To.After(time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("To = %v, want end of 2026-03-31", tr.To)
	}
	if !tr.To.Before(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("To = %v spills into the next day", tr.To)
	}
}

func TestParseTimeRangeInvalid(t *testing.T) {
	tr := parseTimeRange("not-a-date", "")
	if !tr.IsZero() {
		t.Errorf("expected zero range, got %+v", tr)
	}
}

func TestKeywordTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "strips stop words and short tokens",
			query: "What blog posts do we have about pricing?",
			want:  []string{"blog", "posts", "pricing"},
		},
		{
			name:  "deduplicates",
			query: "pricing pricing pricing strategy",
			want:  []string{"pricing", "strategy"},
		},
		{
			name:  "all stop words",
			query: "what do we have",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keywordTerms(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("keywordTerms(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
