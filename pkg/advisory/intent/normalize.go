package intent

import (
	"strings"
	"time"

	"content-advisor-be/pkg/store"
)

// Aliases the model (or users) tend to produce for category dimensions.
var fieldAliases = map[string]string{
	"type":         "content_type",
	"contenttype":  "content_type",
	"content type": "content_type",
	"geo":          "geo_focus",
	"region":       "geo_focus",
	"location":     "geo_focus",
	"audience":     "primary_audience",
	"funnel":       "funnel_stage",
	"stage":        "funnel_stage",
	"page":         "page_type",
}

func normalizeField(field string) string {
	key := strings.ToLower(strings.TrimSpace(field))
	if canonical, ok := fieldAliases[key]; ok {
		return canonical
	}
	return strings.ReplaceAll(key, " ", "_")
}

func parseTimeRange(from, to string) store.TimeRange {
	var tr store.TimeRange
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(from)); err == nil {
		tr.From = t
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(to)); err == nil {
		// Inclusive end of day
		tr.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return tr
}

// stop words excluded from keyword fallback terms
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true, "on": true,
	"for": true, "to": true, "and": true, "or": true, "is": true, "are": true,
	"what": true, "which": true, "how": true, "do": true, "does": true,
	"i": true, "my": true, "we": true, "our": true, "me": true, "have": true,
	"show": true, "list": true, "about": true, "with": true, "that": true,
	"this": true, "content": true, "pieces": true,
}

// keywordTerms extracts the meaningful words from a query for the fallback
// semantic intent.
func keywordTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})

	var terms []string
	seen := make(map[string]bool)
	for _, f := range fields {
		if len(f) < 3 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}
