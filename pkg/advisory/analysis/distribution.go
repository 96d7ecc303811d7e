// Package analysis turns raw category counts into the distribution summaries
// the generator feeds to the model: shares, concentration, and gaps.
package analysis

import (
	"fmt"
	"strings"

	"content-advisor-be/internal/repository/contract"
)

// Concentration thresholds on the leading value's share.
const (
	heavyConcentration   = 70.0
	notableConcentration = 40.0

	// A value with this many items or fewer counts as a coverage gap.
	gapCountCeiling = 2

	topShareLimit = 5
	topGapLimit   = 3
)

type DistributionItem struct {
	Value   string  `json:"value"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent"`
}

// DistributionSummary describes how a tenant's content spreads across one
// category dimension.
type DistributionSummary struct {
	Field         string             `json:"field"`
	Items         []DistributionItem `json:"items"`
	TotalItems    int64              `json:"total_items"`
	Concentration string             `json:"concentration,omitempty"` // "heavy" | "notable" | ""
	Gaps          []string           `json:"gaps,omitempty"`
}

// Summarize computes shares, concentration, and gaps from grouped counts.
// Counts are expected in descending order, as CountByCategory returns them.
func Summarize(field string, counts []contract.CategoryCount) DistributionSummary {
	summary := DistributionSummary{Field: field}

	for _, c := range counts {
		summary.TotalItems += c.Count
	}

	for _, c := range counts {
		var percent float64
		if summary.TotalItems > 0 {
			percent = float64(c.Count) * 100 / float64(summary.TotalItems)
		}
		summary.Items = append(summary.Items, DistributionItem{
			Value:   c.Value,
			Count:   c.Count,
			Percent: percent,
		})
		if c.Count <= gapCountCeiling && len(summary.Gaps) < topGapLimit {
			summary.Gaps = append(summary.Gaps, c.Value)
		}
	}

	if len(summary.Items) > 0 {
		switch lead := summary.Items[0].Percent; {
		case lead >= heavyConcentration:
			summary.Concentration = "heavy"
		case lead >= notableConcentration:
			summary.Concentration = "notable"
		}
	}

	return summary
}

// PromptLine renders the summary as one compact line for the generator
// prompt: top shares, concentration, and gaps.
func (s DistributionSummary) PromptLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d items", s.Field, s.TotalItems)

	limit := topShareLimit
	if len(s.Items) < limit {
		limit = len(s.Items)
	}
	if limit > 0 {
		b.WriteString("; top: ")
		for i := 0; i < limit; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %d (%.0f%%)", s.Items[i].Value, s.Items[i].Count, s.Items[i].Percent)
		}
	}
	if s.Concentration != "" {
		fmt.Fprintf(&b, "; concentration: %s", s.Concentration)
	}
	if len(s.Gaps) > 0 {
		fmt.Fprintf(&b, "; gaps: %s", strings.Join(s.Gaps, ", "))
	}
	return b.String()
}
