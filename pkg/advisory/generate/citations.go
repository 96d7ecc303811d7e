package generate

import (
	"regexp"
	"strconv"
	"strings"

	"content-advisor-be/pkg/store"
)

var citationMarker = regexp.MustCompile(`\[E(\d+)\]`)

// extractCitations resolves inline [E#] markers against the packed evidence.
// Markers outside the packed range are ignored; each record is cited once, in
// first-mention order, carrying the evidence item's similarity score.
func extractCitations(answer string, evidence []store.EvidenceItem) []store.EvidenceRef {
	matches := citationMarker.FindAllStringSubmatch(answer, -1)
	if len(matches) == 0 {
		return nil
	}

	var citations []store.EvidenceRef
	seen := make(map[string]bool)
	for _, m := range matches {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > len(evidence) {
			continue
		}
		item := evidence[idx-1]
		if seen[item.RecordID] {
			continue
		}
		seen[item.RecordID] = true
		citations = append(citations, store.EvidenceRef{RecordID: item.RecordID, Score: item.Score})
	}
	return citations
}

// stripDanglingMarkers removes markers pointing outside the packed evidence
// so the user never sees a citation that resolves to nothing.
func stripDanglingMarkers(answer string, evidenceCount int) string {
	cleaned := citationMarker.ReplaceAllStringFunc(answer, func(marker string) string {
		idx, err := strconv.Atoi(citationMarker.FindStringSubmatch(marker)[1])
		if err != nil || idx < 1 || idx > evidenceCount {
			return ""
		}
		return marker
	})
	return strings.TrimSpace(cleaned)
}
