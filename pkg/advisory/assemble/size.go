package assemble

import "content-advisor-be/pkg/store"

// Per-message framing overhead on top of the chars/4 token estimate.
const messageOverhead = 3

// EstimateText approximates the token cost of a string. The chars/4 heuristic
// tracks GPT-family tokenizers closely enough for budgeting.
func EstimateText(text string) int {
	return len(text)/4 + messageOverhead
}

// EstimateItemSize approximates the token cost of one packed evidence item as
// it will appear in the prompt.
func EstimateItemSize(item store.EvidenceItem) int {
	return EstimateText(item.Title) + EstimateText(item.Snippet)
}

// EstimateTurnSize approximates the token cost of one history turn (query
// plus answer).
func EstimateTurnSize(turn store.Turn) int {
	return EstimateText(turn.Query) + EstimateText(turn.Answer)
}
