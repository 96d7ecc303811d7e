package assemble

import (
	"log"
	"sort"

	"content-advisor-be/pkg/store"
)

// Config encapsulates context budgeting parameters. Budget is in estimated
// tokens; EvidenceFraction caps how much of it evidence may consume, the
// remainder is available for conversation history.
type Config struct {
	Budget           int
	EvidenceFraction float64
	MinEvidence      int // below this packed count the context is flagged insufficient
}

// DefaultConfig returns default assembly configuration
func DefaultConfig() Config {
	return Config{
		Budget:           3000,
		EvidenceFraction: 0.7,
		MinEvidence:      1,
	}
}

// Assembler ranks retrieved evidence and packs it with conversation history
// into a bounded context.
type Assembler struct {
	logger *log.Logger
}

// NewAssembler creates a new context assembler
func NewAssembler(logger *log.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Execute builds the AssembledContext. The invariants:
//   - packed evidence size <= Budget * EvidenceFraction
//   - TotalSize <= Budget
//   - evidence is ranked vector-first by descending score, then structured
//     items in retrieval order
//   - history turns are packed whole, most recent first, into the remainder
func (a *Assembler) Execute(
	intent *store.StructuredIntent,
	retrieval *store.RetrievalResult,
	history []store.Turn,
	config Config,
) *store.AssembledContext {

	ranked := rankEvidence(retrieval.Items)

	evidenceBudget := int(float64(config.Budget) * config.EvidenceFraction)

	var packed []store.EvidenceItem
	evidenceUsed := 0
	for _, item := range ranked {
		size := EstimateItemSize(item)
		if evidenceUsed+size > evidenceBudget {
			continue // item doesn't fit whole; try smaller lower-ranked ones
		}
		packed = append(packed, item)
		evidenceUsed += size
	}

	// History fills what the evidence left over, newest turns first. A turn
	// goes in whole or not at all; once one doesn't fit, older ones won't.
	historyBudget := config.Budget - evidenceUsed
	var keptTurns []store.Turn
	historyUsed := 0
	for i := len(history) - 1; i >= 0; i-- {
		size := EstimateTurnSize(history[i])
		if historyUsed+size > historyBudget {
			break
		}
		keptTurns = append(keptTurns, history[i])
		historyUsed += size
	}
	// Restore chronological order for the prompt
	sort.SliceStable(keptTurns, func(i, j int) bool {
		return keptTurns[i].CreatedAt.Before(keptTurns[j].CreatedAt)
	})

	assembled := &store.AssembledContext{
		Intent:               *intent,
		Evidence:             packed,
		History:              keptTurns,
		TotalSize:            evidenceUsed + historyUsed,
		InsufficientEvidence: len(packed) < config.MinEvidence,
		Degraded:             retrieval.Degraded,
	}

	a.logger.Printf("[ASSEMBLE] evidence=%d/%d (size %d/%d) history=%d/%d total=%d/%d insufficient=%v",
		len(packed), len(ranked), evidenceUsed, evidenceBudget,
		len(keptTurns), len(history), assembled.TotalSize, config.Budget,
		assembled.InsufficientEvidence)

	return assembled
}

// rankEvidence orders vector-matched items by descending score ahead of
// structured items, which keep their retrieval (recency) order.
func rankEvidence(items []store.EvidenceItem) []store.EvidenceItem {
	var vector, structured []store.EvidenceItem
	for _, item := range items {
		if item.Channel == store.ChannelVector {
			vector = append(vector, item)
		} else {
			structured = append(structured, item)
		}
	}

	sort.SliceStable(vector, func(i, j int) bool {
		return vector[i].Score > vector[j].Score
	})

	return append(vector, structured...)
}
