package assemble

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"content-advisor-be/pkg/store"
)

func newTestAssembler() *Assembler {
	return NewAssembler(log.New(io.Discard, "", 0))
}

func vectorItem(id string, score float32, size int) store.EvidenceItem {
	return store.EvidenceItem{
		RecordID: id,
		Title:    id,
		Snippet:  strings.Repeat("x", size*4), // roughly `size` estimated tokens
		Channel:  store.ChannelVector,
		Score:    score,
	}
}

func structuredItem(id string, size int) store.EvidenceItem {
	return store.EvidenceItem{
		RecordID: id,
		Title:    id,
		Snippet:  strings.Repeat("x", size*4),
		Channel:  store.ChannelStructured,
	}
}

func turnAt(offset time.Duration, query, answer string) store.Turn {
	return store.Turn{
		Query:     query,
		Answer:    answer,
		CreatedAt: time.Now().Add(offset),
	}
}

func TestExecuteRanking(t *testing.T) {
	retrieval := &store.RetrievalResult{
		Items: []store.EvidenceItem{
			structuredItem("s1", 10),
			vectorItem("v-low", 0.4, 10),
			structuredItem("s2", 10),
			vectorItem("v-high", 0.9, 10),
		},
	}

	assembled := newTestAssembler().Execute(
		&store.StructuredIntent{Operation: store.OpList},
		retrieval, nil, DefaultConfig())

	wantOrder := []string{"v-high", "v-low", "s1", "s2"}
	if len(assembled.Evidence) != len(wantOrder) {
		t.Fatalf("len(Evidence) = %d, want %d", len(assembled.Evidence), len(wantOrder))
	}
	for i, want := range wantOrder {
		if assembled.Evidence[i].RecordID != want {
			t.Errorf("Evidence[%d] = %s, want %s", i, assembled.Evidence[i].RecordID, want)
		}
	}
}

func TestExecuteBudgetInvariants(t *testing.T) {
	config := Config{Budget: 100, EvidenceFraction: 0.7, MinEvidence: 1}

	// Far more evidence than fits in the 70-token evidence budget
	var items []store.EvidenceItem
	for i := 0; i < 20; i++ {
		items = append(items, vectorItem(strings.Repeat("v", i+1), float32(20-i)/20, 15))
	}

	history := []store.Turn{
		turnAt(-2*time.Minute, "earlier question", "earlier answer"),
		turnAt(-1*time.Minute, "recent question", "recent answer"),
	}

	assembled := newTestAssembler().Execute(
		&store.StructuredIntent{Operation: store.OpSemantic},
		&store.RetrievalResult{Items: items}, history, config)

	evidenceBudget := int(float64(config.Budget) * config.EvidenceFraction)
	evidenceUsed := 0
	for _, item := range assembled.Evidence {
		evidenceUsed += EstimateItemSize(item)
	}
	if evidenceUsed > evidenceBudget {
		t.Errorf("evidence size %d exceeds evidence budget %d", evidenceUsed, evidenceBudget)
	}
	if assembled.TotalSize > config.Budget {
		t.Errorf("TotalSize %d exceeds budget %d", assembled.TotalSize, config.Budget)
	}
	if len(assembled.Evidence) == 0 {
		t.Error("expected at least one packed item")
	}
	if assembled.InsufficientEvidence {
		t.Error("InsufficientEvidence should be false when items packed")
	}
}

func TestExecuteGreedySkipsOversized(t *testing.T) {
	config := Config{Budget: 100, EvidenceFraction: 0.7, MinEvidence: 1}

	retrieval := &store.RetrievalResult{
		Items: []store.EvidenceItem{
			vectorItem("huge", 0.9, 200), // alone exceeds the evidence budget
			vectorItem("small", 0.5, 10),
		},
	}

	assembled := newTestAssembler().Execute(
		&store.StructuredIntent{Operation: store.OpSemantic},
		retrieval, nil, config)

	if len(assembled.Evidence) != 1 || assembled.Evidence[0].RecordID != "small" {
		t.Errorf("Evidence = %v, want the smaller item packed despite lower rank", assembled.Evidence)
	}
}

func TestExecuteHistoryNewestFirstWholeTurns(t *testing.T) {
	config := Config{Budget: 60, EvidenceFraction: 0.5, MinEvidence: 0}

	// No evidence; history budget is the full 60
	big := strings.Repeat("w", 400) // ~103 tokens as a turn, never fits
	history := []store.Turn{
		turnAt(-3*time.Minute, big, big),
		turnAt(-2*time.Minute, "q2", "a2"),
		turnAt(-1*time.Minute, "q3", "a3"),
	}

	assembled := newTestAssembler().Execute(
		&store.StructuredIntent{Operation: store.OpList},
		&store.RetrievalResult{}, history, config)

	// Newest two fit; the oversized oldest stops the walk anyway
	if len(assembled.History) != 2 {
		t.Fatalf("len(History) = %d, want 2", len(assembled.History))
	}
	// Kept turns come back in chronological order
	if assembled.History[0].Query != "q2" || assembled.History[1].Query != "q3" {
		t.Errorf("History order = [%s, %s], want [q2, q3]",
			assembled.History[0].Query, assembled.History[1].Query)
	}
}

func TestExecuteHistoryStopsAtFirstNonFit(t *testing.T) {
	config := Config{Budget: 40, EvidenceFraction: 0.5, MinEvidence: 0}

	big := strings.Repeat("w", 200)
	history := []store.Turn{
		turnAt(-3*time.Minute, "q1", "a1"), // would fit, but sits behind the big one
		turnAt(-2*time.Minute, big, big),
		turnAt(-1*time.Minute, "q3", "a3"),
	}

	assembled := newTestAssembler().Execute(
		&store.StructuredIntent{Operation: store.OpList},
		&store.RetrievalResult{}, history, config)

	if len(assembled.History) != 1 || assembled.History[0].Query != "q3" {
		t.Errorf("History = %v, want only the newest turn", assembled.History)
	}
}

func TestExecuteInsufficientEvidence(t *testing.T) {
	assembled := newTestAssembler().Execute(
		&store.StructuredIntent{Operation: store.OpSemantic},
		&store.RetrievalResult{}, nil,
		Config{Budget: 3000, EvidenceFraction: 0.7, MinEvidence: 1})

	if !assembled.InsufficientEvidence {
		t.Error("empty retrieval must set InsufficientEvidence")
	}
}

func TestExecuteCarriesDegradedFlag(t *testing.T) {
	assembled := newTestAssembler().Execute(
		&store.StructuredIntent{Operation: store.OpSemantic},
		&store.RetrievalResult{Degraded: true, FailedChannel: store.ChannelVector},
		nil, DefaultConfig())

	if !assembled.Degraded {
		t.Error("Degraded flag must survive assembly")
	}
}

func TestEstimateText(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 3},
		{"abcd", 4},
		{strings.Repeat("x", 40), 13},
	}
	for _, tt := range tests {
		if got := EstimateText(tt.text); got != tt.want {
			t.Errorf("EstimateText(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}
