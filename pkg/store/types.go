package store

import "time"

// Evidence channels. Every evidence item records which retrieval channel
// produced it; dedup keeps the vector copy when both channels return the
// same record.
const (
	ChannelStructured = "STRUCTURED"
	ChannelVector     = "VECTOR"
)

// Intent routes and operations, mirroring the interpreter output.
const (
	RouteCatalog  = "catalog"
	RouteAdvisory = "advisory"

	OpList         = "list"
	OpDistribution = "distribution"
	OpSemantic     = "semantic"
	OpPureAdvisory = "pure_advisory"
)

// Confidence levels attached to intents and responses.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// TimeRange bounds createdAt for structured retrieval. Zero values mean
// unbounded on that side.
type TimeRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

func (r TimeRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// CategoryFilter holds include/exclude values for one category dimension
// (e.g. funnel_stage: include ["awareness"]).
type CategoryFilter struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Pagination for structured catalog queries. Limit 0 means count-only.
type Pagination struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// StructuredIntent is the interpreter's normalized view of a raw query.
type StructuredIntent struct {
	Route         string                    `json:"route"`
	Operation     string                    `json:"operation"`
	Confidence    string                    `json:"confidence"`
	Filters       map[string]CategoryFilter `json:"filters,omitempty"`
	TimeRange     TimeRange                 `json:"time_range,omitempty"`
	MarketingOnly bool                      `json:"marketing_only"`
	IsNegation    bool                      `json:"is_negation"`
	SemanticTerms []string                  `json:"semantic_terms,omitempty"`
	Distribution  []string                  `json:"distribution_fields,omitempty"`
	Pagination    Pagination                `json:"pagination"`
	Description   string                    `json:"description,omitempty"`

	// RawQuery after coreference resolution; what the semantic channel embeds.
	ResolvedQuery string `json:"resolved_query"`
}

// EvidenceItem is one retrieved content record, normalized across channels.
// Score is only meaningful for ChannelVector items.
type EvidenceItem struct {
	RecordID string                 `json:"record_id"`
	Title    string                 `json:"title"`
	Snippet  string                 `json:"snippet"`
	URL      string                 `json:"url,omitempty"`
	Channel  string                 `json:"channel"`
	Score    float32                `json:"score,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// RetrievalResult is the merged output of both channels.
type RetrievalResult struct {
	Items    []EvidenceItem `json:"items"`
	Degraded bool           `json:"degraded"`

	// FailedChannel names the channel that failed when Degraded is set.
	FailedChannel string `json:"failed_channel,omitempty"`
}

// EvidenceRef is the persisted trace of a cited evidence item: record id and
// similarity score only, never the snippet text, so session history stays
// bounded. Score is zero for structured-channel evidence.
type EvidenceRef struct {
	RecordID string  `json:"record_id"`
	Score    float32 `json:"score,omitempty"`
}

// Turn is one completed query/answer exchange. Only successful pipeline runs
// produce turns.
type Turn struct {
	Query     string           `json:"query"`
	Intent    StructuredIntent `json:"intent"`
	Answer    string           `json:"answer"`
	Citations []EvidenceRef    `json:"citations,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Session is the per-conversation state held by the state manager.
type Session struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// RecentTurns returns up to n most recent turns, oldest first.
func (s *Session) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	if len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// AssembledContext is the budgeted input handed to the generator.
type AssembledContext struct {
	Intent               StructuredIntent `json:"intent"`
	Evidence             []EvidenceItem   `json:"evidence"`
	History              []Turn           `json:"history"`
	TotalSize            int              `json:"total_size"`
	InsufficientEvidence bool             `json:"insufficient_evidence"`
	Degraded             bool             `json:"degraded"`
}
