package intent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"content-advisor-be/pkg/advisory"
	"content-advisor-be/pkg/llm"
	"content-advisor-be/pkg/store"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestInterpretEmptyQuery(t *testing.T) {
	interp := NewInterpreter(&stubLLM{}, testLogger())

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := interp.Interpret(context.Background(), query, nil)

		var parseErr *advisory.IntentParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("Interpret(%q) error = %v, want IntentParseError", query, err)
		}
	}
}

func TestInterpretModelFailureFallsBack(t *testing.T) {
	interp := NewInterpreter(&stubLLM{err: fmt.Errorf("connection refused")}, testLogger())

	got, err := interp.Interpret(context.Background(), "blog posts about pricing strategy", nil)
	if err != nil {
		t.Fatalf("Interpret returned error on model failure: %v", err)
	}

	if got.Operation != store.OpSemantic {
		t.Errorf("Operation = %q, want %q", got.Operation, store.OpSemantic)
	}
	if got.Confidence != store.ConfidenceLow {
		t.Errorf("Confidence = %q, want %q", got.Confidence, store.ConfidenceLow)
	}
	if len(got.SemanticTerms) == 0 {
		t.Error("expected keyword terms in fallback intent")
	}
	if got.ResolvedQuery != "blog posts about pricing strategy" {
		t.Errorf("ResolvedQuery = %q, want raw query", got.ResolvedQuery)
	}
}

func TestInterpretGarbageResponseFallsBack(t *testing.T) {
	interp := NewInterpreter(&stubLLM{response: "sorry, I can't help with that"}, testLogger())

	got, err := interp.Interpret(context.Background(), "case studies", nil)
	if err != nil {
		t.Fatalf("Interpret returned error on unparseable response: %v", err)
	}
	if got.Operation != store.OpSemantic || got.Confidence != store.ConfidenceLow {
		t.Errorf("expected low-confidence semantic fallback, got op=%q confidence=%q", got.Operation, got.Confidence)
	}
}

func TestInterpretParsesStructuredResponse(t *testing.T) {
	response := `Here is the plan:
{
  "route": "catalog",
  "operation": "distribution",
  "confidence": "high",
  "filters": {"type": {"include": ["blog"], "exclude": []}},
  "date_from": "2026-01-01",
  "date_to": "2026-01-31",
  "marketing_only": true,
  "is_negation": false,
  "semantic_terms": [],
  "distribution_fields": ["funnel_stage"],
  "skip": 0,
  "limit": 10,
  "description": "distribution of blogs by funnel stage",
  "resolved_query": "distribution of blog posts across funnel stages"
}`

	interp := NewInterpreter(&stubLLM{response: response}, testLogger())

	got, err := interp.Interpret(context.Background(), "how are our blogs spread across the funnel?", nil)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	if got.Route != store.RouteCatalog {
		t.Errorf("Route = %q, want %q", got.Route, store.RouteCatalog)
	}
	if got.Operation != store.OpDistribution {
		t.Errorf("Operation = %q, want %q", got.Operation, store.OpDistribution)
	}
	if got.Confidence != store.ConfidenceHigh {
		t.Errorf("Confidence = %q, want %q", got.Confidence, store.ConfidenceHigh)
	}
	if !got.MarketingOnly {
		t.Error("MarketingOnly not carried over")
	}
	if got.TimeRange.IsZero() {
		t.Error("TimeRange not parsed")
	}

	// Field alias "type" must normalize to the canonical dimension
	filter, ok := got.Filters["content_type"]
	if !ok {
		t.Fatalf("Filters = %v, want key content_type", got.Filters)
	}
	if len(filter.Include) != 1 || filter.Include[0] != "blog" {
		t.Errorf("Include = %v, want [blog]", filter.Include)
	}

	if len(got.Distribution) != 1 || got.Distribution[0] != "funnel_stage" {
		t.Errorf("Distribution = %v, want [funnel_stage]", got.Distribution)
	}
	if got.ResolvedQuery != "distribution of blog posts across funnel stages" {
		t.Errorf("ResolvedQuery = %q", got.ResolvedQuery)
	}
}

func TestInterpretNormalization(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		wantOperation  string
		wantRoute      string
		wantConfidence string
	}{
		{
			name:           "unknown operation becomes semantic",
			response:       `{"operation": "summarize", "resolved_query": "q"}`,
			wantOperation:  store.OpSemantic,
			wantRoute:      store.RouteCatalog,
			wantConfidence: store.ConfidenceMedium,
		},
		{
			name:           "pure advisory forces advisory route",
			response:       `{"route": "catalog", "operation": "pure_advisory", "confidence": "high"}`,
			wantOperation:  store.OpPureAdvisory,
			wantRoute:      store.RouteAdvisory,
			wantConfidence: store.ConfidenceHigh,
		},
		{
			name:           "distribution without fields demotes to list",
			response:       `{"operation": "distribution", "confidence": "medium", "distribution_fields": []}`,
			wantOperation:  store.OpList,
			wantRoute:      store.RouteCatalog,
			wantConfidence: store.ConfidenceMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interp := NewInterpreter(&stubLLM{response: tt.response}, testLogger())

			got, err := interp.Interpret(context.Background(), "some question", nil)
			if err != nil {
				t.Fatalf("Interpret: %v", err)
			}
			if got.Operation != tt.wantOperation {
				t.Errorf("Operation = %q, want %q", got.Operation, tt.wantOperation)
			}
			if got.Route != tt.wantRoute {
				t.Errorf("Route = %q, want %q", got.Route, tt.wantRoute)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %q, want %q", got.Confidence, tt.wantConfidence)
			}
			if got.ResolvedQuery == "" {
				t.Error("ResolvedQuery must default to the raw query")
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"wrapped in prose", "Sure!\n{\"a\":1}\nHope that helps.", `{"a":1}`},
		{"no object", "no json here", ""},
		{"unbalanced", "} {", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
