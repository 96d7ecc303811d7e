package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"content-advisor-be/pkg/advisory"
	"content-advisor-be/pkg/llm"
	"content-advisor-be/pkg/store"
)

// Interpreter turns a raw query into a StructuredIntent.
// This is Phase 1 of the pipeline - pure LLM classification, no retrieval.
type Interpreter struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewInterpreter creates a new query interpreter
func NewInterpreter(llmProvider llm.LLMProvider, logger *log.Logger) *Interpreter {
	return &Interpreter{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// rawIntent mirrors the JSON shape the model is asked to produce.
type rawIntent struct {
	Route         string              `json:"route"`
	Operation     string              `json:"operation"`
	Confidence    string              `json:"confidence"`
	Filters       map[string]struct { // category -> include/exclude values
		Include []string `json:"include"`
		Exclude []string `json:"exclude"`
	} `json:"filters"`
	DateFrom      string   `json:"date_from"`
	DateTo        string   `json:"date_to"`
	MarketingOnly bool     `json:"marketing_only"`
	IsNegation    bool     `json:"is_negation"`
	SemanticTerms []string `json:"semantic_terms"`
	Distribution  []string `json:"distribution_fields"`
	Skip          int      `json:"skip"`
	Limit         int      `json:"limit"`
	Description   string   `json:"description"`
	ResolvedQuery string   `json:"resolved_query"`
}

// Interpret analyzes the raw query against the recent conversation turns.
// Only an empty query is a hard failure; any model or parse failure degrades
// to a keyword fallback intent so the pipeline can still retrieve something.
func (i *Interpreter) Interpret(
	ctx context.Context,
	rawQuery string,
	recentTurns []store.Turn,
) (*store.StructuredIntent, error) {

	trimmed := strings.TrimSpace(rawQuery)
	if trimmed == "" {
		return nil, &advisory.IntentParseError{Reason: "query is empty"}
	}

	prompt := i.buildPrompt(trimmed, recentTurns)

	// Temperature 0 for deterministic classification
	response, err := i.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		i.logger.Printf("[WARN] Intent model call failed, using keyword fallback: %v", err)
		return i.fallbackIntent(trimmed), nil
	}

	parsed, err := i.parseIntent(trimmed, response)
	if err != nil {
		i.logger.Printf("[WARN] Intent parsing failed, using keyword fallback: %v", err)
		return i.fallbackIntent(trimmed), nil
	}

	i.logger.Printf("[INTENT] route=%s op=%s confidence=%s filters=%d terms=%d",
		parsed.Route, parsed.Operation, parsed.Confidence, len(parsed.Filters), len(parsed.SemanticTerms))

	return parsed, nil
}

func (i *Interpreter) buildPrompt(query string, recentTurns []store.Turn) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You analyze questions about a marketing content library. Your ONLY job is to classify the question into a structured query plan.\n")
	prompt.WriteString("You do NOT answer the question.\n")
	prompt.WriteString("</system>\n\n")

	if len(recentTurns) > 0 {
		prompt.WriteString("<conversation_context>\n")
		prompt.WriteString("Recent turns, oldest first. Resolve pronouns and references like \"those\", \"that topic\", \"the same audience\" against them.\n")
		for _, turn := range recentTurns {
			prompt.WriteString(fmt.Sprintf("USER: %s\n", turn.Query))
			if turn.Intent.Description != "" {
				prompt.WriteString(fmt.Sprintf("  (interpreted as: %s)\n", turn.Intent.Description))
			}
		}
		prompt.WriteString("</conversation_context>\n\n")
	}

	prompt.WriteString("<user_query>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</user_query>\n\n")

	prompt.WriteString("<output_contract>\n")
	prompt.WriteString("Respond with ONE JSON object, no prose:\n")
	prompt.WriteString(`{
  "route": "catalog" | "advisory",
  "operation": "list" | "distribution" | "semantic" | "pure_advisory",
  "confidence": "high" | "medium" | "low",
  "filters": {"<category>": {"include": [..], "exclude": [..]}},
  "date_from": "YYYY-MM-DD or empty",
  "date_to": "YYYY-MM-DD or empty",
  "marketing_only": bool,
  "is_negation": bool,
  "semantic_terms": ["..."],
  "distribution_fields": ["..."],
  "skip": 0,
  "limit": 20,
  "description": "one-line summary of the interpreted request",
  "resolved_query": "the query with all references resolved to explicit terms"
}`)
	prompt.WriteString("\n\nRules:\n")
	prompt.WriteString("- \"list\": user wants matching content items (counts, listings, lookups by category).\n")
	prompt.WriteString("- \"distribution\": user asks how content is spread across a category (breakdowns, gaps, balance).\n")
	prompt.WriteString("- \"semantic\": user describes content by meaning rather than category values.\n")
	prompt.WriteString("- \"pure_advisory\": strategic advice with no specific data lookup.\n")
	prompt.WriteString("- route is \"advisory\" only for pure_advisory, otherwise \"catalog\".\n")
	prompt.WriteString("- Category names: content_type, topic, geo_focus, domain, industry, primary_audience, page_type, funnel_stage.\n")
	prompt.WriteString("- is_negation is true when the user asks what they DON'T have.\n")
	prompt.WriteString("- resolved_query must stand alone without the conversation context.\n")
	prompt.WriteString("</output_contract>\n")

	return prompt.String()
}

func (i *Interpreter) parseIntent(query, response string) (*store.StructuredIntent, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var raw rawIntent
	if err := json.Unmarshal([]byte(jsonContent), &raw); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	intent := &store.StructuredIntent{
		Route:         strings.ToLower(raw.Route),
		Operation:     strings.ToLower(raw.Operation),
		Confidence:    strings.ToLower(raw.Confidence),
		MarketingOnly: raw.MarketingOnly,
		IsNegation:    raw.IsNegation,
		SemanticTerms: raw.SemanticTerms,
		Distribution:  raw.Distribution,
		Pagination:    store.Pagination{Skip: raw.Skip, Limit: raw.Limit},
		Description:   raw.Description,
		ResolvedQuery: strings.TrimSpace(raw.ResolvedQuery),
	}

	if len(raw.Filters) > 0 {
		intent.Filters = make(map[string]store.CategoryFilter, len(raw.Filters))
		for field, f := range raw.Filters {
			if len(f.Include) == 0 && len(f.Exclude) == 0 {
				continue
			}
			intent.Filters[normalizeField(field)] = store.CategoryFilter{
				Include: f.Include,
				Exclude: f.Exclude,
			}
		}
	}

	intent.TimeRange = parseTimeRange(raw.DateFrom, raw.DateTo)

	// Validate and normalize
	switch intent.Operation {
	case store.OpList, store.OpDistribution, store.OpSemantic, store.OpPureAdvisory:
	default:
		intent.Operation = store.OpSemantic
	}
	if intent.Operation == store.OpPureAdvisory {
		intent.Route = store.RouteAdvisory
	} else {
		intent.Route = store.RouteCatalog
	}
	switch intent.Confidence {
	case store.ConfidenceHigh, store.ConfidenceMedium, store.ConfidenceLow:
	default:
		intent.Confidence = store.ConfidenceMedium
	}
	if intent.ResolvedQuery == "" {
		intent.ResolvedQuery = query
	}
	if intent.Pagination.Limit < 0 {
		intent.Pagination.Limit = 0
	}
	if intent.Operation == store.OpDistribution && len(intent.Distribution) == 0 {
		// A distribution request with no field is unanswerable as such
		intent.Operation = store.OpList
	}

	return intent, nil
}

// fallbackIntent builds a low-confidence semantic intent from the raw query
// keywords. Used whenever the interpreter model is unavailable or returns
// garbage; the request still proceeds through retrieval.
func (i *Interpreter) fallbackIntent(query string) *store.StructuredIntent {
	return &store.StructuredIntent{
		Route:         store.RouteCatalog,
		Operation:     store.OpSemantic,
		Confidence:    store.ConfidenceLow,
		SemanticTerms: keywordTerms(query),
		Pagination:    store.Pagination{Limit: 20},
		Description:   "keyword fallback interpretation",
		ResolvedQuery: query,
	}
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
