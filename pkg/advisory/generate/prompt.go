package generate

import (
	"fmt"
	"strings"

	"content-advisor-be/pkg/advisory/analysis"
	"content-advisor-be/pkg/llm"
	"content-advisor-be/pkg/store"
)

type persona struct {
	system      string
	temperature float64
	maxTokens   int
}

// Personas per operation, tuned low for analytical answers and slightly
// higher for strategic advice.
func personaFor(operation string) persona {
	switch operation {
	case store.OpDistribution:
		return persona{
			system:      "You are a data analyst. Provide clear distribution insights with specific numbers.",
			temperature: 0.3,
			maxTokens:   300,
		}
	case store.OpPureAdvisory:
		return persona{
			system:      "You are a strategic content advisor who gives actionable content strategy advice based on the client's actual library data. Use specific numbers and patterns to make targeted recommendations.",
			temperature: 0.4,
			maxTokens:   500,
		}
	default: // list, semantic
		return persona{
			system:      "You are a content analyst who provides actionable insights about a content library. Be direct and helpful.",
			temperature: 0.3,
			maxTokens:   300,
		}
	}
}

// buildMessages assembles the chat history deterministically: system persona,
// prior turns verbatim, then one user message with evidence and instructions.
func buildMessages(rawQuery string, assembled *store.AssembledContext, distributions []analysis.DistributionSummary) []llm.Message {
	messages := []llm.Message{
		{Role: "system", Content: personaFor(assembled.Intent.Operation).system},
	}

	for _, turn := range assembled.History {
		messages = append(messages,
			llm.Message{Role: "user", Content: turn.Query},
			llm.Message{Role: "assistant", Content: turn.Answer},
		)
	}

	messages = append(messages, llm.Message{
		Role:    "user",
		Content: buildGroundedPrompt(rawQuery, assembled, distributions),
	})

	return messages
}

func buildGroundedPrompt(rawQuery string, assembled *store.AssembledContext, distributions []analysis.DistributionSummary) string {
	var prompt strings.Builder

	prompt.WriteString("<reference_material>\n")
	if len(assembled.Evidence) == 0 {
		prompt.WriteString("(no matching content found)\n")
	}
	for idx, item := range assembled.Evidence {
		prompt.WriteString(fmt.Sprintf("[E%d] %s\n", idx+1, item.Title))
		if item.Snippet != "" {
			prompt.WriteString(item.Snippet)
			prompt.WriteString("\n")
		}
		if tags := metadataLine(item); tags != "" {
			prompt.WriteString(tags)
			prompt.WriteString("\n")
		}
		prompt.WriteString("\n")
	}
	prompt.WriteString("</reference_material>\n\n")

	if len(distributions) > 0 {
		prompt.WriteString("<distribution_data>\n")
		for _, d := range distributions {
			prompt.WriteString(d.PromptLine())
			prompt.WriteString("\n")
		}
		prompt.WriteString("</distribution_data>\n\n")
	}

	prompt.WriteString("<user_query>\n")
	prompt.WriteString(rawQuery)
	prompt.WriteString("\n</user_query>\n\n")

	prompt.WriteString("<task_instructions>\n")
	prompt.WriteString("1. Answer the user's question first, directly, then add insights only when relevant.\n")
	prompt.WriteString("2. Ground every factual claim in the reference material and cite it inline with its marker, e.g. [E2].\n")
	prompt.WriteString("3. Use only markers that appear in the reference material.\n")
	prompt.WriteString("4. Keep the response under 150 words unless the question demands a strategic assessment.\n")
	if assembled.InsufficientEvidence {
		prompt.WriteString("5. IMPORTANT: The reference material is insufficient to answer reliably. Say so plainly, do not speculate, and suggest what the user could ask instead.\n")
	}
	if assembled.Degraded {
		prompt.WriteString("NOTE: One retrieval source was unavailable; the reference material may be incomplete.\n")
	}
	prompt.WriteString("</task_instructions>\n")

	return prompt.String()
}

func metadataLine(item store.EvidenceItem) string {
	var parts []string
	for _, key := range []string{"content_type", "topic", "funnel_stage", "primary_audience", "geo_focus", "published_at"} {
		if v, ok := item.Metadata[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				parts = append(parts, fmt.Sprintf("%s=%s", key, s))
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// suggestionsFor returns the follow-up questions attached to every response,
// chosen by operation and evidence availability.
func suggestionsFor(assembled *store.AssembledContext) []string {
	if assembled.InsufficientEvidence {
		return []string{
			"Try different search terms",
			"Check other content categories",
			"Show me all content types",
		}
	}

	switch assembled.Intent.Operation {
	case store.OpDistribution:
		return []string{
			"Show me content in underrepresented areas",
			"What topics are missing?",
			"How can I rebalance this?",
		}
	case store.OpPureAdvisory:
		return []string{
			"How can I optimize my content strategy?",
			"What strategic opportunities should I focus on?",
			"What should be my next content priority?",
		}
	default:
		return []string{
			"Analyze distribution of this content",
			"Show me gaps in this area",
			"What patterns exist in these results?",
		}
	}
}

func fallbackAnswer(assembled *store.AssembledContext) string {
	if len(assembled.Evidence) > 0 {
		return fmt.Sprintf("Found %d content pieces but had trouble analyzing them. What specific insight would help?", len(assembled.Evidence))
	}
	return "No matching content found. Try different search terms or another category."
}
