package dto

import "content-advisor-be/pkg/store"

type SubmitQueryRequest struct {
	SessionId string `json:"sessionId" validate:"required,max=128"`
	Query     string `json:"query" validate:"max=4000"`
}

type CitationDto struct {
	RecordId string  `json:"recordId"`
	Title    string  `json:"title,omitempty"`
	Url      string  `json:"url,omitempty"`
	Score    float32 `json:"score,omitempty"`
}

type AdvisoryResponseDto struct {
	SessionId            string        `json:"sessionId"`
	Response             string        `json:"response"`
	Citations            []CitationDto `json:"citations"`
	SuggestedQuestions   []string      `json:"suggestedQuestions"`
	Confidence           string        `json:"confidence"`
	Operation            string        `json:"operation"`
	InsufficientEvidence bool          `json:"insufficientEvidence"`
	Degraded             bool          `json:"degraded,omitempty"`
	LatencyMs            int64         `json:"latencyMs"`
}

type CitationRefDto struct {
	RecordId string  `json:"recordId"`
	Score    float32 `json:"score,omitempty"`
}

type SessionTurnDto struct {
	Query     string           `json:"query"`
	Answer    string           `json:"answer"`
	Citations []CitationRefDto `json:"citations,omitempty"`
	CreatedAt string           `json:"createdAt"`
}

type SessionHistoryResponse struct {
	SessionId string           `json:"sessionId"`
	Turns     []SessionTurnDto `json:"turns"`
}

type SessionStatsResponse struct {
	ActiveSessions    int      `json:"activeSessions"`
	TotalInteractions int      `json:"totalInteractions"`
	StorageType       string   `json:"storageType"`
	MaxTurns          int      `json:"maxTurns"`
	Operations        []string `json:"operations"`
}

type HealthResponse struct {
	Status              string `json:"status"` // healthy | degraded | error
	DatabaseConnected   bool   `json:"databaseConnected"`
	LLMConfigured       bool   `json:"llmConfigured"`
	EmbeddingConfigured bool   `json:"embeddingConfigured"`
	ActiveSessions      int    `json:"activeSessions"`
	Timestamp           string `json:"timestamp"`
}

// NewSessionHistoryResponse maps session turns onto the wire shape.
func NewSessionHistoryResponse(session *store.Session) *SessionHistoryResponse {
	resp := &SessionHistoryResponse{
		SessionId: session.ID,
		Turns:     make([]SessionTurnDto, 0, len(session.Turns)),
	}
	for _, turn := range session.Turns {
		refs := make([]CitationRefDto, 0, len(turn.Citations))
		for _, ref := range turn.Citations {
			refs = append(refs, CitationRefDto{RecordId: ref.RecordID, Score: ref.Score})
		}
		resp.Turns = append(resp.Turns, SessionTurnDto{
			Query:     turn.Query,
			Answer:    turn.Answer,
			Citations: refs,
			CreatedAt: turn.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return resp
}
