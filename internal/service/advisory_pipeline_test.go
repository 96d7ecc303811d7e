package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"content-advisor-be/internal/dto"
	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/repository/contract"
	"content-advisor-be/internal/repository/specification"
	"content-advisor-be/internal/repository/unitofwork"
	"content-advisor-be/pkg/advisory"
	"content-advisor-be/pkg/advisory/assemble"
	"content-advisor-be/pkg/advisory/generate"
	"content-advisor-be/pkg/advisory/intent"
	"content-advisor-be/pkg/advisory/retrieval"
	"content-advisor-be/pkg/advisory/session"
	"content-advisor-be/pkg/embedding"
	"content-advisor-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type pipelineLLM struct {
	mu        sync.Mutex
	intentRes string
	answer    string
	chatErr   error
	chatDelay time.Duration
}

func (p *pipelineLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.intentRes, nil
}

func (p *pipelineLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if p.chatDelay > 0 {
		time.Sleep(p.chatDelay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chatErr != nil {
		return "", p.chatErr
	}
	return p.answer, nil
}

type pipelineEmbedder struct{}

func (pipelineEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type pipelineRecordRepo struct {
	contract.ContentRecordRepository
	structured []*entity.ContentRecord
	hydrated   []*entity.ContentRecord
}

func (r *pipelineRecordRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentRecord, error) {
	for _, s := range specs {
		if _, ok := s.(specification.ByIDs); ok {
			return r.hydrated, nil
		}
	}
	return r.structured, nil
}

type pipelineEmbeddingRepo struct {
	contract.ContentEmbeddingRepository
	scored []*contract.ScoredContentEmbedding
}

func (r *pipelineEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int, tenantId uuid.UUID, threshold float64) ([]*contract.ScoredContentEmbedding, error) {
	return r.scored, nil
}

type pipelineUow struct {
	records    *pipelineRecordRepo
	embeddings *pipelineEmbeddingRepo
}

func (u *pipelineUow) Begin(ctx context.Context) error { return nil }
func (u *pipelineUow) Commit() error                   { return nil }
func (u *pipelineUow) Rollback() error                 { return nil }
func (u *pipelineUow) ContentRecordRepository() contract.ContentRecordRepository {
	return u.records
}
func (u *pipelineUow) ContentEmbeddingRepository() contract.ContentEmbeddingRepository {
	return u.embeddings
}

type pipelineUowFactory struct {
	uow *pipelineUow
}

func (f *pipelineUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func newPipelineService(provider *pipelineLLM, recordId uuid.UUID) *advisoryService {
	discard := log.New(io.Discard, "", 0)

	uow := &pipelineUow{
		records: &pipelineRecordRepo{
			hydrated: []*entity.ContentRecord{
				{Id: recordId, Title: "Onboarding Guide", Summary: "Faster onboarding."},
			},
		},
		embeddings: &pipelineEmbeddingRepo{
			scored: []*contract.ScoredContentEmbedding{
				{
					Embedding:  &entity.ContentEmbedding{Id: uuid.New(), RecordId: recordId, Document: "onboarding chunk"},
					Similarity: 0.9,
				},
			},
		},
	}

	return &advisoryService{
		uowFactory:      &pipelineUowFactory{uow: uow},
		interpreter:     intent.NewInterpreter(provider, discard),
		retriever:       retrieval.NewRetriever(pipelineEmbedder{}, discard),
		assembler:       assemble.NewAssembler(discard),
		generator:       generate.NewGenerator(provider, discard),
		sessionManager:  session.NewManager(session.DefaultConfig(), discard),
		log:             noopLogger{},
		llmConfigured:   true,
		embedConfigured: true,
		retrievalConfig: retrieval.DefaultConfig(),
		assembleConfig:  assemble.DefaultConfig(),
		generateConfig:  generate.Config{RetryDelay: time.Millisecond},
		historyTurns:    2,
		maxTurns:        10,
	}
}

const semanticIntentJSON = `{
  "route": "catalog",
  "operation": "semantic",
  "confidence": "high",
  "semantic_terms": ["onboarding"],
  "limit": 20,
  "description": "content about onboarding",
  "resolved_query": "content about faster onboarding"
}`

// --- tests ---

func TestSubmitQueryReportsLatencyAndScoredCitations(t *testing.T) {
	recordId := uuid.New()
	provider := &pipelineLLM{
		intentRes: semanticIntentJSON,
		answer:    "The onboarding guide [E1] covers this.",
		chatDelay: 5 * time.Millisecond,
	}
	svc := newPipelineService(provider, recordId)

	resp, err := svc.SubmitQuery(context.Background(), uuid.New(), &dto.SubmitQueryRequest{
		SessionId: "s1",
		Query:     "anything about faster onboarding?",
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, resp.LatencyMs, int64(5), "latency must cover the model call")
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, recordId.String(), resp.Citations[0].RecordId)
	assert.Equal(t, "Onboarding Guide", resp.Citations[0].Title)
	assert.Equal(t, float32(0.9), resp.Citations[0].Score)

	history, err := svc.GetHistory(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history.Turns, 1)
	require.Len(t, history.Turns[0].Citations, 1)
	assert.Equal(t, recordId.String(), history.Turns[0].Citations[0].RecordId)
	assert.Equal(t, float32(0.9), history.Turns[0].Citations[0].Score, "turn refs keep the similarity score")
}

func TestSubmitQueryFailureLeavesHistoryUntouched(t *testing.T) {
	provider := &pipelineLLM{
		intentRes: semanticIntentJSON,
		chatErr:   fmt.Errorf("model unavailable"),
	}
	svc := newPipelineService(provider, uuid.New())

	_, err := svc.SubmitQuery(context.Background(), uuid.New(), &dto.SubmitQueryRequest{
		SessionId: "s1",
		Query:     "anything about onboarding?",
	})

	var genErr *advisory.GenerationError
	require.ErrorAs(t, err, &genErr)

	history, err := svc.GetHistory(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, history.Turns, "failed turns must not reach the session")
}

func TestGetHistoryDuringInflightTurn(t *testing.T) {
	recordId := uuid.New()
	provider := &pipelineLLM{
		intentRes: semanticIntentJSON,
		answer:    "Covered by [E1].",
		chatDelay: 10 * time.Millisecond,
	}
	svc := newPipelineService(provider, recordId)

	// Seed one completed turn, then read history concurrently with a second
	// submit on the same session.
	_, err := svc.SubmitQuery(context.Background(), uuid.New(), &dto.SubmitQueryRequest{
		SessionId: "s1", Query: "first question",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.SubmitQuery(context.Background(), uuid.New(), &dto.SubmitQueryRequest{
			SessionId: "s1", Query: "second question",
		})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			history, err := svc.GetHistory(context.Background(), "s1")
			if assert.NoError(t, err) {
				assert.GreaterOrEqual(t, len(history.Turns), 1)
			}
			svc.Stats(context.Background())
		}
	}()
	wg.Wait()

	history, err := svc.GetHistory(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, history.Turns, 2)
}
