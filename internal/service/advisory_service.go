package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"content-advisor-be/internal/config"
	"content-advisor-be/internal/dto"
	"content-advisor-be/internal/pkg/logger"
	"content-advisor-be/internal/repository/unitofwork"
	"content-advisor-be/pkg/advisory/analysis"
	"content-advisor-be/pkg/advisory/assemble"
	"content-advisor-be/pkg/advisory/generate"
	"content-advisor-be/pkg/advisory/intent"
	"content-advisor-be/pkg/advisory/retrieval"
	"content-advisor-be/pkg/advisory/session"
	"content-advisor-be/pkg/embedding"
	"content-advisor-be/pkg/events"
	"content-advisor-be/pkg/llm"
	pktNats "content-advisor-be/pkg/nats"
	"content-advisor-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IAdvisoryService runs the advisory pipeline: interpret the query, retrieve
// evidence over both channels, assemble a budgeted context, and generate a
// grounded answer. One call is one conversation turn.
type IAdvisoryService interface {
	SubmitQuery(ctx context.Context, tenantId uuid.UUID, request *dto.SubmitQueryRequest) (*dto.AdvisoryResponseDto, error)
	GetHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
	Stats(ctx context.Context) (*dto.SessionStatsResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
}

type advisoryService struct {
	uowFactory     unitofwork.RepositoryFactory
	interpreter    *intent.Interpreter
	retriever      *retrieval.Retriever
	assembler      *assemble.Assembler
	generator      *generate.Generator
	sessionManager *session.Manager
	eventPublisher *pktNats.Publisher
	log            logger.ILogger

	llmConfigured   bool
	embedConfigured bool

	retrievalConfig retrieval.Config
	assembleConfig  assemble.Config
	generateConfig  generate.Config
	historyTurns    int
	maxTurns        int
}

func NewAdvisoryService(
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	sessionManager *session.Manager,
	eventPublisher *pktNats.Publisher,
	appLogger logger.ILogger,
) IAdvisoryService {
	pipelineLogger := initPipelineLogger()

	retrievalConfig := retrieval.DefaultConfig()
	retrievalConfig.StructuredK = cfg.Pipeline.StructuredK
	retrievalConfig.VectorK = cfg.Pipeline.VectorK
	retrievalConfig.SimThreshold = cfg.Pipeline.SimThreshold

	assembleConfig := assemble.DefaultConfig()
	assembleConfig.Budget = cfg.Pipeline.ContextBudget
	assembleConfig.EvidenceFraction = cfg.Pipeline.EvidenceFraction
	assembleConfig.MinEvidence = cfg.Pipeline.MinEvidence

	return &advisoryService{
		uowFactory:      uowFactory,
		interpreter:     intent.NewInterpreter(llmProvider, pipelineLogger),
		retriever:       retrieval.NewRetriever(embeddingProvider, pipelineLogger),
		assembler:       assemble.NewAssembler(pipelineLogger),
		generator:       generate.NewGenerator(llmProvider, pipelineLogger),
		sessionManager:  sessionManager,
		eventPublisher:  eventPublisher,
		log:             appLogger,
		llmConfigured:   llmProvider != nil,
		embedConfigured: embeddingProvider != nil,
		retrievalConfig: retrievalConfig,
		assembleConfig:  assembleConfig,
		generateConfig:  generate.DefaultConfig(),
		historyTurns:    cfg.Pipeline.HistoryTurns,
		maxTurns:        cfg.Session.MaxTurns,
	}
}

// initPipelineLogger writes pipeline stage logs to a dedicated file so the
// per-stage trace of a turn stays readable next to the structured app log.
func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "advisory_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("[WARN] Could not create log directory, logging to stdout: %v", err)
		return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("[WARN] Could not open pipeline log file, logging to stdout: %v", err)
		return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}

	return log.New(file, "", log.LstdFlags)
}

// SubmitQuery runs one full pipeline turn. Processing per session is
// serialized; the session only records the turn when every stage succeeded.
func (a *advisoryService) SubmitQuery(ctx context.Context, tenantId uuid.UUID, request *dto.SubmitQueryRequest) (*dto.AdvisoryResponseDto, error) {
	started := time.Now()

	unlock := a.sessionManager.Acquire(request.SessionId)
	defer unlock()

	sess := a.sessionManager.Load(request.SessionId, tenantId.String())
	recentTurns := sess.RecentTurns(a.historyTurns)

	parsedIntent, err := a.interpreter.Interpret(ctx, request.Query, recentTurns)
	if err != nil {
		return nil, err
	}

	uow := a.uowFactory.NewUnitOfWork(ctx)

	retrievalResult, err := a.retriever.Execute(ctx, uow, tenantId, parsedIntent, a.retrievalConfig)
	if err != nil {
		return nil, err
	}

	distributions := a.analyzeDistributions(ctx, uow, tenantId, parsedIntent)

	assembled := a.assembler.Execute(parsedIntent, retrievalResult, sess.Turns, a.assembleConfig)

	result, err := a.generator.Execute(ctx, request.Query, assembled, distributions, a.generateConfig)
	if err != nil {
		return nil, err
	}

	turn := store.Turn{
		Query:     request.Query,
		Intent:    *parsedIntent,
		Answer:    result.Answer,
		Citations: result.Citations,
		CreatedAt: time.Now(),
	}
	a.sessionManager.AppendTurn(sess, turn)

	elapsed := time.Since(started)
	a.publishTurnCompleted(ctx, sess, parsedIntent, result, elapsed)

	a.log.Info("advisory", "turn completed", map[string]interface{}{
		"session_id": request.SessionId,
		"operation":  parsedIntent.Operation,
		"evidence":   len(assembled.Evidence),
		"citations":  len(result.Citations),
		"degraded":   assembled.Degraded,
		"elapsed_ms": elapsed.Milliseconds(),
	})

	return &dto.AdvisoryResponseDto{
		SessionId:            request.SessionId,
		Response:             result.Answer,
		Citations:            hydrateCitations(result.Citations, assembled.Evidence),
		SuggestedQuestions:   result.SuggestedQuestions,
		Confidence:           result.Confidence,
		Operation:            parsedIntent.Operation,
		InsufficientEvidence: assembled.InsufficientEvidence,
		Degraded:             assembled.Degraded,
		LatencyMs:            elapsed.Milliseconds(),
	}, nil
}

// analyzeDistributions aggregates category counts for distribution intents.
// Aggregation failures degrade to an empty summary list rather than failing
// the turn; the generator falls back to evidence-only answering.
func (a *advisoryService) analyzeDistributions(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	tenantId uuid.UUID,
	parsedIntent *store.StructuredIntent,
) []analysis.DistributionSummary {
	if parsedIntent.Operation != store.OpDistribution {
		return nil
	}

	specs := retrieval.SpecsForIntent(tenantId, parsedIntent)

	var summaries []analysis.DistributionSummary
	for _, field := range parsedIntent.Distribution {
		counts, err := uow.ContentRecordRepository().CountByCategory(ctx, field, specs...)
		if err != nil {
			a.log.Warn("advisory", "distribution aggregation failed", map[string]interface{}{
				"field": field,
				"error": err.Error(),
			})
			continue
		}
		summaries = append(summaries, analysis.Summarize(field, counts))
	}
	return summaries
}

// publishTurnCompleted emits the audit event; the turn already succeeded so
// bus failures only get logged.
func (a *advisoryService) publishTurnCompleted(
	ctx context.Context,
	sess *store.Session,
	parsedIntent *store.StructuredIntent,
	result *generate.Result,
	elapsed time.Duration,
) {
	if a.eventPublisher == nil {
		return
	}

	evt := events.BaseEvent{
		Type: events.TypeAdvisoryTurnCompleted,
		Data: map[string]interface{}{
			"session_id": sess.ID,
			"tenant_id":  sess.TenantID,
			"operation":  parsedIntent.Operation,
			"confidence": result.Confidence,
			"citations":  len(result.Citations),
			"elapsed_ms": elapsed.Milliseconds(),
		},
		OccurredAt: time.Now(),
	}
	if err := a.eventPublisher.Publish(ctx, evt); err != nil {
		a.log.Warn("advisory", "failed to publish turn completed event", map[string]interface{}{"error": err.Error()})
	}
}

func (a *advisoryService) GetHistory(ctx context.Context, sessionId string) (*dto.SessionHistoryResponse, error) {
	sess, found := a.sessionManager.Peek(sessionId)
	if !found {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return dto.NewSessionHistoryResponse(sess), nil
}

func (a *advisoryService) DeleteSession(ctx context.Context, sessionId string) error {
	if _, found := a.sessionManager.Peek(sessionId); !found {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	a.sessionManager.Delete(sessionId)
	return nil
}

func (a *advisoryService) Stats(ctx context.Context) (*dto.SessionStatsResponse, error) {
	sessions, turns := a.sessionManager.Stats()
	return &dto.SessionStatsResponse{
		ActiveSessions:    sessions,
		TotalInteractions: turns,
		StorageType:       "in-memory",
		MaxTurns:          a.maxTurns,
		Operations:        []string{store.OpList, store.OpDistribution, store.OpSemantic, store.OpPureAdvisory},
	}, nil
}

func (a *advisoryService) Health(ctx context.Context) *dto.HealthResponse {
	dbConnected := true
	uow := a.uowFactory.NewUnitOfWork(ctx)
	if _, err := uow.ContentRecordRepository().Count(ctx); err != nil {
		dbConnected = false
	}

	sessions, _ := a.sessionManager.Stats()

	status := "healthy"
	switch {
	case !dbConnected:
		status = "error"
	case !a.llmConfigured || !a.embedConfigured:
		status = "degraded"
	}

	return &dto.HealthResponse{
		Status:              status,
		DatabaseConnected:   dbConnected,
		LLMConfigured:       a.llmConfigured,
		EmbeddingConfigured: a.embedConfigured,
		ActiveSessions:      sessions,
		Timestamp:           time.Now().Format(time.RFC3339),
	}
}

// hydrateCitations maps cited evidence refs back to their evidence titles and
// urls for the response payload.
func hydrateCitations(refs []store.EvidenceRef, evidence []store.EvidenceItem) []dto.CitationDto {
	byId := make(map[string]store.EvidenceItem, len(evidence))
	for _, item := range evidence {
		byId[item.RecordID] = item
	}

	citations := make([]dto.CitationDto, 0, len(refs))
	for _, ref := range refs {
		citation := dto.CitationDto{RecordId: ref.RecordID, Score: ref.Score}
		if item, ok := byId[ref.RecordID]; ok {
			citation.Title = item.Title
			citation.Url = item.URL
		}
		citations = append(citations, citation)
	}
	return citations
}
