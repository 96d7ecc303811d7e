package retrieval

import (
	"context"
	"log"
	"sync"

	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/repository/specification"
	"content-advisor-be/internal/repository/unitofwork"
	"content-advisor-be/pkg/advisory"
	"content-advisor-be/pkg/embedding"
	"content-advisor-be/pkg/store"

	"github.com/google/uuid"
)

// Config encapsulates retrieval parameters
type Config struct {
	StructuredK  int     // max items from the structured channel
	VectorK      int     // max items from the semantic channel
	SimThreshold float64 // minimum cosine similarity for semantic hits
}

// DefaultConfig returns default retrieval configuration
func DefaultConfig() Config {
	return Config{
		StructuredK:  20,
		VectorK:      10,
		SimThreshold: 0.35,
	}
}

// Retriever runs the structured and semantic channels concurrently and merges
// their results. Retrieval is read-only; no transaction is opened.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	logger            *log.Logger
}

// NewRetriever creates a new context retriever
func NewRetriever(embeddingProvider embedding.EmbeddingProvider, logger *log.Logger) *Retriever {
	return &Retriever{
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

// Execute runs both channels. One channel failing degrades the result; both
// failing returns advisory.RetrievalError.
func (r *Retriever) Execute(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	tenantId uuid.UUID,
	intent *store.StructuredIntent,
	config Config,
) (*store.RetrievalResult, error) {

	var (
		wg            sync.WaitGroup
		structured    []store.EvidenceItem
		vector        []store.EvidenceItem
		structuredErr error
		vectorErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		structured, structuredErr = r.searchStructured(ctx, uow, tenantId, intent, config.StructuredK)
	}()
	go func() {
		defer wg.Done()
		vector, vectorErr = r.searchVector(ctx, uow, tenantId, intent, config)
	}()
	wg.Wait()

	if structuredErr != nil && vectorErr != nil {
		return nil, &advisory.RetrievalError{StructuredErr: structuredErr, VectorErr: vectorErr}
	}

	result := &store.RetrievalResult{
		Items: mergeChannels(vector, structured),
	}

	if structuredErr != nil {
		r.logger.Printf("[WARN] Structured channel failed, continuing degraded: %v", structuredErr)
		result.Degraded = true
		result.FailedChannel = store.ChannelStructured
	}
	if vectorErr != nil {
		r.logger.Printf("[WARN] Vector channel failed, continuing degraded: %v", vectorErr)
		result.Degraded = true
		result.FailedChannel = store.ChannelVector
	}

	r.logger.Printf("[RETRIEVAL] structured=%d vector=%d merged=%d degraded=%v",
		len(structured), len(vector), len(result.Items), result.Degraded)

	return result, nil
}

// searchStructured queries the content catalog with the intent's filters,
// most recent first.
func (r *Retriever) searchStructured(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	tenantId uuid.UUID,
	intent *store.StructuredIntent,
	limit int,
) ([]store.EvidenceItem, error) {

	specs := SpecsForIntent(tenantId, intent)
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)

	records, err := uow.ContentRecordRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]store.EvidenceItem, 0, len(records))
	for _, record := range records {
		items = append(items, evidenceFromRecord(record, store.ChannelStructured, 0, ""))
	}
	return items, nil
}

// searchVector embeds the resolved query and runs pgvector similarity search,
// then hydrates the matched chunks with their parent records.
func (r *Retriever) searchVector(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	tenantId uuid.UUID,
	intent *store.StructuredIntent,
	config Config,
) ([]store.EvidenceItem, error) {

	embeddingRes, err := r.embeddingProvider.Generate(ctx, intent.ResolvedQuery, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	scored, err := uow.ContentEmbeddingRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		config.VectorK,
		tenantId,
		config.SimThreshold,
	)
	if err != nil {
		return nil, err
	}

	// Deduplicate chunks of the same record, keeping the best score. Results
	// arrive ordered by similarity so the first hit per record wins.
	var recordIds []uuid.UUID
	bestChunk := make(map[uuid.UUID]struct {
		document string
		score    float64
	})
	for _, s := range scored {
		if _, ok := bestChunk[s.Embedding.RecordId]; ok {
			continue
		}
		bestChunk[s.Embedding.RecordId] = struct {
			document string
			score    float64
		}{s.Embedding.Document, s.Similarity}
		recordIds = append(recordIds, s.Embedding.RecordId)
	}

	if len(recordIds) == 0 {
		return nil, nil
	}

	records, err := uow.ContentRecordRepository().FindAll(ctx, specification.ByIDs{IDs: recordIds})
	if err != nil {
		return nil, err
	}
	recordsById := make(map[uuid.UUID]*entity.ContentRecord, len(records))
	for _, record := range records {
		recordsById[record.Id] = record
	}

	// Preserve similarity ordering from recordIds
	items := make([]store.EvidenceItem, 0, len(recordIds))
	for _, id := range recordIds {
		record, ok := recordsById[id]
		if !ok {
			continue // record deleted since indexing
		}
		chunk := bestChunk[id]
		items = append(items, evidenceFromRecord(record, store.ChannelVector, float32(chunk.score), chunk.document))
	}
	return items, nil
}

// mergeChannels combines both channels, deduplicating by record id. The
// vector copy wins because it carries a similarity score.
func mergeChannels(vector, structured []store.EvidenceItem) []store.EvidenceItem {
	merged := make([]store.EvidenceItem, 0, len(vector)+len(structured))
	seen := make(map[string]bool, len(vector))

	for _, item := range vector {
		merged = append(merged, item)
		seen[item.RecordID] = true
	}
	for _, item := range structured {
		if seen[item.RecordID] {
			continue
		}
		merged = append(merged, item)
		seen[item.RecordID] = true
	}
	return merged
}

func evidenceFromRecord(record *entity.ContentRecord, channel string, score float32, snippetOverride string) store.EvidenceItem {
	snippet := snippetOverride
	if snippet == "" {
		snippet = record.Snippet()
	}

	metadata := map[string]interface{}{
		"content_type": record.ContentType,
		"topic":        record.Topic,
		"geo_focus":    record.GeoFocus,
		"domain":       record.Domain,
		"is_marketing": record.IsMarketingContent,
		"word_count":   record.WordCount,
	}
	for field, value := range record.Categories {
		metadata[field] = value
	}
	if record.PublishedAt != nil {
		metadata["published_at"] = record.PublishedAt.Format("2006-01-02")
	}

	return store.EvidenceItem{
		RecordID: record.Id.String(),
		Title:    record.Title,
		Snippet:  snippet,
		URL:      record.Url,
		Channel:  channel,
		Score:    score,
		Metadata: metadata,
	}
}
