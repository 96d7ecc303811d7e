package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/repository/contract"
	"content-advisor-be/internal/repository/specification"
	"content-advisor-be/pkg/advisory"
	"content-advisor-be/pkg/embedding"
	"content-advisor-be/pkg/store"

	"github.com/google/uuid"
)

// --- fakes ---

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type fakeRecordRepo struct {
	contract.ContentRecordRepository
	findAllFn func(specs ...specification.Specification) ([]*entity.ContentRecord, error)
}

func (f *fakeRecordRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentRecord, error) {
	return f.findAllFn(specs...)
}

type fakeEmbeddingRepo struct {
	contract.ContentEmbeddingRepository
	searchFn func() ([]*contract.ScoredContentEmbedding, error)
}

func (f *fakeEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int, tenantId uuid.UUID, threshold float64) ([]*contract.ScoredContentEmbedding, error) {
	return f.searchFn()
}

type fakeUow struct {
	records    *fakeRecordRepo
	embeddings *fakeEmbeddingRepo
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }
func (f *fakeUow) ContentRecordRepository() contract.ContentRecordRepository {
	return f.records
}
func (f *fakeUow) ContentEmbeddingRepository() contract.ContentEmbeddingRepository {
	return f.embeddings
}

func hasByIDs(specs []specification.Specification) bool {
	for _, s := range specs {
		if _, ok := s.(specification.ByIDs); ok {
			return true
		}
	}
	return false
}

func record(id uuid.UUID, title string) *entity.ContentRecord {
	return &entity.ContentRecord{Id: id, Title: title, Summary: title + " summary"}
}

func scored(recordId uuid.UUID, doc string, similarity float64) *contract.ScoredContentEmbedding {
	return &contract.ScoredContentEmbedding{
		Embedding:  &entity.ContentEmbedding{Id: uuid.New(), RecordId: recordId, Document: doc},
		Similarity: similarity,
	}
}

func semanticIntent() *store.StructuredIntent {
	return &store.StructuredIntent{
		Route:         store.RouteCatalog,
		Operation:     store.OpSemantic,
		Confidence:    store.ConfidenceMedium,
		ResolvedQuery: "onboarding content",
	}
}

func newTestRetriever(embedErr error) *Retriever {
	return NewRetriever(&stubEmbedder{err: embedErr}, log.New(io.Discard, "", 0))
}

// --- tests ---

func TestExecuteMergePrefersVectorCopy(t *testing.T) {
	idA, idB, idC := uuid.New(), uuid.New(), uuid.New()

	uow := &fakeUow{
		records: &fakeRecordRepo{
			findAllFn: func(specs ...specification.Specification) ([]*entity.ContentRecord, error) {
				if hasByIDs(specs) {
					// hydration for the vector channel
					return []*entity.ContentRecord{record(idB, "B"), record(idC, "C")}, nil
				}
				return []*entity.ContentRecord{record(idA, "A"), record(idB, "B")}, nil
			},
		},
		embeddings: &fakeEmbeddingRepo{
			searchFn: func() ([]*contract.ScoredContentEmbedding, error) {
				// two chunks of B ordered by similarity; best one wins
				return []*contract.ScoredContentEmbedding{
					scored(idB, "chunk of B", 0.91),
					scored(idB, "worse chunk of B", 0.72),
					scored(idC, "chunk of C", 0.55),
				}, nil
			},
		},
	}

	result, err := newTestRetriever(nil).Execute(context.Background(), uow, uuid.New(), semanticIntent(), DefaultConfig())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Degraded {
		t.Error("result should not be degraded")
	}

	// Vector items lead, structured-only items follow; B appears once as vector
	if len(result.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(result.Items))
	}
	if result.Items[0].RecordID != idB.String() || result.Items[0].Channel != store.ChannelVector {
		t.Errorf("Items[0] = %s/%s, want vector copy of B", result.Items[0].RecordID, result.Items[0].Channel)
	}
	if result.Items[0].Score != float32(0.91) {
		t.Errorf("Items[0].Score = %v, want best chunk score 0.91", result.Items[0].Score)
	}
	if result.Items[0].Snippet != "chunk of B" {
		t.Errorf("Items[0].Snippet = %q, want matched chunk text", result.Items[0].Snippet)
	}
	if result.Items[1].RecordID != idC.String() {
		t.Errorf("Items[1] = %s, want C", result.Items[1].RecordID)
	}
	if result.Items[2].RecordID != idA.String() || result.Items[2].Channel != store.ChannelStructured {
		t.Errorf("Items[2] = %s/%s, want structured A", result.Items[2].RecordID, result.Items[2].Channel)
	}
}

func TestExecuteStructuredFailureDegrades(t *testing.T) {
	idC := uuid.New()

	uow := &fakeUow{
		records: &fakeRecordRepo{
			findAllFn: func(specs ...specification.Specification) ([]*entity.ContentRecord, error) {
				if hasByIDs(specs) {
					return []*entity.ContentRecord{record(idC, "C")}, nil
				}
				return nil, fmt.Errorf("connection reset")
			},
		},
		embeddings: &fakeEmbeddingRepo{
			searchFn: func() ([]*contract.ScoredContentEmbedding, error) {
				return []*contract.ScoredContentEmbedding{scored(idC, "chunk", 0.8)}, nil
			},
		},
	}

	result, err := newTestRetriever(nil).Execute(context.Background(), uow, uuid.New(), semanticIntent(), DefaultConfig())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Degraded || result.FailedChannel != store.ChannelStructured {
		t.Errorf("Degraded=%v FailedChannel=%q, want degraded structured", result.Degraded, result.FailedChannel)
	}
	if len(result.Items) != 1 {
		t.Errorf("len(Items) = %d, want vector results only", len(result.Items))
	}
}

func TestExecuteVectorFailureDegrades(t *testing.T) {
	idA := uuid.New()

	uow := &fakeUow{
		records: &fakeRecordRepo{
			findAllFn: func(specs ...specification.Specification) ([]*entity.ContentRecord, error) {
				return []*entity.ContentRecord{record(idA, "A")}, nil
			},
		},
		embeddings: &fakeEmbeddingRepo{
			searchFn: func() ([]*contract.ScoredContentEmbedding, error) {
				return nil, nil
			},
		},
	}

	result, err := newTestRetriever(fmt.Errorf("embedding service down")).Execute(
		context.Background(), uow, uuid.New(), semanticIntent(), DefaultConfig())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Degraded || result.FailedChannel != store.ChannelVector {
		t.Errorf("Degraded=%v FailedChannel=%q, want degraded vector", result.Degraded, result.FailedChannel)
	}
	if len(result.Items) != 1 || result.Items[0].Channel != store.ChannelStructured {
		t.Errorf("Items = %v, want structured results only", result.Items)
	}
}

func TestExecuteBothChannelsFail(t *testing.T) {
	uow := &fakeUow{
		records: &fakeRecordRepo{
			findAllFn: func(specs ...specification.Specification) ([]*entity.ContentRecord, error) {
				return nil, fmt.Errorf("db down")
			},
		},
		embeddings: &fakeEmbeddingRepo{
			searchFn: func() ([]*contract.ScoredContentEmbedding, error) {
				return nil, nil
			},
		},
	}

	_, err := newTestRetriever(fmt.Errorf("embedding service down")).Execute(
		context.Background(), uow, uuid.New(), semanticIntent(), DefaultConfig())

	var retrievalErr *advisory.RetrievalError
	if !errors.As(err, &retrievalErr) {
		t.Fatalf("error = %v, want RetrievalError", err)
	}
	if retrievalErr.StructuredErr == nil || retrievalErr.VectorErr == nil {
		t.Error("RetrievalError should carry both channel errors")
	}
}
