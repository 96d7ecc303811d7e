package contract

import (
	"context"

	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredContentEmbedding wraps ContentEmbedding with its similarity score
type ScoredContentEmbedding struct {
	Embedding  *entity.ContentEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ContentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ContentEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ContentEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRecordId(ctx context.Context, recordId uuid.UUID) error
	DeleteAllByTenantIdUnscoped(ctx context.Context, tenantId uuid.UUID) error // Hard delete embeddings
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns embeddings with their similarity scores,
	// filtered by threshold, tenant-scoped through the records join.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, tenantId uuid.UUID, threshold float64) ([]*ScoredContentEmbedding, error)
}
