package contract

import (
	"context"

	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/repository/specification"

	"github.com/google/uuid"
)

// CategoryCount is one bucket of a distribution aggregation.
type CategoryCount struct {
	Value string
	Count int64
}

type ContentRecordRepository interface {
	Create(ctx context.Context, record *entity.ContentRecord) error
	Update(ctx context.Context, record *entity.ContentRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByTenantIdUnscoped(ctx context.Context, tenantId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// CountByCategory groups matching records by one category dimension.
	// Known columns group directly; anything else groups on the JSONB field.
	CountByCategory(ctx context.Context, field string, specs ...specification.Specification) ([]CategoryCount, error)
}
