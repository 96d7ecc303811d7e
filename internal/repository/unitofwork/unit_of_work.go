package unitofwork

import (
	"context"

	"content-advisor-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ContentRecordRepository() contract.ContentRecordRepository
	ContentEmbeddingRepository() contract.ContentEmbeddingRepository
}
