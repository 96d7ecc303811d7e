package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentEmbedding is one embedded chunk of a content record.
type ContentEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	RecordId       uuid.UUID
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
