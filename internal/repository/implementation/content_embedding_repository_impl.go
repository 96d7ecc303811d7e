package implementation

import (
	"context"
	"errors"

	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/mapper"
	"content-advisor-be/internal/model"
	"content-advisor-be/internal/repository/contract"
	"content-advisor-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContentEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentEmbeddingMapper
}

func NewContentEmbeddingRepository(db *gorm.DB) contract.ContentEmbeddingRepository {
	return &ContentEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentEmbeddingMapper(),
	}
}

func (r *ContentEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContentEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.ContentEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ContentEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.ContentEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ContentEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ContentEmbedding{}, id).Error
}

func (r *ContentEmbeddingRepositoryImpl) DeleteByRecordId(ctx context.Context, recordId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("record_id = ?", recordId).Delete(&model.ContentEmbedding{}).Error
}

func (r *ContentEmbeddingRepositoryImpl) DeleteAllByTenantIdUnscoped(ctx context.Context, tenantId uuid.UUID) error {
	subQuery := r.db.Table("content_records").Select("id").Where("tenant_id = ?", tenantId)
	return r.db.WithContext(ctx).Unscoped().Where("record_id IN (?)", subQuery).Delete(&model.ContentEmbedding{}).Error
}

func (r *ContentEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentEmbedding, error) {
	var m model.ContentEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentEmbedding, error) {
	var models []*model.ContentEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ContentEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ContentEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns embeddings with similarity scores, filtered by threshold.
// Cosine distance in pgvector is 1 - cosine_similarity, so
// 1 - (embedding_value <=> query_vector) = cosine_similarity.
func (r *ContentEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, tenantId uuid.UUID, threshold float64) ([]*contract.ScoredContentEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ContentEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("content_embeddings").
		Select("content_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN content_records ON content_records.id = content_embeddings.record_id").
		Where("content_records.tenant_id = ?", tenantId).
		Where("content_embeddings.deleted_at IS NULL").
		Where("content_records.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scoredEmbeddings := make([]*contract.ScoredContentEmbedding, len(results))
	for i, res := range results {
		scoredEmbeddings[i] = &contract.ScoredContentEmbedding{
			Embedding:  r.mapper.ToEntity(&res.ContentEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scoredEmbeddings, nil
}
