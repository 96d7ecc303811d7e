package implementation

import (
	"context"
	"errors"
	"fmt"

	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/mapper"
	"content-advisor-be/internal/model"
	"content-advisor-be/internal/repository/contract"
	"content-advisor-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContentRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentRecordMapper
}

func NewContentRecordRepository(db *gorm.DB) contract.ContentRecordRepository {
	return &ContentRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentRecordMapper(),
	}
}

func (r *ContentRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContentRecordRepositoryImpl) Create(ctx context.Context, record *entity.ContentRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentRecordRepositoryImpl) Update(ctx context.Context, record *entity.ContentRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentRecordRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ContentRecord{}, id).Error
}

func (r *ContentRecordRepositoryImpl) DeleteAllByTenantIdUnscoped(ctx context.Context, tenantId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("tenant_id = ?", tenantId).Delete(&model.ContentRecord{}).Error
}

func (r *ContentRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentRecord, error) {
	var m model.ContentRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentRecord, error) {
	var models []*model.ContentRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ContentRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ContentRecord{}).Count(&count).Error
	return count, err
}

func (r *ContentRecordRepositoryImpl) CountByCategory(ctx context.Context, field string, specs ...specification.Specification) ([]contract.CategoryCount, error) {
	expr, _ := specification.ColumnForCategory(field)

	type row struct {
		Value string
		Count int64
	}
	var rows []row

	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ContentRecord{}), specs...)
	err := query.
		Select(fmt.Sprintf("COALESCE(%s, 'Unknown') as value, COUNT(*) as count", expr)).
		Group("value").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]contract.CategoryCount, len(rows))
	for i, rw := range rows {
		counts[i] = contract.CategoryCount{Value: rw.Value, Count: rw.Count}
	}
	return counts, nil
}
