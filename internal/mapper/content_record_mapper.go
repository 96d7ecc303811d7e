package mapper

import (
	"fmt"
	"time"

	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentRecordMapper struct{}

func NewContentRecordMapper() *ContentRecordMapper {
	return &ContentRecordMapper{}
}

func (m *ContentRecordMapper) ToEntity(e *model.ContentRecord) *entity.ContentRecord {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	categories := make(map[string]string, len(e.Categories))
	for k, v := range e.Categories {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			categories[k] = s
		} else {
			categories[k] = fmt.Sprintf("%v", v)
		}
	}

	return &entity.ContentRecord{
		Id:                 e.Id,
		TenantId:           e.TenantId,
		Title:              e.Title,
		Url:                e.Url,
		Path:               e.Path,
		Domain:             e.Domain,
		Summary:            e.Summary,
		Description:        e.Description,
		ContentType:        e.ContentType,
		Topic:              e.Topic,
		GeoFocus:           e.GeoFocus,
		Categories:         categories,
		IsMarketingContent: e.IsMarketingContent,
		WordCount:          e.WordCount,
		PublishedAt:        e.PublishedAt,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
		IsDeleted:          e.DeletedAt.Valid,
	}
}

func (m *ContentRecordMapper) ToModel(e *entity.ContentRecord) *model.ContentRecord {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	categories := make(datatypes.JSONMap, len(e.Categories))
	for k, v := range e.Categories {
		categories[k] = v
	}

	return &model.ContentRecord{
		Id:                 e.Id,
		TenantId:           e.TenantId,
		Title:              e.Title,
		Url:                e.Url,
		Path:               e.Path,
		Domain:             e.Domain,
		Summary:            e.Summary,
		Description:        e.Description,
		ContentType:        e.ContentType,
		Topic:              e.Topic,
		GeoFocus:           e.GeoFocus,
		Categories:         categories,
		IsMarketingContent: e.IsMarketingContent,
		WordCount:          e.WordCount,
		PublishedAt:        e.PublishedAt,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
	}
}

func (m *ContentRecordMapper) ToEntities(records []*model.ContentRecord) []*entity.ContentRecord {
	entities := make([]*entity.ContentRecord, len(records))
	for i, e := range records {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
