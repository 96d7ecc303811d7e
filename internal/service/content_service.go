package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"content-advisor-be/internal/dto"
	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/pkg/logger"
	"content-advisor-be/internal/repository/specification"
	"content-advisor-be/internal/repository/unitofwork"
	"content-advisor-be/pkg/events"
	pktNats "content-advisor-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IContentService manages the tenant content catalog. Every write schedules
// re-embedding through the publisher so the vector index follows the catalog.
type IContentService interface {
	Create(ctx context.Context, tenantId uuid.UUID, request *dto.CreateContentRecordRequest) (*dto.ContentRecordResponse, error)
	Update(ctx context.Context, tenantId uuid.UUID, request *dto.UpdateContentRecordRequest) (*dto.ContentRecordResponse, error)
	Delete(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error
	Get(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.ContentRecordResponse, error)
	List(ctx context.Context, tenantId uuid.UUID, request *dto.ListContentRecordsRequest) (*dto.ListContentRecordsResponse, error)
}

type contentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
}

func NewContentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IContentService {
	return &contentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
	}
}

func (c *contentService) Create(ctx context.Context, tenantId uuid.UUID, request *dto.CreateContentRecordRequest) (*dto.ContentRecordResponse, error) {
	record := &entity.ContentRecord{
		Id:                 uuid.New(),
		TenantId:           tenantId,
		Title:              request.Title,
		Url:                request.Url,
		Path:               request.Path,
		Domain:             request.Domain,
		Summary:            request.Summary,
		Description:        request.Description,
		ContentType:        request.ContentType,
		Topic:              request.Topic,
		GeoFocus:           request.GeoFocus,
		Categories:         request.Categories,
		IsMarketingContent: request.IsMarketingContent,
		WordCount:          request.WordCount,
		PublishedAt:        request.PublishedAt,
		CreatedAt:          time.Now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentRecordRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create content record: %w", err)
	}

	if err := c.scheduleEmbedding(ctx, record.Id); err != nil {
		return nil, err
	}

	return toContentRecordResponse(record), nil
}

func (c *contentService) Update(ctx context.Context, tenantId uuid.UUID, request *dto.UpdateContentRecordRequest) (*dto.ContentRecordResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.ContentRecordRepository().FindOne(ctx,
		specification.ByID{ID: request.Id},
		specification.ByTenant{TenantId: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "content record not found")
	}

	record.Title = request.Title
	record.Url = request.Url
	record.Path = request.Path
	record.Domain = request.Domain
	record.Summary = request.Summary
	record.Description = request.Description
	record.ContentType = request.ContentType
	record.Topic = request.Topic
	record.GeoFocus = request.GeoFocus
	record.Categories = request.Categories
	record.IsMarketingContent = request.IsMarketingContent
	record.WordCount = request.WordCount
	record.PublishedAt = request.PublishedAt

	if err := uow.ContentRecordRepository().Update(ctx, record); err != nil {
		return nil, fmt.Errorf("update content record: %w", err)
	}

	if err := c.scheduleEmbedding(ctx, record.Id); err != nil {
		return nil, err
	}

	return toContentRecordResponse(record), nil
}

func (c *contentService) Delete(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.ContentRecordRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByTenant{TenantId: tenantId},
	)
	if err != nil {
		return err
	}
	if record == nil {
		return fiber.NewError(fiber.StatusNotFound, "content record not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ContentEmbeddingRepository().DeleteByRecordId(ctx, id); err != nil {
		return err
	}
	if err := uow.ContentRecordRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func (c *contentService) Get(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.ContentRecordResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.ContentRecordRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByTenant{TenantId: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "content record not found")
	}
	return toContentRecordResponse(record), nil
}

func (c *contentService) List(ctx context.Context, tenantId uuid.UUID, request *dto.ListContentRecordsRequest) (*dto.ListContentRecordsResponse, error) {
	limit := request.Limit
	if limit <= 0 {
		limit = 20
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ContentRecordRepository()

	totalCount, err := repo.Count(ctx, specification.ByTenant{TenantId: tenantId})
	if err != nil {
		return nil, err
	}

	records, err := repo.FindAll(ctx,
		specification.ByTenant{TenantId: tenantId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: request.Skip},
	)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ContentRecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, *toContentRecordResponse(record))
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))
	return &dto.ListContentRecordsResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       request.Skip/limit + 1,
		TotalPages: totalPages,
	}, nil
}

// scheduleEmbedding enqueues the embed job and emits the audit event.
func (c *contentService) scheduleEmbedding(ctx context.Context, recordId uuid.UUID) error {
	payload := dto.PublishEmbedRecordMessage{RecordId: recordId}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := c.publisherService.Publish(ctx, payloadJson); err != nil {
		return fmt.Errorf("schedule embedding: %w", err)
	}

	// Audit event is auxiliary; log and move on when the bus is down.
	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeContentRecordIndexed,
			Data: map[string]interface{}{
				"record_id": recordId,
			},
			OccurredAt: time.Now(),
		}
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.log.Warn("content", "failed to publish record indexed event", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func toContentRecordResponse(record *entity.ContentRecord) *dto.ContentRecordResponse {
	return &dto.ContentRecordResponse{
		Id:                 record.Id,
		Title:              record.Title,
		Url:                record.Url,
		ContentType:        record.ContentType,
		Topic:              record.Topic,
		GeoFocus:           record.GeoFocus,
		Categories:         record.Categories,
		IsMarketingContent: record.IsMarketingContent,
		WordCount:          record.WordCount,
		CreatedAt:          record.CreatedAt,
	}
}
