package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"content-advisor-be/internal/dto"
	"content-advisor-be/internal/entity"
	"content-advisor-be/internal/repository/specification"
	"content-advisor-be/internal/repository/unitofwork"
	"content-advisor-be/pkg/embedding"
	"content-advisor-be/pkg/textsplit"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Chunking tuned for embedding context limits: ~1500 chars per chunk
// (roughly 375 tokens) with 200 chars of overlap.
const (
	embedChunkSize    = 1500
	embedChunkOverlap = 200
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedRecordMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing embedding for record %s", payload.RecordId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.ContentRecordRepository().FindOne(ctx, specification.ByID{ID: payload.RecordId})
	if err != nil {
		log.Printf("[ERROR] Failed to get record %s: %v", payload.RecordId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if record == nil {
		log.Printf("[WARN] Record not found, skipping: %s", payload.RecordId)
		msg.Ack() // Record deleted in the meantime
		return
	}

	document := buildEmbedDocument(record)
	chunks := textsplit.Split(document, embedChunkSize, embedChunkOverlap)
	log.Printf("[INFO] Record %s split into %d chunks", payload.RecordId, len(chunks))

	var newEmbeddings []*entity.ContentEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of record %s: %v", i, payload.RecordId, err)
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &entity.ContentEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			RecordId:       record.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.ContentEmbeddingRepository().DeleteByRecordId(ctx, record.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	if len(newEmbeddings) > 0 {
		if err := uow.ContentEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			log.Printf("[ERROR] Failed to create bulk embeddings: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Indexed %d chunks for record %s", len(newEmbeddings), payload.RecordId)
	msg.Ack()
}

// buildEmbedDocument renders a record into the text that gets embedded:
// title, summary/description, and the category dimensions that make the
// record findable by meaning.
func buildEmbedDocument(record *entity.ContentRecord) string {
	doc := fmt.Sprintf("Title: %s\nTopic: %s\nType: %s\n\n%s",
		record.Title,
		record.Topic,
		record.ContentType,
		record.Snippet(),
	)
	fields := make([]string, 0, len(record.Categories))
	for field := range record.Categories {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		doc += fmt.Sprintf("\n%s: %s", field, record.Categories[field])
	}
	if record.PublishedAt != nil {
		doc += fmt.Sprintf("\nPublished: %s", record.PublishedAt.Format(time.RFC3339))
	}
	return doc
}
