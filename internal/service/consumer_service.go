package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/dto"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/unitofwork"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/embedding"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/events"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const ingestModule = "ingest"

var errNoChunks = errors.New("document produced no text chunks")

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	documentRepo      contract.DocumentRepository
	repoFactory       unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	splitter          *utils.RecursiveSplitter
	logger            logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	documentRepo contract.DocumentRepository,
	repoFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	splitter *utils.RecursiveSplitter,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		documentRepo:      documentRepo,
		repoFactory:       repoFactory,
		embeddingProvider: embeddingProvider,
		splitter:          splitter,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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

// processMessage always acks: a failed job marks the document as error
// instead of being redelivered forever.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishEmbedDocumentMessage
	if _, err := events.Decode(msg.Payload, events.TypeEmbedDocument, &payload); err != nil {
		cs.logger.Error(ingestModule, "Dropping malformed ingest message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	start := time.Now()
	chunkCount, err := cs.index(ctx, payload)
	if err != nil {
		cs.logger.Error(ingestModule, "Document indexing failed", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"error":       err.Error(),
		})
		if updErr := cs.documentRepo.UpdateStatus(ctx, payload.DocumentId, entity.DocumentStatusError, 0, err.Error()); updErr != nil {
			cs.logger.Error(ingestModule, "Failed to mark document as error", map[string]interface{}{
				"document_id": payload.DocumentId.String(),
				"error":       updErr.Error(),
			})
		}
		return
	}

	cs.logger.Info(ingestModule, "Document indexed", map[string]interface{}{
		"document_id": payload.DocumentId.String(),
		"chunks":      chunkCount,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func (cs *consumerService) index(ctx context.Context, payload dto.PublishEmbedDocumentMessage) (_ int, err error) {
	pieces := cs.splitter.Split(payload.Content)
	if len(pieces) == 0 {
		return 0, errNoChunks
	}

	chunks := make([]*entity.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		res, embedErr := cs.embeddingProvider.Generate(ctx, piece, embedding.TaskRetrievalDocument)
		if embedErr != nil {
			return 0, fmt.Errorf("embed chunk %d: %w", i, embedErr)
		}
		chunks = append(chunks, &entity.DocumentChunk{
			Id:             uuid.New(),
			DocumentId:     payload.DocumentId,
			Content:        piece,
			EmbeddingValue: res.Embedding.Values,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	uow := cs.repoFactory.NewUnitOfWork(ctx)
	if err = uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = uow.Rollback()
		}
	}()

	if err = uow.DocumentChunkRepository().DeleteByDocumentId(ctx, payload.DocumentId); err != nil {
		return 0, fmt.Errorf("clear old chunks: %w", err)
	}
	if err = uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	if err = uow.DocumentRepository().UpdateStatus(ctx, payload.DocumentId, entity.DocumentStatusIndexed, len(chunks), ""); err != nil {
		return 0, fmt.Errorf("mark indexed: %w", err)
	}
	if err = uow.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(chunks), nil
}
