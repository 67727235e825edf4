package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-shopassist-be/internal/constant"
	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/mapper"
	"ai-shopassist-be/internal/repository/specification"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/events"
	pktNats "ai-shopassist-be/pkg/nats"
	"ai-shopassist-be/pkg/search"
	"ai-shopassist-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	indexer        embedding.Indexer
	index          *search.Index
	eventPublisher *pktNats.Publisher
	productMapper  *mapper.ProductMapper
	chunkMapper    *mapper.KnowledgeChunkMapper
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	indexer embedding.Indexer,
	index *search.Index,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		indexer:        indexer,
		index:          index,
		eventPublisher: eventPublisher,
		productMapper:  mapper.NewProductMapper(),
		chunkMapper:    mapper.NewKnowledgeChunkMapper(),
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
	var payload dto.IndexDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	switch payload.Kind {
	case constant.IndexKindProduct:
		cs.processProduct(ctx, msg, payload.Id)
	case constant.IndexKindKnowledge:
		cs.processKnowledge(ctx, msg, payload.Id)
	default:
		log.Printf("[ERROR] Unknown index kind %q for id %s", payload.Kind, payload.Id)
		msg.Ack()
	}
}

func (cs *consumerService) processProduct(ctx context.Context, msg *message.Message, id uuid.UUID) {
	log.Printf("[INFO] Indexing product %s", id)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		log.Printf("[ERROR] Failed to get product %s: %v", id, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if product == nil {
		log.Printf("[ERROR] Product not found: %s", id)
		msg.Ack() // Product deleted? Ack.
		return
	}

	features := cs.indexer.Index(cs.productMapper.SearchText(product))

	product.Embedding = features.Embedding
	if err := uow.ProductRepository().Update(ctx, product); err != nil {
		log.Printf("[ERROR] Failed to store embedding for product %s: %v", id, err)
		msg.Nack()
		return
	}

	doc := cs.productMapper.ToDocument(product)
	doc.Keywords = features.Keywords
	cs.index.Upsert(doc)

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: constant.EventProductIndexed,
			Data: map[string]interface{}{
				"product_id":  product.Id.String(),
				"external_id": product.ExternalId,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish product indexed event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Product indexed: %s (%s)", product.Id, product.Title)
	msg.Ack()
}

func (cs *consumerService) processKnowledge(ctx context.Context, msg *message.Message, id uuid.UUID) {
	log.Printf("[INFO] Indexing knowledge document %s", id)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.KnowledgeRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		log.Printf("[ERROR] Failed to get knowledge document %s: %v", id, err)
		msg.Nack()
		return
	}
	if doc == nil {
		log.Printf("[ERROR] Knowledge document not found: %s", id)
		msg.Ack() // Document deleted? Ack.
		return
	}

	// ChunkSize: 1500 chars (approx 375 tokens) - Ultra safe for context limits
	// Overlap: 200 chars
	chunks := utils.SplitText(doc.Content, 1500, 200)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var (
		newChunks  []*entity.KnowledgeChunk
		searchDocs []search.Document
	)
	for i, chunkText := range chunks {
		features := cs.indexer.Index(chunkText)

		chunk := &entity.KnowledgeChunk{
			Id:         uuid.New(),
			DocumentId: doc.Id,
			ChunkIndex: i,
			Content:    chunkText,
			Embedding:  features.Embedding,
			CreatedAt:  time.Now(),
		}
		newChunks = append(newChunks, chunk)

		searchDoc := cs.chunkMapper.ToDocument(chunk, doc)
		searchDoc.Keywords = features.Keywords
		searchDocs = append(searchDocs, searchDoc)
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	log.Printf("[INFO] Deleting old chunks for document %s", id)
	if err := uow.KnowledgeChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Creating %d new chunks for document %s", len(newChunks), id)
	if len(newChunks) > 0 {
		if err := uow.KnowledgeChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create bulk chunks: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	cs.index.RemoveByParent(doc.Id.String())
	for _, d := range searchDocs {
		cs.index.Upsert(d)
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: constant.EventKnowledgeIndexed,
			Data: map[string]interface{}{
				"document_id": doc.Id.String(),
				"chunks":      len(newChunks),
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish knowledge indexed event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Knowledge document processed: %d chunks for %s", len(newChunks), id)
	msg.Ack()
}
