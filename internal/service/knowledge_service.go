package service

import (
	"context"
	"log"
	"time"

	"ai-shopassist-be/internal/constant"
	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/specification"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/search"

	"github.com/google/uuid"
)

const (
	knowledgeSearchThreshold = 0.2
	knowledgeSnippetLength   = 200
)

type KnowledgeFilter struct {
	Category string
	Source   string
	Limit    int
	Offset   int
}

type IKnowledgeService interface {
	Create(ctx context.Context, req *dto.CreateKnowledgeRequest) (*dto.KnowledgeResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.KnowledgeResponse, error)
	List(ctx context.Context, filter KnowledgeFilter) ([]*dto.KnowledgeResponse, error)
	Update(ctx context.Context, req *dto.UpdateKnowledgeRequest) (*dto.KnowledgeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]*dto.KnowledgeSearchResult, error)
}

type knowledgeService struct {
	uowFactory       unitofwork.RepositoryFactory
	index            *search.Index
	indexer          embedding.Indexer
	publisherService IPublisherService
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	index *search.Index,
	indexer embedding.Indexer,
	publisherService IPublisherService,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory:       uowFactory,
		index:            index,
		indexer:          indexer,
		publisherService: publisherService,
	}
}

func (ks *knowledgeService) Create(ctx context.Context, req *dto.CreateKnowledgeRequest) (*dto.KnowledgeResponse, error) {
	doc := entity.KnowledgeDocument{
		Id:        uuid.New(),
		Title:     req.Title,
		Source:    req.Source,
		Content:   req.Content,
		Category:  req.Category,
		Tags:      req.Tags,
		CreatedAt: time.Now(),
	}

	uow := ks.uowFactory.NewUnitOfWork(ctx)
	if err := uow.KnowledgeRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	if err := ks.publisherService.PublishIndexDocument(constant.IndexKindKnowledge, doc.Id); err != nil {
		log.Printf("[WARN] Failed to queue knowledge document %s for indexing: %v", doc.Id, err)
	}

	return ks.toKnowledgeResponse(&doc, 0), nil
}

func (ks *knowledgeService) Show(ctx context.Context, id uuid.UUID) (*dto.KnowledgeResponse, error) {
	uow := ks.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.KnowledgeRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil // Not found
	}

	chunkCount, err := uow.KnowledgeChunkRepository().Count(ctx, specification.ByDocumentId{DocumentId: id})
	if err != nil {
		return nil, err
	}

	return ks.toKnowledgeResponse(doc, int(chunkCount)), nil
}

func (ks *knowledgeService) List(ctx context.Context, filter KnowledgeFilter) ([]*dto.KnowledgeResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: filter.Limit, Offset: filter.Offset},
	}
	if filter.Category != "" {
		specs = append(specs, specification.ByCategory{Category: filter.Category})
	}
	if filter.Source != "" {
		specs = append(specs, specification.BySource{Source: filter.Source})
	}

	uow := ks.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.KnowledgeRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.KnowledgeResponse, len(docs))
	for i, doc := range docs {
		chunkCount, err := uow.KnowledgeChunkRepository().Count(ctx, specification.ByDocumentId{DocumentId: doc.Id})
		if err != nil {
			return nil, err
		}
		out[i] = ks.toKnowledgeResponse(doc, int(chunkCount))
	}
	return out, nil
}

func (ks *knowledgeService) Update(ctx context.Context, req *dto.UpdateKnowledgeRequest) (*dto.KnowledgeResponse, error) {
	uow := ks.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.KnowledgeRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil // Not found
	}

	doc.Title = req.Title
	doc.Source = req.Source
	doc.Content = req.Content
	doc.Category = req.Category
	doc.Tags = req.Tags

	if err := uow.KnowledgeRepository().Update(ctx, doc); err != nil {
		return nil, err
	}

	// Content changed, so the chunk set has to be rebuilt.
	if err := ks.publisherService.PublishIndexDocument(constant.IndexKindKnowledge, doc.Id); err != nil {
		log.Printf("[WARN] Failed to queue knowledge document %s for indexing: %v", doc.Id, err)
	}

	chunkCount, err := uow.KnowledgeChunkRepository().Count(ctx, specification.ByDocumentId{DocumentId: doc.Id})
	if err != nil {
		return nil, err
	}

	return ks.toKnowledgeResponse(doc, int(chunkCount)), nil
}

func (ks *knowledgeService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := ks.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.KnowledgeChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.KnowledgeRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	ks.index.RemoveByParent(id.String())
	return nil
}

// Search answers against stored chunk embeddings through pgvector, resolving
// each hit back to its parent document for the title.
func (ks *knowledgeService) Search(ctx context.Context, query string, limit int) ([]*dto.KnowledgeSearchResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	queryVector := ks.indexer.Index(query).Embedding

	uow := ks.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KnowledgeChunkRepository().SearchSimilarWithScore(ctx, queryVector, limit, knowledgeSearchThreshold)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return []*dto.KnowledgeSearchResult{}, nil
	}

	parentIds := make([]uuid.UUID, 0, len(scored))
	seen := make(map[uuid.UUID]bool)
	for _, s := range scored {
		if !seen[s.Chunk.DocumentId] {
			seen[s.Chunk.DocumentId] = true
			parentIds = append(parentIds, s.Chunk.DocumentId)
		}
	}

	parents, err := uow.KnowledgeRepository().FindAll(ctx, specification.ByIDs{IDs: parentIds})
	if err != nil {
		return nil, err
	}
	titleById := make(map[uuid.UUID]string, len(parents))
	for _, p := range parents {
		titleById[p.Id] = p.Title
	}

	out := make([]*dto.KnowledgeSearchResult, 0, len(scored))
	for _, s := range scored {
		snippet := s.Chunk.Content
		if len(snippet) > knowledgeSnippetLength {
			snippet = snippet[:knowledgeSnippetLength] + "..."
		}
		out = append(out, &dto.KnowledgeSearchResult{
			DocumentId: s.Chunk.DocumentId,
			Title:      titleById[s.Chunk.DocumentId],
			Snippet:    snippet,
			Similarity: s.Similarity,
		})
	}
	return out, nil
}

func (ks *knowledgeService) toKnowledgeResponse(doc *entity.KnowledgeDocument, chunkCount int) *dto.KnowledgeResponse {
	return &dto.KnowledgeResponse{
		Id:         doc.Id,
		Title:      doc.Title,
		Source:     doc.Source,
		Content:    doc.Content,
		Category:   doc.Category,
		Tags:       doc.Tags,
		ChunkCount: chunkCount,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}
