package service

import (
	"context"
	"fmt"
	"log"
	"sync"
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

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"
)

const (
	feedSyncWorkers     = 8
	feedSyncMaxErrors   = 10
	feedSyncMaxProducts = 5000
	similarityFloor     = 0.1
	defaultListLimit    = 20
	defaultSimilarSize  = 5
)

type CatalogFilter struct {
	Category string
	Gender   string
	Brand    string
	Limit    int
	Offset   int
}

type ICatalogService interface {
	Upsert(ctx context.Context, req *dto.UpsertProductRequest) (*dto.ProductResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter CatalogFilter) ([]*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]*dto.ScoredProductResponse, error)
	FeedSync(ctx context.Context, req *dto.FeedSyncRequest) (*dto.FeedSyncResponse, error)
	Reindex(ctx context.Context) (*dto.ReindexResponse, error)
}

type catalogService struct {
	uowFactory       unitofwork.RepositoryFactory
	index            *search.Index
	indexer          embedding.Indexer
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	productMapper    *mapper.ProductMapper
	chunkMapper      *mapper.KnowledgeChunkMapper
	reindexGroup     singleflight.Group
}

func NewCatalogService(
	uowFactory unitofwork.RepositoryFactory,
	index *search.Index,
	indexer embedding.Indexer,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) ICatalogService {
	return &catalogService{
		uowFactory:       uowFactory,
		index:            index,
		indexer:          indexer,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		productMapper:    mapper.NewProductMapper(),
		chunkMapper:      mapper.NewKnowledgeChunkMapper(),
	}
}

func (cs *catalogService) Upsert(ctx context.Context, req *dto.UpsertProductRequest) (*dto.ProductResponse, error) {
	product, _, err := cs.upsertOne(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := cs.publisherService.PublishIndexDocument(constant.IndexKindProduct, product.Id); err != nil {
		log.Printf("[WARN] Failed to queue product %s for indexing: %v", product.Id, err)
	}

	return cs.toProductResponse(product), nil
}

func (cs *catalogService) Show(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil // Not found
	}
	return cs.toProductResponse(product), nil
}

func (cs *catalogService) List(ctx context.Context, filter CatalogFilter) ([]*dto.ProductResponse, error) {
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
	if filter.Gender != "" {
		specs = append(specs, specification.ByGender{Gender: filter.Gender})
	}
	if filter.Brand != "" {
		specs = append(specs, specification.ByBrand{Brand: filter.Brand})
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ProductResponse, len(products))
	for i, p := range products {
		out[i] = cs.toProductResponse(p)
	}
	return out, nil
}

func (cs *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProductRepository().Delete(ctx, id); err != nil {
		return err
	}
	cs.index.Remove(id.String())
	return nil
}

// Similar runs the durable pgvector path: nearest active products by stored
// embedding, excluding the anchor product itself.
func (cs *catalogService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]*dto.ScoredProductResponse, error) {
	if limit <= 0 {
		limit = defaultSimilarSize
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	queryVector := product.Embedding
	if len(queryVector) == 0 {
		// Row not embedded yet, derive the vector on the fly.
		queryVector = cs.indexer.Index(cs.productMapper.SearchText(product)).Embedding
	}

	scored, err := uow.ProductRepository().SearchSimilarWithScore(ctx, queryVector, limit+1, similarityFloor)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ScoredProductResponse, 0, limit)
	for _, s := range scored {
		if s.Product.Id == product.Id {
			continue
		}
		out = append(out, &dto.ScoredProductResponse{
			Product:    *cs.toProductResponse(s.Product),
			Similarity: s.Similarity,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// FeedSync applies a merchant feed drop. Rows are upserted on a bounded
// worker pool, each touched product is queued for re-indexing, and when the
// feed deactivated anything the whole snapshot is rebuilt so stale entries
// cannot linger in search.
func (cs *catalogService) FeedSync(ctx context.Context, req *dto.FeedSyncRequest) (*dto.FeedSyncResponse, error) {
	start := time.Now()

	if len(req.Products) > feedSyncMaxProducts {
		return nil, &dto.FeedLimitError{
			Limit:    feedSyncMaxProducts,
			Received: len(req.Products),
		}
	}

	pool, err := ants.NewPool(feedSyncWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed sync pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		created  int
		updated  int
		failed   int
		errs     []string
		indexIds []uuid.UUID
	)

	externalIds := make([]string, 0, len(req.Products))
	for i := range req.Products {
		externalIds = append(externalIds, req.Products[i].ExternalId)

		item := &req.Products[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			product, wasCreated, err := cs.upsertOne(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if len(errs) < feedSyncMaxErrors {
					errs = append(errs, fmt.Sprintf("%s: %v", item.ExternalId, err))
				}
				return
			}
			if wasCreated {
				created++
			} else {
				updated++
			}
			indexIds = append(indexIds, product.Id)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			failed++
			mu.Unlock()
		}
	}
	wg.Wait()

	var deactivated int64
	if req.DeactivateMissing {
		uow := cs.uowFactory.NewUnitOfWork(ctx)
		deactivated, err = uow.ProductRepository().DeactivateMissing(ctx, externalIds)
		if err != nil {
			return nil, fmt.Errorf("failed to deactivate missing products: %w", err)
		}
	}

	for _, id := range indexIds {
		if err := cs.publisherService.PublishIndexDocument(constant.IndexKindProduct, id); err != nil {
			log.Printf("[WARN] Failed to queue product %s for indexing: %v", id, err)
		}
	}

	// Deactivations are not row-addressable from here, so rebuild the
	// snapshot in one pass instead of chasing individual ids.
	if deactivated > 0 {
		if _, err := cs.Reindex(ctx); err != nil {
			log.Printf("[WARN] Post-sync reindex failed: %v", err)
		}
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: constant.EventCatalogSynced,
			Data: map[string]interface{}{
				"created":     created,
				"updated":     updated,
				"deactivated": deactivated,
				"failed":      failed,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish catalog synced event: %v", err)
		}
	}

	log.Printf("[INFO] Feed sync done: %d created, %d updated, %d deactivated, %d failed in %s",
		created, updated, deactivated, failed, time.Since(start))

	return &dto.FeedSyncResponse{
		Created:     created,
		Updated:     updated,
		Deactivated: int(deactivated),
		Failed:      failed,
		Errors:      errs,
		ElapsedMs:   time.Since(start).Milliseconds(),
	}, nil
}

type indexCounts struct {
	products int
	chunks   int
}

// Reindex rebuilds the in-memory snapshot from Postgres. Concurrent callers
// coalesce onto a single rebuild.
func (cs *catalogService) Reindex(ctx context.Context) (*dto.ReindexResponse, error) {
	start := time.Now()

	v, err, _ := cs.reindexGroup.Do("reindex", func() (interface{}, error) {
		return cs.rebuildIndex(ctx)
	})
	if err != nil {
		return nil, err
	}
	counts := v.(indexCounts)

	return &dto.ReindexResponse{
		Products:  counts.products,
		Chunks:    counts.chunks,
		ElapsedMs: time.Since(start).Milliseconds(),
	}, nil
}

func (cs *catalogService) rebuildIndex(ctx context.Context) (indexCounts, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	products, err := uow.ProductRepository().FindAll(ctx)
	if err != nil {
		return indexCounts{}, fmt.Errorf("failed to load products: %w", err)
	}

	docs := make([]search.Document, 0, len(products))
	for _, p := range products {
		doc := cs.productMapper.ToDocument(p)
		features := cs.indexer.Index(cs.productMapper.SearchText(p))
		doc.Keywords = features.Keywords
		if len(doc.Embedding) == 0 {
			doc.Embedding = features.Embedding
		}
		docs = append(docs, doc)
	}

	parents, err := uow.KnowledgeRepository().FindAll(ctx)
	if err != nil {
		return indexCounts{}, fmt.Errorf("failed to load knowledge documents: %w", err)
	}
	parentById := make(map[uuid.UUID]*entity.KnowledgeDocument, len(parents))
	for _, d := range parents {
		parentById[d.Id] = d
	}

	chunks, err := uow.KnowledgeChunkRepository().FindAll(ctx)
	if err != nil {
		return indexCounts{}, fmt.Errorf("failed to load knowledge chunks: %w", err)
	}
	for _, c := range chunks {
		doc := cs.chunkMapper.ToDocument(c, parentById[c.DocumentId])
		features := cs.indexer.Index(c.Content)
		doc.Keywords = features.Keywords
		if len(doc.Embedding) == 0 {
			doc.Embedding = features.Embedding
		}
		docs = append(docs, doc)
	}

	cs.index.Replace(docs)
	log.Printf("[INFO] Search index rebuilt: %d products, %d knowledge chunks", len(products), len(chunks))

	return indexCounts{products: len(products), chunks: len(chunks)}, nil
}

// upsertOne creates or updates a product row by external id. A product seen
// in a feed is always reactivated.
func (cs *catalogService) upsertOne(ctx context.Context, req *dto.UpsertProductRequest) (*entity.Product, bool, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ProductRepository().FindOne(ctx, specification.ByExternalId{ExternalId: req.ExternalId})
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		product := entity.Product{
			Id:          uuid.New(),
			ExternalId:  req.ExternalId,
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Gender:      req.Gender,
			Brand:       req.Brand,
			Price:       req.Price,
			Currency:    currencyOrDefault(req.Currency),
			ImageURL:    req.ImageURL,
			URL:         req.URL,
			Attributes:  req.Attributes,
			Active:      true,
			CreatedAt:   time.Now(),
		}
		if err := uow.ProductRepository().Create(ctx, &product); err != nil {
			return nil, false, err
		}
		return &product, true, nil
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.Category = req.Category
	existing.Gender = req.Gender
	existing.Brand = req.Brand
	existing.Price = req.Price
	existing.Currency = currencyOrDefault(req.Currency)
	existing.ImageURL = req.ImageURL
	existing.URL = req.URL
	existing.Attributes = req.Attributes
	existing.Active = true

	if err := uow.ProductRepository().Update(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (cs *catalogService) toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		Id:          p.Id,
		ExternalId:  p.ExternalId,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Gender:      p.Gender,
		Brand:       p.Brand,
		Price:       p.Price,
		Currency:    p.Currency,
		ImageURL:    p.ImageURL,
		URL:         p.URL,
		Attributes:  p.Attributes,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "USD"
	}
	return currency
}
