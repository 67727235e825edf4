package service

import (
	"context"
	"sync"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/internal/repository/specification"
	"ai-shopassist-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory repository fakes. Specifications are interpreted structurally
// instead of through GORM, so service logic runs against plain slices.

type fakeProductRepo struct {
	mu       sync.Mutex
	products []*entity.Product

	similar       []*contract.ScoredProduct
	lastQueryDim  int
	createErr     error
	updateErr     error
	findErr       error
	deactivateErr error
	searchErr     error
}

func (r *fakeProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products = append(r.products, &cp)
	return nil
}

func (r *fakeProductRepo) CreateBulk(ctx context.Context, products []*entity.Product) error {
	for _, p := range products {
		if err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *entity.Product) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.products {
		if existing.Id == p.Id {
			cp := *p
			r.products[i] = &cp
			return nil
		}
	}
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.products {
		if p.Id == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeProductRepo) DeactivateMissing(ctx context.Context, externalIds []string) (int64, error) {
	if r.deactivateErr != nil {
		return 0, r.deactivateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	keep := make(map[string]bool, len(externalIds))
	for _, id := range externalIds {
		keep[id] = true
	}
	var n int64
	for _, p := range r.products {
		if p.Active && !keep[p.ExternalId] {
			p.Active = false
			n++
		}
	}
	return n, nil
}

func (r *fakeProductRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if productMatches(p, specs) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.products {
		if productMatches(p, specs) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return paginate(out, specs), nil
}

func (r *fakeProductRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *fakeProductRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredProduct, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQueryDim = len(embedding)
	var out []*contract.ScoredProduct
	for _, s := range r.similar {
		if s.Similarity < threshold {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func productMatches(p *entity.Product, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if p.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			if !containsId(s.IDs, p.Id) {
				return false
			}
		case specification.ByExternalId:
			if p.ExternalId != s.ExternalId {
				return false
			}
		case specification.ByCategory:
			if p.Category != s.Category {
				return false
			}
		case specification.ByGender:
			if p.Gender != s.Gender {
				return false
			}
		case specification.ByBrand:
			if p.Brand != s.Brand {
				return false
			}
		case specification.ByPriceRange:
			if p.Price < s.Min {
				return false
			}
			if s.Max > 0 && p.Price > s.Max {
				return false
			}
		case specification.ActiveOnly:
			if !p.Active {
				return false
			}
		case specification.NotDeleted:
			if p.IsDeleted {
				return false
			}
		}
	}
	return true
}

type fakeKnowledgeRepo struct {
	mu   sync.Mutex
	docs []*entity.KnowledgeDocument

	createErr error
	findErr   error
	deleteErr error
}

func (r *fakeKnowledgeRepo) Create(ctx context.Context, doc *entity.KnowledgeDocument) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	r.docs = append(r.docs, &cp)
	return nil
}

func (r *fakeKnowledgeRepo) Update(ctx context.Context, doc *entity.KnowledgeDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.docs {
		if existing.Id == doc.Id {
			cp := *doc
			r.docs[i] = &cp
			return nil
		}
	}
	return nil
}

func (r *fakeKnowledgeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.docs {
		if d.Id == id {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeKnowledgeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeDocument, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if documentMatches(d, specs) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeKnowledgeRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeDocument, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.KnowledgeDocument
	for _, d := range r.docs {
		if documentMatches(d, specs) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return paginate(out, specs), nil
}

func (r *fakeKnowledgeRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func documentMatches(d *entity.KnowledgeDocument, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if d.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			if !containsId(s.IDs, d.Id) {
				return false
			}
		case specification.ByCategory:
			if d.Category != s.Category {
				return false
			}
		case specification.BySource:
			if d.Source != s.Source {
				return false
			}
		}
	}
	return true
}

type fakeChunkRepo struct {
	mu     sync.Mutex
	chunks []*entity.KnowledgeChunk

	similar        []*contract.ScoredKnowledgeChunk
	createBulkErr  error
	deleteByDocErr error
	searchErr      error
}

func (r *fakeChunkRepo) Create(ctx context.Context, chunk *entity.KnowledgeChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *chunk
	r.chunks = append(r.chunks, &cp)
	return nil
}

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	if r.createBulkErr != nil {
		return r.createBulkErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range chunks {
		cp := *c
		r.chunks = append(r.chunks, &cp)
	}
	return nil
}

func (r *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.chunks {
		if c.Id == id {
			r.chunks = append(r.chunks[:i], r.chunks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	if r.deleteByDocErr != nil {
		return r.deleteByDocErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.KnowledgeChunk
	for _, c := range r.chunks {
		if c.DocumentId != documentId {
			kept = append(kept, c)
		}
	}
	r.chunks = kept
	return nil
}

func (r *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chunks {
		if chunkMatches(c, specs) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.KnowledgeChunk
	for _, c := range r.chunks {
		if chunkMatches(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return paginate(out, specs), nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredKnowledgeChunk, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*contract.ScoredKnowledgeChunk
	for _, s := range r.similar {
		if s.Similarity < threshold {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func chunkMatches(c *entity.KnowledgeChunk, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByDocumentId:
			if c.DocumentId != s.DocumentId {
				return false
			}
		}
	}
	return true
}

func containsId(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, specs []specification.Specification) []T {
	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			if p.Offset >= len(items) {
				return nil
			}
			items = items[p.Offset:]
			if p.Limit > 0 && p.Limit < len(items) {
				items = items[:p.Limit]
			}
		}
	}
	return items
}

// fakeUow hands out the shared fakes so a test and its service see the same
// state. Begin, Commit and Rollback only count calls.

type fakeUow struct {
	products *fakeProductRepo
	docs     *fakeKnowledgeRepo
	chunks   *fakeChunkRepo

	beginErr   error
	commitErr  error
	began      int
	committed  int
	rolledBack int
}

func (u *fakeUow) Begin(ctx context.Context) error {
	if u.beginErr != nil {
		return u.beginErr
	}
	u.began++
	return nil
}

func (u *fakeUow) Commit() error {
	if u.commitErr != nil {
		return u.commitErr
	}
	u.committed++
	return nil
}

func (u *fakeUow) Rollback() error {
	u.rolledBack++
	return nil
}

func (u *fakeUow) ProductRepository() contract.ProductRepository {
	return u.products
}

func (u *fakeUow) KnowledgeRepository() contract.KnowledgeRepository {
	return u.docs
}

func (u *fakeUow) KnowledgeChunkRepository() contract.KnowledgeChunkRepository {
	return u.chunks
}

type fakeUowFactory struct {
	uow *fakeUow
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{
		uow: &fakeUow{
			products: &fakeProductRepo{},
			docs:     &fakeKnowledgeRepo{},
			chunks:   &fakeChunkRepo{},
		},
	}
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// fakePublisher records index messages instead of hitting the pub/sub topic.

type indexedRef struct {
	kind string
	id   uuid.UUID
}

type fakePublisher struct {
	mu        sync.Mutex
	published []indexedRef
	err       error
}

func (p *fakePublisher) PublishIndexDocument(kind string, id uuid.UUID) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, indexedRef{kind: kind, id: id})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}
