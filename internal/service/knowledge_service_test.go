package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-shopassist-be/internal/constant"
	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/contract"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/search"

	"github.com/google/uuid"
)

func newTestKnowledgeService(factory *fakeUowFactory) (IKnowledgeService, *search.Index, *fakePublisher) {
	index := search.NewIndex()
	publisher := &fakePublisher{}
	svc := NewKnowledgeService(factory, index, embedding.NewHeuristicIndexer(), publisher)
	return svc, index, publisher
}

func seedKnowledgeDoc(repo *fakeKnowledgeRepo, title, content string) *entity.KnowledgeDocument {
	d := &entity.KnowledgeDocument{
		Id:        uuid.New(),
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}
	repo.docs = append(repo.docs, d)
	return d
}

func seedChunk(repo *fakeChunkRepo, docId uuid.UUID, idx int, content string) *entity.KnowledgeChunk {
	c := &entity.KnowledgeChunk{
		Id:         uuid.New(),
		DocumentId: docId,
		ChunkIndex: idx,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	repo.chunks = append(repo.chunks, c)
	return c
}

func TestKnowledgeCreateQueuesIndexing(t *testing.T) {
	factory := newFakeUowFactory()
	svc, _, publisher := newTestKnowledgeService(factory)

	res, err := svc.Create(context.Background(), &dto.CreateKnowledgeRequest{
		Title:   "Shipping & Returns Policy",
		Content: "Orders ship within two business days.",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if res.Title != "Shipping & Returns Policy" {
		t.Errorf("Title = %q, want request title", res.Title)
	}
	if res.ChunkCount != 0 {
		t.Errorf("ChunkCount = %d, want 0 before the consumer runs", res.ChunkCount)
	}
	if len(factory.uow.docs.docs) != 1 {
		t.Fatalf("stored documents = %d, want 1", len(factory.uow.docs.docs))
	}
	if publisher.count() != 1 {
		t.Fatalf("index messages = %d, want 1", publisher.count())
	}
	if publisher.published[0].kind != constant.IndexKindKnowledge {
		t.Errorf("index kind = %q, want %q", publisher.published[0].kind, constant.IndexKindKnowledge)
	}
}

func TestKnowledgeShowCountsChunks(t *testing.T) {
	factory := newFakeUowFactory()
	doc := seedKnowledgeDoc(factory.uow.docs, "Watch Sizing Guide", "Measure your wrist.")
	seedChunk(factory.uow.chunks, doc.Id, 0, "Measure your wrist.")
	seedChunk(factory.uow.chunks, doc.Id, 1, "Case diameters explained.")
	seedChunk(factory.uow.chunks, uuid.New(), 0, "Unrelated chunk.")
	svc, _, _ := newTestKnowledgeService(factory)

	res, err := svc.Show(context.Background(), doc.Id)
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if res == nil {
		t.Fatal("Show() = nil, want document")
	}
	if res.ChunkCount != 2 {
		t.Errorf("ChunkCount = %d, want 2", res.ChunkCount)
	}
}

func TestKnowledgeShowNotFound(t *testing.T) {
	factory := newFakeUowFactory()
	svc, _, _ := newTestKnowledgeService(factory)

	res, err := svc.Show(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if res != nil {
		t.Errorf("Show() = %+v, want nil for missing document", res)
	}
}

func TestKnowledgeUpdateQueuesReindexing(t *testing.T) {
	factory := newFakeUowFactory()
	doc := seedKnowledgeDoc(factory.uow.docs, "Old Title", "Old content.")
	svc, _, publisher := newTestKnowledgeService(factory)

	res, err := svc.Update(context.Background(), &dto.UpdateKnowledgeRequest{
		Id:      doc.Id,
		Title:   "Watch Sizing Guide",
		Content: "Measure your wrist before choosing a case size.",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if res.Title != "Watch Sizing Guide" {
		t.Errorf("Title = %q, want updated title", res.Title)
	}
	if publisher.count() != 1 {
		t.Errorf("index messages = %d, want 1 (content changed)", publisher.count())
	}

	stored := factory.uow.docs.docs[0]
	if stored.Content != "Measure your wrist before choosing a case size." {
		t.Errorf("stored content = %q, want updated content", stored.Content)
	}
}

func TestKnowledgeUpdateNotFound(t *testing.T) {
	factory := newFakeUowFactory()
	svc, _, publisher := newTestKnowledgeService(factory)

	res, err := svc.Update(context.Background(), &dto.UpdateKnowledgeRequest{
		Id:      uuid.New(),
		Title:   "Anything",
		Content: "Anything",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if res != nil {
		t.Errorf("Update() = %+v, want nil for missing document", res)
	}
	if publisher.count() != 0 {
		t.Errorf("index messages = %d, want 0", publisher.count())
	}
}

func TestKnowledgeDeleteCascades(t *testing.T) {
	factory := newFakeUowFactory()
	doc := seedKnowledgeDoc(factory.uow.docs, "Shipping Policy", "Orders ship fast.")
	seedChunk(factory.uow.chunks, doc.Id, 0, "Orders ship fast.")
	seedChunk(factory.uow.chunks, doc.Id, 1, "Returns within 30 days.")
	svc, index, _ := newTestKnowledgeService(factory)

	index.Upsert(search.Document{
		ID:       doc.Id.String() + "#0",
		ParentID: doc.Id.String(),
		Kind:     search.KindKnowledge,
		Active:   true,
	})
	index.Upsert(search.Document{
		ID:       doc.Id.String() + "#1",
		ParentID: doc.Id.String(),
		Kind:     search.KindKnowledge,
		Active:   true,
	})

	if err := svc.Delete(context.Background(), doc.Id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(factory.uow.docs.docs) != 0 {
		t.Errorf("stored documents = %d, want 0", len(factory.uow.docs.docs))
	}
	if len(factory.uow.chunks.chunks) != 0 {
		t.Errorf("stored chunks = %d, want 0", len(factory.uow.chunks.chunks))
	}
	if index.Count(search.KindKnowledge) != 0 {
		t.Errorf("indexed chunks = %d, want 0 after delete", index.Count(search.KindKnowledge))
	}
	if factory.uow.began != 1 || factory.uow.committed != 1 {
		t.Errorf("tx began/committed = %d/%d, want 1/1", factory.uow.began, factory.uow.committed)
	}
}

func TestKnowledgeSearchResolvesTitles(t *testing.T) {
	factory := newFakeUowFactory()
	shipping := seedKnowledgeDoc(factory.uow.docs, "Shipping Policy", "")
	sizing := seedKnowledgeDoc(factory.uow.docs, "Watch Sizing Guide", "")

	longContent := strings.Repeat("Wrist measurement drives the right case size. ", 10)
	factory.uow.chunks.similar = []*contract.ScoredKnowledgeChunk{
		{
			Chunk:      &entity.KnowledgeChunk{Id: uuid.New(), DocumentId: shipping.Id, Content: "Orders ship within two business days."},
			Similarity: 0.88,
		},
		{
			Chunk:      &entity.KnowledgeChunk{Id: uuid.New(), DocumentId: sizing.Id, Content: longContent},
			Similarity: 0.74,
		},
	}
	svc, _, _ := newTestKnowledgeService(factory)

	res, err := svc.Search(context.Background(), "how long does shipping take", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("Search() = %d results, want 2", len(res))
	}

	if res[0].Title != "Shipping Policy" {
		t.Errorf("Title = %q, want parent document title", res[0].Title)
	}
	if res[0].Snippet != "Orders ship within two business days." {
		t.Errorf("short snippet should pass through unchanged, got %q", res[0].Snippet)
	}
	if len(res[1].Snippet) != knowledgeSnippetLength+3 {
		t.Errorf("snippet length = %d, want %d plus ellipsis", len(res[1].Snippet), knowledgeSnippetLength)
	}
	if !strings.HasSuffix(res[1].Snippet, "...") {
		t.Error("long snippet should end with an ellipsis")
	}
}

func TestKnowledgeSearchEmpty(t *testing.T) {
	factory := newFakeUowFactory()
	svc, _, _ := newTestKnowledgeService(factory)

	res, err := svc.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res == nil {
		t.Fatal("Search() = nil, want empty slice")
	}
	if len(res) != 0 {
		t.Errorf("Search() = %d results, want 0", len(res))
	}
}
