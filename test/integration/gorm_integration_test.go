package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/specification"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/pkg/database"
	"ai-shopassist-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ProductRepository())
	assert.NotNil(t, uow.KnowledgeRepository())
	assert.NotNil(t, uow.KnowledgeChunkRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Product Repository", func(t *testing.T) {
		count, err := uow.ProductRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Product count: %d", count)
	})

	t.Run("Check Knowledge Chunk Repository", func(t *testing.T) {
		count, err := uow.KnowledgeChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("KnowledgeChunk count: %d", count)
	})

	t.Run("Product Roundtrip With Embedding", func(t *testing.T) {
		ctx := context.Background()
		indexer := embedding.NewHeuristicIndexer()

		externalId := "integration-" + uuid.New().String()
		product := &entity.Product{
			Id:          uuid.New(),
			ExternalId:  externalId,
			Title:       "Integration Test Watch",
			Description: "A stainless steel chronograph used only by the test suite.",
			Category:    "watch",
			Gender:      "men",
			Brand:       "Testbrand",
			Price:       499,
			Currency:    "USD",
			Active:      true,
		}
		product.Embedding = indexer.Index(product.Title + " " + product.Description).Embedding

		err := uow.ProductRepository().Create(ctx, product)
		assert.NoError(t, err)
		defer uow.ProductRepository().Delete(ctx, product.Id)

		found, err := uow.ProductRepository().FindOne(ctx, specification.ByExternalId{ExternalId: externalId})
		assert.NoError(t, err)
		assert.NotNil(t, found)
		assert.Equal(t, product.Title, found.Title)
		assert.Len(t, found.Embedding, embedding.Dim)

		// pgvector path: the row must find itself as its own nearest neighbor.
		scored, err := uow.ProductRepository().SearchSimilarWithScore(ctx, product.Embedding, 5, 0.5)
		assert.NoError(t, err)
		if assert.NotEmpty(t, scored) {
			ids := make([]uuid.UUID, 0, len(scored))
			for _, s := range scored {
				ids = append(ids, s.Product.Id)
			}
			assert.Contains(t, ids, product.Id)
		}

		t.Log("Successfully roundtripped a product with a stored vector")
	})

	t.Run("Transactional Knowledge Rechunk", func(t *testing.T) {
		ctx := context.Background()

		doc := &entity.KnowledgeDocument{
			Id:      uuid.New(),
			Title:   "Integration Test Policy",
			Source:  "integration-suite",
			Content: "Orders ship within two business days. Returns are accepted within 30 days.",
		}
		err := uow.KnowledgeRepository().Create(ctx, doc)
		assert.NoError(t, err)
		defer uow.KnowledgeRepository().Delete(ctx, doc.Id)
		defer uow.KnowledgeChunkRepository().DeleteByDocumentId(ctx, doc.Id)

		// Chunk writes are transactional so a half-written chunk set never
		// becomes visible.
		txUow := uowFactory.NewUnitOfWork(ctx)
		err = txUow.Begin(ctx)
		assert.NoError(t, err)
		defer txUow.Rollback()

		indexer := embedding.NewHeuristicIndexer()
		chunks := []*entity.KnowledgeChunk{
			{
				Id:         uuid.New(),
				DocumentId: doc.Id,
				ChunkIndex: 0,
				Content:    "Orders ship within two business days.",
				Embedding:  indexer.Index("Orders ship within two business days.").Embedding,
			},
			{
				Id:         uuid.New(),
				DocumentId: doc.Id,
				ChunkIndex: 1,
				Content:    "Returns are accepted within 30 days.",
				Embedding:  indexer.Index("Returns are accepted within 30 days.").Embedding,
			},
		}

		err = txUow.KnowledgeChunkRepository().CreateBulk(ctx, chunks)
		assert.NoError(t, err)

		err = txUow.Commit()
		assert.NoError(t, err)

		count, err := uow.KnowledgeChunkRepository().Count(ctx, specification.ByDocumentId{DocumentId: doc.Id})
		assert.NoError(t, err)
		assert.EqualValues(t, 2, count)

		t.Log("Successfully created knowledge chunks in a transaction")
	})
}
