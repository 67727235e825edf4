package main

import (
	"log"
	"os"
	"strings"

	"ai-shopassist-be/pkg/database"

	"github.com/joho/godotenv"
)

type ProductRow struct {
	ID         string `gorm:"type:uuid;primary_key"`
	ExternalID string
	Title      string
	Category   string
	Active     bool
}

type ChunkRow struct {
	ID         string `gorm:"type:uuid;primary_key"`
	DocumentID string `gorm:"type:uuid"`
	ChunkIndex int
	Content    string
}

func main() {
	// 1. Load Environment
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to DB
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("🔍 DATA INTEGRITY CHECK")

	// 3. Duplicate external ids would break feed sync upserts
	type DupeRow struct {
		ExternalID string
		Copies     int
	}
	var dupes []DupeRow
	if err := db.Table("products").
		Select("external_id, COUNT(*) as copies").
		Where("deleted_at IS NULL").
		Group("external_id").
		Having("COUNT(*) > 1").
		Scan(&dupes).Error; err != nil {
		log.Fatal("Duplicate check failed:", err)
	}
	log.Printf("Duplicate external_ids: %d", len(dupes))
	for _, d := range dupes {
		log.Printf("    ⚠️  '%s' appears %d times", d.ExternalID, d.Copies)
	}

	// 4. Active products missing embeddings (invisible to semantic recall)
	var unembedded []ProductRow
	if err := db.Table("products").
		Select("id, external_id, title, category, active").
		Where("deleted_at IS NULL AND active = true AND embedding IS NULL").
		Limit(20).
		Find(&unembedded).Error; err != nil {
		log.Fatal("Embedding check failed:", err)
	}

	log.Printf("Active products without embeddings: %d (showing up to 20)", len(unembedded))
	for i, p := range unembedded {
		log.Println(strings.Repeat("─", 50))
		log.Printf("[%d] ID: %s", i+1, p.ID)
		log.Printf("    External: '%s'", p.ExternalID)
		log.Printf("    Title: '%s'", p.Title)
		log.Printf("    Category: %s", p.Category)
	}

	// 5. Orphaned chunks (parent document deleted but cascade missed them)
	var orphans []ChunkRow
	if err := db.Table("knowledge_chunks").
		Select("knowledge_chunks.id, knowledge_chunks.document_id, knowledge_chunks.chunk_index, knowledge_chunks.content").
		Joins("LEFT JOIN knowledge_documents ON knowledge_documents.id = knowledge_chunks.document_id AND knowledge_documents.deleted_at IS NULL").
		Where("knowledge_chunks.deleted_at IS NULL AND knowledge_documents.id IS NULL").
		Find(&orphans).Error; err != nil {
		log.Fatal("Orphan check failed:", err)
	}

	log.Printf("Orphaned knowledge chunks: %d", len(orphans))
	for i, c := range orphans {
		log.Println(strings.Repeat("─", 50))
		log.Printf("[%d] Chunk ID: %s (index %d)", i+1, c.ID, c.ChunkIndex)
		log.Printf("    Missing document: %s", c.DocumentID)
		if len(c.Content) > 100 {
			log.Printf("    Start: %.50s...", c.Content)
		} else {
			log.Printf("    Content: %s", c.Content)
		}
	}

	// 6. Chunk index gaps per document (rechunk that half-finished)
	type GapRow struct {
		DocumentID string
		Chunks     int
		MaxIndex   int
	}
	var gaps []GapRow
	if err := db.Table("knowledge_chunks").
		Select("document_id, COUNT(*) as chunks, MAX(chunk_index) as max_index").
		Where("deleted_at IS NULL").
		Group("document_id").
		Having("COUNT(*) != MAX(chunk_index) + 1").
		Scan(&gaps).Error; err != nil {
		log.Fatal("Gap check failed:", err)
	}

	log.Printf("Documents with chunk index gaps: %d", len(gaps))
	for _, g := range gaps {
		log.Printf("    ⚠️  %s: %d chunks but max index %d", g.DocumentID, g.Chunks, g.MaxIndex)
	}

	if len(dupes) == 0 && len(unembedded) == 0 && len(orphans) == 0 && len(gaps) == 0 {
		log.Println("✅ No integrity problems found")
	}
}
