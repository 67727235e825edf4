package main

import (
	"fmt"
	"os"

	"ai-shopassist-be/internal/config"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	fmt.Printf("=== Debug: Assistant Tuning & Index Coverage Check ===\n\n")

	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	// Effective tuning (env overrides applied on top of defaults)
	cfg := config.Load()
	tuning := cfg.Assistant.Tuning

	fmt.Println("📋 Effective Assistant Tuning:")
	fmt.Printf("   product limit         = %d\n", tuning.ProductLimit)
	fmt.Printf("   knowledge limit       = %d\n", tuning.KnowledgeLimit)
	fmt.Printf("   agentic min query len = %d\n", tuning.AgenticMinQueryLen)
	fmt.Printf("   agentic min confidence= %.2f\n", tuning.AgenticMinConfidence)
	fmt.Printf("   branch timeout        = %s\n", tuning.BranchTimeout)
	fmt.Printf("   request timeout       = %s\n", cfg.Assistant.RequestTimeout)
	fmt.Printf("   product weights       = semantic %.2f / keyword %.2f / min score %.2f\n",
		tuning.ProductWeights.Semantic, tuning.ProductWeights.Keyword, tuning.ProductWeights.MinScore)
	fmt.Printf("   knowledge weights     = semantic %.2f / keyword %.2f / min score %.2f\n",
		tuning.KnowledgeWeights.Semantic, tuning.KnowledgeWeights.Keyword, tuning.KnowledgeWeights.MinScore)

	if tuning.AgenticMinConfidence > 0.95 {
		fmt.Println("\n⚠️  ASSISTANT_AGENTIC_MIN_CONFIDENCE IS TOO HIGH!")
		fmt.Println("   Almost no analysis reaches that confidence, so the agentic")
		fmt.Println("   strategy will never be selected. Recommended: 0.6 - 0.8")
	}
	if tuning.ProductWeights.MinScore >= tuning.ProductWeights.MaxScore() {
		fmt.Println("\n⚠️  PRODUCT MinScore >= MaxScore: every result gets filtered!")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		fmt.Println("\n❌ DB_CONNECTION_STRING not set in environment")
		return
	}

	fmt.Printf("\n📡 Connecting to database...\n")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Printf("❌ Database connection failed: %v\n", err)
		return
	}

	fmt.Printf("✅ Connected!\n\n")

	// Check product embedding coverage
	fmt.Println("📋 Product Embedding Status:")
	var total, active, embedded int64
	db.Table("products").Where("deleted_at IS NULL").Count(&total)
	db.Table("products").Where("deleted_at IS NULL AND active = true").Count(&active)
	db.Table("products").Where("deleted_at IS NULL AND embedding IS NOT NULL").Count(&embedded)
	fmt.Printf("   Total products:  %d\n", total)
	fmt.Printf("   Active products: %d\n", active)
	fmt.Printf("   With embeddings: %d\n", embedded)

	if embedded == 0 && total > 0 {
		fmt.Println("\n⚠️  PROBLEM: Catalog has products but NO embeddings!")
		fmt.Println("   Semantic recall will always return empty.")
		fmt.Println("   The index consumer has not processed the catalog yet.")
	}

	// Check knowledge chunk coverage
	fmt.Println("\n📋 Knowledge Base Status:")
	var docs, chunks int64
	db.Table("knowledge_documents").Where("deleted_at IS NULL").Count(&docs)
	db.Table("knowledge_chunks").Where("deleted_at IS NULL").Count(&chunks)
	fmt.Printf("   Documents: %d\n", docs)
	fmt.Printf("   Chunks:    %d\n", chunks)

	if docs > 0 && chunks == 0 {
		fmt.Println("\n⚠️  PROBLEM: Documents exist but were never chunked!")
		fmt.Println("   Check that the consumer worker is running.")
	}

	fmt.Println("\n=== Debug Complete ===")
}
