package main

import (
	"log"
	"os"
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/mapper"
	"ai-shopassist-be/internal/model"
	"ai-shopassist-be/pkg/database"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/utils"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// Heuristic features, so the seeder works offline. The index consumer
	// re-embeds on the next reindex when a remote provider is configured.
	indexer := embedding.NewHeuristicIndexer()

	color.Cyan("Seeding Demo Catalog...")
	seedProducts(db, indexer)

	color.Cyan("Seeding Knowledge Base...")
	seedKnowledge(db, indexer)

	color.Green("✅ Demo data seeded successfully.")
}

func seedProducts(db *gorm.DB, indexer embedding.Indexer) {
	productMapper := mapper.NewProductMapper()

	products := []entity.Product{
		{
			ExternalId:  "watch-chrono-steel-42",
			Title:       "Chrono Steel 42",
			Description: "Automatic chronograph with a brushed stainless steel case and sapphire crystal. Built for daily wear with 100m water resistance.",
			Category:    "watch",
			Gender:      "men",
			Brand:       "Meridian",
			Price:       899,
			Currency:    "USD",
			Attributes: map[string]string{
				"movement":         "automatic",
				"case_size":        "42mm",
				"water_resistance": "100m",
				"strap":            "stainless steel",
			},
		},
		{
			ExternalId:  "watch-petite-lune-28",
			Title:       "Petite Lune 28",
			Description: "Slim quartz dress watch with a mother-of-pearl dial and an Italian leather strap. Elegant on a narrow wrist.",
			Category:    "watch",
			Gender:      "women",
			Brand:       "Meridian",
			Price:       749,
			Currency:    "USD",
			Attributes: map[string]string{
				"movement":  "quartz",
				"case_size": "28mm",
				"strap":     "leather",
			},
		},
		{
			ExternalId:  "watch-diver-pro-300",
			Title:       "Diver Pro 300",
			Description: "Professional dive watch with a unidirectional ceramic bezel, luminous markers and 300m water resistance.",
			Category:    "watch",
			Gender:      "men",
			Brand:       "Abyssal",
			Price:       1290,
			Currency:    "USD",
			Attributes: map[string]string{
				"movement":         "automatic",
				"water_resistance": "300m",
				"bezel":            "ceramic",
			},
		},
		{
			ExternalId:  "watch-regatta-gmt-40",
			Title:       "Regatta GMT",
			Description: "Dual time zone automatic with a two-tone bezel for travelers who sail between cities.",
			Category:    "watch",
			Gender:      "men",
			Brand:       "Meridian",
			Price:       1450,
			Currency:    "USD",
			Attributes: map[string]string{
				"movement":  "automatic gmt",
				"case_size": "40mm",
			},
		},
		{
			ExternalId:  "perfume-noir-absolu-50",
			Title:       "Noir Absolu",
			Description: "An intense extrait de parfum built around oud, amber and smoked leather. A statement evening fragrance.",
			Category:    "perfume",
			Gender:      "unisex",
			Brand:       "Maison Verre",
			Price:       185,
			Currency:    "USD",
			Attributes: map[string]string{
				"concentration": "extrait de parfum",
				"size":          "50ml",
				"notes":         "oud, amber, leather",
			},
		},
		{
			ExternalId:  "perfume-jardin-ete-100",
			Title:       "Jardin d'Ete",
			Description: "A bright eau de parfum of neroli, jasmine and sun-warmed citrus. Summer in a bottle.",
			Category:    "perfume",
			Gender:      "women",
			Brand:       "Maison Verre",
			Price:       120,
			Currency:    "USD",
			Attributes: map[string]string{
				"concentration": "eau de parfum",
				"size":          "100ml",
				"notes":         "neroli, jasmine, citrus",
			},
		},
		{
			ExternalId:  "perfume-cedar-vetiver-100",
			Title:       "Cedar & Vetiver",
			Description: "A grounded eau de toilette pairing dry cedarwood with earthy vetiver over a bergamot opening.",
			Category:    "perfume",
			Gender:      "men",
			Brand:       "Nordmark",
			Price:       95,
			Currency:    "USD",
			Attributes: map[string]string{
				"concentration": "eau de toilette",
				"size":          "100ml",
				"notes":         "cedarwood, vetiver, bergamot",
			},
		},
		{
			ExternalId:  "perfume-velvet-orchid-50",
			Title:       "Velvet Orchid Mist",
			Description: "A soft floral eau de toilette of orchid and vanilla for everyday wear.",
			Category:    "perfume",
			Gender:      "women",
			Brand:       "Nordmark",
			Price:       75,
			Currency:    "USD",
			Attributes: map[string]string{
				"concentration": "eau de toilette",
				"size":          "50ml",
				"notes":         "orchid, vanilla",
			},
		},
		{
			ExternalId:  "jewelry-aurora-pendant",
			Title:       "Aurora Pendant",
			Description: "18k gold pendant set with a luminous moonstone on a 45cm cable chain.",
			Category:    "jewelry",
			Gender:      "women",
			Brand:       "Lysande",
			Price:       340,
			Currency:    "USD",
			Attributes: map[string]string{
				"material":     "18k gold",
				"stone":        "moonstone",
				"chain_length": "45cm",
			},
		},
		{
			ExternalId:  "jewelry-signet-classic",
			Title:       "Signet Classic",
			Description: "Brushed sterling silver signet ring with a flat oval face, ready for engraving.",
			Category:    "jewelry",
			Gender:      "men",
			Brand:       "Lysande",
			Price:       420,
			Currency:    "USD",
			Attributes: map[string]string{
				"material": "sterling silver",
				"finish":   "brushed",
			},
		},
		{
			ExternalId:  "jewelry-eterna-band",
			Title:       "Eterna Band",
			Description: "Platinum eternity band fully set with pave diamonds. A lifetime piece.",
			Category:    "jewelry",
			Gender:      "unisex",
			Brand:       "Lysande",
			Price:       980,
			Currency:    "USD",
			Attributes: map[string]string{
				"material": "platinum",
				"stone":    "pave diamonds",
			},
		},
		{
			ExternalId:  "jewelry-luna-hoops",
			Title:       "Luna Hoops",
			Description: "Lightweight 14k gold hoop earrings with a hammered finish that catches the light.",
			Category:    "jewelry",
			Gender:      "women",
			Brand:       "Lysande",
			Price:       210,
			Currency:    "USD",
			Attributes: map[string]string{
				"material": "14k gold",
				"style":    "hoop earrings",
			},
		},
	}

	for i := range products {
		p := &products[i]

		// Check if product with this external id already exists
		var existing model.Product
		if err := db.Where("external_id = ?", p.ExternalId).First(&existing).Error; err == nil {
			color.Yellow("Product '%s' already exists, skipping...", p.ExternalId)
			continue
		}

		p.Id = uuid.New()
		p.Active = true
		p.CreatedAt = time.Now()
		p.Embedding = indexer.Index(productMapper.SearchText(p)).Embedding

		if err := db.Create(productMapper.ToModel(p)).Error; err != nil {
			color.Red("Error creating product '%s': %v", p.ExternalId, err)
		} else {
			color.Green("Created product: %s (%s)", p.Title, p.ExternalId)
		}
	}
}

func seedKnowledge(db *gorm.DB, indexer embedding.Indexer) {
	knowledgeMapper := mapper.NewKnowledgeMapper()
	chunkMapper := mapper.NewKnowledgeChunkMapper()

	docs := []entity.KnowledgeDocument{
		{
			Title:    "Shipping & Returns Policy",
			Source:   "policy",
			Category: "policies",
			Tags:     []string{"shipping", "returns"},
			Content: "We ship worldwide from our Copenhagen atelier. Standard delivery takes 3-5 business days within Europe " +
				"and 5-10 business days elsewhere; express options are available at checkout. All orders over 150 USD ship free. " +
				"Returns are accepted within 30 days of delivery for unworn items in original packaging. Engraved or personalized " +
				"pieces cannot be returned unless faulty. Refunds land on the original payment method within 5 business days of " +
				"us receiving the return. Watches returned without their protective caseback sticker may incur a restocking fee.",
		},
		{
			Title:    "Watch Sizing & Fit Guide",
			Source:   "guide",
			Category: "watch",
			Tags:     []string{"watches", "sizing"},
			Content: "Measure your wrist just below the wrist bone with a soft tape. Wrists under 16cm usually suit cases of " +
				"36mm or less, 16-18cm wrists wear 38-42mm comfortably, and larger wrists carry 42mm and up. Dress watches " +
				"traditionally run smaller and sit under a shirt cuff; dive and sports watches run larger for legibility. " +
				"Leather straps break in and fit closer over time, while metal bracelets can be sized link by link. If you are " +
				"between sizes, size down for a dress watch and up for a sports watch.",
		},
		{
			Title:    "Perfume Concentration Guide",
			Source:   "guide",
			Category: "perfume",
			Tags:     []string{"perfume", "guide"},
			Content: "Fragrance concentration determines strength and longevity. Eau de toilette sits around 5-15% perfume oil " +
				"and lasts 3-5 hours, ideal for daytime and office wear. Eau de parfum carries 15-20% oil and lasts 6-8 hours. " +
				"Extrait de parfum reaches 20-40% oil, wears closest to the skin and can last well beyond 8 hours, which makes " +
				"it the usual choice for evenings. Warm weather amplifies projection, so lighter concentrations work better in " +
				"summer; richer extraits come into their own in winter.",
		},
	}

	for i := range docs {
		doc := &docs[i]

		// Check if a document with this title already exists
		var existing model.KnowledgeDocument
		if err := db.Where("title = ?", doc.Title).First(&existing).Error; err == nil {
			color.Yellow("Knowledge document '%s' already exists, skipping...", doc.Title)
			continue
		}

		doc.Id = uuid.New()
		doc.CreatedAt = time.Now()

		if err := db.Create(knowledgeMapper.ToModel(doc)).Error; err != nil {
			color.Red("Error creating knowledge document '%s': %v", doc.Title, err)
			continue
		}

		// Chunk and embed immediately, same shape the index consumer produces.
		chunks := utils.SplitText(doc.Content, 1500, 200)
		for idx, chunkText := range chunks {
			chunk := &entity.KnowledgeChunk{
				Id:         uuid.New(),
				DocumentId: doc.Id,
				ChunkIndex: idx,
				Content:    chunkText,
				Embedding:  indexer.Index(chunkText).Embedding,
				CreatedAt:  time.Now(),
			}
			if err := db.Create(chunkMapper.ToModel(chunk)).Error; err != nil {
				color.Red("Error creating chunk %d of '%s': %v", idx, doc.Title, err)
			}
		}

		color.Green("Created knowledge document: %s (%d chunks)", doc.Title, len(chunks))
	}
}
