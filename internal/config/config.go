package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"ai-shopassist-be/pkg/assistant/strategy"
	"ai-shopassist-be/pkg/search"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Ai        AIConfig
	Keys      APIKeys
	Assistant AssistantConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IndexTopicName     string
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	Backend string        // "memory" or "redis"
	TTL     time.Duration // idle retention, sliding on write
}

type AIConfig struct {
	EmbeddingProvider string // "heuristic", "ollama", "gemini" or "jina"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	LLMBaseURL        string
}

type APIKeys struct {
	HuggingFace  string
	GoogleGemini string
	Jina         string
}

// AssistantConfig bundles every ranking and orchestration knob. Defaults come
// from the packages themselves; each field can be overridden per deployment.
type AssistantConfig struct {
	Tuning         strategy.Tuning
	RequestTimeout time.Duration
	SearchLimit    int // catalog search endpoint page size
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	tuning := strategy.DefaultTuning()
	tuning.ProductWeights = loadWeights("SEARCH_PRODUCT", tuning.ProductWeights)
	tuning.KnowledgeWeights = loadWeights("SEARCH_KNOWLEDGE", tuning.KnowledgeWeights)
	tuning.ProductLimit = getEnvAsInt("ASSISTANT_PRODUCT_LIMIT", tuning.ProductLimit)
	tuning.KnowledgeLimit = getEnvAsInt("ASSISTANT_KNOWLEDGE_LIMIT", tuning.KnowledgeLimit)
	tuning.AgenticMinQueryLen = getEnvAsInt("ASSISTANT_AGENTIC_MIN_QUERY_LEN", tuning.AgenticMinQueryLen)
	tuning.AgenticMinConfidence = getEnvAsFloat("ASSISTANT_AGENTIC_MIN_CONFIDENCE", tuning.AgenticMinConfidence)
	tuning.BranchTimeout = getEnvAsDuration("ASSISTANT_BRANCH_TIMEOUT", tuning.BranchTimeout)

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			IndexTopicName:     getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			Backend: getEnv("SESSION_BACKEND", "memory"),
			TTL:     getEnvAsDuration("SESSION_TTL", time.Hour),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "heuristic"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
		},
		Keys: APIKeys{
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Assistant: AssistantConfig{
			Tuning:         tuning,
			RequestTimeout: getEnvAsDuration("ASSISTANT_REQUEST_TIMEOUT", 30*time.Second),
			SearchLimit:    getEnvAsInt("CATALOG_SEARCH_LIMIT", 20),
		},
	}
}

// loadWeights overrides the package defaults field by field, so a deployment
// can tune a single boost without restating the rest.
func loadWeights(prefix string, base search.Weights) search.Weights {
	base.Semantic = getEnvAsFloat(prefix+"_SEMANTIC_WEIGHT", base.Semantic)
	base.Keyword = getEnvAsFloat(prefix+"_KEYWORD_WEIGHT", base.Keyword)
	base.CategoryContent = getEnvAsFloat(prefix+"_CATEGORY_CONTENT_BOOST", base.CategoryContent)
	base.CategoryTitle = getEnvAsFloat(prefix+"_CATEGORY_TITLE_BOOST", base.CategoryTitle)
	base.Gender = getEnvAsFloat(prefix+"_GENDER_BOOST", base.Gender)
	base.Brand = getEnvAsFloat(prefix+"_BRAND_BOOST", base.Brand)
	base.BudgetFit = getEnvAsFloat(prefix+"_BUDGET_FIT_BOOST", base.BudgetFit)
	base.CategoryMissSoft = getEnvAsFloat(prefix+"_CATEGORY_MISS_SOFT_PENALTY", base.CategoryMissSoft)
	base.CategoryMissHard = getEnvAsFloat(prefix+"_CATEGORY_MISS_HARD_PENALTY", base.CategoryMissHard)
	base.BudgetMiss = getEnvAsFloat(prefix+"_BUDGET_MISS_PENALTY", base.BudgetMiss)
	base.MinScore = getEnvAsFloat(prefix+"_MIN_SCORE", base.MinScore)
	return base
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
