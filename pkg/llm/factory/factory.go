package factory

import (
	"fmt"
	"strings"

	"ai-shopassist-be/pkg/llm"
	"ai-shopassist-be/pkg/llm/huggingface"
	"ai-shopassist-be/pkg/llm/ollama"
)

// NewLLMProvider builds the answer-generation backend from config. Ollama is
// the default so a fresh checkout works without any API key.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch strings.ToLower(providerType) {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
