package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/agenthands/forcematch/internal/config"
)

// NewClient builds the chat and embedding clients for cfg.Provider. The
// "none" provider yields nil clients and no error; callers treat that as
// running without a model. The embedder is nil for providers without an
// embeddings API.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *log.Logger) (LLMClient, EmbedderClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var httpClient *http.Client
	if cfg.TimeoutSecs > 0 {
		httpClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}
	}

	switch provider {
	case "", "none":
		logger.Info("llm provider disabled, gift ideas use the fallback list")
		return nil, nil, nil

	case "openai", "lmstudio":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL, httpClient)
		return c, c, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return c, c, nil

	case "claude":
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return c, nil, nil

	case "ollama":
		baseURL := OllamaBaseURL(cfg.BaseURL)
		logger.Info("using ollama through its OpenAI-compatible API", "base_url", baseURL)

		apiKey := cfg.APIKey
		if apiKey == "" {
			// ignored by ollama, required by the client
			apiKey = "ollama"
		}
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL, httpClient)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// OllamaBaseURL points a plain ollama address at its /v1 API.
func OllamaBaseURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if strings.HasSuffix(baseURL, "/v1") {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/v1"
}
