package llm

import (
	"context"
	"errors"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("llm provider disabled")

type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

type LLMClient interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
