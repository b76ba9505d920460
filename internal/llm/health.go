package llm

import (
	"context"
	"fmt"
)

// CheckHealth sends a one-token chat completion and, when an embedder is
// given, a one-word embedding request. It returns the first failure.
func CheckHealth(ctx context.Context, chat LLMClient, embedder EmbedderClient) error {
	if chat == nil {
		return ErrDisabled
	}
	if _, err := chat.Generate(ctx, Request{Prompt: "ping", MaxTokens: 1}); err != nil {
		return fmt.Errorf("chat endpoint unavailable: %w", err)
	}
	if embedder == nil {
		return nil
	}
	if _, err := embedder.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("embedding endpoint unavailable: %w", err)
	}
	return nil
}
