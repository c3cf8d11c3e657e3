package embedding

import (
	"context"
	"fmt"
	"time"

	"doc-intel-be/internal/pkg/logger"
	"doc-intel-be/pkg/retry"

	"github.com/patrickmn/go-cache"
)

// Gateway wraps a provider with the behavior every caller needs: oversized
// input is truncated deterministically before the call, transient failures
// are retried with bounded backoff, and repeated query embeddings are served
// from a short-lived cache.
type Gateway struct {
	provider   EmbeddingProvider
	policy     retry.Policy
	maxChars   int
	queryCache *cache.Cache
	log        logger.ILogger
}

func NewGateway(provider EmbeddingProvider, policy retry.Policy, maxChars int, log logger.ILogger) *Gateway {
	if maxChars <= 0 {
		maxChars = 8000
	}
	return &Gateway{
		provider:   provider,
		policy:     policy,
		maxChars:   maxChars,
		queryCache: cache.New(15*time.Minute, 30*time.Minute),
		log:        log,
	}
}

// Embed converts one text into a vector. The input is cut at the configured
// rune bound, never dropped.
func (g *Gateway) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	truncated := truncateRunes(text, g.maxChars)
	if len(truncated) != len(text) {
		g.log.Warn("embedding", "Input truncated before embedding", map[string]interface{}{
			"original_len":  len(text),
			"truncated_len": len(truncated),
		})
	}

	if taskType == TaskTypeQuery {
		if cached, ok := g.queryCache.Get(truncated); ok {
			return cached.([]float32), nil
		}
	}

	var resp *EmbeddingResponse
	err := g.policy.Do(ctx, func() error {
		var genErr error
		resp, genErr = g.provider.Generate(ctx, truncated, taskType)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	values := resp.Embedding.Values
	if len(values) == 0 {
		return nil, fmt.Errorf("provider returned empty embedding")
	}

	if taskType == TaskTypeQuery {
		g.queryCache.SetDefault(truncated, values)
	}
	return values, nil
}

// EmbedBatch embeds texts one by one, preserving input order.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := g.Embed(ctx, t, taskType)
		if err != nil {
			return nil, fmt.Errorf("embedding item %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

// truncateRunes cuts text at a rune boundary so the result stays valid UTF-8
// and the same input always produces the same output.
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
