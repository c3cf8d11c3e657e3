package search

import (
	"context"

	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/pkg/logger"
	"doc-intel-be/internal/repository/contract"
	"doc-intel-be/pkg/embedding"
	"doc-intel-be/pkg/rag/score"
)

// Orchestrator handles vector search and result ranking
type Orchestrator struct {
	embedder *embedding.Gateway
	chunks   contract.ChunkRepository
	logger   logger.ILogger
}

// NewOrchestrator creates a new search orchestrator
func NewOrchestrator(embedder *embedding.Gateway, chunks contract.ChunkRepository, log logger.ILogger) *Orchestrator {
	return &Orchestrator{
		embedder: embedder,
		chunks:   chunks,
		logger:   log,
	}
}

// Config encapsulates search parameters
type Config struct {
	TopK int
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		TopK: 5,
	}
}

// Execute embeds the query, runs the project-scoped vector search and
// returns scored chunks, best first. Failures carry their origin: embedding
// errors surface as ProviderError, store errors as StoreError.
func (o *Orchestrator) Execute(ctx context.Context, projectID, query string, config Config) ([]entity.ScoredChunk, error) {
	queryVector, err := o.embedder.Embed(ctx, query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, dto.ProviderError{Stage: "embedding", Err: err}
	}

	// Over-fetch so post-ranking dedupe cannot shrink the page below topK.
	matches, err := o.chunks.SearchSimilar(ctx, projectID, queryVector, config.TopK*2)
	if err != nil {
		o.logger.Error("SearchOrchestrator", "Vector search failed", map[string]interface{}{
			"project_id": projectID,
			"error":      err.Error(),
		})
		return nil, dto.StoreError{Op: "similarity search", Err: err}
	}

	ranked := score.Rank(matches, config.TopK)

	o.logger.Debug("SearchOrchestrator", "Search completed", map[string]interface{}{
		"project_id": projectID,
		"raw":        len(matches),
		"ranked":     len(ranked),
	})

	return ranked, nil
}
