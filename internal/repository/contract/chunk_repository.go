package contract

import (
	"context"

	"doc-intel-be/internal/entity"
)

// ChunkRepository is the gateway to the vector store. Every read is scoped
// to one project; implementations must fail rather than fall back to an
// unfiltered search. Raw distances come back with each match and are
// normalized by the retrieval scorer, not here.
type ChunkRepository interface {
	Upsert(ctx context.Context, chunk *entity.Chunk, vector []float32) error
	UpsertBulk(ctx context.Context, chunks []*entity.Chunk, vectors [][]float32) error
	SearchSimilar(ctx context.Context, projectID string, queryVector []float32, topK int) ([]entity.ChunkMatch, error)
	DeleteBySource(ctx context.Context, projectID, sourceID string) (int64, error)
	CountByProject(ctx context.Context, projectID string) (int64, error)
}
