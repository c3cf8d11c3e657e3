package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/repository/contract"

	"github.com/google/uuid"
)

type storedChunk struct {
	chunk  entity.Chunk
	vector []float32
}

// ChunkRepository is a brute-force in-memory vector store. It computes the
// same cosine distance as pgvector's <=> operator so scores agree with the
// Postgres-backed implementation. Used in tests and for dependency-free dev.
type ChunkRepository struct {
	mu       sync.RWMutex
	projects map[string]map[string]storedChunk // project -> source/index -> chunk
}

var _ contract.ChunkRepository = (*ChunkRepository)(nil)

func NewChunkRepository() *ChunkRepository {
	return &ChunkRepository{
		projects: make(map[string]map[string]storedChunk),
	}
}

func chunkKey(sourceID string, chunkIndex int) string {
	return fmt.Sprintf("%s/%d", sourceID, chunkIndex)
}

func (r *ChunkRepository) Upsert(ctx context.Context, chunk *entity.Chunk, vector []float32) error {
	if chunk.Id == uuid.Nil {
		chunk.Id = uuid.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.projects[chunk.ProjectId]
	if !ok {
		bucket = make(map[string]storedChunk)
		r.projects[chunk.ProjectId] = bucket
	}

	key := chunkKey(chunk.SourceId, chunk.ChunkIndex)
	if existing, ok := bucket[key]; ok {
		// Same identity keeps its id, mirroring the ON CONFLICT update path.
		chunk.Id = existing.chunk.Id
	}

	vcopy := make([]float32, len(vector))
	copy(vcopy, vector)
	bucket[key] = storedChunk{chunk: *chunk, vector: vcopy}
	return nil
}

func (r *ChunkRepository) UpsertBulk(ctx context.Context, chunks []*entity.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	for i, c := range chunks {
		if err := r.Upsert(ctx, c, vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChunkRepository) SearchSimilar(ctx context.Context, projectID string, queryVector []float32, topK int) ([]entity.ChunkMatch, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("project filter is required for similarity search")
	}
	if topK <= 0 {
		topK = 5
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.projects[projectID]
	matches := make([]entity.ChunkMatch, 0, len(bucket))
	for _, stored := range bucket {
		matches = append(matches, entity.ChunkMatch{
			Chunk:    stored.chunk,
			Distance: cosineDistance(queryVector, stored.vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (r *ChunkRepository) DeleteBySource(ctx context.Context, projectID, sourceID string) (int64, error) {
	if strings.TrimSpace(projectID) == "" {
		return 0, errors.New("project filter is required for delete")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.projects[projectID]
	var deleted int64
	for key, stored := range bucket {
		if stored.chunk.SourceId == sourceID {
			delete(bucket, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *ChunkRepository) CountByProject(ctx context.Context, projectID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.projects[projectID])), nil
}

// cosineDistance matches pgvector's <=> operator: 1 - cos(a, b), in [0, 2].
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
