package score

import (
	"sort"

	"doc-intel-be/internal/entity"

	"github.com/google/uuid"
)

// Distance comes from the cosine operator, so it lives in [0, 2].
const maxCosineDistance = 2.0

// Normalize converts a cosine distance into a similarity in [0, 1].
// Identical vectors score 1, opposite vectors score 0.
func Normalize(distance float64) float64 {
	similarity := 1 - distance/maxCosineDistance
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}

// Rank scores raw matches, deduplicates them by chunk id keeping the best
// score, and returns at most topK results ordered best-first. Equal scores
// fall back to chunk index, then source id, so the ranking is stable across
// runs and backends.
func Rank(matches []entity.ChunkMatch, topK int) []entity.ScoredChunk {
	best := make(map[uuid.UUID]entity.ScoredChunk, len(matches))
	for _, match := range matches {
		scored := entity.ScoredChunk{
			Chunk:      match.Chunk,
			Similarity: Normalize(match.Distance),
		}
		if prev, seen := best[match.Chunk.Id]; seen && prev.Similarity >= scored.Similarity {
			continue
		}
		best[match.Chunk.Id] = scored
	}

	ranked := make([]entity.ScoredChunk, 0, len(best))
	for _, scored := range best {
		ranked = append(ranked, scored)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		if ranked[i].Chunk.ChunkIndex != ranked[j].Chunk.ChunkIndex {
			return ranked[i].Chunk.ChunkIndex < ranked[j].Chunk.ChunkIndex
		}
		return ranked[i].Chunk.SourceId < ranked[j].Chunk.SourceId
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}
