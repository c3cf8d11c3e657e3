package score

import (
	"testing"

	"doc-intel-be/internal/entity"

	"github.com/google/uuid"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{name: "identical vectors", distance: 0, want: 1},
		{name: "orthogonal vectors", distance: 1, want: 0.5},
		{name: "opposite vectors", distance: 2, want: 0},
		{name: "quarter distance", distance: 0.5, want: 0.75},
		{name: "negative distance clamps to 1", distance: -0.3, want: 1},
		{name: "distance above 2 clamps to 0", distance: 2.7, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.distance)
			if got != tt.want {
				t.Errorf("Normalize(%v) = %v, want %v", tt.distance, got, tt.want)
			}
		})
	}
}

func match(id uuid.UUID, sourceID string, chunkIndex int, distance float64) entity.ChunkMatch {
	return entity.ChunkMatch{
		Chunk: entity.Chunk{
			Id:         id,
			SourceId:   sourceID,
			ChunkIndex: chunkIndex,
		},
		Distance: distance,
	}
}

func TestRankOrdersBestFirst(t *testing.T) {
	far := uuid.New()
	near := uuid.New()
	mid := uuid.New()

	ranked := Rank([]entity.ChunkMatch{
		match(far, "doc-a", 0, 1.6),
		match(near, "doc-a", 1, 0.2),
		match(mid, "doc-b", 2, 0.8),
	}, 10)

	if len(ranked) != 3 {
		t.Fatalf("len(ranked) = %d, want 3", len(ranked))
	}

	wantOrder := []uuid.UUID{near, mid, far}
	for i, want := range wantOrder {
		if ranked[i].Chunk.Id != want {
			t.Errorf("ranked[%d].Id = %v, want %v", i, ranked[i].Chunk.Id, want)
		}
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i].Similarity > ranked[i-1].Similarity {
			t.Errorf("ranked[%d].Similarity = %v exceeds ranked[%d].Similarity = %v",
				i, ranked[i].Similarity, i-1, ranked[i-1].Similarity)
		}
	}
}

func TestRankBreaksTiesDeterministically(t *testing.T) {
	// Same distance everywhere: order must fall back to chunk index, then
	// source id.
	a := match(uuid.New(), "doc-b", 3, 0.5)
	b := match(uuid.New(), "doc-a", 1, 0.5)
	c := match(uuid.New(), "doc-a", 3, 0.5)

	ranked := Rank([]entity.ChunkMatch{a, b, c}, 10)

	if len(ranked) != 3 {
		t.Fatalf("len(ranked) = %d, want 3", len(ranked))
	}

	wantOrder := []uuid.UUID{b.Chunk.Id, c.Chunk.Id, a.Chunk.Id}
	for i, want := range wantOrder {
		if ranked[i].Chunk.Id != want {
			t.Errorf("ranked[%d] = source %s index %d, want id %v",
				i, ranked[i].Chunk.SourceId, ranked[i].Chunk.ChunkIndex, want)
		}
	}
}

func TestRankDeduplicatesKeepingBestScore(t *testing.T) {
	id := uuid.New()
	other := uuid.New()

	ranked := Rank([]entity.ChunkMatch{
		match(id, "doc-a", 0, 1.2),
		match(other, "doc-a", 1, 0.9),
		match(id, "doc-a", 0, 0.4), // duplicate hit with a better distance
	}, 10)

	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2 after dedupe", len(ranked))
	}
	if ranked[0].Chunk.Id != id {
		t.Fatalf("ranked[0].Id = %v, want deduped chunk %v", ranked[0].Chunk.Id, id)
	}
	if want := Normalize(0.4); ranked[0].Similarity != want {
		t.Errorf("ranked[0].Similarity = %v, want best score %v", ranked[0].Similarity, want)
	}
}

func TestRankTruncatesToTopK(t *testing.T) {
	matches := make([]entity.ChunkMatch, 0, 8)
	for i := 0; i < 8; i++ {
		matches = append(matches, match(uuid.New(), "doc-a", i, float64(i)*0.2))
	}

	ranked := Rank(matches, 3)
	if len(ranked) != 3 {
		t.Fatalf("len(ranked) = %d, want 3", len(ranked))
	}

	// Truncation keeps the best, not the first seen.
	for i, sc := range ranked {
		if sc.Chunk.ChunkIndex != i {
			t.Errorf("ranked[%d].ChunkIndex = %d, want %d", i, sc.Chunk.ChunkIndex, i)
		}
	}

	if got := Rank(matches, 0); len(got) != 8 {
		t.Errorf("Rank with topK 0 returned %d results, want all 8", len(got))
	}
}
