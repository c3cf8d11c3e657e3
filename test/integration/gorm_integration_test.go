package integration

import (
	"context"
	"log"
	"os"
	"strconv"
	"testing"

	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/repository/implementation"
	"doc-intel-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// unitVector builds a deterministic basis vector so distances in the
// similarity assertions are exact.
func unitVector(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis%dim] = 1
	return v
}

func embeddingDim() int {
	if v, err := strconv.Atoi(os.Getenv("EMBEDDING_DIMENSION")); err == nil && v > 0 {
		return v
	}
	return 768
}

func TestPostgresChunkRepository(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB")

	repo := implementation.NewChunkRepository(gormDB)
	assert.NotNil(t, repo)

	ctx := context.Background()
	dim := embeddingDim()

	// A throwaway project id keeps this run isolated from real data.
	projectID := "it-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = repo.DeleteBySource(ctx, projectID, "doc-1")
	})

	t.Run("Upsert And Count", func(t *testing.T) {
		chunks := []*entity.Chunk{
			{
				ProjectId:  projectID,
				SourceId:   "doc-1",
				FileName:   "doc.pdf",
				ChunkIndex: 0,
				Text:       "The onboarding checklist starts with account setup.",
				ChunkType:  entity.ChunkTypeText,
			},
			{
				ProjectId:  projectID,
				SourceId:   "doc-1",
				FileName:   "doc.pdf",
				ChunkIndex: 1,
				Text:       "Security training is due within the first week.",
				ChunkType:  entity.ChunkTypeText,
			},
		}
		vectors := [][]float32{unitVector(dim, 0), unitVector(dim, 1)}

		err := repo.UpsertBulk(ctx, chunks, vectors)
		assert.NoError(t, err)

		count, err := repo.CountByProject(ctx, projectID)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
		t.Logf("Chunk count: %d", count)
	})

	t.Run("Search Similar", func(t *testing.T) {
		matches, err := repo.SearchSimilar(ctx, projectID, unitVector(dim, 0), 5)
		assert.NoError(t, err)
		assert.Len(t, matches, 2)

		// The axis-0 chunk is an exact hit, the axis-1 chunk is orthogonal.
		assert.Equal(t, 0, matches[0].Chunk.ChunkIndex)
		assert.InDelta(t, 0, matches[0].Distance, 0.01)
		assert.InDelta(t, 1, matches[1].Distance, 0.01)

		for _, m := range matches {
			assert.Equal(t, projectID, m.Chunk.ProjectId)
		}
	})

	t.Run("Search Rejects Blank Project", func(t *testing.T) {
		_, err := repo.SearchSimilar(ctx, "", unitVector(dim, 0), 5)
		assert.Error(t, err)
	})

	t.Run("Replace On Re-Ingest", func(t *testing.T) {
		replacement := &entity.Chunk{
			ProjectId:  projectID,
			SourceId:   "doc-1",
			FileName:   "doc.pdf",
			ChunkIndex: 0,
			Text:       "The onboarding checklist was revised in this edition.",
			ChunkType:  entity.ChunkTypeText,
		}
		err := repo.Upsert(ctx, replacement, unitVector(dim, 0))
		assert.NoError(t, err)

		count, err := repo.CountByProject(ctx, projectID)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count, "re-ingest must replace, not duplicate")

		matches, err := repo.SearchSimilar(ctx, projectID, unitVector(dim, 0), 1)
		assert.NoError(t, err)
		if assert.Len(t, matches, 1) {
			assert.Equal(t, replacement.Text, matches[0].Chunk.Text)
		}
	})

	t.Run("Delete By Source", func(t *testing.T) {
		deleted, err := repo.DeleteBySource(ctx, projectID, "doc-1")
		assert.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		count, err := repo.CountByProject(ctx, projectID)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}
