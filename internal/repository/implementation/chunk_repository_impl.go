package implementation

import (
	"context"
	"errors"
	"strings"

	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/mapper"
	"doc-intel-be/internal/model"
	"doc-intel-be/internal/repository/contract"
	"doc-intel-be/internal/repository/scope"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

// conflictClause targets the (project_id, source_id, chunk_index) identity so
// re-ingesting a document replaces its chunks in place.
func conflictClause() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{
			{Name: "project_id"},
			{Name: "source_id"},
			{Name: "chunk_index"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"file_name", "text", "chunk_type", "page_number",
			"bounding_box", "image_path", "embedding_value",
		}),
	}
}

func (r *ChunkRepositoryImpl) Upsert(ctx context.Context, chunk *entity.Chunk, vector []float32) error {
	if chunk.Id == uuid.Nil {
		chunk.Id = uuid.New()
	}
	m := r.mapper.ToModel(chunk, vector)
	if err := r.db.WithContext(ctx).Clauses(conflictClause()).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChunkRepositoryImpl) UpsertBulk(ctx context.Context, chunks []*entity.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}

	models := make([]*model.Chunk, len(chunks))
	for i, c := range chunks {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		models[i] = r.mapper.ToModel(c, vectors[i])
	}

	if err := r.db.WithContext(ctx).Clauses(conflictClause()).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkRepositoryImpl) SearchSimilar(ctx context.Context, projectID string, queryVector []float32, topK int) ([]entity.ChunkMatch, error) {
	// A blank tenant filter must never degrade into an unfiltered search.
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("project filter is required for similarity search")
	}
	if topK <= 0 {
		topK = 5
	}

	// pgvector cosine distance: embedding_value <=> query, range [0, 2].
	type result struct {
		model.Chunk
		Distance float64
	}
	var results []result

	qv := pgvector.NewVector(queryVector)
	err := r.db.WithContext(ctx).
		Table("chunks").
		Select("chunks.*, embedding_value <=> ? AS distance", qv).
		Scopes(scope.ByProject(projectID)).
		Order("distance ASC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	matches := make([]entity.ChunkMatch, len(results))
	for i, res := range results {
		matches[i] = entity.ChunkMatch{
			Chunk:    *r.mapper.ToEntity(&res.Chunk),
			Distance: res.Distance,
		}
	}
	return matches, nil
}

func (r *ChunkRepositoryImpl) DeleteBySource(ctx context.Context, projectID, sourceID string) (int64, error) {
	if strings.TrimSpace(projectID) == "" {
		return 0, errors.New("project filter is required for delete")
	}
	res := r.db.WithContext(ctx).
		Scopes(scope.BySource(projectID, sourceID)).
		Delete(&model.Chunk{})
	return res.RowsAffected, res.Error
}

func (r *ChunkRepositoryImpl) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Chunk{}).
		Scopes(scope.ByProject(projectID)).
		Count(&count).Error
	return count, err
}
