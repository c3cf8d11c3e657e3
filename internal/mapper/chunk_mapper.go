package mapper

import (
	"encoding/json"

	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.Chunk) *entity.Chunk {
	if c == nil {
		return nil
	}

	var bbox []float64
	if len(c.BoundingBox) > 0 {
		// Stored as a JSON array of four coordinates; a malformed value
		// degrades to no bounding box rather than failing the read.
		_ = json.Unmarshal(c.BoundingBox, &bbox)
	}

	chunkType := c.ChunkType
	if chunkType == "" {
		chunkType = entity.ChunkTypeText
	}

	return &entity.Chunk{
		Id:          c.Id,
		ProjectId:   c.ProjectId,
		SourceId:    c.SourceId,
		FileName:    c.FileName,
		ChunkIndex:  c.ChunkIndex,
		Text:        c.Text,
		ChunkType:   chunkType,
		PageNumber:  c.PageNumber,
		BoundingBox: bbox,
		ImagePath:   c.ImagePath,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *ChunkMapper) ToModel(e *entity.Chunk, vector []float32) *model.Chunk {
	if e == nil {
		return nil
	}

	var bbox datatypes.JSON
	if len(e.BoundingBox) > 0 {
		raw, _ := json.Marshal(e.BoundingBox)
		bbox = datatypes.JSON(raw)
	}

	return &model.Chunk{
		Id:             e.Id,
		ProjectId:      e.ProjectId,
		SourceId:       e.SourceId,
		FileName:       e.FileName,
		ChunkIndex:     e.ChunkIndex,
		Text:           e.Text,
		ChunkType:      e.ChunkType,
		PageNumber:     e.PageNumber,
		BoundingBox:    bbox,
		ImagePath:      e.ImagePath,
		EmbeddingValue: pgvector.NewVector(vector),
		CreatedAt:      e.CreatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.Chunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
