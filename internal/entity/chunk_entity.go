package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChunkTypeText  = "text"
	ChunkTypeTable = "table"
)

// Chunk is an immutable unit of retrievable content produced at ingestion.
// (ProjectId, SourceId, ChunkIndex) is unique; chunks are never mutated,
// only deleted together with their source document.
type Chunk struct {
	Id          uuid.UUID
	ProjectId   string
	SourceId    string
	FileName    string
	ChunkIndex  int
	Text        string
	ChunkType   string
	PageNumber  *int
	BoundingBox []float64 // [x1, y1, x2, y2]
	ImagePath   string
	CreatedAt   time.Time
}

// ChunkMatch is a raw similarity-search hit before normalization.
type ChunkMatch struct {
	Chunk    Chunk
	Distance float64
}

// ScoredChunk carries a [0,1] similarity, 1 meaning identical.
// Computed at query time, never persisted.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float64
}
