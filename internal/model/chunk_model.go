package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Chunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId      string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_chunks_identity,priority:1;index"`
	SourceId       string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_chunks_identity,priority:2"`
	ChunkIndex     int             `gorm:"not null;uniqueIndex:idx_chunks_identity,priority:3"`
	FileName       string          `gorm:"type:varchar(512);not null"`
	Text           string          `gorm:"type:text;not null"`
	ChunkType      string          `gorm:"type:varchar(16);not null;default:'text'"`
	PageNumber     *int
	BoundingBox    datatypes.JSON  `gorm:"type:jsonb"` // [x1, y1, x2, y2]
	ImagePath      string          `gorm:"type:varchar(512)"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text / text-embedding-004 use 768 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (Chunk) TableName() string {
	return "chunks"
}
