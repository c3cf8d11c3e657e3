package dto

type IngestChunkRecord struct {
	ChunkIndex  int       `json:"chunk_index" validate:"min=0"`
	Text        string    `json:"text" validate:"required"`
	ChunkType   string    `json:"chunk_type,omitempty" validate:"omitempty,oneof=text table"`
	PageNumber  *int      `json:"page_number,omitempty"`
	BoundingBox []float64 `json:"bounding_box,omitempty" validate:"omitempty,len=4"`
	ImagePath   string    `json:"image_path,omitempty"`
}

type IngestChunksRequest struct {
	ProjectId string              `json:"project_id" validate:"required"`
	SourceId  string              `json:"source_id" validate:"required"`
	FileName  string              `json:"file_name" validate:"required"`
	Async     bool                `json:"async"`
	Chunks    []IngestChunkRecord `json:"chunks" validate:"required,min=1,dive"`
}

type IngestTextRequest struct {
	ProjectId string `json:"project_id" validate:"required"`
	SourceId  string `json:"source_id" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
	Text      string `json:"text" validate:"required"`
	Async     bool   `json:"async"`
}

type IngestResponse struct {
	ProjectId      string `json:"project_id"`
	SourceId       string `json:"source_id"`
	FileName       string `json:"file_name"`
	ChunksIngested int    `json:"chunks_ingested"`
	Queued         bool   `json:"queued"`
}

type DeleteSourceResponse struct {
	ProjectId     string `json:"project_id"`
	SourceId      string `json:"source_id"`
	ChunksDeleted int64  `json:"chunks_deleted"`
}
