package dto

import "time"

type ChatQueryRequest struct {
	ProjectId     string `json:"project_id" validate:"required"`
	Query         string `json:"query" validate:"required"`
	SessionId     string `json:"session_id,omitempty"`
	TopK          int    `json:"top_k" validate:"omitempty,min=1,max=20"`
	IncludeImages *bool  `json:"include_images"` // nil means true
}

type SourceReferenceDTO struct {
	ChunkId     string    `json:"chunk_id"`
	SourceId    string    `json:"source_id"`
	FileName    string    `json:"file_name"`
	PageNumber  *int      `json:"page_number,omitempty"`
	ChunkIndex  int       `json:"chunk_index"`
	Text        string    `json:"text"`
	Score       float64   `json:"score"`
	BoundingBox []float64 `json:"bounding_box,omitempty"`
	ImagePath   string    `json:"image_path,omitempty"`
	ChunkType   string    `json:"chunk_type"`
}

type ChatQueryResponse struct {
	Answer           string               `json:"answer"`
	Sources          []SourceReferenceDTO `json:"sources"`
	SessionId        string               `json:"session_id"`
	Query            string               `json:"query"`
	ProjectId        string               `json:"project_id"`
	RetrievalTimeMs  float64              `json:"retrieval_time_ms"`
	GenerationTimeMs float64              `json:"generation_time_ms"`
	TotalTimeMs      float64              `json:"total_time_ms"`
}

type ChatMessageDTO struct {
	Role      string               `json:"role"`
	Content   string               `json:"content"`
	Timestamp time.Time            `json:"timestamp"`
	Sources   []SourceReferenceDTO `json:"sources,omitempty"`
}

type ChatHistoryResponse struct {
	SessionId string           `json:"session_id"`
	Messages  []ChatMessageDTO `json:"messages"`
}

type ClearHistoryResponse struct {
	SessionId string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

type SessionStatsResponse struct {
	ActiveSessions         int `json:"active_sessions"`
	ExpiredSessionsCleaned int `json:"expired_sessions_cleaned"`
}
