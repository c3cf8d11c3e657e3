// FILE: internal/service/ingest_service.go
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/pkg/logger"
	"doc-intel-be/internal/repository/contract"
	"doc-intel-be/pkg/embedding"
	"doc-intel-be/pkg/events"
	pktNats "doc-intel-be/pkg/nats"
	"doc-intel-be/pkg/utils"
)

type IIngestService interface {
	IngestChunks(ctx context.Context, req *dto.IngestChunksRequest) (*dto.IngestResponse, error)
	IngestText(ctx context.Context, req *dto.IngestTextRequest) (*dto.IngestResponse, error)
	DeleteSource(ctx context.Context, projectID, sourceID string) (*dto.DeleteSourceResponse, error)
}

type ingestService struct {
	chunkRepo        contract.ChunkRepository
	embedder         *embedding.Gateway
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	chunkSize        int
	chunkOverlap     int
	logger           logger.ILogger
}

func NewIngestService(
	chunkRepo contract.ChunkRepository,
	embedder *embedding.Gateway,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	chunkSize int,
	chunkOverlap int,
	log logger.ILogger,
) IIngestService {
	return &ingestService{
		chunkRepo:        chunkRepo,
		embedder:         embedder,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		chunkSize:        chunkSize,
		chunkOverlap:     chunkOverlap,
		logger:           log,
	}
}

// IngestChunks embeds pre-chunked document content and upserts it into the
// vector store. With Async set the batch is queued instead and processed by
// the consumer; re-ingesting the same (project, source, index) replaces the
// stored chunk.
func (c *ingestService) IngestChunks(ctx context.Context, req *dto.IngestChunksRequest) (*dto.IngestResponse, error) {
	if err := validateIngestTarget(req.ProjectId, req.SourceId); err != nil {
		return nil, err
	}
	if len(req.Chunks) == 0 {
		return nil, dto.ValidationError{Field: "chunks", Reason: "must not be empty"}
	}

	if req.Async {
		return c.enqueue(ctx, req)
	}

	count, err := c.ingestSync(ctx, req)
	if err != nil {
		return nil, err
	}

	c.publishEvent(ctx, "DOCUMENT_INGESTED", req.ProjectId, req.SourceId, map[string]interface{}{
		"file_name": req.FileName,
		"chunks":    count,
	})

	return &dto.IngestResponse{
		ProjectId:      req.ProjectId,
		SourceId:       req.SourceId,
		FileName:       req.FileName,
		ChunksIngested: count,
	}, nil
}

// IngestText splits raw text into overlapping chunks and ingests them.
func (c *ingestService) IngestText(ctx context.Context, req *dto.IngestTextRequest) (*dto.IngestResponse, error) {
	if err := validateIngestTarget(req.ProjectId, req.SourceId); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, dto.ValidationError{Field: "text", Reason: "must not be blank"}
	}

	pieces := utils.SplitText(req.Text, c.chunkSize, c.chunkOverlap)

	records := make([]dto.IngestChunkRecord, len(pieces))
	for i, piece := range pieces {
		records[i] = dto.IngestChunkRecord{
			ChunkIndex: i,
			Text:       piece,
			ChunkType:  entity.ChunkTypeText,
		}
	}

	return c.IngestChunks(ctx, &dto.IngestChunksRequest{
		ProjectId: req.ProjectId,
		SourceId:  req.SourceId,
		FileName:  req.FileName,
		Async:     req.Async,
		Chunks:    records,
	})
}

// DeleteSource removes every chunk of one source within a project.
func (c *ingestService) DeleteSource(ctx context.Context, projectID, sourceID string) (*dto.DeleteSourceResponse, error) {
	if err := validateIngestTarget(projectID, sourceID); err != nil {
		return nil, err
	}

	deleted, err := c.chunkRepo.DeleteBySource(ctx, projectID, sourceID)
	if err != nil {
		return nil, dto.StoreError{Op: "delete source", Err: err}
	}

	c.publishEvent(ctx, "DOCUMENT_DELETED", projectID, sourceID, map[string]interface{}{
		"chunks": deleted,
	})

	return &dto.DeleteSourceResponse{
		ProjectId:     projectID,
		SourceId:      sourceID,
		ChunksDeleted: deleted,
	}, nil
}

func (c *ingestService) enqueue(ctx context.Context, req *dto.IngestChunksRequest) (*dto.IngestResponse, error) {
	// The queued copy must not re-queue itself when the consumer replays it.
	queued := *req
	queued.Async = false

	payload, err := json.Marshal(&queued)
	if err != nil {
		return nil, err
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		return nil, err
	}

	c.logger.Info("IngestService", "Ingestion batch queued", map[string]interface{}{
		"project_id": req.ProjectId,
		"source_id":  req.SourceId,
		"chunks":     len(req.Chunks),
	})

	return &dto.IngestResponse{
		ProjectId: req.ProjectId,
		SourceId:  req.SourceId,
		FileName:  req.FileName,
		Queued:    true,
	}, nil
}

func (c *ingestService) ingestSync(ctx context.Context, req *dto.IngestChunksRequest) (int, error) {
	now := time.Now()

	chunks := make([]*entity.Chunk, len(req.Chunks))
	texts := make([]string, len(req.Chunks))
	for i, record := range req.Chunks {
		chunkType := record.ChunkType
		if chunkType == "" {
			chunkType = entity.ChunkTypeText
		}
		chunks[i] = &entity.Chunk{
			ProjectId:   req.ProjectId,
			SourceId:    req.SourceId,
			FileName:    req.FileName,
			ChunkIndex:  record.ChunkIndex,
			Text:        record.Text,
			ChunkType:   chunkType,
			PageNumber:  record.PageNumber,
			BoundingBox: record.BoundingBox,
			ImagePath:   record.ImagePath,
			CreatedAt:   now,
		}
		texts[i] = record.Text
	}

	vectors, err := c.embedder.EmbedBatch(ctx, texts, embedding.TaskTypeDocument)
	if err != nil {
		return 0, dto.ProviderError{Stage: "embedding", Err: err}
	}

	if err := c.chunkRepo.UpsertBulk(ctx, chunks, vectors); err != nil {
		return 0, dto.StoreError{Op: "upsert", Err: err}
	}

	c.logger.Info("IngestService", "Chunks ingested", map[string]interface{}{
		"project_id": req.ProjectId,
		"source_id":  req.SourceId,
		"chunks":     len(chunks),
	})

	return len(chunks), nil
}

// publishEvent notifies downstream consumers. Event delivery is auxiliary;
// failures are logged and never fail the request.
func (c *ingestService) publishEvent(ctx context.Context, eventType, projectID, sourceID string, extra map[string]interface{}) {
	if c.eventPublisher == nil {
		return
	}

	data := map[string]interface{}{
		"project_id": projectID,
		"source_id":  sourceID,
	}
	for k, v := range extra {
		data[k] = v
	}

	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("IngestService", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func validateIngestTarget(projectID, sourceID string) error {
	if strings.TrimSpace(projectID) == "" {
		return dto.ValidationError{Field: "project_id", Reason: "must not be blank"}
	}
	if strings.TrimSpace(sourceID) == "" {
		return dto.ValidationError{Field: "source_id", Reason: "must not be blank"}
	}
	return nil
}
