// FILE: internal/service/chat_service.go
package service

import (
	"context"
	"strings"
	"time"

	"doc-intel-be/internal/config"
	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/pkg/logger"
	"doc-intel-be/pkg/llm"
	"doc-intel-be/pkg/rag/history"
	"doc-intel-be/pkg/rag/prompt"
	"doc-intel-be/pkg/rag/search"
	"doc-intel-be/pkg/rag/session"
)

const defaultTopK = 5

type IChatService interface {
	Query(ctx context.Context, req *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error)
	History(ctx context.Context, sessionID string, limit int) (*dto.ChatHistoryResponse, error)
	ClearHistory(ctx context.Context, sessionID string) (*dto.ClearHistoryResponse, error)
	SessionStats(ctx context.Context) (*dto.SessionStatsResponse, error)
}

type chatService struct {
	sessions      *session.Manager
	historyLoader *history.Loader
	searcher      *search.Orchestrator
	llmProvider   llm.LLMProvider
	aiCfg         config.AIConfig
	logger        logger.ILogger
}

func NewChatService(
	sessions *session.Manager,
	historyLoader *history.Loader,
	searcher *search.Orchestrator,
	llmProvider llm.LLMProvider,
	aiCfg config.AIConfig,
	log logger.ILogger,
) IChatService {
	return &chatService{
		sessions:      sessions,
		historyLoader: historyLoader,
		searcher:      searcher,
		llmProvider:   llmProvider,
		aiCfg:         aiCfg,
		logger:        log,
	}
}

// Query runs the full retrieval pipeline: resolve the session, search the
// project's chunks, generate a grounded answer and record both turns.
// All input checks happen before anything touches the network.
func (c *chatService) Query(ctx context.Context, req *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error) {
	started := time.Now()

	query := strings.TrimSpace(req.Query)
	topK, err := c.validateQuery(req.ProjectId, query, req.TopK)
	if err != nil {
		return nil, err
	}
	includeImages := req.IncludeImages == nil || *req.IncludeImages

	sessionID, created := c.sessions.GetOrCreate(req.SessionId, req.ProjectId)
	if created && req.SessionId != "" {
		c.logger.Info("ChatService", "Replaced stale session", map[string]interface{}{
			"requested_session": req.SessionId,
			"session_id":        sessionID,
		})
	}

	retrievalStart := time.Now()
	ranked, err := c.searcher.Execute(ctx, req.ProjectId, query, search.Config{TopK: topK})
	if err != nil {
		return nil, err
	}
	retrievalMs := msSince(retrievalStart)

	c.logger.Debug("ChatService", "Retrieved chunks", map[string]interface{}{
		"session_id":   sessionID,
		"project_id":   req.ProjectId,
		"chunks":       len(ranked),
		"retrieval_ms": retrievalMs,
	})

	// History failures degrade to a fresh conversation, they never block
	// the answer.
	conversation, err := c.historyLoader.LoadConversationHistory(sessionID, 0)
	if err != nil {
		c.logger.Warn("ChatService", "Failed to load conversation history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		conversation = nil
	}

	builder := prompt.NewBuilder(query, ranked, conversation, c.aiCfg.ContextTokenBudget)

	generationStart := time.Now()
	answer, genErr := c.llmProvider.Chat(ctx, builder.Messages(),
		llm.WithTemperature(c.aiCfg.Temperature),
		llm.WithMaxTokens(c.aiCfg.MaxTokens),
		llm.WithTopP(c.aiCfg.TopP),
	)
	generationMs := msSince(generationStart)

	// The user's turn is part of the conversation whether or not the model
	// answered, so it commits first.
	if err := c.sessions.Append(sessionID, entity.ChatMessage{
		Role:      entity.RoleUser,
		Content:   query,
		Timestamp: time.Now(),
	}); err != nil {
		c.logger.Warn("ChatService", "Failed to record user message", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	if genErr != nil {
		return nil, dto.ProviderError{Stage: "generation", Err: genErr}
	}

	cited := gateImagePaths(builder.Included(), includeImages)

	if err := c.sessions.Append(sessionID, entity.ChatMessage{
		Role:      entity.RoleAssistant,
		Content:   answer,
		Sources:   cited,
		Timestamp: time.Now(),
	}); err != nil {
		c.logger.Warn("ChatService", "Failed to record assistant message", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	return &dto.ChatQueryResponse{
		Answer:           answer,
		Sources:          toSourceDTOs(cited),
		SessionId:        sessionID,
		Query:            query,
		ProjectId:        req.ProjectId,
		RetrievalTimeMs:  retrievalMs,
		GenerationTimeMs: generationMs,
		TotalTimeMs:      msSince(started),
	}, nil
}

func (c *chatService) History(ctx context.Context, sessionID string, limit int) (*dto.ChatHistoryResponse, error) {
	messages, err := c.sessions.History(sessionID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ChatMessageDTO, 0, len(messages))
	for _, msg := range messages {
		out = append(out, dto.ChatMessageDTO{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
			Sources:   toSourceDTOs(msg.Sources),
		})
	}

	return &dto.ChatHistoryResponse{
		SessionId: sessionID,
		Messages:  out,
	}, nil
}

// ClearHistory always succeeds; clearing an unknown or already-expired
// session is a no-op.
func (c *chatService) ClearHistory(ctx context.Context, sessionID string) (*dto.ClearHistoryResponse, error) {
	cleared := c.sessions.Clear(sessionID)
	return &dto.ClearHistoryResponse{
		SessionId: sessionID,
		Cleared:   cleared,
	}, nil
}

func (c *chatService) SessionStats(ctx context.Context) (*dto.SessionStatsResponse, error) {
	active, cleaned := c.sessions.Stats()
	return &dto.SessionStatsResponse{
		ActiveSessions:         active,
		ExpiredSessionsCleaned: cleaned,
	}, nil
}

func (c *chatService) validateQuery(projectID, query string, topK int) (int, error) {
	if strings.TrimSpace(projectID) == "" {
		return 0, dto.ValidationError{Field: "project_id", Reason: "must not be blank"}
	}
	if query == "" {
		return 0, dto.ValidationError{Field: "query", Reason: "must not be blank"}
	}
	if limit := c.aiCfg.MaxQueryLength; limit > 0 && len([]rune(query)) > limit {
		return 0, dto.ValidationError{Field: "query", Reason: "exceeds maximum length"}
	}

	if topK == 0 {
		return defaultTopK, nil
	}
	if topK < 1 || topK > 20 {
		return 0, dto.ValidationError{Field: "top_k", Reason: "must be between 1 and 20"}
	}
	return topK, nil
}

// gateImagePaths copies the cited chunks, dropping image paths when the
// caller asked for text-only sources. The stored history keeps the gated
// view, like the response does.
func gateImagePaths(chunks []entity.ScoredChunk, includeImages bool) []entity.ScoredChunk {
	out := make([]entity.ScoredChunk, len(chunks))
	copy(out, chunks)
	if !includeImages {
		for i := range out {
			out[i].Chunk.ImagePath = ""
		}
	}
	return out
}

func toSourceDTOs(chunks []entity.ScoredChunk) []dto.SourceReferenceDTO {
	sources := make([]dto.SourceReferenceDTO, 0, len(chunks))
	for _, sc := range chunks {
		sources = append(sources, dto.SourceReferenceDTO{
			ChunkId:     sc.Chunk.Id.String(),
			SourceId:    sc.Chunk.SourceId,
			FileName:    sc.Chunk.FileName,
			PageNumber:  sc.Chunk.PageNumber,
			ChunkIndex:  sc.Chunk.ChunkIndex,
			Text:        sc.Chunk.Text,
			Score:       sc.Similarity,
			BoundingBox: sc.Chunk.BoundingBox,
			ImagePath:   sc.Chunk.ImagePath,
			ChunkType:   sc.Chunk.ChunkType,
		})
	}
	return sources
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
