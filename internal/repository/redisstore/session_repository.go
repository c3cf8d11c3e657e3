package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/pkg/logger"
	"doc-intel-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat:session:"

// Append races against expiry on the meta hash, so failed transactions are
// retried a few times before giving up.
const maxTxRetries = 5

// SessionRepository keeps sessions in Redis so history survives restarts and
// is shared across instances. Metadata lives in a hash, messages in a list;
// both keys carry the inactivity TTL and Redis reclaims expired sessions
// natively, which is why Sweep never finds work to do.
type SessionRepository struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *SessionRepository {
	return &SessionRepository{
		rdb:    rdb,
		ttl:    ttl,
		logger: log,
	}
}

func metaKey(sessionID string) string {
	return keyPrefix + sessionID + ":meta"
}

func messagesKey(sessionID string) string {
	return keyPrefix + sessionID + ":messages"
}

func (r *SessionRepository) Save(session *entity.ChatSession) {
	ctx := context.Background()
	id := session.Id.String()

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, metaKey(id), map[string]interface{}{
		"project_id":     session.ProjectId,
		"created_at":     session.CreatedAt.Format(time.RFC3339Nano),
		"last_active_at": session.LastActiveAt.Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, metaKey(id), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("RedisSessionRepository", "Failed to save session", map[string]interface{}{
			"session_id": id,
			"error":      err.Error(),
		})
	}
}

func (r *SessionRepository) Get(sessionID string) (*entity.ChatSession, bool) {
	ctx := context.Background()

	meta, err := r.rdb.HGetAll(ctx, metaKey(sessionID)).Result()
	if err != nil {
		r.logger.Warn("RedisSessionRepository", "Failed to read session meta", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, false
	}
	if len(meta) == 0 {
		return nil, false
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, false
	}

	session := &entity.ChatSession{
		Id:        id,
		ProjectId: meta["project_id"],
	}
	if t, err := time.Parse(time.RFC3339Nano, meta["created_at"]); err == nil {
		session.CreatedAt = t
	}
	session.LastActiveAt = time.Now()

	r.touch(ctx, sessionID, session.LastActiveAt)
	return session, true
}

func (r *SessionRepository) Append(sessionID string, message entity.ChatMessage) error {
	ctx := context.Background()

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	// Watch the meta hash so the push cannot recreate a session that was
	// deleted or expired between the existence check and the write.
	txn := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, metaKey(sessionID)).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return dto.ErrSessionNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, messagesKey(sessionID), string(payload))
			pipe.HSet(ctx, metaKey(sessionID), "last_active_at", time.Now().Format(time.RFC3339Nano))
			pipe.Expire(ctx, metaKey(sessionID), r.ttl)
			pipe.Expire(ctx, messagesKey(sessionID), r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err = r.rdb.Watch(ctx, txn, metaKey(sessionID))
		if err != redis.TxFailedErr {
			return err
		}
	}
	return err
}

func (r *SessionRepository) History(sessionID string, maxMessages int) ([]entity.ChatMessage, error) {
	ctx := context.Background()

	exists, err := r.rdb.Exists(ctx, metaKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return nil, dto.ErrSessionNotFound
	}

	start := int64(0)
	if maxMessages > 0 {
		// Negative indexes address the list tail; Redis clamps past-the-start.
		start = int64(-maxMessages)
	}
	raw, err := r.rdb.LRange(ctx, messagesKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	messages := make([]entity.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg entity.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			r.logger.Warn("RedisSessionRepository", "Skipping unreadable message", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			continue
		}
		messages = append(messages, msg)
	}

	r.touch(ctx, sessionID, time.Now())
	return messages, nil
}

func (r *SessionRepository) Delete(sessionID string) bool {
	ctx := context.Background()

	deleted, err := r.rdb.Del(ctx, metaKey(sessionID), messagesKey(sessionID)).Result()
	if err != nil {
		r.logger.Warn("RedisSessionRepository", "Failed to delete session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return false
	}
	return deleted > 0
}

// Sweep is a no-op for this backend. Redis evicts expired keys itself, so
// there are never stale sessions left to reclaim.
func (r *SessionRepository) Sweep() int {
	return 0
}

func (r *SessionRepository) ActiveCount() int {
	ctx := context.Background()

	count := 0
	iter := r.rdb.Scan(ctx, 0, keyPrefix+"*:meta", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("RedisSessionRepository", "Session scan interrupted", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return count
}

// touch refreshes the last-active timestamp and slides both key TTLs.
func (r *SessionRepository) touch(ctx context.Context, sessionID string, now time.Time) {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, metaKey(sessionID), "last_active_at", now.Format(time.RFC3339Nano))
	pipe.Expire(ctx, metaKey(sessionID), r.ttl)
	pipe.Expire(ctx, messagesKey(sessionID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("RedisSessionRepository", "Failed to refresh session TTL", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
