package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// sessionHolder wraps a session with its own mutex so appends to different
// sessions never contend. The deleted flag lets the eviction callback tell
// an explicit clear apart from a TTL reclaim, and stops a racing append from
// resurrecting a cleared session via re-Set.
type sessionHolder struct {
	mu      sync.Mutex
	session *entity.ChatSession
	deleted bool
}

type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration

	// total TTL evictions; Sweep reads the delta around DeleteExpired
	expired atomic.Int64
	sweepMu sync.Mutex
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository builds a go-cache backed store. The cache janitor is
// disabled; reclamation runs through Sweep so the reclaim count is
// observable for stats.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	r := &SessionRepository{
		cache: cache.New(ttl, 0),
		ttl:   ttl,
	}
	r.cache.OnEvicted(func(key string, value interface{}) {
		holder, ok := value.(*sessionHolder)
		if ok && !holder.deleted {
			r.expired.Add(1)
		}
	})
	return r
}

func (r *SessionRepository) Save(session *entity.ChatSession) {
	holder := &sessionHolder{session: session}
	r.cache.SetDefault(session.Id.String(), holder)
}

func (r *SessionRepository) Get(sessionID string) (*entity.ChatSession, bool) {
	holder, ok := r.holder(sessionID)
	if !ok {
		return nil, false
	}

	holder.mu.Lock()
	defer holder.mu.Unlock()
	if holder.deleted {
		return nil, false
	}

	holder.session.LastActiveAt = time.Now()
	r.cache.SetDefault(sessionID, holder)

	meta := *holder.session
	meta.Messages = nil
	return &meta, true
}

func (r *SessionRepository) Append(sessionID string, message entity.ChatMessage) error {
	holder, ok := r.holder(sessionID)
	if !ok {
		return dto.ErrSessionNotFound
	}

	holder.mu.Lock()
	defer holder.mu.Unlock()
	if holder.deleted {
		return dto.ErrSessionNotFound
	}

	holder.session.Messages = append(holder.session.Messages, message)
	holder.session.LastActiveAt = time.Now()
	r.cache.SetDefault(sessionID, holder)
	return nil
}

func (r *SessionRepository) History(sessionID string, maxMessages int) ([]entity.ChatMessage, error) {
	holder, ok := r.holder(sessionID)
	if !ok {
		return nil, dto.ErrSessionNotFound
	}

	holder.mu.Lock()
	defer holder.mu.Unlock()
	if holder.deleted {
		return nil, dto.ErrSessionNotFound
	}

	holder.session.LastActiveAt = time.Now()
	r.cache.SetDefault(sessionID, holder)

	messages := holder.session.Messages
	if maxMessages > 0 && len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	out := make([]entity.ChatMessage, len(messages))
	copy(out, messages)
	return out, nil
}

func (r *SessionRepository) Delete(sessionID string) bool {
	holder, ok := r.holder(sessionID)
	if !ok {
		// Absent or already expired: nothing to remove, the delete is a
		// no-op and the expired entry waits for the next sweep.
		return false
	}

	holder.mu.Lock()
	defer holder.mu.Unlock()
	if holder.deleted {
		return false
	}
	holder.deleted = true
	r.cache.Delete(sessionID)
	return true
}

func (r *SessionRepository) Sweep() int {
	// Serialized so two concurrent sweeps do not split one reclaim count.
	r.sweepMu.Lock()
	defer r.sweepMu.Unlock()

	before := r.expired.Load()
	r.cache.DeleteExpired()
	return int(r.expired.Load() - before)
}

func (r *SessionRepository) ActiveCount() int {
	// Items() excludes expired entries that have not been swept yet.
	return len(r.cache.Items())
}

func (r *SessionRepository) holder(sessionID string) (*sessionHolder, bool) {
	value, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	holder, ok := value.(*sessionHolder)
	return holder, ok
}
