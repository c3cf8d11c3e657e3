package contract

import (
	"doc-intel-be/internal/entity"
)

// SessionRepository stores conversation state. Implementations apply the
// inactivity TTL lazily: an expired session behaves exactly like an absent
// one on every operation. Each mutation is atomic per session; there is no
// lock shared across sessions beyond O(1) map access.
type SessionRepository interface {
	// Save inserts a new session. The caller assigns the id.
	Save(session *entity.ChatSession)

	// Get returns a copy of the session's metadata (Messages omitted) and
	// refreshes its last-active time. ok is false for absent or expired ids.
	Get(sessionID string) (*entity.ChatSession, bool)

	// Append adds one message and refreshes the last-active time.
	// Returns dto.ErrSessionNotFound for absent, expired or deleted ids.
	Append(sessionID string, message entity.ChatMessage) error

	// History returns the most recent maxMessages messages in chronological
	// order (all of them when maxMessages <= 0) and refreshes the
	// last-active time. Returns dto.ErrSessionNotFound for absent ids; an
	// existing empty session yields an empty slice.
	History(sessionID string, maxMessages int) ([]entity.ChatMessage, error)

	// Delete removes the session immediately. Reports whether a live
	// session was removed; deleting an absent id is a no-op.
	Delete(sessionID string) bool

	// Sweep reclaims every expired session and returns how many it removed.
	// Safe to call concurrently with any other operation.
	Sweep() int

	// ActiveCount reports the number of non-expired sessions.
	ActiveCount() int
}
