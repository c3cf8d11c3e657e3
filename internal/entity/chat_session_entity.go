package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession binds an append-only conversation to a single project.
// Messages are chronological; a session is never reassigned to another
// project.
type ChatSession struct {
	Id           uuid.UUID
	ProjectId    string
	Messages     []ChatMessage
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Expired reports whether the session has been inactive longer than ttl.
// Expiry is decided from the inputs alone so callers can check it lazily
// without a background timer.
func (s *ChatSession) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActiveAt) > ttl
}
