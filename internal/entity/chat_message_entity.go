package entity

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one conversation turn. Immutable once appended; Sources is
// only set on assistant messages.
type ChatMessage struct {
	Role      string
	Content   string
	Sources   []ScoredChunk
	Timestamp time.Time
}
