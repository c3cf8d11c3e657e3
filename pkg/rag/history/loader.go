package history

import (
	"errors"

	"doc-intel-be/internal/constant"
	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/entity"
	"doc-intel-be/pkg/llm"
	"doc-intel-be/pkg/rag/session"
)

// Loader turns stored conversation history into LLM chat messages
type Loader struct {
	sessions *session.Manager
}

// NewLoader creates a new history loader
func NewLoader(sessions *session.Manager) *Loader {
	return &Loader{sessions: sessions}
}

// LoadConversationHistory loads recent chat history for LLM context.
// A session that vanished between resolution and this read yields an empty
// history rather than an error; the conversation simply starts fresh.
func (l *Loader) LoadConversationHistory(sessionID string, limit int) ([]llm.Message, error) {
	stored, err := l.sessions.History(sessionID, limit)
	if err != nil {
		if errors.Is(err, dto.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	messages := make([]llm.Message, 0, len(stored))
	for _, msg := range stored {
		role := constant.ChatMessageRoleUser
		if msg.Role == entity.RoleAssistant {
			role = constant.ChatMessageRoleAssistant
		}
		messages = append(messages, llm.Message{
			Role:    role,
			Content: msg.Content,
		})
	}

	return messages, nil
}
