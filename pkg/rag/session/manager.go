package session

import (
	"time"

	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/pkg/logger"
	"doc-intel-be/internal/repository/contract"

	"github.com/google/uuid"
)

// Manager handles conversation session lifecycle on top of a SessionRepository
type Manager struct {
	sessions     contract.SessionRepository
	historyLimit int
	logger       logger.ILogger
}

// NewManager creates a new session manager
func NewManager(sessions contract.SessionRepository, historyLimit int, log logger.ILogger) *Manager {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Manager{
		sessions:     sessions,
		historyLimit: historyLimit,
		logger:       log,
	}
}

// GetOrCreate resolves a client-supplied session id to a live session owned
// by the given project. An empty, unknown, expired or foreign-project id all
// fall through to the same path: a fresh session with a new UUID. Returns
// the resolved id and whether a new session was created.
func (m *Manager) GetOrCreate(sessionID, projectID string) (string, bool) {
	if sessionID != "" {
		existing, found := m.sessions.Get(sessionID)
		if found && existing.ProjectId == projectID {
			return sessionID, false
		}
		if found {
			m.logger.Warn("SessionManager", "Session belongs to another project, issuing a new one", map[string]interface{}{
				"session_id": sessionID,
				"project_id": projectID,
			})
		}
	}

	now := time.Now()
	fresh := &entity.ChatSession{
		Id:           uuid.New(),
		ProjectId:    projectID,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	m.sessions.Save(fresh)
	return fresh.Id.String(), true
}

// Append records a message on an existing session
func (m *Manager) Append(sessionID string, message entity.ChatMessage) error {
	return m.sessions.Append(sessionID, message)
}

// History returns the most recent messages in chronological order. A
// non-positive maxMessages falls back to the configured default.
func (m *Manager) History(sessionID string, maxMessages int) ([]entity.ChatMessage, error) {
	if maxMessages <= 0 {
		maxMessages = m.historyLimit
	}
	return m.sessions.History(sessionID, maxMessages)
}

// Clear drops a session. Reports whether a live session was removed;
// clearing an unknown id is not an error.
func (m *Manager) Clear(sessionID string) bool {
	return m.sessions.Delete(sessionID)
}

// Sweep reclaims expired sessions and returns how many were removed
func (m *Manager) Sweep() int {
	return m.sessions.Sweep()
}

// Stats sweeps first so the counters never include sessions that are
// already past their TTL, then reports what is left.
func (m *Manager) Stats() (active int, cleaned int) {
	cleaned = m.sessions.Sweep()
	active = m.sessions.ActiveCount()
	return active, cleaned
}

// StartSweeper runs Sweep on the given interval until the returned stop
// function is called.
func (m *Manager) StartSweeper(interval time.Duration) func() {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if cleaned := m.Sweep(); cleaned > 0 {
					m.logger.Info("SessionManager", "Swept expired sessions", map[string]interface{}{
						"cleaned": cleaned,
					})
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}
