package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/entity"
	"doc-intel-be/internal/repository/memory"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestManager(ttl time.Duration, historyLimit int) *Manager {
	return NewManager(memory.NewSessionRepository(ttl), historyLimit, nopLogger{})
}

func TestGetOrCreateIssuesFreshSession(t *testing.T) {
	m := newTestManager(time.Hour, 10)

	id, created := m.GetOrCreate("", "proj-a")
	if !created {
		t.Error("created = false for an empty session id, want true")
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("issued session id %q is not a UUID: %v", id, err)
	}
}

func TestGetOrCreateReusesLiveSession(t *testing.T) {
	m := newTestManager(time.Hour, 10)

	id, _ := m.GetOrCreate("", "proj-a")
	again, created := m.GetOrCreate(id, "proj-a")

	if created {
		t.Error("created = true for a live session, want reuse")
	}
	if again != id {
		t.Errorf("resolved id = %q, want the original %q", again, id)
	}
}

func TestGetOrCreateTreatsBadIdsAlike(t *testing.T) {
	// Unknown, expired and foreign-project ids all resolve to a fresh
	// session instead of an error.
	t.Run("unknown id", func(t *testing.T) {
		m := newTestManager(time.Hour, 10)

		requested := uuid.NewString()
		id, created := m.GetOrCreate(requested, "proj-a")
		if !created {
			t.Error("created = false for an unknown id")
		}
		if id == requested {
			t.Error("unknown id was resurrected instead of replaced")
		}
	})

	t.Run("expired id", func(t *testing.T) {
		m := newTestManager(50*time.Millisecond, 10)

		id, _ := m.GetOrCreate("", "proj-a")
		time.Sleep(120 * time.Millisecond)

		replacement, created := m.GetOrCreate(id, "proj-a")
		if !created {
			t.Error("created = false for an expired id")
		}
		if replacement == id {
			t.Error("expired id was resurrected instead of replaced")
		}
	})

	t.Run("foreign project id", func(t *testing.T) {
		m := newTestManager(time.Hour, 10)

		id, _ := m.GetOrCreate("", "proj-a")
		replacement, created := m.GetOrCreate(id, "proj-b")
		if !created {
			t.Error("created = false for a foreign-project id")
		}
		if replacement == id {
			t.Error("a session crossed project boundaries")
		}

		// The original session still belongs to its own project.
		kept, created := m.GetOrCreate(id, "proj-a")
		if created || kept != id {
			t.Error("original session was damaged by the foreign lookup")
		}
	})
}

func TestAppendUnknownSession(t *testing.T) {
	m := newTestManager(time.Hour, 10)

	err := m.Append(uuid.NewString(), entity.ChatMessage{Role: entity.RoleUser, Content: "hi"})
	if !errors.Is(err, dto.ErrSessionNotFound) {
		t.Errorf("Append = %v, want ErrSessionNotFound", err)
	}
}

func TestHistoryDefaultLimit(t *testing.T) {
	m := newTestManager(time.Hour, 3)

	id, _ := m.GetOrCreate("", "proj-a")
	for i := 1; i <= 5; i++ {
		if err := m.Append(id, entity.ChatMessage{
			Role:    entity.RoleUser,
			Content: fmt.Sprintf("msg-%d", i),
		}); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	messages, err := m.History(id, 0)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("History = %d messages, want the configured default of 3", len(messages))
	}
	for i, want := range []string{"msg-3", "msg-4", "msg-5"} {
		if messages[i].Content != want {
			t.Errorf("messages[%d] = %q, want %q", i, messages[i].Content, want)
		}
	}

	messages, err = m.History(id, 2)
	if err != nil {
		t.Fatalf("History(2) returned error: %v", err)
	}
	if len(messages) != 2 {
		t.Errorf("History(2) = %d messages, want 2", len(messages))
	}
}

func TestHistoryUnknownSession(t *testing.T) {
	m := newTestManager(time.Hour, 10)

	if _, err := m.History(uuid.NewString(), 0); !errors.Is(err, dto.ErrSessionNotFound) {
		t.Errorf("History = %v, want ErrSessionNotFound", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	m := newTestManager(time.Hour, 10)

	if m.Clear(uuid.NewString()) {
		t.Error("Clear reported removal of an unknown session")
	}

	id, _ := m.GetOrCreate("", "proj-a")
	if !m.Clear(id) {
		t.Error("Clear did not report removal of a live session")
	}
	if m.Clear(id) {
		t.Error("second Clear reported removal again")
	}
}

func TestStatsSweepsBeforeCounting(t *testing.T) {
	m := newTestManager(50*time.Millisecond, 10)

	m.GetOrCreate("", "proj-a")
	m.GetOrCreate("", "proj-a")
	time.Sleep(120 * time.Millisecond)
	m.GetOrCreate("", "proj-b")

	active, cleaned := m.Stats()
	if cleaned != 2 {
		t.Errorf("cleaned = %d, want 2", cleaned)
	}
	if active != 1 {
		t.Errorf("active = %d, want 1", active)
	}

	active, cleaned = m.Stats()
	if cleaned != 0 {
		t.Errorf("second Stats cleaned = %d, want 0", cleaned)
	}
	if active != 1 {
		t.Errorf("second Stats active = %d, want 1", active)
	}
}

func TestStartSweeperReclaimsInBackground(t *testing.T) {
	m := newTestManager(40*time.Millisecond, 10)

	m.GetOrCreate("", "proj-a")

	stop := m.StartSweeper(30 * time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	stop()

	// The ticker goroutine must have reclaimed the expired session already,
	// leaving nothing for a manual sweep.
	if got := m.Sweep(); got != 0 {
		t.Errorf("manual Sweep = %d, want 0 after the background sweeper ran", got)
	}
	if active, _ := m.Stats(); active != 0 {
		t.Errorf("active = %d, want 0", active)
	}
}
