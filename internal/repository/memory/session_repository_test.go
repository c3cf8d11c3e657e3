package memory

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/entity"

	"github.com/google/uuid"
)

func newSession(projectID string) *entity.ChatSession {
	now := time.Now()
	return &entity.ChatSession{
		Id:           uuid.New(),
		ProjectId:    projectID,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

func TestSessionSaveAndGet(t *testing.T) {
	repo := NewSessionRepository(time.Hour)

	s := newSession("proj-a")
	repo.Save(s)

	got, found := repo.Get(s.Id.String())
	if !found {
		t.Fatal("Get did not find a freshly saved session")
	}
	if got.ProjectId != "proj-a" {
		t.Errorf("ProjectId = %q, want proj-a", got.ProjectId)
	}
	if got.Messages != nil {
		t.Errorf("Get returned %d messages, want metadata only", len(got.Messages))
	}

	if _, found := repo.Get(uuid.NewString()); found {
		t.Error("Get found a session that was never saved")
	}
}

func TestSessionExpiryBehavesAsAbsent(t *testing.T) {
	repo := NewSessionRepository(50 * time.Millisecond)

	s := newSession("proj-a")
	repo.Save(s)
	id := s.Id.String()

	time.Sleep(120 * time.Millisecond)

	if _, found := repo.Get(id); found {
		t.Error("Get found a session past its TTL")
	}
	if err := repo.Append(id, entity.ChatMessage{Role: entity.RoleUser, Content: "hi"}); !errors.Is(err, dto.ErrSessionNotFound) {
		t.Errorf("Append on expired session = %v, want ErrSessionNotFound", err)
	}
	if _, err := repo.History(id, 0); !errors.Is(err, dto.ErrSessionNotFound) {
		t.Errorf("History on expired session = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionGetRefreshesActivity(t *testing.T) {
	repo := NewSessionRepository(150 * time.Millisecond)

	s := newSession("proj-a")
	repo.Save(s)
	id := s.Id.String()

	// Each read lands inside the TTL and pushes it forward, so the session
	// outlives its original deadline.
	for i := 0; i < 3; i++ {
		time.Sleep(80 * time.Millisecond)
		if _, found := repo.Get(id); !found {
			t.Fatalf("session expired despite activity (read %d)", i+1)
		}
	}

	time.Sleep(300 * time.Millisecond)
	if _, found := repo.Get(id); found {
		t.Error("session survived a full idle TTL")
	}
}

func TestSessionAppendAndHistoryWindow(t *testing.T) {
	repo := NewSessionRepository(time.Hour)

	s := newSession("proj-a")
	repo.Save(s)
	id := s.Id.String()

	// A live session with no messages is an empty history, not an error.
	empty, err := repo.History(id, 0)
	if err != nil {
		t.Fatalf("History on empty session returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("History on empty session = %d messages, want 0", len(empty))
	}

	for i := 1; i <= 5; i++ {
		err := repo.Append(id, entity.ChatMessage{
			Role:      entity.RoleUser,
			Content:   fmt.Sprintf("msg-%d", i),
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("Append(msg-%d) returned error: %v", i, err)
		}
	}

	all, err := repo.History(id, 0)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("History = %d messages, want 5", len(all))
	}

	last3, err := repo.History(id, 3)
	if err != nil {
		t.Fatalf("History(3) returned error: %v", err)
	}
	if len(last3) != 3 {
		t.Fatalf("History(3) = %d messages, want 3", len(last3))
	}
	for i, want := range []string{"msg-3", "msg-4", "msg-5"} {
		if last3[i].Content != want {
			t.Errorf("last3[%d].Content = %q, want %q (chronological order)", i, last3[i].Content, want)
		}
	}
}

func TestSessionConcurrentAppendsLoseNothing(t *testing.T) {
	repo := NewSessionRepository(time.Hour)

	s := newSession("proj-a")
	repo.Save(s)
	id := s.Id.String()

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			_ = repo.Append(id, entity.ChatMessage{
				Role:    entity.RoleUser,
				Content: fmt.Sprintf("msg-%d", n),
			})
		}(i)
	}
	wg.Wait()

	messages, err := repo.History(id, 0)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(messages) != writers {
		t.Errorf("History = %d messages, want %d", len(messages), writers)
	}
}

func TestSessionDeleteIsIdempotent(t *testing.T) {
	repo := NewSessionRepository(time.Hour)

	if repo.Delete(uuid.NewString()) {
		t.Error("Delete reported removal of an unknown session")
	}

	s := newSession("proj-a")
	repo.Save(s)
	id := s.Id.String()

	if !repo.Delete(id) {
		t.Error("Delete did not report removal of a live session")
	}
	if repo.Delete(id) {
		t.Error("second Delete reported removal again")
	}
	if _, found := repo.Get(id); found {
		t.Error("Get found a deleted session")
	}
}

func TestSessionSweepCountsOnlyTTLReclaims(t *testing.T) {
	repo := NewSessionRepository(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		repo.Save(newSession("proj-a"))
	}
	cleared := newSession("proj-a")
	repo.Save(cleared)
	repo.Delete(cleared.Id.String())

	time.Sleep(120 * time.Millisecond)

	fresh := newSession("proj-a")
	repo.Save(fresh)

	// The explicit delete is not a reclaim; only the three expired sessions
	// count.
	if got := repo.Sweep(); got != 3 {
		t.Errorf("Sweep = %d, want 3", got)
	}
	if got := repo.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount = %d, want 1", got)
	}
	if got := repo.Sweep(); got != 0 {
		t.Errorf("second Sweep = %d, want 0", got)
	}
}

func TestSessionActiveCountExcludesExpired(t *testing.T) {
	repo := NewSessionRepository(50 * time.Millisecond)

	repo.Save(newSession("proj-a"))
	repo.Save(newSession("proj-b"))
	time.Sleep(120 * time.Millisecond)
	repo.Save(newSession("proj-c"))

	// The expired pair has not been swept yet but is already invisible.
	if got := repo.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount = %d, want 1", got)
	}
}
