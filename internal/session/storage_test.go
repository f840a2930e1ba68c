package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nlaurent/deckops/internal/statedb"
)

// newTestStorage creates a Storage backed by a temp-dir SQLite database.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "state.db")
	db, err := statedb.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Storage{db: db, dbPath: dbPath, profile: "_test"}
}

func TestStorageUpdatedAtTimestamp(t *testing.T) {
	s := newTestStorage(t)

	instances := []*Instance{
		{
			ID:          "test-1",
			Title:       "Test Session",
			ProjectPath: "/tmp/test",
			GroupPath:   "test-group",
			Command:     "claude",
			Tool:        "claude",
			Status:      StatusIdle,
			CreatedAt:   time.Now(),
		},
	}

	beforeSave := time.Now()
	time.Sleep(10 * time.Millisecond)

	if err := s.SaveWithGroups(instances, nil); err != nil {
		t.Fatalf("SaveWithGroups failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	afterSave := time.Now()

	updatedAt, err := s.GetUpdatedAt()
	if err != nil {
		t.Fatalf("GetUpdatedAt failed: %v", err)
	}
	if updatedAt.Before(beforeSave) {
		t.Errorf("UpdatedAt %v is before save started %v", updatedAt, beforeSave)
	}
	if updatedAt.After(afterSave) {
		t.Errorf("UpdatedAt %v is after save completed %v", updatedAt, afterSave)
	}
	if updatedAt.IsZero() {
		t.Error("UpdatedAt is zero, expected a valid timestamp")
	}

	time.Sleep(50 * time.Millisecond)
	firstUpdatedAt := updatedAt

	if err := s.SaveWithGroups(instances, nil); err != nil {
		t.Fatalf("Second SaveWithGroups failed: %v", err)
	}

	secondUpdatedAt, err := s.GetUpdatedAt()
	if err != nil {
		t.Fatalf("Second GetUpdatedAt failed: %v", err)
	}
	if !secondUpdatedAt.After(firstUpdatedAt) {
		t.Errorf("Second UpdatedAt %v should be after first %v", secondUpdatedAt, firstUpdatedAt)
	}
}

func TestGetUpdatedAtEmpty(t *testing.T) {
	s := newTestStorage(t)

	updatedAt, err := s.GetUpdatedAt()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if !updatedAt.IsZero() {
		t.Errorf("Expected zero time for empty db, got %v", updatedAt)
	}
}

func TestLoadWithGroupsRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	instances := []*Instance{
		{
			ID:          "test-1",
			Title:       "Test Session 1",
			ProjectPath: "/tmp/test1",
			GroupPath:   "test-group",
			Command:     "claude",
			Tool:        "claude",
			Status:      StatusWaiting,
			CreatedAt:   time.Now(),
		},
		{
			ID:          "test-2",
			Title:       "Test Session 2",
			ProjectPath: "/tmp/test2",
			GroupPath:   "",
			Command:     "gemini",
			Tool:        "gemini",
			Status:      StatusIdle,
			CreatedAt:   time.Now(),
		},
	}

	if err := s.SaveWithGroups(instances, nil); err != nil {
		t.Fatalf("SaveWithGroups failed: %v", err)
	}

	loaded, tree, err := s.LoadWithGroups()
	if err != nil {
		t.Fatalf("LoadWithGroups failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("Expected 2 instances, got %d", len(loaded))
	}
	if loaded[0].ID != "test-1" || loaded[0].Title != "Test Session 1" {
		t.Errorf("unexpected first instance: %+v", loaded[0])
	}
	if loaded[0].Status != StatusWaiting {
		t.Errorf("Expected first instance status 'waiting', got '%s'", loaded[0].Status)
	}
	if loaded[1].ID != "test-2" || loaded[1].Tool != "gemini" {
		t.Errorf("unexpected second instance: %+v", loaded[1])
	}
	if !tree.GroupExists("test-group") {
		t.Error("expected test-group to be reconstructed from instance GroupPath")
	}
}

func TestLoadWithGroupsEmptyDB(t *testing.T) {
	s := newTestStorage(t)

	instances, tree, err := s.LoadWithGroups()
	if err != nil {
		t.Errorf("LoadWithGroups should not return error for empty db, got: %v", err)
	}
	if len(instances) != 0 {
		t.Errorf("Expected empty instances, got %d", len(instances))
	}
	if len(tree.GetAllGroups()) != 0 {
		t.Errorf("Expected empty groups, got %d", len(tree.GetAllGroups()))
	}
}

func TestSaveWithGroupsPersistsWorktreeAndSandbox(t *testing.T) {
	s := newTestStorage(t)

	instances := []*Instance{
		{
			ID:          "test-1",
			Title:       "Worktree Session",
			ProjectPath: "/tmp/test1",
			Command:     "claude",
			Tool:        "claude",
			Status:      StatusRunning,
			CreatedAt:   time.Now(),
			Worktree: &WorktreeInfo{
				Branch:          "feature/foo",
				MainRepoPath:    "/repos/main",
				Managed:         true,
				CleanupOnDelete: true,
			},
			Sandbox: &SandboxInfo{
				Enabled:     true,
				ContainerID: "abc123",
				Image:       "deckops/sandbox:latest",
				Env:         map[string]string{"FOO": "bar"},
			},
		},
	}

	if err := s.SaveWithGroups(instances, nil); err != nil {
		t.Fatalf("SaveWithGroups failed: %v", err)
	}

	loaded, _, err := s.LoadWithGroups()
	if err != nil {
		t.Fatalf("LoadWithGroups failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(loaded))
	}

	got := loaded[0]
	if got.Worktree == nil || got.Worktree.Branch != "feature/foo" || !got.Worktree.Managed {
		t.Errorf("worktree info not round-tripped: %+v", got.Worktree)
	}
	if got.Sandbox == nil || got.Sandbox.ContainerID != "abc123" || got.Sandbox.Env["FOO"] != "bar" {
		t.Errorf("sandbox info not round-tripped: %+v", got.Sandbox)
	}
}
