package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nlaurent/deckops/internal/logging"
	"github.com/nlaurent/deckops/internal/statedb"
	"github.com/nlaurent/deckops/internal/tmux"
)

var storageLog = logging.ForComponent(logging.CompStorage)

// expandTilde expands ~ to the user's home directory with path traversal protection.
// It also fixes malformed paths that have ~ in the middle (e.g., "/some/path~/actual/path"),
// which can happen when textinput autocomplete appends instead of replaces.
func expandTilde(path string) string {
	if idx := strings.Index(path, "~/"); idx > 0 {
		path = path[idx:]
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			expanded := filepath.Join(home, path[2:])
			cleaned := filepath.Clean(expanded)
			if strings.HasPrefix(cleaned, home) {
				return cleaned
			}
			storageLog.Warn("path_traversal_detected", slog.String("path", path))
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}

// Storage handles persistence of session data via SQLite.
// Thread-safe with mutex protection for concurrent access within a single process.
// Multiple processes share data via SQLite WAL mode.
type Storage struct {
	db      *statedb.StateDB
	dbPath  string
	profile string
	mu      sync.Mutex
}

// NewStorageWithProfile creates a storage instance for a specific profile.
// If profile is empty, uses the effective profile (from env var or config).
func NewStorageWithProfile(profile string) (*Storage, error) {
	effectiveProfile := GetEffectiveProfile(profile)

	profileDir, err := GetProfileDir(effectiveProfile)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(profileDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	dbPath := filepath.Join(profileDir, "state.db")
	db, err := statedb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}

	return &Storage{
		db:      db,
		dbPath:  dbPath,
		profile: effectiveProfile,
	}, nil
}

// Profile returns the profile name this storage is using.
func (s *Storage) Profile() string {
	return s.profile
}

// Path returns the database path this storage is using.
func (s *Storage) Path() string {
	return s.dbPath
}

// GetDB returns the underlying StateDB for direct access (status writes, heartbeat, etc.)
func (s *Storage) GetDB() *statedb.StateDB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists instances without touching groups.
// Prefer SaveWithGroups so an in-memory GroupTree is never silently dropped.
func (s *Storage) Save(instances []*Instance) error {
	return s.SaveWithGroups(instances, nil)
}

// SaveWithGroups persists instances and groups to SQLite.
// Converts Instance objects to database rows, then batch-inserts in a transaction.
func (s *Storage) SaveWithGroups(instances []*Instance, tree *GroupTree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("storage database not initialized")
	}

	rows := make([]*statedb.InstanceRow, len(instances))
	for i, inst := range instances {
		rows[i] = instanceToRow(inst, i)
	}

	if err := s.db.SaveInstances(rows); err != nil {
		return fmt.Errorf("failed to save instances: %w", err)
	}

	if tree != nil {
		if err := s.db.SaveGroups(groupsToRows(tree.GetAllGroups())); err != nil {
			return fmt.Errorf("failed to save groups: %w", err)
		}
	}

	// Touch metadata so other instances' polling loop notices the change.
	_ = s.db.Touch()

	return nil
}

// DeleteInstance removes a single instance from the database by ID.
func (s *Storage) DeleteInstance(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("storage database not initialized")
	}

	if err := s.db.DeleteInstance(id); err != nil {
		return fmt.Errorf("failed to delete instance %s: %w", id, err)
	}

	_ = s.db.Touch()
	return nil
}

// SaveGroupsOnly persists only the groups table to SQLite.
// This is a lightweight save for visual state like group collapsed/expanded.
// It does NOT call Touch() to avoid triggering reloads on other instances for
// a change that is purely local display state.
func (s *Storage) SaveGroupsOnly(tree *GroupTree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("storage database not initialized")
	}
	if tree == nil {
		return nil
	}

	if err := s.db.SaveGroups(groupsToRows(tree.GetAllGroups())); err != nil {
		return fmt.Errorf("failed to save groups: %w", err)
	}
	return nil
}

// Load reads instances from SQLite, discarding the group tree.
func (s *Storage) Load() ([]*Instance, error) {
	instances, _, err := s.LoadWithGroups()
	return instances, err
}

// LoadWithGroups reads instances and groups from SQLite and reconnects any
// live tmux sessions. groupTree is rebuilt from the loaded groups and the
// loaded instances' GroupPath fields.
func (s *Storage) LoadWithGroups() ([]*Instance, *GroupTree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		storageLog.Debug("load_db_not_initialized", slog.String("profile", s.profile))
		return []*Instance{}, NewGroupTree(nil, nil), nil
	}

	dbRows, err := s.db.LoadInstances()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load instances: %w", err)
	}

	dbGroups, err := s.db.LoadGroups()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load groups: %w", err)
	}

	instances := make([]*Instance, len(dbRows))
	for i, r := range dbRows {
		instances[i] = rowToInstance(r)
	}

	groups := make([]*Group, len(dbGroups))
	for i, g := range dbGroups {
		groups[i] = &Group{Name: g.Name, Path: g.Path, Collapsed: g.Collapsed}
	}

	tree := NewGroupTree(instances, groups)
	return instances, tree, nil
}

// GetDBPathForProfile returns the path to the state.db file for a specific profile.
func GetDBPathForProfile(profile string) (string, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	profileDir, err := GetProfileDir(profile)
	if err != nil {
		return "", err
	}

	return filepath.Join(profileDir, "state.db"), nil
}

// GetUpdatedAt returns the last modification timestamp from SQLite metadata.
func (s *Storage) GetUpdatedAt() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return time.Time{}, fmt.Errorf("database not initialized")
	}

	ts, err := s.db.LastModified()
	if err != nil {
		return time.Time{}, err
	}
	if ts == 0 {
		return time.Time{}, nil
	}
	return time.Unix(0, ts), nil
}

// GetFileMtime returns the filesystem modification time of the database file.
// Useful as a cheap first check before the metadata-based LastModified poll.
func (s *Storage) GetFileMtime() (time.Time, error) {
	info, err := os.Stat(s.dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// instanceToRow converts a live Instance into its database row. seq
// preserves the caller's slice order so SortNone round-trips across restarts.
func instanceToRow(inst *Instance, seq int) *statedb.InstanceRow {
	tmuxName := ""
	if inst.tmuxSession != nil {
		tmuxName = inst.tmuxSession.Name
	}

	row := &statedb.InstanceRow{
		ID:              inst.ID,
		Title:           inst.Title,
		ProjectPath:     inst.ProjectPath,
		GroupPath:       inst.GroupPath,
		Seq:             seq,
		Command:         inst.Command,
		Wrapper:         inst.Wrapper,
		Tool:            inst.Tool,
		Status:          string(inst.Status),
		TmuxSession:     tmuxName,
		CreatedAt:       inst.CreatedAt,
		LastAccessed:    inst.LastAccessedAt,
		ParentSessionID: inst.ParentSessionID,
	}

	if inst.Worktree != nil {
		row.WorktreePath = inst.Worktree.MainRepoPath
		row.WorktreeRepo = inst.Worktree.MainRepoPath
		row.WorktreeBranch = inst.Worktree.Branch
		row.WorktreeManaged = inst.Worktree.Managed
		row.WorktreeCreatedAt = inst.Worktree.CreatedAt
		row.WorktreeCleanup = inst.Worktree.CleanupOnDelete
	}

	if inst.Sandbox != nil {
		row.SandboxEnabled = inst.Sandbox.Enabled
		row.SandboxContainerID = inst.Sandbox.ContainerID
		row.SandboxImage = inst.Sandbox.Image
		if env, err := marshalEnv(inst.Sandbox.Env); err == nil {
			row.SandboxEnv = env
		}
	}

	return row
}

// rowToInstance rebuilds a live Instance from a database row, lazily
// reconnecting its tmux session. No tmux command runs here; tmux
// configuration (mouse mode, status bar injection) is applied only by
// tmux Session.Start, which keeps startup fast with many persisted sessions.
func rowToInstance(r *statedb.InstanceRow) *Instance {
	var tmuxSess *tmux.Session
	if r.TmuxSession != "" {
		tmuxSess = tmux.ReconnectSessionLazy(
			r.TmuxSession,
			r.Title,
			r.ProjectPath,
			r.Command,
			statusToTmuxString(Status(r.Status)),
		)
		tmuxSess.InstanceID = r.ID
	}

	inst := &Instance{
		ID:              r.ID,
		Title:           r.Title,
		ProjectPath:     expandTilde(r.ProjectPath),
		GroupPath:       r.GroupPath,
		ParentSessionID: r.ParentSessionID,
		Command:         r.Command,
		Wrapper:         r.Wrapper,
		Tool:            r.Tool,
		Status:          Status(r.Status),
		CreatedAt:       r.CreatedAt,
		LastAccessedAt:  r.LastAccessed,
		tmuxSession:     tmuxSess,
	}

	if r.WorktreePath != "" || r.WorktreeBranch != "" || r.WorktreeManaged {
		inst.Worktree = &WorktreeInfo{
			Branch:          r.WorktreeBranch,
			MainRepoPath:    r.WorktreeRepo,
			Managed:         r.WorktreeManaged,
			CreatedAt:       r.WorktreeCreatedAt,
			CleanupOnDelete: r.WorktreeCleanup,
		}
	}

	if r.SandboxEnabled || r.SandboxContainerID != "" {
		inst.Sandbox = &SandboxInfo{
			Enabled:     r.SandboxEnabled,
			ContainerID: r.SandboxContainerID,
			Image:       r.SandboxImage,
			Env:         unmarshalEnv(r.SandboxEnv),
		}
	}

	return inst
}

func groupsToRows(groups []*Group) []*statedb.GroupRow {
	rows := make([]*statedb.GroupRow, len(groups))
	for i, g := range groups {
		rows[i] = &statedb.GroupRow{
			Path:      g.Path,
			Name:      g.Name,
			Collapsed: g.Collapsed,
			Seq:       i,
		}
	}
	return rows
}

// marshalEnv serializes a sandbox's environment map for storage.
func marshalEnv(env map[string]string) (json.RawMessage, error) {
	if len(env) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(env)
}

// unmarshalEnv deserializes a stored sandbox environment map. Malformed or
// empty input yields an empty, non-nil map.
func unmarshalEnv(raw json.RawMessage) map[string]string {
	env := make(map[string]string)
	if len(raw) == 0 {
		return env
	}
	_ = json.Unmarshal(raw, &env)
	return env
}

// statusToTmuxString converts a Status enum to the string expected by
// tmux.ReconnectSessionLazy. ReconnectSessionLazy ignores that argument; the
// status survives restarts through the Instance's own stored Status.
func statusToTmuxString(s Status) string {
	switch s {
	case StatusRunning:
		return "active"
	case StatusWaiting:
		return "waiting"
	case StatusIdle:
		return "idle"
	case StatusError:
		return "waiting"
	default:
		return "waiting"
	}
}
