package statedb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// StateDB wraps a SQLite database for session/group persistence.
// Thread-safe for concurrent use from multiple goroutines within one process.
// Multiple OS processes can safely read/write via WAL mode + busy timeout.
type StateDB struct {
	db  *sql.DB
	pid int
}

// InstanceRow represents a session row in the database. Seq is an
// insertion-sequence number assigned at save time; it is what lets
// SortOrder::None round-trip the operator's loaded/insertion order.
type InstanceRow struct {
	ID              string
	Title           string
	ProjectPath     string
	GroupPath       string
	Seq             int
	Command         string
	Wrapper         string
	Tool            string
	Status          string
	TmuxSession     string
	CreatedAt       time.Time
	LastAccessed    time.Time
	ParentSessionID string

	WorktreePath        string
	WorktreeRepo        string
	WorktreeBranch      string
	WorktreeManaged     bool
	WorktreeCreatedAt   time.Time
	WorktreeCleanup     bool

	SandboxEnabled     bool
	SandboxContainerID string
	SandboxImage       string
	SandboxEnv         json.RawMessage // map[string]string
}

// GroupRow represents a group row in the database.
type GroupRow struct {
	Path        string
	Name        string
	Collapsed   bool
	Seq         int
	DefaultPath string
}

// StatusRow holds status + acknowledgment for a session.
type StatusRow struct {
	Status       string
	Tool         string
	Acknowledged bool
}

// global singleton for cross-package access (status writes from background worker)
var (
	globalDB   *StateDB
	globalDBMu sync.RWMutex
)

// SetGlobal sets the global StateDB instance.
func SetGlobal(db *StateDB) {
	globalDBMu.Lock()
	globalDB = db
	globalDBMu.Unlock()
}

// GetGlobal returns the global StateDB instance (may be nil).
func GetGlobal() *StateDB {
	globalDBMu.RLock()
	defer globalDBMu.RUnlock()
	return globalDB
}

// Open creates or opens a SQLite database at dbPath with WAL mode and busy timeout.
func Open(dbPath string) (*StateDB, error) {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("statedb: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("statedb: open: %w", err)
	}

	// WAL mode: allows concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: wal mode: %w", err)
	}

	// Busy timeout: wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: busy timeout: %w", err)
	}

	// Foreign keys (for future use)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: foreign keys: %w", err)
	}

	return &StateDB{db: db, pid: os.Getpid()}, nil
}

// Close checkpoints WAL and closes the database.
func (s *StateDB) Close() error {
	// Checkpoint WAL to merge it back into the main database file
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced use cases (e.g., testing).
func (s *StateDB) DB() *sql.DB {
	return s.db
}

// Migrate creates tables if they don't exist and runs any pending migrations.
func (s *StateDB) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// metadata table
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statedb: create metadata: %w", err)
	}

	// instances table
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS instances (
			id                 TEXT PRIMARY KEY,
			title              TEXT NOT NULL,
			project_path       TEXT NOT NULL,
			group_path         TEXT NOT NULL DEFAULT '',
			seq                INTEGER NOT NULL DEFAULT 0,
			command            TEXT NOT NULL DEFAULT '',
			wrapper            TEXT NOT NULL DEFAULT '',
			tool               TEXT NOT NULL DEFAULT 'shell',
			status             TEXT NOT NULL DEFAULT 'idle',
			tmux_session       TEXT NOT NULL DEFAULT '',
			created_at         INTEGER NOT NULL,
			last_accessed      INTEGER NOT NULL DEFAULT 0,
			parent_session_id  TEXT NOT NULL DEFAULT '',
			worktree_path      TEXT NOT NULL DEFAULT '',
			worktree_repo      TEXT NOT NULL DEFAULT '',
			worktree_branch    TEXT NOT NULL DEFAULT '',
			worktree_managed   INTEGER NOT NULL DEFAULT 0,
			worktree_created_at INTEGER NOT NULL DEFAULT 0,
			worktree_cleanup   INTEGER NOT NULL DEFAULT 0,
			sandbox_enabled    INTEGER NOT NULL DEFAULT 0,
			sandbox_container  TEXT NOT NULL DEFAULT '',
			sandbox_image      TEXT NOT NULL DEFAULT '',
			sandbox_env        TEXT NOT NULL DEFAULT '{}',
			acknowledged       INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return fmt.Errorf("statedb: create instances: %w", err)
	}

	// groups table
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS groups (
			path         TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			collapsed    INTEGER NOT NULL DEFAULT 0,
			seq          INTEGER NOT NULL DEFAULT 0,
			default_path TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		return fmt.Errorf("statedb: create groups: %w", err)
	}

	// instance heartbeats
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS instance_heartbeats (
			pid        INTEGER PRIMARY KEY,
			started    INTEGER NOT NULL,
			heartbeat  INTEGER NOT NULL,
			is_primary INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return fmt.Errorf("statedb: create heartbeats: %w", err)
	}

	// Set schema version
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("statedb: set schema version: %w", err)
	}

	return tx.Commit()
}

// IsEmpty returns true if the instances table has no rows.
func (s *StateDB) IsEmpty() (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM instances").Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// --- Instance CRUD ---

const instanceColumns = `
	id, title, project_path, group_path, seq,
	command, wrapper, tool, status, tmux_session,
	created_at, last_accessed, parent_session_id,
	worktree_path, worktree_repo, worktree_branch,
	worktree_managed, worktree_created_at, worktree_cleanup,
	sandbox_enabled, sandbox_container, sandbox_image, sandbox_env
`

// SaveInstances inserts or replaces multiple instances in a single transaction.
// It also removes any rows from the database that are not in the provided list,
// ensuring deleted sessions don't reappear on reload.
func (s *StateDB) SaveInstances(insts []*InstanceRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Delete rows not in the new list to prevent deleted sessions from reappearing.
	if len(insts) == 0 {
		if _, err := tx.Exec("DELETE FROM instances"); err != nil {
			return err
		}
	} else {
		placeholders := make([]string, len(insts))
		args := make([]any, len(insts))
		for i, inst := range insts {
			placeholders[i] = "?"
			args[i] = inst.ID
		}
		query := "DELETE FROM instances WHERE id NOT IN (" + strings.Join(placeholders, ",") + ")"
		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO instances (` + instanceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, inst := range insts {
		if err := execSaveInstance(stmt, inst); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func execSaveInstance(stmt *sql.Stmt, inst *InstanceRow) error {
	env := inst.SandboxEnv
	if len(env) == 0 {
		env = json.RawMessage("{}")
	}
	var worktreeCreatedUnix int64
	if !inst.WorktreeCreatedAt.IsZero() {
		worktreeCreatedUnix = inst.WorktreeCreatedAt.Unix()
	}
	_, err := stmt.Exec(
		inst.ID, inst.Title, inst.ProjectPath, inst.GroupPath, inst.Seq,
		inst.Command, inst.Wrapper, inst.Tool, inst.Status, inst.TmuxSession,
		inst.CreatedAt.Unix(), inst.LastAccessed.Unix(), inst.ParentSessionID,
		inst.WorktreePath, inst.WorktreeRepo, inst.WorktreeBranch,
		boolToInt(inst.WorktreeManaged), worktreeCreatedUnix, boolToInt(inst.WorktreeCleanup),
		boolToInt(inst.SandboxEnabled), inst.SandboxContainerID, inst.SandboxImage, string(env),
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LoadInstances returns all instances ordered by seq.
func (s *StateDB) LoadInstances() ([]*InstanceRow, error) {
	rows, err := s.db.Query(`
		SELECT ` + instanceColumns + `
		FROM instances ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*InstanceRow
	for rows.Next() {
		r := &InstanceRow{}
		var createdUnix, accessedUnix, worktreeCreatedUnix int64
		var worktreeManaged, worktreeCleanup, sandboxEnabled int
		var sandboxEnv string
		if err := rows.Scan(
			&r.ID, &r.Title, &r.ProjectPath, &r.GroupPath, &r.Seq,
			&r.Command, &r.Wrapper, &r.Tool, &r.Status, &r.TmuxSession,
			&createdUnix, &accessedUnix, &r.ParentSessionID,
			&r.WorktreePath, &r.WorktreeRepo, &r.WorktreeBranch,
			&worktreeManaged, &worktreeCreatedUnix, &worktreeCleanup,
			&sandboxEnabled, &r.SandboxContainerID, &r.SandboxImage, &sandboxEnv,
		); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(createdUnix, 0)
		if accessedUnix > 0 {
			r.LastAccessed = time.Unix(accessedUnix, 0)
		}
		r.WorktreeManaged = worktreeManaged != 0
		if worktreeCreatedUnix > 0 {
			r.WorktreeCreatedAt = time.Unix(worktreeCreatedUnix, 0)
		}
		r.WorktreeCleanup = worktreeCleanup != 0
		r.SandboxEnabled = sandboxEnabled != 0
		r.SandboxEnv = json.RawMessage(sandboxEnv)
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteInstance removes an instance by ID.
func (s *StateDB) DeleteInstance(id string) error {
	_, err := s.db.Exec("DELETE FROM instances WHERE id = ?", id)
	return err
}

// UpdateInstanceField updates a single column for a given instance.
// field must be a valid column name (caller is responsible for safety).
func (s *StateDB) UpdateInstanceField(id, field string, value any) error {
	query := fmt.Sprintf("UPDATE instances SET %s = ? WHERE id = ?", field)
	_, err := s.db.Exec(query, value, id)
	return err
}

// --- Group CRUD ---

// SaveGroups replaces all groups in a single transaction.
func (s *StateDB) SaveGroups(groups []*GroupRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Clear existing groups and re-insert (simpler than diff)
	if _, err := tx.Exec("DELETE FROM groups"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO groups (path, name, collapsed, seq, default_path)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range groups {
		if _, err := stmt.Exec(g.Path, g.Name, boolToInt(g.Collapsed), g.Seq, g.DefaultPath); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadGroups returns all groups ordered by seq (the insertion order they were
// saved in).
func (s *StateDB) LoadGroups() ([]*GroupRow, error) {
	rows, err := s.db.Query(`
		SELECT path, name, collapsed, seq, default_path
		FROM groups ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*GroupRow
	for rows.Next() {
		g := &GroupRow{}
		var collapsed int
		if err := rows.Scan(&g.Path, &g.Name, &collapsed, &g.Seq, &g.DefaultPath); err != nil {
			return nil, err
		}
		g.Collapsed = collapsed != 0
		result = append(result, g)
	}
	return result, rows.Err()
}

// DeleteGroup removes a group by path.
func (s *StateDB) DeleteGroup(path string) error {
	_, err := s.db.Exec("DELETE FROM groups WHERE path = ?", path)
	return err
}

// --- Status + Acknowledgment ---

// WriteStatus updates the status and tool for an instance.
func (s *StateDB) WriteStatus(id, status, tool string) error {
	_, err := s.db.Exec(
		`UPDATE instances
		 SET status = ?, tool = ?,
		     acknowledged = CASE WHEN ? = 'running' THEN 0 ELSE acknowledged END
		 WHERE id = ?`,
		status, tool, status, id,
	)
	return err
}

// ReadAllStatuses returns status + acknowledged flag for every instance.
func (s *StateDB) ReadAllStatuses() (map[string]StatusRow, error) {
	rows, err := s.db.Query("SELECT id, status, tool, acknowledged FROM instances")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]StatusRow)
	for rows.Next() {
		var id string
		var sr StatusRow
		var ack int
		if err := rows.Scan(&id, &sr.Status, &sr.Tool, &ack); err != nil {
			return nil, err
		}
		sr.Acknowledged = ack != 0
		result[id] = sr
	}
	return result, rows.Err()
}

// SetAcknowledged sets or clears the acknowledged flag for an instance.
func (s *StateDB) SetAcknowledged(id string, ack bool) error {
	_, err := s.db.Exec("UPDATE instances SET acknowledged = ? WHERE id = ?", boolToInt(ack), id)
	return err
}

// --- Heartbeat ---

// RegisterInstance records this process as an active TUI instance.
func (s *StateDB) RegisterInstance(isPrimary bool) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO instance_heartbeats (pid, started, heartbeat, is_primary)
		VALUES (?, ?, ?, ?)
	`, s.pid, now, now, boolToInt(isPrimary))
	return err
}

// Heartbeat updates the heartbeat timestamp for this process.
func (s *StateDB) Heartbeat() error {
	_, err := s.db.Exec(
		"UPDATE instance_heartbeats SET heartbeat = ? WHERE pid = ?",
		time.Now().Unix(), s.pid,
	)
	return err
}

// UnregisterInstance removes this process from the heartbeat table.
func (s *StateDB) UnregisterInstance() error {
	_, err := s.db.Exec("DELETE FROM instance_heartbeats WHERE pid = ?", s.pid)
	return err
}

// CleanDeadInstances removes heartbeat entries that haven't been updated within timeout.
func (s *StateDB) CleanDeadInstances(timeout time.Duration) error {
	cutoff := time.Now().Add(-timeout).Unix()
	_, err := s.db.Exec("DELETE FROM instance_heartbeats WHERE heartbeat < ?", cutoff)
	return err
}

// AliveInstanceCount returns how many TUI instances have fresh heartbeats.
func (s *StateDB) AliveInstanceCount() (int, error) {
	var count int
	cutoff := time.Now().Add(-30 * time.Second).Unix()
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM instance_heartbeats WHERE heartbeat >= ?", cutoff,
	).Scan(&count)
	return count, err
}

// --- Primary Election ---

// ElectPrimary attempts to make this instance the primary.
// Returns true if this instance is now (or already was) the primary.
// Uses a transaction to atomically clear stale primaries and claim if available.
func (s *StateDB) ElectPrimary(timeout time.Duration) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("statedb: begin elect: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cutoff := time.Now().Add(-timeout).Unix()

	// Clear is_primary for any heartbeat older than timeout (stale primary)
	if _, err := tx.Exec(
		"UPDATE instance_heartbeats SET is_primary = 0 WHERE heartbeat < ? AND is_primary = 1",
		cutoff,
	); err != nil {
		return false, fmt.Errorf("statedb: clear stale primary: %w", err)
	}

	// Check if any alive instance already has is_primary=1
	var existingPID int
	err = tx.QueryRow(
		"SELECT pid FROM instance_heartbeats WHERE is_primary = 1 AND heartbeat >= ? LIMIT 1",
		cutoff,
	).Scan(&existingPID)

	if err == nil {
		// An alive primary exists
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("statedb: commit elect: %w", err)
		}
		return existingPID == s.pid, nil
	}

	// No alive primary exists: claim it
	if _, err := tx.Exec(
		"UPDATE instance_heartbeats SET is_primary = 1 WHERE pid = ?",
		s.pid,
	); err != nil {
		return false, fmt.Errorf("statedb: claim primary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("statedb: commit elect: %w", err)
	}
	return true, nil
}

// ResignPrimary clears the is_primary flag for this process.
func (s *StateDB) ResignPrimary() error {
	_, err := s.db.Exec(
		"UPDATE instance_heartbeats SET is_primary = 0 WHERE pid = ?",
		s.pid,
	)
	return err
}

// --- Metadata ---

// SetMeta sets a key-value pair in the metadata table.
func (s *StateDB) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta gets a value from the metadata table. Returns "" if not found.
func (s *StateDB) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// --- Change Detection ---

// Touch updates a metadata timestamp that other instances can poll to detect changes.
func (s *StateDB) Touch() error {
	return s.SetMeta("last_modified", fmt.Sprintf("%d", time.Now().UnixNano()))
}

// LastModified returns the last_modified timestamp from metadata.
func (s *StateDB) LastModified() (int64, error) {
	val, err := s.GetMeta("last_modified")
	if err != nil || val == "" {
		return 0, err
	}
	var ts int64
	_, err = fmt.Sscanf(val, "%d", &ts)
	return ts, err
}
