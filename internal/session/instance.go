package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nlaurent/deckops/internal/tmux"
)

// Status is the lifecycle state of an Instance as observed by the controller.
type Status string

const (
	StatusRunning  Status = "running"
	StatusWaiting  Status = "waiting"
	StatusIdle     Status = "idle"
	StatusError    Status = "error"
	StatusDeleting Status = "deleting"
)

// WorktreeInfo describes an instance's isolated filesystem checkout, when one
// exists. The checkout itself is created and torn down by the external
// process orchestrator; this struct only records what the controller needs
// to decide what to ask for on delete.
type WorktreeInfo struct {
	Branch          string
	MainRepoPath    string
	Managed         bool // true if deckops created this worktree (vs. an operator-supplied one)
	CreatedAt       time.Time
	CleanupOnDelete bool
}

// SandboxInfo describes an instance's optional containerized sandbox.
type SandboxInfo struct {
	Enabled     bool
	ContainerID string
	Image       string
	Env         map[string]string
}

// Instance is a single managed tool invocation bound to a working directory.
type Instance struct {
	ID              string
	Title           string
	ProjectPath     string
	GroupPath       string // "" means ungrouped
	ParentSessionID string
	Command         string
	Wrapper         string
	Tool            string
	Status          Status
	CreatedAt       time.Time
	LastAccessedAt  time.Time

	Worktree *WorktreeInfo
	Sandbox  *SandboxInfo

	mu          sync.Mutex
	tmuxSession *tmux.Session
}

// EnsureTmuxSession lazily attaches the underlying tmux session, reconnecting
// to an existing one if the instance was loaded from storage.
func (i *Instance) EnsureTmuxSession() *tmux.Session {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.tmuxSession == nil {
		i.tmuxSession = tmux.NewSession(i.ID, i.ProjectPath)
	}
	return i.tmuxSession
}

// TmuxSessionName returns the name of the backing tmux session, if any.
func (i *Instance) TmuxSessionName() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.tmuxSession == nil {
		return ""
	}
	return i.tmuxSession.Name
}

// HasManagedWorktree reports whether this instance's worktree was created by
// deckops (as opposed to a pre-existing checkout the operator pointed at).
func (i *Instance) HasManagedWorktree() bool {
	return i.Worktree != nil && i.Worktree.Managed
}

// HasSandbox reports whether this instance runs inside a container.
func (i *Instance) HasSandbox() bool {
	return i.Sandbox != nil && i.Sandbox.Enabled
}

// InGroup reports whether the instance's group_path equals path or is nested
// under it (path + "/...").
func (i *Instance) InGroup(path string) bool {
	if path == "" {
		return i.GroupPath == ""
	}
	return i.GroupPath == path || strings.HasPrefix(i.GroupPath, path+"/")
}

// NewInstance creates an ungrouped Instance bound to projectPath, with a
// fresh ID and StatusIdle.
func NewInstance(title, projectPath string) *Instance {
	return &Instance{
		ID:          generateInstanceID(),
		Title:       title,
		ProjectPath: projectPath,
		Tool:        "shell",
		Status:      StatusIdle,
		CreatedAt:   time.Now(),
	}
}

// NewInstanceWithGroup creates an Instance under an explicit group path.
func NewInstanceWithGroup(title, projectPath, groupPath string) *Instance {
	inst := NewInstance(title, projectPath)
	inst.GroupPath = groupPath
	return inst
}

// generateInstanceID returns a short random-hex ID suffixed with the current
// Unix timestamp, matching the ID shape Storage and GroupTree expect.
func generateInstanceID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("inst-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d", hex.EncodeToString(buf), time.Now().Unix())
}
