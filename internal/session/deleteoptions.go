package session

import "strings"

// SessionDeleteOptions carries the checkbox state from the unified-delete
// dialog for a single session.
type SessionDeleteOptions struct {
	DeleteWorktree      bool
	DeleteBranch        bool
	DeleteContainer     bool
	ForceDeleteWorktree bool
}

// GroupDeleteOptions carries the checkbox state from the group-delete-options
// dialog; it applies uniformly to every session under the deleted subtree.
type GroupDeleteOptions struct {
	DeleteSessions       bool
	DeleteWorktrees      bool
	DeleteBranches       bool
	DeleteContainers     bool
	ForceDeleteWorktrees bool
}

// GroupHasManagedWorktrees is the exported form of groupHasManagedWorktrees,
// used by HomeView to populate the group-delete-options dialog.
func GroupHasManagedWorktrees(path string, instances []*Instance) bool {
	return groupHasManagedWorktrees(path, instances)
}

// GroupHasContainers is the exported form of groupHasContainers, used by
// HomeView to populate the group-delete-options dialog.
func GroupHasContainers(path string, instances []*Instance) bool {
	return groupHasContainers(path, instances)
}

// groupHasManagedWorktrees reports whether any instance under path (or path's
// descendants) has a worktree deckops created, driving whether the
// "delete worktrees" checkbox is offered.
func groupHasManagedWorktrees(path string, instances []*Instance) bool {
	prefix := path + "/"
	for _, inst := range instances {
		if inst.GroupPath != path && !strings.HasPrefix(inst.GroupPath, prefix) {
			continue
		}
		if inst.HasManagedWorktree() {
			return true
		}
	}
	return false
}

// groupHasContainers reports whether any instance under path (or path's
// descendants) runs in a sandbox container, driving whether the
// "delete containers" checkbox is offered.
func groupHasContainers(path string, instances []*Instance) bool {
	prefix := path + "/"
	for _, inst := range instances {
		if inst.GroupPath != path && !strings.HasPrefix(inst.GroupPath, prefix) {
			continue
		}
		if inst.HasSandbox() {
			return true
		}
	}
	return false
}
