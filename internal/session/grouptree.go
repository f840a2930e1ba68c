package session

import "strings"

// GroupTree owns the path-addressed classification tree. The canonical state
// is a flat path->Group map plus an insertion-order sequence; Roots is a
// derived projection rebuilt on every mutation. Nothing here holds sessions:
// Instance.GroupPath is the only link between the two, reconciled by Flatten.
type GroupTree struct {
	groupsByPath   map[string]*Group
	insertionOrder []string
	roots          []*Group
}

// NewGroupTree builds a tree from existing (persisted) groups plus whatever
// group paths the instances reference but storage didn't know about.
// existingGroups order is canonical and is preserved as InsertionOrder.
func NewGroupTree(instances []*Instance, existingGroups []*Group) *GroupTree {
	t := &GroupTree{groupsByPath: make(map[string]*Group)}

	for _, g := range existingGroups {
		clone := &Group{Name: g.Name, Path: g.Path, Collapsed: g.Collapsed}
		t.groupsByPath[clone.Path] = clone
		t.insertionOrder = append(t.insertionOrder, clone.Path)
	}

	for _, inst := range instances {
		if inst.GroupPath != "" {
			t.ensureGroupExists(inst.GroupPath)
		}
	}

	t.rebuild()
	return t
}

func (t *GroupTree) ensureGroupExists(path string) {
	if _, ok := t.groupsByPath[path]; ok {
		return
	}
	for _, prefix := range splitAncestry(path) {
		if _, ok := t.groupsByPath[prefix]; ok {
			continue
		}
		g := &Group{Name: groupName(prefix), Path: prefix}
		t.groupsByPath[prefix] = g
		t.insertionOrder = append(t.insertionOrder, prefix)
	}
}

// rebuild recomputes Roots from groupsByPath in insertion order.
func (t *GroupTree) rebuild() {
	var rootPaths []string
	for _, p := range t.insertionOrder {
		if _, ok := t.groupsByPath[p]; ok && !strings.Contains(p, "/") {
			rootPaths = append(rootPaths, p)
		}
	}

	roots := make([]*Group, 0, len(rootPaths))
	for _, p := range rootPaths {
		g := t.groupsByPath[p]
		t.buildChildren(g)
		roots = append(roots, g)
	}
	t.roots = roots
}

func (t *GroupTree) buildChildren(parent *Group) {
	prefix := parent.Path + "/"

	var childPaths []string
	for _, p := range t.insertionOrder {
		if _, ok := t.groupsByPath[p]; !ok {
			continue
		}
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		if strings.Contains(p[len(prefix):], "/") {
			continue
		}
		childPaths = append(childPaths, p)
	}

	children := make([]*Group, 0, len(childPaths))
	for _, p := range childPaths {
		child := t.groupsByPath[p]
		t.buildChildren(child)
		children = append(children, child)
	}
	parent.Children = children
}

// CreateGroup auto-creates path and any missing ancestors. A no-op if path
// already exists.
func (t *GroupTree) CreateGroup(path string) {
	t.ensureGroupExists(path)
	t.rebuild()
}

// DeleteGroup removes path and every descendant. A no-op for an unknown path.
func (t *GroupTree) DeleteGroup(path string) {
	prefix := path + "/"
	toRemove := make(map[string]bool)
	for p := range t.groupsByPath {
		if p == path || strings.HasPrefix(p, prefix) {
			toRemove[p] = true
		}
	}
	for p := range toRemove {
		delete(t.groupsByPath, p)
	}

	kept := t.insertionOrder[:0:0]
	for _, p := range t.insertionOrder {
		if !toRemove[p] {
			kept = append(kept, p)
		}
	}
	t.insertionOrder = kept

	t.rebuild()
}

// GroupExists reports whether path is a known group.
func (t *GroupTree) GroupExists(path string) bool {
	_, ok := t.groupsByPath[path]
	return ok
}

// Get returns the group at path, or nil.
func (t *GroupTree) Get(path string) *Group {
	return t.groupsByPath[path]
}

// GetAllGroups returns every group in insertion order. This is the order
// storage persists on save, so load->save round-trips it.
func (t *GroupTree) GetAllGroups() []*Group {
	groups := make([]*Group, 0, len(t.insertionOrder))
	for _, p := range t.insertionOrder {
		if g, ok := t.groupsByPath[p]; ok {
			groups = append(groups, g)
		}
	}
	return groups
}

// GetRoots returns the derived, nested root groups (for display).
func (t *GroupTree) GetRoots() []*Group {
	return t.roots
}

// ToggleCollapsed flips the collapsed bit on path and rebuilds. A no-op for
// an unknown path.
func (t *GroupTree) ToggleCollapsed(path string) {
	g, ok := t.groupsByPath[path]
	if !ok {
		return
	}
	g.Collapsed = !g.Collapsed
	t.rebuild()
}
