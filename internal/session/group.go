package session

import "strings"

// Group is a named node in the path-addressed classification tree.
type Group struct {
	Name      string
	Path      string
	Collapsed bool

	// Children is populated only during projection (GroupTree.rebuild, read
	// back through GroupTree.GetRoots); it is never persisted.
	Children []*Group
}

// groupName returns the last path segment of path.
func groupName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// groupParent returns the parent path of path, or "" if path is a root.
func groupParent(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// splitAncestry returns every cumulative prefix of path at '/' boundaries,
// e.g. "a/b/c" -> ["a", "a/b", "a/b/c"].
func splitAncestry(path string) []string {
	segments := strings.Split(path, "/")
	prefixes := make([]string, 0, len(segments))
	for i := range segments {
		prefixes = append(prefixes, strings.Join(segments[:i+1], "/"))
	}
	return prefixes
}
