package session

import (
	"sort"
	"strings"
)

// ItemKind distinguishes the two shapes an Item can take.
type ItemKind int

const (
	ItemGroup ItemKind = iota
	ItemSession
)

// Item is a single element of the flattened, cursor-addressable list.
// Depth is rendering indentation: 0 for roots and ungrouped sessions.
type Item struct {
	Kind ItemKind

	// Group fields (valid when Kind == ItemGroup)
	GroupPath    string
	GroupName    string
	Collapsed    bool
	SessionCount int

	// Session fields (valid when Kind == ItemSession)
	SessionID string

	Depth int
}

// Flatten produces the ordered list of Items from (tree, instances, sortOrder).
// Ungrouped sessions are emitted first at depth 0, then each root group
// (recursively) with its sessions and child groups interleaved in its
// subtree, skipping descendants of a collapsed group.
func Flatten(tree *GroupTree, instances []*Instance, sortOrder SortOrder) []Item {
	items := make([]Item, 0, len(instances)+len(tree.groupsByPath))

	ungrouped := make([]*Instance, 0)
	for _, inst := range instances {
		if inst.GroupPath == "" {
			ungrouped = append(ungrouped, inst)
		}
	}
	sortInstancesByTitle(ungrouped, sortOrder)
	for _, inst := range ungrouped {
		items = append(items, Item{Kind: ItemSession, SessionID: inst.ID, Depth: 0})
	}

	roots := append([]*Group(nil), tree.GetRoots()...)
	sortGroupsByName(roots, sortOrder)
	for _, root := range roots {
		flattenGroup(root, instances, &items, 0, sortOrder)
	}

	return items
}

func flattenGroup(g *Group, instances []*Instance, items *[]Item, depth int, sortOrder SortOrder) {
	*items = append(*items, Item{
		Kind:         ItemGroup,
		GroupPath:    g.Path,
		GroupName:    g.Name,
		Collapsed:    g.Collapsed,
		SessionCount: countSessionsInGroup(g.Path, instances),
		Depth:        depth,
	})

	if g.Collapsed {
		return
	}

	direct := make([]*Instance, 0)
	for _, inst := range instances {
		if inst.GroupPath == g.Path {
			direct = append(direct, inst)
		}
	}
	sortInstancesByTitle(direct, sortOrder)
	for _, inst := range direct {
		*items = append(*items, Item{Kind: ItemSession, SessionID: inst.ID, Depth: depth + 1})
	}

	children := append([]*Group(nil), g.Children...)
	sortGroupsByName(children, sortOrder)
	for _, child := range children {
		flattenGroup(child, instances, items, depth+1, sortOrder)
	}
}

// countSessionsInGroup is the recursive count of instances assigned to path
// or any of its descendants.
func countSessionsInGroup(path string, instances []*Instance) int {
	prefix := path + "/"
	count := 0
	for _, inst := range instances {
		if inst.GroupPath == path || strings.HasPrefix(inst.GroupPath, prefix) {
			count++
		}
	}
	return count
}

func sortGroupsByName(groups []*Group, sortOrder SortOrder) {
	switch sortOrder {
	case SortAZ:
		sort.SliceStable(groups, func(i, j int) bool {
			return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
		})
	case SortZA:
		sort.SliceStable(groups, func(i, j int) bool {
			return strings.ToLower(groups[i].Name) > strings.ToLower(groups[j].Name)
		})
	default:
		// SortNone, SortNewest, SortOldest: groups have no creation time of
		// their own, so they keep insertion order for every regime but AZ/ZA.
	}
}

func sortInstancesByTitle(instances []*Instance, sortOrder SortOrder) {
	switch sortOrder {
	case SortAZ:
		sort.SliceStable(instances, func(i, j int) bool {
			return strings.ToLower(instances[i].Title) < strings.ToLower(instances[j].Title)
		})
	case SortZA:
		sort.SliceStable(instances, func(i, j int) bool {
			return strings.ToLower(instances[i].Title) > strings.ToLower(instances[j].Title)
		})
	case SortNewest:
		sort.SliceStable(instances, func(i, j int) bool {
			return instances[i].CreatedAt.After(instances[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(instances, func(i, j int) bool {
			return instances[i].CreatedAt.Before(instances[j].CreatedAt)
		})
	default:
		// SortNone: keep the caller's (loaded/insertion) order.
	}
}
