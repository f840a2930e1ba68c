// Package search ranks the flattened session list against an operator-typed
// query string.
package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/nlaurent/deckops/internal/session"
)

// candidateSource adapts the flattened Item list to fuzzy.Source.
type candidateSource struct {
	texts []string
}

func (c candidateSource) String(i int) string { return c.texts[i] }
func (c candidateSource) Len() int            { return len(c.texts) }

// candidateText returns the text an Item is matched against: title+path for
// a Session, name for a Group.
func candidateText(item session.Item, instances map[string]*session.Instance) string {
	if item.Kind == session.ItemGroup {
		return item.GroupName
	}
	inst, ok := instances[item.SessionID]
	if !ok {
		return ""
	}
	return inst.Title + " " + inst.ProjectPath
}

// Rank scores items against query and returns indices into items, best match
// first. An empty query yields an empty result. Exact-substring matches
// outrank subsequence-only fuzzy matches; ties break by ascending index.
func Rank(items []session.Item, instances map[string]*session.Instance, query string) []int {
	if query == "" {
		return nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = candidateText(item, instances)
	}

	lowerQuery := strings.ToLower(query)
	matches := fuzzy.FindFrom(query, candidateSource{texts: texts})

	type scored struct {
		index int
		score int
		exact bool
	}

	results := make([]scored, 0, len(matches))
	for _, m := range matches {
		results = append(results, scored{
			index: m.Index,
			score: m.Score,
			exact: strings.Contains(strings.ToLower(texts[m.Index]), lowerQuery),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].exact != results[j].exact {
			return results[i].exact // exact matches sort first
		}
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].index < results[j].index
	})

	indices := make([]int, len(results))
	for i, r := range results {
		indices[i] = r.index
	}
	return indices
}
