package aggregate

import (
	"sort"

	"github.com/sprite-ai/revise/internal/model"
)

// FileEntry is one file in the flat list view.
type FileEntry struct {
	Path   string     `json:"path"`
	Status HunkStatus `json:"status"`
}

// SortOrder selects the flat list ordering.
type SortOrder int

const (
	// SortLexical orders by path.
	SortLexical SortOrder = iota
	// SortPendingDesc puts the files with the most pending hunks first,
	// ties broken by path. Used for "needs review" ranking.
	SortPendingDesc
)

// FlatList returns every file with at least one hunk, independent of
// tree position.
func FlatList(hunks []*model.Hunk, c *Counter, order SortOrder) []FileEntry {
	byFile := c.ByFile(hunks)

	out := make([]FileEntry, 0, len(byFile))
	for path, st := range byFile {
		out = append(out, FileEntry{Path: path, Status: st})
	}

	switch order {
	case SortPendingDesc:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Status.Pending != out[j].Status.Pending {
				return out[i].Status.Pending > out[j].Status.Pending
			}
			return out[i].Path < out[j].Path
		})
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	}
	return out
}
