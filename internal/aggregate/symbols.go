package aggregate

import (
	"sort"

	"github.com/sprite-ai/revise/internal/model"
)

// SymbolEntry groups the hunks that touch one named code construct
// within a file, using the enclosing-construct heading git attaches to
// each hunk. Hunks without a heading collect under the empty symbol,
// rendered as file-level changes.
type SymbolEntry struct {
	FilePath string     `json:"filePath"`
	Symbol   string     `json:"symbol"`
	HunkIDs  []string   `json:"hunkIds"`
	Status   HunkStatus `json:"status"`
}

// SymbolList builds the per-symbol view for one file, ordered by first
// appearance in the diff.
func SymbolList(hunks []*model.Hunk, filePath string, c *Counter) []SymbolEntry {
	var order []string
	bySymbol := make(map[string]*SymbolEntry)

	for _, h := range hunks {
		if h.FilePath != filePath {
			continue
		}
		e, ok := bySymbol[h.Section]
		if !ok {
			e = &SymbolEntry{FilePath: filePath, Symbol: h.Section}
			bySymbol[h.Section] = e
			order = append(order, h.Section)
		}
		e.HunkIDs = append(e.HunkIDs, h.ID)
		e.Status.Add(c.Status(h))
	}

	out := make([]SymbolEntry, 0, len(order))
	for _, sym := range order {
		out = append(out, *bySymbol[sym])
	}
	return out
}

// AllSymbols builds the symbol view across every file, files in lexical
// order, symbols in diff order within each file.
func AllSymbols(hunks []*model.Hunk, c *Counter) []SymbolEntry {
	seen := make(map[string]bool)
	var files []string
	for _, h := range hunks {
		if !seen[h.FilePath] {
			seen[h.FilePath] = true
			files = append(files, h.FilePath)
		}
	}
	sort.Strings(files)

	var out []SymbolEntry
	for _, f := range files {
		out = append(out, SymbolList(hunks, f, c)...)
	}
	return out
}
