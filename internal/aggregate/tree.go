package aggregate

import (
	"sort"
	"strings"

	"github.com/sprite-ai/revise/internal/model"
)

// Node is one entry in the annotated file tree. Directories own their
// children by value; the tree is rebuilt whenever the hunk set or the
// review state changes.
type Node struct {
	// Name is the display name: a single path segment, or a compacted
	// "parent/child" chain.
	Name string `json:"name"`

	// Path is the full repository-relative path of this node.
	Path string `json:"path"`

	IsDir    bool   `json:"isDir"`
	Children []Node `json:"children,omitempty"`

	// Status aggregates bottom-up: a directory's counts are the sum of
	// its children's counts.
	Status HunkStatus `json:"status"`

	// Matches reports whether the node passes the changes-only filter:
	// a file with at least one hunk, or a directory with any matching
	// descendant. Computed once per build.
	Matches bool `json:"matches"`

	// CompactedPaths lists the concrete directory paths a compacted
	// chain node stands for, outermost first, so reveal-by-path lookups
	// still resolve after compaction. Empty for uncompacted nodes.
	CompactedPaths []string `json:"compactedPaths,omitempty"`
}

// BuildTree assembles the directory tree for the hunk set, annotates
// every node with aggregated status, and compacts single-child
// directory chains.
func BuildTree(hunks []*model.Hunk, c *Counter) []Node {
	byFile := c.ByFile(hunks)

	paths := make([]string, 0, len(byFile))
	for p := range byFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	roots := insertAll(paths, byFile)
	for i := range roots {
		aggregate(&roots[i])
	}
	return compactAll(roots)
}

func insertAll(paths []string, byFile map[string]HunkStatus) []Node {
	var roots []Node
	for _, p := range paths {
		roots = insert(roots, "", strings.Split(p, "/"), byFile[p])
	}
	return roots
}

func insert(siblings []Node, parentPath string, segments []string, st HunkStatus) []Node {
	name := segments[0]
	full := name
	if parentPath != "" {
		full = parentPath + "/" + name
	}

	idx := -1
	for i := range siblings {
		if siblings[i].Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		siblings = append(siblings, Node{Name: name, Path: full, IsDir: len(segments) > 1})
		idx = len(siblings) - 1
	}

	if len(segments) == 1 {
		siblings[idx].Status = st
		siblings[idx].Matches = st.Total > 0
		return siblings
	}
	siblings[idx].Children = insert(siblings[idx].Children, full, segments[1:], st)
	return siblings
}

// aggregate fills directory counts and filter matches bottom-up.
func aggregate(n *Node) {
	if !n.IsDir {
		return
	}
	for i := range n.Children {
		child := &n.Children[i]
		aggregate(child)
		n.Status.Add(child.Status)
		n.Matches = n.Matches || child.Matches
	}
}

// compactAll collapses every directory whose only child is another
// directory into one "parent/child" node, repeated until stable. The
// collapsed node records each original directory path it absorbed.
func compactAll(nodes []Node) []Node {
	for i := range nodes {
		nodes[i] = compact(nodes[i])
	}
	return nodes
}

func compact(n Node) Node {
	if !n.IsDir {
		return n
	}

	for len(n.Children) == 1 && n.Children[0].IsDir {
		child := n.Children[0]
		if len(n.CompactedPaths) == 0 {
			n.CompactedPaths = []string{n.Path}
		}
		n.CompactedPaths = append(n.CompactedPaths, child.Path)
		n.Name = n.Name + "/" + child.Name
		n.Path = child.Path
		n.Children = child.Children
	}

	for i := range n.Children {
		n.Children[i] = compact(n.Children[i])
	}
	return n
}

// FindByPath resolves a concrete path to a node in the compacted tree.
// Compacted chain nodes answer for every directory path they absorbed.
func FindByPath(nodes []Node, path string) *Node {
	for i := range nodes {
		n := &nodes[i]
		if n.Path == path {
			return n
		}
		for _, p := range n.CompactedPaths {
			if p == path {
				return n
			}
		}
		if n.IsDir && strings.HasPrefix(path, n.Path+"/") {
			if found := FindByPath(n.Children, path); found != nil {
				return found
			}
		}
	}
	return nil
}

// LeafPaths returns every file path under a node, in tree order.
func LeafPaths(n Node) []string {
	if !n.IsDir {
		return []string{n.Path}
	}
	var out []string
	for _, c := range n.Children {
		out = append(out, LeafPaths(c)...)
	}
	return out
}
