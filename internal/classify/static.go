// Package classify assigns classification labels to hunks. Static
// rules handle the mechanical cases without I/O; everything else goes
// to the remote classification service. Rules are conservative: when
// uncertain they return nothing and leave the hunk unclassified.
package classify

import (
	"strings"

	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

// Rule inspects a hunk and returns a classification, or ok=false when
// it does not apply.
type Rule func(h *model.Hunk) (review.Classification, bool)

// AllRules returns the ordered rule chain, cheapest checks first. The
// first matching rule wins.
func AllRules() []Rule {
	return []Rule{
		moveRule,
		lockfileRule,
		emptyFileRule,
		whitespaceRule,
		lineLengthRule,
		styleRule,
		commentsRule,
		importsRule,
	}
}

// Static classifies hunks using the static rule chain. The result maps
// hunk id to classification and contains only confidently classified
// hunks.
func Static(hunks []*model.Hunk) map[string]review.Classification {
	results := make(map[string]review.Classification)
	rules := AllRules()

	for _, h := range hunks {
		for _, rule := range rules {
			if c, ok := rule(h); ok {
				results[h.ID] = c
				break
			}
		}
	}
	return results
}

// --- Move pairs ---

func moveRule(h *model.Hunk) (review.Classification, bool) {
	if h.MovePairID == "" {
		return review.Classification{}, false
	}
	return review.Classification{
		Label:     []string{"move:code"},
		Reasoning: "Identical content moved between files",
	}, true
}

// --- Lockfiles (path-based) ---

var lockfileNames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.lock":        true,
	"Gemfile.lock":      true,
	"poetry.lock":       true,
	"go.sum":            true,
	"composer.lock":     true,
	"Pipfile.lock":      true,
	"bun.lockb":         true,
	"bun.lock":          true,
	"flake.lock":        true,
	"packages.lock.json": true,
	"pdm.lock":          true,
	"uv.lock":           true,
}

func lockfileRule(h *model.Hunk) (review.Classification, bool) {
	name := h.FilePath
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	if !lockfileNames[name] {
		return review.Classification{}, false
	}
	return review.Classification{
		Label:     []string{"generated:lockfile"},
		Reasoning: "File is a package manager lockfile",
	}, true
}

// --- New empty files ---

func emptyFileRule(h *model.Hunk) (review.Classification, bool) {
	if h.OldCount != 0 {
		return review.Classification{}, false
	}
	for _, l := range h.Lines {
		if l.Kind != model.LineAdded || strings.TrimSpace(l.Content) != "" {
			return review.Classification{}, false
		}
	}
	return review.Classification{
		Label:     []string{"file:added-empty"},
		Reasoning: "New empty file (no content or whitespace only)",
	}, true
}

// --- Whitespace-only changes ---

func whitespaceRule(h *model.Hunk) (review.Classification, bool) {
	changed := h.Changed()
	if len(changed) == 0 {
		return review.Classification{}, false
	}
	for _, l := range changed {
		if strings.TrimSpace(l.Content) != "" {
			return review.Classification{}, false
		}
	}
	return review.Classification{
		Label:     []string{"formatting:whitespace"},
		Reasoning: "All changed lines are empty or whitespace-only",
	}, true
}

// --- Line rewrapping ---

func lineLengthRule(h *model.Hunk) (review.Classification, bool) {
	if !h.HasAdded() || !h.HasRemoved() {
		return review.Classification{}, false
	}

	var removed, added []string
	for _, l := range h.Changed() {
		switch l.Kind {
		case model.LineRemoved:
			removed = append(removed, l.Content)
		case model.LineAdded:
			added = append(added, l.Content)
		}
	}

	rn := collapseWhitespace(strings.Join(removed, " "))
	an := collapseWhitespace(strings.Join(added, " "))
	if rn == "" || rn != an {
		return review.Classification{}, false
	}
	return review.Classification{
		Label:     []string{"formatting:line-length"},
		Reasoning: "Code wrapped or unwrapped across lines (identical content after joining)",
	}, true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// --- Punctuation-only style changes ---

func styleRule(h *model.Hunk) (review.Classification, bool) {
	if !h.HasAdded() || !h.HasRemoved() {
		return review.Classification{}, false
	}

	var removed, added []string
	for _, l := range h.Changed() {
		switch l.Kind {
		case model.LineRemoved:
			removed = append(removed, l.Content)
		case model.LineAdded:
			added = append(added, l.Content)
		}
	}

	// Pair lines positionally; a different count means this is more
	// than a style sweep.
	if len(removed) != len(added) {
		return review.Classification{}, false
	}
	for i := range removed {
		rn := normalizeStyle(removed[i])
		if rn == "" || rn != normalizeStyle(added[i]) {
			return review.Classification{}, false
		}
	}
	return review.Classification{
		Label:     []string{"formatting:style"},
		Reasoning: "Only punctuation changed (semicolons, quote style, or trailing commas)",
	}, true
}

// normalizeStyle strips trailing semicolons and commas, unifies quote
// style, and collapses whitespace.
func normalizeStyle(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimRight(s, ";")
	s = strings.TrimRight(s, ",")
	s = strings.ReplaceAll(s, "'", `"`)
	return collapseWhitespace(s)
}

// --- Comment-only changes ---

// commentPrefixes maps file extension to line-comment markers.
func commentPrefixes(ext string) []string {
	switch ext {
	case "js", "jsx", "ts", "tsx", "mjs", "cjs", "rs", "go", "java", "kt",
		"scala", "swift", "c", "cc", "cpp", "h", "hpp", "cs", "zig", "dart", "css":
		return []string{"//"}
	case "py", "rb", "sh", "bash", "zsh", "yml", "yaml", "toml", "pl", "r",
		"jl", "ex", "exs", "nim", "mk", "cmake", "tf", "hcl":
		return []string{"#"}
	case "lua", "hs", "sql":
		return []string{"--"}
	case "lisp", "clj", "cljs", "edn", "scm", "rkt":
		return []string{";"}
	case "erl", "hrl":
		return []string{"%"}
	default:
		return nil
	}
}

// blockCommentDelims maps file extension to block-comment delimiters.
func blockCommentDelims(ext string) (open, close string, ok bool) {
	switch ext {
	case "js", "jsx", "ts", "tsx", "mjs", "cjs", "rs", "go", "java", "kt",
		"scala", "swift", "c", "cc", "cpp", "h", "hpp", "cs", "zig", "dart", "css":
		return "/*", "*/", true
	case "html", "xml", "svg":
		return "<!--", "-->", true
	default:
		return "", "", false
	}
}

func fileExt(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return ""
	}
	return path[idx+1:]
}

func commentsRule(h *model.Hunk) (review.Classification, bool) {
	ext := fileExt(h.FilePath)
	prefixes := commentPrefixes(ext)
	open, close, hasBlock := blockCommentDelims(ext)
	if prefixes == nil && !hasBlock {
		return review.Classification{}, false
	}

	changed := h.Changed()
	if len(changed) == 0 {
		return review.Classification{}, false
	}

	// Track block-comment state per side: added and removed lines form
	// independent sequences.
	inBlockAdded := false
	inBlockRemoved := false

	for _, l := range changed {
		trimmed := strings.TrimSpace(l.Content)
		if trimmed == "" {
			continue // blank lines between comments are fine
		}

		if isLineComment(trimmed, prefixes) {
			continue
		}

		if hasBlock {
			inBlock := &inBlockAdded
			if l.Kind == model.LineRemoved {
				inBlock = &inBlockRemoved
			}
			isComment, next := blockCommentStep(trimmed, open, close, *inBlock)
			*inBlock = next
			if isComment {
				continue
			}
		}

		return review.Classification{}, false
	}

	label := ""
	switch {
	case h.HasAdded() && h.HasRemoved():
		label = "comments:modified"
	case h.HasAdded():
		label = "comments:added"
	case h.HasRemoved():
		label = "comments:removed"
	default:
		return review.Classification{}, false
	}

	return review.Classification{
		Label:     []string{label},
		Reasoning: "All changed lines are comments",
	}, true
}

func isLineComment(trimmed string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// blockCommentStep advances the in-block tracker over one non-blank
// line, reporting whether the line is entirely comment.
func blockCommentStep(trimmed, open, close string, inBlock bool) (isComment, nextInBlock bool) {
	if inBlock {
		if idx := strings.Index(trimmed, close); idx >= 0 {
			rest := trimmed[idx+len(close):]
			return true, strings.Contains(rest, open)
		}
		return true, true
	}

	if strings.HasPrefix(trimmed, open) {
		if idx := strings.Index(trimmed, close); idx >= 0 {
			rest := trimmed[idx+len(close):]
			return true, strings.Contains(rest, open)
		}
		return true, true
	}

	return false, false
}

// --- Import-only changes ---

// importConfig maps file extension to import statement prefixes and the
// bracket that opens a multi-line import.
func importConfig(ext string) (prefixes []string, bracket byte, ok bool) {
	switch ext {
	case "go":
		return []string{"import ", "import("}, '(', true
	case "py":
		return []string{"import ", "from "}, '(', true
	case "js", "jsx", "ts", "tsx", "mjs", "cjs":
		return []string{"import ", "import{", "const ", "require("}, '{', true
	case "rs":
		return []string{"use ", "extern crate "}, '{', true
	case "java", "kt", "scala":
		return []string{"import "}, 0, true
	case "rb":
		return []string{"require ", "require_relative "}, 0, true
	default:
		return nil, 0, false
	}
}

func importsRule(h *model.Hunk) (review.Classification, bool) {
	prefixes, bracket, ok := importConfig(fileExt(h.FilePath))
	if !ok {
		return review.Classification{}, false
	}

	changed := h.Changed()
	if len(changed) == 0 {
		return review.Classification{}, false
	}
	if !allImportLines(changed, prefixes, bracket) {
		return review.Classification{}, false
	}

	hasAdded := h.HasAdded()
	hasRemoved := h.HasRemoved()

	switch {
	case hasAdded && hasRemoved:
		if isImportReorder(changed, prefixes) {
			return review.Classification{
				Label:     []string{"imports:reordered"},
				Reasoning: "Import statements were reordered (same set of imports)",
			}, true
		}
		return review.Classification{
			Label:     []string{"imports:modified"},
			Reasoning: "All changed lines are import statements (modified)",
		}, true
	case hasAdded:
		return review.Classification{
			Label:     []string{"imports:added"},
			Reasoning: "All changed lines are import statements (additions only)",
		}, true
	case hasRemoved:
		return review.Classification{
			Label:     []string{"imports:removed"},
			Reasoning: "All changed lines are import statements (removals only)",
		}, true
	}
	return review.Classification{}, false
}

// allImportLines verifies every changed line is an import statement or
// a continuation of a multi-line import block.
func allImportLines(changed []model.Line, prefixes []string, bracket byte) bool {
	depth := 0
	for _, l := range changed {
		trimmed := strings.TrimSpace(l.Content)
		if trimmed == "" {
			continue
		}

		startsImport := false
		for _, p := range prefixes {
			if strings.HasPrefix(trimmed, p) {
				startsImport = true
				break
			}
		}

		switch {
		case startsImport:
			if bracket != 0 {
				depth += strings.Count(trimmed, string(bracket))
				depth -= strings.Count(trimmed, string(closingBracket(bracket)))
			}
		case depth > 0:
			if !isImportContinuation(trimmed, bracket) {
				return false
			}
			depth += strings.Count(trimmed, string(bracket))
			depth -= strings.Count(trimmed, string(closingBracket(bracket)))
		default:
			return false
		}
	}
	return true
}

func closingBracket(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '{':
		return '}'
	default:
		return 0
	}
}

// isImportContinuation accepts closing brackets, "} from" endings, and
// identifier or quoted-string lines inside a multi-line import.
func isImportContinuation(trimmed string, bracket byte) bool {
	close := closingBracket(bracket)
	switch trimmed {
	case string(close), string(close) + ";", string(close) + ",":
		return true
	}
	if strings.HasPrefix(trimmed, string(close)+" from ") ||
		strings.HasPrefix(trimmed, "} from ") {
		return true
	}

	c := trimmed[0]
	return c == '_' || c == '"' || c == '\'' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isImportReorder reports whether the added and removed import lines
// are the same set in a different order.
func isImportReorder(changed []model.Line, prefixes []string) bool {
	normalize := func(kind model.LineKind) map[string]int {
		set := make(map[string]int)
		for _, l := range changed {
			if l.Kind != kind {
				continue
			}
			trimmed := strings.TrimSpace(l.Content)
			if trimmed == "" {
				continue
			}
			for _, p := range prefixes {
				if strings.HasPrefix(trimmed, p) {
					set[collapseWhitespace(trimmed)]++
					break
				}
			}
		}
		return set
	}

	added := normalize(model.LineAdded)
	removed := normalize(model.LineRemoved)
	if len(added) == 0 || len(removed) == 0 || len(added) != len(removed) {
		return false
	}
	for line, n := range added {
		if removed[line] != n {
			return false
		}
	}
	return true
}
