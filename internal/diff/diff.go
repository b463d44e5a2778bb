// Package diff parses git diffs into the hunks the review engine
// tracks. Hunk identifiers are content-addressed so they stay stable
// across reloads of the same comparison.
package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/sprite-ai/revise/internal/model"
)

// File represents a single file in a diff with its parsed hunks.
type File struct {
	OldName   string
	NewName   string
	IsNew     bool
	IsDeleted bool
	IsRenamed bool
	IsBinary  bool
	Hunks     []*model.Hunk
}

// Name returns the display name for the file.
func (f *File) Name() string {
	if f.IsRenamed {
		return fmt.Sprintf("%s → %s", f.OldName, f.NewName)
	}
	if f.IsNew {
		return f.NewName
	}
	if f.IsDeleted {
		return f.OldName
	}
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

// Path returns the canonical path used for review bookkeeping: the new
// path when it exists, otherwise the old one (deleted files).
func (f *File) Path() string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

// DiffSet holds the parsed diff for all files in a comparison.
type DiffSet struct {
	Files []*File
	Raw   string // the raw unified diff text
}

// Hunks returns every hunk across all files, in file order.
func (ds *DiffSet) Hunks() []*model.Hunk {
	var all []*model.Hunk
	for _, f := range ds.Files {
		all = append(all, f.Hunks...)
	}
	return all
}

// HunkByID returns the hunk with the given id, or nil.
func (ds *DiffSet) HunkByID(id string) *model.Hunk {
	for _, f := range ds.Files {
		for _, h := range f.Hunks {
			if h.ID == id {
				return h
			}
		}
	}
	return nil
}

// Stats returns aggregate statistics.
func (ds *DiffSet) Stats() (files, added, deleted int) {
	files = len(ds.Files)
	for _, f := range ds.Files {
		for _, h := range f.Hunks {
			for _, l := range h.Lines {
				switch l.Kind {
				case model.LineAdded:
					added++
				case model.LineRemoved:
					deleted++
				}
			}
		}
	}
	return
}

// Parse reads a unified diff string and returns a DiffSet. Paths
// matching the skip filters (build artifacts, vendored trees) are
// dropped. Move pairs are detected across the whole set.
func Parse(raw string) (*DiffSet, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	ds := &DiffSet{Raw: raw}
	for _, f := range parsed {
		df := &File{
			OldName:   f.OldName,
			NewName:   f.NewName,
			IsNew:     f.IsNew,
			IsDeleted: f.IsDelete,
			IsRenamed: f.IsRename,
			IsBinary:  f.IsBinary,
		}
		if ShouldSkip(df.Path()) {
			continue
		}

		for _, frag := range f.TextFragments {
			df.Hunks = append(df.Hunks, buildHunk(df.Path(), frag))
		}

		ds.Files = append(ds.Files, df)
	}

	DetectMovePairs(ds.Hunks())

	return ds, nil
}

// buildHunk converts a gitdiff fragment into a model.Hunk with a
// content-addressed id.
func buildHunk(path string, frag *gitdiff.TextFragment) *model.Hunk {
	h := &model.Hunk{
		FilePath: path,
		OldStart: int(frag.OldPosition),
		OldCount: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewCount: int(frag.NewLines),
		Section:  strings.TrimSpace(frag.Comment),
	}

	oldLine := h.OldStart
	newLine := h.NewStart
	for _, line := range frag.Lines {
		content := strings.TrimSuffix(line.Line, "\n")
		switch line.Op {
		case gitdiff.OpAdd:
			h.Lines = append(h.Lines, model.Line{Kind: model.LineAdded, Content: content, New: newLine})
			newLine++
		case gitdiff.OpDelete:
			h.Lines = append(h.Lines, model.Line{Kind: model.LineRemoved, Content: content, Old: oldLine})
			oldLine++
		default:
			h.Lines = append(h.Lines, model.Line{Kind: model.LineContext, Content: content, Old: oldLine, New: newLine})
			oldLine++
			newLine++
		}
	}

	h.ContentHash = changedContentHash(h)
	h.ID = HunkID(path, h)
	return h
}

// HunkID derives the stable identifier for a hunk: the file path plus
// a short hash of the changed lines. Line-number drift from unrelated
// edits does not change the id; editing the hunk's content does.
func HunkID(path string, h *model.Hunk) string {
	sum := sha256.New()
	sum.Write([]byte(path))
	sum.Write([]byte{0})
	for _, l := range h.Changed() {
		sum.Write([]byte(l.Kind.String()))
		sum.Write([]byte(l.Content))
		sum.Write([]byte{'\n'})
	}
	return path + ":" + hex.EncodeToString(sum.Sum(nil)[:8])
}

// changedContentHash hashes only the changed line contents, without the
// file path or line kinds, so a deletion and its re-insertion elsewhere
// produce the same hash.
func changedContentHash(h *model.Hunk) string {
	sum := sha256.New()
	for _, l := range h.Changed() {
		sum.Write([]byte(l.Content))
		sum.Write([]byte{'\n'})
	}
	return hex.EncodeToString(sum.Sum(nil)[:8])
}

// DetectMovePairs links deletion-only hunks to addition-only hunks with
// identical changed content in a different file. Both sides of a pair
// get the other's id in MovePairID.
func DetectMovePairs(hunks []*model.Hunk) {
	deletions := make(map[string][]*model.Hunk)
	additions := make(map[string][]*model.Hunk)

	for _, h := range hunks {
		switch {
		case h.HasRemoved() && !h.HasAdded():
			deletions[h.ContentHash] = append(deletions[h.ContentHash], h)
		case h.HasAdded() && !h.HasRemoved():
			additions[h.ContentHash] = append(additions[h.ContentHash], h)
		}
	}

	for hash, dels := range deletions {
		adds, ok := additions[hash]
		if !ok {
			continue
		}
		for _, del := range dels {
			for _, add := range adds {
				if del.FilePath == add.FilePath {
					continue
				}
				del.MovePairID = add.ID
				add.MovePairID = del.ID
			}
		}
	}
}

// GitDiff runs `git diff` with the given arguments and returns the raw output.
func GitDiff(repoDir string, args ...string) (string, error) {
	cmdArgs := append([]string{"diff"}, args...)
	cmd := exec.Command("git", cmdArgs...)
	cmd.Dir = repoDir
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}

	return string(out), nil
}

// GitDiffComparison returns the raw diff for a comparison. Working-tree
// comparisons diff the base ref against the working tree; otherwise the
// base..head range is used.
func GitDiffComparison(repoDir string, cmp model.Comparison, contextLines int) (string, error) {
	ctx := fmt.Sprintf("-U%d", contextLines)
	if cmp.WorkingTree {
		return GitDiff(repoDir, ctx, cmp.Base)
	}
	return GitDiff(repoDir, ctx, cmp.Base+".."+cmp.Head)
}

// StagedFiles returns the set of paths currently staged for commit.
func StagedFiles(repoDir string) (map[string]bool, error) {
	cmd := exec.Command("git", "diff", "--name-only", "--cached")
	cmd.Dir = repoDir

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff --cached: %w", err)
	}

	staged := make(map[string]bool)
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			staged[line] = true
		}
	}
	return staged, nil
}

// GitRepoRoot returns the top-level directory of the enclosing repo.
func GitRepoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GitCommonDir returns the repo's common git directory, shared across
// worktrees, where review state is stored.
func GitCommonDir(repoDir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--path-format=absolute", "--git-common-dir")
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
