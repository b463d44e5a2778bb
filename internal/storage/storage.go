// Package storage persists review state as JSON files under the
// repository's git common directory, so worktrees of the same repo
// share their reviews.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

// Store reads and writes review state files. Writes are whole-object
// and last-write-wins; there is no field-level merge.
type Store struct {
	root string
}

// New returns a store rooted at <gitCommonDir>/revise.
func New(gitCommonDir string) *Store {
	return &Store{root: filepath.Join(gitCommonDir, "revise")}
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) reviewsDir() string {
	return filepath.Join(s.root, "reviews")
}

func (s *Store) pathFor(cmp model.Comparison) string {
	return filepath.Join(s.reviewsDir(), sanitizeKey(cmp.Key())+".json")
}

// sanitizeKey maps a comparison key to a filename. Slashes appear in
// ref names ("feature/x..HEAD") and must not create directories.
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	return r.Replace(key)
}

// Load reads the state for a comparison. A missing file yields a fresh
// empty state, not an error.
func (s *Store) Load(cmp model.Comparison) (*review.State, error) {
	data, err := os.ReadFile(s.pathFor(cmp))
	if errors.Is(err, os.ErrNotExist) {
		return review.NewState(cmp), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading review state: %w", err)
	}

	var state review.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing review state: %w", err)
	}
	if state.Hunks == nil {
		state.Hunks = make(map[string]review.HunkState)
	}
	return &state, nil
}

// Save writes the whole state atomically: the JSON lands in a temp file
// first and is renamed into place, so a crash never leaves a truncated
// review on disk. Implements review.Persister.
func (s *Store) Save(state *review.State) error {
	if err := os.MkdirAll(s.reviewsDir(), 0o755); err != nil {
		return fmt.Errorf("creating review dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding review state: %w", err)
	}

	path := s.pathFor(state.Comparison)
	return atomicWrite(path, data)
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing review file: %w", err)
	}
	return nil
}

// Delete removes a stored review. Deleting a review that does not exist
// is not an error.
func (s *Store) Delete(cmp model.Comparison) error {
	err := os.Remove(s.pathFor(cmp))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ReviewInfo is one stored review as returned by List.
type ReviewInfo struct {
	Comparison  model.Comparison `json:"comparison"`
	CompletedAt string           `json:"completedAt,omitempty"`
	UpdatedAt   string           `json:"updatedAt"`
	Hunks       int              `json:"hunks"`
}

// List returns every stored review, newest first by update time.
// Unreadable files are skipped rather than failing the whole listing.
func (s *Store) List() ([]ReviewInfo, error) {
	entries, err := os.ReadDir(s.reviewsDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}

	var out []ReviewInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.reviewsDir(), e.Name()))
		if err != nil {
			continue
		}
		var state review.State
		if err := json.Unmarshal(data, &state); err != nil {
			continue
		}
		out = append(out, ReviewInfo{
			Comparison:  state.Comparison,
			CompletedAt: state.CompletedAt,
			UpdatedAt:   state.UpdatedAt,
			Hunks:       len(state.Hunks),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out, nil
}

// SetCurrent records the comparison being reviewed so a restarted
// session can resume it.
func (s *Store) SetCurrent(cmp model.Comparison) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}
	data, err := json.Marshal(cmp)
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(s.root, "current"), data)
}

// Current returns the recorded comparison, or ok=false when none was
// recorded.
func (s *Store) Current() (model.Comparison, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.root, "current"))
	if errors.Is(err, os.ErrNotExist) {
		return model.Comparison{}, false, nil
	}
	if err != nil {
		return model.Comparison{}, false, err
	}
	var cmp model.Comparison
	if err := json.Unmarshal(data, &cmp); err != nil {
		return model.Comparison{}, false, fmt.Errorf("parsing current comparison: %w", err)
	}
	return cmp, true, nil
}
