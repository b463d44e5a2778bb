package review

import (
	"log"
	"strings"
	"sync"

	"github.com/sprite-ai/revise/internal/model"
)

// Persister saves whole review states. Writes are last-write-wins at
// the whole-object granularity.
type Persister interface {
	Save(state *State) error
}

// Session owns the live review state for one comparison. Mutations are
// synchronous atomic swaps of the state pointer; readers always see a
// complete snapshot. Every mutation schedules a persist; a failed
// persist is logged and retried on the next mutation rather than
// surfaced to the user action that triggered it.
type Session struct {
	mu         sync.Mutex
	state      *State
	hunks      []*model.Hunk
	byID       map[string]*model.Hunk
	persister  Persister
	dirty      bool // last persist failed, retry on next mutation
	generation int

	// Staged-file auto-approval input for the trust classifier.
	stagedFiles       map[string]bool
	autoApproveStaged bool
}

// NewSession builds a session over a loaded (or fresh) state and the
// immutable hunk set of the comparison.
func NewSession(state *State, hunks []*model.Hunk, persister Persister) *Session {
	s := &Session{persister: persister}
	s.install(state, hunks)
	return s
}

func (s *Session) install(state *State, hunks []*model.Hunk) {
	s.state = state
	s.hunks = hunks
	s.byID = make(map[string]*model.Hunk, len(hunks))
	for _, h := range hunks {
		s.byID[h.ID] = h
	}
}

// State returns the current immutable snapshot.
func (s *Session) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Hunks returns the comparison's hunk set.
func (s *Session) Hunks() []*model.Hunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hunks
}

// Hunk returns the hunk for an id, or nil if the id is no longer part
// of the comparison.
func (s *Session) Hunk(id string) *model.Hunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id]
}

// Generation identifies the current comparison load. In-flight
// responses stamped with an older generation are dropped on merge.
func (s *Session) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// SetStagedFiles installs the staged-file set consulted when staged
// auto-approval is enabled.
func (s *Session) SetStagedFiles(files map[string]bool, autoApprove bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stagedFiles = files
	s.autoApproveStaged = autoApprove
}

// StagedFiles returns the staged-file set and whether staged hunks
// auto-approve.
func (s *Session) StagedFiles() (map[string]bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stagedFiles, s.autoApproveStaged
}

// Switch replaces the comparison wholesale: new state, new hunk set,
// next generation. Pending responses for the old comparison can no
// longer write into the new state.
func (s *Session) Switch(state *State, hunks []*model.Hunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.install(state, hunks)
	s.generation++
	s.dirty = false
}

// apply swaps in the state produced by fn and schedules a persist.
func (s *Session) apply(fn func(*State) *State) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.state)
	if next == s.state && !s.dirty {
		return next // no-op mutation, nothing to persist
	}
	s.state = next
	s.persistLocked()
	return next
}

func (s *Session) persistLocked() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.state); err != nil {
		// Never crash a user action on storage trouble; the next
		// mutation retries with the then-current state.
		log.Printf("review: persist failed (will retry): %v", err)
		s.dirty = true
		return
	}
	s.dirty = false
}

// Approve marks one hunk approved.
func (s *Session) Approve(id string, via model.ApprovalMethod) *State {
	return s.apply(func(st *State) *State { return st.Approve(id, via) })
}

// Reject marks one hunk rejected.
func (s *Session) Reject(id string) *State {
	return s.apply(func(st *State) *State { return st.Reject(id) })
}

// Unapprove returns an approved hunk to unset.
func (s *Session) Unapprove(id string) *State {
	return s.apply(func(st *State) *State { return st.Unapprove(id) })
}

// Unreject returns a rejected hunk to unset.
func (s *Session) Unreject(id string) *State {
	return s.apply(func(st *State) *State { return st.Unreject(id) })
}

// SaveForLater defers one hunk.
func (s *Session) SaveForLater(id string) *State {
	return s.apply(func(st *State) *State { return st.SaveForLater(id) })
}

// SetHunkNotes sets the note on one hunk.
func (s *Session) SetHunkNotes(id, text string) *State {
	return s.apply(func(st *State) *State { return st.SetHunkNotes(id, text) })
}

// SetNotes sets the review-wide notes.
func (s *Session) SetNotes(text string) *State {
	return s.apply(func(st *State) *State { return st.SetNotes(text) })
}

// AddTrustPattern adds a trust pattern.
func (s *Session) AddTrustPattern(id string) *State {
	return s.apply(func(st *State) *State { return st.AddTrustPattern(id) })
}

// RemoveTrustPattern removes a trust pattern.
func (s *Session) RemoveTrustPattern(id string) *State {
	return s.apply(func(st *State) *State { return st.RemoveTrustPattern(id) })
}

// AddAnnotation appends a line annotation.
func (s *Session) AddAnnotation(a model.Annotation) *State {
	return s.apply(func(st *State) *State { return st.AddAnnotation(a) })
}

// RemoveAnnotation removes a line annotation by id.
func (s *Session) RemoveAnnotation(id string) *State {
	return s.apply(func(st *State) *State { return st.RemoveAnnotation(id) })
}

// ApproveMany approves an explicit id list in one step.
func (s *Session) ApproveMany(ids []string, via model.ApprovalMethod) *State {
	return s.apply(func(st *State) *State { return st.ApproveMany(ids, via) })
}

// RejectMany rejects an explicit id list in one step.
func (s *Session) RejectMany(ids []string) *State {
	return s.apply(func(st *State) *State { return st.RejectMany(ids) })
}

// ApproveFile approves every hunk in a file. The id list is computed
// from the snapshot at invocation time; state is not re-read mid-batch.
func (s *Session) ApproveFile(path string, via model.ApprovalMethod) *State {
	return s.ApproveMany(s.idsWhere(func(h *model.Hunk) bool {
		return h.FilePath == path
	}), via)
}

// ApproveDirectory approves every hunk under a directory prefix.
func (s *Session) ApproveDirectory(dir string, via model.ApprovalMethod) *State {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	return s.ApproveMany(s.idsWhere(func(h *model.Hunk) bool {
		return strings.HasPrefix(h.FilePath, prefix)
	}), via)
}

// ApproveIdentical approves every hunk whose changed content matches
// the given hunk's, wherever it appears.
func (s *Session) ApproveIdentical(id string, via model.ApprovalMethod) *State {
	ref := s.Hunk(id)
	if ref == nil {
		return s.State()
	}
	return s.ApproveMany(s.idsWhere(func(h *model.Hunk) bool {
		return h.ContentHash == ref.ContentHash
	}), via)
}

func (s *Session) idsWhere(pred func(*model.Hunk) bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, h := range s.hunks {
		if pred(h) {
			ids = append(ids, h.ID)
		}
	}
	return ids
}

// applyGen is apply with a generation guard. The comparison and the
// merge happen under one lock acquisition, so a Switch can never slip
// between the check and the write.
func (s *Session) applyGen(generation int, fn func(*State) *State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}
	next := fn(s.state)
	if next == s.state && !s.dirty {
		return true
	}
	s.state = next
	s.persistLocked()
	return true
}

// MergeClassification merges a classification response into the state,
// per hunk id, if the response belongs to the current generation. A
// stale response from a previous comparison is dropped.
func (s *Session) MergeClassification(generation int, results map[string]Classification, fingerprint string) bool {
	return s.applyGen(generation, func(st *State) *State { return st.MergeLabels(results, fingerprint) })
}

// SetGroups replaces the group list if the response belongs to the
// current generation.
func (s *Session) SetGroups(generation int, groups []model.ReviewGroup, fingerprint string) bool {
	return s.applyGen(generation, func(st *State) *State { return st.SetGroups(groups, fingerprint) })
}

// SetNarrative replaces the narrative if the response belongs to the
// current generation.
func (s *Session) SetNarrative(generation int, text string, files []string, fingerprint string) bool {
	return s.applyGen(generation, func(st *State) *State { return st.SetNarrative(text, files, fingerprint) })
}

// Complete stamps the review as finished.
func (s *Session) Complete() *State {
	return s.apply(func(st *State) *State { return st.Complete() })
}
