// Package review holds the mutable review state for a comparison and
// the mutation API every surface goes through.
package review

import (
	"time"

	"github.com/sprite-ai/revise/internal/model"
)

// HunkState is the per-hunk slice of the review state. The zero value
// is a valid "never touched" state.
type HunkState struct {
	Status model.Status `json:"status,omitempty"`

	// Label holds classification tags ("imports:added"). Empty means
	// unclassified.
	Label []string `json:"label,omitempty"`

	// Reasoning is the classifier's explanation for the labels.
	Reasoning string `json:"reasoning,omitempty"`

	// ApprovedVia records how an approved hunk was approved; it is
	// meaningless unless Status is approved.
	ApprovedVia model.ApprovalMethod `json:"approvedVia,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Empty reports whether the state carries no information worth persisting.
func (hs HunkState) Empty() bool {
	return hs.Status == model.StatusUnset && len(hs.Label) == 0 &&
		hs.Reasoning == "" && hs.Notes == ""
}

// GuideData is the derived guided-review artifact set, each entry
// stamped with the fingerprint of the hunk set it was computed from.
type GuideData struct {
	Groups            []model.ReviewGroup `json:"groups,omitempty"`
	GroupsFingerprint string              `json:"groupsFingerprint,omitempty"`

	Narrative            string   `json:"narrative,omitempty"`
	NarrativeFingerprint string   `json:"narrativeFingerprint,omitempty"`
	NarrativeFiles       []string `json:"narrativeFiles,omitempty"`

	// ClassifyFingerprint stamps the hunk set the labels were computed
	// from; labels themselves live on each HunkState.
	ClassifyFingerprint string `json:"classifyFingerprint,omitempty"`
}

// State is the aggregate review state for one comparison. Values are
// treated as immutable: every mutation returns a fresh copy, so a late
// consumer of an old snapshot never observes a half-applied change.
type State struct {
	Comparison  model.Comparison     `json:"comparison"`
	Hunks       map[string]HunkState `json:"hunks"`
	TrustList   []string             `json:"trustList"`
	Notes       string               `json:"notes"`
	Annotations []model.Annotation   `json:"annotations,omitempty"`
	Guide       GuideData            `json:"guide,omitzero"`
	CompletedAt string               `json:"completedAt,omitempty"`
	CreatedAt   string               `json:"createdAt"`
	UpdatedAt   string               `json:"updatedAt"`
}

// NewState returns an empty state for a comparison.
func NewState(cmp model.Comparison) *State {
	now := nowISO()
	return &State{
		Comparison: cmp,
		Hunks:      make(map[string]HunkState),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// clone copies the state shallowly except for the containers a
// mutation may touch.
func (s *State) clone() *State {
	next := *s
	next.Hunks = make(map[string]HunkState, len(s.Hunks))
	for id, hs := range s.Hunks {
		next.Hunks[id] = hs
	}
	next.TrustList = append([]string(nil), s.TrustList...)
	next.Annotations = append([]model.Annotation(nil), s.Annotations...)
	next.UpdatedAt = nowISO()
	return &next
}

// Hunk returns the state for a hunk id; missing ids yield the zero state.
func (s *State) Hunk(id string) HunkState {
	return s.Hunks[id]
}

func (s *State) setStatus(id string, status model.Status, via model.ApprovalMethod) *State {
	next := s.clone()
	hs := next.Hunks[id]
	hs.Status = status
	hs.ApprovedVia = via
	next.Hunks[id] = hs
	return next
}

// Approve marks a hunk approved. Setting approved clears any prior
// rejected or saved-for-later status: the variants are mutually
// exclusive by construction.
func (s *State) Approve(id string, via model.ApprovalMethod) *State {
	return s.setStatus(id, model.StatusApproved, via)
}

// Reject marks a hunk rejected, clearing any approval.
func (s *State) Reject(id string) *State {
	return s.setStatus(id, model.StatusRejected, model.ApprovalNone)
}

// SaveForLater defers a hunk, clearing any approval or rejection.
func (s *State) SaveForLater(id string) *State {
	return s.setStatus(id, model.StatusSavedForLater, model.ApprovalNone)
}

// Unapprove returns an approved hunk to unset. The trust classifier may
// re-derive a trusted status on the next read.
func (s *State) Unapprove(id string) *State {
	if s.Hunks[id].Status != model.StatusApproved {
		return s
	}
	return s.setStatus(id, model.StatusUnset, model.ApprovalNone)
}

// Unreject returns a rejected hunk to unset.
func (s *State) Unreject(id string) *State {
	if s.Hunks[id].Status != model.StatusRejected {
		return s
	}
	return s.setStatus(id, model.StatusUnset, model.ApprovalNone)
}

// ApproveMany approves every id in the list. The list is fixed at call
// time; the whole batch lands in a single new state.
func (s *State) ApproveMany(ids []string, via model.ApprovalMethod) *State {
	next := s.clone()
	for _, id := range ids {
		hs := next.Hunks[id]
		hs.Status = model.StatusApproved
		hs.ApprovedVia = via
		next.Hunks[id] = hs
	}
	return next
}

// RejectMany rejects every id in the list in a single new state.
func (s *State) RejectMany(ids []string) *State {
	next := s.clone()
	for _, id := range ids {
		hs := next.Hunks[id]
		hs.Status = model.StatusRejected
		hs.ApprovedVia = model.ApprovalNone
		next.Hunks[id] = hs
	}
	return next
}

// SetHunkNotes sets the free-text note on one hunk.
func (s *State) SetHunkNotes(id, text string) *State {
	next := s.clone()
	hs := next.Hunks[id]
	hs.Notes = text
	next.Hunks[id] = hs
	return next
}

// SetNotes sets the review-wide notes.
func (s *State) SetNotes(text string) *State {
	next := s.clone()
	next.Notes = text
	return next
}

// AddTrustPattern adds a pattern id to the trust list; duplicates are
// ignored.
func (s *State) AddTrustPattern(id string) *State {
	for _, p := range s.TrustList {
		if p == id {
			return s
		}
	}
	next := s.clone()
	next.TrustList = append(next.TrustList, id)
	return next
}

// RemoveTrustPattern removes a pattern id from the trust list.
func (s *State) RemoveTrustPattern(id string) *State {
	next := s.clone()
	out := next.TrustList[:0]
	for _, p := range next.TrustList {
		if p != id {
			out = append(out, p)
		}
	}
	next.TrustList = out
	return next
}

// AddAnnotation appends a line annotation.
func (s *State) AddAnnotation(a model.Annotation) *State {
	next := s.clone()
	next.Annotations = append(next.Annotations, a)
	return next
}

// RemoveAnnotation removes the annotation with the given id.
func (s *State) RemoveAnnotation(id string) *State {
	next := s.clone()
	out := next.Annotations[:0]
	for _, a := range next.Annotations {
		if a.ID != id {
			out = append(out, a)
		}
	}
	next.Annotations = out
	return next
}

// MergeLabels merges classification results per hunk id. Only labels
// and reasoning are written; explicit statuses set while the request
// was in flight always survive. The fingerprint stamps the hunk set the
// labels were computed from.
func (s *State) MergeLabels(results map[string]Classification, fingerprint string) *State {
	next := s.clone()
	for id, c := range results {
		hs := next.Hunks[id]
		hs.Label = append([]string(nil), c.Label...)
		hs.Reasoning = c.Reasoning
		next.Hunks[id] = hs
	}
	next.Guide.ClassifyFingerprint = fingerprint
	return next
}

// Classification is one classifier result for a hunk.
type Classification struct {
	Label     []string `json:"label"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// SetGroups atomically replaces the guided-review group list.
func (s *State) SetGroups(groups []model.ReviewGroup, fingerprint string) *State {
	next := s.clone()
	next.Guide.Groups = append([]model.ReviewGroup(nil), groups...)
	next.Guide.GroupsFingerprint = fingerprint
	return next
}

// SetNarrative replaces the narrative text and the file paths it
// references.
func (s *State) SetNarrative(text string, files []string, fingerprint string) *State {
	next := s.clone()
	next.Guide.Narrative = text
	next.Guide.NarrativeFiles = append([]string(nil), files...)
	next.Guide.NarrativeFingerprint = fingerprint
	return next
}

// Complete stamps the review as finished.
func (s *State) Complete() *State {
	next := s.clone()
	next.CompletedAt = nowISO()
	return next
}
