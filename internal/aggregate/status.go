// Package aggregate rolls per-hunk review status up into per-file,
// per-directory, per-symbol, and per-group counts.
package aggregate

import (
	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
	"github.com/sprite-ai/revise/internal/trust"
)

// savedForLaterIsReviewed fixes the policy for progress metrics:
// a deferred hunk still needs attention, so it does not count as
// reviewed anywhere. Applied uniformly by Reviewed() and Pending().
const savedForLaterIsReviewed = false

// HunkStatus is the count vector attached to every aggregation node.
// Invariant: Total == Pending+Approved+Trusted+Rejected+SavedForLater.
type HunkStatus struct {
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
	Trusted       int `json:"trusted"`
	Rejected      int `json:"rejected"`
	SavedForLater int `json:"savedForLater"`
	Total         int `json:"total"`
}

// Add accumulates another status vector into this one.
func (s *HunkStatus) Add(other HunkStatus) {
	s.Pending += other.Pending
	s.Approved += other.Approved
	s.Trusted += other.Trusted
	s.Rejected += other.Rejected
	s.SavedForLater += other.SavedForLater
	s.Total += other.Total
}

// Reviewed returns the number of hunks that no longer need attention.
func (s HunkStatus) Reviewed() int {
	n := s.Approved + s.Trusted + s.Rejected
	if savedForLaterIsReviewed {
		n += s.SavedForLater
	}
	return n
}

// Done reports whether nothing is left to review.
func (s HunkStatus) Done() bool {
	return s.Total > 0 && s.Reviewed() == s.Total
}

// Counter classifies hunks into status buckets. It wraps the trust
// classifier so every aggregation applies the same effective-status
// rules.
type Counter struct {
	State      *review.State
	Classifier *trust.Classifier
}

// NewCounter builds a counter over a state snapshot with a classifier
// derived from its trust list.
func NewCounter(state *review.State) *Counter {
	return &Counter{State: state, Classifier: trust.NewClassifier(state)}
}

// SessionCounter builds a counter over a session's current snapshot,
// carrying the session's staged-file set into the classifier.
func SessionCounter(s *review.Session) *Counter {
	c := NewCounter(s.State())
	staged, auto := s.StagedFiles()
	c.Classifier.StagedFiles = staged
	c.Classifier.AutoApproveStaged = auto
	return c
}

// Status buckets one hunk.
func (c *Counter) Status(h *model.Hunk) HunkStatus {
	hs := c.State.Hunk(h.ID)
	st := HunkStatus{Total: 1}

	switch hs.Status {
	case model.StatusApproved:
		st.Approved = 1
	case model.StatusRejected:
		st.Rejected = 1
	case model.StatusSavedForLater:
		st.SavedForLater = 1
	default:
		switch {
		case c.Classifier.IsHunkTrusted(hs):
			st.Trusted = 1
		case c.Classifier.IsHunkReviewed(h, hs):
			// Staged auto-approval: reviewed without a trust label.
			st.Approved = 1
		default:
			st.Pending = 1
		}
	}
	return st
}

// Sum aggregates a hunk list.
func (c *Counter) Sum(hunks []*model.Hunk) HunkStatus {
	var total HunkStatus
	for _, h := range hunks {
		st := c.Status(h)
		total.Add(st)
	}
	return total
}

// SumIDs aggregates by hunk id against an id index. Ids that no longer
// resolve (for example a group referencing hunks from before a refresh)
// contribute nothing to the counts.
func (c *Counter) SumIDs(ids []string, byID map[string]*model.Hunk) HunkStatus {
	var total HunkStatus
	for _, id := range ids {
		h, ok := byID[id]
		if !ok {
			continue
		}
		total.Add(c.Status(h))
	}
	return total
}

// ByFile returns the status vector per file path.
func (c *Counter) ByFile(hunks []*model.Hunk) map[string]HunkStatus {
	out := make(map[string]HunkStatus)
	for _, h := range hunks {
		st := out[h.FilePath]
		st.Add(c.Status(h))
		out[h.FilePath] = st
	}
	return out
}

// GroupStatus returns the status vector for each review group, index-
// aligned with the group list.
func (c *Counter) GroupStatus(groups []model.ReviewGroup, hunks []*model.Hunk) []HunkStatus {
	byID := IndexByID(hunks)
	out := make([]HunkStatus, len(groups))
	for i, g := range groups {
		out[i] = c.SumIDs(g.HunkIDs, byID)
	}
	return out
}

// IndexByID builds the id index used by id-based aggregation.
func IndexByID(hunks []*model.Hunk) map[string]*model.Hunk {
	byID := make(map[string]*model.Hunk, len(hunks))
	for _, h := range hunks {
		byID[h.ID] = h
	}
	return byID
}
