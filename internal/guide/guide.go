// Package guide drives guided review: an ordered list of review groups
// with an active-group cursor that advances as groups become fully
// reviewed.
package guide

import (
	"sync"
	"time"

	"github.com/sprite-ai/revise/internal/aggregate"
	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

// advanceDelay debounces auto-advance against approve animations: the
// cursor moves only after the active group has stayed fully reviewed
// this long.
const advanceDelay = 600 * time.Millisecond

// Guide tracks the active-group cursor over the group list stored in
// review state. The group list itself is owned by the state; the guide
// only reads it.
type Guide struct {
	mu     sync.Mutex
	active int
	timer  *time.Timer

	// statuses is the most recently observed per-group status vector.
	// The advance target is recomputed from it when the timer fires, so
	// a group reviewed during the debounce window is never landed on.
	statuses []aggregate.HunkStatus

	// onAdvance is called with the new active index after an
	// auto-advance fires.
	onAdvance func(int)

	delay time.Duration
}

// New returns a guide with the cursor on the first group.
func New(onAdvance func(int)) *Guide {
	return &Guide{onAdvance: onAdvance, delay: advanceDelay}
}

// Active returns the current cursor position.
func (g *Guide) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// SetActive moves the cursor explicitly and cancels any scheduled
// advance.
func (g *Guide) SetActive(i int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
	g.active = i
}

// Reset repositions the cursor after the group list is replaced: the
// first group with pending work, or 0 when everything is reviewed.
func (g *Guide) Reset(statuses []aggregate.HunkStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
	g.active = 0
	for i, st := range statuses {
		if st.Pending > 0 {
			g.active = i
			return
		}
	}
}

// Observe reacts to a status recomputation. When the active group's
// pending count has reached zero it schedules an advance to the first
// higher-index group with pending work; when the active group regains
// pending work (an unapprove) any scheduled advance is cancelled.
func (g *Guide) Observe(statuses []aggregate.HunkStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses = statuses

	if g.active >= len(statuses) || statuses[g.active].Pending > 0 {
		g.cancelLocked()
		return
	}

	if _, ok := nextPending(statuses, g.active); !ok {
		// Terminal state: every group at a higher index is reviewed.
		g.cancelLocked()
		return
	}

	if g.timer != nil {
		return // advance already scheduled
	}
	g.timer = time.AfterFunc(g.delay, g.advance)
}

// advance fires after the debounce delay. The target is recomputed from
// the statuses observed last, not the ones that armed the timer: groups
// reviewed during the delay are skipped, and if no pending group is
// left the cursor stays put.
func (g *Guide) advance() {
	g.mu.Lock()
	g.timer = nil
	next, ok := nextPending(g.statuses, g.active)
	if !ok {
		g.mu.Unlock()
		return
	}
	g.active = next
	cb := g.onAdvance
	g.mu.Unlock()

	if cb != nil {
		cb(next)
	}
}

// cancelLocked stops a scheduled advance. Must hold mu.
func (g *Guide) cancelLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// nextPending finds the first group after the active index with pending
// work. The search always runs over the flat group sequence; phase
// headers are display-only and never affect it.
func nextPending(statuses []aggregate.HunkStatus, active int) (int, bool) {
	for i := active + 1; i < len(statuses); i++ {
		if statuses[i].Pending > 0 {
			return i, true
		}
	}
	return 0, false
}

// PhaseSection is one phase header with the indexes of its groups.
// Consecutive groups sharing a phase collapse under one header; a group
// keeps its position in the flat sequence regardless.
type PhaseSection struct {
	Phase  string
	Groups []int
}

// Phases splits the group list into display sections.
func Phases(groups []model.ReviewGroup) []PhaseSection {
	var out []PhaseSection
	for i, grp := range groups {
		if len(out) == 0 || out[len(out)-1].Phase != grp.Phase {
			out = append(out, PhaseSection{Phase: grp.Phase})
		}
		last := &out[len(out)-1]
		last.Groups = append(last.Groups, i)
	}
	return out
}

// CompleteGroups appends a catch-all group for any hunk the grouping
// service left out, so every hunk is reachable through guided review.
func CompleteGroups(groups []model.ReviewGroup, hunks []*model.Hunk) []model.ReviewGroup {
	covered := make(map[string]bool)
	for _, g := range groups {
		for _, id := range g.HunkIDs {
			covered[id] = true
		}
	}

	var missing []string
	for _, h := range hunks {
		if !covered[h.ID] {
			missing = append(missing, h.ID)
		}
	}
	if len(missing) == 0 {
		return groups
	}
	return append(groups, model.ReviewGroup{
		Title:       "Other changes",
		HunkIDs:     missing,
		Description: "Changes not covered by any other group.",
	})
}

// Statuses computes the per-group status vector from state, treating
// ids that no longer resolve as zero.
func Statuses(state *review.State, hunks []*model.Hunk) []aggregate.HunkStatus {
	c := aggregate.NewCounter(state)
	return c.GroupStatus(state.Guide.Groups, hunks)
}

// SessionStatuses is Statuses over a live session, including its
// staged-file classifier input.
func SessionStatuses(s *review.Session) []aggregate.HunkStatus {
	c := aggregate.SessionCounter(s)
	return c.GroupStatus(s.State().Guide.Groups, s.Hunks())
}
