package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sprite-ai/revise/internal/aggregate"
	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
	"github.com/sprite-ai/revise/internal/trust"
)

// Report summarizes the outcome of a review session for export.
type Report struct {
	State *review.State
	Hunks []*model.Hunk
}

// ApprovedHunks returns every hunk that counts as reviewed-approved:
// explicit approvals plus trusted matches. Rejections are excluded.
func (r *Report) ApprovedHunks() []*model.Hunk {
	classifier := trust.NewClassifier(r.State)
	var out []*model.Hunk
	for _, h := range r.Hunks {
		hs := r.State.Hunk(h.ID)
		if hs.Status == model.StatusApproved || classifier.IsHunkTrusted(hs) {
			out = append(out, h)
		}
	}
	return out
}

// RejectedHunks returns every explicitly rejected hunk.
func (r *Report) RejectedHunks() []*model.Hunk {
	var out []*model.Hunk
	for _, h := range r.Hunks {
		if r.State.Hunk(h.ID).Status == model.StatusRejected {
			out = append(out, h)
		}
	}
	return out
}

// GeneratePatch reconstructs a unified diff containing only the
// approved hunks, grouped per file in path order.
func (r *Report) GeneratePatch() string {
	approved := r.ApprovedHunks()
	if len(approved) == 0 {
		return ""
	}

	byFile := make(map[string][]*model.Hunk)
	var paths []string
	for _, h := range approved {
		if _, ok := byFile[h.FilePath]; !ok {
			paths = append(paths, h.FilePath)
		}
		byFile[h.FilePath] = append(byFile[h.FilePath], h)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", p, p)
		fmt.Fprintf(&b, "--- a/%s\n", p)
		fmt.Fprintf(&b, "+++ b/%s\n", p)
		for _, h := range byFile[p] {
			fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
			if h.Section != "" {
				b.WriteString(" " + h.Section)
			}
			b.WriteString("\n")
			for _, l := range h.Lines {
				switch l.Kind {
				case model.LineAdded:
					b.WriteString("+")
				case model.LineRemoved:
					b.WriteString("-")
				default:
					b.WriteString(" ")
				}
				b.WriteString(l.Content)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// Summary renders a plain-text review summary: totals, per-file counts,
// rejected hunks with their notes.
func (r *Report) Summary() string {
	c := aggregate.NewCounter(r.State)
	totals := c.Sum(r.Hunks)

	var b strings.Builder
	fmt.Fprintf(&b, "Review %s\n", r.State.Comparison.Key())
	fmt.Fprintf(&b, "  %d/%d reviewed (%d approved, %d trusted, %d rejected",
		totals.Reviewed(), totals.Total, totals.Approved, totals.Trusted, totals.Rejected)
	if totals.SavedForLater > 0 {
		fmt.Fprintf(&b, ", %d saved for later", totals.SavedForLater)
	}
	b.WriteString(")\n")
	if r.State.CompletedAt != "" {
		fmt.Fprintf(&b, "  completed %s\n", r.State.CompletedAt)
	}

	b.WriteString("\nFiles:\n")
	for _, entry := range aggregate.FlatList(r.Hunks, c, aggregate.SortLexical) {
		fmt.Fprintf(&b, "  %-40s %d/%d\n", entry.Path, entry.Status.Reviewed(), entry.Status.Total)
	}

	rejected := r.RejectedHunks()
	if len(rejected) > 0 {
		b.WriteString("\nRejected:\n")
		for _, h := range rejected {
			fmt.Fprintf(&b, "  %s @%d", h.FilePath, h.NewStart)
			if notes := r.State.Hunk(h.ID).Notes; notes != "" {
				fmt.Fprintf(&b, ": %s", notes)
			}
			b.WriteString("\n")
		}
	}

	if r.State.Notes != "" {
		b.WriteString("\nNotes:\n  " + r.State.Notes + "\n")
	}
	return b.String()
}
