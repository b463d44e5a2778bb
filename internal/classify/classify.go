package classify

import (
	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

// Unclassified returns the hunks with no labels and no explicit status.
// These are the hunks a classification run should cover.
func Unclassified(hunks []*model.Hunk, state *review.State) []*model.Hunk {
	var out []*model.Hunk
	for _, h := range hunks {
		hs := state.Hunk(h.ID)
		if len(hs.Label) == 0 && hs.Status == model.StatusUnset {
			out = append(out, h)
		}
	}
	return out
}

// RefreshMode selects which classification affordance applies. The
// modes are mutually exclusive.
type RefreshMode int

const (
	// ModeClassify: unclassified hunks exist, classify them.
	ModeClassify RefreshMode = iota
	// ModeReclassifyStale: everything is labeled but the labels were
	// computed from a different hunk set.
	ModeReclassifyStale
	// ModeReclassify: labels are current; a rerun is optional.
	ModeReclassify
)

func (m RefreshMode) String() string {
	switch m {
	case ModeClassify:
		return "classify"
	case ModeReclassifyStale:
		return "reclassify-stale"
	case ModeReclassify:
		return "reclassify"
	default:
		return "unknown"
	}
}

// SelectMode picks the refresh mode from the unclassified count and the
// staleness of the stored classification fingerprint.
func SelectMode(unclassified int, stale bool) RefreshMode {
	switch {
	case unclassified > 0:
		return ModeClassify
	case stale:
		return ModeReclassifyStale
	default:
		return ModeReclassify
	}
}
