// Package stale detects when derived artifacts (classification labels,
// guide groups, narrative text) were computed from a hunk set that no
// longer matches the current one.
package stale

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

// Fingerprint identifies a hunk set by count plus a hash over the
// sorted hunk ids. Ids are content-addressed, so any content change,
// addition, or removal shifts the fingerprint; pure line-number drift
// does not.
func Fingerprint(hunks []*model.Hunk) string {
	ids := make([]string, 0, len(hunks))
	for _, h := range hunks {
		ids = append(ids, h.ID)
	}
	sort.Strings(ids)

	sum := sha256.New()
	for _, id := range ids {
		sum.Write([]byte(id))
		sum.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%d-%s", len(ids), hex.EncodeToString(sum.Sum(nil)[:8]))
}

// IsStale reports whether an artifact's stored fingerprint diverges
// from the current hunk set. An artifact that was never computed (empty
// fingerprint) is not stale, it is absent.
func IsStale(stored string, hunks []*model.Hunk) bool {
	if stored == "" {
		return false
	}
	return stored != Fingerprint(hunks)
}

// Artifacts summarizes the freshness of every derived artifact.
type Artifacts struct {
	ClassifyStale bool `json:"classifyStale"`
	GroupsStale   bool `json:"groupsStale"`

	NarrativeStale bool `json:"narrativeStale"`

	// NarrativeIrrelevant is the full-replacement case: the narrative
	// references no file still present in the diff. Irrelevant
	// narratives are hidden outright instead of badged stale.
	NarrativeIrrelevant bool `json:"narrativeIrrelevant"`
}

// Check evaluates all artifact fingerprints in one pass.
func Check(state *review.State, hunks []*model.Hunk) Artifacts {
	current := Fingerprint(hunks)
	g := state.Guide

	a := Artifacts{
		ClassifyStale:  g.ClassifyFingerprint != "" && g.ClassifyFingerprint != current,
		GroupsStale:    g.GroupsFingerprint != "" && g.GroupsFingerprint != current,
		NarrativeStale: g.NarrativeFingerprint != "" && g.NarrativeFingerprint != current,
	}
	if g.Narrative != "" && len(g.NarrativeFiles) > 0 {
		a.NarrativeIrrelevant = !intersects(g.NarrativeFiles, hunks)
	}
	return a
}

func intersects(files []string, hunks []*model.Hunk) bool {
	present := make(map[string]bool, len(hunks))
	for _, h := range hunks {
		present[h.FilePath] = true
	}
	for _, f := range files {
		if present[f] {
			return true
		}
	}
	return false
}
