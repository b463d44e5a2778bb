package stale

import (
	"testing"

	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

func hunk(id, path string) *model.Hunk {
	return &model.Hunk{ID: id, FilePath: path}
}

func TestFingerprintStability(t *testing.T) {
	a := []*model.Hunk{hunk("h1", "a.go"), hunk("h2", "b.go")}

	// Same set, different order: same fingerprint.
	b := []*model.Hunk{hunk("h2", "b.go"), hunk("h1", "a.go")}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprint must be order independent")
	}

	if IsStale(Fingerprint(a), a) {
		t.Error("unchanged set must not be stale")
	}
}

func TestFingerprintChanges(t *testing.T) {
	base := []*model.Hunk{hunk("h1", "a.go"), hunk("h2", "b.go")}
	fp := Fingerprint(base)

	added := append([]*model.Hunk{hunk("h3", "c.go")}, base...)
	if !IsStale(fp, added) {
		t.Error("added hunk must make the artifact stale")
	}

	removed := base[:1]
	if !IsStale(fp, removed) {
		t.Error("removed hunk must make the artifact stale")
	}
}

func TestIsStaleEmptyFingerprint(t *testing.T) {
	if IsStale("", []*model.Hunk{hunk("h1", "a.go")}) {
		t.Error("a never-computed artifact is absent, not stale")
	}
}

func TestCheck(t *testing.T) {
	hunks := []*model.Hunk{hunk("h1", "a.go")}
	fresh := Fingerprint(hunks)

	state := review.NewState(model.Comparison{Base: "main", Head: "HEAD"})
	state = state.MergeLabels(map[string]review.Classification{
		"h1": {Label: []string{"comments:added"}},
	}, fresh)
	state = state.SetGroups([]model.ReviewGroup{{Title: "g", HunkIDs: []string{"h1"}}}, "old-fp")
	state = state.SetNarrative("overview", []string{"a.go"}, fresh)

	a := Check(state, hunks)
	if a.ClassifyStale {
		t.Error("labels computed from the current set are fresh")
	}
	if !a.GroupsStale {
		t.Error("groups carry an outdated fingerprint")
	}
	if a.NarrativeStale || a.NarrativeIrrelevant {
		t.Errorf("narrative should be fresh and relevant: %+v", a)
	}
}

func TestNarrativeIrrelevance(t *testing.T) {
	state := review.NewState(model.Comparison{Base: "main", Head: "HEAD"})
	state = state.SetNarrative("overview", []string{"a.go", "b.go"}, "fp")

	// Full replacement: no referenced file remains in the diff.
	a := Check(state, []*model.Hunk{hunk("h9", "z.go")})
	if !a.NarrativeIrrelevant {
		t.Error("narrative referencing only vanished files is irrelevant")
	}
	if !a.NarrativeStale {
		t.Error("irrelevant narrative is also stale")
	}

	// Partial overlap stays relevant.
	a = Check(state, []*model.Hunk{hunk("h9", "z.go"), hunk("h1", "a.go")})
	if a.NarrativeIrrelevant {
		t.Error("one surviving referenced file keeps the narrative relevant")
	}
}
