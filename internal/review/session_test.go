package review

import (
	"errors"
	"testing"

	"github.com/sprite-ai/revise/internal/model"
)

type recordingPersister struct {
	saves  int
	failN  int // fail the first N saves
	latest *State
}

func (p *recordingPersister) Save(state *State) error {
	p.saves++
	if p.saves <= p.failN {
		return errors.New("disk unavailable")
	}
	p.latest = state
	return nil
}

func hunk(id, path, contentHash string) *model.Hunk {
	return &model.Hunk{ID: id, FilePath: path, ContentHash: contentHash}
}

func newTestSession(p Persister) *Session {
	hunks := []*model.Hunk{
		hunk("fileX:1", "src/fileX.go", "aaa"),
		hunk("fileX:2", "src/fileX.go", "bbb"),
		hunk("fileY:1", "src/sub/fileY.go", "aaa"),
		hunk("fileZ:1", "docs/fileZ.md", "ccc"),
	}
	return NewSession(NewState(model.Comparison{Base: "main", Head: "HEAD"}), hunks, p)
}

func TestSessionPersistsEveryMutation(t *testing.T) {
	p := &recordingPersister{}
	s := newTestSession(p)

	s.Approve("fileX:1", model.ApprovalManual)
	s.Reject("fileY:1")

	if p.saves != 2 {
		t.Errorf("saves = %d, want 2", p.saves)
	}
	if p.latest.Hunk("fileY:1").Status != model.StatusRejected {
		t.Error("persisted state missing last mutation")
	}
}

func TestSessionPersistFailureRetriesNextMutation(t *testing.T) {
	p := &recordingPersister{failN: 1}
	s := newTestSession(p)

	// First persist fails; the action itself must still apply.
	s.Approve("fileX:1", model.ApprovalManual)
	if s.State().Hunk("fileX:1").Status != model.StatusApproved {
		t.Fatal("mutation dropped on persist failure")
	}
	if p.latest != nil {
		t.Fatal("failed save should not record state")
	}

	// Next mutation retries and succeeds with the current state.
	s.Reject("fileY:1")
	if p.latest == nil {
		t.Fatal("retry did not persist")
	}
	if p.latest.Hunk("fileX:1").Status != model.StatusApproved {
		t.Error("retried persist lost the earlier mutation")
	}
}

func TestApproveFileUsesSnapshotIDs(t *testing.T) {
	p := &recordingPersister{}
	s := newTestSession(p)

	st := s.ApproveFile("src/fileX.go", model.ApprovalManual)
	if st.Hunk("fileX:1").Status != model.StatusApproved ||
		st.Hunk("fileX:2").Status != model.StatusApproved {
		t.Error("both fileX hunks should be approved")
	}
	if st.Hunk("fileY:1").Status != model.StatusUnset {
		t.Error("fileY hunk must stay unset")
	}
}

func TestApproveDirectory(t *testing.T) {
	s := newTestSession(nil)

	st := s.ApproveDirectory("src", model.ApprovalManual)
	for _, id := range []string{"fileX:1", "fileX:2", "fileY:1"} {
		if st.Hunk(id).Status != model.StatusApproved {
			t.Errorf("hunk %s should be approved", id)
		}
	}
	if st.Hunk("fileZ:1").Status != model.StatusUnset {
		t.Error("docs hunk must stay unset")
	}
}

func TestApproveIdentical(t *testing.T) {
	s := newTestSession(nil)

	// fileX:1 and fileY:1 share a content hash.
	st := s.ApproveIdentical("fileX:1", model.ApprovalManual)
	if st.Hunk("fileX:1").Status != model.StatusApproved ||
		st.Hunk("fileY:1").Status != model.StatusApproved {
		t.Error("identical hunks should both be approved")
	}
	if st.Hunk("fileX:2").Status != model.StatusUnset {
		t.Error("non-identical hunk must stay unset")
	}

	// Unknown reference id is a no-op.
	before := s.State()
	after := s.ApproveIdentical("gone", model.ApprovalManual)
	if before != after {
		t.Error("unknown id should not mutate state")
	}
}

func TestGenerationGuardsLateMerge(t *testing.T) {
	s := newTestSession(nil)
	gen := s.Generation()

	// Comparison switches while a classification request is in flight.
	s.Switch(NewState(model.Comparison{Base: "main", Head: "feature"}), nil)

	merged := s.MergeClassification(gen, map[string]Classification{
		"fileX:1": {Label: []string{"imports:added"}},
	}, "fp-old")
	if merged {
		t.Error("merge from a previous generation must be dropped")
	}
	if len(s.State().Hunks) != 0 {
		t.Error("stale merge wrote into the new state")
	}

	// A response for the current generation merges fine.
	if !s.MergeClassification(s.Generation(), map[string]Classification{
		"a:1": {Label: []string{"comments:added"}},
	}, "fp-new") {
		t.Error("current-generation merge rejected")
	}
}

func TestSetGroupsGenerationGuard(t *testing.T) {
	s := newTestSession(nil)
	gen := s.Generation()
	groups := []model.ReviewGroup{{Title: "Part 1", HunkIDs: []string{"fileX:1"}}}

	if !s.SetGroups(gen, groups, "fp") {
		t.Fatal("same-generation SetGroups rejected")
	}
	if len(s.State().Guide.Groups) != 1 {
		t.Fatal("groups not applied")
	}

	s.Switch(NewState(model.Comparison{Base: "main", Head: "other"}), nil)
	if s.SetGroups(gen, groups, "fp") {
		t.Error("stale SetGroups must be dropped")
	}
}

func TestSetNarrativeGenerationGuard(t *testing.T) {
	s := newTestSession(nil)
	gen := s.Generation()

	s.Switch(NewState(model.Comparison{Base: "main", Head: "other"}), nil)
	if s.SetNarrative(gen, "summary text", []string{"fileX"}, "fp-old") {
		t.Error("stale SetNarrative must be dropped")
	}
	if s.State().Guide.Narrative != "" {
		t.Error("stale narrative wrote into the new state")
	}

	if !s.SetNarrative(s.Generation(), "fresh summary", []string{"fileY"}, "fp-new") {
		t.Error("current-generation SetNarrative rejected")
	}
	if s.State().Guide.Narrative != "fresh summary" {
		t.Errorf("narrative = %q", s.State().Guide.Narrative)
	}
}
