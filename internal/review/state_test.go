package review

import (
	"encoding/json"
	"testing"

	"github.com/sprite-ai/revise/internal/model"
)

func newTestState() *State {
	return NewState(model.Comparison{Base: "main", Head: "HEAD"})
}

func TestApproveRejectExclusive(t *testing.T) {
	s := newTestState()

	s = s.Approve("h1", model.ApprovalManual)
	if got := s.Hunk("h1").Status; got != model.StatusApproved {
		t.Fatalf("status = %v, want approved", got)
	}
	if got := s.Hunk("h1").ApprovedVia; got != model.ApprovalManual {
		t.Errorf("approvedVia = %v, want manual", got)
	}

	s = s.Reject("h1")
	hs := s.Hunk("h1")
	if hs.Status != model.StatusRejected {
		t.Fatalf("status = %v, want rejected", hs.Status)
	}
	if hs.ApprovedVia != model.ApprovalNone {
		t.Error("rejecting must clear approvedVia")
	}

	s = s.SaveForLater("h1")
	if got := s.Hunk("h1").Status; got != model.StatusSavedForLater {
		t.Fatalf("status = %v, want saved_for_later", got)
	}

	s = s.Approve("h1", model.ApprovalAI)
	if got := s.Hunk("h1").Status; got != model.StatusApproved {
		t.Fatalf("re-approve after defer: status = %v, want approved", got)
	}
}

func TestUnapproveRestoresUnset(t *testing.T) {
	s := newTestState()
	s = s.Approve("h1", model.ApprovalManual)
	s = s.Unapprove("h1")

	hs := s.Hunk("h1")
	if hs.Status != model.StatusUnset {
		t.Errorf("status = %v, want unset", hs.Status)
	}
	if hs.ApprovedVia != model.ApprovalNone {
		t.Error("unapprove must clear approvedVia")
	}

	// Unapproving a non-approved hunk is a no-op returning the same state.
	s2 := s.Unapprove("h1")
	if s2 != s {
		t.Error("unapprove of unset hunk should return the same state")
	}
	s3 := s.Unreject("h1")
	if s3 != s {
		t.Error("unreject of unset hunk should return the same state")
	}
}

func TestMutationsDoNotAliasPreviousState(t *testing.T) {
	s1 := newTestState()
	s2 := s1.Approve("h1", model.ApprovalManual)

	if s1.Hunk("h1").Status != model.StatusUnset {
		t.Error("mutation leaked into the previous snapshot")
	}
	if s2.Hunk("h1").Status != model.StatusApproved {
		t.Error("mutation missing from the new snapshot")
	}

	s3 := s2.AddTrustPattern("imports:added")
	if len(s2.TrustList) != 0 {
		t.Error("trust list mutation leaked into the previous snapshot")
	}
	if len(s3.TrustList) != 1 {
		t.Error("trust pattern not added")
	}
}

func TestTrustListAddRemove(t *testing.T) {
	s := newTestState()
	s = s.AddTrustPattern("imports:added")
	s = s.AddTrustPattern("imports:added") // duplicate ignored
	s = s.AddTrustPattern("formatting")

	if len(s.TrustList) != 2 {
		t.Fatalf("trust list = %v, want 2 entries", s.TrustList)
	}

	s = s.RemoveTrustPattern("imports:added")
	if len(s.TrustList) != 1 || s.TrustList[0] != "formatting" {
		t.Errorf("trust list after remove = %v", s.TrustList)
	}
}

func TestApproveMany(t *testing.T) {
	s := newTestState()
	s = s.Reject("h2")
	s = s.ApproveMany([]string{"h1", "h2", "h3"}, model.ApprovalManual)

	for _, id := range []string{"h1", "h2", "h3"} {
		if got := s.Hunk(id).Status; got != model.StatusApproved {
			t.Errorf("hunk %s status = %v, want approved", id, got)
		}
	}
}

func TestMergeLabelsPreservesStatus(t *testing.T) {
	s := newTestState()
	s = s.Approve("h1", model.ApprovalManual)

	// A late classification response merges per id and must not clobber
	// the approval that happened while it was in flight.
	s = s.MergeLabels(map[string]Classification{
		"h1": {Label: []string{"imports:added"}, Reasoning: "import block"},
		"h2": {Label: []string{"formatting:whitespace"}},
	}, "fp-1")

	h1 := s.Hunk("h1")
	if h1.Status != model.StatusApproved {
		t.Error("merge clobbered an explicit approval")
	}
	if len(h1.Label) != 1 || h1.Label[0] != "imports:added" {
		t.Errorf("h1 labels = %v", h1.Label)
	}
	if got := s.Hunk("h2").Label; len(got) != 1 {
		t.Errorf("h2 labels = %v", got)
	}
	if s.Guide.ClassifyFingerprint != "fp-1" {
		t.Errorf("fingerprint = %q", s.Guide.ClassifyFingerprint)
	}
}

func TestAnnotations(t *testing.T) {
	s := newTestState()
	s = s.AddAnnotation(model.Annotation{ID: "a1", FilePath: "x.go", Line: 3, Text: "check this"})
	s = s.AddAnnotation(model.Annotation{ID: "a2", FilePath: "y.go", Line: 9, Text: "why?"})
	if len(s.Annotations) != 2 {
		t.Fatalf("annotations = %d, want 2", len(s.Annotations))
	}

	s = s.RemoveAnnotation("a1")
	if len(s.Annotations) != 1 || s.Annotations[0].ID != "a2" {
		t.Errorf("annotations after remove = %v", s.Annotations)
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	s := newTestState()
	s = s.Approve("h1", model.ApprovalTrust)
	s = s.Reject("h2")
	s = s.AddTrustPattern("imports:*")
	s = s.SetGroups([]model.ReviewGroup{{Title: "Core", HunkIDs: []string{"h1"}}}, "fp")

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got State
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Hunk("h1").Status != model.StatusApproved || got.Hunk("h1").ApprovedVia != model.ApprovalTrust {
		t.Errorf("h1 after round trip = %+v", got.Hunk("h1"))
	}
	if got.Hunk("h2").Status != model.StatusRejected {
		t.Errorf("h2 after round trip = %+v", got.Hunk("h2"))
	}
	if len(got.Guide.Groups) != 1 || got.Guide.Groups[0].Title != "Core" {
		t.Errorf("groups after round trip = %v", got.Guide.Groups)
	}
}
