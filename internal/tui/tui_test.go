package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sprite-ai/revise/internal/diff"
	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

const testDiff = `diff --git a/main.go b/main.go
index abc1234..def5678 100644
--- a/main.go
+++ b/main.go
@@ -1,5 +1,6 @@
 package main

 func main() {
-	println("hello")
+	println("hello world")
+	println("goodbye")
 }
diff --git a/util.go b/util.go
new file mode 100644
--- /dev/null
+++ b/util.go
@@ -0,0 +1,5 @@
+package main
+
+func add(a, b int) int {
+	return a + b
+}
`

func setupModel(t *testing.T) Model {
	t.Helper()
	ds, err := diff.Parse(testDiff)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	state := review.NewState(model.Comparison{Base: "main", Head: "HEAD"})
	session := review.NewSession(state, ds.Hunks(), nil)

	m := New(session)
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return newM.(Model)
}

func keyPress(m Model, r rune) Model {
	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return newM.(Model)
}

func TestModelInit(t *testing.T) {
	m := setupModel(t)

	if m.fileIndex != 0 {
		t.Errorf("expected fileIndex 0, got %d", m.fileIndex)
	}
	if len(m.files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(m.files))
	}
	if len(m.lines) == 0 {
		t.Error("expected lines to be rendered")
	}
}

func TestFileNavigation(t *testing.T) {
	m := setupModel(t)

	m = keyPress(m, 'n')
	if m.fileIndex != 1 {
		t.Errorf("expected fileIndex 1 after next, got %d", m.fileIndex)
	}

	// Move past end — should stay
	m = keyPress(m, 'n')
	if m.fileIndex != 1 {
		t.Errorf("expected fileIndex 1 at end, got %d", m.fileIndex)
	}

	m = keyPress(m, 'N')
	if m.fileIndex != 0 {
		t.Errorf("expected fileIndex 0 after prev, got %d", m.fileIndex)
	}
}

func TestApproveRejectUndo(t *testing.T) {
	m := setupModel(t)
	h := m.currentHunk()
	if h == nil {
		t.Fatal("no current hunk")
	}

	m = keyPress(m, 'a')
	if st := m.session.State().Hunk(h.ID); st.Status != model.StatusApproved {
		t.Errorf("status after approve = %v", st.Status)
	}

	m = keyPress(m, 'x')
	if st := m.session.State().Hunk(h.ID); st.Status != model.StatusRejected {
		t.Errorf("status after reject = %v", st.Status)
	}

	m = keyPress(m, 'u')
	if st := m.session.State().Hunk(h.ID); st.Status != model.StatusUnset {
		t.Errorf("status after undo = %v", st.Status)
	}

	m = keyPress(m, 's')
	if st := m.session.State().Hunk(h.ID); st.Status != model.StatusSavedForLater {
		t.Errorf("status after defer = %v", st.Status)
	}
}

func TestApproveWholeFile(t *testing.T) {
	m := setupModel(t)
	m = keyPress(m, 'A')

	path := m.files[0].path
	for _, h := range m.files[0].hunks {
		if m.session.State().Hunk(h.ID).Status != model.StatusApproved {
			t.Errorf("hunk %s in %s not approved", h.ID, path)
		}
	}
}

func TestTrustKeyNeedsLabel(t *testing.T) {
	m := setupModel(t)

	// Unlabeled hunk: trusting is a no-op.
	m = keyPress(m, 't')
	if len(m.session.State().TrustList) != 0 {
		t.Errorf("trustList = %v", m.session.State().TrustList)
	}

	h := m.currentHunk()
	m.session.MergeClassification(m.session.Generation(), map[string]review.Classification{
		h.ID: {Label: []string{"imports:added"}},
	}, "fp")
	m.refresh()

	m = keyPress(m, 't')
	if got := m.session.State().TrustList; len(got) != 1 || got[0] != "imports:added" {
		t.Errorf("trustList = %v", got)
	}
}

func TestViewRenders(t *testing.T) {
	m := setupModel(t)

	view := m.View()
	if view == "" {
		t.Error("expected non-empty view")
	}
	if !strings.Contains(view, "main.go") {
		t.Error("expected view to contain 'main.go'")
	}
	if !strings.Contains(view, "pending") {
		t.Error("expected a pending badge")
	}

	m = keyPress(m, 'a')
	if !strings.Contains(m.View(), "approved") {
		t.Error("expected an approved badge after approval")
	}
}

func TestGuidePanelRequiresGroups(t *testing.T) {
	m := setupModel(t)

	m = keyPress(m, 'g')
	if m.showGuide {
		t.Error("guide panel should not open without groups")
	}

	h := m.files[0].hunks[0]
	m.session.SetGroups(m.session.Generation(), []model.ReviewGroup{
		{Title: "Core", HunkIDs: []string{h.ID}},
	}, "fp")

	m = keyPress(m, 'g')
	if !m.showGuide {
		t.Error("guide panel should open with groups present")
	}
	if !strings.Contains(m.View(), "Core") {
		t.Error("expected guide view to list the group")
	}
}

func TestHelpToggle(t *testing.T) {
	m := setupModel(t)

	m = keyPress(m, '?')
	if !m.showHelp {
		t.Error("expected help to be shown")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("expected help view to contain shortcuts")
	}
}

func TestReportSummaryAndPatch(t *testing.T) {
	ds, err := diff.Parse(testDiff)
	if err != nil {
		t.Fatal(err)
	}
	hunks := ds.Hunks()

	state := review.NewState(model.Comparison{Base: "main", Head: "HEAD"})
	state = state.Approve(hunks[0].ID, model.ApprovalManual)
	state = state.SetHunkNotes(hunks[1].ID, "needs a test")
	state = state.Reject(hunks[1].ID)

	r := &Report{State: state, Hunks: hunks}

	if got := r.ApprovedHunks(); len(got) != 1 || got[0].ID != hunks[0].ID {
		t.Errorf("approved = %v", got)
	}
	if got := r.RejectedHunks(); len(got) != 1 {
		t.Errorf("rejected = %v", got)
	}

	patch := r.GeneratePatch()
	if !strings.Contains(patch, "diff --git a/"+hunks[0].FilePath) {
		t.Errorf("patch missing approved file:\n%s", patch)
	}
	if strings.Contains(patch, hunks[1].FilePath) && hunks[1].FilePath != hunks[0].FilePath {
		t.Errorf("patch contains rejected file:\n%s", patch)
	}

	summary := r.Summary()
	if !strings.Contains(summary, "1 approved") || !strings.Contains(summary, "1 rejected") {
		t.Errorf("summary = %q", summary)
	}
	if !strings.Contains(summary, "needs a test") {
		t.Error("summary should carry the rejection note")
	}
}
