package diff

import (
	"strings"
	"testing"

	"github.com/sprite-ai/revise/internal/model"
)

const sampleDiff = `diff --git a/main.go b/main.go
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

func TestParse(t *testing.T) {
	ds, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(ds.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(ds.Files))
	}

	files, added, deleted := ds.Stats()
	if files != 2 {
		t.Errorf("expected 2 files in stats, got %d", files)
	}
	if added != 7 {
		t.Errorf("expected 7 added lines, got %d", added)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted line, got %d", deleted)
	}

	if !ds.Files[1].IsNew {
		t.Error("util.go should be marked new")
	}
}

func TestHunkIDStableAcrossLineShift(t *testing.T) {
	ds1, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// The same change at a different position keeps its id: the hash
	// covers only the changed lines, not the hunk header.
	shifted := strings.Replace(sampleDiff, "@@ -1,5 +1,6 @@", "@@ -10,5 +10,6 @@", 1)
	ds2, err := Parse(shifted)
	if err != nil {
		t.Fatalf("Parse shifted: %v", err)
	}

	id1 := ds1.Files[0].Hunks[0].ID
	id2 := ds2.Files[0].Hunks[0].ID
	if id1 != id2 {
		t.Errorf("hunk id changed with line shift: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, "main.go:") {
		t.Errorf("hunk id should be prefixed with file path, got %q", id1)
	}
}

func TestHunkIDDiffersByContent(t *testing.T) {
	ds1, _ := Parse(sampleDiff)
	edited := strings.Replace(sampleDiff, `println("goodbye")`, `println("farewell")`, 1)
	ds2, err := Parse(edited)
	if err != nil {
		t.Fatalf("Parse edited: %v", err)
	}

	if ds1.Files[0].Hunks[0].ID == ds2.Files[0].Hunks[0].ID {
		t.Error("hunk id should change when changed lines change")
	}
}

func TestDetectMovePairs(t *testing.T) {
	moveDiff := `diff --git a/old.go b/old.go
--- a/old.go
+++ b/old.go
@@ -10,3 +10,0 @@
-func helper() int {
-	return 42
-}
diff --git a/new.go b/new.go
--- a/new.go
+++ b/new.go
@@ -0,0 +1,3 @@
+func helper() int {
+	return 42
+}
`
	ds, err := Parse(moveDiff)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	hunks := ds.Hunks()
	if len(hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(hunks))
	}

	del, add := hunks[0], hunks[1]
	if del.MovePairID != add.ID {
		t.Errorf("deletion should link to addition: got %q want %q", del.MovePairID, add.ID)
	}
	if add.MovePairID != del.ID {
		t.Errorf("addition should link to deletion: got %q want %q", add.MovePairID, del.ID)
	}
}

func TestMovePairsSameFileNotLinked(t *testing.T) {
	h1 := &model.Hunk{ID: "a.go:1", FilePath: "a.go", ContentHash: "h",
		Lines: []model.Line{{Kind: model.LineRemoved, Content: "x"}}}
	h2 := &model.Hunk{ID: "a.go:2", FilePath: "a.go", ContentHash: "h",
		Lines: []model.Line{{Kind: model.LineAdded, Content: "x"}}}

	DetectMovePairs([]*model.Hunk{h1, h2})
	if h1.MovePairID != "" || h2.MovePairID != "" {
		t.Error("hunks in the same file must not be linked as a move pair")
	}
}

func TestLineNumbers(t *testing.T) {
	ds, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	h := ds.Files[0].Hunks[0]
	if h.OldStart != 1 || h.NewStart != 1 {
		t.Errorf("unexpected hunk positions: old=%d new=%d", h.OldStart, h.NewStart)
	}

	var removed, addedFirst *model.Line
	for i := range h.Lines {
		l := &h.Lines[i]
		if l.Kind == model.LineRemoved && removed == nil {
			removed = l
		}
		if l.Kind == model.LineAdded && addedFirst == nil {
			addedFirst = l
		}
	}
	if removed == nil || addedFirst == nil {
		t.Fatal("expected both removed and added lines")
	}
	if removed.Old != 4 {
		t.Errorf("removed line old number = %d, want 4", removed.Old)
	}
	if addedFirst.New != 4 {
		t.Errorf("added line new number = %d, want 4", addedFirst.New)
	}
}

func TestShouldSkip(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"node_modules/lodash/index.js", true},
		{"pkg/node_modules/x.js", true},
		{"dist/bundle.js", true},
		{"app/__pycache__/mod.pyc", true},
		{"assets/app.min.js", true},
		{"src/main.go", false},
		{"package-lock.json", false}, // lockfiles classify, not skip
	}
	for _, tt := range tests {
		if got := ShouldSkip(tt.path); got != tt.want {
			t.Errorf("ShouldSkip(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseSkipsVendoredFiles(t *testing.T) {
	vendored := `diff --git a/node_modules/x/index.js b/node_modules/x/index.js
--- a/node_modules/x/index.js
+++ b/node_modules/x/index.js
@@ -1,1 +1,1 @@
-old
+new
`
	ds, err := Parse(vendored)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ds.Files) != 0 {
		t.Errorf("vendored file should be skipped, got %d files", len(ds.Files))
	}
}
