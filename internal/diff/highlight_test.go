package diff

import (
	"testing"

	"github.com/sprite-ai/revise/internal/model"
)

func TestHighlightLines(t *testing.T) {
	lines := []string{
		"package main",
		"",
		"func main() {",
		`	fmt.Println("hello")`,
		"}",
	}

	highlighted := HighlightLines("main.go", lines)

	if len(highlighted) != len(lines) {
		t.Fatalf("expected %d highlighted lines, got %d", len(lines), len(highlighted))
	}
	if len(highlighted[0].Tokens) == 0 {
		t.Error("expected tokens in first line")
	}
	if highlighted[0].Plain() != "package main" {
		t.Errorf("plain text mismatch: %q", highlighted[0].Plain())
	}
}

func TestHighlightLinesUnknownLanguage(t *testing.T) {
	lines := []string{"some content", "more content"}
	highlighted := HighlightLines("unknown.xyz123", lines)

	if len(highlighted) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(highlighted))
	}
	if highlighted[0].Plain() != "some content" {
		t.Errorf("expected plain passthrough, got %q", highlighted[0].Plain())
	}
}

func TestHighlightHunkAlignment(t *testing.T) {
	h := &model.Hunk{
		FilePath: "x.go",
		Lines: []model.Line{
			{Kind: model.LineContext, Content: "package x"},
			{Kind: model.LineRemoved, Content: "var a = 1"},
			{Kind: model.LineAdded, Content: "var a = 2"},
		},
	}

	highlighted := HighlightHunk(h)
	if len(highlighted) != len(h.Lines) {
		t.Fatalf("expected %d lines, got %d", len(h.Lines), len(highlighted))
	}
	for i, hl := range highlighted {
		if hl.Plain() != h.Lines[i].Content {
			t.Errorf("line %d: plain %q != content %q", i, hl.Plain(), h.Lines[i].Content)
		}
	}
}
