package ai

import (
	"reflect"
	"testing"
)

func TestParseClassifyResponse(t *testing.T) {
	raw := `{"a.go:1111": {"label": ["imports:added"], "reasoning": "adds fmt"}}`

	got, err := ParseClassifyResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	c := got["a.go:1111"]
	if !reflect.DeepEqual(c.Label, []string{"imports:added"}) || c.Reasoning != "adds fmt" {
		t.Errorf("classification = %+v", c)
	}
}

func TestParseClassifyResponseFenced(t *testing.T) {
	raw := "```json\n{\"a.go:1111\": {\"label\": [\"comments:added\"]}}\n```"

	got, err := ParseClassifyResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got = %v", got)
	}
}

func TestParseClassifyResponseMalformed(t *testing.T) {
	if _, err := ParseClassifyResponse("not json at all"); err == nil {
		t.Error("expected parse error")
	}
}

func TestParseGroupResponse(t *testing.T) {
	raw := "```\n" + `[
		{"title": "Core parser", "phase": "main", "hunkIds": ["a:1", "a:2"]},
		{"title": "Tests", "phase": "tests", "hunkIds": ["b:1"], "description": "coverage"}
	]` + "\n```"

	got, err := ParseGroupResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title != "Core parser" || got[1].Phase != "tests" {
		t.Errorf("groups = %+v", got)
	}
	if !reflect.DeepEqual(got[0].HunkIDs, []string{"a:1", "a:2"}) {
		t.Errorf("hunkIds = %v", got[0].HunkIDs)
	}
}

func TestParseLinks(t *testing.T) {
	text := `The parser rewrite (review://src/parser.go?hunk=src/parser.go:abcd1234)
feeds the renderer, see review://src/render.go?hunk=src/render.go:ffff0000.
Unrelated: https://example.com stays untouched.`

	got := ParseLinks(text)
	want := []NarrativeLink{
		{FilePath: "src/parser.go", HunkID: "src/parser.go:abcd1234"},
		{FilePath: "src/render.go", HunkID: "src/render.go:ffff0000"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("links = %+v, want %+v", got, want)
	}
}

func TestParseLinksWithoutHunkParam(t *testing.T) {
	got := ParseLinks("see review://docs/readme.md for context")
	if len(got) != 1 || got[0].FilePath != "docs/readme.md" || got[0].HunkID != "" {
		t.Errorf("links = %+v", got)
	}
}

func TestLinkedFilesDeduplicates(t *testing.T) {
	text := `review://a.go?hunk=a.go:1 then review://b.go?hunk=b.go:1 and again review://a.go?hunk=a.go:2`
	got := LinkedFiles(text)
	if !reflect.DeepEqual(got, []string{"a.go", "b.go"}) {
		t.Errorf("files = %v", got)
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct{ in, want string }{
		{"{}", "{}"},
		{"```json\n{}\n```", "{}"},
		{"```\n[]\n```", "[]"},
		{"  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFence(tt.in); got != tt.want {
			t.Errorf("stripFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
