package trust

import (
	"testing"

	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		label   string
		pattern string
		want    bool
	}{
		// exact
		{"imports:added", "imports:added", true},
		{"imports:added", "imports:removed", false},
		// bare category trusts every subtype
		{"imports:added", "imports", true},
		{"imports:removed", "imports", true},
		{"formatting:whitespace", "imports", false},
		{"imports", "imports", true},
		// wildcards
		{"imports:added", "imports:*", true},
		{"imports:removed", "imports:*", true},
		{"formatting:whitespace", "imports:*", false},
		{"formatting:whitespace", "*", false}, // single segment only
		{"formatting:whitespace", "**", true},
		{"version:bumped", "*:bumped", true},
	}
	for _, tt := range tests {
		if got := MatchesPattern(tt.label, tt.pattern); got != tt.want {
			t.Errorf("MatchesPattern(%q, %q) = %v, want %v", tt.label, tt.pattern, got, tt.want)
		}
	}
}

func TestIsTrusted(t *testing.T) {
	trustList := []string{"imports:*", "formatting:whitespace"}

	tests := []struct {
		labels []string
		want   bool
	}{
		{[]string{"imports:added"}, true},
		{[]string{"imports:removed"}, true},
		{[]string{"formatting:whitespace"}, true},
		{[]string{"formatting:style"}, false},
		{[]string{"rename:variable", "imports:added"}, true}, // any label suffices
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsTrusted(tt.labels, trustList); got != tt.want {
			t.Errorf("IsTrusted(%v) = %v, want %v", tt.labels, got, tt.want)
		}
	}
}

func TestIsHunkReviewedPrecedence(t *testing.T) {
	h := &model.Hunk{ID: "x:1", FilePath: "x.go"}

	tests := []struct {
		name       string
		classifier Classifier
		state      review.HunkState
		want       bool
	}{
		{
			name:       "explicit approval wins without any trust match",
			classifier: Classifier{},
			state:      review.HunkState{Status: model.StatusApproved, Label: []string{"not:trusted"}},
			want:       true,
		},
		{
			name:       "explicit rejection also counts as reviewed",
			classifier: Classifier{},
			state:      review.HunkState{Status: model.StatusRejected},
			want:       true,
		},
		{
			name:       "staged file auto-approved",
			classifier: Classifier{AutoApproveStaged: true, StagedFiles: map[string]bool{"x.go": true}},
			state:      review.HunkState{},
			want:       true,
		},
		{
			name:       "staged flag off ignores staged set",
			classifier: Classifier{AutoApproveStaged: false, StagedFiles: map[string]bool{"x.go": true}},
			state:      review.HunkState{},
			want:       false,
		},
		{
			name:       "category-level trust pattern matches subtype label",
			classifier: Classifier{TrustList: []string{"imports"}},
			state:      review.HunkState{Label: []string{"imports:added"}},
			want:       true,
		},
		{
			name:       "unlabeled unset hunk is pending",
			classifier: Classifier{TrustList: []string{"imports"}},
			state:      review.HunkState{},
			want:       false,
		},
		{
			name:       "saved for later is not reviewed",
			classifier: Classifier{},
			state:      review.HunkState{Status: model.StatusSavedForLater},
			want:       false,
		},
		{
			name:       "saved for later shadows a trust-matching label",
			classifier: Classifier{TrustList: []string{"imports"}},
			state:      review.HunkState{Status: model.StatusSavedForLater, Label: []string{"imports:added"}},
			want:       false,
		},
		{
			name:       "saved for later shadows staged auto-approval",
			classifier: Classifier{AutoApproveStaged: true, StagedFiles: map[string]bool{"x.go": true}},
			state:      review.HunkState{Status: model.StatusSavedForLater},
			want:       false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.classifier.IsHunkReviewed(h, tt.state); got != tt.want {
				t.Errorf("IsHunkReviewed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsHunkTrustedExcludesExplicit(t *testing.T) {
	c := Classifier{TrustList: []string{"imports:*"}, AutoApproveStaged: true,
		StagedFiles: map[string]bool{"x.go": true}}

	// Trust match on an untouched hunk.
	if !c.IsHunkTrusted(review.HunkState{Label: []string{"imports:added"}}) {
		t.Error("label match should be trusted")
	}

	// Explicit statuses are never "trusted" even with a matching label.
	for _, st := range []model.Status{model.StatusApproved, model.StatusRejected, model.StatusSavedForLater} {
		if c.IsHunkTrusted(review.HunkState{Status: st, Label: []string{"imports:added"}}) {
			t.Errorf("status %v should not be trusted", st)
		}
	}

	// Staged auto-approval is not a trust match.
	if c.IsHunkTrusted(review.HunkState{}) {
		t.Error("staged auto-approval must not count as trusted")
	}
}

func TestTaxonomyWellFormed(t *testing.T) {
	cats := Taxonomy()
	if len(cats) == 0 {
		t.Fatal("taxonomy is empty")
	}

	seen := make(map[string]bool)
	for _, cat := range cats {
		for _, p := range cat.Patterns {
			if p.Category != cat.ID {
				t.Errorf("pattern %s has category %q, want %q", p.ID, p.Category, cat.ID)
			}
			if seen[p.ID] {
				t.Errorf("duplicate pattern id %s", p.ID)
			}
			seen[p.ID] = true
		}
	}

	if !KnownPattern("imports:added") {
		t.Error("imports:added should be known")
	}
	if !KnownPattern("imports") {
		t.Error("bare category should be known")
	}
	if KnownPattern("nope:nope") {
		t.Error("unknown pattern should not be known")
	}
}
