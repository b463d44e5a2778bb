// Package trust decides which hunks count as reviewed without an
// explicit approval: the trust classifier is the single source of truth
// every aggregation consults.
package trust

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

// MatchesPattern reports whether a classification label matches a trust
// pattern. Patterns support:
//   - exact ids:       "imports:added" trusts only "imports:added"
//   - bare categories: "imports" trusts every "imports:<subtype>"
//   - glob wildcards:  "imports:*" trusts "imports:added", "imports:removed"
//
// The ':' separator is treated as a path boundary for wildcards, so "*"
// alone trusts only single-segment labels while "**" trusts everything.
func MatchesPattern(label, pattern string) bool {
	if label == pattern {
		return true
	}

	// Bare category: trust every subtype beneath it.
	if !strings.ContainsAny(pattern, ":*?[{") {
		category, _, found := strings.Cut(label, ":")
		return found && category == pattern
	}

	g, err := glob.Compile(strings.ReplaceAll(pattern, ":", "/"), '/')
	if err != nil {
		return false
	}
	return g.Match(strings.ReplaceAll(label, ":", "/"))
}

// IsTrusted reports whether any of the hunk's labels matches any
// pattern in the trust list.
func IsTrusted(labels []string, trustList []string) bool {
	for _, label := range labels {
		for _, pattern := range trustList {
			if MatchesPattern(label, pattern) {
				return true
			}
		}
	}
	return false
}

// Classifier computes effective review status for hunks. It never
// writes into ReviewState: trusted is derived at read time, so removing
// a trust pattern immediately un-reviews every hunk it covered.
type Classifier struct {
	TrustList []string

	// AutoApproveStaged treats hunks in files already staged for commit
	// as reviewed.
	AutoApproveStaged bool
	StagedFiles       map[string]bool
}

// NewClassifier builds a classifier over the state's trust list.
func NewClassifier(state *review.State) *Classifier {
	return &Classifier{TrustList: state.TrustList}
}

// IsHunkReviewed is the effective-status predicate. Precedence:
//  1. explicit status wins outright: approved and rejected are
//     reviewed, saved-for-later is not, whatever the labels say
//  2. staged auto-approval
//  3. trust-list label match
//  4. pending
func (c *Classifier) IsHunkReviewed(h *model.Hunk, hs review.HunkState) bool {
	switch hs.Status {
	case model.StatusApproved, model.StatusRejected:
		return true
	case model.StatusSavedForLater:
		return false
	}

	if c.AutoApproveStaged && c.StagedFiles[h.FilePath] {
		return true
	}

	return IsTrusted(hs.Label, c.TrustList)
}

// IsHunkTrusted answers only the trust-match case: it excludes explicit
// statuses and staged auto-approval. Used to render the "auto-approved
// via trust" distinction and to compute trust-progress metrics.
func (c *Classifier) IsHunkTrusted(hs review.HunkState) bool {
	switch hs.Status {
	case model.StatusApproved, model.StatusRejected, model.StatusSavedForLater:
		return false
	}
	return IsTrusted(hs.Label, c.TrustList)
}
