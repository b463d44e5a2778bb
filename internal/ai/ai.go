// Package ai calls the model service that produces classification
// labels, review groups, and narrative summaries. The engine treats it
// as an opaque remote service: requests carry hunk summaries out,
// structured results come back, and the caller merges them by id.
package ai

import (
	"context"

	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

// Classifier labels hunks with taxonomy ids.
type Classifier interface {
	Classify(ctx context.Context, hunks []*model.Hunk) (map[string]review.Classification, error)
}

// Grouper partitions hunks into ordered review groups.
type Grouper interface {
	Group(ctx context.Context, hunks []*model.Hunk) ([]model.ReviewGroup, error)
}

// Narrative is free text describing the change set, with review://
// links resolved to navigation targets.
type Narrative struct {
	Text string

	// Files are the file paths the narrative references, used for the
	// irrelevance check after a comparison refresh.
	Files []string
}

// Narrator writes a prose overview of the change set.
type Narrator interface {
	Narrate(ctx context.Context, hunks []*model.Hunk) (Narrative, error)
}
