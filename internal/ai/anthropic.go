package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
	"github.com/sprite-ai/revise/internal/trust"
)

const maxResponseTokens = 8192

// Service implements Classifier, Grouper, and Narrator against the
// Anthropic API.
type Service struct {
	client anthropic.Client
	model  string
}

// NewService builds a service for the given API key and model name.
func NewService(apiKey, modelName string) *Service {
	return &Service{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  modelName,
	}
}

func (s *Service) complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: maxResponseTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("model request: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(b.Text)
		}
	}
	return text.String(), nil
}

const classifySystem = `You label code-review hunks with change-type tags.
Respond with a JSON object mapping hunk id to {"label": [...], "reasoning": "..."}.
Use only the tag ids listed in the prompt. Be conservative: when a hunk
mixes mechanical and behavioral changes, leave its label list empty.`

// Classify sends the hunks to the model and parses the returned label
// map. Ids absent from the response stay unclassified.
func (s *Service) Classify(ctx context.Context, hunks []*model.Hunk) (map[string]review.Classification, error) {
	if len(hunks) == 0 {
		return map[string]review.Classification{}, nil
	}

	var b strings.Builder
	b.WriteString("Available tags:\n")
	for _, cat := range trust.Taxonomy() {
		for _, p := range cat.Patterns {
			fmt.Fprintf(&b, "- %s: %s\n", p.ID, p.Description)
		}
	}
	b.WriteString("\nHunks:\n")
	writeHunkSummaries(&b, hunks)

	raw, err := s.complete(ctx, classifySystem, b.String())
	if err != nil {
		return nil, err
	}
	return ParseClassifyResponse(raw)
}

const groupSystem = `You organize code-review hunks into an ordered review plan.
Respond with a JSON array of groups: {"title", "phase", "hunkIds", "description"}.
Order groups so foundational changes come first. Every hunk id you use
must come from the prompt.`

// Group asks the model for an ordered review plan. Hunks the model
// leaves out are appended as a final catch-all group by the caller.
func (s *Service) Group(ctx context.Context, hunks []*model.Hunk) ([]model.ReviewGroup, error) {
	var b strings.Builder
	b.WriteString("Hunks:\n")
	writeHunkSummaries(&b, hunks)

	raw, err := s.complete(ctx, groupSystem, b.String())
	if err != nil {
		return nil, err
	}
	return ParseGroupResponse(raw)
}

const narrateSystem = `You write a short reviewer-facing overview of a change set.
Reference locations with links of the form review://<filePath>?hunk=<id>,
using ids from the prompt. Plain prose otherwise, no JSON.`

// Narrate asks the model for a prose overview with embedded review://
// links.
func (s *Service) Narrate(ctx context.Context, hunks []*model.Hunk) (Narrative, error) {
	var b strings.Builder
	b.WriteString("Hunks:\n")
	writeHunkSummaries(&b, hunks)

	text, err := s.complete(ctx, narrateSystem, b.String())
	if err != nil {
		return Narrative{}, err
	}
	text = strings.TrimSpace(text)
	return Narrative{Text: text, Files: LinkedFiles(text)}, nil
}

// writeHunkSummaries renders hunks in a compact diff-like form the
// model can reference by id.
func writeHunkSummaries(b *strings.Builder, hunks []*model.Hunk) {
	for _, h := range hunks {
		fmt.Fprintf(b, "\n--- id=%s file=%s", h.ID, h.FilePath)
		if h.Section != "" {
			fmt.Fprintf(b, " section=%q", h.Section)
		}
		b.WriteString("\n")
		for _, l := range h.Lines {
			switch l.Kind {
			case model.LineAdded:
				b.WriteString("+")
			case model.LineRemoved:
				b.WriteString("-")
			default:
				b.WriteString(" ")
			}
			b.WriteString(l.Content)
			b.WriteString("\n")
		}
	}
}

// ParseClassifyResponse decodes the classification JSON, tolerating a
// markdown code fence around it.
func ParseClassifyResponse(raw string) (map[string]review.Classification, error) {
	var out map[string]review.Classification
	if err := json.Unmarshal([]byte(stripFence(raw)), &out); err != nil {
		return nil, fmt.Errorf("parsing classification response: %w", err)
	}
	return out, nil
}

// ParseGroupResponse decodes the review-plan JSON.
func ParseGroupResponse(raw string) ([]model.ReviewGroup, error) {
	var out []model.ReviewGroup
	if err := json.Unmarshal([]byte(stripFence(raw)), &out); err != nil {
		return nil, fmt.Errorf("parsing group response: %w", err)
	}
	return out, nil
}

// stripFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[i+1:]
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}
