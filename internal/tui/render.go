package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/revise/internal/aggregate"
	"github.com/sprite-ai/revise/internal/diff"
	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
	"github.com/sprite-ai/revise/internal/trust"
)

// renderedLine is a single display line of the hunk pane.
type renderedLine struct {
	OldNum  int // 0 means the line does not exist on that side
	NewNum  int
	Kind    model.LineKind
	Content string

	// IsHeader marks the per-hunk header line carrying status and
	// labels. HunkIndex addresses the hunk in the file's hunk list, for
	// headers and content lines alike.
	IsHeader  bool
	HunkIndex int

	// Syntax highlighting tokens (nil = no highlighting)
	Tokens []diff.Token
}

// renderHunks produces the display lines for one file's hunks.
func renderHunks(hunks []*model.Hunk, state *review.State, classifier *trust.Classifier) []renderedLine {
	var lines []renderedLine

	for i, h := range hunks {
		lines = append(lines, renderedLine{
			IsHeader:  true,
			HunkIndex: i,
			Content:   hunkHeaderText(h, state, classifier),
		})

		highlighted := diff.HighlightHunk(h)
		for j, l := range h.Lines {
			rl := renderedLine{
				Kind:      l.Kind,
				Content:   l.Content,
				OldNum:    l.Old,
				NewNum:    l.New,
				HunkIndex: i,
			}
			if j < len(highlighted) {
				rl.Tokens = highlighted[j].Tokens
			}
			lines = append(lines, rl)
		}

		if i < len(hunks)-1 {
			lines = append(lines, renderedLine{HunkIndex: i, Content: ""})
		}
	}

	return lines
}

// hunkHeaderText builds the "@@ … @@" header with status badge and
// labels.
func hunkHeaderText(h *model.Hunk, state *review.State, classifier *trust.Classifier) string {
	old := fmt.Sprintf("-%d", h.OldStart)
	if h.OldCount != 1 {
		old += fmt.Sprintf(",%d", h.OldCount)
	}
	new := fmt.Sprintf("+%d", h.NewStart)
	if h.NewCount != 1 {
		new += fmt.Sprintf(",%d", h.NewCount)
	}

	header := fmt.Sprintf("@@ %s %s @@", old, new)
	if h.Section != "" {
		header += " " + h.Section
	}

	hs := state.Hunk(h.ID)
	header += "  " + statusBadge(h, hs, classifier)
	if len(hs.Label) > 0 {
		header += "  " + labelStyle.Render("["+strings.Join(hs.Label, " ")+"]")
	}
	return header
}

// statusBadge renders the effective status of a hunk.
func statusBadge(h *model.Hunk, hs review.HunkState, classifier *trust.Classifier) string {
	switch hs.Status {
	case model.StatusApproved:
		return badgeApprovedStyle.Render("✓ approved (" + hs.ApprovedVia.String() + ")")
	case model.StatusRejected:
		return badgeRejectedStyle.Render("✗ rejected")
	case model.StatusSavedForLater:
		return badgeDeferredStyle.Render("… saved for later")
	}
	if classifier.IsHunkTrusted(hs) {
		return badgeTrustedStyle.Render("◆ trusted")
	}
	if classifier.IsHunkReviewed(h, hs) {
		return badgeApprovedStyle.Render("✓ staged")
	}
	return badgePendingStyle.Render("· pending")
}

// fileBadge summarizes a file's counts for the file list.
func fileBadge(st aggregate.HunkStatus) string {
	if st.Done() {
		return "✓"
	}
	return fmt.Sprintf("%d/%d", st.Reviewed(), st.Total)
}

// styleLine applies diff coloring and syntax tokens to a rendered line.
func styleLine(rl renderedLine, width int, selected bool) string {
	if rl.IsHeader {
		style := hunkHeaderStyle
		if selected {
			style = hunkHeaderSelectedStyle
		}
		return style.Width(width).Render(rl.Content)
	}

	var oldNum, newNum string
	if rl.OldNum > 0 {
		oldNum = fmt.Sprintf("%4d", rl.OldNum)
	} else {
		oldNum = "    "
	}
	if rl.NewNum > 0 {
		newNum = fmt.Sprintf("%4d", rl.NewNum)
	} else {
		newNum = "    "
	}
	lineNums := lineNumberStyle.Render(oldNum) + " " + lineNumberStyle.Render(newNum)

	var content string
	switch rl.Kind {
	case model.LineAdded:
		content = addedLineStyle.Render(truncate("+"+rl.Content, width-12))
	case model.LineRemoved:
		content = deletedLineStyle.Render(truncate("-"+rl.Content, width-12))
	default:
		content = highlightedContent(rl, width-12)
	}

	return lineNums + " " + content
}

// highlightedContent renders a context line with syntax tokens.
func highlightedContent(rl renderedLine, maxWidth int) string {
	if len(rl.Tokens) == 0 {
		return contextLineStyle.Render(truncate(" "+rl.Content, maxWidth))
	}

	var b strings.Builder
	b.WriteString(" ")
	for _, tok := range rl.Tokens {
		if tok.Color != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
		} else {
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) > max {
		return s[:max-1] + "…"
	}
	return s
}
