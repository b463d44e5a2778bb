// Package tui implements the Bubble Tea terminal review interface.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/revise/internal/aggregate"
	"github.com/sprite-ai/revise/internal/guide"
	"github.com/sprite-ai/revise/internal/model"
	"github.com/sprite-ai/revise/internal/review"
)

// fileEntry is one file in the left pane with its hunks in diff order.
type fileEntry struct {
	path  string
	hunks []*model.Hunk
}

// Model is the top-level Bubble Tea model for revise.
type Model struct {
	session *review.Session
	files   []fileEntry

	// UI state
	width  int
	height int

	fileIndex int // selected file
	hunkIndex int // selected hunk within the file

	scrollOffset int
	lines        []renderedLine

	showGuide bool
	showHelp  bool

	// Derived per-render from the state snapshot.
	counter *aggregate.Counter
}

// New creates a TUI model over a review session.
func New(session *review.Session) Model {
	m := Model{session: session}
	m.files = groupByFile(session.Hunks())
	m.refresh()
	return m
}

func groupByFile(hunks []*model.Hunk) []fileEntry {
	byPath := make(map[string][]*model.Hunk)
	var order []string
	for _, h := range hunks {
		if _, ok := byPath[h.FilePath]; !ok {
			order = append(order, h.FilePath)
		}
		byPath[h.FilePath] = append(byPath[h.FilePath], h)
	}
	sort.Strings(order)

	out := make([]fileEntry, 0, len(order))
	for _, p := range order {
		out = append(out, fileEntry{path: p, hunks: byPath[p]})
	}
	return out
}

// refresh recomputes everything derived from the state snapshot.
func (m *Model) refresh() {
	st := m.session.State()
	m.counter = aggregate.SessionCounter(m.session)
	if len(m.files) == 0 {
		m.lines = nil
		return
	}
	f := m.files[m.fileIndex]
	m.lines = renderHunks(f.hunks, st, m.counter.Classifier)
}

func (m *Model) currentHunk() *model.Hunk {
	if len(m.files) == 0 {
		return nil
	}
	f := m.files[m.fileIndex]
	if m.hunkIndex >= len(f.hunks) {
		return nil
	}
	return f.hunks[m.hunkIndex]
}

// scrollToSelection keeps the selected hunk's header visible.
func (m *Model) scrollToSelection() {
	for i, rl := range m.lines {
		if rl.IsHeader && rl.HunkIndex == m.hunkIndex {
			m.scrollOffset = i
			return
		}
	}
}

func (m *Model) selectFile(i int) {
	m.fileIndex = i
	m.hunkIndex = 0
	m.scrollOffset = 0
	m.refresh()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if f := m.files; len(f) > 0 && m.hunkIndex < len(f[m.fileIndex].hunks)-1 {
				m.hunkIndex++
				m.scrollToSelection()
			}

		case key.Matches(msg, keys.Up):
			if m.hunkIndex > 0 {
				m.hunkIndex--
				m.scrollToSelection()
			}

		case key.Matches(msg, keys.NextFile):
			if m.fileIndex < len(m.files)-1 {
				m.selectFile(m.fileIndex + 1)
			}

		case key.Matches(msg, keys.PrevFile):
			if m.fileIndex > 0 {
				m.selectFile(m.fileIndex - 1)
			}

		case key.Matches(msg, keys.Approve):
			if h := m.currentHunk(); h != nil {
				m.session.Approve(h.ID, model.ApprovalManual)
				m.refresh()
			}

		case key.Matches(msg, keys.Reject):
			if h := m.currentHunk(); h != nil {
				m.session.Reject(h.ID)
				m.refresh()
			}

		case key.Matches(msg, keys.Defer):
			if h := m.currentHunk(); h != nil {
				m.session.SaveForLater(h.ID)
				m.refresh()
			}

		case key.Matches(msg, keys.Undo):
			m.undoCurrent()

		case key.Matches(msg, keys.ApproveFile):
			if len(m.files) > 0 {
				m.session.ApproveFile(m.files[m.fileIndex].path, model.ApprovalManual)
				m.refresh()
			}

		case key.Matches(msg, keys.Trust):
			m.trustCurrent()

		case key.Matches(msg, keys.Guide):
			if len(m.session.State().Guide.Groups) > 0 {
				m.showGuide = !m.showGuide
			}

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

func (m *Model) undoCurrent() {
	h := m.currentHunk()
	if h == nil {
		return
	}
	switch m.session.State().Hunk(h.ID).Status {
	case model.StatusApproved:
		m.session.Unapprove(h.ID)
	case model.StatusRejected:
		m.session.Unreject(h.ID)
	}
	m.refresh()
}

// trustCurrent adds the selected hunk's first label to the trust list;
// every other hunk carrying a matching label flips to trusted at once.
func (m *Model) trustCurrent() {
	h := m.currentHunk()
	if h == nil {
		return
	}
	hs := m.session.State().Hunk(h.ID)
	if len(hs.Label) == 0 {
		return
	}
	m.session.AddTrustPattern(hs.Label[0])
	m.refresh()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	fileListWidth := m.fileListWidth()
	rightWidth := m.width - fileListWidth - 1

	fileList := m.renderFileList(fileListWidth, m.height-2)

	var right string
	if m.showGuide {
		right = m.renderGuide(rightWidth, m.height-2)
	} else {
		right = m.renderHunkView(rightWidth, m.height-2)
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top, fileList, " ", right)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) fileListWidth() int {
	maxLen := 20
	for _, f := range m.files {
		if len(f.path) > maxLen {
			maxLen = len(f.path)
		}
	}
	w := maxLen + 10
	if w > m.width/3 {
		w = m.width / 3
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderFileList(width, height int) string {
	var b strings.Builder

	for i, f := range m.files {
		st := m.counter.Sum(f.hunks)

		name := f.path
		maxName := width - 10
		if maxName > 0 && len(name) > maxName {
			name = "…" + name[len(name)-maxName+1:]
		}
		line := fmt.Sprintf("%-*s %s", maxName, name, fileBadge(st))

		style := fileItemStyle
		if i == m.fileIndex {
			style = fileItemSelectedStyle
		} else if st.Done() {
			style = fileItemDoneStyle
		}

		b.WriteString(style.Width(width - 4).Render(line))
		if i < len(m.files)-1 {
			b.WriteByte('\n')
		}
	}

	return fileListStyle.Width(width).Height(height - 2).Render(b.String())
}

func (m Model) renderHunkView(width, height int) string {
	if len(m.files) == 0 {
		return hunkViewStyle.Width(width).Height(height - 2).Render("No changes")
	}

	f := m.files[m.fileIndex]
	innerWidth := width - 4
	innerHeight := height - 2

	var b strings.Builder
	b.WriteString(fileHeaderStyle.Render(f.path))
	b.WriteByte('\n')

	visible := innerHeight - 2
	if visible < 1 {
		visible = 1
	}
	end := m.scrollOffset + visible
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for i := m.scrollOffset; i < end; i++ {
		rl := m.lines[i]
		b.WriteString(styleLine(rl, innerWidth, rl.IsHeader && rl.HunkIndex == m.hunkIndex))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}

	return hunkViewStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderGuide(width, height int) string {
	st := m.session.State()
	statuses := guide.SessionStatuses(m.session)

	var b strings.Builder
	b.WriteString(guideHeaderStyle.Render("Review guide"))
	b.WriteByte('\n')

	for _, section := range guide.Phases(st.Guide.Groups) {
		if section.Phase != "" {
			b.WriteString(guidePhaseStyle.Render(section.Phase))
			b.WriteByte('\n')
		}
		for _, gi := range section.Groups {
			grp := st.Guide.Groups[gi]
			line := fmt.Sprintf("  %s  %d/%d", grp.Title, statuses[gi].Reviewed(), statuses[gi].Total)
			if statuses[gi].Pending == 0 && statuses[gi].Total > 0 {
				line += "  ✓"
			}
			b.WriteString(fileItemStyle.Render(line))
			b.WriteByte('\n')
		}
	}

	return guideViewStyle.Width(width).Height(height - 2).Render(b.String())
}

func (m Model) renderStatusBar() string {
	totals := m.counter.Sum(m.session.Hunks())

	left := fmt.Sprintf(" %d/%d reviewed", totals.Reviewed(), totals.Total)
	if totals.Trusted > 0 {
		left += fmt.Sprintf("  (%d trusted)", totals.Trusted)
	}
	if totals.SavedForLater > 0 {
		left += fmt.Sprintf("  (%d deferred)", totals.SavedForLater)
	}

	right := fmt.Sprintf("file %d/%d  ? help ", m.fileIndex+1, len(m.files))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(fileHeaderStyle.Render("revise — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"↑/k", "Previous hunk"},
		{"↓/j", "Next hunk"},
		{"n/Tab", "Next file"},
		{"N/S-Tab", "Previous file"},
		{"a", "Approve hunk"},
		{"x", "Reject hunk"},
		{"s", "Save hunk for later"},
		{"u", "Undo decision"},
		{"A", "Approve whole file"},
		{"t", "Trust hunk's label"},
		{"g", "Toggle guide panel"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// Run starts the TUI application.
func Run(session *review.Session) error {
	m := New(session)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
