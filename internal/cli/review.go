package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kurishiro/voxlayer/pkg/timeline"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// ReviewModel is the bubbletea model for reviewing a reconciled
// timeline before it is written.
type ReviewModel struct {
	Records  timeline.Timeline
	Payload  string
	Cursor   int
	Offset   int
	Height   int
	Accepted bool
}

// NewReviewModel creates a review model over the merged timeline.
func NewReviewModel(merged timeline.Timeline, payload string) ReviewModel {
	return ReviewModel{
		Records: merged,
		Payload: payload,
		Height:  15,
	}
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "a":
			m.Accepted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ReviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Review Merge"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ accept  q discard"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Records) {
		end = len(m.Records)
	}

	for i := m.Offset; i < end; i++ {
		rec := m.Records[i]
		text := rec.String(m.Payload)

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s", cursor, text)
		switch {
		case strings.HasPrefix(text, timeline.InsertedMarker):
			b.WriteString(styleInserted.Render(line))
		case strings.HasPrefix(text, timeline.RemovedMarker):
			b.WriteString(styleRemoved.Render(line))
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %s",
		m.Cursor+1, len(m.Records), changeSummary(m.Records, m.Payload))))

	return b.String()
}

// changeSummary counts inserted and removed rows for the footer.
func changeSummary(t timeline.Timeline, payload string) string {
	inserted, removed := 0, 0
	for _, rec := range t {
		text := rec.String(payload)
		switch {
		case strings.HasPrefix(text, timeline.InsertedMarker):
			inserted++
		case strings.HasPrefix(text, timeline.RemovedMarker):
			removed++
		}
	}
	return fmt.Sprintf("+%d −%d", inserted, removed)
}

// runReview runs the interactive merge review and reports whether the
// user accepted the merge.
func runReview(merged timeline.Timeline, payload string) (bool, error) {
	p := tea.NewProgram(NewReviewModel(merged, payload))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	model, ok := final.(ReviewModel)
	if !ok {
		return false, nil
	}
	return model.Accepted, nil
}
