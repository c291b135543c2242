package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// VersionListModel is the bubbletea model for interactive version selection.
// Versions are shown newest-first as returned by the API.
type VersionListModel struct {
	Versions []packageVersion
	Cursor   int
	Selected *packageVersion
	Height   int
	Offset   int
}

// NewVersionListModel creates a new version list model.
func NewVersionListModel(versions []packageVersion) VersionListModel {
	return VersionListModel{
		Versions: versions,
		Height:   15,
	}
}

func (m VersionListModel) Init() tea.Cmd {
	return nil
}

func (m VersionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Versions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = &m.Versions[m.Cursor]
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

func (m VersionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Version"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Versions) {
		end = len(m.Versions)
	}

	for i := m.Offset; i < end; i++ {
		v := m.Versions[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		tag := ""
		if v.IsDefault {
			tag = " " + StyleSuccess.Render("(default)")
		}

		line := fmt.Sprintf("%s%-20s %s%s", cursor, v.VersionKey.Version,
			listDimStyle.Render(formatRelativeTime(v.PublishedAt)), tag)

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Versions))))

	return b.String()
}

// pickVersion runs the interactive version picker and returns the chosen
// version string. ok is false when the user quit without selecting.
func pickVersion(versions []packageVersion) (version string, ok bool, err error) {
	p := tea.NewProgram(NewVersionListModel(versions))
	final, err := p.Run()
	if err != nil {
		return "", false, fmt.Errorf("run version picker: %w", err)
	}
	m, good := final.(VersionListModel)
	if !good || m.Selected == nil {
		return "", false, nil
	}
	return m.Selected.VersionKey.Version, true, nil
}

func formatRelativeTime(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}

	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
