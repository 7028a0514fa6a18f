package cli

import (
	"fmt"

	"github.com/alexanderramin/dealnotes/internal/cli/formatter"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// historyViewer pages through a client's full timeline.
type historyViewer struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

func newHistoryViewer(title, content string) historyViewer {
	return historyViewer{title: title, content: content}
}

func (m historyViewer) Init() tea.Cmd {
	return nil
}

func (m historyViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		chrome := lipgloss.Height(m.headerView()) + lipgloss.Height(m.footerView())
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m historyViewer) View() string {
	if !m.ready {
		return "loading..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.headerView(), m.viewport.View(), m.footerView())
}

func (m historyViewer) headerView() string {
	return formatter.Header(m.title)
}

func (m historyViewer) footerView() string {
	pct := 100.0
	if m.ready {
		pct = m.viewport.ScrollPercent() * 100
	}
	return formatter.Dim(fmt.Sprintf("%3.0f%%  ↑/↓ scroll · q quit", pct))
}
