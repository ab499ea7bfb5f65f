package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type spinModel struct {
	sp     spinner.Model
	msg    string
	cancel context.CancelFunc // ctrl+c stops the work behind the spinner
}

func newSpinnerModel(msg string, cancel context.CancelFunc) spinModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinModel{sp: s, msg: msg, cancel: cancel}
}

func (m spinModel) Init() tea.Cmd { return m.sp.Tick }

func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		if m.cancel != nil {
			m.cancel()
		}
		m.msg = "Cancelling..."
		return m, nil
	}

	var cmd tea.Cmd
	m.sp, cmd = m.sp.Update(msg)
	return m, cmd
}

func (m spinModel) View() string {
	// spinner + message on one line
	return fmt.Sprintf("\n  %s %s\n", m.sp.View(), m.msg)
}
