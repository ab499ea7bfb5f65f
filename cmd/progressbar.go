package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type pbMsg int // how many accounts have been attempted so far

type pbModel struct {
	bar    progress.Model
	total  int
	done   int
	cancel context.CancelFunc
}

func newPB(total int, cancel context.CancelFunc) pbModel {
	return pbModel{
		bar:    progress.New(progress.WithDefaultGradient()),
		total:  total,
		cancel: cancel,
	}
}

func (m pbModel) Init() tea.Cmd { return nil }

func (m pbModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {

	case pbMsg:
		m.done = int(v)
		return m, m.bar.SetPercent(float64(m.done) / float64(m.total))

	case tea.KeyMsg:
		// the run stops after the account in flight
		if v.String() == "ctrl+c" && m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = v.Width - 20
		return m, nil

	case progress.FrameMsg:
		b, cmd := m.bar.Update(msg)
		m.bar = b.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m pbModel) View() string {
	const clearLine = "\r\033[K"
	return clearLine + m.bar.View() + controlStyle.Render(fmt.Sprintf(" %d/%d accounts", m.done, m.total))
}
