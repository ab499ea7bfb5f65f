// Copyright (c) 2024 Adam Wyatt
//
// This software is licensed under the MIT License.
// See the LICENSE file in the root of the repository for details.

package cmd

import (
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
)

const slotsPerPage = 18 // rows per page

// pagerModel pages through scheduleLines output: "PC1:" headers followed
// by that resource's slot times.
type pagerModel struct {
	lines     []string
	paginator paginator.Model
}

func newPagerModel(lines []string) pagerModel {
	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = slotsPerPage
	p.InactiveDot = "·"
	p.ActiveDot = "●"
	p.SetTotalPages(len(lines))

	return pagerModel{lines: lines, paginator: p}
}

func (m pagerModel) Init() tea.Cmd { return nil }

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "q", "esc", "ctrl+c", "enter":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.paginator, cmd = m.paginator.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if len(m.lines) == 0 {
		return "No available timeslots\n"
	}

	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render(" Available Slots ") + "\n\n")

	start, end := m.paginator.GetSliceBounds(len(m.lines))
	for _, l := range m.lines[start:end] {
		switch {
		case strings.HasSuffix(l, ":"):
			b.WriteString("  • " + hoverStyle.Render(l) + "\n\n")
		case strings.HasSuffix(l, "*"):
			b.WriteString("    • " + successStyle.Render(l) + "\n\n")
		default:
			b.WriteString("    • " + l + "\n\n")
		}
	}

	b.WriteString("  " + m.paginator.View())
	b.WriteString(controlStyle.Render("\n\n  * inside the booking window\n  h/l ←/→ page • q/enter: done\n"))

	return b.String()
}
