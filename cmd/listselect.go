package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	itemStyle         = defaultStyle.PaddingLeft(2) // dull row
	selectedItemStyle = hoverStyle.PaddingLeft(0)   // highlighted row
)

// resourceItem is one bookable resource in the picker.
type resourceItem struct {
	id        string
	preferred bool
}

func (i resourceItem) Title() string       { return i.id }
func (i resourceItem) Description() string { return "" }
func (i resourceItem) FilterValue() string { return i.id }

type resourceDelegate struct{}

func (d resourceDelegate) Height() int                             { return 1 }
func (d resourceDelegate) Spacing() int                            { return 0 }
func (d resourceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d resourceDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	it, ok := listItem.(resourceItem)
	if !ok {
		return
	}

	label := fmt.Sprintf("%d. %s", index+1, it.id)
	if it.preferred {
		label += preferredStyle.Render(" (preferred)")
	}

	// prefix:  "> 1." for selected, "  1." otherwise
	if index == m.Index() {
		fmt.Fprint(w, selectedItemStyle.Render("> "+label))
	} else {
		fmt.Fprint(w, itemStyle.Render(label))
	}
}

var defaultKeyMap = list.KeyMap{
	CursorUp:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	CursorDown:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	AcceptWhileFiltering: key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("↵/l", "choose")),
	Quit:                 key.NewBinding(key.WithKeys("esc", "ctrl+c", "h"), key.WithHelp("esc/h", "cancel")),
}

type selectorModel struct {
	list     list.Model
	choice   string
	cancel   bool
	finished bool
}

// newSelector lists options in order with the cursor on preferred, if present.
func newSelector(title string, options []string, preferred string) selectorModel {
	items := make([]list.Item, len(options))
	cursor := 0
	for i, o := range options {
		items[i] = resourceItem{id: o, preferred: o == preferred}
		if o == preferred {
			cursor = i
		}
	}

	l := list.New(items, resourceDelegate{}, 0, 0)
	l.Title = title
	l.KeyMap = defaultKeyMap
	l.SetShowStatusBar(false)
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = controlStyle
	l.Select(cursor)

	return selectorModel{list: l}
}

func (m selectorModel) Init() tea.Cmd { return nil }

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, defaultKeyMap.AcceptWhileFiltering):
			if i, ok := m.list.SelectedItem().(resourceItem); ok {
				m.choice, m.finished = i.id, true
				return m, tea.Quit
			}
		case key.Matches(msg, defaultKeyMap.Quit):
			m.cancel, m.finished = true, true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string { return m.list.View() }

// selectFromList shows the picker and reports false when the user cancels.
func selectFromList(title string, options []string, preferred string) (string, bool, error) {
	if len(options) == 0 {
		return "", false, fmt.Errorf("no options to choose from")
	}

	p := tea.NewProgram(newSelector(title, options, preferred), tea.WithAltScreen())
	res, err := p.Run()
	if err != nil {
		return "", false, err
	}

	m := res.(selectorModel)
	if m.cancel {
		return "", false, nil
	}
	return m.choice, true, nil
}
