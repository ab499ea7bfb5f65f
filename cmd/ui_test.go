package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorStartsOnPreferred(t *testing.T) {
	m := newSelector("Select a resource", []string{"PC1", "PC2", "PC3"}, "PC2")
	assert.Equal(t, 1, m.list.Index())

	res, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	got := res.(selectorModel)
	assert.True(t, got.finished)
	assert.Equal(t, "PC2", got.choice)
}

func TestSelectorCancel(t *testing.T) {
	m := newSelector("Select a resource", []string{"PC1"}, "")
	res, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	got := res.(selectorModel)
	assert.True(t, got.cancel)
	assert.Empty(t, got.choice)
}

func TestSelectFromListEmpty(t *testing.T) {
	_, ok, err := selectFromList("Select a resource", nil, "")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestProgressBar(t *testing.T) {
	cancelled := false
	m := newPB(4, func() { cancelled = true })

	res, _ := m.Update(pbMsg(2))
	m = res.(pbModel)
	assert.Equal(t, 2, m.done)
	assert.Contains(t, m.View(), "2/4 accounts")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, cancelled)
}

func TestSpinnerCancel(t *testing.T) {
	cancelled := false
	m := newSpinnerModel("Scanning", func() { cancelled = true })
	assert.Contains(t, m.View(), "Scanning")

	res, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, cancelled)
	assert.Contains(t, res.View(), "Cancelling...")
}

func TestPager(t *testing.T) {
	assert.Equal(t, "No available timeslots\n", newPagerModel(nil).View())

	view := newPagerModel([]string{"PC1:", "Mon 06 May 9:00 am *"}).View()
	assert.Contains(t, view, "Available Slots")
	assert.Contains(t, view, "  • PC1:")
	assert.Contains(t, view, "    • Mon 06 May 9:00 am *")
}

func TestSetupLogging(t *testing.T) {
	t.Run("console only", func(t *testing.T) {
		var buf bytes.Buffer
		l, f, err := setupLogging(&buf)
		require.NoError(t, err)
		assert.Nil(t, f)

		l.Debug().Msg("hidden")
		l.Info().Msg("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
		assert.Contains(t, buf.String(), "run_id=")
	})

	t.Run("verbose writes the debug log", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())
		verboseMode = true
		defer func() { verboseMode = false }()

		var buf bytes.Buffer
		l, f, err := setupLogging(&buf)
		require.NoError(t, err)
		require.NotNil(t, f)

		l.Debug().Str("slot", "PC1").Msg("debug detail")
		require.NoError(t, f.Close())
		assert.NotContains(t, buf.String(), "debug detail")

		path, err := debugLogPath()
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var event map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &event))
		assert.Equal(t, "debug detail", event["message"])
		assert.Equal(t, "PC1", event["slot"])
		assert.NotEmpty(t, event["run_id"])
		assert.Equal(t, "RoomBooker", filepath.Base(filepath.Dir(path)))
	})
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	cmd := versionCmd(&buf)
	cmd.Run(cmd, nil)
	assert.Equal(t, "Version:   dev\nCommit:    none\nDate:      unknown\n", buf.String())
}
