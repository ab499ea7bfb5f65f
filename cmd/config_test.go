package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"RoomBooker/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useConfigPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	original, originalEnv, originalOverwrite := configFile, envFile, overwrite
	configFile, envFile, overwrite = path, "", false
	t.Cleanup(func() { configFile, envFile, overwrite = original, originalEnv, originalOverwrite })
	return path
}

func TestConfigInit(t *testing.T) {
	path := useConfigPath(t)

	answers := strings.Join([]string{
		"https://portal.example/login",
		"Main Library",
		"",
		"Study Rooms",
		"PC2",
		"800", // rejected, not 4 digits
		"0800",
		"2460", // rejected, bad minute
		"1200",
		"",
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, runConfigInit(strings.NewReader(answers), &out))
	assert.Contains(t, out.String(), "This value cannot be empty")
	assert.Contains(t, out.String(), "4-digit string")
	assert.Contains(t, out.String(), "Configuration saved to "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example/login", cfg.LoginURL)
	assert.Equal(t, "Main Library", cfg.Location)
	assert.Equal(t, "Study Rooms", cfg.ResourceCategory)
	assert.Equal(t, "PC2", cfg.PreferredResourceID)
	assert.Equal(t, config.Times{Start: "0800", End: "1200"}, cfg.Times)
	assert.Equal(t, "bookings", cfg.OutputFolder)
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	path := useConfigPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("location: x\n"), 0o644))

	err := runConfigInit(strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorContains(t, err, "already exists")

	overwrite = true
	err = runConfigInit(strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err, "input ends before the first answer")
}

func TestConfigShow(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		useConfigPath(t)
		var out bytes.Buffer
		require.NoError(t, runConfigShow(&out))
		assert.Contains(t, out.String(), "No config file found")
	})

	t.Run("with accounts", func(t *testing.T) {
		path := useConfigPath(t)
		cfg := config.Default()
		cfg.LoginURL = "https://portal.example/login"
		cfg.Location = "Main Library"
		cfg.ResourceCategory = "Study Rooms"
		cfg.Times = config.Times{Start: "0800", End: "1000"}
		require.NoError(t, config.Save(path, cfg))

		envFile = filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, nil, 0o600))
		t.Setenv("CREDENTIALS", `{"zed": "secret-1", "amy": "secret-2"}`)

		var out bytes.Buffer
		require.NoError(t, runConfigShow(&out))
		assert.Contains(t, out.String(), "location: Main Library")
		assert.Contains(t, out.String(), "1) zed\n2) amy\n")
		assert.NotContains(t, out.String(), "secret")
	})
}
