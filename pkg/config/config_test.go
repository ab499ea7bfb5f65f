package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"RoomBooker/pkg/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `login_url: ${PORTAL_URL}/login
location: Main Library
resource_category: Study Rooms
preferred_resource_id: PC2
times:
  start: "0800"
  end: "1200"
date: "2024-05-06"
timezone: UTC
increment: 1h30m
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("PORTAL_URL", "https://portal.example")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://portal.example/login", cfg.LoginURL)
	assert.Equal(t, "Main Library", cfg.Location)
	assert.Equal(t, "Study Rooms", cfg.ResourceCategory)
	assert.Equal(t, "PC2", cfg.PreferredResourceID)
	assert.Equal(t, 90*time.Minute, cfg.Increment.Duration)
	assert.Equal(t, "bookings", cfg.OutputFolder)
	assert.Equal(t, 5*time.Second, cfg.WaitTimeout.Duration)
	assert.Equal(t, 10*time.Second, cfg.ConfirmTimeout.Duration)

	start, end, err := cfg.Window(time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC), end)
}

func TestWindowDefaultsToToday(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "UTC"
	cfg.Times = Times{Start: "0930", End: "2359"}

	now := time.Date(2024, 7, 1, 15, 4, 5, 0, time.UTC)
	start, end, err := cfg.Window(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 7, 1, 23, 59, 0, 0, time.UTC), end)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing login", "location: a\nresource_category: b\ntimes: {start: \"0800\", end: \"0900\"}\n", "login_url"},
		{"missing category", "login_url: u\nlocation: a\ntimes: {start: \"0800\", end: \"0900\"}\n", "resource_category"},
		{"short start", "login_url: u\nlocation: a\nresource_category: b\ntimes: {start: \"800\", end: \"0900\"}\n", "times.start"},
		{"bad hour", "login_url: u\nlocation: a\nresource_category: b\ntimes: {start: \"0800\", end: \"2400\"}\n", "times.end"},
		{"bad date", "login_url: u\nlocation: a\nresource_category: b\ntimes: {start: \"0800\", end: \"0900\"}\ndate: 06/05/2024\n", "date"},
		{"bad timezone", "login_url: u\nlocation: a\nresource_category: b\ntimes: {start: \"0800\", end: \"0900\"}\ntimezone: Mars/Olympus\n", "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoadBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, sampleConfig+"wait_timeout: soon\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("PORTAL_URL", "https://portal.example")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	require.NoError(t, Save(path, cfg))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestParseClock(t *testing.T) {
	valid := map[string][2]int{
		"0000": {0, 0},
		"0800": {8, 0},
		"1359": {13, 59},
		"2359": {23, 59},
	}
	for in, want := range valid {
		h, m, err := ParseClock("times.start", in)
		require.NoError(t, err, in)
		assert.Equal(t, want, [2]int{h, m}, in)
	}

	for _, in := range []string{"", "800", "08000", "08:0", "ab00", "2400", "0860", "-100"} {
		_, _, err := ParseClock("times.start", in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, in)
	}
}

func TestParseCredentialsKeepsOrder(t *testing.T) {
	creds, err := ParseCredentials(`{"zed": "p1", "amy": "p:2", "mo": "p\"3"}`)
	require.NoError(t, err)
	assert.Equal(t, []shared.Credential{
		{Username: "zed", Password: "p1"},
		{Username: "amy", Password: "p:2"},
		{Username: "mo", Password: `p"3`},
	}, creds)
}

func TestParseCredentialsInvalid(t *testing.T) {
	for _, blob := range []string{
		`{}`,
		`["alice", "pw"]`,
		`{"alice": ["pw"]}`,
		`{"alice": "a", "alice": "b"}`,
		`{"alice": `,
	} {
		_, err := ParseCredentials(blob)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, blob)
	}
}

func TestCredentialsFromEnvFile(t *testing.T) {
	t.Setenv(CredentialsEnv, "")
	os.Unsetenv(CredentialsEnv)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`CREDENTIALS='{"alice": "pw-a", "bob": "pw-b"}'`+"\n"), 0o600))
	require.NoError(t, LoadEnv(path))

	creds, err := CredentialsFromEnv()
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "alice", creds[0].Username)
	assert.Equal(t, "pw-b", creds[1].Password)
}

func TestLoadEnvMissing(t *testing.T) {
	assert.Error(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))

	old := DefaultEnvFile
	DefaultEnvFile = filepath.Join(t.TempDir(), "missing.env")
	defer func() { DefaultEnvFile = old }()
	assert.NoError(t, LoadEnv(""))
}

func TestCredentialsFromEnvUnset(t *testing.T) {
	t.Setenv(CredentialsEnv, "")
	_, err := CredentialsFromEnv()
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestZone(t *testing.T) {
	cfg := Default()
	assert.Equal(t, time.Local, cfg.Zone())

	cfg.Timezone = "Australia/Perth"
	assert.Equal(t, "Australia/Perth", cfg.Zone().String())

	// the location name and the time zone are separate settings
	cfg.Location = "Main Library"
	assert.Equal(t, "Main Library", cfg.Location)
	assert.Equal(t, "Australia/Perth", cfg.Zone().String())

	cfg.Timezone = "Mars/Olympus"
	assert.Equal(t, time.Local, cfg.Zone())
}
