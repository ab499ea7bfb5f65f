package cmd

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// testPortal is a minimal reservation portal: a login form, a grid with
// location and category dropdowns, and a three step booking flow.
type testPortal struct {
	users map[string]string
	slots map[string]string // id -> title
	hits  atomic.Int32      // requests served

	mu     sync.Mutex
	booked map[string]string // id -> username
}

var testSlotOrder = []string{"1", "2", "3", "4", "5"}

func newTestPortal(t *testing.T) (*testPortal, *httptest.Server) {
	t.Helper()
	p := &testPortal{
		users: map[string]string{"alice": "pw-a", "bob": "pw-b", "carol": "pw-c"},
		slots: map[string]string{
			"1": "8:00AM Monday, May 06, 2024 - Room A - Available",
			"2": "8:00AM Monday, May 06, 2024 - Room B - Available",
			"3": "10:00AM Monday, May 06, 2024 - Room B - Available",
			"4": "2:00PM Monday, May 06, 2024 - Room C - Available",
			"5": "whenever - Room D - Available",
		},
		booked: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><form method="post" action="/auth">
<input id="userNameInput" name="UserName"><input id="passwordInput" name="Password" type="password">
</form></body></html>`)
	})
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		user, pw := r.PostFormValue("UserName"), r.PostFormValue("Password")
		if want, ok := p.users[user]; !ok || want != pw {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "user", Value: user, Path: "/"})
		http.Redirect(w, r, "/grid", http.StatusFound)
	})
	mux.HandleFunc("/grid", p.grid)
	mux.HandleFunc("/book", p.step("/book/times", "submit_times"))
	mux.HandleFunc("/book/times", p.step("/book/terms", "terms_accept"))
	mux.HandleFunc("/book/terms", p.step("/book/submit", "btn-form-submit"))
	mux.HandleFunc("/book/submit", p.confirm)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return p, srv
}

func (p *testPortal) grid(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie("user"); err != nil {
		http.Error(w, "login required", http.StatusForbidden)
		return
	}
	q := r.URL.Query()
	selected := func(key, value string) string {
		if q.Get(key) == value {
			return " selected"
		}
		return ""
	}
	fmt.Fprintf(w, `<html><body><form method="get" action="/grid">
<select id="lid" name="lid"><option value="0">Select</option><option value="1"%s>Main Library</option></select>
<select id="gid" name="gid"><option value="0">Select</option><option value="2"%s>Study Rooms</option></select>
</form>`, selected("lid", "1"), selected("gid", "2"))
	if q.Get("lid") == "1" && q.Get("gid") == "2" {
		p.mu.Lock()
		for _, id := range testSlotOrder {
			if _, taken := p.booked[id]; !taken {
				fmt.Fprintf(w, `<a class="fc-timeline-event" href="/book?slot=%s" title="%s">%s</a>`, id, p.slots[id], id)
			}
		}
		p.mu.Unlock()
	}
	fmt.Fprint(w, `</body></html>`)
}

func (p *testPortal) step(action, button string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><form method="post" action="%s">
<input type="hidden" name="slot" value="%s"><button id="%s" type="submit">Next</button>
</form></body></html>`, action, r.FormValue("slot"), button)
	}
}

func (p *testPortal) confirm(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("user")
	if err != nil {
		http.Error(w, "login required", http.StatusForbidden)
		return
	}
	slot := r.PostFormValue("slot")

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, taken := p.booked[slot]; taken {
		fmt.Fprint(w, `<html><body>This space is no longer available.</body></html>`)
		return
	}
	p.booked[slot] = c.Value
	fmt.Fprintf(w, `<html><body>You have successfully booked slot %s.</body></html>`, slot)
}

func (p *testPortal) bookings() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.booked))
	for k, v := range p.booked {
		out[k] = v
	}
	return out
}

// useRunFiles points the global flags at a fresh config and env file and
// restores them when the test ends.
func useRunFiles(t *testing.T, srv *httptest.Server, start, end string) string {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "bookings")

	cfg := fmt.Sprintf(`login_url: %s/login
location: Main Library
resource_category: Study Rooms
preferred_resource_id: Room B
times:
  start: "%s"
  end: "%s"
date: "2024-05-06"
timezone: UTC
output_folder: %s
wait_timeout: 100ms
confirm_timeout: 100ms
request_delay: 0s
user_agents:
  - RoomBookerTest/1.0
`, srv.URL, start, end, out)

	cfgPath := filepath.Join(dir, "config.yaml")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("# accounts come from the test environment\n"), 0o600))
	t.Setenv("CREDENTIALS", `{"alice": "pw-a", "bob": "pw-b", "carol": "pw-c"}`)

	saved := []any{configFile, envFile, plainMode, pickMode, dryRun, metricsFile, earliest}
	configFile, envFile, plainMode, pickMode, dryRun, metricsFile, earliest = cfgPath, envPath, true, false, false, "", false
	t.Cleanup(func() {
		configFile = saved[0].(string)
		envFile = saved[1].(string)
		plainMode = saved[2].(bool)
		pickMode = saved[3].(bool)
		dryRun = saved[4].(bool)
		metricsFile = saved[5].(string)
		earliest = saved[6].(bool)
	})
	return out
}
