package session

import "math/rand"

// Profile is the browser fingerprint a session presents.
type Profile struct {
	UserAgent      string
	AcceptLanguage string
}

const defaultAcceptLanguage = "en-US,en;q=0.9"

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Safari/605.1.15",
}

// DefaultProfiles returns the built-in desktop browser pool.
func DefaultProfiles() []Profile {
	return ProfilesFromUserAgents(defaultUserAgents)
}

// ProfilesFromUserAgents builds a pool from user agent strings.
func ProfilesFromUserAgents(agents []string) []Profile {
	pool := make([]Profile, 0, len(agents))
	for _, ua := range agents {
		pool = append(pool, Profile{UserAgent: ua, AcceptLanguage: defaultAcceptLanguage})
	}
	return pool
}

// PickProfile draws one profile from pool. An empty pool falls back to the
// defaults and a nil rnd uses the global source.
func PickProfile(pool []Profile, rnd *rand.Rand) Profile {
	if len(pool) == 0 {
		pool = DefaultProfiles()
	}
	if rnd == nil {
		return pool[rand.Intn(len(pool))]
	}
	return pool[rnd.Intn(len(pool))]
}
