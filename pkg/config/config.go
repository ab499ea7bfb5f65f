package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the run configuration lives unless overridden.
var DefaultPath = filepath.Join("conf", "config.yaml")

type Times struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Config is the run configuration.
type Config struct {
	LoginURL            string   `yaml:"login_url"`
	Location            string   `yaml:"location"`
	ResourceCategory    string   `yaml:"resource_category"`
	PreferredResourceID string   `yaml:"preferred_resource_id"`
	Times               Times    `yaml:"times"`
	Date                string   `yaml:"date,omitempty"`
	Timezone            string   `yaml:"timezone,omitempty"`
	OutputFolder        string   `yaml:"output_folder"`
	Increment           Duration `yaml:"increment,omitempty"`
	WaitTimeout         Duration `yaml:"wait_timeout,omitempty"`
	ConfirmTimeout      Duration `yaml:"confirm_timeout,omitempty"`
	RequestDelay        Duration `yaml:"request_delay,omitempty"`
	UserAgents          []string `yaml:"user_agents,omitempty"`
}

// Duration reads Go duration strings such as "2h" or "500ms" from YAML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a configuration with every optional field filled.
func Default() *Config {
	return &Config{
		OutputFolder:   "bookings",
		Increment:      Duration{2 * time.Hour},
		WaitTimeout:    Duration{5 * time.Second},
		ConfirmTimeout: Duration{10 * time.Second},
		RequestDelay:   Duration{time.Second},
	}
}

// Load reads the YAML file at path, expanding ${ENV} placeholders, and
// validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent folder.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks everything that must hold before a session is opened.
func (c *Config) Validate() error {
	required := map[string]string{
		"login_url":         c.LoginURL,
		"location":          c.Location,
		"resource_category": c.ResourceCategory,
	}
	for _, field := range []string{"login_url", "location", "resource_category"} {
		if required[field] == "" {
			return &ValidationError{Field: field, Reason: "is required"}
		}
	}

	if _, _, err := ParseClock("times.start", c.Times.Start); err != nil {
		return err
	}
	if _, _, err := ParseClock("times.end", c.Times.End); err != nil {
		return err
	}
	if _, err := c.loadZone(); err != nil {
		return err
	}
	if _, err := c.day(time.Now()); err != nil {
		return err
	}
	if c.Increment.Duration < 0 {
		return &ValidationError{Field: "increment", Value: c.Increment.String(), Reason: "must not be negative"}
	}
	return nil
}

func (c *Config) loadZone() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, &ValidationError{Field: "timezone", Value: c.Timezone, Reason: err.Error()}
	}
	return loc, nil
}

// Zone is the time zone slot labels and window times are read in. An
// unknown timezone falls back to local time; Validate reports it.
func (c *Config) Zone() *time.Location {
	loc, err := c.loadZone()
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) day(now time.Time) (time.Time, error) {
	loc, err := c.loadZone()
	if err != nil {
		return time.Time{}, err
	}
	if c.Date == "" {
		now = now.In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation("2006-01-02", c.Date, loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Value: c.Date, Reason: "must be YYYY-MM-DD"}
	}
	return day, nil
}

// Window returns the booking window start and end on the configured date,
// or today when no date is set.
func (c *Config) Window(now time.Time) (time.Time, time.Time, error) {
	day, err := c.day(now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := AtClock(day, "times.start", c.Times.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := AtClock(day, "times.end", c.Times.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
