// Package config loads the mma-calendar YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/mma-calendar/internal/calendar"
	"github.com/pfrederiksen/mma-calendar/internal/logger"
	"github.com/pfrederiksen/mma-calendar/internal/storage"
)

const (
	DefaultScheduleURL   = "https://www.mmafighting.com/schedule"
	DefaultDataDir       = "~/.local/share/mma-calendar"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultFetchRetries  = 3
	DefaultLogLevel      = "info"
	DefaultWatchSchedule = "0 */6 * * *"
	DefaultCalendarFile  = "mma.ics"
)

// SupportedEventTypes are the schedule pages the parser understands
var SupportedEventTypes = []string{"ufc", "bellator"}

// CalendarConfig describes one calendar file
type CalendarConfig struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
	// Path is the .ics file; relative paths are inside DataDir
	Path    string `yaml:"path"`
	Primary bool   `yaml:"primary"`
	Hidden  bool   `yaml:"hidden,omitempty"`
}

// Config is the top-level application configuration
type Config struct {
	// ScheduleURL is the schedule root; each event type is a path segment below it
	ScheduleURL string `yaml:"schedule_url"`

	// EventTypes lists the schedule pages scraped on every run
	EventTypes []string `yaml:"event_types"`

	// DataDir holds the event id map and relative calendar files
	DataDir string `yaml:"data_dir"`

	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	FetchRetries int           `yaml:"fetch_retries"`
	UserAgent    string        `yaml:"user_agent,omitempty"`

	LogLevel string `yaml:"log_level"`

	// WatchSchedule is a standard 5-field cron spec used by the watch command
	WatchSchedule string `yaml:"watch_schedule"`

	Calendars []CalendarConfig `yaml:"calendars"`
}

// DefaultPath returns ~/.config/mma-calendar/config.yaml (or the platform equivalent)
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "mma-calendar.yaml"
	}
	return filepath.Join(dir, "mma-calendar", "config.yaml")
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	cfg := &Config{FetchRetries: DefaultFetchRetries}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values with defaults
func (c *Config) Normalize() {
	if c.ScheduleURL == "" {
		c.ScheduleURL = DefaultScheduleURL
	}
	c.ScheduleURL = strings.TrimRight(c.ScheduleURL, "/")

	if len(c.EventTypes) == 0 {
		c.EventTypes = append([]string(nil), SupportedEventTypes...)
	}
	for i, t := range c.EventTypes {
		c.EventTypes[i] = strings.ToLower(strings.TrimSpace(t))
	}

	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.FetchRetries < 0 {
		c.FetchRetries = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.WatchSchedule == "" {
		c.WatchSchedule = DefaultWatchSchedule
	}
	if len(c.Calendars) == 0 {
		c.Calendars = []CalendarConfig{{
			ID:      1,
			Name:    "MMA Events",
			Path:    DefaultCalendarFile,
			Primary: true,
		}}
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	for _, t := range c.EventTypes {
		if err := ValidateEventType(t); err != nil {
			return err
		}
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if _, err := cron.ParseStandard(c.WatchSchedule); err != nil {
		return fmt.Errorf("invalid watch_schedule %q: %w", c.WatchSchedule, err)
	}

	seen := make(map[int64]bool)
	for _, cal := range c.Calendars {
		if cal.Path == "" {
			return fmt.Errorf("calendar %d has no path", cal.ID)
		}
		if seen[cal.ID] {
			return fmt.Errorf("duplicate calendar id %d", cal.ID)
		}
		seen[cal.ID] = true
	}
	return nil
}

// ValidateEventType reports an error unless eventType is a schedule page
// the parser understands
func ValidateEventType(eventType string) error {
	for _, t := range SupportedEventTypes {
		if t == eventType {
			return nil
		}
	}
	return fmt.Errorf("unsupported event type %q (want one of %s)", eventType, strings.Join(SupportedEventTypes, ", "))
}

// CalendarSources resolves the configured calendars into ICS store sources
func (c *Config) CalendarSources() ([]calendar.Source, error) {
	dataDir, err := storage.ExpandHome(c.DataDir)
	if err != nil {
		return nil, err
	}

	sources := make([]calendar.Source, 0, len(c.Calendars))
	for _, cal := range c.Calendars {
		path, err := storage.ExpandHome(cal.Path)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		sources = append(sources, calendar.Source{
			ID:      cal.ID,
			Name:    cal.Name,
			Path:    path,
			Primary: cal.Primary,
			Visible: !cal.Hidden,
		})
	}
	return sources, nil
}

// Load reads the YAML file at path. A missing file is created with defaults;
// if it cannot be written the defaults are still returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				logger.Warn("Could not write default config; using defaults", logger.Fields{
					"path":  path,
					"error": err.Error(),
				})
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// fields absent from the file keep these values
	cfg := Config{FetchRetries: DefaultFetchRetries}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML through a temp file and rename
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".mma-calendar-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
