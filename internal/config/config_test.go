package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ScheduleURL != DefaultScheduleURL {
		t.Errorf("ScheduleURL = %q", cfg.ScheduleURL)
	}
	if !reflect.DeepEqual(cfg.EventTypes, []string{"ufc", "bellator"}) {
		t.Errorf("EventTypes = %v", cfg.EventTypes)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v", cfg.FetchTimeout)
	}
	if len(cfg.Calendars) != 1 || !cfg.Calendars[0].Primary {
		t.Errorf("Calendars = %+v", cfg.Calendars)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file not written: %v", err)
	}

	// Reloading the written file gives the same config
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of written default error = %v", err)
	}
	if !reflect.DeepEqual(cfg, again) {
		t.Errorf("reloaded config differs:\n got %+v\nwant %+v", again, cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlText := `
schedule_url: https://example.com/schedule/
event_types: [UFC]
data_dir: /var/lib/mma
fetch_timeout: 5s
fetch_retries: 1
log_level: debug
watch_schedule: "*/30 * * * *"
calendars:
  - id: 2
    name: Work
    path: work.ics
  - id: 5
    name: Fights
    path: /srv/cal/fights.ics
    primary: true
  - id: 7
    name: Hidden
    path: hidden.ics
    hidden: true
`
	if err := os.WriteFile(path, []byte(yamlText), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ScheduleURL != "https://example.com/schedule" {
		t.Errorf("ScheduleURL = %q, want trailing slash trimmed", cfg.ScheduleURL)
	}
	if !reflect.DeepEqual(cfg.EventTypes, []string{"ufc"}) {
		t.Errorf("EventTypes = %v", cfg.EventTypes)
	}
	if cfg.FetchTimeout != 5*time.Second || cfg.FetchRetries != 1 {
		t.Errorf("fetch settings = %v / %d", cfg.FetchTimeout, cfg.FetchRetries)
	}
	if cfg.LogLevel != "debug" || cfg.WatchSchedule != "*/30 * * * *" {
		t.Errorf("LogLevel = %q WatchSchedule = %q", cfg.LogLevel, cfg.WatchSchedule)
	}

	sources, err := cfg.CalendarSources()
	if err != nil {
		t.Fatalf("CalendarSources() error = %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sources))
	}
	if sources[0].Path != "/var/lib/mma/work.ics" || !sources[0].Visible {
		t.Errorf("sources[0] = %+v", sources[0])
	}
	if sources[1].Path != "/srv/cal/fights.ics" || !sources[1].Primary {
		t.Errorf("sources[1] = %+v", sources[1])
	}
	if sources[2].Visible {
		t.Errorf("hidden calendar should not be visible")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown event type",
			yaml:    "event_types: [pfl]\n",
			wantErr: "unsupported event type",
		},
		{
			name:    "bad log level",
			yaml:    "log_level: loud\n",
			wantErr: "unknown log level",
		},
		{
			name:    "bad cron spec",
			yaml:    "watch_schedule: every hour\n",
			wantErr: "invalid watch_schedule",
		},
		{
			name:    "duplicate calendar ids",
			yaml:    "calendars:\n  - {id: 1, path: a.ics}\n  - {id: 1, path: b.ics}\n",
			wantErr: "duplicate calendar id",
		},
		{
			name:    "calendar without path",
			yaml:    "calendars:\n  - {id: 1}\n",
			wantErr: "has no path",
		},
		{
			name:    "malformed yaml",
			yaml:    "event_types: [ufc\n",
			wantErr: "parsing config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_DefaultsWhenFileCannotBeWritten(t *testing.T) {
	dir := t.TempDir()
	// A dangling symlink in place of the config directory makes Save fail
	link := filepath.Join(dir, "config-dir")
	if err := os.Symlink(filepath.Join(dir, "missing"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	path := filepath.Join(link, "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v, want defaults", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("config file should not exist")
	}
}

func TestValidateEventType(t *testing.T) {
	tests := []struct {
		eventType string
		wantErr   bool
	}{
		{"ufc", false},
		{"bellator", false},
		{"UFC", true},
		{"pfl", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateEventType(tt.eventType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEventType(%q) error = %v, wantErr %v", tt.eventType, err, tt.wantErr)
		}
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestCalendarSources_DefaultInDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/mma-data"

	sources, err := cfg.CalendarSources()
	if err != nil {
		t.Fatalf("CalendarSources() error = %v", err)
	}
	if len(sources) != 1 || sources[0].Path != "/tmp/mma-data/mma.ics" {
		t.Errorf("sources = %+v", sources)
	}
}
