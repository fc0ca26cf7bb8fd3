package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileName is the id map file inside the data directory
const FileName = "event_ids.json"

// record is the on-disk layout
type record struct {
	Events    map[string]string `json:"events"`     // event name → calendar event id
	UpdatedAt string            `json:"updated_at"` // RFC3339 timestamp
}

// Storage is a durable event-name → calendar-id map. Safe for concurrent use.
type Storage struct {
	mu   sync.Mutex
	path  string
	ids   map[string]string
	dirty bool // in-memory entries not yet written
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// New opens the id map in dataDir, creating the directory if needed.
// A missing file is an empty map.
func New(dataDir string) (*Storage, error) {
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Storage{
		path: filepath.Join(dataDir, FileName),
		ids:  make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading id map: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("parsing id map: %w", err)
	}
	if rec.Events != nil {
		s.ids = rec.Events
	}
	return nil
}

// Path returns the id map file location
func (s *Storage) Path() string {
	return s.path
}

// Lookup returns the calendar event id stored for name
func (s *Storage) Lookup(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.ids[name]
	return id, ok
}

// Store records id for name and flushes the whole map to disk.
// If the write fails the entry stays in memory, so this process keeps
// treating the event as known, and the map is written again on the next
// Store or Flush.
func (s *Storage) Store(name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids[name] = id
	return s.flush()
}

// Flush writes the map if an earlier write failed
func (s *Storage) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	return s.flush()
}

// Dirty reports whether the map holds entries not yet on disk
func (s *Storage) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Len returns the number of known events
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// flush writes the map via a temp file and rename so a crash never leaves
// a half-written file behind. Caller holds s.mu.
func (s *Storage) flush() error {
	s.dirty = true

	rec := record{
		Events:    s.ids,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding id map: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing id map: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing id map: %w", err)
	}
	s.dirty = false
	return nil
}
