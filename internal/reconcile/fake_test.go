package reconcile

import (
	"context"
	"fmt"
	"sync"
)

// fakeCalendar is an in-memory Calendar that records every call
type fakeCalendar struct {
	mu sync.Mutex

	calendars []CalendarInfo
	listErr   error
	insertErr error
	updateErr error

	inserts []EventFields
	updates map[string][]string // id → descriptions written, in order
	nextID  int
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{updates: make(map[string][]string)}
}

func (f *fakeCalendar) Calendars(ctx context.Context) ([]CalendarInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.calendars, nil
}

func (f *fakeCalendar) Insert(ctx context.Context, fields EventFields) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.nextID++
	f.inserts = append(f.inserts, fields)
	return fmt.Sprintf("evt-%d", f.nextID), nil
}

func (f *fakeCalendar) UpdateDescription(ctx context.Context, id, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates[id] = append(f.updates[id], description)
	return nil
}

func (f *fakeCalendar) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserts)
}

// memIDMap is an in-memory IDMap
type memIDMap struct {
	mu       sync.Mutex
	ids      map[string]string
	storeErr error
}

func newMemIDMap() *memIDMap {
	return &memIDMap{ids: make(map[string]string)}
}

func (m *memIDMap) Lookup(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.ids[name]
	return id, ok
}

func (m *memIDMap) Store(name, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.ids[name] = id
	return nil
}
