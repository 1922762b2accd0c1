package store

import (
	"context"
	"sort"
	"sync"

	"github.com/AnshRaj112/moodlog-backend/internal/models"
	"github.com/google/uuid"
)

// Memory is an in-process store used by STORE_DRIVER=memory and by tests. It
// implements EntryStore, ChangeFeed and UserStore.
type Memory struct {
	mu       sync.RWMutex
	entries  map[string]map[string]Record // user -> id -> record
	order    map[string][]string          // user -> ids in insertion order
	settings map[string]models.UserSettings
	profiles map[string]models.UserProfile

	subMu sync.RWMutex
	subs  map[string]map[string]func()
}

func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[string]map[string]Record),
		order:    make(map[string][]string),
		settings: make(map[string]models.UserSettings),
		profiles: make(map[string]models.UserProfile),
		subs:     make(map[string]map[string]func()),
	}
}

func (m *Memory) List(ctx context.Context, userID string) ([]KeyedRecord, error) {
	return m.list(ctx, userID, func(Record) bool { return true })
}

func (m *Memory) ListByDate(ctx context.Context, userID, date string) ([]KeyedRecord, error) {
	return m.list(ctx, userID, func(r Record) bool { return r.Date == date })
}

func (m *Memory) list(ctx context.Context, userID string, keep func(Record) bool) ([]KeyedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]KeyedRecord, 0, len(m.order[userID]))
	for _, id := range m.order[userID] {
		rec := m.entries[userID][id]
		if keep(rec) {
			out = append(out, KeyedRecord{ID: id, Record: rec})
		}
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, userID, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.entries[userID][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) Insert(ctx context.Context, userID string, rec Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[userID] == nil {
		m.entries[userID] = make(map[string]Record)
	}
	m.entries[userID][id] = rec
	m.order[userID] = append(m.order[userID], id)
	return id, nil
}

func (m *Memory) Replace(ctx context.Context, userID, id string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[userID][id]; !ok {
		return ErrNotFound
	}
	m.entries[userID][id] = rec
	return nil
}

// Put stores rec under an explicit key, bypassing id assignment. Used to seed
// fixtures, including malformed ones.
func (m *Memory) Put(userID, id string, rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[userID] == nil {
		m.entries[userID] = make(map[string]Record)
	}
	if _, exists := m.entries[userID][id]; !exists {
		m.order[userID] = append(m.order[userID], id)
	}
	m.entries[userID][id] = rec
}

func (m *Memory) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[userID][id]; !ok {
		return ErrNotFound
	}
	delete(m.entries[userID], id)
	ids := m.order[userID]
	for i, v := range ids {
		if v == id {
			m.order[userID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Publish runs every subscriber of userID synchronously, in subscription-id order,
// on the publishing goroutine. Subscribers must not block on slow consumers.
func (m *Memory) Publish(ctx context.Context, userID string) error {
	m.subMu.RLock()
	ids := make([]string, 0, len(m.subs[userID]))
	for id := range m.subs[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[userID][id])
	}
	m.subMu.RUnlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, userID string, onChange func()) (func(), error) {
	id := uuid.NewString()

	m.subMu.Lock()
	if m.subs[userID] == nil {
		m.subs[userID] = make(map[string]func())
	}
	m.subs[userID][id] = onChange
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs[userID], id)
			if len(m.subs[userID]) == 0 {
				delete(m.subs, userID)
			}
			m.subMu.Unlock()
		})
	}, nil
}

// Subscribers returns how many live subscriptions userID has.
func (m *Memory) Subscribers(userID string) int {
	m.subMu.RLock()
	defer m.subMu.RUnlock()
	return len(m.subs[userID])
}

func (m *Memory) GetSettings(ctx context.Context, userID string) (models.UserSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[userID]
	if !ok {
		return models.UserSettings{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) SaveSettings(ctx context.Context, userID string, s models.UserSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[userID] = s
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return models.UserProfile{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) SaveProfile(ctx context.Context, userID string, p models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = p
	return nil
}
