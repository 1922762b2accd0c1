// Package journal adapts the external entry store into validated, per-user entry
// collections: one-shot queries, live snapshot subscriptions and pass-through writes.
package journal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/AnshRaj112/moodlog-backend/internal/metrics"
	"github.com/AnshRaj112/moodlog-backend/internal/models"
	"github.com/AnshRaj112/moodlog-backend/internal/store"
)

var (
	ErrNoUser           = errors.New("journal: no authenticated user")
	ErrSessionClosed    = errors.New("journal: session closed")
	ErrStoreUnavailable = errors.New("journal: store unavailable")
	ErrNotFound         = errors.New("journal: entry not found")
	ErrInvalidEntry     = errors.New("journal: invalid entry")
)

const (
	timeLayout   = "15:04"
	fetchTimeout = 5 * time.Second
)

// EntryInput carries the caller-editable fields of an entry.
type EntryInput struct {
	Title   string
	Content string
	Mood    models.Mood
	Date    string // optional on Add; defaults to today
	Time    string // optional; defaults to now
}

// Session is the journal handle of one authenticated user. Create it at login (or
// per request) and Close it at logout; Close tears down every subscription it opened.
type Session struct {
	userID  string
	entries store.EntryStore
	feed    store.ChangeFeed
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	closed bool
	subs   map[*subscription]struct{}
}

type Option func(*Session)

// WithLogger sets the logger used for swallowed store failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func NewSession(userID string, entries store.EntryStore, feed store.ChangeFeed, opts ...Option) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrNoUser
	}
	s := &Session{
		userID:  userID,
		entries: entries,
		feed:    feed,
		log:     zerolog.Nop(),
		now:     time.Now,
		subs:    make(map[*subscription]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "journal").Str("user_id", userID).Logger()
	return s, nil
}

func (s *Session) UserID() string { return s.userID }

// Now returns the session clock's current time.
func (s *Session) Now() time.Time { return s.now() }

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// storeFailure logs the raw cause and converts it to ErrStoreUnavailable so no
// driver error leaves this package.
func (s *Session) storeFailure(op string, err error) error {
	metrics.StoreFailure(op)
	s.log.Error().Err(err).Str("op", op).Msg("store operation failed")
	return ErrStoreUnavailable
}

func (s *Session) decode(recs []store.KeyedRecord) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(recs))
	dropped := 0
	for _, kr := range recs {
		e := store.DecodeRecord(kr.ID, kr.Record)
		if !e.IsValid(s.userID) {
			dropped++
			continue
		}
		out = append(out, e)
	}
	if dropped > 0 {
		s.log.Debug().Int("dropped", dropped).Msg("skipped malformed entries")
	}
	return out
}

// FetchAll returns every valid entry of the user in store order. An empty slice means
// the user has no entries; a failed read returns ErrStoreUnavailable instead.
func (s *Session) FetchAll(ctx context.Context) ([]models.JournalEntry, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}
	recs, err := s.entries.List(ctx, s.userID)
	if err != nil {
		return nil, s.storeFailure("list", err)
	}
	return s.decode(recs), nil
}

// FetchByDate returns the valid entries whose journal day is date (YYYY-MM-DD).
func (s *Session) FetchByDate(ctx context.Context, date string) ([]models.JournalEntry, error) {
	if s.isClosed() {
		return nil, ErrSessionClosed
	}
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidEntry
	}
	recs, err := s.entries.ListByDate(ctx, s.userID, models.FormatDate(day))
	if err != nil {
		return nil, s.storeFailure("list_by_date", err)
	}
	return s.decode(recs), nil
}

// Get returns one valid entry by id.
func (s *Session) Get(ctx context.Context, id string) (models.JournalEntry, error) {
	if s.isClosed() {
		return models.JournalEntry{}, ErrSessionClosed
	}
	rec, err := s.entries.Get(ctx, s.userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.JournalEntry{}, ErrNotFound
	}
	if err != nil {
		return models.JournalEntry{}, s.storeFailure("get", err)
	}
	e := store.DecodeRecord(id, rec)
	if !e.IsValid(s.userID) {
		return models.JournalEntry{}, ErrNotFound
	}
	return e, nil
}

func validateInput(in EntryInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return ErrInvalidEntry
	}
	if !in.Mood.IsValid() {
		return ErrInvalidEntry
	}
	if in.Date != "" {
		if _, err := models.ParseDate(in.Date); err != nil {
			return ErrInvalidEntry
		}
	}
	return nil
}

// Add creates an entry and returns the id assigned by the store.
func (s *Session) Add(ctx context.Context, in EntryInput) (string, error) {
	if s.isClosed() {
		return "", ErrSessionClosed
	}
	if err := validateInput(in); err != nil {
		return "", err
	}

	now := s.now()
	e := models.JournalEntry{
		Title:     in.Title,
		Content:   in.Content,
		Mood:      in.Mood,
		Date:      in.Date,
		Time:      in.Time,
		CreatedAt: now,
		UserID:    s.userID,
	}
	if e.Date == "" {
		e.Date = models.FormatDate(now)
	} else {
		d, _ := models.ParseDate(e.Date)
		e.Date = models.FormatDate(d)
	}
	if e.Time == "" {
		e.Time = now.Format(timeLayout)
	}

	id, err := s.entries.Insert(ctx, s.userID, store.EncodeRecord(e))
	if err != nil {
		return "", s.storeFailure("insert", err)
	}
	s.notify(ctx)
	return id, nil
}

// Update overwrites the editable fields (title, content, mood, time) of the stored
// entry with e.ID. An empty Time keeps the stored one. Date, creation time and owner
// are kept from the stored record, and the record must belong to this session's user.
func (s *Session) Update(ctx context.Context, e models.JournalEntry) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if strings.TrimSpace(e.ID) == "" {
		return ErrInvalidEntry
	}
	if err := validateInput(EntryInput{Title: e.Title, Content: e.Content, Mood: e.Mood}); err != nil {
		return err
	}

	current, err := s.entries.Get(ctx, s.userID, e.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return s.storeFailure("get", err)
	}
	if current.UserID != "" && current.UserID != s.userID {
		return ErrNotFound
	}

	next := current
	next.Title = e.Title
	next.Content = e.Content
	next.Mood = string(e.Mood)
	if e.Time != "" {
		next.Time = e.Time
	}
	next.UserID = s.userID

	err = s.entries.Replace(ctx, s.userID, e.ID, next)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return s.storeFailure("replace", err)
	}
	s.notify(ctx)
	return nil
}

// Delete removes the entry with the given id.
func (s *Session) Delete(ctx context.Context, id string) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if strings.TrimSpace(id) == "" {
		return ErrInvalidEntry
	}
	err := s.entries.Delete(ctx, s.userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return s.storeFailure("delete", err)
	}
	s.notify(ctx)
	return nil
}

// notify announces a successful write. A failed announcement does not undo the
// write; live subscribers catch up on the next change.
func (s *Session) notify(ctx context.Context) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, s.userID); err != nil {
		metrics.StoreFailure("publish")
		s.log.Warn().Err(err).Msg("failed to publish entry change")
	}
}

// Close cancels every live subscription opened through the session. Further calls
// on the session return ErrSessionClosed. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
	}
}
