// Package store is the boundary to the external journal store: per-user entry
// records, change notifications, and settings/profile documents.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/AnshRaj112/moodlog-backend/internal/models"
)

var (
	ErrNotFound = errors.New("store: record not found")
	ErrClosed   = errors.New("store: closed")
)

// Record is the wire form of a journal entry. The id is not part of the record: it
// is the storage key.
type Record struct {
	Title     string `bson:"title" json:"title"`
	Content   string `bson:"content" json:"content"`
	Mood      string `bson:"mood" json:"mood"`
	Date      string `bson:"date" json:"date"`
	Time      string `bson:"time" json:"time"`
	CreatedAt string `bson:"created_at" json:"createdAt"` // ISO-8601
	UserID    string `bson:"user_id" json:"userId"`
}

// KeyedRecord pairs a record with its storage key.
type KeyedRecord struct {
	ID     string
	Record Record
}

// EntryStore reads and writes the records of one user's entry collection.
type EntryStore interface {
	List(ctx context.Context, userID string) ([]KeyedRecord, error)
	ListByDate(ctx context.Context, userID, date string) ([]KeyedRecord, error)
	Get(ctx context.Context, userID, id string) (Record, error)
	Insert(ctx context.Context, userID string, rec Record) (string, error)
	Replace(ctx context.Context, userID, id string, rec Record) error
	Delete(ctx context.Context, userID, id string) error
}

// ChangeFeed announces that a user's entry collection changed. Notifications carry
// no payload; subscribers re-read the collection.
type ChangeFeed interface {
	Publish(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, userID string, onChange func()) (cancel func(), err error)
}

// UserStore persists settings and profile documents.
type UserStore interface {
	GetSettings(ctx context.Context, userID string) (models.UserSettings, error)
	SaveSettings(ctx context.Context, userID string, s models.UserSettings) error
	GetProfile(ctx context.Context, userID string) (models.UserProfile, error)
	SaveProfile(ctx context.Context, userID string, p models.UserProfile) error
}

// EncodeRecord converts an entry to its wire form.
func EncodeRecord(e models.JournalEntry) Record {
	return Record{
		Title:     e.Title,
		Content:   e.Content,
		Mood:      string(e.Mood),
		Date:      e.Date,
		Time:      e.Time,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
		UserID:    e.UserID,
	}
}

// DecodeRecord converts a stored record back into an entry. It does not validate;
// an unparsable createdAt is left zero since it plays no role in validity.
func DecodeRecord(id string, r Record) models.JournalEntry {
	e := models.JournalEntry{
		ID:      id,
		Title:   r.Title,
		Content: r.Content,
		Mood:    models.Mood(r.Mood),
		Date:    r.Date,
		Time:    r.Time,
		UserID:  r.UserID,
	}
	if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
		e.CreatedAt = t
	}
	return e
}
