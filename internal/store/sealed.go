package store

import (
	"context"

	"github.com/AnshRaj112/moodlog-backend/pkg/utils"
)

// Sealed wraps an EntryStore so that title and content are encrypted at rest.
// A record that cannot be opened comes back with empty text and is therefore
// dropped by the validity check upstream.
type Sealed struct {
	inner  EntryStore
	sealer *utils.Sealer
}

func NewSealed(inner EntryStore, sealer *utils.Sealer) *Sealed {
	return &Sealed{inner: inner, sealer: sealer}
}

func (s *Sealed) seal(userID string, rec Record) (Record, error) {
	var err error
	if rec.Title, err = s.sealer.Seal(userID, rec.Title); err != nil {
		return Record{}, err
	}
	if rec.Content, err = s.sealer.Seal(userID, rec.Content); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Sealed) open(userID string, rec Record) Record {
	title, err := s.sealer.Open(userID, rec.Title)
	if err != nil {
		title = ""
	}
	content, err := s.sealer.Open(userID, rec.Content)
	if err != nil {
		content = ""
	}
	rec.Title, rec.Content = title, content
	return rec
}

func (s *Sealed) openAll(userID string, recs []KeyedRecord) []KeyedRecord {
	for i := range recs {
		recs[i].Record = s.open(userID, recs[i].Record)
	}
	return recs
}

func (s *Sealed) List(ctx context.Context, userID string) ([]KeyedRecord, error) {
	recs, err := s.inner.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.openAll(userID, recs), nil
}

func (s *Sealed) ListByDate(ctx context.Context, userID, date string) ([]KeyedRecord, error) {
	recs, err := s.inner.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return s.openAll(userID, recs), nil
}

func (s *Sealed) Get(ctx context.Context, userID, id string) (Record, error) {
	rec, err := s.inner.Get(ctx, userID, id)
	if err != nil {
		return Record{}, err
	}
	return s.open(userID, rec), nil
}

func (s *Sealed) Insert(ctx context.Context, userID string, rec Record) (string, error) {
	sealed, err := s.seal(userID, rec)
	if err != nil {
		return "", err
	}
	return s.inner.Insert(ctx, userID, sealed)
}

func (s *Sealed) Replace(ctx context.Context, userID, id string, rec Record) error {
	sealed, err := s.seal(userID, rec)
	if err != nil {
		return err
	}
	return s.inner.Replace(ctx, userID, id, sealed)
}

func (s *Sealed) Delete(ctx context.Context, userID, id string) error {
	return s.inner.Delete(ctx, userID, id)
}
