package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for JournalEntry.Date.
const DateLayout = "2006-01-02"

// Mood is the emotional tag attached to an entry. The set is closed.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
	MoodExcited Mood = "excited"
	MoodCalm    Mood = "calm"
	MoodAnxious Mood = "anxious"
)

// Moods lists every recognised mood in display order.
var Moods = []Mood{MoodHappy, MoodSad, MoodAngry, MoodExcited, MoodCalm, MoodAnxious}

func (m Mood) String() string { return string(m) }

func (m Mood) IsValid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodAngry, MoodExcited, MoodCalm, MoodAnxious:
		return true
	}
	return false
}

// JournalEntry represents a single mood-journal record owned by one user
type JournalEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      Mood      `json:"mood"`
	Date      string    `json:"date"` // journal day, YYYY-MM-DD
	Time      string    `json:"time"` // display only
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
}

// IsValid reports whether the entry can take part in listings and statistics.
// When userID is non-empty the entry must also belong to that user.
func (e JournalEntry) IsValid(userID string) bool {
	if strings.TrimSpace(e.ID) == "" ||
		strings.TrimSpace(e.Title) == "" ||
		strings.TrimSpace(e.Content) == "" ||
		strings.TrimSpace(e.Date) == "" {
		return false
	}
	if !e.Mood.IsValid() {
		return false
	}
	if _, err := ParseDate(e.Date); err != nil {
		return false
	}
	if userID != "" && e.UserID != userID {
		return false
	}
	return true
}

// Day returns the entry's journal day at midnight in loc.
func (e JournalEntry) Day(loc *time.Location) (time.Time, error) {
	d, err := ParseDate(e.Date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), nil
}

// ParseDate parses a YYYY-MM-DD journal day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate renders t's calendar day in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FilterValid returns the entries that pass IsValid(userID), in input order.
func FilterValid(entries []JournalEntry, userID string) []JournalEntry {
	out := make([]JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsValid(userID) {
			out = append(out, e)
		}
	}
	return out
}
