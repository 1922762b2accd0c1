package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntry() JournalEntry {
	return JournalEntry{
		ID:      "e1",
		Title:   "Morning",
		Content: "Slept well",
		Mood:    MoodCalm,
		Date:    "2024-03-10",
		Time:    "08:15",
		UserID:  "u1",
	}
}

func TestJournalEntry_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *JournalEntry)
		userID string
		want   bool
	}{
		{name: "complete entry", mutate: func(e *JournalEntry) {}, userID: "u1", want: true},
		{name: "no owner check", mutate: func(e *JournalEntry) { e.UserID = "other" }, userID: "", want: true},
		{name: "missing id", mutate: func(e *JournalEntry) { e.ID = "" }, userID: "u1", want: false},
		{name: "blank title", mutate: func(e *JournalEntry) { e.Title = "   " }, userID: "u1", want: false},
		{name: "missing content", mutate: func(e *JournalEntry) { e.Content = "" }, userID: "u1", want: false},
		{name: "missing date", mutate: func(e *JournalEntry) { e.Date = "" }, userID: "u1", want: false},
		{name: "malformed date", mutate: func(e *JournalEntry) { e.Date = "10/03/2024" }, userID: "u1", want: false},
		{name: "unknown mood", mutate: func(e *JournalEntry) { e.Mood = "bored" }, userID: "u1", want: false},
		{name: "empty mood", mutate: func(e *JournalEntry) { e.Mood = "" }, userID: "u1", want: false},
		{name: "foreign owner", mutate: func(e *JournalEntry) { e.UserID = "u2" }, userID: "u1", want: false},
		{name: "empty time is fine", mutate: func(e *JournalEntry) { e.Time = "" }, userID: "u1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(&e)
			assert.Equal(t, tt.want, e.IsValid(tt.userID))
		})
	}
}

func TestMood_IsValid(t *testing.T) {
	for _, m := range Moods {
		assert.True(t, m.IsValid(), m)
	}
	assert.False(t, Mood("Happy").IsValid())
	assert.False(t, Mood("").IsValid())
}

func TestFilterValid_KeepsOrder(t *testing.T) {
	a := validEntry()
	b := validEntry()
	b.ID = "e2"
	bad := validEntry()
	bad.ID = "e3"
	bad.Mood = "meh"
	c := validEntry()
	c.ID = "e4"

	got := FilterValid([]JournalEntry{a, bad, b, c}, "u1")

	require.Len(t, got, 3)
	assert.Equal(t, []string{"e1", "e2", "e4"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestJournalEntry_Day(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	e := validEntry()

	day, err := e.Day(loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, loc), day)
	assert.Equal(t, "2024-03-10", FormatDate(day))
}

func TestDefaultUserSettings(t *testing.T) {
	s := DefaultUserSettings()
	assert.Equal(t, ThemeSystem, s.Theme)
	assert.True(t, s.Notifications)
	assert.Equal(t, PrivacyPrivate, s.Privacy)
	assert.True(t, s.Theme.IsValid())
	assert.True(t, s.Privacy.IsValid())
	assert.False(t, Theme("neon").IsValid())
}
