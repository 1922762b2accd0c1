package stats

import (
	"testing"
	"time"

	"github.com/AnshRaj112/moodlog-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	entries := []models.JournalEntry{
		entry("a", daysAgo(0), models.MoodHappy),
		entry("b", daysAgo(0), models.MoodCalm),
		entry("c", daysAgo(1), models.MoodHappy),
		entry("d", daysAgo(4), models.MoodSad),
		entry("e", daysAgo(20), models.MoodSad),
	}

	s := Summarize(entries, testNow)

	assert.Equal(t, "2024-01-10", s.Date)
	assert.Equal(t, 5, s.TotalEntries)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, models.MoodHappy, s.MostCommonMood)
	assert.Equal(t, 4, s.ThisWeekEntries)
	assert.Equal(t, 2, s.TodayEntries)
	assert.Equal(t, 4, s.DaysJournaled)
	assert.Len(t, s.WeeklyActivity, 7)
	assert.Equal(t, []MoodCount{
		{Mood: models.MoodHappy, Count: 2},
		{Mood: models.MoodSad, Count: 2},
		{Mood: models.MoodCalm, Count: 1},
	}, s.TopMoods)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, testNow)

	assert.Zero(t, s.TotalEntries)
	assert.Zero(t, s.CurrentStreak)
	assert.Empty(t, s.MostCommonMood)
	assert.Empty(t, s.MoodDistribution)
	assert.NotNil(t, s.TopMoods)
	assert.Len(t, s.WeeklyActivity, 7)
}

func TestTopMoods_Limit(t *testing.T) {
	entries := []models.JournalEntry{
		entry("a", daysAgo(0), models.MoodCalm),
		entry("b", daysAgo(0), models.MoodAngry),
		entry("c", daysAgo(0), models.MoodAngry),
		entry("d", daysAgo(0), models.MoodExcited),
		entry("e", daysAgo(0), models.MoodAnxious),
	}

	top := TopMoods(entries, 2)

	require.Len(t, top, 2)
	assert.Equal(t, models.MoodAngry, top[0].Mood)
	assert.Equal(t, models.MoodCalm, top[1].Mood)
}

func TestRecent_NewestFirst(t *testing.T) {
	early := entry("early", daysAgo(0), models.MoodCalm)
	early.Time = "07:00"
	late := entry("late", daysAgo(0), models.MoodCalm)
	late.Time = "21:00"
	old := entry("old", daysAgo(5), models.MoodSad)
	broken := entry("broken", daysAgo(0), models.MoodSad)
	broken.Title = ""

	got := Recent([]models.JournalEntry{old, early, broken, late}, 5)

	require.Len(t, got, 3)
	assert.Equal(t, "late", got[0].ID)
	assert.Equal(t, "early", got[1].ID)
	assert.Equal(t, "old", got[2].ID)

	assert.Len(t, Recent([]models.JournalEntry{old, early, late}, 1), 1)
}

func TestMonthCalendar(t *testing.T) {
	entries := []models.JournalEntry{
		entry("a", "2024-02-01", models.MoodCalm),
		entry("b", "2024-02-29", models.MoodCalm),
		entry("c", "2024-02-29", models.MoodHappy),
		entry("d", "2024-03-01", models.MoodHappy),
	}

	days := MonthCalendar(entries, 2024, time.February)

	require.Len(t, days, 29)
	assert.Equal(t, "2024-02-01", days[0].Date)
	assert.Equal(t, "Thu", days[0].Label)
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, 2, days[28].Count)

	total := 0
	for _, d := range days {
		total += d.Count
	}
	assert.Equal(t, 3, total)
}
