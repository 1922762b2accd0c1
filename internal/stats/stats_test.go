package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/AnshRaj112/moodlog-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func entry(id, date string, mood models.Mood) models.JournalEntry {
	return models.JournalEntry{
		ID:      id,
		Title:   "title " + id,
		Content: "content " + id,
		Mood:    mood,
		Date:    date,
		Time:    "12:00",
		UserID:  "u1",
	}
}

func daysAgo(n int) string {
	return models.FormatDate(testNow.AddDate(0, 0, -n))
}

func TestTotalCount_IgnoresInvalidAndOrder(t *testing.T) {
	entries := []models.JournalEntry{
		entry("a", daysAgo(0), models.MoodHappy),
		entry("b", daysAgo(3), models.MoodSad),
		entry("c", "not-a-date", models.MoodSad),
		entry("d", daysAgo(1), "bored"),
		entry("e", daysAgo(9), models.MoodCalm),
	}

	assert.Equal(t, 3, TotalCount(entries))

	reversed := make([]models.JournalEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	assert.Equal(t, TotalCount(entries), TotalCount(reversed))
}

func TestMoodDistribution_SumsToTotal(t *testing.T) {
	entries := []models.JournalEntry{
		entry("a", daysAgo(0), models.MoodHappy),
		entry("b", daysAgo(0), models.MoodHappy),
		entry("c", daysAgo(2), models.MoodAnxious),
		entry("d", daysAgo(5), models.MoodCalm),
		entry("e", daysAgo(5), "unknown"),
	}

	dist := MoodDistribution(entries)

	sum := 0
	for _, n := range dist {
		sum += n
	}
	assert.Equal(t, TotalCount(entries), sum)
	assert.Equal(t, map[models.Mood]int{models.MoodHappy: 2, models.MoodAnxious: 1, models.MoodCalm: 1}, dist)
}

func TestMoodDistribution_EmptyHasNoPlaceholder(t *testing.T) {
	dist := MoodDistribution(nil)
	require.NotNil(t, dist)
	assert.Empty(t, dist)
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.JournalEntry
		want    int
	}{
		{name: "empty", entries: nil, want: 0},
		{
			name: "three consecutive days",
			entries: []models.JournalEntry{
				entry("a", daysAgo(0), models.MoodHappy),
				entry("b", daysAgo(1), models.MoodSad),
				entry("c", daysAgo(2), models.MoodCalm),
			},
			want: 3,
		},
		{
			name: "gap after today",
			entries: []models.JournalEntry{
				entry("a", daysAgo(0), models.MoodHappy),
				entry("b", daysAgo(3), models.MoodSad),
			},
			want: 1,
		},
		{
			name: "two entries today",
			entries: []models.JournalEntry{
				entry("a", daysAgo(0), models.MoodHappy),
				entry("b", daysAgo(0), models.MoodSad),
			},
			want: 1,
		},
		{
			name: "duplicates inside the run",
			entries: []models.JournalEntry{
				entry("a", daysAgo(1), models.MoodHappy),
				entry("b", daysAgo(0), models.MoodSad),
				entry("c", daysAgo(1), models.MoodCalm),
				entry("d", daysAgo(2), models.MoodCalm),
				entry("e", daysAgo(0), models.MoodCalm),
			},
			want: 3,
		},
		{
			name: "nothing today",
			entries: []models.JournalEntry{
				entry("a", daysAgo(1), models.MoodHappy),
				entry("b", daysAgo(2), models.MoodSad),
			},
			want: 0,
		},
		{
			name: "future entries are skipped",
			entries: []models.JournalEntry{
				entry("f", daysAgo(-2), models.MoodHappy),
				entry("a", daysAgo(0), models.MoodHappy),
				entry("b", daysAgo(1), models.MoodSad),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(tt.entries, testNow))
		})
	}
}

func TestCurrentStreak_DoesNotMutateInput(t *testing.T) {
	entries := []models.JournalEntry{
		entry("b", daysAgo(2), models.MoodSad),
		entry("a", daysAgo(0), models.MoodHappy),
		entry("c", daysAgo(1), models.MoodCalm),
	}
	before := append([]models.JournalEntry(nil), entries...)

	_ = CurrentStreak(entries, testNow)
	_ = Recent(entries, 2)

	assert.Equal(t, before, entries)
}

func TestCurrentStreak_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	now := time.Date(2024, 3, 11, 9, 0, 0, 0, loc)
	entries := []models.JournalEntry{
		entry("a", "2024-03-11", models.MoodHappy),
		entry("b", "2024-03-10", models.MoodHappy),
		entry("c", "2024-03-09", models.MoodHappy),
	}

	assert.Equal(t, 3, CurrentStreak(entries, now))
}

func TestMostCommonMood(t *testing.T) {
	_, ok := MostCommonMood(nil)
	assert.False(t, ok)

	tie := []models.JournalEntry{
		entry("a", daysAgo(0), models.MoodSad),
		entry("b", daysAgo(0), models.MoodHappy),
		entry("c", daysAgo(1), models.MoodHappy),
		entry("d", daysAgo(1), models.MoodSad),
	}
	mood, ok := MostCommonMood(tie)
	require.True(t, ok)
	assert.Equal(t, models.MoodSad, mood)
}

func TestThisWeekCount_WindowEdges(t *testing.T) {
	entries := []models.JournalEntry{
		entry("six", daysAgo(6), models.MoodCalm),
		entry("seven", daysAgo(7), models.MoodCalm),
		entry("eight", daysAgo(8), models.MoodCalm),
		entry("today", daysAgo(0), models.MoodCalm),
		entry("tomorrow", daysAgo(-1), models.MoodCalm),
	}

	assert.Equal(t, 2, ThisWeekCount(entries, testNow))
	assert.Equal(t, 1, ThisWeekCount(entries[:1], testNow))
	assert.Equal(t, 0, ThisWeekCount(entries[2:3], testNow))
}

func TestWeeklyActivity_AlwaysSevenBuckets(t *testing.T) {
	empty := WeeklyActivity(nil, testNow)
	require.Len(t, empty, 7)
	for _, b := range empty {
		assert.Zero(t, b.Count)
	}
	assert.Equal(t, daysAgo(6), empty[0].Date)
	assert.Equal(t, daysAgo(0), empty[6].Date)
	assert.Equal(t, "Wed", empty[6].Label)

	var many []models.JournalEntry
	for i := 0; i < 40; i++ {
		many = append(many, entry(fmt.Sprintf("e%d", i), daysAgo(i%10), models.MoodHappy))
	}
	buckets := WeeklyActivity(many, testNow)
	require.Len(t, buckets, 7)
	assert.Equal(t, 4, buckets[6].Count)
}

func TestWorkedExample(t *testing.T) {
	now := time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)
	entries := []models.JournalEntry{
		entry("1", "2024-01-01", models.MoodHappy),
		entry("2", "2024-01-01", models.MoodSad),
		entry("3", "2024-01-02", models.MoodHappy),
	}

	mood, ok := MostCommonMood(entries)
	require.True(t, ok)
	assert.Equal(t, models.MoodHappy, mood)
	assert.Equal(t, map[models.Mood]int{models.MoodHappy: 2, models.MoodSad: 1}, MoodDistribution(entries))
	assert.Equal(t, 2, CurrentStreak(entries, now))
}
