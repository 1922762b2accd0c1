// Package stats derives dashboard statistics from a snapshot of journal entries.
//
// Every function is a pure function of its arguments: inputs are never mutated and
// "now" is always passed in. Entries that fail models.JournalEntry.IsValid are ignored.
package stats

import (
	"sort"
	"time"

	"github.com/AnshRaj112/moodlog-backend/internal/models"
)

const secondsPerDay = 24 * 60 * 60

// DayBucket counts the entries written on one calendar day.
type DayBucket struct {
	Date  string `json:"date"`
	Label string `json:"day"`
	Count int    `json:"entries"`
}

// MoodCount is one row of a mood histogram.
type MoodCount struct {
	Mood  models.Mood `json:"mood"`
	Count int         `json:"count"`
}

// dayNumber maps a civil date to a day index so that differences are exact whole days
// regardless of DST transitions in the caller's location.
func dayNumber(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

func todayNumber(now time.Time) int64 {
	y, m, d := now.Date()
	return dayNumber(y, m, d)
}

func entryDayNumber(e models.JournalEntry) (int64, bool) {
	t, err := models.ParseDate(e.Date)
	if err != nil {
		return 0, false
	}
	return dayNumber(t.Year(), t.Month(), t.Day()), true
}

func valid(entries []models.JournalEntry) []models.JournalEntry {
	return models.FilterValid(entries, "")
}

// TotalCount returns the number of valid entries.
func TotalCount(entries []models.JournalEntry) int {
	return len(valid(entries))
}

// CurrentStreak returns the length of the unbroken run of calendar days, ending today,
// on which at least one entry was written. Several entries on one day count once and
// entries dated in the future are ignored.
func CurrentStreak(entries []models.JournalEntry, now time.Time) int {
	seen := make(map[int64]struct{})
	days := make([]int64, 0, len(entries))
	for _, e := range valid(entries) {
		n, ok := entryDayNumber(e)
		if !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		days = append(days, n)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })

	today := todayNumber(now)
	streak := 0
	expected := int64(0)
	for _, n := range days {
		diff := today - n
		if diff < 0 {
			continue
		}
		if diff == expected {
			streak++
			expected++
			continue
		}
		if diff > expected {
			break
		}
	}
	return streak
}

// MostCommonMood returns the most frequent mood. Ties go to the mood encountered first.
// The boolean is false when there are no valid entries.
func MostCommonMood(entries []models.JournalEntry) (models.Mood, bool) {
	hist := histogram(valid(entries))
	if len(hist) == 0 {
		return "", false
	}
	best := hist[0]
	for _, mc := range hist[1:] {
		if mc.Count > best.Count {
			best = mc
		}
	}
	return best.Mood, true
}

// histogram counts moods, keeping first-encountered order.
func histogram(entries []models.JournalEntry) []MoodCount {
	index := make(map[models.Mood]int)
	var out []MoodCount
	for _, e := range entries {
		i, ok := index[e.Mood]
		if !ok {
			index[e.Mood] = len(out)
			out = append(out, MoodCount{Mood: e.Mood, Count: 1})
			continue
		}
		out[i].Count++
	}
	return out
}

// ThisWeekCount counts entries dated within the seven days ending today, inclusive.
func ThisWeekCount(entries []models.JournalEntry, now time.Time) int {
	today := todayNumber(now)
	count := 0
	for _, e := range valid(entries) {
		n, ok := entryDayNumber(e)
		if !ok {
			continue
		}
		if n <= today && today-n <= 6 {
			count++
		}
	}
	return count
}

// WeeklyActivity returns exactly seven buckets, oldest first, for the seven calendar
// days ending today.
func WeeklyActivity(entries []models.JournalEntry, now time.Time) []DayBucket {
	counts := countByDate(valid(entries))
	y, m, d := now.Date()
	buckets := make([]DayBucket, 0, 7)
	for i := 6; i >= 0; i-- {
		day := time.Date(y, m, d-i, 0, 0, 0, 0, now.Location())
		key := models.FormatDate(day)
		buckets = append(buckets, DayBucket{
			Date:  key,
			Label: day.Weekday().String()[:3],
			Count: counts[key],
		})
	}
	return buckets
}

// MoodDistribution counts entries per mood. No entries yields an empty, non-nil map.
func MoodDistribution(entries []models.JournalEntry) map[models.Mood]int {
	out := make(map[models.Mood]int)
	for _, e := range valid(entries) {
		out[e.Mood]++
	}
	return out
}

func countByDate(entries []models.JournalEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		t, err := models.ParseDate(e.Date)
		if err != nil {
			continue
		}
		counts[models.FormatDate(t)]++
	}
	return counts
}
