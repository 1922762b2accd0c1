package stats

import (
	"sort"
	"time"

	"github.com/AnshRaj112/moodlog-backend/internal/models"
)

// Summary is everything the dashboard and profile views render.
type Summary struct {
	Date             string              `json:"date"`
	TotalEntries     int                 `json:"total_entries"`
	CurrentStreak    int                 `json:"current_streak"`
	MostCommonMood   models.Mood         `json:"most_common_mood,omitempty"`
	ThisWeekEntries  int                 `json:"this_week_entries"`
	TodayEntries     int                 `json:"today_entries"`
	DaysJournaled    int                 `json:"days_journaled"`
	WeeklyActivity   []DayBucket         `json:"weekly_activity"`
	MoodDistribution map[models.Mood]int `json:"mood_distribution"`
	TopMoods         []MoodCount         `json:"top_moods"`
}

// Summarize computes every statistic over one snapshot.
func Summarize(entries []models.JournalEntry, now time.Time) Summary {
	mood, _ := MostCommonMood(entries)
	return Summary{
		Date:             models.FormatDate(now),
		TotalEntries:     TotalCount(entries),
		CurrentStreak:    CurrentStreak(entries, now),
		MostCommonMood:   mood,
		ThisWeekEntries:  ThisWeekCount(entries, now),
		TodayEntries:     TodayCount(entries, now),
		DaysJournaled:    DaysJournaled(entries),
		WeeklyActivity:   WeeklyActivity(entries, now),
		MoodDistribution: MoodDistribution(entries),
		TopMoods:         TopMoods(entries, 3),
	}
}

// TopMoods returns up to n moods by descending count; equal counts keep first-encountered order.
func TopMoods(entries []models.JournalEntry, n int) []MoodCount {
	hist := histogram(valid(entries))
	sort.SliceStable(hist, func(i, j int) bool { return hist[i].Count > hist[j].Count })
	if n >= 0 && len(hist) > n {
		hist = hist[:n]
	}
	if hist == nil {
		return []MoodCount{}
	}
	return hist
}

// TodayCount counts entries dated today.
func TodayCount(entries []models.JournalEntry, now time.Time) int {
	today := todayNumber(now)
	count := 0
	for _, e := range valid(entries) {
		if n, ok := entryDayNumber(e); ok && n == today {
			count++
		}
	}
	return count
}

// DaysJournaled counts distinct journal days.
func DaysJournaled(entries []models.JournalEntry) int {
	days := make(map[int64]struct{})
	for _, e := range valid(entries) {
		if n, ok := entryDayNumber(e); ok {
			days[n] = struct{}{}
		}
	}
	return len(days)
}

// SortByRecency returns a copy of the valid entries, newest journal day first.
// Within a day entries are ordered by time, then creation instant, both descending.
func SortByRecency(entries []models.JournalEntry) []models.JournalEntry {
	out := valid(entries)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out
}

// Recent returns the n most recent valid entries.
func Recent(entries []models.JournalEntry, n int) []models.JournalEntry {
	out := SortByRecency(entries)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MonthCalendar returns one bucket per day of the given month with that day's entry count.
func MonthCalendar(entries []models.JournalEntry, year int, month time.Month) []DayBucket {
	counts := countByDate(valid(entries))
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	buckets := make([]DayBucket, 0, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		key := models.FormatDate(day)
		buckets = append(buckets, DayBucket{
			Date:  key,
			Label: day.Weekday().String()[:3],
			Count: counts[key],
		})
	}
	return buckets
}
