package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AnshRaj112/moodlog-backend/internal/metrics"
	"github.com/AnshRaj112/moodlog-backend/internal/models"
	"github.com/AnshRaj112/moodlog-backend/internal/stats"
)

type StatsResponse struct {
	Success bool          `json:"success"`
	Stats   stats.Summary `json:"stats"`
}

type CalendarResponse struct {
	Success bool              `json:"success"`
	Month   string            `json:"month"`
	Days    []stats.DayBucket `json:"days"`
}

// GetStats returns the dashboard statistics of the caller. Summaries are cached per
// user and day; any write by the user drops the cached copy.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	s, ok := h.journalSession(w, r)
	if !ok {
		return
	}
	defer s.Close()

	ctx, cancel := h.requestContext(r)
	defer cancel()

	now := h.now()
	day := models.FormatDate(now)

	if h.deps.StatsCache != nil {
		cached, hit, err := h.deps.StatsCache.Get(ctx, s.UserID(), day)
		if err != nil {
			h.log.Warn().Err(err).Msg("stats cache read failed")
		}
		if hit {
			metrics.StatsCacheHit()
			writeJSON(w, http.StatusOK, StatsResponse{Success: true, Stats: cached})
			return
		}
		metrics.StatsCacheMiss()
	}

	entries, err := s.FetchAll(ctx)
	if err != nil {
		writeJournalError(w, err)
		return
	}
	summary := stats.Summarize(entries, now)

	if h.deps.StatsCache != nil {
		if err := h.deps.StatsCache.Set(ctx, s.UserID(), day, summary); err != nil {
			h.log.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	writeJSON(w, http.StatusOK, StatsResponse{Success: true, Stats: summary})
}

// GetCalendar returns per-day entry counts for ?month=YYYY-MM (default: this month).
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	month := h.now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be formatted as YYYY-MM")
			return
		}
		month = parsed
	}

	s, ok := h.journalSession(w, r)
	if !ok {
		return
	}
	defer s.Close()

	ctx, cancel := h.requestContext(r)
	defer cancel()

	entries, err := s.FetchAll(ctx)
	if err != nil {
		writeJournalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CalendarResponse{
		Success: true,
		Month:   month.Format("2006-01"),
		Days:    stats.MonthCalendar(entries, month.Year(), month.Month()),
	})
}

func (h *Handler) invalidateStats(ctx context.Context, userID string) {
	if h.deps.StatsCache == nil {
		return
	}
	if err := h.deps.StatsCache.Invalidate(ctx, userID, models.FormatDate(h.now())); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("stats cache invalidation failed")
	}
}
