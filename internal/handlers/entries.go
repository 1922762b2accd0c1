package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/moodlog-backend/internal/journal"
	"github.com/AnshRaj112/moodlog-backend/internal/models"
	"github.com/AnshRaj112/moodlog-backend/internal/stats"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 50
)

type CreateEntryRequest struct {
	Title   string `json:"title" validate:"required|maxLen:200"`
	Content string `json:"content" validate:"required|maxLen:20000"`
	Mood    string `json:"mood" validate:"required|in:happy,sad,angry,excited,calm,anxious"`
	Date    string `json:"date" validate:"maxLen:10"`
	Time    string `json:"time" validate:"maxLen:16"`
}

type UpdateEntryRequest struct {
	Title   string `json:"title" validate:"required|maxLen:200"`
	Content string `json:"content" validate:"required|maxLen:20000"`
	Mood    string `json:"mood" validate:"required|in:happy,sad,angry,excited,calm,anxious"`
	Time    string `json:"time" validate:"maxLen:16"`
}

type EntriesResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Entries []models.JournalEntry `json:"entries"`
	Total   int                   `json:"total"`
}

type EntryResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Entry   models.JournalEntry `json:"entry"`
}

type CreateEntryResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// ListEntries returns the caller's entries, newest first. With ?date=YYYY-MM-DD only
// that day's entries are returned.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	s, ok := h.journalSession(w, r)
	if !ok {
		return
	}
	defer s.Close()

	ctx, cancel := h.requestContext(r)
	defer cancel()

	var (
		entries []models.JournalEntry
		err     error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		entries, err = s.FetchByDate(ctx, date)
	} else {
		entries, err = s.FetchAll(ctx)
	}
	if err != nil {
		writeJournalError(w, err)
		return
	}

	entries = stats.SortByRecency(entries)
	writeJSON(w, http.StatusOK, EntriesResponse{Success: true, Entries: entries, Total: len(entries)})
}

// RecentEntries returns the most recent entries (?limit=, default 5).
func (h *Handler) RecentEntries(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecentLimit)
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
	recent := stats.Recent(entries, limit)
	writeJSON(w, http.StatusOK, EntriesResponse{Success: true, Entries: recent, Total: len(recent)})
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.journalSession(w, r)
	if !ok {
		return
	}
	defer s.Close()

	ctx, cancel := h.requestContext(r)
	defer cancel()

	entry, err := s.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeJournalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EntryResponse{Success: true, Entry: entry})
}

// CreateEntry adds an entry for the caller. The owner always comes from the session.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	s, ok := h.journalSession(w, r)
	if !ok {
		return
	}
	defer s.Close()

	ctx, cancel := h.requestContext(r)
	defer cancel()

	id, err := s.Add(ctx, journal.EntryInput{
		Title:   req.Title,
		Content: req.Content,
		Mood:    models.Mood(req.Mood),
		Date:    req.Date,
		Time:    req.Time,
	})
	if err != nil {
		writeJournalError(w, err)
		return
	}
	h.invalidateStats(ctx, s.UserID())

	writeJSON(w, http.StatusCreated, CreateEntryResponse{
		Success: true,
		Message: "Journal entry created successfully",
		ID:      id,
	})
}

// UpdateEntry replaces the editable fields of an entry. The entry keeps its date.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req UpdateEntryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	s, ok := h.journalSession(w, r)
	if !ok {
		return
	}
	defer s.Close()

	ctx, cancel := h.requestContext(r)
	defer cancel()

	err := s.Update(ctx, models.JournalEntry{
		ID:      chi.URLParam(r, "id"),
		Title:   req.Title,
		Content: req.Content,
		Mood:    models.Mood(req.Mood),
		Time:    req.Time,
	})
	if err != nil {
		writeJournalError(w, err)
		return
	}
	h.invalidateStats(ctx, s.UserID())

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Journal entry updated successfully"})
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	s, ok := h.journalSession(w, r)
	if !ok {
		return
	}
	defer s.Close()

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := s.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeJournalError(w, err)
		return
	}
	h.invalidateStats(ctx, s.UserID())

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Journal entry deleted successfully"})
}
