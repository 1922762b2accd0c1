package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/AnshRaj112/moodlog-backend/internal/models"
	"github.com/AnshRaj112/moodlog-backend/internal/stats"
)

const (
	liveReadLimit    = 4 * 1024
	livePongWait     = 90 * time.Second
	livePingInterval = 30 * time.Second
	liveWriteWait    = 10 * time.Second
)

// SnapshotMessage is pushed to live clients on connect and after every change.
type SnapshotMessage struct {
	Type    string                `json:"type"`
	Entries []models.JournalEntry `json:"entries"`
	Stats   stats.Summary         `json:"stats"`
}

type liveClientMessage struct {
	Type string `json:"type"` // "ping"
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.deps.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}

// snapshotMailbox holds at most one pending encoded snapshot. put never blocks: a
// newer snapshot replaces one the writer has not sent yet.
type snapshotMailbox struct {
	ch chan []byte
}

func newSnapshotMailbox() *snapshotMailbox {
	return &snapshotMailbox{ch: make(chan []byte, 1)}
}

func (m *snapshotMailbox) put(data []byte) {
	for {
		select {
		case m.ch <- data:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

type liveConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *liveConn) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return c.conn.WriteMessage(messageType, data)
}

// LiveEntries streams the caller's entries and statistics over WebSocket. A full
// snapshot is sent on connect and again whenever the collection changes.
func (h *Handler) LiveEntries(w http.ResponseWriter, r *http.Request) {
	s, ok := h.journalSession(w, r)
	if !ok {
		return
	}
	defer s.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		return
	}
	defer conn.Close()
	lc := &liveConn{conn: conn}
	log := h.log.With().Str("user_id", s.UserID()).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Socket writes run on their own goroutine; change delivery only fills the mailbox.
	mailbox := newSnapshotMailbox()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-mailbox.ch:
				if err := lc.write(websocket.TextMessage, data); err != nil {
					log.Debug().Err(err).Msg("snapshot write failed, closing")
					conn.Close()
					return
				}
			}
		}
	}()

	_, err = s.Subscribe(ctx, func(entries []models.JournalEntry) {
		msg := SnapshotMessage{
			Type:    "snapshot",
			Entries: stats.SortByRecency(entries),
			Stats:   stats.Summarize(entries, h.now()),
		}
		data, err := json.Marshal(msg)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode snapshot")
			return
		}
		mailbox.put(data)
	})
	if err != nil {
		log.Error().Err(err).Msg("live subscription failed")
		_ = lc.write(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "journal unavailable"))
		return
	}

	go func() {
		ticker := time.NewTicker(livePingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := lc.write(websocket.PingMessage, nil); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(liveReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg liveClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
			if err := lc.write(websocket.TextMessage, []byte(`{"type":"pong"}`)); err != nil {
				return
			}
		}
	}
}
