package journal

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/AnshRaj112/moodlog-backend/internal/metrics"
	"github.com/AnshRaj112/moodlog-backend/internal/models"
)

type subscription struct {
	session  *Session
	onChange func([]models.JournalEntry)

	cancelled atomic.Bool
	done      chan struct{}
	once      sync.Once
	stopFeed  func()

	// running/dirty serialise deliveries and coalesce notifications that arrive
	// while a delivery is in flight into one more pass.
	mu      sync.Mutex
	running bool
	dirty   bool
}

// Subscribe registers onChange for the user's entry collection. onChange is called
// once with the current snapshot before Subscribe returns and again with a full
// fresh snapshot after every change. Calls are never concurrent and, once cancel has
// been called, no further call is started. cancel is safe to call more than once.
// The subscription also ends when ctx is done or the session is closed.
//
// A failed re-read after a change is logged and skipped; the subscriber keeps its
// last snapshot until the next change.
func (s *Session) Subscribe(ctx context.Context, onChange func([]models.JournalEntry)) (func(), error) {
	if onChange == nil {
		return func() {}, nil
	}
	if s.isClosed() {
		return nil, ErrSessionClosed
	}

	sub := &subscription{
		session:  s,
		onChange: onChange,
		done:     make(chan struct{}),
		running:  true, // until the initial snapshot is out
	}

	if s.feed != nil {
		stop, err := s.feed.Subscribe(ctx, s.userID, sub.trigger)
		if err != nil {
			return nil, s.storeFailure("subscribe", err)
		}
		sub.stopFeed = stop
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if sub.stopFeed != nil {
			sub.stopFeed()
		}
		return nil, ErrSessionClosed
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	metrics.SubscriptionOpened()

	entries, err := s.FetchAll(ctx)
	if err != nil {
		sub.cancel()
		return nil, err
	}
	sub.deliver(entries)
	sub.settle()

	go func() {
		select {
		case <-ctx.Done():
			sub.cancel()
		case <-sub.done:
		}
	}()

	return sub.cancel, nil
}

func (sub *subscription) cancel() {
	sub.once.Do(func() {
		sub.cancelled.Store(true)
		close(sub.done)
		if sub.stopFeed != nil {
			sub.stopFeed()
		}
		s := sub.session
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
		metrics.SubscriptionClosed()
	})
}

// trigger is the change-feed callback.
func (sub *subscription) trigger() {
	sub.mu.Lock()
	if sub.running {
		sub.dirty = true
		sub.mu.Unlock()
		return
	}
	sub.running = true
	sub.mu.Unlock()

	sub.refresh()
	sub.settle()
}

// settle ends a delivery pass, running another one first if notifications arrived
// in the meantime.
func (sub *subscription) settle() {
	for {
		sub.mu.Lock()
		if !sub.dirty || sub.cancelled.Load() {
			sub.running = false
			sub.dirty = false
			sub.mu.Unlock()
			return
		}
		sub.dirty = false
		sub.mu.Unlock()

		sub.refresh()
	}
}

func (sub *subscription) refresh() {
	if sub.cancelled.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	entries, err := sub.session.FetchAll(ctx)
	if err != nil {
		return
	}
	sub.deliver(entries)
}

func (sub *subscription) deliver(entries []models.JournalEntry) {
	if sub.cancelled.Load() {
		return
	}
	sub.onChange(entries)
	metrics.SnapshotDelivered()
}
