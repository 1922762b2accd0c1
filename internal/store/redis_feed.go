package store

import (
	"context"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	entriesChannelPrefix  = "journal:entries:"
	entriesChannelPattern = entriesChannelPrefix + "*"
)

type changeEvent struct {
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

// RedisChangeFeed publishes entry-collection changes over Redis Pub/Sub so every
// instance learns about writes made through any other instance. A single pattern
// subscription per process fans notifications out to local subscribers.
type RedisChangeFeed struct {
	client *redis.Client
	log    zerolog.Logger

	mu   sync.RWMutex
	subs map[string]map[string]func()
}

func NewRedisChangeFeed(client *redis.Client, log zerolog.Logger) *RedisChangeFeed {
	return &RedisChangeFeed{
		client: client,
		log:    log.With().Str("component", "change_feed").Logger(),
		subs:   make(map[string]map[string]func()),
	}
}

func entriesChannel(userID string) string {
	return entriesChannelPrefix + userID
}

func (f *RedisChangeFeed) Publish(ctx context.Context, userID string) error {
	data, err := json.Marshal(changeEvent{UserID: userID, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, entriesChannel(userID), data).Err()
}

func (f *RedisChangeFeed) Subscribe(ctx context.Context, userID string, onChange func()) (func(), error) {
	id := uuid.NewString()

	f.mu.Lock()
	if f.subs[userID] == nil {
		f.subs[userID] = make(map[string]func())
	}
	f.subs[userID][id] = onChange
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[userID], id)
			if len(f.subs[userID]) == 0 {
				delete(f.subs, userID)
			}
			f.mu.Unlock()
		})
	}, nil
}

// fanOut notifies every local subscriber of userID. Each callback runs on its own
// goroutine so a slow consumer cannot stall the Redis reader.
func (f *RedisChangeFeed) fanOut(userID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, fn := range f.subs[userID] {
		go fn()
	}
	return len(f.subs[userID])
}

// Run consumes the Redis pattern subscription until ctx is cancelled, reconnecting
// with exponential backoff.
func (f *RedisChangeFeed) Run(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := f.receive(ctx, &backoff)
		if ctx.Err() != nil {
			return
		}
		f.log.Warn().Err(err).Dur("retry_in", backoff).Msg("entry change subscriber disconnected")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

func (f *RedisChangeFeed) receive(ctx context.Context, backoff *time.Duration) error {
	pubsub := f.client.PSubscribe(ctx, entriesChannelPattern)
	defer pubsub.Close()

	f.log.Info().Str("pattern", entriesChannelPattern).Msg("entry change subscriber started")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}
		*backoff = time.Second

		userID := strings.TrimPrefix(msg.Channel, entriesChannelPrefix)
		var evt changeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil && evt.UserID != "" {
			userID = evt.UserID
		}

		n := f.fanOut(userID)
		f.log.Debug().Str("user_id", userID).Int("subscribers", n).Msg("entry change fanned out")
	}
}
