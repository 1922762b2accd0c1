package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionKeyPrefix is the Redis key prefix for sessions
const SessionKeyPrefix = "session:"

var (
	ErrEmptySessionToken = errors.New("session token is empty")
	ErrSessionNotFound   = errors.New("session not found")
)

// SessionStore maps opaque login tokens to user ids. A user may hold any number of
// sessions, one per signed-in device. Refresh restarts the TTL of a live session.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Validate(ctx context.Context, token string) (userID string, ok bool, err error)
	Refresh(ctx context.Context, token string) error
	Invalidate(ctx context.Context, token string) error
}

func newSessionToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// RedisSessions keeps sessions in Redis so every instance sees the same logins.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

func (s *RedisSessions) Create(ctx context.Context, userID string) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, SessionKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessions) Validate(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	userID, err := s.client.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, userID != "", nil
}

// Refresh extends the session by the full TTL from now.
func (s *RedisSessions) Refresh(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptySessionToken
	}
	ok, err := s.client.Expire(ctx, SessionKeyPrefix+token, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisSessions) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, SessionKeyPrefix+token).Err()
}

type memorySession struct {
	userID  string
	expires time.Time
}

// MemorySessions is the single-process SessionStore used with STORE_DRIVER=memory.
type MemorySessions struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	byToken map[string]memorySession
}

func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{
		ttl:     ttl,
		now:     time.Now,
		byToken: make(map[string]memorySession),
	}
}

func (s *MemorySessions) Create(_ context.Context, userID string) (string, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[token] = memorySession{userID: userID, expires: s.now().Add(s.ttl)}
	return token, nil
}

func (s *MemorySessions) Validate(_ context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byToken[token]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(sess.expires) {
		delete(s.byToken, token)
		return "", false, nil
	}
	return sess.userID, true, nil
}

func (s *MemorySessions) Refresh(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptySessionToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byToken[token]
	if !ok || !s.now().Before(sess.expires) {
		return ErrSessionNotFound
	}
	sess.expires = s.now().Add(s.ttl)
	s.byToken[token] = sess
	return nil
}

func (s *MemorySessions) Invalidate(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, token)
	return nil
}
