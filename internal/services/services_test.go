package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/moodlog-backend/internal/stats"
)

func TestMemorySessions_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	s := NewMemorySessions(time.Hour)
	s.now = func() time.Time { return now }

	token, err := s.Create(ctx, "u1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, ok, err := s.Validate(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)

	now = now.Add(50 * time.Minute)
	require.NoError(t, s.Refresh(ctx, token))
	now = now.Add(50 * time.Minute)
	_, ok, _ = s.Validate(ctx, token)
	assert.True(t, ok, "refresh extends the session")

	now = now.Add(time.Hour)
	_, ok, _ = s.Validate(ctx, token)
	assert.False(t, ok, "session expired")
	assert.ErrorIs(t, s.Refresh(ctx, token), ErrSessionNotFound)
}

func TestMemorySessions_SeveralDevices(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessions(time.Hour)

	laptop, err := s.Create(ctx, "u1")
	require.NoError(t, err)
	phone, err := s.Create(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, laptop, phone)

	for _, token := range []string{laptop, phone} {
		userID, ok, err := s.Validate(ctx, token)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "u1", userID)
	}

	require.NoError(t, s.Invalidate(ctx, phone))
	_, ok, _ := s.Validate(ctx, phone)
	assert.False(t, ok)
	_, ok, _ = s.Validate(ctx, laptop)
	assert.True(t, ok, "signing out one device keeps the other")

	_, ok, err = s.Validate(ctx, "")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Refresh(ctx, ""), ErrEmptySessionToken)
	assert.ErrorIs(t, s.Refresh(ctx, phone), ErrSessionNotFound)
}

func TestStatsCacheKey(t *testing.T) {
	assert.Equal(t, "cache:stats:u1:2024-01-10", StatsCacheKey("u1", "2024-01-10"))
}

func TestMemoryStatsCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	c := NewMemoryStatsCache(time.Minute)
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx, "u1", "2024-01-10")
	require.NoError(t, err)
	assert.False(t, ok)

	sum := stats.Summary{Date: "2024-01-10", TotalEntries: 3}
	require.NoError(t, c.Set(ctx, "u1", "2024-01-10", sum))

	got, ok, err := c.Get(ctx, "u1", "2024-01-10")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, got.TotalEntries)

	_, ok, _ = c.Get(ctx, "u1", "2024-01-11")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "u2", "2024-01-10")
	assert.False(t, ok)

	require.NoError(t, c.Invalidate(ctx, "u1", "2024-01-10"))
	_, ok, _ = c.Get(ctx, "u1", "2024-01-10")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "u1", "2024-01-10", sum))
	now = now.Add(2 * time.Minute)
	_, ok, _ = c.Get(ctx, "u1", "2024-01-10")
	assert.False(t, ok, "entry expired")
}

func TestMemoryStatsCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryStatsCache(0)

	require.NoError(t, c.Set(ctx, "u1", "2024-01-10", stats.Summary{TotalEntries: 1}))
	_, ok, _ := c.Get(ctx, "u1", "2024-01-10")
	assert.False(t, ok)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func formFile(t *testing.T, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	_, fh, err := req.FormFile("file")
	require.NoError(t, err)
	return fh
}

func TestOpenProfilePhoto(t *testing.T) {
	f, err := OpenProfilePhoto(formFile(t, pngHeader))
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 4)
	_, err = f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, pngHeader[:4], buf, "file is rewound")

	_, err = OpenProfilePhoto(formFile(t, []byte("plain text, not an image")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := formFile(t, pngHeader)
	big.Size = MaxProfilePhotoSize + 1
	_, err = OpenProfilePhoto(big)
	assert.ErrorIs(t, err, ErrPhotoTooLarge)
}
