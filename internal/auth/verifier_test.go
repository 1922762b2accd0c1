package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters-long"

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret, "moodlog-idp")

	token, err := v.Issue(Identity{UserID: "uid-123", Email: "sam@example.com", DisplayName: "Sam"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", id.UserID)
	assert.Equal(t, "sam@example.com", id.Email)
	assert.Equal(t, "Sam", id.DisplayName)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret, "moodlog-idp")

	_, err := v.Verify("  ")
	assert.ErrorIs(t, err, ErrEmptyToken)

	_, err = v.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := v.Issue(Identity{UserID: "uid"}, -time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewVerifier("another-secret-at-least-32-characters", "moodlog-idp").Issue(Identity{UserID: "uid"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := NewVerifier(testSecret, "someone-else").Issue(Identity{UserID: "uid"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := v.Issue(Identity{}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_RejectsOtherAlgorithms(t *testing.T) {
	v := NewVerifier(testSecret, "")

	claims := jwt.RegisteredClaims{
		Subject:   "uid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_RequiresExpiry(t *testing.T) {
	v := NewVerifier(testSecret, "")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "uid"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
