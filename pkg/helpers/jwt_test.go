package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	access, aexp, err := m.GenerateAccessToken("user-1", "sess-1")
	require.NoError(t, err)
	assert.True(t, aexp.After(time.Now()))

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)

	refresh, rexp, err := m.GenerateRefreshToken("user-1", "sess-1")
	require.NoError(t, err)
	assert.True(t, rexp.After(aexp))

	rc, err := m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rc.UserID)
}

func TestJWTSecretsAreNotInterchangeable(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("user-1", "sess-1")
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)

	refresh, _, err := m.GenerateRefreshToken("user-1", "sess-1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(refresh)
	assert.Error(t, err)
}

func TestJWTExpiry(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("user-1", "sess-1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(access)
	assert.Error(t, err)
}

func TestJWTTamperedToken(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	other := NewJWTManager("different-secret", "refresh-secret", time.Minute, time.Hour)

	access, _, err := other.GenerateAccessToken("user-1", "sess-1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(access)
	assert.Error(t, err)
}
