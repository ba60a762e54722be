package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", hash)

	assert.True(t, CompareHashAndPassword(hash, "secret-password"))
	assert.False(t, CompareHashAndPassword(hash, "wrong"))
	assert.False(t, CompareHashAndPassword("not-a-hash", "secret-password"))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("secret-password")
	require.NoError(t, err)
	h2, err := HashPassword("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
