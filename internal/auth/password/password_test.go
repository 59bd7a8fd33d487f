package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, Verify("correct horse battery staple", hash))
	assert.False(t, Verify("correct horse battery stable", hash))
	assert.False(t, Verify("", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("same password")
	require.NoError(t, err)
	second, err := Hash("same password")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.True(t, Verify("same password", first))
	assert.True(t, Verify("same password", second))
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := Hash("")
	require.Error(t, err)
}

func TestVerifyMalformedHash(t *testing.T) {
	assert.False(t, Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, Verify("anything", ""))
}
