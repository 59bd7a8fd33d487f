package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
)
var subject = "alice@example.com"
var expiresIn = time.Hour

func Test_Issue(t *testing.T) {
	token, err := jwtService.Issue(subject, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := jwtService.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}

func Test_Verify_InvalidToken(t *testing.T) {
	_, err := jwtService.Verify("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_Verify_ExpiredToken(t *testing.T) {
	token, err := jwtService.Issue(subject, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.Verify(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_Verify_TamperedToken(t *testing.T) {
	token, err := jwtService.Issue(subject, expiresIn)
	require.NoError(t, err)

	// Flip one byte in the payload segment.
	tampered := []byte(token)
	tampered[len(tampered)/2] ^= 0x01

	_, err = jwtService.Verify(string(tampered))
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_Verify_WrongIssuer(t *testing.T) {
	// Same signing key, different deployment: the issuer claim must reject it.
	other := NewJWTService("test-signing-key", "another-issuer")
	token, err := other.Issue(subject, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.Verify(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_Verify_WrongKey(t *testing.T) {
	other := NewJWTService("another-signing-key", "test-issuer")
	token, err := other.Issue(subject, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.Verify(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}
