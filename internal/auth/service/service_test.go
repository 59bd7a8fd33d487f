package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willian-mayer/listify/internal/auth/store/user"
	"github.com/willian-mayer/listify/internal/jwt_token"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

func newService(t *testing.T) *Service {
	t.Helper()
	tokens := jwttoken.NewJWTService("test-signing-key", "listify-test")
	return New(user.NewInMemory(), tokens, time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Ana", "Ana@Example.com", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", registered.Email, "email is normalized at write time")
	assert.NotZero(t, registered.ID)

	token, loggedIn, err := svc.Login(ctx, "ANA@example.COM", "s3cret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, loggedIn.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cret-password")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Ana", "ana@example.com", "different-password")
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// Case variants collapse into the same account.
	_, err = svc.Register(ctx, "Shouty Ana", "ANA@EXAMPLE.COM", "another-password")
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRegisterDerivesNameFromEmail(t *testing.T) {
	svc := newService(t)

	registered, err := svc.Register(context.Background(), "  ", "ana.garcia@example.com", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, "Ana Garcia", registered.Name)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cret-password")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login(ctx, "ana@example.com", "wrong")
	_, _, unknownEmail := svc.Login(ctx, "ghost@example.com", "s3cret-password")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error(),
		"login must not reveal whether the account exists")
	assert.True(t, dErrors.HasCode(wrongPassword, dErrors.CodeUnauthorized))
}

func TestResolveIdentity(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cret-password")
	require.NoError(t, err)

	id, err := svc.ResolveIdentity(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, id)

	_, err = svc.ResolveIdentity(ctx, "ghost@example.com")
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized),
		"unknown identity must look like an invalid token")
}

func TestIssuedTokenRoundTrips(t *testing.T) {
	tokens := jwttoken.NewJWTService("test-signing-key", "listify-test")
	svc := New(user.NewInMemory(), tokens, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "s3cret-password")
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "ana@example.com", "s3cret-password")
	require.NoError(t, err)

	subject, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", subject)
}
