//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/willian-mayer/listify/internal/auth/models"
	"github.com/willian-mayer/listify/internal/auth/store/user"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
	"github.com/willian-mayer/listify/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *user.PostgresStore
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = user.NewPostgres(s.pg.DB)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background()))
}

func (s *PostgresUserStoreSuite) newUser(email string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.User{
		Name:           "Ana",
		Email:          email,
		HashedPassword: "$2a$10$fakehashfakehashfakehash",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *PostgresUserStoreSuite) TestCreateAndFind() {
	ctx := context.Background()

	u := s.newUser("ana@example.com")
	s.Require().NoError(s.store.Create(ctx, u))
	s.Require().NotZero(u.ID)

	byID, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("ana@example.com", byID.Email)

	byEmail, err := s.store.FindByEmail(ctx, "ana@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
}

func (s *PostgresUserStoreSuite) TestDuplicateEmail() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.newUser("ana@example.com")))
	err := s.store.Create(ctx, s.newUser("ana@example.com"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresUserStoreSuite) TestFindMissing() {
	ctx := context.Background()

	_, err := s.store.FindByID(ctx, 9999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByEmail(ctx, "ghost@example.com")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresUserStoreSuite) TestDelete() {
	ctx := context.Background()

	u := s.newUser("ana@example.com")
	s.Require().NoError(s.store.Create(ctx, u))
	s.Require().NoError(s.store.Delete(ctx, u.ID))

	_, err := s.store.FindByID(ctx, u.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(ctx, u.ID), sentinel.ErrNotFound)
}
