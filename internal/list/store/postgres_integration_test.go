//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	usermodels "github.com/willian-mayer/listify/internal/auth/models"
	userstore "github.com/willian-mayer/listify/internal/auth/store/user"
	"github.com/willian-mayer/listify/internal/list/models"
	"github.com/willian-mayer/listify/internal/list/store"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
	"github.com/willian-mayer/listify/pkg/testutil/containers"
)

type PostgresListStoreSuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	store   *store.PostgresStore
	ownerID int64
}

func TestPostgresListStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresListStoreSuite))
}

func (s *PostgresListStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.pg.DB)
}

func (s *PostgresListStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.Truncate(ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	owner := &usermodels.User{
		Name:           "Owner",
		Email:          "owner@example.com",
		HashedPassword: "x",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.Require().NoError(userstore.NewPostgres(s.pg.DB).Create(ctx, owner))
	s.ownerID = owner.ID
}

func (s *PostgresListStoreSuite) newList(title string) *models.List {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.List{
		Title:     title,
		UserID:    s.ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresListStoreSuite) newItem(listID int64, name string) *models.Item {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Item{
		Name:      name,
		ListID:    listID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresListStoreSuite) TestCreateAndFind() {
	ctx := context.Background()

	list := s.newList("Groceries")
	s.Require().NoError(s.store.CreateList(ctx, list))
	s.Require().NotZero(list.ID)

	got, err := s.store.FindListByID(ctx, list.ID)
	s.Require().NoError(err)
	s.Equal("Groceries", got.Title)
	s.False(got.IsShared)
	s.Nil(got.ShareToken)

	own, err := s.store.FindOwnership(ctx, list.ID)
	s.Require().NoError(err)
	s.Equal(s.ownerID, own.OwnerID)
}

func (s *PostgresListStoreSuite) TestDeleteListCascadesToItems() {
	ctx := context.Background()

	list := s.newList("Groceries")
	s.Require().NoError(s.store.CreateList(ctx, list))
	item := s.newItem(list.ID, "Milk")
	s.Require().NoError(s.store.CreateItem(ctx, item))

	s.Require().NoError(s.store.DeleteList(ctx, list.ID))

	_, err := s.store.FindItemByID(ctx, item.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresListStoreSuite) TestOrphanItemRejected() {
	ctx := context.Background()

	err := s.store.CreateItem(ctx, s.newItem(9999, "Milk"))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresListStoreSuite) TestShareLifecycle() {
	ctx := context.Background()

	list := s.newList("Groceries")
	s.Require().NoError(s.store.CreateList(ctx, list))

	claimed, err := s.store.ClaimShareToken(ctx, list.ID, "token-one")
	s.Require().NoError(err)
	s.True(claimed)

	// A second claim is a no-op; the first token stays.
	claimed, err = s.store.ClaimShareToken(ctx, list.ID, "token-two")
	s.Require().NoError(err)
	s.False(claimed)

	got, err := s.store.FindListByShareToken(ctx, "token-one")
	s.Require().NoError(err)
	s.Equal(list.ID, got.ID)
	s.True(got.IsShared)

	s.Require().NoError(s.store.DisableShare(ctx, list.ID))

	_, err = s.store.FindListByShareToken(ctx, "token-one")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresListStoreSuite) TestShareTokenUniqueAcrossLists() {
	ctx := context.Background()

	first := s.newList("First")
	s.Require().NoError(s.store.CreateList(ctx, first))
	second := s.newList("Second")
	s.Require().NoError(s.store.CreateList(ctx, second))

	claimed, err := s.store.ClaimShareToken(ctx, first.ID, "shared-token")
	s.Require().NoError(err)
	s.True(claimed)

	_, err = s.store.ClaimShareToken(ctx, second.ID, "shared-token")
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

// TestConcurrentClaims hammers ClaimShareToken from many goroutines; exactly
// one token must win and survive.
func (s *PostgresListStoreSuite) TestConcurrentClaims() {
	ctx := context.Background()

	list := s.newList("Contested")
	s.Require().NoError(s.store.CreateList(ctx, list))

	const workers = 8
	results := make([]bool, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.store.ClaimShareToken(ctx, list.ID, string(rune('a'+i))+"-token")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.Require().NoError(err)
	}

	winners := 0
	for _, claimed := range results {
		if claimed {
			winners++
		}
	}
	s.Equal(1, winners)

	got, err := s.store.FindListByID(ctx, list.ID)
	s.Require().NoError(err)
	s.True(got.IsShared)
	s.NotNil(got.ShareToken)
}

func (s *PostgresListStoreSuite) TestUpdateListPreservesShareState() {
	ctx := context.Background()

	list := s.newList("Groceries")
	s.Require().NoError(s.store.CreateList(ctx, list))
	claimed, err := s.store.ClaimShareToken(ctx, list.ID, "keep-me")
	s.Require().NoError(err)
	s.True(claimed)

	list.Title = "Renamed"
	list.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.UpdateList(ctx, list))

	got, err := s.store.FindListByID(ctx, list.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", got.Title)
	s.True(got.IsShared)
	s.Require().NotNil(got.ShareToken)
	s.Equal("keep-me", *got.ShareToken)
}

func (s *PostgresListStoreSuite) TestItemRoundTrip() {
	ctx := context.Background()

	list := s.newList("Groceries")
	s.Require().NoError(s.store.CreateList(ctx, list))

	item := s.newItem(list.ID, "Milk")
	s.Require().NoError(s.store.CreateItem(ctx, item))

	item.Name = "Oat milk"
	item.Checked = true
	item.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.UpdateItem(ctx, item))

	got, err := s.store.FindItemByID(ctx, item.ID)
	s.Require().NoError(err)
	s.Equal("Oat milk", got.Name)
	s.True(got.Checked)

	items, err := s.store.ItemsByList(ctx, list.ID)
	s.Require().NoError(err)
	s.Len(items, 1)

	s.Require().NoError(s.store.DeleteItem(ctx, item.ID))
	_, err = s.store.FindItemByID(ctx, item.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
