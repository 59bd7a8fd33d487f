package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/willian-mayer/listify/internal/list/models"
	listservice "github.com/willian-mayer/listify/internal/list/service"
	"github.com/willian-mayer/listify/internal/list/store"
	"github.com/willian-mayer/listify/internal/platform/metrics"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]int64
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]int64{}}
}

func (c *mapCache) GetListID(_ context.Context, token string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[token]
	if ok {
		c.hits++
	}
	return id, ok
}

func (c *mapCache) SetListID(_ context.Context, token string, listID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = listID
}

func (c *mapCache) Invalidate(_ context.Context, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
}

func newFixture(t *testing.T, opts ...Option) (*Service, *store.InMemory, int64) {
	t.Helper()
	st := store.NewInMemory()
	lists := listservice.New(st, st)
	created, err := lists.CreateList(context.Background(), 1, "Groceries", nil)
	require.NoError(t, err)
	return New(st, "https://listify.space/shared", opts...), st, created.ID
}

func TestEnableAndResolve(t *testing.T) {
	svc, _, listID := newFixture(t)
	ctx := context.Background()

	link, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)
	require.NotEmpty(t, link.Token)
	require.Equal(t, "https://listify.space/shared/"+link.Token, link.URL)

	got, err := svc.Resolve(ctx, link.Token)
	require.NoError(t, err)
	require.Equal(t, listID, got.ID)
	require.True(t, got.IsShared)
}

func TestEnableIsIdempotent(t *testing.T) {
	svc, _, listID := newFixture(t)
	ctx := context.Background()

	first, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)
	second, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)
	require.Equal(t, first.Token, second.Token)
}

func TestEnableRequiresOwner(t *testing.T) {
	svc, _, listID := newFixture(t)
	ctx := context.Background()

	_, err := svc.Enable(ctx, 2, listID)
	require.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = svc.Enable(ctx, 2, 999)
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDisableInvalidatesToken(t *testing.T) {
	svc, _, listID := newFixture(t)
	ctx := context.Background()

	link, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)

	require.NoError(t, svc.Disable(ctx, 1, listID))

	_, err = svc.Resolve(ctx, link.Token)
	require.ErrorIs(t, err, errSharedNotFound)

	// Re-enabling issues a fresh token; the old one stays dead.
	relink, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)
	require.NotEqual(t, link.Token, relink.Token)
	_, err = svc.Resolve(ctx, link.Token)
	require.ErrorIs(t, err, errSharedNotFound)
}

func TestDisableRequiresOwner(t *testing.T) {
	svc, _, listID := newFixture(t)
	ctx := context.Background()

	_, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)

	err = svc.Disable(ctx, 2, listID)
	require.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestResolveUnknownToken(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Resolve(context.Background(), "no-such-token")
	require.ErrorIs(t, err, errSharedNotFound)

	_, err = svc.Resolve(context.Background(), "")
	require.ErrorIs(t, err, errSharedNotFound)
}

func TestResolveIncludesItems(t *testing.T) {
	svc, st, listID := newFixture(t)
	ctx := context.Background()

	lists := listservice.New(st, st)
	_, err := lists.CreateItem(ctx, 1, listID, "Milk", false)
	require.NoError(t, err)
	_, err = lists.CreateItem(ctx, 1, listID, "Bread", true)
	require.NoError(t, err)

	link, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)

	got, err := svc.Resolve(ctx, link.Token)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
}

func TestEnableRetriesOnTokenCollision(t *testing.T) {
	st := store.NewInMemory()
	lists := listservice.New(st, st)
	ctx := context.Background()

	first, err := lists.CreateList(ctx, 1, "First", nil)
	require.NoError(t, err)
	second, err := lists.CreateList(ctx, 1, "Second", nil)
	require.NoError(t, err)

	fixed, err := GenerateToken()
	require.NoError(t, err)
	claimed, err := st.ClaimShareToken(ctx, first.ID, fixed)
	require.NoError(t, err)
	require.True(t, claimed)

	// First attempt collides with the fixed token, second succeeds.
	calls := 0
	svc := New(st, "https://listify.space/shared", withTokenGenerator(func() (string, error) {
		calls++
		if calls == 1 {
			return fixed, nil
		}
		return GenerateToken()
	}))

	link, err := svc.Enable(ctx, 1, second.ID)
	require.NoError(t, err)
	require.NotEqual(t, fixed, link.Token)
	require.Equal(t, 2, calls)
}

func TestStaleCacheCannotResurrectRevokedLink(t *testing.T) {
	cache := newMapCache()
	svc, _, listID := newFixture(t, WithResolveCache(cache))
	ctx := context.Background()

	link, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, link.Token)
	require.NoError(t, err)

	// Plant the stale entry a concurrent reader could have left behind.
	require.NoError(t, svc.Disable(ctx, 1, listID))
	cache.SetListID(ctx, link.Token, listID)

	_, err = svc.Resolve(ctx, link.Token)
	require.ErrorIs(t, err, errSharedNotFound)
}

func TestResolveUsesCacheHint(t *testing.T) {
	cache := newMapCache()
	svc, _, listID := newFixture(t, WithResolveCache(cache))
	ctx := context.Background()

	link, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, link.Token)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, link.Token)
	require.NoError(t, err)
	require.Equal(t, 1, cache.hits)
}

// txBoundStore layers database transaction semantics over the in-memory
// store: a unique-violation conflict poisons the transaction it happened in,
// and every later call on that transaction fails the way an aborted
// transaction would.
type txBoundStore struct {
	*store.InMemory
	aborted bool
}

var errTxAborted = errors.New("current transaction is aborted, commands ignored until end of transaction block")

func (s *txBoundStore) FindOwnership(ctx context.Context, listID int64) (models.Ownership, error) {
	if s.aborted {
		return models.Ownership{}, errTxAborted
	}
	return s.InMemory.FindOwnership(ctx, listID)
}

func (s *txBoundStore) FindListByID(ctx context.Context, id int64) (*models.List, error) {
	if s.aborted {
		return nil, errTxAborted
	}
	return s.InMemory.FindListByID(ctx, id)
}

func (s *txBoundStore) ClaimShareToken(ctx context.Context, listID int64, token string) (bool, error) {
	if s.aborted {
		return false, errTxAborted
	}
	claimed, err := s.InMemory.ClaimShareToken(ctx, listID, token)
	if errors.Is(err, sentinel.ErrConflict) {
		s.aborted = true
	}
	return claimed, err
}

// txBoundRunner begins and ends a transaction around fn, clearing the
// aborted state at the boundaries like a real rollback would.
type txBoundRunner struct {
	store *txBoundStore
}

func (r *txBoundRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.store.aborted = false
	err := fn(ctx)
	r.store.aborted = false
	return err
}

// TestEnableRetriesInFreshTransaction pins that a collision retry starts a
// new transaction instead of reusing the one the conflict aborted.
func TestEnableRetriesInFreshTransaction(t *testing.T) {
	base := store.NewInMemory()
	lists := listservice.New(base, base)
	ctx := context.Background()

	first, err := lists.CreateList(ctx, 1, "First", nil)
	require.NoError(t, err)
	second, err := lists.CreateList(ctx, 1, "Second", nil)
	require.NoError(t, err)

	fixed, err := GenerateToken()
	require.NoError(t, err)
	claimed, err := base.ClaimShareToken(ctx, first.ID, fixed)
	require.NoError(t, err)
	require.True(t, claimed)

	st := &txBoundStore{InMemory: base}
	calls := 0
	svc := New(st, "https://listify.space/shared",
		WithTxRunner(&txBoundRunner{store: st}),
		withTokenGenerator(func() (string, error) {
			calls++
			if calls == 1 {
				return fixed, nil
			}
			return GenerateToken()
		}),
	)

	link, err := svc.Enable(ctx, 1, second.ID)
	require.NoError(t, err)
	require.NotEqual(t, fixed, link.Token)
	require.Equal(t, 2, calls)
}

func TestEnableCountsOnlyNewLinks(t *testing.T) {
	m := metrics.New()
	svc, _, listID := newFixture(t, WithMetrics(m))
	ctx := context.Background()

	_, err := svc.Enable(ctx, 1, listID)
	require.NoError(t, err)
	_, err = svc.Enable(ctx, 1, listID)
	require.NoError(t, err)

	require.Equal(t, float64(1), testutil.ToFloat64(m.ShareLinksEnabled))
}
