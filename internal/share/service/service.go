// Package service manages the share-token lifecycle: an unguessable
// credential bound 1:1 to a list while sharing is active. Possession of the
// token is the only capability needed for read access; it is not tied to any
// user identity.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/willian-mayer/listify/internal/list/models"
	"github.com/willian-mayer/listify/internal/platform/metrics"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
	"github.com/willian-mayer/listify/pkg/requestcontext"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

// ShareStore is the slice of the list store the share manager needs.
type ShareStore interface {
	FindOwnership(ctx context.Context, listID int64) (models.Ownership, error)
	FindListByID(ctx context.Context, id int64) (*models.List, error)
	FindListByShareToken(ctx context.Context, token string) (*models.List, error)
	ClaimShareToken(ctx context.Context, listID int64, token string) (bool, error)
	DisableShare(ctx context.Context, listID int64) error
	ItemsByList(ctx context.Context, listID int64) ([]models.Item, error)
}

// ResolveCache is an optional token→list hint. The store remains
// authoritative: a cache hit is always re-validated against the list's
// current share state, so a stale entry can never resurrect a revoked link.
type ResolveCache interface {
	GetListID(ctx context.Context, token string) (int64, bool)
	SetListID(ctx context.Context, token string, listID int64)
	Invalidate(ctx context.Context, token string)
}

// TxRunner wraps a function in a storage transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noopTx struct{}

func (noopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// claimRetries bounds collision retries. With 128-bit tokens a single retry
// is already overwhelming overkill; the loop exists because the store
// contract admits conflicts, not because they happen.
const claimRetries = 3

// Service implements enable/disable/resolve for share links.
type Service struct {
	store    ShareStore
	cache    ResolveCache
	tx       TxRunner
	baseURL  string
	generate func() (string, error)
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) { s.tx = tx }
}

// WithResolveCache attaches the optional redis-backed token cache.
func WithResolveCache(cache ResolveCache) Option {
	return func(s *Service) { s.cache = cache }
}

// withTokenGenerator overrides token generation in tests.
func withTokenGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.generate = gen }
}

// New constructs the share service. baseURL is the public prefix share URLs
// are built from, e.g. "https://listify.space/shared".
func New(store ShareStore, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:    store,
		tx:       noopTx{},
		baseURL:  baseURL,
		generate: GenerateToken,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShareLink is the result of enabling sharing.
type ShareLink struct {
	Token string
	URL   string
}

var errListNotFound = dErrors.New(dErrors.CodeNotFound, "list not found")

func (s *Service) requireOwner(ctx context.Context, listID, requesterID int64) error {
	own, err := s.store.FindOwnership(ctx, listID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return errListNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check list access")
	}
	if own.OwnerID != requesterID {
		return dErrors.New(dErrors.CodeForbidden, "only the owner can manage sharing")
	}
	return nil
}

// Enable turns on sharing and returns the link. Idempotent: a list that is
// already shared keeps its token. On the (theoretical) token collision with
// another list the claim is retried with a fresh token.
//
// Each attempt runs in its own transaction: the unique violation the
// collision raises aborts the transaction it happened in, so a retry on the
// same transaction could only fail again.
func (s *Service) Enable(ctx context.Context, requesterID, listID int64) (*ShareLink, error) {
	for attempt := 0; attempt < claimRetries; attempt++ {
		token, err := s.generate()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate share token")
		}

		var link *ShareLink
		var claimed bool
		err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
			if err := s.requireOwner(ctx, listID, requesterID); err != nil {
				return err
			}
			claimed, err = s.store.ClaimShareToken(ctx, listID, token)
			if err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					// Raw sentinel so the outer loop retries with a fresh token.
					return err
				}
				if errors.Is(err, sentinel.ErrNotFound) {
					return errListNotFound
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to enable sharing")
			}
			if !claimed {
				// A token is already in place; return it unchanged.
				list, err := s.store.FindListByID(ctx, listID)
				if err != nil {
					return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load list")
				}
				if list.ShareToken == nil {
					// Lost a race with a concurrent disable; caller retries.
					return dErrors.New(dErrors.CodeConflict, "sharing state changed, retry")
				}
				token = *list.ShareToken
			}
			link = &ShareLink{Token: token, URL: s.baseURL + "/" + token}
			return nil
		})
		if errors.Is(err, sentinel.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if claimed && s.metrics != nil {
			s.metrics.ShareLinksEnabled.Inc()
		}
		s.logger.InfoContext(ctx, "share link enabled",
			"list_id", listID,
			"user_id", requesterID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return link, nil
	}
	return nil, dErrors.New(dErrors.CodeConflict, "could not allocate a unique share token")
}

// Disable revokes sharing: token and shared flag are cleared together, and
// any cached resolution for the old token is dropped.
func (s *Service) Disable(ctx context.Context, requesterID, listID int64) error {
	var oldToken string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requireOwner(ctx, listID, requesterID); err != nil {
			return err
		}
		list, err := s.store.FindListByID(ctx, listID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load list")
		}
		if list.ShareToken != nil {
			oldToken = *list.ShareToken
		}
		if err := s.store.DisableShare(ctx, listID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to disable sharing")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil && oldToken != "" {
		s.cache.Invalidate(ctx, oldToken)
	}
	if s.metrics != nil {
		s.metrics.ShareLinksRevoked.Inc()
	}
	s.logger.InfoContext(ctx, "share link revoked",
		"list_id", listID,
		"user_id", requesterID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

var errSharedNotFound = dErrors.New(dErrors.CodeNotFound, "shared list not found")

// Resolve returns the list (with items) for a share token. Lookup is
// exact-match; an unknown or revoked token is NotFound, with no hint of
// whether the list still exists.
func (s *Service) Resolve(ctx context.Context, token string) (*models.ListWithItems, error) {
	if token == "" {
		return nil, errSharedNotFound
	}

	list, err := s.resolveList(ctx, token)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ItemsByList(ctx, list.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load items")
	}
	if s.metrics != nil {
		s.metrics.SharedListResolves.Inc()
	}
	return &models.ListWithItems{List: *list, Items: items}, nil
}

func (s *Service) resolveList(ctx context.Context, token string) (*models.List, error) {
	if s.cache != nil {
		if listID, ok := s.cache.GetListID(ctx, token); ok {
			list, err := s.store.FindListByID(ctx, listID)
			if err == nil && list.IsShared && list.ShareToken != nil && *list.ShareToken == token {
				return list, nil
			}
			// Stale hint: fall through to the authoritative lookup.
			s.cache.Invalidate(ctx, token)
		}
	}

	list, err := s.store.FindListByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errSharedNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve share token")
	}
	if s.cache != nil {
		s.cache.SetListID(ctx, token, list.ID)
	}
	return list, nil
}
