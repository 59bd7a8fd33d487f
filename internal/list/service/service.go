// Package service implements list and item operations behind access control.
//
// Every operation follows the same order: existence, then access, then the
// mutation, all inside one transaction for multi-step writes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/willian-mayer/listify/internal/list/models"
	"github.com/willian-mayer/listify/internal/platform/metrics"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
	"github.com/willian-mayer/listify/pkg/requestcontext"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

// ListStore persists lists.
type ListStore interface {
	CreateList(ctx context.Context, list *models.List) error
	FindListByID(ctx context.Context, id int64) (*models.List, error)
	FindOwnership(ctx context.Context, listID int64) (models.Ownership, error)
	ListsByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]models.List, error)
	UpdateList(ctx context.Context, list *models.List) error
	DeleteList(ctx context.Context, id int64) error
}

// ItemStore persists items.
type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	FindItemByID(ctx context.Context, id int64) (*models.Item, error)
	ItemsByList(ctx context.Context, listID int64) ([]models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

// TxRunner wraps a function in a storage transaction. The in-memory runner
// is a pass-through; the postgres runner opens a real transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noopTx struct{}

func (noopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const defaultPageLimit = 100

// Service orchestrates list and item CRUD.
type Service struct {
	lists   ListStore
	items   ItemStore
	tx      TxRunner
	logger  *slog.Logger
	metrics *metrics.Metrics
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

func New(lists ListStore, items ItemStore, opts ...Option) *Service {
	s := &Service{
		lists:  lists,
		items:  items,
		tx:     noopTx{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateList creates a list owned by the requester.
func (s *Service) CreateList(ctx context.Context, ownerID int64, title string, description *string) (*models.List, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}

	now := requestcontext.Now(ctx)
	list := &models.List{
		Title:       title,
		Description: description,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.lists.CreateList(ctx, list); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create list")
	}
	if s.metrics != nil {
		s.metrics.ListsCreated.Inc()
	}
	return list, nil
}

// Lists returns the requester's own lists, paginated.
func (s *Service) Lists(ctx context.Context, ownerID int64, offset, limit int) ([]models.List, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > defaultPageLimit {
		limit = defaultPageLimit
	}
	lists, err := s.lists.ListsByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list lists")
	}
	return lists, nil
}

// GetListWithItems returns a list and its items. Owners and shared readers
// may fetch it.
func (s *Service) GetListWithItems(ctx context.Context, requesterID, listID int64) (*models.ListWithItems, error) {
	if _, err := s.requireAccess(ctx, listID, requesterID, AccessSharedRead); err != nil {
		return nil, err
	}
	return s.loadListWithItems(ctx, listID)
}

func (s *Service) loadListWithItems(ctx context.Context, listID int64) (*models.ListWithItems, error) {
	list, err := s.lists.FindListByID(ctx, listID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errListNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load list")
	}
	items, err := s.items.ItemsByList(ctx, listID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load items")
	}
	return &models.ListWithItems{List: *list, Items: items}, nil
}

// UpdateList applies a partial update. Owner only.
func (s *Service) UpdateList(ctx context.Context, requesterID, listID int64, patch models.ListPatch) (*models.List, error) {
	if patch.Title.Set && strings.TrimSpace(patch.Title.Value) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title cannot be empty")
	}

	var updated *models.List
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.requireAccess(ctx, listID, requesterID, AccessOwner); err != nil {
			return err
		}
		list, err := s.lists.FindListByID(ctx, listID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load list")
		}
		list.Apply(patch, requestcontext.Now(ctx))
		if err := s.lists.UpdateList(ctx, list); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update list")
		}
		updated = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteList removes a list and all its items in one transaction. Owner only.
func (s *Service) DeleteList(ctx context.Context, requesterID, listID int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.requireAccess(ctx, listID, requesterID, AccessOwner); err != nil {
			return err
		}
		if err := s.lists.DeleteList(ctx, listID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete list")
		}
		s.logger.InfoContext(ctx, "list deleted",
			"list_id", listID,
			"user_id", requesterID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	})
}
