package service

import (
	"context"
	"errors"
	"strings"

	"github.com/willian-mayer/listify/internal/list/models"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"
	"github.com/willian-mayer/listify/pkg/requestcontext"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

var errItemNotFound = dErrors.New(dErrors.CodeNotFound, "item not found")

// CreateItem adds an item to a list. Owners and shared users may add items;
// a missing list is NotFound regardless of who asks.
func (s *Service) CreateItem(ctx context.Context, requesterID, listID int64, name string, checked bool) (*models.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}

	var item *models.Item
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.requireAccess(ctx, listID, requesterID, AccessSharedRead); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		candidate := &models.Item{
			Name:      name,
			Checked:   checked,
			ListID:    listID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.items.CreateItem(ctx, candidate); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return errListNotFound
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create item")
		}
		item = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ItemsCreated.Inc()
	}
	return item, nil
}

// Items returns all items of a list, for owners and shared readers.
func (s *Service) Items(ctx context.Context, requesterID, listID int64) ([]models.Item, error) {
	if _, err := s.requireAccess(ctx, listID, requesterID, AccessSharedRead); err != nil {
		return nil, err
	}
	items, err := s.items.ItemsByList(ctx, listID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	return items, nil
}

// GetItem returns a single item, access-checked through its parent list.
func (s *Service) GetItem(ctx context.Context, requesterID, itemID int64) (*models.Item, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireAccess(ctx, item.ListID, requesterID, AccessSharedRead); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem applies a partial update. Owners and shared users may edit.
func (s *Service) UpdateItem(ctx context.Context, requesterID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if patch.Name.Set && strings.TrimSpace(patch.Name.Value) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}

	var updated *models.Item
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.findItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := s.requireAccess(ctx, item.ListID, requesterID, AccessSharedRead); err != nil {
			return err
		}
		item.Apply(patch, requestcontext.Now(ctx))
		if err := s.items.UpdateItem(ctx, item); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update item")
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleItem flips the checked flag in a read-modify-write.
func (s *Service) ToggleItem(ctx context.Context, requesterID, itemID int64) (*models.Item, error) {
	var updated *models.Item
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.findItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := s.requireAccess(ctx, item.ListID, requesterID, AccessSharedRead); err != nil {
			return err
		}
		item.Checked = !item.Checked
		item.UpdatedAt = requestcontext.Now(ctx)
		if err := s.items.UpdateItem(ctx, item); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to toggle item")
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes an item. Owner of the parent list only.
func (s *Service) DeleteItem(ctx context.Context, requesterID, itemID int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.findItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := s.requireAccess(ctx, item.ListID, requesterID, AccessOwner); err != nil {
			return err
		}
		if err := s.items.DeleteItem(ctx, itemID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete item")
		}
		return nil
	})
}

func (s *Service) findItem(ctx context.Context, itemID int64) (*models.Item, error) {
	item, err := s.items.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errItemNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load item")
	}
	return item, nil
}
