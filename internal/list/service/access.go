package service

import (
	"context"
	"errors"

	"github.com/willian-mayer/listify/internal/list/models"
	"github.com/willian-mayer/listify/pkg/platform/sentinel"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

// Access is the authorization decision for a (list, requester) pair.
type Access int

const (
	AccessDenied Access = iota
	AccessSharedRead
	AccessOwner
)

// Decide maps an ownership tuple and requester to exactly one access level.
// Owner wins; otherwise sharing grants SharedRead; otherwise Denied.
func Decide(own models.Ownership, requesterID int64) Access {
	switch {
	case own.OwnerID == requesterID:
		return AccessOwner
	case own.IsShared:
		return AccessSharedRead
	default:
		return AccessDenied
	}
}

// errListNotFound is returned before any ownership information leaks: a
// missing list is 404 for everyone, owner or not.
var errListNotFound = dErrors.New(dErrors.CodeNotFound, "list not found")

// requireAccess loads the ownership tuple and enforces a minimum access
// level. Existence is checked first, ownership second, so a non-owner
// probing a deleted list learns nothing from the error shape.
func (s *Service) requireAccess(ctx context.Context, listID, requesterID int64, min Access) (models.Ownership, error) {
	own, err := s.lists.FindOwnership(ctx, listID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Ownership{}, errListNotFound
		}
		return models.Ownership{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check list access")
	}
	if Decide(own, requesterID) < min {
		return models.Ownership{}, dErrors.New(dErrors.CodeForbidden, "you do not have access to this list")
	}
	return own, nil
}
