// Package models holds the list domain entities and patch value objects.
package models

import "time"

// List is a user-owned collection of items. ShareToken is present iff
// IsShared is true; the pair changes together, never separately.
type List struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	UserID      int64     `json:"user_id"`
	ShareToken  *string   `json:"share_token,omitempty"`
	IsShared    bool      `json:"is_shared"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListWithItems is a list plus its items, as returned by detail endpoints.
type ListWithItems struct {
	List
	Items []Item `json:"items"`
}

// Ownership is the minimal tuple access control needs. Fetching it avoids
// materializing the full list row (and its items) just to answer "may this
// user touch this list".
type Ownership struct {
	ListID   int64
	OwnerID  int64
	IsShared bool
}

// Field carries an optional patch value. Set reports whether the caller
// supplied the field at all, which is how "absent" stays distinct from
// "set to zero value".
type Field[T any] struct {
	Set   bool
	Value T
}

// Some constructs a set Field.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// ListPatch is a partial update. Description admits an explicit nil to clear
// the stored value; Title does not.
type ListPatch struct {
	Title       Field[string]
	Description Field[*string]
}

// Apply merges set fields into the list and bumps UpdatedAt.
func (l *List) Apply(p ListPatch, now time.Time) {
	if p.Title.Set {
		l.Title = p.Title.Value
	}
	if p.Description.Set {
		l.Description = p.Description.Value
	}
	l.UpdatedAt = now
}
