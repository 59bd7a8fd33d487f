package models

import "time"

// Item belongs to exactly one list and has no independent lifecycle.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Checked   bool      `json:"checked"`
	ListID    int64     `json:"list_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemPatch is a partial update for an item.
type ItemPatch struct {
	Name    Field[string]
	Checked Field[bool]
}

// Apply merges set fields into the item and bumps UpdatedAt.
func (i *Item) Apply(p ItemPatch, now time.Time) {
	if p.Name.Set {
		i.Name = p.Name.Value
	}
	if p.Checked.Set {
		i.Checked = p.Checked.Value
	}
	i.UpdatedAt = now
}
