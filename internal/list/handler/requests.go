package handler

import (
	"encoding/json"
	"strings"

	"github.com/willian-mayer/listify/internal/list/models"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

// CreateListRequest is the body of POST /lists.
type CreateListRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

func (r *CreateListRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	return nil
}

// UpdateListRequest is the body of PUT /lists/{id}. Decoding keeps three
// states apart per field: absent (leave unchanged), null (clear, description
// only) and a value. The default decoder collapses absent and null, so the
// raw message is inspected first.
type UpdateListRequest struct {
	Title       models.Field[string]
	Description models.Field[*string]
}

func (r *UpdateListRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       *json.RawMessage `json:"title"`
		Description *json.RawMessage `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Title != nil {
		if isJSONNull(*raw.Title) {
			return dErrors.New(dErrors.CodeValidation, "title cannot be null")
		}
		var title string
		if err := json.Unmarshal(*raw.Title, &title); err != nil {
			return err
		}
		r.Title = models.Some(title)
	}
	if raw.Description != nil {
		if isJSONNull(*raw.Description) {
			r.Description = models.Some[*string](nil)
		} else {
			var desc string
			if err := json.Unmarshal(*raw.Description, &desc); err != nil {
				return err
			}
			r.Description = models.Some(&desc)
		}
	}
	return nil
}

func (r *UpdateListRequest) Validate() error {
	if r.Title.Set && strings.TrimSpace(r.Title.Value) == "" {
		return dErrors.New(dErrors.CodeValidation, "title cannot be empty")
	}
	return nil
}

func (r *UpdateListRequest) Patch() models.ListPatch {
	return models.ListPatch{Title: r.Title, Description: r.Description}
}

// CreateItemRequest is the body of POST /items.
type CreateItemRequest struct {
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

func (r *CreateItemRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// UpdateItemRequest is the body of PUT /items/{id}. Neither field is
// nullable; both are optional.
type UpdateItemRequest struct {
	Name    models.Field[string]
	Checked models.Field[bool]
}

func (r *UpdateItemRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    *json.RawMessage `json:"name"`
		Checked *json.RawMessage `json:"checked"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Name != nil {
		if isJSONNull(*raw.Name) {
			return dErrors.New(dErrors.CodeValidation, "name cannot be null")
		}
		var name string
		if err := json.Unmarshal(*raw.Name, &name); err != nil {
			return err
		}
		r.Name = models.Some(name)
	}
	if raw.Checked != nil {
		if isJSONNull(*raw.Checked) {
			return dErrors.New(dErrors.CodeValidation, "checked cannot be null")
		}
		var checked bool
		if err := json.Unmarshal(*raw.Checked, &checked); err != nil {
			return err
		}
		r.Checked = models.Some(checked)
	}
	return nil
}

func (r *UpdateItemRequest) Validate() error {
	if r.Name.Set && strings.TrimSpace(r.Name.Value) == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
	}
	return nil
}

func (r *UpdateItemRequest) Patch() models.ItemPatch {
	return models.ItemPatch{Name: r.Name, Checked: r.Checked}
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
