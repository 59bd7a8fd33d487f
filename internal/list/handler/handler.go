// Package handler exposes the list and item endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/willian-mayer/listify/internal/list/models"
	"github.com/willian-mayer/listify/pkg/platform/httputil"
	"github.com/willian-mayer/listify/pkg/requestcontext"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

// Service defines the list operations the handler needs.
type Service interface {
	CreateList(ctx context.Context, ownerID int64, title string, description *string) (*models.List, error)
	Lists(ctx context.Context, ownerID int64, offset, limit int) ([]models.List, error)
	GetListWithItems(ctx context.Context, requesterID, listID int64) (*models.ListWithItems, error)
	UpdateList(ctx context.Context, requesterID, listID int64, patch models.ListPatch) (*models.List, error)
	DeleteList(ctx context.Context, requesterID, listID int64) error

	CreateItem(ctx context.Context, requesterID, listID int64, name string, checked bool) (*models.Item, error)
	Items(ctx context.Context, requesterID, listID int64) ([]models.Item, error)
	GetItem(ctx context.Context, requesterID, itemID int64) (*models.Item, error)
	UpdateItem(ctx context.Context, requesterID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	ToggleItem(ctx context.Context, requesterID, itemID int64) (*models.Item, error)
	DeleteItem(ctx context.Context, requesterID, itemID int64) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterProtected mounts every list and item endpoint behind the bearer
// middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/lists", h.HandleCreateList)
	r.Get("/lists", h.HandleLists)
	r.Get("/lists/{id}", h.HandleGetList)
	r.Put("/lists/{id}", h.HandleUpdateList)
	r.Delete("/lists/{id}", h.HandleDeleteList)

	r.Post("/items", h.HandleCreateItem)
	r.Get("/items/list/{list_id}", h.HandleItems)
	r.Get("/items/{id}", h.HandleGetItem)
	r.Put("/items/{id}", h.HandleUpdateItem)
	r.Patch("/items/{id}/toggle", h.HandleToggleItem)
	r.Delete("/items/{id}", h.HandleDeleteItem)
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid "+name)
	}
	return id, nil
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid "+name)
	}
	return v, nil
}

// HandleCreateList handles POST /lists.
func (h *Handler) HandleCreateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateListRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	list, err := h.service.CreateList(ctx, requestcontext.UserID(ctx), req.Title, req.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, list)
}

// HandleLists handles GET /lists with optional offset/limit paging.
func (h *Handler) HandleLists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	lists, err := h.service.Lists(ctx, requestcontext.UserID(ctx), offset, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if lists == nil {
		lists = []models.List{}
	}
	httputil.WriteJSON(w, http.StatusOK, lists)
}

// HandleGetList handles GET /lists/{id}.
func (h *Handler) HandleGetList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.GetListWithItems(ctx, requestcontext.UserID(ctx), listID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleUpdateList handles PUT /lists/{id}.
func (h *Handler) HandleUpdateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	listID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateListRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	list, err := h.service.UpdateList(ctx, requestcontext.UserID(ctx), listID, req.Patch())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleDeleteList handles DELETE /lists/{id}.
func (h *Handler) HandleDeleteList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.DeleteList(ctx, requestcontext.UserID(ctx), listID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateItem handles POST /items?list_id=.
func (h *Handler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	listID, err := strconv.ParseInt(r.URL.Query().Get("list_id"), 10, 64)
	if err != nil || listID <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid list_id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateItemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.CreateItem(ctx, requestcontext.UserID(ctx), listID, req.Name, req.Checked)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, item)
}

// HandleItems handles GET /items/list/{list_id}.
func (h *Handler) HandleItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, err := idParam(r, "list_id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, err := h.service.Items(ctx, requestcontext.UserID(ctx), listID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

// HandleGetItem handles GET /items/{id}.
func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.service.GetItem(ctx, requestcontext.UserID(ctx), itemID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

// HandleUpdateItem handles PUT /items/{id}.
func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	itemID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateItemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.UpdateItem(ctx, requestcontext.UserID(ctx), itemID, req.Patch())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

// HandleToggleItem handles PATCH /items/{id}/toggle.
func (h *Handler) HandleToggleItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.service.ToggleItem(ctx, requestcontext.UserID(ctx), itemID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

// HandleDeleteItem handles DELETE /items/{id}.
func (h *Handler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := idParam(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.DeleteItem(ctx, requestcontext.UserID(ctx), itemID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
