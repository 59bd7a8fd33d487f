// Package handler exposes share-link management and the public shared view.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/willian-mayer/listify/internal/list/models"
	"github.com/willian-mayer/listify/internal/share/service"
	"github.com/willian-mayer/listify/pkg/platform/httputil"
	"github.com/willian-mayer/listify/pkg/requestcontext"

	dErrors "github.com/willian-mayer/listify/pkg/domain-errors"
)

// Service defines the share operations the handler needs.
type Service interface {
	Enable(ctx context.Context, requesterID, listID int64) (*service.ShareLink, error)
	Disable(ctx context.Context, requesterID, listID int64) error
	Resolve(ctx context.Context, token string) (*models.ListWithItems, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterProtected mounts the owner-facing share management endpoints.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/lists/{id}/share", h.HandleEnable)
	r.Delete("/lists/{id}/share", h.HandleDisable)
	r.Get("/shared/{token}", h.HandleResolve)
}

// ShareLinkResponse is the body returned when sharing is enabled.
type ShareLinkResponse struct {
	ShareToken string `json:"share_token"`
	ShareURL   string `json:"share_url"`
}

func listIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid list id")
	}
	return id, nil
}

// HandleEnable handles POST /lists/{id}/share.
func (h *Handler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, err := listIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	link, err := h.service.Enable(ctx, requestcontext.UserID(ctx), listID)
	if err != nil {
		h.logger.WarnContext(ctx, "enable share failed",
			"request_id", requestcontext.RequestID(ctx),
			"list_id", listID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ShareLinkResponse{
		ShareToken: link.Token,
		ShareURL:   link.URL,
	})
}

// HandleDisable handles DELETE /lists/{id}/share.
func (h *Handler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listID, err := listIDParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Disable(ctx, requestcontext.UserID(ctx), listID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResolve handles GET /shared/{token}.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	list, err := h.service.Resolve(ctx, token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}
