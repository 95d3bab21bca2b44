package handler

import (
	"log/slog"
	"net/http"

	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/httputil"
)

// ShareHandler handles share link management and public share views
type ShareHandler struct {
	shareService dataroomSvc.ShareService
	logger       *slog.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(shareService dataroomSvc.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		logger:       logger,
	}
}

// CreateShareLink shares a room or a folder
// POST /api/shares
func (h *ShareHandler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dataroomSvc.CreateShareLinkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = userID

	link, err := h.shareService.CreateShareLink(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, link)
}

// ListShareLinks lists a room's share links
// GET /api/datarooms/{id}/shares
func (h *ShareHandler) ListShareLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	links, err := h.shareService.ListShareLinks(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, links)
}

// RevokeShareLink deletes a share link
// DELETE /api/shares/{token}
func (h *ShareHandler) RevokeShareLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	token, ok := pathID(w, r, "token")
	if !ok {
		return
	}

	if err := h.shareService.RevokeShareLink(r.Context(), userID, token); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetShared is the public view of a share link, navigated to ?path=
// GET /api/share/{token}
func (h *ShareHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	token, ok := pathID(w, r, "token")
	if !ok {
		return
	}

	view, err := h.shareService.GetShared(r.Context(), token, r.URL.Query().Get("path"))
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	httputil.RespondJSON(w, http.StatusOK, view)
}
