package handler

import (
	"log/slog"
	"net/http"

	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/httputil"
)

// DataroomHandler handles data room HTTP requests
type DataroomHandler struct {
	dataroomService dataroomSvc.DataroomService
	logger          *slog.Logger
}

// NewDataroomHandler creates a new data room handler
func NewDataroomHandler(dataroomService dataroomSvc.DataroomService, logger *slog.Logger) *DataroomHandler {
	return &DataroomHandler{
		dataroomService: dataroomService,
		logger:          logger,
	}
}

// GetDefault returns the caller's first data room, creating it if needed
// GET /api/datarooms/default
func (h *DataroomHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	room, err := h.dataroomService.GetOrCreateDefault(r.Context(), userID, httputil.GetEmail(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, room)
}

// ListDatarooms lists the caller's data rooms, oldest first
// GET /api/datarooms
func (h *DataroomHandler) ListDatarooms(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	rooms, err := h.dataroomService.ListDatarooms(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, rooms)
}

// CreateDataroom creates a data room
// POST /api/datarooms
func (h *DataroomHandler) CreateDataroom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dataroomSvc.CreateDataroomRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = userID
	req.OwnerEmail = httputil.GetEmail(r)

	room, err := h.dataroomService.CreateDataroom(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, room)
}

// GetDataroom returns a room with its flat node list
// GET /api/datarooms/{id}
func (h *DataroomHandler) GetDataroom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	room, err := h.dataroomService.GetDataroom(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, room)
}

// DeleteDataroom deletes a room with everything in it
// DELETE /api/datarooms/{id}
func (h *DataroomHandler) DeleteDataroom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.dataroomService.DeleteDataroom(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTree returns the nested folder/file tree
// GET /api/datarooms/{id}/tree
func (h *DataroomHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tree, err := h.dataroomService.GetTree(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// ResolvePath resolves ?path=a/b to a folder with breadcrumbs and children
// GET /api/datarooms/{id}/resolve
func (h *DataroomHandler) ResolvePath(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.dataroomService.ResolvePath(r.Context(), userID, id, r.URL.Query().Get("path"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}
