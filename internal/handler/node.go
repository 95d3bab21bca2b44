package handler

import (
	"log/slog"
	"net/http"

	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/httputil"
)

// NodeHandler handles folder creation and node mutations
type NodeHandler struct {
	nodeService dataroomSvc.NodeService
	logger      *slog.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(nodeService dataroomSvc.NodeService, logger *slog.Logger) *NodeHandler {
	return &NodeHandler{
		nodeService: nodeService,
		logger:      logger,
	}
}

// CreateFolder creates a folder
// POST /api/folders
// Returns 201, or 409 with the existing node's id on a name conflict
func (h *NodeHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dataroomSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = userID

	folder, err := h.nodeService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// UpdateNodeRequest is the PATCH body. An absent parent_id leaves the node
// where it is; null moves it to the top level.
type UpdateNodeRequest struct {
	Name     *string                 `json:"name"`
	ParentID httputil.OptionalString `json:"parent_id"`
}

// UpdateNode renames and/or moves a node
// PATCH /api/nodes/{id}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateNodeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := h.nodeService.UpdateNode(r.Context(), id, &dataroomSvc.UpdateNodeRequest{
		UserID:   userID,
		Name:     req.Name,
		Move:     req.ParentID.Present,
		ParentID: req.ParentID.Value,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// DeleteNode deletes a node and its subtree
// DELETE /api/nodes/{id}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.nodeService.DeleteNode(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	NodeIDs []string `json:"node_ids"`
}

type bulkDeleteResponse struct {
	DeletedCount int `json:"deleted_count"`
}

// BulkDelete deletes every listed node or none of them
// POST /api/nodes/bulk-delete
func (h *NodeHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req bulkDeleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := h.nodeService.BulkDelete(r.Context(), userID, req.NodeIDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bulkDeleteResponse{DeletedCount: n})
}
