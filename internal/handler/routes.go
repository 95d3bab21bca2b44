package handler

import (
	"net/http"

	"dataroom/internal/httputil"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Datarooms *DataroomHandler
	Nodes     *NodeHandler
	Uploads   *UploadHandler
	Files     *FileHandler
	Shares    *ShareHandler
}

// Register adds all API routes to mux (Go 1.22+ method patterns).
// wrap, if not nil, decorates each route's handler with its pattern.
func (h *Handlers) Register(mux *http.ServeMux, wrap func(pattern string, next http.Handler) http.Handler) {
	handle := func(pattern string, fn http.HandlerFunc) {
		var next http.Handler = fn
		if wrap != nil {
			next = wrap(pattern, next)
		}
		mux.Handle(pattern, next)
	}

	handle("GET /health", Health)

	// Data rooms
	handle("GET /api/datarooms", h.Datarooms.ListDatarooms)
	handle("POST /api/datarooms", h.Datarooms.CreateDataroom)
	handle("GET /api/datarooms/default", h.Datarooms.GetDefault) // more specific than {id}
	handle("GET /api/datarooms/{id}", h.Datarooms.GetDataroom)
	handle("DELETE /api/datarooms/{id}", h.Datarooms.DeleteDataroom)
	handle("GET /api/datarooms/{id}/tree", h.Datarooms.GetTree)
	handle("GET /api/datarooms/{id}/resolve", h.Datarooms.ResolvePath)
	handle("GET /api/datarooms/{id}/shares", h.Shares.ListShareLinks)

	// Folders and files
	handle("POST /api/folders", h.Nodes.CreateFolder)
	handle("POST /api/files/upload", h.Uploads.UploadFiles)
	handle("PATCH /api/nodes/{id}", h.Nodes.UpdateNode)
	handle("DELETE /api/nodes/{id}", h.Nodes.DeleteNode)
	handle("POST /api/nodes/bulk-delete", h.Nodes.BulkDelete)
	handle("GET /api/files/{id}/download", h.Files.Download)
	handle("GET /api/files/{id}/preview", h.Files.Preview)

	// Share links
	handle("POST /api/shares", h.Shares.CreateShareLink)
	handle("DELETE /api/shares/{token}", h.Shares.RevokeShareLink)
	handle("GET /api/share/{token}", h.Shares.GetShared)
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
