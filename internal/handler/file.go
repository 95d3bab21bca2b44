package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	dataroomSvc "dataroom/internal/domain/services/dataroom"
)

// FileHandler serves file content to owners and share link viewers
type FileHandler struct {
	fileService  dataroomSvc.FileService
	shareService dataroomSvc.ShareService
	logger       *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService dataroomSvc.FileService, shareService dataroomSvc.ShareService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService:  fileService,
		shareService: shareService,
		logger:       logger,
	}
}

// Download sends a file as an attachment
// GET /api/files/{id}/download[?token=]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "attachment", false)
}

// Preview sends a file inline with its stored MIME type. Types a browser
// would execute in the app's origin fall back to a download.
// GET /api/files/{id}/preview[?token=]
func (h *FileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "inline", true)
}

// activeTypes can run script when rendered inline
var activeTypes = map[string]bool{
	"text/html":              true,
	"application/xhtml+xml":  true,
	"image/svg+xml":          true,
	"text/xml":               true,
	"application/xml":        true,
	"text/javascript":        true,
	"application/javascript": true,
}

func isActiveType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	return activeTypes[strings.ToLower(mediaType)]
}

// serve opens the file through the share link when ?token= is present,
// otherwise as the authenticated owner
func (h *FileHandler) serve(w http.ResponseWriter, r *http.Request, disposition string, inline bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var (
		content *dataroomSvc.FileContent
		err     error
	)
	token := r.URL.Query().Get("token")
	if token != "" {
		content, err = h.shareService.OpenSharedFile(r.Context(), token, id)
	} else {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		content, err = h.fileService.OpenFile(r.Context(), userID, id)
	}
	if err != nil {
		handleError(w, err)
		return
	}
	defer content.Reader.Close()

	contentType := "application/octet-stream"
	if inline && content.Node.MimeType != "" {
		if isActiveType(content.Node.MimeType) {
			disposition = "attachment"
		} else {
			contentType = content.Node.MimeType
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": content.Node.Name}))
	w.Header().Set("Content-Length", strconv.FormatInt(content.Node.Size, 10))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	switch {
	case inline && token != "":
		w.Header().Set("Cache-Control", "public, max-age=3600")
	case inline:
		w.Header().Set("Cache-Control", "private, max-age=3600")
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content.Reader); err != nil {
		h.logger.Warn("file stream interrupted", "node_id", content.Node.ID, "error", err)
	}
}
