package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"dataroom/internal/config"
	models "dataroom/internal/domain/models/dataroom"
	dataroomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/httputil"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temp files
const multipartMemory = 8 << 20

// UploadHandler handles multipart file uploads
type UploadHandler struct {
	nodeService dataroomSvc.NodeService
	logger      *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(nodeService dataroomSvc.NodeService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		nodeService: nodeService,
		logger:      logger,
	}
}

// UploadFiles stores a batch of files into one folder
// POST /api/files/upload (multipart: files, dataroom_id, parent_id)
// Always 200 once the batch ran; per-file failures are listed in conflicts.
func (h *UploadHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadRequestSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "upload request is too large")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	files := make([]dataroomSvc.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, uploadFile(fh))
	}

	result, err := h.nodeService.UploadFiles(r.Context(), &dataroomSvc.UploadRequest{
		UserID:     userID,
		DataroomID: r.FormValue("dataroom_id"),
		ParentID:   models.StringPtr(r.FormValue("parent_id")),
		Files:      files,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

func uploadFile(fh *multipart.FileHeader) dataroomSvc.UploadFile {
	return dataroomSvc.UploadFile{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
