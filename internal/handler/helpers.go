package handler

import (
	"errors"
	"net/http"

	"dataroom/internal/domain"
	"dataroom/internal/httputil"
)

// handleError converts domain errors to problem responses.
// Forbidden and not-found look identical so callers cannot probe for
// other tenants' ids.
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]any{
			"resource_type": conflictErr.ResourceType,
			"existing_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPartialAccessDenied):
		httputil.RespondError(w, http.StatusNotFound, domain.ErrPartialAccessDenied.Error())
	case errors.Is(err, domain.ErrShareNotFound):
		httputil.RespondError(w, http.StatusNotFound, "share link not found")
	case errors.Is(err, domain.ErrFolderNotFoundInScope):
		httputil.RespondError(w, http.StatusNotFound, "folder not found")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusNotFound, "not found or access denied")
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrSizeExceeded):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrStorageFailure):
		httputil.RespondError(w, http.StatusBadGateway, "file storage is unavailable")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireUser returns the authenticated user id, writing a 401 if missing
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// pathID reads a required path parameter
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return id, true
}
