package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rewearhq/rewear/internal/model"
	"github.com/rewearhq/rewear/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// jsonFieldErrors writes a 400 with one entry per violated field.
func jsonFieldErrors(w http.ResponseWriter, errs []model.FieldError) {
	jsonResponse(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps a store failure to an HTTP response. Sentinel errors
// carry exact statuses; lock contention becomes a conflict; anything else
// is logged and reported as a 500 with a generic message.
func storeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrNotAllowed):
		jsonError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, store.ErrOwnItem):
		jsonError(w, http.StatusBadRequest, store.ErrOwnItem.Error())
	case errors.Is(err, store.ErrItemUnavailable):
		jsonError(w, http.StatusBadRequest, store.ErrItemUnavailable.Error())
	case errors.Is(err, store.ErrInvalidState):
		jsonError(w, http.StatusBadRequest, store.ErrInvalidState.Error())
	case errors.Is(err, store.ErrInsufficientPoints):
		jsonError(w, http.StatusBadRequest, store.ErrInsufficientPoints.Error())
	case errors.Is(err, store.ErrDuplicateEmail):
		jsonError(w, http.StatusBadRequest, store.ErrDuplicateEmail.Error())
	case store.IsLocked(err):
		jsonError(w, http.StatusConflict, "concurrent modification, retry")
	default:
		slog.Error(fallback, "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}
