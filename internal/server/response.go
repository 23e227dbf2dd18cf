package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/ingest"
	"github.com/campuscerts/cert-tracker/internal/lifecycle"
	"github.com/campuscerts/cert-tracker/internal/normalize"
	"github.com/campuscerts/cert-tracker/internal/recognize"
	"github.com/campuscerts/cert-tracker/internal/reconcile"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Unrecognized
// errors become 500 with a generic message so internals stay out of replies.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		deadlineErr  lifecycle.DeadlinePassedError
		missingErr   lifecycle.MissingRequiredFieldsError
		authorityErr reconcile.FieldAuthorityError
		valErr       common.ValidationError
		ingestErr    *ingest.IngestionError
	)

	switch {
	case errors.As(err, &ingestErr):
		// unwrap to the stage failure, keep the stored file id visible
		inner := ingestErr.Err
		switch {
		case errors.Is(inner, recognize.ErrExtractionFailed):
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":   "certificate recognition failed, please retry or enter fields manually",
				"stage":   ingestErr.Stage,
				"file_id": ingestErr.FileID.String(),
			})
		default:
			writeDomainError(w, inner)
		}
	case errors.As(err, &deadlineErr):
		writeError(w, http.StatusForbidden, deadlineErr.Error())
	case errors.As(err, &missingErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":          "required fields missing",
			"missing_fields": missingErr.Fields,
		})
	case errors.As(err, &authorityErr):
		writeError(w, http.StatusForbidden, authorityErr.Error())
	case errors.As(err, &valErr):
		writeError(w, http.StatusBadRequest, valErr.Error())
	case errors.Is(err, lifecycle.ErrRecordImmutable):
		writeError(w, http.StatusConflict, "certificate is already submitted and cannot be changed")
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, reconcile.ErrRoleCannotSubmit):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, normalize.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, normalize.ErrCorruptInput):
		writeError(w, http.StatusBadRequest, "file cannot be read, it may be corrupt")
	case errors.Is(err, normalize.ErrPasswordProtected):
		writeError(w, http.StatusBadRequest, "document is password protected, please upload an unlocked copy")
	case errors.Is(err, normalize.ErrConverterUnavailable):
		writeError(w, http.StatusServiceUnavailable, "pdf rendering is not available on this server, contact the administrator")
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, common.ErrConflict):
		writeError(w, http.StatusConflict, "conflicting concurrent update")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
