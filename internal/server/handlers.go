package server

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campuscerts/cert-tracker/constants"
	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
	"github.com/campuscerts/cert-tracker/internal/ingest"
	"github.com/campuscerts/cert-tracker/internal/lifecycle"
	"github.com/campuscerts/cert-tracker/internal/repository"
)

// CertificateHandler serves the submitter-facing certificate endpoints.
type CertificateHandler struct {
	ingest  *ingest.Service
	machine *lifecycle.Machine
	certs   repository.CertificateRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

func NewCertificateHandler(
	ing *ingest.Service,
	machine *lifecycle.Machine,
	certs repository.CertificateRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *CertificateHandler {
	return &CertificateHandler{ingest: ing, machine: machine, certs: certs, users: users, logger: logger}
}

// identity resolves the acting account from the request context.
func (h *CertificateHandler) identity(r *http.Request) (entity.Identity, error) {
	accountID := common.AccountIDFromContext(r.Context())
	user, err := h.users.GetByAccountID(r.Context(), accountID)
	if err != nil {
		return entity.Identity{}, err
	}
	return user.Identity(), nil
}

func certID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "certID"))
	return id, err == nil
}

// Upload receives a certificate file and runs the full ingestion pipeline.
func (h *CertificateHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	accountID := common.AccountIDFromContext(r.Context())
	ext := filepath.Ext(header.Filename)
	res, err := h.ingest.Ingest(r.Context(), raw, header.Filename, ext, accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// List returns the caller's certificates; administrators may list anyone's
// via ?account= and filter by ?status=.
func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	f := repository.ListFilter{SubmitterAccountID: id.AccountID}
	if id.Role == constants.RoleAdmin {
		f.SubmitterAccountID = r.URL.Query().Get("account")
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := constants.RecordStatus(s)
		if status != constants.StatusDraft && status != constants.StatusSubmitted {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		f.Status = status
	}

	certs, err := h.certs.ListCertificates(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"certificates": certs,
		"total":        len(certs),
	})
}

func (h *CertificateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := certID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed certificate id")
		return
	}
	actor, err := h.identity(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cert, err := h.certs.GetCertificate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if actor.Role != constants.RoleAdmin && cert.SubmitterAccountID != actor.AccountID {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

// Update applies field edits to a draft.
func (h *CertificateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := certID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed certificate id")
		return
	}
	var req struct {
		Fields map[string]string `json:"fields"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "fields is required")
		return
	}
	actor, err := h.identity(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cert, err := h.machine.Edit(r.Context(), id, actor, req.Fields)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

// Submit finalizes a draft certificate.
func (h *CertificateHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := certID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed certificate id")
		return
	}
	actor, err := h.identity(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	cert, err := h.machine.Submit(r.Context(), id, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

// Delete removes a draft (or, for administrators, any record).
func (h *CertificateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := certID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed certificate id")
		return
	}
	actor, err := h.identity(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.machine.Delete(r.Context(), id, actor); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}
