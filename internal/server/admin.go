package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/campuscerts/cert-tracker/constants"
	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
	"github.com/campuscerts/cert-tracker/internal/export"
	"github.com/campuscerts/cert-tracker/internal/repository"
)

// AdminHandler serves deadline management, statistics and the XLSX export.
type AdminHandler struct {
	config repository.ConfigRepository
	certs  repository.CertificateRepository
	users  repository.UserRepository
	export *export.Service
	logger *slog.Logger
}

func NewAdminHandler(
	config repository.ConfigRepository,
	certs repository.CertificateRepository,
	users repository.UserRepository,
	exp *export.Service,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{config: config, certs: certs, users: users, export: exp, logger: logger}
}

// requireAdmin wraps a handler with an admin-role gate.
func (h *AdminHandler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := common.AccountIDFromContext(r.Context())
		user, err := h.users.GetByAccountID(r.Context(), accountID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if user.Role != constants.RoleAdmin {
			writeError(w, http.StatusForbidden, "administrator role required")
			return
		}
		next(w, r)
	}
}

func (h *AdminHandler) GetDeadline(w http.ResponseWriter, r *http.Request) {
	deadline, err := h.config.SubmissionDeadline(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := map[string]any{"deadline": ""}
	if !deadline.IsZero() {
		resp["deadline"] = deadline.Format(entity.DeadlineLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Deadline string `json:"deadline"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	deadline, err := time.ParseInLocation(entity.DeadlineLayout, req.Deadline, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "deadline must use layout "+entity.DeadlineLayout)
		return
	}

	accountID := common.AccountIDFromContext(r.Context())
	if err := h.config.SetSubmissionDeadline(r.Context(), deadline, accountID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"deadline": deadline.Format(entity.DeadlineLayout),
	})
}

func (h *AdminHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.certs.Statistics(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Export streams the submitted-certificates workbook as a download.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, rows, err := h.export.ExportCertificatesXLSX(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rows == 0 {
		writeError(w, http.StatusNotFound, "no submitted certificates to export")
		return
	}

	name := export.WorkbookFilename(time.Now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
