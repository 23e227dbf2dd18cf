package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// NewRouter assembles the HTTP surface. All routes expect the fronting
// application to have authenticated the caller and set X-Account-ID.
func NewRouter(certH *CertificateHandler, adminH *AdminHandler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(recovery(logger))
	r.Use(requestLogger(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(withAccount)

			r.Post("/certificates/upload", certH.Upload)
			r.Get("/certificates", certH.List)
			r.Get("/certificates/{certID}", certH.Get)
			r.Put("/certificates/{certID}", certH.Update)
			r.Post("/certificates/{certID}/submit", certH.Submit)
			r.Delete("/certificates/{certID}", certH.Delete)

			r.Get("/admin/deadline", adminH.requireAdmin(adminH.GetDeadline))
			r.Put("/admin/deadline", adminH.requireAdmin(adminH.SetDeadline))
			r.Get("/admin/statistics", adminH.requireAdmin(adminH.Statistics))
			r.Get("/admin/export", adminH.requireAdmin(adminH.Export))
		})
	})

	return r
}
