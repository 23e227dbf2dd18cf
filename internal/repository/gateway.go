package repository

import (
	"log/slog"

	"gorm.io/gorm"
)

// Gateway bundles the repositories the record lifecycle drives into a single
// persistence surface.
type Gateway struct {
	CertificateRepository
	ConfigRepository
}

func NewGateway(db *gorm.DB, logger *slog.Logger) *Gateway {
	return &Gateway{
		CertificateRepository: NewCertificateRepository(db, logger),
		ConfigRepository:      NewConfigRepository(db, logger),
	}
}
