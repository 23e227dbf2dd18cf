// Package normalize converts accepted certificate uploads into a single
// canonical raster image suitable for the recognition service.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuscerts/cert-tracker/constants"
)

// Terminal normalization outcomes. ErrConverterUnavailable is an environment
// problem, not a content problem, and callers are expected to surface it with
// installation guidance rather than blame the upload.
var (
	ErrUnsupportedFormat    = errors.New("unsupported upload format")
	ErrCorruptInput         = errors.New("input cannot be decoded")
	ErrPasswordProtected    = errors.New("document is password protected")
	ErrConverterUnavailable = errors.New("pdf rendering tool not available")
)

// CanonicalImage is the normalized raster form of an upload: PNG bytes with
// no side longer than the configured maximum.
type CanonicalImage struct {
	PNG          []byte
	Width        int
	Height       int
	SourceFormat string // constants.PDF | constants.IMAGE
}

// Config for the normalizer.
type Config struct {
	PDFToPPM     string // binary name or absolute path; if empty -> "pdftoppm"
	DPI          int    // rasterization DPI for PDFs, default 200
	MaxDimension int    // longest allowed side of the canonical image, default 2048
}

// Normalizer implements upload-to-canonical-image conversion.
type Normalizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// New builds a Normalizer with defaults filled in.
func New(cfg Config, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PDFToPPM == "" {
		cfg.PDFToPPM = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = 2048
	}
	return &Normalizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Normalize picks a strategy based on the declared type (extension).
// PDF documents are rendered first page only; certificate data is assumed to
// live on page one, so truncation is policy rather than data loss.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte, declaredType string) (CanonicalImage, error) {
	start := time.Now()
	ext := constants.NormalizeExt(declaredType)

	if len(raw) == 0 {
		return CanonicalImage{}, fmt.Errorf("empty upload: %w", ErrCorruptInput)
	}

	var (
		img CanonicalImage
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		img, err = n.renderPDFFirstPage(ctx, raw)
	case constants.IMAGE:
		img, err = n.canonicalizeRaster(raw)
		img.SourceFormat = constants.IMAGE
	default:
		n.logger.Error("unsupported upload extension", "extension", ext)
		return CanonicalImage{}, fmt.Errorf("extension %q: %w", ext, ErrUnsupportedFormat)
	}
	if err != nil {
		return CanonicalImage{}, err
	}

	n.logger.Debug("normalize ok",
		"ext", ext,
		"width", img.Width,
		"height", img.Height,
		"png_bytes", len(img.PNG),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return img, nil
}
