package normalize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/campuscerts/cert-tracker/constants"
)

// renderPDFFirstPage rasterizes page 1 of a PDF upload via pdftoppm and runs
// the result through the raster canonicalization path. Pages 2..n are never
// rendered.
func (n *Normalizer) renderPDFFirstPage(ctx context.Context, raw []byte) (CanonicalImage, error) {
	if _, err := n.runner.LookPath(n.cfg.PDFToPPM); err != nil {
		n.logger.Error("pdf renderer missing", "binary", n.cfg.PDFToPPM, "error", err)
		return CanonicalImage{}, fmt.Errorf("%s not found in PATH: %w", n.cfg.PDFToPPM, ErrConverterUnavailable)
	}

	tmpDir, err := os.MkdirTemp("", "ct-pdf-*")
	if err != nil {
		return CanonicalImage{}, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			n.logger.Warn("failed to remove temp dir", "path", path, "error", err)
		}
	}(tmpDir)

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, raw, 0o600); err != nil {
		return CanonicalImage{}, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f 1 -l 1 -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := n.runner.Run(ctx, n.cfg.PDFToPPM,
		"-f", "1", "-l", "1",
		"-r", fmt.Sprintf("%d", n.cfg.DPI),
		"-png", in, prefix)
	if err != nil {
		return CanonicalImage{}, classifyPDFFailure(string(errb), err)
	}

	// pdftoppm writes page-1.png or page-01.png depending on page count
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return CanonicalImage{}, fmt.Errorf("pdftoppm produced no image: %w", ErrCorruptInput)
	}

	pageRaw, err := os.ReadFile(matches[0])
	if err != nil {
		return CanonicalImage{}, err
	}

	img, err := n.canonicalizeRaster(pageRaw)
	if err != nil {
		return CanonicalImage{}, err
	}
	img.SourceFormat = constants.PDF
	return img, nil
}

// classifyPDFFailure inspects pdftoppm's stderr to distinguish encrypted
// documents from plain corruption.
func classifyPDFFailure(stderr string, cause error) error {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "incorrect password") ||
		strings.Contains(lower, "encrypted"):
		return fmt.Errorf("pdftoppm: %s: %w", strings.TrimSpace(stderr), ErrPasswordProtected)
	case strings.Contains(lower, "may not be a pdf") ||
		strings.Contains(lower, "syntax error") ||
		strings.Contains(lower, "couldn't read xref table"):
		return fmt.Errorf("pdftoppm: %s: %w", strings.TrimSpace(stderr), ErrCorruptInput)
	default:
		return fmt.Errorf("pdftoppm failed: %v: %w", cause, ErrCorruptInput)
	}
}
