package constants

import "strings"

// Formats for the canonical upload kinds.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// MaxUploadBytes caps a single certificate upload (10MB).
const MaxUploadBytes = 10 * 1024 * 1024

// AllowedExtensions holds the accepted upload extensions for certificates.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"bmp":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its upload format,
// or "" when the extension is not accepted.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "bmp":
		return IMAGE
	default:
		return ""
	}
}
