package reconcile

import (
	"strings"
	"time"
)

// awardDateLayouts covers the date spellings the recognition service has been
// seen to produce. The unpadded month/day verbs accept one or two digits, so
// each layout matches both 2024年5月8日 and 2024年05月08日.
var awardDateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006年1月2日",
	"2006年1月2",
	"2006.1.2",
	"20060102",
}

// NormalizeAwardDate reformats a recognized date to YYYY-MM-DD. Returns
// ("", false) when no known layout matches; callers keep the raw value so the
// submitter can correct it manually.
func NormalizeAwardDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range awardDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
