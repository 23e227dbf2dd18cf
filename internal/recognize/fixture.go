package recognize

import (
	"context"

	"github.com/campuscerts/cert-tracker/internal/normalize"
)

// Fixture is a deterministic Recognizer for tests and offline runs. It
// returns the configured result (or error) without touching the network.
type Fixture struct {
	Result Result
	Err    error

	// Calls records each canonical image the fixture was asked to extract.
	Calls []normalize.CanonicalImage
}

// Extract implements Recognizer.
func (f *Fixture) Extract(_ context.Context, img normalize.CanonicalImage) (Result, error) {
	f.Calls = append(f.Calls, img)
	if f.Err != nil {
		return Result{Status: StatusFailed}, f.Err
	}
	return f.Result, nil
}
