package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrRecordImmutable rejects edits and deletes on submitted records.
	ErrRecordImmutable = errors.New("submitted certificates are immutable")

	// ErrInvalidTransition rejects transitions outside draft -> submitted.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// DeadlinePassedError carries the deadline so callers can render an
// actionable message.
type DeadlinePassedError struct {
	Deadline time.Time
	Now      time.Time
}

func (e DeadlinePassedError) Error() string {
	return fmt.Sprintf("submission deadline %s has passed (now %s)",
		e.Deadline.Format("2006-01-02 15:04:05"), e.Now.Format("2006-01-02 15:04:05"))
}

// MissingRequiredFieldsError names every field still blocking submit.
type MissingRequiredFieldsError struct {
	Fields []string
}

func (e MissingRequiredFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
