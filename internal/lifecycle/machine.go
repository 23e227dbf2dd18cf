// Package lifecycle owns the draft/submitted status machine for certificate
// records: who may change them, when, and how submit becomes final.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campuscerts/cert-tracker/constants"
	"github.com/campuscerts/cert-tracker/internal/common"
	"github.com/campuscerts/cert-tracker/internal/entity"
	"github.com/campuscerts/cert-tracker/internal/reconcile"
)

// Gateway is the persistence surface the machine drives. UpdateStatused and
// MarkSubmitted are compare-and-set on the record's current status: they
// return common.ErrConflict when the stored status no longer matches, which
// is how exactly-once submit is enforced under concurrency.
type Gateway interface {
	CreateCertificate(ctx context.Context, cert *entity.Certificate) error
	GetCertificate(ctx context.Context, id uuid.UUID) (*entity.Certificate, error)
	UpdateStatused(ctx context.Context, cert *entity.Certificate, expect constants.RecordStatus) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteCertificate(ctx context.Context, id uuid.UUID) error
	SubmissionDeadline(ctx context.Context) (time.Time, error)
}

// Machine sequences certificate mutations against the deadline and the
// draft/submitted transition rules.
type Machine struct {
	gw     Gateway
	rec    *reconcile.Reconciler
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Machine. now is injectable for deadline tests; nil means
// time.Now.
func New(gw Gateway, rec *reconcile.Reconciler, logger *slog.Logger, now func() time.Time) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{gw: gw, rec: rec, logger: logger, now: now}
}

// CheckDeadline re-reads the deadline on every call so an administrator
// change takes effect immediately, without a restart.
func (m *Machine) CheckDeadline(ctx context.Context) error {
	deadline, err := m.gw.SubmissionDeadline(ctx)
	if err != nil {
		return fmt.Errorf("read submission deadline: %w", err)
	}
	if deadline.IsZero() {
		// no deadline configured, mutations stay open
		return nil
	}
	if now := m.now(); now.After(deadline) {
		return DeadlinePassedError{Deadline: deadline, Now: now}
	}
	return nil
}

func (m *Machine) authorize(cert *entity.Certificate, actor entity.Identity) error {
	if actor.Role == constants.RoleAdmin {
		return nil
	}
	if cert.SubmitterAccountID != actor.AccountID {
		return fmt.Errorf("account %s does not own certificate %s: %w",
			actor.AccountID, cert.ID, common.ErrUnauthorized)
	}
	return nil
}

// SaveDraft persists a new draft record. The record must already be
// reconciled; SaveDraft only stamps identity, time and status.
func (m *Machine) SaveDraft(ctx context.Context, cert *entity.Certificate) error {
	if err := m.CheckDeadline(ctx); err != nil {
		return err
	}
	if cert.ID == uuid.Nil {
		cert.ID = uuid.New()
	}
	cert.Status = constants.StatusDraft
	now := m.now()
	cert.CreatedAt = now
	cert.UpdatedAt = now

	if err := m.gw.CreateCertificate(ctx, cert); err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	m.logger.Info("lifecycle.draft.created",
		"cert_id", cert.ID.String(),
		"submitter", cert.SubmitterAccountID,
	)
	return nil
}

// Edit applies the submitter's field changes to a draft. Submitted records
// are immutable, and edits after the deadline are rejected. Concurrent edits
// to the same draft are last-writer-wins; only the status itself is guarded.
func (m *Machine) Edit(ctx context.Context, id uuid.UUID, actor entity.Identity, changes map[string]string) (*entity.Certificate, error) {
	cert, err := m.gw.GetCertificate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.authorize(cert, actor); err != nil {
		return nil, err
	}
	if cert.Status != constants.StatusDraft {
		return nil, fmt.Errorf("certificate %s: %w", id, ErrRecordImmutable)
	}
	if err := m.CheckDeadline(ctx); err != nil {
		return nil, err
	}
	if err := m.rec.ApplyEdits(cert, changes); err != nil {
		return nil, err
	}
	cert.UpdatedAt = m.now()

	if err := m.gw.UpdateStatused(ctx, cert, constants.StatusDraft); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// the draft was submitted underneath us
			return nil, fmt.Errorf("certificate %s: %w", id, ErrRecordImmutable)
		}
		return nil, fmt.Errorf("update draft: %w", err)
	}
	m.logger.Info("lifecycle.draft.edited",
		"cert_id", id.String(),
		"fields", len(changes),
	)
	return cert, nil
}

// Submit finalizes a draft. The deadline is checked before field completeness,
// so a closed window rejects even incomplete drafts with DeadlinePassedError.
// The stored status must still be draft at write time.
// Two racing submits resolve to one winner; the loser sees ErrRecordImmutable.
func (m *Machine) Submit(ctx context.Context, id uuid.UUID, actor entity.Identity) (*entity.Certificate, error) {
	cert, err := m.gw.GetCertificate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.authorize(cert, actor); err != nil {
		return nil, err
	}
	if cert.Status == constants.StatusSubmitted {
		return nil, fmt.Errorf("certificate %s already submitted: %w", id, ErrRecordImmutable)
	}
	if cert.Status != constants.StatusDraft {
		return nil, fmt.Errorf("certificate %s in status %q: %w", id, cert.Status, ErrInvalidTransition)
	}
	if err := m.CheckDeadline(ctx); err != nil {
		return nil, err
	}
	if missing := reconcile.RequiredMissing(cert); len(missing) > 0 {
		return nil, MissingRequiredFieldsError{Fields: missing}
	}

	at := m.now()
	if err := m.gw.MarkSubmitted(ctx, id, at); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("certificate %s already submitted: %w", id, ErrRecordImmutable)
		}
		return nil, fmt.Errorf("mark submitted: %w", err)
	}

	cert.Status = constants.StatusSubmitted
	cert.SubmittedAt = &at
	cert.UpdatedAt = at
	m.logger.Info("lifecycle.submitted",
		"cert_id", id.String(),
		"submitter", cert.SubmitterAccountID,
	)
	return cert, nil
}

// Delete removes a record. Submitters may delete their own drafts before the
// deadline; administrators may delete any record in any state, which is the
// only way a submitted record ever goes away.
func (m *Machine) Delete(ctx context.Context, id uuid.UUID, actor entity.Identity) error {
	cert, err := m.gw.GetCertificate(ctx, id)
	if err != nil {
		return err
	}
	if err := m.authorize(cert, actor); err != nil {
		return err
	}
	if actor.Role != constants.RoleAdmin {
		if cert.Status != constants.StatusDraft {
			return fmt.Errorf("certificate %s: %w", id, ErrRecordImmutable)
		}
		if err := m.CheckDeadline(ctx); err != nil {
			return err
		}
	}

	if err := m.gw.DeleteCertificate(ctx, id); err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	m.logger.Info("lifecycle.deleted",
		"cert_id", id.String(),
		"actor", actor.AccountID,
		"actor_role", string(actor.Role),
	)
	return nil
}
