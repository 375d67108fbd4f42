package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"datanexus/internal/ledger"
	"datanexus/internal/model"
)

func (s *registrationService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	orphans, err := s.journal.ListByPhase(ctx, model.PhaseOrphaned, s.reconcileCfg.BatchSize)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Scanned: len(orphans)}
	for i := range orphans {
		reg := &orphans[i]
		rec, err := s.reconcileOne(ctx, reg)
		switch {
		case err == nil:
			s.markPhase(ctx, reg.ID, model.PhaseCommitted, reg.TxHash)
			s.metrics.ReconciliationFinished(outcomeCommitted)
			s.log.Info("orphan reconciled", "cid", rec.CID)
			report.Committed++
		case errors.Is(err, ledger.ErrInclusionTimeout) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			// Still indefinite after all attempts. The registration
			// stays orphaned for the next run.
			s.metrics.ReconciliationFinished(outcomePending)
			s.log.Warn("orphan still unconfirmed", "cid", reg.CID, "error", err)
			report.Pending++
		default:
			s.markPhase(ctx, reg.ID, model.PhaseCommitFailed, reg.TxHash)
			s.metrics.ReconciliationFinished(outcomeFailed)
			s.log.Warn("orphan reconciliation failed", "cid", reg.CID, "error", err)
			report.Failed++
		}
	}
	return report, nil
}

// reconcileOne retries one orphan with exponential backoff. Only indefinite
// outcomes are retried; definitive rejections stop immediately.
func (s *registrationService) reconcileOne(ctx context.Context, reg *model.Registration) (*model.DatasetRecord, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Duration(s.reconcileCfg.InitialBackoffSec) * time.Second
	bo.MaxInterval = time.Duration(s.reconcileCfg.MaxIntervalSec) * time.Second
	bo.MaxElapsedTime = 0

	retries := uint64(0)
	if s.reconcileCfg.MaxAttempts > 1 {
		retries = uint64(s.reconcileCfg.MaxAttempts - 1)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)

	return backoff.RetryWithData(func() (*model.DatasetRecord, error) {
		rec, err := s.recoverOrphan(ctx, reg)
		if err == nil {
			return rec, nil
		}
		if errors.Is(err, ledger.ErrInclusionTimeout) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, policy)
}

// recoverOrphan makes one attempt to settle an orphan. If the original
// transaction hash is known it is re-awaited first; only when that
// transaction is definitively dead is the same CID re-submitted. A
// duplicate-CID response at any point means the dataset is already
// registered, which is success.
func (s *registrationService) recoverOrphan(ctx context.Context, reg *model.Registration) (*model.DatasetRecord, error) {
	if reg.TxHash != "" {
		handle := ledger.TxHandle{Hash: reg.TxHash, Sender: reg.Owner, Draft: reg.Draft()}
		rec, err := s.ledger.AwaitInclusion(ctx, handle)
		switch {
		case err == nil:
			return rec, nil
		case errors.Is(err, ledger.ErrDuplicateCID):
			return s.resolveDuplicate(ctx, reg)
		case errors.Is(err, ledger.ErrInclusionTimeout):
			return nil, err
		}
		// Reverted or rejected: the original transaction will never land.
		// Forget its hash and fall through to a fresh submission.
		reg.TxHash = ""
	}

	handle, err := s.ledger.SubmitMetadata(ctx, reg.Draft(), reg.Owner)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateCID) {
			return s.resolveDuplicate(ctx, reg)
		}
		return nil, err
	}
	reg.TxHash = handle.Hash
	s.markPhase(ctx, reg.ID, model.PhaseOrphaned, handle.Hash)

	rec, err := s.ledger.AwaitInclusion(ctx, handle)
	if err != nil && errors.Is(err, ledger.ErrDuplicateCID) {
		return s.resolveDuplicate(ctx, reg)
	}
	return rec, err
}
