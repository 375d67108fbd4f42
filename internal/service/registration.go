package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"datanexus/internal/chain"
	"datanexus/internal/config"
	"datanexus/internal/ledger"
	"datanexus/internal/model"
	"datanexus/internal/repository"
	"datanexus/internal/storage"
)

var (
	// ErrAlreadyInProgress rejects a second registration while one is in
	// flight for the same caller. Requests are never queued or dropped
	// silently.
	ErrAlreadyInProgress = errors.New("a registration is already in progress for this caller")

	ErrNoFile          = errors.New("no file selected")
	ErrMissingMetadata = errors.New("missing required metadata field")

	// ErrOrphaned reports a registration whose blob is stored but whose
	// commit is not confirmed: pending reconciliation, not a definitive
	// failure.
	ErrOrphaned = errors.New("commit not confirmed; pending reconciliation")
)

// PhaseError ties a registration failure to the phase that produced it, so
// callers get exactly one typed outcome per terminal state.
type PhaseError struct {
	Phase model.Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// AsPhaseError unwraps err into a *PhaseError if one is in the chain.
func AsPhaseError(err error) (*PhaseError, bool) {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// RegistrationRequest is the ephemeral input to one registration. It is
// consumed by Register and never persisted.
type RegistrationRequest struct {
	File          io.Reader
	FileName      string
	FileSizeBytes int64
	Draft         model.MetadataDraft
	Wallet        chain.Snapshot
}

// ReconcileReport summarizes one reconciliation run over orphaned
// registrations.
type ReconcileReport struct {
	Scanned   int `json:"scanned"`
	Committed int `json:"committed"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
}

// RegistrationService drives a dataset through validate → upload → commit
// and recovers orphans.
type RegistrationService interface {
	// Register runs one registration to a terminal state and returns either
	// the committed record or a *PhaseError naming the failing phase.
	Register(ctx context.Context, req RegistrationRequest) (*model.DatasetRecord, error)

	// Reconcile re-drives orphaned registrations toward Committed. It
	// re-submits the same CID, never a fresh upload, and treats a
	// duplicate-CID response as success.
	Reconcile(ctx context.Context) (*ReconcileReport, error)

	// Status returns the most recent journal entry for a CID, or
	// sql.ErrNoRows when this service never journaled it.
	Status(ctx context.Context, cid string) (*model.Registration, error)
}

// registrationService is the coordinator. It owns no persistent state of
// its own: the store owns blobs, the ledger owns records, the journal only
// tracks progress for recovery.
type registrationService struct {
	store         storage.Store
	ledger        ledger.Ledger
	journal       repository.RegistrationJournal
	requiredChain chain.ID
	reconcileCfg  config.ReconcileConfig
	metrics       *PipelineMetrics
	log           *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewRegistrationService constructs the registration coordinator. metrics
// may be nil.
func NewRegistrationService(
	store storage.Store,
	led ledger.Ledger,
	journal repository.RegistrationJournal,
	requiredChain chain.ID,
	reconcileCfg config.ReconcileConfig,
	metrics *PipelineMetrics,
) RegistrationService {
	return &registrationService{
		store:         store,
		ledger:        led,
		journal:       journal,
		requiredChain: requiredChain,
		reconcileCfg:  reconcileCfg,
		metrics:       metrics,
		log:           slog.With("component", "registration"),
		inFlight:      make(map[string]struct{}),
	}
}

func (s *registrationService) Register(ctx context.Context, req RegistrationRequest) (*model.DatasetRecord, error) {
	caller := strings.ToLower(req.Wallet.Sender)
	if !s.acquire(caller) {
		return nil, ErrAlreadyInProgress
	}
	defer s.release(caller)

	rec, err := s.register(ctx, req)
	if err != nil {
		if pe, ok := AsPhaseError(err); ok {
			s.metrics.RegistrationFinished(pe.Phase)
		}
		return nil, err
	}
	s.metrics.RegistrationFinished(model.PhaseCommitted)
	return rec, nil
}

func (s *registrationService) register(ctx context.Context, req RegistrationRequest) (*model.DatasetRecord, error) {
	// Validating. Cancellation is still honored here: nothing external has
	// happened yet.
	if err := s.validate(req); err != nil {
		return nil, &PhaseError{Phase: model.PhaseValidationFailed, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &PhaseError{Phase: model.PhaseValidationFailed, Err: err}
	}

	draft := req.Draft
	if draft.Visibility == "" {
		draft.Visibility = model.VisibilityPublic
	}

	// Uploading. The caller may still abandon the request; an uploaded but
	// never-committed blob is garbage, not a record.
	up, err := s.store.Upload(ctx, req.File, req.FileName, req.FileSizeBytes)
	if err != nil {
		return nil, &PhaseError{Phase: model.PhaseUploadFailed, Err: err}
	}
	s.log.Info("upload complete", "cid", up.CID, "size_bytes", up.FileSizeBytes, "owner", req.Wallet.Sender)

	now := time.Now().UTC()
	reg := &model.Registration{
		ID:            uuid.NewString(),
		CID:           up.CID,
		Name:          draft.Name,
		FileName:      up.FileName,
		FileSizeBytes: up.FileSizeBytes,
		Domain:        draft.Domain,
		License:       draft.License,
		Access:        draft.Access,
		Visibility:    draft.Visibility,
		Owner:         req.Wallet.Sender,
		Phase:         model.PhaseUploaded,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// The journal is a recovery aid, not the source of truth: a failed
	// write must not fail the registration.
	if _, err := s.journal.Create(ctx, reg); err != nil {
		s.log.Warn("journal write failed; orphan recovery will not survive a restart", "cid", reg.CID, "error", err)
	}

	// Committing. A submitted transaction cannot be un-submitted, so from
	// here the operation runs to a terminal state even if the caller walks
	// away.
	commitCtx := context.WithoutCancel(ctx)
	return s.commit(commitCtx, reg)
}

func (s *registrationService) Status(ctx context.Context, cid string) (*model.Registration, error) {
	return s.journal.FindByCID(ctx, cid)
}

// commit drives Uploaded → Committing → {Committed, CommitFailed, Orphaned}.
func (s *registrationService) commit(ctx context.Context, reg *model.Registration) (*model.DatasetRecord, error) {
	handle, err := s.ledger.SubmitMetadata(ctx, reg.Draft(), reg.Owner)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateCID) {
			// The registry already holds this CID: idempotent success.
			return s.resolveDuplicate(ctx, reg)
		}
		s.markPhase(ctx, reg.ID, model.PhaseCommitFailed, "")
		return nil, &PhaseError{Phase: model.PhaseCommitFailed, Err: err}
	}
	s.markPhase(ctx, reg.ID, model.PhaseCommitting, handle.Hash)

	rec, err := s.ledger.AwaitInclusion(ctx, handle)
	switch {
	case err == nil:
		s.markPhase(ctx, reg.ID, model.PhaseCommitted, handle.Hash)
		s.log.Info("dataset committed", "cid", reg.CID, "tx", handle.Hash)
		return rec, nil

	case errors.Is(err, ledger.ErrRejected) || errors.Is(err, ledger.ErrReverted):
		// A revert can mean another transaction won the race for this CID,
		// which is still at-most-one semantics working as intended.
		if errors.Is(err, ledger.ErrDuplicateCID) {
			return s.resolveDuplicate(ctx, reg)
		}
		if rec := s.lookupCommitted(ctx, reg.CID); rec != nil {
			s.markPhase(ctx, reg.ID, model.PhaseCommitted, handle.Hash)
			return rec, nil
		}
		s.markPhase(ctx, reg.ID, model.PhaseCommitFailed, handle.Hash)
		return nil, &PhaseError{Phase: model.PhaseCommitFailed, Err: err}

	default:
		// Timeout or any other indefinite outcome: the transaction may
		// still land. Orphan, never blind-retry with a fresh transaction.
		s.markPhase(ctx, reg.ID, model.PhaseOrphaned, handle.Hash)
		s.log.Warn("commit unconfirmed, registration orphaned", "cid", reg.CID, "tx", handle.Hash, "error", err)
		return nil, &PhaseError{Phase: model.PhaseOrphaned, Err: fmt.Errorf("%w: %v", ErrOrphaned, err)}
	}
}

// resolveDuplicate finishes a registration whose CID turned out to be
// already committed. The existing on-chain record wins; if the read side
// cannot surface it yet, the draft stands in.
func (s *registrationService) resolveDuplicate(ctx context.Context, reg *model.Registration) (*model.DatasetRecord, error) {
	s.markPhase(ctx, reg.ID, model.PhaseCommitted, "")
	if rec := s.lookupCommitted(ctx, reg.CID); rec != nil {
		return rec, nil
	}
	draft := reg.Draft()
	return &model.DatasetRecord{
		CID:           draft.CID,
		Name:          draft.Name,
		FileName:      draft.FileName,
		FileSizeBytes: draft.FileSizeBytes,
		Domain:        draft.Domain,
		License:       draft.License,
		Access:        draft.Access,
		Visibility:    draft.Visibility,
		Owner:         reg.Owner,
	}, nil
}

// lookupCommitted scans ledger pages for a CID. Returns nil when the record
// is not (yet) visible.
func (s *registrationService) lookupCommitted(ctx context.Context, cid string) *model.DatasetRecord {
	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		page, hasMore, err := s.ledger.ReadMetadataPage(ctx, offset, pageSize)
		if err != nil {
			s.log.Warn("cid lookup failed", "cid", cid, "error", err)
			return nil
		}
		for i := range page {
			if page[i].CID == cid {
				return &page[i]
			}
		}
		if !hasMore || len(page) == 0 {
			return nil
		}
	}
}

func (s *registrationService) validate(req RegistrationRequest) error {
	if err := req.Wallet.Validate(s.requiredChain); err != nil {
		return err
	}
	if req.File == nil {
		return ErrNoFile
	}
	if req.FileSizeBytes < 0 {
		return fmt.Errorf("%w: negative file size", ErrMissingMetadata)
	}
	for field, value := range map[string]string{
		"name":    req.Draft.Name,
		"domain":  string(req.Draft.Domain),
		"license": string(req.Draft.License),
		"access":  string(req.Draft.Access),
	} {
		if value == "" {
			return fmt.Errorf("%w: %s", ErrMissingMetadata, field)
		}
	}
	return nil
}

// markPhase updates the journal, logging rather than failing: journal
// trouble must not change a registration's outcome.
func (s *registrationService) markPhase(ctx context.Context, id string, phase model.Phase, txHash string) {
	if err := s.journal.UpdatePhase(ctx, id, phase, txHash); err != nil {
		s.log.Warn("journal phase update failed", "registration_id", id, "phase", phase, "error", err)
	}
}

func (s *registrationService) acquire(caller string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[caller]; busy {
		return false
	}
	s.inFlight[caller] = struct{}{}
	return true
}

func (s *registrationService) release(caller string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, caller)
}
