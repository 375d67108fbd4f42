package ledger

import (
	"context"
	"errors"

	"datanexus/internal/model"
)

// Package ledger defines the client boundary to the on-chain dataset
// registry. Submitting a commit and seeing it included are two distinct
// steps: a submitted transaction may be dropped, rejected, or delayed, and
// the intermediate "submitted but not final" state is first class.

var (
	// ErrDuplicateCID means the registry already holds a record for this CID.
	// The write path treats it as idempotent success during reconciliation.
	ErrDuplicateCID = errors.New("cid already committed")

	// ErrRejected is a definitive refusal before inclusion (bad nonce,
	// underpriced and evicted, failed precheck). The transaction will not land.
	ErrRejected = errors.New("transaction rejected")

	// ErrReverted means the transaction was included but the contract
	// reverted it. Definitive.
	ErrReverted = errors.New("transaction reverted")

	// ErrInclusionTimeout means the bounded wait elapsed without a receipt.
	// Indefinite: the transaction may still land later, so callers must
	// reconcile rather than blindly retry.
	ErrInclusionTimeout = errors.New("inclusion wait timed out")
)

// TxHandle identifies a submitted, not yet final commit. It carries the
// draft so inclusion can materialize the record without a contract read, and
// so a handle recovered from the journal can be re-awaited after a restart.
type TxHandle struct {
	Hash   string
	Sender string
	Draft  model.DatasetRecordDraft
}

// Ledger is the on-chain registry client.
type Ledger interface {
	// SubmitMetadata submits the commit transaction. It returns once the
	// transaction is accepted by the node, not once it is included.
	SubmitMetadata(ctx context.Context, draft model.DatasetRecordDraft, sender string) (TxHandle, error)

	// AwaitInclusion blocks until the transaction is mined or the wait bound
	// elapses. Terminal outcomes: the record, ErrReverted (possibly wrapping
	// ErrDuplicateCID), ErrRejected, or ErrInclusionTimeout.
	AwaitInclusion(ctx context.Context, h TxHandle) (*model.DatasetRecord, error)

	// ReadMetadataPage returns one page of committed records, consistent as
	// of the queried state, plus whether more pages may follow. Read-only.
	ReadMetadataPage(ctx context.Context, offset, limit int) ([]model.DatasetRecord, bool, error)
}
