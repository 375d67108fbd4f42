package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

import (
	"context"

	"datanexus/internal/model"
)

// RegistrationJournal persists registration progress from the moment an
// upload succeeds. It is strictly a recovery aid: the ledger remains the
// authoritative set of committed datasets, and losing the journal loses only
// pending-reconciliation hints. No business logic here.
type RegistrationJournal interface {
	// Create inserts a journal row for a freshly uploaded blob.
	Create(ctx context.Context, reg *model.Registration) (*model.Registration, error)

	// UpdatePhase records the phase a registration reached. txHash may be
	// empty when no transaction has been submitted yet.
	UpdatePhase(ctx context.Context, id string, phase model.Phase, txHash string) error

	// FindByCID returns the most recent journal row for a CID.
	FindByCID(ctx context.Context, cid string) (*model.Registration, error)

	// ListByPhase returns up to limit rows in the given phase, oldest first.
	// Reconciliation drains the orphaned phase through this.
	ListByPhase(ctx context.Context, phase model.Phase, limit int) ([]model.Registration, error)
}
