package postgres

import (
	"context"
	"database/sql"
	"errors"

	"datanexus/internal/model"
	"datanexus/internal/repository"
)

// JournalPostgres is a PostgreSQL implementation of
// repository.RegistrationJournal. Parameterized queries only, no business
// logic.
type JournalPostgres struct {
	db *sql.DB
}

// NewJournalPostgres creates a new JournalPostgres repository.
func NewJournalPostgres(db *sql.DB) *JournalPostgres {
	return &JournalPostgres{db: db}
}

var _ repository.RegistrationJournal = (*JournalPostgres)(nil)

const journalColumns = `id, cid, name, file_name, file_size_bytes, domain, license, access, visibility, owner, tx_hash, phase, created_at, updated_at`

// Create inserts a journal row and returns the stored record.
func (r *JournalPostgres) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	const q = `
		INSERT INTO registrations (id, cid, name, file_name, file_size_bytes, domain, license, access, visibility, owner, tx_hash, phase, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING ` + journalColumns
	row := r.db.QueryRowContext(ctx, q,
		reg.ID,
		reg.CID,
		reg.Name,
		reg.FileName,
		reg.FileSizeBytes,
		reg.Domain,
		reg.License,
		reg.Access,
		reg.Visibility,
		reg.Owner,
		reg.TxHash,
		reg.Phase,
		reg.CreatedAt,
	)
	return scanRegistration(row)
}

// UpdatePhase advances a row's phase and, when provided, its tx hash.
func (r *JournalPostgres) UpdatePhase(ctx context.Context, id string, phase model.Phase, txHash string) error {
	const q = `
		UPDATE registrations
		SET phase = $2,
		    tx_hash = CASE WHEN $3 = '' THEN tx_hash ELSE $3 END,
		    updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, phase, txHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByCID fetches the most recent row for a CID.
func (r *JournalPostgres) FindByCID(ctx context.Context, cid string) (*model.Registration, error) {
	const q = `
		SELECT ` + journalColumns + `
		FROM registrations
		WHERE cid = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanRegistration(r.db.QueryRowContext(ctx, q, cid))
}

// ListByPhase returns up to limit rows in the given phase, oldest first.
func (r *JournalPostgres) ListByPhase(ctx context.Context, phase model.Phase, limit int) ([]model.Registration, error) {
	const q = `
		SELECT ` + journalColumns + `
		FROM registrations
		WHERE phase = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, phase, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Registration, 0)
	for rows.Next() {
		var reg model.Registration
		if err := scanRegistrationRow(rows.Scan, &reg); err != nil {
			return nil, err
		}
		items = append(items, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// IsNoRowsError reports whether err is the driver's empty-result sentinel.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func scanRegistration(row *sql.Row) (*model.Registration, error) {
	var reg model.Registration
	if err := scanRegistrationRow(row.Scan, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func scanRegistrationRow(scan func(dest ...any) error, reg *model.Registration) error {
	return scan(
		&reg.ID,
		&reg.CID,
		&reg.Name,
		&reg.FileName,
		&reg.FileSizeBytes,
		&reg.Domain,
		&reg.License,
		&reg.Access,
		&reg.Visibility,
		&reg.Owner,
		&reg.TxHash,
		&reg.Phase,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
}
