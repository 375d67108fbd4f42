package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"datanexus/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var journalCols = []string{
	"id", "cid", "name", "file_name", "file_size_bytes", "domain", "license",
	"access", "visibility", "owner", "tx_hash", "phase", "created_at", "updated_at",
}

func journalRow(reg *model.Registration) *sqlmock.Rows {
	return sqlmock.NewRows(journalCols).AddRow(
		reg.ID, reg.CID, reg.Name, reg.FileName, reg.FileSizeBytes,
		string(reg.Domain), string(reg.License), string(reg.Access), string(reg.Visibility),
		reg.Owner, reg.TxHash, string(reg.Phase), reg.CreatedAt, reg.UpdatedAt,
	)
}

func testRegistration() *model.Registration {
	now := time.Now().UTC()
	return &model.Registration{
		ID:            "reg-1",
		CID:           "bafkreihdwdcefgh4dqkjv67uzcmw7ojee6xedz",
		Name:          "Street Scenes",
		FileName:      "scenes.tar",
		FileSizeBytes: 2048,
		Domain:        model.DomainCV,
		License:       model.LicenseMIT,
		Access:        model.AccessFree,
		Visibility:    model.VisibilityPublic,
		Owner:         "0xabc",
		Phase:         model.PhaseUploaded,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestJournalPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJournalPostgres(db)
	reg := testRegistration()

	mock.ExpectQuery("INSERT INTO registrations").
		WithArgs(reg.ID, reg.CID, reg.Name, reg.FileName, reg.FileSizeBytes,
			string(reg.Domain), string(reg.License), string(reg.Access), string(reg.Visibility),
			reg.Owner, reg.TxHash, string(reg.Phase), reg.CreatedAt).
		WillReturnRows(journalRow(reg))

	stored, err := repo.Create(context.Background(), reg)

	assert.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, reg.CID, stored.CID)
	assert.Equal(t, model.PhaseUploaded, stored.Phase)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalPostgres_UpdatePhase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJournalPostgres(db)
	ctx := context.Background()

	t.Run("updates existing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE registrations").
			WithArgs("reg-1", string(model.PhaseOrphaned), "0xdeadbeef").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdatePhase(ctx, "reg-1", model.PhaseOrphaned, "0xdeadbeef")
		assert.NoError(t, err)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE registrations").
			WithArgs("missing", string(model.PhaseCommitted), "").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePhase(ctx, "missing", model.PhaseCommitted, "")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournalPostgres_FindByCID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJournalPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		reg := testRegistration()
		mock.ExpectQuery("SELECT (.+) FROM registrations WHERE cid = ?").
			WithArgs(reg.CID).
			WillReturnRows(journalRow(reg))

		got, err := repo.FindByCID(ctx, reg.CID)
		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, reg.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM registrations WHERE cid = ?").
			WithArgs("bafkreimissing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByCID(ctx, "bafkreimissing")
		assert.Error(t, err)
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, got)
	})
}

func TestJournalPostgres_ListByPhase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewJournalPostgres(db)
	ctx := context.Background()

	t.Run("returns orphans", func(t *testing.T) {
		reg := testRegistration()
		reg.Phase = model.PhaseOrphaned

		mock.ExpectQuery("SELECT (.+) FROM registrations WHERE phase = ?").
			WithArgs(string(model.PhaseOrphaned), 10).
			WillReturnRows(journalRow(reg))

		items, err := repo.ListByPhase(ctx, model.PhaseOrphaned, 10)
		assert.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, model.PhaseOrphaned, items[0].Phase)
	})

	t.Run("empty result", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM registrations WHERE phase = ?").
			WithArgs(string(model.PhaseOrphaned), 10).
			WillReturnRows(sqlmock.NewRows(journalCols))

		items, err := repo.ListByPhase(ctx, model.PhaseOrphaned, 10)
		assert.NoError(t, err)
		assert.Empty(t, items)
	})
}
