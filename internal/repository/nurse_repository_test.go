package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockNurseDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *NurseRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewNurseRepo(db)
}

func TestGetOrCreateByName_ReusesExistingRow(t *testing.T) {
	db, mock, repo := setupMockNurseDB(t)
	defer db.Close()

	// " maria " resolves to the stored "Maria" row: matching is trimmed
	// and case-insensitive.
	mock.ExpectQuery(`SELECT id, nome FROM enfermeiros WHERE LOWER`).
		WithArgs("maria").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nome"}).AddRow(7, "Maria"))

	n, err := repo.GetOrCreateByName(context.Background(), " maria ")

	require.NoError(t, err)
	assert.Equal(t, uint64(7), n.ID)
	assert.Equal(t, "Maria", n.Nome)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateByName_InsertsWhenMissing(t *testing.T) {
	db, mock, repo := setupMockNurseDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, nome FROM enfermeiros WHERE LOWER`).
		WithArgs("Ana Costa").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO enfermeiros`).
		WithArgs("Ana Costa").
		WillReturnResult(sqlmock.NewResult(12, 1))

	n, err := repo.GetOrCreateByName(context.Background(), "Ana Costa")

	require.NoError(t, err)
	assert.Equal(t, uint64(12), n.ID)
	assert.Equal(t, "Ana Costa", n.Nome)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateByName_RejectsBlankName(t *testing.T) {
	db, mock, repo := setupMockNurseDB(t)
	defer db.Close()

	_, err := repo.GetOrCreateByName(context.Background(), "   ")

	assert.ErrorIs(t, err, ErrNurseName)
	require.NoError(t, mock.ExpectationsWereMet())
}
