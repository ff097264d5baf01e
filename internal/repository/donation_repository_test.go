package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodpoint/donation-service/internal/model"
)

func setupMockDonationDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *DonationRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewDonationRepo(db)
}

func donationRows(id uint64, donorID string, status, code string, slot time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "doador_id", "hospital_id", "hospital_name", "enfermeiro_id",
		"data_doacao", "confirm_code", "status", "created_at", "updated_at",
	}).AddRow(id, donorID, 3, "Hospital de Santa Maria", nil, slot, code, status, slot, slot)
}

func TestCreate_ReturnsPendingRecordWithCode(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()
	slot := time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(sqlmock.AnyArg(), model.StatusPending, model.StatusStarted).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO doacoes`).
		WithArgs(donorID, uint64(3), "Hospital de Santa Maria", slot, sqlmock.AnyArg(), model.StatusPending).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(`SELECT .+ FROM doacoes WHERE id`).
		WithArgs(int64(42)).
		WillReturnRows(donationRows(42, donorID, model.StatusPending, "K7M2XQ", slot))

	d, err := repo.Create(context.Background(), donorID, 3, "Hospital de Santa Maria", slot)

	require.NoError(t, err)
	assert.Equal(t, uint64(42), d.ID)
	assert.Equal(t, model.StatusPending, d.Status)
	assert.Len(t, d.ConfirmCode, 6)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RedrawsCodeOnCollision(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()
	slot := time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC)

	// First draw collides with an outstanding record, second is free.
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(sqlmock.AnyArg(), model.StatusPending, model.StatusStarted).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(sqlmock.AnyArg(), model.StatusPending, model.StatusStarted).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO doacoes`).
		WithArgs(donorID, uint64(3), "Hospital de Santa Maria", slot, sqlmock.AnyArg(), model.StatusPending).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`SELECT .+ FROM doacoes WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(donationRows(7, donorID, model.StatusPending, "W3ZPQ8", slot))

	_, err := repo.Create(context.Background(), donorID, 3, "Hospital de Santa Maria", slot)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmByCode_Success(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()
	slot := time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE doacoes SET status`).
		WithArgs(model.StatusConfirmed, "K7M2XQ", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM doacoes WHERE confirm_code`).
		WithArgs("K7M2XQ", model.StatusConfirmed).
		WillReturnRows(donationRows(42, donorID, model.StatusConfirmed, "K7M2XQ", slot))

	d, err := repo.ConfirmByCode(context.Background(), "K7M2XQ")

	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, d.Status)
	assert.Equal(t, donorID, d.DoadorID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmByCode_UnknownOrUsedCode(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	// Codes on STARTED, CONFIRMED or CANCELLED records match nothing,
	// same as codes that never existed.
	mock.ExpectExec(`UPDATE doacoes SET status`).
		WithArgs(model.StatusConfirmed, "K7M2XQ", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	d, err := repo.ConfirmByCode(context.Background(), "K7M2XQ")

	assert.ErrorIs(t, err, ErrCodeNotFound)
	assert.Nil(t, d)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignNurse_MovesPendingToStarted(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()

	mock.ExpectQuery(`SELECT doador_id, status, enfermeiro_id FROM doacoes`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"doador_id", "status", "enfermeiro_id"}).
			AddRow(donorID, model.StatusPending, nil))
	mock.ExpectExec(`UPDATE doacoes SET enfermeiro_id`).
		WithArgs(uint64(7), model.StatusStarted, uint64(42), model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AssignNurse(context.Background(), 42, donorID, 7)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignNurse_ForbiddenForOtherDonor(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT doador_id, status, enfermeiro_id FROM doacoes`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"doador_id", "status", "enfermeiro_id"}).
			AddRow(uuid.New().String(), model.StatusPending, nil))

	err := repo.AssignNurse(context.Background(), 42, uuid.New().String(), 7)

	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignNurse_SameNurseOnStartedIsNoOp(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()

	mock.ExpectQuery(`SELECT doador_id, status, enfermeiro_id FROM doacoes`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"doador_id", "status", "enfermeiro_id"}).
			AddRow(donorID, model.StatusStarted, int64(7)))

	err := repo.AssignNurse(context.Background(), 42, donorID, 7)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignNurse_ConflictOnConfirmed(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()

	mock.ExpectQuery(`SELECT doador_id, status, enfermeiro_id FROM doacoes`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"doador_id", "status", "enfermeiro_id"}).
			AddRow(donorID, model.StatusConfirmed, int64(7)))

	err := repo.AssignNurse(context.Background(), 42, donorID, 9)

	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFinish_ConflictWhenNotStarted(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()

	mock.ExpectQuery(`SELECT doador_id FROM doacoes`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"doador_id"}).AddRow(donorID))
	mock.ExpectExec(`UPDATE doacoes SET status`).
		WithArgs(model.StatusConfirmed, uint64(42), model.StatusStarted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Finish(context.Background(), 42, donorID)

	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_SoftDeletesPendingRecord(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()

	mock.ExpectQuery(`SELECT doador_id FROM doacoes`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"doador_id"}).AddRow(donorID))
	mock.ExpectExec(`UPDATE doacoes SET status`).
		WithArgs(model.StatusCancelled, uint64(42), model.StatusPending, model.StatusStarted).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Cancel(context.Background(), 42, donorID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_ConflictOnTerminalRecord(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()

	mock.ExpectQuery(`SELECT doador_id FROM doacoes`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"doador_id"}).AddRow(donorID))
	mock.ExpectExec(`UPDATE doacoes SET status`).
		WithArgs(model.StatusCancelled, uint64(42), model.StatusPending, model.StatusStarted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), 42, donorID)

	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmByCode_SecondAttemptRejected(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()
	slot := time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE doacoes SET status`).
		WithArgs(model.StatusConfirmed, "K7M2XQ", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM doacoes WHERE confirm_code`).
		WithArgs("K7M2XQ", model.StatusConfirmed).
		WillReturnRows(donationRows(42, donorID, model.StatusConfirmed, "K7M2XQ", slot))
	// The record is no longer PENDING, so the second exchange matches
	// zero rows.
	mock.ExpectExec(`UPDATE doacoes SET status`).
		WithArgs(model.StatusConfirmed, "K7M2XQ", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.ConfirmByCode(context.Background(), "K7M2XQ")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, first.Status)

	_, err = repo.ConfirmByCode(context.Background(), "K7M2XQ")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByDonor_OmitsCodeOnTerminalRecords(t *testing.T) {
	db, mock, repo := setupMockDonationDB(t)
	defer db.Close()

	donorID := uuid.New().String()
	slot := time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "hospital_id", "hospital_name", "nome", "data_doacao", "confirm_code", "status", "created_at",
	}).
		AddRow(2, 3, "Hospital de Santa Maria", "Maria", slot, "K7M2XQ", model.StatusConfirmed, slot).
		AddRow(1, 3, "Hospital de Santa Maria", nil, slot.Add(-24*time.Hour), "W3ZPQ8", model.StatusPending, slot)

	mock.ExpectQuery(`FROM doacoes d`).
		WithArgs(donorID).
		WillReturnRows(rows)

	out, err := repo.ListByDonor(context.Background(), donorID)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Empty(t, out[0].ConfirmCode, "terminal records must not expose the code")
	require.NotNil(t, out[0].NurseName)
	assert.Equal(t, "Maria", *out[0].NurseName)
	assert.Equal(t, "W3ZPQ8", out[1].ConfirmCode)
	assert.Nil(t, out[1].NurseName)

	require.NoError(t, mock.ExpectationsWereMet())
}
