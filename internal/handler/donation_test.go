package handler

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodpoint/donation-service/internal/model"
	"github.com/bloodpoint/donation-service/internal/repository"
)

func newDonationTest(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *DonationHandler) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewDonationHandler(
		repository.NewDonationRepo(db),
		repository.NewHospitalRepo(db),
		repository.NewNurseRepo(db),
	)
	return db, mock, h
}

func TestBook_RejectsPastSlot(t *testing.T) {
	db, mock, h := newDonationTest(t)
	defer db.Close()

	e := echo.New()
	req, rec := postJSON("/v1/doacoes", `{"hospital_id":3,"data_doacao":"2020-01-01T10:00:00Z"}`)
	c := e.NewContext(req, rec)
	c.Set("donor_id", uuid.New().String())

	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "future")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBook_UnknownHospital(t *testing.T) {
	db, mock, h := newDonationTest(t)
	defer db.Close()

	slot := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)

	mock.ExpectQuery(`SELECT id, name, distrito FROM hospitais WHERE id`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	e := echo.New()
	req, rec := postJSON("/v1/doacoes", `{"hospital_id":99,"data_doacao":"`+slot+`"}`)
	c := e.NewContext(req, rec)
	c.Set("donor_id", uuid.New().String())

	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBook_CreatesPendingDonation(t *testing.T) {
	db, mock, h := newDonationTest(t)
	defer db.Close()

	donorID := uuid.New().String()
	slot := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

	mock.ExpectQuery(`SELECT id, name, distrito FROM hospitais WHERE id`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "distrito"}).
			AddRow(3, "Hospital de Santa Maria", "Lisboa"))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(sqlmock.AnyArg(), model.StatusPending, model.StatusStarted).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO doacoes`).
		WithArgs(donorID, uint64(3), "Hospital de Santa Maria", slot, sqlmock.AnyArg(), model.StatusPending).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(`SELECT .+ FROM doacoes WHERE id`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "doador_id", "hospital_id", "hospital_name", "enfermeiro_id",
			"data_doacao", "confirm_code", "status", "created_at", "updated_at",
		}).AddRow(42, donorID, 3, "Hospital de Santa Maria", nil, slot, "K7M2XQ", model.StatusPending, slot, slot))

	e := echo.New()
	req, rec := postJSON("/v1/doacoes", `{"hospital_id":3,"data_doacao":"`+slot.Format(time.RFC3339)+`"}`)
	c := e.NewContext(req, rec)
	c.Set("donor_id", donorID)

	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"confirm_code":"K7M2XQ"`)
	assert.Contains(t, rec.Body.String(), `"status":"PENDING"`)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignNurse_RequiresIDOrName(t *testing.T) {
	db, mock, h := newDonationTest(t)
	defer db.Close()

	e := echo.New()
	req, rec := postJSON("/v1/doacoes/42/enfermeiro", `{}`)
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")
	c.Set("donor_id", uuid.New().String())

	require.NoError(t, h.AssignNurse(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}
