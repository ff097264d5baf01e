package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodpoint/donation-service/internal/config"
	"github.com/bloodpoint/donation-service/internal/repository"
	"github.com/bloodpoint/donation-service/internal/utils"
)

func newAuthTest(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *AuthHandler) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     4, // min cost keeps the tests fast
	}
	h := NewAuthHandler(cfg, repository.NewDonorRepo(db), repository.NewTokenRepo(db))
	return db, mock, h
}

func donorRow(id, nome, email, hash string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "nome", "email", "password_hash", "idade", "tipo_sanguineo", "created_at", "updated_at",
	}).AddRow(id, nome, email, hash, 30, "O+", now, now)
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock, h := newAuthTest(t)
	defer db.Close()

	hash, err := utils.HashPassword("correct-horse", 4)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM utilizadores WHERE email`).
		WithArgs("ana@example.com").
		WillReturnRows(donorRow(uuid.New().String(), "Ana", "ana@example.com", hash))

	e := echo.New()
	req, rec := postJSON("/v1/auth/login", `{"email":"ana@example.com","password":"battery-staple"}`)
	c := e.NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_IssuesTokenPair(t *testing.T) {
	db, mock, h := newAuthTest(t)
	defer db.Close()

	id := uuid.New().String()
	hash, err := utils.HashPassword("correct-horse", 4)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM utilizadores WHERE email`).
		WithArgs("ana@example.com").
		WillReturnRows(donorRow(id, "Ana", "ana@example.com", hash))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(id, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := echo.New()
	// Email lookup is case-insensitive.
	req, rec := postJSON("/v1/auth/login", `{"email":"ANA@example.com","password":"correct-horse"}`)
	c := e.NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access"`)
	assert.Contains(t, rec.Body.String(), `"refresh"`)
	assert.Contains(t, rec.Body.String(), id)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, mock, h := newAuthTest(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO utilizadores`).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'ana@example.com' for key 'utilizadores.email'"))

	e := echo.New()
	req, rec := postJSON("/v1/auth/register", `{"nome":"Ana","email":"ana@example.com","password":"correct-horse","idade":30,"tipo_sanguineo":"O+"}`)
	c := e.NewContext(req, rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}
