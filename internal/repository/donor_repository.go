package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/bloodpoint/donation-service/internal/model"
	"github.com/bloodpoint/donation-service/internal/utils"
)

// DonorRepo provides persistence for donor accounts in the
// `utilizadores` table. Donor IDs are UUID strings generated at
// registration time, so the identifier is stable across environments
// and usable as a JWT subject without further mapping.
type DonorRepo struct{ DB *sql.DB }

func NewDonorRepo(db *sql.DB) *DonorRepo { return &DonorRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a donor account and returns its generated UUID. The
// email is normalized to lowercase before insertion and the password is
// bcrypt-hashed with the given cost. A duplicate email is reported as
// ErrEmailExists.
func (r *DonorRepo) Create(ctx context.Context, nome, email, password string, idade uint8, tipoSanguineo string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO utilizadores (id, nome, email, password_hash, idade, tipo_sanguineo) VALUES (?,?,?,?,?,?)",
		id, strings.TrimSpace(nome), email, hash, idade, tipoSanguineo)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a donor by normalized email.
func (r *DonorRepo) GetByEmail(ctx context.Context, email string) (model.Donor, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var d model.Donor
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,nome,email,password_hash,idade,tipo_sanguineo,created_at,updated_at FROM utilizadores WHERE email=? LIMIT 1",
		email).Scan(&d.ID, &d.Nome, &d.Email, &d.PasswordHash, &d.Idade, &d.TipoSanguineo, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// GetByID fetches a donor by UUID.
func (r *DonorRepo) GetByID(ctx context.Context, id string) (model.Donor, error) {
	var d model.Donor
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,nome,email,password_hash,idade,tipo_sanguineo,created_at,updated_at FROM utilizadores WHERE id=? LIMIT 1",
		id).Scan(&d.ID, &d.Nome, &d.Email, &d.PasswordHash, &d.Idade, &d.TipoSanguineo, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// UpdateProfile updates the mutable profile fields of a donor. The
// email and password are managed through dedicated auth flows and are
// never touched here. Returns sql.ErrNoRows when the donor is unknown.
func (r *DonorRepo) UpdateProfile(ctx context.Context, id, nome string, idade uint8, tipoSanguineo string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE utilizadores SET nome=?, idade=?, tipo_sanguineo=? WHERE id=?",
		strings.TrimSpace(nome), idade, tipoSanguineo, id)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows both for missing donors and for
	// no-op updates, so verify existence explicitly on 0.
	if n, errRows := res.RowsAffected(); errRows == nil && n == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM utilizadores WHERE id=?)", id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}
	return nil
}
