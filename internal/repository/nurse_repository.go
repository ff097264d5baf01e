package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/bloodpoint/donation-service/internal/model"
)

// NurseRepo provides access to the `enfermeiros` table. Nurse rows are
// created lazily the first time a name is assigned to a donation, so
// the table acts as a shared directory that grows with use. Name
// uniqueness is approximate: matching is trimmed and case-insensitive
// but not enforced by a database constraint, so a concurrent
// get-or-create for the same new name can still produce two rows.
type NurseRepo struct{ db *sql.DB }

func NewNurseRepo(db *sql.DB) *NurseRepo { return &NurseRepo{db: db} }

// ErrNurseName is returned when a nurse name is empty after trimming.
var ErrNurseName = errors.New("nurse name required")

// GetOrCreateByName resolves a nurse by trimmed, case-insensitive name,
// creating the row when no match exists. " Maria " and "maria" resolve
// to the same nurse.
func (r *NurseRepo) GetOrCreateByName(ctx context.Context, name string) (model.Nurse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Nurse{}, ErrNurseName
	}
	var n model.Nurse
	err := r.db.QueryRowContext(ctx,
		`SELECT id, nome FROM enfermeiros WHERE LOWER(nome) = LOWER(?) LIMIT 1`,
		name).Scan(&n.ID, &n.Nome)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Nurse{}, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO enfermeiros (nome) VALUES (?)`, name)
	if err != nil {
		return model.Nurse{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Nurse{}, err
	}
	return model.Nurse{ID: uint64(id), Nome: name}, nil
}

// GetByID returns a nurse by identifier. sql.ErrNoRows when unknown.
func (r *NurseRepo) GetByID(ctx context.Context, id uint64) (model.Nurse, error) {
	var n model.Nurse
	err := r.db.QueryRowContext(ctx,
		`SELECT id, nome FROM enfermeiros WHERE id = ? LIMIT 1`, id).
		Scan(&n.ID, &n.Nome)
	return n, err
}

// List returns all nurses ordered by name, for the selection dialog in
// the client.
func (r *NurseRepo) List(ctx context.Context) ([]model.Nurse, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nome FROM enfermeiros ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Nurse, 0)
	for rows.Next() {
		var n model.Nurse
		if err := rows.Scan(&n.ID, &n.Nome); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
