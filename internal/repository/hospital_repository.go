package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bloodpoint/donation-service/internal/model"
)

// HospitalRepo provides read access to the `hospitais` table. The
// partner list is maintained out of band; this service only browses it
// and snapshots names into donation records at booking time.
type HospitalRepo struct{ db *sql.DB }

func NewHospitalRepo(db *sql.DB) *HospitalRepo { return &HospitalRepo{db: db} }

// List returns partner hospitals ordered by name. When distrito is
// non-empty the list is narrowed to districts containing the trimmed,
// case-insensitive term, mirroring the substring filter donors type
// into the search field.
func (r *HospitalRepo) List(ctx context.Context, distrito string) ([]model.Hospital, error) {
	const base = `SELECT id, name, distrito FROM hospitais`
	var (
		rows *sql.Rows
		err  error
	)
	term := strings.TrimSpace(distrito)
	if term == "" {
		rows, err = r.db.QueryContext(ctx, base+` ORDER BY name`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			base+` WHERE LOWER(TRIM(distrito)) LIKE CONCAT('%', LOWER(?), '%') ORDER BY name`,
			term)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Hospital, 0)
	for rows.Next() {
		var h model.Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Distrito); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Distritos returns the distinct district labels, trimmed and sorted.
// The mobile client shows these as search suggestions.
func (r *HospitalRepo) Distritos(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT TRIM(distrito) FROM hospitais WHERE distrito IS NOT NULL AND TRIM(distrito) <> '' ORDER BY 1`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a single hospital. sql.ErrNoRows when unknown.
func (r *HospitalRepo) GetByID(ctx context.Context, id uint64) (model.Hospital, error) {
	var h model.Hospital
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, distrito FROM hospitais WHERE id = ? LIMIT 1`, id).
		Scan(&h.ID, &h.Name, &h.Distrito)
	return h, err
}
