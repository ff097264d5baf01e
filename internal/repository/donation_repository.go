package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bloodpoint/donation-service/internal/model"
	"github.com/bloodpoint/donation-service/internal/utils"
)

// DonationRepo owns the donation lifecycle in the `doacoes` table.
// Every transition is expressed as a single conditional UPDATE keyed on
// the expected current status, with the affected-row count deciding the
// outcome. Two concurrent submissions of the same confirmation code can
// therefore never both succeed: whichever UPDATE runs second matches
// zero rows.
type DonationRepo struct{ db *sql.DB }

func NewDonationRepo(db *sql.DB) *DonationRepo { return &DonationRepo{db: db} }

// codeAttempts bounds the regeneration loop when a freshly drawn
// confirmation code collides with an outstanding record.
const codeAttempts = 5

const donationColumns = `id, doador_id, hospital_id, hospital_name, enfermeiro_id, data_doacao, confirm_code, status, created_at, updated_at`

func scanDonation(row *sql.Row) (*model.Donation, error) {
	var (
		d          model.Donation
		enfermeiro sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.DoadorID, &d.HospitalID, &d.HospitalName,
		&enfermeiro, &d.DataDoacao, &d.ConfirmCode, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if enfermeiro.Valid {
		id := uint64(enfermeiro.Int64)
		d.EnfermeiroID = &id
	}
	return &d, nil
}

// Create books a slot: it inserts exactly one PENDING record for the
// donor at the given hospital and returns the stored row, including the
// generated confirmation code. The code is drawn from a ~1e9 value
// space and re-drawn if it collides with another outstanding
// (PENDING or STARTED) record, so a code identifies at most one
// confirmable donation at any moment.
func (r *DonationRepo) Create(ctx context.Context, donorID string, hospitalID uint64, hospitalName string, dataDoacao time.Time) (*model.Donation, error) {
	code, err := r.freshCode(ctx)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO doacoes (doador_id, hospital_id, hospital_name, data_doacao, confirm_code, status) VALUES (?, ?, ?, ?, ?, ?)`,
		donorID, hospitalID, hospitalName, dataDoacao.UTC(), code, model.StatusPending)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	// Query back the full row to populate timestamps and defaults.
	return scanDonation(r.db.QueryRowContext(ctx,
		`SELECT `+donationColumns+` FROM doacoes WHERE id = ?`, id))
}

func (r *DonationRepo) freshCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := utils.NewConfirmCode()
		if err != nil {
			return "", err
		}
		var taken bool
		err = r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM doacoes WHERE confirm_code = ? AND status IN (?, ?))`,
			code, model.StatusPending, model.StatusStarted).Scan(&taken)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", utils.ErrCodeGeneration
}

// ConfirmByCode performs the confirmation-code exchange: one UPDATE
// conditioned on the code belonging to a PENDING record. Codes attached
// to STARTED, CONFIRMED or CANCELLED records match nothing and yield
// ErrCodeNotFound, indistinguishable from a code that never existed.
// On success the confirmed row is returned for event publication.
func (r *DonationRepo) ConfirmByCode(ctx context.Context, code string) (*model.Donation, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE doacoes SET status = ? WHERE confirm_code = ? AND status = ?`,
		model.StatusConfirmed, code, model.StatusPending)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrCodeNotFound
	}
	return scanDonation(r.db.QueryRowContext(ctx,
		`SELECT `+donationColumns+` FROM doacoes WHERE confirm_code = ? AND status = ?`,
		code, model.StatusConfirmed))
}

// AssignNurse records the nurse who will perform the draw and moves the
// record from PENDING to STARTED. Re-assigning the same nurse to an
// already STARTED record is an idempotent no-op; any other divergence
// from PENDING is ErrConflict. Only the owning donor may assign.
func (r *DonationRepo) AssignNurse(ctx context.Context, donationID uint64, donorID string, nurseID uint64) error {
	var (
		owner      string
		status     string
		enfermeiro sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT doador_id, status, enfermeiro_id FROM doacoes WHERE id = ?`,
		donationID).Scan(&owner, &status, &enfermeiro)
	if err != nil {
		return err
	}
	if owner != donorID {
		return ErrForbidden
	}
	if status == model.StatusStarted && enfermeiro.Valid && uint64(enfermeiro.Int64) == nurseID {
		return nil
	}
	if status != model.StatusPending {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE doacoes SET enfermeiro_id = ?, status = ? WHERE id = ? AND status = ?`,
		nurseID, model.StatusStarted, donationID, model.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Lost a race with another transition since the read above.
		return ErrConflict
	}
	return nil
}

// Finish moves the donor's own STARTED record to CONFIRMED. This is the
// history-screen shortcut used when the donor marks the draw as done in
// person; the code exchange remains the staff-side path.
func (r *DonationRepo) Finish(ctx context.Context, donationID uint64, donorID string) error {
	if err := r.checkOwner(ctx, donationID, donorID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE doacoes SET status = ? WHERE id = ? AND status = ?`,
		model.StatusConfirmed, donationID, model.StatusStarted)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Cancel soft-deletes a donation by writing CANCELLED, allowed only
// while the record is still PENDING or STARTED. History is preserved;
// rows are never hard-deleted.
func (r *DonationRepo) Cancel(ctx context.Context, donationID uint64, donorID string) error {
	if err := r.checkOwner(ctx, donationID, donorID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE doacoes SET status = ? WHERE id = ? AND status IN (?, ?)`,
		model.StatusCancelled, donationID, model.StatusPending, model.StatusStarted)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Reschedule moves the booked slot of a non-terminal donation. The slot
// stays mutable until the record reaches a terminal state.
func (r *DonationRepo) Reschedule(ctx context.Context, donationID uint64, donorID string, dataDoacao time.Time) error {
	if err := r.checkOwner(ctx, donationID, donorID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE doacoes SET data_doacao = ? WHERE id = ? AND status IN (?, ?)`,
		dataDoacao.UTC(), donationID, model.StatusPending, model.StatusStarted)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *DonationRepo) checkOwner(ctx context.Context, donationID uint64, donorID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx,
		`SELECT doador_id FROM doacoes WHERE id = ?`, donationID).Scan(&owner)
	if err != nil {
		return err
	}
	if owner != donorID {
		return ErrForbidden
	}
	return nil
}

// DonationDetail is the history view of a donation: the record joined
// with the assigned nurse's name. Returned by ListByDonor and
// GetByIDForDonor for display to the owning donor.
type DonationDetail struct {
	ID           uint64  `json:"id"`
	HospitalID   uint64  `json:"hospital_id"`
	HospitalName string  `json:"hospital_name"`
	NurseName    *string `json:"nurse_name,omitempty"`
	DataDoacao   string  `json:"data_doacao"`
	ConfirmCode  string  `json:"confirm_code,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

// ListByDonor returns all donations of a donor, newest slot first, with
// the nurse name resolved. The confirmation code is only included while
// the record can still be confirmed; terminal records omit it.
func (r *DonationRepo) ListByDonor(ctx context.Context, donorID string) ([]DonationDetail, error) {
	const q = `SELECT d.id, d.hospital_id, d.hospital_name, e.nome, d.data_doacao, d.confirm_code, d.status, d.created_at
	           FROM doacoes d
	           LEFT JOIN enfermeiros e ON e.id = d.enfermeiro_id
	           WHERE d.doador_id = ?
	           ORDER BY d.data_doacao DESC`
	rows, err := r.db.QueryContext(ctx, q, donorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]DonationDetail, 0)
	for rows.Next() {
		det, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDForDonor returns a single donation owned by the donor.
// sql.ErrNoRows when the record does not exist, ErrForbidden when it
// belongs to someone else.
func (r *DonationRepo) GetByIDForDonor(ctx context.Context, donationID uint64, donorID string) (*DonationDetail, error) {
	var owner string
	err := r.db.QueryRowContext(ctx,
		`SELECT doador_id FROM doacoes WHERE id = ?`, donationID).Scan(&owner)
	if err != nil {
		return nil, err
	}
	if owner != donorID {
		return nil, ErrForbidden
	}
	const q = `SELECT d.id, d.hospital_id, d.hospital_name, e.nome, d.data_doacao, d.confirm_code, d.status, d.created_at
	           FROM doacoes d
	           LEFT JOIN enfermeiros e ON e.id = d.enfermeiro_id
	           WHERE d.id = ?`
	rows, err := r.db.QueryContext(ctx, q, donationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	det, err := scanDetail(rows)
	if err != nil {
		return nil, err
	}
	return &det, nil
}

func scanDetail(rows *sql.Rows) (DonationDetail, error) {
	var (
		det       DonationDetail
		nurseName sql.NullString
		slot      time.Time
		created   time.Time
		code      string
	)
	err := rows.Scan(&det.ID, &det.HospitalID, &det.HospitalName, &nurseName,
		&slot, &code, &det.Status, &created)
	if err != nil {
		return DonationDetail{}, err
	}
	if nurseName.Valid {
		n := nurseName.String
		det.NurseName = &n
	}
	det.DataDoacao = slot.UTC().Format(time.RFC3339)
	det.CreatedAt = created.UTC().Format(time.RFC3339)
	if !model.TerminalStatus(det.Status) {
		det.ConfirmCode = code
	}
	return det, nil
}

// IsNotFound reports whether err denotes a missing row, easing handler
// translation to 404 responses.
func IsNotFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }
