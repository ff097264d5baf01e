package repository

import (
	"context"
	"database/sql"

	"github.com/bloodpoint/donation-service/internal/model"
)

// QuestionnaireRepo stores pre-donation eligibility answers in the
// `questionarios` table. Submissions are append-only; the latest row
// per donor is what screening looks at.
type QuestionnaireRepo struct{ db *sql.DB }

func NewQuestionnaireRepo(db *sql.DB) *QuestionnaireRepo { return &QuestionnaireRepo{db: db} }

// Create inserts a submission and populates its generated ID.
func (r *QuestionnaireRepo) Create(ctx context.Context, q *model.Questionnaire) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO questionarios (doador_id, doou_sangue, toma_medicamento, qual_medicamento, teve_febre, contato_doenca, elegivel)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.DoadorID, q.DoouSangue, q.TomaMedicamento, q.QualMedicamento, q.TeveFebre, q.ContatoDoenca, q.Elegivel)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	q.ID = uint64(id)
	return nil
}

// LatestByDonor returns the donor's most recent submission, or
// sql.ErrNoRows when none exists.
func (r *QuestionnaireRepo) LatestByDonor(ctx context.Context, donorID string) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.db.QueryRowContext(ctx,
		`SELECT id, doador_id, doou_sangue, toma_medicamento, qual_medicamento, teve_febre, contato_doenca, elegivel, created_at
		 FROM questionarios WHERE doador_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		donorID).Scan(&q.ID, &q.DoadorID, &q.DoouSangue, &q.TomaMedicamento, &q.QualMedicamento,
		&q.TeveFebre, &q.ContatoDoenca, &q.Elegivel, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
