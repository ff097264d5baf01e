package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bloodpoint/donation-service/internal/model"
	"github.com/bloodpoint/donation-service/internal/repository"
)

// QuestionnaireHandler stores the pre-donation eligibility answers the
// client collects before a booking. Eligibility is computed here, not
// in the client: fever or contact with a transmissible disease in the
// last four weeks disqualifies; medication alone flags the submission
// for staff review without disqualifying.
type QuestionnaireHandler struct {
	Questionnaires *repository.QuestionnaireRepo
}

func NewQuestionnaireHandler(q *repository.QuestionnaireRepo) *QuestionnaireHandler {
	if q == nil {
		panic("nil repository passed to NewQuestionnaireHandler")
	}
	return &QuestionnaireHandler{Questionnaires: q}
}

type questionnaireReq struct {
	DoouSangue      bool   `json:"doou_sangue"`
	TomaMedicamento bool   `json:"toma_medicamento"`
	QualMedicamento string `json:"qual_medicamento"`
	TeveFebre       bool   `json:"teve_febre"`
	ContatoDoenca   bool   `json:"contato_doenca"`
}

type questionnaireResp struct {
	ID              uint64 `json:"id"`
	DoouSangue      bool   `json:"doou_sangue"`
	TomaMedicamento bool   `json:"toma_medicamento"`
	QualMedicamento string `json:"qual_medicamento,omitempty"`
	TeveFebre       bool   `json:"teve_febre"`
	ContatoDoenca   bool   `json:"contato_doenca"`
	Elegivel        bool   `json:"elegivel"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// Submit handles POST /v1/questionario.
func (h *QuestionnaireHandler) Submit(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req questionnaireReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.QualMedicamento = strings.TrimSpace(req.QualMedicamento)
	if req.TomaMedicamento && req.QualMedicamento == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qual_medicamento required when toma_medicamento"})
	}

	q := &model.Questionnaire{
		DoadorID:        id,
		DoouSangue:      req.DoouSangue,
		TomaMedicamento: req.TomaMedicamento,
		QualMedicamento: req.QualMedicamento,
		TeveFebre:       req.TeveFebre,
		ContatoDoenca:   req.ContatoDoenca,
		Elegivel:        !req.TeveFebre && !req.ContatoDoenca,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Questionnaires.Create(ctx, q); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save questionnaire"})
	}
	return c.JSON(http.StatusCreated, questionnaireResp{
		ID:              q.ID,
		DoouSangue:      q.DoouSangue,
		TomaMedicamento: q.TomaMedicamento,
		QualMedicamento: q.QualMedicamento,
		TeveFebre:       q.TeveFebre,
		ContatoDoenca:   q.ContatoDoenca,
		Elegivel:        q.Elegivel,
	})
}

// Latest handles GET /v1/questionario and returns the donor's most
// recent submission. No submission yet is a normal outcome, answered
// with 404 and a dedicated message.
func (h *QuestionnaireHandler) Latest(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q, err := h.Questionnaires.LatestByDonor(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no questionnaire submitted"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load questionnaire"})
	}
	return c.JSON(http.StatusOK, questionnaireResp{
		ID:              q.ID,
		DoouSangue:      q.DoouSangue,
		TomaMedicamento: q.TomaMedicamento,
		QualMedicamento: q.QualMedicamento,
		TeveFebre:       q.TeveFebre,
		ContatoDoenca:   q.ContatoDoenca,
		Elegivel:        q.Elegivel,
		CreatedAt:       q.CreatedAt.UTC().Format(time.RFC3339),
	})
}
