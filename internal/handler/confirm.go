package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bloodpoint/donation-service/internal/queue"
	"github.com/bloodpoint/donation-service/internal/repository"
	queuepublisher "github.com/bloodpoint/donation-service/internal/service"
	"github.com/bloodpoint/donation-service/internal/utils"
)

// ConfirmHandler implements the confirmation-code exchange: staff
// holding the 6-character code the donor received at booking enter it
// here to attest that the draw happened. The endpoint is deliberately
// unauthenticated — possession of a valid outstanding code is the
// credential — which is why codes are single-use and cover a ~1e9
// value space.
type ConfirmHandler struct {
	Donations *repository.DonationRepo
}

func NewConfirmHandler(d *repository.DonationRepo) *ConfirmHandler {
	if d == nil {
		panic("nil repository passed to NewConfirmHandler")
	}
	return &ConfirmHandler{Donations: d}
}

// Confirm handles POST /v1/doacoes/confirm.
//
// Outcomes, in order:
//   - code length != 6: 400, validated locally, no store access;
//   - no PENDING record carries the code (unknown, already used, or
//     attached to a started/cancelled record): 404 "invalid or already
//     used code", nothing mutated;
//   - store failure: 500, nothing mutated;
//   - exactly one PENDING record matched: it is now CONFIRMED and a
//     donation.confirmed event is published.
//
// The transition is a single conditional UPDATE in the repository, so
// two concurrent submissions of the same code cannot both succeed.
func (h *ConfirmHandler) Confirm(c echo.Context) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	code := strings.ToUpper(strings.TrimSpace(body.Code))
	if len(code) != utils.ConfirmCodeLength {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code must be 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	don, err := h.Donations.ConfirmByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or already used code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm donation"})
	}

	ev := queue.DonationConfirmedEvent{
		DonationID:   don.ID,
		DonorID:      don.DoadorID,
		HospitalID:   don.HospitalID,
		HospitalName: don.HospitalName,
		DataDoacao:   don.DataDoacao.UTC().Format(time.RFC3339),
		ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = queuepublisher.PublishDonationConfirmed(context.Background(), ev) }()

	return c.JSON(http.StatusOK, echo.Map{
		"id":     don.ID,
		"status": don.Status,
	})
}
