package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bloodpoint/donation-service/internal/queue"
	"github.com/bloodpoint/donation-service/internal/repository"
	queuepublisher "github.com/bloodpoint/donation-service/internal/service"
)

// DonationHandler groups the repositories behind the donor-facing
// lifecycle endpoints: booking, nurse assignment, finishing,
// cancellation, rescheduling and history. All methods assume JWT
// authentication has already run; ownership of individual records is
// enforced in the repository layer.
type DonationHandler struct {
	Donations *repository.DonationRepo
	Hospitals *repository.HospitalRepo
	Nurses    *repository.NurseRepo
}

func NewDonationHandler(donations *repository.DonationRepo, hospitals *repository.HospitalRepo, nurses *repository.NurseRepo) *DonationHandler {
	if donations == nil || hospitals == nil || nurses == nil {
		panic("nil repository passed to NewDonationHandler")
	}
	return &DonationHandler{Donations: donations, Hospitals: hospitals, Nurses: nurses}
}

// Book handles POST /v1/doacoes. It creates exactly one PENDING record
// for the authenticated donor with a freshly generated confirmation
// code. The slot must lie in the future; the hospital must exist. On
// persistence failure nothing is considered booked and the error is
// surfaced to the caller.
func (h *DonationHandler) Book(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		HospitalID uint64 `json:"hospital_id"`
		DataDoacao string `json:"data_doacao"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.HospitalID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hospital_id is required"})
	}
	slot, err := time.Parse(time.RFC3339, body.DataDoacao)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "data_doacao must be RFC3339"})
	}
	if !slot.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "data_doacao must be in the future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hosp, err := h.Hospitals.GetByID(ctx, body.HospitalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hospital not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	don, err := h.Donations.Create(ctx, id, hosp.ID, hosp.Name, slot)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create donation"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":            don.ID,
		"hospital_id":   don.HospitalID,
		"hospital_name": don.HospitalName,
		"data_doacao":   don.DataDoacao.UTC().Format(time.RFC3339),
		"confirm_code":  don.ConfirmCode,
		"status":        don.Status,
	})
}

// List handles GET /v1/doacoes and returns the donor's history, newest
// slot first, with nurse names resolved.
func (h *DonationHandler) List(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Donations.ListByDonor(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load donations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// Get handles GET /v1/doacoes/:id for the owning donor.
func (h *DonationHandler) Get(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	donID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || donID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid donation id"})
	}
	detail, err := h.Donations.GetByIDForDonor(c.Request().Context(), donID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "donation not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch donation"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// AssignNurse handles POST /v1/doacoes/:id/enfermeiro. The body names a
// nurse either by id (selection from the list) or by free-typed name;
// names are resolved get-or-create, trimmed and case-insensitive. The
// record moves PENDING -> STARTED. Repeating the call with the same
// nurse is a no-op; anything else out of PENDING is a conflict.
func (h *DonationHandler) AssignNurse(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	donID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || donID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid donation id"})
	}
	var body struct {
		NurseID   uint64 `json:"enfermeiro_id"`
		NurseName string `json:"nome"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var nurseID uint64
	var nurseName string
	switch {
	case body.NurseID != 0:
		n, err := h.Nurses.GetByID(ctx, body.NurseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "nurse not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		nurseID, nurseName = n.ID, n.Nome
	case strings.TrimSpace(body.NurseName) != "":
		n, err := h.Nurses.GetOrCreateByName(ctx, body.NurseName)
		if err != nil {
			if errors.Is(err, repository.ErrNurseName) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "nurse name required"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve nurse"})
		}
		nurseID, nurseName = n.ID, n.Nome
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enfermeiro_id or nome is required"})
	}

	if err := h.Donations.AssignNurse(ctx, donID, id, nurseID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "donation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "donation is not pending"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign nurse"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":            donID,
		"enfermeiro_id": nurseID,
		"nurse_name":    nurseName,
		"status":        "STARTED",
	})
}

// Finish handles POST /v1/doacoes/:id/finish: the donor marks their own
// STARTED donation as done. A confirmed event is published the same way
// the code exchange does it.
func (h *DonationHandler) Finish(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	donID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || donID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid donation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Donations.Finish(ctx, donID, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "donation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "donation is not started"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to finish donation"})
		}
	}

	if detail, err := h.Donations.GetByIDForDonor(ctx, donID, id); err == nil {
		ev := queue.DonationConfirmedEvent{
			DonationID:   donID,
			DonorID:      id,
			HospitalID:   detail.HospitalID,
			HospitalName: detail.HospitalName,
			DataDoacao:   detail.DataDoacao,
			ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if detail.NurseName != nil {
			ev.NurseName = *detail.NurseName
		}
		go func() { _ = queuepublisher.PublishDonationConfirmed(context.Background(), ev) }()
	}
	return c.JSON(http.StatusOK, echo.Map{"id": donID, "status": "CONFIRMED"})
}

// Cancel handles DELETE /v1/doacoes/:id. Cancellation is a soft delete:
// the record moves to CANCELLED and stays in history. Terminal records
// cannot be cancelled.
func (h *DonationHandler) Cancel(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	donID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || donID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid donation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Donations.Cancel(ctx, donID, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "donation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "donation already concluded"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel donation"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Reschedule handles PATCH /v1/doacoes/:id and moves the booked slot of
// a non-terminal donation.
func (h *DonationHandler) Reschedule(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	donID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || donID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid donation id"})
	}
	var body struct {
		DataDoacao string `json:"data_doacao"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	slot, err := time.Parse(time.RFC3339, body.DataDoacao)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "data_doacao must be RFC3339"})
	}
	if !slot.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "data_doacao must be in the future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Donations.Reschedule(ctx, donID, id, slot); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "donation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "donation already concluded"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reschedule donation"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":          donID,
		"data_doacao": slot.UTC().Format(time.RFC3339),
	})
}

// ListNurses handles GET /v1/enfermeiros for the nurse selection
// dialog.
func (h *DonationHandler) ListNurses(c echo.Context) error {
	if _, err := donorID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	nurses, err := h.Nurses.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load nurses"})
	}
	type nurseItem struct {
		ID   uint64 `json:"id"`
		Nome string `json:"nome"`
	}
	out := make([]nurseItem, 0, len(nurses))
	for _, n := range nurses {
		out = append(out, nurseItem{ID: n.ID, Nome: n.Nome})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
