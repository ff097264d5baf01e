package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bloodpoint/donation-service/internal/repository"
)

// ProfileHandler serves the donor's own profile. The profile holds the
// fields the booking and history screens display next to donations:
// name, age and blood type.
type ProfileHandler struct {
	Donors *repository.DonorRepo
}

func NewProfileHandler(d *repository.DonorRepo) *ProfileHandler {
	if d == nil {
		panic("nil repository passed to NewProfileHandler")
	}
	return &ProfileHandler{Donors: d}
}

type profileResp struct {
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	Email         string `json:"email"`
	Idade         uint8  `json:"idade"`
	TipoSanguineo string `json:"tipo_sanguineo"`
}

type profileUpdateReq struct {
	Nome          string `json:"nome"`
	Idade         uint8  `json:"idade"`
	TipoSanguineo string `json:"tipo_sanguineo"`
}

// validBloodTypes matches the picker options in the profile screen.
var validBloodTypes = map[string]bool{
	"": true, "A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

// Get handles GET /v1/profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Donors.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "donor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, profileResp{
		ID: d.ID, Nome: d.Nome, Email: d.Email, Idade: d.Idade, TipoSanguineo: d.TipoSanguineo,
	})
}

// Update handles PUT /v1/profile. Email and password changes go through
// the auth endpoints, not here.
func (h *ProfileHandler) Update(c echo.Context) error {
	id, err := donorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	if req.Nome == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nome required"})
	}
	req.TipoSanguineo = strings.ToUpper(strings.TrimSpace(req.TipoSanguineo))
	if !validBloodTypes[req.TipoSanguineo] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tipo_sanguineo"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Donors.UpdateProfile(ctx, id, req.Nome, req.Idade, req.TipoSanguineo); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "donor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	d, err := h.Donors.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, profileResp{
		ID: d.ID, Nome: d.Nome, Email: d.Email, Idade: d.Idade, TipoSanguineo: d.TipoSanguineo,
	})
}
