package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bloodpoint/donation-service/internal/repository"
)

// PublicHandler exposes the unauthenticated browse endpoints: the
// partner hospital list and the district suggestions the search field
// offers. Responses are cacheable; the Redis response cache middleware
// sits in front of these routes.
type PublicHandler struct {
	Hospitals *repository.HospitalRepo
}

func NewPublicHandler(h *repository.HospitalRepo) *PublicHandler {
	if h == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Hospitals: h}
}

// GetHospitals handles GET /v1/hospitais. The optional ?distrito= query
// narrows the list by district substring, matched case-insensitively.
// An empty result is a normal outcome, returned as an empty array.
func (h *PublicHandler) GetHospitals(c echo.Context) error {
	items, err := h.Hospitals.List(c.Request().Context(), c.QueryParam("distrito"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load hospitals"})
	}
	type hospitalItem struct {
		ID       uint64 `json:"id"`
		Name     string `json:"name"`
		Distrito string `json:"distrito"`
	}
	out := make([]hospitalItem, 0, len(items))
	for _, it := range items {
		out = append(out, hospitalItem{ID: it.ID, Name: it.Name, Distrito: it.Distrito})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetDistritos handles GET /v1/hospitais/distritos and returns the
// distinct district labels for search suggestions.
func (h *PublicHandler) GetDistritos(c echo.Context) error {
	items, err := h.Hospitals.Distritos(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load districts"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
