package handler // handler implements the HTTP endpoints of the donation service

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// donorID extracts the authenticated donor's UUID from echo.Context.
// JWTAuth stores the JWT subject under "donor_id"; it is always a
// string because donor IDs are UUIDs.
func donorID(c echo.Context) (string, error) {
	if v, ok := c.Get("donor_id").(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("invalid donor_id in context")
}
