package middleware // middleware provides reusable HTTP middleware for protected routes

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and role claims into the request
// context. The provided secret must match the one used when issuing
// tokens. Handlers behind this middleware read the donor's UUID via
// `c.Get("donor_id")` and the role via `c.Get("role")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; reject any token signed
			// with a different method.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// The subject carries the donor UUID issued at login.
			c.Set("donor_id", claims["sub"])
			c.Set("role", claims["role"])
			return next(c)
		}
	}
}
