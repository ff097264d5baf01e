package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/bloodpoint/donation-service/internal/handler"
	"github.com/bloodpoint/donation-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access issues a new
	// access token without rotating.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: the handler accepts a
	// JSON body containing a refresh_token (or a bearer access token)
	// and invalidates the session it identifies.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(handler.RoleDonor))
	auth.GET("/me", a.Me)

	// Alias outside the auth group so clients can call either
	// /v1/auth/logout or /v1/logout with a valid refresh token.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse and confirmation
// endpoints. The hospital list and district suggestions are readable by
// guests; the confirmation-code exchange is open because possession of
// an outstanding code is itself the credential. Optional middleware
// (response cache) applies to the browse endpoints only.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cf *handler.ConfirmHandler, browseMW ...echo.MiddlewareFunc) {
	e.GET("/v1/hospitais", p.GetHospitals, browseMW...)
	e.GET("/v1/hospitais/distritos", p.GetDistritos, browseMW...)
	e.POST("/v1/doacoes/confirm", cf.Confirm)
}

// RegisterDonor registers the donor-facing protected endpoints: profile,
// donation booking and lifecycle, nurse directory, and the eligibility
// questionnaire. All routes require a valid access token with the DONOR
// role.
func RegisterDonor(e *echo.Echo, pr *handler.ProfileHandler, d *handler.DonationHandler, q *handler.QuestionnaireHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(handler.RoleDonor))

	g.GET("/profile", pr.Get)
	g.PUT("/profile", pr.Update)

	g.POST("/doacoes", d.Book)
	g.GET("/doacoes", d.List)
	g.GET("/doacoes/:id", d.Get)
	g.PATCH("/doacoes/:id", d.Reschedule)
	g.DELETE("/doacoes/:id", d.Cancel)
	g.POST("/doacoes/:id/enfermeiro", d.AssignNurse)
	g.POST("/doacoes/:id/finish", d.Finish)

	g.GET("/enfermeiros", d.ListNurses)

	g.POST("/questionario", q.Submit)
	g.GET("/questionario", q.Latest)
}
