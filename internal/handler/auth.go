package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/bloodpoint/donation-service/internal/config"
	"github.com/bloodpoint/donation-service/internal/repository"
	"github.com/bloodpoint/donation-service/internal/utils"
)

// RoleDonor is the role claim issued to every registered donor. Staff
// never authenticate against this service; the confirmation-code
// exchange is deliberately open (see ConfirmHandler).
const RoleDonor = "DONOR"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Donors *repository.DonorRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, d *repository.DonorRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Donors: d, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Nome          string `json:"nome"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Idade         uint8  `json:"idade"`
	TipoSanguineo string `json:"tipo_sanguineo"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type donorPart struct {
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	Email         string `json:"email"`
	Idade         uint8  `json:"idade,omitempty"`
	TipoSanguineo string `json:"tipo_sanguineo,omitempty"`
}
type authResp struct {
	Donor   donorPart `json:"donor"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register: create a donor account and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Nome = strings.TrimSpace(req.Nome)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if req.Nome == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nome required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Donors.Create(ctx, req.Nome, req.Email, req.Password, req.Idade, req.TipoSanguineo, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create donor failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, RoleDonor, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, id, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		Donor:   donorPart{ID: id, Nome: req.Nome, Email: req.Email, Idade: req.Idade, TipoSanguineo: req.TipoSanguineo},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Donors.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(d.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, d.ID, RoleDonor, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, d.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		Donor:   donorPart{ID: d.ID, Nome: d.Nome, Email: d.Email, Idade: d.Idade, TipoSanguineo: d.TipoSanguineo},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh: validate by hash, revoke old, issue new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	d, err := h.Donors.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load donor failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, RoleDonor, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, id, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		Donor:   donorPart{ID: d.ID, Nome: d.Nome, Email: d.Email, Idade: d.Idade, TipoSanguineo: d.TipoSanguineo},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
	})
}

// RefreshAccess: validate a refresh token and return a new access token
// WITHOUT rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if _, err := h.Donors.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load donor failed"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, RoleDonor, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes refresh tokens. With a Bearer access token and no body
// it revokes every session of that donor; with a refresh_token in the
// body it revokes that single session. Neither present is a 400.
func (h *AuthHandler) Logout(c echo.Context) error {
	var id string
	hasBearer := false
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		rawToken := strings.TrimPrefix(authHeader, "Bearer ")
		tok, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, echo.ErrUnauthorized
			}
			return []byte(h.Cfg.JWTSecret), nil
		})
		if err == nil && tok.Valid {
			if claims, ok := tok.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["sub"].(string); ok && sub != "" {
					id = sub
					hasBearer = true
				}
			}
		}
	}

	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if hasBearer && refreshToken == "" {
		if err := h.Tokens.RevokeAllForDonor(ctx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}
	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me: simple protected endpoint returning the caller's claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"donor_id": c.Get("donor_id"),
		"role":     c.Get("role"),
	})
}
