package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"authgate/internal/auth"
	apperrors "authgate/internal/errors"
	"authgate/internal/metrics"
	"authgate/internal/service"
)

// Cookie names for the two issued credentials.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	jwtService  *auth.JWTService
	tokenStore  auth.TokenStoreInterface
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
		tokenStore:  tokenStore,
	}
}

// RegisterRequest represents a user registration request. Field order matters:
// validation errors are reported in declaration order.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// normalize trims every field and lowercases the email so that lookups and
// the unique index see one canonical form. Runs before validation, so a
// whitespace-only field fails the required rule.
func (r *RegisterRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Password = strings.TrimSpace(r.Password)
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token when it is sent in the body
// instead of the cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the user payload returned by auth endpoints.
type UserResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.normalize()
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	user, pair, err := h.authService.Register(c.Request().Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		if err == apperrors.ErrEmailTaken {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	h.setTokenCookies(c, pair)
	return c.JSON(http.StatusCreated, UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
	})
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.Envelope
// @Failure 401 {object} errors.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if err == apperrors.ErrInvalidCredentials {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	h.setTokenCookies(c, pair)
	return c.JSON(http.StatusOK, UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
	})
}

// Refresh godoc
// @Summary Mint a new access token from a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token (falls back to the refreshToken cookie)"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := h.refreshTokenFrom(c)
	if token == "" {
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		return apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.TokenRefreshesTotal.WithLabelValues("ok").Inc()

	h.setCookie(c, AccessTokenCookie, accessToken, h.jwtService.AccessTokenTTL())
	return c.JSON(http.StatusOK, map[string]string{"access_token": accessToken})
}

// Logout godoc
// @Summary Revoke the refresh token and clear auth cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token (falls back to the refreshToken cookie)"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := h.refreshTokenFrom(c)
	if token == "" {
		return apperrors.ErrInvalidRefreshToken
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	// Best-effort: retire the current access token early instead of letting
	// it ride out its expiry.
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		if claims, err := h.jwtService.ValidateToken(cookie.Value); err == nil && claims.ID != "" {
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl > 0 {
				_ = h.tokenStore.BlacklistAccessToken(c.Request().Context(), claims.ID, ttl)
			}
		}
	}

	h.clearCookie(c, AccessTokenCookie)
	h.clearCookie(c, RefreshTokenCookie)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// refreshTokenFrom prefers the request body, then the cookie.
func (h *AuthHandler) refreshTokenFrom(c echo.Context) string {
	var req RefreshRequest
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *AuthHandler) setTokenCookies(c echo.Context, pair *service.TokenPair) {
	h.setCookie(c, AccessTokenCookie, pair.AccessToken, h.jwtService.AccessTokenTTL())
	h.setCookie(c, RefreshTokenCookie, pair.RefreshToken, h.jwtService.RefreshTokenTTL())
}

func (h *AuthHandler) setCookie(c echo.Context, name, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}
