package router

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"authgate/internal/auth"
	apperrors "authgate/internal/errors"
)

// tokenClaims is the view of the verified access token used by route
// middleware. echo-jwt parses with golang-jwt/v5 and stores MapClaims; the
// signing side (internal/auth) stays on v4, which is wire-compatible.
type tokenClaims struct {
	UserID  uint
	Role    string
	TokenID string
}

// claimsFrom extracts the verified claims placed in context by echo-jwt.
func claimsFrom(c echo.Context) (*tokenClaims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	uid, ok := mc["user_id"].(float64)
	if !ok {
		return nil, false
	}
	role, _ := mc["role"].(string)
	jti, _ := mc["jti"].(string)

	return &tokenClaims{UserID: uint(uid), Role: role, TokenID: jti}, true
}

// rejectBlacklisted blocks access tokens that were retired early by logout.
// Runs after echo-jwt, so the signature is already verified.
func rejectBlacklisted(store auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := claimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if revoked, _ := store.IsAccessTokenBlacklisted(c.Request().Context(), claims.TokenID); revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
			}
			return next(c)
		}
	}
}

// requireRoles enforces role-based access on a route group.
func requireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := claimsFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if _, ok := allowed[claims.Role]; !ok {
				return apperrors.ErrForbidden
			}
			return next(c)
		}
	}
}
