// Package middleware contains the echo middleware for the HTTP delivery layer.
package middleware

import (
	"strings"

	"passport/internal/delivery/http/response"
	"passport/internal/domain/entity"
	"passport/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID = "userID"
	ContextKeyEmail  = "email"
	ContextKeyRoles  = "roles"
)

// AuthMiddleware is the access control gate: Authenticate verifies the token,
// RequireRole checks the verified role set. Both only decide pass/reject and
// attach identity; they have no other side effects.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer token and attaches the verified identity
// to the request context. Missing, malformed, tampered and expired tokens all
// short-circuit with 401; expired tokens get their own message so clients know
// to log in again.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "TOKEN_MISSING", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "TOKEN_INVALID", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.Verify(tokenString)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				return response.Unauthorized(c, "TOKEN_EXPIRED", "Token has expired, please log in again")
			}

			return response.Unauthorized(c, "TOKEN_INVALID", "Invalid token")
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRoles, entity.RolesFromStrings(claims.Roles))

		return next(c)
	}
}

// RequireRole is a middleware factory that checks if the verified identity
// holds a specific role. It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(requiredRole entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(ContextKeyRoles).(entity.Roles)
			if !ok {
				return response.Forbidden(c, "ROLE_MISSING", "Permission denied: role information missing")
			}

			if !roles.Contains(requiredRole) {
				return response.Forbidden(c, "ROLE_REQUIRED", "Permission denied: require '"+requiredRole.String()+"' role")
			}

			return next(c)
		}
	}
}

// UserIDFromContext extracts the verified user ID attached by Authenticate.
func UserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(ContextKeyUserID).(int64)

	return id, ok
}

// RolesFromContext extracts the verified role set attached by Authenticate.
func RolesFromContext(c echo.Context) (entity.Roles, bool) {
	roles, ok := c.Get(ContextKeyRoles).(entity.Roles)

	return roles, ok
}
