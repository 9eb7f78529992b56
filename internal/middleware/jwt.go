package middleware

import (
	"context"
	"net/http"

	"estoquehub/internal/common"
	"estoquehub/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ProfileMiddleware resolves the authenticated caller from the token already
// verified by echo-jwt, loads the profile and stores user id and role in the
// request context. Must run after echojwt.WithConfig on the same group.
func ProfileMiddleware(profileRepo repositories.ProfileRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, ok := claims["sub"].(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing sub in token")
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid sub format")
			}

			profile, err := profileRepo.GetByID(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
			}
			if !profile.Active {
				return echo.NewHTTPError(http.StatusUnauthorized, "User is deactivated")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.RoleKey, profile.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
