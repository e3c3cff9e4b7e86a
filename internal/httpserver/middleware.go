package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fveldev/blog-auth/internal/token"
)

const principalKey = "principal_id"

type AuthMiddleware struct {
	Codec *token.Codec
}

// RequireAuth verifies the Bearer access token and stashes the account ID
// for the handler. Every failure is a uniform 401.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Codec.Verify(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		id, err := uuid.Parse(claims.UserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(principalKey, id)
		return next(c)
	}
}

func principalID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(principalKey).(uuid.UUID)
	return id, ok
}
