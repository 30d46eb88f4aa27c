package api

import (
	"net/http"

	"dm-server/auth"
	"dm-server/realtime"

	"github.com/labstack/echo/v4"
)

const userIDContextKey = "user_id"

// NewAuthMiddleware guards request-side routes with the same verifier the
// realtime gate uses. Extraction order mirrors the request path: token
// cookie first, then Authorization header. Unlike the realtime handshake
// there is no degraded mode here: no credential means access denied.
func NewAuthMiddleware(verifier *auth.Verifier, cookieName string) echo.MiddlewareFunc {
	extractors := []realtime.CredentialExtractor{
		realtime.FromCookie(cookieName),
		realtime.FromBearerHeader(),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := realtime.ExtractCredential(c.Request(), extractors)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, errorBody("Access denied. No token provided."))
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody("Invalid token."))
			}

			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// callerID returns the authenticated user bound by the middleware.
func callerID(c echo.Context) string {
	id, _ := c.Get(userIDContextKey).(string)
	return id
}

func errorBody(message string) map[string]string {
	return map[string]string{"message": message}
}
