package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dm-server/auth"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newProtectedEcho(verifier *auth.Verifier) *echo.Echo {
	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, callerID(c))
	}, NewAuthMiddleware(verifier, "jwt"))
	return e
}

func TestAuthMiddleware_No_Token_Is_Denied(t *testing.T) {
	req := require.New(t)
	e := newProtectedEcho(auth.NewVerifier("secret", time.Hour))

	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)

	req.Equal(http.StatusUnauthorized, rec.Code)
	req.Contains(rec.Body.String(), "No token provided")
}

func TestAuthMiddleware_Invalid_Token_Is_Denied(t *testing.T) {
	req := require.New(t)
	e := newProtectedEcho(auth.NewVerifier("secret", time.Hour))

	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.AddCookie(&http.Cookie{Name: "jwt", Value: "garbage"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)

	req.Equal(http.StatusUnauthorized, rec.Code)
	req.Contains(rec.Body.String(), "Invalid token")
}

func TestAuthMiddleware_Valid_Cookie_Binds_The_Caller(t *testing.T) {
	req := require.New(t)
	verifier := auth.NewVerifier("secret", time.Hour)
	e := newProtectedEcho(verifier)

	token, err := verifier.Generate("user-42")
	req.NoError(err)

	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)

	req.Equal(http.StatusOK, rec.Code)
	req.Equal("user-42", rec.Body.String())
}

func TestAuthMiddleware_Bearer_Header_Works_Without_Cookie(t *testing.T) {
	req := require.New(t)
	verifier := auth.NewVerifier("secret", time.Hour)
	e := newProtectedEcho(verifier)

	token, err := verifier.Generate("user-42")
	req.NoError(err)

	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, r)

	req.Equal(http.StatusOK, rec.Code)
	req.Equal("user-42", rec.Body.String())
}
