package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dm-server/auth"
	"dm-server/repositories"
	"dm-server/services"

	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// authFixture wires the real service stack (badger, bluge, argon2, jwt)
// behind the HTTP routes, the way main does.
type authFixture struct {
	e        *echo.Echo
	verifier *auth.Verifier
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	logger := slog.Default()
	users := repositories.NewUserRepository(db)
	index := repositories.NewContactIndex(writer, logger)
	verifier := auth.NewVerifier("handler-test-secret", time.Hour)
	authService := services.NewAuthService(users, index, verifier)

	e := echo.New()
	handler := NewAuthHandler(logger, authService, "jwt", time.Hour)
	handler.RegisterRoutes(e.Group("/api/auth"), NewAuthMiddleware(verifier, "jwt"))

	return authFixture{e: e, verifier: verifier}
}

func (f authFixture) postJSON(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, r)
	return rec
}

func TestAuthHandler_Signup_Login_Userinfo_Flow(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture(t)

	// Signup
	rec := f.postJSON("/api/auth/signup", `{"email":"ada@example.com","password":"ComplexPass123!"}`)
	req.Equal(http.StatusCreated, rec.Code)

	// Duplicate signup is rejected
	rec = f.postJSON("/api/auth/signup", `{"email":"ada@example.com","password":"ComplexPass123!"}`)
	req.Equal(http.StatusBadRequest, rec.Code)
	req.Contains(rec.Body.String(), "already registered")

	// Login returns the public user and sets the token cookie
	rec = f.postJSON("/api/auth/login", `{"email":"ada@example.com","password":"ComplexPass123!"}`)
	req.Equal(http.StatusCreated, rec.Code)

	var loginBody struct {
		User struct {
			ID           string `json:"id"`
			Email        string `json:"email"`
			ProfileSetup bool   `json:"profileSetup"`
		} `json:"user"`
	}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &loginBody))
	req.NotEmpty(loginBody.User.ID)
	req.False(loginBody.User.ProfileSetup)

	response := rec.Result()
	defer response.Body.Close()
	cookies := response.Cookies()
	req.NotEmpty(cookies)
	tokenCookie := cookies[0]
	req.Equal("jwt", tokenCookie.Name)
	req.True(tokenCookie.HttpOnly)

	// The cookie value is a token our verifier accepts
	userID, err := f.verifier.Verify(tokenCookie.Value)
	req.NoError(err)
	req.Equal(loginBody.User.ID, userID)

	// Userinfo with the cookie resolves the account
	r := httptest.NewRequest(http.MethodGet, "/api/auth/userinfo", nil)
	r.AddCookie(tokenCookie)
	infoRec := httptest.NewRecorder()
	f.e.ServeHTTP(infoRec, r)
	req.Equal(http.StatusOK, infoRec.Code)
	req.Contains(infoRec.Body.String(), "ada@example.com")
	req.NotContains(infoRec.Body.String(), "argon2id") // hash never leaks

	// Profile setup
	rec = f.postJSON("/api/auth/update-profile",
		`{"firstName":"Ada","lastName":"Lovelace","color":"#ff0000"}`, tokenCookie)
	req.Equal(http.StatusOK, rec.Code)
	req.Contains(rec.Body.String(), `"profileSetup":true`)
}

func TestAuthHandler_Login_Wrong_Password(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture(t)

	rec := f.postJSON("/api/auth/signup", `{"email":"ada@example.com","password":"ComplexPass123!"}`)
	req.Equal(http.StatusCreated, rec.Code)

	rec = f.postJSON("/api/auth/login", `{"email":"ada@example.com","password":"WrongPass12345!"}`)
	req.Equal(http.StatusBadRequest, rec.Code)

	// Unknown email yields the same response shape and status
	rec = f.postJSON("/api/auth/login", `{"email":"ghost@example.com","password":"WrongPass12345!"}`)
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Signup_Requires_Both_Fields(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture(t)

	rec := f.postJSON("/api/auth/signup", `{"email":"ada@example.com"}`)
	req.Equal(http.StatusBadRequest, rec.Code)

	rec = f.postJSON("/api/auth/signup", `{"password":"ComplexPass123!"}`)
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Protected_Routes_Require_Auth(t *testing.T) {
	req := require.New(t)
	f := newAuthFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/api/auth/userinfo", nil)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, r)
	req.Equal(http.StatusUnauthorized, rec.Code)
}
