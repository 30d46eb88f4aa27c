package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	apperrors "dm-server/errors"
	"dm-server/services"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	log         *slog.Logger
	authService services.IAuthService
	cookieName  string
	cookieTTL   time.Duration
}

func NewAuthHandler(log *slog.Logger, authService services.IAuthService,
	cookieName string, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{log: log, authService: authService, cookieName: cookieName, cookieTTL: cookieTTL}
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group, authRequired echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout, authRequired)
	g.GET("/userinfo", h.UserInfo, authRequired)
	g.POST("/update-profile", h.UpdateProfile, authRequired)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Email and password are required."))
	}

	_, err := h.authService.Register(req.Email, req.Password)
	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return c.JSON(http.StatusBadRequest, errorBody("Email is already registered."))
	case errors.Is(err, apperrors.ErrInvalidPassword):
		return c.JSON(http.StatusBadRequest, errorBody("Invalid email or password format."))
	case err != nil:
		h.log.Error("signup failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Server error"))
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Email and password are required."))
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid email or password"))
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    string(token),
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	return c.JSON(http.StatusCreated, map[string]any{"user": user.Public()})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	h.log.Info("user logged out", "user_id", callerID(c))
	return c.JSON(http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (h *AuthHandler) UserInfo(c echo.Context) error {
	user, err := h.authService.UserInfo(callerID(c))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody("User not found."))
	}
	return c.JSON(http.StatusOK, user.Public())
}

type profileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Color     string `json:"color"`
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil || req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, errorBody("First name and last name are required."))
	}

	user, err := h.authService.UpdateProfile(callerID(c), req.FirstName, req.LastName, req.Color)
	if err != nil {
		h.log.Error("profile update failed", "user_id", callerID(c), "error", err)
		return c.JSON(http.StatusBadRequest, errorBody("User not found."))
	}

	return c.JSON(http.StatusOK, user.Public())
}
