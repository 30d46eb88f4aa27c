package api

import (
	"log/slog"
	"net/http"

	"dm-server/services"

	"github.com/labstack/echo/v4"
)

type ContactHandler struct {
	log            *slog.Logger
	contactService services.IContactService
}

func NewContactHandler(log *slog.Logger, contactService services.IContactService) *ContactHandler {
	return &ContactHandler{log: log, contactService: contactService}
}

func (h *ContactHandler) RegisterRoutes(g *echo.Group, authRequired echo.MiddlewareFunc) {
	g.Use(authRequired)
	g.POST("/search", h.Search)
	g.GET("/all-contacts", h.AllContacts)
	g.GET("/get-contacts-for-list", h.ContactsForList)
	g.DELETE("/delete-dm/:dmId", h.DeleteDirectMessages)
}

type searchRequest struct {
	SearchTerm string `json:"searchTerm"`
}

func (h *ContactHandler) Search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil || req.SearchTerm == "" {
		return c.JSON(http.StatusBadRequest, errorBody("searchTerm is required"))
	}

	contacts, err := h.contactService.Search(c.Request().Context(), req.SearchTerm)
	if err != nil {
		h.log.Error("contact search failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Unexpected server error"))
	}

	return c.JSON(http.StatusOK, map[string]any{"contacts": contacts})
}

func (h *ContactHandler) AllContacts(c echo.Context) error {
	contacts, err := h.contactService.AllContacts()
	if err != nil {
		h.log.Error("listing contacts failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Unexpected server error"))
	}
	return c.JSON(http.StatusOK, map[string]any{"contacts": contacts})
}

func (h *ContactHandler) ContactsForList(c echo.Context) error {
	contacts, err := h.contactService.ContactsForList(callerID(c))
	if err != nil {
		h.log.Error("listing conversation partners failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Unexpected server error"))
	}
	return c.JSON(http.StatusOK, map[string]any{"contacts": contacts})
}

func (h *ContactHandler) DeleteDirectMessages(c echo.Context) error {
	dmID := c.Param("dmId")
	if dmID == "" {
		return c.JSON(http.StatusBadRequest, errorBody("dmId is required"))
	}

	count, err := h.contactService.DeleteDirectMessages(callerID(c), dmID)
	if err != nil {
		h.log.Error("deleting direct messages failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Unexpected server error"))
	}
	if count == 0 {
		return c.JSON(http.StatusNotFound, errorBody("No direct messages found to delete"))
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "DM deleted successfully"})
}
