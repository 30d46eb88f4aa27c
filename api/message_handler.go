package api

import (
	"log/slog"
	"net/http"
	"time"

	"dm-server/domain"
	"dm-server/services"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

type MessageHandler struct {
	log            *slog.Logger
	messageService services.IMessageService
}

func NewMessageHandler(log *slog.Logger, messageService services.IMessageService) *MessageHandler {
	return &MessageHandler{log: log, messageService: messageService}
}

func (h *MessageHandler) RegisterRoutes(g *echo.Group, authRequired echo.MiddlewareFunc) {
	g.POST("/get-messages", h.GetMessages, authRequired)
}

type getMessagesRequest struct {
	ID string `json:"id"`
}

type messageResponse struct {
	ID          string    `json:"id"`
	Sender      string    `json:"sender"`
	Recipient   string    `json:"recipient"`
	Content     string    `json:"content"`
	MessageType string    `json:"messageType"`
	Timestamp   time.Time `json:"timestamp"`
}

// GetMessages returns the conversation between the caller and the user in
// the request body, oldest first. Fetching a conversation with yourself is
// rejected on this path.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	var req getMessagesRequest
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Missing contactorId in request body."))
	}

	userID := callerID(c)
	if userID == req.ID {
		return c.JSON(http.StatusForbidden, errorBody("Invalid request. Please refresh and try again."))
	}

	messages, err := h.messageService.GetConversation(userID, req.ID)
	if err != nil {
		h.log.Error("fetching conversation failed", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Internal server error."))
	}

	response := lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return messageResponse{
			ID:          m.ID.String(),
			Sender:      m.SenderID,
			Recipient:   m.RecipientID,
			Content:     m.Content,
			MessageType: m.MessageType,
			Timestamp:   m.At,
		}
	})

	return c.JSON(http.StatusOK, map[string]any{"messages": response})
}
