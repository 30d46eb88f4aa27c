package event

import (
	"time"

	"dm-server/domain"

	"github.com/google/uuid"
)

// Wire event names for the realtime channel.
const (
	TypeSendMessage    = "sendMessage"
	TypeReceiveMessage = "receiveMessage"
)

// ReceiveMessage is pushed to each live party of a delivered message.
// It embeds the full public records of both participants so clients can
// render the conversation without an extra lookup.
type ReceiveMessage struct {
	ID          uuid.UUID         `json:"id"`
	Sender      domain.PublicUser `json:"sender"`
	Recipient   domain.PublicUser `json:"recipient"`
	Content     string            `json:"content"`
	MessageType string            `json:"messageType"`
	Timestamp   time.Time         `json:"timestamp"`
}
