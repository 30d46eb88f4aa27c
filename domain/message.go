package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultMessageType = "text"

// Message is a persisted direct message between two users. Immutable once
// stored; the only mutation the store supports is bulk conversation deletion.
type Message struct {
	ID          uuid.UUID
	SenderID    string
	RecipientID string
	Content     string
	MessageType string
	At          time.Time
}

// SendMessageCommand is the inbound realtime send intent. SenderID is bound
// from the connection identity, never taken from the client payload.
type SendMessageCommand struct {
	SenderID    string
	RecipientID string
	Content     string
	MessageType string
}
