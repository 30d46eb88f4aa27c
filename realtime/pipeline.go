package realtime

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dm-server/domain"
	"dm-server/domain/event"
	apperrors "dm-server/errors"
	"dm-server/moderation"
	"dm-server/observability"
	"dm-server/repositories"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

// OutboundEvent is the envelope every realtime push wears on the wire.
type OutboundEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Pipeline turns an inbound send event into a durable message plus up to
// two live pushes (sender echo and recipient). Persistence is the
// durability boundary: it strictly happens before any push attempt, and
// push failures are never escalated or retried.
type Pipeline struct {
	log        *slog.Logger
	users      repositories.IUserRepository
	messages   repositories.IMessageRepository
	registry   *Registry
	moderator  *moderation.Moderator
	monitoring *observability.Monitoring
}

func NewPipeline(log *slog.Logger, users repositories.IUserRepository,
	messages repositories.IMessageRepository, registry *Registry,
	moderator *moderation.Moderator, monitoring *observability.Monitoring) *Pipeline {
	return &Pipeline{
		log:        log,
		users:      users,
		messages:   messages,
		registry:   registry,
		moderator:  moderator,
		monitoring: monitoring,
	}
}

// HandleSend processes one sendMessage event from a connection.
//
// A connection without a bound identity must never have reached a
// send-capable state, so its events are dropped with a log and nothing
// else: there is no response channel for this error by design.
func (p *Pipeline) HandleSend(sess Connection, cmd domain.SendMessageCommand) {
	if sess.UserID() == "" {
		p.log.Error("send event received on unauthenticated connection, dropping")
		p.monitoring.IncrSendsRejected()
		return
	}
	cmd.SenderID = sess.UserID()

	if strings.TrimSpace(cmd.Content) == "" {
		p.log.Warn("dropping send event", "sender", cmd.SenderID, "error", apperrors.ErrEmptyContent)
		p.monitoring.IncrSendsRejected()
		return
	}
	if cmd.MessageType == "" {
		cmd.MessageType = domain.DefaultMessageType
	}

	sender, recipient, err := p.resolveParticipants(cmd)
	if err != nil {
		p.log.Error("send aborted", "error", err)
		p.monitoring.IncrSendsRejected()
		return
	}

	content := p.censor(cmd)

	message := domain.Message{
		ID:          uuid.New(),
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Content:     content,
		MessageType: cmd.MessageType,
		At:          time.Now().UTC(),
	}

	// Durability boundary. Once Store returns nil the message is part of
	// history regardless of what happens to the live pushes below.
	if err := p.messages.Store(message); err != nil {
		p.log.Error("message store unavailable, aborting before push",
			"sender", sender.ID, "recipient", recipient.ID, "error", err)
		return
	}
	p.monitoring.IncrMessagesStored()

	payload := OutboundEvent{
		Type: event.TypeReceiveMessage,
		Data: event.ReceiveMessage{
			ID:          message.ID,
			Sender:      sender.Public(),
			Recipient:   recipient.Public(),
			Content:     message.Content,
			MessageType: message.MessageType,
			Timestamp:   message.At,
		},
	}

	p.pushTo(sender.ID, payload)
	if recipient.ID != sender.ID {
		p.pushTo(recipient.ID, payload)
	}
}

// resolveParticipants loads both user records before anything is written.
// Fail closed: on either miss nothing is persisted and nothing is pushed.
func (p *Pipeline) resolveParticipants(cmd domain.SendMessageCommand) (domain.User, domain.User, error) {
	sender, err := p.users.GetByID(cmd.SenderID)
	if err != nil {
		return domain.User{}, domain.User{},
			fmt.Errorf("%w: sender %s: %v", apperrors.ErrUnresolvedParticipant, cmd.SenderID, err)
	}
	recipient, err := p.users.GetByID(cmd.RecipientID)
	if err != nil {
		return domain.User{}, domain.User{},
			fmt.Errorf("%w: recipient %s: %v", apperrors.ErrUnresolvedParticipant, cmd.RecipientID, err)
	}
	return sender, recipient, nil
}

// censor runs the moderation pass. Matches are masked, logged with the
// detected language, and never fatal.
func (p *Pipeline) censor(cmd domain.SendMessageCommand) string {
	if p.moderator == nil {
		return cmd.Content
	}

	sanitized, found := p.moderator.Censor(cmd.Content)
	if len(found) > 0 {
		info := whatlanggo.Detect(cmd.Content)
		p.log.Warn(fmt.Sprintf("censored %d word(s) in message", len(found)),
			"sender", cmd.SenderID,
			"lang", info.Lang.Iso6391())
	}
	return sanitized
}

// pushTo delivers the payload to a user's live session if one exists.
// Absence is not an error; a failed send is logged and swallowed.
func (p *Pipeline) pushTo(userID string, payload OutboundEvent) {
	sess, ok := p.registry.Lookup(userID)
	if !ok {
		return
	}
	if err := sess.Send(payload); err != nil {
		p.log.Warn("best-effort push failed", "user_id", userID, "error", err)
		p.monitoring.IncrPushesDropped()
		return
	}
	p.monitoring.IncrPushesDelivered()
}
