package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"dm-server/auth"
	"dm-server/domain"
	"dm-server/domain/event"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// inboundEvent is the wire shape of client frames on the realtime channel.
type inboundEvent struct {
	Type        string `json:"type"`
	Recipient   string `json:"recipient"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
}

// Gate owns the per-connection handshake. It authenticates a new live
// channel with the same verifier the HTTP layer uses, binds the resulting
// identity to the presence registry, and runs the connection's read loop
// until disconnect.
//
// Policy: a request carrying no credential at all is admitted without
// identity (it can receive nothing and its sends are dropped), while a
// present-but-invalid credential rejects the handshake outright.
type Gate struct {
	log          *slog.Logger
	verifier     *auth.Verifier
	registry     *Registry
	pipeline     *Pipeline
	extractors   []CredentialExtractor
	upgrader     websocket.Upgrader
	bufferSize   int
	writeTimeout time.Duration
}

func NewGate(log *slog.Logger, verifier *auth.Verifier, registry *Registry,
	pipeline *Pipeline, extractors []CredentialExtractor, allowedOrigin string,
	bufferSize int, writeTimeout time.Duration) *Gate {
	return &Gate{
		log:        log,
		verifier:   verifier,
		registry:   registry,
		pipeline:   pipeline,
		extractors: extractors,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
	}
}

// Handle is the echo route for new realtime connections. Authentication
// happens before the upgrade so a rejected handshake never turns into a
// WebSocket at all.
func (g *Gate) Handle(c echo.Context) error {
	token := ExtractCredential(c.Request(), g.extractors)

	var userID string
	if token == "" {
		// Deliberate degraded mode, not an error: covered by policy.
		g.log.Warn("no credential found on realtime handshake, admitting without identity")
	} else {
		id, err := g.verifier.Verify(token)
		if err != nil {
			g.log.Warn("realtime handshake rejected", "error", err)
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Authentication error"})
		}
		userID = id
	}

	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sess := NewSession(conn, userID, g.bufferSize, g.writeTimeout, g.log)
	if userID != "" {
		g.registry.Register(userID, sess)
		g.log.Info("user connected", "user_id", userID)
	}

	g.readLoop(sess, conn)
	return nil
}

// readLoop consumes frames until the transport drops. Unregister compares
// by handle, so this cleanup is safe even when a newer connection for the
// same user has already superseded this one.
func (g *Gate) readLoop(sess *Session, conn *websocket.Conn) {
	defer func() {
		g.registry.Unregister(sess)
		sess.Close()
		g.log.Info("connection closed", "user_id", sess.UserID())
	}()

	for {
		var evt inboundEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.Debug("read loop ended", "user_id", sess.UserID(), "error", err)
			}
			return
		}

		switch evt.Type {
		case event.TypeSendMessage:
			g.pipeline.HandleSend(sess, domain.SendMessageCommand{
				RecipientID: evt.Recipient,
				Content:     evt.Content,
				MessageType: evt.MessageType,
			})
		default:
			g.log.Debug("unknown realtime event type", "type", evt.Type)
		}
	}
}
