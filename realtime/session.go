package realtime

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errSessionGone = errors.New("session closed or backlogged")

// Session wraps one live WebSocket connection. The outbound side is a
// buffered channel drained by a single writer goroutine, so a slow or hung
// peer can never block the caller: Send drops instead of waiting.
//
// UserID is empty for connections admitted without a credential; such a
// session can be written to by nobody (it is never registered) and its send
// events are discarded upstream.
type Session struct {
	conn         *websocket.Conn
	userID       string
	out          chan any
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	log          *slog.Logger
}

func NewSession(conn *websocket.Conn, userID string, bufferSize int,
	writeTimeout time.Duration, log *slog.Logger) *Session {
	s := &Session{
		conn:         conn,
		userID:       userID,
		out:          make(chan any, bufferSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		log:          log,
	}
	go s.writePump()
	return s
}

func (s *Session) UserID() string { return s.userID }

// Send queues a payload for delivery. Best-effort by contract: a closed
// session or a full buffer returns an error the caller is allowed to
// ignore after logging. It never blocks.
func (s *Session) Send(v any) error {
	select {
	case <-s.done:
		return errSessionGone
	default:
	}

	select {
	case s.out <- v:
		return nil
	default:
		return errSessionGone
	}
}

// writePump serializes all writes to the underlying connection. gorilla
// connections support one concurrent writer only; funnelling everything
// through this goroutine is what makes Send safe from any goroutine.
func (s *Session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case v := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteJSON(v); err != nil {
				s.log.Debug("session write failed", "user_id", s.userID, "error", err)
				s.Close()
				return
			}
		}
	}
}

// Close tears the connection down. Idempotent; safe to call from the read
// loop, the write pump, or shutdown concurrently.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
