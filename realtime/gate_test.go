package realtime

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dm-server/auth"
	"dm-server/domain"
	"dm-server/domain/event"
	"dm-server/mocks"
	"dm-server/observability"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type gateFixture struct {
	server     *httptest.Server
	registry   *Registry
	verifier   *auth.Verifier
	users      *mocks.MockIUserRepository
	messages   *mocks.MockIMessageRepository
	monitoring *observability.Monitoring
}

func newGateFixture(t *testing.T) gateFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	users := mocks.NewMockIUserRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	registry := NewRegistry()
	monitoring := observability.NewMonitoring()
	verifier := auth.NewVerifier("gate-test-secret", time.Hour)

	logger := slog.Default()
	pipeline := NewPipeline(logger, users, messages, registry, nil, monitoring)
	gate := NewGate(logger, verifier, registry, pipeline,
		DefaultExtractors("jwt"), "*", 32, 5*time.Second)

	e := echo.New()
	e.GET("/ws", gate.Handle)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	return gateFixture{
		server:     server,
		registry:   registry,
		verifier:   verifier,
		users:      users,
		messages:   messages,
		monitoring: monitoring,
	}
}

func (f gateFixture) wsURL() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
}

func TestGate_Valid_Credential_Binds_Presence(t *testing.T) {
	req := require.New(t)
	f := newGateFixture(t)

	token, err := f.verifier.Generate("alice")
	req.NoError(err)

	// When a client connects with a valid handshake credential
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL()+"?auth_token="+token, nil)
	req.NoError(err)
	defer conn.Close()

	// Then the user shows up in the presence registry
	req.Eventually(func() bool {
		_, ok := f.registry.Lookup("alice")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// And disconnecting removes it again
	conn.Close()
	req.Eventually(func() bool {
		_, ok := f.registry.Lookup("alice")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGate_Invalid_Credential_Rejects_The_Handshake(t *testing.T) {
	req := require.New(t)
	f := newGateFixture(t)

	// When a client presents a credential that does not verify
	conn, resp, err := websocket.DefaultDialer.Dial(f.wsURL()+"?auth_token=not-a-token", nil)

	// Then no WebSocket ever comes up: the HTTP handshake itself fails
	req.Error(err)
	req.Nil(conn)
	req.NotNil(resp)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	req.Zero(f.registry.Count())
}

func TestGate_Missing_Credential_Admits_Without_Identity(t *testing.T) {
	req := require.New(t)
	f := newGateFixture(t)

	// Sends from such a connection must never reach the repositories
	f.users.EXPECT().GetByID(gomock.Any()).Times(0)
	f.messages.EXPECT().Store(gomock.Any()).Times(0)

	// When a client connects with no credential anywhere
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL(), nil)
	req.NoError(err)
	defer conn.Close()

	// Then it is connected but absent from presence
	req.Zero(f.registry.Count())

	// And its send events are silently dropped
	err = conn.WriteJSON(map[string]string{
		"type":      event.TypeSendMessage,
		"recipient": "bob",
		"content":   "anonymous noise",
	})
	req.NoError(err)

	req.Eventually(func() bool {
		return f.monitoring.GetLatest().SendsRejected == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGate_Reconnect_Supersedes_And_Old_Socket_Drops_Cleanly(t *testing.T) {
	req := require.New(t)
	f := newGateFixture(t)

	token, err := f.verifier.Generate("alice")
	req.NoError(err)

	// Given an established connection
	first, _, err := websocket.DefaultDialer.Dial(f.wsURL()+"?auth_token="+token, nil)
	req.NoError(err)
	defer first.Close()
	req.Eventually(func() bool {
		_, ok := f.registry.Lookup("alice")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// When the same user connects again
	second, _, err := websocket.DefaultDialer.Dial(f.wsURL()+"?auth_token="+token, nil)
	req.NoError(err)
	defer second.Close()

	req.Eventually(func() bool {
		return f.registry.Count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Then closing the first (superseded) socket keeps the user present
	first.Close()
	time.Sleep(100 * time.Millisecond)
	_, ok := f.registry.Lookup("alice")
	req.True(ok)

	// And closing the second removes it
	second.Close()
	req.Eventually(func() bool {
		_, ok := f.registry.Lookup("alice")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGate_Message_Flows_End_To_End(t *testing.T) {
	req := require.New(t)
	f := newGateFixture(t)

	f.users.EXPECT().GetByID("alice").
		Return(domain.User{ID: "alice", Email: "alice@example.com"}, nil).AnyTimes()
	f.users.EXPECT().GetByID("bob").
		Return(domain.User{ID: "bob", Email: "bob@example.com"}, nil).AnyTimes()
	f.messages.EXPECT().Store(gomock.Any()).Return(nil).Times(1)

	aliceToken, err := f.verifier.Generate("alice")
	req.NoError(err)
	bobToken, err := f.verifier.Generate("bob")
	req.NoError(err)

	alice, _, err := websocket.DefaultDialer.Dial(f.wsURL()+"?auth_token="+aliceToken, nil)
	req.NoError(err)
	defer alice.Close()
	bob, _, err := websocket.DefaultDialer.Dial(f.wsURL()+"?auth_token="+bobToken, nil)
	req.NoError(err)
	defer bob.Close()

	req.Eventually(func() bool {
		return f.registry.Count() == 2
	}, 2*time.Second, 10*time.Millisecond)

	// When Alice sends Bob a message
	err = alice.WriteJSON(map[string]string{
		"type":      event.TypeSendMessage,
		"recipient": "bob",
		"content":   "hello bob",
	})
	req.NoError(err)

	// Then Bob receives the receive event over his socket
	var received struct {
		Type string               `json:"type"`
		Data event.ReceiveMessage `json:"data"`
	}
	req.NoError(bob.SetReadDeadline(time.Now().Add(2 * time.Second)))
	req.NoError(bob.ReadJSON(&received))

	req.Equal(event.TypeReceiveMessage, received.Type)
	req.Equal("hello bob", received.Data.Content)
	req.Equal("alice", received.Data.Sender.ID)
	req.Equal("bob", received.Data.Recipient.ID)

	// And Alice gets her own echo
	var echoed struct {
		Type string               `json:"type"`
		Data event.ReceiveMessage `json:"data"`
	}
	req.NoError(alice.SetReadDeadline(time.Now().Add(2 * time.Second)))
	req.NoError(alice.ReadJSON(&echoed))
	req.Equal("hello bob", echoed.Data.Content)
}
