package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-wa-relay/internal/config"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/models"
)

// fakeBridge answers every command with the messages returned by respond,
// written in order. Returning nil closes the connection.
type fakeBridge struct {
	srv      *httptest.Server
	respond  func(cmd bridgeCommand) []bridgeMessage
	mu       sync.Mutex
	commands []bridgeCommand
}

func newFakeBridge(t *testing.T, respond func(cmd bridgeCommand) []bridgeMessage) *fakeBridge {
	t.Helper()
	b := &fakeBridge{respond: respond}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var cmd bridgeCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			b.mu.Lock()
			b.commands = append(b.commands, cmd)
			b.mu.Unlock()

			out := b.respond(cmd)
			if out == nil {
				return
			}
			for _, msg := range out {
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBridge) url() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http")
}

func (b *fakeBridge) ops() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ops := make([]string, 0, len(b.commands))
	for _, c := range b.commands {
		ops = append(ops, c.Op)
	}
	return ops
}

func ok(cmd bridgeCommand) bridgeMessage {
	return bridgeMessage{ID: cmd.ID, OK: true}
}

// eventRecorder is a thread-safe EventHandler.
type eventRecorder struct {
	mu     sync.Mutex
	events []models.LifecycleEvent
}

func (r *eventRecorder) handle(e models.LifecycleEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestWSClient(t *testing.T, bridge *fakeBridge, rec *eventRecorder) ChatClient {
	t.Helper()
	factory, err := NewWSClientFactory(config.Adapter{TransportURL: bridge.url(), TransportTimeout: 2 * time.Second}, logger.Nop())
	require.NoError(t, err)

	cl, err := factory.NewClient(models.NewSessionIdentity("bot01", ".wwebjs_auth"), DefaultClientOptions(), rec.handle)
	require.NoError(t, err)
	return cl
}

func TestWSClient_InitializeDeliversEventsInOrder(t *testing.T) {
	bridge := newFakeBridge(t, func(cmd bridgeCommand) []bridgeMessage {
		switch cmd.Op {
		case opInitialize:
			return []bridgeMessage{
				{Event: models.EventTypeQR, QR: "2@first"},
				{Event: models.EventTypeQR, QR: "2@second"},
				{Event: models.EventTypeAuthenticated},
				{Event: models.EventTypeReady},
				ok(cmd),
			}
		default:
			return []bridgeMessage{ok(cmd)}
		}
	})
	rec := &eventRecorder{}
	cl := newTestWSClient(t, bridge, rec)

	require.NoError(t, cl.Initialize(context.Background()))

	assert.Equal(t, []models.EventType{
		models.EventTypeQR, models.EventTypeQR, models.EventTypeAuthenticated, models.EventTypeReady,
	}, rec.types())
	assert.Equal(t, "2@first", rec.events[0].QR)

	bridge.mu.Lock()
	init := bridge.commands[0]
	bridge.mu.Unlock()
	assert.Equal(t, "bot01", init.ClientID)
	assert.Equal(t, ".wwebjs_auth", init.DataPath)
	require.NotNil(t, init.Options)
	assert.False(t, init.Options.DeleteSessionOnLogout)
	assert.True(t, init.Options.TakeoverOnConflict)
	assert.Zero(t, init.Options.TakeoverTimeoutMs)

	require.NoError(t, cl.Destroy(context.Background()))
}

func TestWSClient_CommandsRoundTrip(t *testing.T) {
	bridge := newFakeBridge(t, func(cmd bridgeCommand) []bridgeMessage {
		switch cmd.Op {
		case opGetChat:
			reply := ok(cmd)
			reply.Chat = &models.Chat{ID: cmd.ChatID, IsGroup: strings.HasSuffix(cmd.ChatID, "@g.us")}
			return []bridgeMessage{reply}
		case opSendMessage:
			if cmd.To == "" {
				return []bridgeMessage{{ID: cmd.ID, OK: false, Error: "no recipient"}}
			}
			return []bridgeMessage{ok(cmd)}
		default:
			return []bridgeMessage{ok(cmd)}
		}
	})
	cl := newTestWSClient(t, bridge, &eventRecorder{})
	ctx := context.Background()
	require.NoError(t, cl.Initialize(ctx))
	defer cl.Destroy(ctx)

	chat, err := cl.GetChat(ctx, "123@g.us")
	require.NoError(t, err)
	assert.True(t, chat.IsGroup)

	chat, err = cl.GetChat(ctx, "5511@c.us")
	require.NoError(t, err)
	assert.False(t, chat.IsGroup)

	require.NoError(t, cl.SendMessage(ctx, "5511@c.us", "hello"))

	err = cl.SendMessage(ctx, "", "hello")
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestWSClient_InitializeFailure(t *testing.T) {
	bridge := newFakeBridge(t, func(cmd bridgeCommand) []bridgeMessage {
		return []bridgeMessage{{ID: cmd.ID, OK: false, Error: "browser failed to launch"}}
	})
	rec := &eventRecorder{}
	cl := newTestWSClient(t, bridge, rec)

	err := cl.Initialize(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "browser failed to launch")
	assert.Empty(t, rec.types(), "no disconnected event for a failed initialize")

	// the instance is unusable afterwards
	assert.ErrorIs(t, cl.SendMessage(context.Background(), "a", "b"), ErrTransportClosed)
}

func TestWSClient_DestroyEmitsNoDisconnect(t *testing.T) {
	bridge := newFakeBridge(t, func(cmd bridgeCommand) []bridgeMessage {
		return []bridgeMessage{ok(cmd)}
	})
	rec := &eventRecorder{}
	cl := newTestWSClient(t, bridge, rec)
	require.NoError(t, cl.Initialize(context.Background()))

	require.NoError(t, cl.Destroy(context.Background()))
	require.NoError(t, cl.Destroy(context.Background()), "second destroy is a no-op")

	assert.Empty(t, rec.types())
	assert.Equal(t, []string{opInitialize, opDestroy}, bridge.ops())
	assert.ErrorIs(t, cl.Initialize(context.Background()), ErrTransportClosed)
}

func TestWSClient_ConnectionLossEmitsDisconnected(t *testing.T) {
	bridge := newFakeBridge(t, func(cmd bridgeCommand) []bridgeMessage {
		if cmd.Op == opSendMessage {
			return nil // drop the connection
		}
		return []bridgeMessage{ok(cmd)}
	})
	rec := &eventRecorder{}
	cl := newTestWSClient(t, bridge, rec)
	require.NoError(t, cl.Initialize(context.Background()))

	err := cl.SendMessage(context.Background(), "5511@c.us", "hi")
	assert.ErrorIs(t, err, ErrTransportClosed)

	require.Eventually(t, func() bool {
		types := rec.types()
		return len(types) == 1 && types[0] == models.EventTypeDisconnected
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, ReasonTransportClosed, rec.events[0].Reason)
}

func TestWSClient_BridgeDisconnectEvent(t *testing.T) {
	bridge := newFakeBridge(t, func(cmd bridgeCommand) []bridgeMessage {
		if cmd.Op == opGetChat {
			return []bridgeMessage{{Event: models.EventTypeDisconnected, Reason: "LOGOUT"}, {Event: "typing"}, ok(cmd)}
		}
		return []bridgeMessage{ok(cmd)}
	})
	rec := &eventRecorder{}
	cl := newTestWSClient(t, bridge, rec)
	require.NoError(t, cl.Initialize(context.Background()))
	defer cl.Destroy(context.Background())

	_, err := cl.GetChat(context.Background(), "x")
	assert.ErrorIs(t, err, ErrCommandFailed, "reply without chat")

	require.Equal(t, []models.EventType{models.EventTypeDisconnected}, rec.types())
	assert.Equal(t, "LOGOUT", rec.events[0].Reason)
}

func TestWSClient_CommandBeforeInitialize(t *testing.T) {
	bridge := newFakeBridge(t, func(cmd bridgeCommand) []bridgeMessage { return []bridgeMessage{ok(cmd)} })
	cl := newTestWSClient(t, bridge, &eventRecorder{})

	assert.ErrorIs(t, cl.SendMessage(context.Background(), "a", "b"), ErrNotInitialized)
	assert.NoError(t, cl.Destroy(context.Background()))
}

func TestWSClient_DialFailure(t *testing.T) {
	factory, err := NewWSClientFactory(config.Adapter{TransportURL: "ws://127.0.0.1:1/bridge"}, logger.Nop())
	require.NoError(t, err)
	cl, err := factory.NewClient(models.NewSessionIdentity("bot01", "."), DefaultClientOptions(), func(models.LifecycleEvent) {})
	require.NoError(t, err)

	assert.Error(t, cl.Initialize(context.Background()))
}

func TestNewWSClientFactory_Validation(t *testing.T) {
	for _, raw := range []string{"", "http://127.0.0.1:3002", "ws://", "::not a url"} {
		_, err := NewWSClientFactory(config.Adapter{TransportURL: raw}, logger.Nop())
		assert.ErrorIs(t, err, ErrInvalidAddress, raw)
	}

	factory, err := NewWSClientFactory(config.Adapter{TransportURL: "wss://bridge.local/ws"}, logger.Nop())
	require.NoError(t, err)
	_, err = factory.NewClient(models.SessionIdentity{}, DefaultClientOptions(), nil)
	assert.Error(t, err)
}
