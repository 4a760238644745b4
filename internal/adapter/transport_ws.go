package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-wa-relay/internal/config"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/models"
)

const (
	// Time allowed to write a message to the bridge.
	writeWait = 10 * time.Second

	// Maximum message size allowed from the bridge (QR payloads included).
	maxMessageSize = 1 << 20

	// ReasonTransportClosed is reported when the bridge connection drops
	// after a successful initialize.
	ReasonTransportClosed = "TRANSPORT_CLOSED"
)

const (
	opInitialize  = "initialize"
	opDestroy     = "destroy"
	opSendMessage = "send_message"
	opGetChat     = "get_chat"
)

// bridgeCommand is written to the bridge. Replies carry the same ID.
type bridgeCommand struct {
	ID       string         `json:"id"`
	Op       string         `json:"op"`
	ClientID string         `json:"client_id,omitempty"`
	DataPath string         `json:"data_path,omitempty"`
	Options  *ClientOptions `json:"options,omitempty"`
	To       string         `json:"to,omitempty"`
	Body     string         `json:"body,omitempty"`
	ChatID   string         `json:"chat_id,omitempty"`
}

// bridgeMessage is read from the bridge: either a command reply (ID set) or
// a transport event (Event set).
type bridgeMessage struct {
	ID    string       `json:"id,omitempty"`
	OK    bool         `json:"ok"`
	Error string       `json:"error,omitempty"`
	Chat  *models.Chat `json:"chat,omitempty"`

	Event     models.EventType `json:"event,omitempty"`
	QR        string           `json:"qr,omitempty"`
	Message   string           `json:"message,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	From      string           `json:"from,omitempty"`
	Body      string           `json:"body,omitempty"`
	Timestamp int64            `json:"timestamp,omitempty"`
}

func (m bridgeMessage) toEvent() (models.LifecycleEvent, bool) {
	switch m.Event {
	case models.EventTypeQR:
		return models.QREvent(m.QR), true
	case models.EventTypeReady:
		return models.ReadyEvent(), true
	case models.EventTypeAuthenticated:
		return models.AuthenticatedEvent(), true
	case models.EventTypeAuthFailure:
		return models.AuthFailureEvent(m.Message), true
	case models.EventTypeDisconnected:
		return models.DisconnectedEvent(m.Reason), true
	case models.EventTypeMessage:
		return models.MessageEvent(models.InboundMessage{From: m.From, Body: m.Body, Timestamp: m.Timestamp}), true
	default:
		return models.LifecycleEvent{}, false
	}
}

type wsClientFactory struct {
	url     string
	timeout time.Duration
	dialer  *websocket.Dialer
	logger  *logger.Logger
}

// NewWSClientFactory returns a [ClientFactory] whose clients drive a chat
// transport bridge over a websocket at cfg.TransportURL. Every client opens
// its own connection on Initialize and closes it on Destroy.
func NewWSClientFactory(cfg config.Adapter, log *logger.Logger) (ClientFactory, error) {
	u, err := url.Parse(cfg.TransportURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return nil, fmt.Errorf("%w: transport url must be ws:// or wss://, got %q", ErrInvalidAddress, cfg.TransportURL)
	}

	return &wsClientFactory{
		url:     u.String(),
		timeout: cfg.TransportTimeout,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: log,
	}, nil
}

// NewClient implements [ClientFactory].
func (f *wsClientFactory) NewClient(identity models.SessionIdentity, opts ClientOptions, handler EventHandler) (ChatClient, error) {
	if handler == nil {
		return nil, errors.New("nil event handler")
	}

	return &wsChatClient{
		url:      f.url,
		timeout:  f.timeout,
		dialer:   f.dialer,
		identity: identity,
		opts:     opts,
		handler:  handler,
		logger:   f.logger,
		pending:  make(map[string]chan bridgeMessage),
		done:     make(chan struct{}),
	}, nil
}

type wsChatClient struct {
	url      string
	timeout  time.Duration
	dialer   *websocket.Dialer
	identity models.SessionIdentity
	opts     ClientOptions
	handler  EventHandler
	logger   *logger.Logger

	seq atomic.Uint64

	// writeMu serializes writes; gorilla supports one concurrent writer.
	writeMu sync.Mutex

	mu          sync.Mutex
	conn        *websocket.Conn
	pending     map[string]chan bridgeMessage
	initialized bool
	destroyed   bool
	done        chan struct{}
}

// Initialize implements [ChatClient].
func (c *wsChatClient) Initialize(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.destroyed:
		c.mu.Unlock()
		return ErrTransportClosed
	case c.conn != nil:
		c.mu.Unlock()
		return errors.New("client already initialized")
	}
	c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial transport: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		conn.Close()
		return ErrTransportClosed
	}
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)

	opts := c.opts
	if _, err = c.call(ctx, bridgeCommand{
		Op:       opInitialize,
		ClientID: c.identity.ClientID,
		DataPath: c.identity.Root,
		Options:  &opts,
	}); err != nil {
		c.shutdown()
		return fmt.Errorf("initialize: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return fmt.Errorf("initialize: %w", ErrTransportClosed)
	}
	c.initialized = true

	return nil
}

// Destroy implements [ChatClient]. The bridge is asked to release the
// session, then the connection is closed. No disconnected event is emitted.
func (c *wsChatClient) Destroy(ctx context.Context) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil
	}
	hasConn := c.conn != nil
	c.mu.Unlock()

	var err error
	if hasConn {
		if _, callErr := c.call(ctx, bridgeCommand{Op: opDestroy}); callErr != nil {
			err = fmt.Errorf("destroy: %w", callErr)
		}
	}

	c.shutdown()
	return err
}

// SendMessage implements [ChatClient].
func (c *wsChatClient) SendMessage(ctx context.Context, to, body string) error {
	if _, err := c.call(ctx, bridgeCommand{Op: opSendMessage, To: to, Body: body}); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// GetChat implements [ChatClient].
func (c *wsChatClient) GetChat(ctx context.Context, chatID string) (models.Chat, error) {
	reply, err := c.call(ctx, bridgeCommand{Op: opGetChat, ChatID: chatID})
	if err != nil {
		return models.Chat{}, fmt.Errorf("get chat: %w", err)
	}
	if reply.Chat == nil {
		return models.Chat{}, fmt.Errorf("get chat: %w: reply carries no chat", ErrCommandFailed)
	}
	return *reply.Chat, nil
}

// call writes cmd and waits for the matching reply.
func (c *wsChatClient) call(ctx context.Context, cmd bridgeCommand) (bridgeMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd.ID = strconv.FormatUint(c.seq.Add(1), 10)
	replyCh := make(chan bridgeMessage, 1)

	c.mu.Lock()
	conn := c.conn
	switch {
	case conn == nil && !c.destroyed:
		c.mu.Unlock()
		return bridgeMessage{}, ErrNotInitialized
	case conn == nil:
		c.mu.Unlock()
		return bridgeMessage{}, ErrTransportClosed
	}
	c.pending[cmd.ID] = replyCh
	done := c.done
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, cmd.ID)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteJSON(cmd)
	c.writeMu.Unlock()
	if err != nil {
		return bridgeMessage{}, fmt.Errorf("%w: %w", ErrTransportClosed, err)
	}

	select {
	case reply := <-replyCh:
		if !reply.OK {
			return reply, fmt.Errorf("%w: %s: %s", ErrCommandFailed, cmd.Op, reply.Error)
		}
		return reply, nil
	case <-done:
		return bridgeMessage{}, ErrTransportClosed
	case <-ctx.Done():
		return bridgeMessage{}, ctx.Err()
	}
}

// readLoop delivers events in arrival order on its own goroutine and routes
// command replies to their callers.
func (c *wsChatClient) readLoop(conn *websocket.Conn) {
	log := c.logger.With().Str("func", "*wsChatClient.readLoop").Str("client_id", c.identity.ClientID).Logger()

	defer func() {
		c.mu.Lock()
		emit := c.initialized && !c.destroyed
		c.destroyed = true
		c.conn = nil
		close(c.done)
		c.mu.Unlock()

		conn.Close()

		if emit {
			log.Warn().Msg("transport connection lost")
			c.handler(models.DisconnectedEvent(ReasonTransportClosed))
		}
	}()

	for {
		var msg bridgeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("read error")
			}
			return
		}

		if msg.Event != "" {
			event, ok := msg.toEvent()
			if !ok {
				log.Warn().Str("event", msg.Event.String()).Msg("unknown transport event")
				continue
			}
			c.handler(event)
			continue
		}

		c.mu.Lock()
		replyCh, ok := c.pending[msg.ID]
		c.mu.Unlock()
		if !ok {
			log.Debug().Str("id", msg.ID).Msg("reply for unknown command")
			continue
		}
		select {
		case replyCh <- msg:
		default:
			log.Debug().Str("id", msg.ID).Msg("duplicate reply dropped")
		}
	}
}

// shutdown closes the connection without emitting a disconnected event and
// waits for the read loop to exit.
func (c *wsChatClient) shutdown() {
	c.mu.Lock()
	c.destroyed = true
	conn := c.conn
	done := c.done
	c.mu.Unlock()

	if conn == nil {
		return
	}

	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	conn.Close()

	<-done
}
