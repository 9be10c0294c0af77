package chat

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mbeoliero/kit/log"

	"github.com/bzero-app/bzero/pkg/errcode"
	"github.com/bzero-app/bzero/pkg/idgen"
	"github.com/bzero-app/bzero/pkg/token"
)

// ConnState represents the lifecycle state of a conversation connection
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateError        ConnState = "error"
)

// ConnHandler receives connection lifecycle changes and decoded inbound
// events. Calls arrive from the connection's own goroutines.
type ConnHandler interface {
	OnStateChange(state ConnState, connErr *errcode.Error)
	OnEvent(ev Event)
}

// Connector is the transport surface a session depends on. The production
// implementation is *Conn over gorilla/websocket; tests substitute a fake.
type Connector interface {
	Connect(ctx context.Context) error
	Send(cmd Command) error
	Connected() bool
	Close() error
}

// ConnConfig holds transport tuning for one connection
type ConnConfig struct {
	Path           string
	HandshakeWait  time.Duration
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	WriteChanSize  int
}

func (c *ConnConfig) applyDefaults() {
	if c.Path == "" {
		c.Path = "/ws"
	}
	if c.HandshakeWait == 0 {
		c.HandshakeWait = 10 * time.Second
	}
	if c.WriteWait == 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.PongWait == 0 {
		c.PongWait = 30 * time.Second
	}
	if c.PingPeriod == 0 {
		c.PingPeriod = (c.PongWait * 9) / 10
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 51200
	}
	if c.WriteChanSize == 0 {
		c.WriteChanSize = 256
	}
}

// Transport errors
var (
	errConnClosed       = errcode.New("CONN_CLOSED", "connection closed")
	errWriteChannelFull = errcode.New("WRITE_CHANNEL_FULL", "write channel full")
)

// Conn manages exactly one live websocket connection to a conversation
// channel: it dials on demand (never on construction), authenticates via the
// handshake query, emits the join command once connected, and reports every
// state change through its handler instead of returning transport errors to
// callers.
type Conn struct {
	baseURL        string
	path           string
	conversationID string
	authToken      string
	joinCmd        Command
	handler        ConnHandler
	cfg            ConnConfig

	mu        sync.Mutex
	ws        *websocket.Conn
	wsStop    chan struct{}
	writeChan chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	connected atomic.Bool
}

// NewConn constructs an unconnected Conn. It fails fast when the auth token
// is missing or already expired: that is a caller bug, not a runtime
// condition, and is the only error surface that precedes the handler.
func NewConn(baseURL string, conversationID, authToken string, joinCmd Command, handler ConnHandler, cfg ConnConfig) (*Conn, error) {
	if err := token.Check(authToken); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &Conn{
		baseURL:        baseURL,
		path:           cfg.Path,
		conversationID: conversationID,
		authToken:      authToken,
		joinCmd:        joinCmd,
		handler:        handler,
		cfg:            cfg,
		writeChan:      make(chan []byte, cfg.WriteChanSize),
		closeChan:      make(chan struct{}),
	}, nil
}

// Connect dials the server. Transport failures are reported through the
// handler as an error state and do not propagate; the returned error covers
// only local misuse (connecting a closed Conn).
func (c *Conn) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return errConnClosed
	}

	c.handler.OnStateChange(StateConnecting, nil)

	ws, err := c.dial(ctx)
	if err != nil {
		log.CtxError(ctx, "socket connect error: conversation_id=%s, error=%v", c.conversationID, err)
		c.handler.OnStateChange(StateError, errcode.ErrConnection.WithMessage(normalizeDialError(err)))
		return nil
	}

	c.attach(ws)

	// Connected: clear prior error and identify the conversation.
	c.handler.OnStateChange(StateConnected, nil)
	if err := c.Send(c.joinCmd); err != nil {
		log.CtxWarn(ctx, "join emit failed: conversation_id=%s, error=%v", c.conversationID, err)
	}
	return nil
}

func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = c.path

	q := u.Query()
	q.Set(QueryToken, c.authToken)
	q.Set(QueryRoomID, c.conversationID)
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeWait}
	ws, _, err := dialer.DialContext(ctx, u.String(), nil)
	return ws, err
}

func (c *Conn) attach(ws *websocket.Conn) {
	c.mu.Lock()
	// Retire the previous writer so it stops competing for writeChan after
	// a redial swapped the socket out underneath it.
	if c.wsStop != nil {
		close(c.wsStop)
	}
	stop := make(chan struct{})
	c.wsStop = stop
	c.ws = ws
	c.mu.Unlock()

	ws.SetReadLimit(c.cfg.MaxMessageSize)
	ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	c.connected.Store(true)
	go c.writeLoop(ws, stop)
	go c.readLoop(ws)
}

// writeLoop is the single writer for the connection, including pings
func (c *Conn) writeLoop(ws *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.writeChan:
			ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("write message error: %v", err)
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("ping error: %v", err)
				return
			}

		case <-stop:
			return

		case <-c.closeChan:
			return
		}
	}
}

// readLoop reads frames until the connection drops, dispatching decoded
// events to the handler. On loss it classifies the drop: a server-sent close
// frame triggers an automatic redial, anything else is surfaced as
// disconnected for the user to act on.
func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			c.connected.Store(false)
			if c.closed.Load() {
				return
			}
			log.Warn("socket disconnected: conversation_id=%s, error=%v", c.conversationID, err)

			if serverInitiated(err) {
				c.handler.OnStateChange(StateDisconnected, nil)
				c.redial()
				return
			}

			c.handler.OnStateChange(StateDisconnected, nil)
			return
		}

		if c.closed.Load() {
			return
		}

		ev, err := DecodeEvent(data)
		if err != nil {
			log.Warn("drop undecodable frame: conversation_id=%s, error=%v", c.conversationID, err)
			continue
		}
		c.handler.OnEvent(ev)
	}
}

// redial performs the transport's own reconnect after a server-initiated
// close: one fresh dial on the same Conn. A user-triggered reconnect instead
// rebuilds the whole Conn through the session.
func (c *Conn) redial() {
	ctx := context.Background()
	c.handler.OnStateChange(StateConnecting, nil)

	ws, err := c.dial(ctx)
	if err != nil {
		log.CtxError(ctx, "redial failed: conversation_id=%s, error=%v", c.conversationID, err)
		c.handler.OnStateChange(StateError, errcode.ErrConnection.WithMessage(normalizeDialError(err)))
		return
	}
	if c.closed.Load() {
		ws.Close()
		return
	}

	c.attach(ws)
	c.handler.OnStateChange(StateConnected, nil)
	if err := c.Send(c.joinCmd); err != nil {
		log.CtxWarn(ctx, "join emit failed after redial: conversation_id=%s, error=%v", c.conversationID, err)
	}
}

// Send queues a command for transmission
func (c *Conn) Send(cmd Command) error {
	if c.closed.Load() {
		return errConnClosed
	}

	opID, err := idgen.NextID()
	if err != nil {
		opID = ""
	}
	data, err := cmd.Encode(opID)
	if err != nil {
		return err
	}

	select {
	case c.writeChan <- data:
		return nil
	default:
		// Channel full, connection is a slow consumer
		return errWriteChannelFull
	}
}

// Connected reports whether the transport is currently live
func (c *Conn) Connected() bool {
	return c.connected.Load() && !c.closed.Load()
}

// Close tears the connection down: idempotent, safe when never connected,
// and silent; no state change is reported, since teardown accompanies
// session rebuild or unmount and late callbacks must not touch state.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.connected.Store(false)
		close(c.closeChan)

		c.mu.Lock()
		if c.ws != nil {
			c.ws.Close()
			c.ws = nil
		}
		c.mu.Unlock()
	})
	return nil
}

// serverInitiated reports whether the peer closed the connection on purpose,
// as opposed to a network-level drop.
func serverInitiated(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseServiceRestart,
	)
}

func normalizeDialError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, websocket.ErrBadHandshake) {
		return "server rejected the connection handshake"
	}
	return err.Error()
}
