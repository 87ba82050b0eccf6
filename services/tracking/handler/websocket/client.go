package websocket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/piresc/fleetcast/internal/pkg/constants"
	"github.com/piresc/fleetcast/internal/pkg/logger"
	"github.com/piresc/fleetcast/internal/pkg/models"
	"github.com/piresc/fleetcast/services/tracking"
	"github.com/piresc/fleetcast/services/tracking/validator"
)

// State of a client connection
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	replyBuffer            = 4
	defaultWriteTimeout    = 10 * time.Second
	defaultPongWait        = 60 * time.Second
	defaultMaxMessageBytes = 4096
)

// Client is one location socket. It is both a producer and a subscriber.
type Client struct {
	id     string
	conn   *websocket.Conn
	cfg    models.TrackingConfig
	state  atomic.Int32
	reason atomic.Value

	initial []byte
	send    chan []byte
	replies chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient wraps conn in the Connecting state
func NewClient(id string, conn *websocket.Conn, cfg models.TrackingConfig) *Client {
	size := cfg.SendBuffer
	if size < 1 {
		size = 1
	}
	return &Client{
		id:      id,
		conn:    conn,
		cfg:     withDefaults(cfg),
		send:    make(chan []byte, size),
		replies: make(chan []byte, replyBuffer),
		done:    make(chan struct{}),
	}
}

func withDefaults(cfg models.TrackingConfig) models.TrackingConfig {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaultPongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = defaultMaxMessageBytes
	}
	return cfg
}

// ID returns the connection id
func (c *Client) ID() string { return c.id }

// State returns the current connection state
func (c *Client) State() State { return State(c.state.Load()) }

// Open stores the opening frame and moves the client to Open
func (c *Client) Open(initial []byte) bool {
	if !c.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen)) {
		return false
	}
	c.initial = initial
	return true
}

// Send enqueues a snapshot frame without blocking.
// Under the coalesce policy a full queue drops its oldest frame.
func (c *Client) Send(frame []byte) bool {
	if c.State() != StateOpen {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
	}

	if c.cfg.SlowConsumerPolicy == models.PolicyDisconnect {
		c.setReason(constants.CloseReasonSlowConsumer)
		return false
	}

	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		c.setReason(constants.CloseReasonSlowConsumer)
		return false
	}
}

// Reply enqueues a frame meant for this client only. It is dropped if the reply queue is full.
func (c *Client) Reply(frame []byte) {
	if c.State() != StateOpen {
		return
	}
	select {
	case c.replies <- frame:
	default:
		logger.Debug("Reply queue full, dropping frame", logger.String("conn_id", c.id))
	}
}

// Close moves the client to Closing and stops its write pump. It is safe to call repeatedly.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosing))
		close(c.done)
	})
}

// Done is closed once the client starts closing
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) markClosed() {
	c.state.Store(int32(StateClosed))
}

func (c *Client) setReason(reason string) {
	c.reason.CompareAndSwap(nil, reason)
}

func (c *Client) closeReason() string {
	if r, ok := c.reason.Load().(string); ok {
		return r
	}
	return constants.CloseReasonShutdown
}

// readLoop hands every inbound text frame to the use case, in arrival order
func (c *Client) readLoop(ctx context.Context, uc tracking.TrackingUC) {
	c.conn.SetReadLimit(c.cfg.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				c.setReason(constants.CloseReasonClientGone)
			} else {
				c.setReason(constants.CloseReasonReadError)
				if c.State() == StateOpen {
					logger.Warn("WebSocket read failed",
						logger.String("conn_id", c.id),
						logger.Err(err))
				}
			}
			return
		}
		if c.State() != StateOpen {
			return
		}
		if msgType != websocket.TextMessage {
			logger.Debug("Ignoring non-text frame", logger.String("conn_id", c.id))
			continue
		}

		reply, err := uc.Ingest(ctx, msg)
		if err != nil {
			c.logIngestError(err)
		}
		if reply != nil {
			c.Reply(reply)
		}
	}
}

func (c *Client) logIngestError(err error) {
	switch {
	case errors.Is(err, validator.ErrMalformedPayload):
		logger.Warn("Rejected malformed location payload",
			logger.String("conn_id", c.id),
			logger.Err(err))
	case errors.Is(err, validator.ErrValidation):
		logger.Warn("Rejected invalid location update",
			logger.String("conn_id", c.id),
			logger.Err(err))
	default:
		logger.Error("Failed to apply location update",
			logger.String("conn_id", c.id),
			logger.Err(err))
	}
}

// writePump is the only writer of conn. The opening frame always goes first.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	if c.initial != nil {
		if err := c.write(websocket.TextMessage, c.initial); err != nil {
			c.failWrite(err)
			return
		}
		c.initial = nil
	}

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteTimeout))
			return
		case frame := <-c.replies:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				c.failWrite(err)
				return
			}
		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				c.failWrite(err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.failWrite(err)
				return
			}
		}
	}
}

func (c *Client) write(msgType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteMessage(msgType, data)
}

func (c *Client) failWrite(err error) {
	c.setReason(constants.CloseReasonWriteError)
	logger.Warn("WebSocket write failed",
		logger.String("conn_id", c.id),
		logger.Err(err))
	c.Close()
}
