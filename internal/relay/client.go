package relay

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a control message to the source.
	writeWait = 5 * time.Second

	// Maximum message size accepted from the source.
	maxMessageSize = 1024 * 1024 // 1MB
)

// Client connects to the upstream telemetry source and feeds its messages
// into a Relay. It reconnects until its context is cancelled.
type Client struct {
	url       string
	relay     *Relay
	dialer    *websocket.Dialer
	limiter   *rate.Limiter
	ready     ReadyOptions
	connected atomic.Bool
	received  atomic.Uint64
	logger    *zap.Logger
}

// NewClient creates a relay client. Connection attempts are limited to one
// per reconnectInterval.
func NewClient(url string, relay *Relay, reconnectInterval, handshakeTimeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		url:   url,
		relay: relay,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  1024,
		},
		limiter: rate.NewLimiter(rate.Every(reconnectInterval), 1),
		ready:   DefaultReadyOptions,
		logger:  logger,
	}
}

// Connected reports whether the client currently holds an upstream connection.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Received returns the number of upstream messages read so far.
func (c *Client) Received() uint64 {
	return c.received.Load()
}

// Run connects and consumes messages. Call in a goroutine.
// Returns when context is cancelled.
func (c *Client) Run(ctx context.Context) {
	c.logger.Info("relay client started", zap.String("url", c.url))

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			c.logger.Info("relay client stopping")
			return
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("relay client stopping")
				return
			}
			c.logger.Warn("relay connect failed",
				zap.String("url", c.url),
				zap.Error(err),
			)
			continue
		}

		c.logger.Info("relay connected", zap.String("url", c.url))
		c.connected.Store(true)
		c.consume(ctx, conn)
		c.connected.Store(false)

		if ctx.Err() != nil {
			c.logger.Info("relay client stopping")
			return
		}
		c.logger.Warn("relay connection lost, reconnecting", zap.String("url", c.url))
	}
}

// consume reads from conn until it fails or ctx is cancelled.
func (c *Client) consume(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	defer conn.Close()

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			conn.Close()
		case <-done:
		}
	}()

	ready, err := buildReadyMessage(c.ready)
	if err != nil {
		c.logger.Error("failed to build ready message", zap.Error(err))
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, ready); err != nil {
		c.logger.Warn("failed to send ready message", zap.Error(err))
		return
	}

	conn.SetReadLimit(maxMessageSize)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("relay read error", zap.Error(err))
			}
			return
		}
		c.received.Add(1)
		c.handleMessage(message)
	}
}

// handleMessage decodes one upstream message and dispatches it.
func (c *Client) handleMessage(data []byte) {
	msg, err := parseMessage(data)
	if err != nil {
		c.logger.Warn("failed to parse upstream message", zap.Error(err))
		return
	}

	switch m := msg.(type) {
	case *Frame:
		c.relay.DispatchFrame(m)

	case SpectateEvent:
		c.relay.DispatchSpectate(m)

	case InputChangeEvent:
		if err := c.relay.DispatchPlayerInputChange(m); err != nil {
			// Nothing should be wired to input changes; reaching this is a defect.
			c.logger.DPanic("player input change handler failed",
				zap.Int("playerIndex", m.PlayerIndex),
				zap.Error(err),
			)
		}
	}
}
