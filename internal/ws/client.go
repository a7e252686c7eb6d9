package ws

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/twobackfromtheend/rlbot-overlay-script/internal/ingest"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4 * 1024

	// Send buffer size per client. At 30 Hz this is a few seconds of packets.
	sendBufferSize = 128
)

func newUpgrader(checkOrigin func(r *http.Request) bool) *websocket.Upgrader {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin,
		// Subprotocols stays nil so Upgrade echoes the header built by
		// negotiateProtocol.
	}
}

// Client is one connected viewer.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	connID   string
	logger   *zap.Logger
	protocol Protocol
}

// HandleWS upgrades a viewer connection and starts its pumps.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	protocol, responseHeader := negotiateProtocol(websocket.Subprotocols(r))

	h.logger.Debug("websocket subprotocol negotiated",
		zap.String("protocol", string(protocol)),
		zap.Strings("requested", websocket.Subprotocols(r)),
	)

	// Upgrade writes the HTTP error response itself.
	conn, err := h.upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("remoteAddr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		connID:   uuid.New().String(),
		logger:   h.logger,
		protocol: protocol,
	}

	if !h.add(client) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump reads messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error",
					zap.String("connID", c.connID),
					zap.Error(err),
				)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	// Determine message type based on protocol
	msgType := websocket.BinaryMessage
	if c.protocol == ProtocolJSON {
		msgType = websocket.TextMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, send close message
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msgType, message); err != nil {
				c.logger.Debug("websocket write error",
					zap.String("connID", c.connID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes a message sent by the viewer.
func (c *Client) handleMessage(data []byte) {
	msg, err := parseViewerMessage(data)
	if err != nil {
		c.logger.Debug("failed to parse viewer message",
			zap.String("connID", c.connID),
			zap.Error(err),
		)
		return
	}

	switch msg.(type) {
	case *pingRequest:
		c.hub.sendTo(c, ingest.Message{Event: EventPong})
	}
}
