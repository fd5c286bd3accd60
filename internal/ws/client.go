package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rubyruby/relay/internal/relay"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxFrameSize   = 1 << 20 // 1MB
	sendBufferSize = 256
)

// Client is one live connection: the websocket plus the per-connection
// goroutines around it. It implements relay.Endpoint, so the registry and
// router only ever see the interface.
//
// gorilla/websocket allows one concurrent writer, so every outbound frame
// goes through the send channel and is written by the single writePump
// goroutine. Send therefore only enqueues and never touches the socket.
type Client struct {
	username string
	conn     *websocket.Conn
	send     chan []byte
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(username string, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		username: username,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		logger:   logger,
	}
}

// Send enqueues a delivery frame for the write pump. It reports a closed
// endpoint or a saturated buffer as an error; in both cases the frame is
// dropped for this recipient only.
func (c *Client) Send(frame relay.Outbound) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return relay.ErrEndpointClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return relay.ErrSendBufferFull
	}
}

// Close tears the transport down. Safe to call multiple times and from
// any goroutine; the pumps exit once the underlying conn errors out.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	return c.conn.Close()
}

// readPump consumes inbound frames and runs the handler for each one,
// strictly sequentially — this is what preserves per-session message
// order. It returns on any terminal transport state.
func (c *Client) readPump(handle func(raw []byte)) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("websocket read error",
					zap.String("username", c.username),
					zap.Error(err),
				)
			}
			return
		}
		handle(raw)
	}
}

// writePump is the only goroutine that writes to the socket. It drains
// the send channel and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
