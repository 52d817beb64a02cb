package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// client is one websocket connection. playerID is empty until the
// connection sends player_join; gameplay state is keyed by player id, so
// the client itself is disposable.
type client struct {
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte

	playerID string

	// mu guards closed. Frames arrive from other players' read pumps
	// while the registry loop may be closing this client, so enqueue and
	// close must agree on who gets there first.
	mu     sync.Mutex
	closed bool
}

func newClient(g *Gateway, conn *websocket.Conn) *client {
	return &client{
		gateway: g,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}
}

// enqueue hands a frame to the write pump. Frames for a closed client are
// discarded; a full buffer drops the frame and the periodic snapshot
// repairs any gap.
func (c *client) enqueue(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.gateway.logger.Warn("send buffer full, dropping frame",
			zap.String("player_id", c.playerID),
		)
	}
}

// closeSend shuts the outbound channel exactly once.
func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// detach hands the connection back to the registry. Once the gateway has
// shut down there is no registry loop left to receive it, so give up
// instead of blocking forever.
func (c *client) detach() {
	select {
	case c.gateway.unregister <- c:
	case <-c.gateway.done:
	}
}

func (c *client) readPump() {
	defer func() {
		c.detach()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.gateway.logger.Warn("websocket read error",
					zap.String("player_id", c.playerID),
					zap.Error(err),
				)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.gateway.logger.Warn("malformed frame",
				zap.String("player_id", c.playerID),
				zap.Error(err),
			)
			continue
		}

		c.gateway.handleMessage(c, msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
