package relay

import (
	"time"

	pkglog "SharedBoard/internal/log"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection to the relay.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newClient(id string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.cfg.SendBuffer),
	}
}

// readPump hands every text frame to handle until the connection fails,
// then calls gone and unregisters the client.
func (c *Client) readPump(handle func(*Client, []byte), gone func(*Client)) {
	cfg := c.hub.cfg
	defer func() {
		gone(c)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		return nil
	})

	for {
		typ, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.Error().Err(err).Str(pkglog.FieldClientID, c.ID).Msg("websocket error")
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		handle(c, message)
	}
}

// writePump drains the send queue onto the connection and keeps it alive
// with pings. It exits when the hub closes the queue.
func (c *Client) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
