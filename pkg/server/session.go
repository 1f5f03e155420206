package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead; pings go out at pingPeriod to keep it alive.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendBuffer     = 64
)

// session is one websocket connection and the player identity bound to
// it. Outbound traffic goes through the buffered send channel so that
// room callbacks never block on a slow client; snapshots are full state,
// so dropping one under pressure loses nothing.
type session struct {
	id   string
	srv  *Server
	conn *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	roomCode string
}

func newSession(srv *Server, id string, conn *websocket.Conn) *session {
	return &session{
		id:   id,
		srv:  srv,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *session) room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

func (c *session) setRoom(code string) {
	c.mu.Lock()
	c.roomCode = code
	c.mu.Unlock()
}

// trySend queues msg without blocking. Full buffers drop the message.
func (c *session) trySend(msg []byte) {
	select {
	case c.send <- msg:
	default:
		c.srv.log.Warnf("session %s: send buffer full, dropping message", c.id)
	}
}

func (c *session) sendMsg(msg serverMsg) {
	raw, err := json.Marshal(msg)
	if err != nil {
		c.srv.log.Errorf("session %s: marshal %s: %v", c.id, msg.Name, err)
		return
	}
	c.trySend(raw)
}

func (c *session) sendError(context, message string) {
	c.sendMsg(serverMsg{Name: msgError, Context: context, Message: message})
}

// close releases the session exactly once.
func (c *session) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump owns the read side of the connection. It exits on any read
// error, tearing the session down and telling the room the player is
// gone.
func (c *session) readPump() {
	defer c.srv.dropSession(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.srv.log.Debugf("session %s: read: %v", c.id, err)
			}
			return
		}
		c.srv.handleMessage(c, raw)
	}
}

// writePump owns the write side: queued messages, keepalive pings, and
// the close handshake.
func (c *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
