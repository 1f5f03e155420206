// Package client implements a websocket client for a cardroomd server.
// It handles the connection handshake, keeps the player identity across
// reconnects, and exposes typed helpers for every room command.
package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"

	"github.com/cardroomd/cardroomd/pkg/poker"
)

const (
	writeWait        = 10 * time.Second
	handshakeTimeout = 10 * time.Second
	messageBuffer    = 64
)

// Message is the envelope pushed by the server. Exactly one of Room or
// Message is populated depending on Name.
type Message struct {
	Name     string              `json:"name"`
	PlayerID string              `json:"playerID,omitempty"`
	Room     *poker.RoomSnapshot `json:"room,omitempty"`
	Context  string              `json:"context,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// Message names pushed by the server.
const (
	MsgWelcome = "welcome"
	MsgRoom    = "room"
	MsgError   = "error"
)

// command is the single outbound shape. The server decodes only the
// fields relevant to each command name, so unused fields are omitted.
type command struct {
	Name          string `json:"name"`
	PlayerName    string `json:"playerName,omitempty"`
	Code          string `json:"code,omitempty"`
	SmallBlind    int64  `json:"smallBlind,omitempty"`
	BigBlind      int64  `json:"bigBlind,omitempty"`
	StartingStack int64  `json:"startingStack,omitempty"`
	Kind          string `json:"kind,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	BotName       string `json:"botName,omitempty"`
}

// Client is a connected cardroomd player. Messages carries every push
// from the server until the connection drops, at which point it is
// closed. Send methods are safe for concurrent use.
type Client struct {
	log      slog.Logger
	conn     *websocket.Conn
	writeMtx sync.Mutex

	// PlayerID is assigned by the server during the handshake and is
	// stable across reconnects when the same session id is dialed.
	PlayerID string

	// Messages receives room snapshots and error notices.
	Messages chan Message
}

// Dial connects to a cardroomd server and completes the welcome
// handshake. serverURL is a ws:// or wss:// URL; sessionID may be a
// previously assigned player id to resume that identity, or empty for
// a fresh one.
func Dial(ctx context.Context, serverURL, sessionID string, log slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Disabled
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	if sessionID != "" {
		q := u.Query()
		q.Set("session", sessionID)
		u.RawQuery = q.Encode()
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}

	c := &Client{
		log:      log,
		conn:     conn,
		Messages: make(chan Message, messageBuffer),
	}

	// The server greets every connection with a welcome message that
	// carries the player id. Read it synchronously so callers have an
	// identity before issuing commands.
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	} else {
		conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	}
	var welcome Message
	if err := conn.ReadJSON(&welcome); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read welcome: %w", err)
	}
	if welcome.Name != MsgWelcome || welcome.PlayerID == "" {
		conn.Close()
		return nil, fmt.Errorf("unexpected handshake message %q", welcome.Name)
	}
	conn.SetReadDeadline(time.Time{})
	c.PlayerID = welcome.PlayerID
	log.Debugf("Connected to %s as %s", u.Host, c.PlayerID)

	go c.readLoop()
	return c, nil
}

// readLoop delivers server pushes until the connection fails, then
// closes Messages so consumers observe the disconnect.
func (c *Client) readLoop() {
	defer close(c.Messages)
	for {
		var m Message
		if err := c.conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warnf("Connection lost: %v", err)
			}
			return
		}
		c.Messages <- m
	}
}

func (c *Client) send(cmd command) error {
	c.writeMtx.Lock()
	defer c.writeMtx.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Name, err)
	}
	return nil
}

// CreateRoom opens a new room and seats the caller as host. Zero blind
// or stack values fall back to the server defaults.
func (c *Client) CreateRoom(playerName string, smallBlind, bigBlind, stack int64) error {
	return c.send(command{
		Name:          "createRoom",
		PlayerName:    playerName,
		SmallBlind:    smallBlind,
		BigBlind:      bigBlind,
		StartingStack: stack,
	})
}

// JoinRoom seats the caller in an existing room by its code.
func (c *Client) JoinRoom(code, playerName string) error {
	return c.send(command{Name: "joinRoom", Code: code, PlayerName: playerName})
}

// LeaveRoom abandons the current room.
func (c *Client) LeaveRoom() error {
	return c.send(command{Name: "leaveRoom"})
}

// SetBlinds adjusts the blind schedule. Host only, between hands.
func (c *Client) SetBlinds(smallBlind, bigBlind int64) error {
	return c.send(command{Name: "setBlinds", SmallBlind: smallBlind, BigBlind: bigBlind})
}

// StartHand begins the next hand. Host only.
func (c *Client) StartHand() error {
	return c.send(command{Name: "startHand"})
}

// Action submits a betting action. Amount is the total commitment for
// this street and is only consulted for bets and raises.
func (c *Client) Action(kind string, amount int64) error {
	return c.send(command{Name: "action", Kind: kind, Amount: amount})
}

// AddBot seats a server-side bot. Host only, lobby only.
func (c *Client) AddBot(name string) error {
	return c.send(command{Name: "addBot", BotName: name})
}

// Close tears down the connection. The read loop closes Messages
// shortly after.
func (c *Client) Close() error {
	c.writeMtx.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMtx.Unlock()
	return c.conn.Close()
}
