package server

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cardroomd/cardroomd/pkg/poker"
)

// ErrRoomNotFound is returned for join attempts against unknown codes.
var ErrRoomNotFound = errors.New("room not found")

// Room codes avoid lookalike characters so they survive being read out
// loud.
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 5
)

// Config carries the server's table defaults. Create-room commands may
// override the blind and stack values per room.
type Config struct {
	Log     slog.Logger
	RoomLog slog.Logger

	SmallBlind    int64
	BigBlind      int64
	StartingStack int64

	RevealDelay    time.Duration
	InterHandDelay time.Duration
	BotThinkDelay  time.Duration

	// Seed makes deals reproducible: room n is created with Seed+n.
	// Zero lets every room seed itself from the clock.
	Seed int64
}

// Server owns the websocket sessions and the room registry. Rooms manage
// their own game state; the server only routes commands in and fans
// snapshots out.
type Server struct {
	log slog.Logger
	cfg Config

	upgrader websocket.Upgrader

	mu       sync.Mutex
	rooms    map[string]*poker.Room
	sessions map[string]*session
	codeRng  *rand.Rand
	roomSeq  int64
}

// New creates a Server ready to accept websocket connections.
func New(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	if cfg.RoomLog == nil {
		cfg.RoomLog = cfg.Log
	}
	return &Server{
		log:      cfg.Log,
		cfg:      cfg,
		rooms:    make(map[string]*poker.Room),
		sessions: make(map[string]*session),
		codeRng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from whatever origin hosts the
			// UI; the room code is the only admission control.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes: a single websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Close tears down every live session. Rooms fall away on their own once
// their players drop.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.close()
	}
}

// handleWS upgrades the connection and binds it to a player identity. A
// returning client may present its previous id with ?session= to pick
// its seat back up; anything else gets a fresh identity.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("websocket upgrade: %v", err)
		return
	}

	id := r.URL.Query().Get("session")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	sess := newSession(s, id, conn)
	s.mu.Lock()
	if old, ok := s.sessions[id]; ok {
		old.close()
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Infof("session %s connected from %s", id, r.RemoteAddr)
	go sess.writePump()
	go sess.readPump()
	sess.sendMsg(serverMsg{Name: msgWelcome, PlayerID: id})
}

// dropSession runs when a connection dies. If the session was not
// replaced by a newer connection for the same player, the player's room
// is told they are gone.
func (s *Server) dropSession(c *session) {
	c.close()
	s.mu.Lock()
	current := s.sessions[c.id] == c
	if current {
		delete(s.sessions, c.id)
	}
	s.mu.Unlock()
	if !current {
		return
	}
	if code := c.room(); code != "" {
		if room := s.findRoom(code); room != nil {
			room.Disconnect(c.id)
		}
	}
	s.log.Infof("session %s disconnected", c.id)
}

func (s *Server) findRoom(code string) *poker.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[code]
}

// sessionRoom resolves the room the session is currently bound to.
func (s *Server) sessionRoom(c *session) *poker.Room {
	code := c.room()
	if code == "" {
		return nil
	}
	return s.findRoom(code)
}

// handleMessage decodes and routes one inbound command.
func (s *Server) handleMessage(c *session, raw []byte) {
	var env baseCmd
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Warnf("session %s: malformed command: %v%s", c.id, err, spew.Sdump(string(raw)))
		c.sendError("decode", "malformed command")
		return
	}

	switch env.Name {
	case cmdCreateRoom:
		var cmd createRoomCmd
		if !s.decode(c, raw, env.Name, &cmd) {
			return
		}
		s.handleCreateRoom(c, cmd)

	case cmdJoinRoom:
		var cmd joinRoomCmd
		if !s.decode(c, raw, env.Name, &cmd) {
			return
		}
		s.handleJoinRoom(c, cmd)

	case cmdLeaveRoom:
		s.leaveCurrentRoom(c)

	case cmdSetBlinds:
		var cmd setBlindsCmd
		if !s.decode(c, raw, env.Name, &cmd) {
			return
		}
		if room := s.sessionRoom(c); room != nil {
			room.SetBlinds(c.id, cmd.SmallBlind, cmd.BigBlind)
		} else {
			c.sendError(env.Name, "not in a room")
		}

	case cmdStartHand:
		if room := s.sessionRoom(c); room != nil {
			room.StartHand(c.id)
		} else {
			c.sendError(env.Name, "not in a room")
		}

	case cmdAction:
		var cmd actionCmd
		if !s.decode(c, raw, env.Name, &cmd) {
			return
		}
		kind, ok := poker.ParseActionKind(cmd.Kind)
		if !ok {
			// Unknown kinds are dropped like any other illegal action.
			s.log.Debugf("session %s: unknown action kind %q", c.id, cmd.Kind)
			return
		}
		if room := s.sessionRoom(c); room != nil {
			room.Submit(c.id, kind, cmd.Amount)
		} else {
			c.sendError(env.Name, "not in a room")
		}

	case cmdAddBot:
		var cmd addBotCmd
		if !s.decode(c, raw, env.Name, &cmd) {
			return
		}
		s.handleAddBot(c, cmd)

	default:
		s.log.Debugf("session %s: unknown command %q", c.id, env.Name)
		c.sendError(env.Name, "unknown command")
	}
}

func (s *Server) decode(c *session, raw []byte, name string, dst interface{}) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warnf("session %s: unable to decode %s: %v%s", c.id, name, err, spew.Sdump(string(raw)))
		c.sendError(name, "malformed command")
		return false
	}
	return true
}

func (s *Server) handleCreateRoom(c *session, cmd createRoomCmd) {
	s.leaveCurrentRoom(c)

	s.mu.Lock()
	code := s.unusedCodeLocked()
	var seed int64
	if s.cfg.Seed != 0 {
		s.roomSeq++
		seed = s.cfg.Seed + s.roomSeq
	}
	room := poker.NewRoom(poker.RoomConfig{
		Code:           code,
		Log:            s.cfg.RoomLog,
		SmallBlind:     pickInt64(cmd.SmallBlind, s.cfg.SmallBlind),
		BigBlind:       pickInt64(cmd.BigBlind, s.cfg.BigBlind),
		StartingStack:  pickInt64(cmd.StartingStack, s.cfg.StartingStack),
		RevealDelay:    s.cfg.RevealDelay,
		InterHandDelay: s.cfg.InterHandDelay,
		BotThinkDelay:  s.cfg.BotThinkDelay,
		Seed:           seed,
		Notify:         s.fanOut,
		OnEmpty:        s.removeRoom,
	})
	s.rooms[code] = room
	s.mu.Unlock()

	c.setRoom(code)
	if err := room.AddPlayer(c.id, cleanPlayerName(cmd.PlayerName, c.id)); err != nil {
		// A freshly created room cannot refuse its first player.
		c.setRoom("")
		s.removeRoom(code)
		c.sendError(cmdCreateRoom, err.Error())
		return
	}
	s.log.Infof("session %s created room %s", c.id, code)
}

func (s *Server) handleJoinRoom(c *session, cmd joinRoomCmd) {
	s.leaveCurrentRoom(c)

	code := strings.ToUpper(strings.TrimSpace(cmd.Code))
	room := s.findRoom(code)
	if room == nil {
		c.sendError(cmdJoinRoom, ErrRoomNotFound.Error())
		return
	}
	if err := room.AddPlayer(c.id, cleanPlayerName(cmd.PlayerName, c.id)); err != nil {
		switch {
		case errors.Is(err, poker.ErrRoomFull):
			c.sendError(cmdJoinRoom, "room is full")
		case errors.Is(err, poker.ErrHandInProgress):
			c.sendError(cmdJoinRoom, "hand already in progress")
		default:
			c.sendError(cmdJoinRoom, err.Error())
		}
		return
	}
	c.setRoom(code)
	s.log.Infof("session %s joined room %s", c.id, code)
}

func (s *Server) handleAddBot(c *session, cmd addBotCmd) {
	room := s.sessionRoom(c)
	if room == nil {
		c.sendError(cmdAddBot, "not in a room")
		return
	}
	botID := "bot-" + uuid.NewString()
	name := strings.TrimSpace(cmd.BotName)
	if name == "" {
		name = "Bot " + botID[4:8]
	}
	if err := room.AddBot(c.id, botID, name); err != nil {
		c.sendError(cmdAddBot, err.Error())
	}
}

// leaveCurrentRoom detaches the session from its room, if any.
func (s *Server) leaveCurrentRoom(c *session) {
	code := c.room()
	if code == "" {
		return
	}
	c.setRoom("")
	if room := s.findRoom(code); room != nil {
		room.Disconnect(c.id)
	}
}

// fanOut delivers per-player snapshots to live sessions. It runs with
// the room lock held, so it only queues bytes and never blocks. Players
// without a session right now, bots included, are skipped.
func (s *Server) fanOut(views map[string]*poker.RoomSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for playerID, snap := range views {
		sess := s.sessions[playerID]
		if sess == nil {
			continue
		}
		raw, err := json.Marshal(serverMsg{Name: msgRoom, Room: snap})
		if err != nil {
			s.log.Errorf("marshal snapshot for %s: %v", playerID, err)
			continue
		}
		sess.trySend(raw)
	}
}

// removeRoom drops a room from the registry and unbinds any sessions
// still pointing at it.
func (s *Server) removeRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; !ok {
		return
	}
	delete(s.rooms, code)
	for _, sess := range s.sessions {
		if sess.room() == code {
			sess.setRoom("")
		}
	}
	s.log.Infof("room %s closed", code)
}

// unusedCodeLocked picks a free room code. Callers hold s.mu.
func (s *Server) unusedCodeLocked() string {
	for {
		buf := make([]byte, roomCodeLength)
		for i := range buf {
			buf[i] = roomCodeAlphabet[s.codeRng.Intn(len(roomCodeAlphabet))]
		}
		code := string(buf)
		if _, taken := s.rooms[code]; !taken {
			return code
		}
	}
}

func cleanPlayerName(name, sessionID string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "guest-" + sessionID[:4]
	}
	if len(name) > 24 {
		name = name[:24]
	}
	return name
}

func pickInt64(override, fallback int64) int64 {
	if override > 0 {
		return override
	}
	return fallback
}
