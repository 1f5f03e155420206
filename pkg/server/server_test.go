package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/cardroomd/cardroomd/pkg/poker"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := New(Config{
		Seed:           99,
		RevealDelay:    time.Hour,
		InterHandDelay: time.Hour,
		BotThinkDelay:  time.Hour,
	})
	t.Cleanup(s.Close)
	return s
}

// fakeSession registers a session with no socket behind it; outbound
// messages pile up in the send buffer where tests can read them.
func fakeSession(s *Server, id string) *session {
	sess := newSession(s, id, nil)
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

func command(t *testing.T, fields map[string]interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	return raw
}

func drainMsgs(t *testing.T, sess *session) []serverMsg {
	t.Helper()
	var out []serverMsg
	for {
		select {
		case raw := <-sess.send:
			var m serverMsg
			require.NoError(t, json.Unmarshal(raw, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func lastRoomView(t *testing.T, sess *session) *poker.RoomSnapshot {
	t.Helper()
	var last *poker.RoomSnapshot
	for _, m := range drainMsgs(t, sess) {
		if m.Name == msgRoom {
			last = m.Room
		}
	}
	require.NotNil(t, last, "expected a room push for %s", sess.id)
	return last
}

func TestCreateJoinAndPlayThroughCommands(t *testing.T) {
	s := newTestServer(t)
	alice := fakeSession(s, uuid.NewString())
	bob := fakeSession(s, uuid.NewString())

	s.handleMessage(alice, command(t, map[string]interface{}{
		"name": "createRoom", "playerName": "alice",
	}))
	view := lastRoomView(t, alice)
	require.Len(t, view.Code, roomCodeLength)
	require.Equal(t, poker.StateLobby, view.State)
	require.True(t, view.Players[0].IsHost)

	s.handleMessage(bob, command(t, map[string]interface{}{
		"name": "joinRoom", "code": view.Code, "playerName": "bob",
	}))
	require.Len(t, lastRoomView(t, bob).Players, 2)

	s.handleMessage(alice, command(t, map[string]interface{}{"name": "startHand"}))
	view = lastRoomView(t, alice)
	require.Equal(t, poker.StateHand, view.State)
	require.Equal(t, poker.StreetPreflop, view.Stage)
	require.NotEmpty(t, view.Actions, "dealer opens heads up")

	// Dealer calls, big blind checks: the flop should come down.
	s.handleMessage(alice, command(t, map[string]interface{}{
		"name": "action", "kind": "call",
	}))
	s.handleMessage(bob, command(t, map[string]interface{}{
		"name": "action", "kind": "check",
	}))
	view = lastRoomView(t, bob)
	require.Equal(t, poker.StreetFlop, view.Stage)
	require.Equal(t, int64(40), view.Pot)
	require.Len(t, view.Community, 3)
}

func TestJoinErrorsSurfacedToCaller(t *testing.T) {
	s := newTestServer(t)
	alice := fakeSession(s, uuid.NewString())

	s.handleMessage(alice, command(t, map[string]interface{}{
		"name": "joinRoom", "code": "XXXXX", "playerName": "alice",
	}))
	msgs := drainMsgs(t, alice)
	require.Len(t, msgs, 1)
	require.Equal(t, msgError, msgs[0].Name)
	require.Equal(t, cmdJoinRoom, msgs[0].Context)
	require.Equal(t, "room not found", msgs[0].Message)

	// Fill a room to the last seat and try once more.
	s.handleMessage(alice, command(t, map[string]interface{}{
		"name": "createRoom", "playerName": "alice",
	}))
	code := lastRoomView(t, alice).Code
	for i := 0; i < poker.MaxSeats-1; i++ {
		sess := fakeSession(s, uuid.NewString())
		s.handleMessage(sess, command(t, map[string]interface{}{
			"name": "joinRoom", "code": code, "playerName": fmt.Sprintf("p%d", i),
		}))
	}
	late := fakeSession(s, uuid.NewString())
	s.handleMessage(late, command(t, map[string]interface{}{
		"name": "joinRoom", "code": code, "playerName": "late",
	}))
	msgs = drainMsgs(t, late)
	require.Len(t, msgs, 1)
	require.Equal(t, "room is full", msgs[0].Message)
}

func TestJoinDuringHandRejected(t *testing.T) {
	s := newTestServer(t)
	alice := fakeSession(s, uuid.NewString())
	bob := fakeSession(s, uuid.NewString())

	s.handleMessage(alice, command(t, map[string]interface{}{
		"name": "createRoom", "playerName": "alice",
	}))
	code := lastRoomView(t, alice).Code
	s.handleMessage(bob, command(t, map[string]interface{}{
		"name": "joinRoom", "code": code, "playerName": "bob",
	}))
	s.handleMessage(alice, command(t, map[string]interface{}{"name": "startHand"}))

	late := fakeSession(s, uuid.NewString())
	s.handleMessage(late, command(t, map[string]interface{}{
		"name": "joinRoom", "code": code, "playerName": "late",
	}))
	msgs := drainMsgs(t, late)
	require.Len(t, msgs, 1)
	require.Equal(t, "hand already in progress", msgs[0].Message)
}

func TestMalformedAndUnknownCommands(t *testing.T) {
	s := newTestServer(t)
	sess := fakeSession(s, uuid.NewString())

	s.handleMessage(sess, []byte("{not json"))
	msgs := drainMsgs(t, sess)
	require.Len(t, msgs, 1)
	require.Equal(t, msgError, msgs[0].Name)

	s.handleMessage(sess, command(t, map[string]interface{}{"name": "teleport"}))
	msgs = drainMsgs(t, sess)
	require.Len(t, msgs, 1)
	require.Equal(t, "unknown command", msgs[0].Message)
}

func TestUnknownActionKindSilentlyDropped(t *testing.T) {
	s := newTestServer(t)
	alice := fakeSession(s, uuid.NewString())
	bob := fakeSession(s, uuid.NewString())

	s.handleMessage(alice, command(t, map[string]interface{}{
		"name": "createRoom", "playerName": "alice",
	}))
	code := lastRoomView(t, alice).Code
	s.handleMessage(bob, command(t, map[string]interface{}{
		"name": "joinRoom", "code": code, "playerName": "bob",
	}))
	s.handleMessage(alice, command(t, map[string]interface{}{"name": "startHand"}))
	drainMsgs(t, alice)

	s.handleMessage(alice, command(t, map[string]interface{}{
		"name": "action", "kind": "slowroll", "amount": 50,
	}))
	// No error reply and no state change: the room stays silent.
	require.Empty(t, drainMsgs(t, alice))
}

func TestLeaveInLobbyReclaimsRoom(t *testing.T) {
	s := newTestServer(t)
	alice := fakeSession(s, uuid.NewString())

	s.handleMessage(alice, command(t, map[string]interface{}{
		"name": "createRoom", "playerName": "alice",
	}))
	code := lastRoomView(t, alice).Code
	require.NotNil(t, s.findRoom(code))

	s.handleMessage(alice, command(t, map[string]interface{}{"name": "leaveRoom"}))
	require.Nil(t, s.findRoom(code))
	require.Empty(t, alice.room())
}

func TestGameCommandsRequireRoom(t *testing.T) {
	s := newTestServer(t)
	sess := fakeSession(s, uuid.NewString())
	s.handleMessage(sess, command(t, map[string]interface{}{"name": "startHand"}))
	msgs := drainMsgs(t, sess)
	require.Len(t, msgs, 1)
	require.Equal(t, "not in a room", msgs[0].Message)
}

func TestRoomCodesAvoidCollisions(t *testing.T) {
	s := newTestServer(t)
	s.mu.Lock()
	s.codeRng = rand.New(rand.NewSource(1))
	first := s.unusedCodeLocked()
	s.rooms[first] = &poker.Room{}
	s.codeRng = rand.New(rand.NewSource(1))
	second := s.unusedCodeLocked()
	s.mu.Unlock()

	require.Len(t, first, roomCodeLength)
	require.NotEqual(t, first, second, "taken codes must be skipped")
	for _, c := range first + second {
		require.Contains(t, roomCodeAlphabet, string(c))
	}
}

func TestWebsocketRoundTrip(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var welcome serverMsg
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, msgWelcome, welcome.Name)
	require.NotEmpty(t, welcome.PlayerID)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"name": "createRoom", "playerName": "alice",
	}))
	var push serverMsg
	require.NoError(t, conn.ReadJSON(&push))
	require.Equal(t, msgRoom, push.Name)
	require.Equal(t, welcome.PlayerID, push.Room.You)
	require.Len(t, push.Room.Code, roomCodeLength)
}

func TestSessionResumeKeepsIdentity(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	id := uuid.NewString()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var welcome serverMsg
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, id, welcome.PlayerID)
}
