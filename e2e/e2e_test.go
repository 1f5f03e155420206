// This file contains end-to-end tests that spin up a full cardroomd
// server and drive it through real websocket clients. Only the listener
// is in-process (httptest); everything else, including the wire
// encoding, is exactly what production runs.

package e2e

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cardroomd/cardroomd/pkg/client"
	"github.com/cardroomd/cardroomd/pkg/poker"
	"github.com/cardroomd/cardroomd/pkg/server"
)

// testEnv is one isolated server instance plus its websocket URL. Each
// test spins up its own so tests can run in parallel.
type testEnv struct {
	t   *testing.T
	srv *server.Server
	url string
}

func newTestEnv(t *testing.T, cfg server.Config) *testEnv {
	t.Helper()

	if cfg.RevealDelay == 0 {
		cfg.RevealDelay = 50 * time.Millisecond
	}
	if cfg.InterHandDelay == 0 {
		// Long enough that hands never chain on their own mid-test.
		cfg.InterHandDelay = time.Hour
	}
	if cfg.BotThinkDelay == 0 {
		cfg.BotThinkDelay = 10 * time.Millisecond
	}
	if cfg.Seed == 0 {
		cfg.Seed = 11
	}

	srv := server.New(cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})

	return &testEnv{
		t:   t,
		srv: srv,
		url: "ws" + strings.TrimPrefix(ts.URL, "http"),
	}
}

// testPlayer wraps one connected client.
type testPlayer struct {
	t    *testing.T
	name string
	c    *client.Client
}

func (e *testEnv) dial(name, sessionID string) *testPlayer {
	e.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, e.url, sessionID, nil)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { c.Close() })
	return &testPlayer{t: e.t, name: name, c: c}
}

// waitRoom consumes pushes until one satisfies pred or the deadline
// passes. Error pushes fail the test immediately: these scenarios only
// issue commands the server should accept.
func (p *testPlayer) waitRoom(pred func(*poker.RoomSnapshot) bool, what string) *poker.RoomSnapshot {
	p.t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case m, ok := <-p.c.Messages:
			if !ok {
				p.t.Fatalf("%s: connection closed while waiting for %s", p.name, what)
			}
			if m.Name == client.MsgError {
				p.t.Fatalf("%s: server error while waiting for %s: %s", p.name, what, m.Message)
			}
			if m.Name == client.MsgRoom && m.Room != nil && pred(m.Room) {
				return m.Room
			}
		case <-deadline:
			p.t.Fatalf("%s: timed out waiting for %s", p.name, what)
		}
	}
}

func (p *testPlayer) waitState(state poker.RoomState) *poker.RoomSnapshot {
	p.t.Helper()
	return p.waitRoom(func(r *poker.RoomSnapshot) bool {
		return r.State == state
	}, fmt.Sprintf("state %s", state))
}

// autoplay answers every turn with the cheapest legal action until the
// hand leaves the betting state, then delivers the snapshot that ended
// it on done.
func (p *testPlayer) autoplay(done chan<- *poker.RoomSnapshot, errCh chan<- error) {
	go func() {
		for m := range p.c.Messages {
			if m.Name == client.MsgError {
				errCh <- fmt.Errorf("%s: server error: %s", p.name, m.Message)
				return
			}
			if m.Name != client.MsgRoom || m.Room == nil {
				continue
			}
			r := m.Room
			if r.State == poker.StateReveal || r.State == poker.StateShowdown {
				done <- r
				return
			}
			if len(r.Actions) == 0 {
				continue
			}
			if err := p.c.Action(string(cheapestAction(r.Actions)), 0); err != nil {
				errCh <- err
				return
			}
		}
		errCh <- fmt.Errorf("%s: connection closed mid-hand", p.name)
	}()
}

func cheapestAction(actions []poker.ActionOption) poker.ActionKind {
	for _, a := range actions {
		if a.Kind == poker.ActionCheck {
			return poker.ActionCheck
		}
	}
	for _, a := range actions {
		if a.Kind == poker.ActionCall {
			return poker.ActionCall
		}
	}
	return poker.ActionFold
}

func chipsInPlay(r *poker.RoomSnapshot) int64 {
	total := r.Pot
	for _, p := range r.Players {
		total += p.Stack
	}
	return total
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: three friends play a full hand to the river
//
// -----------------------------------------------------------------------------
func TestThreePlayersPlayOneHand(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, server.Config{})

	alice := env.dial("alice", "")
	bob := env.dial("bob", "")
	carol := env.dial("carol", "")

	// 1. Alice opens the room and reads the code off her lobby view.
	require.NoError(t, alice.c.CreateRoom("alice", 10, 20, 1000))
	lobby := alice.waitState(poker.StateLobby)
	code := lobby.Code
	require.Len(t, code, 5)

	// 2. The others join with the code.
	require.NoError(t, bob.c.JoinRoom(code, "bob"))
	bob.waitState(poker.StateLobby)
	require.NoError(t, carol.c.JoinRoom(code, "carol"))
	alice.waitRoom(func(r *poker.RoomSnapshot) bool {
		return len(r.Players) == 3
	}, "three seated players")

	// 3. Everyone plays the cheapest line until the hand resolves.
	done := make(chan *poker.RoomSnapshot, 3)
	errCh := make(chan error, 3)
	alice.autoplay(done, errCh)
	bob.autoplay(done, errCh)
	carol.autoplay(done, errCh)

	require.NoError(t, alice.c.StartHand())

	finals := make([]*poker.RoomSnapshot, 0, 3)
	for len(finals) < 3 {
		select {
		case r := <-done:
			finals = append(finals, r)
		case err := <-errCh:
			t.Fatal(err)
		case <-time.After(15 * time.Second):
			t.Fatalf("hand did not finish, got %d of 3 players through", len(finals))
		}
	}

	// 4. A checked-down hand reaches the river with everyone still in.
	for _, r := range finals {
		require.Equal(t, poker.StateReveal, r.State)
		require.Len(t, r.Community, 5)
		require.Equal(t, int64(3000), chipsInPlay(r))
	}

	// 5. Every hand reveals itself to everyone at the end.
	last := finals[0]
	for _, p := range last.Players {
		if !p.Folded {
			require.Len(t, p.Hole, 2, "player %s should show cards in the reveal", p.Name)
		}
	}
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: host tweaks the table, fills a seat with a bot, plays
//
// -----------------------------------------------------------------------------
func TestHostControlsAndBotOpponent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, server.Config{})

	host := env.dial("host", "")
	require.NoError(t, host.c.CreateRoom("hannah", 10, 20, 1000))
	host.waitState(poker.StateLobby)

	require.NoError(t, host.c.SetBlinds(25, 50))
	host.waitRoom(func(r *poker.RoomSnapshot) bool {
		return r.SmallBlind == 25 && r.BigBlind == 50
	}, "updated blinds")

	require.NoError(t, host.c.AddBot("raymond"))
	host.waitRoom(func(r *poker.RoomSnapshot) bool {
		return len(r.Players) == 2 && r.Players[1].IsBot
	}, "bot seated")

	done := make(chan *poker.RoomSnapshot, 1)
	errCh := make(chan error, 1)
	host.autoplay(done, errCh)

	require.NoError(t, host.c.StartHand())

	select {
	case r := <-done:
		require.Equal(t, int64(2000), chipsInPlay(r))
		require.Equal(t, int64(25), r.SmallBlind)
	case err := <-errCh:
		t.Fatal(err)
	case <-time.After(15 * time.Second):
		t.Fatal("hand against the bot did not finish")
	}
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: a player drops mid-hand and resumes from a new connection
//
// -----------------------------------------------------------------------------
func TestReconnectResumesSeatMidHand(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, server.Config{})

	alice := env.dial("alice", "")
	bob := env.dial("bob", "")

	require.NoError(t, alice.c.CreateRoom("alice", 10, 20, 1000))
	code := alice.waitState(poker.StateLobby).Code
	require.NoError(t, bob.c.JoinRoom(code, "bob"))
	bob.waitState(poker.StateLobby)

	require.NoError(t, alice.c.StartHand())
	before := bob.waitState(poker.StateHand)
	me := before.Viewer()
	require.NotNil(t, me)
	require.Len(t, me.Hole, 2)

	// Heads-up the dealer acts first preflop, and the dealer is the
	// host. Bob is off turn, so dropping does not fold him.
	require.NotEqual(t, before.YourSeat, before.CurrentSeat)

	sessionID := bob.c.PlayerID
	bob.c.Close()

	// Alice sees the seat go dark, then light back up.
	alice.waitRoom(func(r *poker.RoomSnapshot) bool {
		for _, p := range r.Players {
			if p.Name == "bob" && !p.Connected {
				return true
			}
		}
		return false
	}, "bob marked away")

	bob2 := env.dial("bob", sessionID)
	require.Equal(t, sessionID, bob2.c.PlayerID)

	// Resuming is the normal join with the old identity: the session id
	// carries the seat, the room code finds the table.
	require.NoError(t, bob2.c.JoinRoom(code, "bob"))

	after := bob2.waitState(poker.StateHand)
	require.Equal(t, before.Code, after.Code)
	require.Equal(t, before.YourSeat, after.YourSeat)
	me2 := after.Viewer()
	require.NotNil(t, me2)
	require.Equal(t, me.Hole, me2.Hole, "hole cards survive the reconnect")
	require.False(t, me2.Folded)

	alice.waitRoom(func(r *poker.RoomSnapshot) bool {
		for _, p := range r.Players {
			if p.Name == "bob" && p.Connected {
				return true
			}
		}
		return false
	}, "bob back in his seat")
}

// -----------------------------------------------------------------------------
//
//	SCENARIO: consecutive hands chain automatically between showdowns
//
// -----------------------------------------------------------------------------
func TestHandsChainThroughShowdown(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, server.Config{
		InterHandDelay: 50 * time.Millisecond,
	})

	alice := env.dial("alice", "")
	bob := env.dial("bob", "")

	require.NoError(t, alice.c.CreateRoom("alice", 10, 20, 1000))
	code := alice.waitState(poker.StateLobby).Code
	require.NoError(t, bob.c.JoinRoom(code, "bob"))
	bob.waitState(poker.StateLobby)

	// Bob answers every turn for as long as the test runs; if his sends
	// start failing, Alice's side times out with a useful message.
	go func() {
		for m := range bob.c.Messages {
			if m.Name != client.MsgRoom || m.Room == nil || len(m.Room.Actions) == 0 {
				continue
			}
			if err := bob.c.Action(string(cheapestAction(m.Room.Actions)), 0); err != nil {
				return
			}
		}
	}()

	require.NoError(t, alice.c.StartHand())

	// Check-call two full hands; the dealer button must move.
	var dealers []int
	for hand := 0; hand < 2; hand++ {
		for {
			snap := alice.waitRoom(func(r *poker.RoomSnapshot) bool {
				return len(r.Actions) > 0 || r.State == poker.StateShowdown
			}, "turn or showdown")
			if snap.State == poker.StateShowdown {
				dealers = append(dealers, snap.DealerSeat)
				break
			}
			require.NoError(t, alice.c.Action(string(cheapestAction(snap.Actions)), 0))
		}
	}

	require.Len(t, dealers, 2)
	require.NotEqual(t, dealers[0], dealers[1], "dealer button should rotate between hands")
}
