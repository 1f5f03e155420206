package poker

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/decred/slog"

	"github.com/cardroomd/cardroomd/pkg/statemachine"
)

// RoomState is the coarse lifecycle state of a room.
type RoomState string

const (
	StateLobby    RoomState = "lobby"
	StateHand     RoomState = "hand"
	StateReveal   RoomState = "reveal"
	StateShowdown RoomState = "showdown"
)

// Street is the betting round within a hand.
type Street string

const (
	StreetPreflop Street = "preflop"
	StreetFlop    Street = "flop"
	StreetTurn    Street = "turn"
	StreetRiver   Street = "river"
)

// MaxSeats is the seat count of every room.
const MaxSeats = 8

// maxEventLines bounds the per-room event log kept for snapshots.
const maxEventLines = 50

var (
	// ErrRoomFull is returned when every seat is taken.
	ErrRoomFull = errors.New("room is full")

	// ErrHandInProgress is returned when joining a room whose game has
	// already started.
	ErrHandInProgress = errors.New("hand already in progress")
)

// RoomConfig carries the knobs for a new room. Zero values select the
// defaults noted on each field.
type RoomConfig struct {
	Code string
	Log  slog.Logger

	SmallBlind    int64 // 10
	BigBlind      int64 // 20
	StartingStack int64 // 1000

	RevealDelay    time.Duration // 3s pause showing cards before payouts
	InterHandDelay time.Duration // 5s pause before the next hand
	BotThinkDelay  time.Duration // 1s pause before a bot acts

	// Seed fixes the deal order for reproducible games. Zero seeds from
	// the clock.
	Seed int64

	// Policy decides bot actions. Nil selects RandomPolicy.
	Policy BotPolicy

	// Notify receives a per-player snapshot map after every observable
	// change. It is called with the room lock held and must not call
	// back into the room.
	Notify func(views map[string]*RoomSnapshot)

	// OnEmpty is called when the last player is gone. Same locking
	// caveat as Notify.
	OnEmpty func(code string)
}

// Room is a single table: seats, blinds, the live hand and its timers.
// All access is serialized through the room's state machine, so entry
// points may be called from any goroutine.
type Room struct {
	code string
	log  slog.Logger

	state RoomState
	stage Street

	hostID string

	seats   []*Player
	players map[string]*Player

	dealerSeat  int
	currentSeat int

	smallBlind    int64
	bigBlind      int64
	startingStack int64

	pot        int64
	currentBet int64
	minRaise   int64

	deck      *Deck
	community []Card

	handSeq  uint64
	handDone bool

	winnerInfo *HandResult
	events     []string

	rng     *rand.Rand
	oddsRng *rand.Rand

	revealDelay    time.Duration
	interHandDelay time.Duration
	botThinkDelay  time.Duration

	policy  BotPolicy
	notify  func(map[string]*RoomSnapshot)
	onEmpty func(string)

	sm *statemachine.Machine[Room]
}

// NewRoom creates an empty room in the lobby state.
func NewRoom(cfg RoomConfig) *Room {
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	if cfg.SmallBlind <= 0 {
		cfg.SmallBlind = 10
	}
	if cfg.BigBlind <= cfg.SmallBlind {
		cfg.BigBlind = cfg.SmallBlind * 2
	}
	if cfg.StartingStack <= 0 {
		cfg.StartingStack = 1000
	}
	if cfg.RevealDelay <= 0 {
		cfg.RevealDelay = 3 * time.Second
	}
	if cfg.InterHandDelay <= 0 {
		cfg.InterHandDelay = 5 * time.Second
	}
	if cfg.BotThinkDelay <= 0 {
		cfg.BotThinkDelay = time.Second
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Policy == nil {
		cfg.Policy = RandomPolicy{}
	}

	r := &Room{
		code:           cfg.Code,
		log:            cfg.Log,
		state:          StateLobby,
		seats:          make([]*Player, MaxSeats),
		players:        make(map[string]*Player),
		dealerSeat:     -1,
		currentSeat:    -1,
		smallBlind:     cfg.SmallBlind,
		bigBlind:       cfg.BigBlind,
		startingStack:  cfg.StartingStack,
		rng:            rand.New(rand.NewSource(cfg.Seed)),
		oddsRng:        rand.New(rand.NewSource(cfg.Seed + 1)),
		revealDelay:    cfg.RevealDelay,
		interHandDelay: cfg.InterHandDelay,
		botThinkDelay:  cfg.BotThinkDelay,
		policy:         cfg.Policy,
		notify:         cfg.Notify,
		onEmpty:        cfg.OnEmpty,
	}
	r.sm = statemachine.New(r)
	return r
}

// Code returns the room's join code.
func (r *Room) Code() string { return r.code }

// Empty reports whether no players remain.
func (r *Room) Empty() bool {
	var empty bool
	r.sm.Do(func(room *Room) {
		empty = len(room.players) == 0
	})
	return empty
}

// AddPlayer seats a new player, or reconnects an existing one. Fresh joins
// are only possible while the room sits in the lobby.
func (r *Room) AddPlayer(id, name string) error {
	var err error
	r.sm.Do(func(room *Room) {
		if p, ok := room.players[id]; ok {
			p.Connected = true
			room.addEvent("%s reconnected", p.Name)
			room.flushViews()
			return
		}
		if room.state != StateLobby {
			err = ErrHandInProgress
			return
		}
		seat := room.freeSeat()
		if seat == -1 {
			err = ErrRoomFull
			return
		}
		p := newPlayer(id, name, seat, room.startingStack)
		room.seats[seat] = p
		room.players[id] = p
		if room.hostID == "" {
			room.hostID = id
			room.addEvent("%s opened the table", name)
		} else {
			room.addEvent("%s joined", name)
		}
		room.flushViews()
	})
	return err
}

// AddBot seats a bot player. Only the host may add bots, and only in the
// lobby. Non-host requests are ignored.
func (r *Room) AddBot(byID, botID, botName string) error {
	var err error
	r.sm.Do(func(room *Room) {
		if byID != room.hostID {
			room.log.Debugf("%s: ignoring add bot from non-host %s", room.code, byID)
			return
		}
		if room.state != StateLobby {
			err = ErrHandInProgress
			return
		}
		seat := room.freeSeat()
		if seat == -1 {
			err = ErrRoomFull
			return
		}
		p := newPlayer(botID, botName, seat, room.startingStack)
		p.IsBot = true
		room.seats[seat] = p
		room.players[botID] = p
		room.addEvent("%s joined", botName)
		room.flushViews()
	})
	return err
}

// SetBlinds updates the blind structure for subsequent hands. Host only,
// and only between hands; anything else is ignored.
func (r *Room) SetBlinds(byID string, small, big int64) {
	r.sm.Dispatch(func(room *Room) statemachine.StateFn[Room] {
		if byID != room.hostID {
			room.log.Debugf("%s: ignoring set blinds from non-host %s", room.code, byID)
			return nil
		}
		if room.state != StateLobby && room.state != StateShowdown {
			return nil
		}
		if small < 1 {
			small = 1
		}
		if big <= small {
			big = small + 1
		}
		room.smallBlind = small
		room.bigBlind = big
		room.addEvent("blinds set to %d/%d", small, big)
		return stepNotify
	})
}

// StartHand begins a new hand. Host only; legal from the lobby or while a
// finished hand is on display. Anything else is ignored.
func (r *Room) StartHand(byID string) {
	r.sm.Dispatch(func(room *Room) statemachine.StateFn[Room] {
		if byID != room.hostID {
			room.log.Debugf("%s: ignoring start hand from non-host %s", room.code, byID)
			return nil
		}
		if room.state != StateLobby && room.state != StateShowdown {
			return nil
		}
		room.sm.CancelPending()
		return beginHand
	})
}

// Submit applies a betting action for playerID. Out-of-turn, out-of-state
// and ill-sized actions are dropped without any effect; callers learn the
// result from the next snapshot.
func (r *Room) Submit(playerID string, kind ActionKind, amount int64) {
	r.sm.Dispatch(func(room *Room) statemachine.StateFn[Room] {
		if room.state != StateHand {
			return nil
		}
		p := room.players[playerID]
		if p == nil || p.Seat != room.currentSeat || !p.canAct() {
			room.log.Debugf("%s: dropping action %s from %s", room.code, kind, playerID)
			return nil
		}
		room.sm.CancelPending()
		if !room.performAction(p, kind, amount) {
			room.log.Debugf("%s: dropping illegal %s %d from %s", room.code, kind, amount, p.Name)
			return nil
		}
		return afterAction
	})
}

// Disconnect records that a player's connection dropped. In the lobby the
// player is removed outright; mid-game the seat is kept so they can
// reconnect, and if the turn is theirs the hand folds them.
func (r *Room) Disconnect(playerID string) {
	r.sm.Dispatch(func(room *Room) statemachine.StateFn[Room] {
		p := room.players[playerID]
		if p == nil {
			return nil
		}
		if room.state == StateLobby {
			room.seats[p.Seat] = nil
			delete(room.players, playerID)
			room.addEvent("%s left", p.Name)
			room.dropBotsWithoutHumans()
			room.migrateHost()
			if len(room.players) == 0 && room.onEmpty != nil {
				room.onEmpty(room.code)
			}
			return stepNotify
		}
		p.Connected = false
		room.addEvent("%s disconnected", p.Name)
		room.migrateHost()
		if room.state == StateHand && p.Seat == room.currentSeat && p.canAct() {
			room.sm.CancelPending()
			p.Folded = true
			p.HasActed = true
			room.addEvent("%s folds (away)", p.Name)
			return afterAction
		}
		return stepNotify
	})
}

// Snapshot builds viewerID's picture of the room, or nil for strangers.
func (r *Room) Snapshot(viewerID string) *RoomSnapshot {
	var snap *RoomSnapshot
	r.sm.Do(func(room *Room) {
		if p := room.players[viewerID]; p != nil {
			snap = room.buildSnapshot(p)
		}
	})
	return snap
}

// beginHand deals a fresh hand: it advances the button, posts blinds,
// deals hole cards and opens preflop betting. Players who disconnected
// earlier are dropped first; if fewer than two funded players remain the
// room falls back to the lobby.
func beginHand(r *Room) statemachine.StateFn[Room] {
	r.purgeDisconnected()
	if r.countWithChips() < 2 {
		return toLobby
	}

	r.handSeq++
	r.handDone = false
	r.winnerInfo = nil
	r.state = StateHand
	r.stage = StreetPreflop
	r.currentSeat = -1
	r.deck = NewDeck(r.rng)
	r.community = nil
	r.pot = 0
	for _, p := range r.seatedPlayers() {
		p.resetForNewHand()
		if p.Stack == 0 {
			// Busted players watch from their seat.
			p.Folded = true
		}
	}

	r.dealerSeat = nextSeat(r.seats, r.dealerSeat, hasChips)
	order := seatsInOrder(r.seats, r.dealerSeat, hasChips)

	var sbSeat, bbSeat int
	if r.countWithChips() == 2 {
		// Heads up the dealer takes the small blind.
		sbSeat = r.dealerSeat
		bbSeat = order[0]
	} else {
		sbSeat = order[0]
		bbSeat = order[1]
	}
	r.addEvent("hand #%d: %s has the button", r.handSeq, r.seats[r.dealerSeat].Name)
	r.postBlind(r.seats[sbSeat], r.smallBlind, "small blind")
	r.postBlind(r.seats[bbSeat], r.bigBlind, "big blind")
	r.currentBet = r.bigBlind
	r.minRaise = r.bigBlind

	// Two passes of one card each, starting left of the dealer.
	for pass := 0; pass < 2; pass++ {
		for _, s := range order {
			card, _ := r.deck.Draw()
			r.seats[s].Hole = append(r.seats[s].Hole, card)
		}
	}

	if r.roundClosed() {
		// The blinds put everyone all-in already.
		return advanceStreets
	}
	r.currentSeat = nextSeat(r.seats, bbSeat, needsAction)
	r.maybeScheduleBot()
	return stepNotify
}

// afterAction advances the hand after a successful action: settle a
// conceded pot, close the round, or pass the turn along, folding
// disconnected players in passing.
func afterAction(r *Room) statemachine.StateFn[Room] {
	for {
		if r.liveCount() == 1 {
			return settleLoneSurvivor
		}
		if r.roundClosed() {
			return advanceStreets
		}
		next := nextSeat(r.seats, r.currentSeat, needsAction)
		if next == -1 {
			return advanceStreets
		}
		p := r.seats[next]
		if !p.Connected {
			p.Folded = true
			p.HasActed = true
			r.addEvent("%s folds (away)", p.Name)
			continue
		}
		r.currentSeat = next
		r.maybeScheduleBot()
		return stepNotify
	}
}

// settleLoneSurvivor pays the whole pot to the last unfolded player, then
// runs the usual reveal pipeline.
func settleLoneSurvivor(r *Room) statemachine.StateFn[Room] {
	var survivor *Player
	for _, p := range r.seatedPlayers() {
		if p.live() {
			survivor = p
			break
		}
	}
	amount := r.pot
	r.winnerInfo = settleUncontested(survivor, amount)
	r.pot = 0
	r.handDone = true
	r.addEvent("%s wins %d uncontested", survivor.Name, amount)
	return enterReveal
}

// advanceStreets moves the hand forward once a betting round closes. With
// nobody left who can act it deals straight through to the river.
func advanceStreets(r *Room) statemachine.StateFn[Room] {
	if r.stage == StreetRiver {
		return enterReveal
	}
	if r.actionableCount() == 0 {
		for r.stage != StreetRiver {
			r.dealNextStreet()
		}
		return enterReveal
	}
	r.dealNextStreet()
	r.resetStreetBetting()
	r.currentSeat = nextSeat(r.seats, r.dealerSeat, canStillAct)
	r.maybeScheduleBot()
	return stepNotify
}

// enterReveal turns all live cards face up and schedules the showdown.
func enterReveal(r *Room) statemachine.StateFn[Room] {
	r.state = StateReveal
	r.currentSeat = -1
	seq := r.handSeq
	r.sm.DispatchAfter(r.revealDelay, func(room *Room) statemachine.StateFn[Room] {
		if room.state != StateReveal || room.handSeq != seq {
			return nil
		}
		return stepShowdown
	})
	return stepNotify
}

// stepShowdown resolves and pays the pots, then schedules the next hand.
func stepShowdown(r *Room) statemachine.StateFn[Room] {
	r.state = StateShowdown
	if !r.handDone {
		r.winnerInfo = resolveShowdown(r.seatedPlayers(), r.community)
		r.pot = 0
		r.handDone = true
		for _, pr := range r.winnerInfo.Pots {
			r.addEvent("%s", pr.summary())
		}
	}
	seq := r.handSeq
	r.sm.DispatchAfter(r.interHandDelay, func(room *Room) statemachine.StateFn[Room] {
		if room.state != StateShowdown || room.handSeq != seq {
			return nil
		}
		return nextHand
	})
	return stepNotify
}

// nextHand continues play after the showdown pause, or parks the room in
// the lobby when too few funded players remain.
func nextHand(r *Room) statemachine.StateFn[Room] {
	r.purgeDisconnected()
	if r.countWithChips() >= 2 {
		return beginHand
	}
	return toLobby
}

// toLobby returns the room to the lobby between games. The last hand's
// result stays visible until a new hand begins.
func toLobby(r *Room) statemachine.StateFn[Room] {
	r.state = StateLobby
	r.stage = ""
	r.currentSeat = -1
	r.community = nil
	if len(r.players) == 0 && r.onEmpty != nil {
		r.onEmpty(r.code)
	}
	return stepNotify
}

// stepNotify ends every observable chain by pushing fresh snapshots.
func stepNotify(r *Room) statemachine.StateFn[Room] {
	r.flushViews()
	return nil
}

// stepBotAct runs the scheduled bot decision for the current seat. A
// policy that proposes something illegal degrades to check, then fold.
func stepBotAct(r *Room) statemachine.StateFn[Room] {
	if r.currentSeat < 0 {
		return nil
	}
	p := r.seats[r.currentSeat]
	if p == nil || !p.IsBot || !p.canAct() {
		return nil
	}
	kind, amount := r.policy.ChooseAction(r.botView(p), r.rng)
	if !r.performAction(p, kind, amount) {
		if !r.performAction(p, ActionCheck, 0) {
			r.performAction(p, ActionFold, 0)
		}
	}
	return afterAction
}

// performAction applies an action and records it in the event log.
func (r *Room) performAction(p *Player, kind ActionKind, amount int64) bool {
	if !r.applyAction(p, kind, amount) {
		return false
	}
	switch kind {
	case ActionFold:
		r.addEvent("%s folds", p.Name)
	case ActionCheck:
		r.addEvent("%s checks", p.Name)
	case ActionCall:
		if p.AllIn {
			r.addEvent("%s calls all-in for %d", p.Name, p.BetThisRound)
		} else {
			r.addEvent("%s calls %d", p.Name, p.BetThisRound)
		}
	case ActionBet, ActionRaise, ActionAllIn:
		switch {
		case p.AllIn:
			r.addEvent("%s is all-in for %d", p.Name, p.BetThisRound)
		case kind == ActionBet:
			r.addEvent("%s bets %d", p.Name, p.BetThisRound)
		default:
			r.addEvent("%s raises to %d", p.Name, p.BetThisRound)
		}
	}
	return true
}

// maybeScheduleBot arms the think timer when the turn lands on a bot.
func (r *Room) maybeScheduleBot() {
	if r.state != StateHand || r.currentSeat < 0 {
		return
	}
	p := r.seats[r.currentSeat]
	if p == nil || !p.IsBot {
		return
	}
	seq := r.handSeq
	seat := r.currentSeat
	r.sm.DispatchAfter(r.botThinkDelay, func(room *Room) statemachine.StateFn[Room] {
		if room.state != StateHand || room.handSeq != seq || room.currentSeat != seat {
			return nil
		}
		return stepBotAct
	})
}

func (r *Room) dealNextStreet() {
	switch r.stage {
	case StreetPreflop:
		r.stage = StreetFlop
		r.drawCommunity(3)
		r.addEvent("flop: %s", cardsString(r.community))
	case StreetFlop:
		r.stage = StreetTurn
		r.drawCommunity(1)
		r.addEvent("turn: %s", cardsString(r.community))
	case StreetTurn:
		r.stage = StreetRiver
		r.drawCommunity(1)
		r.addEvent("river: %s", cardsString(r.community))
	}
}

func (r *Room) drawCommunity(n int) {
	for i := 0; i < n; i++ {
		card, ok := r.deck.Draw()
		if !ok {
			return
		}
		r.community = append(r.community, card)
	}
}

func (r *Room) postBlind(p *Player, amount int64, what string) {
	n := min64(amount, p.Stack)
	r.commitChips(p, n)
	r.addEvent("%s posts %s %d", p.Name, what, n)
}

// purgeDisconnected frees the seats of players who dropped and never came
// back. Bots cannot hold a table open on their own.
func (r *Room) purgeDisconnected() {
	for id, p := range r.players {
		if !p.Connected {
			r.seats[p.Seat] = nil
			delete(r.players, id)
			r.addEvent("%s left", p.Name)
		}
	}
	r.dropBotsWithoutHumans()
	r.migrateHost()
}

// dropBotsWithoutHumans clears remaining bots once the last human is gone
// so the room can be reclaimed.
func (r *Room) dropBotsWithoutHumans() {
	for _, p := range r.players {
		if !p.IsBot {
			return
		}
	}
	for id, p := range r.players {
		r.seats[p.Seat] = nil
		delete(r.players, id)
	}
}

// migrateHost hands the room to the first connected human when the host
// is gone or offline, falling back to a bot only when no human is left.
func (r *Room) migrateHost() {
	if p, ok := r.players[r.hostID]; ok && p.Connected {
		return
	}
	var fallback *Player
	for _, p := range r.seats {
		if p == nil || !p.Connected {
			continue
		}
		if !p.IsBot {
			r.hostID = p.ID
			r.addEvent("%s is now the host", p.Name)
			return
		}
		if fallback == nil {
			fallback = p
		}
	}
	if fallback != nil {
		r.hostID = fallback.ID
	}
}

func (r *Room) seatedPlayers() []*Player {
	ps := make([]*Player, 0, len(r.players))
	for _, p := range r.seats {
		if p != nil {
			ps = append(ps, p)
		}
	}
	return ps
}

func (r *Room) freeSeat() int {
	for s, p := range r.seats {
		if p == nil {
			return s
		}
	}
	return -1
}

func (r *Room) countWithChips() int {
	n := 0
	for _, p := range r.seats {
		if p != nil && p.Stack > 0 {
			n++
		}
	}
	return n
}

func (r *Room) addEvent(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.log.Debugf("%s: %s", r.code, msg)
	r.events = append(r.events, msg)
	if len(r.events) > maxEventLines {
		r.events = r.events[len(r.events)-maxEventLines:]
	}
}

func cardsString(cards []Card) string {
	s := ""
	for i, c := range cards {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return s
}
