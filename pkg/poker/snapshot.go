package poker

// RoomSnapshot is one player's sanitized view of the room, safe to send
// over the wire as-is. Hole cards other than the viewer's own are omitted
// until the hand reaches the reveal, except for busted players watching
// from their seat, who see everything.
type RoomSnapshot struct {
	Code        string           `json:"code"`
	State       RoomState        `json:"state"`
	Stage       Street           `json:"stage,omitempty"`
	You         string           `json:"you"`
	YourSeat    int              `json:"yourSeat"`
	DealerSeat  int              `json:"dealerSeat"`
	CurrentSeat int              `json:"currentSeat"`
	SmallBlind  int64            `json:"smallBlind"`
	BigBlind    int64            `json:"bigBlind"`
	Pot         int64            `json:"pot"`
	CurrentBet  int64            `json:"currentBet"`
	MinRaise    int64            `json:"minRaise"`
	Community   []Card           `json:"community,omitempty"`
	Players     []PlayerSnapshot `json:"players"`
	Actions     []ActionOption   `json:"actions,omitempty"`
	Winners     []WinnerSnapshot `json:"winners,omitempty"`
	Odds        []SeatEquity     `json:"odds,omitempty"`
	Events      []string         `json:"events,omitempty"`
}

// PlayerSnapshot is the public face of one seat. Hole carries cards only
// when the viewer is allowed to see them; HoleCount always carries how
// many cards the player holds so clients can draw card backs.
type PlayerSnapshot struct {
	Name         string `json:"name"`
	Seat         int    `json:"seat"`
	Stack        int64  `json:"stack"`
	BetThisRound int64  `json:"betThisRound"`
	Folded       bool   `json:"folded,omitempty"`
	AllIn        bool   `json:"allIn,omitempty"`
	Connected    bool   `json:"connected"`
	IsBot        bool   `json:"isBot,omitempty"`
	IsHost       bool   `json:"isHost,omitempty"`
	HoleCount    int    `json:"holeCount"`
	Hole         []Card `json:"hole,omitempty"`
	HandDesc     string `json:"handDesc,omitempty"`
}

// ActionOption tells the player on turn which actions are open and their
// chip bounds. Min and Max are street totals, Call is the increment.
type ActionOption struct {
	Kind ActionKind `json:"kind"`
	Call int64      `json:"call,omitempty"`
	Min  int64      `json:"min,omitempty"`
	Max  int64      `json:"max,omitempty"`
}

// WinnerSnapshot reports who took one pot and with what.
type WinnerSnapshot struct {
	Names  []string `json:"names"`
	Seats  []int    `json:"seats"`
	Amount int64    `json:"amount"`
	Hand   string   `json:"hand,omitempty"`
}

// SeatEquity is a spectator-only estimate of one live hand's win chance.
type SeatEquity struct {
	Seat int     `json:"seat"`
	Win  float64 `json:"win"`
}

// Viewer returns the seat entry the snapshot was built for, or nil when
// the viewer is no longer seated.
func (s *RoomSnapshot) Viewer() *PlayerSnapshot {
	if s.YourSeat < 0 {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].Seat == s.YourSeat {
			return &s.Players[i]
		}
	}
	return nil
}

// spectating reports whether p is watching the hand rather than playing
// it: busted players keep their seat and see every card.
func (r *Room) spectating(p *Player) bool {
	return p.Stack == 0 && !p.AllIn
}

func (r *Room) buildSnapshot(viewer *Player) *RoomSnapshot {
	snap := &RoomSnapshot{
		Code:        r.code,
		State:       r.state,
		Stage:       r.stage,
		You:         viewer.ID,
		YourSeat:    viewer.Seat,
		DealerSeat:  r.dealerSeat,
		CurrentSeat: r.currentSeat,
		SmallBlind:  r.smallBlind,
		BigBlind:    r.bigBlind,
		Pot:         r.pot,
		CurrentBet:  r.currentBet,
		MinRaise:    r.minRaise,
		Community:   append([]Card(nil), r.community...),
		Events:      append([]string(nil), r.events...),
	}

	revealAll := r.state == StateReveal || r.state == StateShowdown || r.spectating(viewer)
	for _, p := range r.seatedPlayers() {
		ps := PlayerSnapshot{
			Name:         p.Name,
			Seat:         p.Seat,
			Stack:        p.Stack,
			BetThisRound: p.BetThisRound,
			Folded:       p.Folded,
			AllIn:        p.AllIn,
			Connected:    p.Connected,
			IsBot:        p.IsBot,
			IsHost:       p.ID == r.hostID,
			HoleCount:    len(p.Hole),
		}
		if p == viewer || revealAll {
			ps.Hole = append([]Card(nil), p.Hole...)
			if p.HandValue != nil && p.live() {
				ps.HandDesc = p.HandValue.HandDescription
			}
		}
		snap.Players = append(snap.Players, ps)
	}

	if r.state == StateHand && viewer.Seat == r.currentSeat && viewer.canAct() {
		snap.Actions = r.legalActions(viewer)
	}
	if r.winnerInfo != nil {
		snap.Winners = winnerSnapshots(r.winnerInfo)
	}
	return snap
}

// legalActions enumerates what the player on turn may do right now.
func (r *Room) legalActions(p *Player) []ActionOption {
	opts := []ActionOption{{Kind: ActionFold}}
	callAmount := r.currentBet - p.BetThisRound
	if callAmount == 0 {
		opts = append(opts, ActionOption{Kind: ActionCheck})
	} else {
		opts = append(opts, ActionOption{Kind: ActionCall, Call: min64(callAmount, p.Stack)})
	}
	full := p.fullCommitment()
	if minTo := r.minTo(); full >= minTo {
		kind := ActionRaise
		if r.currentBet == 0 {
			kind = ActionBet
		}
		opts = append(opts, ActionOption{Kind: kind, Min: minTo, Max: full})
	}
	opts = append(opts, ActionOption{Kind: ActionAllIn, Max: full})
	return opts
}

func winnerSnapshots(result *HandResult) []WinnerSnapshot {
	out := make([]WinnerSnapshot, 0, len(result.Pots))
	for _, pot := range result.Pots {
		ws := WinnerSnapshot{Amount: pot.Amount}
		for _, w := range pot.Winners {
			ws.Names = append(ws.Names, w.Name)
			ws.Seats = append(ws.Seats, w.Seat)
		}
		if pot.Hand != nil {
			ws.Hand = pot.Hand.HandDescription
		}
		out = append(out, ws)
	}
	return out
}

// flushViews pushes a fresh snapshot for every player. Spectators of a
// running hand also get the live equity estimate.
func (r *Room) flushViews() {
	if r.notify == nil {
		return
	}
	var odds []SeatEquity
	if r.state == StateHand {
		for _, p := range r.players {
			if r.spectating(p) && p.Connected {
				odds = r.spectatorOdds()
				break
			}
		}
	}
	views := make(map[string]*RoomSnapshot, len(r.players))
	for id, p := range r.players {
		snap := r.buildSnapshot(p)
		if r.spectating(p) {
			snap.Odds = odds
		}
		views[id] = snap
	}
	r.notify(views)
}
