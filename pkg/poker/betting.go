package poker

// ActionKind identifies a betting action.
type ActionKind string

const (
	ActionFold  ActionKind = "fold"
	ActionCheck ActionKind = "check"
	ActionCall  ActionKind = "call"
	ActionBet   ActionKind = "bet"
	ActionRaise ActionKind = "raise"
	ActionAllIn ActionKind = "all-in"
)

// ParseActionKind maps a wire token to an ActionKind.
func ParseActionKind(s string) (ActionKind, bool) {
	switch s {
	case "fold":
		return ActionFold, true
	case "check":
		return ActionCheck, true
	case "call":
		return ActionCall, true
	case "bet":
		return ActionBet, true
	case "raise":
		return ActionRaise, true
	case "all-in", "allin":
		return ActionAllIn, true
	}
	return "", false
}

// applyAction applies one betting action for p and reports whether any state
// changed. Illegal actions leave the room untouched and return false. The
// caller has already verified it is p's turn and p can act.
//
// For bet and raise, amount is the proposed total for the street, not the
// increment.
func (r *Room) applyAction(p *Player, kind ActionKind, amount int64) bool {
	switch kind {
	case ActionFold:
		p.Folded = true
		p.HasActed = true
		return true

	case ActionCheck:
		if p.BetThisRound != r.currentBet {
			return false
		}
		p.HasActed = true
		return true

	case ActionCall:
		callAmount := r.currentBet - p.BetThisRound
		if callAmount < 0 {
			return false
		}
		// Calling less than the full amount is an all-in for the rest
		// of the stack.
		r.commitChips(p, min64(callAmount, p.Stack))
		p.HasActed = true
		return true

	case ActionBet, ActionRaise:
		return r.applyBetTo(p, amount)

	case ActionAllIn:
		return r.applyBetTo(p, p.fullCommitment())
	}
	return false
}

// applyBetTo moves p's street total to target, enforcing minimum sizing.
//
// The target is clamped to the player's full commitment. It must reach the
// minimum legal total unless it is exactly the full commitment: an all-in
// below the minimum is always allowed. When the target exceeds the standing
// bet, everyone else still able to act must respond again; the minimum raise
// grows only when the raise itself was at least a full raise.
func (r *Room) applyBetTo(p *Player, target int64) bool {
	full := p.fullCommitment()
	if target > full {
		target = full
	}
	if target <= p.BetThisRound {
		return false
	}
	if target < r.minTo() && target != full {
		return false
	}

	prev := r.currentBet
	r.commitChips(p, target-p.BetThisRound)
	p.HasActed = true

	if target > prev {
		r.currentBet = target
		if target-prev >= r.minRaise {
			r.minRaise = target - prev
		}
		for _, other := range r.seatedPlayers() {
			if other != p && other.canAct() {
				other.HasActed = false
			}
		}
	}
	return true
}

// minTo is the smallest legal street total for a bet or raise.
func (r *Room) minTo() int64 {
	if r.currentBet == 0 {
		return r.bigBlind
	}
	return r.currentBet + r.minRaise
}

// commitChips moves n chips from p's stack into the pot, tracking the street
// and hand totals. Emptying the stack marks the player all-in.
func (r *Room) commitChips(p *Player, n int64) {
	if n > p.Stack {
		n = p.Stack
	}
	if n <= 0 {
		return
	}
	p.Stack -= n
	p.BetThisRound += n
	p.Committed += n
	r.pot += n
	if p.Stack == 0 {
		p.AllIn = true
	}
}

// roundClosed reports whether the current betting round is over: every
// player still able to act has acted and matched the standing bet. With no
// such players left the round is closed immediately.
func (r *Room) roundClosed() bool {
	for _, p := range r.seatedPlayers() {
		if !p.canAct() {
			continue
		}
		if !p.HasActed || p.BetThisRound != r.currentBet {
			return false
		}
	}
	return true
}

// needsAction reports whether p is still owed a turn this street.
func needsAction(p *Player) bool {
	return p.canAct() && !p.HasActed
}

// resetStreetBetting clears per-street betting state for a new round.
func (r *Room) resetStreetBetting() {
	r.currentBet = 0
	r.minRaise = r.bigBlind
	for _, p := range r.seatedPlayers() {
		p.BetThisRound = 0
		p.HasActed = false
	}
}

// liveCount is the number of players still contesting the pot.
func (r *Room) liveCount() int {
	n := 0
	for _, p := range r.seatedPlayers() {
		if p.live() {
			n++
		}
	}
	return n
}

// actionableCount is the number of players who could still be offered an
// action this hand.
func (r *Room) actionableCount() int {
	n := 0
	for _, p := range r.seatedPlayers() {
		if p.canAct() {
			n++
		}
	}
	return n
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
