package poker

import "math/rand"

// BotView is the information a bot policy sees on its turn. Amounts
// follow the betting engine's conventions: MinTo is the smallest legal
// street total for a bet or raise, CallAmount the increment to match.
type BotView struct {
	Hole      []Card
	Community []Card
	Street    Street

	Stack        int64
	Pot          int64
	CurrentBet   int64
	BetThisRound int64
	CallAmount   int64
	MinTo        int64
	BigBlind     int64
}

// BotPolicy chooses a bot's action. Implementations run on the room's
// timer goroutine with the room locked, so they must return quickly. An
// illegal choice degrades to check, then fold.
type BotPolicy interface {
	ChooseAction(view BotView, rng *rand.Rand) (ActionKind, int64)
}

func (r *Room) botView(p *Player) BotView {
	return BotView{
		Hole:         append([]Card(nil), p.Hole...),
		Community:    append([]Card(nil), r.community...),
		Street:       r.stage,
		Stack:        p.Stack,
		Pot:          r.pot,
		CurrentBet:   r.currentBet,
		BetThisRound: p.BetThisRound,
		CallAmount:   r.currentBet - p.BetThisRound,
		MinTo:        r.minTo(),
		BigBlind:     r.bigBlind,
	}
}

// RandomPolicy keeps table bots moving with a loose mix of checks, calls
// and the occasional raise. It is a liveness tool, not a strategy.
type RandomPolicy struct{}

// ChooseAction implements BotPolicy.
func (RandomPolicy) ChooseAction(v BotView, rng *rand.Rand) (ActionKind, int64) {
	roll := rng.Float64()
	if v.CallAmount == 0 {
		switch {
		case roll < 0.70:
			return ActionCheck, 0
		case roll < 0.96:
			return ActionBet, v.MinTo + v.BigBlind*int64(rng.Intn(3))
		default:
			return ActionAllIn, 0
		}
	}

	// Facing a bet. Shy away from calls that risk a third of the stack.
	expensive := v.CallAmount*3 > v.Stack
	switch {
	case expensive && roll < 0.60:
		return ActionFold, 0
	case roll < 0.10:
		return ActionFold, 0
	case roll < 0.92:
		return ActionCall, 0
	case roll < 0.98:
		return ActionRaise, v.MinTo + v.BigBlind*int64(rng.Intn(3))
	default:
		return ActionAllIn, 0
	}
}
