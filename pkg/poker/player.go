package poker

// Player represents one seat's occupant. It belongs to exactly one Room and
// is only ever touched from that room's serialized state machine.
type Player struct {
	ID   string
	Name string
	Seat int

	// Stack is the player's chips, the conserved quantity of the whole
	// engine. It only decreases through commitChips and only increases
	// through payouts.
	Stack int64

	Hole []Card

	// Per-hand state, reset by beginHand.
	Folded       bool
	AllIn        bool
	HasActed     bool
	BetThisRound int64
	Committed    int64

	// HandValue is populated at showdown for players whose cards went to
	// evaluation.
	HandValue *HandValue

	Connected bool
	IsBot     bool
}

func newPlayer(id, name string, seat int, stack int64) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Seat:      seat,
		Stack:     stack,
		Hole:      make([]Card, 0, 2),
		Connected: true,
	}
}

// resetForNewHand clears everything that only lives for one hand.
func (p *Player) resetForNewHand() {
	p.Hole = p.Hole[:0]
	p.Folded = false
	p.AllIn = false
	p.HasActed = false
	p.BetThisRound = 0
	p.Committed = 0
	p.HandValue = nil
}

// live reports whether the player still contests the pot.
func (p *Player) live() bool {
	return !p.Folded
}

// canAct reports whether the player may be offered an action this street.
func (p *Player) canAct() bool {
	return !p.Folded && !p.AllIn
}

// fullCommitment is the street total the player reaches by going all-in.
func (p *Player) fullCommitment() int64 {
	return p.BetThisRound + p.Stack
}
