package poker

import (
	"fmt"
	"strings"
)

// PotResult records one pot's outcome at settlement.
type PotResult struct {
	Amount  int64
	Winners []*Player
	// Hand is the winning evaluation, nil when the pot was won without
	// cards being compared.
	Hand *HandValue
}

// HandResult summarizes a finished hand for the room log and for clients.
type HandResult struct {
	Pots        []PotResult
	Uncontested bool
}

// summary renders a log line for one pot's outcome.
func (pr PotResult) summary() string {
	names := make([]string, len(pr.Winners))
	for i, w := range pr.Winners {
		names[i] = w.Name
	}
	who := strings.Join(names, " and ")
	verb := "wins"
	if len(pr.Winners) > 1 {
		verb = "split"
	}
	if pr.Hand == nil {
		return fmt.Sprintf("%s %s %d uncontested", who, verb, pr.Amount)
	}
	return fmt.Sprintf("%s %s %d with %s", who, verb, pr.Amount, pr.Hand.HandDescription)
}

// resolveShowdown evaluates every live player's hand, partitions the
// commitments into pots, and pays each pot to its best eligible hands. Ties
// split by integer division with the odd chip going to the first winner.
func resolveShowdown(players []*Player, community []Card) *HandResult {
	for _, p := range players {
		if p.live() {
			hv := EvaluateHand(p.Hole, community)
			p.HandValue = &hv
		}
	}

	result := &HandResult{}
	var lastWinners []*Player
	for _, pot := range buildPots(players) {
		winners := potWinners(pot)
		if len(winners) == 0 {
			// A layer funded only by folded players. Cannot happen
			// with at least two live hands, but never leak chips.
			winners = lastWinners
			if len(winners) == 0 {
				continue
			}
		}
		lastWinners = winners

		splitPot(pot.Amount, winners)

		result.Pots = append(result.Pots, PotResult{
			Amount:  pot.Amount,
			Winners: winners,
			Hand:    winners[0].HandValue,
		})
	}
	return result
}

// splitPot divides amount evenly among the winners. The integer-division
// remainder goes entirely to the first winner.
func splitPot(amount int64, winners []*Player) {
	share := amount / int64(len(winners))
	remainder := amount % int64(len(winners))
	for i, w := range winners {
		payout := share
		if i == 0 {
			payout += remainder
		}
		w.Stack += payout
	}
}

// potWinners returns the eligible players tied for the best hand, in seat
// order as supplied by the pot builder.
func potWinners(pot Pot) []*Player {
	hands := make([]HandValue, len(pot.Eligible))
	for i, p := range pot.Eligible {
		hands[i] = *p.HandValue
	}
	best := BestOf(hands)
	winners := make([]*Player, len(best))
	for i, idx := range best {
		winners[i] = pot.Eligible[idx]
	}
	return winners
}

// settleUncontested awards the whole pot to the only player left in the
// hand. No cards are evaluated.
func settleUncontested(survivor *Player, pot int64) *HandResult {
	survivor.Stack += pot
	return &HandResult{
		Pots:        []PotResult{{Amount: pot, Winners: []*Player{survivor}}},
		Uncontested: true,
	}
}
