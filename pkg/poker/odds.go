package poker

import "math/rand"

// oddsIterations is the rollout count behind spectator equity numbers.
// Enough for a stable on-screen percentage, cheap enough to run on every
// street change.
const oddsIterations = 200

// estimateEquity deals random completions of the board and counts how
// often each live hand ends up best. Ties split the win evenly. The
// result is ordered by seat; nil when no hand is live.
func estimateEquity(players []*Player, community []Card, rng *rand.Rand, iters int) []SeatEquity {
	var live []*Player
	for _, p := range players {
		if p.live() && len(p.Hole) == 2 {
			live = append(live, p)
		}
	}
	if len(live) == 0 {
		return nil
	}
	if len(live) == 1 {
		return []SeatEquity{{Seat: live[0].Seat, Win: 1}}
	}

	known := append([]Card(nil), community...)
	for _, p := range live {
		known = append(known, p.Hole...)
	}
	rest := remainingCards(known)
	need := 5 - len(community)

	hands := make([]HandValue, len(live))
	wins := make([]float64, len(live))
	board := make([]Card, 0, 5)

	if need == 0 {
		for i, p := range live {
			hands[i] = EvaluateHand(p.Hole, community)
		}
		best := BestOf(hands)
		for _, idx := range best {
			wins[idx] = 1 / float64(len(best))
		}
		return equityResult(live, wins, 1)
	}

	for it := 0; it < iters; it++ {
		// Partial shuffle: only the cards we are about to deal.
		for i := 0; i < need; i++ {
			j := i + rng.Intn(len(rest)-i)
			rest[i], rest[j] = rest[j], rest[i]
		}
		board = append(board[:0], community...)
		board = append(board, rest[:need]...)
		for i, p := range live {
			hands[i] = EvaluateHand(p.Hole, board)
		}
		best := BestOf(hands)
		share := 1 / float64(len(best))
		for _, idx := range best {
			wins[idx] += share
		}
	}
	return equityResult(live, wins, float64(iters))
}

func equityResult(live []*Player, wins []float64, total float64) []SeatEquity {
	out := make([]SeatEquity, len(live))
	for i, p := range live {
		out[i] = SeatEquity{Seat: p.Seat, Win: wins[i] / total}
	}
	return out
}

func (r *Room) spectatorOdds() []SeatEquity {
	return estimateEquity(r.seatedPlayers(), r.community, r.oddsRng, oddsIterations)
}
