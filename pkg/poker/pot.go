package poker

import (
	"sort"
)

// Pot is one layer of the pot: a chip amount and the players eligible to win
// it. Unequal all-in commitments produce multiple layers with shrinking
// eligibility.
type Pot struct {
	Amount   int64
	Eligible []*Player
}

// buildPots partitions the hand's commitments into main and side pots.
//
// The distinct committed totals form ascending levels. Each level L (with
// predecessor P) contributes L-P chips from every player whose total reaches
// L; those of them who have not folded are eligible for that layer. The pot
// amounts always sum to the total committed.
func buildPots(players []*Player) []Pot {
	levelSet := make(map[int64]bool)
	for _, p := range players {
		if p.Committed > 0 {
			levelSet[p.Committed] = true
		}
	}
	if len(levelSet) == 0 {
		return nil
	}

	levels := make([]int64, 0, len(levelSet))
	for lvl := range levelSet {
		levels = append(levels, lvl)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	pots := make([]Pot, 0, len(levels))
	var prev int64
	for _, lvl := range levels {
		pot := Pot{}
		for _, p := range players {
			if p.Committed < lvl {
				continue
			}
			pot.Amount += lvl - prev
			if !p.Folded {
				pot.Eligible = append(pot.Eligible, p)
			}
		}
		pots = append(pots, pot)
		prev = lvl
	}
	return pots
}

// totalCommitted sums every player's hand-lifetime commitment.
func totalCommitted(players []*Player) int64 {
	var total int64
	for _, p := range players {
		total += p.Committed
	}
	return total
}
