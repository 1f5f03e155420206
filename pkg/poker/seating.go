package poker

// nextSeat returns the first occupied seat strictly after from, scanning
// clockwise with wrap-around, whose player satisfies pred. It returns -1 when
// no seat qualifies after a full lap. from may be -1 to scan from seat 0.
func nextSeat(seats []*Player, from int, pred func(*Player) bool) int {
	n := len(seats)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if p := seats[idx]; p != nil && pred(p) {
			return idx
		}
	}
	return -1
}

// seatsInOrder returns every qualifying seat in clockwise order starting
// strictly after from, each seat at most once. Used for dealing and blind
// assignment.
func seatsInOrder(seats []*Player, from int, pred func(*Player) bool) []int {
	n := len(seats)
	order := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if p := seats[idx]; p != nil && pred(p) {
			order = append(order, idx)
		}
	}
	return order
}

// Common seat predicates.

func anyPlayer(*Player) bool { return true }

func hasChips(p *Player) bool { return p.Stack > 0 }

func canStillAct(p *Player) bool { return p.canAct() }

func inHand(p *Player) bool { return p.live() }
