package poker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// seatsFixture builds an 8-seat table with players at the given seats.
func seatsFixture(occupied ...int) []*Player {
	seats := make([]*Player, 8)
	for _, s := range occupied {
		id := fmt.Sprintf("p%d", s)
		seats[s] = newPlayer(id, id, s, 1000)
	}
	return seats
}

func TestNextSeatWraps(t *testing.T) {
	seats := seatsFixture(0, 3, 6)

	require.Equal(t, 3, nextSeat(seats, 0, anyPlayer))
	require.Equal(t, 6, nextSeat(seats, 3, anyPlayer))
	require.Equal(t, 0, nextSeat(seats, 6, anyPlayer))
	// From an empty seat index.
	require.Equal(t, 3, nextSeat(seats, 1, anyPlayer))
	// From -1 the scan starts at seat 0.
	require.Equal(t, 0, nextSeat(seats, -1, anyPlayer))
}

func TestNextSeatSkipsByPredicate(t *testing.T) {
	seats := seatsFixture(0, 1, 2, 3)
	seats[1].Folded = true
	seats[2].AllIn = true

	require.Equal(t, 3, nextSeat(seats, 0, canStillAct))
	require.Equal(t, 0, nextSeat(seats, 3, canStillAct))

	// Folded players stay skipped for pot contention, all-in players do not.
	require.Equal(t, 2, nextSeat(seats, 1, inHand))
}

func TestNextSeatNoneQualify(t *testing.T) {
	require.Equal(t, -1, nextSeat(make([]*Player, 8), 0, anyPlayer))

	seats := seatsFixture(2, 5)
	seats[2].Folded = true
	seats[5].Folded = true
	require.Equal(t, -1, nextSeat(seats, 2, canStillAct))

	// A full wrap also offers the starting seat itself.
	seats[5].Folded = false
	require.Equal(t, 5, nextSeat(seats, 5, canStillAct))
}

func TestSeatsInOrder(t *testing.T) {
	seats := seatsFixture(0, 2, 4, 7)
	seats[4].Stack = 0

	require.Equal(t, []int{2, 7, 0}, seatsInOrder(seats, 0, hasChips))
	require.Equal(t, []int{7, 0, 2}, seatsInOrder(seats, 4, hasChips))
	require.Empty(t, seatsInOrder(seats, 3, func(*Player) bool { return false }))
}
