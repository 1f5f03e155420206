package poker

import (
	"github.com/chehsunliu/poker"
)

// HandRank represents the category of a poker hand
type HandRank int

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the category name.
func (r HandRank) String() string {
	switch r {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return "Straight Flush"
	case FourOfAKind:
		return "Four of a Kind"
	case FullHouse:
		return "Full House"
	case Flush:
		return "Flush"
	case Straight:
		return "Straight"
	case ThreeOfAKind:
		return "Three of a Kind"
	case TwoPair:
		return "Two Pair"
	case Pair:
		return "Pair"
	default:
		return "High Card"
	}
}

// HandValue is a complete evaluation of a hand. RankValue carries the full
// tiebreak ordering; lower is better in the chehsunliu library, and
// CompareHands hides that inversion from callers.
type HandValue struct {
	Rank            HandRank
	RankValue       int
	BestHand        []Card // the 5 cards making up the best hand
	HandDescription string
}

// convertCard converts our Card type to the chehsunliu/poker card type.
func convertCard(card Card) poker.Card {
	var rankChar byte
	switch card.value {
	case Ten:
		rankChar = 'T'
	default:
		rankChar = card.value[0]
	}

	var suitChar byte
	switch card.suit {
	case Spades:
		suitChar = 's'
	case Hearts:
		suitChar = 'h'
	case Diamonds:
		suitChar = 'd'
	default:
		suitChar = 'c'
	}

	return poker.NewCard(string([]byte{rankChar, suitChar}))
}

// convertRankClass converts a chehsunliu rank class to our HandRank. Rank
// value 1 is the royal flush.
func convertRankClass(rankClass int32, rankValue int32) HandRank {
	switch rankClass {
	case 1:
		if rankValue == 1 {
			return RoyalFlush
		}
		return StraightFlush
	case 2:
		return FourOfAKind
	case 3:
		return FullHouse
	case 4:
		return Flush
	case 5:
		return Straight
	case 6:
		return ThreeOfAKind
	case 7:
		return TwoPair
	case 8:
		return Pair
	default:
		return HighCard
	}
}

// EvaluateHand evaluates a player's best 5-card hand from their hole cards
// and the community cards. It accepts 5 to 7 cards total.
func EvaluateHand(holeCards []Card, communityCards []Card) HandValue {
	allCards := append([]Card{}, holeCards...)
	allCards = append(allCards, communityCards...)

	converted := make([]poker.Card, len(allCards))
	for i, card := range allCards {
		converted[i] = convertCard(card)
	}

	rank := poker.Evaluate(converted)
	rankClass := poker.RankClass(rank)

	return HandValue{
		Rank:            convertRankClass(rankClass, rank),
		RankValue:       int(rank),
		BestHand:        bestFiveCards(allCards, rank),
		HandDescription: poker.RankString(rank),
	}
}

// bestFiveCards returns the 5-card subset achieving the given rank.
func bestFiveCards(cards []Card, want int32) []Card {
	if len(cards) <= 5 {
		return cards
	}

	var best []Card
	forEachFive(cards, func(combo []Card) bool {
		converted := make([]poker.Card, 5)
		for i, card := range combo {
			converted[i] = convertCard(card)
		}
		if poker.Evaluate(converted) == want {
			best = append([]Card{}, combo...)
			return true
		}
		return false
	})
	return best
}

// forEachFive visits every 5-card combination of cards until visit returns
// true.
func forEachFive(cards []Card, visit func([]Card) bool) {
	n := len(cards)
	combo := make([]Card, 5)
	var walk func(start, depth int) bool
	walk = func(start, depth int) bool {
		if depth == 5 {
			return visit(combo)
		}
		for i := start; i <= n-(5-depth); i++ {
			combo[depth] = cards[i]
			if walk(i+1, depth+1) {
				return true
			}
		}
		return false
	}
	walk(0, 0)
}

// CompareHands compares two hand values and returns 1 if handA is better,
// -1 if handA is worse, and 0 on an exact tie. The chehsunliu rank already
// encodes all kickers, so equal rank values are true ties.
func CompareHands(handA, handB HandValue) int {
	switch {
	case handA.RankValue < handB.RankValue:
		return 1
	case handA.RankValue > handB.RankValue:
		return -1
	default:
		return 0
	}
}

// BestOf returns the indexes of the hands tied for best, preserving input
// order.
func BestOf(hands []HandValue) []int {
	if len(hands) == 0 {
		return nil
	}
	best := []int{0}
	for i := 1; i < len(hands); i++ {
		switch CompareHands(hands[i], hands[best[0]]) {
		case 1:
			best = []int{i}
		case 0:
			best = append(best, i)
		}
	}
	return best
}
