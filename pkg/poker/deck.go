package poker

import (
	"math/rand"
)

// Deck represents a deck of cards
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a shuffled 52-card deck using the given random number
// generator.
func NewDeck(rng *rand.Rand) *Deck {
	deck := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}

	for _, suit := range suits {
		for _, value := range values {
			deck.cards = append(deck.cards, Card{suit: suit, value: value})
		}
	}

	deck.Shuffle()

	return deck
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// Size returns the number of cards remaining in the deck
func (d *Deck) Size() int {
	return len(d.cards)
}

// remainingCards returns every card not in the exclude set, in fixed order.
// Used to roll out boards for equity estimates.
func remainingCards(exclude []Card) []Card {
	seen := make(map[Card]bool, len(exclude))
	for _, c := range exclude {
		seen[c] = true
	}
	out := make([]Card, 0, 52-len(exclude))
	for _, suit := range suits {
		for _, value := range values {
			c := Card{suit: suit, value: value}
			if !seen[c] {
				out = append(out, c)
			}
		}
	}
	return out
}
