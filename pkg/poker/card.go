package poker

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Value represents a card value
type Value string

const (
	Ace   Value = "A"
	Two   Value = "2"
	Three Value = "3"
	Four  Value = "4"
	Five  Value = "5"
	Six   Value = "6"
	Seven Value = "7"
	Eight Value = "8"
	Nine  Value = "9"
	Ten   Value = "10"
	Jack  Value = "J"
	Queen Value = "Q"
	King  Value = "K"
)

var (
	suits  = []Suit{Spades, Hearts, Diamonds, Clubs}
	values = []Value{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
)

// Card represents a playing card
type Card struct {
	suit  Suit
	value Value
}

// NewCard creates a card with the given suit and value.
func NewCard(suit Suit, value Value) Card {
	return Card{suit: suit, value: value}
}

// Suit returns the card's suit.
func (c Card) Suit() Suit { return c.suit }

// Value returns the card's value.
func (c Card) Value() Value { return c.value }

// String returns a string representation of the card
func (c Card) String() string {
	return string(c.value) + string(c.suit)
}

// CardJSON is the wire form of a card.
type CardJSON struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// MarshalJSON implements json.Marshaler interface for Card
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(CardJSON{
		Suit:  string(c.suit),
		Value: string(c.value),
	})
}

// UnmarshalJSON implements json.Unmarshaler interface for Card
func (c *Card) UnmarshalJSON(data []byte) error {
	var cardJSON CardJSON
	if err := json.Unmarshal(data, &cardJSON); err != nil {
		return err
	}

	switch cardJSON.Suit {
	case "♠", "s", "S":
		c.suit = Spades
	case "♥", "h", "H":
		c.suit = Hearts
	case "♦", "d", "D":
		c.suit = Diamonds
	case "♣", "c", "C":
		c.suit = Clubs
	default:
		return fmt.Errorf("invalid suit: %s", cardJSON.Suit)
	}

	switch cardJSON.Value {
	case "A", "a":
		c.value = Ace
	case "K", "k":
		c.value = King
	case "Q", "q":
		c.value = Queen
	case "J", "j":
		c.value = Jack
	case "10", "T", "t":
		c.value = Ten
	case "9":
		c.value = Nine
	case "8":
		c.value = Eight
	case "7":
		c.value = Seven
	case "6":
		c.value = Six
	case "5":
		c.value = Five
	case "4":
		c.value = Four
	case "3":
		c.value = Three
	case "2":
		c.value = Two
	default:
		return fmt.Errorf("invalid value: %s", cardJSON.Value)
	}

	return nil
}
