package bridge

import (
	"errors"
	"fmt"
	"sort"
)

const (
	DeckSize = 52
	HandSize = 13

	// MaxHCP is the most high-card points a single hand can hold.
	MaxHCP = 37
)

var ErrInvalidDeal = errors.New("invalid deal")

// Hand is the cards held by one seat. Order is the order the cards were dealt.
type Hand []Card

// HCP returns the hand's high-card points.
func (h Hand) HCP() int {
	total := 0
	for _, c := range h {
		total += c.Rank.HCP()
	}
	return total
}

// CountSuit returns how many cards of the suit the hand holds.
func (h Hand) CountSuit(s Suit) int {
	n := 0
	for _, c := range h {
		if c.Suit == s {
			n++
		}
	}
	return n
}

// Ranks returns the ranks held in the suit, in hand order.
func (h Hand) Ranks(s Suit) []Rank {
	var out []Rank
	for _, c := range h {
		if c.Suit == s {
			out = append(out, c.Rank)
		}
	}
	return out
}

// SuitString renders the ranks held in a suit, e.g. "AKT2". Empty for a void.
func (h Hand) SuitString(s Suit) string {
	b := make([]byte, 0, HandSize)
	for _, r := range h.Ranks(s) {
		b = append(b, r.String()...)
	}
	return string(b)
}

// Shape returns the suit lengths in S, H, D, C order.
func (h Hand) Shape() [4]int {
	var shape [4]int
	for _, c := range h {
		shape[c.Suit]++
	}
	return shape
}

// Sort orders the hand by suit (S, H, D, C) and descending rank.
func (h Hand) Sort() {
	sort.Slice(h, func(i, j int) bool {
		if h[i].Suit != h[j].Suit {
			return h[i].Suit < h[j].Suit
		}
		return h[i].Rank > h[j].Rank
	})
}

// Deal maps every seat to its hand.
type Deal [4]Hand

// Hand returns the hand held by the seat.
func (d Deal) Hand(s Seat) Hand {
	return d[s]
}

// Validate checks the four hands partition the deck into 13-card hands.
func (d Deal) Validate() error {
	seen := make(map[Card]Seat, DeckSize)
	for _, seat := range Seats {
		hand := d[seat]
		if len(hand) != HandSize {
			return fmt.Errorf("%w: %s holds %d cards", ErrInvalidDeal, seat, len(hand))
		}
		for _, c := range hand {
			if c.Rank < Two || c.Rank > Ace || c.Suit < Spades || c.Suit > Clubs {
				return fmt.Errorf("%w: %s holds unknown card %v", ErrInvalidDeal, seat, c)
			}
			if owner, dup := seen[c]; dup {
				return fmt.Errorf("%w: %s held by both %s and %s", ErrInvalidDeal, c, owner, seat)
			}
			seen[c] = seat
		}
	}
	return nil
}

// NewDeck returns the 52-card deck in suit then rank order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := Ace; r >= Two; r-- {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// DealFromDeck splits a 52-card ordering into hands, 13 consecutive cards per seat
// starting with North.
func DealFromDeck(deck []Card) (Deal, error) {
	if len(deck) != DeckSize {
		return Deal{}, fmt.Errorf("%w: deck has %d cards", ErrInvalidDeal, len(deck))
	}
	var d Deal
	for i, seat := range Seats {
		d[seat] = append(Hand{}, deck[i*HandSize:(i+1)*HandSize]...)
	}
	return d, d.Validate()
}
