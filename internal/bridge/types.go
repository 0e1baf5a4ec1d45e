package bridge

import (
	"fmt"
	"strings"
)

// --- Enums ---

type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists the suits in display and LIN order.
var Suits = [4]Suit{Spades, Hearts, Diamonds, Clubs}

func (s Suit) String() string {
	switch s {
	case Spades:
		return "Spades"
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	default:
		return "Unknown"
	}
}

// Letter returns the single-letter suit code (S, H, D, C).
func (s Suit) Letter() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	default:
		return "?"
	}
}

// ParseSuit accepts a suit letter or name, case-insensitively.
func ParseSuit(s string) (Suit, error) {
	switch lower(s) {
	case "s", "spades", "spade":
		return Spades, nil
	case "h", "hearts", "heart":
		return Hearts, nil
	case "d", "diamonds", "diamond":
		return Diamonds, nil
	case "c", "clubs", "club":
		return Clubs, nil
	}
	return 0, fmt.Errorf("unknown suit %q", s)
}

type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r >= Two && r <= Nine {
		return string(rune('0' + int(r)))
	}
	return "?"
}

// HCP returns the Milton Work point value of the rank (A=4, K=3, Q=2, J=1).
func (r Rank) HCP() int {
	switch r {
	case Ace:
		return 4
	case King:
		return 3
	case Queen:
		return 2
	case Jack:
		return 1
	}
	return 0
}

type Seat int

const (
	North Seat = iota
	East
	South
	West
)

// Seats lists the compass seats clockwise from North.
var Seats = [4]Seat{North, East, South, West}

func (s Seat) String() string {
	switch s {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// Letter returns the compass letter (N, E, S, W).
func (s Seat) Letter() string {
	return s.String()[:1]
}

// Partner returns the seat across the table.
func (s Seat) Partner() Seat {
	return (s + 2) % 4
}

// ParseSeat accepts a compass letter or name, case-insensitively.
func ParseSeat(s string) (Seat, error) {
	switch lower(s) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return 0, fmt.Errorf("unknown seat %q", s)
}

type Vulnerability int

const (
	VulNone Vulnerability = iota
	VulNorthSouth
	VulEastWest
	VulBoth
)

func (v Vulnerability) String() string {
	switch v {
	case VulNone:
		return "none"
	case VulNorthSouth:
		return "ns"
	case VulEastWest:
		return "ew"
	case VulBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Label is the human-readable form used on printed boards.
func (v Vulnerability) Label() string {
	switch v {
	case VulNorthSouth:
		return "N-S Vul"
	case VulEastWest:
		return "E-W Vul"
	case VulBoth:
		return "Both Vul"
	default:
		return "None Vul"
	}
}

// ParseVulnerability accepts none/ns/ew/both and a few long forms.
func ParseVulnerability(s string) (Vulnerability, error) {
	switch lower(s) {
	case "none", "0", "-", "":
		return VulNone, nil
	case "ns", "n-s", "north-south", "n":
		return VulNorthSouth, nil
	case "ew", "e-w", "east-west", "e":
		return VulEastWest, nil
	case "both", "all", "b":
		return VulBoth, nil
	}
	return 0, fmt.Errorf("unknown vulnerability %q", s)
}

// --- Cards ---

// Card is an immutable playing card.
type Card struct {
	Suit Suit
	Rank Rank
}

func (c Card) String() string {
	return c.Suit.Letter() + c.Rank.String()
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
