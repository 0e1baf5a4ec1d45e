package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handFromString builds a hand from "S<ranks>H<ranks>D<ranks>C<ranks>".
func handFromString(t *testing.T, s string) Hand {
	t.Helper()
	var hand Hand
	suit := Spades
	for _, ch := range s {
		switch ch {
		case 'S':
			suit = Spades
		case 'H':
			suit = Hearts
		case 'D':
			suit = Diamonds
		case 'C':
			suit = Clubs
		default:
			hand = append(hand, Card{Suit: suit, Rank: rankFromChar(t, ch)})
		}
	}
	return hand
}

func rankFromChar(t *testing.T, ch rune) Rank {
	t.Helper()
	for r := Two; r <= Ace; r++ {
		if r.String() == string(ch) {
			return r
		}
	}
	t.Fatalf("bad rank %q", ch)
	return 0
}

func TestHandHCPAndSuitCounts(t *testing.T) {
	hand := handFromString(t, "SAKQJHT98D765C432")

	assert.Equal(t, 10, hand.HCP())
	assert.Equal(t, 4, hand.CountSuit(Spades))
	assert.Equal(t, 3, hand.CountSuit(Hearts))
	assert.Equal(t, 3, hand.CountSuit(Diamonds))
	assert.Equal(t, 3, hand.CountSuit(Clubs))
	assert.Equal(t, [4]int{4, 3, 3, 3}, hand.Shape())
	assert.Equal(t, "AKQJ", hand.SuitString(Spades))
}

func TestHandSuitStringKeepsHeldOrder(t *testing.T) {
	hand := Hand{{Hearts, Two}, {Hearts, Ace}, {Hearts, Ten}}
	assert.Equal(t, "2AT", hand.SuitString(Hearts))
	assert.Equal(t, "", hand.SuitString(Spades))

	hand.Sort()
	assert.Equal(t, "AT2", hand.SuitString(Hearts))
}

func TestNewDeckDealsValidPartition(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	d, err := DealFromDeck(deck)
	require.NoError(t, err)
	for _, seat := range Seats {
		assert.Len(t, d.Hand(seat), HandSize)
	}
	// North gets all spades in an unshuffled deck.
	assert.Equal(t, 13, d.Hand(North).CountSuit(Spades))
	assert.Equal(t, 10, d.Hand(North).HCP())
}

func TestDealValidateRejectsDuplicates(t *testing.T) {
	d, err := DealFromDeck(NewDeck())
	require.NoError(t, err)

	d[East][0] = d[North][0]
	err = d.Validate()
	require.ErrorIs(t, err, ErrInvalidDeal)
}

func TestDealValidateRejectsShortHand(t *testing.T) {
	d, err := DealFromDeck(NewDeck())
	require.NoError(t, err)

	d[West] = d[West][:12]
	assert.ErrorIs(t, d.Validate(), ErrInvalidDeal)
}

func TestSeatPartner(t *testing.T) {
	assert.Equal(t, South, North.Partner())
	assert.Equal(t, North, South.Partner())
	assert.Equal(t, West, East.Partner())
	assert.Equal(t, East, West.Partner())
}

func TestBoardDealerRotation(t *testing.T) {
	want := []Seat{South, West, North, East, South, West, North, East}
	for i, seat := range want {
		assert.Equal(t, seat, BoardDealer(i+1), "board %d", i+1)
	}
	assert.Equal(t, South, BoardDealer(17))
}

func TestBoardVulnerabilityTable(t *testing.T) {
	want := map[int]Vulnerability{
		1: VulNone, 2: VulNorthSouth, 3: VulEastWest, 4: VulBoth,
		5: VulNorthSouth, 8: VulNone, 9: VulEastWest, 13: VulBoth,
		16: VulEastWest, 17: VulNone, 18: VulNorthSouth,
	}
	for board, v := range want {
		assert.Equal(t, v, BoardVulnerability(board), "board %d", board)
	}
}

func TestParseHelpers(t *testing.T) {
	seat, err := ParseSeat(" w ")
	require.NoError(t, err)
	assert.Equal(t, West, seat)

	suit, err := ParseSuit("Hearts")
	require.NoError(t, err)
	assert.Equal(t, Hearts, suit)

	v, err := ParseVulnerability("E-W")
	require.NoError(t, err)
	assert.Equal(t, VulEastWest, v)

	_, err = ParseSeat("X")
	assert.Error(t, err)
}
