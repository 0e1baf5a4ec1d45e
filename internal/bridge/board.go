package bridge

// Dealer rotation starts with South on board 1 and moves clockwise.
var dealerCycle = [4]Seat{South, West, North, East}

// vulnerabilityCycle is the standard 16-board duplicate table, indexed by (board-1)%16.
var vulnerabilityCycle = [16]Vulnerability{
	VulNone, VulNorthSouth, VulEastWest, VulBoth,
	VulNorthSouth, VulEastWest, VulBoth, VulNone,
	VulEastWest, VulBoth, VulNone, VulNorthSouth,
	VulBoth, VulNone, VulNorthSouth, VulEastWest,
}

// BoardDealer returns the dealer for a 1-based board number.
func BoardDealer(board int) Seat {
	return dealerCycle[cycleIndex(board, len(dealerCycle))]
}

// BoardVulnerability returns the rotating vulnerability for a 1-based board number.
func BoardVulnerability(board int) Vulnerability {
	return vulnerabilityCycle[cycleIndex(board, len(vulnerabilityCycle))]
}

func cycleIndex(board, period int) int {
	i := (board - 1) % period
	if i < 0 {
		i += period
	}
	return i
}

// Board is a numbered deal with its vulnerability. The dealer follows from Number.
type Board struct {
	Number        int
	Deal          Deal
	Vulnerability Vulnerability
}

// Dealer returns the board's dealer.
func (b Board) Dealer() Seat {
	return BoardDealer(b.Number)
}
