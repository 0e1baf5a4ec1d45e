// Package lin encodes boards in the Bridge Base Online LIN line format.
package lin

import (
	"io"
	"strconv"
	"strings"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
)

// FileName is the download name used for exported collections.
const FileName = "bridge_hands.lin"

// ContentType is served with LIN downloads.
const ContentType = "text/plain; charset=utf-8"

// DealerCode maps a dealer to its md prefix digit.
func DealerCode(s bridge.Seat) string {
	switch s {
	case bridge.South:
		return "1"
	case bridge.West:
		return "2"
	case bridge.North:
		return "3"
	case bridge.East:
		return "4"
	}
	return "1"
}

// VulnerabilityCode maps a vulnerability to its sv code.
func VulnerabilityCode(v bridge.Vulnerability) string {
	switch v {
	case bridge.VulNorthSouth:
		return "n"
	case bridge.VulEastWest:
		return "e"
	case bridge.VulBoth:
		return "b"
	}
	return "0"
}

// Hand renders a hand as S..H..D..C.. with ranks in held order.
func Hand(h bridge.Hand) string {
	var sb strings.Builder
	for _, s := range bridge.Suits {
		sb.WriteString(s.Letter())
		sb.WriteString(h.SuitString(s))
	}
	return sb.String()
}

// EncodeBoard renders one board at sequential position n. Both the o field and the
// title use n, and the dealer is the one board n would have.
func EncodeBoard(n int, d bridge.Deal, v bridge.Vulnerability) string {
	num := strconv.Itoa(n)
	var sb strings.Builder
	sb.WriteString("qx|o")
	sb.WriteString(num)
	sb.WriteString("|md|")
	sb.WriteString(DealerCode(bridge.BoardDealer(n)))
	sb.WriteString(Hand(d.Hand(bridge.South)))
	sb.WriteByte(',')
	sb.WriteString(Hand(d.Hand(bridge.West)))
	sb.WriteByte(',')
	sb.WriteString(Hand(d.Hand(bridge.North)))
	sb.WriteString("|rh||ah|Board ")
	sb.WriteString(num)
	sb.WriteString("|sv|")
	sb.WriteString(VulnerabilityCode(v))
	sb.WriteString("|pg||")
	return sb.String()
}

// Encode renders the collection as newline-joined lines without a trailing newline.
// Boards are numbered by position, whatever their stored Number.
func Encode(boards []bridge.Board) string {
	lines := make([]string, len(boards))
	for i, b := range boards {
		lines[i] = EncodeBoard(i+1, b.Deal, b.Vulnerability)
	}
	return strings.Join(lines, "\n")
}

// Write streams the same bytes Encode returns.
func Write(w io.Writer, boards []bridge.Board) error {
	for i, b := range boards {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, EncodeBoard(i+1, b.Deal, b.Vulnerability)); err != nil {
			return err
		}
	}
	return nil
}
