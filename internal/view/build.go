// Package view builds the JSON shapes served by the HTTP, websocket and MCP surfaces.
package view

import (
	"fmt"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/lin"
	"github.com/peterkuimelis/bridgegen/internal/log"
	"github.com/peterkuimelis/bridgegen/internal/session"
)

// BuildSessionView snapshots a session.
func BuildSessionView(s *session.Session) *SessionView {
	policy, def := s.Policy()
	boards := s.Boards()
	sv := &SessionView{
		ID:                   s.ID(),
		Policy:               string(policy),
		DefaultVulnerability: def.String(),
		Generating:           s.Generating(),
		Boards:               make([]BoardView, len(boards)),
	}
	if err := s.LastError(); err != nil {
		sv.Error = err.UserMessage()
	}
	for i, b := range boards {
		sv.Boards[i] = BuildBoardView(i+1, b)
	}
	return sv
}

// BuildBoardView describes the board at sequential position n.
func BuildBoardView(n int, b bridge.Board) BoardView {
	bv := BoardView{
		Number:        n,
		Title:         fmt.Sprintf("Board %d", n),
		Dealer:        bridge.BoardDealer(n).String(),
		Vulnerability: b.Vulnerability.String(),
		VulLabel:      b.Vulnerability.Label(),
		Hands:         make(map[string]HandView, len(bridge.Seats)),
		LIN:           lin.EncodeBoard(n, b.Deal, b.Vulnerability),
	}
	for _, seat := range bridge.Seats {
		bv.Hands[seat.Letter()] = BuildHandView(b.Deal.Hand(seat))
	}
	return bv
}

// BuildHandView renders one hand; a void shows as "-".
func BuildHandView(h bridge.Hand) HandView {
	suit := func(s bridge.Suit) string {
		if r := h.SuitString(s); r != "" {
			return r
		}
		return "-"
	}
	shape := h.Shape()
	return HandView{
		Spades:   suit(bridge.Spades),
		Hearts:   suit(bridge.Hearts),
		Diamonds: suit(bridge.Diamonds),
		Clubs:    suit(bridge.Clubs),
		HCP:      h.HCP(),
		Shape:    fmt.Sprintf("%d-%d-%d-%d", shape[0], shape[1], shape[2], shape[3]),
	}
}

// BuildEventView converts a logged event.
func BuildEventView(e log.SessionEvent) *EventView {
	return &EventView{
		Seq:     e.Seq,
		Type:    e.Type.String(),
		Board:   e.Board,
		Count:   e.Count,
		Details: e.Details,
	}
}

// BuildIssueViews converts compile diagnostics.
func BuildIssueViews(diag constraint.Diagnostics) []IssueView {
	if len(diag) == 0 {
		return nil
	}
	out := make([]IssueView, len(diag))
	for i, is := range diag {
		out[i] = IssueView{Field: is.Field, Value: is.Value, Reason: is.Reason}
	}
	return out
}
