package view

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/dealer"
	"github.com/peterkuimelis/bridgegen/internal/log"
	"github.com/peterkuimelis/bridgegen/internal/session"
)

func TestBuildBoardView(t *testing.T) {
	d, err := bridge.DealFromDeck(bridge.NewDeck())
	require.NoError(t, err)

	bv := BuildBoardView(2, bridge.Board{Number: 9, Deal: d, Vulnerability: bridge.VulNorthSouth})
	assert.Equal(t, "Board 2", bv.Title)
	assert.Equal(t, "West", bv.Dealer)
	assert.Equal(t, "ns", bv.Vulnerability)
	assert.Equal(t, "N-S Vul", bv.VulLabel)
	assert.Equal(t, "AKQJT98765432", bv.Hands["N"].Spades)
	assert.Equal(t, "-", bv.Hands["N"].Hearts)
	assert.Equal(t, 10, bv.Hands["N"].HCP)
	assert.Equal(t, "0-0-0-13", bv.Hands["W"].Shape)
	assert.Contains(t, bv.LIN, "qx|o2|md|2")
}

func TestBuildSessionView(t *testing.T) {
	s := session.New(session.Options{
		ID:           "abc",
		Orchestrator: session.NewOrchestrator(dealer.NewShuffler(4), constraint.DefaultBudget),
	})
	_, _, err := s.Add(3, constraint.Set{})
	require.NoError(t, err)

	sv := BuildSessionView(s)
	assert.Equal(t, "abc", sv.ID)
	assert.Equal(t, "rotating", sv.Policy)
	assert.False(t, sv.Generating)
	assert.Empty(t, sv.Error)
	require.Len(t, sv.Boards, 3)
	assert.Equal(t, "North", sv.Boards[2].Dealer)
	assert.Equal(t, "ew", sv.Boards[2].Vulnerability)

	raw, err := json.Marshal(sv)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"default_vulnerability":"none"`)
}

func TestBuildEventAndIssueViews(t *testing.T) {
	ev := BuildEventView(log.SessionEvent{Seq: 3, Type: log.EventBoardDeleted, Board: 2, Details: "deleted board 2"})
	assert.Equal(t, "BoardDeleted", ev.Type)
	assert.Equal(t, 3, ev.Seq)

	assert.Nil(t, BuildIssueViews(nil))
	issues := BuildIssueViews(constraint.Diagnostics{{Field: "hcp.N.min", Value: "x", Reason: "not an integer"}})
	require.Len(t, issues, 1)
	assert.Equal(t, "hcp.N.min", issues[0].Field)
}

func TestGenerateRequestDecodes(t *testing.T) {
	var req GenerateRequest
	body := `{"count":"4","hcp":{"mode":"per_hand","seats":{"N":{"min":"12","max":14}}},
		"distribution":{"mode":"dealer_partner","dealer":{"S":{"max":"0"}}}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, 4, session.ClampBoardCount(req.Count, 1))

	p, diag, err := constraint.Set{HCP: req.HCP, Distribution: req.Distribution}.Compile()
	require.NoError(t, err)
	assert.Empty(t, diag)
	assert.Equal(t, constraint.FilterPerSeat, p.HCP.Kind)
	assert.True(t, p.Distribution.CapsSuitAtZero())
}
