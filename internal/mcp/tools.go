package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/session"
)

// RegisterTools adds all board tools to the MCP server.
func (t *Tools) RegisterTools(s *server.MCPServer) {
	s.AddTool(newSessionTool(), t.handleNewSession)
	s.AddTool(generateTool("add_boards", "Deal new boards and append them to the session. Numbering continues from the last board."), t.handleAddBoards)
	s.AddTool(generateTool("replace_boards", "Deal new boards and replace the whole session with them, numbered from 1."), t.handleReplaceBoards)
	s.AddTool(deleteBoardTool(), t.handleDeleteBoard)
	s.AddTool(moveBoardTool(), t.handleMoveBoard)
	s.AddTool(setVulnerabilityTool(), t.handleSetVulnerability)
	s.AddTool(setPolicyTool(), t.handleSetPolicy)
	s.AddTool(sessionOnlyTool("clear_boards", "Remove every board from the session."), t.handleClearBoards)
	s.AddTool(sessionOnlyTool("list_boards", "Get the session's boards, settings and events since the last call. Read-only."), t.handleListBoards)
	s.AddTool(sessionOnlyTool("export_lin", "Export the session as a BBO LIN file (one line per board). Read-only."), t.handleExportLIN)
}

// --- Tool definitions ---

func sessionIDOption() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Description("Session to act on. Omit to use the most recent session."))
}

func newSessionTool() mcp.Tool {
	return mcp.NewTool("new_session",
		mcp.WithDescription("Open an empty board session and make it the current one."),
		mcp.WithString("policy", mcp.Enum("rotating", "fixed"), mcp.Description("Vulnerability policy. rotating follows the 16-board duplicate table; fixed lets each board be set.")),
		mcp.WithString("default_vulnerability", mcp.Enum("none", "ns", "ew", "both"), mcp.Description("Vulnerability for new boards under the fixed policy")),
	)
}

func generateTool(name, desc string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(desc+" Bounds that are not whole numbers in range are ignored and listed under issues."),
		sessionIDOption(),
		mcp.WithNumber("count", mcp.Description("Number of boards, 1-32. Defaults to the preset's count or the configured default.")),
		mcp.WithString("preset", mcp.Description("Named constraint preset to start from")),
		mcp.WithString("hcp", mcp.Description("Space-separated HCP ranges, e.g. 'N=12:14 S=:10' or 'dealer=15:17 partner=6:'. Seats N/E/S/W, or dealer/partner; do not mix the two.")),
		mcp.WithString("suits", mcp.Description("Space-separated suit-length ranges, e.g. 'N.S=5: E.H=:0' or 'dealer.S=6:6'.")),
	)
}

func deleteBoardTool() mcp.Tool {
	return mcp.NewTool("delete_board",
		mcp.WithDescription("Delete one board. Later boards are renumbered."),
		sessionIDOption(),
		mcp.WithNumber("board", mcp.Required(), mcp.Description("1-based board number")),
	)
}

func moveBoardTool() mcp.Tool {
	return mcp.NewTool("move_board",
		mcp.WithDescription("Move a board to a new position. All boards are renumbered."),
		sessionIDOption(),
		mcp.WithNumber("from", mcp.Required(), mcp.Description("1-based number of the board to move")),
		mcp.WithNumber("to", mcp.Required(), mcp.Description("1-based position to move it to")),
	)
}

func setVulnerabilityTool() mcp.Tool {
	return mcp.NewTool("set_vulnerability",
		mcp.WithDescription("Set one board's vulnerability. Only allowed under the fixed policy."),
		sessionIDOption(),
		mcp.WithNumber("board", mcp.Required(), mcp.Description("1-based board number")),
		mcp.WithString("vulnerability", mcp.Required(), mcp.Enum("none", "ns", "ew", "both")),
	)
}

func setPolicyTool() mcp.Tool {
	return mcp.NewTool("set_policy",
		mcp.WithDescription("Switch the vulnerability policy. Switching to rotating recomputes every board; switching to fixed keeps current values."),
		sessionIDOption(),
		mcp.WithString("policy", mcp.Required(), mcp.Enum("rotating", "fixed")),
		mcp.WithString("default_vulnerability", mcp.Enum("none", "ns", "ew", "both"), mcp.Description("Vulnerability for new boards under fixed")),
	)
}

func sessionOnlyTool(name, desc string) mcp.Tool {
	return mcp.NewTool(name, mcp.WithDescription(desc), sessionIDOption())
}

// --- Tool handlers ---

func (t *Tools) handleNewSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	policy, err := session.ParsePolicy(request.GetString("policy", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s := t.open()
	if request.GetString("policy", "") != "" {
		if err := s.SetPolicy(policy); err != nil {
			return mcp.NewToolResultErrorf("Failed to set policy: %v", err), nil
		}
	}
	if v := request.GetString("default_vulnerability", ""); v != "" {
		vul, err := bridge.ParseVulnerability(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.SetDefaultVulnerability(vul)
	}
	return mcp.NewToolResultText(t.respond(s, nil, "Session "+s.ID()+" is now current.")), nil
}

func (t *Tools) handleAddBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.generate(request, false)
}

func (t *Tools) handleReplaceBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.generate(request, true)
}

func (t *Tools) generate(request mcp.CallToolRequest, replace bool) (*mcp.CallToolResult, error) {
	s, err := t.lookup(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hcp, err := constraint.ParseHCPFlags(strings.Fields(request.GetString("hcp", "")))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid hcp: %v", err), nil
	}
	dist, err := constraint.ParseSuitFlags(strings.Fields(request.GetString("suits", "")))
	if err != nil {
		return mcp.NewToolResultErrorf("Invalid suits: %v", err), nil
	}
	set, presetBoards, err := t.cfg.Resolve(request.GetString("preset", ""), hcp, dist)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fallback := t.cfg.Boards
	if presetBoards > 0 {
		fallback = presetBoards
	}
	count := session.ClampBoardCount(request.GetArguments()["count"], fallback)

	res, diag, err := s.Generate(session.Request{Count: count, Constraints: set, Replace: replace})
	if err != nil {
		var gerr *session.GenerationError
		if errors.As(err, &gerr) {
			return mcp.NewToolResultError(gerr.UserMessage()), nil
		}
		return mcp.NewToolResultErrorf("Failed to generate: %v", err), nil
	}
	msg := fmt.Sprintf("Dealt boards %d-%d.", res.First, res.First+res.Count-1)
	return mcp.NewToolResultText(t.respond(s, diag, msg)), nil
}

func (t *Tools) handleDeleteBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.lookup(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	board := request.GetInt("board", 0)
	if err := s.Delete(board - 1); err != nil {
		return mcp.NewToolResultErrorf("Cannot delete board %d: %v", board, err), nil
	}
	return mcp.NewToolResultText(t.respond(s, nil, "")), nil
}

func (t *Tools) handleMoveBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.lookup(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, to := request.GetInt("from", 0), request.GetInt("to", 0)
	if err := s.Move(from-1, to-1); err != nil {
		return mcp.NewToolResultErrorf("Cannot move board %d to %d: %v", from, to, err), nil
	}
	return mcp.NewToolResultText(t.respond(s, nil, "")), nil
}

func (t *Tools) handleSetVulnerability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.lookup(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	vul, err := bridge.ParseVulnerability(request.GetString("vulnerability", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	board := request.GetInt("board", 0)
	if err := s.SetVulnerability(board-1, vul); err != nil {
		if errors.Is(err, session.ErrFixedPolicyRequired) {
			return mcp.NewToolResultError("The session uses rotating vulnerability. Call set_policy with policy=fixed first."), nil
		}
		return mcp.NewToolResultErrorf("Cannot set board %d: %v", board, err), nil
	}
	return mcp.NewToolResultText(t.respond(s, nil, "")), nil
}

func (t *Tools) handleSetPolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.lookup(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	policy, err := session.ParsePolicy(request.GetString("policy", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if v := request.GetString("default_vulnerability", ""); v != "" {
		vul, err := bridge.ParseVulnerability(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.SetDefaultVulnerability(vul)
	}
	if err := s.SetPolicy(policy); err != nil {
		return mcp.NewToolResultErrorf("Cannot change policy: %v", err), nil
	}
	return mcp.NewToolResultText(t.respond(s, nil, "")), nil
}

func (t *Tools) handleClearBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.lookup(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.Clear(); err != nil {
		return mcp.NewToolResultErrorf("Cannot clear: %v", err), nil
	}
	return mcp.NewToolResultText(t.respond(s, nil, "")), nil
}

func (t *Tools) handleListBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.lookup(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(t.respond(s, nil, "")), nil
}

func (t *Tools) handleExportLIN(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.lookup(request.GetString("session_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.Len() == 0 {
		return mcp.NewToolResultError("The session has no boards to export."), nil
	}
	return mcp.NewToolResultText(s.ExportLIN()), nil
}
