package view

import "github.com/peterkuimelis/bridgegen/internal/constraint"

// Message types for the JSON surfaces (HTTP, websocket and MCP tool results).

// --- Server → Client messages ---

// ServerMessage is the envelope for all websocket pushes.
type ServerMessage struct {
	Type string `json:"type"`

	// For "session"
	Session *SessionView `json:"session,omitempty"`

	// For "event"
	Event *EventView `json:"event,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// EventView is a session event for clients.
type EventView struct {
	Seq     int    `json:"seq"`
	Type    string `json:"type"`
	Board   int    `json:"board,omitempty"`
	Count   int    `json:"count,omitempty"`
	Details string `json:"details"`
}

// SessionView is the whole collection plus its settings.
type SessionView struct {
	ID                   string      `json:"id"`
	Policy               string      `json:"policy"`
	DefaultVulnerability string      `json:"default_vulnerability"`
	Generating           bool        `json:"generating"`
	Error                string      `json:"error,omitempty"`
	Boards               []BoardView `json:"boards"`
	Issues               []IssueView `json:"issues,omitempty"`
}

// BoardView describes one numbered board.
type BoardView struct {
	Number        int                 `json:"number"`
	Title         string              `json:"title"` // "Board N"
	Dealer        string              `json:"dealer"`
	Vulnerability string              `json:"vulnerability"`
	VulLabel      string              `json:"vulnerability_label"`
	Hands         map[string]HandView `json:"hands"` // keyed by seat letter
	LIN           string              `json:"lin"`
}

// HandView shows one seat's cards by suit.
type HandView struct {
	Spades   string `json:"spades"`
	Hearts   string `json:"hearts"`
	Diamonds string `json:"diamonds"`
	Clubs    string `json:"clubs"`
	HCP      int    `json:"hcp"`
	Shape    string `json:"shape"` // e.g. "4-3-3-3" in S-H-D-C order
}

// IssueView is an ignored constraint entry.
type IssueView struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// --- Client → Server messages ---

// GenerateRequest asks for boards. Count may be a number or a numeric string.
type GenerateRequest struct {
	Count        any                        `json:"count"`
	Replace      bool                       `json:"replace,omitempty"`
	Preset       string                     `json:"preset,omitempty"` // applied before HCP and Distribution
	HCP          constraint.HCPSet          `json:"hcp"`
	Distribution constraint.DistributionSet `json:"distribution"`
}

// MoveRequest reorders boards by 1-based number.
type MoveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// VulnerabilityRequest sets one board's vulnerability.
type VulnerabilityRequest struct {
	Vulnerability string `json:"vulnerability"`
}

// PolicyRequest switches the vulnerability policy.
type PolicyRequest struct {
	Policy               string `json:"policy"`
	DefaultVulnerability string `json:"default_vulnerability,omitempty"`
}
