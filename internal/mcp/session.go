package mcp

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/bridgegen/internal/config"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/dealer"
	"github.com/peterkuimelis/bridgegen/internal/session"
	"github.com/peterkuimelis/bridgegen/internal/view"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Session *view.SessionView `json:"session,omitempty"`
	Events  []view.EventView  `json:"events"`
	Issues  []view.IssueView  `json:"issues,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Tools holds the sessions driven over one MCP connection. The first session is
// created on demand and used whenever a tool omits session_id.
type Tools struct {
	cfg      *config.Config
	registry *session.Registry

	mu      sync.Mutex
	current string
	cursors map[string]int // last event seq reported per session
}

// NewTools builds the tool set. All sessions share one seeded dealer.
func NewTools(cfg *config.Config) *Tools {
	orch := session.NewOrchestrator(dealer.NewShuffler(cfg.Seed), cfg.Budget)
	return &Tools{
		cfg: cfg,
		registry: session.NewRegistry(func() session.Options {
			opts := cfg.SessionOptions()
			opts.Orchestrator = orch
			return opts
		}),
		cursors: make(map[string]int),
	}
}

// lookup resolves id, falling back to the current session and creating it if needed.
func (t *Tools) lookup(id string) (*session.Session, error) {
	if id != "" {
		return t.registry.Get(id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != "" {
		if s, err := t.registry.Get(t.current); err == nil {
			return s, nil
		}
	}
	s := t.registry.Create()
	t.current = s.ID()
	return s, nil
}

func (t *Tools) open() *session.Session {
	s := t.registry.Create()
	t.mu.Lock()
	t.current = s.ID()
	t.mu.Unlock()
	return s
}

// drainEvents returns the events logged since the previous response for s.
func (t *Tools) drainEvents(s *session.Session) []view.EventView {
	t.mu.Lock()
	defer t.mu.Unlock()
	after := t.cursors[s.ID()]
	events := []view.EventView{}
	for _, e := range s.Logger().Events() {
		if e.Seq <= after {
			continue
		}
		events = append(events, *view.BuildEventView(e))
		after = e.Seq
	}
	t.cursors[s.ID()] = after
	return events
}

func (t *Tools) respond(s *session.Session, diag constraint.Diagnostics, msg string) string {
	return respondJSON(&ToolResponse{
		Session: view.BuildSessionView(s),
		Events:  t.drainEvents(s),
		Issues:  view.BuildIssueViews(diag),
		Message: msg,
	})
}

func respondJSON(resp *ToolResponse) string {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal: %s"}`, err)
	}
	return string(data)
}
