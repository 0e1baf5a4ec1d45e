// Package session owns a board collection and the generation requests that fill it.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/dealer"
	"github.com/peterkuimelis/bridgegen/internal/lin"
	"github.com/peterkuimelis/bridgegen/internal/log"
)

var (
	ErrGenerationInFlight  = errors.New("a generation request is already running")
	ErrFixedPolicyRequired = errors.New("per-board vulnerability can only be set under the fixed policy")
	ErrBoardOutOfRange     = errors.New("board index out of range")
)

// Policy decides how vulnerability is assigned.
type Policy string

const (
	PolicyRotating Policy = "rotating"
	PolicyFixed    Policy = "fixed"
)

// ParsePolicy accepts rotating or fixed. Empty means rotating.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rotating", "standard":
		return PolicyRotating, nil
	case "fixed":
		return PolicyFixed, nil
	}
	return "", fmt.Errorf("unknown vulnerability policy %q", s)
}

// Options configures a new Session.
type Options struct {
	ID                   string
	Policy               Policy
	DefaultVulnerability bridge.Vulnerability
	Orchestrator         *Orchestrator
	Logger               log.EventLogger
}

// Request is one generation request.
type Request struct {
	Count       int
	Constraints constraint.Set
	Replace     bool // clear the collection before appending
}

// Result reports how a generation request ended.
type Result struct {
	First int // number of the first new board
	Count int
	Err   *GenerationError
}

// Session is the single owner of a board collection.
type Session struct {
	mu         sync.Mutex
	id         string
	boards     []bridge.Board
	policy     Policy
	defaultVul bridge.Vulnerability
	generating bool
	lastErr    *GenerationError
	orch       *Orchestrator
	logger     log.EventLogger
}

// New creates an empty session.
func New(opts Options) *Session {
	if opts.Policy == "" {
		opts.Policy = PolicyRotating
	}
	if opts.Logger == nil {
		opts.Logger = log.NewMemoryLogger()
	}
	if opts.Orchestrator == nil {
		opts.Orchestrator = NewOrchestrator(dealer.NewShuffler(0), constraint.DefaultBudget)
	}
	return &Session{
		id:         opts.ID,
		policy:     opts.Policy,
		defaultVul: opts.DefaultVulnerability,
		orch:       opts.Orchestrator,
		logger:     opts.Logger,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Logger() log.EventLogger { return s.logger }

// Start validates the request, clamps its count to [MinBoards, MaxBoards], marks the
// session generating and runs the work on its own goroutine. The returned channel receives exactly one Result. Malformed bounds do
// not fail the request; they come back as diagnostics.
func (s *Session) Start(req Request) (<-chan Result, constraint.Diagnostics, error) {
	pred, diag, err := req.Constraints.Compile()
	if err != nil {
		return nil, nil, err
	}
	req.Count = min(max(req.Count, MinBoards), MaxBoards)

	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, diag, ErrGenerationInFlight
	}
	s.generating = true
	s.lastErr = nil
	start := len(s.boards) + 1
	if req.Replace {
		start = 1
	}
	for _, is := range diag {
		s.logger.Log(log.NewConstraintIgnoredEvent(s.id, is.String()))
	}
	s.logger.Log(log.NewGenerationStartedEvent(s.id, req.Count, req.Replace))
	s.mu.Unlock()

	done := make(chan Result, 1)
	go func() {
		done <- s.run(req, start, pred)
	}()
	return done, diag, nil
}

func (s *Session) run(req Request, start int, pred constraint.Predicate) Result {
	deals, err := s.orch.Generate(start, req.Count, pred)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if err != nil {
		var gerr *GenerationError
		if !errors.As(err, &gerr) {
			gerr = newGenerationError(err)
		}
		s.lastErr = gerr
		s.logger.Log(log.NewGenerationFailedEvent(s.id, gerr.UserMessage()))
		return Result{Err: gerr}
	}

	if req.Replace {
		s.boards = nil
	}
	first := len(s.boards) + 1
	for i, d := range deals {
		n := first + i
		s.boards = append(s.boards, bridge.Board{Number: n, Deal: d, Vulnerability: s.newBoardVulnerability(n)})
	}
	if req.Replace {
		s.logger.Log(log.NewBoardsReplacedEvent(s.id, len(s.boards)))
	} else {
		s.logger.Log(log.NewBoardsAddedEvent(s.id, first, len(deals), len(s.boards)))
	}
	return Result{First: first, Count: len(deals)}
}

// Generate runs a request and waits for it.
func (s *Session) Generate(req Request) (Result, constraint.Diagnostics, error) {
	done, diag, err := s.Start(req)
	if err != nil {
		return Result{}, diag, err
	}
	res := <-done
	if res.Err != nil {
		return res, diag, res.Err
	}
	return res, diag, nil
}

// Add appends count new boards; numbering continues from the collection.
func (s *Session) Add(count int, c constraint.Set) (Result, constraint.Diagnostics, error) {
	return s.Generate(Request{Count: count, Constraints: c})
}

// Replace swaps the collection for count new boards numbered from 1.
func (s *Session) Replace(count int, c constraint.Set) (Result, constraint.Diagnostics, error) {
	return s.Generate(Request{Count: count, Constraints: c, Replace: true})
}

// Generating reports whether a request is in flight.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// LastError returns the failure of the most recent request, if any.
func (s *Session) LastError() *GenerationError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Boards returns a copy of the collection.
func (s *Session) Boards() []bridge.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bridge.Board(nil), s.boards...)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.boards)
}

// Policy returns the vulnerability policy and the default for new boards under fixed.
func (s *Session) Policy() (Policy, bridge.Vulnerability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy, s.defaultVul
}

// Delete removes the board at 0-based index i and renumbers the rest.
func (s *Session) Delete(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	if i < 0 || i >= len(s.boards) {
		return fmt.Errorf("%w: %d", ErrBoardOutOfRange, i)
	}
	s.boards = append(s.boards[:i], s.boards[i+1:]...)
	s.renumber()
	s.logger.Log(log.NewBoardDeletedEvent(s.id, i+1, len(s.boards)))
	return nil
}

// Move takes the board at index from and inserts it at index to, then renumbers.
func (s *Session) Move(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	n := len(s.boards)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d", ErrBoardOutOfRange, from, to)
	}
	if from == to {
		return nil
	}
	b := s.boards[from]
	s.boards = append(s.boards[:from], s.boards[from+1:]...)
	s.boards = append(s.boards[:to], append([]bridge.Board{b}, s.boards[to:]...)...)
	s.renumber()
	s.logger.Log(log.NewBoardMovedEvent(s.id, from+1, to+1, n))
	return nil
}

// SetVulnerability overrides one board's vulnerability. Only allowed under fixed.
func (s *Session) SetVulnerability(i int, v bridge.Vulnerability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	if s.policy != PolicyFixed {
		return ErrFixedPolicyRequired
	}
	if i < 0 || i >= len(s.boards) {
		return fmt.Errorf("%w: %d", ErrBoardOutOfRange, i)
	}
	s.boards[i].Vulnerability = v
	s.logger.Log(log.NewVulnerabilityChangedEvent(s.id, i+1, v.String()))
	return nil
}

// SetPolicy switches policy. Going to rotating recomputes every board; going to fixed
// keeps the current values.
func (s *Session) SetPolicy(p Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	if p != PolicyRotating && p != PolicyFixed {
		return fmt.Errorf("unknown vulnerability policy %q", p)
	}
	s.policy = p
	if p == PolicyRotating {
		for i := range s.boards {
			s.boards[i].Vulnerability = bridge.BoardVulnerability(s.boards[i].Number)
		}
	}
	s.logger.Log(log.NewPolicyChangedEvent(s.id, string(p)))
	return nil
}

// SetDefaultVulnerability sets what new boards get under fixed.
func (s *Session) SetDefaultVulnerability(v bridge.Vulnerability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultVul = v
}

// Clear empties the collection.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutable(); err != nil {
		return err
	}
	s.boards = nil
	s.logger.Log(log.NewBoardsClearedEvent(s.id))
	return nil
}

// ExportLIN encodes the collection.
func (s *Session) ExportLIN() string {
	return lin.Encode(s.Boards())
}

// mutable rejects collection edits while generation is in flight, so the numbering a
// request was bound to stays valid until it commits. Callers hold s.mu.
func (s *Session) mutable() error {
	if s.generating {
		return ErrGenerationInFlight
	}
	return nil
}

func (s *Session) renumber() {
	for i := range s.boards {
		s.boards[i].Number = i + 1
		if s.policy == PolicyRotating {
			s.boards[i].Vulnerability = bridge.BoardVulnerability(i + 1)
		}
	}
}

func (s *Session) newBoardVulnerability(n int) bridge.Vulnerability {
	if s.policy == PolicyFixed {
		return s.defaultVul
	}
	return bridge.BoardVulnerability(n)
}
