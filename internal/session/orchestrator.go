package session

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/dealer"
	"github.com/peterkuimelis/bridgegen/internal/metrics"
)

// Board count limits for one request.
const (
	MinBoards = 1
	MaxBoards = 32
)

// Cause classifies a generation failure.
type Cause int

const (
	CauseGeneric Cause = iota
	CauseBudget
)

func (c Cause) String() string {
	if c == CauseBudget {
		return "budget"
	}
	return "generic"
}

// Messages shown to users when generation fails.
const (
	BudgetMessage  = `No deal satisfied all constraints in time. Combinations like "0 spades" or "0 diamonds" are very rare. Try loosening (e.g. 1 or fewer), or generate 1 board.`
	GenericMessage = "Failed to generate hands. Try fewer or looser constraints."
)

// GenerationError is the single failure type of a generation request.
type GenerationError struct {
	Cause Cause
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "generation failed (" + e.Cause.String() + ")"
	}
	return "generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UserMessage is the text a surface shows for the failure.
func (e *GenerationError) UserMessage() string {
	if e.Cause == CauseBudget {
		return BudgetMessage
	}
	if e.Err != nil && e.Err.Error() != "" {
		return e.Err.Error()
	}
	return GenericMessage
}

func newGenerationError(err error) *GenerationError {
	if errors.Is(err, dealer.ErrBudgetExhausted) {
		return &GenerationError{Cause: CauseBudget, Err: err}
	}
	return &GenerationError{Cause: CauseGeneric, Err: err}
}

// ClampBoardCount turns a raw board count into [MinBoards, MaxBoards]. Values that are
// not numbers give fallback, itself clamped.
func ClampBoardCount(raw any, fallback int) int {
	n, ok := boardCount(raw)
	if !ok {
		n = fallback
	}
	if n < MinBoards {
		return MinBoards
	}
	if n > MaxBoards {
		return MaxBoards
	}
	return n
}

func boardCount(raw any) (int, bool) {
	switch x := raw.(type) {
	case nil, bool:
		return 0, false
	case string:
		s := strings.TrimSpace(x)
		n, err := strconv.Atoi(s)
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(s, "-") {
				return MinBoards, true
			}
			return MaxBoards, true
		}
		return n, err == nil
	case float64:
		switch {
		case math.IsNaN(x):
			return 0, false
		case x > MaxBoards:
			return MaxBoards, true
		case x < MinBoards:
			return MinBoards, true
		}
		return int(x), true
	}
	n, err := cast.ToIntE(raw)
	return n, err == nil
}

// Orchestrator runs one generation request against a Dealer.
type Orchestrator struct {
	Dealer dealer.Dealer
	Budget constraint.BudgetTable
}

// NewOrchestrator fills missing budget entries from constraint.DefaultBudget.
func NewOrchestrator(d dealer.Dealer, budget constraint.BudgetTable) *Orchestrator {
	return &Orchestrator{Dealer: d, Budget: budget.WithDefaults()}
}

// Generate produces count deals for boards start..start+count-1. Seat-absolute
// predicates take one dealer call; dealer-relative predicates take one call per board,
// each bound to the dealer of the board the deal will occupy. On any failure no deals
// are returned.
func (o *Orchestrator) Generate(start, count int, p constraint.Predicate) ([]bridge.Deal, error) {
	if count < 1 {
		return nil, newGenerationError(fmt.Errorf("board count must be positive, got %d", count))
	}
	begin := time.Now()
	shape := "absolute"
	if p.Relative() {
		shape = "relative"
	}

	deals, err := o.generate(start, count, p)
	metrics.GenerationDuration.WithLabelValues(shape).Observe(time.Since(begin).Seconds())
	if err != nil {
		gerr := newGenerationError(err)
		metrics.Generations.WithLabelValues(gerr.Cause.String()).Inc()
		return nil, gerr
	}
	metrics.Generations.WithLabelValues("ok").Inc()
	return deals, nil
}

func (o *Orchestrator) generate(start, count int, p constraint.Predicate) ([]bridge.Deal, error) {
	budget := o.Budget.EstimateFor(p.HCP, p.Distribution)

	if !p.Relative() {
		req := dealer.Request{Count: count, MaxAttempts: budget}
		if !p.NoOp() {
			req.Accept = p.Accept
		}
		deals, err := o.Dealer.Deal(req)
		if err != nil {
			return nil, err
		}
		if len(deals) != count {
			return nil, fmt.Errorf("dealer returned %d deals, want %d", len(deals), count)
		}
		return deals, nil
	}

	deals := make([]bridge.Deal, 0, count)
	for i := 0; i < count; i++ {
		// Bound to the number the deal will take, so appended boards get their own dealer.
		bound := p.ForBoard(start + i)
		got, err := o.Dealer.Deal(dealer.Request{Count: 1, Accept: bound.Accept, MaxAttempts: budget})
		if err != nil {
			return nil, fmt.Errorf("board %d: %w", start+i, err)
		}
		if len(got) != 1 {
			return nil, fmt.Errorf("board %d: dealer returned %d deals, want 1", start+i, len(got))
		}
		deals = append(deals, got[0])
	}
	return deals, nil
}
