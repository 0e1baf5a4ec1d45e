// Package dealer draws random bridge deals and filters them by rejection sampling.
package dealer

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/metrics"
)

// ErrBudgetExhausted reports that no deal passed the filter within the attempt ceiling.
var ErrBudgetExhausted = errors.New("failed to generate a deal within the attempt budget")

// DefaultMaxAttempts applies when a request leaves MaxAttempts at zero.
const DefaultMaxAttempts = 5000

// Request asks for Count deals accepted by Accept. MaxAttempts bounds the draws
// spent on each deal.
type Request struct {
	Count       int
	Accept      func(bridge.Deal) bool
	MaxAttempts int
}

// Dealer returns Count accepted deals or fails without partial results.
type Dealer interface {
	Deal(req Request) ([]bridge.Deal, error)
}

// Shuffler is the default Dealer. Each attempt is an independent uniform shuffle.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler creates a Shuffler seeded with seed, or from the clock when seed is 0.
func NewShuffler(seed int64) *Shuffler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Shuffler{rng: rand.New(rand.NewSource(seed))}
}

// Deal implements Dealer.
func (s *Shuffler) Deal(req Request) ([]bridge.Deal, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("deal count must be positive, got %d", req.Count)
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deck := bridge.NewDeck()
	deals := make([]bridge.Deal, 0, req.Count)
	for len(deals) < req.Count {
		d, ok := s.sample(deck, req.Accept, maxAttempts)
		if !ok {
			return nil, fmt.Errorf("%w (%d attempts, deal %d of %d)", ErrBudgetExhausted, maxAttempts, len(deals)+1, req.Count)
		}
		deals = append(deals, d)
	}
	return deals, nil
}

func (s *Shuffler) sample(deck []bridge.Card, accept func(bridge.Deal) bool, maxAttempts int) (bridge.Deal, bool) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		metrics.DealAttempts.Inc()

		d := split(deck)
		if accept == nil || accept(d) {
			metrics.DealsAccepted.Inc()
			return d, true
		}
	}
	return bridge.Deal{}, false
}

// split copies the shuffled deck into four sorted hands.
func split(deck []bridge.Card) bridge.Deal {
	var d bridge.Deal
	for i, seat := range bridge.Seats {
		hand := make(bridge.Hand, bridge.HandSize)
		copy(hand, deck[i*bridge.HandSize:(i+1)*bridge.HandSize])
		hand.Sort()
		d[seat] = hand
	}
	return d
}
