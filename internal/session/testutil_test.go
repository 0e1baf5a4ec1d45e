package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/constraint"
	"github.com/peterkuimelis/bridgegen/internal/dealer"
	"github.com/peterkuimelis/bridgegen/internal/log"
)

var errDealerBroken = errors.New("dealer broken")

// scriptedDealer records every request and delegates to a seeded shuffler. It can be
// told to fail, or to block until released.
type scriptedDealer struct {
	mu       sync.Mutex
	requests []dealer.Request
	inner    *dealer.Shuffler
	err      error
	gate     chan struct{}
	entered  chan struct{}
}

func newScriptedDealer(seed int64) *scriptedDealer {
	return &scriptedDealer{inner: dealer.NewShuffler(seed)}
}

func (d *scriptedDealer) Deal(req dealer.Request) ([]bridge.Deal, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	gate, entered, err := d.gate, d.entered, d.err
	d.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return d.inner.Deal(req)
}

func (d *scriptedDealer) Requests() []dealer.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]dealer.Request(nil), d.requests...)
}

func (d *scriptedDealer) fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// block makes the next calls wait until the returned release func runs. The returned
// channel fires when a call has entered the dealer.
func (d *scriptedDealer) block() (entered <-chan struct{}, release func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gate = make(chan struct{})
	d.entered = make(chan struct{}, 64)
	gate := d.gate
	return d.entered, func() { close(gate) }
}

type fixture struct {
	session *Session
	dealer  *scriptedDealer
	log     *log.MemoryLogger
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	d := newScriptedDealer(99)
	l := log.NewMemoryLogger()
	s := New(Options{
		ID:           "test",
		Policy:       policy,
		Orchestrator: NewOrchestrator(d, constraint.DefaultBudget),
		Logger:       l,
	})
	return &fixture{session: s, dealer: d, log: l}
}

func (f *fixture) add(t *testing.T, n int) {
	t.Helper()
	_, _, err := f.session.Add(n, constraint.Set{})
	require.NoError(t, err)
}

func hcpAtLeast(seat string, min int) constraint.Set {
	return constraint.Set{HCP: constraint.HCPSet{
		Mode:  constraint.ModePerSeat,
		Seats: map[string]constraint.RawRange{seat: {Min: min}},
	}}
}
