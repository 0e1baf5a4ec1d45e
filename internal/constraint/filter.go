package constraint

import (
	"fmt"
	"sort"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
)

// FilterKind tags the variant of a compiled Filter.
type FilterKind int

const (
	FilterNoOp FilterKind = iota
	FilterPerSeat
	FilterRelativeToDealer
)

func (k FilterKind) String() string {
	switch k {
	case FilterPerSeat:
		return "per_seat"
	case FilterRelativeToDealer:
		return "relative_to_dealer"
	default:
		return "none"
	}
}

// Role names the seat a check applies to.
type Role int

const (
	RoleSeat Role = iota // an absolute compass seat
	RoleDealer
	RolePartner
)

func (r Role) String() string {
	switch r {
	case RoleDealer:
		return "dealer"
	case RolePartner:
		return "partner"
	default:
		return "seat"
	}
}

// Metric is what a check measures in a hand.
type Metric int

const (
	MetricHCP Metric = iota
	MetricSuitLength
)

// Check is one active bound on one hand.
type Check struct {
	Role   Role
	Seat   bridge.Seat // used when Role == RoleSeat
	Metric Metric
	Suit   bridge.Suit // used when Metric == MetricSuitLength
	Range  Range
}

func (c Check) String() string {
	who := c.Role.String()
	if c.Role == RoleSeat {
		who = c.Seat.Letter()
	}
	what := "hcp"
	if c.Metric == MetricSuitLength {
		what = c.Suit.Letter()
	}
	return fmt.Sprintf("%s.%s=%s", who, what, c.Range)
}

// BoardContext carries the per-board facts a relative filter binds to.
type BoardContext struct {
	Board  int
	Dealer bridge.Seat
}

// NewBoardContext resolves the dealer for a board number.
func NewBoardContext(board int) *BoardContext {
	return &BoardContext{Board: board, Dealer: bridge.BoardDealer(board)}
}

// Filter is a compiled constraint class. The zero value accepts everything.
type Filter struct {
	Kind   FilterKind
	Checks []Check
}

// Active reports whether the filter can reject anything.
func (f Filter) Active() bool {
	return f.Kind != FilterNoOp && len(f.Checks) > 0
}

// CapsSuitAtZero reports whether any check demands a void.
func (f Filter) CapsSuitAtZero() bool {
	for _, c := range f.Checks {
		if c.Metric == MetricSuitLength && c.Range.HasMax && c.Range.Max == 0 {
			return true
		}
	}
	return false
}

// Accepts evaluates the filter against a deal. Relative checks resolve their seat from
// bc; without a context they reject every deal.
func (f Filter) Accepts(d bridge.Deal, bc *BoardContext) bool {
	if !f.Active() {
		return true
	}
	for _, c := range f.Checks {
		seat, ok := c.seat(bc)
		if !ok {
			return false
		}
		hand := d.Hand(seat)
		var v int
		switch c.Metric {
		case MetricHCP:
			v = hand.HCP()
		case MetricSuitLength:
			v = hand.CountSuit(c.Suit)
		}
		if !c.Range.Contains(v) {
			return false
		}
	}
	return true
}

func (c Check) seat(bc *BoardContext) (bridge.Seat, bool) {
	switch c.Role {
	case RoleDealer:
		if bc == nil {
			return 0, false
		}
		return bc.Dealer, true
	case RolePartner:
		if bc == nil {
			return 0, false
		}
		return bc.Dealer.Partner(), true
	}
	return c.Seat, true
}

// CompileHCP turns an HCP set into a filter. Ignored entries are returned as issues.
func CompileHCP(set HCPSet) (Filter, Diagnostics, error) {
	mode, err := ParseMode(string(set.Mode))
	if err != nil {
		return Filter{}, nil, err
	}

	var checks []Check
	var issues Diagnostics
	switch mode {
	case ModePerSeat:
		for key, raw := range set.Seats {
			seat, err := bridge.ParseSeat(key)
			if err != nil {
				issues = append(issues, Issue{Field: "hcp." + key, Value: key, Reason: "unknown seat"})
				continue
			}
			r, is := ParseRange("hcp."+seat.Letter(), raw, HCPCeiling)
			issues = append(issues, is...)
			if r.Active() {
				checks = append(checks, Check{Role: RoleSeat, Seat: seat, Metric: MetricHCP, Range: r})
			}
		}
	case ModeRelativeToDealer:
		for _, role := range []Role{RoleDealer, RolePartner} {
			raw := set.Dealer
			if role == RolePartner {
				raw = set.Partner
			}
			r, is := ParseRange("hcp."+role.String(), raw, HCPCeiling)
			issues = append(issues, is...)
			if r.Active() {
				checks = append(checks, Check{Role: role, Metric: MetricHCP, Range: r})
			}
		}
	}
	return newFilter(mode, checks), issues, nil
}

// CompileDistribution turns a suit-length set into a filter.
func CompileDistribution(set DistributionSet) (Filter, Diagnostics, error) {
	mode, err := ParseMode(string(set.Mode))
	if err != nil {
		return Filter{}, nil, err
	}

	var checks []Check
	var issues Diagnostics
	switch mode {
	case ModePerSeat:
		for key, suits := range set.Seats {
			seat, err := bridge.ParseSeat(key)
			if err != nil {
				issues = append(issues, Issue{Field: "dist." + key, Value: key, Reason: "unknown seat"})
				continue
			}
			cs, is := compileSuits("dist."+seat.Letter(), Check{Role: RoleSeat, Seat: seat}, suits)
			checks = append(checks, cs...)
			issues = append(issues, is...)
		}
	case ModeRelativeToDealer:
		cs, is := compileSuits("dist.dealer", Check{Role: RoleDealer}, set.Dealer)
		checks = append(checks, cs...)
		issues = append(issues, is...)
		cs, is = compileSuits("dist.partner", Check{Role: RolePartner}, set.Partner)
		checks = append(checks, cs...)
		issues = append(issues, is...)
	}
	return newFilter(mode, checks), issues, nil
}

func compileSuits(prefix string, base Check, suits SuitRanges) ([]Check, []Issue) {
	var checks []Check
	var issues []Issue
	for key, raw := range suits {
		suit, err := bridge.ParseSuit(key)
		if err != nil {
			issues = append(issues, Issue{Field: prefix + "." + key, Value: key, Reason: "unknown suit"})
			continue
		}
		r, is := ParseRange(prefix+"."+suit.Letter(), raw, SuitLengthCeiling)
		issues = append(issues, is...)
		if r.Active() {
			c := base
			c.Metric = MetricSuitLength
			c.Suit = suit
			c.Range = r
			checks = append(checks, c)
		}
	}
	return checks, issues
}

// newFilter collapses a set with no active checks to the no-op filter and orders checks
// deterministically.
func newFilter(mode Mode, checks []Check) Filter {
	if len(checks) == 0 {
		return Filter{Kind: FilterNoOp}
	}
	sort.Slice(checks, func(i, j int) bool {
		a, b := checks[i], checks[j]
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if a.Seat != b.Seat {
			return a.Seat < b.Seat
		}
		return a.Suit < b.Suit
	})
	kind := FilterPerSeat
	if mode == ModeRelativeToDealer {
		kind = FilterRelativeToDealer
	}
	return Filter{Kind: kind, Checks: checks}
}

// Predicate ANDs the HCP and distribution filters for one generation call, bound to a
// board when either filter is dealer-relative.
type Predicate struct {
	HCP          Filter
	Distribution Filter
	Board        *BoardContext
}

// Relative reports whether the predicate depends on the board's dealer.
func (p Predicate) Relative() bool {
	return p.HCP.Kind == FilterRelativeToDealer || p.Distribution.Kind == FilterRelativeToDealer
}

// NoOp reports whether the predicate accepts every deal.
func (p Predicate) NoOp() bool {
	return !p.HCP.Active() && !p.Distribution.Active()
}

// ForBoard returns a copy bound to the given board's dealer.
func (p Predicate) ForBoard(board int) Predicate {
	p.Board = NewBoardContext(board)
	return p
}

// Accept is the dealer-facing predicate.
func (p Predicate) Accept(d bridge.Deal) bool {
	return p.HCP.Accepts(d, p.Board) && p.Distribution.Accepts(d, p.Board)
}
