package constraint

import (
	"fmt"
	"strings"
)

// Mode selects the shape of a constraint set.
type Mode string

const (
	ModeNone             Mode = "none"
	ModePerSeat          Mode = "per_seat"
	ModeRelativeToDealer Mode = "relative_to_dealer"
)

// ParseMode accepts the canonical names and the older UI names (per_hand,
// dealer_partner, dealer_only). Empty means none.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "per_seat", "per_hand", "seat":
		return ModePerSeat, nil
	case "relative_to_dealer", "dealer_partner", "dealer_only", "dealer", "relative":
		return ModeRelativeToDealer, nil
	}
	return "", fmt.Errorf("unknown constraint mode %q", s)
}

// SuitRanges maps a suit letter (S, H, D, C) to a raw range.
type SuitRanges map[string]RawRange

// HCPSet is the high-card-point constraint entry.
type HCPSet struct {
	Mode    Mode                `yaml:"mode" json:"mode"`
	Seats   map[string]RawRange `yaml:"seats,omitempty" json:"seats,omitempty"`
	Dealer  RawRange            `yaml:"dealer,omitempty" json:"dealer,omitempty"`
	Partner RawRange            `yaml:"partner,omitempty" json:"partner,omitempty"`
}

// SetMode switches mode and clears every entry, as changing the form does.
func (s *HCPSet) SetMode(m Mode) {
	*s = HCPSet{Mode: m}
}

// SetSeat records a per-seat range.
func (s *HCPSet) SetSeat(seat string, r RawRange) {
	if s.Seats == nil {
		s.Seats = make(map[string]RawRange)
	}
	s.Seats[seat] = r
}

// DistributionSet is the suit-length constraint entry.
type DistributionSet struct {
	Mode    Mode                  `yaml:"mode" json:"mode"`
	Seats   map[string]SuitRanges `yaml:"seats,omitempty" json:"seats,omitempty"`
	Dealer  SuitRanges            `yaml:"dealer,omitempty" json:"dealer,omitempty"`
	Partner SuitRanges            `yaml:"partner,omitempty" json:"partner,omitempty"`
}

// SetMode switches mode and clears every entry.
func (s *DistributionSet) SetMode(m Mode) {
	*s = DistributionSet{Mode: m}
}

// SetSeatSuit records a per-seat suit range.
func (s *DistributionSet) SetSeatSuit(seat, suit string, r RawRange) {
	if s.Seats == nil {
		s.Seats = make(map[string]SuitRanges)
	}
	if s.Seats[seat] == nil {
		s.Seats[seat] = make(SuitRanges)
	}
	s.Seats[seat][suit] = r
}

// SetRoleSuit records a dealer or partner suit range.
func (s *DistributionSet) SetRoleSuit(role Role, suit string, r RawRange) {
	target := &s.Dealer
	if role == RolePartner {
		target = &s.Partner
	}
	if *target == nil {
		*target = make(SuitRanges)
	}
	(*target)[suit] = r
}

// Set is the full constraint entry for one generation request.
type Set struct {
	HCP          HCPSet          `yaml:"hcp" json:"hcp"`
	Distribution DistributionSet `yaml:"distribution" json:"distribution"`
}

// Compile compiles both classes into an unbound predicate.
func (s Set) Compile() (Predicate, Diagnostics, error) {
	hcp, diag, err := CompileHCP(s.HCP)
	if err != nil {
		return Predicate{}, nil, fmt.Errorf("hcp: %w", err)
	}
	dist, more, err := CompileDistribution(s.Distribution)
	if err != nil {
		return Predicate{}, nil, fmt.Errorf("distribution: %w", err)
	}
	return Predicate{HCP: hcp, Distribution: dist}, append(diag, more...), nil
}
