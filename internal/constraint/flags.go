package constraint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
)

// ErrMixedModes is returned when one class mixes compass seats with dealer/partner.
var ErrMixedModes = errors.New("cannot mix compass seats with dealer/partner in one constraint class")

// ParseHCPFlags builds an HCP set from "SEAT=MIN:MAX" arguments. SEAT is a compass seat or
// dealer/partner; either bound may be left empty, and a lone value fixes both.
func ParseHCPFlags(args []string) (HCPSet, error) {
	var set HCPSet
	for _, arg := range args {
		who, raw, err := splitFlag(arg)
		if err != nil {
			return HCPSet{}, err
		}
		mode, role := flagMode(who)
		if err := setFlagMode(&set.Mode, mode); err != nil {
			return HCPSet{}, fmt.Errorf("%s: %w", arg, err)
		}
		switch role {
		case RoleDealer:
			set.Dealer = raw
		case RolePartner:
			set.Partner = raw
		default:
			if _, err := bridge.ParseSeat(who); err != nil {
				return HCPSet{}, err
			}
			set.SetSeat(who, raw)
		}
	}
	return set, nil
}

// ParseSuitFlags builds a distribution set from "SEAT.SUIT=MIN:MAX" arguments.
func ParseSuitFlags(args []string) (DistributionSet, error) {
	var set DistributionSet
	for _, arg := range args {
		key, raw, err := splitFlag(arg)
		if err != nil {
			return DistributionSet{}, err
		}
		who, suit, ok := strings.Cut(key, ".")
		if !ok || who == "" || suit == "" {
			return DistributionSet{}, fmt.Errorf("%s: expected SEAT.SUIT=MIN:MAX", arg)
		}
		mode, role := flagMode(who)
		if err := setFlagMode(&set.Mode, mode); err != nil {
			return DistributionSet{}, fmt.Errorf("%s: %w", arg, err)
		}
		if _, err := bridge.ParseSuit(suit); err != nil {
			return DistributionSet{}, err
		}
		if role == RoleSeat {
			if _, err := bridge.ParseSeat(who); err != nil {
				return DistributionSet{}, err
			}
			set.SetSeatSuit(who, suit, raw)
		} else {
			set.SetRoleSuit(role, suit, raw)
		}
	}
	return set, nil
}

func splitFlag(arg string) (string, RawRange, error) {
	key, val, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", RawRange{}, fmt.Errorf("%s: expected KEY=MIN:MAX", arg)
	}
	lo, hi, ranged := strings.Cut(val, ":")
	if !ranged {
		hi = lo
	}
	return key, RawRange{Min: lo, Max: hi}, nil
}

func flagMode(who string) (Mode, Role) {
	switch strings.ToLower(who) {
	case "dealer", "d":
		return ModeRelativeToDealer, RoleDealer
	case "partner", "p":
		return ModeRelativeToDealer, RolePartner
	}
	return ModePerSeat, RoleSeat
}

func setFlagMode(current *Mode, m Mode) error {
	if *current != "" && *current != ModeNone && *current != m {
		return ErrMixedModes
	}
	*current = m
	return nil
}
