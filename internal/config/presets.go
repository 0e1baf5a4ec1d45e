package config

import "github.com/peterkuimelis/bridgegen/internal/constraint"

func r(lo, hi any) constraint.RawRange {
	return constraint.RawRange{Min: lo, Max: hi}
}

// builtinPresets are the teaching scenarios available without a config file.
func builtinPresets() []Preset {
	return []Preset{
		{
			Name:        "strong-notrump",
			Description: "Dealer opens 1NT: 15-17 and no singleton or void",
			HCP: constraint.HCPSet{
				Mode:   constraint.ModeRelativeToDealer,
				Dealer: r(15, 17),
			},
			Distribution: constraint.DistributionSet{
				Mode: constraint.ModeRelativeToDealer,
				Dealer: constraint.SuitRanges{
					"S": r(2, 5), "H": r(2, 5), "D": r(2, 5), "C": r(2, 5),
				},
			},
		},
		{
			Name:        "weak-two-spades",
			Description: "Dealer holds a six-card spade suit and 5-10 points",
			HCP: constraint.HCPSet{
				Mode:   constraint.ModeRelativeToDealer,
				Dealer: r(5, 10),
			},
			Distribution: constraint.DistributionSet{
				Mode:   constraint.ModeRelativeToDealer,
				Dealer: constraint.SuitRanges{"S": r(6, 6)},
			},
		},
		{
			Name:        "slam-zone",
			Description: "North and South both hold 16 or more",
			HCP: constraint.HCPSet{
				Mode:  constraint.ModePerSeat,
				Seats: map[string]constraint.RawRange{"N": r(16, nil), "S": r(16, nil)},
			},
		},
		{
			Name:        "splinter",
			Description: "South has 13+ with a void in diamonds",
			Boards:      1,
			HCP: constraint.HCPSet{
				Mode:  constraint.ModePerSeat,
				Seats: map[string]constraint.RawRange{"S": r(13, nil)},
			},
			Distribution: constraint.DistributionSet{
				Mode:  constraint.ModePerSeat,
				Seats: map[string]constraint.SuitRanges{"S": {"D": r(nil, 0)}},
			},
		},
	}
}
