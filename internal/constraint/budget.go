package constraint

// BudgetTable holds the per-deal attempt ceilings handed to the dealer.
type BudgetTable struct {
	Single           int `yaml:"single" json:"single"`
	Combined         int `yaml:"combined" json:"combined"`
	CombinedZeroSuit int `yaml:"combined_zero_suit" json:"combined_zero_suit"`
}

// DefaultBudget is the stock ceiling table.
var DefaultBudget = BudgetTable{
	Single:           5000,
	Combined:         15000,
	CombinedZeroSuit: 80000,
}

// Estimate picks the ceiling for a generation. A zero-suit cap only raises the budget
// when both classes are active.
func (b BudgetTable) Estimate(hasHCP, hasDist, hasZeroSuit bool) int {
	if !hasHCP || !hasDist {
		return b.Single
	}
	if hasZeroSuit {
		return b.CombinedZeroSuit
	}
	return b.Combined
}

// EstimateFor derives the flags from compiled filters.
func (b BudgetTable) EstimateFor(hcp, dist Filter) int {
	return b.Estimate(hcp.Active(), dist.Active(), dist.CapsSuitAtZero())
}

// WithDefaults fills zero entries from DefaultBudget.
func (b BudgetTable) WithDefaults() BudgetTable {
	if b.Single <= 0 {
		b.Single = DefaultBudget.Single
	}
	if b.Combined <= 0 {
		b.Combined = DefaultBudget.Combined
	}
	if b.CombinedZeroSuit <= 0 {
		b.CombinedZeroSuit = DefaultBudget.CombinedZeroSuit
	}
	return b
}
