package calculator

import "math"

// BudgetExpense is one named monthly outgoing.
type BudgetExpense struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type BudgetResult struct {
	Income         int     `json:"income"`
	TotalExpenses  int     `json:"totalExpenses"`
	Savings        int     `json:"savings"`
	SavingsRatePct float64 `json:"savingsRate"`

	// Recommended 50/30/20 split of income.
	RecommendedNeeds   int `json:"recommendedNeeds"`
	RecommendedWants   int `json:"recommendedWants"`
	RecommendedSavings int `json:"recommendedSavings"`
}

// Budget totals the month's expenses against income and lays the result
// alongside the 50/30/20 guideline the planner displays. Savings can be
// negative when spending exceeds income.
func Budget(income float64, expenses []BudgetExpense) (*BudgetResult, error) {
	if income <= 0 {
		return nil, ErrNonPositiveAmount
	}

	var total float64
	for _, e := range expenses {
		if e.Amount < 0 {
			return nil, ErrNonPositiveAmount
		}
		total += e.Amount
	}

	savings := income - total
	rate := savings / income * 100

	return &BudgetResult{
		Income:             int(math.Round(income)),
		TotalExpenses:      int(math.Round(total)),
		Savings:            int(math.Round(savings)),
		SavingsRatePct:     math.Round(rate*100) / 100,
		RecommendedNeeds:   int(math.Round(income * 0.50)),
		RecommendedWants:   int(math.Round(income * 0.30)),
		RecommendedSavings: int(math.Round(income * 0.20)),
	}, nil
}
