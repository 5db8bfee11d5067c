package calculator

import "math"

// EMIMonth is one row of the amortization schedule.
type EMIMonth struct {
	Month            int `json:"month"`
	EMI              int `json:"emi"`
	PrincipalPaid    int `json:"principalPaid"`
	InterestPaid     int `json:"interestPaid"`
	RemainingBalance int `json:"remainingBalance"`
}

type EMIResult struct {
	EMI           int        `json:"emi"`
	TotalInterest int        `json:"totalInterest"`
	TotalPayment  int        `json:"totalPayment"`
	Schedule      []EMIMonth `json:"schedule"`
}

// EMI computes the equated monthly installment for a loan:
// P*i*(1+i)^n / ((1+i)^n - 1), plus the month-by-month amortization where
// each installment first covers interest on the remaining principal.
func EMI(loanAmount float64, annualRatePct float64, years int) (*EMIResult, error) {
	if loanAmount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if annualRatePct < 0 {
		return nil, ErrNegativeRate
	}
	if years < 1 {
		return nil, ErrNonPositiveTenure
	}

	monthlyRate := annualRatePct / 12 / 100
	tenureMonths := years * 12

	var emi float64
	if monthlyRate == 0 {
		emi = loanAmount / float64(tenureMonths)
	} else {
		pow := math.Pow(1+monthlyRate, float64(tenureMonths))
		emi = loanAmount * monthlyRate * pow / (pow - 1)
	}
	totalPayment := emi * float64(tenureMonths)

	schedule := make([]EMIMonth, 0, tenureMonths)
	remaining := loanAmount
	for month := 1; month <= tenureMonths; month++ {
		interest := remaining * monthlyRate
		principal := emi - interest
		remaining -= principal
		if remaining < 0 {
			remaining = 0
		}
		schedule = append(schedule, EMIMonth{
			Month:            month,
			EMI:              int(math.Round(emi)),
			PrincipalPaid:    int(math.Round(principal)),
			InterestPaid:     int(math.Round(interest)),
			RemainingBalance: int(math.Round(remaining)),
		})
	}

	return &EMIResult{
		EMI:           int(math.Round(emi)),
		TotalInterest: int(math.Round(totalPayment - loanAmount)),
		TotalPayment:  int(math.Round(totalPayment)),
		Schedule:      schedule,
	}, nil
}
