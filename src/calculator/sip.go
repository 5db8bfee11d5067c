// Package calculator holds the financial tools' math. Everything here is
// local arithmetic; no backend involvement.
package calculator

import (
	"errors"
	"math"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrNegativeRate      = errors.New("rate must not be negative")
	ErrNonPositiveTenure = errors.New("tenure must be at least one year")
)

// SIPYear is one row of the year-by-year projection table.
type SIPYear struct {
	Year           int `json:"year"`
	InvestedAmount int `json:"investedAmount"`
	EstimatedValue int `json:"totalValue"`
}

type SIPResult struct {
	TotalInvestment  int       `json:"totalInvestment"`
	EstimatedReturns int       `json:"estimatedReturns"`
	TotalValue       int       `json:"totalValue"`
	YearlyData       []SIPYear `json:"yearlyData"`
}

// SIP projects a monthly systematic investment plan: future value
// P * ((1+i)^n - 1)/i * (1+i) with i the monthly rate, n the total months.
// A zero rate degenerates to plain accumulation.
func SIP(monthlyInvestment float64, annualRatePct float64, years int) (*SIPResult, error) {
	if monthlyInvestment <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if annualRatePct < 0 {
		return nil, ErrNegativeRate
	}
	if years < 1 {
		return nil, ErrNonPositiveTenure
	}

	monthlyRate := annualRatePct / 12 / 100
	totalMonths := years * 12

	futureValue := sipValue(monthlyInvestment, monthlyRate, totalMonths)
	totalInvestment := monthlyInvestment * float64(totalMonths)

	yearly := make([]SIPYear, 0, years)
	for year := 1; year <= years; year++ {
		months := year * 12
		value := sipValue(monthlyInvestment, monthlyRate, months)
		yearly = append(yearly, SIPYear{
			Year:           year,
			InvestedAmount: int(math.Round(monthlyInvestment * float64(months))),
			EstimatedValue: int(math.Round(value)),
		})
	}

	return &SIPResult{
		TotalInvestment:  int(math.Round(totalInvestment)),
		EstimatedReturns: int(math.Round(futureValue - totalInvestment)),
		TotalValue:       int(math.Round(futureValue)),
		YearlyData:       yearly,
	}, nil
}

func sipValue(monthly, monthlyRate float64, months int) float64 {
	if monthlyRate == 0 {
		return monthly * float64(months)
	}
	return monthly * ((math.Pow(1+monthlyRate, float64(months)) - 1) / monthlyRate) * (1 + monthlyRate)
}
