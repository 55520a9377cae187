package domain

import (
	"errors"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
)

// SimulationParameters describe an investment strategy.
// No recurring contribution happens when MonthlyDay is nil or MonthlyAmount is zero.
type SimulationParameters struct {
	InitialInvestment float64
	MonthlyDay        *int // 1..31
	MonthlyAmount     float64
	IncludeDividends  bool
}

// Recurring reports whether the parameters schedule a monthly contribution.
func (p SimulationParameters) Recurring() bool {
	return p.MonthlyDay != nil && p.MonthlyAmount > 0
}

// Validate ensures the parameters adhere to domain rules
func (p SimulationParameters) Validate() error {
	if p.InitialInvestment < 0 {
		return errors.New("initial investment must not be negative")
	}
	if p.MonthlyAmount < 0 {
		return errors.New("monthly amount must not be negative")
	}
	if p.MonthlyDay != nil && (*p.MonthlyDay < 1 || *p.MonthlyDay > 31) {
		return errors.New("monthly day must be between 1 and 31")
	}
	return nil
}

// SimulationResult is the outcome of walking a series with a strategy.
// Returns are ratios (0.2 is +20%).
type SimulationResult struct {
	FinalValue       float64
	TotalInvested    float64
	Shares           float64
	NominalReturn    float64
	AnnualizedReturn float64
	Monthly          []MonthlyRecord
}

// BucketSnapshot is the running position of one funding source.
type BucketSnapshot struct {
	Shares   float64
	Invested float64 // cumulative cost basis
	Value    float64 // shares at the day's close
	Return   float64 // Value - Invested, 0 while the bucket holds no shares
}

// MonthlyRecord is the position at the last trading day of a calendar month,
// attributed to the three ways shares were acquired.
type MonthlyRecord struct {
	Date          date.Date
	Close         float64
	Initial       BucketSnapshot
	Contributions BucketSnapshot
	Dividends     BucketSnapshot
	TotalInvested float64
	TotalValue    float64
}
