// Package simulator replays an investment strategy over a daily price series.
package simulator

import (
	"fmt"
	"math"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// daysPerYear annualizes elapsed calendar days.
const daysPerYear = 365.25

// Simulate walks series once in ascending order, buying the initial lump sum
// at the first close, the monthly contribution on its scheduled day, and
// reinvesting dividends when params.IncludeDividends is set.
//
// Logic:
//  1. initial shares = InitialInvestment / first close
//  2. per point: monthly contribution (at most once per calendar month),
//     then dividend reinvestment on the shares held after the contribution
//  3. final value = shares * last close
//
// When wantBreakdown is set the result carries one MonthlyRecord per calendar
// month, taken at that month's last trading day.
// Returns domain.ErrInvalidInput for an empty or malformed series.
func Simulate(series domain.PriceSeries, params domain.SimulationParameters, wantBreakdown bool) (*domain.SimulationResult, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	first, last := series.First(), series.Last()
	book := newLedger(params.InitialInvestment, first.Close)
	sched := newSchedule(series, params)

	var snapshots []domain.MonthlyRecord
	if wantBreakdown {
		snapshots = make([]domain.MonthlyRecord, 0, len(series))
	}

	for i, p := range series {
		if sched.due(i, p.Date) {
			book.contribute(params.MonthlyAmount, p.Close)
		}
		if params.IncludeDividends && p.Dividend > 0 {
			book.reinvest(p.Dividend, p.Close)
		}
		if wantBreakdown {
			snapshots = append(snapshots, book.snapshot(p))
		}
	}

	finalValue := book.shares * last.Close
	nominal := nominalReturn(finalValue, book.totalInvested)

	result := &domain.SimulationResult{
		FinalValue:       finalValue,
		TotalInvested:    book.totalInvested,
		Shares:           book.shares,
		NominalReturn:    nominal,
		AnnualizedReturn: annualizedReturn(nominal, first.Date, last.Date),
	}
	if wantBreakdown {
		result.Monthly = compactMonthly(snapshots)
	}
	return result, nil
}

// nominalReturn is the gain over contributed capital, 0 when nothing was invested.
func nominalReturn(finalValue, invested float64) float64 {
	if invested == 0 {
		return 0
	}
	return (finalValue - invested) / invested
}

// annualizedReturn compounds nominal over the elapsed years between from and to.
func annualizedReturn(nominal float64, from, to date.Date) float64 {
	years := float64(to.DaysSince(from)) / daysPerYear
	if years <= 0 {
		return 0
	}
	growth := 1 + nominal
	if growth <= 0 {
		// everything was lost, no real root exists
		return -1
	}
	return math.Pow(growth, 1/years) - 1
}
