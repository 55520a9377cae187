package simulator

import (
	"slices"

	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/date"
	"github.com/jomonylw/if-you-invest-qqq-sub000/internal/domain"
)

// bucket tracks the shares bought from one funding source and their cost.
type bucket struct {
	shares   float64
	invested float64
}

func (b bucket) snapshot(close float64) domain.BucketSnapshot {
	s := domain.BucketSnapshot{
		Shares:   b.shares,
		Invested: b.invested,
		Value:    b.shares * close,
	}
	if b.shares > 0 {
		s.Return = s.Value - b.invested
	}
	return s
}

// ledger is the running position of a simulation.
type ledger struct {
	shares        float64
	totalInvested float64

	initial       bucket
	contributions bucket
	dividends     bucket
}

func newLedger(initialInvestment, firstClose float64) *ledger {
	initialShares := initialInvestment / firstClose
	return &ledger{
		shares:        initialShares,
		totalInvested: initialInvestment,
		initial:       bucket{shares: initialShares, invested: initialInvestment},
	}
}

func (l *ledger) contribute(amount, close float64) {
	bought := amount / close
	l.shares += bought
	l.totalInvested += amount
	l.contributions.shares += bought
	l.contributions.invested += amount
}

// reinvest buys shares with the dividend paid on every share currently held.
// Dividend income is not contributed capital.
func (l *ledger) reinvest(perShare, close float64) {
	income := l.shares * perShare
	bought := income / close
	l.shares += bought
	l.dividends.shares += bought
	l.dividends.invested += income
}

func (l *ledger) snapshot(p domain.PricePoint) domain.MonthlyRecord {
	return domain.MonthlyRecord{
		Date:          p.Date,
		Close:         p.Close,
		Initial:       l.initial.snapshot(p.Close),
		Contributions: l.contributions.snapshot(p.Close),
		Dividends:     l.dividends.snapshot(p.Close),
		TotalInvested: l.totalInvested,
		TotalValue:    l.shares * p.Close,
	}
}

// compactMonthly keeps the last snapshot written for each calendar month,
// ordered by date.
func compactMonthly(snapshots []domain.MonthlyRecord) []domain.MonthlyRecord {
	byMonth := make(map[date.YearMonth]domain.MonthlyRecord)
	for _, r := range snapshots {
		byMonth[r.Date.YearMonth()] = r
	}
	out := make([]domain.MonthlyRecord, 0, len(byMonth))
	for _, r := range byMonth {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b domain.MonthlyRecord) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})
	return out
}
